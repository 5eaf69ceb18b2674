package services

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

type FileExtractService struct{}

func NewFileExtractService() *FileExtractService {
	return &FileExtractService{}
}

// PageCount opens a PDF and reports its number of pages.
func (s *FileExtractService) PageCount(path string) (int, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	return reader.NumPage(), nil
}

func (s *FileExtractService) ExtractTextFromPath(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt":
		return s.extractTXT(path)
	case ".pdf":
		return s.extractPDF(path)
	default:
		return "", fmt.Errorf("unsupported file type for text extraction: %s", ext)
	}
}

func (s *FileExtractService) extractTXT(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	text := normalizeExtractedText(string(b))
	if text == "" {
		return "", fmt.Errorf("text file is empty")
	}
	return text, nil
}

func (s *FileExtractService) extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	text := normalizeExtractedText(b.String())
	if text == "" {
		return "", fmt.Errorf("no extractable text found in pdf")
	}
	return text, nil
}

func normalizeExtractedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	buf := bytes.Buffer{}
	emptyCount := 0
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			emptyCount++
			if emptyCount > 1 {
				continue
			}
			buf.WriteString("\n")
			continue
		}
		emptyCount = 0
		buf.WriteString(trimmed)
		buf.WriteString("\n")
	}

	return strings.TrimSpace(buf.String())
}

// CardDraft is a question/answer pair proposed by a generator, not yet stored.
type CardDraft struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Topic    string `json:"topic,omitempty"`
}

var (
	questionLine   = regexp.MustCompile(`(?i)^(?:q|question)\s*[:.)]\s*(.+)$`)
	answerLine     = regexp.MustCompile(`(?i)^(?:a|answer)\s*[:.)]\s*(.+)$`)
	definitionLine = regexp.MustCompile(`^([^:\-–]{2,60}?)\s*(?:-|–|:)\s+(.{3,})$`)
)

// ParseCards pulls flashcards out of study-note text. Explicit "Q:"/"A:"
// pairs win; if none exist, "term - definition" and "term: definition" lines
// are used instead. At most limit cards are returned (limit <= 0 means all).
func ParseCards(text string, limit int) []CardDraft {
	lines := strings.Split(normalizeExtractedText(text), "\n")

	var cards []CardDraft
	var pending string
	for _, line := range lines {
		if m := questionLine.FindStringSubmatch(line); m != nil {
			pending = strings.TrimSpace(m[1])
			continue
		}
		if m := answerLine.FindStringSubmatch(line); m != nil && pending != "" {
			cards = append(cards, CardDraft{Question: pending, Answer: strings.TrimSpace(m[1])})
			pending = ""
			if limit > 0 && len(cards) == limit {
				return cards
			}
		}
	}
	if len(cards) > 0 {
		return cards
	}

	for _, line := range lines {
		m := definitionLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		term := strings.TrimSpace(m[1])
		def := strings.TrimSpace(m[2])
		if term == "" || def == "" {
			continue
		}
		cards = append(cards, CardDraft{Question: "What is " + term + "?", Answer: def})
		if limit > 0 && len(cards) == limit {
			break
		}
	}
	return cards
}
