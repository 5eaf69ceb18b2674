package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"flashquiz-backend/internal/logger"
)

// maxGeneratedCards caps how many cards one document can produce.
const maxGeneratedCards = 25

// CardGenerator turns document text into flashcard drafts.
type CardGenerator interface {
	Generate(ctx context.Context, text string) ([]CardDraft, error)
}

// HeuristicGenerator parses Q:/A: pairs and term/definition lines.
type HeuristicGenerator struct{}

func (HeuristicGenerator) Generate(_ context.Context, text string) ([]CardDraft, error) {
	return ParseCards(text, maxGeneratedCards), nil
}

type GeminiService struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	fallback CardGenerator
	rateChan chan struct{} // Token bucket
	log      *logger.Logger
}

func NewGeminiService(apiKey string, concurrentReqs int, log *logger.Logger) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-1.5-flash")
	model.SetTemperature(0.3)
	model.SetTopP(0.95)
	model.ResponseMIMEType = "application/json"

	if concurrentReqs < 1 {
		concurrentReqs = 1
	}
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:   client,
		model:    model,
		fallback: HeuristicGenerator{},
		rateChan: rateChan,
		log:      log.With("component", "gemini"),
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// Generate asks the model for cards. When the reply cannot be used, the
// heuristic parser is tried on the same text.
func (s *GeminiService) Generate(ctx context.Context, text string) ([]CardDraft, error) {
	if err := s.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer s.releaseRate()

	resp, err := s.model.GenerateContent(ctx, genai.Text(buildFlashcardPrompt(text, maxGeneratedCards)))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	cards := parseGeneratedCards(extractText(resp))
	if len(cards) == 0 {
		s.log.Warn("model returned no usable cards, falling back to parser")
		return s.fallback.Generate(ctx, text)
	}
	if len(cards) > maxGeneratedCards {
		cards = cards[:maxGeneratedCards]
	}
	return cards, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

// parseGeneratedCards decodes a JSON array of cards, tolerating markdown
// fences and prose around the array. Cards missing either side are dropped.
func parseGeneratedCards(raw string) []CardDraft {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var cards []CardDraft
	if err := json.Unmarshal([]byte(raw), &cards); err != nil {
		start := strings.Index(raw, "[")
		end := strings.LastIndex(raw, "]")
		if start < 0 || end <= start {
			return nil
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &cards); err != nil {
			return nil
		}
	}

	valid := cards[:0]
	for _, c := range cards {
		c.Question = strings.TrimSpace(c.Question)
		c.Answer = strings.TrimSpace(c.Answer)
		c.Topic = strings.TrimSpace(c.Topic)
		if c.Question == "" || c.Answer == "" {
			continue
		}
		valid = append(valid, c)
	}
	return valid
}

func buildFlashcardPrompt(content string, n int) string {
	var b strings.Builder

	b.WriteString("You are an expert flashcard creator. Generate high-quality flashcards from the content below.\n\n")
	b.WriteString("CRITICAL: Return ONLY a valid JSON array. No preamble, no markdown, no backticks.\n\n")
	b.WriteString(fmt.Sprintf("Generate at most %d flashcards.\n", n))
	b.WriteString(`
Rules:
- Question must be under 15 words
- Answer must be short enough to type from memory (a word or short phrase)
- No two cards may test the same concept

JSON schema per card:
{"question": "string", "answer": "string", "topic": "string"}
`)

	b.WriteString("\n---CONTENT---\n")
	b.WriteString(content)
	b.WriteString("\n---END---\n")

	return b.String()
}
