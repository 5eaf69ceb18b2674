// Package quiz holds the client-side quiz session: a snapshot of flashcards,
// the submit/next/restart transitions over it, and the score statistics.
package quiz

import (
	"context"
	"errors"
	"strings"

	"flashquiz-backend/internal/models"
)

type State int

const (
	// Empty means the session was created without cards; it never leaves
	// this state.
	Empty State = iota
	InProgress
	Completed
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case InProgress:
		return "in_progress"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

var (
	ErrNotInProgress    = errors.New("quiz is not in progress")
	ErrNotCompleted     = errors.New("quiz is not completed")
	ErrAlreadySubmitted = errors.New("answer already submitted for this card")
)

// Outcome is one graded submission, as sent to the progress endpoint.
type Outcome struct {
	FlashcardID int64
	Correct     bool
}

// Reporter receives outcomes after the session's counters are updated. It
// must not block.
type Reporter interface {
	Report(ctx context.Context, o Outcome)
}

// Session is owned by a single goroutine; it is not safe for concurrent use.
type Session struct {
	cards       []models.Flashcard
	state       State
	index       int
	score       int
	answered    int
	showResult  bool
	lastCorrect bool
	submitted   bool
	reporter    Reporter
}

// NewSession snapshots cards. Later changes to the slice do not affect the
// session. reporter may be nil.
func NewSession(cards []models.Flashcard, reporter Reporter) *Session {
	s := &Session{
		cards:    append([]models.Flashcard(nil), cards...),
		reporter: reporter,
	}
	if len(s.cards) > 0 {
		s.state = InProgress
	}
	return s
}

func (s *Session) State() State     { return s.state }
func (s *Session) Index() int       { return s.index }
func (s *Session) Score() int       { return s.score }
func (s *Session) Answered() int    { return s.answered }
func (s *Session) Len() int         { return len(s.cards) }
func (s *Session) ShowResult() bool { return s.showResult }

// LastCorrect reports the grade of the most recent submission.
func (s *Session) LastCorrect() bool { return s.lastCorrect }

// Submitted reports whether the current card has been answered.
func (s *Session) Submitted() bool { return s.submitted }

// Current returns the card being asked, or false outside InProgress.
func (s *Session) Current() (models.Flashcard, bool) {
	if s.state != InProgress {
		return models.Flashcard{}, false
	}
	return s.cards[s.index], true
}

// Submit grades answer against the current card. Comparison ignores
// surrounding whitespace and case; an empty answer is graded like any other.
// Each card accepts one submission.
func (s *Session) Submit(ctx context.Context, answer string) (bool, error) {
	if s.state != InProgress {
		return false, ErrNotInProgress
	}
	if s.submitted {
		return false, ErrAlreadySubmitted
	}

	card := s.cards[s.index]
	correct := Matches(answer, card.Answer)

	s.answered++
	if correct {
		s.score++
	}
	s.lastCorrect = correct
	s.showResult = true
	s.submitted = true

	if s.reporter != nil {
		s.reporter.Report(ctx, Outcome{FlashcardID: card.ID, Correct: correct})
	}
	return correct, nil
}

// Next moves past the current card, skipped or not. Past the last card the
// session is Completed.
func (s *Session) Next() error {
	if s.state != InProgress {
		return ErrNotInProgress
	}
	s.showResult = false
	s.submitted = false
	s.index++
	if s.index >= len(s.cards) {
		s.state = Completed
	}
	return nil
}

// Restart replays the same snapshot from the first card.
func (s *Session) Restart() error {
	if s.state != Completed {
		return ErrNotCompleted
	}
	s.index = 0
	s.score = 0
	s.answered = 0
	s.showResult = false
	s.lastCorrect = false
	s.submitted = false
	s.state = InProgress
	return nil
}

// Stats summarizes the running counters.
func (s *Session) Stats() Stats {
	return Summarize(s.score, s.answered)
}

// Matches compares answers ignoring case and surrounding whitespace.
func Matches(given, expected string) bool {
	return strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(expected))
}
