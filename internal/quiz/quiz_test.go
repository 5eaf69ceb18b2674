package quiz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"flashquiz-backend/internal/logger"
	"flashquiz-backend/internal/models"
)

type recordingReporter struct {
	mu       sync.Mutex
	outcomes []Outcome
	// counters observed at report time
	answeredAt []int
	session    *Session
}

func (r *recordingReporter) Report(_ context.Context, o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
	if r.session != nil {
		r.answeredAt = append(r.answeredAt, r.session.Answered())
	}
}

func deck() []models.Flashcard {
	return []models.Flashcard{
		{ID: 1, Question: "Capital of France?", Answer: "Paris"},
		{ID: 2, Question: "2+2?", Answer: "4"},
		{ID: 3, Question: "Largest planet?", Answer: "Jupiter"},
	}
}

func TestNewSession_States(t *testing.T) {
	if s := NewSession(nil, nil); s.State() != Empty {
		t.Fatalf("expected Empty, got %v", s.State())
	}
	s := NewSession(deck(), nil)
	if s.State() != InProgress || s.Index() != 0 {
		t.Fatalf("expected InProgress(0), got %v(%d)", s.State(), s.Index())
	}
	if _, err := NewSession(nil, nil).Submit(context.Background(), "x"); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress on empty session, got %v", err)
	}
}

func TestSubmit_CaseAndWhitespaceInsensitive(t *testing.T) {
	s := NewSession(deck(), nil)
	correct, err := s.Submit(context.Background(), " paris ")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !correct || !s.LastCorrect() || !s.ShowResult() {
		t.Fatal("expected ' paris ' to match 'Paris'")
	}
	if s.Score() != 1 || s.Answered() != 1 {
		t.Fatalf("expected 1/1, got %d/%d", s.Score(), s.Answered())
	}
}

func TestSubmit_EmptyAnswerIsGraded(t *testing.T) {
	s := NewSession(deck(), nil)
	correct, err := s.Submit(context.Background(), "")
	if err != nil {
		t.Fatalf("empty answer should be accepted, got %v", err)
	}
	if correct || s.Answered() != 1 || s.Score() != 0 {
		t.Fatalf("expected incorrect graded answer, got correct=%v %d/%d", correct, s.Score(), s.Answered())
	}
}

func TestSubmit_OncePerCard(t *testing.T) {
	s := NewSession(deck(), nil)
	ctx := context.Background()
	if s.Submitted() {
		t.Fatal("fresh card reported as submitted")
	}
	if _, err := s.Submit(ctx, "Paris"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !s.Submitted() {
		t.Fatal("expected card to be marked submitted")
	}
	if _, err := s.Submit(ctx, "Paris"); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}
	if s.Answered() != 1 {
		t.Fatalf("duplicate submit changed counters: answered=%d", s.Answered())
	}
	if err := s.Next(); err != nil || s.Submitted() {
		t.Fatalf("expected Next to clear the submitted flag (err=%v)", err)
	}
}

func TestSession_ScoreInvariant(t *testing.T) {
	answers := []string{"paris", "five", "JUPITER"}
	s := NewSession(deck(), nil)
	ctx := context.Background()

	for i, a := range answers {
		if _, err := s.Submit(ctx, a); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
		if s.Score() < 0 || s.Score() > s.Answered() || s.Answered() != i+1 {
			t.Fatalf("invariant broken after %d submits: score=%d answered=%d", i+1, s.Score(), s.Answered())
		}
		if s.Answered() > s.Index()+1 {
			t.Fatalf("answered %d exceeds index+1 (%d)", s.Answered(), s.Index()+1)
		}
		if err := s.Next(); err != nil {
			t.Fatalf("Next: %v", err)
		}
	}

	if s.State() != Completed {
		t.Fatalf("expected Completed, got %v", s.State())
	}
	if s.Score() != 2 || s.Answered() != 3 {
		t.Fatalf("expected 2/3, got %d/%d", s.Score(), s.Answered())
	}
	if _, err := s.Submit(ctx, "x"); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress after completion, got %v", err)
	}
	if err := s.Next(); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress from Next after completion, got %v", err)
	}
}

func TestNext_SkipsWithoutAnswer(t *testing.T) {
	s := NewSession(deck(), nil)
	if err := s.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if s.Index() != 1 || s.Answered() != 0 || s.ShowResult() {
		t.Fatalf("unexpected state after skip: index=%d answered=%d show=%v", s.Index(), s.Answered(), s.ShowResult())
	}
	card, ok := s.Current()
	if !ok || card.ID != 2 {
		t.Fatalf("expected card 2, got %+v", card)
	}
}

func TestRestart_ReusesSnapshot(t *testing.T) {
	cards := deck()
	s := NewSession(cards, nil)
	ctx := context.Background()

	if err := s.Restart(); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("expected ErrNotCompleted before completion, got %v", err)
	}

	// mutate the caller's slice; the session must not see it
	cards[0].Answer = "Lyon"

	for range cards {
		s.Submit(ctx, "paris")
		s.Next()
	}
	if err := s.Restart(); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if s.State() != InProgress || s.Index() != 0 || s.Score() != 0 || s.Answered() != 0 {
		t.Fatalf("expected reset counters, got state=%v index=%d score=%d answered=%d",
			s.State(), s.Index(), s.Score(), s.Answered())
	}

	card, _ := s.Current()
	if card.Answer != "Paris" {
		t.Fatalf("expected original snapshot, got answer %q", card.Answer)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 cards, got %d", s.Len())
	}
}

func TestSubmit_ReportsAfterCountersUpdate(t *testing.T) {
	rep := &recordingReporter{}
	s := NewSession(deck(), rep)
	rep.session = s
	ctx := context.Background()

	s.Submit(ctx, "Paris")
	s.Next()
	s.Submit(ctx, "five")

	if len(rep.outcomes) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(rep.outcomes))
	}
	if rep.outcomes[0] != (Outcome{FlashcardID: 1, Correct: true}) || rep.outcomes[1] != (Outcome{FlashcardID: 2, Correct: false}) {
		t.Fatalf("unexpected outcomes %+v", rep.outcomes)
	}
	if rep.answeredAt[0] != 1 || rep.answeredAt[1] != 2 {
		t.Fatalf("reports must see updated counters, saw %v", rep.answeredAt)
	}
}

func TestSummarize(t *testing.T) {
	st := Summarize(3, 4)
	if st.Correct != 3 || st.Incorrect != 1 || st.Accuracy == nil || *st.Accuracy != 75 {
		t.Fatalf("unexpected stats %+v", st)
	}
	if got := st.AccuracyString(); got != "75.00%" {
		t.Fatalf("expected 75.00%%, got %q", got)
	}

	zero := Summarize(0, 0)
	if zero.Accuracy != nil || zero.AccuracyString() != "" || zero.Answered() != 0 {
		t.Fatalf("expected undefined accuracy, got %+v", zero)
	}
}

func TestAsyncReporter_DoesNotBlockAndSwallowsErrors(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	var sent []Outcome

	rep := NewAsyncReporter(func(ctx context.Context, o Outcome) error {
		<-release
		mu.Lock()
		sent = append(sent, o)
		mu.Unlock()
		if !o.Correct {
			return errors.New("server unreachable")
		}
		return nil
	}, time.Second, logger.Nop())

	s := NewSession(deck(), rep)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Submit(ctx, "Paris")
		s.Next()
		s.Submit(ctx, "wrong")
		s.Next()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session transitions blocked on reporting")
	}

	// cancelling the caller's context must not abort in-flight reports
	cancel()
	close(release)
	rep.Wait()

	if len(sent) != 2 {
		t.Fatalf("expected 2 sends, got %d", len(sent))
	}
	if s.Index() != 2 {
		t.Fatalf("expected index 2, got %d", s.Index())
	}
}
