package services

import (
	"context"

	"flashquiz-backend/internal/logger"
	"flashquiz-backend/internal/models"
	"flashquiz-backend/internal/quiz"
	"flashquiz-backend/internal/repository"
)

type ProgressManager struct {
	repo   *repository.ProgressRepo
	events Publisher
	log    *logger.Logger
}

func NewProgressManager(repo *repository.ProgressRepo, events Publisher, log *logger.Logger) *ProgressManager {
	if events == nil {
		events = NopPublisher()
	}
	return &ProgressManager{repo: repo, events: events, log: log.With("component", "progress")}
}

type progressInput struct {
	FlashcardID *int64 `json:"flashcard_id" validate:"required"`
}

// AddProgress appends one attempt. The flashcard is not looked up first: the
// store's foreign key is the only guard, and a violation surfaces as a
// write failure.
func (m *ProgressManager) AddProgress(ctx context.Context, req models.RecordProgressRequest) Envelope {
	if err := checkInput(progressInput{FlashcardID: req.FlashcardID}, "Flashcard ID is required"); err != nil {
		return Fail(err)
	}

	entry := &models.ProgressEntry{FlashcardID: *req.FlashcardID, IsCorrect: req.IsCorrect}
	if err := m.repo.Create(ctx, entry); err != nil {
		m.log.Warn("record progress", "flashcard_id", *req.FlashcardID, "error", err)
		return Fail(writeFailure(err, "Failed to record progress"))
	}

	m.events.Publish(ctx, models.WSMessage{
		Type: "progress_recorded",
		Payload: models.ProgressEvent{
			FlashcardID: entry.FlashcardID,
			IsCorrect:   entry.IsCorrect,
		},
	})
	return OKMessage("Progress recorded successfully")
}

// GetAllProgress lists attempts newest first; empty is not found.
func (m *ProgressManager) GetAllProgress(ctx context.Context) Envelope {
	entries, err := m.repo.List(ctx)
	if err != nil {
		m.log.Error("list progress", "error", err)
		return Fail(&StoreUnavailableError{Err: err})
	}
	if len(entries) == 0 {
		return Fail(&NotFoundError{Message: "No progress found"})
	}
	return OK(entries)
}

// GetWrongFlashcardIDs returns every flashcard with at least one incorrect
// attempt, each once.
func (m *ProgressManager) GetWrongFlashcardIDs(ctx context.Context) Envelope {
	ids, err := m.repo.ListWrongFlashcardIDs(ctx)
	if err != nil {
		m.log.Error("list wrong flashcards", "error", err)
		return Fail(&StoreUnavailableError{Err: err})
	}
	if len(ids) == 0 {
		return Fail(&NotFoundError{Message: "No wrong flashcards found"})
	}
	return OK(ids)
}

// GetProgressSummary aggregates every stored attempt. It never fails for an
// empty history: accuracy is simply left unset.
func (m *ProgressManager) GetProgressSummary(ctx context.Context) Envelope {
	entries, err := m.repo.List(ctx)
	if err != nil {
		m.log.Error("summarize progress", "error", err)
		return Fail(&StoreUnavailableError{Err: err})
	}

	correct := 0
	for _, e := range entries {
		if e.IsCorrect {
			correct++
		}
	}

	stats := quiz.Summarize(correct, len(entries))
	return OK(models.ProgressSummary{
		Attempts:  len(entries),
		Correct:   stats.Correct,
		Incorrect: stats.Incorrect,
		Accuracy:  stats.Accuracy,
	})
}

// GetFlashcardProgress lists the attempts for one flashcard, newest first.
func (m *ProgressManager) GetFlashcardProgress(ctx context.Context, flashcardID int64) Envelope {
	entries, err := m.repo.ListByFlashcard(ctx, flashcardID)
	if err != nil {
		m.log.Error("list flashcard progress", "flashcard_id", flashcardID, "error", err)
		return Fail(&StoreUnavailableError{Err: err})
	}
	if len(entries) == 0 {
		return Fail(&NotFoundError{Message: "No progress found"})
	}
	return OK(entries)
}
