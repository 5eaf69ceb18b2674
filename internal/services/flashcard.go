package services

import (
	"context"
	"strings"

	"flashquiz-backend/internal/logger"
	"flashquiz-backend/internal/models"
	"flashquiz-backend/internal/repository"
)

type FlashcardManager struct {
	repo *repository.FlashcardRepo
	log  *logger.Logger
}

func NewFlashcardManager(repo *repository.FlashcardRepo, log *logger.Logger) *FlashcardManager {
	return &FlashcardManager{repo: repo, log: log.With("component", "flashcards")}
}

type flashcardInput struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

// AddFlashcard validates and stores a card. Blank-after-trim question or
// answer is rejected, but the text is stored as submitted. An empty source
// means "manual"; an empty topic is stored as NULL.
func (m *FlashcardManager) AddFlashcard(ctx context.Context, req models.CreateFlashcardRequest) Envelope {
	in := flashcardInput{
		Question: strings.TrimSpace(req.Question),
		Answer:   strings.TrimSpace(req.Answer),
	}
	if err := checkInput(in, "Question & Answer are required"); err != nil {
		return Fail(err)
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = models.DefaultFlashcardSource
	}

	card := &models.Flashcard{
		Question: req.Question,
		Answer:   req.Answer,
		Source:   source,
	}
	if req.Topic != nil {
		if t := strings.TrimSpace(*req.Topic); t != "" {
			card.Topic = &t
		}
	}

	if err := m.repo.Create(ctx, card); err != nil {
		m.log.Warn("add flashcard", "error", err)
		return Fail(writeFailure(err, "Failed to add flashcard"))
	}

	m.log.Debug("flashcard added", "id", card.ID, "source", card.Source)
	return OKMessage("Flashcard added successfully")
}

// GetFlashcards lists cards oldest first. An empty result is reported as not
// found; clients rely on that to show their empty state.
func (m *FlashcardManager) GetFlashcards(ctx context.Context, topic string) Envelope {
	cards, err := m.repo.List(ctx, strings.TrimSpace(topic))
	if err != nil {
		m.log.Error("list flashcards", "error", err)
		return Fail(&StoreUnavailableError{Err: err})
	}
	if len(cards) == 0 {
		return Fail(&NotFoundError{Message: "No flashcards found"})
	}
	return OK(cards)
}

func (m *FlashcardManager) GetFlashcardByID(ctx context.Context, id int64) Envelope {
	card, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return Fail(readFailure(err, "Flashcard not found"))
	}
	return OK(card)
}

func (m *FlashcardManager) DeleteFlashcard(ctx context.Context, id int64) Envelope {
	if err := m.repo.Delete(ctx, id); err != nil {
		return Fail(writeFailure(err, "Failed to delete flashcard"))
	}
	m.log.Debug("flashcard deleted", "id", id)
	return OKMessage("Flashcard deleted successfully")
}
