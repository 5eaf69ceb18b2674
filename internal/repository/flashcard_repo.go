package repository

import (
	"context"
	"fmt"

	"flashquiz-backend/internal/models"
	"flashquiz-backend/internal/store"
)

type FlashcardRepo struct {
	store store.Store
}

func NewFlashcardRepo(st store.Store) *FlashcardRepo {
	return &FlashcardRepo{store: st}
}

// Create inserts f and fills in the store-assigned ID and CreatedAt.
func (r *FlashcardRepo) Create(ctx context.Context, f *models.Flashcard) error {
	rec, err := r.store.Insert(ctx, TableFlashcards, store.Record{
		"question": f.Question,
		"answer":   f.Answer,
		"topic":    nullable(f.Topic),
		"source":   f.Source,
	})
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNoRows
	}

	created, err := decodeFlashcard(rec)
	if err != nil {
		return err
	}
	*f = created
	return nil
}

// List returns flashcards oldest first, optionally restricted to one topic.
func (r *FlashcardRepo) List(ctx context.Context, topic string) ([]models.Flashcard, error) {
	var filters []store.Filter
	if topic != "" {
		filters = append(filters, store.Eq("topic", topic))
	}

	rows, err := r.store.Select(ctx, TableFlashcards, filters, store.Asc("created_at"))
	if err != nil {
		return nil, err
	}
	return decodeFlashcards(rows)
}

func (r *FlashcardRepo) GetByID(ctx context.Context, id int64) (*models.Flashcard, error) {
	rows, err := r.store.Select(ctx, TableFlashcards, []store.Filter{store.Eq("id", id)}, store.Order{})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	f, err := decodeFlashcard(rows[0])
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Delete removes one flashcard; its progress rows go with it.
func (r *FlashcardRepo) Delete(ctx context.Context, id int64) error {
	rows, err := r.store.Delete(ctx, TableFlashcards, []store.Filter{store.Eq("id", id)})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeFlashcards(rows []store.Record) ([]models.Flashcard, error) {
	out := make([]models.Flashcard, 0, len(rows))
	for _, rec := range rows {
		f, err := decodeFlashcard(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func decodeFlashcard(rec store.Record) (models.Flashcard, error) {
	id, err := int64Field(rec, "id")
	if err != nil {
		return models.Flashcard{}, fmt.Errorf("decode flashcard: %w", err)
	}
	createdAt, err := timeField(rec, "created_at")
	if err != nil {
		return models.Flashcard{}, fmt.Errorf("decode flashcard %d: %w", id, err)
	}
	return models.Flashcard{
		ID:        id,
		Question:  stringField(rec, "question"),
		Answer:    stringField(rec, "answer"),
		Topic:     optionalStringField(rec, "topic"),
		Source:    stringField(rec, "source"),
		CreatedAt: createdAt,
	}, nil
}
