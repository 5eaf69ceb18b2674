package repository

import (
	"context"
	"fmt"

	"flashquiz-backend/internal/models"
	"flashquiz-backend/internal/store"
)

// ProgressRepo is append-only: there is no update or delete. Rows vanish
// only through the cascade from flashcards.
type ProgressRepo struct {
	store store.Store
}

func NewProgressRepo(st store.Store) *ProgressRepo {
	return &ProgressRepo{store: st}
}

func (r *ProgressRepo) Create(ctx context.Context, p *models.ProgressEntry) error {
	rec, err := r.store.Insert(ctx, TableProgress, store.Record{
		"flashcard_id": p.FlashcardID,
		"is_correct":   p.IsCorrect,
	})
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNoRows
	}

	created, err := decodeProgress(rec)
	if err != nil {
		return err
	}
	*p = created
	return nil
}

// List returns every attempt, most recent first.
func (r *ProgressRepo) List(ctx context.Context) ([]models.ProgressEntry, error) {
	rows, err := r.store.Select(ctx, TableProgress, nil, store.Desc("attempted_at"))
	if err != nil {
		return nil, err
	}
	return decodeProgressRows(rows)
}

func (r *ProgressRepo) ListByFlashcard(ctx context.Context, flashcardID int64) ([]models.ProgressEntry, error) {
	rows, err := r.store.Select(ctx, TableProgress,
		[]store.Filter{store.Eq("flashcard_id", flashcardID)}, store.Desc("attempted_at"))
	if err != nil {
		return nil, err
	}
	return decodeProgressRows(rows)
}

// ListWrongFlashcardIDs returns each flashcard with at least one incorrect
// attempt exactly once, in order of first wrong attempt.
func (r *ProgressRepo) ListWrongFlashcardIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.store.Select(ctx, TableProgress,
		[]store.Filter{store.Eq("is_correct", false)}, store.Asc("attempted_at"))
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, rec := range rows {
		id, err := int64Field(rec, "flashcard_id")
		if err != nil {
			return nil, fmt.Errorf("decode progress: %w", err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func decodeProgressRows(rows []store.Record) ([]models.ProgressEntry, error) {
	out := make([]models.ProgressEntry, 0, len(rows))
	for _, rec := range rows {
		p, err := decodeProgress(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func decodeProgress(rec store.Record) (models.ProgressEntry, error) {
	id, err := int64Field(rec, "id")
	if err != nil {
		return models.ProgressEntry{}, fmt.Errorf("decode progress: %w", err)
	}
	flashcardID, err := int64Field(rec, "flashcard_id")
	if err != nil {
		return models.ProgressEntry{}, fmt.Errorf("decode progress %d: %w", id, err)
	}
	correct, err := boolField(rec, "is_correct")
	if err != nil {
		return models.ProgressEntry{}, fmt.Errorf("decode progress %d: %w", id, err)
	}
	attemptedAt, err := timeField(rec, "attempted_at")
	if err != nil {
		return models.ProgressEntry{}, fmt.Errorf("decode progress %d: %w", id, err)
	}
	return models.ProgressEntry{
		ID:          id,
		FlashcardID: flashcardID,
		IsCorrect:   correct,
		AttemptedAt: attemptedAt,
	}, nil
}
