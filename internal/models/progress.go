package models

import "time"

type ProgressEntry struct {
	ID          int64     `json:"id"`
	FlashcardID int64     `json:"flashcard_id"`
	IsCorrect   bool      `json:"is_correct"`
	AttemptedAt time.Time `json:"attempted_at"`
}

// FlashcardID is a pointer so a missing field can be told apart from 0.
type RecordProgressRequest struct {
	FlashcardID *int64 `json:"flashcard_id"`
	IsCorrect   bool   `json:"is_correct"`
}

type ProgressSummary struct {
	Attempts  int      `json:"attempts"`
	Correct   int      `json:"correct"`
	Incorrect int      `json:"incorrect"`
	Accuracy  *float64 `json:"accuracy"`
}
