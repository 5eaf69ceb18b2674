package models

import "time"

const DefaultFlashcardSource = "manual"

type Flashcard struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Topic     *string   `json:"topic"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateFlashcardRequest struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Topic    *string `json:"topic"`
	Source   string  `json:"source"`
}
