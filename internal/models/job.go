package models

import (
	"time"

	"github.com/google/uuid"
)

const JobTypePDFFlashcards = "pdf-flashcards"

// Job is a unit of background work carried on the redis queue.
type Job struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	ReferenceID int64     `json:"reference_id"` // uploaded_pdfs.id
	FilePath    string    `json:"file_path"`
	FileName    string    `json:"file_name"`
	Status      string    `json:"status"` // "pending" | "processing" | "completed" | "failed"
	RetryCount  int       `json:"retry_count"`
	MaxRetries  int       `json:"max_retries"`
	CreatedAt   time.Time `json:"created_at"`
}

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type ProgressEvent struct {
	FlashcardID int64 `json:"flashcard_id"`
	IsCorrect   bool  `json:"is_correct"`
}

type FlashcardsGeneratedEvent struct {
	JobID    uuid.UUID `json:"job_id"`
	PDFID    int64     `json:"pdf_id"`
	Created  int       `json:"created"`
	FileName string    `json:"file_name"`
}

type JobFailedEvent struct {
	JobID        uuid.UUID `json:"job_id"`
	ErrorMessage string    `json:"error_message"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
