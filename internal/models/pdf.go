package models

import "time"

// UploadedPDF is a PDF metadata record. FilePath is the stored upload,
// relative to the storage root, and is nil for metadata-only records.
type UploadedPDF struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"file_name"`
	UserID     *int64    `json:"user_id"`
	PageCount  *int      `json:"page_count"`
	FilePath   *string   `json:"-"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type CreatePDFRequest struct {
	FileName string `json:"file_name"`
	UserID   *int64 `json:"user_id"`
}
