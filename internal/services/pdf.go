package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"flashquiz-backend/internal/logger"
	"flashquiz-backend/internal/models"
	"flashquiz-backend/internal/repository"
)

// JobQueue hands background jobs to the worker pool.
type JobQueue interface {
	Enqueue(ctx context.Context, job *models.Job) error
}

type PDFManager struct {
	repo        *repository.PDFRepo
	extract     *FileExtractService
	queue       JobQueue
	storagePath string
	log         *logger.Logger
}

// NewPDFManager wires the metadata manager. queue may be nil, in which case
// uploads are stored but no flashcards are generated from them.
func NewPDFManager(repo *repository.PDFRepo, extract *FileExtractService, queue JobQueue, storagePath string, log *logger.Logger) *PDFManager {
	return &PDFManager{
		repo:        repo,
		extract:     extract,
		queue:       queue,
		storagePath: storagePath,
		log:         log.With("component", "pdfs"),
	}
}

type pdfInput struct {
	FileName string `json:"file_name" validate:"required"`
}

func (m *PDFManager) AddPDF(ctx context.Context, req models.CreatePDFRequest) Envelope {
	in := pdfInput{FileName: strings.TrimSpace(req.FileName)}
	if err := checkInput(in, "File name is required"); err != nil {
		return Fail(err)
	}

	meta := &models.UploadedPDF{FileName: in.FileName, UserID: req.UserID}
	if err := m.repo.Create(ctx, meta); err != nil {
		m.log.Warn("store pdf metadata", "file_name", in.FileName, "error", err)
		return Fail(writeFailure(err, "Failed to store PDF metadata"))
	}
	return OKMessage("PDF metadata stored successfully")
}

func (m *PDFManager) GetPDFs(ctx context.Context) Envelope {
	pdfs, err := m.repo.List(ctx)
	if err != nil {
		m.log.Error("list pdfs", "error", err)
		return Fail(&StoreUnavailableError{Err: err})
	}
	if len(pdfs) == 0 {
		return Fail(&NotFoundError{Message: "No uploaded PDFs found"})
	}
	return OK(pdfs)
}

// DeletePDF removes the record and, for uploads, the stored file. A file that
// cannot be removed is logged but does not fail the delete.
func (m *PDFManager) DeletePDF(ctx context.Context, id int64) Envelope {
	deleted, err := m.repo.Delete(ctx, id)
	if err != nil {
		return Fail(writeFailure(err, "Failed to delete PDF metadata"))
	}
	if deleted.FilePath != nil {
		path := filepath.Join(m.storagePath, *deleted.FilePath)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			m.log.Warn("remove uploaded file", "pdf_id", id, "path", path, "error", err)
		}
	}
	return OKMessage("Uploaded PDF deleted successfully")
}

// UploadResult is the payload of a successful upload. JobID is nil when no
// generation job was queued.
type UploadResult struct {
	PDF   models.UploadedPDF `json:"pdf"`
	JobID *uuid.UUID         `json:"job_id,omitempty"`
}

// UploadPDF saves the file under the storage path, records its metadata with
// the page count and queues flashcard generation.
func (m *PDFManager) UploadPDF(ctx context.Context, fileName string, userID *int64, body io.Reader) Envelope {
	in := pdfInput{FileName: filepath.Base(strings.TrimSpace(fileName))}
	if in.FileName == "." || in.FileName == string(filepath.Separator) {
		in.FileName = ""
	}
	if err := checkInput(in, "File name is required"); err != nil {
		return Fail(err)
	}
	if !strings.EqualFold(filepath.Ext(in.FileName), ".pdf") {
		return Fail(&ValidationError{
			Message: "Only PDF files are supported",
			Fields:  map[string]string{"file": "must be a .pdf file"},
		})
	}

	relPath := filepath.Join("uploads", uuid.New().String()+".pdf")
	fullPath := filepath.Join(m.storagePath, relPath)
	if err := saveFile(fullPath, body); err != nil {
		m.log.Error("save upload", "file_name", in.FileName, "error", err)
		return Fail(&WriteError{Message: "Failed to store uploaded PDF", Err: err})
	}

	meta := &models.UploadedPDF{FileName: in.FileName, UserID: userID, FilePath: &relPath}
	pages, err := m.extract.PageCount(fullPath)
	if err != nil {
		os.Remove(fullPath)
		return Fail(&ValidationError{
			Message: "File is not a readable PDF",
			Fields:  map[string]string{"file": err.Error()},
		})
	}
	meta.PageCount = &pages

	if err := m.repo.Create(ctx, meta); err != nil {
		os.Remove(fullPath)
		m.log.Warn("store pdf metadata", "file_name", in.FileName, "error", err)
		return Fail(writeFailure(err, "Failed to store PDF metadata"))
	}

	result := UploadResult{PDF: *meta}
	if m.queue != nil {
		job := &models.Job{
			ID:          uuid.New(),
			Type:        models.JobTypePDFFlashcards,
			ReferenceID: meta.ID,
			FilePath:    relPath,
			FileName:    meta.FileName,
			Status:      "queued",
			MaxRetries:  3,
			CreatedAt:   time.Now().UTC(),
		}
		if err := m.queue.Enqueue(ctx, job); err != nil {
			m.log.Warn("enqueue pdf job", "pdf_id", meta.ID, "error", err)
		} else {
			result.JobID = &job.ID
		}
	}

	m.log.Info("pdf uploaded", "pdf_id", meta.ID, "pages", pages, "queued", result.JobID != nil)
	return Envelope{Success: true, Message: "PDF uploaded successfully", Data: result}
}

func saveFile(path string, body io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write file: %w", err)
	}
	return f.Close()
}
