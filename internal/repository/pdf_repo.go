package repository

import (
	"context"
	"fmt"

	"flashquiz-backend/internal/models"
	"flashquiz-backend/internal/store"
)

type PDFRepo struct {
	store store.Store
}

func NewPDFRepo(st store.Store) *PDFRepo {
	return &PDFRepo{store: st}
}

func (r *PDFRepo) Create(ctx context.Context, p *models.UploadedPDF) error {
	rec, err := r.store.Insert(ctx, TablePDFs, store.Record{
		"file_name":  p.FileName,
		"user_id":    nullable(p.UserID),
		"page_count": nullable(p.PageCount),
		"file_path":  nullable(p.FilePath),
	})
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNoRows
	}

	created, err := decodePDF(rec)
	if err != nil {
		return err
	}
	*p = created
	return nil
}

func (r *PDFRepo) List(ctx context.Context) ([]models.UploadedPDF, error) {
	rows, err := r.store.Select(ctx, TablePDFs, nil, store.Asc("uploaded_at"))
	if err != nil {
		return nil, err
	}

	out := make([]models.UploadedPDF, 0, len(rows))
	for _, rec := range rows {
		p, err := decodePDF(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *PDFRepo) GetByID(ctx context.Context, id int64) (*models.UploadedPDF, error) {
	rows, err := r.store.Select(ctx, TablePDFs, []store.Filter{store.Eq("id", id)}, store.Order{})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	p, err := decodePDF(rows[0])
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes the record and returns it, so callers can clean up the
// stored file.
func (r *PDFRepo) Delete(ctx context.Context, id int64) (*models.UploadedPDF, error) {
	rows, err := r.store.Delete(ctx, TablePDFs, []store.Filter{store.Eq("id", id)})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	p, err := decodePDF(rows[0])
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func decodePDF(rec store.Record) (models.UploadedPDF, error) {
	id, err := int64Field(rec, "id")
	if err != nil {
		return models.UploadedPDF{}, fmt.Errorf("decode pdf: %w", err)
	}
	userID, err := optionalInt64Field(rec, "user_id")
	if err != nil {
		return models.UploadedPDF{}, fmt.Errorf("decode pdf %d: %w", id, err)
	}
	pages, err := optionalInt64Field(rec, "page_count")
	if err != nil {
		return models.UploadedPDF{}, fmt.Errorf("decode pdf %d: %w", id, err)
	}
	uploadedAt, err := timeField(rec, "uploaded_at")
	if err != nil {
		return models.UploadedPDF{}, fmt.Errorf("decode pdf %d: %w", id, err)
	}

	p := models.UploadedPDF{
		ID:         id,
		FileName:   stringField(rec, "file_name"),
		UserID:     userID,
		FilePath:   optionalStringField(rec, "file_path"),
		UploadedAt: uploadedAt,
	}
	if pages != nil {
		n := int(*pages)
		p.PageCount = &n
	}
	return p, nil
}
