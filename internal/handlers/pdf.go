package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"flashquiz-backend/internal/models"
	"flashquiz-backend/internal/services"
)

const maxUploadBytes = 20 << 20 // 20MB

type pdfManager interface {
	AddPDF(ctx context.Context, req models.CreatePDFRequest) services.Envelope
	GetPDFs(ctx context.Context) services.Envelope
	DeletePDF(ctx context.Context, id int64) services.Envelope
	UploadPDF(ctx context.Context, fileName string, userID *int64, body io.Reader) services.Envelope
}

type PDFHandler struct {
	manager pdfManager
}

func NewPDFHandler(manager pdfManager) *PDFHandler {
	return &PDFHandler{manager: manager}
}

func (h *PDFHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePDFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	writeEnvelope(w, r, http.StatusOK, h.manager.AddPDF(r.Context(), req))
}

func (h *PDFHandler) List(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, r, http.StatusOK, h.manager.GetPDFs(r.Context()))
}

func (h *PDFHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid PDF ID", r))
		return
	}
	writeEnvelope(w, r, http.StatusOK, h.manager.DeletePDF(r.Context(), id))
}

// Upload accepts a multipart "file" field and an optional "user_id". The
// response is 202 when a flashcard generation job was queued.
func (h *PDFHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > maxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File size exceeds 20MB limit", r))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No file provided", r))
		return
	}
	defer file.Close()

	var userID *int64
	if raw := strings.TrimSpace(r.FormValue("user_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Invalid user ID",
				map[string]string{"user_id": "must be an integer"}, r))
			return
		}
		userID = &id
	}

	env := h.manager.UploadPDF(r.Context(), header.Filename, userID, file)
	status := http.StatusOK
	if res, ok := env.Data.(services.UploadResult); ok && res.JobID != nil {
		status = http.StatusAccepted
	}
	writeEnvelope(w, r, status, env)
}
