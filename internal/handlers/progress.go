package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"flashquiz-backend/internal/chart"
	"flashquiz-backend/internal/models"
	"flashquiz-backend/internal/quiz"
	"flashquiz-backend/internal/services"
)

type progressManager interface {
	AddProgress(ctx context.Context, req models.RecordProgressRequest) services.Envelope
	GetAllProgress(ctx context.Context) services.Envelope
	GetWrongFlashcardIDs(ctx context.Context) services.Envelope
	GetProgressSummary(ctx context.Context) services.Envelope
	GetFlashcardProgress(ctx context.Context, flashcardID int64) services.Envelope
}

type ProgressHandler struct {
	manager progressManager
}

func NewProgressHandler(manager progressManager) *ProgressHandler {
	return &ProgressHandler{manager: manager}
}

func (h *ProgressHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.RecordProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	writeEnvelope(w, r, http.StatusOK, h.manager.AddProgress(r.Context(), req))
}

func (h *ProgressHandler) List(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, r, http.StatusOK, h.manager.GetAllProgress(r.Context()))
}

func (h *ProgressHandler) WrongFlashcards(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, r, http.StatusOK, h.manager.GetWrongFlashcardIDs(r.Context()))
}

func (h *ProgressHandler) ForFlashcard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid flashcard ID", r))
		return
	}
	writeEnvelope(w, r, http.StatusOK, h.manager.GetFlashcardProgress(r.Context(), id))
}

func (h *ProgressHandler) Summary(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, r, http.StatusOK, h.manager.GetProgressSummary(r.Context()))
}

// Chart renders the stored attempts as a PNG bar chart.
func (h *ProgressHandler) Chart(w http.ResponseWriter, r *http.Request) {
	env := h.manager.GetProgressSummary(r.Context())
	if !env.Success {
		handleServiceError(w, r, env.Err())
		return
	}

	sum, ok := env.Data.(models.ProgressSummary)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}
	if sum.Attempts == 0 {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No progress found", r))
		return
	}

	var buf bytes.Buffer
	stats := quiz.Stats{Correct: sum.Correct, Incorrect: sum.Incorrect, Accuracy: sum.Accuracy}
	if err := chart.RenderBar(&buf, stats); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to render chart", r))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
