package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"flashquiz-backend/internal/models"
	"flashquiz-backend/internal/services"
)

type flashcardManager interface {
	AddFlashcard(ctx context.Context, req models.CreateFlashcardRequest) services.Envelope
	GetFlashcards(ctx context.Context, topic string) services.Envelope
	GetFlashcardByID(ctx context.Context, id int64) services.Envelope
	DeleteFlashcard(ctx context.Context, id int64) services.Envelope
}

type FlashcardHandler struct {
	manager flashcardManager
}

func NewFlashcardHandler(manager flashcardManager) *FlashcardHandler {
	return &FlashcardHandler{manager: manager}
}

func (h *FlashcardHandler) List(w http.ResponseWriter, r *http.Request) {
	env := h.manager.GetFlashcards(r.Context(), r.URL.Query().Get("topic"))
	writeEnvelope(w, r, http.StatusOK, env)
}

func (h *FlashcardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid flashcard ID", r))
		return
	}
	writeEnvelope(w, r, http.StatusOK, h.manager.GetFlashcardByID(r.Context(), id))
}

func (h *FlashcardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFlashcardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	writeEnvelope(w, r, http.StatusOK, h.manager.AddFlashcard(r.Context(), req))
}

func (h *FlashcardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid flashcard ID", r))
		return
	}
	writeEnvelope(w, r, http.StatusOK, h.manager.DeleteFlashcard(r.Context(), id))
}
