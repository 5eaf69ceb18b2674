package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"flashquiz-backend/internal/middleware"
	"flashquiz-backend/internal/models"
	"flashquiz-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return errorRespWithFields(code, message, nil, r)
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: middleware.GetRequestID(r.Context()),
		},
	}
}

// writeEnvelope sends a successful envelope with status, or maps its error.
func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, env services.Envelope) {
	if !env.Success {
		handleServiceError(w, r, env.Err())
		return
	}
	writeJSON(w, status, env)
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *services.ValidationError
		nerr *services.NotFoundError
		werr *services.WriteError
		uerr *services.StoreUnavailableError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", verr.Error(), verr.Fields, r))
	case errors.As(err, &nerr):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", nerr.Message, r))
	case errors.As(err, &werr):
		writeJSON(w, http.StatusBadRequest, errorResp("WRITE_FAILED", werr.Message, r))
	case errors.As(err, &uerr):
		writeJSON(w, http.StatusServiceUnavailable, errorResp("STORE_UNAVAILABLE", uerr.Error(), r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
