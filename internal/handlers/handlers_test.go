package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"flashquiz-backend/internal/models"
	"flashquiz-backend/internal/services"
	"flashquiz-backend/internal/store"
)

type stubFlashcardManager struct {
	list      services.Envelope
	get       services.Envelope
	add       services.Envelope
	del       services.Envelope
	lastTopic string
	lastID    int64
	lastAdd   models.CreateFlashcardRequest
	calls     int
}

func (s *stubFlashcardManager) AddFlashcard(ctx context.Context, req models.CreateFlashcardRequest) services.Envelope {
	s.calls++
	s.lastAdd = req
	return s.add
}

func (s *stubFlashcardManager) GetFlashcards(ctx context.Context, topic string) services.Envelope {
	s.calls++
	s.lastTopic = topic
	return s.list
}

func (s *stubFlashcardManager) GetFlashcardByID(ctx context.Context, id int64) services.Envelope {
	s.calls++
	s.lastID = id
	return s.get
}

func (s *stubFlashcardManager) DeleteFlashcard(ctx context.Context, id int64) services.Envelope {
	s.calls++
	s.lastID = id
	return s.del
}

type stubProgressManager struct {
	add      services.Envelope
	list     services.Envelope
	wrong    services.Envelope
	summary  services.Envelope
	byCard   services.Envelope
	lastReq  models.RecordProgressRequest
	lastCard int64
}

func (s *stubProgressManager) AddProgress(ctx context.Context, req models.RecordProgressRequest) services.Envelope {
	s.lastReq = req
	return s.add
}
func (s *stubProgressManager) GetAllProgress(ctx context.Context) services.Envelope { return s.list }
func (s *stubProgressManager) GetWrongFlashcardIDs(ctx context.Context) services.Envelope {
	return s.wrong
}
func (s *stubProgressManager) GetProgressSummary(ctx context.Context) services.Envelope {
	return s.summary
}
func (s *stubProgressManager) GetFlashcardProgress(ctx context.Context, flashcardID int64) services.Envelope {
	s.lastCard = flashcardID
	return s.byCard
}

type stubPDFManager struct {
	add       services.Envelope
	list      services.Envelope
	del       services.Envelope
	upload    services.Envelope
	gotName   string
	gotUser   *int64
	gotBody   string
	uploadHit bool
}

func (s *stubPDFManager) AddPDF(ctx context.Context, req models.CreatePDFRequest) services.Envelope {
	return s.add
}
func (s *stubPDFManager) GetPDFs(ctx context.Context) services.Envelope             { return s.list }
func (s *stubPDFManager) DeletePDF(ctx context.Context, id int64) services.Envelope { return s.del }
func (s *stubPDFManager) UploadPDF(ctx context.Context, fileName string, userID *int64, body io.Reader) services.Envelope {
	s.uploadHit = true
	s.gotName = fileName
	s.gotUser = userID
	b, _ := io.ReadAll(body)
	s.gotBody = string(b)
	return s.upload
}

func withID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.APIError {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp.Error
}

func TestFlashcardHandler_ListSuccess(t *testing.T) {
	topic := "geo"
	mgr := &stubFlashcardManager{list: services.OK([]models.Flashcard{{ID: 1, Question: "q", Answer: "a", Topic: &topic}})}
	h := NewFlashcardHandler(mgr)

	req := httptest.NewRequest(http.MethodGet, "/flashcards?topic=geo", nil)
	rr := httptest.NewRecorder()
	h.List(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if mgr.lastTopic != "geo" {
		t.Fatalf("expected topic passed through, got %q", mgr.lastTopic)
	}

	var payload struct {
		Success bool               `json:"success"`
		Data    []models.Flashcard `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !payload.Success || len(payload.Data) != 1 || payload.Data[0].ID != 1 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestFlashcardHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		env      services.Envelope
		wantCode int
		wantErr  string
		wantMsg  string
	}{
		{"empty list", services.Fail(&services.NotFoundError{Message: "No flashcards found"}), http.StatusNotFound, "NOT_FOUND", "No flashcards found"},
		{"store down", services.Fail(&services.StoreUnavailableError{Err: store.ErrUnavailable}), http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Store is unavailable, try again later"},
		{"unknown", services.Fail(errors.New("boom")), http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewFlashcardHandler(&stubFlashcardManager{list: tc.env})
			rr := httptest.NewRecorder()
			h.List(rr, httptest.NewRequest(http.MethodGet, "/flashcards", nil))

			if rr.Code != tc.wantCode {
				t.Fatalf("expected status %d, got %d", tc.wantCode, rr.Code)
			}
			apiErr := decodeError(t, rr)
			if apiErr.Code != tc.wantErr || apiErr.Message != tc.wantMsg {
				t.Fatalf("unexpected error body %+v", apiErr)
			}
		})
	}
}

func TestFlashcardHandler_GetByID(t *testing.T) {
	mgr := &stubFlashcardManager{get: services.OK(&models.Flashcard{ID: 7, Question: "q", Answer: "a"})}
	h := NewFlashcardHandler(mgr)

	rr := httptest.NewRecorder()
	h.Get(rr, withID(httptest.NewRequest(http.MethodGet, "/flashcards/7", nil), "7"))
	if rr.Code != http.StatusOK || mgr.lastID != 7 {
		t.Fatalf("expected 200 for id 7, got %d (id %d)", rr.Code, mgr.lastID)
	}

	mgr.get = services.Fail(&services.NotFoundError{Message: "Flashcard not found"})
	rr = httptest.NewRecorder()
	h.Get(rr, withID(httptest.NewRequest(http.MethodGet, "/flashcards/8", nil), "8"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if msg := decodeError(t, rr).Message; msg != "Flashcard not found" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestFlashcardHandler_MalformedIDNeverReachesManager(t *testing.T) {
	mgr := &stubFlashcardManager{}
	h := NewFlashcardHandler(mgr)

	for _, id := range []string{"abc", "-1", "0", ""} {
		rr := httptest.NewRecorder()
		h.Delete(rr, withID(httptest.NewRequest(http.MethodDelete, "/flashcards/"+id, nil), id))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("id %q: expected 400, got %d", id, rr.Code)
		}
	}
	if mgr.calls != 0 {
		t.Fatalf("expected no manager calls, got %d", mgr.calls)
	}
}

func TestFlashcardHandler_Create(t *testing.T) {
	mgr := &stubFlashcardManager{add: services.OKMessage("Flashcard added successfully")}
	h := NewFlashcardHandler(mgr)

	body, _ := json.Marshal(map[string]string{"question": "2+2?", "answer": "4", "source": "pdf:math.pdf"})
	rr := httptest.NewRecorder()
	h.Create(rr, httptest.NewRequest(http.MethodPost, "/flashcards", bytes.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if mgr.lastAdd.Question != "2+2?" || mgr.lastAdd.Source != "pdf:math.pdf" {
		t.Fatalf("unexpected request passed to manager %+v", mgr.lastAdd)
	}
	var payload map[string]interface{}
	json.NewDecoder(rr.Body).Decode(&payload)
	if payload["message"] != "Flashcard added successfully" || payload["success"] != true {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestFlashcardHandler_CreateValidationAndWriteFailures(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		env     services.Envelope
		wantMsg string
	}{
		{"bad json", "{", services.Envelope{}, "Invalid request body"},
		{"validation", `{"question":""}`, services.Fail(&services.ValidationError{
			Message: "Question & Answer are required",
			Fields:  map[string]string{"question": "is required", "answer": "is required"},
		}), "Question & Answer are required"},
		{"write", `{"question":"q","answer":"a"}`, services.Fail(&services.WriteError{Message: "Failed to add flashcard"}), "Failed to add flashcard"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewFlashcardHandler(&stubFlashcardManager{add: tc.env})
			rr := httptest.NewRecorder()
			h.Create(rr, httptest.NewRequest(http.MethodPost, "/flashcards", strings.NewReader(tc.body)))

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
			if msg := decodeError(t, rr).Message; msg != tc.wantMsg {
				t.Fatalf("expected %q, got %q", tc.wantMsg, msg)
			}
		})
	}
}

func TestFlashcardHandler_DeleteFailureIs400(t *testing.T) {
	h := NewFlashcardHandler(&stubFlashcardManager{del: services.Fail(&services.WriteError{Message: "Failed to delete flashcard"})})
	rr := httptest.NewRecorder()
	h.Delete(rr, withID(httptest.NewRequest(http.MethodDelete, "/flashcards/3", nil), "3"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestProgressHandler_CreateAndLists(t *testing.T) {
	mgr := &stubProgressManager{
		add:   services.OKMessage("Progress recorded successfully"),
		list:  services.Fail(&services.NotFoundError{Message: "No progress found"}),
		wrong: services.OK([]int64{1, 3}),
	}
	h := NewProgressHandler(mgr)

	rr := httptest.NewRecorder()
	h.Create(rr, httptest.NewRequest(http.MethodPost, "/progress", strings.NewReader(`{"flashcard_id":5,"is_correct":true}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if mgr.lastReq.FlashcardID == nil || *mgr.lastReq.FlashcardID != 5 || !mgr.lastReq.IsCorrect {
		t.Fatalf("unexpected request %+v", mgr.lastReq)
	}

	rr = httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/progress", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for empty progress, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.WrongFlashcards(rr, httptest.NewRequest(http.MethodGet, "/progress/wrong-flashcards", nil))
	var payload struct {
		Data []int64 `json:"data"`
	}
	json.NewDecoder(rr.Body).Decode(&payload)
	if rr.Code != http.StatusOK || len(payload.Data) != 2 {
		t.Fatalf("unexpected wrong-flashcards response %d %+v", rr.Code, payload)
	}
}

func TestProgressHandler_ForFlashcard(t *testing.T) {
	mgr := &stubProgressManager{byCard: services.OK([]models.ProgressEntry{{ID: 1, FlashcardID: 9}})}
	h := NewProgressHandler(mgr)

	rr := httptest.NewRecorder()
	h.ForFlashcard(rr, withID(httptest.NewRequest(http.MethodGet, "/progress/flashcards/9", nil), "9"))
	if rr.Code != http.StatusOK || mgr.lastCard != 9 {
		t.Fatalf("expected 200 for flashcard 9, got %d (id %d)", rr.Code, mgr.lastCard)
	}

	rr = httptest.NewRecorder()
	h.ForFlashcard(rr, withID(httptest.NewRequest(http.MethodGet, "/progress/flashcards/x", nil), "x"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rr.Code)
	}
}

func TestProgressHandler_CreateMissingID(t *testing.T) {
	mgr := &stubProgressManager{add: services.Fail(&services.ValidationError{
		Message: "Flashcard ID is required",
		Fields:  map[string]string{"flashcard_id": "is required"},
	})}
	h := NewProgressHandler(mgr)

	rr := httptest.NewRecorder()
	h.Create(rr, httptest.NewRequest(http.MethodPost, "/progress", strings.NewReader(`{"is_correct":false}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	apiErr := decodeError(t, rr)
	if apiErr.Message != "Flashcard ID is required" || apiErr.Fields["flashcard_id"] != "is required" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestProgressHandler_Chart(t *testing.T) {
	acc := 75.0
	mgr := &stubProgressManager{summary: services.OK(models.ProgressSummary{Attempts: 4, Correct: 3, Incorrect: 1, Accuracy: &acc})}
	h := NewProgressHandler(mgr)

	rr := httptest.NewRecorder()
	h.Chart(rr, httptest.NewRequest(http.MethodGet, "/progress/chart.png", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if _, err := png.Decode(rr.Body); err != nil {
		t.Fatalf("body is not a png: %v", err)
	}

	mgr.summary = services.OK(models.ProgressSummary{})
	rr = httptest.NewRecorder()
	h.Chart(rr, httptest.NewRequest(http.MethodGet, "/progress/chart.png", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with no attempts, got %d", rr.Code)
	}
}

func TestPDFHandler_Upload(t *testing.T) {
	jobID := uuid.New()
	mgr := &stubPDFManager{upload: services.Envelope{
		Success: true,
		Message: "PDF uploaded successfully",
		Data:    services.UploadResult{PDF: models.UploadedPDF{ID: 1, FileName: "notes.pdf"}, JobID: &jobID},
	}}
	h := NewPDFHandler(mgr)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "notes.pdf")
	fw.Write([]byte("%PDF-1.4 fake"))
	mw.WriteField("user_id", "12")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/pdfs/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	h.Upload(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rr.Code, rr.Body.String())
	}
	if mgr.gotName != "notes.pdf" || mgr.gotBody != "%PDF-1.4 fake" {
		t.Fatalf("unexpected upload args name=%q body=%q", mgr.gotName, mgr.gotBody)
	}
	if mgr.gotUser == nil || *mgr.gotUser != 12 {
		t.Fatalf("expected user id 12, got %v", mgr.gotUser)
	}
}

func TestPDFHandler_UploadWithoutFile(t *testing.T) {
	mgr := &stubPDFManager{}
	h := NewPDFHandler(mgr)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("user_id", "1")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/pdfs/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	h.Upload(rr, req)

	if rr.Code != http.StatusBadRequest || mgr.uploadHit {
		t.Fatalf("expected 400 without reaching manager, got %d (hit=%v)", rr.Code, mgr.uploadHit)
	}
}

func TestPDFHandler_MetadataRoutes(t *testing.T) {
	mgr := &stubPDFManager{
		add:  services.Fail(&services.ValidationError{Message: "File name is required"}),
		list: services.Fail(&services.NotFoundError{Message: "No uploaded PDFs found"}),
		del:  services.OKMessage("Uploaded PDF deleted successfully"),
	}
	h := NewPDFHandler(mgr)

	rr := httptest.NewRecorder()
	h.Create(rr, httptest.NewRequest(http.MethodPost, "/pdfs", strings.NewReader(`{"file_name":""}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/pdfs", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Delete(rr, withID(httptest.NewRequest(http.MethodDelete, "/pdfs/2", nil), "2"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{
		"store": PingFunc(func(context.Context) error { return nil }),
	})
	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	h = NewHealthHandler(map[string]Pinger{
		"store": PingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})
	rr = httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Root(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	var payload map[string]string
	json.NewDecoder(rr.Body).Decode(&payload)
	if payload["message"] != "Flashcard Quiz API is running" {
		t.Fatalf("unexpected banner %v", payload)
	}
}
