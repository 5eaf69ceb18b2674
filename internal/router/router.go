package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"flashquiz-backend/internal/handlers"
	"flashquiz-backend/internal/logger"
	"flashquiz-backend/internal/middleware"
	"flashquiz-backend/internal/websocket"
)

// New builds the HTTP surface. wsHub may be nil when redis is not
// configured; /ws is then not mounted. The returned stop func releases the
// background work of the middleware and must be called on shutdown.
func New(
	log *logger.Logger,
	healthHandler *handlers.HealthHandler,
	flashcardHandler *handlers.FlashcardHandler,
	progressHandler *handlers.ProgressHandler,
	pdfHandler *handlers.PDFHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) (http.Handler, func()) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(frontendURL))

	// Upload rate limiter (10 req/min per IP)
	uploadLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.Get("/", healthHandler.Root)
	r.Get("/health", healthHandler.Health)

	// ──── Flashcard Routes ────
	r.Route("/flashcards", func(r chi.Router) {
		r.Get("/", flashcardHandler.List)
		r.Post("/", flashcardHandler.Create)
		r.Get("/{id}", flashcardHandler.Get)
		r.Delete("/{id}", flashcardHandler.Delete)
	})

	// ──── Progress Routes ────
	r.Route("/progress", func(r chi.Router) {
		r.Get("/", progressHandler.List)
		r.Post("/", progressHandler.Create)
		r.Get("/wrong-flashcards", progressHandler.WrongFlashcards)
		r.Get("/summary", progressHandler.Summary)
		r.Get("/chart.png", progressHandler.Chart)
		r.Get("/flashcards/{id}", progressHandler.ForFlashcard)
	})

	// ──── PDF Routes ────
	r.Route("/pdfs", func(r chi.Router) {
		r.Get("/", pdfHandler.List)
		r.Post("/", pdfHandler.Create)
		r.With(uploadLimiter.Middleware).Post("/upload", pdfHandler.Upload)
		r.Delete("/{id}", pdfHandler.Delete)
	})

	// ──── WebSocket ────
	if wsHub != nil {
		r.Get("/ws", wsHub.HandleWebSocket)
	}

	return r, uploadLimiter.Stop
}
