// ABOUTME: Fiber HTTP server wiring for the studyrag API
// ABOUTME: Configures CORS, body limits, and routes onto the handler set
package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"studyrag/internal/config"
	"studyrag/internal/models"
	"studyrag/internal/wiki"
)

// Ingestor runs the ingestion flow for one document.
type Ingestor interface {
	Ingest(ctx context.Context, doc models.Document, maxChunks int) error
}

// Answerer runs the question answering flow.
type Answerer interface {
	Answer(ctx context.Context, question string, topK int, sources []string) (string, []models.ScoredChunk, error)
}

// UsageStore tracks question counts and feedback.
type UsageStore interface {
	IncrementQuestions() error
	AddFeedback(fb models.Feedback) error
	Stats() (models.Stats, error)
}

// WikiFetcher finds and fetches Wikipedia articles.
type WikiFetcher interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
	Fetch(ctx context.Context, title string) (*wiki.Article, error)
}

// Server hosts the HTTP API.
type Server struct {
	app *fiber.App
	cfg *config.Config
	log *zap.Logger
}

// New builds the Fiber app with CORS and all API routes registered.
func New(cfg *config.Config, log *zap.Logger, ingestor Ingestor, answerer Answerer, usage UsageStore, wikiFetcher WikiFetcher) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB, bounds PDF uploads
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, OPTIONS",
	}))

	h := newHandler(log, ingestor, answerer, usage, wikiFetcher)

	app.Get("/health", h.Health)
	api := app.Group("/api")
	api.Post("/upload-text", h.UploadText)
	api.Post("/upload-pdf", h.UploadPDF)
	api.Post("/import-wiki", h.ImportWiki)
	api.Post("/chat", h.Chat)
	api.Post("/feedback", h.Feedback)
	api.Get("/stats", h.GetStats)

	return &Server{app: app, cfg: cfg, log: log}
}

// App exposes the Fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run blocks serving HTTP on the configured port.
func (s *Server) Run() error {
	s.log.Info("server listening", zap.String("port", s.cfg.Port))
	return s.app.Listen(":" + s.cfg.Port)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
