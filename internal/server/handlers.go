// ABOUTME: HTTP handlers for upload, wiki import, chat, feedback, and stats
// ABOUTME: Validates requests and maps core error conditions to status codes
package server

import (
	"errors"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"studyrag/internal/llm"
	"studyrag/internal/models"
	"studyrag/internal/pdf"
	"studyrag/internal/rag"
	"studyrag/internal/wiki"
)

// UploadTextRequest is the body of POST /api/upload-text.
type UploadTextRequest struct {
	Title  string `json:"title" validate:"required"`
	Text   string `json:"text" validate:"required"`
	Source string `json:"source" validate:"omitempty,oneof=user wikipedia"`
}

// WikiImportRequest is the body of POST /api/import-wiki.
type WikiImportRequest struct {
	Query string `json:"query" validate:"required"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Question string   `json:"question" validate:"required"`
	TopK     int      `json:"top_k" validate:"omitempty,min=0"`
	Sources  []string `json:"sources" validate:"omitempty,dive,oneof=user wikipedia"`
}

// FeedbackRequest is the body of POST /api/feedback.
type FeedbackRequest struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
	Rating   int    `json:"rating" validate:"required,oneof=1 -1"`
	Comment  string `json:"comment"`
}

// ChunkMeta carries document-level metadata of a retrieved chunk.
type ChunkMeta struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// RetrievedChunk is one citation entry in a chat response.
type RetrievedChunk struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Source string    `json:"source"`
	Score  float64   `json:"score"`
	Meta   ChunkMeta `json:"meta"`
}

// ChatResponse is the body returned by POST /api/chat.
type ChatResponse struct {
	Answer  string           `json:"answer"`
	Context []RetrievedChunk `json:"context"`
}

type handler struct {
	log      *zap.Logger
	ingestor Ingestor
	answerer Answerer
	usage    UsageStore
	wiki     WikiFetcher
	validate *validator.Validate
}

func newHandler(log *zap.Logger, ingestor Ingestor, answerer Answerer, usage UsageStore, wikiFetcher WikiFetcher) *handler {
	return &handler{
		log:      log,
		ingestor: ingestor,
		answerer: answerer,
		usage:    usage,
		wiki:     wikiFetcher,
		validate: validator.New(),
	}
}

// Health implements GET /health.
func (h *handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

// UploadText implements POST /api/upload-text.
func (h *handler) UploadText(c *fiber.Ctx) error {
	var req UploadTextRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	if req.Source == "" {
		req.Source = models.SourceUser
	}

	err := h.ingestor.Ingest(c.UserContext(), models.Document{
		Title:  req.Title,
		Text:   req.Text,
		Source: req.Source,
	}, 0)
	if err != nil {
		return h.coreError(c, "upload-text", err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// UploadPDF implements POST /api/upload-pdf (multipart "file" field).
func (h *handler) UploadPDF(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "missing file field")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return badRequest(c, "failed to open uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return badRequest(c, "failed to read uploaded file")
	}

	text, err := pdf.ExtractText(data)
	if err != nil {
		return badRequest(c, err.Error())
	}

	err = h.ingestor.Ingest(c.UserContext(), models.Document{
		Title:  fileHeader.Filename,
		Text:   text,
		Source: models.SourceUser,
	}, 0)
	if err != nil {
		return h.coreError(c, "upload-pdf", err)
	}
	return c.JSON(fiber.Map{"status": "ok", "filename": fileHeader.Filename})
}

// ImportWiki implements POST /api/import-wiki: the best-matching article is
// fetched and ingested like a user-supplied document, with a small chunk cap
// since articles run long.
func (h *handler) ImportWiki(c *fiber.Ctx) error {
	var req WikiImportRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	article, err := h.wiki.Fetch(c.UserContext(), req.Query)
	if errors.Is(err, wiki.ErrPageNotFound) {
		titles, serr := h.wiki.Search(c.UserContext(), req.Query, 1)
		if serr != nil || len(titles) == 0 {
			return notFound(c, "no wikipedia article matches the query")
		}
		article, err = h.wiki.Fetch(c.UserContext(), titles[0])
	}
	if err != nil {
		return h.coreError(c, "import-wiki", err)
	}

	err = h.ingestor.Ingest(c.UserContext(), models.Document{
		Title:  article.Title,
		Text:   article.Text,
		Source: models.SourceWikipedia,
		URL:    article.URL,
	}, rag.WikiImportChunkCap)
	if err != nil {
		return h.coreError(c, "import-wiki", err)
	}
	return c.JSON(fiber.Map{"title": article.Title, "url": article.URL})
}

// Chat implements POST /api/chat.
func (h *handler) Chat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	if req.TopK == 0 {
		req.TopK = rag.DefaultTopK
	}

	if err := h.usage.IncrementQuestions(); err != nil {
		return h.coreError(c, "chat", err)
	}

	answer, top, err := h.answerer.Answer(c.UserContext(), req.Question, req.TopK, req.Sources)
	if err != nil {
		return h.coreError(c, "chat", err)
	}

	context := make([]RetrievedChunk, 0, len(top))
	for _, sc := range top {
		context = append(context, RetrievedChunk{
			ID:     sc.Chunk.ID,
			Text:   sc.Chunk.Text,
			Source: sc.Chunk.Source,
			Score:  sc.Score,
			Meta:   ChunkMeta{Title: sc.Chunk.Title, URL: sc.Chunk.URL},
		})
	}
	return c.JSON(ChatResponse{Answer: answer, Context: context})
}

// Feedback implements POST /api/feedback.
func (h *handler) Feedback(c *fiber.Ctx) error {
	var req FeedbackRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	err := h.usage.AddFeedback(models.Feedback{
		Question: req.Question,
		Answer:   req.Answer,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		return h.coreError(c, "feedback", err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// GetStats implements GET /api/stats.
func (h *handler) GetStats(c *fiber.Ctx) error {
	stats, err := h.usage.Stats()
	if err != nil {
		return h.coreError(c, "stats", err)
	}
	return c.JSON(stats)
}

func (h *handler) parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}
	return nil
}

// coreError maps core error conditions onto HTTP statuses: rate limiting is
// the caller-retryable 503, a missing wiki page is 404, everything else is a
// generic upstream failure.
func (h *handler) coreError(c *fiber.Ctx, op string, err error) error {
	h.log.Error("request failed", zap.String("op", op), zap.Error(err))

	switch {
	case errors.Is(err, llm.ErrRateLimited):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"detail": "embedding/completion rate limit reached, try again later or use a smaller document",
		})
	case errors.Is(err, wiki.ErrPageNotFound):
		return notFound(c, "wikipedia page not found")
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "internal error",
		})
	}
}

func badRequest(c *fiber.Ctx, detail string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": detail})
}

func notFound(c *fiber.Ctx, detail string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": detail})
}
