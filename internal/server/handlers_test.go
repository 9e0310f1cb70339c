// ABOUTME: Tests for the HTTP API handlers
// ABOUTME: Drives the Fiber app with fakes and asserts statuses and bodies
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"studyrag/internal/config"
	"studyrag/internal/llm"
	"studyrag/internal/models"
	"studyrag/internal/wiki"
)

type fakeIngestor struct {
	docs []models.Document
	caps []int
	err  error
}

func (f *fakeIngestor) Ingest(ctx context.Context, doc models.Document, maxChunks int) error {
	if f.err != nil {
		return f.err
	}
	f.docs = append(f.docs, doc)
	f.caps = append(f.caps, maxChunks)
	return nil
}

type fakeAnswerer struct {
	answer   string
	chunks   []models.ScoredChunk
	err      error
	question string
	topK     int
	sources  []string
}

func (f *fakeAnswerer) Answer(ctx context.Context, question string, topK int, sources []string) (string, []models.ScoredChunk, error) {
	f.question = question
	f.topK = topK
	f.sources = sources
	if f.err != nil {
		return "", nil, f.err
	}
	return f.answer, f.chunks, nil
}

type fakeUsage struct {
	questions int
	feedback  []models.Feedback
	stats     models.Stats
	err       error
}

func (f *fakeUsage) IncrementQuestions() error {
	if f.err != nil {
		return f.err
	}
	f.questions++
	return nil
}

func (f *fakeUsage) AddFeedback(fb models.Feedback) error {
	if f.err != nil {
		return f.err
	}
	f.feedback = append(f.feedback, fb)
	return nil
}

func (f *fakeUsage) Stats() (models.Stats, error) {
	if f.err != nil {
		return models.Stats{}, f.err
	}
	return f.stats, nil
}

type fakeWiki struct {
	articles map[string]*wiki.Article
	searched []string
	titles   []string
}

func (f *fakeWiki) Search(ctx context.Context, query string, limit int) ([]string, error) {
	f.searched = append(f.searched, query)
	if limit < len(f.titles) {
		return f.titles[:limit], nil
	}
	return f.titles, nil
}

func (f *fakeWiki) Fetch(ctx context.Context, title string) (*wiki.Article, error) {
	if a, ok := f.articles[title]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %q", wiki.ErrPageNotFound, title)
}

type testEnv struct {
	srv      *Server
	ingestor *fakeIngestor
	answerer *fakeAnswerer
	usage    *fakeUsage
	wiki     *fakeWiki
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		ingestor: &fakeIngestor{},
		answerer: &fakeAnswerer{answer: "an answer"},
		usage:    &fakeUsage{},
		wiki:     &fakeWiki{articles: map[string]*wiki.Article{}},
	}
	cfg := &config.Config{Port: "8000", CorsAllowedOrigins: "http://localhost:3000"}
	env.srv = New(cfg, zap.NewNop(), env.ingestor, env.answerer, env.usage, env.wiki)
	return env
}

func (e *testEnv) postJSON(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.srv.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("failed to decode response %s: %v", data, err)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := env.srv.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]string
	decodeJSON(t, resp, &body)
	if body["status"] != "healthy" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestUploadText(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/upload-text", UploadTextRequest{
		Title: "Notes",
		Text:  "Some paragraphs.",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	if len(env.ingestor.docs) != 1 {
		t.Fatalf("expected 1 ingested document, got %d", len(env.ingestor.docs))
	}
	doc := env.ingestor.docs[0]
	if doc.Title != "Notes" || doc.Text != "Some paragraphs." {
		t.Errorf("document not forwarded: %+v", doc)
	}
	if doc.Source != models.SourceUser {
		t.Errorf("expected default source user, got %q", doc.Source)
	}
}

func TestUploadText_ValidationFailures(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body UploadTextRequest
	}{
		{"missing title", UploadTextRequest{Text: "x"}},
		{"missing text", UploadTextRequest{Title: "x"}},
		{"bad source", UploadTextRequest{Title: "x", Text: "y", Source: "mars"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.postJSON(t, "/api/upload-text", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
	if len(env.ingestor.docs) != 0 {
		t.Fatalf("invalid requests must not reach the ingestor, got %d", len(env.ingestor.docs))
	}
}

func TestChat(t *testing.T) {
	env := newTestEnv(t)
	env.answerer.answer = "Mitochondria produce ATP."
	env.answerer.chunks = []models.ScoredChunk{
		{Score: 0.92, Chunk: models.Chunk{
			ID: "c1", Text: "powerhouse", Source: models.SourceUser,
			Title: "Cell Biology", URL: "https://example.com",
		}},
	}

	resp := env.postJSON(t, "/api/chat", ChatRequest{Question: "What do mitochondria do?"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body ChatResponse
	decodeJSON(t, resp, &body)
	if body.Answer != "Mitochondria produce ATP." {
		t.Errorf("unexpected answer: %q", body.Answer)
	}
	if len(body.Context) != 1 {
		t.Fatalf("expected 1 context chunk, got %d", len(body.Context))
	}
	got := body.Context[0]
	if got.ID != "c1" || got.Score != 0.92 || got.Meta.Title != "Cell Biology" {
		t.Errorf("context not mapped: %+v", got)
	}

	if env.answerer.topK != 3 {
		t.Errorf("expected default topK 3, got %d", env.answerer.topK)
	}
	if env.usage.questions != 1 {
		t.Errorf("question counter not bumped, got %d", env.usage.questions)
	}
}

func TestChat_ForwardsTopKAndSources(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/chat", ChatRequest{
		Question: "q",
		TopK:     7,
		Sources:  []string{models.SourceWikipedia},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if env.answerer.topK != 7 {
		t.Errorf("topK not forwarded, got %d", env.answerer.topK)
	}
	if len(env.answerer.sources) != 1 || env.answerer.sources[0] != models.SourceWikipedia {
		t.Errorf("sources not forwarded: %v", env.answerer.sources)
	}
}

func TestChat_MissingQuestion(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/chat", ChatRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestChat_RateLimitMapsTo503(t *testing.T) {
	env := newTestEnv(t)
	env.answerer.err = fmt.Errorf("embedding question: %w", llm.ErrRateLimited)

	resp := env.postJSON(t, "/api/chat", ChatRequest{Question: "q"})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for rate limiting, got %d", resp.StatusCode)
	}

	var body map[string]string
	decodeJSON(t, resp, &body)
	if body["detail"] == "" {
		t.Error("expected a detail message")
	}
}

func TestChat_GenericFailureMapsTo500(t *testing.T) {
	env := newTestEnv(t)
	env.answerer.err = errors.New("completion exploded")

	resp := env.postJSON(t, "/api/chat", ChatRequest{Question: "q"})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

func TestImportWiki_DirectHit(t *testing.T) {
	env := newTestEnv(t)
	env.wiki.articles["Photosynthesis"] = &wiki.Article{
		Title: "Photosynthesis",
		URL:   "https://en.wikipedia.org/wiki/Photosynthesis",
		Text:  "Plants convert light into energy.",
	}

	resp := env.postJSON(t, "/api/import-wiki", WikiImportRequest{Query: "Photosynthesis"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	if len(env.ingestor.docs) != 1 {
		t.Fatalf("expected 1 ingested document, got %d", len(env.ingestor.docs))
	}
	doc := env.ingestor.docs[0]
	if doc.Source != models.SourceWikipedia {
		t.Errorf("expected wikipedia source, got %q", doc.Source)
	}
	if doc.URL == "" {
		t.Error("article URL not carried onto the document")
	}
	if env.ingestor.caps[0] != 5 {
		t.Errorf("expected the wiki chunk cap, got %d", env.ingestor.caps[0])
	}
	if len(env.wiki.searched) != 0 {
		t.Errorf("direct hit must not search, searched %v", env.wiki.searched)
	}
}

func TestImportWiki_FallsBackToSearch(t *testing.T) {
	env := newTestEnv(t)
	env.wiki.titles = []string{"Photosynthesis"}
	env.wiki.articles["Photosynthesis"] = &wiki.Article{
		Title: "Photosynthesis",
		URL:   "https://en.wikipedia.org/wiki/Photosynthesis",
		Text:  "Plants convert light into energy.",
	}

	resp := env.postJSON(t, "/api/import-wiki", WikiImportRequest{Query: "how plants make food"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]string
	decodeJSON(t, resp, &body)
	if body["title"] != "Photosynthesis" {
		t.Errorf("expected the resolved title, got %q", body["title"])
	}
	if len(env.wiki.searched) != 1 {
		t.Fatalf("expected one search call, got %v", env.wiki.searched)
	}
}

func TestImportWiki_NotFound(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/import-wiki", WikiImportRequest{Query: "xyzzy"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestFeedback(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/feedback", FeedbackRequest{
		Question: "q", Answer: "a", Rating: 1, Comment: "helpful",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	if len(env.usage.feedback) != 1 {
		t.Fatalf("expected 1 feedback record, got %d", len(env.usage.feedback))
	}
	fb := env.usage.feedback[0]
	if fb.Rating != 1 || fb.Comment != "helpful" {
		t.Errorf("feedback not forwarded: %+v", fb)
	}
}

func TestFeedback_InvalidRating(t *testing.T) {
	env := newTestEnv(t)

	for _, rating := range []int{0, 2, -2, 5} {
		resp := env.postJSON(t, "/api/feedback", FeedbackRequest{
			Question: "q", Answer: "a", Rating: rating,
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 for rating %d, got %d", rating, resp.StatusCode)
		}
	}
	if len(env.usage.feedback) != 0 {
		t.Fatalf("invalid ratings must not be stored, got %d", len(env.usage.feedback))
	}
}

func TestGetStats(t *testing.T) {
	env := newTestEnv(t)
	env.usage.stats = models.Stats{
		TotalQuestions:   12,
		TotalFeedback:    4,
		PositiveFeedback: 3,
		NegativeFeedback: 1,
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	resp, err := env.srv.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var stats models.Stats
	decodeJSON(t, resp, &stats)
	if stats != env.usage.stats {
		t.Fatalf("stats mismatch: %+v", stats)
	}
}

func TestUploadPDF_MissingFile(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/upload-pdf", nil)
	resp, err := env.srv.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without a file field, got %d", resp.StatusCode)
	}
}
