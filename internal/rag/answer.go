// ABOUTME: Answer orchestrator for question answering over the stored corpus
// ABOUTME: Embeds the question, ranks chunks, builds the prompt, calls completion
package rag

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"studyrag/internal/models"
	"studyrag/internal/wiki"
)

// DefaultTopK is the number of chunks retrieved when the caller does not ask
// for a specific count.
const DefaultTopK = 3

// WikiImportChunkCap bounds chunks ingested per Wikipedia article; articles
// run long and embedding them whole burns through rate limits.
const WikiImportChunkCap = 5

// Completer turns a prompt into generated answer text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// WikiSource finds and fetches Wikipedia articles for auto-context.
type WikiSource interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
	Fetch(ctx context.Context, title string) (*wiki.Article, error)
}

// Answerer retrieves the chunks most similar to a question and forwards them
// with the question to the completion client. Stateless across calls.
type Answerer struct {
	embedder  Embedder
	completer Completer
	store     ChunkStore
	log       *zap.Logger

	// Auto-Wikipedia context: when autoWiki > 0 and the source filter
	// permits it, unseen articles matching the question are ingested
	// before retrieval. Disabled by default.
	wikiSource WikiSource
	ingestor   *Ingestor
	autoWiki   int
}

// NewAnswerer creates an Answerer without auto-Wikipedia context.
func NewAnswerer(embedder Embedder, completer Completer, store ChunkStore, log *zap.Logger) *Answerer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Answerer{
		embedder:  embedder,
		completer: completer,
		store:     store,
		log:       log,
	}
}

// WithAutoWiki enables fetching up to articles Wikipedia articles per
// question, ingested through ingestor before retrieval runs.
func (a *Answerer) WithAutoWiki(source WikiSource, ingestor *Ingestor, articles int) *Answerer {
	a.wikiSource = source
	a.ingestor = ingestor
	a.autoWiki = articles
	return a
}

// Answer embeds the question, ranks the stored chunks against it, and asks
// the completion client to answer from the topK best matches. It returns the
// answer text verbatim together with the ranked pairs for citation display.
// A non-empty sources slice restricts retrieval to those source tags.
// Upstream failures propagate unretried; rate limiting keeps its distinct
// error condition for the caller to map.
func (a *Answerer) Answer(ctx context.Context, question string, topK int, sources []string) (string, []models.ScoredChunk, error) {
	if a.autoWiki > 0 && sourceAllowed(sources, models.SourceWikipedia) {
		a.ensureWikipediaContext(ctx, question)
	}

	vectors, err := a.embedder.EmbedBatch(ctx, []string{question})
	if err != nil {
		return "", nil, fmt.Errorf("embedding question: %w", err)
	}
	var query []float64
	if len(vectors) > 0 {
		query = vectors[0]
	}

	chunks, err := a.store.ListChunks(sources...)
	if err != nil {
		return "", nil, fmt.Errorf("listing chunks: %w", err)
	}

	top := Rank(query, chunks, topK, nil)

	answer, err := a.completer.Complete(ctx, BuildPrompt(question, top))
	if err != nil {
		return "", nil, fmt.Errorf("completing answer: %w", err)
	}
	return answer, top, nil
}

// BuildPrompt renders the retrieved chunks and the literal question into the
// user prompt sent to the completion client. Each chunk appears as
// "[SOURCE - Title] text" with blank lines between entries.
func BuildPrompt(question string, context []models.ScoredChunk) string {
	rendered := make([]string, 0, len(context))
	for _, sc := range context {
		rendered = append(rendered, fmt.Sprintf("[%s - %s] %s",
			strings.ToUpper(sc.Chunk.Source), sc.Chunk.Title, sc.Chunk.Text))
	}
	return fmt.Sprintf("\nContext:\n\n%s\n\nQuestion:\n\n%s\n",
		strings.Join(rendered, "\n\n"), question)
}

// ensureWikipediaContext ingests up to autoWiki unseen articles matching the
// question. Every failure here is logged and skipped: missing context
// degrades the answer, it must not fail the request.
func (a *Answerer) ensureWikipediaContext(ctx context.Context, question string) {
	existing := map[string]bool{}
	if chunks, err := a.store.ListChunks(models.SourceWikipedia); err == nil {
		for _, c := range chunks {
			existing[c.Title] = true
		}
	}

	titles, err := a.wikiSource.Search(ctx, question, a.autoWiki*3)
	if err != nil {
		a.log.Warn("wikipedia search failed", zap.Error(err))
		return
	}

	added := 0
	for _, title := range titles {
		if existing[title] {
			continue
		}
		article, err := a.wikiSource.Fetch(ctx, title)
		if err != nil {
			a.log.Warn("wikipedia fetch failed", zap.String("title", title), zap.Error(err))
			continue
		}
		if existing[article.Title] {
			continue
		}
		err = a.ingestor.Ingest(ctx, models.Document{
			Title:  article.Title,
			Text:   article.Text,
			Source: models.SourceWikipedia,
			URL:    article.URL,
		}, WikiImportChunkCap)
		if err != nil {
			a.log.Warn("wikipedia ingest failed", zap.String("title", article.Title), zap.Error(err))
			continue
		}
		existing[article.Title] = true
		added++
		if added >= a.autoWiki {
			break
		}
	}
}

func sourceAllowed(sources []string, source string) bool {
	if len(sources) == 0 {
		return true
	}
	for _, s := range sources {
		if s == source {
			return true
		}
	}
	return false
}
