// ABOUTME: Ingestion orchestrator turning titled documents into stored embedded chunks
// ABOUTME: Coordinates chunker, embedding client, and document store
package rag

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"studyrag/internal/models"
)

// DefaultMaxDocChunks caps how many chunks one document contributes, to keep
// embedding costs bounded for very long documents.
const DefaultMaxDocChunks = 10

// Embedder maps a batch of texts to vectors, one per input, in input order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// ChunkStore is the durable chunk collection consumed by the orchestrators.
type ChunkStore interface {
	AppendChunk(chunk models.Chunk) (models.Chunk, error)
	ListChunks(sources ...string) ([]models.Chunk, error)
}

// Ingestor chunks, embeds, and stores documents. It is stateless across
// calls and safe for concurrent use.
type Ingestor struct {
	embedder  Embedder
	store     ChunkStore
	log       *zap.Logger
	maxChars  int
	maxChunks int
}

// NewIngestor creates an Ingestor. maxChars is the soft chunk size cap and
// maxChunks the default per-document chunk cap; zero values select
// DefaultMaxChunkChars and DefaultMaxDocChunks.
func NewIngestor(embedder Embedder, store ChunkStore, log *zap.Logger, maxChars, maxChunks int) *Ingestor {
	if maxChars <= 0 {
		maxChars = DefaultMaxChunkChars
	}
	if maxChunks == 0 {
		maxChunks = DefaultMaxDocChunks
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingestor{
		embedder:  embedder,
		store:     store,
		log:       log,
		maxChars:  maxChars,
		maxChunks: maxChunks,
	}
}

// Ingest splits doc.Text, embeds the surviving chunks in a single batched
// call, and appends one record per chunk. maxChunks overrides the configured
// per-document cap when non-zero; a cap <= 0 disables truncation. Documents
// that produce no non-blank chunks are a no-op. Embedding failures (including
// rate limiting) propagate before anything is stored, so a failed batch never
// commits partial state.
func (in *Ingestor) Ingest(ctx context.Context, doc models.Document, maxChunks int) error {
	var chunks []string
	for _, c := range SplitChunks(doc.Text, in.maxChars) {
		if strings.TrimSpace(c) != "" {
			chunks = append(chunks, c)
		}
	}

	limit := maxChunks
	if limit == 0 {
		limit = in.maxChunks
	}
	if limit > 0 && len(chunks) > limit {
		in.log.Warn("truncating document to chunk cap",
			zap.String("title", doc.Title),
			zap.Int("kept", limit),
			zap.Int("total", len(chunks)))
		chunks = chunks[:limit]
	}

	if len(chunks) == 0 {
		return nil
	}

	embeddings, err := in.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embedding %d chunk(s) of %q: %w", len(chunks), doc.Title, err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch for %q: %d chunks, %d vectors", doc.Title, len(chunks), len(embeddings))
	}

	for i, text := range chunks {
		if _, err := in.store.AppendChunk(models.Chunk{
			Text:      text,
			Embedding: embeddings[i],
			Source:    doc.Source,
			Title:     doc.Title,
			URL:       doc.URL,
		}); err != nil {
			return fmt.Errorf("storing chunk %d of %q: %w", i, doc.Title, err)
		}
	}
	return nil
}
