// ABOUTME: Core records for the document corpus
// ABOUTME: Defines Chunk, Document, and ScoredChunk structures
package models

import "time"

// Source tags distinguishing chunk provenance
const (
	SourceUser      = "user"
	SourceWikipedia = "wikipedia"
)

// Chunk is a stored, embedded segment of a document. Chunks are append-only:
// once written they are never updated or deleted.
type Chunk struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding"`
	Source    string    `json:"source"`
	Title     string    `json:"title"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Document is a titled body of text handed to ingestion. URL is set for
// documents fetched from the web (Wikipedia imports).
type Document struct {
	Title  string `json:"title"`
	Text   string `json:"text"`
	Source string `json:"source"`
	URL    string `json:"url,omitempty"`
}

// ScoredChunk pairs a retrieved chunk with its similarity score. It exists
// only on the answer path and is never persisted.
type ScoredChunk struct {
	Score float64 `json:"score"`
	Chunk Chunk   `json:"chunk"`
}
