// ABOUTME: Paragraph-greedy text chunker for embedding
// ABOUTME: Splits documents on line breaks and accumulates up to a soft size cap
package rag

import "strings"

// DefaultMaxChunkChars is the default soft cap on chunk size.
const DefaultMaxChunkChars = 500

// SplitChunks splits text into chunks of at most maxChars characters, on
// paragraph (line break) boundaries. The cap is soft: a single paragraph
// longer than maxChars becomes its own oversized chunk rather than being
// split mid-paragraph. Paragraph order is preserved and paragraphs inside a
// chunk are rejoined with "\n", so rejoining all chunks reconstructs the
// input. Empty input yields one empty chunk; callers filter blanks before
// embedding.
func SplitChunks(text string, maxChars int) []string {
	var chunks []string
	var current []string
	currentLen := 0

	for _, paragraph := range strings.Split(text, "\n") {
		if currentLen+len(paragraph) > maxChars && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = nil
			currentLen = 0
		}
		current = append(current, paragraph)
		currentLen += len(paragraph)
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}
	return chunks
}
