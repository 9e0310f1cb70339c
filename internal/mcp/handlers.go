// ABOUTME: MCP tool handler implementations for studyrag
// ABOUTME: Bridges tool calls onto the ingestion and answer orchestrators
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"studyrag/internal/models"
	"studyrag/internal/rag"
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
	Stats() (models.Stats, error)
}

// Handlers contains the handler functions for all MCP tools.
type Handlers struct {
	ingestor Ingestor
	answerer Answerer
	usage    UsageStore
}

// NewHandlers builds the MCP handler set.
func NewHandlers(ingestor Ingestor, answerer Answerer, usage UsageStore) *Handlers {
	return &Handlers{ingestor: ingestor, answerer: answerer, usage: usage}
}

// IngestText handles the ingest_text tool.
func (h *Handlers) IngestText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title argument is required and must be a string"), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}
	source := request.GetString("source", models.SourceUser)
	if source != models.SourceUser && source != models.SourceWikipedia {
		return mcp.NewToolResultError(fmt.Sprintf("unknown source %q", source)), nil
	}

	err = h.ingestor.Ingest(ctx, models.Document{Title: title, Text: text, Source: source}, 0)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ingestion failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Stored %q in the corpus.", title)), nil
}

// Ask handles the ask tool.
func (h *Handlers) Ask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question argument is required and must be a string"), nil
	}
	topK := request.GetInt("top_k", rag.DefaultTopK)

	var sources []string
	if raw := request.GetString("sources", ""); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				sources = append(sources, s)
			}
		}
	}

	if err := h.usage.IncrementQuestions(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to record question: %v", err)), nil
	}

	answer, top, err := h.answerer.Answer(ctx, question, topK, sources)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("answering failed: %v", err)), nil
	}

	result := struct {
		Answer  string               `json:"answer"`
		Context []models.ScoredChunk `json:"context"`
	}{Answer: answer, Context: top}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// GetStats handles the get_stats tool.
func (h *Handlers) GetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.usage.Stats()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read stats: %v", err)), nil
	}
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode stats: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
