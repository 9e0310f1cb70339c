// ABOUTME: MCP tool registration for the studyrag corpus
// ABOUTME: Exposes ingest_text, ask, and get_stats to LLM agents over MCP
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all studyrag tools on the MCP server and returns
// the handler set backing them.
func RegisterTools(s *server.MCPServer, h *Handlers) {
	ingestTool := mcp.NewTool("ingest_text",
		mcp.WithDescription("Store a titled document in the study corpus: the text is chunked, embedded, and indexed for retrieval."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Document title used when citing retrieved chunks"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Full document text"),
		),
		mcp.WithString("source",
			mcp.Description("Source tag, 'user' (default) or 'wikipedia'"),
		),
	)
	s.AddTool(ingestTool, h.IngestText)

	askTool := mcp.NewTool("ask",
		mcp.WithDescription("Answer a question from the study corpus using retrieval-augmented generation. Returns the answer and the cited chunks."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("How many chunks to retrieve (default 3)"),
		),
		mcp.WithString("sources",
			mcp.Description("Comma-separated source filter, e.g. 'user' or 'user,wikipedia'"),
		),
	)
	s.AddTool(askTool, h.Ask)

	statsTool := mcp.NewTool("get_stats",
		mcp.WithDescription("Usage statistics: questions asked and feedback totals."),
	)
	s.AddTool(statsTool, h.GetStats)
}
