// ABOUTME: MCP command starts a Model Context Protocol server over stdio
// ABOUTME: Enables LLM agents to ingest documents and ask questions directly
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"studyrag/internal/mcp"
)

// NewMCPCmd creates the MCP command.
func NewMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents.

Runs studyrag as an MCP (Model Context Protocol) server over stdio,
exposing ingest_text, ask, and get_stats tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically launched by the agent host)
  studyrag mcp`,
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	c, err := openCore()
	if err != nil {
		return err
	}

	server := mcpserver.NewMCPServer("studyrag", "0.1.0")
	mcp.RegisterTools(server, mcp.NewHandlers(c.ingestor, c.answerer, c.store))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("studyrag MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, closing store...")
		}
		c.Close()
	case err := <-serverErr:
		c.Close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}
	return nil
}
