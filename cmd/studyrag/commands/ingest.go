// ABOUTME: CLI command to ingest a text or PDF file into the corpus
// ABOUTME: Chunks, embeds, and stores the document against the local database
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"studyrag/internal/models"
	"studyrag/internal/pdf"
)

var (
	ingestTitle     string
	ingestSource    string
	ingestMaxChunks int
)

// NewIngestCmd creates the ingest command.
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a text or PDF document",
		Long: `Ingest a document into the study corpus.

The file is chunked on paragraph boundaries, embedded in one batched
API call, and stored locally. PDF files (by .pdf extension) are
converted to plain text first.

Examples:
  studyrag ingest notes.txt
  studyrag ingest --title "Biology 101" --max-chunks 20 chapter1.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().StringVar(&ingestTitle, "title", "", "Document title (defaults to the file name)")
	cmd.Flags().StringVar(&ingestSource, "source", models.SourceUser, "Source tag: user or wikipedia")
	cmd.Flags().IntVar(&ingestMaxChunks, "max-chunks", 0, "Per-document chunk cap (0 = configured default, negative = no cap)")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]

	if ingestSource != models.SourceUser && ingestSource != models.SourceWikipedia {
		return fmt.Errorf("unknown source %q", ingestSource)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	text := string(data)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err = pdf.ExtractText(data)
		if err != nil {
			return fmt.Errorf("extracting pdf text: %w", err)
		}
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%s contains no text", path)
	}

	title := ingestTitle
	if title == "" {
		title = filepath.Base(path)
	}

	c, err := openCore()
	if err != nil {
		return err
	}
	defer c.Close()

	doc := models.Document{Title: title, Text: text, Source: ingestSource}
	if err := c.ingestor.Ingest(cmd.Context(), doc, ingestMaxChunks); err != nil {
		return fmt.Errorf("ingesting %s: %w", path, err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Ingested %q\n", title)
	}
	return nil
}
