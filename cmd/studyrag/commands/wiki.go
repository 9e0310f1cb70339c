// ABOUTME: CLI command to import a Wikipedia article into the corpus
// ABOUTME: Searches for the best match, fetches plain text, and ingests it
package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"studyrag/internal/models"
	"studyrag/internal/rag"
	"studyrag/internal/wiki"
)

// NewWikiCmd creates the wiki command.
func NewWikiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wiki <query>",
		Short: "Import a Wikipedia article",
		Long: `Import the Wikipedia article best matching the query. The article's
plain text is ingested like a user document, tagged with source
"wikipedia" and the article URL, capped at a few chunks.

Examples:
  studyrag wiki "Photosynthesis"
  studyrag wiki "CRISPR gene editing"`,
		Args: cobra.ExactArgs(1),
		RunE: runWiki,
	}
}

func runWiki(cmd *cobra.Command, args []string) error {
	query := args[0]

	c, err := openCore()
	if err != nil {
		return err
	}
	defer c.Close()

	article, err := c.fetcher.Fetch(cmd.Context(), query)
	if errors.Is(err, wiki.ErrPageNotFound) {
		titles, serr := c.fetcher.Search(cmd.Context(), query, 1)
		if serr != nil {
			return fmt.Errorf("searching wikipedia: %w", serr)
		}
		if len(titles) == 0 {
			return fmt.Errorf("no wikipedia article matches %q", query)
		}
		article, err = c.fetcher.Fetch(cmd.Context(), titles[0])
	}
	if err != nil {
		return fmt.Errorf("fetching article: %w", err)
	}

	doc := models.Document{
		Title:  article.Title,
		Text:   article.Text,
		Source: models.SourceWikipedia,
		URL:    article.URL,
	}
	if err := c.ingestor.Ingest(cmd.Context(), doc, rag.WikiImportChunkCap); err != nil {
		return fmt.Errorf("ingesting article: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %q (%s)\n", article.Title, article.URL)
	}
	return nil
}
