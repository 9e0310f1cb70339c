// ABOUTME: CLI command to answer a question from the corpus
// ABOUTME: Runs retrieval plus completion and prints answer with citations
package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"studyrag/internal/models"
)

var (
	askTopK    int
	askSources []string
)

// NewAskCmd creates the ask command.
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question against the stored corpus",
		Long: `Ask a question. The question is embedded, the most similar stored
chunks are retrieved, and the completion API answers from that
context only.

Examples:
  studyrag ask "What is photosynthesis?"
  studyrag ask --top-k 5 --sources wikipedia "Who discovered penicillin?"
  studyrag ask --format json "What are enzymes?"`,
		Args: cobra.ExactArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().IntVar(&askTopK, "top-k", 3, "How many chunks to retrieve")
	cmd.Flags().StringSliceVar(&askSources, "sources", nil, "Restrict retrieval to these source tags")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(askTopK, "top-k"); err != nil {
		return err
	}

	c, err := openCore()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.store.IncrementQuestions(); err != nil {
		return fmt.Errorf("recording question: %w", err)
	}

	answer, top, err := c.answerer.Answer(cmd.Context(), args[0], askTopK, askSources)
	if err != nil {
		return fmt.Errorf("answering: %w", err)
	}

	if outputFormat == "json" {
		result := struct {
			Answer  string               `json:"answer"`
			Context []models.ScoredChunk `json:"context"`
		}{Answer: answer, Context: top}
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(answer))

	if len(top) > 0 && !quiet {
		fmt.Fprintln(cmd.OutOrStdout())
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "SCORE\tSOURCE\tTITLE\tPREVIEW\n")
		for _, sc := range top {
			fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\n",
				sc.Score,
				sc.Chunk.Source,
				truncate(sc.Chunk.Title, 25),
				truncate(sc.Chunk.Text, 60))
		}
		w.Flush()
	}
	return nil
}
