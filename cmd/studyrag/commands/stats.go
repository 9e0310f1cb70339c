// ABOUTME: CLI command to show usage statistics
// ABOUTME: Prints question and feedback counters from the local store
package commands

import (
	"encoding/json"
	"fmt"
	"log"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"studyrag/internal/config"
	"studyrag/internal/storage"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show usage statistics",
		Long: `Show usage statistics: questions asked plus feedback totals
split into positive and negative ratings.`,
		RunE: runStats,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	// Stats only needs the store, not the API clients, so a missing API
	// key must not block it.
	if err := godotenv.Load(); err != nil && !quiet {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Questions asked\t%d\n", stats.TotalQuestions)
	fmt.Fprintf(w, "Feedback received\t%d\n", stats.TotalFeedback)
	fmt.Fprintf(w, "  positive\t%d\n", stats.PositiveFeedback)
	fmt.Fprintf(w, "  negative\t%d\n", stats.NegativeFeedback)
	return w.Flush()
}
