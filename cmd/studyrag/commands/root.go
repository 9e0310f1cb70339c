// ABOUTME: Cobra root command and shared wiring for the studyrag CLI
// ABOUTME: Builds config, store, and clients used by the subcommands
package commands

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"studyrag/internal/config"
	"studyrag/internal/llm"
	"studyrag/internal/rag"
	"studyrag/internal/storage"
	"studyrag/internal/wiki"
)

var (
	quiet        bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "studyrag",
	Short: "RAG study assistant over your own documents",
	Long: `studyrag ingests text and PDF documents plus Wikipedia articles,
stores embedded chunks locally, and answers questions from the
most similar chunks via a chat-completion API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "Output format: table or json")

	rootCmd.AddCommand(NewIngestCmd())
	rootCmd.AddCommand(NewAskCmd())
	rootCmd.AddCommand(NewWikiCmd())
	rootCmd.AddCommand(NewStatsCmd())
	rootCmd.AddCommand(NewMCPCmd())
}

// core bundles everything a command needs to run ingestion or answering.
type core struct {
	cfg      *config.Config
	store    *storage.Store
	ingestor *rag.Ingestor
	answerer *rag.Answerer
	fetcher  *wiki.Fetcher
}

// openCore loads .env and config, opens the store, and wires the
// orchestrators. Callers must Close the returned core.
func openCore() (*core, error) {
	if err := godotenv.Load(); err != nil && !quiet {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	client, err := llm.NewClient(llm.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		EmbeddingModel: cfg.EmbeddingModel,
		ChatModel:      cfg.ChatModel,
		Timeout:        cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	fetcher := wiki.NewFetcher("", cfg.Timeout)
	ingestor := rag.NewIngestor(client, store, zap.NewNop(), cfg.ChunkMaxChars, cfg.MaxDocChunks)
	answerer := rag.NewAnswerer(client, client, store, zap.NewNop())
	if cfg.AutoWikiArticles > 0 {
		answerer.WithAutoWiki(fetcher, ingestor, cfg.AutoWikiArticles)
	}

	return &core{
		cfg:      cfg,
		store:    store,
		ingestor: ingestor,
		answerer: answerer,
		fetcher:  fetcher,
	}, nil
}

func (c *core) Close() {
	_ = c.store.Close()
}
