package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/i2i-labs/tobi-backend/internal/ingest"
	"github.com/i2i-labs/tobi-backend/internal/progress"
	"github.com/i2i-labs/tobi-backend/internal/vectordb"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index the document corpus",
	Long: `Walks the corpus directory, extracts document text page by page,
and builds the semantic vector store and the keyword page index.
Unchanged documents are skipped, so re-runs are incremental.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		embedder, err := createEmbedderFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}
		vectors, err := vectordb.NewChromemStore(embedder)
		if err != nil {
			return fmt.Errorf("creating vector store: %w", err)
		}
		if err := vectors.Load(cmd.Context(), cfg.DataDir); err != nil && verbose {
			fmt.Fprintf(os.Stderr, "Starting from an empty vector store: %v\n", err)
		}

		ix, database, err := openIndexFromConfig(cfg)
		if err != nil {
			return err
		}
		if database != nil {
			defer database.Close()
		}

		ing := ingest.New(vectors, ix, cfg.Ingest, progress.NewReporter())
		res, err := ing.Run(cmd.Context(), cfg.CorpusDir, cfg.DataDir)
		if err != nil {
			return err
		}

		fmt.Printf("Ingested %d documents (%d pages, %d passages); skipped %d unchanged, removed %d\n",
			res.Files, res.Pages, res.Passages, res.Skipped, res.Removed)
		fmt.Printf("Vector store now holds %d passages\n", vectors.Count())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
