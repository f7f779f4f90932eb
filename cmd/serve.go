package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/i2i-labs/tobi-backend/internal/blobstore"
	"github.com/i2i-labs/tobi-backend/internal/chat"
	"github.com/i2i-labs/tobi-backend/internal/compose"
	"github.com/i2i-labs/tobi-backend/internal/ingest"
	"github.com/i2i-labs/tobi-backend/internal/progress"
	"github.com/i2i-labs/tobi-backend/internal/retrieval"
	"github.com/i2i-labs/tobi-backend/internal/runtimekb"
	"github.com/i2i-labs/tobi-backend/internal/server"
	"github.com/i2i-labs/tobi-backend/internal/vectordb"
)

var allowAllOrigins bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat backend",
	Long: `Starts the websocket chat server. Answers stream over /ws, source
documents are served under /docs/, and POST /admin/sync re-reads the
knowledge files and re-ingests the corpus without a restart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := blobstore.NewFSStore(cfg.CorpusDir)
		if err != nil {
			return fmt.Errorf("opening corpus store: %w", err)
		}
		links := blobstore.NewLinks(cfg.PublicBaseURL, cfg.LinkSecret,
			time.Duration(cfg.LinkTTLMinutes)*time.Minute)
		kb := runtimekb.NewCache(store, cfg.RuntimeKBKey, cfg.PersonalKBKey)

		embedder, err := createEmbedderFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}
		vectors, err := vectordb.NewChromemStore(embedder)
		if err != nil {
			return fmt.Errorf("creating vector store: %w", err)
		}
		if err := vectors.Load(cmd.Context(), cfg.DataDir); err != nil {
			// The store may simply not exist yet.
			fmt.Fprintf(os.Stderr, "Warning: could not load vector store from %s: %v\n", cfg.DataDir, err)
			fmt.Fprintf(os.Stderr, "Retrieval will return nothing. Run `tobi ingest` first.\n")
		}

		provider, err := createLLMProviderFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating completion provider: %w", err)
		}

		ix, database, err := openIndexFromConfig(cfg)
		if err != nil {
			return err
		}
		if database != nil {
			defer database.Close()
		}

		retriever := retrieval.NewRetriever(vectors, links, cfg.Retrieval)
		composer := compose.New(provider, retriever, kb, cfg)
		dispatcher := chat.NewDispatcher(kb, composer, ix, links, store)

		syncFn := func(ctx context.Context) error {
			kb.Refresh()
			ing := ingest.New(vectors, ix, cfg.Ingest, progress.Silent{})
			_, err := ing.Run(ctx, cfg.CorpusDir, cfg.DataDir)
			return err
		}

		srv := server.New(server.Config{
			Port:     cfg.Port,
			AllowAll: allowAllOrigins,
		}, dispatcher, store, links, syncFn)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&allowAllOrigins, "allow-all-origins", false,
		"allow websocket and CORS requests from any origin")
	rootCmd.AddCommand(serveCmd)
}
