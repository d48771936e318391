package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/guidedcare/pathway/internal/config"
	"github.com/guidedcare/pathway/internal/faq"
	"github.com/guidedcare/pathway/internal/store"
)

func newFAQCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faq",
		Short: "FAQ corpus operations",
	}

	cmd.AddCommand(newFAQIndexCommand())

	return cmd
}

func newFAQIndexCommand() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Rebuild the FAQ search index",
		Long: `Load the markdown corpus, rebuild the term index and replace the
stored document vectors. Reads DATABASE_URL from the environment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFAQIndex(cmd.Context(), cmd.OutOrStdout(), configDir)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&configDir, "config", "config", "configuration directory")

	return cmd
}

func runFAQIndex(ctx context.Context, out io.Writer, configDir string) error {
	_ = config.Load()

	dbURL := config.DatabaseURL()
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	corpusDir := filepath.Join(configDir, "faq")
	svc := faq.NewService(store.NewFAQStore(pool), corpusDir, zap.NewNop())

	n, err := svc.Reindex(ctx)
	if err != nil {
		return fmt.Errorf("index corpus: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Fprintf(out, "✓ indexed %d document(s) from %s\n", n, corpusDir)
	return nil
}
