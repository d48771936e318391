package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/guidedcare/pathway/internal/api/middleware"
	"github.com/guidedcare/pathway/internal/config"
	"github.com/guidedcare/pathway/internal/domain"
	"github.com/guidedcare/pathway/internal/store"
)

func newClientCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "API client operations",
	}

	cmd.AddCommand(newClientCreateCommand())

	return cmd
}

func newClientCreateCommand() *cobra.Command {
	var (
		name string
		role string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register an API client and print its key",
		Long: `Create an API client row and print the generated key. Only the key
hash is stored; the key itself is shown exactly once.

Reads DATABASE_URL from the environment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClientCreate(cmd.Context(), cmd.OutOrStdout(), name, role)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&name, "name", "", "client display name (required)")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleConsumer), "client role (consumer or advisor)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runClientCreate(ctx context.Context, out io.Writer, name, role string) error {
	if !domain.ValidRole(role) {
		return fmt.Errorf("invalid role %q", role)
	}

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

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("generate API key: %w", err)
	}
	apiKey := "pw_" + hex.EncodeToString(b)

	client := &domain.Client{
		Name:       name,
		Role:       domain.Role(role),
		APIKeyHash: middleware.HashAPIKey(apiKey),
	}
	if err := store.NewClientStore(pool).Create(ctx, client); err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Fprintf(out, "✓ created client %s (%s)\n", client.ID, client.Role)
	fmt.Fprintf(out, "API Key: %s\n", apiKey)
	fmt.Fprintln(out, "(Save this API key - it cannot be retrieved later)")
	fmt.Fprintf(out, "\ncurl -H 'Authorization: Bearer %s' http://localhost:%d/v1/questionnaire\n", apiKey, config.ServerPort())
	return nil
}
