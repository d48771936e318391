package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/guidedcare/pathway/internal/buildconfig"
)

func main() {
	root := &cobra.Command{
		Use:   "pathctl",
		Short: "Operations toolbox for the Pathway backend",
		Long: `pathctl works against the same configuration directory the server
loads at startup. Validate a config push before deploying it, score an
answer file offline, rebuild the FAQ index, or register an API client.`,
		Version:      buildconfig.String(),
		SilenceUsage: true,
	}

	root.AddCommand(newValidateCommand())
	root.AddCommand(newScoreCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newFAQCommand())
	root.AddCommand(newClientCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
