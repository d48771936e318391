package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/guidedcare/pathway/internal/rates"
	"github.com/guidedcare/pathway/internal/scoring"
)

func newValidateCommand() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration directory",
		Long: `Load the questionnaire, scoring table, blurbs and rate tables the way
the server does at startup and report what a deploy would see.

Exit code: 0 if valid, 1 if errors found`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), configDir)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&configDir, "config", "config", "configuration directory")

	return cmd
}

func runValidate(out io.Writer, dir string) error {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	errCount := 0

	bundle, err := scoring.LoadBundle(dir)
	if err != nil {
		red.Fprintf(out, "✗ scoring configuration: %v\n", err)
		errCount++
	} else {
		green.Fprintf(out, "✓ scoring configuration\n")
		fmt.Fprintf(out, "  questions:       %d\n", bundle.Schema.Len())
		fmt.Fprintf(out, "  scoring entries: %d\n", bundle.Table.Len())
		fmt.Fprintf(out, "  flags:           %d\n", len(bundle.Flags))
		fmt.Fprintf(out, "  blurbs:          %d\n", len(bundle.Blurbs))
		fmt.Fprintf(out, "  digest:          %s\n", bundle.Digest)
	}

	va, err := rates.LoadVATable(filepath.Join(dir, rates.VAFileName))
	if err != nil {
		red.Fprintf(out, "✗ VA rate table: %v\n", err)
		errCount++
	} else {
		green.Fprintf(out, "✓ VA rate table\n")
		fmt.Fprintf(out, "  entries:    %d\n", va.Len())
		fmt.Fprintf(out, "  dependents: %v\n", va.Categories())
	}

	home, err := rates.LoadHomeCosts(filepath.Join(dir, rates.HomeCostsFileName))
	if err != nil {
		red.Fprintf(out, "✗ home cost table: %v\n", err)
		errCount++
	} else {
		green.Fprintf(out, "✓ home cost table\n")
		fmt.Fprintf(out, "  zips: %d\n", home.Len())
	}

	if errCount > 0 {
		return fmt.Errorf("validation failed with %d error(s)", errCount)
	}

	green.Fprintf(out, "\n✓ Configuration is valid!\n")
	return nil
}
