package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/guidedcare/pathway/internal/buildconfig"
	"github.com/guidedcare/pathway/internal/domain"
	"github.com/guidedcare/pathway/internal/scoring"
)

func newScoreCommand() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "score <answers-file>",
		Short: "Score an answer file offline",
		Long: `Run the scoring pipeline over a JSON answer file without a server or
database and print the resulting outcome contract.

The file maps question IDs to answers, e.g.:

  {
    "memory_changes": {"values": ["constant"]},
    "adl_help": {"values": ["bathing", "meals"]}
  }`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd.OutOrStdout(), configDir, args[0])
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&configDir, "config", "config", "configuration directory")

	return cmd
}

func runScore(out io.Writer, dir, answersFile string) error {
	data, err := os.ReadFile(answersFile)
	if err != nil {
		return fmt.Errorf("read answers file: %w", err)
	}

	var answers domain.AnswerSet
	if err := json.Unmarshal(data, &answers); err != nil {
		return fmt.Errorf("parse answers file: %w", err)
	}

	engine := scoring.NewEngine(dir, buildconfig.Version(), zap.NewNop())
	if err := engine.Load(); err != nil {
		return fmt.Errorf("load scoring configuration: %w", err)
	}

	contract, err := engine.Score(answers)
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}

	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)

	cyan.Fprintf(out, "=== Outcome ===\n")
	fmt.Fprintf(out, "Recommendation: ")
	green.Fprintf(out, "%s\n", contract.Recommendation)
	fmt.Fprintf(out, "Confidence:     %.2f\n", contract.Confidence)
	fmt.Fprintf(out, "Channel:        %s\n", contract.Routing.Channel)
	if len(contract.Flags) > 0 {
		fmt.Fprintf(out, "Flags:          %v\n", contract.Flags)
	}

	pretty, err := json.MarshalIndent(contract, "", "  ")
	if err != nil {
		return fmt.Errorf("encode contract: %w", err)
	}
	cyan.Fprintf(out, "\n=== Contract ===\n")
	fmt.Fprintf(out, "%s\n", pretty)

	return nil
}
