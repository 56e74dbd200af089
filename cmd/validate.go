// =============================================================================
// Graduation Audit - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the main
// configuration and the category vocabulary without processing any input.
//
// COMMAND USAGE:
//   gradaudit validate [--config FILE]
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and vocabulary",
	Long: `The validate command loads the main configuration and the category
vocabulary it references, applies defaults and reports the first problem
found. Nothing is read from or written to the data directories.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		vocab, err := config.LoadVocabulary(cfg.VocabularyFile)
		if err != nil {
			return fmt.Errorf("failed to load vocabulary: %w", err)
		}

		vocabSource := cfg.VocabularyFile
		if vocabSource == "" {
			vocabSource = "(built-in)"
		}

		fmt.Fprintln(out, "Configuration is valid.")
		fmt.Fprintf(out, "  Output directory:  %s\n", cfg.OutputDir)
		fmt.Fprintf(out, "  Payload directory: %s\n", cfg.PayloadDir)
		fmt.Fprintf(out, "  Mapping directory: %s\n", cfg.MappingDir)
		fmt.Fprintf(out, "  Concurrency:       %d\n", cfg.MaxConcurrency)
		fmt.Fprintf(out, "  Strict duplicates: %t\n", cfg.StrictDuplicates)
		fmt.Fprintf(out, "  Roster encoding:   %s\n", cfg.RosterEncoding)
		fmt.Fprintf(out, "  Vocabulary:        %s (%d categories, %d tags, %d pass grades)\n",
			vocabSource, len(vocab.Categories), len(vocab.Tags), len(vocab.PassGrades))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
