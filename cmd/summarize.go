// =============================================================================
// Graduation Audit - Summarize Command
// =============================================================================
//
// This file defines the 'summarize' command, which prints the credit summary
// of a single transcript workbook.
//
// COMMAND USAGE:
//   gradaudit summarize --transcript FILE [--json]
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/config"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/credits"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/transcript"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/types"
)

var (
	transcriptPath string
	summaryJSON    bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Print the credit summary of one transcript",
	Long: `The summarize command parses one transcript workbook and prints the
credits per category bucket, the tag overlay (MSC), English course counts
and the GPA. Categories are mapped with the configured vocabulary.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		vocab, err := config.LoadVocabulary(cfg.VocabularyFile)
		if err != nil {
			return fmt.Errorf("failed to load vocabulary: %w", err)
		}

		data, err := os.ReadFile(transcriptPath)
		if err != nil {
			return fmt.Errorf("failed to read transcript: %w", err)
		}
		grades, err := transcript.Parse(data)
		if err != nil {
			return err
		}

		summary := credits.Summarize(grades, vocab)
		if summaryJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		}

		printSummary(cmd.OutOrStdout(), transcriptPath, len(grades), summary)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringVar(&transcriptPath, "transcript", "", "Path to a transcript workbook (.xlsx)")
	summarizeCmd.Flags().BoolVar(&summaryJSON, "json", false, "Print the summary as JSON")

	summarizeCmd.MarkFlagRequired("transcript")
}

func printSummary(out io.Writer, path string, courses int, s types.CreditSummary) {
	fmt.Fprintf(out, "Transcript:      %s (%d courses)\n", path, courses)
	fmt.Fprintf(out, "Total credits:   %g\n", s.Total)
	fmt.Fprintf(out, "  전공필수       %g\n", s.MajorRequired)
	fmt.Fprintf(out, "  전공선택       %g\n", s.MajorElective)
	fmt.Fprintf(out, "  공통교양       %g\n", s.GeneralRequired)
	fmt.Fprintf(out, "  일반교양       %g\n", s.GeneralElective)
	fmt.Fprintf(out, "  자유선택       %g\n", s.FreeElective)
	fmt.Fprintf(out, "MSC:             수학 %g / 과학 %g / 전산 %g\n", s.Math, s.Science, s.Computing)
	fmt.Fprintf(out, "English courses: %d (major %d)\n", s.EnglishCourses, s.MajorEnglish)
	fmt.Fprintf(out, "GPA:             %.2f\n", s.GPA)
}
