// =============================================================================
// Graduation Audit - Reconcile Command
// =============================================================================
//
// This file defines the 'reconcile' command, which runs a full audit.
//
// COMMAND USAGE:
//   gradaudit reconcile --roster FILE --archive PATH [flags]
//
// FLAGS:
//   --roster   : Master roster (.xlsx, or .csv)
//   --archive  : Transcript archive (.zip) or an extracted directory
//   --dry-run  : Reconcile and print statistics without writing artifacts
//   --sort     : Sort records by student id for display and export
//   --search   : Print the records whose id, name or major contains TERM
//
// PROCESSING PIPELINE:
//   1. Load configuration and vocabulary
//   2. Open the transcript archive
//   3. Parse the roster and reconcile (session: upload -> processing -> preview)
//   4. Print statistics
//   5. Write artifacts:
//      a. payload                                  -> payload_dir
//      b. mapping                                  -> mapping_dir
//      c. roster, records, report.xlsx, logs       -> output_dir
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/config"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/csvparser"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/logger"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/payload"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/reconcile"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/roster"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/session"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/transcript"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/types"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/xlsxwriter"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	rosterPath  string
	archivePath string
	dryRun      bool
	sortOutput  bool
	searchTerm  string
)

// =============================================================================
// RECONCILE COMMAND DEFINITION
// =============================================================================

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the roster with the transcript archive",
	Long: `The reconcile command matches every roster entry with its transcript
workbook and classifies each student:

  매칭 완료 (normal)          roster entry and transcript found
  성적 누락 (missing_grades)  roster entry without transcript
  정보 누락 (missing_info)    transcript without roster entry
  분석 오류 (parsing_error)   transcript unreadable or badly named

A roster that cannot be read aborts the run. Problems with single
transcripts are recorded on the student and the run continues.

Unless --dry-run is given, the anonymized payload is written alone to
payload_dir, the re-identification mapping to mapping_dir, and every
identity-bearing artifact (roster, records, report, logs) to output_dir.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVar(&rosterPath, "roster", "", "Path to the master roster (.xlsx or .csv)")
	reconcileCmd.Flags().StringVar(&archivePath, "archive", "", "Path to the transcript archive (.zip) or directory")
	reconcileCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Reconcile without writing artifacts")
	reconcileCmd.Flags().BoolVar(&sortOutput, "sort", false, "Sort records by student id")
	reconcileCmd.Flags().StringVar(&searchTerm, "search", "", "Print records whose id, name or major contains TERM")

	reconcileCmd.MarkFlagRequired("roster")
	reconcileCmd.MarkFlagRequired("archive")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runReconcile(cmd *cobra.Command) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	fmt.Fprintln(out, "=== Graduation Audit ===")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	vocab, err := config.LoadVocabulary(cfg.VocabularyFile)
	if err != nil {
		return fmt.Errorf("failed to load vocabulary: %w", err)
	}

	log, closeLog, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	// =========================================================================
	// STEP 2: OPEN ARCHIVE
	// =========================================================================

	if !utils.FileExists(rosterPath) {
		return fmt.Errorf("roster file not found: %s", rosterPath)
	}

	archive, err := openArchive(archivePath)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 3: RECONCILE
	// =========================================================================

	sess := session.New(
		session.WithLogger(log),
		session.WithEngineOptions(
			reconcile.WithConcurrency(cfg.MaxConcurrency),
			reconcile.WithStrictDuplicates(cfg.StrictDuplicates),
			reconcile.WithLogger(log),
		),
		session.WithObserver(func(p session.Progress) {
			fmt.Fprintf(out, "\rProcessing transcripts... %d/%d (%d%%)", p.Processed, p.Total, p.Percent())
		}),
	)

	settings := csvparser.Settings{Delimiter: ",", Encoding: cfg.RosterEncoding}
	loadRoster := func() (*roster.Index, error) {
		return roster.ParseFile(rosterPath, settings)
	}

	records, err := sess.Process(context.Background(), loadRoster, archive)
	if err != nil {
		return fmt.Errorf("failed to reconcile: %w", err)
	}
	fmt.Fprintln(out)

	if sortOutput || cfg.SortOutput {
		records = reconcile.SortByStudentID(records)
	}

	// =========================================================================
	// STEP 4: PRINT STATISTICS
	// =========================================================================

	stats := sess.Stats()
	printStats(out, stats)

	if searchTerm != "" {
		printRecords(out, reconcile.Filter(records, searchTerm))
	}

	if dryRun {
		fmt.Fprintln(out, "\nDry run: no files written.")
		return nil
	}

	// =========================================================================
	// STEP 5: WRITE ARTIFACTS
	// =========================================================================

	fm := utils.NewFileManager(cfg.OutputDir, cfg.PayloadDir, cfg.MappingDir, cfg.FileNameFormat)
	fm.StartedAt = startTime
	artifacts, err := writeArtifacts(fm, sess.Roster(), records, xlsxwriter.Options{Vocabulary: vocab}, log)
	if err != nil {
		return err
	}

	summaryPath, err := fm.WriteSummaryLog(utils.RunSummary{
		StartTime:      startTime,
		EndTime:        time.Now(),
		RosterFile:     rosterPath,
		ArchiveFile:    archivePath,
		RosterEntries:  sess.Roster().Len(),
		ArchiveEntries: sess.Progress().Total,
		Stats:          stats,
		Artifacts:      artifacts,
	})
	if err != nil {
		return err
	}
	artifacts = append(artifacts, summaryPath)

	fmt.Fprintln(out, "\nArtifacts:")
	for _, a := range artifacts {
		fmt.Fprintf(out, "  %s\n", a)
	}
	fmt.Fprintf(out, "Time elapsed:    %s\n", time.Since(startTime).Round(time.Millisecond))
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// openArchive opens a zip file or an extracted directory.
func openArchive(path string) (transcript.Archive, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("archive not found: %w", err)
	}

	if info.IsDir() {
		archive, err := transcript.OpenFS(os.DirFS(path))
		if err != nil {
			return nil, err
		}
		return archive, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	// The zip reader keeps reading entries from file, so it stays open for
	// the life of the process.
	archive, err := transcript.OpenZip(file, info.Size())
	if err != nil {
		file.Close()
		return nil, err
	}
	return archive, nil
}

// writeArtifacts writes every artifact and returns their paths.
func writeArtifacts(fm *utils.FileManager, index *roster.Index, records []types.StudentRecord, reportOpts xlsxwriter.Options, log logger.Logger) ([]string, error) {
	if err := fm.EnsureDirectories(); err != nil {
		return nil, err
	}

	var paths []string
	jsonArtifacts := []struct {
		name  string
		value interface{}
	}{
		{utils.ArtifactRoster, index},
		{utils.ArtifactRecords, records},
		{utils.ArtifactPayload, payload.ToAnonymized(records)},
		{utils.ArtifactMapping, payload.ToMappingTable(records)},
	}
	for _, a := range jsonArtifacts {
		path, err := fm.WriteJSON(a.name, a.value)
		if err != nil {
			return nil, err
		}
		log.Info("Wrote %s: %s", a.name, path)
		paths = append(paths, path)
	}

	reportPath := fm.ArtifactPath(utils.ArtifactReport, ".xlsx")
	if err := xlsxwriter.WriteFile(reportPath, records, reportOpts); err != nil {
		return nil, err
	}
	paths = append(paths, reportPath)

	errorsPath, err := fm.WriteErrorLog(utils.ErrorEntries(records))
	if err != nil {
		return nil, err
	}
	if errorsPath != "" {
		paths = append(paths, errorsPath)
	}

	return paths, nil
}

func printStats(out io.Writer, stats reconcile.Stats) {
	fmt.Fprintln(out, "\n=== Reconciliation Complete ===")
	fmt.Fprintf(out, "Total students:  %d\n", stats.Total)
	for _, s := range types.Statuses {
		fmt.Fprintf(out, "  %-12s   %d\n", s.Label(), stats.Count(s))
	}
}

func printRecords(out io.Writer, records []types.StudentRecord) {
	fmt.Fprintf(out, "\nSearch results (%d):\n", len(records))
	for _, r := range records {
		fmt.Fprintf(out, "  %-10s %-10s %-16s %-8s %6.1f  %s\n",
			r.StudentID, r.Name, r.Major, r.Status.Label(), r.TotalCredits, sourceName(r.SourceFile))
	}
}

// sourceName is the file name of a record's workbook, or "" for roster-only
// records.
func sourceName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}
