// =============================================================================
// Graduation Audit - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (gradaudit)
//   ├── reconcileCmd (gradaudit reconcile)
//   ├── summarizeCmd (gradaudit summarize)
//   ├── validateCmd  (gradaudit validate)
//   └── versionCmd   (gradaudit version)
//
// CONFIGURATION:
//   The root command owns the global flags (--config, --verbose) and the
//   helpers every subcommand uses to load configuration, vocabulary and the
//   logger.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/config"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gradaudit",
	Short: "Graduation Audit - Reconcile the student roster with transcript exports",
	Long: `Graduation Audit pairs the master student roster (학생정보 엑셀) with the
archive of per-student transcripts (성적정보_<학번>.xlsx) exported from the
registrar system, classifies every pairing and prepares an anonymized
payload for graduation analysis.

Key Features:
  - Roster from XLSX or CSV (UTF-8 or CP949)
  - Transcripts from a ZIP archive or an extracted directory
  - Status per student: 매칭 완료, 성적 누락, 정보 누락, 분석 오류
  - Credit and GPA summaries with a configurable category vocabulary
  - Anonymized payload with a separately stored re-identification mapping

Example Usage:
  gradaudit reconcile --roster students.xlsx --archive grades.zip
  gradaudit reconcile --roster students.csv --archive ./grades --dry-run
  gradaudit summarize --transcript 성적정보_2021001.xlsx
  gradaudit validate --config ./config.yaml`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig loads the main configuration. When --config was not given and
// the default file does not exist, the built-in defaults are used.
func loadConfig(cmd *cobra.Command) (*config.MainConfig, error) {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.DefaultMainConfig(), nil
	}
	return nil, fmt.Errorf("failed to load main config: %w", err)
}

// newLogger builds the run logger from the configuration. The returned
// function closes the log file, if any.
func newLogger(cfg *config.MainConfig, stderr io.Writer) (logger.Logger, func() error, error) {
	level := logger.ParseLevel(cfg.LogLevel)
	if verbose {
		level = logger.LevelDebug
	}

	if cfg.LogFile == "" {
		return logger.New(stderr, level), func() error { return nil }, nil
	}

	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logger.New(file, level), file.Close, nil
}
