// =============================================================================
// Graduation Audit - Configuration Module
// =============================================================================
//
// This module loads the two configuration inputs of the tool:
//
//   1. Main Config (config.yaml): directories, artifact naming, logging and
//      processing switches for a reconciliation run.
//   2. Vocabulary (vocabulary.yaml / vocabulary.toml): the completion-category
//      labels, subcategory tag keywords and grade table used by the credit
//      aggregator. See vocabulary.go.
//
// Both files are optional for the CLI; built-in defaults describe the
// Dongguk University export format.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the settings of a reconciliation run.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// OutputDir receives the identity-bearing artifacts: the roster index,
	// the full record set, the audit workbook and the run logs.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// PayloadDir receives the anonymized payload and nothing else, so the
	// directory can be shared without exposing student ids or names. It must
	// differ from OutputDir and MappingDir.
	// Default: "./payload"
	PayloadDir string `yaml:"payload_dir"`

	// MappingDir receives the pseudonym -> identity mapping table. It must not
	// be the same directory as OutputDir: the mapping is handled under a
	// different access policy than the anonymized payload.
	// Default: "./mapping"
	MappingDir string `yaml:"mapping_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an optional path; when empty logs go to stderr.
	LogFile string `yaml:"log_file"`

	// LogLevel controls verbosity: "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// FileNameFormat defines artifact file names.
	// Placeholders:
	//   {artifact}  - roster, records, payload, mapping
	//   {timestamp} - run start (YYYYMMDD_HHMMSS)
	//   {uuid}      - a random UUID per artifact
	//   {run}       - the run id shared by all artifacts of one run
	// Default: "{artifact}_{timestamp}_{uuid}.json"
	FileNameFormat string `yaml:"file_name_format"`

	// SortOutput sorts records by student id before display and export.
	SortOutput bool `yaml:"sort_output"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the number of transcripts decoded in parallel.
	// Record order is the archive order regardless of this value.
	// Default: 1
	MaxConcurrency int `yaml:"max_concurrency"`

	// StrictDuplicates turns the second and later archive entries carrying an
	// already seen student id into parsing_error records.
	// Default: false (each entry is processed independently)
	StrictDuplicates bool `yaml:"strict_duplicates"`

	// RosterEncoding is the character encoding of CSV rosters.
	// Valid values: "UTF-8", "CP949", "EUC-KR"
	// Default: "UTF-8"
	RosterEncoding string `yaml:"roster_encoding"`

	// VocabularyFile points to a YAML or TOML category vocabulary.
	// When empty the built-in vocabulary is used.
	VocabularyFile string `yaml:"vocabulary_file"`
}

// DefaultMainConfig returns the configuration used when no file is present.
func DefaultMainConfig() *MainConfig {
	cfg := &MainConfig{}
	applyMainConfigDefaults(cfg)
	return cfg
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct with defaults applied.
//   - An error if the file cannot be read, parsed or validated. A missing
//     file is reported with an error wrapping fs.ErrNotExist.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Relative vocabulary paths are resolved against the config file.
	if config.VocabularyFile != "" && !filepath.IsAbs(config.VocabularyFile) {
		config.VocabularyFile = filepath.Join(filepath.Dir(configPath), config.VocabularyFile)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.PayloadDir == "" {
		config.PayloadDir = "./payload"
	}
	if config.MappingDir == "" {
		config.MappingDir = "./mapping"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.FileNameFormat == "" {
		config.FileNameFormat = "{artifact}_{timestamp}_{uuid}.json"
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 1
	}
	if config.RosterEncoding == "" {
		config.RosterEncoding = "UTF-8"
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *MainConfig) Validate() error {
	if samePath(c.OutputDir, c.MappingDir) {
		return fmt.Errorf("%w: mapping_dir must differ from output_dir (%s)", ErrInvalidConfig, c.MappingDir)
	}
	if samePath(c.PayloadDir, c.OutputDir) {
		return fmt.Errorf("%w: payload_dir must differ from output_dir (%s)", ErrInvalidConfig, c.PayloadDir)
	}
	if samePath(c.PayloadDir, c.MappingDir) {
		return fmt.Errorf("%w: payload_dir must differ from mapping_dir (%s)", ErrInvalidConfig, c.PayloadDir)
	}

	switch strings.ToUpper(strings.TrimSpace(c.RosterEncoding)) {
	case "UTF-8", "UTF8", "CP949", "EUC-KR", "EUCKR":
	default:
		return fmt.Errorf("%w: unsupported roster_encoding %q", ErrInvalidConfig, c.RosterEncoding)
	}

	if !strings.Contains(c.FileNameFormat, "{artifact}") {
		return fmt.Errorf("%w: file_name_format must contain {artifact}", ErrInvalidConfig)
	}

	return nil
}

// samePath compares two directory settings after cleaning.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
