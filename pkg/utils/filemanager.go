// =============================================================================
// Graduation Audit - File Manager Utility
// =============================================================================
//
// This module writes the artifacts of an audit run:
//   - The anonymized payload, alone in the payload directory
//   - The mapping table in the mapping directory, readable by owner only
//   - Identity-bearing artifacts (roster, records, report, logs) in the
//     output directory
//   - Output file naming
//
// SEPARATION:
//   Every artifact except the payload carries student ids or names, so the
//   payload directory never holds anything else. EnsureDirectories refuses a
//   configuration in which any two of the three directories coincide.
//
// =============================================================================

package utils

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/reconcile"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/types"
)

// Artifact names.
const (
	ArtifactRoster  = "roster"
	ArtifactRecords = "records"
	ArtifactPayload = "payload"
	ArtifactMapping = "mapping"
	ArtifactReport  = "report"
	ArtifactSummary = "summary"
	ArtifactErrors  = "errors"
)

// ErrColocatedMapping is returned when the mapping directory is the output
// directory.
var ErrColocatedMapping = errors.New("mapping directory must differ from output directory")

// ErrColocatedPayload is returned when the payload directory is the output
// or mapping directory.
var ErrColocatedPayload = errors.New("payload directory must differ from output and mapping directories")

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles artifact files of one run.
type FileManager struct {
	// OutputDir receives every artifact except the payload and the mapping
	// table.
	OutputDir string

	// PayloadDir receives the anonymized payload only.
	PayloadDir string

	// MappingDir receives the mapping table only.
	MappingDir string

	// FileNameFormat names artifacts; see GenerateOutputFileName.
	FileNameFormat string

	// RunID identifies the run in file names ({run}) and logs.
	RunID string

	// StartedAt is the run start, used for {timestamp}.
	StartedAt time.Time
}

// NewFileManager creates a FileManager with a fresh run id.
func NewFileManager(outputDir, payloadDir, mappingDir, fileNameFormat string) *FileManager {
	return &FileManager{
		OutputDir:      outputDir,
		PayloadDir:     payloadDir,
		MappingDir:     mappingDir,
		FileNameFormat: fileNameFormat,
		RunID:          uuid.New().String(),
		StartedAt:      time.Now(),
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output, payload and mapping directories.
//
// RETURNS:
//   - ErrColocatedMapping if the output and mapping directories coincide.
//   - ErrColocatedPayload if the payload directory coincides with either.
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	if samePath(fm.OutputDir, fm.MappingDir) {
		return fmt.Errorf("%w: %s", ErrColocatedMapping, fm.OutputDir)
	}
	if samePath(fm.PayloadDir, fm.OutputDir) || samePath(fm.PayloadDir, fm.MappingDir) {
		return fmt.Errorf("%w: %s", ErrColocatedPayload, fm.PayloadDir)
	}

	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	if err := os.MkdirAll(fm.PayloadDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.PayloadDir, err)
	}
	if err := os.MkdirAll(fm.MappingDir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.MappingDir, err)
	}
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// ArtifactPath returns the path an artifact is written to. ext replaces the
// extension of the configured format, e.g. ".xlsx" for the report.
func (fm *FileManager) ArtifactPath(artifact, ext string) string {
	dir := fm.OutputDir
	switch artifact {
	case ArtifactPayload:
		dir = fm.PayloadDir
	case ArtifactMapping:
		dir = fm.MappingDir
	}

	name := GenerateOutputFileName(fm.FileNameFormat, map[string]string{
		"artifact":  artifact,
		"run":       fm.RunID,
		"timestamp": fm.StartedAt.Format("20060102_150405"),
	}, ext)
	return filepath.Join(dir, name)
}

// GenerateOutputFileName generates an output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {artifact}  - Artifact name
//               {run}       - Run id
//   - params: Placeholder values; they override the built-in ones.
//   - ext: The extension to end the name with. An existing extension of the
//          formatted name is replaced.
//
// EXAMPLE:
//   format: "{artifact}_{timestamp}.json"
//   params: {"artifact": "payload"}
//   output: "payload_20250115_143022.json"
func GenerateOutputFileName(format string, params map[string]string, ext string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext == "" {
		return result
	}
	if current := filepath.Ext(result); current != "" {
		result = strings.TrimSuffix(result, current)
	}
	return result + ext
}

// =============================================================================
// JSON ARTIFACTS
// =============================================================================

// WriteJSON writes v as indented JSON and returns the file path. The payload
// goes to the payload directory; the mapping artifact goes to the mapping
// directory with owner-only permissions.
func (fm *FileManager) WriteJSON(artifact string, v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", artifact, err)
	}
	data = append(data, '\n')

	perm := os.FileMode(0644)
	if artifact == ArtifactMapping {
		perm = 0600
	}

	path := fm.ArtifactPath(artifact, ".json")
	if err := os.WriteFile(path, data, perm); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", artifact, err)
	}
	return path, nil
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry is one record that did not reconcile cleanly.
type ErrorLogEntry struct {
	StudentID  string
	SourceFile string
	Status     types.Status
	Message    string
}

// ErrorEntries returns one entry per error message of every record that is
// not normal, in record order.
func ErrorEntries(records []types.StudentRecord) []ErrorLogEntry {
	var entries []ErrorLogEntry
	for _, r := range records {
		if r.Status == types.StatusNormal {
			continue
		}
		for _, msg := range r.Errors {
			entries = append(entries, ErrorLogEntry{
				StudentID:  r.StudentID,
				SourceFile: r.SourceFile,
				Status:     r.Status,
				Message:    msg,
			})
		}
	}
	return entries
}

// WriteErrorLog writes error entries to a log file.
//
// RETURNS:
//   - The path to the error log file, or "" when there are no entries.
//   - An error if writing fails.
func (fm *FileManager) WriteErrorLog(entries []ErrorLogEntry) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	logPath := fm.ArtifactPath(ArtifactErrors, ".log")
	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Graduation Audit - Error Log\n"+
		"Run:          %s\n"+
		"Generated:    %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		fm.RunID,
		time.Now().Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  Student ID: %s\n"+
			"  Status:     %s (%s)\n"+
			"  Message:    %s\n",
			i+1,
			entry.StudentID,
			entry.Status.Label(), entry.Status,
			entry.Message)
		if entry.SourceFile != "" {
			fmt.Fprintf(writer, "  File:       %s\n", entry.SourceFile)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}
	return logPath, nil
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary contains summary information about an audit run.
type RunSummary struct {
	StartTime      time.Time
	EndTime        time.Time
	RosterFile     string
	ArchiveFile    string
	RosterEntries  int
	ArchiveEntries int
	Stats          reconcile.Stats
	Artifacts      []string
}

// WriteSummaryLog writes a run summary to a log file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func (fm *FileManager) WriteSummaryLog(summary RunSummary) (string, error) {
	summaryPath := fm.ArtifactPath(ArtifactSummary, ".log")
	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	stats := summary.Stats
	fmt.Fprintf(writer, "Graduation Audit - Run Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Roster:         %s (%d students)\n"+
		"  Archive:        %s (%d workbooks)\n\n"+
		"Statistics:\n"+
		"  Total Records:  %d\n"+
		"  %-14s  %d\n"+
		"  %-14s  %d\n"+
		"  %-14s  %d\n"+
		"  %-14s  %d\n\n",
		fm.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.RosterFile, summary.RosterEntries,
		summary.ArchiveFile, summary.ArchiveEntries,
		stats.Total,
		types.StatusNormal.Label()+":", stats.Matched,
		types.StatusMissingGrades.Label()+":", stats.MissingGrades,
		types.StatusMissingInfo.Label()+":", stats.MissingInfo,
		types.StatusParsingError.Label()+":", stats.Errors)

	if len(summary.Artifacts) > 0 {
		writer.WriteString("Artifacts:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, a := range summary.Artifacts {
			fmt.Fprintf(writer, "  %s\n", a)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
