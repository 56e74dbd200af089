// =============================================================================
// Graduation Audit - Reconciliation Engine
// =============================================================================
//
// The engine pairs roster entries with transcript workbooks by student id and
// classifies every pairing.
//
// ALGORITHM:
//   Pass 1, for each workbook entry in archive order:
//     - name without a student id   -> parsing_error (sentinel id)
//     - workbook cannot be decoded  -> parsing_error
//     - id not in the roster        -> missing_info (grades kept)
//     - id in the roster            -> normal
//   Pass 2, for each roster id (roster order) not seen in pass 1:
//     - missing_grades
//   Output is pass 1 followed by pass 2. No sorting is applied.
//
// CONCURRENCY:
//   Workbooks may be decoded by several goroutines. Each result is written to
//   the slot of its entry, so the pass 1 order never depends on scheduling.
//
// =============================================================================

package reconcile

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/anonymize"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/credits"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/logger"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/roster"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/transcript"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/types"
)

// Messages attached to records for display.
const (
	MsgInvalidFileName    = "파일명 형식이 올바르지 않습니다."
	MsgTranscriptParse    = "성적 엑셀 파일을 파싱하는 중 오류가 발생했습니다."
	MsgNotInRoster        = "학생정보(마스터)에 존재하지 않는 학번입니다."
	MsgMissingTranscript  = "성적 파일이 ZIP 내에 존재하지 않습니다."
	msgDuplicateReference = "같은 학번의 성적 파일이 이미 처리되었습니다: %s"
)

// ProgressFunc observes the archive pass. It is called once per workbook
// entry, after the entry is handled, with strictly increasing processed
// counts.
type ProgressFunc func(processed, total int)

// =============================================================================
// ENGINE
// =============================================================================

// Engine runs reconciliations. The zero value is not usable; call New.
type Engine struct {
	concurrency      int
	strictDuplicates bool
	progress         ProgressFunc
	logger           logger.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithProgress sets the progress callback. A nil callback is ignored.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) { e.progress = fn }
}

// WithConcurrency sets how many workbooks are decoded at once. Values below
// 1 mean sequential decoding.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.concurrency = n
	}
}

// WithStrictDuplicates makes every repeated archive id after the first a
// parsing_error record instead of an independent record.
func WithStrictDuplicates(strict bool) Option {
	return func(e *Engine) { e.strictDuplicates = strict }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l == nil {
			l = logger.Nop()
		}
		e.logger = l
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		concurrency: 1,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run is a shorthand for New(opts...).Run(ctx, index, archive).
func Run(ctx context.Context, index *roster.Index, archive transcript.Archive, opts ...Option) ([]types.StudentRecord, error) {
	return New(opts...).Run(ctx, index, archive)
}

// entry is one workbook of pass 1, planned before any decoding happens.
type entry struct {
	path      string
	studentID string
	hasID     bool

	// firstPath is set in strict mode when the id was already claimed by an
	// earlier entry.
	firstPath string
}

// Run reconciles index with archive.
//
// PARAMETERS:
//   - ctx: Cancels the archive pass between entries.
//   - index: The roster index. It is only read.
//   - archive: The transcript container.
//
// RETURNS:
//   - One record per workbook entry followed by one record per roster id
//     without a workbook.
//   - ctx.Err() if the context is cancelled; no partial result is returned.
func (e *Engine) Run(ctx context.Context, index *roster.Index, archive transcript.Archive) ([]types.StudentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, seen := e.plan(transcript.Candidates(archive))
	e.logger.Info("Reconciling %d workbook entries against %d roster entries", len(entries), index.Len())

	records, err := e.archivePass(ctx, entries, index, archive)
	if err != nil {
		return nil, err
	}

	for _, studentID := range index.IDs() {
		if seen[studentID] {
			continue
		}
		re, _ := index.Lookup(studentID)
		records = append(records, missingGradesRecord(re))
	}

	return records, nil
}

// plan extracts ids in archive order and builds the seen set.
func (e *Engine) plan(paths []string) ([]entry, map[string]bool) {
	entries := make([]entry, len(paths))
	seen := make(map[string]bool)
	firstByID := make(map[string]string)

	for i, path := range paths {
		studentID, ok := transcript.ExtractStudentID(path)
		entries[i] = entry{path: path, studentID: studentID, hasID: ok}
		if !ok {
			continue
		}

		seen[studentID] = true
		if first, dup := firstByID[studentID]; dup {
			e.logger.Warn("Student id %s appears in %s and %s", studentID, first, path)
			if e.strictDuplicates {
				entries[i].firstPath = first
			}
			continue
		}
		firstByID[studentID] = path
	}
	return entries, seen
}

// archivePass resolves every planned entry, in parallel when configured.
func (e *Engine) archivePass(ctx context.Context, entries []entry, index *roster.Index, archive transcript.Archive) ([]types.StudentRecord, error) {
	records := make([]types.StudentRecord, len(entries))
	tracker := &progressTracker{total: len(entries), fn: e.progress}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range entries {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i] = e.resolve(entries[i], index, archive)
			tracker.done()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// resolve turns one workbook entry into its record.
func (e *Engine) resolve(en entry, index *roster.Index, archive transcript.Archive) types.StudentRecord {
	if !en.hasID {
		e.logger.Warn("Invalid transcript file name: %s", en.path)
		return unverifiedRecord(types.UnknownID, en.path, types.StatusParsingError, nil, MsgInvalidFileName)
	}

	if en.firstPath != "" {
		return unverifiedRecord(en.studentID, en.path, types.StatusParsingError, nil,
			fmt.Sprintf(msgDuplicateReference, en.firstPath))
	}

	grades, err := readTranscript(archive, en.path)
	if err != nil {
		e.logger.Warn("Failed to parse %s: %v", en.path, err)
		return unverifiedRecord(en.studentID, en.path, types.StatusParsingError, nil, MsgTranscriptParse)
	}

	rosterEntry, ok := index.Lookup(en.studentID)
	if !ok {
		e.logger.Debug("Student %s is not in the roster", en.studentID)
		return unverifiedRecord(en.studentID, en.path, types.StatusMissingInfo, grades, MsgNotInRoster)
	}

	e.logger.Debug("Matched %s with %d grade rows", en.studentID, len(grades))
	return types.StudentRecord{
		EncryptedID:   anonymize.EncryptID(en.studentID),
		StudentID:     en.studentID,
		Name:          rosterEntry.Name,
		AdmissionYear: rosterEntry.AdmissionYear,
		StudentType:   rosterEntry.StudentType,
		Major:         rosterEntry.Major,
		DoubleMajors:  copyStrings(rosterEntry.Minors),
		Grades:        grades,
		TotalCredits:  credits.TotalCredits(grades),
		Errors:        []string{},
		Status:        types.StatusNormal,
		SourceFile:    en.path,
	}
}

// readTranscript fetches and decodes one workbook. A failed read counts as
// a decode failure of that entry.
func readTranscript(archive transcript.Archive, path string) ([]types.GradeRow, error) {
	data, err := archive.ReadFile(path)
	if err != nil {
		return nil, &transcript.ParseError{Err: err}
	}
	return transcript.Parse(data)
}

// =============================================================================
// RECORD CONSTRUCTORS
// =============================================================================

// unverifiedRecord builds a record whose identity is not backed by the
// roster. Roster-derived fields carry the unknown label.
func unverifiedRecord(studentID, path string, status types.Status, grades []types.GradeRow, msg string) types.StudentRecord {
	if grades == nil {
		grades = []types.GradeRow{}
	}
	encryptedID := types.UnknownID
	if studentID != types.UnknownID {
		encryptedID = anonymize.EncryptID(studentID)
	}

	return types.StudentRecord{
		EncryptedID:   encryptedID,
		StudentID:     studentID,
		Name:          types.UnknownLabel,
		AdmissionYear: 0,
		StudentType:   types.UnknownLabel,
		Major:         types.UnknownLabel,
		DoubleMajors:  []string{},
		Grades:        grades,
		TotalCredits:  credits.TotalCredits(grades),
		Errors:        []string{msg},
		Status:        status,
		SourceFile:    path,
	}
}

func missingGradesRecord(re types.RosterEntry) types.StudentRecord {
	return types.StudentRecord{
		EncryptedID:   anonymize.EncryptID(re.StudentID),
		StudentID:     re.StudentID,
		Name:          re.Name,
		AdmissionYear: re.AdmissionYear,
		StudentType:   re.StudentType,
		Major:         re.Major,
		DoubleMajors:  copyStrings(re.Minors),
		Grades:        []types.GradeRow{},
		TotalCredits:  0,
		Errors:        []string{MsgMissingTranscript},
		Status:        types.StatusMissingGrades,
	}
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// =============================================================================
// PROGRESS
// =============================================================================

type progressTracker struct {
	mu        sync.Mutex
	processed int
	total     int
	fn        ProgressFunc
}

// done counts one handled entry. The callback runs under the lock so
// observers see counts in order.
func (p *progressTracker) done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed++
	if p.fn != nil {
		p.fn(p.processed, p.total)
	}
}
