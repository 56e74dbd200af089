// =============================================================================
// Graduation Audit - Roster Indexer
// =============================================================================
//
// This module turns the master roster (학생정보 엑셀) into an Index keyed by
// student id (학번). Expected header labels:
//
//   학번 | 이름 | 입학연도 | 학생유형 | IPP이수 | 학기차 | 졸업예정 |
//   어학시험종류 | 어학점수 | 졸업논문 | 종합시험 | 주전공 | 심화여부 |
//   복수전공1 .. 복수전공5
//
// Row-level problems never fail the parse:
//   - rows without 학번 are skipped
//   - unparseable numbers become 0
//   - a repeated 학번 replaces the earlier row
// Only a source that cannot be decoded at all yields a ParseError.
//
// =============================================================================

package roster

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/csvparser"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/types"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/xlsxparser"
)

// Header labels of the master roster.
const (
	ColStudentID       = "학번"
	ColName            = "이름"
	ColAdmissionYear   = "입학연도"
	ColStudentType     = "학생유형"
	ColIPP             = "IPP이수"
	ColSemesterCount   = "학기차"
	ColGradExpectation = "졸업예정"
	ColLanguageType    = "어학시험종류"
	ColLanguageScore   = "어학점수"
	ColThesis          = "졸업논문"
	ColExam            = "종합시험"
	ColMajor           = "주전공"
	ColDeepMajor       = "심화여부"
)

// MaxMinors is the number of 복수전공 slots.
const MaxMinors = 5

// =============================================================================
// ERRORS
// =============================================================================

// ErrRosterParse matches every roster decode failure via errors.Is.
var ErrRosterParse = errors.New("roster parse error")

// ParseError reports a roster source that could not be decoded.
type ParseError struct {
	// Source names the input (file name or "roster").
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse roster %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrRosterParse) true for every ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrRosterParse }

// =============================================================================
// INDEX
// =============================================================================

// Index maps student ids to roster entries. Iteration order (IDs) is the
// order in which ids first appeared in the source.
type Index struct {
	entries map[string]types.RosterEntry
	order   []string
}

// NewIndex builds an index from entries; later entries replace earlier ones
// with the same id.
func NewIndex(entries ...types.RosterEntry) *Index {
	ix := &Index{entries: make(map[string]types.RosterEntry, len(entries))}
	for _, e := range entries {
		ix.Put(e)
	}
	return ix
}

// Put inserts or replaces an entry. Entries without a student id are ignored.
func (ix *Index) Put(e types.RosterEntry) {
	if e.StudentID == "" {
		return
	}
	if ix.entries == nil {
		ix.entries = make(map[string]types.RosterEntry)
	}
	if _, exists := ix.entries[e.StudentID]; !exists {
		ix.order = append(ix.order, e.StudentID)
	}
	ix.entries[e.StudentID] = e
}

// Lookup returns the entry for a student id.
func (ix *Index) Lookup(studentID string) (types.RosterEntry, bool) {
	if ix == nil {
		return types.RosterEntry{}, false
	}
	e, ok := ix.entries[studentID]
	return e, ok
}

// IDs returns the student ids in first-appearance order.
func (ix *Index) IDs() []string {
	if ix == nil {
		return nil
	}
	ids := make([]string, len(ix.order))
	copy(ids, ix.order)
	return ids
}

// Len returns the number of distinct student ids.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.entries)
}

// Entries returns a copy of the id -> entry mapping.
func (ix *Index) Entries() map[string]types.RosterEntry {
	out := make(map[string]types.RosterEntry, ix.Len())
	if ix == nil {
		return out
	}
	for k, v := range ix.entries {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the index as an object keyed by student id.
func (ix *Index) MarshalJSON() ([]byte, error) {
	return json.Marshal(ix.Entries())
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse decodes an XLSX roster held in memory.
func Parse(data []byte) (*Index, error) {
	table, err := xlsxparser.Parse(data)
	if err != nil {
		return nil, &ParseError{Source: "roster", Err: err}
	}
	return FromTable(table), nil
}

// ParseCSV decodes a CSV roster held in memory.
func ParseCSV(data []byte, settings csvparser.Settings) (*Index, error) {
	table, err := csvparser.Parse(data, settings)
	if err != nil {
		return nil, &ParseError{Source: "roster", Err: err}
	}
	return FromTable(table), nil
}

// ParseFile reads the roster at path. Files ending in .csv are read as CSV
// with settings; everything else is read as XLSX.
func ParseFile(path string, settings csvparser.Settings) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var ix *Index
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		ix, err = ParseCSV(data, settings)
	} else {
		ix, err = Parse(data)
	}
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = filepath.Base(path)
		}
		return nil, err
	}
	return ix, nil
}

// FromTable maps decoded rows to roster entries.
func FromTable(table *types.Table) *Index {
	ix := NewIndex()
	for _, row := range table.Rows {
		studentID := row.Trimmed(ColStudentID)
		if studentID == "" {
			continue
		}
		ix.Put(entryFromRow(studentID, row))
	}
	return ix
}

// entryFromRow extracts a RosterEntry from a single row.
func entryFromRow(studentID string, row types.Row) types.RosterEntry {
	return types.RosterEntry{
		StudentID:       studentID,
		Name:            row.Trimmed(ColName),
		AdmissionYear:   row.Int(ColAdmissionYear),
		StudentType:     row.Trimmed(ColStudentType),
		IPP:             row.TrimmedOr(ColIPP, "N"),
		SemesterCount:   row.Int(ColSemesterCount),
		GradExpectation: row.Trimmed(ColGradExpectation),
		LanguageType:    row.Trimmed(ColLanguageType),
		LanguageScore:   row.Trimmed(ColLanguageScore),
		Thesis:          row.TrimmedOr(ColThesis, "N"),
		Exam:            row.TrimmedOr(ColExam, "N"),
		Major:           row.Trimmed(ColMajor),
		IsDeepMajor:     row.TrimmedOr(ColDeepMajor, "N"),
		Minors:          minorsFromRow(row),
	}
}

// minorsFromRow collects 복수전공1..5 in slot order, dropping blank slots.
func minorsFromRow(row types.Row) []string {
	minors := []string{}
	for slot := 1; slot <= MaxMinors; slot++ {
		if m := row.Trimmed(fmt.Sprintf("복수전공%d", slot)); m != "" {
			minors = append(minors, m)
		}
	}
	return minors
}
