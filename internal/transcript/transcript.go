// =============================================================================
// Graduation Audit - Transcript Extractor
// =============================================================================
//
// This module finds transcript entries inside an Archive, derives the
// student id from each entry name and decodes the transcript workbook into
// GradeRows.
//
// FILE NAMING:
//   성적정보_<digits>.xlsx, matched against the final path segment only, so
//   "2023/1학기/성적정보_2021001.xlsx" is accepted.
//
// =============================================================================

package transcript

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/types"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/xlsxparser"
)

// Header labels of a transcript sheet.
const (
	ColNo                 = "No"
	ColYearSemester       = "년도학기"
	ColSubjectCode        = "학수번호"
	ColClassNum           = "분반"
	ColSubjectName        = "교과목명"
	ColProfessor          = "담당교원"
	ColEnglishType        = "원어강의종류"
	ColRecognition        = "인정구분"
	ColCategory           = "이수구분"
	ColSubCategory        = "이수구분영역"
	ColCredits            = "학점"
	ColGrade              = "등급"
	ColDeleteCategory     = "삭제구분"
	ColRetakeYearSemester = "재수강 년도학기"
	ColRetakeSubjectCode  = "재수강 학수번호"
	ColInstitutionName    = "이수기관명"
	ColGraduateCategory   = "대학원구분"
)

// resourceForkDir holds the AppleDouble files macOS adds to zips.
const resourceForkDir = "__MACOSX"

const workbookExt = ".xlsx"

var fileNamePattern = regexp.MustCompile(`^성적정보_(\d+)\.(?i:xlsx)$`)

// ErrTranscriptParse matches every transcript decode failure via errors.Is.
var ErrTranscriptParse = errors.New("transcript parse error")

// ParseError reports a transcript workbook that could not be decoded.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse transcript: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTranscriptParse) true for every ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrTranscriptParse }

// =============================================================================
// ENTRY SELECTION
// =============================================================================

// List returns the transcript entries of a in enumeration order. Entries
// whose final path segment does not follow the naming convention are left
// out.
func List(a Archive) []string {
	var out []string
	for _, name := range a.Names() {
		if isTranscriptEntry(name) {
			out = append(out, name)
		}
	}
	return out
}

// Candidates returns every workbook entry of a (final segment ending in
// .xlsx) in enumeration order. It is a superset of List: workbooks whose
// name does not embed a student id are included so the caller can report
// them.
func Candidates(a Archive) []string {
	var out []string
	for _, name := range a.Names() {
		if inResourceFork(name) {
			continue
		}
		base := baseName(name)
		if len(base) > len(workbookExt) && strings.EqualFold(base[len(base)-len(workbookExt):], workbookExt) {
			out = append(out, name)
		}
	}
	return out
}

// ExtractStudentID returns the digits of a 성적정보_<digits>.xlsx entry.
func ExtractStudentID(path string) (string, bool) {
	m := fileNamePattern.FindStringSubmatch(baseName(path))
	if m == nil {
		return "", false
	}
	return m[1], true
}

func isTranscriptEntry(path string) bool {
	return !inResourceFork(path) && fileNamePattern.MatchString(baseName(path))
}

func inResourceFork(path string) bool {
	for _, seg := range strings.Split(path, "/") {
		if seg == resourceForkDir {
			return true
		}
	}
	return false
}

// baseName returns the final segment of a slash or backslash separated path.
func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

// =============================================================================
// WORKBOOK DECODING
// =============================================================================

// Parse decodes a transcript workbook.
//
// PARAMETERS:
//   - data: The raw bytes of the transcript workbook.
//
// RETURNS:
//   - One GradeRow per non-empty data row. A header-only or empty sheet
//     yields no rows and no error.
//   - A *ParseError if the bytes are not a readable workbook.
func Parse(data []byte) ([]types.GradeRow, error) {
	table, err := xlsxparser.Parse(data)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return FromTable(table), nil
}

// FromTable maps decoded rows to grade rows.
func FromTable(table *types.Table) []types.GradeRow {
	grades := make([]types.GradeRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		grades = append(grades, gradeFromRow(row))
	}
	return grades
}

// gradeFromRow extracts a GradeRow from a single row.
func gradeFromRow(row types.Row) types.GradeRow {
	credits := row.Float(ColCredits)
	if credits < 0 {
		credits = 0
	}

	return types.GradeRow{
		No:             row.Int(ColNo),
		YearSemester:   row.Trimmed(ColYearSemester),
		SubjectCode:    row.Trimmed(ColSubjectCode),
		ClassNum:       row.Trimmed(ColClassNum),
		SubjectName:    row.Trimmed(ColSubjectName),
		Professor:      row.Trimmed(ColProfessor),
		EnglishType:    row.Trimmed(ColEnglishType),
		Recognition:    row.Trimmed(ColRecognition),
		Category:       row.Trimmed(ColCategory),
		SubCategory:    row.Trimmed(ColSubCategory),
		Credits:        credits,
		Grade:          row.Trimmed(ColGrade),
		DeleteCategory: row.Trimmed(ColDeleteCategory),

		RetakeYearSemester: trimmedOptional(row, ColRetakeYearSemester),
		RetakeSubjectCode:  trimmedOptional(row, ColRetakeSubjectCode),
		InstitutionName:    trimmedOptional(row, ColInstitutionName),
		GraduateCategory:   trimmedOptional(row, ColGraduateCategory),
	}
}

func trimmedOptional(row types.Row, field string) *string {
	v := row.Optional(field)
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	return &s
}
