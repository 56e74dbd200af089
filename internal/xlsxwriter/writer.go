// =============================================================================
// Graduation Audit - Audit Workbook Writer
// =============================================================================
//
// This module renders reconciled records as a workbook for the registrar
// staff who review the audit before the anonymized payload is sent on.
//
// WORKBOOK STRUCTURE:
//
//   Sheet "학생 목록"  one row per record
//     | 학번 | 이름 | 입학연도 | 학생유형 | 주전공 | 복수전공 | 상태 |
//     | 총 이수학점 | 전공필수 | 전공선택 | 공통교양 | 일반교양 | 자유선택 |
//     | 평점 | 원본 파일 | 오류 |
//
//   Sheet "통계"  record count per status, then the total
//
// Credit columns are recomputed from each record's grades with the given
// vocabulary.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/config"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/credits"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/reconcile"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/types"
)

// =============================================================================
// WORKBOOK OPTIONS
// =============================================================================

// Options contains options for workbook generation.
type Options struct {
	// RecordSheet is the name of the per-student sheet.
	// Default: "학생 목록"
	RecordSheet string

	// StatsSheet is the name of the status statistics sheet.
	// Default: "통계"
	StatsSheet string

	// Vocabulary classifies grades for the credit columns.
	// Default: config.DefaultVocabulary()
	Vocabulary *config.Vocabulary

	// ListSeparator joins multi-valued cells (double majors, errors).
	// Default: ", "
	ListSeparator string
}

// DefaultOptions returns the default workbook options.
func DefaultOptions() Options {
	return Options{
		RecordSheet:   "학생 목록",
		StatsSheet:    "통계",
		Vocabulary:    config.DefaultVocabulary(),
		ListSeparator: ", ",
	}
}

// RecordHeader is the header row of the record sheet.
var RecordHeader = []interface{}{
	"학번", "이름", "입학연도", "학생유형", "주전공", "복수전공", "상태",
	"총 이수학점", "전공필수", "전공선택", "공통교양", "일반교양", "자유선택",
	"평점", "원본 파일", "오류",
}

// StatsHeader is the header row of the statistics sheet.
var StatsHeader = []interface{}{"상태", "인원"}

// StatsTotalLabel labels the last row of the statistics sheet.
const StatsTotalLabel = "전체"

// =============================================================================
// GENERATION FUNCTIONS
// =============================================================================

// Generate renders records as a workbook with the default options.
func Generate(records []types.StudentRecord) ([]byte, error) {
	return GenerateWithOptions(records, DefaultOptions())
}

// GenerateWithOptions renders records as a workbook.
//
// PARAMETERS:
//   - records: The reconciled records, written in the given order.
//   - options: Sheet names, vocabulary and list separator.
//
// RETURNS:
//   - The workbook bytes.
//   - An error if a sheet cannot be written.
func GenerateWithOptions(records []types.StudentRecord, options Options) ([]byte, error) {
	f, err := build(records, withDefaults(options))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders records and saves the workbook at path.
func WriteFile(path string, records []types.StudentRecord, options Options) error {
	f, err := build(records, withDefaults(options))
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func withDefaults(options Options) Options {
	def := DefaultOptions()
	if options.RecordSheet == "" {
		options.RecordSheet = def.RecordSheet
	}
	if options.StatsSheet == "" {
		options.StatsSheet = def.StatsSheet
	}
	if options.Vocabulary == nil {
		options.Vocabulary = def.Vocabulary
	}
	if options.ListSeparator == "" {
		options.ListSeparator = def.ListSeparator
	}
	return options
}

// build creates the in-memory workbook. The caller closes it.
func build(records []types.StudentRecord, options Options) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), options.RecordSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name record sheet: %w", err)
	}
	if _, err := f.NewSheet(options.StatsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create stats sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRecordSheet(f, records, options, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeStatsSheet(f, records, options, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeRecordSheet(f *excelize.File, records []types.StudentRecord, options Options, headerStyle int) error {
	sheet := options.RecordSheet

	if err := writeHeader(f, sheet, RecordHeader, headerStyle); err != nil {
		return err
	}

	for i, r := range records {
		if err := writeRow(f, sheet, i+2, recordRow(r, options)); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "G", 14); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(sheet, "O", "P", 36); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header row: %w", err)
	}
	return nil
}

// recordRow returns the cells of one record in RecordHeader order.
func recordRow(r types.StudentRecord, options Options) []interface{} {
	summary := credits.Summarize(r.Grades, options.Vocabulary)

	return []interface{}{
		r.StudentID,
		r.Name,
		r.AdmissionYear,
		r.StudentType,
		r.Major,
		strings.Join(r.DoubleMajors, options.ListSeparator),
		r.Status.Label(),
		r.TotalCredits,
		summary.MajorRequired,
		summary.MajorElective,
		summary.GeneralRequired,
		summary.GeneralElective,
		summary.FreeElective,
		summary.GPA,
		r.SourceFile,
		strings.Join(r.Errors, options.ListSeparator),
	}
}

func writeStatsSheet(f *excelize.File, records []types.StudentRecord, options Options, headerStyle int) error {
	sheet := options.StatsSheet
	stats := reconcile.Summarize(records)

	if err := writeHeader(f, sheet, StatsHeader, headerStyle); err != nil {
		return err
	}

	row := 2
	for _, status := range types.Statuses {
		if err := writeRow(f, sheet, row, []interface{}{status.Label(), stats.Count(status)}); err != nil {
			return err
		}
		row++
	}
	return writeRow(f, sheet, row, []interface{}{StatsTotalLabel, stats.Total})
}

func writeHeader(f *excelize.File, sheet string, header []interface{}, style int) error {
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("failed to resolve header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", sheet, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("failed to resolve row %d: %w", rowNum, err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", rowNum, sheet, err)
	}
	return nil
}
