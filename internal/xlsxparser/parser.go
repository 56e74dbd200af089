// =============================================================================
// Graduation Audit - XLSX Parser
// =============================================================================
//
// This module decodes XLSX workbooks into header-keyed tables. It is the
// spreadsheet capability behind both the roster indexer and the transcript
// extractor:
//
//   | Row 1 | 학번     | 이름   | 입학연도 | ... |   <- header row
//   | Row 2 | 20211234 | 김동국 | 2021     | ... |   <- data rows
//
// Only the first sheet of a workbook is consulted. Cells are read as their
// stored values, not the text a number format would display: a 1.5 credit
// cell formatted as "0" still arrives as "1.5".
//
// =============================================================================

package xlsxparser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/types"
)

// ErrNoSheets is returned for workbooks without any worksheet.
var ErrNoSheets = errors.New("workbook has no sheets")

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse decodes an XLSX workbook held in memory.
//
// PARAMETERS:
//   - data: The raw bytes of the workbook.
//
// RETURNS:
//   - The first sheet as a Table. A header-only or empty sheet yields a
//     Table without rows.
//   - An error if the bytes are not a readable workbook.
func Parse(data []byte) (*types.Table, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader decodes an XLSX workbook from r.
func ParseReader(r io.Reader) (*types.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseFirstSheet(f)
}

// ParseFile decodes the XLSX workbook at path.
func ParseFile(path string) (*types.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseFirstSheet(f)
}

// parseFirstSheet reads all rows of the first sheet of an open workbook.
func parseFirstSheet(f *excelize.File) (*types.Table, error) {
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheetName, err)
	}

	return types.NewTable(rows), nil
}
