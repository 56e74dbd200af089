// =============================================================================
// Graduation Audit - CSV Parser
// =============================================================================
//
// This module decodes CSV exports of the master roster into the same
// header-keyed Table the XLSX parser produces. Registrar offices often save
// "CSV (쉼표로 분리)" from Korean Excel, which writes CP949 rather than UTF-8,
// so the parser transcodes before reading.
//
// FEATURES:
//   - Delimiter selection (comma, tab, pipe, semicolon)
//   - UTF-8 (with or without BOM) and CP949/EUC-KR input
//   - Ragged rows and lazy quotes are tolerated
//
// =============================================================================

package csvparser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/types"
)

// =============================================================================
// SETTINGS
// =============================================================================

// Settings contains options for parsing CSV data.
type Settings struct {
	// Delimiter separates fields. Accepts a single character or one of the
	// names "tab", "pipe", "semicolon".
	// Default: ","
	Delimiter string

	// Encoding of the input: "UTF-8", "CP949" or "EUC-KR".
	// Default: "UTF-8"
	Encoding string
}

// DefaultSettings returns comma-separated UTF-8.
func DefaultSettings() Settings {
	return Settings{Delimiter: ",", Encoding: "UTF-8"}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse decodes CSV bytes into a Table.
//
// PARAMETERS:
//   - data: The raw CSV bytes.
//   - settings: Delimiter and encoding.
//
// RETURNS:
//   - The Table; row 1 is the header row. Empty input yields an empty Table.
//   - An error if the encoding is unsupported or the CSV is malformed.
func Parse(data []byte, settings Settings) (*types.Table, error) {
	reader, err := decodingReader(bytes.NewReader(data), settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	return types.NewTable(allRows), nil
}

// decodingReader wraps r with a transcoder to UTF-8.
func decodingReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToUpper(strings.TrimSpace(encoding)) {
	case "", "UTF-8", "UTF8":
		return r, nil
	case "CP949", "EUC-KR", "EUCKR":
		// CP949 is a superset of EUC-KR; x/text's EUCKR decoder covers both.
		return transform.NewReader(r, korean.EUCKR.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings Settings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}
