package reconcile

import (
	"sort"
	"strings"

	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/types"
)

// Stats counts records per status.
type Stats struct {
	Total         int `json:"total"`
	Matched       int `json:"matched"`
	MissingGrades int `json:"missingGrades"`
	MissingInfo   int `json:"missingInfo"`
	Errors        int `json:"errors"`
}

// Count returns the number of records with status s.
func (s Stats) Count(status types.Status) int {
	switch status {
	case types.StatusNormal:
		return s.Matched
	case types.StatusMissingGrades:
		return s.MissingGrades
	case types.StatusMissingInfo:
		return s.MissingInfo
	case types.StatusParsingError:
		return s.Errors
	}
	return 0
}

// Summarize tallies records by status.
func Summarize(records []types.StudentRecord) Stats {
	stats := Stats{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case types.StatusNormal:
			stats.Matched++
		case types.StatusMissingGrades:
			stats.MissingGrades++
		case types.StatusMissingInfo:
			stats.MissingInfo++
		case types.StatusParsingError:
			stats.Errors++
		}
	}
	return stats
}

// Filter returns the records whose student id, name or major contains term.
// An empty term returns every record.
func Filter(records []types.StudentRecord, term string) []types.StudentRecord {
	term = strings.TrimSpace(term)
	out := make([]types.StudentRecord, 0, len(records))
	for _, r := range records {
		if term == "" ||
			strings.Contains(r.StudentID, term) ||
			strings.Contains(r.Name, term) ||
			strings.Contains(r.Major, term) {
			out = append(out, r)
		}
	}
	return out
}

// SortByStudentID returns a copy of records in ascending student id order.
// Records with equal ids keep their relative order.
func SortByStudentID(records []types.StudentRecord) []types.StudentRecord {
	sorted := make([]types.StudentRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StudentID < sorted[j].StudentID
	})
	return sorted
}
