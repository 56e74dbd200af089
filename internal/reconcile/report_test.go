package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/types"
)

func sampleRecords() []types.StudentRecord {
	return []types.StudentRecord{
		{StudentID: "2022002", Name: "박지성", Major: "경영학과", Status: types.StatusNormal},
		{StudentID: "2021001", Name: "김동국", Major: "컴퓨터공학과", Status: types.StatusMissingGrades},
		{StudentID: types.UnknownID, Name: types.UnknownLabel, Major: types.UnknownLabel, Status: types.StatusParsingError},
		{StudentID: "2021001", Name: types.UnknownLabel, Major: types.UnknownLabel, Status: types.StatusMissingInfo},
	}
}

func TestSummarize(t *testing.T) {
	stats := Summarize(sampleRecords())
	assert.Equal(t, Stats{Total: 4, Matched: 1, MissingGrades: 1, MissingInfo: 1, Errors: 1}, stats)

	for _, s := range types.Statuses {
		assert.Equal(t, 1, stats.Count(s))
	}
	assert.Equal(t, 0, stats.Count(types.Status("other")))
	assert.Equal(t, Stats{}, Summarize(nil))
}

func TestFilter(t *testing.T) {
	records := sampleRecords()

	tests := []struct {
		name string
		term string
		want int
	}{
		{"empty term keeps all", "", 4},
		{"whitespace term keeps all", "  ", 4},
		{"by id prefix", "2021", 2},
		{"by name", "동국", 1},
		{"by major", "경영", 1},
		{"unknown label", types.UnknownLabel, 2},
		{"no match", "물리학과", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Filter(records, tt.term), tt.want)
		})
	}
}

func TestSortByStudentID(t *testing.T) {
	records := sampleRecords()
	sorted := SortByStudentID(records)

	assert.Equal(t, []string{"2021001", "2021001", "2022002", types.UnknownID}, ids(sorted))
	// Stable for equal ids.
	assert.Equal(t, types.StatusMissingGrades, sorted[0].Status)
	assert.Equal(t, types.StatusMissingInfo, sorted[1].Status)
	// Input untouched.
	assert.Equal(t, "2022002", records[0].StudentID)
}
