package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/anonymize"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/credits"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/roster"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/testutil"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/transcript"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/types"
)

// =============================================================================
// FIXTURES
// =============================================================================

func kim() types.RosterEntry {
	return types.RosterEntry{
		StudentID:     "20211234",
		Name:          "Kim",
		AdmissionYear: 2021,
		StudentType:   "일반",
		Major:         "CS",
		Minors:        []string{"Math"},
	}
}

func twoCourses(t *testing.T) []byte {
	return testutil.Transcript(t,
		testutil.Course(1, "CSE1001", "프로그래밍", "", "전공필수", "", 3, "A+"),
		testutil.Course(2, "CSE1002", "이산수학", "", "전공선택", "", 3, "B0"),
	)
}

func openZip(t *testing.T, entries ...testutil.Entry) transcript.Archive {
	t.Helper()
	a, err := transcript.OpenZipBytes(testutil.Zip(t, entries...))
	require.NoError(t, err)
	return a
}

// failingArchive lists names but cannot read any of them.
type failingArchive struct{ names []string }

func (f failingArchive) Names() []string { return f.names }

func (f failingArchive) ReadFile(name string) ([]byte, error) {
	return nil, fmt.Errorf("read %s: unexpected EOF", name)
}

func ids(records []types.StudentRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.StudentID
	}
	return out
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestRun_Normal(t *testing.T) {
	index := roster.NewIndex(kim())
	archive := openZip(t, testutil.Entry{Name: "성적정보_20211234.xlsx", Content: twoCourses(t)})

	records, err := Run(context.Background(), index, archive)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, types.StatusNormal, r.Status)
	assert.Equal(t, "20211234", r.StudentID)
	assert.Equal(t, anonymize.EncryptID("20211234"), r.EncryptedID)
	assert.Equal(t, "Kim", r.Name)
	assert.Equal(t, 2021, r.AdmissionYear)
	assert.Equal(t, "CS", r.Major)
	assert.Equal(t, []string{"Math"}, r.DoubleMajors)
	assert.Len(t, r.Grades, 2)
	assert.Equal(t, 6.0, r.TotalCredits)
	assert.Empty(t, r.Errors)
	assert.NotNil(t, r.Errors)
	assert.Equal(t, "성적정보_20211234.xlsx", r.SourceFile)

	assert.Equal(t, 3.75, credits.Summarize(r.Grades, nil).GPA)
}

func TestRun_MissingInfo(t *testing.T) {
	archive := openZip(t, testutil.Entry{Name: "성적정보_99999999.xlsx", Content: twoCourses(t)})

	records, err := Run(context.Background(), roster.NewIndex(), archive)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, types.StatusMissingInfo, r.Status)
	assert.Equal(t, "99999999", r.StudentID)
	assert.Equal(t, anonymize.EncryptID("99999999"), r.EncryptedID)
	assert.Equal(t, types.UnknownLabel, r.Name)
	assert.Equal(t, types.UnknownLabel, r.Major)
	assert.Equal(t, 0, r.AdmissionYear)
	assert.Len(t, r.Grades, 2)
	assert.Greater(t, r.TotalCredits, 0.0)
	assert.Equal(t, []string{MsgNotInRoster}, r.Errors)
}

func TestRun_MissingGrades(t *testing.T) {
	records, err := Run(context.Background(), roster.NewIndex(kim()), openZip(t))
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, types.StatusMissingGrades, r.Status)
	assert.Equal(t, "20211234", r.StudentID)
	assert.Equal(t, "Kim", r.Name)
	assert.Equal(t, 0.0, r.TotalCredits)
	assert.Empty(t, r.Grades)
	assert.NotNil(t, r.Grades)
	assert.Equal(t, []string{MsgMissingTranscript}, r.Errors)
	assert.Empty(t, r.SourceFile)
}

func TestRun_InvalidFileName(t *testing.T) {
	archive := openZip(t, testutil.Entry{Name: "unexpected_name.xlsx", Content: twoCourses(t)})

	records, err := Run(context.Background(), roster.NewIndex(), archive)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, types.StatusParsingError, r.Status)
	assert.Equal(t, types.UnknownID, r.StudentID)
	assert.Equal(t, types.UnknownID, r.EncryptedID)
	assert.Empty(t, r.Grades)
	assert.Equal(t, []string{MsgInvalidFileName}, r.Errors)
	assert.Equal(t, "unexpected_name.xlsx", r.SourceFile)
}

func TestRun_CorruptTranscript(t *testing.T) {
	index := roster.NewIndex(types.RosterEntry{StudentID: "12345678", Name: "Lee"})
	archive := openZip(t, testutil.Entry{Name: "성적정보_12345678.xlsx", Content: []byte("garbage")})

	records, err := Run(context.Background(), index, archive)
	require.NoError(t, err)

	// The roster entry was seen from the archive side, so no missing_grades
	// record follows.
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, types.StatusParsingError, r.Status)
	assert.Equal(t, "12345678", r.StudentID)
	assert.Equal(t, types.UnknownLabel, r.Name)
	assert.Empty(t, r.Grades)
	assert.Equal(t, 0.0, r.TotalCredits)
	assert.Equal(t, []string{MsgTranscriptParse}, r.Errors)
}

func TestRun_ReadFailureIsParsingError(t *testing.T) {
	archive := failingArchive{names: []string{"성적정보_1.xlsx"}}

	records, err := Run(context.Background(), roster.NewIndex(), archive)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, types.StatusParsingError, records[0].Status)
	assert.Equal(t, "1", records[0].StudentID)
}

func TestRun_IgnoresNonWorkbookEntries(t *testing.T) {
	archive := openZip(t,
		testutil.Entry{Name: "readme.txt", Content: []byte("hello")},
		testutil.Entry{Name: "__MACOSX/._성적정보_20211234.xlsx", Content: []byte("fork")},
	)

	records, err := Run(context.Background(), roster.NewIndex(), archive)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRun_EmptyInputs(t *testing.T) {
	records, err := Run(context.Background(), roster.NewIndex(), openZip(t))
	require.NoError(t, err)
	assert.Empty(t, records)
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestRun_OrderAndCoverage(t *testing.T) {
	index := roster.NewIndex(
		types.RosterEntry{StudentID: "300", Name: "C"},
		types.RosterEntry{StudentID: "100", Name: "A"},
		types.RosterEntry{StudentID: "200", Name: "B"},
		types.RosterEntry{StudentID: "400", Name: "D"},
	)
	archive := openZip(t,
		testutil.Entry{Name: "b/성적정보_200.xlsx", Content: twoCourses(t)},
		testutil.Entry{Name: "bad.xlsx", Content: twoCourses(t)},
		testutil.Entry{Name: "a/성적정보_999.xlsx", Content: twoCourses(t)},
		testutil.Entry{Name: "성적정보_100.xlsx", Content: twoCourses(t)},
	)

	records, err := Run(context.Background(), index, archive)
	require.NoError(t, err)

	// Pass 1 in archive order, then pass 2 in roster order.
	assert.Equal(t, []string{"200", types.UnknownID, "999", "100", "300", "400"}, ids(records))

	for _, r := range records {
		assert.True(t, r.Status.Valid())
	}

	stats := Summarize(records)
	assert.Equal(t, Stats{Total: 6, Matched: 2, MissingGrades: 2, MissingInfo: 1, Errors: 1}, stats)
}

func TestRun_NormalTotalEqualsSum(t *testing.T) {
	data := testutil.Transcript(t,
		testutil.Course(1, "A", "a", "", "일반교양", "", 0.1, "P"),
		testutil.Course(2, "B", "b", "", "일반교양", "", 0.2, "P"),
		testutil.Course(3, "C", "c", "", "일반교양", "", 0.7, "P"),
	)
	index := roster.NewIndex(types.RosterEntry{StudentID: "5"})
	archive := openZip(t, testutil.Entry{Name: "성적정보_5.xlsx", Content: data})

	records, err := Run(context.Background(), index, archive)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1.0, records[0].TotalCredits)
}

func TestRun_Progress(t *testing.T) {
	archive := openZip(t,
		testutil.Entry{Name: "성적정보_1.xlsx", Content: twoCourses(t)},
		testutil.Entry{Name: "nope.xlsx", Content: []byte("x")},
		testutil.Entry{Name: "성적정보_2.xlsx", Content: []byte("x")},
		testutil.Entry{Name: "ignored.txt", Content: []byte("x")},
	)

	var calls [][2]int
	_, err := Run(context.Background(), roster.NewIndex(), archive,
		WithProgress(func(processed, total int) {
			calls = append(calls, [2]int{processed, total})
		}))
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, calls)

	// Without a callback the result is identical.
	withCallback, err := Run(context.Background(), roster.NewIndex(), archive, WithProgress(func(int, int) {}))
	require.NoError(t, err)
	without, err := Run(context.Background(), roster.NewIndex(), archive, WithProgress(nil))
	require.NoError(t, err)
	assert.Equal(t, withCallback, without)
}

func TestRun_ConcurrentMatchesSequential(t *testing.T) {
	var entries []testutil.Entry
	var rosterEntries []types.RosterEntry
	for i := 0; i < 24; i++ {
		id := fmt.Sprintf("2020%04d", i)
		content := twoCourses(t)
		if i%5 == 0 {
			content = []byte("corrupt")
		}
		entries = append(entries, testutil.Entry{Name: "성적정보_" + id + ".xlsx", Content: content})
		if i%3 != 0 {
			rosterEntries = append(rosterEntries, types.RosterEntry{StudentID: id, Name: "S" + id})
		}
	}
	rosterEntries = append(rosterEntries, types.RosterEntry{StudentID: "19990001", Name: "Old"})
	index := roster.NewIndex(rosterEntries...)
	archive := openZip(t, entries...)

	sequential, err := Run(context.Background(), index, archive)
	require.NoError(t, err)

	var mu sync.Mutex
	var seen []int
	parallel, err := Run(context.Background(), index, archive,
		WithConcurrency(6),
		WithProgress(func(processed, total int) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, 24, total)
			seen = append(seen, processed)
		}))
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
	require.Len(t, seen, 24)
	assert.True(t, sort.IntsAreSorted(seen))
	assert.Equal(t, 24, seen[len(seen)-1])
}

func TestRun_DuplicateIDs(t *testing.T) {
	index := roster.NewIndex(kim())
	archive := openZip(t,
		testutil.Entry{Name: "2023-1/성적정보_20211234.xlsx", Content: twoCourses(t)},
		testutil.Entry{Name: "2023-2/성적정보_20211234.xlsx", Content: twoCourses(t)},
	)

	t.Run("independent by default", func(t *testing.T) {
		records, err := Run(context.Background(), index, archive)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, types.StatusNormal, records[0].Status)
		assert.Equal(t, types.StatusNormal, records[1].Status)
	})

	t.Run("strict", func(t *testing.T) {
		records, err := Run(context.Background(), index, archive, WithStrictDuplicates(true))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, types.StatusNormal, records[0].Status)
		assert.Equal(t, types.StatusParsingError, records[1].Status)
		assert.Equal(t, "20211234", records[1].StudentID)
		require.Len(t, records[1].Errors, 1)
		assert.Contains(t, records[1].Errors[0], "2023-1/성적정보_20211234.xlsx")
	})
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, roster.NewIndex(kim()), openZip(t))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRun_CancelDuringArchivePass(t *testing.T) {
	archive := openZip(t,
		testutil.Entry{Name: "성적정보_1.xlsx", Content: twoCourses(t)},
		testutil.Entry{Name: "성적정보_2.xlsx", Content: twoCourses(t)},
		testutil.Entry{Name: "성적정보_3.xlsx", Content: twoCourses(t)},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	records, err := Run(ctx, roster.NewIndex(), archive, WithProgress(func(processed, total int) {
		calls++
		cancel()
	}))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, records)
	assert.Equal(t, 1, calls)
}

func TestRun_DoesNotShareRosterSlices(t *testing.T) {
	index := roster.NewIndex(kim())
	records, err := Run(context.Background(), index, openZip(t))
	require.NoError(t, err)

	records[0].DoubleMajors[0] = "changed"
	e, _ := index.Lookup("20211234")
	assert.Equal(t, []string{"Math"}, e.Minors)
}
