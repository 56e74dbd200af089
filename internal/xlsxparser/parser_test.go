package xlsxparser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/testutil"
)

func TestParse_Success(t *testing.T) {
	data := testutil.Workbook(t,
		[]interface{}{"학번", "이름", "입학연도", "학점"},
		[]interface{}{"20211234", "김동국", 2021, 1.5},
		[]interface{}{"20215678", "이연구", 2022, 3},
	)

	table, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"학번", "이름", "입학연도", "학점"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "20211234", table.Rows[0].Text("학번"))
	assert.Equal(t, "김동국", table.Rows[0].Text("이름"))
	assert.Equal(t, 2021, table.Rows[0].Int("입학연도"))
	assert.Equal(t, 1.5, table.Rows[0].Float("학점"))
	assert.Equal(t, 3.0, table.Rows[1].Float("학점"))
}

func TestParse_HeaderOnly(t *testing.T) {
	data := testutil.Workbook(t, []interface{}{"No", "학점"})

	table, err := Parse(data)
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}

func TestParse_EmptyWorkbook(t *testing.T) {
	table, err := Parse(testutil.Workbook(t))
	require.NoError(t, err)
	assert.Empty(t, table.Headers)
	assert.Empty(t, table.Rows)
}

func TestParse_SkipsBlankRows(t *testing.T) {
	data := testutil.Workbook(t,
		[]interface{}{"학번"},
		[]interface{}{"1"},
		[]interface{}{""},
		[]interface{}{"2"},
	)

	table, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 4, table.Rows[1].Number)
}

func TestParse_NotAWorkbook(t *testing.T) {
	_, err := Parse([]byte("this is not a spreadsheet"))
	assert.Error(t, err)

	_, err = Parse(nil)
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	require.NoError(t, os.WriteFile(path, testutil.Workbook(t,
		[]interface{}{"학번"},
		[]interface{}{"20211234"},
	), 0o644))

	table, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}
