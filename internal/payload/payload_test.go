package payload

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/anonymize"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/types"
)

func records() []types.StudentRecord {
	return []types.StudentRecord{
		{
			EncryptedID: anonymize.EncryptID("2021001"), StudentID: "2021001", Name: "김동국",
			AdmissionYear: 2021, StudentType: "일반", Major: "컴퓨터공학과",
			DoubleMajors: []string{"수학과"},
			Grades:       []types.GradeRow{{SubjectCode: "CSE1001", Credits: 3, Grade: "A0"}},
			Status:       types.StatusNormal,
		},
		{
			EncryptedID: anonymize.EncryptID("2021002"), StudentID: "2021002", Name: "이연구",
			Status: types.StatusMissingGrades,
		},
		{
			EncryptedID: anonymize.EncryptID("2021003"), StudentID: "2021003", Name: types.UnknownLabel,
			Status: types.StatusMissingInfo,
		},
		{
			EncryptedID: types.UnknownID, StudentID: types.UnknownID, Name: types.UnknownLabel,
			Status: types.StatusParsingError,
		},
		{
			EncryptedID: anonymize.EncryptID("2021004"), StudentID: "2021004", Name: "최학생",
			Major:  "통계학과",
			Status: types.StatusNormal,
		},
	}
}

func TestToAnonymized_NormalOnly(t *testing.T) {
	out := ToAnonymized(records())
	require.Len(t, out, 2)

	assert.Equal(t, anonymize.EncryptID("2021001"), out[0].EncryptedID)
	assert.Equal(t, 2021, out[0].AdmissionYear)
	assert.Equal(t, "컴퓨터공학과", out[0].Major)
	assert.Equal(t, []string{"수학과"}, out[0].DoubleMajors)
	assert.Len(t, out[0].Grades, 1)

	assert.Equal(t, anonymize.EncryptID("2021004"), out[1].EncryptedID)
	assert.NotNil(t, out[1].DoubleMajors)
	assert.NotNil(t, out[1].Grades)
}

func TestToAnonymized_NoIdentityFields(t *testing.T) {
	typ := reflect.TypeOf(Student{})
	for i := 0; i < typ.NumField(); i++ {
		name := typ.Field(i).Name
		assert.NotEqual(t, "StudentID", name)
		assert.NotEqual(t, "Name", name)
	}

	data, err := json.Marshal(ToAnonymized(records()))
	require.NoError(t, err)
	body := string(data)
	for _, leak := range []string{"2021001", "김동국", "2021004", "최학생", "studentId", `"name"`} {
		assert.False(t, strings.Contains(body, leak), "payload contains %q", leak)
	}
}

func TestToAnonymized_Empty(t *testing.T) {
	out := ToAnonymized(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestToMappingTable(t *testing.T) {
	recs := records()
	mapping := ToMappingTable(recs)

	assert.Len(t, mapping, len(recs))
	for _, r := range recs {
		id, ok := mapping[r.EncryptedID]
		require.True(t, ok)
		assert.Equal(t, r.StudentID, id.StudentID)
		assert.Equal(t, r.Name, id.Name)
	}
}

func TestToMappingTable_LastWriteWins(t *testing.T) {
	recs := []types.StudentRecord{
		{EncryptedID: types.UnknownID, StudentID: types.UnknownID, Name: "first.xlsx"},
		{EncryptedID: types.UnknownID, StudentID: types.UnknownID, Name: "second.xlsx"},
	}

	mapping := ToMappingTable(recs)
	require.Len(t, mapping, 1)
	assert.Equal(t, "second.xlsx", mapping[types.UnknownID].Name)
}
