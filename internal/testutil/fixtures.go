// Package testutil builds in-memory workbooks and archives for tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// RosterHeader is the full master roster header row.
var RosterHeader = []interface{}{
	"학번", "이름", "입학연도", "학생유형", "IPP이수", "학기차", "졸업예정",
	"어학시험종류", "어학점수", "졸업논문", "종합시험", "주전공", "심화여부",
	"복수전공1", "복수전공2", "복수전공3", "복수전공4", "복수전공5",
}

// TranscriptHeader is the transcript header row without the optional columns.
var TranscriptHeader = []interface{}{
	"No", "년도학기", "학수번호", "분반", "교과목명", "담당교원", "원어강의종류",
	"인정구분", "이수구분", "이수구분영역", "학점", "등급", "삭제구분",
}

// OptionalTranscriptHeader lists the four optional transcript columns.
var OptionalTranscriptHeader = []interface{}{
	"재수강 년도학기", "재수강 학수번호", "이수기관명", "대학원구분",
}

// Workbook returns the bytes of an XLSX workbook whose first sheet holds rows.
func Workbook(t testing.TB, rows ...[]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// Course returns a transcript row for the base header.
func Course(no int, code, name, english, category, subCategory string, credits float64, grade string) []interface{} {
	return []interface{}{
		no, "2023년 1학기", code, "01", name, "홍교수", english,
		"본교", category, subCategory, credits, grade, "",
	}
}

// Transcript returns a transcript workbook with the base header and rows.
func Transcript(t testing.TB, rows ...[]interface{}) []byte {
	t.Helper()
	all := append([][]interface{}{TranscriptHeader}, rows...)
	return Workbook(t, all...)
}

// Entry is one file of a test archive.
type Entry struct {
	Name    string
	Content []byte

	// Legacy stores the name without the UTF-8 flag; Name must then already
	// hold the legacy-encoded bytes.
	Legacy bool
}

// Zip returns the bytes of a zip archive holding entries in order.
func Zip(t testing.TB, entries ...Entry) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.Name, Method: zip.Deflate, NonUTF8: e.Legacy}
		fw, err := w.CreateHeader(hdr)
		require.NoError(t, err)
		_, err = fw.Write(e.Content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}
