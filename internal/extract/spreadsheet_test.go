package extract_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"reqsmith/internal/domain"
	"reqsmith/internal/extract"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestSpreadsheetExtractor_HeaderedSheet(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Requirement", "Priority", "ID"},
		{"Support bulk import", "must have", "REQ-1"},
		{"", "", ""},
		{"Export audit log", "", "REQ-2"},
	})

	e := &extract.SpreadsheetExtractor{}
	frags, err := e.Extract(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, frags, 2)

	assert.Equal(t, "description: Support bulk import\npriority: must have\nref: REQ-1", frags[0].Text)
	assert.Equal(t, 0, frags[0].Ordinal)
	assert.Equal(t, "Sheet1", frags[0].Metadata["sheet"])
	assert.Equal(t, "2", frags[0].Metadata["row"])

	assert.Equal(t, "description: Export audit log\nref: REQ-2", frags[1].Text)
	assert.Equal(t, "4", frags[1].Metadata["row"])
}

func TestSpreadsheetExtractor_UnrecognizedColumnsCarriedThrough(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Requirement", "Owner", "Target Release"},
		{"Support bulk import", "platform team", "2026.3"},
	})

	e := &extract.SpreadsheetExtractor{}
	frags, err := e.Extract(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, frags, 1)

	assert.Equal(t, "description: Support bulk import\nowner: platform team\ntarget release: 2026.3", frags[0].Text)
}

func TestSpreadsheetExtractor_UnkeyedRowsFiltered(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Kickoff agenda"},
		{"The importer shall validate headers"},
		{"Lunch at noon"},
	})

	e := &extract.SpreadsheetExtractor{}
	frags, err := e.Extract(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Equal(t, "The importer shall validate headers", frags[0].Text)
	assert.Equal(t, "2", frags[0].Metadata["row"])
}

func TestSpreadsheetExtractor_Empty(t *testing.T) {
	e := &extract.SpreadsheetExtractor{}
	_, err := e.Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestSpreadsheetExtractor_Corrupted(t *testing.T) {
	e := &extract.SpreadsheetExtractor{}
	_, err := e.Extract(context.Background(), []byte("not a workbook"))
	assert.ErrorIs(t, err, domain.ErrCorruptedDocument)
}
