package export_test

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"reqsmith/internal/domain"
	"reqsmith/internal/export"
)

func exportBatch() *domain.ExtractionBatch {
	return &domain.ExtractionBatch{
		Format: domain.FormatSpreadsheet,
		Requirements: []domain.Requirement{
			{
				ID:          "r1",
				Description: domain.SetValue("Support bulk import"),
				Priority:    domain.SetValue("High"),
				Source:      domain.FormatSpreadsheet,
				Ordinal:     0,
				Fields: map[string]domain.FieldValue{
					"owner":        domain.SetValue("data team"),
					"source_sheet": domain.SetValue("Backlog"),
				},
			},
			{
				ID:          "r2",
				Description: domain.UnresolvedValue(),
				Priority:    domain.SetValue(""),
				Source:      domain.FormatSpreadsheet,
				Ordinal:     1,
				Fields: map[string]domain.FieldValue{
					"ref": domain.SetValue("REQ-9"),
				},
			},
		},
	}
}

func TestWriteBatch(t *testing.T) {
	var buf bytes.Buffer
	w := export.NewWriter(&buf)
	require.NoError(t, w.WriteBatch(exportBatch()))
	w.Flush()
	require.NoError(t, w.Error())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"ID", "Ordinal", "Source", "Description", "Priority",
		"Owner", "Ref", "Source Sheet",
	}, rows[0])

	assert.Equal(t, []string{
		"r1", "0", "spreadsheet", "Support bulk import", "High",
		"data team", "", "Backlog",
	}, rows[1])

	assert.Equal(t, []string{
		"r2", "1", "spreadsheet", "(unresolved)", "",
		"", "REQ-9", "",
	}, rows[2])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, exportBatch()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Requirements")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "Support bulk import", rows[1][3])
	assert.Equal(t, "(unresolved)", rows[2][3])
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Q3_roadmap_v2", export.SanitizeFilename("Q3 roadmap (v2)"))
	assert.Equal(t, "spec", export.SanitizeFilename("__spec__"))
	long := strings.Repeat("a", 150)
	assert.Len(t, export.SanitizeFilename(long), 100)
}

func TestBuildFilename(t *testing.T) {
	name := export.BuildFilename("Q3 roadmap", "csv")
	assert.Equal(t, fmt.Sprintf("Q3_roadmap_%s.csv", time.Now().Format("2006-01-02")), name)
}
