package extract

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"reqsmith/internal/domain"
)

// SpreadsheetExtractor extracts requirement fragments from XLSX rows. When a
// sheet's first row is a recognized header, each data row is rendered as
// key-value pairs so the normalizer can map columns to fields; otherwise rows
// pass through the requirement-like filter as plain text.
type SpreadsheetExtractor struct{}

// headerAliases maps recognized column headers to canonical field keys.
var headerAliases = map[string]string{
	"requirement":    domain.FieldKeyDescription,
	"description":    domain.FieldKeyDescription,
	"req":            domain.FieldKeyDescription,
	"priority":       domain.FieldKeyPriority,
	"id":             "ref",
	"requirement id": "ref",
}

func (e *SpreadsheetExtractor) Format() domain.FormatTag {
	return domain.FormatSpreadsheet
}

func (e *SpreadsheetExtractor) Extract(_ context.Context, data []byte) ([]domain.RawFragment, error) {
	if len(data) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: opening workbook: %v", domain.ErrCorruptedDocument, err)
	}
	defer f.Close()

	out := []domain.RawFragment{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: reading sheet %s: %v", domain.ErrCorruptedDocument, sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		keys := headerKeys(rows[0])
		start := 0
		if keys != nil {
			start = 1
		}

		for ri := start; ri < len(rows); ri++ {
			row := rows[ri]
			text := rowText(row, keys)
			if text == "" {
				continue
			}
			if keys == nil && !isRequirementLike(text) {
				continue
			}
			out = append(out, domain.RawFragment{
				Text:    text,
				Ordinal: len(out),
				Metadata: map[string]string{
					"sheet": sheet,
					"row":   strconv.Itoa(ri + 1),
				},
			})
		}
	}
	return out, nil
}

// headerKeys returns per-column field keys when the row is a recognized
// header, or nil when it is not. Columns without an alias keep their own
// normalized header as the key so their values are not dropped.
func headerKeys(row []string) []string {
	keys := make([]string, len(row))
	matched := 0
	for i, cell := range row {
		norm := strings.Join(strings.Fields(strings.ToLower(cell)), " ")
		if key, ok := headerAliases[norm]; ok {
			keys[i] = key
			matched++
		} else if norm != "" {
			keys[i] = norm
		}
	}
	if matched == 0 {
		return nil
	}
	return keys
}

func rowText(row []string, keys []string) string {
	var parts []string
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if keys != nil && i < len(keys) && keys[i] != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", keys[i], cell))
		} else if keys == nil {
			parts = append(parts, cell)
		}
	}
	return strings.Join(parts, "\n")
}
