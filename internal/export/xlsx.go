package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"reqsmith/internal/domain"
)

const sheetName = "Requirements"

// WriteXLSX renders the batch as a single-sheet XLSX workbook.
func WriteXLSX(w io.Writer, batch *domain.ExtractionBatch) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	extra := extraFieldKeys(batch)
	if err := writeRow(f, 1, headerRow(extra)); err != nil {
		return err
	}
	for i := range batch.Requirements {
		if err := writeRow(f, i+2, requirementToRow(&batch.Requirements[i], extra)); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("computing cell for row %d: %w", rowNum, err)
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
		return fmt.Errorf("writing row %d: %w", rowNum, err)
	}
	return nil
}
