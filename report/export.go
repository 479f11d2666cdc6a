package report

import (
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"

	"salesadmin/apiclient"
)

// WriteXLSX writes a report result grid to an xlsx spreadsheet at
// filePath, with a bold header row taken from the first row's column
// order. An empty grid produces a spreadsheet with no rows.
func WriteXLSX(rows []apiclient.Row, filePath string) error {

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"

	if len(rows) > 0 {
		headerStyle, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
		})
		if err != nil {
			return fmt.Errorf("could not make header style: %w", err)
		}
		for i, column := range rows[0].Columns {
			cell, err := excelize.CoordinatesToCellName(i+1, 1)
			if err != nil {
				return fmt.Errorf("header cell %d: %w", i, err)
			}
			if err := f.SetCellValue(sheet, cell, column); err != nil {
				return fmt.Errorf("header cell %s: %w", cell, err)
			}
			if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
				return fmt.Errorf("header cell %s style: %w", cell, err)
			}
		}
	}

	for r, row := range rows {
		for c, column := range row.Columns {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("cell %d,%d: %w", c, r, err)
			}
			if err := f.SetCellValue(sheet, cell, cellValue(row.Get(column))); err != nil {
				return fmt.Errorf("cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("could not save spreadsheet %s: %w", filePath, err)
	}
	return nil
}

// cellValue converts a report row value to a spreadsheet-friendly
// type. Numbers arrive as json.Number and are written as numbers where
// they parse; nulls become empty cells.
func cellValue(v any) any {
	switch value := v.(type) {
	case nil:
		return ""
	case json.Number:
		if f, err := value.Float64(); err == nil {
			return f
		}
		return value.String()
	default:
		return value
	}
}
