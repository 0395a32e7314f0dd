// Package xlsxexport renders the monthly KPI recap as an XLSX workbook.
package xlsxexport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"restau/internal/csvexport"
	"restau/internal/domain"
)

// SheetName is the name of the single recap sheet.
const SheetName = "Recap"

// ContentType is the MIME type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// numFmtMoney is the builtin "#,##0.00" format.
const numFmtMoney = 4

// Write renders items into a workbook and writes it to w.
func Write(w io.Writer, items []domain.MonthlyItem) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtMoney})
	if err != nil {
		return fmt.Errorf("creating money style: %w", err)
	}

	header := make([]interface{}, len(csvexport.Columns))
	for i, c := range csvexport.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(csvexport.Columns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i := range items {
		rowNum := i + 2
		cells := csvexport.Cells(&items[i])
		for col, c := range cells {
			name, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return err
			}
			if err := setCell(f, name, c, moneyStyle); err != nil {
				return fmt.Errorf("writing %s: %w", name, err)
			}
		}
	}

	if err := f.SetColWidth(SheetName, "A", lastCol, 16); err != nil {
		return err
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	return f.Write(w)
}

func setCell(f *excelize.File, name string, c csvexport.Cell, moneyStyle int) error {
	switch c.Kind {
	case csvexport.CellText:
		return f.SetCellStr(SheetName, name, c.Text)
	case csvexport.CellInt:
		return f.SetCellInt(SheetName, name, c.Int)
	case csvexport.CellNumber:
		if err := f.SetCellFloat(SheetName, name, c.Number.InexactFloat64(), -1, 64); err != nil {
			return err
		}
		return f.SetCellStyle(SheetName, name, name, moneyStyle)
	default:
		return nil
	}
}
