package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/pouch.works/internal/quote"
)

const sheetName = "Quotes"

var xlsxHeader = []any{"Quantity", "Unit price", "Total price", "Savings %"}

// WriteXLSX writes a single-sheet workbook: a title row describing the
// design, a header row, then one row per quantity.
func WriteXLSX(w io.Writer, state quote.SimulationState, results []quote.QuotationResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("create money style: %w", err)
	}
	percent, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	if err != nil {
		return fmt.Errorf("create percent style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetCellValue(sheetName, "A1", describe(state)); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A2", &xlsxHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A2", "D2", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, row := range Comparison(results) {
		line := i + 3
		cell := func(col string) string { return fmt.Sprintf("%s%d", col, line) }

		values := []any{row.Quantity, row.UnitPrice, row.TotalPrice, row.SavingsPercent}
		if !row.Available {
			values = []any{row.Quantity, "n/a", "n/a", "n/a"}
		}
		if err := f.SetSheetRow(sheetName, cell("A"), &values); err != nil {
			return fmt.Errorf("write row %d: %w", line, err)
		}
		if !row.Available {
			continue
		}
		if err := f.SetCellStyle(sheetName, cell("B"), cell("C"), money); err != nil {
			return fmt.Errorf("style row %d: %w", line, err)
		}
		if err := f.SetCellStyle(sheetName, cell("D"), cell("D"), percent); err != nil {
			return fmt.Errorf("style row %d: %w", line, err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "D", 16); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
