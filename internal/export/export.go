// Package export renders a multi-quantity quote comparison as a workbook or
// a localized text summary.
package export

import (
	"fmt"
	"strings"

	"github.com/Simplici0/pouch.works/internal/quote"
)

// Row is one quantity in the comparison. SavingsPercent is the unit price
// reduction against the first available row.
type Row struct {
	Quantity       int
	UnitPrice      float64
	TotalPrice     float64
	SavingsPercent float64
	Available      bool
}

// Comparison builds the rows in the order the quotes were calculated.
func Comparison(results []quote.QuotationResult) []Row {
	rows := make([]Row, 0, len(results))
	baseline := 0.0
	for _, r := range results {
		row := Row{
			Quantity:   r.Quantity,
			UnitPrice:  r.UnitPrice,
			TotalPrice: r.TotalPrice,
			Available:  r.Available,
		}
		if r.Available {
			if baseline == 0 {
				baseline = r.UnitPrice
			}
			if baseline > 0 {
				row.SavingsPercent = (1 - r.UnitPrice/baseline) * 100
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func describe(state quote.SimulationState) string {
	size := fmt.Sprintf("%gx%g", state.Width, state.Height)
	if state.Depth > 0 {
		size += fmt.Sprintf("x%g", state.Depth)
	}

	parts := []string{state.BagType, size + "mm"}
	material := state.MaterialComposition
	if material == "" {
		material = state.MaterialGenre
	}
	for _, p := range []string{material, state.SurfaceMaterial} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " / ")
}
