package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"

	"github.com/Simplici0/pouch.works/internal/quote"
)

func sampleState() quote.SimulationState {
	return quote.SimulationState{
		OrderType:       quote.OrderTypeNew,
		BagType:         "stand_up",
		MaterialGenre:   "opp-alu-foil",
		SurfaceMaterial: "gloss",
		Width:           100,
		Height:          200,
		Depth:           40,
		Quantities:      []int{1000, 5000, 50000},
	}
}

func sampleResults() []quote.QuotationResult {
	return []quote.QuotationResult{
		{Quantity: 1000, UnitPrice: 200, TotalPrice: 200000, Available: true},
		{Quantity: 5000, UnitPrice: 150, TotalPrice: 750000, Available: true},
		{Quantity: 50000},
	}
}

func TestComparison_SavingsAgainstFirstAvailable(t *testing.T) {
	rows := Comparison(append([]quote.QuotationResult{{Quantity: 500}}, sampleResults()...))
	require.Len(t, rows, 4)

	assert.False(t, rows[0].Available)
	assert.Zero(t, rows[0].SavingsPercent)
	assert.InDelta(t, 0, rows[1].SavingsPercent, 1e-9)
	assert.InDelta(t, 25, rows[2].SavingsPercent, 1e-9)
	assert.Zero(t, rows[3].SavingsPercent)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "stand_up / 100x200x40mm / opp-alu-foil / gloss", describe(sampleState()))

	state := sampleState()
	state.Depth = 0
	state.MaterialComposition = "pet_al"
	state.SurfaceMaterial = ""
	assert.Equal(t, "stand_up / 100x200mm / pet_al", describe(state))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleState(), sampleResults()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	title, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Contains(t, title, "stand_up")

	header, err := f.GetCellValue(sheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Unit price", header)

	qty, err := f.GetCellValue(sheetName, "A4")
	require.NoError(t, err)
	assert.Equal(t, "5000", qty)

	unit, err := f.GetCellValue(sheetName, "B4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "150", unit)

	savings, err := f.GetCellValue(sheetName, "D4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "25", savings)

	unavailable, err := f.GetCellValue(sheetName, "B5")
	require.NoError(t, err)
	assert.Equal(t, "n/a", unavailable)
}

func TestWriteText_English(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, language.English, sampleState(), sampleResults()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "Quote comparison: stand_up")
	assert.Equal(t, "Quantity\tUnit price\tTotal\tSavings", lines[1])
	assert.Contains(t, lines[2], "1,000")
	assert.Contains(t, lines[3], "750,000")
	assert.Contains(t, lines[3], "25.0%")
	assert.Contains(t, lines[4], "50,000")
	assert.Contains(t, lines[4], "unavailable")
}

func TestWriteText_Japanese(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, ParseLang("ja"), sampleState(), sampleResults()))

	out := buf.String()
	assert.Contains(t, out, "見積比較")
	assert.Contains(t, out, "数量")
	assert.Contains(t, out, "見積不可")
	assert.Contains(t, out, "200,000")
}

func TestParseLang(t *testing.T) {
	assert.Equal(t, language.Japanese, ParseLang("ja-JP"))
	assert.Equal(t, language.English, ParseLang("en"))
	assert.Equal(t, language.English, ParseLang("fr"))
	assert.Equal(t, language.English, ParseLang(""))
}
