package export

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Simplici0/pouch.works/internal/quote"
)

var supported = []language.Tag{language.English, language.Japanese}

var matcher = language.NewMatcher(supported)

func init() {
	for key, ja := range map[string]string{
		"Quote comparison: %s": "見積比較: %s",
		"Quantity":             "数量",
		"Unit price":           "単価",
		"Total":                "合計",
		"Savings":              "削減率",
		"unavailable":          "見積不可",
	} {
		_ = message.SetString(language.Japanese, key, ja)
	}
}

// ParseLang resolves a lang parameter to a supported tag, defaulting to English.
func ParseLang(lang string) language.Tag {
	_, idx := language.MatchStrings(matcher, lang)
	return supported[idx]
}

// WriteText writes a plain-text comparison with locale-specific labels and
// digit grouping.
func WriteText(w io.Writer, tag language.Tag, state quote.SimulationState, results []quote.QuotationResult) error {
	p := message.NewPrinter(tag)

	if _, err := p.Fprintf(w, "Quote comparison: %s", describe(state)); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	if _, err := fmt.Fprintf(w, "\n%s\t%s\t%s\t%s\n", p.Sprintf("Quantity"), p.Sprintf("Unit price"), p.Sprintf("Total"), p.Sprintf("Savings")); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, row := range Comparison(results) {
		var line string
		if row.Available {
			line = p.Sprintf("%d\t%.2f\t%.0f\t%.1f%%", row.Quantity, row.UnitPrice, row.TotalPrice, row.SavingsPercent)
		} else {
			line = p.Sprintf("%d", row.Quantity) + "\t" + p.Sprintf("unavailable")
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return nil
}
