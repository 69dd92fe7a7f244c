// Package ratecard computes the simulator's instant per-area estimate with
// fixed-point arithmetic.
package ratecard

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrInvalidInput = errors.New("invalid rate card input")

// Input describes one design at one quantity.
type Input struct {
	BagType     string  `json:"bagType"`
	Surface     string  `json:"surface"`
	Composition string  `json:"composition"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Quantity    int     `json:"quantity"`
}

// Estimate is the itemized per-unit price.
type Estimate struct {
	Quantity      int
	HighVolume    bool
	Area          decimal.Decimal
	MaterialRate  decimal.Decimal
	MaterialCost  decimal.Decimal
	SetupPerUnit  decimal.Decimal
	ProcessingFee decimal.Decimal
	Offset        decimal.Decimal
	UnitPrice     decimal.Decimal
	TotalPrice    decimal.Decimal
}

// Table is a rate card. Adders are per mm² and stack on BaseRate.
type Table struct {
	BaseRate            decimal.Decimal
	SurfaceAdders       map[string]decimal.Decimal
	CompositionAdders   map[string]decimal.Decimal
	HighVolumeAdder     decimal.Decimal
	HighVolumeThreshold int
	Setup               decimal.Decimal
	HighVolumeSetup     decimal.Decimal
	ProcessingFees      map[string]decimal.Decimal
	// SmallLotOffset is applied per unit below the high-volume threshold.
	SmallLotOffset decimal.Decimal
}

// DefaultTable is the calibrated card for OPP/aluminium laminates.
func DefaultTable() Table {
	return Table{
		BaseRate: decimal.RequireFromString("0.0015"),
		SurfaceAdders: map[string]decimal.Decimal{
			"matte": decimal.Zero,
			"gloss": decimal.RequireFromString("0.00006"),
		},
		CompositionAdders: map[string]decimal.Decimal{
			"standard": decimal.Zero,
			"thick":    decimal.RequireFromString("0.00016"),
		},
		HighVolumeAdder:     decimal.RequireFromString("0.00008"),
		HighVolumeThreshold: 50000,
		Setup:               decimal.NewFromInt(150000),
		HighVolumeSetup:     decimal.NewFromInt(200000),
		ProcessingFees: map[string]decimal.Decimal{
			"flat_3_side": decimal.Zero,
			"stand_up":    decimal.NewFromInt(8),
			"gusset":      decimal.NewFromInt(15),
		},
		SmallLotOffset: decimal.NewFromInt(-3),
	}
}

// Estimate prices in. Unknown surfaces, compositions and bag types carry no
// adder or fee.
func (t Table) Estimate(in Input) (Estimate, error) {
	if in.Quantity <= 0 {
		return Estimate{}, fmt.Errorf("quantity %d: %w", in.Quantity, ErrInvalidInput)
	}
	if in.Width <= 0 || in.Height <= 0 {
		return Estimate{}, fmt.Errorf("dimensions %gx%g: %w", in.Width, in.Height, ErrInvalidInput)
	}

	qty := decimal.NewFromInt(int64(in.Quantity))
	highVolume := in.Quantity >= t.HighVolumeThreshold

	rate := t.BaseRate.Add(t.SurfaceAdders[in.Surface]).Add(t.CompositionAdders[in.Composition])
	setup := t.Setup
	offset := t.SmallLotOffset
	if highVolume {
		rate = rate.Add(t.HighVolumeAdder)
		setup = t.HighVolumeSetup
		offset = decimal.Zero
	}

	area := decimal.NewFromFloat(in.Width).Mul(decimal.NewFromFloat(in.Height))
	material := area.Mul(rate)
	setupPerUnit := setup.Div(qty)
	fee := t.ProcessingFees[in.BagType]

	unit := setupPerUnit.Add(material).Add(fee).Add(offset)

	return Estimate{
		Quantity:      in.Quantity,
		HighVolume:    highVolume,
		Area:          area,
		MaterialRate:  rate,
		MaterialCost:  material,
		SetupPerUnit:  setupPerUnit,
		ProcessingFee: fee,
		Offset:        offset,
		UnitPrice:     unit,
		TotalPrice:    unit.Mul(qty),
	}, nil
}
