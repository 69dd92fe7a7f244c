// Package quote adapts the simulator's flat form state to the pricing engine
// and fans a request out over several quantities.
package quote

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Simplici0/pouch.works/internal/cache"
	"github.com/Simplici0/pouch.works/internal/pricing"
)

const (
	OrderTypeNew    = "new"
	OrderTypeRepeat = "repeat"
)

// SimulationState is the form state posted by the quote simulator.
type SimulationState struct {
	OrderType           string  `json:"orderType"`
	ContentsType        string  `json:"contentsType,omitempty"`
	BagType             string  `json:"bagType"`
	MaterialGenre       string  `json:"materialGenre"`
	SurfaceMaterial     string  `json:"surfaceMaterial"`
	MaterialComposition string  `json:"materialComposition"`
	Width               float64 `json:"width"`
	Height              float64 `json:"height"`
	Depth               float64 `json:"depth,omitempty"`
	Quantities          []int   `json:"quantities"`
}

// QuotationResult is one row of the per-quantity comparison. Available is
// false when the engine rejected the specification or failed; prices are
// then zero and must not be shown as a quote.
type QuotationResult struct {
	Quantity       int                       `json:"quantity"`
	UnitPrice      float64                   `json:"unitPrice"`
	TotalPrice     float64                   `json:"totalPrice"`
	DiscountFactor float64                   `json:"discountFactor,omitempty"`
	Available      bool                      `json:"available"`
	Validation     *pricing.ValidationResult `json:"validation,omitempty"`
}

// Pricer is the engine surface the facade needs.
type Pricer interface {
	CalculatePrice(ctx context.Context, input pricing.PriceCalculationInput) (pricing.QuotePatternCalculationResult, error)
}

type Option func(*Facade)

// WithLogger sets the logger for failed quantities.
func WithLogger(l zerolog.Logger) Option { return func(f *Facade) { f.logger = l } }

// WithCacheTTL sets an expiry on the facade cache. The default, zero, keeps
// entries for the lifetime of the facade.
func WithCacheTTL(ttl time.Duration) Option { return func(f *Facade) { f.cacheTTL = ttl } }

// WithTracerProvider sets the provider batch spans are started from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(f *Facade) { f.tracer = tp.Tracer(tracerName) }
}

const tracerName = "github.com/Simplici0/pouch.works/internal/quote"

// Facade is the batch-by-quantity entry point.
type Facade struct {
	pricer   Pricer
	logger   zerolog.Logger
	tracer   trace.Tracer
	cacheTTL time.Duration
	cache    *cache.Store[string, []QuotationResult]
}

func New(pricer Pricer, opts ...Option) *Facade {
	f := &Facade{
		pricer: pricer,
		logger: zerolog.Nop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.cache = cache.New[string, []QuotationResult](f.cacheTTL, nil)
	return f
}

// Calculate prices state once per non-zero entry of state.Quantities, in
// order. A failing quantity is logged and replaced by a zero-price
// placeholder; a batch containing one is not cached, so the next call
// retries it. delay, when positive, is waited before calculating; only a
// context cancellation during that wait returns an error.
func (f *Facade) Calculate(ctx context.Context, state SimulationState, delay time.Duration) ([]QuotationResult, error) {
	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	key := cacheKey(state)
	if cached, ok := f.cache.Get(key); ok {
		return clone(cached), nil
	}

	ctx, span := f.tracer.Start(ctx, "quote.Calculate", trace.WithAttributes(
		attribute.String("quote.bag_type", state.BagType),
		attribute.Int("quote.quantities", len(state.Quantities)),
	))
	defer span.End()

	gen := f.cache.Generation()
	failed := false
	results := make([]QuotationResult, 0, len(state.Quantities))
	for _, qty := range state.Quantities {
		if qty == 0 {
			continue
		}

		priced, err := f.pricer.CalculatePrice(ctx, PriceInput(state, qty))
		if err != nil {
			f.logger.Error().Err(err).Int("quantity", qty).Str("bag_type", state.BagType).Msg("quote calculation failed, using placeholder")
			results = append(results, QuotationResult{Quantity: qty})
			failed = true
			continue
		}
		results = append(results, fromResult(qty, priced))
	}

	span.SetAttributes(attribute.Bool("quote.partial", failed))
	if !failed {
		f.cache.SetIfGeneration(gen, key, clone(results))
	}
	return results, nil
}

// CalculateSync is kept for callers of the old synchronous API. Pricing
// cannot complete synchronously, so it always returns an empty result set.
//
// Deprecated: use Calculate.
func (f *Facade) CalculateSync(state SimulationState) []QuotationResult {
	f.logger.Warn().Str("bag_type", state.BagType).Msg("CalculateSync is deprecated and returns no results; use Calculate")
	return []QuotationResult{}
}

// ClearCache drops every memoized batch.
func (f *Facade) ClearCache() { f.cache.Clear() }

func (f *Facade) CacheLen() int { return f.cache.Len() }

// PriceInput maps the simulator state for one quantity onto an engine input.
func PriceInput(state SimulationState, quantity int) pricing.PriceCalculationInput {
	material := state.MaterialComposition
	if material == "" {
		material = state.MaterialGenre
	}

	return pricing.PriceCalculationInput{
		Pattern: pricing.QuotePattern{
			SKUCount: 1,
			Quantity: quantity,
			Bag: pricing.BagSpecification{
				BagTypeID:             state.BagType,
				MaterialCompositionID: material,
				Width:                 state.Width,
				Height:                state.Height,
				Depth:                 state.Depth,
			},
			Printing: pricing.PrintingSpecification{
				PrintColors:   pricing.PrintColors{Front: 0, Back: 0},
				PrintCoverage: pricing.CoveragePartial,
			},
			Features: pricing.FeatureSpecification{},
		},
		UserTier:      pricing.TierBasic,
		IsRepeatOrder: state.OrderType == OrderTypeRepeat,
	}
}

func fromResult(qty int, r pricing.QuotePatternCalculationResult) QuotationResult {
	if !r.IsAvailable {
		validation := r.Validation.Clone()
		return QuotationResult{Quantity: qty, Validation: &validation}
	}

	b := r.PriceBreakdown
	out := QuotationResult{
		Quantity:   qty,
		UnitPrice:  b.UnitPrice,
		TotalPrice: b.TotalPrice,
		Available:  true,
	}
	if b.BasePrice > 0 {
		out.DiscountFactor = (b.VolumeDiscount + b.UserDiscount) / b.BasePrice
	}
	return out
}

// cacheKey covers only the fields that affect price.
func cacheKey(s SimulationState) string {
	qs := make([]string, len(s.Quantities))
	for i, q := range s.Quantities {
		qs[i] = strconv.Itoa(q)
	}
	return strings.Join([]string{
		fmt.Sprintf("%gx%gx%g", s.Width, s.Height, s.Depth),
		s.BagType,
		s.MaterialGenre,
		s.SurfaceMaterial,
		s.MaterialComposition,
		strings.Join(qs, ","),
		s.OrderType,
	}, "|")
}

func clone(in []QuotationResult) []QuotationResult {
	out := make([]QuotationResult, len(in))
	copy(out, in)
	for i := range out {
		if out[i].Validation != nil {
			v := out[i].Validation.Clone()
			out[i].Validation = &v
		}
	}
	return out
}
