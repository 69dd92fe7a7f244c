// Package pricing turns a packaging specification into a price breakdown,
// production timeline and validation report.
package pricing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/Simplici0/pouch.works/internal/cache"
)

// DefaultCacheTTL bounds how long a computed result is reused.
const DefaultCacheTTL = 5 * time.Minute

// DefaultCalculationTimeout bounds a shared calculation, which no longer
// follows the cancellation of the caller that started it.
const DefaultCalculationTimeout = 30 * time.Second

const tracerName = "github.com/Simplici0/pouch.works/internal/pricing"

// CalculationError reports an unexpected failure (provider or computation),
// as opposed to a user-correctable validation problem.
type CalculationError struct {
	Err error
}

func (e *CalculationError) Error() string {
	return "price calculation failed: " + e.Err.Error()
}

func (e *CalculationError) Unwrap() error { return e.Err }

type engineOptions struct {
	rates    Rates
	rules    []Rule
	cacheTTL time.Duration
	timeout  time.Duration
	now      func() time.Time
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// Option configures an Engine.
type Option func(*engineOptions)

// WithRates replaces the default calibration.
func WithRates(r Rates) Option { return func(o *engineOptions) { o.rates = r } }

// WithRules replaces the field validation rules.
func WithRules(rules ...Rule) Option { return func(o *engineOptions) { o.rules = rules } }

// WithCacheTTL sets how long results are reused; zero keeps them until ClearCache.
func WithCacheTTL(ttl time.Duration) Option { return func(o *engineOptions) { o.cacheTTL = ttl } }

// WithCalculationTimeout bounds each shared calculation.
func WithCalculationTimeout(d time.Duration) Option { return func(o *engineOptions) { o.timeout = d } }

// WithClock sets the time source for cache expiry and delivery dates.
func WithClock(now func() time.Time) Option { return func(o *engineOptions) { o.now = now } }

// WithLogger sets the logger for calculation failures.
func WithLogger(l zerolog.Logger) Option { return func(o *engineOptions) { o.logger = l } }

// WithTracerProvider sets the provider the engine's spans are started from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *engineOptions) { o.tracer = tp.Tracer(tracerName) }
}

// Engine computes prices from injected reference providers. It is safe for
// concurrent use; concurrent requests for the same input share one
// calculation.
type Engine struct {
	refs    References
	rates   Rates
	rules   []Rule
	timeout time.Duration
	now     func() time.Time
	logger zerolog.Logger
	tracer trace.Tracer

	cache *cache.Store[string, QuotePatternCalculationResult]
	group singleflight.Group
}

// NewEngine returns an engine over refs. Every provider must be set.
func NewEngine(refs References, opts ...Option) (*Engine, error) {
	if refs.BagTypes == nil || refs.Materials == nil || refs.Discounts == nil {
		return nil, errors.New("pricing engine: bag type, material and discount providers are required")
	}

	o := engineOptions{
		rates:    DefaultRates(),
		rules:    DefaultRules,
		cacheTTL: DefaultCacheTTL,
		timeout:  DefaultCalculationTimeout,
		now:      time.Now,
		logger:   zerolog.Nop(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Engine{
		refs:    refs,
		rates:   o.rates,
		rules:   o.rules,
		timeout: o.timeout,
		now:     o.now,
		logger:  o.logger,
		tracer:  o.tracer,
		cache:   cache.New[string, QuotePatternCalculationResult](o.cacheTTL, o.now),
	}, nil
}

// Rates returns the calibration the engine was built with.
func (e *Engine) Rates() Rates { return e.rates }

// ClearCache drops every memoized result.
func (e *Engine) ClearCache() { e.cache.Clear() }

// CacheLen reports the number of memoized results.
func (e *Engine) CacheLen() int { return e.cache.Len() }

// CalculatePrice prices one pattern. Validation problems never produce an
// error: the result comes back with IsAvailable false and a zero breakdown.
// A *CalculationError is returned for provider or context failures.
//
// Concurrent calls for the same input share one calculation. That
// calculation is detached from the caller that started it and bounded by the
// engine's calculation timeout; each caller stops waiting when its own ctx
// is done. The returned result is a copy the caller may modify.
func (e *Engine) CalculatePrice(ctx context.Context, input PriceCalculationInput) (QuotePatternCalculationResult, error) {
	key, err := cacheKey(input)
	if err != nil {
		return QuotePatternCalculationResult{}, &CalculationError{Err: err}
	}
	if cached, ok := e.cache.Get(key); ok {
		return cloneResult(cached), nil
	}
	if err := ctx.Err(); err != nil {
		return QuotePatternCalculationResult{}, &CalculationError{Err: err}
	}

	// Calculations started before a ClearCache never serve callers that
	// arrive after it.
	gen := e.cache.Generation()
	flight := key + "@" + strconv.FormatUint(gen, 10)

	ch := e.group.DoChan(flight, func() (any, error) {
		if cached, ok := e.cache.Get(key); ok {
			return cached, nil
		}
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		defer cancel()
		return e.calculate(shared, input, key, gen)
	})

	select {
	case <-ctx.Done():
		return QuotePatternCalculationResult{}, &CalculationError{Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return QuotePatternCalculationResult{}, res.Err
		}
		return cloneResult(res.Val.(QuotePatternCalculationResult)), nil
	}
}

func (e *Engine) calculate(ctx context.Context, input PriceCalculationInput, key string, gen uint64) (QuotePatternCalculationResult, error) {
	pattern := input.Pattern
	ctx, span := e.tracer.Start(ctx, "pricing.CalculatePrice", trace.WithAttributes(
		attribute.String("pricing.bag_type", pattern.Bag.BagTypeID),
		attribute.String("pricing.material", pattern.Bag.MaterialCompositionID),
		attribute.Int("pricing.quantity", pattern.Quantity),
		attribute.String("pricing.user_tier", string(input.UserTier)),
	))
	defer span.End()

	fail := func(err error) (QuotePatternCalculationResult, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Error().Err(err).Str("pattern_id", pattern.ID).Msg("price calculation failed")
		return QuotePatternCalculationResult{}, &CalculationError{Err: err}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	validation := Validate(pattern, e.rules)
	if !validation.IsValid {
		span.SetAttributes(attribute.Bool("pricing.available", false))
		return e.unavailable(pattern, validation), nil
	}

	bagInfo, err := e.refs.BagTypes.BagTypePricing(ctx, pattern.Bag.BagTypeID)
	if err != nil {
		if !errors.Is(err, ErrReferenceNotFound) {
			return fail(fmt.Errorf("lookup bag type %q: %w", pattern.Bag.BagTypeID, err))
		}
		validation.AddError(ValidationError{
			Field:   "bag.bagTypeId",
			Code:    CodeUnknownBagType,
			Message: fmt.Sprintf("Unknown bag type %q", pattern.Bag.BagTypeID),
		})
	}

	materialInfo, err := e.refs.Materials.MaterialPricing(ctx, pattern.Bag.MaterialCompositionID)
	if err != nil {
		if !errors.Is(err, ErrReferenceNotFound) {
			return fail(fmt.Errorf("lookup material %q: %w", pattern.Bag.MaterialCompositionID, err))
		}
		validation.AddError(ValidationError{
			Field:   "bag.materialCompositionId",
			Code:    CodeUnknownMaterial,
			Message: fmt.Sprintf("Unknown material composition %q", pattern.Bag.MaterialCompositionID),
		})
	}

	if !validation.IsValid {
		span.SetAttributes(attribute.Bool("pricing.available", false))
		return e.unavailable(pattern, validation), nil
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	tiers, err := e.refs.Discounts.VolumeDiscounts(ctx, pattern.Bag.BagTypeID, pattern.Bag.MaterialCompositionID)
	if err != nil && !errors.Is(err, ErrReferenceNotFound) {
		return fail(fmt.Errorf("lookup volume discounts: %w", err))
	}

	advise(&validation, pattern, bagInfo, tiers)

	material := MaterialCost(e.rates, pattern, materialInfo)
	printing := PrintingCost(e.rates, pattern)
	features := FeatureCost(e.rates, pattern.Features)

	basePrice := BasePrice(e.rates, bagInfo, material, printing, features)
	volumeDiscount := VolumeDiscount(pattern.Quantity, basePrice, tiers)
	userDiscount := UserDiscount(e.rates, basePrice, input.UserTier, input.IsRepeatOrder)
	setupFee := SetupFee(e.rates, pattern.Quantity, printing)

	unitPrice := (basePrice - volumeDiscount - userDiscount) + setupFee/float64(pattern.Quantity)

	result := QuotePatternCalculationResult{
		PatternID:      pattern.ID,
		PatternName:    patternName(pattern),
		Specifications: pattern,
		PriceBreakdown: PriceBreakdown{
			BasePrice:      basePrice,
			MaterialCost:   material,
			PrintingCost:   printing,
			FeatureCost:    features,
			VolumeDiscount: volumeDiscount,
			UserDiscount:   userDiscount,
			SetupFee:       setupFee,
			UnitPrice:      unitPrice,
			TotalPrice:     unitPrice * float64(pattern.Quantity),
			Margin:         Margin(unitPrice, material, printing, features),
		},
		ProductionTimeline: Timeline(e.rates, pattern, input.DeliveryPostalCode, e.now()),
		Validation:         validation,
		IsAvailable:        true,
	}
	if result.PatternID == "" {
		result.PatternID = "pattern_" + uuid.NewString()
	}

	span.SetAttributes(
		attribute.Bool("pricing.available", true),
		attribute.Float64("pricing.unit_price", unitPrice),
	)

	e.cache.SetIfGeneration(gen, key, cloneResult(result))
	return result, nil
}

func (e *Engine) unavailable(pattern QuotePattern, validation ValidationResult) QuotePatternCalculationResult {
	id := pattern.ID
	if id == "" {
		id = "unknown"
	}
	return QuotePatternCalculationResult{
		PatternID:      id,
		PatternName:    patternName(pattern),
		Specifications: pattern,
		PriceBreakdown: PriceBreakdown{
			PrintingCost: PrintingCostBreakdown{PremiumFeaturesCost: map[string]float64{}},
		},
		ProductionTimeline: ProductionTimeline{EstimatedDeliveryDate: e.now()},
		Validation:         validation,
		IsAvailable:        false,
	}
}

func patternName(p QuotePattern) string {
	if p.PatternName != "" {
		return p.PatternName
	}
	return "Unnamed Pattern"
}

// cacheKey digests the full serialized input. Struct fields marshal in
// declaration order, so equal inputs always produce equal keys.
func cacheKey(input PriceCalculationInput) (string, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("serialize calculation input: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// cloneResult copies every map, slice and pointer of r so callers cannot
// reach cached state.
func cloneResult(r QuotePatternCalculationResult) QuotePatternCalculationResult {
	out := r

	if r.PriceBreakdown.PrintingCost.PremiumFeaturesCost != nil {
		m := make(map[string]float64, len(r.PriceBreakdown.PrintingCost.PremiumFeaturesCost))
		for k, v := range r.PriceBreakdown.PrintingCost.PremiumFeaturesCost {
			m[k] = v
		}
		out.PriceBreakdown.PrintingCost.PremiumFeaturesCost = m
	}

	out.Validation = r.Validation.Clone()
	out.Specifications = r.Specifications.Clone()
	return out
}
