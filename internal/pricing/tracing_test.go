package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestCalculatePrice_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	engine := newTestEngine(t, WithTracerProvider(tp))

	_, err := engine.CalculatePrice(context.Background(), PriceCalculationInput{Pattern: flatPattern(1000), UserTier: TierBasic})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "pricing.CalculatePrice", spans[0].Name())

	qty, ok := spanAttr(spans[0], "pricing.quantity")
	require.True(t, ok)
	assert.Equal(t, int64(1000), qty.AsInt64())

	available, ok := spanAttr(spans[0], "pricing.available")
	require.True(t, ok)
	assert.True(t, available.AsBool())

	// A cache hit does not start a new span.
	_, err = engine.CalculatePrice(context.Background(), PriceCalculationInput{Pattern: flatPattern(1000), UserTier: TierBasic})
	require.NoError(t, err)
	assert.Len(t, recorder.Ended(), 1)
}

func TestCalculatePrice_SpanMarksFailure(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	static := DefaultStaticReferences()
	engine, err := NewEngine(References{
		BagTypes:  static,
		Materials: failingMaterials{err: errors.New("catalog unreachable")},
		Discounts: static,
	}, WithTracerProvider(tp))
	require.NoError(t, err)

	_, err = engine.CalculatePrice(context.Background(), PriceCalculationInput{Pattern: flatPattern(1000), UserTier: TierBasic})
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
