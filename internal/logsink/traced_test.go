package logsink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"gatepass/pkg/platform/tracer"
)

func TestTraced_EmitsSpanPerCall(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	sink := NewTraced(NewMemory(), tracer.NewOTel("test", provider.Tracer("test")))
	ctx := context.Background()

	require.NoError(t, sink.Append(ctx, Visits, Row{"t", "Ana", "4B", "Luis", "entry", ""}))
	rows, err := sink.ReadAll(ctx, Visits)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, tracer.SpanSinkAppend, ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.Int(tracer.AttrCells, 6))
	assert.Equal(t, tracer.SpanSinkReadAll, ended[1].Name())
	assert.Contains(t, ended[1].Attributes(), attribute.Int(tracer.AttrRows, 1))
}

func TestTraced_RecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	sink := NewTraced(&flakySink{Memory: NewMemory(), failFirst: 1}, tracer.NewOTel("test", provider.Tracer("test")))

	require.Error(t, sink.Append(context.Background(), Visits, Row{"t"}))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}

func TestTraced_NilTracerFallsBackToNoop(t *testing.T) {
	sink := NewTraced(NewMemory(), nil)
	assert.NoError(t, sink.Append(context.Background(), Visits, Row{"t"}))
}
