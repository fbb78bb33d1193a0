// Package tracer is a small tracing abstraction over OpenTelemetry.
//
// Services and sink decorators depend on the Tracer interface rather than on
// otel directly. Implementations:
//   - NoopTracer: for tests
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording err if non-nil.
	// End must be called exactly once, typically via defer.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Pseudonym returns a short SHA-256 prefix of a personal value (visitor
// name, unit) so spans can be correlated without carrying the value itself.
func Pseudonym(value string) string {
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:8])
}

// Span names.
const (
	SpanSinkAppend  = "logsink.append"
	SpanSinkReadAll = "logsink.read_all"
	SpanIssue       = "invitation.issue"
	SpanValidate    = "invitation.validate"
)

// Attribute keys.
const (
	AttrTable      = "sink.table"
	AttrCells      = "sink.cells"
	AttrRows       = "sink.rows"
	AttrUnit       = "unit"
	AttrAction     = "action"
	AttrShortCode  = "short_code"
	AttrQRImage    = "qr_image"
	AttrFailReason = "fail_reason"
)
