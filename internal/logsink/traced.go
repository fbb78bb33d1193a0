package logsink

import (
	"context"

	"gatepass/pkg/platform/tracer"
)

// Traced emits one span per sink call.
type Traced struct {
	next   Sink
	tracer tracer.Tracer
}

func NewTraced(next Sink, t tracer.Tracer) *Traced {
	if t == nil {
		t = tracer.NewNoop()
	}
	return &Traced{next: next, tracer: t}
}

func (t *Traced) Append(ctx context.Context, table Table, row Row) (err error) {
	ctx, span := t.tracer.Start(ctx, tracer.SpanSinkAppend,
		tracer.String(tracer.AttrTable, table.Name),
		tracer.Int(tracer.AttrCells, len(row)),
	)
	defer func() { span.End(err) }()
	return t.next.Append(ctx, table, row)
}

func (t *Traced) ReadAll(ctx context.Context, table Table) (rows []Row, err error) {
	ctx, span := t.tracer.Start(ctx, tracer.SpanSinkReadAll,
		tracer.String(tracer.AttrTable, table.Name),
	)
	defer func() {
		span.SetAttributes(tracer.Int(tracer.AttrRows, len(rows)))
		span.End(err)
	}()
	return t.next.ReadAll(ctx, table)
}
