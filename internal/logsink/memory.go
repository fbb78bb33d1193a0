package logsink

import (
	"context"
	"slices"
	"sync"
)

// Memory is an in-process Sink for tests and local development.
// Rows are lost on restart.
type Memory struct {
	mu     sync.Mutex
	tables map[string][]Row
}

func NewMemory() *Memory {
	return &Memory{tables: make(map[string][]Row)}
}

func (m *Memory) Append(ctx context.Context, table Table, row Row) error {
	if err := ctx.Err(); err != nil {
		return Unavailable(err, "append", table)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table.Name] = append(m.tables[table.Name], slices.Clone(row))
	return nil
}

func (m *Memory) ReadAll(ctx context.Context, table Table) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable(err, "read", table)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.tables[table.Name]
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out, nil
}

// Len returns the number of rows in table.
func (m *Memory) Len(table Table) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tables[table.Name])
}
