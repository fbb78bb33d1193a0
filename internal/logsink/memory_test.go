package logsink

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "gatepass/pkg/domain-errors"
)

func TestTableRange(t *testing.T) {
	assert.Equal(t, "Bitacora!A:F", Visits.Range())
	assert.Equal(t, "Empleados!A:D", Employees.Range())
	assert.Equal(t, "Wide!A:AB", Table{Name: "Wide", Columns: 28}.Range())
	assert.Equal(t, "Empty!A:A", Table{Name: "Empty"}.Range())
}

func TestMemory_AppendThenReadAllPreservesOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Append(ctx, Visits, Row{"t1", "Ana", "4B", "Luis", "entry", ""}))
	require.NoError(t, m.Append(ctx, Visits, Row{"t2", "Ana", "4B", "Luis", "exit", ""}))
	require.NoError(t, m.Append(ctx, Employees, Row{"t3", "Marta", "PB", ""}))

	rows, err := m.ReadAll(ctx, Visits)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "entry", rows[0][4])
	assert.Equal(t, "exit", rows[1][4])
	assert.Equal(t, 1, m.Len(Employees))
}

func TestMemory_ReadAllOfUnknownTableIsEmpty(t *testing.T) {
	rows, err := NewMemory().ReadAll(context.Background(), Visits)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMemory_RowsAreCopied(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	row := Row{"t1", "Ana"}
	require.NoError(t, m.Append(ctx, Visits, row))
	row[1] = "changed"

	rows, err := m.ReadAll(ctx, Visits)
	require.NoError(t, err)
	rows[0][0] = "also changed"

	again, err := m.ReadAll(ctx, Visits)
	require.NoError(t, err)
	assert.Equal(t, Row{"t1", "Ana"}, again[0])
}

func TestMemory_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewMemory().Append(ctx, Visits, Row{"x"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeSinkUnavailable))
}

func TestMemory_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Append(ctx, Visits, Row{"t"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, m.Len(Visits))
}

func TestTimestamp(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	ts := time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, loc)
	assert.Equal(t, "2026-01-02T09:04:05.006Z", Timestamp(ts))
}
