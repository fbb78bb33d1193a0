// Package logsink defines the append-only visit log the service writes to.
//
// The log is a set of named tables, each a flat list of string cells per row.
// This package owns only the two-operation contract (Append, ReadAll) and
// backend-independent decorators; concrete stores live in subpackages:
//
//   - sheets: Google Sheets spreadsheet, one sheet per table
//   - postgres: a log_rows table through pgx
//   - sqlite: the same schema in an embedded SQLite file
//
// plus the in-process Memory sink in this package.
package logsink

import (
	"context"
	"fmt"
	"time"

	dErrors "gatepass/pkg/domain-errors"
)

// Table names a logical log table and its fixed column width.
type Table struct {
	Name    string
	Columns int
}

var (
	// Visits receives one row per validation event.
	Visits = Table{Name: "Bitacora", Columns: 6}
	// Employees receives one row per employee registration.
	Employees = Table{Name: "Empleados", Columns: 4}
)

// Range returns the A1-notation column range covering the table,
// e.g. "Bitacora!A:F".
func (t Table) Range() string {
	cols := t.Columns
	if cols < 1 {
		cols = 1
	}
	return fmt.Sprintf("%s!A:%s", t.Name, columnLetter(cols))
}

// columnLetter converts a 1-based column index to spreadsheet letters.
func columnLetter(n int) string {
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('A' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}

// TimestampLayout is the first cell of every row: RFC 3339 in UTC with
// millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp formats t for a row.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Row is an ordered tuple of cell values.
type Row []string

// Sink is an append-only, read-all store of rows.
// Implementations must be safe for concurrent use.
type Sink interface {
	// Append stores one row at the end of table.
	Append(ctx context.Context, table Table, row Row) error
	// ReadAll returns every row of table, oldest first.
	ReadAll(ctx context.Context, table Table) ([]Row, error)
}

// Unavailable wraps a backend failure as a sink_unavailable domain error.
func Unavailable(err error, op string, table Table) error {
	return dErrors.Wrap(err, dErrors.CodeSinkUnavailable, fmt.Sprintf("%s %s failed", op, table.Name))
}
