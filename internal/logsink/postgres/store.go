// Package postgres stores log tables in the log_rows table of a Postgres
// database. Cells are kept as a JSON array so rows of any width share one
// schema.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"gatepass/internal/logsink"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, table logsink.Table, row logsink.Row) error {
	cells, err := json.Marshal([]string(row))
	if err != nil {
		return logsink.Unavailable(fmt.Errorf("encode cells: %w", err), "append", table)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO log_rows (table_name, cells, appended_at) VALUES ($1, $2::jsonb, NOW())`,
		table.Name, string(cells),
	)
	if err != nil {
		return logsink.Unavailable(err, "append", table)
	}
	return nil
}

func (s *Store) ReadAll(ctx context.Context, table logsink.Table) ([]logsink.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cells::text FROM log_rows WHERE table_name = $1 ORDER BY id`,
		table.Name,
	)
	if err != nil {
		return nil, logsink.Unavailable(err, "read", table)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, logsink.Unavailable(err, "read", table)
	}
	return out, nil
}

func scanRows(rows *sql.Rows) ([]logsink.Row, error) {
	var out []logsink.Row
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, fmt.Errorf("decode cells: %w", err)
		}
		out = append(out, logsink.Row(cells))
	}
	return out, rows.Err()
}

var _ logsink.Sink = (*Store)(nil)
