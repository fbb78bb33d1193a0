// Package sqlite stores log tables in an embedded SQLite database using the
// same log_rows layout as the Postgres backend.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gatepass/internal/logsink"
)

type Store struct {
	db  *sql.DB
	mu  sync.Mutex // serialises writers
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Append(ctx context.Context, table logsink.Table, row logsink.Row) error {
	cells, err := json.Marshal([]string(row))
	if err != nil {
		return logsink.Unavailable(fmt.Errorf("encode cells: %w", err), "append", table)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO log_rows (table_name, cells, appended_at_ms) VALUES (?, ?, ?)`,
		table.Name, string(cells), s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return logsink.Unavailable(err, "append", table)
	}
	return nil
}

func (s *Store) ReadAll(ctx context.Context, table logsink.Table) ([]logsink.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cells FROM log_rows WHERE table_name = ? ORDER BY id`,
		table.Name,
	)
	if err != nil {
		return nil, logsink.Unavailable(err, "read", table)
	}
	defer rows.Close()

	var out []logsink.Row
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, logsink.Unavailable(fmt.Errorf("scan row: %w", err), "read", table)
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, logsink.Unavailable(fmt.Errorf("decode cells: %w", err), "read", table)
		}
		out = append(out, logsink.Row(cells))
	}
	if err := rows.Err(); err != nil {
		return nil, logsink.Unavailable(err, "read", table)
	}
	return out, nil
}

var _ logsink.Sink = (*Store)(nil)
