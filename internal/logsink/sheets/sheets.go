// Package sheets stores log tables as sheets of a Google spreadsheet.
package sheets

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"gatepass/internal/logsink"
)

// valueInputOption lets the spreadsheet parse timestamps and numbers the
// same way a person typing into the sheet would.
const valueInputOption = "USER_ENTERED"

var ErrMissingSpreadsheet = errors.New("spreadsheet id is required")

// Config selects the spreadsheet and the service-account credentials.
// CredentialsBase64 wins over CredentialsFile when both are set.
type Config struct {
	SpreadsheetID     string
	CredentialsBase64 string
	CredentialsFile   string
}

// Sink appends and reads rows with the Sheets v4 values API.
type Sink struct {
	values        *sheetsapi.SpreadsheetsValuesService
	spreadsheetID string
}

// New builds a sink from service-account credentials.
func New(ctx context.Context, cfg Config) (*Sink, error) {
	if cfg.SpreadsheetID == "" {
		return nil, ErrMissingSpreadsheet
	}
	creds, err := LoadCredentials(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithOptions(ctx, cfg.SpreadsheetID,
		option.WithCredentialsJSON(creds),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
}

// NewWithOptions builds a sink from raw client options. Tests use it to point
// the client at a local server.
func NewWithOptions(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*Sink, error) {
	if spreadsheetID == "" {
		return nil, ErrMissingSpreadsheet
	}
	srv, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	return &Sink{values: srv.Spreadsheets.Values, spreadsheetID: spreadsheetID}, nil
}

// LoadCredentials returns the service-account JSON from the base64 value or
// the credentials file.
func LoadCredentials(cfg Config) ([]byte, error) {
	if b64 := strings.TrimSpace(cfg.CredentialsBase64); b64 != "" {
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, fmt.Errorf("decode base64 credentials: %w", err)
		}
		return raw, nil
	}
	if cfg.CredentialsFile == "" {
		return nil, errors.New("no sheets credentials configured")
	}
	raw, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	return raw, nil
}

func (s *Sink) Append(ctx context.Context, table logsink.Table, row logsink.Row) error {
	cells := make([]interface{}, len(row))
	for i, c := range row {
		cells[i] = c
	}
	_, err := s.values.Append(s.spreadsheetID, table.Range(), &sheetsapi.ValueRange{
		Values: [][]interface{}{cells},
	}).ValueInputOption(valueInputOption).Context(ctx).Do()
	if err != nil {
		return logsink.Unavailable(err, "append", table)
	}
	return nil
}

func (s *Sink) ReadAll(ctx context.Context, table logsink.Table) ([]logsink.Row, error) {
	resp, err := s.values.Get(s.spreadsheetID, table.Range()).Context(ctx).Do()
	if err != nil {
		return nil, logsink.Unavailable(err, "read", table)
	}
	rows := make([]logsink.Row, 0, len(resp.Values))
	for _, values := range resp.Values {
		row := make(logsink.Row, len(values))
		for i, v := range values {
			row[i] = fmt.Sprint(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

var _ logsink.Sink = (*Sink)(nil)
