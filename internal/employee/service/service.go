// Package service registers employees into the Empleados log table.
package service

import (
	"context"
	"log/slog"

	"gatepass/internal/employee/models"
	"gatepass/internal/logsink"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/requestcontext"
)

type Service struct {
	sink   logsink.Sink
	logger *slog.Logger
}

func New(sink logsink.Sink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{sink: sink, logger: logger}
}

// Register appends (timestamp, name, unit, ineUrl) to the employee table.
func (s *Service) Register(ctx context.Context, cmd models.RegisterCommand) error {
	cmd.Normalize()
	if err := cmd.Validate(); err != nil {
		return err
	}

	row := logsink.Row{
		logsink.Timestamp(requestcontext.Now(ctx)),
		cmd.Name,
		cmd.Unit,
		cmd.IneURL,
	}
	if err := s.sink.Append(ctx, logsink.Employees, row); err != nil {
		s.logger.ErrorContext(ctx, "employee log append failed",
			"request_id", requestcontext.RequestID(ctx),
			"unit", cmd.Unit,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeSinkUnavailable, "employee could not be logged")
	}

	s.logger.InfoContext(ctx, "employee registered",
		"request_id", requestcontext.RequestID(ctx),
		"unit", cmd.Unit,
	)
	return nil
}
