package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gatepass/internal/invitation/credential"
	"gatepass/internal/invitation/metrics"
	"gatepass/internal/invitation/models"
	"gatepass/internal/logsink"
	"gatepass/internal/platform/device"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/tracer"
	"gatepass/pkg/requestcontext"
)

// ErrImageRender marks a failure to render the QR image of a credential.
var ErrImageRender = errors.New("could not render credential image")

// Signer signs and verifies credentials.
// Verify must return an error carrying a models.Reason (see credential.ReasonOf)
// for every rejected credential.
type Signer interface {
	Sign(ctx context.Context, claim models.Claim, expiry time.Duration) (string, models.Claim, error)
	Verify(ctx context.Context, credential string) (*models.Claim, error)
}

// ImageRenderer turns a credential into an embeddable image.
type ImageRenderer interface {
	DataURL(content string) (string, error)
}

type Option func(*Service)

// Service issues credentials and validates them into the visit log.
type Service struct {
	signer   Signer
	sink     logsink.Sink
	renderer ImageRenderer
	opts     models.Options
	newCode  func() (string, error)
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
}

func New(signer Signer, sink logsink.Sink, opts models.Options, options ...Option) *Service {
	svc := &Service{
		signer:  signer,
		sink:    sink,
		opts:    opts,
		newCode: credential.NewShortCode,
		logger:  slog.Default(),
		tracer:  tracer.NewNoop(),
	}
	for _, o := range options {
		o(svc)
	}
	return svc
}

// WithImageRenderer sets the QR renderer used when Options.QRImage is on.
func WithImageRenderer(r ImageRenderer) Option {
	return func(s *Service) {
		s.renderer = r
	}
}

// WithCodeGenerator replaces the short code generator.
func WithCodeGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		if fn != nil {
			s.newCode = fn
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// Options returns the variant configuration.
func (s *Service) Options() models.Options {
	return s.opts
}

// Issue signs a credential for the visitor. Nothing is written to the log.
func (s *Service) Issue(ctx context.Context, cmd models.IssueCommand) (inv *models.Invitation, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanIssue,
		tracer.Bool(tracer.AttrShortCode, s.opts.ShortCode),
		tracer.Bool(tracer.AttrQRImage, s.opts.QRImage),
	)
	defer func() { span.End(err) }()

	cmd.Normalize()
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.String(tracer.AttrUnit, tracer.Pseudonym(cmd.Unit)))

	claim := models.Claim{
		VisitorName: cmd.VisitorName,
		Unit:        cmd.Unit,
		HostName:    cmd.HostName,
	}
	if s.opts.ShortCode {
		code, err := s.newCode()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not generate short code")
		}
		claim.Code = code
	}

	token, signed, err := s.signer.Sign(ctx, claim, s.opts.Expiry)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not sign credential")
	}

	inv = &models.Invitation{
		Credential:  token,
		Code:        signed.Code,
		ExpiryHours: s.opts.ExpiryHours(),
		Claim:       signed,
	}

	if s.opts.QRImage {
		if s.renderer == nil {
			return nil, dErrors.Wrap(ErrImageRender, dErrors.CodeInternal, "no image renderer configured")
		}
		image, err := s.renderer.DataURL(token)
		if err != nil {
			return nil, dErrors.Wrap(fmt.Errorf("%w: %w", ErrImageRender, err), dErrors.CodeInternal, "could not render credential image")
		}
		inv.Image = image
	}

	s.metrics.IncIssued(s.opts.Expiry > 0)
	s.logger.InfoContext(ctx, "invitation issued",
		"request_id", requestcontext.RequestID(ctx),
		"credential_id", signed.ID,
		"unit", cmd.Unit,
		"expires_at", signed.ExpiresAt,
	)
	return inv, nil
}

// Validate checks a credential (or bare short code) and appends one row to
// the visit log.
//
// When the append fails the returned Validation is still populated and the
// error has code sink_unavailable, so callers can report that the credential
// itself was valid.
func (s *Service) Validate(ctx context.Context, cmd models.ValidateCommand) (v *models.Validation, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanValidate)
	defer func() { span.End(err) }()

	cmd.Normalize()
	if err := cmd.Validate(s.opts); err != nil {
		s.metrics.IncValidation(modeOf(cmd, s.opts), "invalid_input")
		return nil, err
	}

	if cmd.BareCode(s.opts) {
		return s.validateCode(ctx, span, cmd)
	}
	return s.validateCredential(ctx, span, cmd)
}

func (s *Service) validateCredential(ctx context.Context, span tracer.Span, cmd models.ValidateCommand) (*models.Validation, error) {
	span.SetAttributes(tracer.String(tracer.AttrAction, cmd.Action.String()))

	claim, err := s.signer.Verify(ctx, cmd.Credential)
	if err != nil {
		return nil, s.reject(ctx, span, credential.ReasonOf(err), err)
	}
	if s.opts.ShortCode && cmd.Code != "" && cmd.Code != claim.Code {
		return nil, s.reject(ctx, span, models.ReasonCodeMismatch, nil)
	}
	span.SetAttributes(tracer.String(tracer.AttrUnit, tracer.Pseudonym(claim.Unit)))

	row := []string{
		s.timestamp(ctx),
		claim.VisitorName,
		claim.Unit,
		claim.HostName,
		cmd.Action.String(),
		cmd.Plates,
	}
	v := &models.Validation{
		Action: cmd.Action,
		Claim:  claim,
		Code:   claim.Code,
		Row:    row,
	}
	return v, s.record(ctx, "credential", v, "visitor", claim.VisitorName, "unit", claim.Unit)
}

func (s *Service) validateCode(ctx context.Context, span tracer.Span, cmd models.ValidateCommand) (*models.Validation, error) {
	span.SetAttributes(
		tracer.String(tracer.AttrAction, models.ActionEntry.String()),
		tracer.Bool(tracer.AttrShortCode, true),
	)
	v := &models.Validation{
		Action: models.ActionEntry,
		Code:   cmd.Code,
		Row:    []string{s.timestamp(ctx), cmd.Code, models.ActionEntry.String()},
	}
	return v, s.record(ctx, "code", v, "code", cmd.Code)
}

// record appends the validation row and logs the outcome.
func (s *Service) record(ctx context.Context, mode string, v *models.Validation, attrs ...any) error {
	requestID := requestcontext.RequestID(ctx)
	scanner := device.Describe(requestcontext.UserAgent(ctx))

	if err := s.sink.Append(ctx, logsink.Visits, logsink.Row(v.Row)); err != nil {
		s.metrics.IncValidation(mode, "sink_unavailable")
		s.logger.ErrorContext(ctx, "credential valid but visit log append failed",
			append([]any{
				"request_id", requestID,
				"action", v.Action,
				"error", err,
			}, attrs...)...,
		)
		return dErrors.Wrap(err, dErrors.CodeSinkUnavailable, "credential is valid but the visit could not be logged")
	}

	s.metrics.IncValidation(mode, "ok")
	s.metrics.IncAppended(v.Action.String())
	s.logger.InfoContext(ctx, "visit validated",
		append([]any{
			"request_id", requestID,
			"mode", mode,
			"action", v.Action,
			"scanner", scanner.String(),
			"scanner_mobile", scanner.Mobile,
		}, attrs...)...,
	)
	return nil
}

func (s *Service) reject(ctx context.Context, span tracer.Span, reason models.Reason, cause error) error {
	if reason == "" {
		reason = models.ReasonMalformed
	}
	span.SetAttributes(tracer.String(tracer.AttrFailReason, string(reason)))
	s.metrics.IncValidation("credential", "rejected")
	s.metrics.IncRejected(string(reason))
	s.logger.WarnContext(ctx, "credential rejected",
		"request_id", requestcontext.RequestID(ctx),
		"reason", reason,
		"error", cause,
	)
	if cause == nil {
		return dErrors.New(dErrors.CodeCredentialInvalid, "invalid or expired credential")
	}
	return dErrors.Wrap(cause, dErrors.CodeCredentialInvalid, "invalid or expired credential")
}

// ListVisits returns every visit log row, oldest first.
func (s *Service) ListVisits(ctx context.Context) ([]logsink.Row, error) {
	rows, err := s.sink.ReadAll(ctx, logsink.Visits)
	if err != nil {
		s.logger.ErrorContext(ctx, "visit log read failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeSinkUnavailable, "could not read the visit log")
	}
	return rows, nil
}

func (s *Service) timestamp(ctx context.Context) string {
	return logsink.Timestamp(requestcontext.Now(ctx))
}

func modeOf(cmd models.ValidateCommand, opts models.Options) string {
	if cmd.BareCode(opts) {
		return "code"
	}
	return "credential"
}
