package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/invitation/models"
	"gatepass/internal/invitation/service"
	"gatepass/internal/logsink"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/httputil"
	request "gatepass/pkg/platform/middleware/request"
)

// Wire error codes specific to these endpoints.
const (
	errCouldNotRenderImage = "could_not_render_image"
	errCouldNotReadLog     = "could_not_read_log"
)

// Service defines the interface for invitation operations.
type Service interface {
	Issue(ctx context.Context, cmd models.IssueCommand) (*models.Invitation, error)
	Validate(ctx context.Context, cmd models.ValidateCommand) (*models.Validation, error)
	ListVisits(ctx context.Context) ([]logsink.Row, error)
}

// Handler serves the invitation, validation and log endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register registers the invitation routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/invitations", h.HandleIssue)
	r.Post("/api/validate", h.HandleValidate)
	r.Get("/api/logs", h.HandleLogs)
}

func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	inv, err := h.service.Issue(ctx, req.ToCommand())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue invitation",
			"request_id", requestID,
			"error", err,
		)
		if errors.Is(err, service.ErrImageRender) {
			httputil.WriteErrorWithCode(w, err, errCouldNotRenderImage)
			return
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toIssueResponse(inv))
}

func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ValidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	v, err := h.service.Validate(ctx, req.ToCommand())
	if err != nil {
		if v != nil && dErrors.HasCode(err, dErrors.CodeSinkUnavailable) {
			writeSinkFailure(w, v, err)
			return
		}
		h.logger.WarnContext(ctx, "validation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toValidateResponse(v))
}

func (h *Handler) HandleLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := h.service.ListVisits(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read visit log",
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteErrorWithCode(w, err, errCouldNotReadLog)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toLogsResponse(rows))
}

func writeSinkFailure(w http.ResponseWriter, v *models.Validation, err error) {
	resp := SinkFailureResponse{
		Error:           httputil.DomainCodeToHTTPCode(dErrors.CodeSinkUnavailable),
		CredentialValid: true,
		Action:          v.Action.String(),
		Data:            toClaimData(v.Claim),
	}
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		resp.Description = domainErr.Message
	}
	if v.Claim == nil {
		resp.Code = v.Code
	}
	httputil.WriteJSON(w, httputil.DomainCodeToHTTPStatus(dErrors.CodeSinkUnavailable), resp)
}
