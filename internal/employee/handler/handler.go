package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/employee/models"
	"gatepass/pkg/platform/httputil"
	request "gatepass/pkg/platform/middleware/request"
)

// Service defines the interface for employee registration.
type Service interface {
	Register(ctx context.Context, cmd models.RegisterCommand) error
}

// RegisterRequest is the body of POST /api/employees.
type RegisterRequest struct {
	Name   string `json:"name"`
	Unit   string `json:"unit"`
	IneURL string `json:"ineUrl"`
}

func (r *RegisterRequest) command() models.RegisterCommand {
	return models.RegisterCommand{Name: r.Name, Unit: r.Unit, IneURL: r.IneURL}
}

// Normalize trims every field.
func (r *RegisterRequest) Normalize() {
	cmd := r.command()
	cmd.Normalize()
	r.Name, r.Unit, r.IneURL = cmd.Name, cmd.Unit, cmd.IneURL
}

// Validate requires every field.
func (r *RegisterRequest) Validate() error {
	cmd := r.command()
	return cmd.Validate()
}

// RegisterResponse acknowledges a registration.
type RegisterResponse struct {
	OK     bool   `json:"ok"`
	Status string `json:"status"`
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register registers the employee route with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/employees", h.HandleRegister)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.Register(ctx, req.command()); err != nil {
		h.logger.ErrorContext(ctx, "failed to register employee",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, RegisterResponse{OK: true, Status: "employee_registered"})
}
