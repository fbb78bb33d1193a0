package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"gatepass/pkg/platform/httputil"
	"gatepass/pkg/platform/middleware/metadata"
	request "gatepass/pkg/platform/middleware/request"
	"gatepass/pkg/platform/middleware/requesttime"
	"gatepass/pkg/platform/validation"
)

// DefaultRequestTimeout bounds a request when Config.RequestTimeout is unset.
const DefaultRequestTimeout = 30 * time.Second

// Registrar mounts a group of routes.
type Registrar interface {
	Register(r chi.Router)
}

// Config carries everything the router needs. Nil registrars are skipped so
// optional endpoints can be switched off by configuration.
type Config struct {
	ServiceName    string
	AllowedOrigins []string
	TrustedProxies []netip.Prefix
	// RequestTimeout must exceed the worst-case sink call so a slow backend
	// is reported as could_not_write_log rather than a generic timeout.
	RequestTimeout time.Duration

	Logger      *slog.Logger
	HTTPMetrics *request.Metrics
	Metrics     http.Handler

	Health      Registrar
	Invitations Registrar
	Employees   Registrar
}

func (c Config) requestTimeout() time.Duration {
	if c.RequestTimeout > 0 {
		return c.RequestTimeout
	}
	return DefaultRequestTimeout
}

// RootResponse is the body of GET /.
type RootResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.NewMiddleware(cfg.TrustedProxies).Handler)
	r.Use(cors.Handler(corsOptions(cfg.AllowedOrigins)))
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.LatencyMiddleware(cfg.HTTPMetrics))
	r.Use(request.BodyLimit(validation.MaxBodySize))
	r.Use(request.Timeout(cfg.requestTimeout()))
	r.Use(request.ContentTypeJSON)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "not_found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.ErrorResponse{Error: "method_not_allowed"})
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, RootResponse{OK: true, Service: cfg.ServiceName})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	for _, reg := range []Registrar{cfg.Health, cfg.Invitations, cfg.Employees} {
		if reg != nil {
			reg.Register(r)
		}
	}

	return r
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}
}
