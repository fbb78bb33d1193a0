package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	empHandler "gatepass/internal/employee/handler"
	empService "gatepass/internal/employee/service"
	"gatepass/internal/invitation/credential"
	invHandler "gatepass/internal/invitation/handler"
	invMetrics "gatepass/internal/invitation/metrics"
	"gatepass/internal/invitation/models"
	"gatepass/internal/invitation/qr"
	invService "gatepass/internal/invitation/service"
	"gatepass/internal/logsink"
	"gatepass/internal/platform/config"
	"gatepass/internal/platform/health"
	"gatepass/internal/platform/logger"
	"gatepass/internal/platform/metrics"
	"gatepass/internal/platform/tracing"
	httptransport "gatepass/internal/transport/http"
	"gatepass/pkg/platform/middleware/metadata"
	request "gatepass/pkg/platform/middleware/request"
	"gatepass/pkg/platform/tracer"
)

const (
	shutdownTimeout = 10 * time.Second
	// requestSlack is left after the sink budget to write the response.
	requestSlack = 5 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "gatepass:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)
	log.Info("initializing gatepass", "config", cfg.LogSummary())
	for _, w := range cfg.Warnings() {
		log.Warn("configuration warning", "warning", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.NewProvider(ctx, tracing.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     health.Version,
		Endpoint:    cfg.OTLPEndpoint,
	}, log)
	if err != nil {
		return err
	}
	tr := tracer.NewOTel(tracing.InstrumentationName, tp.Tracer())

	reg := metrics.NewRegistry()
	reg.SetBuildInfo(health.Version, cfg.Sink.Driver)

	opts, err := invitationOptions(cfg)
	if err != nil {
		return err
	}
	reg.SetVariant("expiry", opts.Expiry > 0)
	reg.SetVariant("short_code", opts.ShortCode)
	reg.SetVariant("qr_image", opts.QRImage)
	reg.SetVariant("accept_bare_code", opts.AcceptBareCode)
	reg.SetVariant("employees", cfg.EmployeesEnabled)

	be, err := openBackend(ctx, cfg.Sink, log)
	if err != nil {
		return err
	}
	sink := logsink.NewResilient(logsink.NewTraced(be.sink, tr),
		logsink.WithTimeout(cfg.Sink.Timeout),
		logsink.WithRetries(cfg.Sink.Retries),
		logsink.WithLogger(log),
		logsink.WithMetrics(logsink.NewMetrics(reg)),
	)

	invitations := invService.New(credential.NewSigner(cfg.JWTSecret), sink, opts,
		invService.WithImageRenderer(qr.NewRenderer()),
		invService.WithLogger(log),
		invService.WithMetrics(invMetrics.New(reg)),
		invService.WithTracer(tr),
	)

	hh := health.New(cfg.ServiceName, cfg.Environment)
	hh.RegisterCheck("sink", sink.Check)
	for name, check := range be.checks {
		hh.RegisterCheck(name, check)
	}

	proxies, err := metadata.ParseProxies(cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("parse TRUSTED_PROXIES: %w", err)
	}

	routes := httptransport.Config{
		ServiceName:    cfg.ServiceName,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		TrustedProxies: proxies,
		RequestTimeout: requestTimeout(sink.Budget()),
		Logger:         log,
		HTTPMetrics:    request.NewMetrics(reg),
		Metrics:        reg.Handler(),
		Health:         hh,
		Invitations:    invHandler.New(invitations, log),
	}
	if cfg.EmployeesEnabled {
		routes.Employees = empHandler.New(empService.New(sink, log), log)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httptransport.NewRouter(routes),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(srv, tp, be, log)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		return err
	}
	log.Info("server stopped")
	return nil
}

// requestTimeout keeps the router's deadline beyond the sink budget so sink
// failures surface as could_not_write_log.
func requestTimeout(sinkBudget time.Duration) time.Duration {
	return max(httptransport.DefaultRequestTimeout, sinkBudget+requestSlack)
}

func invitationOptions(cfg config.Server) (models.Options, error) {
	actions, err := models.ParseActionSet(cfg.AcceptedActions)
	if err != nil {
		return models.Options{}, fmt.Errorf("ACCEPTED_ACTIONS: %w", err)
	}
	return models.Options{
		Expiry:         cfg.CredentialExpiry,
		ShortCode:      cfg.ShortCode,
		QRImage:        cfg.QRImage,
		Actions:        actions,
		AcceptBareCode: cfg.AcceptBareCode,
	}, nil
}

// shutdown drains in-flight requests, then flushes spans and closes the
// backend. All three run even if an earlier one fails.
func shutdown(srv *http.Server, tp *tracing.Provider, be *backend, log *slog.Logger) error {
	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return errors.Join(
		srv.Shutdown(ctx),
		tp.Shutdown(ctx),
		be.close(),
	)
}
