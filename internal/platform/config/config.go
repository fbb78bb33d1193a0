// Package config loads the immutable server configuration. Environment
// variables take precedence over an optional YAML file named by CONFIG_FILE.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	strutil "gatepass/pkg/platform/strings"
	"gatepass/pkg/secrets"
)

// Sink drivers.
const (
	DriverSheets   = "sheets"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

const (
	DefaultPort             = 10000
	DefaultServiceName      = "QR Access Backend"
	DefaultEnvironment      = "development"
	DefaultCredentialExpiry = 24 * time.Hour
	DefaultCredentialsFile  = "credentials.json"
	DefaultSQLitePath       = "gatepass.db"
	DefaultSinkTimeout      = 10 * time.Second
	DefaultSinkRetries      = 1
	DefaultLogLevel         = "info"
)

// Server captures everything main needs to wire the service.
type Server struct {
	Port        int
	ServiceName string
	Environment string
	LogLevel    string

	JWTSecret        string
	CredentialExpiry time.Duration
	ShortCode        bool
	QRImage          bool
	AcceptedActions  []string
	AcceptBareCode   bool
	EmployeesEnabled bool

	Sink Sink

	CORSAllowedOrigins []string
	TrustedProxies     []string
	OTLPEndpoint       string
}

// Sink selects and configures the log backend.
type Sink struct {
	Driver            string
	SpreadsheetID     string
	CredentialsBase64 string
	CredentialsFile   string
	DatabaseURL       string
	SQLitePath        string
	Timeout           time.Duration
	Retries           int
}

// Addr is the listen address for the HTTP server.
func (s Server) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// FromEnv loads configuration from the environment and the file named by
// CONFIG_FILE, if any.
func FromEnv() (Server, error) {
	return Load(os.Getenv("CONFIG_FILE"))
}

// Load reads the optional YAML file at path and overlays environment
// variables on top. All parse and validation problems are returned together.
func Load(path string) (Server, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Server{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	l := loader{k: k}
	cfg := Server{
		Port:        l.getInt("PORT", "port", DefaultPort),
		ServiceName: l.getString("SERVICE_NAME", "service_name", DefaultServiceName),
		Environment: l.getString("ENVIRONMENT", "environment", DefaultEnvironment),
		LogLevel:    l.getString("LOG_LEVEL", "log_level", DefaultLogLevel),

		JWTSecret:        l.getString("JWT_SECRET", "jwt_secret", secrets.DefaultSigningSecret),
		CredentialExpiry: l.getDuration("CREDENTIAL_EXPIRY", "credential_expiry", DefaultCredentialExpiry, time.Hour),
		ShortCode:        l.getBool("SHORT_CODE_ENABLED", "short_code_enabled", false),
		QRImage:          l.getBool("QR_IMAGE_ENABLED", "qr_image_enabled", false),
		AcceptedActions:  l.getList("ACCEPTED_ACTIONS", "accepted_actions", []string{"entry", "exit"}),
		AcceptBareCode:   l.getBool("ACCEPT_BARE_CODE", "accept_bare_code", false),
		EmployeesEnabled: l.getBool("EMPLOYEES_ENABLED", "employees_enabled", true),

		Sink: Sink{
			Driver:            strings.ToLower(l.getString("SINK_DRIVER", "sink_driver", DriverSheets)),
			SpreadsheetID:     l.getString("GOOGLE_SHEET_ID", "google_sheet_id", ""),
			CredentialsBase64: l.getString("GOOGLE_CREDS_BASE64", "google_creds_base64", ""),
			CredentialsFile:   l.getString("GOOGLE_CREDS_FILE", "google_creds_file", DefaultCredentialsFile),
			DatabaseURL:       l.getString("DATABASE_URL", "database_url", ""),
			SQLitePath:        l.getString("SQLITE_PATH", "sqlite_path", DefaultSQLitePath),
			Timeout:           l.getDuration("SINK_TIMEOUT", "sink_timeout", DefaultSinkTimeout, time.Second),
			Retries:           l.getInt("SINK_RETRIES", "sink_retries", DefaultSinkRetries),
		},

		CORSAllowedOrigins: l.getList("CORS_ALLOWED_ORIGINS", "cors_allowed_origins", []string{"*"}),
		TrustedProxies:     l.getList("TRUSTED_PROXIES", "trusted_proxies", nil),
		OTLPEndpoint:       l.getString("OTEL_EXPORTER_OTLP_ENDPOINT", "otel_exporter_otlp_endpoint", ""),
	}

	errs := append(l.errs, cfg.validate()...)
	if len(errs) > 0 {
		return Server{}, errors.Join(errs...)
	}
	return cfg, nil
}

func (s Server) validate() []error {
	var errs []error
	if s.Port <= 0 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", s.Port))
	}
	if s.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if s.CredentialExpiry < 0 {
		errs = append(errs, fmt.Errorf("CREDENTIAL_EXPIRY must not be negative, got %s", s.CredentialExpiry))
	}
	if len(s.AcceptedActions) == 0 {
		errs = append(errs, errors.New("ACCEPTED_ACTIONS must name at least one action"))
	}
	if s.Sink.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("SINK_TIMEOUT must be positive, got %s", s.Sink.Timeout))
	}
	if s.Sink.Retries < 0 {
		errs = append(errs, fmt.Errorf("SINK_RETRIES must not be negative, got %d", s.Sink.Retries))
	}
	switch s.Sink.Driver {
	case DriverSheets:
		if s.Sink.SpreadsheetID == "" {
			errs = append(errs, errors.New("GOOGLE_SHEET_ID is required for the sheets sink"))
		}
	case DriverPostgres:
		if s.Sink.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres sink"))
		}
	case DriverSQLite:
		if s.Sink.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite sink"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown SINK_DRIVER %q", s.Sink.Driver))
	}
	return errs
}

// Warnings lists non-fatal problems worth logging at startup.
func (s Server) Warnings() []string {
	warnings := secrets.Weaknesses(s.JWTSecret)
	if s.Sink.Driver == DriverMemory {
		warnings = append(warnings, "memory sink loses every log row on restart")
	}
	return warnings
}

// LogSummary returns the configuration with secrets masked.
func (s Server) LogSummary() map[string]string {
	return map[string]string{
		"port":              strconv.Itoa(s.Port),
		"environment":       s.Environment,
		"jwt_secret":        maskSecret(s.JWTSecret),
		"credential_expiry": s.CredentialExpiry.String(),
		"short_code":        strconv.FormatBool(s.ShortCode),
		"qr_image":          strconv.FormatBool(s.QRImage),
		"accepted_actions":  strings.Join(s.AcceptedActions, ","),
		"accept_bare_code":  strconv.FormatBool(s.AcceptBareCode),
		"employees":         strconv.FormatBool(s.EmployeesEnabled),
		"sink_driver":       s.Sink.Driver,
		"sink_timeout":      s.Sink.Timeout.String(),
		"sink_retries":      strconv.Itoa(s.Sink.Retries),
		"tracing_export":    strconv.FormatBool(s.OTLPEndpoint != ""),
	}
}

func maskSecret(s string) string {
	if s == "" {
		return "<empty>"
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + "****" + s[len(s)-2:]
}

// loader reads one key from the environment, then the file, then the
// default, collecting parse errors as it goes.
type loader struct {
	k    *koanf.Koanf
	errs []error
}

func (l *loader) raw(envKey, fileKey string) (string, bool) {
	if v, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	if l.k.Exists(fileKey) {
		return strings.TrimSpace(l.k.String(fileKey)), true
	}
	return "", false
}

func (l *loader) getString(envKey, fileKey, def string) string {
	if v, ok := l.raw(envKey, fileKey); ok && v != "" {
		return v
	}
	return def
}

func (l *loader) getInt(envKey, fileKey string, def int) int {
	v, ok := l.raw(envKey, fileKey)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: invalid integer %q", envKey, v))
		return def
	}
	return n
}

func (l *loader) getBool(envKey, fileKey string, def bool) bool {
	v, ok := l.raw(envKey, fileKey)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: invalid boolean %q", envKey, v))
		return def
	}
	return b
}

// getDuration accepts Go durations and bare integers counted in unit.
func (l *loader) getDuration(envKey, fileKey string, def, unit time.Duration) time.Duration {
	v, ok := l.raw(envKey, fileKey)
	if !ok || v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * unit
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: invalid duration %q", envKey, v))
		return def
	}
	return d
}

// getList reads a comma separated value. YAML lists are accepted for file keys.
func (l *loader) getList(envKey, fileKey string, def []string) []string {
	if v, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(v) != "" {
		return strutil.SplitList(v)
	}
	if l.k.Exists(fileKey) {
		if items := l.k.Strings(fileKey); len(items) > 0 {
			return strutil.DedupeAndTrimLower(items)
		}
		if out := strutil.SplitList(l.k.String(fileKey)); len(out) > 0 {
			return out
		}
	}
	return def
}
