// Package server wires the utility endpoints into one HTTP server: file
// upload, the calendar proxy, firefly shortcuts, and the request log.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spaarmann/reasonable-excuse/internal/calendar"
	"github.com/spaarmann/reasonable-excuse/internal/firefly"
	"github.com/spaarmann/reasonable-excuse/internal/fs"
	"github.com/spaarmann/reasonable-excuse/internal/requestlog"
	"github.com/spaarmann/reasonable-excuse/internal/upload"
)

const version = "0.2.0"

// userAgent identifies outbound requests made on behalf of this server.
const userAgent = "reasonable-excuse/" + version

// Config is the full server configuration, loaded from the environment. The
// calendar and firefly modules are enabled by setting their URL; upload and
// the request log are always on.
type Config struct {
	Addr        string `env:"REASONABLE_EXCUSE_ADDR" envDefault:":8080"`
	MaxBodySize int64  `env:"REASONABLE_EXCUSE_MAX_BODY_SIZE" envDefault:"0"`

	UploadRoute      string `env:"REASONABLE_EXCUSE_UPLOAD_ROUTE" envDefault:"/upload"`
	UploadDir        string `env:"REASONABLE_EXCUSE_UPLOAD_DIR,required"`
	UploadNameLength int    `env:"REASONABLE_EXCUSE_UPLOAD_NAME_LENGTH" envDefault:"6"`

	CalendarRoute     string `env:"REASONABLE_EXCUSE_CALENDAR_ROUTE" envDefault:"/calendar"`
	CalendarBaseURL   string `env:"REASONABLE_EXCUSE_CALENDAR_BASE_URL"`
	CalendarPassParam string `env:"REASONABLE_EXCUSE_CALENDAR_PASS_PARAM"`
	CalendarFilter    string `env:"REASONABLE_EXCUSE_CALENDAR_FILTER"`

	FireflyRoute         string `env:"REASONABLE_EXCUSE_FIREFLY_ROUTE" envDefault:"/firefly"`
	FireflyURL           string `env:"REASONABLE_EXCUSE_FIREFLY_URL"`
	FireflyPATFile       string `env:"REASONABLE_EXCUSE_FIREFLY_PAT_FILE"`
	FireflyShortcutsFile string `env:"REASONABLE_EXCUSE_FIREFLY_SHORTCUTS"`

	RequestLogCapacity int `env:"REASONABLE_EXCUSE_REQUEST_LOG_CAPACITY" envDefault:"100"`
}

// New builds the HTTP server for cfg. Every configuration problem, from a
// missing upload directory to an unreadable firefly file, is reported here
// so the process fails at boot rather than on a request.
func New(cfg *Config) (*http.Server, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if cfg.UploadNameLength <= 0 {
		return nil, fmt.Errorf("upload name length must be positive, got %d", cfg.UploadNameLength)
	}
	if cfg.RequestLogCapacity <= 0 {
		return nil, fmt.Errorf("request log capacity must be positive, got %d", cfg.RequestLogCapacity)
	}

	storage, err := fs.NewStorage(cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	uploads := upload.NewService(storage, cfg.UploadNameLength)
	requests := requestlog.New(cfg.RequestLogCapacity)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthz)
	mux.HandleFunc("GET "+cfg.UploadRoute, uploadHelp)
	mux.HandleFunc("POST "+cfg.UploadRoute, uploadFile(uploads))
	mux.HandleFunc("POST /pcs", recordRequest(requests))
	mux.HandleFunc("GET /pcs", listRequests(requests))

	if cfg.CalendarBaseURL != "" {
		if cfg.CalendarPassParam == "" {
			return nil, fmt.Errorf("calendar pass param must be set when the calendar module is enabled")
		}
		cal, err := calendar.NewService(cfg.CalendarBaseURL, cfg.CalendarPassParam, cfg.CalendarFilter, userAgent)
		if err != nil {
			return nil, err
		}
		mux.HandleFunc("GET "+cfg.CalendarRoute, calendarFeed(cfg, cal))
	}

	if cfg.FireflyURL != "" {
		if cfg.FireflyPATFile == "" || cfg.FireflyShortcutsFile == "" {
			return nil, fmt.Errorf("firefly PAT file and shortcuts file must be set when the firefly module is enabled")
		}
		ff, err := firefly.NewClient(cfg.FireflyURL, cfg.FireflyPATFile, cfg.FireflyShortcutsFile, userAgent)
		if err != nil {
			return nil, err
		}
		mux.HandleFunc("GET "+cfg.FireflyRoute+"/shortcuts", fireflyShortcuts(ff))
		mux.HandleFunc("POST "+cfg.FireflyRoute+"/add-transaction", fireflyAddTransaction(ff))
	}

	handler := requestID(logRequests(limitBody(mux, cfg.MaxBodySize)))

	return &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
		// Uploads may be arbitrarily large, so whole-body reads and writes
		// get no deadline; only the header read and idle connections do.
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}, nil
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
