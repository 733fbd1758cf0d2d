// Package server renders the circuit page and answers the backend requests
// the page makes, using a stub provider in place of real hardware.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Its-donkey/circuit-console/internal/config"
	"github.com/Its-donkey/circuit-console/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options configures the UI HTTP server. Empty fields fall back to the
// config file, then to built-in defaults.
type Options struct {
	Listen       string
	TemplatesDir string
	AssetsDir    string
	LogDir       string
	ConfigPath   string
	CatalogPath  string

	Config    *config.Config
	Catalog   *config.Catalog
	Logger    *logging.Logger
	Templates map[string]*template.Template
}

type server struct {
	cfg       config.Config
	catalog   config.Catalog
	templates map[string]*template.Template
	assetsDir string
	logger    *logging.Logger
	provider  *stubProvider
	now       func() time.Time
}

// New builds the HTTP handler without listening. Run uses it; tests call it directly.
func New(opts Options) (http.Handler, error) {
	srv, err := newServer(opts)
	if err != nil {
		return nil, err
	}
	return srv.routes(), nil
}

func newServer(opts Options) (*server, error) {
	cfg := config.DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}

	catalog := opts.Catalog
	if catalog == nil {
		path := opts.CatalogPath
		if path == "" {
			path = cfg.App.Catalog
		}
		loaded, err := config.LoadCatalog(path)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		catalog = &loaded
	}

	tmpl := opts.Templates
	if tmpl == nil {
		loaded, err := loadTemplates(opts.TemplatesDir)
		if err != nil {
			return nil, fmt.Errorf("load templates: %w", err)
		}
		tmpl = loaded
	}

	assetsDir := opts.AssetsDir
	if assetsDir != "" {
		abs, err := filepath.Abs(assetsDir)
		if err != nil {
			return nil, fmt.Errorf("resolve assets dir: %w", err)
		}
		assetsDir = abs
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.New(cfg.App.Name, logging.ParseLevel(cfg.Logging.Level))
	}

	return &server{
		cfg:       cfg,
		catalog:   *catalog,
		templates: tmpl,
		assetsDir: assetsDir,
		logger:    logger,
		provider:  newStubProvider(cfg.Provider),
		now:       time.Now,
	}, nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(logging.NewHTTPLogger(s.logger, 0).Middleware)
	r.Use(middleware.Recoverer)

	for _, path := range []string{"/", "/circuit_simulation", "/hardware_simulation"} {
		r.Get(path, s.handleCircuitPage)
		r.With(requireCSRF).Post(path, s.handleCircuitPost)
	}

	r.With(requireCSRF).Post("/fetch_backends", s.handleFetchBackends)
	r.With(requireCSRF).Post("/run_hardware_simulation", s.handleRunSimulation)
	r.Get("/job_status/{jobID}", s.handleJobStatus)
	r.Get("/hardware_results", s.handleResultsPage)
	r.With(requireCSRF).Post("/hardware_results", s.handleResultsPage)

	r.Method(http.MethodGet, "/main.wasm", s.assetHandler("main.wasm", "application/wasm"))
	r.Method(http.MethodGet, "/wasm_exec.js", s.assetHandler("wasm_exec.js", "application/javascript"))
	r.Method(http.MethodGet, "/styles.css", s.assetHandler("styles.css", "text/css"))
	r.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

// Run starts the UI HTTP server and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Config == nil {
		if opts.ConfigPath == "" {
			opts.ConfigPath = "config.json"
		}
		cfg, err := config.LoadOrDefault(opts.ConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		opts.Config = &cfg
	}
	opts = applyDefaults(opts, *opts.Config)

	if opts.Logger == nil {
		writers := []io.Writer{os.Stdout}
		if opts.LogDir != "" {
			fw, err := logging.NewFileWriter(opts.LogDir, "circuit-console.log", opts.Config.Logging.MaxSizeMB, opts.Config.Logging.MaxFiles)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer fw.Close()
			writers = append(writers, fw)
		}
		opts.Logger = logging.New(opts.Config.App.Name, logging.ParseLevel(opts.Config.Logging.Level), writers...)
	}

	handler, err := New(opts)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              opts.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	opts.Logger.Info("server", "serving circuit console", map[string]any{"listen": "http://" + opts.Listen})

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

func applyDefaults(opts Options, cfg config.Config) Options {
	if opts.Listen == "" {
		opts.Listen = cfg.Server.Listen()
	}
	if opts.AssetsDir == "" {
		opts.AssetsDir = cfg.App.Assets
	}
	if opts.LogDir == "" {
		opts.LogDir = cfg.App.Logs
	}
	if opts.CatalogPath == "" {
		opts.CatalogPath = cfg.App.Catalog
	}
	return opts
}
