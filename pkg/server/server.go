package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/sizemap/pkg/buildinfo"
	"github.com/matzehuels/sizemap/pkg/cache"
	errs "github.com/matzehuels/sizemap/pkg/errors"
	"github.com/matzehuels/sizemap/pkg/observability"
	"github.com/matzehuels/sizemap/pkg/pipeline"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = ":8080"

	// DefaultMaxBodyBytes limits the size of uploaded du output.
	DefaultMaxBodyBytes = 32 << 20

	shutdownTimeout = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Runner executes the pipeline. Required.
	Runner *pipeline.Runner

	// Defaults are applied to every request before query parameters.
	Defaults pipeline.Options

	// MaxBodyBytes bounds the request body. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64

	Logger *log.Logger
}

// Server serves treemap renders over HTTP.
type Server struct {
	cfg    Config
	logger *log.Logger
	group  singleflight.Group
	router chi.Router
}

// New creates a server. It returns an error if no runner is configured.
func New(cfg Config) (*Server, error) {
	if cfg.Runner == nil {
		return nil, errs.New(errs.ErrCodeInvalidArgument, "server requires a pipeline runner")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{cfg: cfg, logger: logger.WithPrefix("server")}
	s.router = s.routes()
	return s, nil
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(observe)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "ok")
	})
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, buildinfo.Get())
	})
	r.Route("/v1", func(r chi.Router) {
		r.Use(noCache)
		r.Post("/render", s.handleRender)
	})
	return r
}

// renderResult is the shared outcome of one singleflight call.
type renderResult struct {
	body []byte
	hit  bool
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := opts.Formats[0]

	input, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeStatus(w, r, http.StatusRequestEntityTooLarge,
				errs.New(errs.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	key := flightKey(input, opts)
	v, err, shared := s.group.Do(key, func() (any, error) {
		// Detached so one client disconnecting does not fail the others.
		res, err := s.cfg.Runner.Execute(context.WithoutCancel(r.Context()), input, opts)
		if err != nil {
			return nil, err
		}
		return renderResult{
			body: res.Artifacts[format],
			hit:  res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit,
		}, nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res := v.(renderResult)

	s.logger.Debug("rendered", "format", format, "bytes", len(res.body), "cached", res.hit, "shared", shared)

	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.body)))
	if res.hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(res.body)
}

// options merges query parameters over the configured defaults.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := s.cfg.Defaults
	opts.Formats = nil
	opts.Logger = s.logger

	q := r.URL.Query()
	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = pipeline.FormatHTML
		if len(s.cfg.Defaults.Formats) > 0 {
			format = s.cfg.Defaults.Formats[0]
		}
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return opts, err
	}
	opts.Formats = []string{format}

	var err error
	if opts.Width, err = intParam(q.Get("width"), "width", opts.Width); err != nil {
		return opts, err
	}
	if opts.Height, err = intParam(q.Get("height"), "height", opts.Height); err != nil {
		return opts, err
	}
	if opts.MaxDepth, err = intParam(q.Get("max_depth"), "max_depth", opts.MaxDepth); err != nil {
		return opts, err
	}
	if v := q.Get("root"); v != "" {
		opts.Root = v
	}
	if v := q.Get("title"); v != "" {
		opts.Title = v
	}
	if v := q.Get("minify"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errs.New(errs.ErrCodeInvalidArgument, "minify: %q is not a boolean", v)
		}
		opts.Minify = b
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

func intParam(v, name string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidArgument, "%s: %q is not an integer", name, v)
	}
	return n, nil
}

// flightKey identifies a render request by its input and the options that
// affect the artifact.
func flightKey(input []byte, opts pipeline.Options) string {
	k := cache.NewDefaultKeyer()
	layout := k.LayoutKey(cache.Hash(input), opts.LayoutKeyOpts())
	return k.ArtifactKey(layout, opts.ArtifactKeyOpts(opts.Formats[0]))
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// StatusCode maps an error to the HTTP status it is reported with.
func StatusCode(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidArgument, errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFormat,
		errs.ErrCodeInvalidDimensions, errs.ErrCodeInvalidPath, errs.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errs.ErrCodeNotFound, errs.ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeStatus(w, r, StatusCode(err), err)
}

func (s *Server) writeStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	msg := errs.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{
		Error:     msg,
		Code:      string(errs.GetCode(err)),
		RequestID: w.Header().Get(requestIDHeader),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
