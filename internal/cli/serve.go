package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/timeline/pkg/buildinfo"
	"github.com/matzehuels/timeline/pkg/cache"
	"github.com/matzehuels/timeline/pkg/errors"
	"github.com/matzehuels/timeline/pkg/layout"
	"github.com/matzehuels/timeline/pkg/observability"
	"github.com/matzehuels/timeline/pkg/pipeline"
	"github.com/matzehuels/timeline/pkg/render"
)

const (
	defaultAddr     = ":8080"
	maxRequestBody  = 10 << 20
	shutdownTimeout = 5 * time.Second

	headerRequestID = "X-Request-ID"
	headerCache     = "X-Cache"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags renderFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the renderer over HTTP",
		Long: `Serve renders timelines posted over HTTP.

  POST /render?format=pdf&label_policy=auto   body: timeline JSON
  GET  /healthz

The settings file and flags set the defaults for every request. Rendered
results are cached under a separate "api:" key prefix.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, flags)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	flags.register(cmd.Flags())
	registerRenderCompletions(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, flags renderFlags) error {
	opts, file, err := flags.options()
	if err != nil {
		return err
	}
	formats, err := flags.formats("", file)
	if err != nil {
		return err
	}
	opts.Formats = formats[:1]

	cc, err := c.newCache(ctx, flags, file)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	runner := pipeline.NewRunner(cc, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "api:"), c.Logger)
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newServer(runner, opts, c.Logger).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr, "format", opts.Formats[0])
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return errors.Wrap(errors.ErrCodeIO, err, "listen on %s", addr)
		}
		return nil
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// =============================================================================
// server - HTTP render API
// =============================================================================

// server renders request bodies with a shared runner. defaults holds the
// options every request starts from.
type server struct {
	runner   *pipeline.Runner
	defaults pipeline.Options
	logger   *log.Logger
}

// newServer resolves a zero defaults.Config to layout.Default() up front so
// that per-request overrides start from real metrics.
func newServer(runner *pipeline.Runner, defaults pipeline.Options, logger *log.Logger) *server {
	if defaults.Config == (layout.Config{}) {
		defaults.Config = layout.Default()
	}
	return &server{runner: runner, defaults: defaults, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRender)
	return r
}

// requestID tags the request with the caller's X-Request-ID, or a fresh
// UUID, and attaches a logger carrying it.
func (s *server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		ctx := withLogger(r.Context(), s.logger.With("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// observe reports each request to the HTTP hooks and logs its outcome.
func (s *server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		ctx := r.Context()
		start := time.Now()
		hooks.OnRequest(ctx, r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		hooks.OnResponse(ctx, r.Method, r.URL.Path, status, dur)
		loggerFromContext(ctx).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", dur.Round(time.Microsecond))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Get()})
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	opts := s.defaults
	opts.Logger = loggerFromContext(ctx)
	opts.Source = pipeline.InlineSource

	q := r.URL.Query()
	if f := q.Get("format"); f != "" {
		opts.Formats = []string{f}
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []string{pipeline.DefaultFormat}
	}
	if p := q.Get("label_policy"); p != "" {
		policy, err := layout.ParseLabelPolicy(p)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Config.LabelPolicy = policy
	}
	opts.Refresh = opts.Refresh || q.Get("refresh") == "true"

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorStatus(w, r, http.StatusRequestEntityTooLarge,
				errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.writeError(w, r, errors.Wrap(errors.ErrCodeIO, err, "read request body"))
		return
	}
	opts.Input = body

	result, err := s.runner.Execute(ctx, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := opts.Formats[0]
	w.Header().Set("Content-Type", render.ContentTypes[format])
	if result.CacheInfo.RenderHit {
		w.Header().Set(headerCache, "hit")
	} else {
		w.Header().Set(headerCache, "miss")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(result.Artifacts[format])
}

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

// errorResponse is the JSON body of a failed request.
type errorResponse struct {
	Error     string      `json:"error"`
	Code      errors.Code `json:"code,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// writeError answers 400 for errors caused by the request and 500 otherwise.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.IsClientError(err) {
		status = http.StatusBadRequest
	}
	s.writeErrorStatus(w, r, status, err)
}

func (s *server) writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	logger := loggerFromContext(r.Context())
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		logger.Error("render failed", "err", err)
		msg = "internal error"
	} else {
		logger.Debug("bad request", "err", err)
	}
	writeJSON(w, status, errorResponse{
		Error:     msg,
		Code:      errors.GetCode(err),
		RequestID: w.Header().Get(headerRequestID),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
