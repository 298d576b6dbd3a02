// Package server assembles the HTTP surface: connect services, metrics,
// health checks and the optional static UI.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Mount is a handler served under a path prefix, as returned by the
// connect handler constructors.
type Mount struct {
	Path    string
	Handler http.Handler
}

// Options configures the router.
type Options struct {
	Logger     *slog.Logger
	Health     Pinger
	Gatherer   prometheus.Gatherer
	StaticPath string
}

// NewRouter routes the given services plus /metrics, /healthz and static
// files. Services take precedence over static paths.
func NewRouter(opts Options, mounts ...Mount) (*mux.Router, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := mux.NewRouter()
	r.Use(loggingMiddleware(logger), corsMiddleware)

	for _, m := range mounts {
		r.PathPrefix(m.Path).Handler(m.Handler)
	}

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	r.HandleFunc("/healthz", healthHandler(opts.Health)).Methods(http.MethodGet)

	if opts.StaticPath != "" {
		staticDir, err := filepath.Abs(opts.StaticPath)
		if err != nil {
			return nil, err
		}
		logger.Info("serving static files", "path", staticDir)
		r.PathPrefix("/").Handler(staticHandler(staticDir)).Methods(http.MethodGet, http.MethodHead)
	}

	return r, nil
}

// Handler wraps h with h2c so connect clients can speak HTTP/2 without TLS.
func Handler(h http.Handler) http.Handler {
	return h2c.NewHandler(h, &http2.Server{})
}

// Run serves h on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func healthHandler(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				http.Error(w, "store unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}
}

// staticHandler serves files from dir, falling back to index.html for
// unknown paths.
func staticHandler(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(dir, filepath.Clean("/"+urlPath))
		if info, err := os.Stat(filePath); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		http.ServeFile(w, r, filePath)
	})
}
