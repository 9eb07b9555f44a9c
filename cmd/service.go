package cmd

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/isometry/gh-sponsor-relay/internal/config"
	"github.com/isometry/gh-sponsor-relay/internal/runtime"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func cmdService() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "service",
		Aliases: []string{"s", "serve", "standalone", "server"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runService(cmd)
		},
	}

	bindEnvMap(cmd, svcEnvMapString)
	bindEnvMap(cmd, svcEnvMapDuration)
	bindEnvMap(cmd, svcEnvMapInt64)

	return cmd
}

func runService(cmd *cobra.Command) error {
	logger = logger.With("mode", config.ModeService)
	logger.Info("spawning...")

	s, err := newServer(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "failed to setup service")
	}
	return serve(cmd.Context(), s)
}

func newServer(ctx context.Context) (*http.Server, error) {
	hdl, err := setup(ctx)
	if err != nil {
		return nil, err
	}

	logger.Debug("creating runtime...")
	rt := runtime.NewRuntime(hdl,
		runtime.WithMaxPayloadBytes(config.Service.MaxPayloadBytes),
		runtime.WithLogger(logger.With("component", "runtime")))

	logger.Debug("creating HTTP server...")
	return &http.Server{
		Handler:      newRouter(rt),
		Addr:         net.JoinHostPort(config.Service.Addr, config.Service.Port),
		WriteTimeout: config.Service.Timeout,
		ReadTimeout:  config.Service.Timeout,
		IdleTimeout:  config.Service.Timeout,
	}, nil
}

func newRouter(h http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http_request",
					"method", r.Method,
					"path", r.URL.Path,
					"requestID", middleware.GetReqID(r.Context()),
					"status", ww.Status(),
					"duration_ms", time.Since(start).Milliseconds())
			}()

			next.ServeHTTP(ww, r)
		})
	})

	r.Handle(config.Service.Path, h)
	r.Handle(strings.TrimSuffix(config.Service.Path, "/")+"/*", h)
	return r
}

// serve runs s until it fails or ctx is cancelled, in which case in-flight requests are drained.
func serve(ctx context.Context, s *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving...", "address", s.Addr, "path", config.Service.Path, "timeout", config.Service.Timeout.String())
		errCh <- s.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Service.Timeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}
