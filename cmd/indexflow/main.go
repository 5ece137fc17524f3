package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/indexflow/internal/config"
	logpkg "github.com/kailas-cloud/indexflow/internal/logger"
	"github.com/kailas-cloud/indexflow/internal/metrics"
	chiTransport "github.com/kailas-cloud/indexflow/internal/transport/chi"
	"github.com/kailas-cloud/indexflow/internal/version"
	indexflow "github.com/kailas-cloud/indexflow/pkg/sdk"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	build := version.Get()
	logger.Info("Starting indexflow gateway",
		zap.String("version", build.Version),
		zap.String("commit", build.Commit),
		zap.String("build_date", build.Date),
		zap.String("go_version", build.GoVersion),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("read_hosts", cfg.Index.ReadHosts),
		zap.Strings("write_hosts", cfg.Index.WriteHosts),
		zap.Bool("search_cache", cfg.Cache.Enabled),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterUpstreamMetrics()

	client, err := indexflow.New(clientOptions(cfg, logger)...)
	if err != nil {
		logger.Fatal("Failed to create index client", zap.Error(err))
	}

	server := chiTransport.NewServer(chiTransport.NewClientWorkflows(client), logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.APIKeyAuth(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func clientOptions(cfg config.Config, logger *zap.Logger) []indexflow.Option {
	opts := []indexflow.Option{
		indexflow.WithReadHosts(cfg.Index.ReadHosts...),
		indexflow.WithWriteHosts(cfg.Index.WriteHosts...),
		indexflow.WithTimeouts(
			time.Duration(cfg.Index.SearchTimeoutSec)*time.Second,
			time.Duration(cfg.Index.WriteTimeoutSec)*time.Second,
		),
		indexflow.WithTaskBackoff(cfg.Tasks.BaseDelay(), cfg.Tasks.MaxDelay()),
		indexflow.WithLogger(logpkg.Slog(logger.Named("sdk"))),
		indexflow.WithTransportLogger(logger.Named("transport")),
		indexflow.WithPrometheus(prometheus.DefaultRegisterer),
	}
	for k, v := range cfg.Index.Headers {
		opts = append(opts, indexflow.WithHeader(k, v))
	}
	if cfg.Cache.Enabled {
		opts = append(opts, indexflow.WithSearchCache(cfg.Cache.CacheTTL()))
	}
	return opts
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Workflows pick the request logger up from the context
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("index", chi.URLParam(r, "index")),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
