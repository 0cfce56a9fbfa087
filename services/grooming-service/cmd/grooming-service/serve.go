package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"

	"github.com/smarterdog/grooming/libs/grpcx"
	"github.com/smarterdog/grooming/libs/httpx"
	otelx "github.com/smarterdog/grooming/libs/otel"
	"github.com/smarterdog/grooming/libs/runtime"
	"github.com/smarterdog/grooming/services/grooming-service/internal/grpcserver"
	"github.com/smarterdog/grooming/services/grooming-service/internal/handlers"
)

func newServeCmd() *cobra.Command {
	var demoSeed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(demoSeed)
			if err != nil {
				return err
			}
			logger := runtime.NewLogger(cfg.ServiceName, cfg.LogLevel)

			ctx, stop := runtime.SignalContextFrom(cmd.Context())
			defer stop()

			otelCfg, err := otelx.ConfigFromEnv(cfg.ServiceName, Version)
			if err != nil {
				return err
			}
			otelShutdown, err := otelx.Setup(ctx, otelCfg)
			if err != nil {
				logger.Error("otel setup failed", "err", err)
			} else {
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = otelShutdown(shutdownCtx)
				}()
			}

			a, err := buildApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()

			if err := startGrpcServer(ctx, a, logger); err != nil {
				return err
			}
			return serveHTTP(ctx, a, logger)
		},
	}
	cmd.Flags().BoolVar(&demoSeed, "demo-seed", false, "preload the demo ledger usage")
	return cmd
}

func serveHTTP(ctx context.Context, a *app, logger *slog.Logger) error {
	checks := a.checks
	var limiter httpx.Limiter = httpx.NewMemoryLimiter(a.cfg.RateLimitPerMinute, time.Minute)
	if a.cfg.RateLimitRedis {
		rl := httpx.NewRedisLimiter(a.rdb, a.cfg.RateLimitPerMinute, time.Minute, a.cfg.ServiceName+":rl")
		checks = append(checks, runtime.ReadyCheck{Name: "ratelimit", Check: rl.ReadyCheck()})
		limiter = rl
	}

	mux := runtime.NewBaseMuxWithReady(checks...)
	handlers.NewGroomingHandler(a.svc, logger).Register(mux)

	httpHandler := httpx.Chain(mux,
		httpx.WithRecover(logger),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: a.cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
			MaxAge:         10 * time.Minute,
		}),
		httpx.RateLimit(limiter, logger, true),
		httpx.WithBodyLimit(a.cfg.MaxBodyBytes),
		httpx.WithTimeout(a.cfg.RequestTimeout),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "grooming")
	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("http server error", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
	return nil
}

func startGrpcServer(ctx context.Context, a *app, logger *slog.Logger) error {
	lis, err := net.Listen("tcp", ":"+a.cfg.GRPCPort)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			grpcx.UnaryServerRequestIDInterceptor(),
			grpcx.UnaryServerLogInterceptor(logger),
		),
	)
	grpcserver.Register(srv, a.svc, logger)

	go func() {
		logger.Info("grpc server starting", "addr", lis.Addr().String())
		if err := srv.Serve(lis); err != nil {
			logger.Error("grpc server error", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	return nil
}
