package main

import (
	"context"
	"io"
	"time"

	"github.com/smarterdog/grooming/libs/runtime"
	"github.com/smarterdog/grooming/services/grooming-service/internal/grpcserver"
)

// clientFlags are shared by the one-shot commands.
type clientFlags struct {
	addr     string
	demoSeed bool
	timeout  time.Duration
}

// open returns a remote client when addr is set, otherwise an in-process service built
// from the environment.
func (f clientFlags) open(ctx context.Context, stderr io.Writer) (groomingAPI, func(), error) {
	if f.addr != "" {
		c, err := grpcserver.NewClient(ctx, f.addr)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	}

	cfg, err := loadConfig(f.demoSeed)
	if err != nil {
		return nil, nil, err
	}
	logger := runtime.NewLoggerTo(stderr, cfg.ServiceName, cfg.LogLevel)
	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return a.svc, a.close, nil
}
