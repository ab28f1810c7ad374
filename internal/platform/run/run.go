// Package run ties process lifetime to OS signals.
package run

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// WithSignals runs start until it returns or SIGINT/SIGTERM arrives.
// On a signal it calls shutdown with a bounded context and waits for
// start to drain. The return value is the process exit code.
func WithSignals(log *zap.Logger, start func(ctx context.Context) error, shutdown func(ctx context.Context) error) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- start(ctx)
	}()

	select {
	case err := <-errCh:
		return exitCode(log, err)
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	sc, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdown != nil {
		if err := shutdown(sc); err != nil {
			log.Warn("shutdown", zap.Error(err))
		}
	}

	select {
	case err := <-errCh:
		return exitCode(log, err)
	case <-sc.Done():
		log.Warn("shutdown timed out")
		return 1
	}
}

func exitCode(log *zap.Logger, err error) int {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return 0
	}
	log.Error("service exited with error", zap.Error(err))
	return 1
}

func Exit(code int) {
	os.Exit(code)
}
