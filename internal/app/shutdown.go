package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"remotebalkan-scraper/internal/observability"
)

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM, or
// when the returned stop function is called.
func GracefulShutdown(parent context.Context, logger *observability.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
