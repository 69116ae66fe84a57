package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do"
	"github.com/savedlinks/thumbnailer/internal/container"
	"github.com/savedlinks/thumbnailer/internal/messaging"
	"go.uber.org/zap"
)

// cmpOr mirrors cmp.Or from the Go 1.22 standard library; the build
// toolchain here is Go 1.21, which predates it.
func cmpOr[T comparable](vals ...T) T {
	var zero T
	for _, val := range vals {
		if val != zero {
			return val
		}
	}
	return zero
}

// The consumer binary drains the stats topics. It shares the container
// packages with the API server but only wires the ones it needs.
func main() {
	injector := do.New()

	do.ProvideValue(injector, &container.Options{
		RedisAddr: cmpOr(os.Getenv("REDIS_ADDR"), "localhost:6379"),
		LogFormat: cmpOr(os.Getenv("LOG_FORMAT"), "console"),
	})
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.ConsumerGroupPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)
	group := do.MustInvoke[*messaging.ConsumerGroup](injector)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	<-ctx.Done()
	logger.Info("shutting down")

	// The injector shuts the consumer group down, which stops every
	// consumer and closes the subscriber connection.
	if err := injector.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
