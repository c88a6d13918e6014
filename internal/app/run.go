package app

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"

	"github.com/specialistvlad/wiregrid/internal/ctxlog"
)

// Run builds the object graph, starts its services and blocks until ctx is
// done. The services are then stopped in reverse order.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if err := a.container.ConfigureWith(ctx, a.root); err != nil {
		return fmt.Errorf("failed to build object graph: %w", err)
	}
	a.logger.Info("Object graph built.", "named_objects", len(a.container.Names()))

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx, a.config.HealthcheckPort)
	}

	if err := a.container.Start(ctx); err != nil {
		a.logger.Error("Container failed to start.", "error", err)
		return multierror.Append(err, a.shutdown(ctx)).ErrorOrNil()
	}
	a.logger.Info("🚀 Container started, waiting for shutdown signal.")

	<-ctx.Done()
	a.logger.Info("🏁 Shutdown requested.")
	return a.shutdown(ctx)
}

// shutdown stops the container, the health server and the local store.
func (a *App) shutdown(ctx context.Context) error {
	// ctx may already be cancelled; stopping must still run.
	stopCtx := ctxlog.WithLogger(context.WithoutCancel(ctx), a.logger)

	var result *multierror.Error
	if err := a.container.Stop(stopCtx); err != nil {
		result = multierror.Append(result, err)
	}
	if err := a.closeHealthcheckServer(stopCtx); err != nil {
		result = multierror.Append(result, err)
	}
	if closer, ok := a.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to close local store: %w", err))
		}
	}
	a.logger.Debug("App.Run method finished.")
	return result.ErrorOrNil()
}
