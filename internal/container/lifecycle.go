package container

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	errs "github.com/specialistvlad/wiregrid/internal/errors"
)

// Start starts every service in the order it finished configuration. The
// first failure stops the sequence and is returned; services already started
// stay started until Stop.
func (c *Container) Start(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("container", c.id)

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errs.WrapLifecycle(errs.ErrAlreadyRunning, "container", "", "start")
	}
	pending := append([]*slot(nil), c.lifecycle...)
	c.mu.Unlock()

	for _, s := range pending {
		if s.state == Started {
			continue
		}
		if svc, ok := s.object.(Service); ok {
			logger.Debug("Starting service.", "name", s.key)
			err := svc.Start(ctx)
			c.metrics.ObserveService("start", err)
			if err != nil {
				return errs.WrapLifecycle(fmt.Errorf("%w: %q: %w", errs.ErrServiceStart, s.key, err), "container", s.key, "start")
			}
		}
		c.arena.setState(s, Started)
		c.mu.Lock()
		c.started = append(c.started, s.object)
		c.mu.Unlock()
	}

	c.mu.Lock()
	c.running = true
	c.mu.Unlock()
	logger.Info("Container started.", "services", len(pending))
	return nil
}

// Stop stops started objects in reverse start order. Every Stopper is asked
// to stop even when an earlier one fails; the failures are returned together.
func (c *Container) Stop(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("container", c.id)

	c.mu.Lock()
	started := c.started
	c.started = nil
	c.running = false
	c.mu.Unlock()

	var result *multierror.Error
	for i := len(started) - 1; i >= 0; i-- {
		stopper, ok := started[i].(Stopper)
		if !ok {
			continue
		}
		err := stopper.Stop(ctx)
		c.metrics.ObserveService("stop", err)
		if err != nil {
			logger.Error("Object failed to stop.", "type", fmt.Sprintf("%T", started[i]), "error", err)
			result = multierror.Append(result, errs.WrapLifecycle(fmt.Errorf("%w: %w", errs.ErrServiceStop, err), "container", "", "stop"))
		}
	}
	for _, s := range c.lifecycle {
		if s.state == Started {
			c.arena.setState(s, Configured)
		}
	}
	logger.Info("Container stopped.", "stopped", len(started))
	return result.ErrorOrNil()
}
