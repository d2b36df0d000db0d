package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sharetube/syncroom/internal/fanout"
)

type HandlerFunc func(*Service) ([]fanout.Outbound, error)

type iDeliverer interface {
	Deliver(outs ...fanout.Outbound)
}

type iMetrics interface {
	CommandApplied(command string)
	CommandDropped(command, reason string)
	Ticked()
	SetRooms(n int)
	SetRegistered(n int)
}

type command struct {
	ctx  context.Context
	name string
	fn   HandlerFunc
	done chan error
}

// Dispatcher is the only writer of room state. Commands and ticks are
// applied one at a time and their outbound messages are delivered before
// the next one starts, so a room observes events in arrival order.
type Dispatcher struct {
	service      *Service
	deliverer    iDeliverer
	metrics      iMetrics
	clock        clock.Clock
	tickInterval time.Duration
	inbox        chan command
	stopped      chan struct{}
	logger       *slog.Logger
}

type DispatcherConfig struct {
	TickInterval time.Duration
	InboxSize    int
}

func NewDispatcher(service *Service, deliverer iDeliverer, metrics iMetrics, logger *slog.Logger, cfg *DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		service:      service,
		deliverer:    deliverer,
		metrics:      metrics,
		clock:        service.clock,
		tickInterval: cfg.TickInterval,
		inbox:        make(chan command, cfg.InboxSize),
		stopped:      make(chan struct{}),
		logger:       logger,
	}
}

func (d *Dispatcher) Run(ctx context.Context) error {
	defer close(d.stopped)

	ticker := d.clock.Ticker(d.tickInterval)
	defer ticker.Stop()

	d.logger.InfoContext(ctx, "dispatcher started", "tick_interval", d.tickInterval.String())
	d.updateGauges()

	for {
		select {
		case <-ctx.Done():
			d.logger.InfoContext(ctx, "dispatcher stopped")
			return nil
		case cmd := <-d.inbox:
			cmd.done <- d.apply(cmd)
		case <-ticker.C:
			if advanced := d.service.Tick(); advanced > 0 {
				d.logger.Debug("tick", "playing_rooms", advanced)
			}
			d.metrics.Ticked()
		}
	}
}

// Do queues fn and waits until it has been applied and its messages
// delivered. A cancelled ctx stops the wait, not an already queued command.
func (d *Dispatcher) Do(ctx context.Context, name string, fn HandlerFunc) error {
	cmd := command{
		ctx:  ctx,
		name: name,
		fn:   fn,
		done: make(chan error, 1),
	}

	select {
	case d.inbox <- cmd:
	case <-d.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.done:
		return err
	case <-d.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) apply(cmd command) error {
	outs, err := cmd.fn(d.service)
	if err != nil {
		d.drop(cmd.ctx, cmd.name, err)
		return err
	}

	d.deliverer.Deliver(outs...)
	d.metrics.CommandApplied(cmd.name)
	d.updateGauges()

	return nil
}

// drop logs a rejected command. Rejected commands never change state and
// are never answered on the wire.
func (d *Dispatcher) drop(ctx context.Context, name string, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		d.logger.DebugContext(ctx, "command dropped", "command", name, "reason", "unauthorized", "error", err)
		d.metrics.CommandDropped(name, "unauthorized")
	case errors.Is(err, ErrNotFound):
		d.logger.InfoContext(ctx, "command dropped", "command", name, "reason", "not_found", "error", err)
		d.metrics.CommandDropped(name, "not_found")
	case errors.Is(err, ErrMalformed):
		d.logger.WarnContext(ctx, "command dropped", "command", name, "reason", "malformed", "error", err)
		d.metrics.CommandDropped(name, "malformed")
	default:
		d.logger.ErrorContext(ctx, "command failed", "command", name, "error", err)
		d.metrics.CommandDropped(name, "internal")
	}
}

func (d *Dispatcher) updateGauges() {
	d.metrics.SetRooms(d.service.RoomsLength())
	d.metrics.SetRegistered(d.service.RegisteredLength())
}
