package forward

import (
	"context"
	"reflect"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/pluginevent"
	"github.com/agentstation/pluginevent/pkg/errors"
	"github.com/agentstation/pluginevent/pkg/logging"
)

// DefaultDeliverTimeout bounds a single Send made from Deliver.
const DefaultDeliverTimeout = 5 * time.Second

// Connection is the transport to another tool instance.
type Connection interface {
	Send(ctx context.Context, env Envelope) error
}

// ConnectionFunc adapts a function to the Connection interface.
type ConnectionFunc func(ctx context.Context, env Envelope) error

// Send calls f(ctx, env).
func (f ConnectionFunc) Send(ctx context.Context, env Envelope) error {
	return f(ctx, env)
}

// Forwarder sends exportable events over a Connection. It also satisfies
// dispatch.Subscriber, so it can be subscribed to a broker directly.
type Forwarder struct {
	conn    Connection
	logger  *zerolog.Logger
	timeout time.Duration
}

// ForwarderOption configures a Forwarder.
type ForwarderOption func(*Forwarder)

// WithLogger sets the forwarder's logger.
func WithLogger(logger *zerolog.Logger) ForwarderOption {
	return func(f *Forwarder) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithDeliverTimeout sets the timeout Deliver applies to each Send.
func WithDeliverTimeout(d time.Duration) ForwarderOption {
	return func(f *Forwarder) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// NewForwarder creates a Forwarder over conn.
func NewForwarder(conn Connection, opts ...ForwarderOption) *Forwarder {
	nop := zerolog.Nop()
	f := &Forwarder{
		conn:    conn,
		logger:  &nop,
		timeout: DefaultDeliverTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Accepts reports whether events of kind t can be forwarded. It needs no
// instance, so subscriptions can be filtered before any event exists.
func (f *Forwarder) Accepts(t reflect.Type) bool {
	_, ok := pluginevent.LookupExportName(t)
	return ok
}

// Forward exports e and sends it. Kinds without an export name fail with
// errors.ErrNotExportable. The context passed to the connection carries
// the forwarder's logger tagged with the event and export names.
func (f *Forwarder) Forward(ctx context.Context, e pluginevent.Event) error {
	env, err := Export(e)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return errors.NewExportError("export", e.EventName(), "context done", errors.ErrCanceled)
	}

	ctx = logging.WithEvent(logging.WithLogger(ctx, f.logger), e)
	ctx = logging.WithExportName(ctx, env.ExportName)
	logger := logging.Ctx(ctx)

	if err := f.conn.Send(ctx, env); err != nil {
		logger.Warn().Err(err).Msg("Failed to forward event")
		return errors.NewExportError("export", e.EventName(), "send", err)
	}

	logger.Debug().Msg("Event forwarded")
	return nil
}

// Deliver forwards e when its kind is exportable and ignores it otherwise.
func (f *Forwarder) Deliver(e pluginevent.Event) error {
	if !pluginevent.IsExportable(e) {
		f.logger.Debug().
			Str("event_name", e.EventName()).
			Msg("Skipping event without export name")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()
	return f.Forward(ctx, e)
}

// Close implements dispatch.Subscriber. The connection is owned by the
// caller and is left open.
func (f *Forwarder) Close() error {
	return nil
}
