package usecases

import (
	"context"
	"log/slog"
	"sync/atomic"

	"chatrelay/internal/infrastructure"
	"chatrelay/internal/interfaces"
	"chatrelay/internal/logger"
)

// Dispatcher relays replies to the messaging provider. Delivery is best
// effort: one attempt, failures are logged and never returned.
type Dispatcher struct {
	messenger interfaces.Messenger
	log       *slog.Logger

	sent   atomic.Uint64
	failed atomic.Uint64
}

func NewDispatcher(messenger interfaces.Messenger, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		messenger: messenger,
		log:       log.With("component", "dispatch"),
	}
}

// Dispatch sends text to the user and reports whether the provider accepted it.
// Empty text is a no-op.
func (d *Dispatcher) Dispatch(ctx context.Context, to, text string) bool {
	if text == "" {
		return false
	}

	res := d.messenger.SendMessage(ctx, to, text)
	if res.Err != nil {
		d.failed.Add(1)
		d.log.Error("dispatch.fail",
			slog.String("to", to),
			slog.Int("status", res.StatusCode),
			slog.String("body", logger.Preview(res.Body)),
			slog.String("error", res.Err.Error()),
			slog.String("error_kind", infrastructure.ClassifyError(res.Err, res.StatusCode)),
		)
		return false
	}

	d.sent.Add(1)
	d.log.Info("dispatch.success",
		slog.String("to", to),
		slog.Int("status", res.StatusCode),
		slog.String("body", logger.Preview(res.Body)),
	)
	return true
}

// Stats returns delivered and failed counts since start.
func (d *Dispatcher) Stats() (sent, failed uint64) {
	return d.sent.Load(), d.failed.Load()
}
