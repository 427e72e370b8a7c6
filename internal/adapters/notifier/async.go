package notifier

import (
	"context"
	"errors"

	"freight-bid-service/internal/ports/outbound"

	"github.com/alitto/pond"
	"github.com/rs/zerolog"
)

var ErrQueueFull = errors.New("notification queue is full")

// AsyncNotifier hands notifications to a bounded worker pool so delivery
// never blocks the caller. Delivery failures are logged, not returned.
type AsyncNotifier struct {
	next   outbound.Notifier
	pool   *pond.WorkerPool
	logger zerolog.Logger
}

type AsyncNotifierParams struct {
	Next    outbound.Notifier
	Workers int
	Queue   int
	Logger  zerolog.Logger
}

func NewAsyncNotifier(params AsyncNotifierParams) *AsyncNotifier {
	return &AsyncNotifier{
		next:   params.Next,
		pool:   pond.New(params.Workers, params.Queue, pond.Strategy(pond.Balanced())),
		logger: params.Logger.With().Str("component", "async_notifier").Logger(),
	}
}

// Notify queues the notification. The request context is detached so a
// finished request does not cancel delivery.
func (n *AsyncNotifier) Notify(ctx context.Context, notification outbound.Notification) error {
	detached := context.WithoutCancel(ctx)

	queued := n.pool.TrySubmit(func() {
		if err := n.next.Notify(detached, notification); err != nil {
			n.logger.Error().Err(err).
				Str("kind", string(notification.Kind)).
				Str("auction_id", notification.AuctionID.String()).
				Msg("Failed to deliver notification")
		}
	})
	if !queued {
		n.logger.Warn().Str("kind", string(notification.Kind)).Msg("Notification queue full, dropping notification")
		return ErrQueueFull
	}
	return nil
}

// Stop waits for queued notifications to be delivered
func (n *AsyncNotifier) Stop() {
	n.pool.StopAndWait()
}
