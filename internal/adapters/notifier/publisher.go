// Package notifier delivers notifications to participants and live views
package notifier

import (
	"context"
	"fmt"
	"time"

	"freight-bid-service/internal/ports/outbound"

	"github.com/rs/zerolog"
)

// BroadcastNotifier publishes each notification on its destination topic
type BroadcastNotifier struct {
	broadcaster outbound.Broadcaster
	clock       func() time.Time
	logger      zerolog.Logger
}

type BroadcastNotifierParams struct {
	Broadcaster outbound.Broadcaster
	Clock       func() time.Time
	Logger      zerolog.Logger
}

func NewBroadcastNotifier(params BroadcastNotifierParams) *BroadcastNotifier {
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &BroadcastNotifier{
		broadcaster: params.Broadcaster,
		clock:       clock,
		logger:      params.Logger.With().Str("component", "broadcast_notifier").Logger(),
	}
}

func (n *BroadcastNotifier) Notify(ctx context.Context, notification outbound.Notification) error {
	topic := notification.Destination()
	if err := n.broadcaster.Publish(ctx, topic, notification.Event(n.clock())); err != nil {
		return fmt.Errorf("notify %s on %s: %w", notification.Kind, topic, err)
	}

	n.logger.Debug().
		Str("kind", string(notification.Kind)).
		Str("topic", topic).
		Str("auction_id", notification.AuctionID.String()).
		Msg("Notification published")
	return nil
}
