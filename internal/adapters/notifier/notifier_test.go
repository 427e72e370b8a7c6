package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"freight-bid-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type broadcasterMock struct {
	mock.Mock
}

func (m *broadcasterMock) Subscribe(ctx context.Context, topic string, clientID string, eventChan chan outbound.Event) error {
	return m.Called(ctx, topic, clientID, eventChan).Error(0)
}

func (m *broadcasterMock) Unsubscribe(ctx context.Context, topic string, clientID string) error {
	return m.Called(ctx, topic, clientID).Error(0)
}

func (m *broadcasterMock) Publish(ctx context.Context, topic string, event outbound.Event) error {
	return m.Called(ctx, topic, event).Error(0)
}

func (m *broadcasterMock) IsSubscribed(ctx context.Context, topic string, clientID string) bool {
	return m.Called(ctx, topic, clientID).Bool(0)
}

func TestBroadcastNotifier_PublishesOnDestination(t *testing.T) {
	at := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	auctionID := uuid.New()

	tests := []struct {
		name  string
		n     outbound.Notification
		topic string
	}{
		{
			name:  "recipient token wins",
			n:     outbound.Notification{Kind: outbound.EventTypeOutbid, Topic: outbound.StaffTopic, RecipientToken: "tok-a", AuctionID: auctionID},
			topic: "participant:tok-a",
		},
		{
			name:  "explicit topic",
			n:     outbound.Notification{Kind: outbound.EventTypeWinnerSelected, Topic: outbound.StaffTopic, AuctionID: auctionID},
			topic: "staff",
		},
		{
			name:  "auction topic fallback",
			n:     outbound.Notification{Kind: outbound.EventTypeOfferPlaced, AuctionID: auctionID},
			topic: "auction:" + auctionID.String(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &broadcasterMock{}
			b.On("Publish", mock.Anything, tt.topic, outbound.Event{
				Type:      tt.n.Kind,
				AuctionID: auctionID,
				Timestamp: at.Unix(),
			}).Return(nil).Once()

			n := NewBroadcastNotifier(BroadcastNotifierParams{
				Broadcaster: b,
				Clock:       func() time.Time { return at },
				Logger:      zerolog.Nop(),
			})

			require.NoError(t, n.Notify(context.Background(), tt.n))
			b.AssertExpectations(t)
		})
	}
}

func TestBroadcastNotifier_WrapsPublishError(t *testing.T) {
	boom := errors.New("redis down")
	b := &broadcasterMock{}
	b.On("Publish", mock.Anything, "staff", mock.Anything).Return(boom)

	n := NewBroadcastNotifier(BroadcastNotifierParams{Broadcaster: b, Logger: zerolog.Nop()})
	err := n.Notify(context.Background(), outbound.Notification{Kind: outbound.EventTypeWinnerSelected, Topic: outbound.StaffTopic})
	require.ErrorIs(t, err, boom)
}

type recorder struct {
	mu   sync.Mutex
	got  []outbound.Notification
	ctxs []context.Context
	err  error
}

func (r *recorder) Notify(ctx context.Context, n outbound.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	r.ctxs = append(r.ctxs, ctx)
	return r.err
}

func TestAsyncNotifier_DeliversAfterRequestEnds(t *testing.T) {
	next := &recorder{}
	n := NewAsyncNotifier(AsyncNotifierParams{Next: next, Workers: 2, Queue: 10, Logger: zerolog.Nop()})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, n.Notify(ctx, outbound.Notification{Kind: outbound.EventTypeOutbid, RecipientToken: "tok-a"}))
	require.NoError(t, n.Notify(ctx, outbound.Notification{Kind: outbound.EventTypeOfferPlaced}))
	cancel()

	n.Stop()

	require.Len(t, next.got, 2)
	for _, c := range next.ctxs {
		require.NoError(t, c.Err())
	}
}

func TestAsyncNotifier_FailuresAreNotReturned(t *testing.T) {
	next := &recorder{err: errors.New("unreachable")}
	n := NewAsyncNotifier(AsyncNotifierParams{Next: next, Workers: 1, Queue: 1, Logger: zerolog.Nop()})

	require.NoError(t, n.Notify(context.Background(), outbound.Notification{Kind: outbound.EventTypeOutbid}))
	n.Stop()
	require.Len(t, next.got, 1)
}
