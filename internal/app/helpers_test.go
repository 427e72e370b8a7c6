package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"freight-bid-service/internal/adapters/memory"
	"freight-bid-service/internal/domain/auction"
	"freight-bid-service/internal/domain/bidcode"
	"freight-bid-service/internal/domain/scoring"
	"freight-bid-service/internal/domain/shared"
	"freight-bid-service/internal/ports/inbound"
	"freight-bid-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	analyst = shared.Participant{ID: uuid.New(), Name: "Ana", Kind: shared.KindStaff, Role: shared.RoleStandard}
	master  = shared.Participant{ID: uuid.New(), Name: "Marta", Kind: shared.KindStaff, Role: shared.RoleMaster}

	carrierA = shared.Participant{ID: uuid.New(), Name: "Alpha Cargo", Kind: shared.KindCarrier, NotifyToken: "tok-a"}
	carrierB = shared.Participant{ID: uuid.New(), Name: "Beta Freight", Kind: shared.KindCarrier, NotifyToken: "tok-b"}
	carrierC = shared.Participant{ID: uuid.New(), Name: "Gamma Log", Kind: shared.KindCarrier, NotifyToken: "tok-c"}
)

// recordingNotifier keeps every notification it is asked to deliver
type recordingNotifier struct {
	mu   sync.Mutex
	sent []outbound.Notification
	err  error
}

func (n *recordingNotifier) Notify(ctx context.Context, notification outbound.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return n.err
}

func (n *recordingNotifier) ofKind(kind outbound.EventType) []outbound.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []outbound.Notification
	for _, s := range n.sent {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// racingAuctionRepo lets another writer commit right before the first
// conditional update goes through
type racingAuctionRepo struct {
	*memory.AuctionRepo
	once  sync.Once
	rival func(ctx context.Context)
}

func (r *racingAuctionRepo) UpdateIfStatus(ctx context.Context, a *auction.Auction, expected auction.Status) error {
	r.once.Do(func() { r.rival(ctx) })
	return r.AuctionRepo.UpdateIfStatus(ctx, a, expected)
}

type schedulerMock struct {
	mock.Mock
}

func (m *schedulerMock) Schedule(ctx context.Context, auctionID uuid.UUID, deadline time.Time) error {
	args := m.Called(ctx, auctionID, deadline)
	return args.Error(0)
}

func (m *schedulerMock) Cancel(ctx context.Context, auctionID uuid.UUID) error {
	args := m.Called(ctx, auctionID)
	return args.Error(0)
}

type fixture struct {
	mu       sync.RWMutex
	now      time.Time
	auctions *memory.AuctionRepo
	offers   *memory.OfferRepo
	notifier *recordingNotifier

	auctionService *AuctionService
	offerService   *OfferService
}

func newFixture(t *testing.T, scheduler outbound.DeadlineScheduler) *fixture {
	t.Helper()

	f := &fixture{
		now:      time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC),
		auctions: memory.NewAuctionRepo(),
		offers:   memory.NewOfferRepo(),
		notifier: &recordingNotifier{},
	}

	f.auctionService = NewAuctionService(AuctionServiceParams{
		AuctionRepo:    f.auctions,
		OfferRepo:      f.offers,
		Codes:          bidcode.NewGenerator(bidcode.WithClock(f.clock)),
		Scheduler:      scheduler,
		Notifier:       f.notifier,
		DefaultWeights: scoring.DefaultWeights,
		Clock:          f.clock,
		AuditLocation:  time.UTC,
		Logger:         zerolog.Nop(),
	})
	f.offerService = NewOfferService(OfferServiceParams{
		OfferRepo:   f.offers,
		AuctionRepo: f.auctions,
		Notifier:    f.notifier,
		Clock:       f.clock,
		Logger:      zerolog.Nop(),
	})
	return f
}

func (f *fixture) clock() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// openAuction creates an auction accepting offers for the next 24 hours
func (f *fixture) openAuction(t *testing.T) *auction.Auction {
	t.Helper()

	a, err := f.auctionService.CreateAuction(context.Background(), analyst, inbound.CreateAuctionRequest{
		Title:       "Hatchback transfer",
		Origin:      "Campinas",
		Destination: "Curitiba",
		Deadline:    f.clock().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	return a
}
