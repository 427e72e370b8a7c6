package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"freight-bid-service/internal/domain/auction"
	"freight-bid-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	deadlinesKey = "auction:deadlines"
	batchSize    = 50
)

// AuctionCloser is the part of the auction service the scheduler drives
type AuctionCloser interface {
	CloseExpired(ctx context.Context, auctionID uuid.UUID) (bool, error)
	ListOpen(ctx context.Context) ([]*auction.Auction, error)
}

// deadlineStore keeps auction ids ordered by deadline
type deadlineStore interface {
	add(ctx context.Context, id string, deadline time.Time) error
	remove(ctx context.Context, id string) (bool, error)
	due(ctx context.Context, now time.Time, limit int64) ([]string, error)
}

type redisStore struct {
	client redis.Cmdable
}

func (s redisStore) add(ctx context.Context, id string, deadline time.Time) error {
	return s.client.ZAdd(ctx, deadlinesKey, redis.Z{Score: float64(deadline.UnixMilli()), Member: id}).Err()
}

func (s redisStore) remove(ctx context.Context, id string) (bool, error) {
	n, err := s.client.ZRem(ctx, deadlinesKey, id).Result()
	return n > 0, err
}

func (s redisStore) due(ctx context.Context, now time.Time, limit int64) ([]string, error) {
	return s.client.ZRangeByScore(ctx, deadlinesKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: limit,
	}).Result()
}

// AuctionScheduler closes auctions once their deadline passes. Deadlines
// live in a Redis sorted set so every instance shares one schedule; an
// entry is claimed by removing it, so only one instance closes an auction.
type AuctionScheduler struct {
	store    deadlineStore
	closer   AuctionCloser
	interval time.Duration
	clock    func() time.Time
	logger   zerolog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}
type AuctionSchedulerParams struct {
	RedisClient redis.Cmdable
	Closer      AuctionCloser
	Interval    time.Duration
	Clock       func() time.Time
	Logger      zerolog.Logger
}

func NewAuctionScheduler(params AuctionSchedulerParams) *AuctionScheduler {
	return newScheduler(redisStore{client: params.RedisClient}, params)
}

func newScheduler(store deadlineStore, params AuctionSchedulerParams) *AuctionScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	interval := params.Interval
	if interval <= 0 {
		interval = time.Second
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}

	return &AuctionScheduler{
		store:    store,
		closer:   params.Closer,
		interval: interval,
		clock:    clock,
		logger:   params.Logger.With().Str("component", "auction_scheduler").Logger(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Schedule adds or moves an auction's deadline
func (s *AuctionScheduler) Schedule(ctx context.Context, auctionID uuid.UUID, deadline time.Time) error {
	if err := s.store.add(ctx, auctionID.String(), deadline); err != nil {
		s.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to schedule auction")
		return fmt.Errorf("failed to schedule auction: %w", err)
	}

	s.logger.Debug().Str("auction_id", auctionID.String()).Time("deadline", deadline).Msg("Auction deadline scheduled")
	return nil
}

// Cancel drops an auction from the schedule
func (s *AuctionScheduler) Cancel(ctx context.Context, auctionID uuid.UUID) error {
	if _, err := s.store.remove(ctx, auctionID.String()); err != nil {
		return fmt.Errorf("failed to cancel auction schedule: %w", err)
	}
	return nil
}

// Resync schedules every open auction. It repairs a schedule lost with a
// Redis flush or missed while the service was down.
func (s *AuctionScheduler) Resync(ctx context.Context) error {
	open, err := s.closer.ListOpen(ctx)
	if err != nil {
		return fmt.Errorf("failed to list open auctions: %w", err)
	}
	for _, a := range open {
		if err := s.Schedule(ctx, a.ID, a.Deadline); err != nil {
			return err
		}
	}

	s.logger.Info().Int("count", len(open)).Msg("Deadline schedule resynced")
	return nil
}

// Start begins the scheduler loop
func (s *AuctionScheduler) Start() {
	s.logger.Info().Dur("interval", s.interval).Msg("Starting auction scheduler")

	s.wg.Add(1)
	go s.schedulerLoop()
}

// Stop gracefully stops the scheduler
func (s *AuctionScheduler) Stop() {
	s.logger.Info().Msg("Stopping auction scheduler")
	s.cancel()
	s.wg.Wait()
}

func (s *AuctionScheduler) schedulerLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.closeExpired(s.ctx)
		case <-s.ctx.Done():
			s.logger.Info().Msg("Scheduler loop stopped")
			return
		}
	}
}

// closeExpired processes one batch of due deadlines
func (s *AuctionScheduler) closeExpired(ctx context.Context) {
	now := s.clock()

	ids, err := s.store.due(ctx, now, batchSize)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to get expired auctions")
		return
	}

	for _, idStr := range ids {
		claimed, err := s.store.remove(ctx, idStr)
		if err != nil {
			s.logger.Error().Err(err).Str("auction_id", idStr).Msg("Failed to claim expired auction")
			continue
		}
		if !claimed {
			continue
		}

		auctionID, err := uuid.Parse(idStr)
		if err != nil {
			s.logger.Error().Err(err).Str("auction_id", idStr).Msg("Invalid auction ID")
			continue
		}

		s.endAuction(ctx, auctionID, now)
	}
}

func (s *AuctionScheduler) endAuction(ctx context.Context, auctionID uuid.UUID, now time.Time) {
	closed, err := s.closer.CloseExpired(ctx, auctionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn().Str("auction_id", auctionID.String()).Msg("Scheduled auction no longer exists")
			return
		}
		s.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to close expired auction, retrying")
		if err := s.store.add(ctx, auctionID.String(), now.Add(s.interval)); err != nil {
			s.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to requeue auction")
		}
		return
	}

	if closed {
		s.logger.Info().Str("auction_id", auctionID.String()).Msg("Auction closed at deadline")
	}
}
