// Package memory holds concurrency-safe in-memory repositories. They back
// the "memory" store driver and the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"freight-bid-service/internal/domain/auction"
	"freight-bid-service/internal/domain/shared"

	"github.com/google/uuid"
)

// AuctionRepo is an in-memory implementation of outbound.AuctionRepository
type AuctionRepo struct {
	mu       sync.RWMutex
	auctions map[uuid.UUID]auction.Auction
	codes    map[string]uuid.UUID // code -> auction id
}

func NewAuctionRepo() *AuctionRepo {
	return &AuctionRepo{
		auctions: make(map[uuid.UUID]auction.Auction),
		codes:    make(map[string]uuid.UUID),
	}
}

func (r *AuctionRepo) Create(ctx context.Context, a *auction.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[a.ID]; ok {
		return fmt.Errorf("create auction %s: %w", a.ID, shared.ErrDuplicateID)
	}
	if _, ok := r.codes[a.Code]; ok {
		return fmt.Errorf("create auction %s: %w", a.Code, shared.ErrCodeTaken)
	}

	r.auctions[a.ID] = copyAuction(a)
	r.codes[a.Code] = a.ID
	return nil
}

func (r *AuctionRepo) GetByID(ctx context.Context, id uuid.UUID) (*auction.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.auctions[id]
	if !ok {
		return nil, shared.ErrAuctionNotFound
	}
	out := copyAuction(&a)
	return &out, nil
}

func (r *AuctionRepo) GetByCode(ctx context.Context, code string) (*auction.Auction, error) {
	r.mu.RLock()
	id, ok := r.codes[code]
	r.mu.RUnlock()
	if !ok {
		return nil, shared.ErrAuctionNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *AuctionRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.codes[code]
	return ok, nil
}

// List returns auctions newest first
func (r *AuctionRepo) List(ctx context.Context, status *auction.Status, page, pageSize int) ([]*auction.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*auction.Auction, 0, len(r.auctions))
	for _, a := range r.auctions {
		if status != nil && a.Status != *status {
			continue
		}
		c := copyAuction(&a)
		matched = append(matched, &c)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Code < matched[j].Code
	})

	offset := (page - 1) * pageSize
	if offset < 0 || offset >= len(matched) {
		return []*auction.Auction{}, nil
	}
	end := offset + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *AuctionRepo) UpdateIfStatus(ctx context.Context, a *auction.Auction, expected auction.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.auctions[a.ID]
	if !ok {
		return shared.ErrAuctionNotFound
	}
	if stored.Status != expected {
		return shared.ErrStatusConflict
	}

	r.auctions[a.ID] = copyAuction(a)
	return nil
}

func copyAuction(a *auction.Auction) auction.Auction {
	c := *a
	if a.WinningOfferID != nil {
		id := *a.WinningOfferID
		c.WinningOfferID = &id
	}
	if a.DeliveryDeadline != nil {
		d := *a.DeliveryDeadline
		c.DeliveryDeadline = &d
	}
	return c
}
