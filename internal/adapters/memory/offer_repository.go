package memory

import (
	"context"
	"fmt"
	"sync"

	"freight-bid-service/internal/domain/offer"
	"freight-bid-service/internal/domain/scoring"
	"freight-bid-service/internal/domain/shared"

	"github.com/google/uuid"
)

// OfferRepo is an in-memory implementation of outbound.OfferRepository
type OfferRepo struct {
	mu        sync.RWMutex
	offers    map[uuid.UUID]offer.Offer
	byAuction map[uuid.UUID][]uuid.UUID // auction id -> offer ids in insertion order
}

func NewOfferRepo() *OfferRepo {
	return &OfferRepo{
		offers:    make(map[uuid.UUID]offer.Offer),
		byAuction: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *OfferRepo) Create(ctx context.Context, o *offer.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.offers[o.ID]; ok {
		return fmt.Errorf("create offer %s: %w", o.ID, shared.ErrDuplicateID)
	}
	r.offers[o.ID] = copyOffer(o)
	r.byAuction[o.AuctionID] = append(r.byAuction[o.AuctionID], o.ID)
	return nil
}

func (r *OfferRepo) GetByID(ctx context.Context, id uuid.UUID) (*offer.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.offers[id]
	if !ok {
		return nil, shared.ErrOfferNotFound
	}
	out := copyOffer(&o)
	return &out, nil
}

// ListByAuction returns offers in submission order
func (r *OfferRepo) ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*offer.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byAuction[auctionID]
	out := make([]*offer.Offer, 0, len(ids))
	for _, id := range ids {
		o := r.offers[id]
		c := copyOffer(&o)
		out = append(out, &c)
	}
	return out, nil
}

func (r *OfferRepo) GetLeader(ctx context.Context, auctionID uuid.UUID) (*offer.Offer, error) {
	offers, err := r.ListByAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	leader := scoring.Leader(offers)
	if leader == nil {
		return nil, fmt.Errorf("get leader for auction %s: %w", auctionID, shared.ErrNoOffers)
	}
	return leader, nil
}

func (r *OfferRepo) CountByAuction(ctx context.Context, auctionID uuid.UUID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byAuction[auctionID]), nil
}

func copyOffer(o *offer.Offer) offer.Offer {
	c := *o
	if o.NotifyToken != nil {
		token := *o.NotifyToken
		c.NotifyToken = &token
	}
	return c
}
