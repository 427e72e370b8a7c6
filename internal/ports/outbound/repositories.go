package outbound

import (
	"context"

	"freight-bid-service/internal/domain/auction"
	"freight-bid-service/internal/domain/offer"
	"freight-bid-service/internal/domain/shared"

	"github.com/google/uuid"
)

// AuctionRepository defines the interface for auction data operations
type AuctionRepository interface {
	// Create creates a new auction
	Create(ctx context.Context, auction *auction.Auction) error

	// GetByID retrieves an auction by ID
	GetByID(ctx context.Context, id uuid.UUID) (*auction.Auction, error)

	// GetByCode retrieves an auction by its code
	GetByCode(ctx context.Context, code string) (*auction.Auction, error)

	// CodeExists reports whether a code is already in use
	CodeExists(ctx context.Context, code string) (bool, error)

	// List retrieves a list of auctions with optional filters
	List(ctx context.Context, status *auction.Status, page, pageSize int) ([]*auction.Auction, error)

	// UpdateIfStatus persists the auction only while the stored status still
	// equals expected. It returns shared.ErrStatusConflict otherwise.
	UpdateIfStatus(ctx context.Context, auction *auction.Auction, expected auction.Status) error
}

// OfferRepository defines the interface for offer data operations
type OfferRepository interface {
	// Create stores a new offer
	Create(ctx context.Context, offer *offer.Offer) error

	// GetByID retrieves an offer by ID
	GetByID(ctx context.Context, id uuid.UUID) (*offer.Offer, error)

	// ListByAuction retrieves all offers of an auction, oldest first
	ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*offer.Offer, error)

	// GetLeader retrieves the cheapest offer. It returns shared.ErrNoOffers
	// when the auction has none.
	GetLeader(ctx context.Context, auctionID uuid.UUID) (*offer.Offer, error)

	// CountByAuction counts the offers of an auction
	CountByAuction(ctx context.Context, auctionID uuid.UUID) (int, error)
}

// ParticipantRepository defines the interface for participant data operations
type ParticipantRepository interface {
	// GetByID retrieves a participant by ID
	GetByID(ctx context.Context, id uuid.UUID) (*shared.Participant, error)

	// Create creates a new participant
	Create(ctx context.Context, participant *shared.Participant) error
}
