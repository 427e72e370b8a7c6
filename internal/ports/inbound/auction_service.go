package inbound

import (
	"context"
	"time"

	"freight-bid-service/internal/domain/auction"
	"freight-bid-service/internal/domain/offer"
	"freight-bid-service/internal/domain/scoring"
	"freight-bid-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuctionService defines the interface for auction operations
type AuctionService interface {
	// CreateAuction creates a new auction in OPEN state with a unique code
	CreateAuction(ctx context.Context, actor shared.Participant, req CreateAuctionRequest) (*auction.Auction, error)

	// GetAuction retrieves an auction by ID
	GetAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error)

	// GetAuctionByCode retrieves an auction by its human readable code
	GetAuctionByCode(ctx context.Context, code string) (*auction.Auction, error)

	// ListAuctions retrieves a page of auctions
	ListAuctions(ctx context.Context, req ListAuctionsRequest) ([]*auction.Auction, error)

	// GetRanking ranks the stored offers with the auction's weights
	GetRanking(ctx context.Context, auctionID uuid.UUID) (*scoring.Ranking, error)

	CloseAuction(ctx context.Context, actor shared.Participant, auctionID uuid.UUID) (*auction.Auction, error)
	SelectWinner(ctx context.Context, actor shared.Participant, auctionID, offerID uuid.UUID, note string) (*auction.Auction, error)
	ApproveWinner(ctx context.Context, actor shared.Participant, auctionID uuid.UUID) (*auction.Auction, error)
	RejectWinner(ctx context.Context, actor shared.Participant, auctionID uuid.UUID, reason string) (*auction.Auction, error)
	FinalizeDeserted(ctx context.Context, actor shared.Participant, auctionID uuid.UUID, override bool) (*auction.Auction, error)

	// ExtendDeadline moves the offer cut-off of an open auction forward
	ExtendDeadline(ctx context.Context, actor shared.Participant, auctionID uuid.UUID, deadline time.Time) (*auction.Auction, error)
}

// OfferService defines the interface for offer operations
type OfferService interface {
	// SubmitOffer stores an offer and alerts a displaced leader
	SubmitOffer(ctx context.Context, carrier shared.Participant, req SubmitOfferRequest) (*SubmitResult, error)

	// ListOffers returns the offers of an auction in submission order
	ListOffers(ctx context.Context, auctionID uuid.UUID) ([]*offer.Offer, error)
}

// IdentityService resolves participants. It never authenticates them.
type IdentityService interface {
	Resolve(ctx context.Context, participantID uuid.UUID) (*shared.Participant, error)
	Register(ctx context.Context, participant *shared.Participant) error
}

// request to create an auction
type CreateAuctionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`

	VehiclePlate    string `json:"vehicle_plate"`
	VehicleCategory string `json:"vehicle_category"`
	VehicleQuantity int    `json:"vehicle_quantity"`
	TransportType   string `json:"transport_type"`
	HasKey          bool   `json:"has_key"`
	Operational     bool   `json:"operational"`

	Origin          string `json:"origin"`
	PickupAddress   string `json:"pickup_address"`
	Destination     string `json:"destination"`
	DeliveryAddress string `json:"delivery_address"`

	Deadline         time.Time  `json:"deadline"`
	DeliveryDeadline *time.Time `json:"delivery_deadline,omitempty"`

	// PriceWeight is optional; the lead time weight is 100 minus it
	PriceWeight *int `json:"price_weight,omitempty"`

	// PreferredCode and Suffix customize the generated code
	PreferredCode string `json:"preferred_code,omitempty"`
	Suffix        string `json:"suffix,omitempty"`
}

// request to list auctions
type ListAuctionsRequest struct {
	Status   *auction.Status `json:"status,omitempty"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// request to submit an offer
type SubmitOfferRequest struct {
	AuctionID    uuid.UUID       `json:"auction_id"`
	Price        decimal.Decimal `json:"price"`
	LeadTimeDays int             `json:"lead_time_days"`
}

// SubmitResult is what a carrier sees right after submitting
type SubmitResult struct {
	Offer   *offer.Offer     `json:"offer"`
	Leader  *offer.Offer     `json:"leader"`
	Ranking *scoring.Ranking `json:"ranking"`
}
