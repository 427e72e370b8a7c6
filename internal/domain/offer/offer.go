package offer

import (
	"time"

	"freight-bid-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Offer is one carrier's price and lead time against an auction.
// Offers are immutable once stored; a correction is a new offer.
type Offer struct {
	ID           uuid.UUID       `json:"id"`
	AuctionID    uuid.UUID       `json:"auction_id"`
	CarrierID    string          `json:"carrier_id"`
	CarrierName  string          `json:"carrier_name"`
	Price        decimal.Decimal `json:"price"`
	LeadTimeDays int             `json:"lead_time_days"`
	// NotifyToken is absent on offers stored before directed notifications existed
	NotifyToken *string   `json:"notify_token,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// New builds a validated offer stamped with the given submission time
func New(auctionID uuid.UUID, carrier shared.Participant, price decimal.Decimal, leadTimeDays int, at time.Time) (*Offer, error) {
	o := &Offer{
		ID:           uuid.New(),
		AuctionID:    auctionID,
		CarrierID:    carrier.ID.String(),
		CarrierName:  carrier.Name,
		Price:        price,
		LeadTimeDays: leadTimeDays,
		CreatedAt:    at,
	}
	if carrier.NotifyToken != "" {
		token := carrier.NotifyToken
		o.NotifyToken = &token
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate checks the offer invariants
func (o *Offer) Validate() error {
	if !o.Price.IsPositive() {
		return shared.ErrInvalidPrice
	}
	if o.LeadTimeDays < 1 {
		return shared.ErrInvalidLeadTime
	}
	return nil
}

// HasNotifyToken returns true if the offer can receive directed notifications
func (o *Offer) HasNotifyToken() bool {
	return o.NotifyToken != nil && *o.NotifyToken != ""
}

// SameCarrier returns true if both offers were submitted by the same participant
func (o *Offer) SameCarrier(other *Offer) bool {
	return o.CarrierID == other.CarrierID
}

// Undercuts returns true if this offer is strictly cheaper than other
func (o *Offer) Undercuts(other *Offer) bool {
	return o.Price.LessThan(other.Price)
}
