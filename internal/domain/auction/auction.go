package auction

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle stage of an auction
type Status string

const (
	StatusOpen            Status = "OPEN"
	StatusUnderReview     Status = "UNDER_REVIEW"
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusFinalized       Status = "FINALIZED"
)

// Valid returns true if s is one of the defined lifecycle states
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusUnderReview, StatusPendingApproval, StatusFinalized:
		return true
	default:
		return false
	}
}

// Auction is one freight lot open for competitive offers
type Auction struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Title       string    `json:"title"`
	Description string    `json:"description"`

	VehiclePlate    string `json:"vehicle_plate,omitempty"`
	VehicleCategory string `json:"vehicle_category,omitempty"`
	VehicleQuantity int    `json:"vehicle_quantity"`
	TransportType   string `json:"transport_type,omitempty"`
	HasKey          bool   `json:"has_key"`
	Operational     bool   `json:"operational"`

	Origin          string `json:"origin"`
	PickupAddress   string `json:"pickup_address,omitempty"`
	Destination     string `json:"destination"`
	DeliveryAddress string `json:"delivery_address,omitempty"`

	Deadline         time.Time  `json:"deadline"`
	DeliveryDeadline *time.Time `json:"delivery_deadline,omitempty"`

	Status         Status     `json:"status"`
	PriceWeight    int        `json:"price_weight"`
	LeadTimeWeight int        `json:"lead_time_weight"`
	WinningOfferID *uuid.UUID `json:"winning_offer_id,omitempty"`

	CreationLog   string `json:"creation_log,omitempty"`
	ClosingLog    string `json:"closing_log,omitempty"`
	SelectionLog  string `json:"selection_log,omitempty"`
	SelectionNote string `json:"selection_note,omitempty"`
	ApprovalLog   string `json:"approval_log,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOpen returns true if the auction accepts offers
func (a *Auction) IsOpen() bool {
	return a.Status == StatusOpen
}

// IsFinalized returns true once the auction reached its terminal state
func (a *Auction) IsFinalized() bool {
	return a.Status == StatusFinalized
}

// DeadlinePassed reports whether the offer cut-off is at or before now
func (a *Auction) DeadlinePassed(now time.Time) bool {
	return !a.Deadline.After(now)
}

// HasWinner returns true if a winning offer is designated
func (a *Auction) HasWinner() bool {
	return a.WinningOfferID != nil
}
