package dynamo

import (
	"fmt"
	"time"

	"freight-bid-service/internal/domain/auction"
	"freight-bid-service/internal/domain/offer"
	"freight-bid-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// timeLayout has a fixed width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type auctionItem struct {
	ID               string `dynamodbav:"id"`
	Code             string `dynamodbav:"code"`
	Title            string `dynamodbav:"title"`
	Description      string `dynamodbav:"description"`
	VehiclePlate     string `dynamodbav:"vehicle_plate"`
	VehicleCategory  string `dynamodbav:"vehicle_category"`
	VehicleQuantity  int    `dynamodbav:"vehicle_quantity"`
	TransportType    string `dynamodbav:"transport_type"`
	HasKey           bool   `dynamodbav:"has_key"`
	Operational      bool   `dynamodbav:"operational"`
	Origin           string `dynamodbav:"origin"`
	PickupAddress    string `dynamodbav:"pickup_address"`
	Destination      string `dynamodbav:"destination"`
	DeliveryAddress  string `dynamodbav:"delivery_address"`
	Deadline         string `dynamodbav:"deadline"`
	DeliveryDeadline string `dynamodbav:"delivery_deadline,omitempty"`
	Status           string `dynamodbav:"status"`
	PriceWeight      int    `dynamodbav:"price_weight"`
	LeadTimeWeight   int    `dynamodbav:"lead_time_weight"`
	WinningOfferID   string `dynamodbav:"winning_offer_id,omitempty"`
	CreationLog      string `dynamodbav:"creation_log"`
	ClosingLog       string `dynamodbav:"closing_log"`
	SelectionLog     string `dynamodbav:"selection_log"`
	SelectionNote    string `dynamodbav:"selection_note"`
	ApprovalLog      string `dynamodbav:"approval_log"`
	CreatedAt        string `dynamodbav:"created_at"`
	UpdatedAt        string `dynamodbav:"updated_at"`
}

type offerItem struct {
	ID           string `dynamodbav:"id"`
	AuctionID    string `dynamodbav:"auction_id"`
	CarrierID    string `dynamodbav:"carrier_id"`
	CarrierName  string `dynamodbav:"carrier_name"`
	Price        string `dynamodbav:"price"`
	LeadTimeDays int    `dynamodbav:"lead_time_days"`
	NotifyToken  string `dynamodbav:"notify_token,omitempty"`
	CreatedAt    string `dynamodbav:"created_at"`
}

type participantItem struct {
	ID          string `dynamodbav:"id"`
	Name        string `dynamodbav:"name"`
	Kind        string `dynamodbav:"kind"`
	Role        string `dynamodbav:"role"`
	NotifyToken string `dynamodbav:"notify_token"`
	Email       string `dynamodbav:"email"`
	CreatedAt   string `dynamodbav:"created_at"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func toAuctionItem(a *auction.Auction) auctionItem {
	it := auctionItem{
		ID:              a.ID.String(),
		Code:            a.Code,
		Title:           a.Title,
		Description:     a.Description,
		VehiclePlate:    a.VehiclePlate,
		VehicleCategory: a.VehicleCategory,
		VehicleQuantity: a.VehicleQuantity,
		TransportType:   a.TransportType,
		HasKey:          a.HasKey,
		Operational:     a.Operational,
		Origin:          a.Origin,
		PickupAddress:   a.PickupAddress,
		Destination:     a.Destination,
		DeliveryAddress: a.DeliveryAddress,
		Deadline:        formatTime(a.Deadline),
		Status:          string(a.Status),
		PriceWeight:     a.PriceWeight,
		LeadTimeWeight:  a.LeadTimeWeight,
		CreationLog:     a.CreationLog,
		ClosingLog:      a.ClosingLog,
		SelectionLog:    a.SelectionLog,
		SelectionNote:   a.SelectionNote,
		ApprovalLog:     a.ApprovalLog,
		CreatedAt:       formatTime(a.CreatedAt),
		UpdatedAt:       formatTime(a.UpdatedAt),
	}
	if a.DeliveryDeadline != nil {
		it.DeliveryDeadline = formatTime(*a.DeliveryDeadline)
	}
	if a.WinningOfferID != nil {
		it.WinningOfferID = a.WinningOfferID.String()
	}
	return it
}

func fromAuctionItem(it auctionItem) (*auction.Auction, error) {
	id, err := uuid.Parse(it.ID)
	if err != nil {
		return nil, fmt.Errorf("auction item id: %w", err)
	}
	a := &auction.Auction{
		ID:              id,
		Code:            it.Code,
		Title:           it.Title,
		Description:     it.Description,
		VehiclePlate:    it.VehiclePlate,
		VehicleCategory: it.VehicleCategory,
		VehicleQuantity: it.VehicleQuantity,
		TransportType:   it.TransportType,
		HasKey:          it.HasKey,
		Operational:     it.Operational,
		Origin:          it.Origin,
		PickupAddress:   it.PickupAddress,
		Destination:     it.Destination,
		DeliveryAddress: it.DeliveryAddress,
		Status:          auction.Status(it.Status),
		PriceWeight:     it.PriceWeight,
		LeadTimeWeight:  it.LeadTimeWeight,
		CreationLog:     it.CreationLog,
		ClosingLog:      it.ClosingLog,
		SelectionLog:    it.SelectionLog,
		SelectionNote:   it.SelectionNote,
		ApprovalLog:     it.ApprovalLog,
	}

	if a.Deadline, err = parseTime(it.Deadline); err != nil {
		return nil, fmt.Errorf("auction item deadline: %w", err)
	}
	if a.CreatedAt, err = parseTime(it.CreatedAt); err != nil {
		return nil, fmt.Errorf("auction item created_at: %w", err)
	}
	if a.UpdatedAt, err = parseTime(it.UpdatedAt); err != nil {
		return nil, fmt.Errorf("auction item updated_at: %w", err)
	}
	if it.DeliveryDeadline != "" {
		d, err := parseTime(it.DeliveryDeadline)
		if err != nil {
			return nil, fmt.Errorf("auction item delivery_deadline: %w", err)
		}
		a.DeliveryDeadline = &d
	}
	if it.WinningOfferID != "" {
		winner, err := uuid.Parse(it.WinningOfferID)
		if err != nil {
			return nil, fmt.Errorf("auction item winning_offer_id: %w", err)
		}
		a.WinningOfferID = &winner
	}
	return a, nil
}

func toOfferItem(o *offer.Offer) offerItem {
	it := offerItem{
		ID:           o.ID.String(),
		AuctionID:    o.AuctionID.String(),
		CarrierID:    o.CarrierID,
		CarrierName:  o.CarrierName,
		Price:        o.Price.String(),
		LeadTimeDays: o.LeadTimeDays,
		CreatedAt:    formatTime(o.CreatedAt),
	}
	if o.NotifyToken != nil {
		it.NotifyToken = *o.NotifyToken
	}
	return it
}

func fromOfferItem(it offerItem) (*offer.Offer, error) {
	id, err := uuid.Parse(it.ID)
	if err != nil {
		return nil, fmt.Errorf("offer item id: %w", err)
	}
	auctionID, err := uuid.Parse(it.AuctionID)
	if err != nil {
		return nil, fmt.Errorf("offer item auction_id: %w", err)
	}
	price, err := decimal.NewFromString(it.Price)
	if err != nil {
		return nil, fmt.Errorf("offer item price: %w", err)
	}
	createdAt, err := parseTime(it.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("offer item created_at: %w", err)
	}

	o := &offer.Offer{
		ID:           id,
		AuctionID:    auctionID,
		CarrierID:    it.CarrierID,
		CarrierName:  it.CarrierName,
		Price:        price,
		LeadTimeDays: it.LeadTimeDays,
		CreatedAt:    createdAt,
	}
	if it.NotifyToken != "" {
		token := it.NotifyToken
		o.NotifyToken = &token
	}
	return o, nil
}

func toParticipantItem(p *shared.Participant) participantItem {
	return participantItem{
		ID:          p.ID.String(),
		Name:        p.Name,
		Kind:        string(p.Kind),
		Role:        string(p.Role),
		NotifyToken: p.NotifyToken,
		Email:       p.Email,
		CreatedAt:   formatTime(p.CreatedAt),
	}
}

func fromParticipantItem(it participantItem) (*shared.Participant, error) {
	id, err := uuid.Parse(it.ID)
	if err != nil {
		return nil, fmt.Errorf("participant item id: %w", err)
	}
	createdAt, err := parseTime(it.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("participant item created_at: %w", err)
	}
	return &shared.Participant{
		ID:          id,
		Name:        it.Name,
		Kind:        shared.ParticipantKind(it.Kind),
		Role:        shared.Role(it.Role),
		NotifyToken: it.NotifyToken,
		Email:       it.Email,
		CreatedAt:   createdAt,
	}, nil
}
