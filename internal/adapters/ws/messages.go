package ws

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"freight-bid-service/internal/domain/shared"
	"freight-bid-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MessageType string

const (
	// Client to Server message types
	MessageTypeSubscribe   MessageType = "subscribe"
	MessageTypeUnsubscribe MessageType = "unsubscribe"
	MessageTypeSubmitOffer MessageType = "submit_offer"
	MessageTypeGetRanking  MessageType = "get_ranking"
	MessageTypePing        MessageType = "ping"

	// Server to Client message types
	MessageTypeOfferPlaced   MessageType = "offer_placed"
	MessageTypeOutbid        MessageType = "outbid"
	MessageTypeAuctionUpdate MessageType = "auction_update"
	MessageTypeError         MessageType = "error"
	MessageTypePong          MessageType = "pong"
)

type ClientMessage struct {
	Type      MessageType            `json:"type"`
	AuctionID *uuid.UUID             `json:"auction_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// ServerMessage represents a message sent from server to client
type ServerMessage struct {
	Type      MessageType            `json:"type"`
	AuctionID *uuid.UUID             `json:"auction_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Error     *string                `json:"error,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

func NewServerMessage(msgType MessageType) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Data:      make(map[string]interface{}),
		Timestamp: time.Now().Unix(),
	}
}

func NewErrorMessage(err string, auctionID *uuid.UUID) *ServerMessage {
	return &ServerMessage{
		Type:      MessageTypeError,
		AuctionID: auctionID,
		Error:     &err,
		Timestamp: time.Now().Unix(),
	}
}

// NewEventMessage converts a broadcast event into the push a client sees.
// Events without a dedicated push type arrive as auction_update with the
// original event name under data.event.
func NewEventMessage(event outbound.Event) *ServerMessage {
	msg := &ServerMessage{
		AuctionID: &event.AuctionID,
		Data:      event.Data,
		Timestamp: event.Timestamp,
	}

	switch event.Type {
	case outbound.EventTypeOfferPlaced:
		msg.Type = MessageTypeOfferPlaced
	case outbound.EventTypeOutbid:
		msg.Type = MessageTypeOutbid
	default:
		msg.Type = MessageTypeAuctionUpdate
		data := make(map[string]interface{}, len(event.Data)+1)
		for k, v := range event.Data {
			data[k] = v
		}
		data["event"] = string(event.Type)
		msg.Data = data
	}
	return msg
}

func (m *ClientMessage) validateAuctionID() error {
	if m.AuctionID == nil || *m.AuctionID == uuid.Nil {
		return shared.ErrAuctionIDRequired
	}
	return nil
}

// ParseClientMessage parses a JSON message from client
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse client message: %w", err)
	}

	if msg.Type == "" {
		return nil, shared.ErrMessageTypeRequired
	}

	return &msg, nil
}

// Validate validates a client message
func (m *ClientMessage) Validate() error {
	switch m.Type {
	case MessageTypeSubscribe, MessageTypeUnsubscribe, MessageTypeGetRanking:
		return m.validateAuctionID()
	case MessageTypeSubmitOffer:
		if err := m.validateAuctionID(); err != nil {
			return err
		}
		_, _, err := m.Offer()
		return err
	case MessageTypePing:
	default:
		return shared.ErrUnknownMessageType
	}

	return nil
}

// Offer extracts price and lead time from a submit_offer message. Price may
// be a JSON number or a decimal string.
func (m *ClientMessage) Offer() (decimal.Decimal, int, error) {
	var price decimal.Decimal
	switch v := m.Data["price"].(type) {
	case float64:
		price = decimal.NewFromFloat(v)
	case string:
		p, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, 0, shared.ErrInvalidAmount
		}
		price = p
	default:
		return decimal.Zero, 0, shared.ErrInvalidAmount
	}
	if !price.IsPositive() {
		return decimal.Zero, 0, shared.ErrInvalidAmount
	}

	days, ok := m.Data["lead_time_days"].(float64)
	if !ok || days < 1 || days != math.Trunc(days) {
		return decimal.Zero, 0, shared.ErrInvalidLeadTimeData
	}

	return price, int(days), nil
}
