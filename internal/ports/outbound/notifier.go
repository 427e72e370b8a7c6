package outbound

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event being delivered
type EventType string

const (
	EventTypeOfferPlaced      EventType = "offer.placed"
	EventTypeOutbid           EventType = "outbid"
	EventTypeWinnerSelected   EventType = "winner_selected"
	EventTypeWinnerApproved   EventType = "winner_approved"
	EventTypeAuctionClosed    EventType = "auction.closed"
	EventTypeAuctionFinalized EventType = "auction.finalized"
	EventTypeAuctionUpdated   EventType = "auction.updated"
)

// StaffTopic reaches every connected reviewer
const StaffTopic = "staff"

// AuctionTopic is the channel live views of an auction listen on
func AuctionTopic(auctionID uuid.UUID) string {
	return fmt.Sprintf("auction:%s", auctionID.String())
}

// ParticipantTopic is the channel a single participant listens on
func ParticipantTopic(token string) string {
	return fmt.Sprintf("participant:%s", token)
}

// Event represents a delivered event
type Event struct {
	Type      EventType              `json:"type"`
	AuctionID uuid.UUID              `json:"auction_id"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
}

// Notification asks the dispatcher to deliver an event. RecipientToken, when
// set, directs it to one participant and takes precedence over Topic.
type Notification struct {
	Kind           EventType
	Topic          string
	RecipientToken string
	AuctionID      uuid.UUID
	Data           map[string]interface{}
}

// Destination returns the channel the notification is delivered on
func (n Notification) Destination() string {
	if n.RecipientToken != "" {
		return ParticipantTopic(n.RecipientToken)
	}
	if n.Topic != "" {
		return n.Topic
	}
	return AuctionTopic(n.AuctionID)
}

// Event converts the notification into its wire event
func (n Notification) Event(at time.Time) Event {
	return Event{
		Type:      n.Kind,
		AuctionID: n.AuctionID,
		Data:      n.Data,
		Timestamp: at.Unix(),
	}
}

// Notifier delivers notifications. Callers treat failures as non-fatal.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Broadcaster defines the interface for live event fan-out by topic
type Broadcaster interface {
	// Subscribe subscribes a client to a topic
	// When a client subscribes to multiple topics, all events are delivered to the same channel
	Subscribe(ctx context.Context, topic string, clientID string, eventChan chan Event) error

	// Unsubscribe unsubscribes a client from a topic
	Unsubscribe(ctx context.Context, topic string, clientID string) error

	// Publish publishes an event to all subscribers of a topic
	Publish(ctx context.Context, topic string, event Event) error

	// IsSubscribed checks if a client is subscribed to a topic
	IsSubscribed(ctx context.Context, topic string, clientID string) bool
}

// DeadlineScheduler closes auctions once their deadline passes
type DeadlineScheduler interface {
	Schedule(ctx context.Context, auctionID uuid.UUID, deadline time.Time) error
	Cancel(ctx context.Context, auctionID uuid.UUID) error
}
