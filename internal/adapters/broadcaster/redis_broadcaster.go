package broadcaster

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"freight-bid-service/internal/ports/outbound"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisBroadcaster implements the broadcaster interface using Redis pub/sub.
// Every instance of the service sees every publish, so a participant
// connected to any node receives its events.
type RedisBroadcaster struct {
	client         *redis.Client
	subscribers    map[string]chan outbound.Event // clientID -> local channel
	pubsubs        map[string]*redis.PubSub       // clientID -> pubsub instance
	clientsToTopic map[string]map[string]bool     // clientID -> topic -> subscribed
	mu             sync.RWMutex
	ctx            context.Context
	cancel         context.CancelFunc
	logger         zerolog.Logger
}
type RedisBroadcasterParams struct {
	RedisClient *redis.Client
	Logger      zerolog.Logger
}

func NewBroadcaster(params RedisBroadcasterParams) *RedisBroadcaster {
	ctx, cancel := context.WithCancel(context.Background())

	broadcaster := &RedisBroadcaster{
		client:         params.RedisClient,
		subscribers:    make(map[string]chan outbound.Event),
		pubsubs:        make(map[string]*redis.PubSub),
		clientsToTopic: make(map[string]map[string]bool),
		ctx:            ctx,
		cancel:         cancel,
		logger:         params.Logger.With().Str("component", "redis_broadcaster").Logger(),
	}

	return broadcaster
}

// Subscribe subscribes a client to a topic
func (r *RedisBroadcaster) Subscribe(ctx context.Context, topic string, clientID string, eventChan chan outbound.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.clientsToTopic[clientID] != nil && r.clientsToTopic[clientID][topic] {
		r.logger.Debug().Str("client_id", clientID).Str("topic", topic).Msg("Client already subscribed to topic")
		return nil
	}

	// Store the event channel if this is the first subscription
	if r.subscribers[clientID] == nil {
		r.subscribers[clientID] = eventChan
	}

	if r.clientsToTopic[clientID] == nil {
		r.clientsToTopic[clientID] = make(map[string]bool)
	}
	r.clientsToTopic[clientID][topic] = true

	// Get or create pubsub connection for this client
	pubsub, exists := r.pubsubs[clientID]
	if !exists {
		pubsub = r.client.Subscribe(ctx)
		r.pubsubs[clientID] = pubsub

		go r.listenForRedisMessages(pubsub, clientID, r.subscribers[clientID])
	}

	if err := pubsub.Subscribe(ctx, topic); err != nil {
		delete(r.clientsToTopic[clientID], topic)
		r.logger.Error().Err(err).Str("client_id", clientID).Str("topic", topic).Msg("Failed to subscribe to Redis channel")
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	r.logger.Info().Str("client_id", clientID).Str("topic", topic).Msg("Client subscribed to topic via Redis")
	return nil
}

// Unsubscribe unsubscribes a client from a topic. Dropping the last topic
// releases the client's pubsub connection but leaves its channel open; the
// owner closes it.
func (r *RedisBroadcaster) Unsubscribe(ctx context.Context, topic string, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clientTopics, exists := r.clientsToTopic[clientID]
	if !exists {
		return nil
	}
	delete(clientTopics, topic)

	if len(clientTopics) == 0 {
		delete(r.clientsToTopic, clientID)
		delete(r.subscribers, clientID)

		if pubsub, exists := r.pubsubs[clientID]; exists {
			if err := pubsub.Close(); err != nil {
				r.logger.Error().Err(err).Str("client_id", clientID).Msg("Error closing Redis pubsub for client")
			}
			delete(r.pubsubs, clientID)
		}
	} else if pubsub, exists := r.pubsubs[clientID]; exists {
		if err := pubsub.Unsubscribe(ctx, topic); err != nil {
			r.logger.Error().Err(err).Str("client_id", clientID).Str("topic", topic).Msg("Error unsubscribing from Redis channel")
		}
	}

	r.logger.Info().Str("client_id", clientID).Str("topic", topic).Msg("Client unsubscribed from topic")
	return nil
}

// Publish publishes an event to all subscribers of a topic via Redis
func (r *RedisBroadcaster) Publish(ctx context.Context, topic string, event outbound.Event) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	result := r.client.Publish(ctx, topic, eventJSON)
	if err := result.Err(); err != nil {
		r.logger.Error().Err(err).Str("topic", topic).Msg("Failed to publish to Redis")
		return fmt.Errorf("failed to publish to Redis: %w", err)
	}

	r.logger.Info().
		Str("event_type", string(event.Type)).
		Str("topic", topic).
		Str("auction_id", event.AuctionID.String()).
		Int64("subscriber_count", result.Val()).
		Msg("Published event")

	return nil
}

// listenForRedisMessages listens for Redis messages and forwards them to the local channel
func (r *RedisBroadcaster) listenForRedisMessages(pubsub *redis.PubSub, clientID string, localChan chan outbound.Event) {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error().Interface("panic", err).Str("client_id", clientID).Msg("Redis message listener panic for client")
		}
	}()

	ch := pubsub.Channel()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				r.logger.Debug().Str("client_id", clientID).Msg("Redis channel closed for client")
				return
			}

			event, err := decodeEvent(msg.Payload)
			if err != nil {
				r.logger.Error().Err(err).Str("client_id", clientID).Msg("Failed to unmarshal Redis message for client")
				continue
			}

			select {
			case localChan <- event:
			default:
				r.logger.Warn().Str("client_id", clientID).Msg("Local channel full for client, dropping event")
			}

		case <-r.ctx.Done():
			return
		}
	}
}

func decodeEvent(payload string) (outbound.Event, error) {
	var event outbound.Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return outbound.Event{}, err
	}
	return event, nil
}

func (r *RedisBroadcaster) Close() error {
	r.cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	for clientID, pubsub := range r.pubsubs {
		if err := pubsub.Close(); err != nil {
			r.logger.Error().Err(err).Str("client_id", clientID).Msg("Error closing Redis pubsub for client")
		}
		delete(r.pubsubs, clientID)
	}
	r.subscribers = make(map[string]chan outbound.Event)
	r.clientsToTopic = make(map[string]map[string]bool)

	return nil
}

func (r *RedisBroadcaster) IsSubscribed(ctx context.Context, topic string, clientID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.clientsToTopic[clientID][topic]
}
