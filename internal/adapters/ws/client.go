package ws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"freight-bid-service/internal/config"
	"freight-bid-service/internal/domain/shared"
	"freight-bid-service/internal/ports/outbound"

	"github.com/alitto/pond"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

type WsClient struct {
	id          string
	participant shared.Participant
	conn        *websocket.Conn
	sendChan    chan *ServerMessage
	events      chan outbound.Event
	topics      map[string]bool
	ctx         context.Context
	cancel      context.CancelFunc
	handler     *WsHandler
	workerPool  *pond.WorkerPool
	stopped     bool
	mu          sync.Mutex
	logger      zerolog.Logger
}
type WsClientParams struct {
	Participant shared.Participant
	Conn        *websocket.Conn
	Handler     *WsHandler
	Logger      zerolog.Logger
}

// NewClient creates a new WebSocket client
func NewClient(params WsClientParams) *WsClient {
	ctx, cancel := context.WithCancel(context.Background())

	pool := pond.New(
		config.WSMaxWorkers,
		config.WSMaxCapacity,
		pond.Context(ctx),
		pond.Strategy(pond.Balanced()),
	)

	id := uuid.New().String()
	return &WsClient{
		id:          id,
		participant: params.Participant,
		conn:        params.Conn,
		sendChan:    make(chan *ServerMessage, 100),
		events:      make(chan outbound.Event, 100),
		topics:      make(map[string]bool),
		ctx:         ctx,
		cancel:      cancel,
		handler:     params.Handler,
		workerPool:  pool,
		logger: params.Logger.With().
			Str("client_id", id).
			Str("participant_id", params.Participant.ID.String()).
			Logger(),
	}
}

func (client *WsClient) Start() {
	go client.messageSender()
	go client.messageReceiver()
}

func (client *WsClient) Stop() {
	client.mu.Lock()
	if client.stopped {
		client.mu.Unlock()
		return
	}
	client.stopped = true
	client.mu.Unlock()

	client.cancel()
	client.conn.Close()
	client.workerPool.Stop()
}

// Send queues a message for the writer goroutine
func (client *WsClient) Send(msg *ServerMessage) error {
	client.mu.Lock()
	stopped := client.stopped
	client.mu.Unlock()
	if stopped {
		return fmt.Errorf("client is stopped")
	}

	select {
	case client.sendChan <- msg:
		return nil
	case <-client.ctx.Done():
		return fmt.Errorf("client is stopped")
	case <-time.After(100 * time.Millisecond):
		return fmt.Errorf("client send channel is full")
	}
}

func (client *WsClient) addTopic(topic string) {
	client.mu.Lock()
	defer client.mu.Unlock()
	client.topics[topic] = true
}

func (client *WsClient) removeTopic(topic string) {
	client.mu.Lock()
	defer client.mu.Unlock()
	delete(client.topics, topic)
}

func (client *WsClient) subscribedTopics() []string {
	client.mu.Lock()
	defer client.mu.Unlock()

	topics := make([]string, 0, len(client.topics))
	for topic := range client.topics {
		topics = append(topics, topic)
	}
	return topics
}

// messageSender is the only goroutine writing to the connection
func (client *WsClient) messageSender() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-client.sendChan:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteJSON(msg); err != nil {
				client.logger.Error().Err(err).Msg("Failed to send message to client")
				client.cancel()
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				client.cancel()
				return
			}
		case <-client.ctx.Done():
			return
		}
	}
}

func (client *WsClient) messageReceiver() {
	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				client.logger.Error().Err(err).Msg("WebSocket read error for client")
			} else {
				client.logger.Debug().Str("error", err.Error()).Msg("WebSocket connection closed for client")
			}
			// Cancel context to notify handler about disconnection
			client.cancel()
			return
		}

		submitted := client.workerPool.TrySubmit(func() {
			if err := client.handleMessage(message); err != nil {
				client.logger.Warn().Err(err).Msg("Failed to handle client message")
				client.Send(NewErrorMessage(err.Error(), nil))
			}
		})
		if !submitted {
			client.Send(NewErrorMessage("too many pending messages", nil))
		}
	}
}

func (client *WsClient) handleMessage(data []byte) error {
	msg, err := ParseClientMessage(data)
	if err != nil {
		return fmt.Errorf("invalid message format: %w", err)
	}

	if err := msg.Validate(); err != nil {
		return fmt.Errorf("message validation failed: %w", err)
	}

	if msg.Type == MessageTypePing {
		return client.Send(NewServerMessage(MessageTypePong))
	}

	return client.handler.HandleClientMessage(client, msg)
}
