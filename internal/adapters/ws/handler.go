package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"freight-bid-service/internal/domain/shared"
	"freight-bid-service/internal/ports/inbound"
	"freight-bid-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// ParticipantHeader names the acting participant on the upgrade request
// when the participant_id query parameter is absent
const ParticipantHeader = "X-Participant-ID"

// WsHandler manages WebSocket connections and message routing
type WsHandler struct {
	clients        map[string]*WsClient // clientID -> Client
	clientsMu      sync.RWMutex
	upgrader       websocket.Upgrader
	auctionService inbound.AuctionService
	offerService   inbound.OfferService
	identity       inbound.IdentityService
	broadcaster    outbound.Broadcaster
	logger         zerolog.Logger
}
type WsHandlerParams struct {
	Upgrader       websocket.Upgrader
	AuctionService inbound.AuctionService
	OfferService   inbound.OfferService
	Identity       inbound.IdentityService
	Broadcaster    outbound.Broadcaster
	Logger         zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(params WsHandlerParams) *WsHandler {
	return &WsHandler{
		clients:        make(map[string]*WsClient),
		upgrader:       params.Upgrader,
		auctionService: params.AuctionService,
		offerService:   params.OfferService,
		identity:       params.Identity,
		broadcaster:    params.Broadcaster,
		logger:         params.Logger.With().Str("component", "ws_handler").Logger(),
	}
}

// HandleWebSocket resolves the participant and upgrades the connection.
// Carriers are subscribed to their own topic and staff to the staff topic
// right away; auction topics are joined with subscribe messages.
func (handler *WsHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	rawID := r.URL.Query().Get("participant_id")
	if rawID == "" {
		rawID = r.Header.Get(ParticipantHeader)
	}
	if rawID == "" {
		http.Error(w, "participant_id is required", http.StatusBadRequest)
		return
	}

	participantID, err := uuid.Parse(rawID)
	if err != nil {
		http.Error(w, "invalid participant_id format", http.StatusBadRequest)
		return
	}

	participant, err := handler.identity.Resolve(r.Context(), participantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.Error(w, "participant not found", http.StatusNotFound)
			return
		}
		handler.logger.Error().Err(err).Str("participant_id", rawID).Msg("Failed to resolve participant")
		http.Error(w, "failed to resolve participant", http.StatusInternalServerError)
		return
	}

	conn, err := handler.upgrader.Upgrade(w, r, nil)
	if err != nil {
		handler.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := NewClient(WsClientParams{
		Participant: *participant,
		Conn:        conn,
		Handler:     handler,
		Logger:      handler.logger,
	})

	handler.registerClient(client)

	for _, topic := range defaultTopics(participant) {
		if err := handler.subscribe(client, topic); err != nil {
			handler.logger.Error().Err(err).Str("client_id", client.id).Str("topic", topic).Msg("Failed to subscribe client to default topic")
		}
	}

	client.Start()
	go handler.listenForClientEvents(client)

	go func() {
		<-client.ctx.Done()
		handler.unregisterClient(client)
	}()

	handler.logger.Info().Str("client_id", client.id).Str("participant_id", participant.ID.String()).Msg("WebSocket client connected")
}

func defaultTopics(p *shared.Participant) []string {
	var topics []string
	if p.NotifyToken != "" {
		topics = append(topics, outbound.ParticipantTopic(p.NotifyToken))
	}
	if p.IsStaff() {
		topics = append(topics, outbound.StaffTopic)
	}
	return topics
}

func (handler *WsHandler) subscribe(client *WsClient, topic string) error {
	if err := handler.broadcaster.Subscribe(client.ctx, topic, client.id, client.events); err != nil {
		return err
	}
	client.addTopic(topic)
	return nil
}

func (handler *WsHandler) registerClient(client *WsClient) {
	handler.clientsMu.Lock()
	defer handler.clientsMu.Unlock()
	handler.clients[client.id] = client
	handler.logger.Debug().Str("client_id", client.id).Int("total_clients", len(handler.clients)).Msg("Client registered")
}

func (handler *WsHandler) unregisterClient(client *WsClient) {
	handler.clientsMu.Lock()
	delete(handler.clients, client.id)
	total := len(handler.clients)
	handler.clientsMu.Unlock()

	// client.ctx is already cancelled here
	ctx := context.WithoutCancel(client.ctx)
	for _, topic := range client.subscribedTopics() {
		if err := handler.broadcaster.Unsubscribe(ctx, topic, client.id); err != nil {
			handler.logger.Error().Err(err).Str("client_id", client.id).Str("topic", topic).Msg("Failed to unsubscribe disconnected client")
		}
	}

	client.Stop()

	handler.logger.Info().Str("client_id", client.id).Int("total_clients", total).Msg("WebSocket client disconnected")
}

// listenForClientEvents forwards broadcast events to the client
func (handler *WsHandler) listenForClientEvents(client *WsClient) {
	for {
		select {
		case event := <-client.events:
			if err := client.Send(NewEventMessage(event)); err != nil {
				handler.logger.Error().Err(err).Str("client_id", client.id).Msg("Failed to send event to WebSocket client")
			}
		case <-client.ctx.Done():
			return
		}
	}
}

func (handler *WsHandler) HandleClientMessage(client *WsClient, msg *ClientMessage) error {
	switch msg.Type {
	case MessageTypeSubscribe:
		return handler.handleSubscribe(client, msg)
	case MessageTypeUnsubscribe:
		return handler.handleUnsubscribe(client, msg)
	case MessageTypeSubmitOffer:
		return handler.handleSubmitOffer(client, msg)
	case MessageTypeGetRanking:
		return handler.handleGetRanking(client, msg)
	default:
		handler.logger.Warn().Str("client_id", client.id).Str("message_type", string(msg.Type)).Msg("Unknown message type from client")
		return shared.ErrUnknownMessageType
	}
}

// GetConnectedClients returns the number of connected clients
func (handler *WsHandler) GetConnectedClients() int {
	handler.clientsMu.RLock()
	defer handler.clientsMu.RUnlock()
	return len(handler.clients)
}

func (handler *WsHandler) handleSubscribe(client *WsClient, msg *ClientMessage) error {
	if _, err := handler.auctionService.GetAuction(client.ctx, *msg.AuctionID); err != nil {
		return client.Send(NewErrorMessage(err.Error(), msg.AuctionID))
	}

	if err := handler.subscribe(client, outbound.AuctionTopic(*msg.AuctionID)); err != nil {
		handler.logger.Error().Err(err).Str("client_id", client.id).Str("auction_id", msg.AuctionID.String()).Msg("Failed to subscribe to auction")
		return err
	}

	response := NewServerMessage(MessageTypeAuctionUpdate)
	response.AuctionID = msg.AuctionID
	response.Data["status"] = "subscribed"
	return client.Send(response)
}

func (handler *WsHandler) handleUnsubscribe(client *WsClient, msg *ClientMessage) error {
	topic := outbound.AuctionTopic(*msg.AuctionID)
	if err := handler.broadcaster.Unsubscribe(client.ctx, topic, client.id); err != nil {
		return err
	}
	client.removeTopic(topic)

	response := NewServerMessage(MessageTypeAuctionUpdate)
	response.AuctionID = msg.AuctionID
	response.Data["status"] = "unsubscribed"
	return client.Send(response)
}

func (handler *WsHandler) handleSubmitOffer(client *WsClient, msg *ClientMessage) error {
	price, leadTime, err := msg.Offer()
	if err != nil {
		return err
	}

	result, err := handler.offerService.SubmitOffer(client.ctx, client.participant, inbound.SubmitOfferRequest{
		AuctionID:    *msg.AuctionID,
		Price:        price,
		LeadTimeDays: leadTime,
	})
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), msg.AuctionID))
	}

	response := NewServerMessage(MessageTypeAuctionUpdate)
	response.AuctionID = msg.AuctionID
	response.Data["status"] = "offer_submitted"
	response.Data["offer"] = result.Offer
	response.Data["leader"] = result.Leader
	response.Data["ranking"] = result.Ranking

	handler.logger.Info().
		Str("offer_id", result.Offer.ID.String()).
		Str("auction_id", msg.AuctionID.String()).
		Str("carrier_id", client.participant.ID.String()).
		Msg("Offer submitted over WebSocket")
	return client.Send(response)
}

func (handler *WsHandler) handleGetRanking(client *WsClient, msg *ClientMessage) error {
	ranking, err := handler.auctionService.GetRanking(client.ctx, *msg.AuctionID)
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), msg.AuctionID))
	}

	response := NewServerMessage(MessageTypeAuctionUpdate)
	response.AuctionID = msg.AuctionID
	response.Data["ranking"] = ranking
	return client.Send(response)
}
