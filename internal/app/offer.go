package app

import (
	"context"
	"errors"
	"time"

	"freight-bid-service/internal/domain/offer"
	"freight-bid-service/internal/domain/scoring"
	"freight-bid-service/internal/domain/shared"
	"freight-bid-service/internal/ports/inbound"
	"freight-bid-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OfferService implements offer intake and outbid detection
type OfferService struct {
	offerRepo   outbound.OfferRepository
	auctionRepo outbound.AuctionRepository
	notifier    outbound.Notifier
	clock       func() time.Time
	logger      zerolog.Logger
}

type OfferServiceParams struct {
	OfferRepo   outbound.OfferRepository
	AuctionRepo outbound.AuctionRepository
	Notifier    outbound.Notifier
	Clock       func() time.Time
	Logger      zerolog.Logger
}

// NewOfferService creates a new offer service
func NewOfferService(params OfferServiceParams) *OfferService {
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &OfferService{
		offerRepo:   params.OfferRepo,
		auctionRepo: params.AuctionRepo,
		notifier:    params.Notifier,
		clock:       clock,
		logger:      params.Logger.With().Str("component", "offer_service").Logger(),
	}
}

// SubmitOffer stores a carrier's offer. When it displaces another carrier
// as the cheapest offer, that carrier is told it was outbid.
//
// The prior leader is read before the insert without a lock, so two
// simultaneous undercuts may each see a stale leader. At most one alert per
// displacement is sent; a missed alert is acceptable.
func (service *OfferService) SubmitOffer(ctx context.Context, carrier shared.Participant, req inbound.SubmitOfferRequest) (*inbound.SubmitResult, error) {
	service.logger.Info().
		Str("auction_id", req.AuctionID.String()).
		Str("carrier_id", carrier.ID.String()).
		Str("price", req.Price.String()).
		Int("lead_time_days", req.LeadTimeDays).
		Msg("Attempting to submit offer")

	if !carrier.IsCarrier() {
		return nil, shared.ErrCarrierRequired
	}
	if req.AuctionID == uuid.Nil {
		return nil, shared.ErrAuctionReferenceRequired
	}

	now := service.clock()
	newOffer, err := offer.New(req.AuctionID, carrier, req.Price, req.LeadTimeDays, now)
	if err != nil {
		service.logger.Warn().Err(err).Str("auction_id", req.AuctionID.String()).Msg("Invalid offer")
		return nil, err
	}

	a, err := service.auctionRepo.GetByID(ctx, req.AuctionID)
	if err != nil {
		service.logger.Warn().Err(err).Str("auction_id", req.AuctionID.String()).Msg("Auction not found")
		return nil, err
	}
	if !a.IsOpen() || a.DeadlinePassed(now) {
		service.logger.Warn().
			Str("auction_id", a.ID.String()).
			Str("status", string(a.Status)).
			Time("deadline", a.Deadline).
			Msg("Auction not accepting offers")
		return nil, shared.ErrAuctionNotAcceptingOffers
	}

	prior, err := service.offerRepo.GetLeader(ctx, a.ID)
	if err != nil && !errors.Is(err, shared.ErrNoOffers) {
		service.logger.Error().Err(err).Str("auction_id", a.ID.String()).Msg("Failed to get current leader")
		return nil, err
	}

	if err := service.offerRepo.Create(ctx, newOffer); err != nil {
		service.logger.Error().Err(err).Str("offer_id", newOffer.ID.String()).Msg("Failed to save offer")
		return nil, err
	}

	service.logger.Info().
		Str("offer_id", newOffer.ID.String()).
		Str("auction_id", a.ID.String()).
		Msg("Offer stored")

	if displaced(prior, newOffer) {
		service.notify(ctx, outbound.Notification{
			Kind:           outbound.EventTypeOutbid,
			RecipientToken: *prior.NotifyToken,
			AuctionID:      a.ID,
			Data: map[string]interface{}{
				"auction_id":     a.ID.String(),
				"code":           a.Code,
				"title":          a.Title,
				"new_price":      newOffer.Price.String(),
				"your_price":     prior.Price.String(),
				"your_offer_id":  prior.ID.String(),
				"lead_time_days": newOffer.LeadTimeDays,
			},
		})
	}

	service.notify(ctx, outbound.Notification{
		Kind:      outbound.EventTypeOfferPlaced,
		Topic:     outbound.AuctionTopic(a.ID),
		AuctionID: a.ID,
		Data: map[string]interface{}{
			"offer_id":       newOffer.ID.String(),
			"carrier_name":   newOffer.CarrierName,
			"price":          newOffer.Price.String(),
			"lead_time_days": newOffer.LeadTimeDays,
			"timestamp":      newOffer.CreatedAt.Unix(),
		},
	})

	offers, err := service.offerRepo.ListByAuction(ctx, a.ID)
	if err != nil {
		service.logger.Error().Err(err).Str("auction_id", a.ID.String()).Msg("Failed to list offers for ranking")
		return nil, err
	}
	ranking, err := scoring.Summarize(offers, weightsOf(a))
	if err != nil {
		return nil, err
	}

	return &inbound.SubmitResult{
		Offer:   newOffer,
		Leader:  scoring.Leader(offers),
		Ranking: ranking,
	}, nil
}

// ListOffers retrieves the offers of an auction
func (service *OfferService) ListOffers(ctx context.Context, auctionID uuid.UUID) ([]*offer.Offer, error) {
	if _, err := service.auctionRepo.GetByID(ctx, auctionID); err != nil {
		return nil, err
	}
	return service.offerRepo.ListByAuction(ctx, auctionID)
}

// displaced reports whether the prior leader must be told it lost the lead
func displaced(prior, next *offer.Offer) bool {
	if prior == nil {
		return false
	}
	if prior.SameCarrier(next) {
		return false
	}
	if !next.Undercuts(prior) {
		return false
	}
	return prior.HasNotifyToken()
}

func (service *OfferService) notify(ctx context.Context, n outbound.Notification) {
	if service.notifier == nil {
		return
	}
	if err := service.notifier.Notify(ctx, n); err != nil {
		service.logger.Error().Err(err).
			Str("kind", string(n.Kind)).
			Str("auction_id", n.AuctionID.String()).
			Msg("Failed to dispatch notification")
	}
}
