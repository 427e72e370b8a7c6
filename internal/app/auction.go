package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"freight-bid-service/internal/domain/auction"
	"freight-bid-service/internal/domain/bidcode"
	"freight-bid-service/internal/domain/offer"
	"freight-bid-service/internal/domain/scoring"
	"freight-bid-service/internal/domain/shared"
	"freight-bid-service/internal/ports/inbound"
	"freight-bid-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuctionService implements the auction use cases and the deadline close
// entry point used by the scheduler
type AuctionService struct {
	auctionRepo    outbound.AuctionRepository
	offerRepo      outbound.OfferRepository
	codes          *bidcode.Generator
	scheduler      outbound.DeadlineScheduler
	notifier       outbound.Notifier
	defaultWeights scoring.Weights
	clock          func() time.Time
	location       *time.Location
	logger         zerolog.Logger
}

type AuctionServiceParams struct {
	AuctionRepo outbound.AuctionRepository
	OfferRepo   outbound.OfferRepository
	Codes       *bidcode.Generator
	Scheduler   outbound.DeadlineScheduler
	Notifier    outbound.Notifier
	// DefaultWeights applies when a request carries no price weight
	DefaultWeights scoring.Weights
	Clock          func() time.Time
	// AuditLocation is the time zone audit trail timestamps are written in
	AuditLocation *time.Location
	Logger        zerolog.Logger
}

// NewAuctionService creates a new auction service
func NewAuctionService(params AuctionServiceParams) *AuctionService {
	service := &AuctionService{
		auctionRepo:    params.AuctionRepo,
		offerRepo:      params.OfferRepo,
		codes:          params.Codes,
		scheduler:      params.Scheduler,
		notifier:       params.Notifier,
		defaultWeights: params.DefaultWeights,
		clock:          params.Clock,
		location:       params.AuditLocation,
		logger:         params.Logger.With().Str("component", "auction_service").Logger(),
	}
	if service.codes == nil {
		service.codes = bidcode.NewGenerator()
	}
	if service.clock == nil {
		service.clock = time.Now
	}
	if service.location == nil {
		service.location = time.UTC
	}
	if service.defaultWeights.Validate() != nil {
		service.defaultWeights = scoring.DefaultWeights
	}
	return service
}

// SetScheduler sets the deadline scheduler. The scheduler needs the service
// to close auctions, so main wires them in two steps.
func (service *AuctionService) SetScheduler(scheduler outbound.DeadlineScheduler) {
	service.scheduler = scheduler
}

func (service *AuctionService) now() time.Time {
	return service.clock().In(service.location)
}

// CreateAuction creates a new auction
func (service *AuctionService) CreateAuction(ctx context.Context, actor shared.Participant, req inbound.CreateAuctionRequest) (*auction.Auction, error) {
	service.logger.Info().
		Str("actor_id", actor.ID.String()).
		Str("title", req.Title).
		Time("deadline", req.Deadline).
		Msg("Attempting to create auction")

	if !actor.IsStaff() {
		return nil, shared.ErrStaffRequired
	}

	now := service.now()
	if err := service.validateCreate(&req, now); err != nil {
		service.logger.Warn().Err(err).Str("title", req.Title).Msg("Invalid auction request")
		return nil, err
	}

	weights := service.defaultWeights
	if req.PriceWeight != nil {
		w, err := scoring.NewWeights(*req.PriceWeight)
		if err != nil {
			service.logger.Warn().Int("price_weight", *req.PriceWeight).Msg("Invalid scoring weights")
			return nil, err
		}
		weights = w
	}

	code, err := service.codes.Resolve(ctx, service.auctionRepo.CodeExists, req.PreferredCode, req.Suffix)
	if err != nil {
		service.logger.Error().Err(err).Msg("Failed to resolve auction code")
		return nil, err
	}

	newAuction := &auction.Auction{
		ID:               uuid.New(),
		Code:             code,
		Title:            req.Title,
		Description:      strings.TrimSpace(req.Description),
		VehiclePlate:     strings.ToUpper(strings.TrimSpace(req.VehiclePlate)),
		VehicleCategory:  req.VehicleCategory,
		VehicleQuantity:  req.VehicleQuantity,
		TransportType:    req.TransportType,
		HasKey:           req.HasKey,
		Operational:      req.Operational,
		Origin:           req.Origin,
		PickupAddress:    strings.TrimSpace(req.PickupAddress),
		Destination:      req.Destination,
		DeliveryAddress:  strings.TrimSpace(req.DeliveryAddress),
		Deadline:         req.Deadline,
		DeliveryDeadline: req.DeliveryDeadline,
		Status:           auction.StatusOpen,
		PriceWeight:      weights.Price,
		LeadTimeWeight:   weights.LeadTime,
		CreationLog:      shared.AuditEntry(actor.Name, now),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := service.auctionRepo.Create(ctx, newAuction); err != nil {
		service.logger.Error().Err(err).Str("auction_id", newAuction.ID.String()).Msg("Failed to save auction to database")
		return nil, err
	}

	service.logger.Info().
		Str("auction_id", newAuction.ID.String()).
		Str("code", newAuction.Code).
		Msg("Auction created successfully")

	if service.scheduler != nil {
		if err := service.scheduler.Schedule(ctx, newAuction.ID, newAuction.Deadline); err != nil {
			// the auction stays valid; the startup resync picks it up again
			service.logger.Error().Err(err).Str("auction_id", newAuction.ID.String()).Msg("Failed to schedule auction deadline")
		}
	}

	return newAuction, nil
}

func (service *AuctionService) validateCreate(req *inbound.CreateAuctionRequest, now time.Time) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Origin = strings.TrimSpace(req.Origin)
	req.Destination = strings.TrimSpace(req.Destination)

	if req.Title == "" {
		return shared.ErrTitleRequired
	}
	if req.Origin == "" || req.Destination == "" {
		return shared.ErrRouteRequired
	}
	if req.VehicleQuantity == 0 {
		req.VehicleQuantity = 1
	}
	if req.VehicleQuantity < 1 {
		return shared.ErrInvalidQuantity
	}
	if !req.Deadline.After(now) {
		return shared.ErrInvalidDeadline
	}
	return nil
}

// GetAuction retrieves an auction by ID
func (service *AuctionService) GetAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error) {
	service.logger.Debug().Str("auction_id", auctionID.String()).Msg("Retrieving auction")

	a, err := service.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		service.logger.Debug().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to retrieve auction")
		return nil, err
	}
	return a, nil
}

// GetAuctionByCode retrieves an auction by its code
func (service *AuctionService) GetAuctionByCode(ctx context.Context, code string) (*auction.Auction, error) {
	return service.auctionRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// ListAuctions retrieves a list of auctions
func (service *AuctionService) ListAuctions(ctx context.Context, req inbound.ListAuctionsRequest) ([]*auction.Auction, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, shared.ErrValidation
	}

	return service.auctionRepo.List(ctx, req.Status, req.Page, req.PageSize)
}

// GetRanking scores the stored offers with the auction's own weights
func (service *AuctionService) GetRanking(ctx context.Context, auctionID uuid.UUID) (*scoring.Ranking, error) {
	a, err := service.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	offers, err := service.offerRepo.ListByAuction(ctx, auctionID)
	if err != nil {
		service.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to list offers for ranking")
		return nil, err
	}

	return scoring.Summarize(offers, weightsOf(a))
}

// CloseAuction ends the offer window before the deadline
func (service *AuctionService) CloseAuction(ctx context.Context, actor shared.Participant, auctionID uuid.UUID) (*auction.Auction, error) {
	closed, err := service.transition(ctx, auctionID, auction.EventClose, func(a *auction.Auction, now time.Time) error {
		return a.Close(actor, now)
	})
	if err != nil {
		return nil, err
	}

	if service.scheduler != nil {
		if err := service.scheduler.Cancel(ctx, auctionID); err != nil {
			service.logger.Warn().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to cancel deadline schedule")
		}
	}
	service.afterClose(ctx, closed)
	return closed, nil
}

// CloseExpired closes an auction whose deadline passed. It reports false
// when there was nothing to do: the auction already left OPEN or its
// deadline was extended in the meantime.
func (service *AuctionService) CloseExpired(ctx context.Context, auctionID uuid.UUID) (bool, error) {
	a, err := service.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return false, err
	}
	if !a.IsOpen() {
		service.logger.Debug().
			Str("auction_id", auctionID.String()).
			Str("status", string(a.Status)).
			Msg("Auction already left OPEN, nothing to close")
		return false, nil
	}

	now := service.now()
	if !a.DeadlinePassed(now) {
		if service.scheduler != nil {
			if err := service.scheduler.Schedule(ctx, a.ID, a.Deadline); err != nil {
				service.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to reschedule auction deadline")
			}
		}
		return false, nil
	}

	closed, err := service.transition(ctx, auctionID, auction.EventClose, func(a *auction.Auction, now time.Time) error {
		return a.Close(shared.SystemActor, now)
	})
	if err != nil {
		if errors.Is(err, shared.ErrIllegalTransition) {
			// a staff member closed it first
			return false, nil
		}
		return false, err
	}

	service.afterClose(ctx, closed)
	return true, nil
}

// ListOpen returns every auction still accepting offers
func (service *AuctionService) ListOpen(ctx context.Context) ([]*auction.Auction, error) {
	status := auction.StatusOpen
	var open []*auction.Auction
	for page := 1; ; page++ {
		batch, err := service.auctionRepo.List(ctx, &status, page, 100)
		if err != nil {
			return nil, err
		}
		open = append(open, batch...)
		if len(batch) < 100 {
			return open, nil
		}
	}
}

func (service *AuctionService) afterClose(ctx context.Context, a *auction.Auction) {
	service.notify(ctx, outbound.Notification{
		Kind:      outbound.EventTypeAuctionClosed,
		Topic:     outbound.AuctionTopic(a.ID),
		AuctionID: a.ID,
		Data:      auctionData(a),
	})
	service.notify(ctx, outbound.Notification{
		Kind:      outbound.EventTypeAuctionClosed,
		Topic:     outbound.StaffTopic,
		AuctionID: a.ID,
		Data:      auctionData(a),
	})
}

// SelectWinner designates an offer as the winner and sends it for approval
func (service *AuctionService) SelectWinner(ctx context.Context, actor shared.Participant, auctionID, offerID uuid.UUID, note string) (*auction.Auction, error) {
	var winner *offer.Offer
	selected, err := service.transition(ctx, auctionID, auction.EventSelectWinner, func(a *auction.Auction, now time.Time) error {
		o, err := service.offerRepo.GetByID(ctx, offerID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		winner = o
		return a.SelectWinner(actor, o, strings.TrimSpace(note), now)
	})
	if err != nil {
		return nil, err
	}

	data := auctionData(selected)
	data["offer_id"] = winner.ID.String()
	data["carrier_name"] = winner.CarrierName
	data["price"] = winner.Price.String()
	data["selected_by"] = actor.Name
	service.notify(ctx, outbound.Notification{
		Kind:      outbound.EventTypeWinnerSelected,
		Topic:     outbound.StaffTopic,
		AuctionID: selected.ID,
		Data:      data,
	})
	return selected, nil
}

// ApproveWinner finalizes the auction with the selected winner
func (service *AuctionService) ApproveWinner(ctx context.Context, actor shared.Participant, auctionID uuid.UUID) (*auction.Auction, error) {
	approved, err := service.transition(ctx, auctionID, auction.EventApprove, func(a *auction.Auction, now time.Time) error {
		return a.Approve(actor, now)
	})
	if err != nil {
		return nil, err
	}

	service.notify(ctx, outbound.Notification{
		Kind:      outbound.EventTypeAuctionFinalized,
		Topic:     outbound.AuctionTopic(approved.ID),
		AuctionID: approved.ID,
		Data:      auctionData(approved),
	})

	if !approved.HasWinner() {
		return approved, nil
	}
	winner, err := service.offerRepo.GetByID(ctx, *approved.WinningOfferID)
	if err != nil {
		service.logger.Error().Err(err).Str("auction_id", approved.ID.String()).Msg("Failed to load winning offer for notification")
		return approved, nil
	}
	if !winner.HasNotifyToken() {
		service.logger.Info().Str("offer_id", winner.ID.String()).Msg("Winning offer has no notify token, skipping winner notification")
		return approved, nil
	}

	data := auctionData(approved)
	data["offer_id"] = winner.ID.String()
	data["price"] = winner.Price.String()
	data["lead_time_days"] = winner.LeadTimeDays
	service.notify(ctx, outbound.Notification{
		Kind:           outbound.EventTypeWinnerApproved,
		RecipientToken: *winner.NotifyToken,
		AuctionID:      approved.ID,
		Data:           data,
	})
	return approved, nil
}

// RejectWinner sends the auction back to review without a winner
func (service *AuctionService) RejectWinner(ctx context.Context, actor shared.Participant, auctionID uuid.UUID, reason string) (*auction.Auction, error) {
	rejected, err := service.transition(ctx, auctionID, auction.EventReject, func(a *auction.Auction, now time.Time) error {
		return a.Reject(actor, now)
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info().
		Str("auction_id", auctionID.String()).
		Str("rejected_by", actor.Name).
		Str("reason", reason).
		Msg("Winner rejected")

	data := auctionData(rejected)
	data["reason"] = strings.TrimSpace(reason)
	service.notify(ctx, outbound.Notification{
		Kind:      outbound.EventTypeAuctionUpdated,
		Topic:     outbound.StaffTopic,
		AuctionID: rejected.ID,
		Data:      data,
	})
	return rejected, nil
}

// FinalizeDeserted finalizes an auction with no winner
func (service *AuctionService) FinalizeDeserted(ctx context.Context, actor shared.Participant, auctionID uuid.UUID, override bool) (*auction.Auction, error) {
	finalized, err := service.transition(ctx, auctionID, auction.EventFinalizeDeserted, func(a *auction.Auction, now time.Time) error {
		count, err := service.offerRepo.CountByAuction(ctx, a.ID)
		if err != nil {
			return err
		}
		return a.FinalizeDeserted(actor, count, override, now)
	})
	if err != nil {
		return nil, err
	}

	service.notify(ctx, outbound.Notification{
		Kind:      outbound.EventTypeAuctionFinalized,
		Topic:     outbound.AuctionTopic(finalized.ID),
		AuctionID: finalized.ID,
		Data:      auctionData(finalized),
	})
	return finalized, nil
}

// ExtendDeadline moves the deadline of an open auction forward
func (service *AuctionService) ExtendDeadline(ctx context.Context, actor shared.Participant, auctionID uuid.UUID, deadline time.Time) (*auction.Auction, error) {
	extended, err := service.transition(ctx, auctionID, auction.EventExtendDeadline, func(a *auction.Auction, now time.Time) error {
		return a.ExtendDeadline(actor, deadline, now)
	})
	if err != nil {
		return nil, err
	}

	if service.scheduler != nil {
		if err := service.scheduler.Schedule(ctx, extended.ID, extended.Deadline); err != nil {
			service.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to reschedule auction deadline")
		}
	}

	service.notify(ctx, outbound.Notification{
		Kind:      outbound.EventTypeAuctionUpdated,
		Topic:     outbound.AuctionTopic(extended.ID),
		AuctionID: extended.ID,
		Data:      auctionData(extended),
	})
	return extended, nil
}

// transition loads the auction, applies one lifecycle event and persists it
// only if nobody changed the status in between. A lost race is reported as
// an illegal transition from the state the winner left behind.
func (service *AuctionService) transition(ctx context.Context, auctionID uuid.UUID, event auction.Event, apply func(a *auction.Auction, now time.Time) error) (*auction.Auction, error) {
	logger := service.logger.With().Str("auction_id", auctionID.String()).Str("event", string(event)).Logger()

	a, err := service.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	expected := a.Status
	if err := apply(a, service.now()); err != nil {
		logger.Warn().Err(err).Str("status", string(expected)).Msg("Transition refused")
		return nil, err
	}

	if err := service.auctionRepo.UpdateIfStatus(ctx, a, expected); err != nil {
		if !errors.Is(err, shared.ErrStatusConflict) {
			logger.Error().Err(err).Msg("Failed to persist transition")
			return nil, err
		}

		current, getErr := service.auctionRepo.GetByID(ctx, auctionID)
		if getErr != nil {
			return nil, getErr
		}
		logger.Warn().
			Str("expected_status", string(expected)).
			Str("current_status", string(current.Status)).
			Msg("Concurrent transition won the race")
		return nil, auction.NewIllegalTransition(event, current.Status)
	}

	logger.Info().
		Str("from", string(expected)).
		Str("to", string(a.Status)).
		Msg("Auction transitioned")
	return a, nil
}

func (service *AuctionService) notify(ctx context.Context, n outbound.Notification) {
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

func auctionData(a *auction.Auction) map[string]interface{} {
	data := map[string]interface{}{
		"auction_id": a.ID.String(),
		"code":       a.Code,
		"title":      a.Title,
		"status":     string(a.Status),
		"deadline":   a.Deadline.Unix(),
	}
	if a.WinningOfferID != nil {
		data["winning_offer_id"] = a.WinningOfferID.String()
	}
	return data
}

// weightsOf falls back to the default split for records stored without
// valid weights
func weightsOf(a *auction.Auction) scoring.Weights {
	w := scoring.Weights{Price: a.PriceWeight, LeadTime: a.LeadTimeWeight}
	if w.Validate() != nil {
		return scoring.DefaultWeights
	}
	return w
}
