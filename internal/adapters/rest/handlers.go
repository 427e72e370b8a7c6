package rest

import (
	"net/http"
	"strconv"
	"time"

	"freight-bid-service/internal/domain/auction"
	"freight-bid-service/internal/ports/inbound"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Handler serves the auction REST API
type Handler struct {
	auctions inbound.AuctionService
	offers   inbound.OfferService
	identity inbound.IdentityService
	logger   zerolog.Logger
}

type HandlerParams struct {
	AuctionService  inbound.AuctionService
	OfferService    inbound.OfferService
	IdentityService inbound.IdentityService
	Logger          zerolog.Logger
}

func NewHandler(params HandlerParams) *Handler {
	return &Handler{
		auctions: params.AuctionService,
		offers:   params.OfferService,
		identity: params.IdentityService,
		logger:   params.Logger.With().Str("component", "rest_handler").Logger(),
	}
}

type selectWinnerRequest struct {
	OfferID uuid.UUID `json:"offer_id" binding:"required"`
	Note    string    `json:"note"`
}

type rejectWinnerRequest struct {
	Reason string `json:"reason"`
}

type finalizeDesertedRequest struct {
	Override bool `json:"override"`
}

type extendDeadlineRequest struct {
	Deadline time.Time `json:"deadline" binding:"required"`
}

type submitOfferRequest struct {
	Price        decimal.Decimal `json:"price"`
	LeadTimeDays int             `json:"lead_time_days"`
}

func auctionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid auction id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) CreateAuction(c *gin.Context) {
	var req inbound.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid auction payload")
		return
	}

	a, err := h.auctions.CreateAuction(c.Request.Context(), actor(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListAuctions(c *gin.Context) {
	req := inbound.ListAuctionsRequest{}

	if raw := c.Query("status"); raw != "" {
		status := auction.Status(raw)
		req.Status = &status
	}
	for key, dst := range map[string]*int{"page": &req.Page, "page_size": &req.PageSize} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "invalid "+key)
			return
		}
		*dst = n
	}

	auctions, err := h.auctions.ListAuctions(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auctions": auctions, "count": len(auctions)})
}

func (h *Handler) GetAuction(c *gin.Context) {
	id, ok := auctionID(c)
	if !ok {
		return
	}

	a, err := h.auctions.GetAuction(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) GetAuctionByCode(c *gin.Context) {
	a, err := h.auctions.GetAuctionByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) GetRanking(c *gin.Context) {
	id, ok := auctionID(c)
	if !ok {
		return
	}

	ranking, err := h.auctions.GetRanking(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ranking)
}

func (h *Handler) ListOffers(c *gin.Context) {
	id, ok := auctionID(c)
	if !ok {
		return
	}

	offers, err := h.offers.ListOffers(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers, "count": len(offers)})
}

func (h *Handler) SubmitOffer(c *gin.Context) {
	id, ok := auctionID(c)
	if !ok {
		return
	}

	var body submitOfferRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid offer payload")
		return
	}

	result, err := h.offers.SubmitOffer(c.Request.Context(), actor(c), inbound.SubmitOfferRequest{
		AuctionID:    id,
		Price:        body.Price,
		LeadTimeDays: body.LeadTimeDays,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) CloseAuction(c *gin.Context) {
	id, ok := auctionID(c)
	if !ok {
		return
	}
	h.respond(c)(h.auctions.CloseAuction(c.Request.Context(), actor(c), id))
}

func (h *Handler) SelectWinner(c *gin.Context) {
	id, ok := auctionID(c)
	if !ok {
		return
	}

	var body selectWinnerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "offer_id is required")
		return
	}
	h.respond(c)(h.auctions.SelectWinner(c.Request.Context(), actor(c), id, body.OfferID, body.Note))
}

func (h *Handler) ApproveWinner(c *gin.Context) {
	id, ok := auctionID(c)
	if !ok {
		return
	}
	h.respond(c)(h.auctions.ApproveWinner(c.Request.Context(), actor(c), id))
}

func (h *Handler) RejectWinner(c *gin.Context) {
	id, ok := auctionID(c)
	if !ok {
		return
	}

	// the reason is optional, an empty body is fine
	var body rejectWinnerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "invalid reject payload")
			return
		}
	}
	h.respond(c)(h.auctions.RejectWinner(c.Request.Context(), actor(c), id, body.Reason))
}

func (h *Handler) FinalizeDeserted(c *gin.Context) {
	id, ok := auctionID(c)
	if !ok {
		return
	}

	var body finalizeDesertedRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "invalid finalize payload")
			return
		}
	}
	h.respond(c)(h.auctions.FinalizeDeserted(c.Request.Context(), actor(c), id, body.Override))
}

func (h *Handler) ExtendDeadline(c *gin.Context) {
	id, ok := auctionID(c)
	if !ok {
		return
	}

	var body extendDeadlineRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "deadline is required")
		return
	}
	h.respond(c)(h.auctions.ExtendDeadline(c.Request.Context(), actor(c), id, body.Deadline))
}

// respond writes the auction returned by a transition
func (h *Handler) respond(c *gin.Context) func(*auction.Auction, error) {
	return func(a *auction.Auction, err error) {
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	}
}
