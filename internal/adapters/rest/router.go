package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type RouterParams struct {
	Handler *Handler
	// WebSocket serves the /ws upgrade endpoint; nil leaves it unmounted
	WebSocket http.HandlerFunc
	Logger    zerolog.Logger
}

// NewRouter builds the gin engine with every route of the service
func NewRouter(params RouterParams) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(params.Logger.With().Str("component", "http").Logger()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "freight-bid-service"})
	})
	if params.WebSocket != nil {
		router.GET("/ws", gin.WrapF(params.WebSocket))
	}

	h := params.Handler
	v1 := router.Group("/v1")

	v1.GET("/auctions", h.ListAuctions)
	v1.GET("/auctions/code/:code", h.GetAuctionByCode)
	v1.GET("/auctions/:id", h.GetAuction)
	v1.GET("/auctions/:id/ranking", h.GetRanking)
	v1.GET("/auctions/:id/offers", h.ListOffers)

	acting := v1.Group("", h.requireParticipant)
	acting.POST("/auctions", h.CreateAuction)
	acting.POST("/auctions/:id/offers", h.SubmitOffer)
	acting.POST("/auctions/:id/close", h.CloseAuction)
	acting.POST("/auctions/:id/select", h.SelectWinner)
	acting.POST("/auctions/:id/approve", h.ApproveWinner)
	acting.POST("/auctions/:id/reject", h.RejectWinner)
	acting.POST("/auctions/:id/finalize-deserted", h.FinalizeDeserted)
	acting.POST("/auctions/:id/deadline", h.ExtendDeadline)

	return router
}
