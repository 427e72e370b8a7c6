package rest

import (
	"errors"
	"net/http"

	"freight-bid-service/internal/domain/shared"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Current   string `json:"current,omitempty"`
	Requested string `json:"requested,omitempty"`
}

// mapError translates domain errors into a status and body
func mapError(err error) (int, ErrorResponse) {
	var illegal *shared.IllegalTransitionError
	switch {
	case errors.As(err, &illegal):
		return http.StatusConflict, ErrorResponse{
			Code:      "ILLEGAL_TRANSITION",
			Message:   err.Error(),
			Current:   illegal.Current,
			Requested: illegal.Requested,
		}
	case errors.Is(err, shared.ErrAuctionNotAcceptingOffers):
		return http.StatusConflict, ErrorResponse{Code: "NOT_ACCEPTING_OFFERS", Message: err.Error()}
	case errors.Is(err, shared.ErrCodeTaken):
		return http.StatusConflict, ErrorResponse{Code: "CODE_TAKEN", Message: err.Error()}
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrInvalidOffer):
		return http.StatusBadRequest, ErrorResponse{Code: "INVALID_REQUEST", Message: err.Error()}
	case errors.Is(err, shared.ErrMasterRoleRequired),
		errors.Is(err, shared.ErrStaffRequired),
		errors.Is(err, shared.ErrCarrierRequired):
		return http.StatusForbidden, ErrorResponse{Code: "FORBIDDEN", Message: err.Error()}
	case errors.Is(err, shared.ErrGenerationExhausted):
		return http.StatusServiceUnavailable, ErrorResponse{Code: "CODE_GENERATION_EXHAUSTED", Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Code: "INTERNAL_ERROR", Message: "an internal error occurred"}
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, body := mapError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Code: "INVALID_REQUEST", Message: message})
}
