package shared

import (
	"errors"
	"fmt"
)

// Error taxonomy. Concrete errors below wrap one of these so callers can
// branch with errors.Is.
var (
	ErrValidation          = errors.New("validation error")
	ErrIllegalTransition   = errors.New("illegal transition")
	ErrGenerationExhausted = errors.New("identifier generation exhausted")
	ErrNotFound            = errors.New("not found")
	ErrInvalidOffer        = errors.New("invalid offer")
)

// Domain-specific errors
var (
	// Auction errors
	ErrAuctionNotFound           = fmt.Errorf("auction %w", ErrNotFound)
	ErrAuctionNotAcceptingOffers = errors.New("auction is not accepting offers")
	ErrAuctionHasOffers          = fmt.Errorf("%w: auction has offers, override required", ErrValidation)
	ErrInvalidDeadline           = fmt.Errorf("%w: deadline must be in the future", ErrValidation)
	ErrDeadlineNotExtended       = fmt.Errorf("%w: new deadline must be after the current one", ErrValidation)
	ErrInvalidWeights            = fmt.Errorf("%w: price and lead time weights must be within 0..100 and sum to 100", ErrValidation)
	ErrTitleRequired             = fmt.Errorf("%w: title is required", ErrValidation)
	ErrRouteRequired             = fmt.Errorf("%w: origin and destination are required", ErrValidation)
	ErrInvalidQuantity           = fmt.Errorf("%w: vehicle quantity must be at least 1", ErrValidation)
	ErrAuctionReferenceRequired  = fmt.Errorf("%w: auction id is required", ErrValidation)

	// Offer errors
	ErrOfferNotFound     = fmt.Errorf("offer %w", ErrNotFound)
	ErrNoOffers          = errors.New("no offers found")
	ErrOfferNotInAuction = fmt.Errorf("%w: offer does not belong to this auction", ErrValidation)
	ErrInvalidPrice      = fmt.Errorf("%w: price must be greater than 0", ErrValidation)
	ErrInvalidLeadTime   = fmt.Errorf("%w: lead time must be at least 1 day", ErrValidation)

	// Participant errors
	ErrParticipantNotFound = fmt.Errorf("participant %w", ErrNotFound)
	ErrParticipantRequired = fmt.Errorf("%w: acting participant is required", ErrValidation)
	ErrNameRequired        = fmt.Errorf("%w: participant name is required", ErrValidation)
	ErrInvalidKind         = fmt.Errorf("%w: participant kind must be carrier or staff", ErrValidation)
	ErrMasterRoleRequired  = errors.New("master role required")
	ErrCarrierRequired     = errors.New("only carriers can submit offers")
	ErrStaffRequired       = errors.New("only staff can perform this action")

	// Persistence errors
	ErrStatusConflict = errors.New("persisted status does not match expected status")
	ErrCodeTaken      = errors.New("auction code already in use")
	ErrDuplicateID    = errors.New("record with this id already exists")

	// WebSocket message validation errors
	ErrMessageTypeRequired = errors.New("message type is required")
	ErrAuctionIDRequired   = errors.New("auction_id is required")
	ErrUnknownMessageType  = errors.New("unknown message type")
	ErrInvalidAmount       = errors.New("valid price is required")
	ErrInvalidLeadTimeData = errors.New("valid lead_time_days is required")

	// WebSocket handler specific errors
	ErrClientEventChannelNotFound = errors.New("client event channel not found")
)

// IllegalTransitionError reports a lifecycle event attempted from a state
// other than the event's source state. It matches ErrIllegalTransition.
type IllegalTransitionError struct {
	Event     string
	Expected  string
	Requested string
	Current   string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: cannot %s (to %s) from %s, expected %s",
		e.Event, e.Requested, e.Current, e.Expected)
}

func (e *IllegalTransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}
