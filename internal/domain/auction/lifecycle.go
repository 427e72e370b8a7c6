package auction

import (
	"time"

	"freight-bid-service/internal/domain/offer"
	"freight-bid-service/internal/domain/shared"
)

// Event is a lifecycle action applied to an auction
type Event string

const (
	EventClose            Event = "close"
	EventSelectWinner     Event = "select_winner"
	EventApprove          Event = "approve"
	EventReject           Event = "reject"
	EventFinalizeDeserted Event = "finalize_deserted"
	EventExtendDeadline   Event = "extend_deadline"
)

const (
	defaultSelectionNote = "No additional justification."
	desertedLog          = "Finalized as deserted (no offers)"
	desertedOverrideLog  = "Finalized as deserted (override)"
)

type transition struct {
	from       Status
	to         Status
	masterOnly bool
}

var transitions = map[Event]transition{
	EventClose:            {from: StatusOpen, to: StatusUnderReview},
	EventSelectWinner:     {from: StatusUnderReview, to: StatusPendingApproval},
	EventApprove:          {from: StatusPendingApproval, to: StatusFinalized, masterOnly: true},
	EventReject:           {from: StatusPendingApproval, to: StatusUnderReview, masterOnly: true},
	EventFinalizeDeserted: {from: StatusUnderReview, to: StatusFinalized},
	EventExtendDeadline:   {from: StatusOpen, to: StatusOpen},
}

// SourceState returns the state an event must be applied from
func SourceState(e Event) (Status, bool) {
	t, ok := transitions[e]
	return t.from, ok
}

// TargetState returns the state an event moves the auction to
func TargetState(e Event) (Status, bool) {
	t, ok := transitions[e]
	return t.to, ok
}

// NewIllegalTransition builds the error reported when e is attempted while
// the auction is in current.
func NewIllegalTransition(e Event, current Status) *shared.IllegalTransitionError {
	t := transitions[e]
	return &shared.IllegalTransitionError{
		Event:     string(e),
		Expected:  string(t.from),
		Requested: string(t.to),
		Current:   string(current),
	}
}

// guard checks source state, actor kind and role for e
func (a *Auction) guard(e Event, actor shared.Participant) (transition, error) {
	t, ok := transitions[e]
	if !ok {
		return transition{}, NewIllegalTransition(e, a.Status)
	}
	if a.Status != t.from {
		return transition{}, NewIllegalTransition(e, a.Status)
	}
	if !actor.IsStaff() {
		return transition{}, shared.ErrStaffRequired
	}
	if t.masterOnly && !actor.IsMaster() {
		return transition{}, shared.ErrMasterRoleRequired
	}
	return t, nil
}

// Close ends the offer window, by deadline or manually
func (a *Auction) Close(actor shared.Participant, at time.Time) error {
	t, err := a.guard(EventClose, actor)
	if err != nil {
		return err
	}

	a.Status = t.to
	a.ClosingLog = shared.AuditEntry(actor.Name, at)
	a.UpdatedAt = at
	return nil
}

// SelectWinner designates o as the winning offer and sends the auction to approval
func (a *Auction) SelectWinner(actor shared.Participant, o *offer.Offer, note string, at time.Time) error {
	t, err := a.guard(EventSelectWinner, actor)
	if err != nil {
		return err
	}
	if o == nil || o.AuctionID != a.ID {
		return shared.ErrOfferNotInAuction
	}
	if note == "" {
		note = defaultSelectionNote
	}

	winner := o.ID
	a.Status = t.to
	a.WinningOfferID = &winner
	a.SelectionLog = shared.AuditEntry(actor.Name, at)
	a.SelectionNote = note
	a.UpdatedAt = at
	return nil
}

// Approve finalizes the selected winner
func (a *Auction) Approve(actor shared.Participant, at time.Time) error {
	t, err := a.guard(EventApprove, actor)
	if err != nil {
		return err
	}

	a.Status = t.to
	a.ApprovalLog = shared.AuditEntry(actor.Name+" (Master)", at)
	a.UpdatedAt = at
	return nil
}

// Reject returns the auction to review and clears the selection
func (a *Auction) Reject(actor shared.Participant, at time.Time) error {
	t, err := a.guard(EventReject, actor)
	if err != nil {
		return err
	}

	a.Status = t.to
	a.WinningOfferID = nil
	a.SelectionLog = ""
	a.SelectionNote = ""
	a.UpdatedAt = at
	return nil
}

// FinalizeDeserted closes the auction without a winner. It requires the
// auction to have no offers unless override is set.
func (a *Auction) FinalizeDeserted(actor shared.Participant, offerCount int, override bool, at time.Time) error {
	t, err := a.guard(EventFinalizeDeserted, actor)
	if err != nil {
		return err
	}
	if offerCount > 0 && !override {
		return shared.ErrAuctionHasOffers
	}

	a.Status = t.to
	a.WinningOfferID = nil
	a.SelectionLog = desertedLog
	if offerCount > 0 {
		a.SelectionLog = desertedOverrideLog
	}
	a.ApprovalLog = shared.AuditEntry(actor.Name, at)
	a.UpdatedAt = at
	return nil
}

// ExtendDeadline moves the offer cut-off forward. Only open auctions can be
// extended and the deadline never moves backwards.
func (a *Auction) ExtendDeadline(actor shared.Participant, deadline time.Time, at time.Time) error {
	if _, err := a.guard(EventExtendDeadline, actor); err != nil {
		return err
	}
	if !deadline.After(a.Deadline) {
		return shared.ErrDeadlineNotExtended
	}
	if !deadline.After(at) {
		return shared.ErrInvalidDeadline
	}

	a.Deadline = deadline
	a.UpdatedAt = at
	return nil
}
