package auction

import (
	"errors"
	"testing"
	"time"

	"freight-bid-service/internal/domain/offer"
	"freight-bid-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	at = time.Date(2026, 10, 16, 14, 30, 5, 0, time.UTC)

	analyst = shared.Participant{ID: uuid.New(), Name: "Ana", Kind: shared.KindStaff, Role: shared.RoleStandard}
	master  = shared.Participant{ID: uuid.New(), Name: "Marta", Kind: shared.KindStaff, Role: shared.RoleMaster}
	carrier = shared.Participant{ID: uuid.New(), Name: "TransLog", Kind: shared.KindCarrier}
)

func newAuction(status Status) *Auction {
	return &Auction{
		ID:             uuid.New(),
		Code:           "BID-202610-ABCDEFGH",
		Title:          "Truck lot",
		Status:         status,
		Deadline:       at.Add(time.Hour),
		PriceWeight:    70,
		LeadTimeWeight: 30,
	}
}

func offerFor(a *Auction) *offer.Offer {
	return &offer.Offer{
		ID:           uuid.New(),
		AuctionID:    a.ID,
		CarrierID:    carrier.ID.String(),
		Price:        decimal.NewFromInt(1000),
		LeadTimeDays: 3,
	}
}

func TestClose(t *testing.T) {
	t.Parallel()

	a := newAuction(StatusOpen)

	require.NoError(t, a.Close(analyst, at))
	require.Equal(t, StatusUnderReview, a.Status)
	require.Equal(t, "Ana in 16/10/2026, 14:30:05", a.ClosingLog)
	require.Equal(t, at, a.UpdatedAt)
}

func TestSelectWinner(t *testing.T) {
	t.Parallel()

	a := newAuction(StatusUnderReview)
	o := offerFor(a)

	require.NoError(t, a.SelectWinner(analyst, o, "best balance", at))
	require.Equal(t, StatusPendingApproval, a.Status)
	require.NotNil(t, a.WinningOfferID)
	require.Equal(t, o.ID, *a.WinningOfferID)
	require.Equal(t, "Ana in 16/10/2026, 14:30:05", a.SelectionLog)
	require.Equal(t, "best balance", a.SelectionNote)
}

func TestSelectWinner_DefaultNote(t *testing.T) {
	t.Parallel()

	a := newAuction(StatusUnderReview)

	require.NoError(t, a.SelectWinner(analyst, offerFor(a), "", at))
	require.Equal(t, defaultSelectionNote, a.SelectionNote)
}

func TestSelectWinner_OfferFromAnotherAuction(t *testing.T) {
	t.Parallel()

	a := newAuction(StatusUnderReview)
	other := offerFor(newAuction(StatusUnderReview))

	err := a.SelectWinner(analyst, other, "", at)

	require.ErrorIs(t, err, shared.ErrOfferNotInAuction)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Equal(t, StatusUnderReview, a.Status)
	require.Nil(t, a.WinningOfferID)
}

func TestApprove(t *testing.T) {
	t.Parallel()

	a := newAuction(StatusUnderReview)
	require.NoError(t, a.SelectWinner(analyst, offerFor(a), "", at))

	require.NoError(t, a.Approve(master, at))
	require.Equal(t, StatusFinalized, a.Status)
	require.Equal(t, "Marta (Master) in 16/10/2026, 14:30:05", a.ApprovalLog)
	require.True(t, a.HasWinner())
}

func TestApprove_RequiresMaster(t *testing.T) {
	t.Parallel()

	a := newAuction(StatusPendingApproval)

	err := a.Approve(analyst, at)

	require.ErrorIs(t, err, shared.ErrMasterRoleRequired)
	require.Equal(t, StatusPendingApproval, a.Status)
	require.Empty(t, a.ApprovalLog)
}

func TestReject_ClearsSelection(t *testing.T) {
	t.Parallel()

	a := newAuction(StatusUnderReview)
	first := offerFor(a)
	second := offerFor(a)
	require.NoError(t, a.SelectWinner(analyst, first, "cheapest", at))

	require.NoError(t, a.Reject(master, at))
	require.Equal(t, StatusUnderReview, a.Status)
	require.Nil(t, a.WinningOfferID)
	require.Empty(t, a.SelectionLog)
	require.Empty(t, a.SelectionNote)

	require.NoError(t, a.SelectWinner(analyst, second, "", at))
	require.Equal(t, second.ID, *a.WinningOfferID)
}

func TestReject_RequiresMaster(t *testing.T) {
	t.Parallel()

	a := newAuction(StatusPendingApproval)

	require.ErrorIs(t, a.Reject(analyst, at), shared.ErrMasterRoleRequired)
}

func TestFinalizeDeserted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		offerCount int
		override   bool
		wantErr    error
		wantLog    string
	}{
		{name: "no offers", offerCount: 0, wantLog: desertedLog},
		{name: "offers without override", offerCount: 2, wantErr: shared.ErrAuctionHasOffers},
		{name: "offers with override", offerCount: 2, override: true, wantLog: desertedOverrideLog},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a := newAuction(StatusUnderReview)
			err := a.FinalizeDeserted(analyst, tc.offerCount, tc.override, at)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.Equal(t, StatusUnderReview, a.Status)
				return
			}
			require.NoError(t, err)
			require.Equal(t, StatusFinalized, a.Status)
			require.Nil(t, a.WinningOfferID)
			require.Equal(t, tc.wantLog, a.SelectionLog)
			require.Equal(t, "Ana in 16/10/2026, 14:30:05", a.ApprovalLog)
		})
	}
}

func TestIllegalTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  Status
		event   Event
		apply   func(a *Auction) error
		current Status
	}{
		{
			name:   "approve from open",
			status: StatusOpen,
			event:  EventApprove,
			apply:  func(a *Auction) error { return a.Approve(master, at) },
		},
		{
			name:   "close twice",
			status: StatusUnderReview,
			event:  EventClose,
			apply:  func(a *Auction) error { return a.Close(analyst, at) },
		},
		{
			name:   "select while open",
			status: StatusOpen,
			event:  EventSelectWinner,
			apply:  func(a *Auction) error { return a.SelectWinner(analyst, offerFor(a), "", at) },
		},
		{
			name:   "reject after finalize",
			status: StatusFinalized,
			event:  EventReject,
			apply:  func(a *Auction) error { return a.Reject(master, at) },
		},
		{
			name:   "deserted from pending approval",
			status: StatusPendingApproval,
			event:  EventFinalizeDeserted,
			apply:  func(a *Auction) error { return a.FinalizeDeserted(analyst, 0, false, at) },
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a := newAuction(tc.status)
			err := tc.apply(a)

			require.ErrorIs(t, err, shared.ErrIllegalTransition)

			var illegal *shared.IllegalTransitionError
			require.True(t, errors.As(err, &illegal))
			require.Equal(t, string(tc.event), illegal.Event)
			require.Equal(t, string(tc.status), illegal.Current)

			from, _ := SourceState(tc.event)
			to, _ := TargetState(tc.event)
			require.Equal(t, string(from), illegal.Expected)
			require.Equal(t, string(to), illegal.Requested)

			require.Equal(t, tc.status, a.Status)
		})
	}
}

func TestTransitions_RequireStaff(t *testing.T) {
	t.Parallel()

	a := newAuction(StatusOpen)

	require.ErrorIs(t, a.Close(carrier, at), shared.ErrStaffRequired)
	require.Equal(t, StatusOpen, a.Status)
}

func TestWinnerOnlyFromPendingApproval(t *testing.T) {
	t.Parallel()

	a := newAuction(StatusOpen)
	require.NoError(t, a.Close(analyst, at))
	require.Nil(t, a.WinningOfferID)

	require.NoError(t, a.SelectWinner(analyst, offerFor(a), "", at))
	require.NoError(t, a.Reject(master, at))
	require.Nil(t, a.WinningOfferID)

	require.NoError(t, a.FinalizeDeserted(analyst, 1, true, at))
	require.Nil(t, a.WinningOfferID)
	require.True(t, a.IsFinalized())
}

func TestExtendDeadline(t *testing.T) {
	t.Parallel()

	a := newAuction(StatusOpen)
	later := a.Deadline.Add(24 * time.Hour)

	require.NoError(t, a.ExtendDeadline(analyst, later, at))
	require.Equal(t, later, a.Deadline)

	require.ErrorIs(t, a.ExtendDeadline(analyst, later.Add(-time.Minute), at), shared.ErrDeadlineNotExtended)

	require.ErrorIs(t, a.ExtendDeadline(carrier, later.Add(time.Hour), at), shared.ErrStaffRequired)

	closed := newAuction(StatusUnderReview)
	require.ErrorIs(t, closed.ExtendDeadline(analyst, later, at), shared.ErrIllegalTransition)
}

func TestDeadlinePassed(t *testing.T) {
	t.Parallel()

	a := newAuction(StatusOpen)

	require.False(t, a.DeadlinePassed(at))
	require.True(t, a.DeadlinePassed(a.Deadline))
	require.True(t, a.DeadlinePassed(a.Deadline.Add(time.Second)))
}
