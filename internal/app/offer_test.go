package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"freight-bid-service/internal/domain/offer"
	"freight-bid-service/internal/domain/shared"
	"freight-bid-service/internal/ports/inbound"
	"freight-bid-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func submit(t *testing.T, f *fixture, carrier shared.Participant, auctionID uuid.UUID, price int64) *inbound.SubmitResult {
	t.Helper()

	// distinct submission times keep tie-breaks independent of random IDs
	f.advance(time.Minute)
	res, err := f.offerService.SubmitOffer(context.Background(), carrier, inbound.SubmitOfferRequest{
		AuctionID:    auctionID,
		Price:        decimal.NewFromInt(price),
		LeadTimeDays: 5,
	})
	require.NoError(t, err)
	return res
}

func TestSubmitOffer_OutbidOnlyWhenLeaderDisplaced(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	a := f.openAuction(t)

	first := submit(t, f, carrierA, a.ID, 1000)
	require.Empty(t, f.notifier.ofKind(outbound.EventTypeOutbid))
	require.Equal(t, first.Offer.ID, first.Leader.ID)

	second := submit(t, f, carrierB, a.ID, 900)
	outbids := f.notifier.ofKind(outbound.EventTypeOutbid)
	require.Len(t, outbids, 1)
	require.Equal(t, "tok-a", outbids[0].RecipientToken)
	require.Equal(t, a.ID, outbids[0].AuctionID)
	require.Equal(t, a.Code, outbids[0].Data["code"])
	require.Equal(t, "900", outbids[0].Data["new_price"])
	require.Equal(t, first.Offer.ID.String(), outbids[0].Data["your_offer_id"])
	require.Equal(t, second.Offer.ID, second.Leader.ID)

	// 950 does not beat the current leader at 900
	third := submit(t, f, carrierC, a.ID, 950)
	require.Len(t, f.notifier.ofKind(outbound.EventTypeOutbid), 1)
	require.Equal(t, second.Offer.ID, third.Leader.ID)
	require.Len(t, third.Ranking.ByScore, 3)
	require.Len(t, f.notifier.ofKind(outbound.EventTypeOfferPlaced), 3)
}

func TestSubmitOffer_SameCarrierUndercutsItself(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	a := f.openAuction(t)

	submit(t, f, carrierA, a.ID, 1000)
	submit(t, f, carrierA, a.ID, 800)

	require.Empty(t, f.notifier.ofKind(outbound.EventTypeOutbid))
}

func TestSubmitOffer_EqualPriceDoesNotOutbid(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	a := f.openAuction(t)

	first := submit(t, f, carrierA, a.ID, 1000)
	second := submit(t, f, carrierB, a.ID, 1000)

	require.Empty(t, f.notifier.ofKind(outbound.EventTypeOutbid))
	require.Equal(t, first.Offer.ID, second.Leader.ID)
}

func TestSubmitOffer_LegacyLeaderWithoutToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	a := f.openAuction(t)
	legacy := &offer.Offer{
		ID:           uuid.New(),
		AuctionID:    a.ID,
		CarrierID:    uuid.New().String(),
		CarrierName:  "Legacy Transport",
		Price:        decimal.NewFromInt(1000),
		LeadTimeDays: 3,
		CreatedAt:    f.clock().Add(-time.Hour),
	}
	require.NoError(t, f.offers.Create(context.Background(), legacy))

	res := submit(t, f, carrierB, a.ID, 900)

	require.Empty(t, f.notifier.ofKind(outbound.EventTypeOutbid))
	require.Equal(t, res.Offer.ID, res.Leader.ID)
}

func TestSubmitOffer_NotifierFailureDoesNotFailSubmission(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.notifier.err = errors.New("redis down")
	a := f.openAuction(t)

	submit(t, f, carrierA, a.ID, 1000)
	res := submit(t, f, carrierB, a.ID, 900)

	require.NotNil(t, res.Offer)
	count, err := f.offers.CountByAuction(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Len(t, f.notifier.ofKind(outbound.EventTypeOutbid), 1)
}

func TestSubmitOffer_Rejections(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	open := f.openAuction(t)
	closed := f.openAuction(t)
	_, err := f.auctionService.CloseAuction(context.Background(), analyst, closed.ID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		carrier shared.Participant
		req     inbound.SubmitOfferRequest
		wantErr error
	}{
		{
			name:    "staff cannot submit",
			carrier: analyst,
			req:     inbound.SubmitOfferRequest{AuctionID: open.ID, Price: decimal.NewFromInt(10), LeadTimeDays: 1},
			wantErr: shared.ErrCarrierRequired,
		},
		{
			name:    "missing auction id",
			carrier: carrierA,
			req:     inbound.SubmitOfferRequest{Price: decimal.NewFromInt(10), LeadTimeDays: 1},
			wantErr: shared.ErrValidation,
		},
		{
			name:    "zero price",
			carrier: carrierA,
			req:     inbound.SubmitOfferRequest{AuctionID: open.ID, Price: decimal.Zero, LeadTimeDays: 1},
			wantErr: shared.ErrInvalidPrice,
		},
		{
			name:    "zero lead time",
			carrier: carrierA,
			req:     inbound.SubmitOfferRequest{AuctionID: open.ID, Price: decimal.NewFromInt(10)},
			wantErr: shared.ErrValidation,
		},
		{
			name:    "unknown auction",
			carrier: carrierA,
			req:     inbound.SubmitOfferRequest{AuctionID: uuid.New(), Price: decimal.NewFromInt(10), LeadTimeDays: 1},
			wantErr: shared.ErrAuctionNotFound,
		},
		{
			name:    "closed auction",
			carrier: carrierA,
			req:     inbound.SubmitOfferRequest{AuctionID: closed.ID, Price: decimal.NewFromInt(10), LeadTimeDays: 1},
			wantErr: shared.ErrAuctionNotAcceptingOffers,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.offerService.SubmitOffer(context.Background(), tc.carrier, tc.req)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}

	count, err := f.offers.CountByAuction(context.Background(), open.ID)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestSubmitOffer_AfterDeadlineBeforeClose(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	a := f.openAuction(t)
	f.advance(25 * time.Hour)

	_, err := f.offerService.SubmitOffer(context.Background(), carrierA, inbound.SubmitOfferRequest{
		AuctionID:    a.ID,
		Price:        decimal.NewFromInt(100),
		LeadTimeDays: 1,
	})

	require.ErrorIs(t, err, shared.ErrAuctionNotAcceptingOffers)
}

func TestSubmitOffer_CapturesNotifyToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	a := f.openAuction(t)

	res := submit(t, f, carrierA, a.ID, 500)

	stored, err := f.offers.GetByID(context.Background(), res.Offer.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.NotifyToken)
	require.Equal(t, "tok-a", *stored.NotifyToken)
	require.Equal(t, carrierA.Name, stored.CarrierName)
}

func TestListOffers(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	a := f.openAuction(t)
	first := submit(t, f, carrierA, a.ID, 500)
	submit(t, f, carrierB, a.ID, 400)

	offers, err := f.offerService.ListOffers(context.Background(), a.ID)
	require.NoError(t, err)
	require.Len(t, offers, 2)
	require.Equal(t, first.Offer.ID, offers[0].ID)

	_, err = f.offerService.ListOffers(context.Background(), uuid.New())
	require.ErrorIs(t, err, shared.ErrNotFound)
}
