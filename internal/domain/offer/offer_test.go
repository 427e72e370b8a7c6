package offer

import (
	"testing"
	"time"

	"freight-bid-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	auctionID := uuid.New()
	at := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	carrier := shared.Participant{ID: uuid.New(), Name: "TransLog", Kind: shared.KindCarrier, NotifyToken: "tok-1"}

	tests := []struct {
		name     string
		price    string
		leadTime int
		wantErr  error
	}{
		{name: "valid", price: "1500.50", leadTime: 4},
		{name: "zero price", price: "0", leadTime: 4, wantErr: shared.ErrInvalidPrice},
		{name: "negative price", price: "-10", leadTime: 4, wantErr: shared.ErrInvalidPrice},
		{name: "zero lead time", price: "100", leadTime: 0, wantErr: shared.ErrInvalidLeadTime},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			o, err := New(auctionID, carrier, decimal.RequireFromString(tc.price), tc.leadTime, at)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.ErrorIs(t, err, shared.ErrValidation)
				require.Nil(t, o)
				return
			}

			require.NoError(t, err)
			require.Equal(t, auctionID, o.AuctionID)
			require.Equal(t, carrier.ID.String(), o.CarrierID)
			require.Equal(t, "TransLog", o.CarrierName)
			require.True(t, o.HasNotifyToken())
			require.Equal(t, "tok-1", *o.NotifyToken)
			require.Equal(t, at, o.CreatedAt)
		})
	}
}

func TestNew_WithoutNotifyToken(t *testing.T) {
	t.Parallel()

	carrier := shared.Participant{ID: uuid.New(), Name: "NoMail", Kind: shared.KindCarrier}

	o, err := New(uuid.New(), carrier, decimal.NewFromInt(10), 1, time.Now())

	require.NoError(t, err)
	require.Nil(t, o.NotifyToken)
	require.False(t, o.HasNotifyToken())
}

func TestUndercutsAndSameCarrier(t *testing.T) {
	t.Parallel()

	a := &Offer{CarrierID: "a", Price: decimal.NewFromInt(1000)}
	b := &Offer{CarrierID: "b", Price: decimal.NewFromInt(900)}
	c := &Offer{CarrierID: "a", Price: decimal.NewFromInt(900)}

	require.True(t, b.Undercuts(a))
	require.False(t, a.Undercuts(b))
	require.False(t, c.Undercuts(b))
	require.True(t, a.SameCarrier(c))
	require.False(t, a.SameCarrier(b))
}
