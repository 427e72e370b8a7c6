package scoring

import (
	"errors"
	"testing"
	"time"

	"freight-bid-service/internal/domain/offer"
	"freight-bid-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

var base = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func newOffer(id string, price string, leadTime int, minute int) *offer.Offer {
	return &offer.Offer{
		ID:           uuid.MustParse(id),
		AuctionID:    uuid.MustParse("00000000-0000-0000-0000-0000000000aa"),
		CarrierID:    id,
		Price:        decimal.RequireFromString(price),
		LeadTimeDays: leadTime,
		CreatedAt:    base.Add(time.Duration(minute) * time.Minute),
	}
}

const (
	idA = "00000000-0000-0000-0000-00000000000a"
	idB = "00000000-0000-0000-0000-00000000000b"
	idC = "00000000-0000-0000-0000-00000000000c"
)

func TestRank_WeightedScore(t *testing.T) {
	a := newOffer(idA, "1000", 5, 0)
	b := newOffer(idB, "900", 10, 1)

	ranked, err := Rank([]*offer.Offer{a, b}, DefaultWeights)

	check.Nil(t, err)
	check.Equal(t, 2, len(ranked))
	check.Equal(t, a.ID, ranked[0].Offer.ID) // 0.9*70 + 1*30 = 93
	check.Equal(t, 93.0, ranked[0].Score)
	check.Equal(t, 1, ranked[0].Rank)
	check.Equal(t, b.ID, ranked[1].Offer.ID) // 1*70 + 0.5*30 = 85
	check.Equal(t, 85.0, ranked[1].Score)
	check.Equal(t, 2, ranked[1].Rank)
}

func TestRank_CustomWeights(t *testing.T) {
	a := newOffer(idA, "1000", 5, 0)
	b := newOffer(idB, "900", 10, 1)

	weights, err := NewWeights(100)
	check.Nil(t, err)

	ranked, err := Rank([]*offer.Offer{a, b}, weights)

	check.Nil(t, err)
	check.Equal(t, b.ID, ranked[0].Offer.ID)
	check.Equal(t, 100.0, ranked[0].Score)
	check.Equal(t, 90.0, ranked[1].Score)
}

func TestRank_SingleOfferScoresFull(t *testing.T) {
	a := newOffer(idA, "1234.56", 3, 0)

	ranked, err := Rank([]*offer.Offer{a}, DefaultWeights)

	check.Nil(t, err)
	check.Equal(t, 1, len(ranked))
	check.Equal(t, 100.0, ranked[0].Score)
}

func TestRank_Empty(t *testing.T) {
	ranked, err := Rank(nil, DefaultWeights)

	check.Nil(t, err)
	check.NotNil(t, ranked)
	check.Equal(t, 0, len(ranked))
}

func TestRank_TieBrokenByEarliestSubmission(t *testing.T) {
	late := newOffer(idA, "500", 4, 10)
	early := newOffer(idB, "500", 4, 2)

	ranked, err := Rank([]*offer.Offer{late, early}, DefaultWeights)

	check.Nil(t, err)
	check.Equal(t, early.ID, ranked[0].Offer.ID)
	check.Equal(t, late.ID, ranked[1].Offer.ID)
	check.Equal(t, ranked[0].Score, ranked[1].Score)
}

func TestRank_CentDifferenceIsNotATie(t *testing.T) {
	// both scores round to 100.0000 at four places
	a := newOffer(idA, "100000.01", 3, 0)
	b := newOffer(idB, "100000.00", 3, 1)

	ranked, err := Rank([]*offer.Offer{a, b}, DefaultWeights)

	check.Nil(t, err)
	check.Equal(t, b.ID, ranked[0].Offer.ID)
	check.Equal(t, 1, ranked[0].Rank)
	check.Equal(t, a.ID, ranked[1].Offer.ID)
	check.Equal(t, 100.0, ranked[1].Score)
}

func TestRank_TieBrokenByIDWhenSimultaneous(t *testing.T) {
	c := newOffer(idC, "500", 4, 0)
	a := newOffer(idA, "500", 4, 0)

	ranked, err := Rank([]*offer.Offer{c, a}, DefaultWeights)

	check.Nil(t, err)
	check.Equal(t, a.ID, ranked[0].Offer.ID)
	check.Equal(t, c.ID, ranked[1].Offer.ID)
}

func TestRank_DeterministicAcrossInputOrder(t *testing.T) {
	a := newOffer(idA, "1000", 5, 0)
	b := newOffer(idB, "900", 10, 1)
	c := newOffer(idC, "950", 7, 2)

	first, err := Rank([]*offer.Offer{a, b, c}, DefaultWeights)
	check.Nil(t, err)
	second, err := Rank([]*offer.Offer{c, a, b}, DefaultWeights)
	check.Nil(t, err)

	check.Equal(t, len(first), len(second))
	for i := range first {
		check.Equal(t, first[i].Offer.ID, second[i].Offer.ID)
		check.Equal(t, first[i].Score, second[i].Score)
		check.Equal(t, i+1, second[i].Rank)
	}
}

func TestRank_RejectsNonPositiveValues(t *testing.T) {
	zeroPrice := newOffer(idA, "0", 5, 0)
	zeroLead := newOffer(idB, "100", 0, 0)

	_, err := Rank([]*offer.Offer{zeroPrice}, DefaultWeights)
	check.True(t, errors.Is(err, shared.ErrInvalidOffer))

	_, err = Rank([]*offer.Offer{zeroLead}, DefaultWeights)
	check.True(t, errors.Is(err, shared.ErrInvalidOffer))
}

func TestRank_RejectsInvalidWeights(t *testing.T) {
	a := newOffer(idA, "100", 1, 0)

	_, err := Rank([]*offer.Offer{a}, Weights{Price: 80, LeadTime: 30})

	check.True(t, errors.Is(err, shared.ErrValidation))
}

func TestCheapestAndFastest(t *testing.T) {
	a := newOffer(idA, "1000", 5, 0)
	b := newOffer(idB, "900", 10, 1)
	c := newOffer(idC, "900", 5, 2)
	input := []*offer.Offer{a, b, c}

	cheapest := Cheapest(input)
	check.Equal(t, b.ID, cheapest[0].ID) // same price as c, submitted earlier
	check.Equal(t, c.ID, cheapest[1].ID)
	check.Equal(t, a.ID, cheapest[2].ID)

	fastest := Fastest(input)
	check.Equal(t, a.ID, fastest[0].ID)
	check.Equal(t, c.ID, fastest[1].ID)
	check.Equal(t, b.ID, fastest[2].ID)

	// input order is untouched
	check.Equal(t, a.ID, input[0].ID)
	check.Equal(t, b.ID, input[1].ID)
}

func TestLeader(t *testing.T) {
	check.Nil(t, Leader(nil))

	a := newOffer(idA, "1000", 5, 0)
	b := newOffer(idB, "900", 10, 1)
	check.Equal(t, b.ID, Leader([]*offer.Offer{a, b}).ID)
}

func TestNewWeights(t *testing.T) {
	w, err := NewWeights(60)
	check.Nil(t, err)
	check.Equal(t, 60, w.Price)
	check.Equal(t, 40, w.LeadTime)

	_, err = NewWeights(120)
	check.True(t, errors.Is(err, shared.ErrInvalidWeights))

	_, err = NewWeights(-1)
	check.True(t, errors.Is(err, shared.ErrValidation))
}

func TestSummarize(t *testing.T) {
	a := newOffer(idA, "1000", 5, 0)
	b := newOffer(idB, "900", 10, 1)

	summary, err := Summarize([]*offer.Offer{a, b}, DefaultWeights)

	check.Nil(t, err)
	check.Equal(t, a.ID, summary.ByScore[0].Offer.ID)
	check.Equal(t, b.ID, summary.Cheapest[0].ID)
	check.Equal(t, a.ID, summary.Fastest[0].ID)
}
