package scoring

import (
	"bytes"
	"fmt"
	"sort"

	"freight-bid-service/internal/domain/offer"
	"freight-bid-service/internal/domain/shared"

	"github.com/shopspring/decimal"
)

const scorePlaces = 4

// Weights splits the 100 score points between price and lead time
type Weights struct {
	Price    int `json:"price"`
	LeadTime int `json:"lead_time"`
}

// DefaultWeights favours price 70/30
var DefaultWeights = Weights{Price: 70, LeadTime: 30}

// NewWeights derives the lead time weight from the price weight
func NewWeights(priceWeight int) (Weights, error) {
	w := Weights{Price: priceWeight, LeadTime: 100 - priceWeight}
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}

// Validate checks both weights are within 0..100 and sum to 100
func (w Weights) Validate() error {
	if w.Price < 0 || w.Price > 100 || w.LeadTime < 0 || w.LeadTime > 100 {
		return shared.ErrInvalidWeights
	}
	if w.Price+w.LeadTime != 100 {
		return shared.ErrInvalidWeights
	}
	return nil
}

// RankedOffer is an offer with its weighted score and 1-based position
type RankedOffer struct {
	Offer *offer.Offer `json:"offer"`
	Score float64      `json:"score"`
	Rank  int          `json:"rank"`
}

// Ranking groups the three orderings shown to reviewers
type Ranking struct {
	ByScore  []RankedOffer  `json:"by_score"`
	Cheapest []*offer.Offer `json:"cheapest"`
	Fastest  []*offer.Offer `json:"fastest"`
}

type scored struct {
	offer *offer.Offer
	score decimal.Decimal
}

// Rank orders offers by descending weighted score:
//
//	score = (minPrice/price)*priceWeight + (minLeadTime/leadTime)*leadTimeWeight
//
// Equal scores fall back to the earliest submission, then the offer ID, so
// the order is total and repeatable.
func Rank(offers []*offer.Offer, weights Weights) ([]RankedOffer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return []RankedOffer{}, nil
	}
	if err := validate(offers); err != nil {
		return nil, err
	}

	minPrice := offers[0].Price
	minLead := offers[0].LeadTimeDays
	for _, o := range offers[1:] {
		if o.Price.LessThan(minPrice) {
			minPrice = o.Price
		}
		if o.LeadTimeDays < minLead {
			minLead = o.LeadTimeDays
		}
	}

	priceWeight := decimal.NewFromInt(int64(weights.Price))
	leadWeight := decimal.NewFromInt(int64(weights.LeadTime))
	minLeadDec := decimal.NewFromInt(int64(minLead))

	entries := make([]scored, len(offers))
	for i, o := range offers {
		priceScore := minPrice.Div(o.Price).Mul(priceWeight)
		leadScore := minLeadDec.Div(decimal.NewFromInt(int64(o.LeadTimeDays))).Mul(leadWeight)
		entries[i] = scored{
			offer: o,
			score: priceScore.Add(leadScore),
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].score.Cmp(entries[j].score); c != 0 {
			return c > 0
		}
		return earlier(entries[i].offer, entries[j].offer)
	})

	ranked := make([]RankedOffer, len(entries))
	for i, e := range entries {
		ranked[i] = RankedOffer{
			Offer: e.offer,
			Score: e.score.Round(scorePlaces).InexactFloat64(),
			Rank:  i + 1,
		}
	}
	return ranked, nil
}

// Cheapest orders offers by ascending price
func Cheapest(offers []*offer.Offer) []*offer.Offer {
	sorted := clone(offers)
	sort.Slice(sorted, func(i, j int) bool {
		if c := sorted[i].Price.Cmp(sorted[j].Price); c != 0 {
			return c < 0
		}
		return earlier(sorted[i], sorted[j])
	})
	return sorted
}

// Fastest orders offers by ascending lead time
func Fastest(offers []*offer.Offer) []*offer.Offer {
	sorted := clone(offers)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].LeadTimeDays != sorted[j].LeadTimeDays {
			return sorted[i].LeadTimeDays < sorted[j].LeadTimeDays
		}
		return earlier(sorted[i], sorted[j])
	})
	return sorted
}

// Leader returns the cheapest offer, or nil when there are none
func Leader(offers []*offer.Offer) *offer.Offer {
	if len(offers) == 0 {
		return nil
	}
	return Cheapest(offers)[0]
}

// Summarize computes all three orderings at once
func Summarize(offers []*offer.Offer, weights Weights) (*Ranking, error) {
	byScore, err := Rank(offers, weights)
	if err != nil {
		return nil, err
	}
	return &Ranking{
		ByScore:  byScore,
		Cheapest: Cheapest(offers),
		Fastest:  Fastest(offers),
	}, nil
}

func validate(offers []*offer.Offer) error {
	for _, o := range offers {
		if o == nil {
			return fmt.Errorf("%w: nil offer", shared.ErrInvalidOffer)
		}
		if !o.Price.IsPositive() {
			return fmt.Errorf("%w: offer %s has non-positive price %s", shared.ErrInvalidOffer, o.ID, o.Price)
		}
		if o.LeadTimeDays <= 0 {
			return fmt.Errorf("%w: offer %s has non-positive lead time %d", shared.ErrInvalidOffer, o.ID, o.LeadTimeDays)
		}
	}
	return nil
}

// earlier breaks ties by submission time, then by ID
func earlier(a, b *offer.Offer) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

func clone(offers []*offer.Offer) []*offer.Offer {
	out := make([]*offer.Offer, len(offers))
	copy(out, offers)
	return out
}
