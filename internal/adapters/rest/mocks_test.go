package rest

import (
	"context"
	"time"

	"freight-bid-service/internal/domain/auction"
	"freight-bid-service/internal/domain/offer"
	"freight-bid-service/internal/domain/scoring"
	"freight-bid-service/internal/domain/shared"
	"freight-bid-service/internal/ports/inbound"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type auctionServiceMock struct{ mock.Mock }

func auctionResult(args mock.Arguments) (*auction.Auction, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auction.Auction), args.Error(1)
}

func (m *auctionServiceMock) CreateAuction(ctx context.Context, actor shared.Participant, req inbound.CreateAuctionRequest) (*auction.Auction, error) {
	return auctionResult(m.Called(ctx, actor, req))
}

func (m *auctionServiceMock) GetAuction(ctx context.Context, id uuid.UUID) (*auction.Auction, error) {
	return auctionResult(m.Called(ctx, id))
}

func (m *auctionServiceMock) GetAuctionByCode(ctx context.Context, code string) (*auction.Auction, error) {
	return auctionResult(m.Called(ctx, code))
}

func (m *auctionServiceMock) ListAuctions(ctx context.Context, req inbound.ListAuctionsRequest) ([]*auction.Auction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auction.Auction), args.Error(1)
}

func (m *auctionServiceMock) GetRanking(ctx context.Context, id uuid.UUID) (*scoring.Ranking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scoring.Ranking), args.Error(1)
}

func (m *auctionServiceMock) CloseAuction(ctx context.Context, actor shared.Participant, id uuid.UUID) (*auction.Auction, error) {
	return auctionResult(m.Called(ctx, actor, id))
}

func (m *auctionServiceMock) SelectWinner(ctx context.Context, actor shared.Participant, id, offerID uuid.UUID, note string) (*auction.Auction, error) {
	return auctionResult(m.Called(ctx, actor, id, offerID, note))
}

func (m *auctionServiceMock) ApproveWinner(ctx context.Context, actor shared.Participant, id uuid.UUID) (*auction.Auction, error) {
	return auctionResult(m.Called(ctx, actor, id))
}

func (m *auctionServiceMock) RejectWinner(ctx context.Context, actor shared.Participant, id uuid.UUID, reason string) (*auction.Auction, error) {
	return auctionResult(m.Called(ctx, actor, id, reason))
}

func (m *auctionServiceMock) FinalizeDeserted(ctx context.Context, actor shared.Participant, id uuid.UUID, override bool) (*auction.Auction, error) {
	return auctionResult(m.Called(ctx, actor, id, override))
}

func (m *auctionServiceMock) ExtendDeadline(ctx context.Context, actor shared.Participant, id uuid.UUID, deadline time.Time) (*auction.Auction, error) {
	return auctionResult(m.Called(ctx, actor, id, deadline))
}

type offerServiceMock struct{ mock.Mock }

func (m *offerServiceMock) SubmitOffer(ctx context.Context, carrier shared.Participant, req inbound.SubmitOfferRequest) (*inbound.SubmitResult, error) {
	args := m.Called(ctx, carrier, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.SubmitResult), args.Error(1)
}

func (m *offerServiceMock) ListOffers(ctx context.Context, id uuid.UUID) ([]*offer.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*offer.Offer), args.Error(1)
}

type identityMock struct{ mock.Mock }

func (m *identityMock) Resolve(ctx context.Context, id uuid.UUID) (*shared.Participant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Participant), args.Error(1)
}

func (m *identityMock) Register(ctx context.Context, p *shared.Participant) error {
	return m.Called(ctx, p).Error(0)
}
