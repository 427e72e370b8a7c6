package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"freight-bid-service/internal/domain/offer"
	"freight-bid-service/internal/domain/scoring"
	"freight-bid-service/internal/domain/shared"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

type OfferRepository struct {
	api   API
	table string
}

func NewOfferRepository(api API, table string) *OfferRepository {
	return &OfferRepository{api: api, table: table}
}

func (r *OfferRepository) Create(ctx context.Context, o *offer.Offer) error {
	item, err := attributevalue.MarshalMap(toOfferItem(o))
	if err != nil {
		return fmt.Errorf("failed to marshal offer: %w", err)
	}

	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.table),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return fmt.Errorf("create offer %s: %w", o.ID, shared.ErrDuplicateID)
		}
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

func (r *OfferRepository) GetByID(ctx context.Context, id uuid.UUID) (*offer.Offer, error) {
	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, shared.ErrOfferNotFound
	}
	return unmarshalOffer(out.Item)
}

// ListByAuction queries the auction index, which is sorted by created_at
func (r *OfferRepository) ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*offer.Offer, error) {
	input := r.auctionQuery(auctionID, types.SelectAllAttributes)

	offers := []*offer.Offer{}
	for {
		out, err := r.api.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to list offers: %w", err)
		}
		for _, item := range out.Items {
			o, err := unmarshalOffer(item)
			if err != nil {
				return nil, err
			}
			offers = append(offers, o)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	// equal created_at values come back in index order, pin them by id
	sort.SliceStable(offers, func(i, j int) bool {
		if !offers[i].CreatedAt.Equal(offers[j].CreatedAt) {
			return offers[i].CreatedAt.Before(offers[j].CreatedAt)
		}
		return offers[i].ID.String() < offers[j].ID.String()
	})
	return offers, nil
}

func (r *OfferRepository) GetLeader(ctx context.Context, auctionID uuid.UUID) (*offer.Offer, error) {
	offers, err := r.ListByAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	leader := scoring.Leader(offers)
	if leader == nil {
		return nil, shared.ErrNoOffers
	}
	return leader, nil
}

func (r *OfferRepository) CountByAuction(ctx context.Context, auctionID uuid.UUID) (int, error) {
	input := r.auctionQuery(auctionID, types.SelectCount)

	total := 0
	for {
		out, err := r.api.Query(ctx, input)
		if err != nil {
			return 0, fmt.Errorf("failed to count offers: %w", err)
		}
		total += int(out.Count)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return total, nil
}

func (r *OfferRepository) auctionQuery(auctionID uuid.UUID, sel types.Select) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:                aws.String(r.table),
		IndexName:                aws.String(auctionIndex),
		KeyConditionExpression:   aws.String("#auction = :auction"),
		ExpressionAttributeNames: map[string]string{"#auction": "auction_id"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":auction": &types.AttributeValueMemberS{Value: auctionID.String()},
		},
		ScanIndexForward: aws.Bool(true),
		Select:           sel,
	}
}

func unmarshalOffer(item map[string]types.AttributeValue) (*offer.Offer, error) {
	var it offerItem
	if err := attributevalue.UnmarshalMap(item, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal offer: %w", err)
	}
	return fromOfferItem(it)
}
