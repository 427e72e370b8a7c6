package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"freight-bid-service/internal/domain/auction"
	"freight-bid-service/internal/domain/shared"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

type AuctionRepository struct {
	api   API
	table string
}

func NewAuctionRepository(api API, table string) *AuctionRepository {
	return &AuctionRepository{api: api, table: table}
}

// Create stores a new auction. Code uniqueness is checked against the code
// index first, the item itself is written only if the id is unused.
func (r *AuctionRepository) Create(ctx context.Context, a *auction.Auction) error {
	taken, err := r.CodeExists(ctx, a.Code)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("create auction %s: %w", a.Code, shared.ErrCodeTaken)
	}

	item, err := attributevalue.MarshalMap(toAuctionItem(a))
	if err != nil {
		return fmt.Errorf("failed to marshal auction: %w", err)
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
			return fmt.Errorf("create auction %s: %w", a.ID, shared.ErrDuplicateID)
		}
		return fmt.Errorf("failed to create auction: %w", err)
	}
	return nil
}

func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*auction.Auction, error) {
	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, shared.ErrAuctionNotFound
	}
	return unmarshalAuction(out.Item)
}

func (r *AuctionRepository) GetByCode(ctx context.Context, code string) (*auction.Auction, error) {
	out, err := r.queryCode(ctx, code, types.SelectAllAttributes)
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, shared.ErrAuctionNotFound
	}
	return unmarshalAuction(out.Items[0])
}

func (r *AuctionRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	out, err := r.queryCode(ctx, code, types.SelectCount)
	if err != nil {
		return false, err
	}
	return out.Count > 0, nil
}

func (r *AuctionRepository) queryCode(ctx context.Context, code string, sel types.Select) (*dynamodb.QueryOutput, error) {
	out, err := r.api.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String(codeIndex),
		KeyConditionExpression:    aws.String("#code = :code"),
		ExpressionAttributeNames:  map[string]string{"#code": "code"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":code": &types.AttributeValueMemberS{Value: code}},
		Select:                    sel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query auction code: %w", err)
	}
	return out, nil
}

// List scans the table and pages in memory, newest first
func (r *AuctionRepository) List(ctx context.Context, status *auction.Status, page, pageSize int) ([]*auction.Auction, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(r.table)}
	if status != nil {
		input.FilterExpression = aws.String("#status = :status")
		input.ExpressionAttributeNames = map[string]string{"#status": "status"}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(*status)},
		}
	}

	var all []*auction.Auction
	for {
		out, err := r.api.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to list auctions: %w", err)
		}
		for _, item := range out.Items {
			a, err := unmarshalAuction(item)
			if err != nil {
				return nil, err
			}
			all = append(all, a)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].Code < all[j].Code
	})

	start := (page - 1) * pageSize
	if start >= len(all) {
		return []*auction.Auction{}, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

// UpdateIfStatus replaces the item only while the stored status equals
// expected. The old item returned on a failed condition tells a missing
// auction apart from a status conflict.
func (r *AuctionRepository) UpdateIfStatus(ctx context.Context, a *auction.Auction, expected auction.Status) error {
	item, err := attributevalue.MarshalMap(toAuctionItem(a))
	if err != nil {
		return fmt.Errorf("failed to marshal auction: %w", err)
	}

	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                           aws.String(r.table),
		Item:                                item,
		ConditionExpression:                 aws.String("attribute_exists(#id) AND #status = :expected"),
		ExpressionAttributeNames:            map[string]string{"#id": "id", "#status": "status"},
		ExpressionAttributeValues:           map[string]types.AttributeValue{":expected": &types.AttributeValueMemberS{Value: string(expected)}},
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err == nil {
		return nil
	}

	var cfe *types.ConditionalCheckFailedException
	if errors.As(err, &cfe) {
		if len(cfe.Item) == 0 {
			return shared.ErrAuctionNotFound
		}
		return fmt.Errorf("update auction %s: %w", a.ID, shared.ErrStatusConflict)
	}
	return fmt.Errorf("failed to update auction: %w", err)
}

func unmarshalAuction(item map[string]types.AttributeValue) (*auction.Auction, error) {
	var it auctionItem
	if err := attributevalue.UnmarshalMap(item, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal auction: %w", err)
	}
	return fromAuctionItem(it)
}

func idKey(id uuid.UUID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id.String()}}
}
