package dynamo

import (
	"context"
	"errors"
	"fmt"

	"freight-bid-service/internal/domain/shared"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

type ParticipantRepository struct {
	api   API
	table string
}

func NewParticipantRepository(api API, table string) *ParticipantRepository {
	return &ParticipantRepository{api: api, table: table}
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*shared.Participant, error) {
	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       idKey(id),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, shared.ErrParticipantNotFound
	}

	var it participantItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal participant: %w", err)
	}
	return fromParticipantItem(it)
}

func (r *ParticipantRepository) Create(ctx context.Context, p *shared.Participant) error {
	item, err := attributevalue.MarshalMap(toParticipantItem(p))
	if err != nil {
		return fmt.Errorf("failed to marshal participant: %w", err)
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
			return fmt.Errorf("create participant %s: %w", p.ID, shared.ErrDuplicateID)
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}
