package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/coursecal/coursecal/internal/apperrors"
	"github.com/coursecal/coursecal/internal/database"
	"github.com/coursecal/coursecal/internal/models"
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	Exists(ctx context.Context, eventID string) (bool, error)
	GetByID(ctx context.Context, eventID string) (*models.Event, error)
	ListUserEvents(ctx context.Context, userID string) ([]models.UserEvent, error)
}

type eventRepo struct {
	db *database.DynamoDBClient
}

func NewEventRepository(db *database.DynamoDBClient) EventRepository {
	return &eventRepo{db: db}
}

// Create writes the full event record in a single put. The insert-if-absent
// condition makes the sync pass idempotent per assignment id.
func (r *eventRepo) Create(ctx context.Context, event *models.Event) error {
	event.PK = models.EventPK(event.EventID)
	event.SK = models.EventPK(event.EventID)

	item, err := attributevalue.MarshalMap(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = r.db.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.db.Table()),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})

	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return apperrors.New(apperrors.CodeAlreadyExists, "event already exists")
		}
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

func (r *eventRepo) Exists(ctx context.Context, eventID string) (bool, error) {
	event, err := r.GetByID(ctx, eventID)
	if err != nil {
		return false, err
	}
	return event != nil, nil
}

// GetByID returns nil without error when the event row is absent.
func (r *eventRepo) GetByID(ctx context.Context, eventID string) (*models.Event, error) {
	result, err := r.db.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.EventPK(eventID)},
			"SK": &types.AttributeValueMemberS{Value: models.EventPK(eventID)},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if result.Item == nil {
		return nil, nil
	}

	var event models.Event
	if err := attributevalue.UnmarshalMap(result.Item, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return &event, nil
}

// ListUserEvents returns the user->event membership rows for one user.
func (r *eventRepo) ListUserEvents(ctx context.Context, userID string) ([]models.UserEvent, error) {
	result, err := r.db.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: models.UserPK(userID)},
			":sk": &types.AttributeValueMemberS{Value: models.EventSKPrefix()},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to query user events: %w", err)
	}

	memberships := make([]models.UserEvent, 0, len(result.Items))
	for _, item := range result.Items {
		var membership models.UserEvent
		if err := attributevalue.UnmarshalMap(item, &membership); err != nil {
			return nil, fmt.Errorf("failed to unmarshal user event: %w", err)
		}
		memberships = append(memberships, membership)
	}

	return memberships, nil
}
