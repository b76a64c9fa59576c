package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/coursecal/coursecal/internal/database"
	"github.com/coursecal/coursecal/internal/models"
)

type MembershipRepository interface {
	Join(ctx context.Context, userID, eventID, displayName, dateISO string) error
	Leave(ctx context.Context, userID, eventID string) error
	MembersOf(ctx context.Context, eventID string) ([]string, error)
}

type membershipRepo struct {
	db     *database.DynamoDBClient
	txRepo database.TransactionRepository
}

func NewMembershipRepository(db *database.DynamoDBClient, txRepo database.TransactionRepository) MembershipRepository {
	return &membershipRepo{db: db, txRepo: txRepo}
}

// Join writes both inverse membership rows in one transaction so the pair
// cannot diverge.
func (r *membershipRepo) Join(ctx context.Context, userID, eventID, displayName, dateISO string) error {
	userEvent, err := attributevalue.MarshalMap(&models.UserEvent{
		PK:    models.UserPK(userID),
		SK:    models.EventPK(eventID),
		Dates: dateISO,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal user event: %w", err)
	}

	eventMember, err := attributevalue.MarshalMap(&models.EventMember{
		PK:   models.EventPK(eventID),
		SK:   models.UserPK(userID),
		Name: displayName,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event member: %w", err)
	}

	tb := database.NewTransactionBuilder()
	tb.AddPut(types.Put{TableName: aws.String(r.db.Table()), Item: userEvent})
	tb.AddPut(types.Put{TableName: aws.String(r.db.Table()), Item: eventMember})

	if err := r.txRepo.Execute(ctx, tb); err != nil {
		return fmt.Errorf("failed to create user-event relation: %w", err)
	}

	return nil
}

// Leave deletes both inverse rows in one transaction.
func (r *membershipRepo) Leave(ctx context.Context, userID, eventID string) error {
	tb := database.NewTransactionBuilder()
	tb.AddDelete(types.Delete{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.UserPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: models.EventPK(eventID)},
		},
	})
	tb.AddDelete(types.Delete{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.EventPK(eventID)},
			"SK": &types.AttributeValueMemberS{Value: models.UserPK(userID)},
		},
	})

	if err := r.txRepo.Execute(ctx, tb); err != nil {
		return fmt.Errorf("failed to delete user-event relation: %w", err)
	}

	return nil
}

// MembersOf projects the display names from the event->user rows.
func (r *membershipRepo) MembersOf(ctx context.Context, eventID string) ([]string, error) {
	result, err := r.db.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: models.EventPK(eventID)},
			":sk": &types.AttributeValueMemberS{Value: models.UserSKPrefix()},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to query event members: %w", err)
	}

	names := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		var member models.EventMember
		if err := attributevalue.UnmarshalMap(item, &member); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event member: %w", err)
		}
		names = append(names, member.Name)
	}

	return names, nil
}
