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

type InvitationRepository interface {
	Create(ctx context.Context, targetUserID string, invitation *models.Invitation) error
	ListByUser(ctx context.Context, userID string) ([]models.Invitation, error)
	Delete(ctx context.Context, userID, invitationID string) error
}

type invitationRepo struct {
	db *database.DynamoDBClient
}

func NewInvitationRepository(db *database.DynamoDBClient) InvitationRepository {
	return &invitationRepo{db: db}
}

// Create stores a pending invitation under the invited user's partition.
func (r *invitationRepo) Create(ctx context.Context, targetUserID string, invitation *models.Invitation) error {
	invitation.PK = models.UserPK(targetUserID)
	invitation.SK = models.InviteSK(invitation.InvitationID)

	item, err := attributevalue.MarshalMap(invitation)
	if err != nil {
		return fmt.Errorf("failed to marshal invitation: %w", err)
	}

	_, err = r.db.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.db.Table()),
		Item:      item,
	})

	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}

	return nil
}

func (r *invitationRepo) ListByUser(ctx context.Context, userID string) ([]models.Invitation, error) {
	result, err := r.db.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: models.UserPK(userID)},
			":sk": &types.AttributeValueMemberS{Value: models.InviteSKPrefix()},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to query invitations: %w", err)
	}

	invitations := make([]models.Invitation, 0, len(result.Items))
	for _, item := range result.Items {
		var invitation models.Invitation
		if err := attributevalue.UnmarshalMap(item, &invitation); err != nil {
			return nil, fmt.Errorf("failed to unmarshal invitation: %w", err)
		}
		invitations = append(invitations, invitation)
	}

	return invitations, nil
}

func (r *invitationRepo) Delete(ctx context.Context, userID, invitationID string) error {
	_, err := r.db.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.UserPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: models.InviteSK(invitationID)},
		},
	})

	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}

	return nil
}
