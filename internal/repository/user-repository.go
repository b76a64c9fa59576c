package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/coursecal/coursecal/internal/apperrors"
	"github.com/coursecal/coursecal/internal/database"
	"github.com/coursecal/coursecal/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Exists(ctx context.Context, userID string) (bool, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	FindIDByName(ctx context.Context, displayName string) (string, error)
}

type userRepo struct {
	db     *database.DynamoDBClient
	txRepo database.TransactionRepository
}

func NewUserRepository(db *database.DynamoDBClient, txRepo database.TransactionRepository) UserRepository {
	return &userRepo{db: db, txRepo: txRepo}
}

// Create inserts the user row and its name-index row in one transaction.
// The user row is guarded by insert-if-absent; a concurrent duplicate create
// surfaces as ALREADY_EXISTS, which callers treat as success.
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	user.PK = models.UserPK(user.UserID)
	user.SK = models.UserPK(user.UserID)
	user.CreatedAt = time.Now().UTC()

	userItem, err := attributevalue.MarshalMap(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	nameItem, err := attributevalue.MarshalMap(&models.NameIndex{
		PK: models.NamePK(user.DisplayName),
		SK: models.UserPK(user.UserID),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal name index: %w", err)
	}

	tb := database.NewTransactionBuilder()
	tb.AddPut(types.Put{
		TableName:           aws.String(r.db.Table()),
		Item:                userItem,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	tb.AddPut(types.Put{
		TableName: aws.String(r.db.Table()),
		Item:      nameItem,
	})

	if err := r.txRepo.Execute(ctx, tb); err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			for _, reason := range canceled.CancellationReasons {
				if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
					return apperrors.New(apperrors.CodeAlreadyExists, "user already exists")
				}
			}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepo) Exists(ctx context.Context, userID string) (bool, error) {
	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// GetByID returns nil without error when the user row is absent.
func (r *userRepo) GetByID(ctx context.Context, userID string) (*models.User, error) {
	result, err := r.db.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.UserPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: models.UserPK(userID)},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if result.Item == nil {
		return nil, nil
	}

	var user models.User
	if err := attributevalue.UnmarshalMap(result.Item, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return &user, nil
}

// FindIDByName resolves a display name through the Name# index. Names are not
// unique; the first row the query yields wins. A miss returns "" without error.
func (r *userRepo) FindIDByName(ctx context.Context, displayName string) (string, error) {
	result, err := r.db.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: models.NamePK(displayName)},
			":sk": &types.AttributeValueMemberS{Value: models.UserSKPrefix()},
		},
	})

	if err != nil {
		return "", fmt.Errorf("failed to query name index: %w", err)
	}

	if len(result.Items) == 0 {
		return "", nil
	}

	var index models.NameIndex
	if err := attributevalue.UnmarshalMap(result.Items[0], &index); err != nil {
		return "", fmt.Errorf("failed to unmarshal name index: %w", err)
	}

	return models.ExtractUserID(index.SK)
}
