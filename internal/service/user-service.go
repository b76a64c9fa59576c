package service

import (
	"context"
	"errors"

	"github.com/coursecal/coursecal/internal/apperrors"
	"github.com/coursecal/coursecal/internal/logger"
	"github.com/coursecal/coursecal/internal/models"
	"github.com/coursecal/coursecal/internal/repository"
)

type UserService interface {
	EnsureUser(ctx context.Context, userID, studentID, displayName string) error
	ResolveUserIDByName(ctx context.Context, displayName string) (string, error)
}

type userService struct {
	userRepo repository.UserRepository
	logger   *logger.Logger
}

func NewUserService(userRepo repository.UserRepository, logger *logger.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// EnsureUser creates the user and its name-index row on first login. A lost
// race against a concurrent first login resolves to the same outcome, so the
// ALREADY_EXISTS from the conditional write is swallowed.
func (s *userService) EnsureUser(ctx context.Context, userID, studentID, displayName string) error {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to check user existence")
	}
	if exists {
		return nil
	}

	err = s.userRepo.Create(ctx, &models.User{
		UserID:      userID,
		StudentID:   studentID,
		DisplayName: displayName,
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.CodeAlreadyExists {
			return nil
		}
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create user")
	}

	s.logger.Info("user created", "user_id", userID)
	return nil
}

// ResolveUserIDByName returns "" when no name-index row matches. Ambiguity on
// shared display names is unresolved: the first match wins.
func (s *userService) ResolveUserIDByName(ctx context.Context, displayName string) (string, error) {
	userID, err := s.userRepo.FindIDByName(ctx, displayName)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to resolve user by name")
	}
	return userID, nil
}
