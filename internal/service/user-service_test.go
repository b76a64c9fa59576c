package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coursecal/coursecal/internal/logger"
)

func TestEnsureUserCreatesOnce(t *testing.T) {
	store := newFakeStore()
	svc := NewUserService(store, logger.Default("test"))
	ctx := context.Background()

	err := svc.EnsureUser(ctx, "1001", "6330000021", "Jane Doe")
	assert.NoError(t, err)

	// second login is a no-op
	err = svc.EnsureUser(ctx, "1001", "6330000021", "Jane Doe")
	assert.NoError(t, err)

	assert.Len(t, store.users, 1)
	assert.Len(t, store.nameIndex["Jane Doe"], 1)
}

func TestResolveUserIDByName(t *testing.T) {
	store := newFakeStore()
	svc := NewUserService(store, logger.Default("test"))
	ctx := context.Background()

	assert.NoError(t, svc.EnsureUser(ctx, "1001", "6330000021", "Jane Doe"))

	userID, err := svc.ResolveUserIDByName(ctx, "Jane Doe")
	assert.NoError(t, err)
	assert.Equal(t, "1001", userID)
}

func TestResolveUserIDByNameMissReturnsEmptyNotError(t *testing.T) {
	store := newFakeStore()
	svc := NewUserService(store, logger.Default("test"))

	userID, err := svc.ResolveUserIDByName(context.Background(), "Jane Doe")
	assert.NoError(t, err)
	assert.Equal(t, "", userID)
}

func TestResolveUserIDByNameFirstMatchWins(t *testing.T) {
	store := newFakeStore()
	svc := NewUserService(store, logger.Default("test"))
	ctx := context.Background()

	assert.NoError(t, svc.EnsureUser(ctx, "1001", "6330000021", "Jane Doe"))
	assert.NoError(t, svc.EnsureUser(ctx, "2002", "6330000022", "Jane Doe"))

	userID, err := svc.ResolveUserIDByName(ctx, "Jane Doe")
	assert.NoError(t, err)
	assert.Equal(t, "1001", userID)
}
