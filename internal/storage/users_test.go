package storage_test

import (
	"context"
	"testing"
	"time"

	"lovechat/backend/internal/apperr"
	"lovechat/backend/internal/models"
	"lovechat/backend/internal/storage"
	"lovechat/backend/internal/storage/storagetest"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndGetUser(t *testing.T) {
	s := storagetest.NewService(t)
	ctx := context.Background()

	user := &models.User{Username: "Ann", KnownAs: "Annie", Interests: pq.StringArray{"hiking", "jazz"}}
	require.NoError(t, s.SaveUser(ctx, user))
	assert.NotEmpty(t, user.ID)

	found, err := s.GetUserByUsername(ctx, "ANN")
	require.NoError(t, err)
	assert.Equal(t, "ann", found.Username)
	assert.Equal(t, "Annie", found.KnownAs)
	assert.Equal(t, pq.StringArray{"hiking", "jazz"}, found.Interests)
}

func TestSaveUser_UniqueUsername(t *testing.T) {
	s := storagetest.NewService(t)
	ctx := context.Background()

	require.NoError(t, s.SaveUser(ctx, &models.User{Username: "ann"}))
	err := s.SaveUser(ctx, &models.User{Username: "ann"})
	assert.ErrorIs(t, err, apperr.ErrPersistence)
}

// Group names join two usernames with "-", so a name containing it would let
// two different pairs share a group.
func TestSaveUser_RejectsSeparatorInUsername(t *testing.T) {
	s := storagetest.NewService(t)
	ctx := context.Background()

	require.NoError(t, s.SaveUser(ctx, &models.User{Username: "ann"}))
	require.NoError(t, s.SaveUser(ctx, &models.User{Username: "cc"}))

	for _, name := range []string{"b-cc", "ann-b"} {
		err := s.SaveUser(ctx, &models.User{Username: name})
		assert.ErrorIs(t, err, apperr.ErrInvalidOperation, name)

		_, err = s.GetUserByUsername(ctx, name)
		assert.ErrorIs(t, err, apperr.ErrNotFound, name)
	}
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	s := storagetest.NewService(t)

	_, err := s.GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLastActive_WithoutRedis(t *testing.T) {
	s := storagetest.NewService(t)
	ctx := context.Background()

	assert.NoError(t, s.TouchLastActive(ctx, "ann", time.Now()))
	_, err := s.GetLastActive(ctx, "ann")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// TestLastActive_Redis requires Redis running on localhost:6379.
func TestLastActive_Redis(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer client.Close()

	s := storage.NewStorageService(nil, client)
	username := "storage_test_user"
	t.Cleanup(func() { client.HDel(ctx, "user:last_active", username) })

	_, err := s.GetLastActive(ctx, username)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	at := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	require.NoError(t, s.TouchLastActive(ctx, username, at))

	got, err := s.GetLastActive(ctx, username)
	require.NoError(t, err)
	assert.True(t, got.Equal(at))
}
