package storage

import (
	"context"
	"errors"
	"time"

	"lovechat/backend/internal/apperr"

	"github.com/redis/go-redis/v9"
)

const lastActiveKey = "user:last_active"

// TouchLastActive records that username was seen at the given time.
func (s *Service) TouchLastActive(ctx context.Context, username string, at time.Time) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.HSet(ctx, lastActiveKey, username, at.Unix()).Err()
}

// GetLastActive returns when username was last seen by the hub.
func (s *Service) GetLastActive(ctx context.Context, username string) (time.Time, error) {
	if s.Redis == nil {
		return time.Time{}, apperr.NotFound("last active")
	}
	unix, err := s.Redis.HGet(ctx, lastActiveKey, username).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, apperr.NotFound("last active")
	}
	if err != nil {
		return time.Time{}, apperr.Persistence("get last active", err)
	}
	return time.Unix(unix, 0).UTC(), nil
}
