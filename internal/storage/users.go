package storage

import (
	"context"
	"errors"
	"log"

	"lovechat/backend/internal/apperr"
	"lovechat/backend/internal/models"

	"gorm.io/gorm"
)

// SaveUser inserts a new user.
func (s *Service) SaveUser(ctx context.Context, user *models.User) error {
	if err := s.db(ctx).Create(user).Error; err != nil {
		if errors.Is(err, apperr.ErrInvalidOperation) {
			return err
		}
		log.Printf("ERROR: Failed to save user %s: %v", user.Username, err)
		return apperr.Persistence("save user", err)
	}
	return nil
}

// GetUserByUsername resolves a username to its user row.
func (s *Service) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db(ctx).Where("username = ?", models.NormalizeUsername(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, apperr.Persistence("get user", err)
	}
	return &user, nil
}
