// Package storagetest provides an in-memory sqlite storage for tests.
package storagetest

import (
	"context"
	"testing"

	"lovechat/backend/internal/config"
	"lovechat/backend/internal/models"
	"lovechat/backend/internal/storage"

	"gorm.io/gorm/logger"
)

// NewService opens a fresh in-memory sqlite database, migrates it and
// returns a storage service without Redis.
func NewService(t *testing.T) *storage.Service {
	t.Helper()

	db, err := storage.OpenDatabase(config.DriverSQLite, ":memory:", logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return storage.NewStorageService(db, nil)
}

// SeedUsers creates one user per username with KnownAs set to the
// capitalized username.
func SeedUsers(t *testing.T, s storage.Storage, usernames ...string) {
	t.Helper()

	for _, username := range usernames {
		user := &models.User{Username: username, KnownAs: knownAs(username)}
		if err := s.SaveUser(context.Background(), user); err != nil {
			t.Fatalf("failed to seed user %s: %v", username, err)
		}
	}
}

func knownAs(username string) string {
	if username == "" {
		return ""
	}
	b := []byte(username)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
