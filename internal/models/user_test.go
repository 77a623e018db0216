package models_test

import (
	"reflect"
	"testing"

	"lovechat/backend/internal/apperr"
	"lovechat/backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

// TestUserBeforeCreate_GeneratesUUID verifies that the BeforeCreate hook generates a valid UUID.
func TestUserBeforeCreate_GeneratesUUID(t *testing.T) {
	// Arrange
	user := &models.User{
		Username:  "ann",
		KnownAs:   "Ann",
		Interests: pq.StringArray{"music", "travel"},
	}
	assert.Empty(t, user.ID, "User ID should be empty before BeforeCreate")

	// Act
	err := user.BeforeCreate(nil)

	// Assert
	assert.NoError(t, err)
	parsed, parseErr := uuid.Parse(user.ID)
	assert.NoError(t, parseErr, "User ID must be a valid UUID string")
	assert.NotEqual(t, uuid.Nil, parsed)
	assert.False(t, user.Created.IsZero(), "Created should be stamped")
}

// TestUserBeforeCreate_PreservesExistingID verifies that the hook doesn't overwrite an existing ID.
func TestUserBeforeCreate_PreservesExistingID(t *testing.T) {
	existingID := uuid.New().String()
	user := &models.User{ID: existingID, Username: "bob"}

	err := user.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.Equal(t, existingID, user.ID)
}

func TestUserBeforeCreate_NormalizesUsername(t *testing.T) {
	user := &models.User{Username: "  Ann.Smith "}

	assert.NoError(t, user.BeforeCreate(nil))
	assert.Equal(t, "ann.smith", user.Username)
}

func TestUserBeforeCreate_RejectsInvalidUsername(t *testing.T) {
	for _, name := range []string{"b-c", "ann-b", "x", "", "ann smith"} {
		user := &models.User{Username: name}
		assert.ErrorIs(t, user.BeforeCreate(nil), apperr.ErrInvalidOperation, name)
		assert.Empty(t, user.ID, name)
	}
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Annie", (&models.User{Username: "ann", KnownAs: "Annie"}).DisplayName())
	assert.Equal(t, "ann", (&models.User{Username: "ann"}).DisplayName())
}

// TestUserStructTags guards the tags the storage layer relies on.
func TestUserStructTags(t *testing.T) {
	userType := reflect.TypeOf(models.User{})

	idField, found := userType.FieldByName("ID")
	assert.True(t, found)
	assert.Contains(t, idField.Tag.Get("gorm"), "primaryKey")

	usernameField, found := userType.FieldByName("Username")
	assert.True(t, found)
	assert.Contains(t, usernameField.Tag.Get("gorm"), "uniqueIndex", "Username lookups must be unique")
}

func TestValidUsername(t *testing.T) {
	tests := []struct {
		username string
		valid    bool
	}{
		{"ann", true},
		{"bob_99", true},
		{"mary.jane", true},
		{"a", false},
		{"ann-bob", false},
		{"Ann", false},
		{"", false},
		{"this_username_is_way_too_long_for_us", false},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			assert.Equal(t, tt.valid, models.ValidUsername(tt.username))
		})
	}
}
