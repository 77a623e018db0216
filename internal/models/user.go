package models

import (
	"regexp"
	"time"

	"lovechat/backend/internal/apperr"

	"github.com/google/uuid"
	"github.com/lib/pq" // pq.StringArray for interests
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_.]{2,32}$`)

// User is the part of a member profile the messaging hub needs: a stable
// username for routing and a display name for notifications.
type User struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;not null" json:"username"`
	KnownAs   string         `json:"knownAs"`
	Gender    string         `json:"gender"`
	City      string         `json:"city"`
	Interests pq.StringArray `gorm:"type:text" json:"interests"`
	Created   time.Time      `json:"created"`
}

// BeforeCreate is a GORM hook that assigns a UUID and normalizes the
// username before the row is inserted. Usernames outside the allowed
// alphabet are rejected so that group names stay unambiguous.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	u.Username = NormalizeUsername(u.Username)
	if !ValidUsername(u.Username) {
		return apperr.InvalidOperation("invalid username")
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Created.IsZero() {
		u.Created = time.Now().UTC()
	}
	return
}

// DisplayName returns KnownAs, falling back to the username.
func (u *User) DisplayName() string {
	if u.KnownAs != "" {
		return u.KnownAs
	}
	return u.Username
}

// ValidUsername reports whether username is acceptable as an identity key.
// The group separator is excluded from the allowed characters.
func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}
