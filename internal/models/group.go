package models

import (
	"strings"
	"time"
)

// GroupSeparator joins the two usernames of a group name. Usernames may not
// contain it (see ValidUsername), so a name maps back to exactly one pair.
const GroupSeparator = "-"

// Group is the durable record of a two-party chat room.
// It survives with zero connections so both participants always reattach
// to the same row.
type Group struct {
	// Name is the canonical pair name produced by GroupName.
	Name string `gorm:"primaryKey;type:text" json:"name"`
	// Connections are the live transport sessions currently attached.
	Connections []Connection `gorm:"foreignKey:GroupName;references:Name;constraint:OnDelete:CASCADE" json:"connections"`
	// CreatedAt is when the pair first opened the thread.
	CreatedAt time.Time `json:"createdAt"`
}

// ConnectionIDs returns the ids of all attached connections.
func (g *Group) ConnectionIDs() []string {
	ids := make([]string, 0, len(g.Connections))
	for _, c := range g.Connections {
		ids = append(ids, c.ConnectionID)
	}
	return ids
}

// Connection pairs a transport connection id with the user that opened it.
type Connection struct {
	ConnectionID string `gorm:"primaryKey;type:text" json:"connectionId"`
	Username     string `gorm:"type:text;not null" json:"username"`
	GroupName    string `gorm:"type:text;not null;index" json:"-"`
}

// GroupName returns the canonical room name for a user pair. Both orderings
// of the arguments produce the same name.
func GroupName(caller, other string) string {
	caller, other = NormalizeUsername(caller), NormalizeUsername(other)
	if caller < other {
		return caller + GroupSeparator + other
	}
	return other + GroupSeparator + caller
}

// NormalizeUsername lower-cases and trims a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
