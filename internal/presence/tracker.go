// Package presence tracks which users currently hold at least one open
// connection. State lives only in memory and is rebuilt from reconnecting
// clients after a restart.
package presence

import (
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Tracker maps usernames to their open connection ids. Users are spread over
// independently locked shards so connect/disconnect storms for different
// users do not contend on one mutex.
type Tracker struct {
	shards []*shard
}

type shard struct {
	mu    sync.Mutex
	users map[string]map[string]struct{}
}

// NewTracker creates a tracker with the given number of shards (minimum 1).
func NewTracker(shards int) *Tracker {
	if shards < 1 {
		shards = 1
	}
	t := &Tracker{shards: make([]*shard, shards)}
	for i := range t.shards {
		t.shards[i] = &shard{users: make(map[string]map[string]struct{})}
	}
	return t
}

func (t *Tracker) shardFor(username string) *shard {
	return t.shards[xxhash.Sum64String(username)%uint64(len(t.shards))]
}

// UserConnected records connectionID for username. It returns true when this
// is the user's first open connection (offline to online).
func (t *Tracker) UserConnected(username, connectionID string) bool {
	s := t.shardFor(username)
	s.mu.Lock()
	defer s.mu.Unlock()

	conns, ok := s.users[username]
	if !ok {
		conns = make(map[string]struct{})
		s.users[username] = conns
	}
	conns[connectionID] = struct{}{}
	return !ok
}

// UserDisconnected forgets connectionID. It returns true when the user has no
// connections left (online to offline). Unknown ids are ignored.
func (t *Tracker) UserDisconnected(username, connectionID string) bool {
	s := t.shardFor(username)
	s.mu.Lock()
	defer s.mu.Unlock()

	conns, ok := s.users[username]
	if !ok {
		return false
	}
	if _, ok := conns[connectionID]; !ok {
		return false
	}
	delete(conns, connectionID)
	if len(conns) == 0 {
		delete(s.users, username)
		return true
	}
	return false
}

// GetConnectionsForUser returns a sorted snapshot of the user's connection
// ids, or nil when the user is offline.
func (t *Tracker) GetConnectionsForUser(username string) []string {
	s := t.shardFor(username)
	s.mu.Lock()
	conns, ok := s.users[username]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	ids := make([]string, 0, len(conns))
	for id := range conns {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	sort.Strings(ids)
	return ids
}

// IsOnline reports whether username has at least one open connection.
func (t *Tracker) IsOnline(username string) bool {
	s := t.shardFor(username)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[username]
	return ok
}

// GetOnlineUsers returns a sorted snapshot of every online username.
func (t *Tracker) GetOnlineUsers() []string {
	users := make([]string, 0)
	for _, s := range t.shards {
		s.mu.Lock()
		for username := range s.users {
			users = append(users, username)
		}
		s.mu.Unlock()
	}
	sort.Strings(users)
	return users
}

// GetAllConnections returns every open connection id across all users.
func (t *Tracker) GetAllConnections() []string {
	var ids []string
	for _, s := range t.shards {
		s.mu.Lock()
		for _, conns := range s.users {
			for id := range conns {
				ids = append(ids, id)
			}
		}
		s.mu.Unlock()
	}
	return ids
}
