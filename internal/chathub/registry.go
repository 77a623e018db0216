package chathub

import (
	"log"
	"sync"

	"lovechat/backend/internal/models"

	"github.com/cespare/xxhash/v2"
)

// ConnState is the lifecycle state of a connection inside the hub.
type ConnState int

const (
	StateConnecting ConnState = iota
	StateActive
	StateDisconnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	default:
		return "disconnected"
	}
}

type session struct {
	client Client
	state  ConnState
}

// Registry maps connection ids to live clients. It is the only path events
// take to reach a connection. Ids are spread over independently locked
// shards like presence.Tracker does with usernames.
type Registry struct {
	shards []*registryShard
}

type registryShard struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

// NewRegistry creates a registry with the given number of shards (minimum 1).
func NewRegistry(shards int) *Registry {
	if shards < 1 {
		shards = 1
	}
	r := &Registry{shards: make([]*registryShard, shards)}
	for i := range r.shards {
		r.shards[i] = &registryShard{sessions: make(map[string]*session)}
	}
	return r
}

func (r *Registry) shardFor(id string) *registryShard {
	return r.shards[xxhash.Sum64String(id)%uint64(len(r.shards))]
}

// Add registers c in the Connecting state. It returns false if the id is
// already taken.
func (r *Registry) Add(c Client) bool {
	id := c.GetConnectionID()
	sh := r.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.sessions[id]; ok {
		return false
	}
	sh.sessions[id] = &session{client: c, state: StateConnecting}
	return true
}

// SetState moves a registered connection to st.
func (r *Registry) SetState(id string, st ConnState) bool {
	sh := r.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	s, ok := sh.sessions[id]
	if !ok {
		return false
	}
	s.state = st
	return true
}

// State reports the state of id; unknown ids are Disconnected.
func (r *Registry) State(id string) ConnState {
	sh := r.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	if s, ok := sh.sessions[id]; ok {
		return s.state
	}
	return StateDisconnected
}

// Remove unregisters c. It returns false if c is not the client registered
// under its id.
func (r *Registry) Remove(c Client) bool {
	id := c.GetConnectionID()
	sh := r.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	s, ok := sh.sessions[id]
	if !ok || s.client != c {
		return false
	}
	delete(sh.sessions, id)
	return true
}

func (r *Registry) Len() int {
	n := 0
	for _, sh := range r.shards {
		sh.mu.RLock()
		n += len(sh.sessions)
		sh.mu.RUnlock()
	}
	return n
}

func (r *Registry) get(id string) Client {
	sh := r.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	if s, ok := sh.sessions[id]; ok {
		return s.client
	}
	return nil
}

// SendTo delivers ev to one connection. A client that cannot take the event
// is closed; its read pump then runs the normal disconnect.
func (r *Registry) SendTo(id string, ev models.Event) bool {
	c := r.get(id)
	if c == nil {
		return false
	}
	if !c.Deliver(ev) {
		log.Printf("WARNING: dropping event %s for connection %s, closing it", ev.Type, id)
		c.Close()
		return false
	}
	return true
}

// SendToMany delivers ev to every id and returns how many accepted it.
func (r *Registry) SendToMany(ids []string, ev models.Event) int {
	n := 0
	for _, id := range ids {
		if r.SendTo(id, ev) {
			n++
		}
	}
	return n
}
