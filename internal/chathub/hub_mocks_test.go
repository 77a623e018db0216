package chathub_test

import (
	"context"
	"sync"
	"time"

	"lovechat/backend/internal/models"
	"lovechat/backend/internal/storage"

	"github.com/stretchr/testify/mock"
)

// MockClient records every event the hub delivers to it.
type MockClient struct {
	id       string
	username string
	peer     string
	lang     string

	mu     sync.Mutex
	events []models.Event
	closed bool
	// refuse makes Deliver fail as a client with a full buffer would.
	refuse bool
}

func newMockClient(id, username, peer string) *MockClient {
	return &MockClient{id: id, username: username, peer: peer, lang: "en"}
}

func (c *MockClient) GetConnectionID() string { return c.id }
func (c *MockClient) GetUsername() string     { return c.username }
func (c *MockClient) GetPeer() string         { return c.peer }
func (c *MockClient) GetLanguage() string     { return c.lang }

func (c *MockClient) Deliver(ev models.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.refuse {
		return false
	}
	c.events = append(c.events, ev)
	return true
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *MockClient) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// EventsOf returns the delivered events of type typ, oldest first.
func (c *MockClient) EventsOf(typ string) []models.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.Event
	for _, ev := range c.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

// MockActivity is a testify mock of storage.ActivityStore.
type MockActivity struct {
	mock.Mock
}

func (m *MockActivity) TouchLastActive(ctx context.Context, username string, at time.Time) error {
	args := m.Called(username)
	return args.Error(0)
}

func (m *MockActivity) GetLastActive(ctx context.Context, username string) (time.Time, error) {
	args := m.Called(username)
	return args.Get(0).(time.Time), args.Error(1)
}

// failingStorage passes reads through but fails every transaction and
// connection detach with err.
type failingStorage struct {
	storage.Storage
	err error
}

func (f *failingStorage) Transaction(ctx context.Context, fn func(tx storage.Storage) error) error {
	return f.err
}

func (f *failingStorage) DetachConnection(ctx context.Context, connectionID string) (*models.Group, error) {
	return nil, f.err
}
