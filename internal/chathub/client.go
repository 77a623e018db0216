package chathub

import "lovechat/backend/internal/models"

// Client is the interface for any type of hub connection.
// It abstracts the underlying transport so the hub can manage WebSocket
// connections and test doubles uniformly.
type Client interface {
	// GetConnectionID returns the transport-assigned id, unique per connection.
	GetConnectionID() string
	// GetUsername returns the authenticated user behind the connection.
	GetUsername() string
	// GetPeer returns the username whose thread the client opened, or ""
	// when the client only tracks presence.
	GetPeer() string
	// GetLanguage returns the language used for error messages.
	GetLanguage() string

	// Deliver queues an event for the client without blocking. It returns
	// false when the client is closed or cannot keep up.
	Deliver(ev models.Event) bool

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts the outgoing side down. It is safe to call more than once.
	Close()
}
