package models

import "time"

// Message is a persisted direct message between two users.
// The auto-increment ID doubles as the insertion-order tiebreak when two
// messages share the same MessageSent timestamp.
type Message struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// SenderUsername is the lower-cased username of the author.
	SenderUsername string `gorm:"type:text;not null;index:idx_msg_pair" json:"senderUsername"`
	// SenderKnownAs is the author's display name at the time of sending.
	SenderKnownAs string `gorm:"type:text" json:"senderKnownAs"`
	// RecipientUsername is the lower-cased username of the addressee.
	RecipientUsername string `gorm:"type:text;not null;index:idx_msg_pair" json:"recipientUsername"`
	// RecipientKnownAs is the addressee's display name at the time of sending.
	RecipientKnownAs string `gorm:"type:text" json:"recipientKnownAs"`

	Content string `gorm:"type:text;not null" json:"content"`

	// MessageSent is set once on creation from the server clock (UTC).
	MessageSent time.Time `gorm:"not null;index" json:"messageSent"`
	// DateRead is nil until the recipient has seen the message. Once set it
	// never changes.
	DateRead *time.Time `json:"dateRead"`

	SenderDeleted    bool `gorm:"not null;default:false" json:"-"`
	RecipientDeleted bool `gorm:"not null;default:false" json:"-"`
}

// IsRead reports whether the recipient has seen the message.
func (m *Message) IsRead() bool {
	return m.DateRead != nil
}

// VisibleTo reports whether username may still see the message, i.e. it is
// one of the two sides and has not deleted it on their side.
func (m *Message) VisibleTo(username string) bool {
	switch username {
	case m.SenderUsername:
		return !m.SenderDeleted
	case m.RecipientUsername:
		return !m.RecipientDeleted
	default:
		return false
	}
}

// Message containers understood by the paged listing.
const (
	ContainerInbox  = "Inbox"
	ContainerOutbox = "Outbox"
	ContainerUnread = "Unread"
)

// MessageParams selects a page of one of a user's message containers.
type MessageParams struct {
	Username   string
	Container  string
	PageNumber int
	PageSize   int
}

// PagedList is one page of a larger result set.
type PagedList[T any] struct {
	Items       []T `json:"items"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalCount  int `json:"totalCount"`
	TotalPages  int `json:"totalPages"`
}

// NewPagedList wraps items with page metadata derived from total.
func NewPagedList[T any](items []T, total, page, size int) *PagedList[T] {
	pages := 0
	if size > 0 {
		pages = (total + size - 1) / size
	}
	if items == nil {
		items = []T{}
	}
	return &PagedList[T]{
		Items:       items,
		CurrentPage: page,
		PageSize:    size,
		TotalCount:  total,
		TotalPages:  pages,
	}
}
