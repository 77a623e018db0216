// Package thread implements the read, append and read-receipt operations on
// the message thread between two users.
package thread

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"lovechat/backend/internal/apperr"
	"lovechat/backend/internal/config"
	"lovechat/backend/internal/models"
	"lovechat/backend/internal/storage"
)

// Service operates on threads through a Storage. Use WithStorage to run the
// same operations inside a transaction.
type Service struct {
	Storage storage.Storage
	// Now is the server clock; tests replace it.
	Now func() time.Time
	// MaxLength caps message content in runes.
	MaxLength int
}

// NewService creates a thread service with the real clock.
func NewService(s storage.Storage, maxLength int) *Service {
	if maxLength <= 0 {
		maxLength = config.DefaultMaxMessageLength
	}
	return &Service{
		Storage:   s,
		Now:       func() time.Time { return time.Now().UTC() },
		MaxLength: maxLength,
	}
}

// WithStorage returns a copy of the service that uses st, typically a
// transaction handed out by Storage.Transaction.
func (s *Service) WithStorage(st storage.Storage) *Service {
	cp := *s
	cp.Storage = st
	return &cp
}

// AppendOption tweaks a message before it is inserted.
type AppendOption func(*models.Message)

// MarkedRead stamps the read time at creation. Used when the recipient is
// looking at the thread while the message is sent.
func MarkedRead() AppendOption {
	return func(m *models.Message) {
		read := m.MessageSent
		m.DateRead = &read
	}
}

// GetThread returns the messages between viewer and other, oldest first,
// hiding those viewer has deleted on their side.
func (s *Service) GetThread(ctx context.Context, viewer, other string) ([]models.Message, error) {
	return s.Storage.GetMessageThread(ctx, models.NormalizeUsername(viewer), models.NormalizeUsername(other))
}

// AppendMessage validates and stores a new message from sender to recipient.
func (s *Service) AppendMessage(ctx context.Context, sender, recipient, content string, opts ...AppendOption) (*models.Message, error) {
	sender, recipient = models.NormalizeUsername(sender), models.NormalizeUsername(recipient)
	if sender == recipient {
		return nil, apperr.InvalidOperation("self-message")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.InvalidOperation("empty message")
	}
	if utf8.RuneCountInString(content) > s.MaxLength {
		return nil, apperr.InvalidOperation("message too long")
	}

	to, err := s.Storage.GetUserByUsername(ctx, recipient)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("recipient")
		}
		return nil, err
	}
	from, err := s.Storage.GetUserByUsername(ctx, sender)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("sender")
		}
		return nil, err
	}

	msg := &models.Message{
		SenderUsername:    from.Username,
		SenderKnownAs:     from.DisplayName(),
		RecipientUsername: to.Username,
		RecipientKnownAs:  to.DisplayName(),
		Content:           content,
		MessageSent:       s.Now(),
	}
	for _, opt := range opts {
		opt(msg)
	}

	if err := s.Storage.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// MarkRead sets the read time of msg if it has none yet. Calling it again is
// a no-op. msg.DateRead reflects the stored value afterwards.
func (s *Service) MarkRead(ctx context.Context, msg *models.Message) error {
	if msg.IsRead() {
		return nil
	}
	if _, err := s.Storage.MarkMessageRead(ctx, msg.ID, s.Now()); err != nil {
		return err
	}
	stored, err := s.Storage.GetMessage(ctx, msg.ID)
	if err != nil {
		return err
	}
	msg.DateRead = stored.DateRead
	return nil
}

// MarkThreadRead marks every unread message from other to viewer as read now
// and returns how many changed.
func (s *Service) MarkThreadRead(ctx context.Context, viewer, other string) (int64, error) {
	return s.Storage.MarkThreadRead(ctx, models.NormalizeUsername(viewer), models.NormalizeUsername(other), s.Now())
}

// CatchUp marks the viewer's unread messages from other as read and returns
// the thread as the viewer now sees it. Run it on a transactional service so
// the snapshot includes the new read state.
func (s *Service) CatchUp(ctx context.Context, viewer, other string) ([]models.Message, error) {
	if _, err := s.MarkThreadRead(ctx, viewer, other); err != nil {
		return nil, err
	}
	return s.GetThread(ctx, viewer, other)
}

// GetMessagesForUser returns a page of the user's Inbox, Outbox or Unread
// container. Unknown containers fall back to Unread.
func (s *Service) GetMessagesForUser(ctx context.Context, params models.MessageParams) (*models.PagedList[models.Message], error) {
	params.Username = models.NormalizeUsername(params.Username)
	if params.PageNumber < 1 {
		params.PageNumber = 1
	}
	if params.PageSize < 1 {
		params.PageSize = config.DefaultPageSize
	}
	if params.PageSize > config.MaxPageSize {
		params.PageSize = config.MaxPageSize
	}

	messages, total, err := s.Storage.GetMessagesForUser(ctx, params)
	if err != nil {
		return nil, err
	}
	return models.NewPagedList(messages, int(total), params.PageNumber, params.PageSize), nil
}

// DeleteMessage hides the message from username's side of the thread. The
// row itself is kept for the other participant.
func (s *Service) DeleteMessage(ctx context.Context, id uint, username string) error {
	username = models.NormalizeUsername(username)

	msg, err := s.Storage.GetMessage(ctx, id)
	if err != nil {
		return err
	}

	if username != msg.SenderUsername && username != msg.RecipientUsername {
		return apperr.InvalidOperation("not a participant of this message")
	}
	// already hidden on this side
	if !msg.VisibleTo(username) {
		return apperr.NotFound("message")
	}

	if username == msg.SenderUsername {
		msg.SenderDeleted = true
	} else {
		msg.RecipientDeleted = true
	}
	return s.Storage.UpdateMessageDeleted(ctx, msg)
}
