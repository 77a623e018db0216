package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"lovechat/backend/internal/apperr"
	"lovechat/backend/internal/models"

	"gorm.io/gorm"
)

// CreateMessage inserts msg and fills in its ID.
func (s *Service) CreateMessage(ctx context.Context, msg *models.Message) error {
	if err := s.db(ctx).Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message from %s to %s: %v", msg.SenderUsername, msg.RecipientUsername, err)
		return apperr.Persistence("create message", err)
	}
	return nil
}

// GetMessage returns one message by ID.
func (s *Service) GetMessage(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	err := s.db(ctx).First(&msg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("message")
	}
	if err != nil {
		return nil, apperr.Persistence("get message", err)
	}
	return &msg, nil
}

// GetMessageThread returns the messages between viewer and other that viewer
// has not deleted, oldest first. Equal timestamps keep insertion order.
func (s *Service) GetMessageThread(ctx context.Context, viewer, other string) ([]models.Message, error) {
	var messages []models.Message
	err := s.db(ctx).
		Where("recipient_username = ? AND sender_username = ? AND recipient_deleted = ?", viewer, other, false).
		Or("recipient_username = ? AND sender_username = ? AND sender_deleted = ?", other, viewer, false).
		Order("message_sent asc").
		Order("id asc").
		Find(&messages).Error
	if err != nil {
		log.Printf("ERROR: Failed to get thread %s/%s: %v", viewer, other, err)
		return nil, apperr.Persistence("get thread", err)
	}
	return messages, nil
}

// MarkMessageRead sets date_read only if it is still NULL. It returns false
// when the message was already read (or does not exist).
func (s *Service) MarkMessageRead(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := s.db(ctx).Model(&models.Message{}).
		Where("id = ? AND date_read IS NULL", id).
		Update("date_read", at)
	if res.Error != nil {
		return false, apperr.Persistence("mark message read", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MarkThreadRead marks every unread message sent by other to viewer.
func (s *Service) MarkThreadRead(ctx context.Context, viewer, other string, at time.Time) (int64, error) {
	res := s.db(ctx).Model(&models.Message{}).
		Where("recipient_username = ? AND sender_username = ?", viewer, other).
		Where("recipient_deleted = ? AND date_read IS NULL", false).
		Update("date_read", at)
	if res.Error != nil {
		return 0, apperr.Persistence("mark thread read", res.Error)
	}
	return res.RowsAffected, nil
}

// GetMessagesForUser returns one page of the user's inbox, outbox or unread
// messages, newest first, together with the total row count.
func (s *Service) GetMessagesForUser(ctx context.Context, params models.MessageParams) ([]models.Message, int64, error) {
	query := s.db(ctx).Model(&models.Message{})

	switch params.Container {
	case models.ContainerInbox:
		query = query.Where("recipient_username = ? AND recipient_deleted = ?", params.Username, false)
	case models.ContainerOutbox:
		query = query.Where("sender_username = ? AND sender_deleted = ?", params.Username, false)
	default:
		query = query.Where("recipient_username = ? AND recipient_deleted = ? AND date_read IS NULL", params.Username, false)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperr.Persistence("count messages", err)
	}

	var messages []models.Message
	err := query.
		Order("message_sent desc").
		Order("id desc").
		Offset((params.PageNumber - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&messages).Error
	if err != nil {
		return nil, 0, apperr.Persistence("list messages", err)
	}
	return messages, total, nil
}

// UpdateMessageDeleted persists the two soft-delete flags of msg.
func (s *Service) UpdateMessageDeleted(ctx context.Context, msg *models.Message) error {
	err := s.db(ctx).Model(&models.Message{}).
		Where("id = ?", msg.ID).
		Updates(map[string]interface{}{
			"sender_deleted":    msg.SenderDeleted,
			"recipient_deleted": msg.RecipientDeleted,
		}).Error
	if err != nil {
		return apperr.Persistence("delete message", err)
	}
	return nil
}
