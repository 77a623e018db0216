package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"lovechat/backend/internal/apperr"
	"lovechat/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetOrCreateGroup returns the group called name, inserting an empty one if
// it does not exist yet. The insert is ON CONFLICT DO NOTHING on the primary
// key, so two participants racing on first contact end up on the same row.
func (s *Service) GetOrCreateGroup(ctx context.Context, name string) (*models.Group, error) {
	group := models.Group{Name: name, CreatedAt: time.Now().UTC()}
	if err := s.db(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&group).Error; err != nil {
		log.Printf("ERROR: Failed to create group %s: %v", name, err)
		return nil, apperr.Persistence("create group", err)
	}
	return loadGroup(s.db(ctx), name)
}

// GetGroup returns the group and its attached connections.
func (s *Service) GetGroup(ctx context.Context, name string) (*models.Group, error) {
	return loadGroup(s.db(ctx), name)
}

func loadGroup(db *gorm.DB, name string) (*models.Group, error) {
	var group models.Group
	err := db.Preload("Connections", func(db *gorm.DB) *gorm.DB {
		return db.Order("connection_id asc")
	}).Where("name = ?", name).First(&group).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("group")
	}
	if err != nil {
		log.Printf("ERROR: Failed to get group %s: %v", name, err)
		return nil, apperr.Persistence("get group", err)
	}
	return &group, nil
}

// AttachConnection adds a connection row to the group.
func (s *Service) AttachConnection(ctx context.Context, groupName, connectionID, username string) error {
	conn := models.Connection{
		ConnectionID: connectionID,
		Username:     username,
		GroupName:    groupName,
	}
	if err := s.db(ctx).Create(&conn).Error; err != nil {
		log.Printf("ERROR: Failed to attach connection %s to group %s: %v", connectionID, groupName, err)
		return apperr.Persistence("attach connection", err)
	}
	return nil
}

// DetachConnection removes the connection from whichever group holds it and
// returns that group with its remaining connections. A connection that is
// already gone yields apperr.ErrNotFound.
func (s *Service) DetachConnection(ctx context.Context, connectionID string) (*models.Group, error) {
	var group *models.Group

	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		var conn models.Connection
		err := tx.Where("connection_id = ?", connectionID).First(&conn).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("connection")
		}
		if err != nil {
			return apperr.Persistence("find connection", err)
		}

		res := tx.Where("connection_id = ?", connectionID).Delete(&models.Connection{})
		if res.Error != nil {
			return apperr.Persistence("remove connection", res.Error)
		}
		if res.RowsAffected == 0 {
			// a concurrent disconnect got there first
			return apperr.NotFound("connection")
		}

		group, err = loadGroup(tx, conn.GroupName)
		return err
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// GroupHasParticipant reports whether username has a connection attached to
// the group. A missing group has no participants.
func (s *Service) GroupHasParticipant(ctx context.Context, groupName, username string) (bool, error) {
	var count int64
	err := s.db(ctx).Model(&models.Connection{}).
		Where("group_name = ? AND username = ?", groupName, username).
		Count(&count).Error
	if err != nil {
		return false, apperr.Persistence("check group occupancy", err)
	}
	return count > 0, nil
}

// ResetConnections deletes every connection row. Called once at startup,
// since no connection survives a process restart.
func (s *Service) ResetConnections(ctx context.Context) (int64, error) {
	res := s.db(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Connection{})
	if res.Error != nil {
		return 0, apperr.Persistence("reset connections", res.Error)
	}
	return res.RowsAffected, nil
}
