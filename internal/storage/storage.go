package storage

import (
	"context"
	"fmt"
	"time"

	"lovechat/backend/internal/config"
	"lovechat/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage is the durable side of the messaging hub: chat groups with their
// attached connections, the message table and the user lookup.
type Storage interface {
	// Transaction runs fn with a Storage bound to one database transaction.
	// fn must only use the tx it is given.
	Transaction(ctx context.Context, fn func(tx Storage) error) error

	GetOrCreateGroup(ctx context.Context, name string) (*models.Group, error)
	GetGroup(ctx context.Context, name string) (*models.Group, error)
	AttachConnection(ctx context.Context, groupName, connectionID, username string) error
	DetachConnection(ctx context.Context, connectionID string) (*models.Group, error)
	GroupHasParticipant(ctx context.Context, groupName, username string) (bool, error)
	ResetConnections(ctx context.Context) (int64, error)

	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id uint) (*models.Message, error)
	GetMessageThread(ctx context.Context, viewer, other string) ([]models.Message, error)
	MarkMessageRead(ctx context.Context, id uint, at time.Time) (bool, error)
	MarkThreadRead(ctx context.Context, viewer, other string, at time.Time) (int64, error)
	GetMessagesForUser(ctx context.Context, params models.MessageParams) ([]models.Message, int64, error)
	UpdateMessageDeleted(ctx context.Context, msg *models.Message) error

	SaveUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// ActivityStore keeps the last time a user was seen by the hub.
type ActivityStore interface {
	TouchLastActive(ctx context.Context, username string, at time.Time) error
	GetLastActive(ctx context.Context, username string) (time.Time, error)
}

// Service implements Storage on gorm and ActivityStore on Redis.
// Redis may be nil, in which case activity tracking is disabled.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

var (
	_ Storage       = (*Service)(nil)
	_ ActivityStore = (*Service)(nil)
)

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// Transaction opens a database transaction and hands fn a Service bound to it.
// Returning an error from fn rolls everything back.
func (s *Service) Transaction(ctx context.Context, fn func(tx Storage) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Service{DB: tx, Redis: s.Redis})
	})
}

func (s *Service) db(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}

// OpenDatabase connects to the configured database driver.
func OpenDatabase(driver, dsn string, level logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == config.DriverSQLite {
		// sqlite serializes writers; one connection avoids "database is locked"
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates or updates every table the hub uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Connection{},
		&models.Message{},
	)
}
