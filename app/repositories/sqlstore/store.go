// Package sqlstore implements the repositories on a relational database
// through gorm. PostgreSQL is used in production deployments and SQLite for
// single-host installs and tests.
package sqlstore

import (
	"errors"
	"fmt"
	"time"

	"yatube/app/models"
	"yatube/app/repositories"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store is a repositories.Store backed by gorm.
type Store struct {
	db *gorm.DB
}

// Open connects to the database named by driver ("postgres" or "sqlite")
// and migrates the schema.
func Open(driver, dsn string, log logrus.FieldLogger) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	config := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
	if log != nil {
		config.Logger = logger.New(log, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	store := New(db)
	if err := store.Migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

// New wraps an open connection without migrating.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the tables.
func (s *Store) Migrate() error {
	err := s.db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Users() repositories.UserRepository { return &UserRepository{db: s.db} }

func (s *Store) Groups() repositories.GroupRepository { return &GroupRepository{db: s.db} }

func (s *Store) Posts() repositories.PostRepository { return &PostRepository{db: s.db} }

func (s *Store) Comments() repositories.CommentRepository { return &CommentRepository{db: s.db} }

func (s *Store) Follows() repositories.FollowRepository { return &FollowRepository{db: s.db} }

// Clear deletes every row, children first.
func (s *Store) Clear() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []interface{}{
			&models.Comment{},
			&models.Follow{},
			&models.Post{},
			&models.Group{},
			&models.User{},
		} {
			if err := all.Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps gorm errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repositories.ErrDuplicate
	default:
		return err
	}
}
