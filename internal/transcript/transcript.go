// Package transcript keeps a Postgres log of every line spoken in a room.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrNoRoom = errors.New("transcript: room id is empty")

// Entry is one rendered commentary line.
type Entry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoomID    string    `gorm:"index;not null"`
	Kind      string    `gorm:"not null"`
	Player    int
	Text      string `gorm:"not null"`
	Terminal  bool
	CreatedAt time.Time `gorm:"index"`
}

func (Entry) TableName() string { return "commentary_entries" }

// BeforeCreate assigns the row id.
func (e *Entry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

type Store struct {
	db *gorm.DB
}

// Open connects to Postgres and creates the table when missing.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("transcript: open: %w", err)
	}
	return New(db)
}

// New wraps an existing connection.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("transcript: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.RoomID == "" {
		return ErrNoRoom
	}
	return s.db.WithContext(ctx).Create(&e).Error
}

// ForRoom returns a room's lines, oldest first.
func (s *Store) ForRoom(ctx context.Context, roomID string) ([]Entry, error) {
	var out []Entry
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at, id").
		Find(&out).Error
	return out, err
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
