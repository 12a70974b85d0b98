package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one row of the kv_entries table
type Entry struct {
	Key       string    `gorm:"column:kv_key;primaryKey;size:255"`
	Value     string    `gorm:"column:value;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Entry) TableName() string {
	return "kv_entries"
}

// GormStore RDBMS 기반 저장소
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store backed by the kv_entries table.
// The table must exist (see Migrate).
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the kv_entries table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Entry{})
}

func (s *GormStore) Get(ctx context.Context, key string) (string, error) {
	var e Entry
	err := s.db.WithContext(ctx).Where("kv_key = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("kv get %s: %w", key, err)
	}
	return e.Value, nil
}

func (s *GormStore) Set(ctx context.Context, key, value string) error {
	e := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kv_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (s *GormStore) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("kv_key = ?", key).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("kv remove %s: %w", key, err)
	}
	return nil
}

func (s *GormStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.WithContext(ctx).Model(&Entry{}).Order("kv_key ASC").Pluck("kv_key", &keys).Error; err != nil {
		return nil, fmt.Errorf("kv keys: %w", err)
	}
	return keys, nil
}
