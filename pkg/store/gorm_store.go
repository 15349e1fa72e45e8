package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// GormStore implements KV using GORM + Postgres.
type GormStore struct {
	db    *gorm.DB
	scope string
}

// NewGormStore opens the DB and runs auto-migrations. Entries are scoped
// by host name.
func NewGormStore(dsn string) (*GormStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("database URL is required for postgres storage")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&SessionEntryModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	scope, _ := os.Hostname()
	if scope == "" {
		scope = "default"
	}
	return &GormStore{db: db, scope: scope}, nil
}

func (s *GormStore) Get(ctx context.Context, key string) (string, bool, error) {
	var model SessionEntryModel
	err := s.db.WithContext(ctx).
		Where("scope = ? AND key = ?", s.scope, key).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return model.Value, true, nil
}

func (s *GormStore) Set(ctx context.Context, key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	model := SessionEntryModel{
		Scope:     s.scope,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scope"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model).Error
}

func (s *GormStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("scope = ? AND key IN ?", s.scope, keys).
		Delete(&SessionEntryModel{}).Error
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
