package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/JonMunkholm/ventes/internal/core"
)

// blobRow is the single table shared by the sql backends.
type blobRow struct {
	Name      string `gorm:"column:name;primaryKey"`
	Data      []byte `gorm:"column:data;not null"`
	UpdatedAt time.Time
}

func (blobRow) TableName() string { return "blobs" }

// SQLiteBlobStore keeps blobs in a SQLite database through gorm.
type SQLiteBlobStore struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the database at dsn and migrates the blobs table.
// dsn is a file path or any URI the sqlite driver accepts, e.g.
// "file:test?mode=memory&cache=shared".
func OpenSQLite(dsn string) (*SQLiteBlobStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	return NewSQLiteBlobStore(db)
}

// NewSQLiteBlobStore wraps an open gorm connection.
func NewSQLiteBlobStore(db *gorm.DB) (*SQLiteBlobStore, error) {
	if err := db.AutoMigrate(&blobRow{}); err != nil {
		return nil, fmt.Errorf("migrate blobs table: %w", err)
	}
	return &SQLiteBlobStore{db: db}, nil
}

func (s *SQLiteBlobStore) Load(ctx context.Context, key string) ([]byte, error) {
	var row blobRow
	err := s.db.WithContext(ctx).Where("name = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load blob %s: %w", key, err)
	}
	return row.Data, nil
}

func (s *SQLiteBlobStore) Save(ctx context.Context, key string, data []byte) error {
	row := blobRow{Name: key, Data: data, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		if isSQLiteTooBig(err) {
			return fmt.Errorf("save blob %s: %w", key, core.ErrCapacityExceeded)
		}
		return fmt.Errorf("save blob %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteBlobStore) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("name = ?", key).Delete(&blobRow{}).Error
	if err != nil {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteBlobStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// isSQLiteTooBig matches SQLITE_TOOBIG and SQLITE_FULL.
func isSQLiteTooBig(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "too big") || strings.Contains(msg, "database or disk is full")
}
