package persist

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Record maps to the store_records table.
type Record struct {
	Key   string `gorm:"primaryKey"`
	Value []byte
}

// TableName pins the table name.
func (Record) TableName() string {
	return "store_records"
}

// GormStorage keeps records in a SQL table through gorm.
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage migrates the records table on db and returns a storage.
func NewGormStorage(db *gorm.DB) (*GormStorage, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate store_records: %w", err)
	}
	return &GormStorage{db: db}, nil
}

// OpenSQLite opens (creating if needed) a sqlite database at path.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return db, nil
}

// Read returns nil, nil when no row exists for key.
func (s *GormStorage) Read(ctx context.Context, key string) ([]byte, error) {
	var rec Record
	// Find instead of First: a missing key is not an error here.
	result := s.db.WithContext(ctx).Where(&Record{Key: key}).Limit(1).Find(&rec)
	if result.Error != nil {
		return nil, fmt.Errorf("read key %s: %w", key, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return rec.Value, nil
}

// Write upserts the row for key.
func (s *GormStorage) Write(ctx context.Context, key string, data []byte) error {
	rec := Record{Key: key, Value: data}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&rec)
	if result.Error != nil {
		return fmt.Errorf("write key %s: %w", key, result.Error)
	}
	return nil
}
