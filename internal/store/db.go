// Package store is the durable side of the hub: the user directory, the
// presence table and the shared-file ledger on sqlite, plus the blob store
// holding uploaded file contents on disk.
package store

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/huddlekit/huddle/internal/domain"
)

// Open opens the sqlite database and migrates the schema.
// Use "file::memory:?cache=shared" as path in tests.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(
		&domain.Identity{},
		&domain.PresenceRecord{},
		&domain.FileDescriptor{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}
