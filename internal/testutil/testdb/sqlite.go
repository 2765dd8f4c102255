// Package testdb opens migrated in-memory SQLite databases for repository
// and usecase tests.
package testdb

import (
	"testing"

	"lr-validation-backend/internal/infrastructure/db"
	"lr-validation-backend/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a private shared-cache database migrated with every domain model.
// The pool is pinned to one connection so a transaction and the code after it
// see the same database; callers must not use non-tx repositories inside a tx.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := "file:" + id.NewID32() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard, TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return gdb
}
