package testutil

import (
	"os"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/ceustudio-backend/internal/data/db"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
)

var (
	dbOnce sync.Once
	gdb    *gorm.DB
	dbErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.NewNop()
}

// DB opens TEST_POSTGRES_DSN when set, otherwise a shared in-memory sqlite
// database, and migrates it once per test binary.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dbOnce.Do(func() {
		cfg := &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		}
		if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
			gdb, dbErr = gorm.Open(postgres.Open(dsn), cfg)
		} else {
			gdb, dbErr = gorm.Open(sqlite.Open("file::memory:?cache=shared"), cfg)
		}
		if dbErr != nil {
			return
		}
		dbErr = db.AutoMigrateAll(gdb)
	})

	if dbErr != nil {
		tb.Fatalf("failed to init test db: %v", dbErr)
	}
	return gdb
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
