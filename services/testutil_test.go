package services

import (
	"testing"

	"github.com/coursebridge/api/model"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens a fresh in-memory SQLite database with the full schema
// migrated, so tests exercise the real unique indexes and transactions.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the shared in-memory database alive for the
	// whole test
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Institution{},
		&model.Department{},
		&model.Course{},
		&model.CourseEquivalency{},
		&model.TransferPlan{},
		&model.JobRun{},
	))

	return db
}

func countRows(t *testing.T, db *gorm.DB, value interface{}) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(value).Count(&count).Error)
	return count
}
