// Package testdb opens a throwaway sqlite store with the full schema for
// service tests. Production runs on postgres; the models avoid DB-specific
// defaults so the same schema migrates on both.
package testdb

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"timecore/internal/models"
)

func New(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "timecore_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(
		&models.TimerSession{},
		&models.TimeEntry{},
		&models.StaffRate{},
		&models.TaskTypeRate{},
		&models.ClientRate{},
		&models.TimeEntryComment{},
		&models.AuditRecord{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	err = db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_timer_sessions_one_active
		 ON timer_sessions (user_id) WHERE is_active`,
	).Error
	if err != nil {
		t.Fatalf("create active-session index: %v", err)
	}
	return db
}
