package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"timecore/internal/config"
	"timecore/internal/httpserver"
	"timecore/internal/logger"
	"timecore/internal/models"
)

func main() {
	_ = godotenv.Load()
	lg := logger.New()
	defer lg.Sync()
	cfg := config.Load(lg)

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	if cfg.AutoMigrate {
		if err := db.AutoMigrate(
			&models.TimerSession{},
			&models.TimeEntry{},
			&models.StaffRate{},
			&models.TaskTypeRate{},
			&models.ClientRate{},
			&models.TimeEntryComment{},
			&models.AuditRecord{},
		); err != nil {
			lg.Fatalw("automigrate failed", "error", err)
		}
		// One active timer per user, enforced by the store itself rather
		// than a check-then-insert in application code.
		if err := db.Exec(
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_timer_sessions_one_active
			 ON timer_sessions (user_id) WHERE is_active`,
		).Error; err != nil {
			lg.Fatalw("create active-session index failed", "error", err)
		}
	}

	router := httpserver.NewRouter(db, lg)
	lg.Infow("listening", "port", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		log.Fatal(err)
	}
}
