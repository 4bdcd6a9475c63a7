package main

import (
	"fmt"
	"os"

	"github.com/recallery/recallery-backend/internal/data/db"
	"github.com/recallery/recallery-backend/internal/platform/envutil"
	"github.com/recallery/recallery-backend/internal/platform/logger"
)

func main() {
	logMode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}

	log.Info("Running migrations...")
	if err := db.AutoMigrateAll(pg.DB()); err != nil {
		log.Fatal("Auto migration failed", "error", err)
	}
	log.Info("Migrations complete")
}
