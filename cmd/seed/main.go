package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"election-service/internal/config"
	"election-service/internal/database"
	"election-service/internal/ports/models"
	"election-service/internal/server/repository"
)

// Seeds a demo election opening immediately, for local development.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.NewMySQLDB(
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
	)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	now := time.Now()
	election := &models.Election{
		Title:  "Student Council Election (demo)",
		Status: models.StatusUpcoming,
		Setting: &models.ElectionSetting{
			StartTime: now,
			EndTime:   now.Add(24 * time.Hour),
		},
	}

	electionRepo := repository.NewElectionRepository(db)
	if err := electionRepo.Create(context.Background(), election); err != nil {
		log.Fatal("Failed to seed election:", err)
	}

	slog.Info("Seeded demo election", "election_id", election.ID, "start", election.Setting.StartTime, "end", election.Setting.EndTime)
}
