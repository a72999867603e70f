// Seeds the setup store from a curated JSON file. Safe to run repeatedly:
// every entry goes through InsertIfAbsent, so reruns only report duplicate
// skips.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"apexbox/internal/models"
	"apexbox/internal/repository"
	"apexbox/pkg/config"
	"apexbox/pkg/logger"
	"apexbox/pkg/postgres"

	"go.uber.org/zap"
)

type seedEntry struct {
	Car    string `json:"car"`
	Track  string `json:"track"`
	URL    string `json:"url"`
	Source string `json:"source"`
	Notes  string `json:"notes"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	setupRepo := repository.NewSetupRepository(db, appLogger)

	seedFile := filepath.Join("cmd", "seed", "setups.json")
	if len(os.Args) > 1 {
		seedFile = os.Args[1]
	}

	data, err := os.ReadFile(seedFile)
	if err != nil {
		appLogger.Fatal("Failed to read seed file", zap.String("path", seedFile), zap.Error(err))
	}

	var entries []seedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		appLogger.Fatal("Failed to parse seed file", zap.Error(err))
	}

	appLogger.Info("Seeding setup store", zap.String("file", seedFile), zap.Int("entries", len(entries)))

	var inserted, skipped int
	for _, entry := range entries {
		if entry.Car == "" {
			appLogger.Warn("Skipping seed entry without car", zap.String("url", entry.URL))
			continue
		}

		track := entry.Track
		if track == "" {
			track = models.TrackUnknown
		}
		source := models.Source(entry.Source)
		if source == "" {
			source = models.SourceRsetups
		}

		rec := models.NewSetupRecord(entry.Car, track, entry.URL, source, entry.Notes)
		ok, err := setupRepo.InsertIfAbsent(ctx, rec)
		if err != nil {
			appLogger.Fatal("Seed insert failed", zap.String("car", entry.Car), zap.Error(err))
		}
		if ok {
			inserted++
		} else {
			skipped++
		}
	}

	appLogger.Info("Seeding completed",
		zap.Int("inserted", inserted),
		zap.Int("skipped_duplicate", skipped),
	)
}
