package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"metaconvert/internal/database"
	"metaconvert/internal/domain/reaper"
	"metaconvert/internal/domain/storage"
)

// Maintenance pass, run from cron: reclaims inline blobs orphaned by
// interrupted create flows and purges links that expired long ago.
func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	graceHours := 24
	if s := os.Getenv("SWEEP_GRACE_HOURS"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			graceHours = v
		}
	}

	retentionDays := 30
	if s := os.Getenv("LINK_RETENTION_DAYS"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			retentionDays = v
		}
	}

	ctx := context.Background()

	var external *storage.ExternalClient
	if base := os.Getenv("OBJECT_STORE_URL"); base != "" {
		external = storage.NewExternalClient(base)
	}
	store := storage.NewStore(db, external)

	reaperService := reaper.NewService(reaper.NewRepository(db), store)
	purged, err := reaperService.PurgeExpiredLinks(ctx, time.Duration(retentionDays)*24*time.Hour)
	if err != nil {
		log.Fatalf("purge expired links failed: %v", err)
	}

	swept, err := reaper.NewSweeper(db).SweepOrphans(ctx, time.Duration(graceHours)*time.Hour)
	if err != nil {
		log.Fatalf("orphan sweep failed: %v", err)
	}

	log.Printf("sweep completed: expired_links=%d orphan_blobs=%d", purged, swept)
}
