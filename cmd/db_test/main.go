package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-geojob-automation/internal/config"
	"go-geojob-automation/internal/models"
	"go-geojob-automation/internal/store"
)

func main() {
	cfg := config.MustLoad(config.DefaultPath)

	fmt.Printf("Attempting to connect to %s store...\n", cfg.Store.Driver)

	// Set a timeout context
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Options{
		Driver:   cfg.Store.Driver,
		DSN:      cfg.Store.DSN,
		RedisURL: cfg.Store.RedisURL,
		SeenTTL:  cfg.Store.SeenTTL,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to the store. Error: %v\n(Check STORE_DRIVER, STORE_DSN and your network access)", err)
	}
	defer st.Close()

	for _, src := range models.AllSources {
		ids, err := st.SeenIDs(ctx, src)
		if err != nil {
			log.Fatalf("❌ Query failed: %v", err)
		}
		fmt.Printf("📦 %-10s %d stored jobs\n", src, len(ids))
	}

	logs, err := st.RecentNotifications(ctx, 5)
	if err != nil {
		log.Fatalf("❌ Query failed: %v", err)
	}
	for _, l := range logs {
		fmt.Printf("📨 %s %s %s\n", l.PostedAt.Format(time.RFC3339), l.Source, l.JobTitle)
	}

	fmt.Println("✅ Successfully connected to the store!")
}
