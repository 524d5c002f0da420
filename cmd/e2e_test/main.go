package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-geojob-automation/internal/config"
	"go-geojob-automation/internal/models"
	"go-geojob-automation/internal/store"
	"go-geojob-automation/internal/telegram"
)

// Sends one job through the real store and chat: a mock posting is stored,
// read back, formatted and posted, and the send is logged.
func main() {
	cfg := config.MustLoad(config.DefaultPath)
	if err := cfg.RequireTelegram(); err != nil {
		log.Fatal(err)
	}

	// 1. Connect store
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	st, err := store.Open(ctx, store.Options{Driver: cfg.Store.Driver, DSN: cfg.Store.DSN})
	if err != nil {
		log.Fatalf("Store connection failed: %v", err)
	}
	defer st.Close()

	// 2. Store a mock job
	now := time.Now()
	mockJob := models.JobDetail{
		Source:         models.SourcePetromindo,
		JobID:          models.Str(fmt.Sprintf("e2e-%d", now.Unix())),
		JobURL:         models.Str("https://www.petromindo.com/job-gallery/category/mining/"),
		JobTitle:       models.Str("Senior Exploration Geologist (Test)"),
		JobCompany:     models.Str("PT Contoh Tambang"),
		JobLocation:    models.Str("Kalimantan Timur"),
		SeniorityLevel: models.Str("Mid-Senior level"),
		Industries:     models.Str("mining"),
		JobDescription: models.Str("Responsibilities:\n\n • Lead drilling programs\n • Build resource models"),
		JobListDate:    models.Date(now),
		GetTime:        now,
	}
	if err := st.AppendDetails(ctx, []models.JobDetail{mockJob}); err != nil {
		log.Fatalf("Could not save mock job: %v", err)
	}

	recent, err := st.RecentDetails(ctx, models.SourcePetromindo, 1)
	if err != nil || len(recent) == 0 {
		log.Fatalf("Could not read mock job back: %v", err)
	}
	log.Printf("✅ Store round trip complete. Job ID: %s", models.Deref(recent[0].JobID))

	// 3. Send it
	bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Fatalf("Failed to initialize telegram bot: %v", err)
	}
	entry := models.NotificationLog{
		Source:     mockJob.Source,
		JobURL:     models.Deref(mockJob.JobURL),
		JobTitle:   models.Deref(mockJob.JobTitle),
		JobCompany: models.Deref(mockJob.JobCompany),
		PostedAt:   time.Now(),
	}
	id, err := bot.Send(ctx, telegram.FormatJob(recent[0]))
	if err != nil {
		log.Fatalf("Failed to send message: %v", err)
	}
	entry.MessageID = &id

	// 4. Log the send
	if err := st.AppendNotifications(ctx, []models.NotificationLog{entry}); err != nil {
		log.Fatalf("Failed to log notification: %v", err)
	}
	log.Printf("✅ Sent message %d to Telegram. Check the chat!", id)
}
