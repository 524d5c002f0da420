// Package store persists job rows, the company/industry mapping and the
// notification log. Every table is append-only.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go-geojob-automation/internal/models"
)

var ErrNotFound = errors.New("not found")

// TableStore is the tabular backend the pipeline writes to.
type TableStore interface {
	//SeenIDs returns every stored job id of source
	SeenIDs(ctx context.Context, source models.Source) ([]string, error)
	AppendDetails(ctx context.Context, details []models.JobDetail) error

	//Industry returns the latest industry recorded for company or ErrNotFound
	Industry(ctx context.Context, company string) (string, error)
	AppendIndustry(ctx context.Context, company, industry string) error

	AppendNotifications(ctx context.Context, logs []models.NotificationLog) error

	//RecentDetails returns the newest rows first. An empty source means all sources
	RecentDetails(ctx context.Context, source models.Source, limit int) ([]models.JobDetail, error)
	RecentNotifications(ctx context.Context, limit int) ([]models.NotificationLog, error)

	Close() error
}

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Driver string
	DSN    string
	//RedisURL enables the seen-id cache when set
	RedisURL string
	SeenTTL  time.Duration
}

// Open builds the configured backend, optionally fronted by the Redis
// seen-id cache.
func Open(ctx context.Context, opts Options) (TableStore, error) {
	var (
		s   TableStore
		err error
	)
	switch opts.Driver {
	case DriverMemory:
		s = NewMemory()
	case DriverSQLite, "":
		s, err = OpenSQLite(ctx, opts.DSN)
	case DriverPostgres:
		s, err = ConnectPostgres(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if opts.RedisURL == "" {
		return s, nil
	}
	rdb, err := NewRedisClient(ctx, opts.RedisURL)
	if err != nil {
		log.Printf("⚠️ Redis unavailable, running without seen-id cache: %v", err)
		return s, nil
	}
	log.Println("🧠 Seen-id cache enabled (Redis)")
	return WithSeenCache(s, rdb, opts.SeenTTL), nil
}

const defaultLimit = 50

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
