package store

import (
	"context"
	"sync"

	"go-geojob-automation/internal/models"
)

// Memory keeps every table in process. Used for dry runs and tests.
type Memory struct {
	mu            sync.RWMutex
	details       []models.JobDetail
	industries    map[string]string
	notifications []models.NotificationLog
}

var _ TableStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{industries: make(map[string]string)}
}

func (m *Memory) SeenIDs(_ context.Context, source models.Source) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for _, d := range m.details {
		if d.Source == source && d.JobID != nil {
			ids = append(ids, *d.JobID)
		}
	}
	return ids, nil
}

func (m *Memory) AppendDetails(_ context.Context, details []models.JobDetail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.details = append(m.details, details...)
	return nil
}

func (m *Memory) Industry(_ context.Context, company string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	industry, ok := m.industries[company]
	if !ok {
		return "", ErrNotFound
	}
	return industry, nil
}

func (m *Memory) AppendIndustry(_ context.Context, company, industry string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.industries[company] = industry
	return nil
}

func (m *Memory) AppendNotifications(_ context.Context, logs []models.NotificationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, logs...)
	return nil
}

func (m *Memory) RecentDetails(_ context.Context, source models.Source, limit int) ([]models.JobDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit = clampLimit(limit)
	var out []models.JobDetail
	for i := len(m.details) - 1; i >= 0 && len(out) < limit; i-- {
		if source == "" || m.details[i].Source == source {
			out = append(out, m.details[i])
		}
	}
	return out, nil
}

func (m *Memory) RecentNotifications(_ context.Context, limit int) ([]models.NotificationLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit = clampLimit(limit)
	var out []models.NotificationLog
	for i := len(m.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.notifications[i])
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
