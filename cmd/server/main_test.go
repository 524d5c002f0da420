package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-geojob-automation/internal/models"
	"go-geojob-automation/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	mem := store.NewMemory()
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	require.NoError(t, mem.AppendDetails(ctx, []models.JobDetail{
		{Source: models.SourceIndeed, JobID: models.Str("a1"), GetTime: now},
		{Source: models.SourceLinkedIn, JobID: models.Str("42"), GetTime: now},
		{Source: models.SourceIndeed, JobID: models.Str("b2"), GetTime: now},
	}))
	id := 7
	require.NoError(t, mem.AppendNotifications(ctx, []models.NotificationLog{
		{Source: models.SourceIndeed, JobURL: "https://id.indeed.com/viewjob?jk=a1", PostedAt: now, MessageID: &id},
	}))
	return newRouter(mem)
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := get(seededRouter(t), "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestJobs(t *testing.T) {
	r := seededRouter(t)

	tests := []struct {
		name   string
		target string
		code   int
		count  int
	}{
		{"all sources", "/jobs", http.StatusOK, 3},
		{"one source", "/jobs?source=indeed", http.StatusOK, 2},
		{"limit", "/jobs?limit=1", http.StatusOK, 1},
		{"unknown source", "/jobs?source=monster", http.StatusBadRequest, 0},
		{"bad limit", "/jobs?limit=abc", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.target)
			require.Equal(t, tt.code, w.Code)
			if tt.code != http.StatusOK {
				return
			}
			var body struct {
				Count int                `json:"count"`
				Jobs  []models.JobDetail `json:"jobs"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.count, body.Count)
			assert.Len(t, body.Jobs, tt.count)
		})
	}

	w := get(r, "/jobs?source=indeed&limit=1")
	assert.Contains(t, w.Body.String(), `"job_id":"b2"`, "newest first")
}

func TestNotifications(t *testing.T) {
	w := get(seededRouter(t), "/notifications")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"message_id":7`)
}
