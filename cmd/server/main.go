package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"

	"go-geojob-automation/internal/config"
	"go-geojob-automation/internal/models"
	"go-geojob-automation/internal/store"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config.yaml")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	addr := cfg.Server.Addr
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	st, err := store.Open(context.Background(), store.Options{
		Driver:   cfg.Store.Driver,
		DSN:      cfg.Store.DSN,
		RedisURL: cfg.Store.RedisURL,
		SeenTTL:  cfg.Store.SeenTTL,
	})
	if err != nil {
		log.Fatalf("❌ Store unavailable: %v", err)
	}
	defer st.Close()

	r := newRouter(st)
	log.Printf("Server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func newRouter(st store.TableStore) *gin.Engine {
	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "GeoJob Automation API is running!",
			"status":  "healthy",
		})
	})

	r.GET("/jobs", func(c *gin.Context) {
		var src models.Source
		if name := c.Query("source"); name != "" {
			parsed, err := models.ParseSource(name)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			src = parsed
		}
		limit, ok := queryLimit(c)
		if !ok {
			return
		}
		jobs, err := st.RecentDetails(c.Request.Context(), src, limit)
		if err != nil {
			log.Printf("⚠️ Failed to read jobs: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read jobs"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(jobs), "jobs": jobs})
	})

	r.GET("/notifications", func(c *gin.Context) {
		limit, ok := queryLimit(c)
		if !ok {
			return
		}
		logs, err := st.RecentNotifications(c.Request.Context(), limit)
		if err != nil {
			log.Printf("⚠️ Failed to read notifications: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read notifications"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(logs), "notifications": logs})
	})
	return r
}

// queryLimit parses ?limit=. A missing value is 0, which the store turns
// into its default page size.
func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return 0, false
	}
	return limit, true
}
