package main

import (
	"fmt"
	"log"

	"go-geojob-automation/internal/config"
)

func main() {
	fmt.Println("🔧 Testing config loading...")
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	fmt.Printf("✅ Config loaded successfully!\n")
	fmt.Printf("   Telegram configured: %t\n", cfg.RequireTelegram() == nil)
	fmt.Printf("   Telegram Chat ID: %d\n", cfg.TelegramChatID)
	fmt.Printf("   Store: %s (redis cache: %t)\n", cfg.Store.Driver, cfg.Store.RedisURL != "")
	fmt.Printf("   Proxy: %t\n", cfg.ProxyURL() != "")
	fmt.Printf("   Schedule: %q\n", cfg.Schedule)
	fmt.Printf("   Cookies Path: %s\n", cfg.Browser.CookiesPath)
	for src, t := range cfg.Throttles() {
		b := t.Bounds()
		fmt.Printf("   Delay %-10s %s-%s, custom targets: %d\n", src, b.Min, b.Max, len(cfg.TargetsFor(src)))
	}
	fmt.Printf("   Industry filter: %v\n", cfg.IndustryFilter)
}
