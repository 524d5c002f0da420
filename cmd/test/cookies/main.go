package main

import (
	"fmt"
	"log"
	"path/filepath"

	"go-geojob-automation/internal/browser"
	"go-geojob-automation/internal/config"
)

func main() {
	fmt.Println("🍪 Testing cookie loading...")

	cfg := config.MustLoad(config.DefaultPath)
	cookies, err := browser.LoadCookies(filepath.Join(cfg.Browser.CookiesPath, "cookies-linkedin.json"))
	if err != nil {
		log.Fatalf("Failed to load cookies: %v", err)
	}

	fmt.Printf("✅ Loaded %d cookies\n", len(cookies))

	//Print first cookie as example
	if len(cookies) > 0 {
		c := cookies[0]
		fmt.Printf("\nExample cookie:\n")
		fmt.Printf("Name: %s\n", c.Name)
		fmt.Printf("Domain: %s\n", *c.Domain)
		fmt.Printf("Secure: %t\n", c.Secure != nil && *c.Secure)
	}
}
