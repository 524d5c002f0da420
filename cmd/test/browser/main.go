package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go-geojob-automation/internal/browser"
	"go-geojob-automation/internal/scraper"
)

func main() {
	url := flag.String("url", "https://id.indeed.com/jobs?q=geologist&sort=date", "page to render")
	waitFor := flag.String("wait", "div.result", "selector to wait for")
	headless := flag.Bool("headless", true, "run chromium headless")
	flag.Parse()

	fmt.Println("🌐 Testing Browser Manager...")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	//create playwright manager
	pm, err := browser.NewPlaywright(ctx, browser.Options{Headless: *headless})
	if err != nil {
		log.Fatalf("Failed to create Playwright: %v", err)
	}
	defer pm.Close()

	fmt.Println("✅ Playwright started")

	renderer, err := pm.NewRenderer()
	if err != nil {
		log.Fatalf("Failed to create page: %v", err)
	}

	fmt.Printf("🔍 Rendering %s...\n", *url)
	html, err := renderer.Render(ctx, *url, scraper.RenderOptions{WaitFor: *waitFor, Settle: 2 * time.Second})
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}

	doc, err := scraper.Parse(html)
	if err != nil {
		log.Fatalf("Failed to parse: %v", err)
	}
	fmt.Printf("✅ Page title: %s\n", doc.Find("title").First().Text())
	fmt.Printf("✅ %d bytes, %d matches for %q\n", len(html), doc.Find(*waitFor).Length(), *waitFor)
	fmt.Println("✨ Test complete!")
}
