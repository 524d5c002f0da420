package utils

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ScreenShotDebugger saves full-page screenshots of blocked or broken pages
type ScreenShotDebugger struct {
	outputDir string
}

// NewScreenShotDebugger writes into dir, or logs/screenshots when dir is empty.
func NewScreenShotDebugger(dir string) *ScreenShotDebugger {
	if dir == "" {
		dir = filepath.Join(".", "logs", "screenshots")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("⚠️ Could not create screenshot dir %s: %v", dir, err)
	}
	return &ScreenShotDebugger{
		outputDir: dir,
	}
}

// Path is where a capture named name taken at t is written.
func (s *ScreenShotDebugger) Path(name string, t time.Time) string {
	filename := fmt.Sprintf("%s_%s.png", name, t.Format("2006-01-02_15-04-05"))
	return filepath.Join(s.outputDir, filename)
}

func (s *ScreenShotDebugger) CaptureAndLog(page playwright.Page, name, message string) error {
	path := s.Path(name, time.Now())
	log.Printf("📸 %s", message)

	//Take screenshot
	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		log.Printf("⚠️ Failed to capture screenshot: %v", err)
		return err
	}

	log.Printf("   Screenshot saved: %s", path)
	return nil
}
