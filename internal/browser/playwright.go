package browser

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go-geojob-automation/internal/scraper"
	"go-geojob-automation/utils"

	"github.com/playwright-community/playwright-go"
)

// Options configures the single browser instance of a run.
type Options struct {
	Headless  bool
	Proxy     *Proxy
	UserAgent string
	Locale    string
	Cookies   []playwright.OptionalCookie
	//NavTimeout bounds every navigation
	NavTimeout time.Duration
	//MaxScrolls caps the scroll-to-end loop
	MaxScrolls int
	//ScreenshotDir receives captures of blocked pages
	ScreenshotDir string
}

// Proxy is an authenticated outbound proxy.
type Proxy struct {
	Server   string
	Username string
	Password string
}

type PlaywrightManager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
}

func NewPlaywright(ctx context.Context, opts Options) (*PlaywrightManager, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     []string{"--disable-blink-features=AutomationControlled"},
	}
	if opts.Proxy != nil && opts.Proxy.Server != "" {
		launch.Proxy = &playwright.Proxy{
			Server:   opts.Proxy.Server,
			Username: playwright.String(opts.Proxy.Username),
			Password: playwright.String(opts.Proxy.Password),
		}
	}

	browser, err := pw.Chromium.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch chromium: %w", err)
	}

	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 30 * time.Second
	}
	if opts.MaxScrolls <= 0 {
		opts.MaxScrolls = 50
	}
	return &PlaywrightManager{pw: pw, browser: browser, opts: opts}, nil
}

func (pm *PlaywrightManager) NewContext(cookies []playwright.OptionalCookie) (playwright.BrowserContext, error) {
	ctxOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: 1366, Height: 900},
	}
	if pm.opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(pm.opts.UserAgent)
	}
	if pm.opts.Locale != "" {
		ctxOpts.Locale = playwright.String(pm.opts.Locale)
	}

	bctx, err := pm.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}
	if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(hideWebdriver)}); err != nil {
		log.Printf("⚠️ Could not install stealth script: %v", err)
	}
	if len(cookies) > 0 {
		if err := bctx.AddCookies(cookies); err != nil {
			_ = bctx.Close()
			return nil, fmt.Errorf("could not add cookies: %w", err)
		}
	}
	return bctx, nil
}

// NewRenderer opens the one page shared by every browser-rendered adapter.
func (pm *PlaywrightManager) NewRenderer() (*Renderer, error) {
	bctx, err := pm.NewContext(pm.opts.Cookies)
	if err != nil {
		return nil, err
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	return &Renderer{
		page:       page,
		navTimeout: pm.opts.NavTimeout,
		maxScrolls: pm.opts.MaxScrolls,
		screenshot: utils.NewScreenShotDebugger(pm.opts.ScreenshotDir),
	}, nil
}

func (pm *PlaywrightManager) Close() error {
	var firstErr error
	if pm.browser != nil {
		if err := pm.browser.Close(); err != nil {
			firstErr = err
		}
	}
	if pm.pw != nil {
		if err := pm.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Renderer implements scraper.Renderer on top of a single page.
type Renderer struct {
	page       playwright.Page
	navTimeout time.Duration
	maxScrolls int
	screenshot *utils.ScreenShotDebugger
}

var _ scraper.Renderer = (*Renderer)(nil)

func (r *Renderer) Render(ctx context.Context, url string, opts scraper.RenderOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if _, err := r.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(r.navTimeout.Milliseconds())),
	}); err != nil {
		return "", fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	if err := r.passChallenge(ctx, url); err != nil {
		return "", err
	}

	if opts.Settle > 0 {
		if err := sleep(ctx, opts.Settle); err != nil {
			return "", err
		}
	}

	if opts.WaitFor != "" {
		if err := r.page.Locator(opts.WaitFor).First().WaitFor(playwright.LocatorWaitForOptions{
			Timeout: playwright.Float(15000),
		}); err != nil {
			log.Printf("    ⚠️ %q not found on %s: %v", opts.WaitFor, url, err)
		}
	}

	if opts.ScrollToEnd {
		if err := MouseJiggle(r.page); err != nil {
			log.Printf("    ⚠️ Mouse jiggle failed: %v", err)
		}
		pause := opts.ScrollPause
		if pause <= 0 {
			pause = 3 * time.Second
		}
		rounds, err := ScrollUntilStable(ctx, r.scrollHeight, r.scrollToBottom, func(ctx context.Context) error {
			return sleep(ctx, pause)
		}, r.maxScrolls)
		if err != nil {
			return "", fmt.Errorf("scrolling %s: %w", url, err)
		}
		log.Printf("    📜 Scrolled %d times", rounds)
	}

	if opts.Click != "" {
		btn := r.page.Locator(opts.Click).First()
		if visible, _ := btn.IsVisible(); visible {
			if err := btn.Click(playwright.LocatorClickOptions{
				Force:   playwright.Bool(true),
				Timeout: playwright.Float(5000),
			}); err != nil {
				log.Printf("    ⚠️ Could not click %q: %v", opts.Click, err)
			}
			_ = sleep(ctx, 500*time.Millisecond)
		}
	}

	html, err := r.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read content of %s: %w", url, err)
	}
	return html, nil
}

// passChallenge waits once for a Cloudflare interstitial to clear.
func (r *Renderer) passChallenge(ctx context.Context, url string) error {
	title, _ := r.page.Title()
	if !isChallengeTitle(title) {
		return nil
	}
	log.Println("    🛡️ Cloudflare challenge detected. Waiting 7s...")
	if err := sleep(ctx, 7*time.Second); err != nil {
		return err
	}
	if title, _ = r.page.Title(); isChallengeTitle(title) {
		_ = r.screenshot.CaptureAndLog(r.page, "cloudflare-challenge", "🚨 Blocked by Cloudflare challenge")
		return fmt.Errorf("%w at %s", scraper.ErrChallenge, url)
	}
	return nil
}

func (r *Renderer) scrollHeight() (int, error) {
	v, err := r.page.Evaluate("document.body.scrollHeight")
	if err != nil {
		return 0, err
	}
	return toInt(v), nil
}

func (r *Renderer) scrollToBottom() error {
	_, err := r.page.Evaluate("window.scrollTo(0, document.body.scrollHeight)")
	return err
}

// ScrollUntilStable scrolls to the bottom, waits, and stops once the page
// height no longer grows or maxRounds is reached. It returns the number of
// scrolls performed.
func ScrollUntilStable(ctx context.Context, height func() (int, error), scroll func() error, pause func(context.Context) error, maxRounds int) (int, error) {
	last, err := height()
	if err != nil {
		return 0, err
	}
	rounds := 0
	for rounds < maxRounds {
		if err := scroll(); err != nil {
			return rounds, err
		}
		rounds++
		if err := pause(ctx); err != nil {
			return rounds, err
		}
		current, err := height()
		if err != nil {
			return rounds, err
		}
		if current <= last {
			break
		}
		last = current
	}
	return rounds, nil
}

func isChallengeTitle(title string) bool {
	return strings.Contains(title, "Just a moment") ||
		strings.Contains(title, "Attention Required") ||
		strings.Contains(title, "Cloudflare")
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
