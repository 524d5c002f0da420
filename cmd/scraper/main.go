package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go-geojob-automation/internal/browser"
	"go-geojob-automation/internal/config"
	"go-geojob-automation/internal/fetch"
	"go-geojob-automation/internal/industry"
	"go-geojob-automation/internal/models"
	"go-geojob-automation/internal/pipeline"
	"go-geojob-automation/internal/ratelimit"
	"go-geojob-automation/internal/scheduler"
	"go-geojob-automation/internal/scraper"
	"go-geojob-automation/internal/scraper/disnakerja"
	"go-geojob-automation/internal/scraper/indeed"
	"go-geojob-automation/internal/scraper/jobstreet"
	"go-geojob-automation/internal/scraper/linkedin"
	"go-geojob-automation/internal/scraper/petromindo"
	"go-geojob-automation/internal/store"
	"go-geojob-automation/internal/telegram"

	"github.com/playwright-community/playwright-go"
)

func main() {
	source := flag.String("source", "all", "indeed|linkedin|jobstreet|petromindo|disnakerja|all")
	schedule := flag.String("schedule", "", "cron spec, e.g. \"@every 6h\" (overrides config)")
	dryRun := flag.Bool("dry-run", false, "list and enrich only, no store writes or messages")
	configPath := flag.String("config", config.DefaultPath, "path to config.yaml")
	flag.Parse()

	if err := run(*source, *schedule, *dryRun, *configPath); err != nil {
		log.Fatalf("❌ %v", err)
	}
	log.Println("🏁 Execution finished.")
}

func run(source, schedule string, dryRun bool, configPath string) error {
	//load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	sources, err := parseSources(source)
	if err != nil {
		return err
	}
	if schedule == "" {
		schedule = cfg.Schedule
	}
	log.Printf("🔧 Config loaded. Sources: %v, store: %s, dry run: %v", sources, cfg.Store.Driver, dryRun)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//init telegram bot
	var bot *telegram.Bot
	if !dryRun {
		if err := cfg.RequireTelegram(); err != nil {
			return err
		}
		bot, err = telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return err
		}
		log.Println("🤖 Telegram Bot initialized.")
	}

	//open store
	st, err := store.Open(ctx, store.Options{
		Driver:   cfg.Store.Driver,
		DSN:      cfg.Store.DSN,
		RedisURL: cfg.Store.RedisURL,
		SeenTTL:  cfg.Store.SeenTTL,
	})
	if err != nil {
		return fmt.Errorf("store unavailable: %w", err)
	}
	defer st.Close()

	session := &scraper.Session{
		Fetcher:   fetch.NewHTTPFetcher(cfg.ProxyURL(), 15*time.Second),
		Throttles: cfg.Throttles(),
		Now:       time.Now,
	}

	//only the browser-rendered sources pay for playwright
	if needsBrowser(sources) {
		pwManager, err := browser.NewPlaywright(ctx, browser.Options{
			Headless:   cfg.Browser.Headless,
			Proxy:      browserProxy(cfg),
			UserAgent:  fetch.UserAgent,
			Locale:     cfg.Browser.Locale,
			Cookies:    loadCookies(cfg.Browser.CookiesPath),
			NavTimeout: cfg.Browser.NavTimeout,
			MaxScrolls: cfg.Browser.MaxScrolls,

			ScreenshotDir: filepath.Join(cfg.LogDir, "screenshots"),
		})
		if err != nil {
			return fmt.Errorf("failed to init Playwright: %w", err)
		}
		//close playwright manager when application stops
		defer pwManager.Close()

		renderer, err := pwManager.NewRenderer()
		if err != nil {
			return fmt.Errorf("failed to create browser page: %w", err)
		}
		session.Renderer = renderer
		log.Println("✅ Browser initialized successfully!")
	}

	var resolverOpts []industry.Option
	if dryRun {
		resolverOpts = append(resolverOpts, industry.WithoutPersist())
	}
	resolver := industry.New(st, session.Renderer, resolverOpts...)

	registry := scraper.NewRegistry(
		indeed.NewIndeedScraper(session, resolver, cfg.TargetsFor(models.SourceIndeed)),
		linkedin.NewLinkedInScraper(session, cfg.TargetsFor(models.SourceLinkedIn)),
		jobstreet.NewJobStreetScraper(session, cfg.TargetsFor(models.SourceJobStreet)),
		petromindo.NewPetromindoScraper(session, cfg.TargetsFor(models.SourcePetromindo)),
		disnakerja.NewDisnakerjaScraper(session, cfg.TargetsFor(models.SourceDisnakerja)),
	)

	var sink pipeline.Sink
	if bot != nil {
		sink = bot
	}
	opts := pipeline.Options{
		DryRun:         dryRun,
		NotifyFailed:   cfg.Notify.Failed,
		Rules:          cfg.Rules(),
		NotifyThrottle: ratelimit.New(cfg.Notify.Delay),
		LogDir:         cfg.LogDir,
	}

	runAll := func(ctx context.Context) error {
		var reports []string
		for _, src := range sources {
			s, err := registry.Get(src)
			if err != nil {
				return err
			}
			log.Printf("\n▶️ Starting scraper: %s", src)
			p, err := pipeline.New(s, session, st, sink, opts)
			if err != nil {
				return err
			}
			report, err := p.Run(ctx)
			if err != nil {
				return fmt.Errorf("%s run failed: %w", src, err)
			}
			log.Printf("✅ %s", report)
			reports = append(reports, report.String())
		}
		if bot != nil {
			if err := bot.SendStatus(ctx, strings.Join(reports, "\n")); err != nil {
				log.Printf("⚠️ Failed to send status to Telegram: %v", err)
			}
		}
		return nil
	}

	if schedule == "" {
		return runAll(ctx)
	}

	sched := scheduler.New(schedule, func(ctx context.Context) {
		if err := runAll(ctx); err != nil {
			log.Printf("❌ Scheduled run failed: %v", err)
			if bot != nil {
				_ = bot.SendError(ctx, err)
			}
		}
	})
	if err := sched.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	log.Println("🛑 Shutting down...")
	sched.Stop()
	return nil
}

func parseSources(arg string) ([]models.Source, error) {
	if arg == "" || arg == "all" {
		return models.AllSources, nil
	}
	var out []models.Source
	for _, name := range strings.Split(arg, ",") {
		src, err := models.ParseSource(name)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	if len(out) == 0 {
		return nil, errors.New("no source selected")
	}
	return out, nil
}

func needsBrowser(sources []models.Source) bool {
	for _, src := range sources {
		if src == models.SourceIndeed || src == models.SourceLinkedIn {
			return true
		}
	}
	return false
}

func browserProxy(cfg *config.Config) *browser.Proxy {
	if cfg.Proxy.Host == "" {
		return nil
	}
	server := cfg.Proxy.Host
	if cfg.Proxy.Port != "" {
		server += ":" + cfg.Proxy.Port
	}
	return &browser.Proxy{Server: server, Username: cfg.Proxy.User, Password: cfg.Proxy.Password}
}

func loadCookies(dir string) []playwright.OptionalCookie {
	cookieFiles := map[string]string{
		"linkedin": filepath.Join(dir, "cookies-linkedin.json"),
		"indeed":   filepath.Join(dir, "cookies-indeed.json"),
	}
	var allCookies []playwright.OptionalCookie
	for name, cookieFile := range cookieFiles {
		cookies, err := browser.LoadCookies(cookieFile)
		if err != nil {
			log.Printf("⚠️ Could not load %s cookies: %v. Continuing.", name, err)
			continue
		}
		log.Printf("🍪 Loaded %s cookies (%d)", name, len(cookies))
		allCookies = append(allCookies, cookies...)
	}
	return allCookies
}
