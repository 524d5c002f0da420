// Load envs from .env
// Load YAML config
// Override with env vars
// Provide default values
// Validate config

package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"go-geojob-automation/internal/filter"
	"go-geojob-automation/internal/models"
	"go-geojob-automation/internal/ratelimit"
	"go-geojob-automation/internal/scraper"
	"go-geojob-automation/internal/store"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`

	Proxy   ProxyConfig   `yaml:"proxy"`
	Store   StoreConfig   `yaml:"store"`
	Browser BrowserConfig `yaml:"browser"`
	Notify  NotifyConfig  `yaml:"notify"`
	Server  ServerConfig  `yaml:"server"`

	//Schedule is a cron spec, empty means run once
	Schedule string `yaml:"schedule"`
	LogDir   string `yaml:"log_dir"`

	//Per source overrides, keyed by source name
	Targets        map[string][]scraper.Target `yaml:"targets"`
	Delays         map[string]ratelimit.Bounds `yaml:"delays"`
	IndustryFilter map[string]string           `yaml:"industry_filter"`
}

type ProxyConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
}

type StoreConfig struct {
	Driver   string        `yaml:"driver"`
	DSN      string        `yaml:"dsn"`
	RedisURL string        `yaml:"redis_url"`
	SeenTTL  time.Duration `yaml:"seen_ttl"`
}

type BrowserConfig struct {
	Headless    bool          `yaml:"headless"`
	CookiesPath string        `yaml:"cookies_path"`
	Locale      string        `yaml:"locale"`
	NavTimeout  time.Duration `yaml:"nav_timeout"`
	MaxScrolls  int           `yaml:"max_scrolls"`
}

type NotifyConfig struct {
	Delay ratelimit.Bounds `yaml:"delay"`
	//Failed also announces records whose detail page could not be fetched
	Failed bool `yaml:"failed"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// defaultDelays is the pause between two detail pages of one source.
var defaultDelays = map[models.Source]ratelimit.Bounds{
	models.SourceIndeed:     {Min: time.Second, Max: 3 * time.Second},
	models.SourceLinkedIn:   {Min: time.Second, Max: 3 * time.Second},
	models.SourceJobStreet:  {Min: time.Second, Max: 3 * time.Second},
	models.SourcePetromindo: {Min: time.Second, Max: time.Second},
	models.SourceDisnakerja: {Min: time.Second, Max: time.Second},
}

// Load reads .env, then the YAML file at path, then environment overrides,
// then fills defaults and validates. A missing YAML file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{Browser: BrowserConfig{Headless: true}}

	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: Could not read %s: %v", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is Load for main: any error is fatal.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) applyEnv() error {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	setString(&c.TelegramToken, "BOT_TOKEN", "TELEGRAM_BOT_TOKEN")
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.TelegramChatID = id
	}

	setString(&c.Proxy.User, "PROXY_USER")
	setString(&c.Proxy.Password, "PROXY_PASSWORD")
	setString(&c.Proxy.Host, "PROXY_HOST")
	setString(&c.Proxy.Port, "PROXY_PORT")

	setString(&c.Store.Driver, "STORE_DRIVER")
	setString(&c.Store.DSN, "STORE_DSN")
	setString(&c.Store.RedisURL, "REDIS_URL")

	setString(&c.Browser.CookiesPath, "COOKIES_PATH")
	if headless := os.Getenv("HEADLESS"); headless != "" {
		v, err := strconv.ParseBool(headless)
		if err != nil {
			return fmt.Errorf("invalid HEADLESS: %w", err)
		}
		c.Browser.Headless = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Store.Driver == "" {
		c.Store.Driver = store.DriverSQLite
	}
	if c.Store.SeenTTL == 0 {
		c.Store.SeenTTL = 24 * time.Hour
	}
	if c.Browser.CookiesPath == "" {
		c.Browser.CookiesPath = "../.cookies"
	}
	if c.Browser.Locale == "" {
		c.Browser.Locale = "en-US"
	}
	if c.Browser.NavTimeout == 0 {
		c.Browser.NavTimeout = 30 * time.Second
	}
	if c.Notify.Delay == (ratelimit.Bounds{}) {
		c.Notify.Delay = ratelimit.Bounds{Min: 2 * time.Second, Max: 4 * time.Second}
	}
	if c.IndustryFilter == nil {
		c.IndustryFilter = filter.DefaultIndustries
	}
	if c.LogDir == "" {
		c.LogDir = "logs"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case store.DriverSQLite, store.DriverPostgres, store.DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Store.Driver == store.DriverPostgres && c.Store.DSN == "" {
		return errors.New("STORE_DSN is required for the postgres driver")
	}

	for name := range c.Targets {
		if _, err := models.ParseSource(name); err != nil {
			return fmt.Errorf("targets: %w", err)
		}
	}
	for name, b := range c.Delays {
		if _, err := models.ParseSource(name); err != nil {
			return fmt.Errorf("delays: %w", err)
		}
		if b.Max != 0 && b.Max < b.Min {
			return fmt.Errorf("delays: %s max %s is below min %s", name, b.Max, b.Min)
		}
	}
	if c.Notify.Delay.Max < c.Notify.Delay.Min {
		return fmt.Errorf("notify delay max %s is below min %s", c.Notify.Delay.Max, c.Notify.Delay.Min)
	}
	if _, err := filter.Compile(c.IndustryFilter); err != nil {
		return fmt.Errorf("industry_filter: %w", err)
	}
	return nil
}

// RequireTelegram reports the missing bot settings of a sending run.
func (c *Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return errors.New("BOT_TOKEN is required")
	}
	if c.TelegramChatID == 0 {
		return errors.New("TELEGRAM_CHAT_ID is required")
	}
	return nil
}

// ProxyURL is the authenticated proxy, or "" when no host is set.
func (c *Config) ProxyURL() string {
	if c.Proxy.Host == "" {
		return ""
	}
	host := c.Proxy.Host
	if c.Proxy.Port != "" {
		host = net.JoinHostPort(c.Proxy.Host, c.Proxy.Port)
	}
	u := url.URL{Scheme: "http", Host: host}
	if c.Proxy.User != "" {
		u.User = url.UserPassword(c.Proxy.User, c.Proxy.Password)
	}
	return u.String()
}

// TargetsFor returns the configured targets of src. Nil means the
// adapter's defaults.
func (c *Config) TargetsFor(src models.Source) []scraper.Target {
	return c.Targets[string(src)]
}

// Throttles builds one detail-page throttle per source.
func (c *Config) Throttles() map[models.Source]*ratelimit.Throttle {
	out := make(map[models.Source]*ratelimit.Throttle, len(models.AllSources))
	for _, src := range models.AllSources {
		b := defaultDelays[src]
		if override, ok := c.Delays[string(src)]; ok {
			b = override
		}
		out[src] = ratelimit.New(b)
	}
	return out
}

// Rules compiles the industry filter. Validate has already checked it.
func (c *Config) Rules() filter.Rules {
	rules, err := filter.Compile(c.IndustryFilter)
	if err != nil {
		log.Printf("⚠️ Ignoring invalid industry filter: %v", err)
		return nil
	}
	return rules
}
