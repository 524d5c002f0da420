// Define an interface for all source adapters
// Ensure every source yields the same record shape

package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-geojob-automation/internal/models"
	"go-geojob-automation/internal/ratelimit"

	"github.com/PuerkitoBio/goquery"
)

// Target is one listing page to scrape. Industry is set for sources where
// the industry is a search parameter rather than something on the page.
type Target struct {
	URL      string `yaml:"url"`
	Industry string `yaml:"industry"`
}

// Scraper defines the interface that all source adapters must implement
type Scraper interface {
	//Name is the source this adapter reads
	Name() models.Source

	//Targets are the default listing pages
	Targets() []Target

	//List extracts summaries from one listing page
	List(ctx context.Context, target Target) ([]models.JobSummary, error)

	//Enrich visits the detail page. It always returns a complete record;
	//transport failures end up in FetchError
	Enrich(ctx context.Context, summary models.JobSummary) models.JobDetail
}

// RenderOptions controls how a browser-rendered page is prepared before its
// HTML is captured.
type RenderOptions struct {
	//WaitFor is a selector to wait for after navigation
	WaitFor string
	//ScrollToEnd keeps scrolling until the page height stops growing
	ScrollToEnd bool
	//ScrollPause is the wait between scrolls
	ScrollPause time.Duration
	//Click is clicked (if visible) before capture
	Click string
	//Settle is an extra wait after navigation
	Settle time.Duration
}

// Renderer fetches a document through a real browser.
type Renderer interface {
	Render(ctx context.Context, url string, opts RenderOptions) (string, error)
}

// Fetcher fetches a server-rendered document over plain HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, url string, headers map[string]string) (string, error)
}

// Session is built once per run and handed to every adapter. It owns the
// browser, the HTTP client and the per-source throttles.
type Session struct {
	Renderer  Renderer
	Fetcher   Fetcher
	Throttles map[models.Source]*ratelimit.Throttle
	Now       func() time.Time
}

// Throttle returns the limiter for src, or nil when none is configured.
func (s *Session) Throttle(src models.Source) *ratelimit.Throttle {
	if s == nil || s.Throttles == nil {
		return nil
	}
	return s.Throttles[src]
}

func (s *Session) Clock() time.Time {
	if s == nil || s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Parse wraps raw HTML into a goquery document.
func Parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return doc, nil
}

// FirstText returns the trimmed text of the first match, or nil.
func FirstText(sel *goquery.Selection, selector string) *string {
	return models.Str(sel.Find(selector).First().Text())
}

// FirstAttr returns the attribute of the first match carrying it, or nil.
func FirstAttr(sel *goquery.Selection, selector, attr string) *string {
	var out *string
	sel.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr(attr); ok {
			if out = models.Str(v); out != nil {
				return false
			}
		}
		return true
	})
	return out
}

// OuterHTML serializes a selection including its own tag.
func OuterHTML(sel *goquery.Selection) string {
	html, err := goquery.OuterHtml(sel)
	if err != nil {
		return ""
	}
	return html
}

// AfterFirst returns the part of s after the first sep, or s itself when
// sep does not occur.
func AfterFirst(s, sep string) string {
	if _, after, ok := strings.Cut(s, sep); ok {
		return after
	}
	return s
}

// ErrChallenge marks a fetch that landed on an anti-bot challenge page.
var ErrChallenge = errors.New("anti-bot challenge page")

// FailMessage renders a transport error the way it is shown to users.
func FailMessage(err error) string {
	if errors.Is(err, ErrChallenge) {
		return fmt.Sprintf("Cloudflare challenge encountered: %v", err)
	}
	return fmt.Sprintf("Request failed: %v", err)
}

// MissingURL is recorded when a summary has nothing to visit.
const MissingURL = "Job URL missing"

// IDScheme is implemented by adapters that can report whether their source
// assigns job ids at all.
type IDScheme interface {
	HasIDs() bool
}

// HasIDs reports whether s yields job ids. Adapters that do not implement
// IDScheme are assumed to.
func HasIDs(s Scraper) bool {
	if v, ok := s.(IDScheme); ok {
		return v.HasIDs()
	}
	return true
}
