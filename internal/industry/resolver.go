// Package industry maps a company to its industry, looking it up on the
// company's profile page at most once per company.
package industry

import (
	"context"
	"errors"
	"log"
	"net/url"
	"sync"

	"go-geojob-automation/internal/normalize"
	"go-geojob-automation/internal/scraper"
	"go-geojob-automation/internal/store"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/singleflight"
)

// NotAvailable is recorded when a lookup fails so it is not retried.
const NotAvailable = "Not Available"

// Store is the company/industry mapping table.
type Store interface {
	Industry(ctx context.Context, company string) (string, error)
	AppendIndustry(ctx context.Context, company, industry string) error
}

type Resolver struct {
	store    Store
	renderer scraper.Renderer
	persist  bool

	mu    sync.Mutex
	memo  map[string]string
	group singleflight.Group
}

type Option func(*Resolver)

// WithoutPersist keeps lookups in memory only (dry runs).
func WithoutPersist() Option {
	return func(r *Resolver) { r.persist = false }
}

func New(s Store, renderer scraper.Renderer, opts ...Option) *Resolver {
	r := &Resolver{
		store:    s,
		renderer: renderer,
		persist:  true,
		memo:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the industry of company. doc is the job page the company
// link is read from and pageURL is its address.
func (r *Resolver) Resolve(ctx context.Context, company *string, doc *goquery.Document, pageURL string) *string {
	if company == nil {
		return nil
	}
	name := *company
	if v, ok := r.cached(name); ok {
		return &v
	}

	v, _, _ := r.group.Do(name, func() (interface{}, error) {
		if v, ok := r.cached(name); ok {
			return v, nil
		}
		if r.store != nil {
			industry, err := r.store.Industry(ctx, name)
			switch {
			case err == nil && industry != "":
				r.remember(name, industry)
				return industry, nil
			case err != nil && !errors.Is(err, store.ErrNotFound):
				log.Printf("    ⚠️ Industry mapping lookup failed for %s: %v", name, err)
			}
		}

		industry := r.lookup(ctx, doc, pageURL)
		if ctx.Err() != nil {
			//cancelled lookups are retried on the next run
			return industry, nil
		}
		log.Printf("    🏭 %s -> %s", name, industry)
		if r.persist && r.store != nil {
			if err := r.store.AppendIndustry(ctx, name, industry); err != nil {
				log.Printf("    ⚠️ Failed to save industry of %s: %v", name, err)
			}
		}
		r.remember(name, industry)
		return industry, nil
	})

	industry := v.(string)
	return &industry
}

// lookup follows the company link on the job page and reads the industry
// row of the company profile.
func (r *Resolver) lookup(ctx context.Context, doc *goquery.Document, pageURL string) string {
	if doc == nil || r.renderer == nil {
		return NotAvailable
	}
	href, ok := doc.Find("div[data-company-name*='true'] a").First().Attr("href")
	if !ok || href == "" {
		return NotAvailable
	}
	companyURL, err := resolveURL(pageURL, href)
	if err != nil {
		return NotAvailable
	}

	html, err := r.renderer.Render(ctx, companyURL, scraper.RenderOptions{
		WaitFor: "li[data-testid*='industry']",
	})
	if err != nil {
		log.Printf("    ⚠️ Could not open company page %s: %v", companyURL, err)
		return NotAvailable
	}
	page, err := scraper.Parse(html)
	if err != nil {
		return NotAvailable
	}

	text := normalize.Squish(page.Find("li[data-testid*='industry']").First().Find("div").Last().Text())
	if text == "" {
		return NotAvailable
	}
	return text
}

func (r *Resolver) cached(company string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.memo[company]
	return v, ok
}

func (r *Resolver) remember(company, industry string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memo[company] = industry
}

func resolveURL(base, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(ref).String(), nil
}
