// Package fetch downloads server-rendered pages through colly.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go-geojob-automation/internal/scraper"

	"github.com/gocolly/colly/v2"
)

var ErrStatus = errors.New("unexpected status")

// challengeTitles are the <title> texts of Cloudflare interstitial pages.
var challengeTitles = []string{
	"Just a moment...",
	"Attention Required",
}

// challengeMarkers only count on a blocked response: the challenge-platform
// script is also injected into normal pages.
var challengeMarkers = []string{
	"cf-challenge",
	"challenge-platform",
	"cf-browser-verification",
}

var titlePattern = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// Chrome136 is the fixed desktop browser header profile used for every
// HTTP-fetched source.
var Chrome136 = map[string]string{
	"Accept":             "*/*",
	"Accept-Language":    "en-US,en;q=0.9",
	"Cache-Control":      "no-cache",
	"Pragma":             "no-cache",
	"Sec-Ch-Ua":          `"Chromium";v="136", "Google Chrome";v="136", "Not.A/Brand";v="99"`,
	"Sec-Ch-Ua-Mobile":   "?0",
	"Sec-Ch-Ua-Platform": `"macOS"`,
	"Sec-Fetch-Dest":     "empty",
	"User-Agent":         UserAgent,
}

const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36"

// HTTPFetcher implements scraper.Fetcher with one outbound proxy.
type HTTPFetcher struct {
	proxyURL string
	timeout  time.Duration
}

var _ scraper.Fetcher = (*HTTPFetcher)(nil)

func NewHTTPFetcher(proxyURL string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPFetcher{proxyURL: proxyURL, timeout: timeout}
}

// Fetch returns the body of url. Non-2xx responses, transport errors and
// anti-bot interstitials are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, headers map[string]string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c, err := f.collector()
	if err != nil {
		return "", err
	}

	var (
		body     string
		status   int
		fetchErr error
	)
	c.OnRequest(func(r *colly.Request) {
		for k, v := range Chrome136 {
			r.Headers.Set(k, v)
		}
		for k, v := range headers {
			r.Headers.Set(k, v)
		}
	})
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
			body = string(r.Body)
		}
		fetchErr = err
	})

	if err := c.Visit(url); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if isChallenge(status, body) {
		log.Printf("🛡️ Challenge page at %s (status %d)", url, status)
		return "", fmt.Errorf("%w at %s", scraper.ErrChallenge, url)
	}
	if fetchErr != nil {
		if status != 0 {
			return "", fmt.Errorf("%w %d from %s: %v", ErrStatus, status, url, fetchErr)
		}
		return "", fmt.Errorf("failed to fetch %s: %w", url, fetchErr)
	}
	if !IsOK(status) {
		return "", fmt.Errorf("%w %d from %s", ErrStatus, status, url)
	}
	return body, nil
}

func (f *HTTPFetcher) collector() (*colly.Collector, error) {
	c := colly.NewCollector(
		colly.UserAgent(UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(f.timeout)
	if f.proxyURL != "" {
		if err := c.SetProxy(f.proxyURL); err != nil {
			return nil, fmt.Errorf("invalid proxy: %w", err)
		}
	}
	return c, nil
}

func isChallenge(status int, body string) bool {
	if m := titlePattern.FindStringSubmatch(body); m != nil {
		title := strings.TrimSpace(m[1])
		for _, t := range challengeTitles {
			if strings.Contains(title, t) {
				return true
			}
		}
	}
	if status != http.StatusForbidden && status != http.StatusServiceUnavailable {
		return false
	}
	for _, m := range challengeMarkers {
		if strings.Contains(body, m) {
			return true
		}
	}
	return false
}

// IsOK reports whether status is a 2xx code.
func IsOK(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
