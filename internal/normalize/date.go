package normalize

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	postedPrefix = regexp.MustCompile(`(?i)^(?:Active|Posted|Diiklankan|Diposkan)\s*`)
	daysAgoRegex = regexp.MustCompile(`(?i)(\d+)\s*(?:hari|day|days)`)

	todayMarkers = []string{"just posted", "baru saja", "hari ini", "today"}
)

// RelativeDate turns an Indeed style "posted ago" label into a date,
// counted back from now. Unknown labels give nil.
func RelativeDate(label string, now time.Time) *time.Time {
	text := strings.TrimSpace(postedPrefix.ReplaceAllString(strings.TrimSpace(label), ""))
	lower := strings.ToLower(text)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	//case 1: "30+ days ago" means anything older than a month
	if strings.Contains(text, "30+") || strings.Contains(lower, "30 hari lalu") {
		d := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, today.Location())
		return &d
	}

	//case 2: today
	for _, marker := range todayMarkers {
		if strings.Contains(lower, marker) {
			return &today
		}
	}

	//case 3: N days ago
	if match := daysAgoRegex.FindStringSubmatch(text); match != nil {
		n, err := strconv.Atoi(match[1])
		if err != nil {
			return nil
		}
		d := today.AddDate(0, 0, -n)
		return &d
	}

	return nil
}

var isoLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ISODate parses an ISO-8601 timestamp (with or without fractional seconds)
// and returns its calendar date.
func ISODate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOf(t)
		}
	}
	return nil
}

// EpochMillisDate converts milliseconds since the epoch to a UTC date.
func EpochMillisDate(ms int64) *time.Time {
	return dateOf(time.UnixMilli(ms).UTC())
}

// JSONDate accepts either an ISO string or an epoch-millis number, as found
// in JSON-LD datePosted fields.
func JSONDate(raw json.RawMessage) *time.Time {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ISODate(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if ms, err := n.Int64(); err == nil {
			return EpochMillisDate(ms)
		}
		if f, err := n.Float64(); err == nil {
			return EpochMillisDate(int64(f))
		}
	}
	return nil
}

// LongDate parses "January 2, 2006" style dates.
func LongDate(s string) *time.Time {
	t, err := time.Parse("January 2, 2006", strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return dateOf(t)
}

func dateOf(t time.Time) *time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
