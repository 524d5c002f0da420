package telegram

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"go-geojob-automation/internal/models"
)

const (
	shortCut    = 300
	longCut     = 500
	maxNewlines = 60
	readMore    = "...\n\nRead more on website:"
)

var (
	danglingOpen    = regexp.MustCompile(`<[^>]*$`)
	trailingOpenTag = regexp.MustCompile(`<[^/][^>]*>$`)
	openElementTail = regexp.MustCompile(`<[^/][^>]*>[^<]*$`)

	newlineRuns    = regexp.MustCompile(`(\n{2,})\n+`)
	spacedBreaks   = regexp.MustCompile(`\n\n\s+\n\n`)
	trailingBreaks = regexp.MustCompile(`\n{2,}\s*\n`)
)

// FormatJob renders one posting as a Telegram HTML message.
func FormatJob(d models.JobDetail) string {
	description := truncate(models.Deref(d.JobDescription), d.Source)

	location := ""
	if d.JobLocation != nil {
		location = html.EscapeString(strings.ReplaceAll(*d.JobLocation, ", Indonesia", ""))
	}
	level := html.EscapeString(models.Deref(d.SeniorityLevel))
	url := html.EscapeString(models.Deref(d.JobURL))

	//plain text fields, the description is already html
	parts := []string{
		"<strong>" + html.EscapeString(strings.ToUpper(models.Deref(d.JobTitle))) + "</strong>",
		"<em>" + html.EscapeString(models.Deref(d.JobCompany)) + "</em>",
	}
	withLocation := func() {
		if location != "" {
			parts = append(parts, "\nLocation: "+location)
		}
	}

	switch {
	case d.Source == models.SourceDisnakerja:
		withLocation()
	case d.JobLocation == nil && d.SeniorityLevel == nil:
		//description and url only
	case d.SeniorityLevel == nil || d.Source == models.SourceJobStreet:
		withLocation()
	case d.JobLocation == nil:
		parts = append(parts, "\nLevel: "+level)
	default:
		withLocation()
		parts = append(parts, "Level: "+level)
	}
	parts = append(parts, "\n"+description, url)

	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	msg := strings.Join(kept, "\n")
	msg = newlineRuns.ReplaceAllString(msg, "\n\n")
	msg = spacedBreaks.ReplaceAllString(msg, "\n\n")
	msg = trailingBreaks.ReplaceAllString(msg, "\n\n")
	return strings.TrimSpace(msg)
}

// truncate shortens long descriptions, dropping any half-open HTML element
// left at the cut. Petromindo bodies are already capped and only get the
// long cut.
func truncate(description string, source models.Source) string {
	n := utf8.RuneCountInString(description)
	switch {
	case n > shortCut && strings.Count(description, "\n") > maxNewlines && source != models.SourcePetromindo:
		return cut(description, shortCut)
	case n > longCut:
		return cut(description, longCut)
	default:
		return description + "\n\n"
	}
}

func cut(s string, max int) string {
	s = strings.TrimRight(string([]rune(s)[:max]), " \t\n\r")
	s = strings.TrimRight(danglingOpen.ReplaceAllString(s, ""), " \t\n\r")
	s = strings.TrimRight(trailingOpenTag.ReplaceAllString(s, ""), " \t\n\r")
	s = openElementTail.ReplaceAllString(s, "")
	s = openElementTail.ReplaceAllString(s, "")
	s = strings.TrimRight(s, " \t\n\r")
	return s + readMore
}
