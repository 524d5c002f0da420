package indeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go-geojob-automation/internal/models"
	"go-geojob-automation/internal/normalize"
	"go-geojob-automation/internal/scraper"

	"github.com/PuerkitoBio/goquery"
)

const baseURL = "https://id.indeed.com"

// Keywords are the default search terms.
var Keywords = []string{
	"geology", "geologi", "geologist", "mine", "mining",
	"oil+and+gas", "migas", "geodesi", "tambang",
}

var (
	plusSuffix = regexp.MustCompile(`\+.*`)
	hasDigit   = regexp.MustCompile(`[0-9]`)

	employmentKeywords = []string{"Full-time", "Part-time", "Contract", "Temporary", "Internship"}
)

// IndustryResolver looks up a company's industry from its job page.
type IndustryResolver interface {
	Resolve(ctx context.Context, company *string, doc *goquery.Document, pageURL string) *string
}

type IndeedScraper struct {
	session    *scraper.Session
	industries IndustryResolver
	targets    []scraper.Target
}

var _ scraper.Scraper = (*IndeedScraper)(nil)

// NewIndeedScraper builds the adapter. A nil or empty targets list falls back
// to DefaultTargets.
func NewIndeedScraper(session *scraper.Session, industries IndustryResolver, targets []scraper.Target) *IndeedScraper {
	if len(targets) == 0 {
		targets = DefaultTargets()
	}
	return &IndeedScraper{session: session, industries: industries, targets: targets}
}

func DefaultTargets() []scraper.Target {
	targets := make([]scraper.Target, 0, len(Keywords))
	for _, kw := range Keywords {
		targets = append(targets, scraper.Target{URL: fmt.Sprintf("%s/jobs?q=%s&sort=date", baseURL, kw)})
	}
	return targets
}

func (s *IndeedScraper) Name() models.Source {
	return models.SourceIndeed
}

func (s *IndeedScraper) Targets() []scraper.Target {
	return s.targets
}

func (s *IndeedScraper) List(ctx context.Context, target scraper.Target) ([]models.JobSummary, error) {
	if s.session == nil || s.session.Renderer == nil {
		return nil, errors.New("indeed: no browser renderer configured")
	}
	log.Printf("  🌐 Visiting Job Search: %s", target.URL)
	html, err := s.session.Renderer.Render(ctx, target.URL, scraper.RenderOptions{
		WaitFor: "div.result",
		Settle:  3 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load indeed search page: %w", err)
	}
	return ParseListing(html, s.session.Clock())
}

// ParseListing extracts every card that carries a title.
func ParseListing(html string, now time.Time) ([]models.JobSummary, error) {
	doc, err := scraper.Parse(html)
	if err != nil {
		return nil, err
	}

	cards := doc.Find("div.result")
	log.Printf("    📄 Found %d job cards on the first page.", cards.Length())

	var jobs []models.JobSummary
	cards.Each(func(_ int, card *goquery.Selection) {
		job := parseCard(card, now)
		if job.JobTitle != nil {
			jobs = append(jobs, job)
		}
	})
	return jobs, nil
}

func parseCard(card *goquery.Selection, now time.Time) models.JobSummary {
	job := models.JobSummary{Source: models.SourceIndeed}

	//title
	titleEl := card.Find("h2.jobTitle a span[title], h2.jobTitle span, h2.jobTitle a").First()
	if titleEl.Length() == 0 {
		titleEl = card.Find("h2").First()
	}
	job.JobTitle = normalize.Text(titleEl.Text())
	if job.JobTitle == nil {
		if title, ok := titleEl.Attr("title"); ok {
			job.JobTitle = normalize.Text(title)
		}
	}

	//id and url
	job.JobID = jobKey(card)
	if job.JobID != nil {
		job.JobURL = models.Str(ViewURL(*job.JobID))
	} else if href := scraper.FirstAttr(card, "h2.jobTitle > a[href], a.jcs-JobTitle[href]", "href"); href != nil {
		link := *href
		if strings.HasPrefix(link, "/") {
			link = baseURL + link
		}
		job.JobURL = &link
	}

	job.JobCompany = normalize.Text(card.Find("div[class*='company'] span[class*='Name'], span.companyName, span[data-testid='company-name']").First().Text())

	if loc := card.Find("div[class*='company'] div[class*='Location'], div.companyLocation, div[data-testid='text-location']").First(); loc.Length() > 0 {
		job.JobLocation = normalize.Text(plusSuffix.ReplaceAllString(normalize.Squish(loc.Text()), ""))
	}

	if sal := card.Find("div[class*='salaryContainer'] div[class*='salary'], div.salary-snippet-container div.salaryText, div.metadata.salary-snippet-container, div[class*='salary']").First(); sal.Length() > 0 {
		job.JobSalary = formatSalary(normalize.Squish(sal.Text()))
	}

	job.EmploymentType = employmentType(card, job.JobSalary, job.JobLocation)

	if date := card.Find("table[class*='jobCardShelfContainer'] span[class*='date'], span.date").First(); date.Length() > 0 {
		job.JobListDate = normalize.RelativeDate(normalize.Squish(date.Text()), now)
	}

	return job
}

func jobKey(card *goquery.Selection) *string {
	if id := scraper.FirstAttr(card, "h2 a[data-jk], a.jcs-JobTitle[data-jk]", "data-jk"); id != nil {
		return id
	}
	if id, ok := card.Attr("data-jk"); ok {
		if v := models.Str(id); v != nil {
			return v
		}
	}
	return scraper.FirstAttr(card, "a[data-jk]", "data-jk")
}

// formatSalary turns "Rp. 8.000.000 per bulan" into "IDR8,000,000".
func formatSalary(raw string) *string {
	text, _, _ := strings.Cut(raw, " per")
	text = strings.ReplaceAll(text, "Rp. ", "IDR")
	text = strings.ReplaceAll(text, ".", ",")
	return models.Str(text)
}

// employmentType guesses the contract type from the first metadata entry:
// a short text that is neither the salary nor the location.
func employmentType(card *goquery.Selection, salary, location *string) *string {
	li := card.Find("div.jobMetaDataGroup ul li").First()
	if li.Length() == 0 {
		return nil
	}

	var candidate string
	li.Contents().Each(func(_ int, el *goquery.Selection) {
		text := normalize.Squish(el.Text())
		if text == "" {
			return
		}
		if salary != nil && strings.Contains(text, *salary) {
			return
		}
		if location != nil && strings.Contains(text, *location) {
			return
		}
		isMoney := strings.Contains(text, "IDR") || strings.Contains(text, "$") || strings.Contains(text, "Rp")
		if hasDigit.MatchString(text) && !isMoney {
			return
		}
		if len(strings.Fields(text)) < 4 {
			candidate = text
		}
	})
	if candidate == "" {
		return nil
	}

	typeText := strings.TrimSpace(plusSuffix.ReplaceAllString(candidate, ""))
	if !hasDigit.MatchString(typeText) {
		return models.Str(typeText)
	}
	for _, kw := range employmentKeywords {
		if strings.Contains(typeText, kw) {
			return models.Str(typeText)
		}
	}
	return nil
}

func (s *IndeedScraper) Enrich(ctx context.Context, summary models.JobSummary) models.JobDetail {
	detail := models.NewDetail(summary, s.session.Clock())
	log.Printf("  🔍 Getting Job Details for %s - %s", models.Deref(summary.JobTitle), models.Deref(summary.JobCompany))

	if summary.JobURL == nil {
		log.Println("    ⚠️ Job URL is missing.")
		return detail.Fail(scraper.MissingURL, s.session.Clock())
	}
	if s.session.Renderer == nil {
		return detail.Fail(scraper.FailMessage(errors.New("no browser renderer configured")), s.session.Clock())
	}

	pageURL := *summary.JobURL
	html, err := s.session.Renderer.Render(ctx, pageURL, scraper.RenderOptions{
		WaitFor: "div#jobDescriptionText",
		Settle:  3 * time.Second,
	})
	if err != nil {
		log.Printf("    ⚠️ Error navigating to %s: %v", pageURL, err)
		return detail.Fail(scraper.FailMessage(err), s.session.Clock())
	}
	doc, err := scraper.Parse(html)
	if err != nil {
		return detail.Fail(scraper.FailMessage(err), s.session.Clock())
	}

	ApplyDetail(&detail, doc)

	if s.industries != nil {
		if industry := s.industries.Resolve(ctx, detail.JobCompany, doc, pageURL); industry != nil {
			detail.Industries = industry
		}
	}

	detail.GetTime = s.session.Clock()
	return detail
}

// ApplyDetail fills the description and overrides the listing date from the
// job page's JSON-LD when present.
func ApplyDetail(detail *models.JobDetail, doc *goquery.Document) {
	if desc := doc.Find("div#jobDescriptionText").First(); desc.Length() > 0 {
		detail.JobDescription = normalize.Description(scraper.OuterHTML(desc))
	}
	if posted := datePosted(doc); posted != nil {
		detail.JobListDate = posted
	}
}

// datePosted reads JobPosting.datePosted from the first JSON-LD block that
// has one.
func datePosted(doc *goquery.Document) *time.Time {
	var posted *time.Time
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, script *goquery.Selection) bool {
		obj, ok := firstObject(script.Text())
		if !ok {
			return true
		}
		var typ string
		if err := json.Unmarshal(obj["@type"], &typ); err != nil || typ != "JobPosting" {
			return true
		}
		raw, ok := obj["datePosted"]
		if !ok {
			return true
		}
		if posted = normalize.JSONDate(raw); posted == nil {
			log.Printf("    ⚠️ Error parsing datePosted value %s", string(raw))
			return true
		}
		return false
	})
	return posted
}

func firstObject(text string) (map[string]json.RawMessage, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	if strings.HasPrefix(text, "[") {
		var list []map[string]json.RawMessage
		if err := json.Unmarshal([]byte(text), &list); err != nil || len(list) == 0 {
			return nil, false
		}
		return list[0], true
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// ViewURL is the canonical job page for an Indeed job key.
func ViewURL(jk string) string {
	return baseURL + "/viewjob?jk=" + url.QueryEscape(jk)
}
