package petromindo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"go-geojob-automation/internal/models"
	"go-geojob-automation/internal/normalize"
	"go-geojob-automation/internal/scraper"

	"github.com/PuerkitoBio/goquery"
)

const baseURL = "https://www.petromindo.com"

// Industries are the job-gallery categories scraped by default.
var Industries = []string{"mining", "oil-gas"}

var Headers = map[string]string{
	"Origin":                   baseURL,
	"Priority":                 "u=1, i",
	"Referer":                  baseURL + "/",
	"Sec-Fetch-Mode":           "no-cors",
	"Sec-Fetch-Site":           "cross-site",
	"Sec-Fetch-Storage-Access": "active",
}

var adCounter = regexp.MustCompile(`(\d+) of \d+ ads`)

// descriptions are capped; some postings paste whole brochures
var descriptions = normalize.New(normalize.WithMaxLen(5000))

type PetromindoScraper struct {
	session *scraper.Session
	targets []scraper.Target
}

var _ scraper.Scraper = (*PetromindoScraper)(nil)

func NewPetromindoScraper(session *scraper.Session, targets []scraper.Target) *PetromindoScraper {
	if len(targets) == 0 {
		targets = DefaultTargets()
	}
	return &PetromindoScraper{session: session, targets: targets}
}

func DefaultTargets() []scraper.Target {
	targets := make([]scraper.Target, 0, len(Industries))
	for _, industry := range Industries {
		targets = append(targets, scraper.Target{
			URL:      fmt.Sprintf("%s/job-gallery/category/%s/", baseURL, industry),
			Industry: industry,
		})
	}
	return targets
}

func (s *PetromindoScraper) Name() models.Source {
	return models.SourcePetromindo
}

func (s *PetromindoScraper) Targets() []scraper.Target {
	return s.targets
}

func (s *PetromindoScraper) List(ctx context.Context, target scraper.Target) ([]models.JobSummary, error) {
	if s.session == nil || s.session.Fetcher == nil {
		return nil, errors.New("petromindo: no fetcher configured")
	}
	log.Printf("  🌐 Getting job from %s", target.URL)
	html, err := s.session.Fetcher.Fetch(ctx, target.URL, Headers)
	if err != nil {
		return nil, fmt.Errorf("failed to load petromindo gallery: %w", err)
	}
	return ParseListing(html, target.Industry)
}

// ParseListing reads every gallery card. industry is copied onto each
// summary since the page itself does not carry it.
func ParseListing(html, industry string) ([]models.JobSummary, error) {
	doc, err := scraper.Parse(html)
	if err != nil {
		return nil, err
	}

	cards := doc.Find("article")
	log.Printf("    📄 Found %d job cards on the first page.", cards.Length())

	jobs := make([]models.JobSummary, 0, cards.Length())
	cards.Each(func(_ int, card *goquery.Selection) {
		job := parseCard(card)
		job.Industries = models.Str(industry)
		jobs = append(jobs, job)
	})
	return jobs, nil
}

func parseCard(card *goquery.Selection) models.JobSummary {
	job := models.JobSummary{Source: models.SourcePetromindo}

	if id, ok := card.Attr("id"); ok {
		job.JobID = models.Str(scraper.AfterFirst(id, "-"))
	}
	if title, ok := card.Attr("title"); ok {
		job.JobCompany, job.JobTitle = splitTitle(title)
	}
	job.JobURL = models.Str(card.Find("a").First().AttrOr("href", ""))
	return job
}

// splitTitle splits the card title attribute "Company; Job title" into its
// company and title halves.
func splitTitle(attr string) (company, title *string) {
	before, _, _ := strings.Cut(attr, ";")
	company = models.Str(before)

	_, after, ok := strings.Cut(attr, "; ")
	if !ok {
		return company, nil
	}
	t := normalize.Squish(after)
	t = adCounter.ReplaceAllString(t, "($1)")
	t = strings.ReplaceAll(t, ";", "")
	return company, models.Str(t)
}

func (s *PetromindoScraper) Enrich(ctx context.Context, summary models.JobSummary) models.JobDetail {
	detail := models.NewDetail(summary, s.session.Clock())
	log.Printf("  🔍 Getting Job Details for %s - %s from Petromindo", models.Deref(summary.JobTitle), models.Deref(summary.JobCompany))

	if summary.JobURL == nil {
		log.Println("    ⚠️ Job URL is missing for Petromindo processing.")
		return detail.Fail(scraper.MissingURL, s.session.Clock())
	}
	if s.session.Fetcher == nil {
		return detail.Fail(scraper.FailMessage(errors.New("no fetcher configured")), s.session.Clock())
	}

	html, err := s.session.Fetcher.Fetch(ctx, *summary.JobURL, Headers)
	if err != nil {
		log.Printf("    ⚠️ Failed to fetch or parse page %s. Error: %v", *summary.JobURL, err)
		return detail.Fail(scraper.FailMessage(err), s.session.Clock())
	}
	doc, err := scraper.Parse(html)
	if err != nil {
		return detail.Fail(fmt.Sprintf("HTML parsing or other error: %v", err), s.session.Clock())
	}

	ApplyDetail(&detail, doc)
	detail.GetTime = s.session.Clock()
	return detail
}

// ApplyDetail fills location, date and description. Salary and applicant
// are never published.
func ApplyDetail(detail *models.JobDetail, doc *goquery.Document) {
	detail.JobSalary = nil
	detail.Applicant = nil

	if body := doc.Find("div[class*='col-12'][class*='col-md-8'] > article > div").First(); body.Length() > 0 {
		detail.JobLocation = normalize.InferRegion(textWithSpaces(body))
		if detail.JobLocation == nil {
			log.Println("    ⚠️ No single most frequent region in the description.")
		}
	}

	if span := doc.Find("header[class*='header'] > p > span").First(); span.Length() > 0 {
		raw := strings.TrimSpace(span.Text())
		if _, date, ok := strings.Cut(raw, ": "); ok {
			detail.JobListDate = normalize.LongDate(date)
			if detail.JobListDate == nil {
				log.Printf("    ⚠️ Could not parse date string %q", date)
			}
		}
	}

	detail.JobDescription = description(doc)
}

func description(doc *goquery.Document) *string {
	container := doc.Find("div[class*='container'] > div[class*='row'] > div > article > div").First()
	if container.Length() == 0 {
		return nil
	}

	var b strings.Builder
	container.Find("p").Each(func(_ int, p *goquery.Selection) {
		b.WriteString(scraper.OuterHTML(p))
	})
	raw := b.String()
	if raw == "" {
		log.Println("    ℹ️ No <p> tags found in description container, using full container HTML.")
		raw = scraper.OuterHTML(container)
	}
	return descriptions.Description(raw)
}

// textWithSpaces joins the text nodes of sel with single spaces.
func textWithSpaces(sel *goquery.Selection) string {
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) == "#text" {
				if t := strings.TrimSpace(c.Text()); t != "" {
					parts = append(parts, t)
				}
				return
			}
			walk(c)
		})
	}
	walk(sel)
	return strings.Join(parts, " ")
}
