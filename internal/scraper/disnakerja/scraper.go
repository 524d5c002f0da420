package disnakerja

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"go-geojob-automation/internal/models"
	"go-geojob-automation/internal/normalize"
	"go-geojob-automation/internal/scraper"

	"github.com/PuerkitoBio/goquery"
)

const baseURL = "https://www.disnakerja.com"

// Searches maps each default search keyword to the industry recorded for
// its results.
var Searches = []struct{ Keyword, Industry string }{
	{"tambang", "mining"},
	{"migas", "oil-gas"},
	{"geologi", "geology"},
}

var Headers = map[string]string{
	"Connection":     "keep-alive",
	"Content-Type":   "application/x-www-form-urlencoded",
	"Origin":         baseURL,
	"Referer":        baseURL + "/",
	"Sec-Fetch-Mode": "cors",
	"Sec-Fetch-Site": "cross-site",
}

// specs list positions on the detail page
const (
	specDate       = 0
	specLocation   = 2
	specEmployment = 3
	specSeniority  = 5
)

var descriptions = normalize.New(normalize.WithExtraStrip())

type DisnakerjaScraper struct {
	session *scraper.Session
	targets []scraper.Target
}

var _ scraper.Scraper = (*DisnakerjaScraper)(nil)

func NewDisnakerjaScraper(session *scraper.Session, targets []scraper.Target) *DisnakerjaScraper {
	if len(targets) == 0 {
		targets = DefaultTargets()
	}
	return &DisnakerjaScraper{session: session, targets: targets}
}

func DefaultTargets() []scraper.Target {
	targets := make([]scraper.Target, 0, len(Searches))
	for _, s := range Searches {
		targets = append(targets, scraper.Target{
			URL:      fmt.Sprintf("%s/lowongan-kerja/?s=%s", baseURL, s.Keyword),
			Industry: s.Industry,
		})
	}
	return targets
}

func (s *DisnakerjaScraper) Name() models.Source {
	return models.SourceDisnakerja
}

func (s *DisnakerjaScraper) Targets() []scraper.Target {
	return s.targets
}

func (s *DisnakerjaScraper) List(ctx context.Context, target scraper.Target) ([]models.JobSummary, error) {
	if s.session == nil || s.session.Fetcher == nil {
		return nil, errors.New("disnakerja: no fetcher configured")
	}
	log.Printf("  🌐 Getting job from %s", target.URL)
	html, err := s.session.Fetcher.Fetch(ctx, target.URL, Headers)
	if err != nil {
		return nil, fmt.Errorf("failed to load disnakerja search page: %w", err)
	}
	return ParseListing(html, target.Industry)
}

// ParseListing reads the search results. Cards without an id are dropped.
func ParseListing(html, industry string) ([]models.JobSummary, error) {
	doc, err := scraper.Parse(html)
	if err != nil {
		return nil, err
	}

	cards := doc.Find("div[id*='site-container'] div[id*='primary'] > div main > div article")
	log.Printf("    📄 Found %d job cards on the first page.", cards.Length())

	var jobs []models.JobSummary
	cards.Each(func(_ int, card *goquery.Selection) {
		job := parseCard(card)
		if job.JobID == nil {
			return
		}
		job.Industries = models.Str(industry)
		jobs = append(jobs, job)
	})
	return jobs, nil
}

func parseCard(card *goquery.Selection) models.JobSummary {
	job := models.JobSummary{Source: models.SourceDisnakerja}

	if id, ok := card.Attr("id"); ok {
		job.JobID = models.Str(scraper.AfterFirst(id, "-"))
	}
	if a := card.Find("a").First(); a.Length() > 0 {
		job.JobURL = models.Str(a.AttrOr("href", ""))
		job.JobCompany = models.Str(a.AttrOr("title", ""))
	}
	return job
}

func (s *DisnakerjaScraper) Enrich(ctx context.Context, summary models.JobSummary) models.JobDetail {
	detail := models.NewDetail(summary, s.session.Clock())
	//the listing title is the company, the real one comes from the page
	detail.JobTitle = nil
	log.Printf("  🔍 Getting Job Details for %s from Disnakerja - %s", models.Deref(summary.JobCompany), models.Deref(summary.JobURL))

	if summary.JobURL == nil {
		log.Println("    ⚠️ Job URL is missing for Disnakerja processing.")
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

func ApplyDetail(detail *models.JobDetail, doc *goquery.Document) {
	detail.JobSalary = nil
	detail.Applicant = nil

	if title := normalize.Squish(doc.Find("div.entry-meta > span").First().Text()); title != "" {
		detail.JobTitle = models.Str(title + " Posisi")
	}

	specs := doc.Find("div#specs > ul").First().ChildrenFiltered("li")
	if specs.Length() == 0 {
		log.Println("    ⚠️ No specs list found.")
	}
	detail.JobLocation = spec(specs, specLocation, "Lokasi:")
	detail.EmploymentType = spec(specs, specEmployment, "Tipe Pekerjaan:")
	detail.SeniorityLevel = spec(specs, specSeniority, "Pengalaman:")
	if specs.Length() > specDate {
		if dt, ok := specs.Eq(specDate).Find("time[itemprop='datePublished']").First().Attr("datetime"); ok {
			detail.JobListDate = normalize.ISODate(dt)
			if detail.JobListDate == nil {
				log.Printf("    ⚠️ Could not parse datePublished %q", dt)
			}
		}
	}

	detail.JobDescription = description(doc)
}

func spec(specs *goquery.Selection, i int, label string) *string {
	if specs.Length() <= i {
		return nil
	}
	text := normalize.Squish(specs.Eq(i).Text())
	return models.Str(strings.ReplaceAll(text, label, ""))
}

// description keeps the children of div#description between the two
// leading header blocks and the four trailing share/ad blocks. Short
// bodies are kept whole.
func description(doc *goquery.Document) *string {
	children := doc.Find("div#description").First().Children()
	n := children.Length()
	if n == 0 {
		return nil
	}
	if n > 2+4 {
		children = children.Slice(2, n-4)
	}

	var b strings.Builder
	children.Each(func(_ int, child *goquery.Selection) {
		b.WriteString(scraper.OuterHTML(child))
	})
	return descriptions.Description(b.String())
}
