package linkedin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go-geojob-automation/internal/models"
	"go-geojob-automation/internal/normalize"
	"go-geojob-automation/internal/scraper"

	"github.com/PuerkitoBio/goquery"
)

const searchURL = "https://www.linkedin.com/jobs/search"

// Keywords are the default searches, all restricted to Indonesia.
var Keywords = []string{"operator", "engineer", "surveyor", "gis", "safety", "geologist", "mine", "foreman"}

var describer = normalize.New(normalize.WithKeywordJoin(normalize.DefaultKeywords...))

type LinkedInScraper struct {
	session *scraper.Session
	targets []scraper.Target
}

var _ scraper.Scraper = (*LinkedInScraper)(nil)

func NewLinkedInScraper(session *scraper.Session, targets []scraper.Target) *LinkedInScraper {
	if len(targets) == 0 {
		targets = DefaultTargets()
	}
	return &LinkedInScraper{session: session, targets: targets}
}

// DefaultTargets are the public job searches filtered to the mining, oil and
// gas and related industry facets.
func DefaultTargets() []scraper.Target {
	targets := make([]scraper.Target, 0, len(Keywords))
	for _, kw := range Keywords {
		var u string
		switch kw {
		case "safety":
			u = fmt.Sprintf("%s/?currentJobId=3605575878&f_I=56%%2C57&geoId=102478259&keywords=%s&location=Indonesia&refresh=true&sortBy=R", searchURL, kw)
		case "geologist":
			u = fmt.Sprintf("%s?keywords=%s&location=Indonesia&geoId=102478259&trk=public_jobs_jobs-search-bar_search-submit&position=1&pageNum=0", searchURL, kw)
		default:
			u = fmt.Sprintf("%s/?currentJobId=3612329140&f_I=61%%2C63%%2C56%%2C57&geoId=102478259&keywords=%s&location=Indonesia&refresh=true&sortBy=R&position=18&pageNum=0", searchURL, kw)
		}
		targets = append(targets, scraper.Target{URL: u})
	}
	return targets
}

func (s *LinkedInScraper) Name() models.Source {
	return models.SourceLinkedIn
}

func (s *LinkedInScraper) Targets() []scraper.Target {
	return s.targets
}

func (s *LinkedInScraper) List(ctx context.Context, target scraper.Target) ([]models.JobSummary, error) {
	if s.session == nil || s.session.Renderer == nil {
		return nil, errors.New("linkedin: no browser renderer configured")
	}
	log.Printf("  🌐 Visiting Job Search: %s", target.URL)
	html, err := s.session.Renderer.Render(ctx, target.URL, scraper.RenderOptions{
		Settle:      2 * time.Second,
		ScrollToEnd: true,
		ScrollPause: 3 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load linkedin search page: %w", err)
	}
	return ParseListing(html)
}

// ParseListing reads every card of a fully scrolled search page.
func ParseListing(html string) ([]models.JobSummary, error) {
	doc, err := scraper.Parse(html)
	if err != nil {
		return nil, err
	}

	items := doc.Find("ul[class*='results-list'] > li")
	log.Printf("    📄 Found %d potential jobs.", items.Length())

	jobs := make([]models.JobSummary, 0, items.Length())
	items.Each(func(_ int, card *goquery.Selection) {
		jobs = append(jobs, parseCard(card))
	})
	return jobs, nil
}

func parseCard(card *goquery.Selection) models.JobSummary {
	job := models.JobSummary{Source: models.SourceLinkedIn}

	if urn := scraper.FirstAttr(card, "div[data-entity-urn], a[data-entity-urn]", "data-entity-urn"); urn != nil {
		parts := strings.Split(*urn, ":")
		job.JobID = models.Str(parts[len(parts)-1])
	}
	if job.JobID != nil {
		job.JobURL = models.Str("https://www.linkedin.com/jobs/view/" + *job.JobID)
	}

	job.JobTitle = scraper.FirstText(card, "h3")
	job.JobCompany = scraper.FirstText(card, "h4")

	if loc := scraper.FirstText(card, "div[class*='metadata'] > span[class*='location']"); loc != nil {
		location := *loc
		if !strings.HasSuffix(location, ", Indonesia") {
			location += ", Indonesia"
		}
		job.JobLocation = &location
	}

	job.JobSalary = scraper.FirstText(card, "div[class*='metadata'] > span[class*='salary']")

	if dt := scraper.FirstAttr(card, "div[class*='metadata'] > time[class*='listdate']", "datetime"); dt != nil {
		job.JobListDate = normalize.ISODate(*dt)
	}
	return job
}

func (s *LinkedInScraper) Enrich(ctx context.Context, summary models.JobSummary) models.JobDetail {
	detail := models.NewDetail(summary, s.session.Clock())
	log.Printf("  🔍 Getting Job Details for %s - %s", models.Deref(summary.JobTitle), models.Deref(summary.JobCompany))

	if summary.JobURL == nil {
		return detail.Fail(scraper.MissingURL, s.session.Clock())
	}
	if s.session.Renderer == nil {
		return detail.Fail(scraper.FailMessage(errors.New("no browser renderer configured")), s.session.Clock())
	}

	html, err := s.session.Renderer.Render(ctx, *summary.JobURL, scraper.RenderOptions{
		Settle:  3 * time.Second,
		WaitFor: "div[class*='show-more-less-html__markup']",
		Click:   "button[class*='show-more-less-html__button']",
	})
	if err != nil {
		log.Printf("    ⚠️ Failed to get URL %s: %v", *summary.JobURL, err)
		return detail.Fail(scraper.FailMessage(err), s.session.Clock())
	}
	doc, err := scraper.Parse(html)
	if err != nil {
		return detail.Fail(scraper.FailMessage(err), s.session.Clock())
	}

	ApplyDetail(&detail, doc)
	detail.GetTime = s.session.Clock()
	return detail
}

// ApplyDetail copies description, applicant count and the criteria list of
// a job page onto detail.
func ApplyDetail(detail *models.JobDetail, doc *goquery.Document) {
	if desc := doc.Find("div[class*='show-more-less-html__markup']").First(); desc.Length() > 0 {
		detail.JobDescription = describer.Description(scraper.OuterHTML(desc))
	}

	detail.Applicant = scraper.FirstText(doc.Selection, "figcaption[class*='applicants'], span[class*='num-applicants__caption'], span[class*='applicants']")

	criteria := jobCriteria(doc)
	if len(criteria) == 0 {
		log.Println("    ⚠️ Job criteria elements not found or structure not recognized.")
		return
	}
	if v := models.Str(criteria["seniority level"]); v != nil {
		detail.SeniorityLevel = v
	}
	if v := models.Str(criteria["employment type"]); v != nil {
		detail.EmploymentType = v
	}
	industries := criteria["industries"]
	if industries == "" {
		industries = criteria["job function"]
	}
	if v := models.Str(industries); v != nil {
		detail.Industries = v
	}
}

// jobCriteria maps lower-cased criteria headings to their values. Two page
// layouts are understood: heading/value elements and plain two-line items.
func jobCriteria(doc *goquery.Document) map[string]string {
	criteria := make(map[string]string)
	doc.Find("ul[class*='job-criteria__list'] > li.job-criteria__item, ul[class*='description__job-criteria-list'] > li.description__job-criteria-item").
		Each(func(_ int, item *goquery.Selection) {
			header := item.Find("h3[class*='job-criteria__subheader'], dt").First()
			value := item.Find("span[class*='job-criteria__text'], dd").First()
			if header.Length() > 0 && value.Length() > 0 {
				criteria[strings.ToLower(normalize.Squish(header.Text()))] = normalize.Squish(value.Text())
				return
			}
			if parts := textParts(item); len(parts) == 2 {
				criteria[strings.ToLower(parts[0])] = parts[1]
			}
		})
	return criteria
}

func textParts(sel *goquery.Selection) []string {
	var parts []string
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			if t := normalize.Squish(c.Text()); t != "" {
				parts = append(parts, t)
			}
			return
		}
		parts = append(parts, textParts(c)...)
	})
	return parts
}
