package jobstreet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"time"

	"go-geojob-automation/internal/models"
	"go-geojob-automation/internal/normalize"
	"go-geojob-automation/internal/scraper"

	"github.com/PuerkitoBio/goquery"
)

const baseURL = "https://id.jobstreet.com"

// Keywords are the default search slugs.
var Keywords = []string{"geologist", "geologi", "mining", "tambang", "migas", "oil-gas", "geodesi"}

// Headers are sent on top of the fetcher's browser profile.
var Headers = map[string]string{
	"Accept":                      "application/json, text/plain, */*",
	"Origin":                      baseURL,
	"Priority":                    "u=1, i",
	"Referer":                     baseURL + "/id/",
	"Sec-Fetch-Mode":              "cors",
	"Sec-Fetch-Site":              "cross-site",
	"X-Datadog-Origin":            "rum",
	"X-Datadog-Sampling-Priority": "1",
}

var (
	reduxData  = regexp.MustCompile(`(?s)window\.SEEK_REDUX_DATA\s*=\s*(\{.*?\});`)
	apolloData = regexp.MustCompile(`(?s)window\.SEEK_APOLLO_DATA\s*=\s*(\{.*?\});`)
)

type JobStreetScraper struct {
	session *scraper.Session
	targets []scraper.Target
}

var _ scraper.Scraper = (*JobStreetScraper)(nil)

func NewJobStreetScraper(session *scraper.Session, targets []scraper.Target) *JobStreetScraper {
	if len(targets) == 0 {
		targets = DefaultTargets()
	}
	return &JobStreetScraper{session: session, targets: targets}
}

func DefaultTargets() []scraper.Target {
	targets := make([]scraper.Target, 0, len(Keywords))
	for _, kw := range Keywords {
		targets = append(targets, scraper.Target{URL: fmt.Sprintf("%s/id/%s-jobs", baseURL, kw)})
	}
	return targets
}

func (s *JobStreetScraper) Name() models.Source {
	return models.SourceJobStreet
}

func (s *JobStreetScraper) Targets() []scraper.Target {
	return s.targets
}

func (s *JobStreetScraper) List(ctx context.Context, target scraper.Target) ([]models.JobSummary, error) {
	if s.session == nil || s.session.Fetcher == nil {
		return nil, errors.New("jobstreet: no fetcher configured")
	}
	log.Printf("  🌐 Getting job from %s", target.URL)
	html, err := s.session.Fetcher.Fetch(ctx, target.URL, Headers)
	if err != nil {
		return nil, fmt.Errorf("failed to load jobstreet search page: %w", err)
	}
	return ParseListing(html)
}

func ParseListing(html string) ([]models.JobSummary, error) {
	doc, err := scraper.Parse(html)
	if err != nil {
		return nil, err
	}

	cards := doc.Find("article[data-automation='normalJob']")
	log.Printf("    📄 Found %d job cards on the first page.", cards.Length())

	jobs := make([]models.JobSummary, 0, cards.Length())
	cards.Each(func(_ int, card *goquery.Selection) {
		jobs = append(jobs, parseCard(card))
	})
	return jobs, nil
}

func parseCard(card *goquery.Selection) models.JobSummary {
	job := models.JobSummary{Source: models.SourceJobStreet}

	if id, ok := card.Attr("data-job-id"); ok {
		job.JobID = models.Str(id)
	}
	job.JobTitle = scraper.FirstText(card, "a[data-automation='jobTitle']")
	job.JobCompany = scraper.FirstText(card, "a[data-automation='jobCompany']")
	job.JobSalary = scraper.FirstText(card, "span[data-automation='jobSalary']")

	var locations []string
	card.Find("a[data-automation='jobLocation']").Each(func(_ int, a *goquery.Selection) {
		if loc := normalize.Squish(a.Text()); loc != "" {
			locations = append(locations, loc)
		}
	})
	job.JobLocation = models.Str(strings.Join(locations, ", "))

	if href := scraper.FirstAttr(card, "a[data-automation='jobTitle']", "href"); href != nil {
		job.JobURL = models.Str(baseURL + *href)
	}
	return job
}

func (s *JobStreetScraper) Enrich(ctx context.Context, summary models.JobSummary) models.JobDetail {
	detail := models.NewDetail(summary, s.session.Clock())
	log.Printf("  🔍 Getting Job Details for %s - %s", models.Deref(summary.JobTitle), models.Deref(summary.JobCompany))

	if summary.JobURL == nil {
		log.Println("    ⚠️ Job URL is missing.")
		return detail.Fail(scraper.MissingURL, s.session.Clock())
	}
	if s.session.Fetcher == nil {
		return detail.Fail(scraper.FailMessage(errors.New("no fetcher configured")), s.session.Clock())
	}

	html, err := s.session.Fetcher.Fetch(ctx, *summary.JobURL, Headers)
	if err != nil {
		log.Printf("    ⚠️ Failed to fetch or parse page. Error: %v", err)
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
	detail.JobDescription = description(doc)

	if industry := doc.Find("span[data-automation='job-detail-classifications'] > a").First(); industry.Length() > 0 {
		detail.Industries = normalize.Text(industry.Text())
	}
	if workType := doc.Find("span[data-automation='job-detail-work-type'] > a").First(); workType.Length() > 0 {
		detail.EmploymentType = normalize.Text(workType.Text())
	}

	if script := doc.Find("script[data-automation='server-state']").First(); script.Length() > 0 {
		if listed := ListedAt(script.Text()); listed != nil {
			detail.JobListDate = listed
		}
	}
}

// description normalizes every child of the ad body except the trailing
// one and joins the non-empty parts with a blank line.
func description(doc *goquery.Document) *string {
	container := doc.Find("div[data-automation*='jobAdDetails'] > div").First()
	if container.Length() == 0 {
		return nil
	}

	var fragments []string
	children := container.Children()
	if children.Length() == 0 {
		fragments = append(fragments, scraper.OuterHTML(container))
	} else {
		children.Slice(0, children.Length()-1).Each(func(_ int, child *goquery.Selection) {
			fragments = append(fragments, scraper.OuterHTML(child))
		})
	}

	var parts []string
	for _, f := range fragments {
		if part := normalize.Description(f); part != nil {
			parts = append(parts, *part)
		}
	}
	return models.Str(strings.Join(parts, "\n\n"))
}

// ListedAt reads the listing timestamp from the server-state script,
// preferring the Redux store over the Apollo cache.
func ListedAt(script string) *time.Time {
	if m := reduxData.FindStringSubmatch(script); m != nil {
		var data struct {
			JobDetails struct {
				Result struct {
					Job listedJob `json:"job"`
				} `json:"result"`
			} `json:"jobdetails"`
		}
		if err := json.Unmarshal([]byte(m[1]), &data); err != nil {
			log.Printf("    ⚠️ Error extracting date from SEEK_REDUX_DATA: %v", err)
		} else if d := normalize.ISODate(data.JobDetails.Result.Job.ListedAt.DateTimeUtc); d != nil {
			return d
		}
	}

	if m := apolloData.FindStringSubmatch(script); m != nil {
		var data struct {
			RootQuery map[string]json.RawMessage `json:"ROOT_QUERY"`
		}
		if err := json.Unmarshal([]byte(m[1]), &data); err != nil {
			log.Printf("    ⚠️ Error extracting date from SEEK_APOLLO_DATA: %v", err)
			return nil
		}
		keys := make([]string, 0, len(data.RootQuery))
		for k := range data.RootQuery {
			if strings.HasPrefix(k, "jobDetails:") {
				keys = append(keys, k)
			}
		}
		if len(keys) == 0 {
			return nil
		}
		sort.Strings(keys)
		var details struct {
			Job listedJob `json:"job"`
		}
		if err := json.Unmarshal(data.RootQuery[keys[0]], &details); err != nil {
			return nil
		}
		return normalize.ISODate(details.Job.ListedAt.DateTimeUtc)
	}
	return nil
}

type listedJob struct {
	ListedAt struct {
		DateTimeUtc string `json:"dateTimeUtc"`
	} `json:"listedAt"`
}
