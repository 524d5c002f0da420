package linkedin

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-geojob-automation/internal/models"
	"go-geojob-automation/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `<html><body><ul class="jobs-search__results-list">
<li><div class="base-card" data-entity-urn="urn:li:jobPosting:3912345678">
  <h3 class="base-search-card__title"> Mine Geologist </h3>
  <h4 class="base-search-card__subtitle">PT Agincourt Resources</h4>
  <div class="base-search-card__metadata">
    <span class="job-search-card__location">Tapanuli Selatan, North Sumatra</span>
    <span class="job-search-card__salary-info">IDR10,000,000</span>
    <time class="job-search-card__listdate--new" datetime="2024-06-14">1 day ago</time>
  </div>
</div></li>
<li><a data-entity-urn="urn:li:jobPosting:3900000001"></a>
  <h3>Surveyor</h3>
  <div class="base-search-card__metadata">
    <span class="job-search-card__location">Jakarta, Indonesia</span>
  </div>
</li>
</ul></body></html>`

func TestParseListing(t *testing.T) {
	jobs, err := ParseListing(listingHTML)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	first := jobs[0]
	assert.Equal(t, "3912345678", *first.JobID)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/3912345678", *first.JobURL)
	assert.Equal(t, "Mine Geologist", *first.JobTitle)
	assert.Equal(t, "PT Agincourt Resources", *first.JobCompany)
	assert.Equal(t, "Tapanuli Selatan, North Sumatra, Indonesia", *first.JobLocation)
	assert.Equal(t, "IDR10,000,000", *first.JobSalary)
	assert.Equal(t, "2024-06-14", first.JobListDate.Format(models.DateLayout))

	second := jobs[1]
	assert.Equal(t, "3900000001", *second.JobID)
	assert.Equal(t, "Jakarta, Indonesia", *second.JobLocation, "suffix is not doubled")
	assert.Nil(t, second.JobCompany)
	assert.Nil(t, second.JobListDate)
}

const detailHTML = `<html><body>
<figcaption class="num-applicants__caption"> 25 applicants </figcaption>
<div class="show-more-less-html__markup relative overflow-hidden"><p>Job ID</p><p>12345</p><ul><li>Field mapping</li></ul></div>
<ul class="description__job-criteria-list">
  <li class="description__job-criteria-item"><h3 class="description__job-criteria-subheader">Seniority level</h3><span class="description__job-criteria-text">Entry level</span></li>
  <li class="description__job-criteria-item"><h3 class="description__job-criteria-subheader">Employment type</h3><span class="description__job-criteria-text">Full-time</span></li>
  <li class="description__job-criteria-item"><h3>Job function</h3><p> Engineering </p></li>
  <li class="description__job-criteria-item"><h3 class="description__job-criteria-subheader">Industries</h3><span class="description__job-criteria-text">Mining</span></li>
</ul>
</body></html>`

type fakeRenderer struct {
	html string
	err  error
	opts scraper.RenderOptions
}

func (f *fakeRenderer) Render(_ context.Context, _ string, opts scraper.RenderOptions) (string, error) {
	f.opts = opts
	return f.html, f.err
}

var now = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

func newScraper(r scraper.Renderer) *LinkedInScraper {
	return NewLinkedInScraper(&scraper.Session{Renderer: r, Now: func() time.Time { return now }}, nil)
}

func TestEnrich(t *testing.T) {
	r := &fakeRenderer{html: detailHTML}
	sum := models.JobSummary{
		Source:   models.SourceLinkedIn,
		JobID:    models.Str("3912345678"),
		JobURL:   models.Str("https://www.linkedin.com/jobs/view/3912345678"),
		JobTitle: models.Str("Mine Geologist"),
	}

	d := newScraper(r).Enrich(context.Background(), sum)

	require.Nil(t, d.FetchError)
	assert.Equal(t, "25 applicants", *d.Applicant)
	assert.Equal(t, "Entry level", *d.SeniorityLevel)
	assert.Equal(t, "Full-time", *d.EmploymentType)
	assert.Equal(t, "Mining", *d.Industries, "industries wins over job function")
	assert.Equal(t, "Job ID\n12345 • Field mapping", *d.JobDescription)
	assert.Equal(t, "button[class*='show-more-less-html__button']", r.opts.Click)
	assert.Equal(t, now, d.GetTime)
}

func TestJobCriteria_PlainItems(t *testing.T) {
	doc, err := scraper.Parse(`<ul class="job-criteria__list">
<li class="job-criteria__item"><div>Job function</div><div>Engineering and Information Technology</div></li>
<li class="job-criteria__item"><div>Lonely</div></li>
</ul>`)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"job function": "Engineering and Information Technology"}, jobCriteria(doc))

	var d models.JobDetail
	ApplyDetail(&d, doc)
	assert.Equal(t, "Engineering and Information Technology", *d.Industries)
}

func TestEnrich_Failure(t *testing.T) {
	sum := models.JobSummary{Source: models.SourceLinkedIn, JobID: models.Str("1"), JobURL: models.Str("https://www.linkedin.com/jobs/view/1")}
	d := newScraper(&fakeRenderer{err: errors.New("net::ERR_CONNECTION_RESET")}).Enrich(context.Background(), sum)

	require.NotNil(t, d.FetchError)
	assert.Equal(t, "Request failed: net::ERR_CONNECTION_RESET", *d.FetchError)
	assert.Equal(t, "1", *d.JobID)
	assert.Nil(t, d.Industries)
	assert.Len(t, d.Values(), len(models.Columns))
}

func TestDefaultTargets(t *testing.T) {
	targets := DefaultTargets()
	require.Len(t, targets, len(Keywords))
	for _, target := range targets {
		assert.Contains(t, target.URL, "geoId=102478259")
	}
	assert.Contains(t, targets[5].URL, "keywords=geologist")
}
