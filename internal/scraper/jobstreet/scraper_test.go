package jobstreet

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go-geojob-automation/internal/fetch"
	"go-geojob-automation/internal/models"
	"go-geojob-automation/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `<html><body>
<article data-automation="normalJob" data-job-id="75812345">
  <a data-automation="jobTitle" href="/id/job/75812345?type=standard">Geologist Eksplorasi</a>
  <a data-automation="jobCompany">PT Aneka Tambang Tbk</a>
  <span data-automation="jobSalary">Rp 9.000.000 – Rp 12.000.000 per month</span>
  <a data-automation="jobLocation">Halmahera Timur</a>
  <a data-automation="jobLocation">Maluku Utara</a>
</article>
<article data-automation="normalJob" data-job-id="75899999">
  <a data-automation="jobTitle" href="/id/job/75899999">Mine Surveyor</a>
</article>
<article data-automation="premiumJob" data-job-id="1"></article>
</body></html>`

func TestParseListing(t *testing.T) {
	jobs, err := ParseListing(listingHTML)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	first := jobs[0]
	assert.Equal(t, "75812345", *first.JobID)
	assert.Equal(t, "https://id.jobstreet.com/id/job/75812345?type=standard", *first.JobURL)
	assert.Equal(t, "Geologist Eksplorasi", *first.JobTitle)
	assert.Equal(t, "PT Aneka Tambang Tbk", *first.JobCompany)
	assert.Equal(t, "Halmahera Timur, Maluku Utara", *first.JobLocation)
	assert.Equal(t, "Rp 9.000.000 – Rp 12.000.000 per month", *first.JobSalary)

	second := jobs[1]
	assert.Nil(t, second.JobCompany)
	assert.Nil(t, second.JobLocation)
	assert.Nil(t, second.JobSalary)
}

const detailHTML = `<html><body>
<div data-automation="jobAdDetails"><div>
  <p>Tanggung jawab:</p>
  <ul><li>Pemetaan geologi</li></ul>
  <p>Apply now</p>
</div></div>
<span data-automation="job-detail-classifications"><a>Pertambangan, Sumber Daya &amp; Energi</a></span>
<span data-automation="job-detail-work-type"><a>Full time</a></span>
<script data-automation="server-state">
window.SEEK_CONFIG = {"locale":"id"};
window.SEEK_REDUX_DATA = {"jobdetails":{"result":{"job":{"listedAt":{"dateTimeUtc":"2024-06-11T03:20:00.000Z"}}}}};
</script>
</body></html>`

type fakeFetcher struct {
	pages   map[string]string
	err     error
	headers map[string]string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, headers map[string]string) (string, error) {
	f.headers = headers
	if f.err != nil {
		return "", f.err
	}
	return f.pages[url], nil
}

var now = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

func newScraper(f scraper.Fetcher) *JobStreetScraper {
	return NewJobStreetScraper(&scraper.Session{Fetcher: f, Now: func() time.Time { return now }}, nil)
}

func summary() models.JobSummary {
	return models.JobSummary{
		Source:   models.SourceJobStreet,
		JobID:    models.Str("75812345"),
		JobURL:   models.Str("https://id.jobstreet.com/id/job/75812345"),
		JobTitle: models.Str("Geologist Eksplorasi"),
	}
}

func TestEnrich(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"https://id.jobstreet.com/id/job/75812345": detailHTML}}
	d := newScraper(f).Enrich(context.Background(), summary())

	require.Nil(t, d.FetchError)
	assert.Equal(t, "Tanggung jawab:\n\n• Pemetaan geologi", *d.JobDescription, "the trailing child is dropped")
	assert.Equal(t, "Pertambangan, Sumber Daya & Energi", *d.Industries)
	assert.Equal(t, "Full time", *d.EmploymentType)
	assert.Equal(t, "2024-06-11", d.JobListDate.Format(models.DateLayout))
	assert.Equal(t, "https://id.jobstreet.com/id/", f.headers["Referer"])
}

func TestDescription_ChildParts(t *testing.T) {
	doc, err := scraper.Parse(`<div data-automation="jobAdDetails"><div><p>Satu</p><ul><li>Dua</li></ul><div>x</div></div></div>`)
	require.NoError(t, err)
	got := description(doc)
	require.NotNil(t, got)
	assert.Equal(t, "Satu\n\n• Dua", *got)

	doc, err = scraper.Parse(`<div data-automation="jobAdDetails"><div>Teks saja</div></div>`)
	require.NoError(t, err)
	assert.Equal(t, "Teks saja", *description(doc))
}

func TestListedAt(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{
			name:   "redux",
			script: `window.SEEK_REDUX_DATA = {"jobdetails":{"result":{"job":{"listedAt":{"dateTimeUtc":"2024-06-11T03:20:00.000Z"}}}}};`,
			want:   "2024-06-11",
		},
		{
			name: "apollo fallback",
			script: `window.SEEK_REDUX_DATA = {"jobdetails":{"result":null}};
window.SEEK_APOLLO_DATA = {"ROOT_QUERY":{"__typename":"Query","jobDetails:{\"id\":\"75812345\"}":{"job":{"listedAt":{"dateTimeUtc":"2024-06-09T23:59:00Z"}}}}};`,
			want: "2024-06-09",
		},
		{name: "nothing", script: `window.SEEK_CONFIG = {};`},
		{name: "broken json", script: `window.SEEK_REDUX_DATA = {not json};`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ListedAt(tt.script)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Format(models.DateLayout))
		})
	}
}

func TestEnrich_Failures(t *testing.T) {
	t.Run("challenge", func(t *testing.T) {
		f := &fakeFetcher{err: fmt.Errorf("%w at x", scraper.ErrChallenge)}
		d := newScraper(f).Enrich(context.Background(), summary())
		require.NotNil(t, d.FetchError)
		assert.Contains(t, *d.FetchError, "Cloudflare challenge encountered")
		assert.Nil(t, d.JobDescription)
		assert.Nil(t, d.SeniorityLevel)
		assert.Len(t, d.Values(), 14)
	})

	t.Run("status", func(t *testing.T) {
		f := &fakeFetcher{err: fmt.Errorf("%w 503 from x", fetch.ErrStatus)}
		d := newScraper(f).Enrich(context.Background(), summary())
		assert.Contains(t, *d.FetchError, "Request failed")
	})

	t.Run("missing url", func(t *testing.T) {
		sum := summary()
		sum.JobURL = nil
		d := newScraper(&fakeFetcher{}).Enrich(context.Background(), sum)
		assert.Equal(t, scraper.MissingURL, *d.FetchError)
	})
}

func TestList(t *testing.T) {
	target := DefaultTargets()[0]
	assert.Equal(t, "https://id.jobstreet.com/id/geologist-jobs", target.URL)

	jobs, err := newScraper(&fakeFetcher{pages: map[string]string{target.URL: listingHTML}}).List(context.Background(), target)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}
