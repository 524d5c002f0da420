package industry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"go-geojob-automation/internal/models"
	"go-geojob-automation/internal/scraper"
	"go-geojob-automation/internal/store"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jobPage = `<html><body>
<div data-company-name="true"><a href="/cmp/Pt-Freeport">PT Freeport Indonesia</a></div>
</body></html>`

const companyPage = `<html><body><ul>
<li data-testid="companyInfo-industry"><div>Industry</div><div> Mining &amp; Metals </div></li>
</ul></body></html>`

type countingRenderer struct {
	calls atomic.Int32
	urls  sync.Map
	html  string
	err   error
}

func (c *countingRenderer) Render(_ context.Context, url string, _ scraper.RenderOptions) (string, error) {
	c.calls.Add(1)
	c.urls.Store(url, true)
	return c.html, c.err
}

func parse(t *testing.T, html string) *goquery.Document {
	doc, err := scraper.Parse(html)
	require.NoError(t, err)
	return doc
}

func TestResolve_LiveLookupOncePerCompany(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	r := &countingRenderer{html: companyPage}
	res := New(mem, r)
	doc := parse(t, jobPage)
	company := models.Str("PT Freeport Indonesia")

	got := res.Resolve(ctx, company, doc, "https://id.indeed.com/viewjob?jk=abc")
	require.NotNil(t, got)
	assert.Equal(t, "Mining & Metals", *got)
	_, visited := r.urls.Load("https://id.indeed.com/cmp/Pt-Freeport")
	assert.True(t, visited)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "Mining & Metals", *res.Resolve(ctx, company, doc, "https://id.indeed.com/viewjob?jk=def"))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), r.calls.Load())

	stored, err := mem.Industry(ctx, "PT Freeport Indonesia")
	require.NoError(t, err)
	assert.Equal(t, "Mining & Metals", stored)
}

func TestResolve_ConcurrentFirstLookupCollapses(t *testing.T) {
	r := &countingRenderer{html: companyPage}
	res := New(store.NewMemory(), r)
	doc := parse(t, jobPage)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res.Resolve(context.Background(), models.Str("PT Vale"), doc, "https://id.indeed.com/viewjob?jk=1")
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestResolve_UsesStoredMapping(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.AppendIndustry(ctx, "PT Antam", "Mining"))
	r := &countingRenderer{html: companyPage}

	got := New(mem, r).Resolve(ctx, models.Str("PT Antam"), parse(t, jobPage), "https://id.indeed.com/viewjob?jk=1")
	assert.Equal(t, "Mining", *got)
	assert.Zero(t, r.calls.Load())
}

func TestResolve_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("nil company", func(t *testing.T) {
		assert.Nil(t, New(store.NewMemory(), &countingRenderer{}).Resolve(ctx, nil, nil, ""))
	})

	t.Run("render error records sentinel", func(t *testing.T) {
		mem := store.NewMemory()
		r := &countingRenderer{err: errors.New("net::ERR_TIMED_OUT")}
		got := New(mem, r).Resolve(ctx, models.Str("PT X"), parse(t, jobPage), "https://id.indeed.com/viewjob?jk=1")
		assert.Equal(t, NotAvailable, *got)
		stored, err := mem.Industry(ctx, "PT X")
		require.NoError(t, err)
		assert.Equal(t, NotAvailable, stored)
	})

	t.Run("no company link", func(t *testing.T) {
		r := &countingRenderer{html: companyPage}
		got := New(store.NewMemory(), r).Resolve(ctx, models.Str("PT Y"), parse(t, "<html></html>"), "https://id.indeed.com/")
		assert.Equal(t, NotAvailable, *got)
		assert.Zero(t, r.calls.Load())
	})

	t.Run("cancelled lookup is not recorded", func(t *testing.T) {
		mem := store.NewMemory()
		r := &countingRenderer{html: companyPage}
		res := New(mem, r)
		cctx, cancel := context.WithCancel(ctx)
		r.err = context.Canceled
		cancel()

		got := res.Resolve(cctx, models.Str("PT Q"), parse(t, jobPage), "https://id.indeed.com/viewjob?jk=1")
		assert.Equal(t, NotAvailable, *got)
		_, err := mem.Industry(ctx, "PT Q")
		assert.ErrorIs(t, err, store.ErrNotFound)

		r.err = nil
		got = res.Resolve(ctx, models.Str("PT Q"), parse(t, jobPage), "https://id.indeed.com/viewjob?jk=1")
		assert.Equal(t, "Mining & Metals", *got)
		assert.Equal(t, int32(2), r.calls.Load())
	})

	t.Run("without persist", func(t *testing.T) {
		mem := store.NewMemory()
		New(mem, &countingRenderer{html: companyPage}, WithoutPersist()).
			Resolve(ctx, models.Str("PT Z"), parse(t, jobPage), "https://id.indeed.com/")
		_, err := mem.Industry(ctx, "PT Z")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
