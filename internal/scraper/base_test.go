package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go-geojob-automation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScraper struct{ name models.Source }

func (s stubScraper) Name() models.Source { return s.name }
func (s stubScraper) Targets() []Target   { return nil }
func (s stubScraper) List(context.Context, Target) ([]models.JobSummary, error) {
	return nil, nil
}
func (s stubScraper) Enrich(_ context.Context, sum models.JobSummary) models.JobDetail {
	return models.NewDetail(sum, time.Now())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(stubScraper{models.SourceIndeed}, stubScraper{models.SourcePetromindo})

	s, err := r.Get(models.SourcePetromindo)
	require.NoError(t, err)
	assert.Equal(t, models.SourcePetromindo, s.Name())

	_, err = r.Get(models.SourceLinkedIn)
	assert.ErrorIs(t, err, models.ErrUnknownSource)

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, models.SourceIndeed, all[0].Name())
}

func TestSelectionHelpers(t *testing.T) {
	doc, err := Parse(`<div id="card">
		<a class="x">  </a>
		<a class="x" data-jk="">empty</a>
		<a class="x" data-jk="abc">Title</a>
		<span class="co"> ACME  </span>
	</div>`)
	require.NoError(t, err)

	card := doc.Find("#card")
	assert.Equal(t, "abc", *FirstAttr(card, "a.x", "data-jk"))
	assert.Nil(t, FirstAttr(card, "a.x", "href"))
	assert.Equal(t, "ACME", *FirstText(card, "span.co"))
	assert.Nil(t, FirstText(card, "span.missing"))
	assert.Contains(t, OuterHTML(card.Find("span.co")), `<span class="co">`)
}

func TestAfterFirst(t *testing.T) {
	assert.Equal(t, "12345", AfterFirst("post-12345", "-"))
	assert.Equal(t, "a-b", AfterFirst("x-a-b", "-"))
	assert.Equal(t, "plain", AfterFirst("plain", "-"))
}

func TestFailMessage(t *testing.T) {
	challenge := fmt.Errorf("%w at https://id.jobstreet.com/job/1", ErrChallenge)
	assert.Equal(t, "Cloudflare challenge encountered: anti-bot challenge page at https://id.jobstreet.com/job/1", FailMessage(challenge))
	assert.Equal(t, "Request failed: boom", FailMessage(errors.New("boom")))
}

func TestSessionDefaults(t *testing.T) {
	var s *Session
	assert.Nil(t, s.Throttle(models.SourceIndeed))
	assert.WithinDuration(t, time.Now(), s.Clock(), time.Second)

	fixed := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	s = &Session{Now: func() time.Time { return fixed }}
	assert.Equal(t, fixed, s.Clock())
}
