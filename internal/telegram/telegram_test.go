package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go-geojob-automation/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func job(src models.Source, location, level *string, description string) models.JobDetail {
	return models.JobDetail{
		Source:         src,
		JobURL:         models.Str("https://example.com/job/1"),
		JobTitle:       models.Str("Senior Geologist"),
		JobCompany:     models.Str("PT Bumi"),
		JobLocation:    location,
		SeniorityLevel: level,
		JobDescription: models.Str(description),
	}
}

func TestFormatJob_Lines(t *testing.T) {
	loc := models.Str("Jakarta, Indonesia")
	lvl := models.Str("Mid-Senior level")
	head := "<strong>SENIOR GEOLOGIST</strong>\n<em>PT Bumi</em>\n\n"
	tail := "Desc\n\nhttps://example.com/job/1"

	tests := []struct {
		name string
		job  models.JobDetail
		want string
	}{
		{"both", job(models.SourceLinkedIn, loc, lvl, "Desc"), head + "Location: Jakarta\nLevel: Mid-Senior level\n\n" + tail},
		{"neither", job(models.SourceIndeed, nil, nil, "Desc"), head + tail},
		{"no level", job(models.SourceIndeed, loc, nil, "Desc"), head + "Location: Jakarta\n\n" + tail},
		{"jobstreet hides level", job(models.SourceJobStreet, loc, lvl, "Desc"), head + "Location: Jakarta\n\n" + tail},
		{"no location", job(models.SourceLinkedIn, nil, lvl, "Desc"), head + "Level: Mid-Senior level\n\n" + tail},
		{"disnakerja hides level", job(models.SourceDisnakerja, loc, lvl, "Desc"), head + "Location: Jakarta\n\n" + tail},
		{"disnakerja without location", job(models.SourceDisnakerja, nil, lvl, "Desc"), head + tail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatJob(tt.job))
		})
	}
}

func TestFormatJob_EscapesPlainFields(t *testing.T) {
	d := job(models.SourceLinkedIn, models.Str("Kutai <Timur>, Indonesia"), models.Str("Entry & Mid"), "<p>Desc</p>")
	d.JobTitle = models.Str("R&D Engineer <Mining>")
	d.JobCompany = models.Str("PT Bumi & Mineral")
	d.JobURL = models.Str("https://example.com/job?id=1&ref=tg")

	msg := FormatJob(d)
	assert.Contains(t, msg, "<strong>R&amp;D ENGINEER &lt;MINING&gt;</strong>")
	assert.Contains(t, msg, "<em>PT Bumi &amp; Mineral</em>")
	assert.Contains(t, msg, "Location: Kutai &lt;Timur&gt;")
	assert.Contains(t, msg, "Level: Entry &amp; Mid")
	assert.Contains(t, msg, "<p>Desc</p>")
	assert.Contains(t, msg, "https://example.com/job?id=1&amp;ref=tg")
	assert.NotContains(t, msg, "<MINING>")
}

func TestFormatJob_Truncation(t *testing.T) {
	t.Run("long text", func(t *testing.T) {
		msg := FormatJob(job(models.SourceIndeed, nil, nil, strings.Repeat("a", 600)))
		assert.Contains(t, msg, strings.Repeat("a", 500)+"...\n\nRead more on website:\nhttps://example.com/job/1")
		assert.NotContains(t, msg, strings.Repeat("a", 501))
	})

	t.Run("many lines", func(t *testing.T) {
		desc := strings.Repeat("line\n", 70)
		msg := FormatJob(job(models.SourceIndeed, nil, nil, desc))
		assert.Contains(t, msg, "Read more on website:")
		assert.Equal(t, 60, strings.Count(msg, "line"))
	})

	t.Run("petromindo skips the line cut", func(t *testing.T) {
		desc := strings.Repeat("line\n", 70)
		msg := FormatJob(job(models.SourcePetromindo, nil, nil, desc))
		assert.NotContains(t, msg, "Read more on website:")
		assert.Equal(t, 70, strings.Count(msg, "line"))
	})

	t.Run("open tag at the cut", func(t *testing.T) {
		desc := strings.Repeat("b", 490) + "<strong>heading text</strong>"
		got := truncate(desc, models.SourceIndeed)
		assert.Equal(t, strings.Repeat("b", 490)+readMore, got)
	})

	t.Run("short text", func(t *testing.T) {
		assert.Equal(t, "short\n\n", truncate("short", models.SourceIndeed))
	})
}

type fakeAPI struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{MessageID: 100 + len(f.sent)}, nil
}

func TestBot_Send(t *testing.T) {
	api := &fakeAPI{}
	b := &Bot{api: api, chatID: -1001}

	id, err := b.Send(context.Background(), "<strong>X</strong>")
	require.NoError(t, err)
	assert.Equal(t, 101, id)
	require.Len(t, api.sent, 1)
	assert.Equal(t, tgbotapi.ModeHTML, api.sent[0].ParseMode)
	assert.Equal(t, int64(-1001), api.sent[0].ChatID)

	require.NoError(t, b.SendError(context.Background(), errors.New("a < b")))
	assert.Contains(t, api.sent[1].Text, "a &lt; b")

	api.err = errors.New("Forbidden: bot was blocked")
	_, err = b.Send(context.Background(), "x")
	assert.ErrorContains(t, err, "bot was blocked")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.Send(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
