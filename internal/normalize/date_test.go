package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelativeDate(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		label string
		want  string
	}{
		{label: "3 hari lalu", want: "2024-06-12"},
		{label: "30+ days ago", want: "2024-05-01"},
		{label: "30+ days", want: "2024-05-01"},
		{label: "30 hari lalu", want: "2024-05-01"},
		{label: "today", want: "2024-06-15"},
		{label: "Just posted", want: "2024-06-15"},
		{label: "Baru saja", want: "2024-06-15"},
		{label: "Hari ini", want: "2024-06-15"},
		{label: "Posted 7 days ago", want: "2024-06-08"},
		{label: "Active 1 day ago", want: "2024-06-14"},
		{label: "Diposkan 2 hari lalu", want: "2024-06-13"},
		{label: "Employer", want: ""},
		{label: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got := RelativeDate(tt.label, now)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestRelativeDate_JanuaryRollsBackYear(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	got := RelativeDate("30+ days ago", now)
	require.NotNil(t, got)
	assert.Equal(t, "2023-12-01", got.Format("2006-01-02"))
}

func TestISODate(t *testing.T) {
	tests := map[string]string{
		"2024-06-01T08:15:30.123Z":  "2024-06-01",
		"2024-06-01T08:15:30Z":      "2024-06-01",
		"2024-06-01T08:15:30+07:00": "2024-06-01",
		"2024-06-01":                "2024-06-01",
	}
	for in, want := range tests {
		got := ISODate(in)
		require.NotNil(t, got, in)
		assert.Equal(t, want, got.Format("2006-01-02"))
	}
	assert.Nil(t, ISODate("yesterday"))
	assert.Nil(t, ISODate(""))
}

func TestJSONDate(t *testing.T) {
	got := JSONDate(json.RawMessage(`"2024-06-01T08:15:30.000Z"`))
	require.NotNil(t, got)
	assert.Equal(t, "2024-06-01", got.Format("2006-01-02"))

	got = JSONDate(json.RawMessage(`1717200000000`))
	require.NotNil(t, got)
	assert.Equal(t, "2024-06-01", got.Format("2006-01-02"))

	assert.Nil(t, JSONDate(json.RawMessage(`{"a":1}`)))
}

func TestLongDate(t *testing.T) {
	got := LongDate(" June 3, 2024 ")
	require.NotNil(t, got)
	assert.Equal(t, "2024-06-03", got.Format("2006-01-02"))
	assert.Nil(t, LongDate("03/06/2024"))
}
