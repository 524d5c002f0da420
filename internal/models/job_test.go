package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		in      string
		want    Source
		wantErr bool
	}{
		{in: "indeed", want: SourceIndeed},
		{in: " LinkedIn ", want: SourceLinkedIn},
		{in: "jobstreet", want: SourceJobStreet},
		{in: "petromindo", want: SourcePetromindo},
		{in: "disnakerja", want: SourceDisnakerja},
		{in: "glassdoor", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSource(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownSource)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColumnsOrder(t *testing.T) {
	assert.Equal(t, [14]string{
		"source", "job_id", "job_url", "job_title", "job_company",
		"job_location", "job_salary", "job_list_date", "seniority_level",
		"employment_type", "industries", "job_description", "applicant",
		"get_time",
	}, Columns)
}

func TestNewDetail_KeepsSummaryAndDefaultsRest(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	summary := JobSummary{
		Source:     SourcePetromindo,
		JobID:      Str("123"),
		JobURL:     Str("https://example.com/job/123"),
		JobTitle:   Str("Geologist"),
		Industries: Str("mining"),
	}

	d := NewDetail(summary, now)

	vals := d.Values()
	require.Len(t, vals, len(Columns))
	assert.Equal(t, "petromindo", vals[0])
	assert.Equal(t, "123", vals[1])
	assert.Equal(t, "Geologist", vals[3])
	assert.Nil(t, vals[5])
	assert.Nil(t, vals[8])
	assert.Equal(t, "mining", vals[10])
	assert.Nil(t, vals[11])
	assert.Equal(t, now, vals[13])
	assert.False(t, d.Failed())
}

func TestFail_DoesNotTouchContentFields(t *testing.T) {
	start := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	later := start.Add(time.Minute)
	d := NewDetail(JobSummary{Source: SourceJobStreet, JobID: Str("1")}, start)

	failed := d.Fail("Request failed: timeout", later)

	assert.True(t, failed.Failed())
	assert.Equal(t, "Request failed: timeout", *failed.FetchError)
	assert.Nil(t, failed.JobDescription)
	assert.Nil(t, failed.JobLocation)
	assert.Equal(t, later, failed.GetTime)
	assert.False(t, d.Failed(), "input detail must stay untouched")
}

func TestStrings(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	d := NewDetail(JobSummary{
		Source:      SourceIndeed,
		JobID:       Str("abc"),
		JobListDate: Date(now),
	}, now)

	row := d.Strings()
	assert.Equal(t, "indeed", row[0])
	assert.Equal(t, "abc", row[1])
	assert.Equal(t, "", row[2])
	assert.Equal(t, "2024-06-15", row[7])
	assert.Equal(t, "2024-06-15T10:30:00Z", row[13])
}

func TestStr(t *testing.T) {
	assert.Nil(t, Str(""))
	assert.Nil(t, Str("   \n"))
	assert.Equal(t, "x", *Str("  x "))
}
