package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownSource = errors.New("unknown source")

type Source string

const (
	SourceIndeed     Source = "indeed"
	SourceLinkedIn   Source = "linkedin"
	SourceJobStreet  Source = "jobstreet"
	SourcePetromindo Source = "petromindo"
	SourceDisnakerja Source = "disnakerja"
)

// AllSources lists every supported source in run order.
var AllSources = []Source{
	SourceIndeed,
	SourceLinkedIn,
	SourceJobStreet,
	SourcePetromindo,
	SourceDisnakerja,
}

func ParseSource(s string) (Source, error) {
	src := Source(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllSources {
		if src == known {
			return src, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
}

// JobSummary is what a listing pass yields for one card.
// A nil pointer means the field was not on the listing page.
type JobSummary struct {
	Source      Source     `json:"source"`
	JobID       *string    `json:"job_id"`
	JobURL      *string    `json:"job_url"`
	JobTitle    *string    `json:"job_title"`
	JobCompany  *string    `json:"job_company"`
	JobLocation *string    `json:"job_location"`
	JobSalary   *string    `json:"job_salary"`
	JobListDate *time.Time `json:"job_list_date"`
	Industries  *string    `json:"industries"`

	//EmploymentType is only known on listing pages of some sources
	EmploymentType *string `json:"employment_type"`
}

// Columns is the fixed column order of a stored JobDetail row.
var Columns = [14]string{
	"source",
	"job_id",
	"job_url",
	"job_title",
	"job_company",
	"job_location",
	"job_salary",
	"job_list_date",
	"seniority_level",
	"employment_type",
	"industries",
	"job_description",
	"applicant",
	"get_time",
}

// JobDetail is a fully enriched posting. FetchError is kept out of Columns:
// it reports a transport failure instead of overwriting content fields.
type JobDetail struct {
	Source         Source     `json:"source"`
	JobID          *string    `json:"job_id"`
	JobURL         *string    `json:"job_url"`
	JobTitle       *string    `json:"job_title"`
	JobCompany     *string    `json:"job_company"`
	JobLocation    *string    `json:"job_location"`
	JobSalary      *string    `json:"job_salary"`
	JobListDate    *time.Time `json:"job_list_date"`
	SeniorityLevel *string    `json:"seniority_level"`
	EmploymentType *string    `json:"employment_type"`
	Industries     *string    `json:"industries"`
	JobDescription *string    `json:"job_description"`
	Applicant      *string    `json:"applicant"`
	GetTime        time.Time  `json:"get_time"`
	FetchError     *string    `json:"fetch_error,omitempty"`
}

// NewDetail starts a detail from a summary. Fields the listing could not
// provide stay nil and GetTime is set to now.
func NewDetail(s JobSummary, now time.Time) JobDetail {
	return JobDetail{
		Source:      s.Source,
		JobID:       s.JobID,
		JobURL:      s.JobURL,
		JobTitle:    s.JobTitle,
		JobCompany:  s.JobCompany,
		JobLocation: s.JobLocation,
		JobSalary:   s.JobSalary,
		JobListDate: s.JobListDate,
		Industries:  s.Industries,
		GetTime:     now,

		EmploymentType: s.EmploymentType,
	}
}

// Fail records a transport failure and refreshes GetTime.
func (d JobDetail) Fail(msg string, now time.Time) JobDetail {
	d.FetchError = &msg
	d.GetTime = now
	return d
}

func (d JobDetail) Failed() bool {
	return d.FetchError != nil
}

// Values returns the row in Columns order.
func (d JobDetail) Values() [14]any {
	var listDate any
	if d.JobListDate != nil {
		listDate = *d.JobListDate
	}
	return [14]any{
		string(d.Source),
		ptrValue(d.JobID),
		ptrValue(d.JobURL),
		ptrValue(d.JobTitle),
		ptrValue(d.JobCompany),
		ptrValue(d.JobLocation),
		ptrValue(d.JobSalary),
		listDate,
		ptrValue(d.SeniorityLevel),
		ptrValue(d.EmploymentType),
		ptrValue(d.Industries),
		ptrValue(d.JobDescription),
		ptrValue(d.Applicant),
		d.GetTime,
	}
}

// Strings returns the row as sheet-ready text. Absent values become "".
func (d JobDetail) Strings() [14]string {
	listDate := ""
	if d.JobListDate != nil {
		listDate = d.JobListDate.Format(DateLayout)
	}
	return [14]string{
		string(d.Source),
		Deref(d.JobID),
		Deref(d.JobURL),
		Deref(d.JobTitle),
		Deref(d.JobCompany),
		Deref(d.JobLocation),
		Deref(d.JobSalary),
		listDate,
		Deref(d.SeniorityLevel),
		Deref(d.EmploymentType),
		Deref(d.Industries),
		Deref(d.JobDescription),
		Deref(d.Applicant),
		d.GetTime.Format(time.RFC3339),
	}
}

const DateLayout = "2006-01-02"

// NotificationLog is one line of the send report.
type NotificationLog struct {
	Source     Source    `json:"source"`
	JobURL     string    `json:"job_url"`
	JobTitle   string    `json:"job_title"`
	JobCompany string    `json:"job_company"`
	PostedAt   time.Time `json:"posted_at"`
	MessageID  *int      `json:"message_id,omitempty"`
	Error      *string   `json:"error,omitempty"`
}

// FailedSendOffset pushes posted_at of unsent messages far into the future
// so they sort apart from delivered ones.
const FailedSendOffset = 50

// Str returns nil for blank strings.
func Str(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Date truncates t to a calendar date in its own location.
func Date(t time.Time) *time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return &d
}

func ptrValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
