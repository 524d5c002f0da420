package store

import (
	"database/sql"
	"fmt"
	"time"

	"go-geojob-automation/internal/models"

	sq "github.com/Masterminds/squirrel"
)

const (
	detailsTable       = "job_details"
	industriesTable    = "industries"
	notificationsTable = "notifications"

	// insertChunk keeps multi-row inserts well under the bind-variable limit.
	insertChunk = 500
)

// detailColumns is the fixed 14-column row followed by fetch_error.
func detailColumns() []string {
	cols := make([]string, 0, len(models.Columns)+1)
	cols = append(cols, models.Columns[:]...)
	return append(cols, "fetch_error")
}

var notificationColumns = []string{
	"source", "job_url", "job_title", "job_company", "posted_at", "message_id", "error",
}

// scanner is satisfied by both *sql.Row(s) and pgx.Row(s).
type scanner interface {
	Scan(dest ...any) error
}

func detailArgs(d models.JobDetail) []any {
	text := d.Strings()
	args := make([]any, 0, len(text)+1)
	for i, v := range d.Values() {
		if v == nil {
			args = append(args, nil)
			continue
		}
		args = append(args, text[i])
	}
	return append(args, nullable(d.FetchError))
}

func scanDetail(row scanner) (models.JobDetail, error) {
	var cols [15]sql.NullString
	dest := make([]any, len(cols))
	for i := range cols {
		dest[i] = &cols[i]
	}
	if err := row.Scan(dest...); err != nil {
		return models.JobDetail{}, fmt.Errorf("scan job row: %w", err)
	}

	d := models.JobDetail{
		Source:         models.Source(cols[0].String),
		JobID:          ptr(cols[1]),
		JobURL:         ptr(cols[2]),
		JobTitle:       ptr(cols[3]),
		JobCompany:     ptr(cols[4]),
		JobLocation:    ptr(cols[5]),
		JobSalary:      ptr(cols[6]),
		SeniorityLevel: ptr(cols[8]),
		EmploymentType: ptr(cols[9]),
		Industries:     ptr(cols[10]),
		JobDescription: ptr(cols[11]),
		Applicant:      ptr(cols[12]),
		FetchError:     ptr(cols[14]),
	}
	if cols[7].Valid {
		if t, err := time.Parse(models.DateLayout, cols[7].String); err == nil {
			d.JobListDate = &t
		}
	}
	if t, err := time.Parse(time.RFC3339, cols[13].String); err == nil {
		d.GetTime = t
	}
	return d, nil
}

func notificationArgs(n models.NotificationLog) []any {
	var msgID any
	if n.MessageID != nil {
		msgID = int64(*n.MessageID)
	}
	return []any{
		string(n.Source),
		n.JobURL,
		n.JobTitle,
		n.JobCompany,
		n.PostedAt.Format(time.RFC3339),
		msgID,
		nullable(n.Error),
	}
}

func scanNotification(row scanner) (models.NotificationLog, error) {
	var (
		n                                 models.NotificationLog
		source, url, title, company, when string
		msgID                             sql.NullInt64
		errText                           sql.NullString
	)
	if err := row.Scan(&source, &url, &title, &company, &when, &msgID, &errText); err != nil {
		return n, fmt.Errorf("scan notification row: %w", err)
	}
	n = models.NotificationLog{
		Source:     models.Source(source),
		JobURL:     url,
		JobTitle:   title,
		JobCompany: company,
		Error:      ptr(errText),
	}
	if t, err := time.Parse(time.RFC3339, when); err == nil {
		n.PostedAt = t
	}
	if msgID.Valid {
		id := int(msgID.Int64)
		n.MessageID = &id
	}
	return n, nil
}

// Query builders shared by the SQL backends. Each backend supplies its
// placeholder format through sb.

func seenIDsQuery(sb sq.StatementBuilderType, source models.Source) sq.SelectBuilder {
	return sb.Select("job_id").
		From(detailsTable).
		Where(sq.Eq{"source": string(source)}).
		Where(sq.NotEq{"job_id": nil})
}

func insertDetailsQuery(sb sq.StatementBuilderType, details []models.JobDetail) sq.InsertBuilder {
	q := sb.Insert(detailsTable).Columns(detailColumns()...)
	for _, d := range details {
		q = q.Values(detailArgs(d)...)
	}
	return q
}

func industryQuery(sb sq.StatementBuilderType, company string) sq.SelectBuilder {
	return sb.Select("industry").
		From(industriesTable).
		Where(sq.Eq{"company": company}).
		OrderBy("seq DESC").
		Limit(1)
}

func insertIndustryQuery(sb sq.StatementBuilderType, company, industry string) sq.InsertBuilder {
	return sb.Insert(industriesTable).
		Columns("company", "industry").
		Values(company, industry)
}

func insertNotificationsQuery(sb sq.StatementBuilderType, logs []models.NotificationLog) sq.InsertBuilder {
	q := sb.Insert(notificationsTable).Columns(notificationColumns...)
	for _, n := range logs {
		q = q.Values(notificationArgs(n)...)
	}
	return q
}

func recentDetailsQuery(sb sq.StatementBuilderType, source models.Source, limit int) sq.SelectBuilder {
	q := sb.Select(detailColumns()...).
		From(detailsTable).
		OrderBy("seq DESC").
		Limit(uint64(clampLimit(limit)))
	if source != "" {
		q = q.Where(sq.Eq{"source": string(source)})
	}
	return q
}

func recentNotificationsQuery(sb sq.StatementBuilderType, limit int) sq.SelectBuilder {
	return sb.Select(notificationColumns...).
		From(notificationsTable).
		OrderBy("seq DESC").
		Limit(uint64(clampLimit(limit)))
}

// schema returns the DDL for all tables. serial is the dialect's
// auto-increment primary key type.
func schema(serial string) []string {
	cols := ""
	for _, c := range detailColumns() {
		cols += fmt.Sprintf(",\n  %s TEXT", c)
	}
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  seq %s%s
)`, detailsTable, serial, cols),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_job_details_source_id ON %s (source, job_id)`, detailsTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  seq %s,
  company TEXT NOT NULL,
  industry TEXT NOT NULL
)`, industriesTable, serial),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_industries_company ON %s (company)`, industriesTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  seq %s,
  source TEXT NOT NULL,
  job_url TEXT NOT NULL,
  job_title TEXT NOT NULL,
  job_company TEXT NOT NULL,
  posted_at TEXT NOT NULL,
  message_id BIGINT,
  error TEXT
)`, notificationsTable, serial),
	}
}

func chunks[T any](items []T, size int) [][]T {
	var out [][]T
	for size < len(items) {
		items, out = items[size:], append(out, items[:size])
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func ptr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
