// Package pipeline runs one source end to end: list, dedup, enrich,
// store and notify.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"go-geojob-automation/internal/dedup"
	"go-geojob-automation/internal/filter"
	"go-geojob-automation/internal/models"
	"go-geojob-automation/internal/ratelimit"
	"go-geojob-automation/internal/scraper"
	"go-geojob-automation/internal/store"
	"go-geojob-automation/internal/telegram"
)

type State string

const (
	StateInit       State = "init"
	StateList       State = "list"
	StateDedup      State = "dedup"
	StateEnrich     State = "enrich"
	StateDistribute State = "distribute"
	StateNotify     State = "notify"
	StateDone       State = "done"
)

// Sink delivers one formatted message and returns its id.
type Sink interface {
	Send(ctx context.Context, text string) (int, error)
}

var _ Sink = (*telegram.Bot)(nil)

type Options struct {
	//DryRun lists and enriches but never writes to the store or the sink
	DryRun bool
	//NotifyFailed also announces records whose detail fetch failed
	NotifyFailed bool
	//Rules decide which stored records are announced
	Rules filter.Rules
	//NotifyThrottle spaces out sends
	NotifyThrottle *ratelimit.Throttle
	//LogDir receives a JSON dump of each run's records when set
	LogDir string
}

// Report summarizes one run.
type Report struct {
	Source   models.Source
	Listed   int
	Kept     int
	Enriched int
	Failed   int
	Stored   int
	Notified int
	Duration time.Duration
}

func (r Report) String() string {
	return fmt.Sprintf("%s: listed %d, new %d, enriched %d (%d failed), stored %d, notified %d in %s",
		r.Source, r.Listed, r.Kept, r.Enriched, r.Failed, r.Stored, r.Notified, r.Duration.Round(time.Second))
}

type Pipeline struct {
	scraper scraper.Scraper
	session *scraper.Session
	store   store.TableStore
	sink    Sink
	opts    Options
	state   State
}

// New checks the wiring. The sink may be nil only for dry runs.
func New(s scraper.Scraper, session *scraper.Session, st store.TableStore, sink Sink, opts Options) (*Pipeline, error) {
	if s == nil {
		return nil, errors.New("pipeline: no scraper")
	}
	if st == nil {
		return nil, errors.New("pipeline: no store")
	}
	if sink == nil && !opts.DryRun {
		return nil, errors.New("pipeline: no sink configured")
	}
	if session == nil {
		session = &scraper.Session{}
	}
	return &Pipeline{scraper: s, session: session, store: st, sink: sink, opts: opts, state: StateInit}, nil
}

func (p *Pipeline) State() State {
	return p.state
}

func (p *Pipeline) enter(s State) {
	p.state = s
	log.Printf("🔁 [%s] %s", p.scraper.Name(), s)
}

// Run executes every stage once. Setup failures and a failed store write
// are returned; per-target and per-record failures are logged and skipped.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	src := p.scraper.Name()
	started := p.session.Clock()
	report := Report{Source: src}
	finish := func() Report {
		report.Duration = p.session.Clock().Sub(started)
		return report
	}

	p.enter(StateInit)
	seen := dedup.NewSeenSet()
	if err := seen.Load(ctx, p.store, src); err != nil {
		return finish(), err
	}

	p.enter(StateList)
	var summaries []models.JobSummary
	for _, target := range p.scraper.Targets() {
		if err := ctx.Err(); err != nil {
			return finish(), err
		}
		jobs, err := p.scraper.List(ctx, target)
		if err != nil {
			log.Printf("❌ Error listing %s: %v", target.URL, err)
			continue
		}
		summaries = append(summaries, jobs...)
	}
	report.Listed = len(summaries)
	log.Printf("📦 There are a total of %d unfiltered %s jobs", report.Listed, src)

	p.enter(StateDedup)
	fresh := dedup.Filter(summaries, seen, scraper.HasIDs(p.scraper))
	report.Kept = len(fresh)
	log.Printf("🔍 Deduplication: %d total -> %d new jobs", report.Listed, report.Kept)

	p.enter(StateEnrich)
	details := make([]models.JobDetail, 0, len(fresh))
	throttle := p.session.Throttle(src)
	for i, summary := range fresh {
		if err := throttle.Wait(ctx); err != nil {
			return finish(), err
		}
		log.Printf("  [%d/%d]", i+1, len(fresh))
		d := p.scraper.Enrich(ctx, summary)
		if d.Failed() {
			report.Failed++
		}
		details = append(details, d)
	}
	report.Enriched = len(details)

	p.enter(StateDistribute)
	p.dump(src, details)
	if !p.opts.DryRun && len(details) > 0 {
		if err := p.store.AppendDetails(ctx, details); err != nil {
			return finish(), fmt.Errorf("failed to store %s jobs: %w", src, err)
		}
		report.Stored = len(details)
		log.Printf("💾 Stored %d %s jobs", report.Stored, src)
	}

	p.enter(StateNotify)
	relevant, rest := p.opts.Rules.Split(details)
	if len(rest) > 0 {
		log.Printf("🚫 %d jobs outside the wanted industries are stored but not announced", len(rest))
	}
	logs, err := p.notify(ctx, relevant, &report)
	if len(logs) > 0 {
		//sent messages are logged even when the run was cancelled mid-way
		if err := p.store.AppendNotifications(context.WithoutCancel(ctx), logs); err != nil {
			log.Printf("⚠️ Failed to store notification log: %v", err)
		}
	}
	if err != nil {
		return finish(), err
	}

	p.enter(StateDone)
	return finish(), nil
}

func (p *Pipeline) notify(ctx context.Context, details []models.JobDetail, report *Report) ([]models.NotificationLog, error) {
	var logs []models.NotificationLog
	for _, d := range details {
		if d.Failed() && !p.opts.NotifyFailed {
			log.Printf("  ⏭️ Skipping %s: %s", models.Deref(d.JobURL), *d.FetchError)
			continue
		}
		text := telegram.FormatJob(d)
		if p.opts.DryRun {
			log.Printf("  📝 [dry-run] would send %s - %s", models.Deref(d.JobTitle), models.Deref(d.JobURL))
			continue
		}

		if err := p.opts.NotifyThrottle.Wait(ctx); err != nil {
			return logs, err
		}
		log.Printf("  📤 Sending msg for %s - %s", models.Deref(d.JobTitle), models.Deref(d.JobURL))
		entry := models.NotificationLog{
			Source:     d.Source,
			JobURL:     models.Deref(d.JobURL),
			JobTitle:   models.Deref(d.JobTitle),
			JobCompany: models.Deref(d.JobCompany),
			PostedAt:   p.session.Clock(),
		}
		id, err := p.sink.Send(ctx, text)
		if err != nil {
			log.Printf("  ⚠️ Error sending message for %s: %v", models.Deref(d.JobTitle), err)
			msg := err.Error()
			entry.Error = &msg
			entry.PostedAt = entry.PostedAt.AddDate(models.FailedSendOffset, 0, 0)
		} else {
			entry.MessageID = &id
			report.Notified++
		}
		logs = append(logs, entry)
	}
	return logs, nil
}

// dump writes the run's records to LogDir/<source>-YYYY-MM-DD.json.
func (p *Pipeline) dump(src models.Source, details []models.JobDetail) {
	if p.opts.LogDir == "" || len(details) == 0 {
		return
	}
	if err := os.MkdirAll(p.opts.LogDir, 0755); err != nil {
		log.Printf("⚠️ Failed to create logs directory: %v", err)
		return
	}

	filename := fmt.Sprintf("%s-%s.json", src, p.session.Clock().Format(models.DateLayout))
	filePath := filepath.Join(p.opts.LogDir, filename)

	data, err := json.MarshalIndent(details, "", " ")
	if err != nil {
		log.Printf("⚠️ Failed to marshal jobs to JSON: %v", err)
		return
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		log.Printf("⚠️ Failed to write logs file: %v", err)
		return
	}
	log.Printf("📁 Results saved to %s", filePath)
}
