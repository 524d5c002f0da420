// Package scheduler repeats scrape runs on a cron spec.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps robfig/cron. Runs never overlap: a tick that fires while
// the previous run is still going is skipped.
type Scheduler struct {
	cron *cron.Cron
	spec string
	run  func(ctx context.Context)

	//first tracks the startup run, which cron itself does not wait for
	first sync.WaitGroup
}

// New creates a Scheduler for spec, e.g. "@every 6h" or "0 */6 * * *".
func New(spec string, run func(ctx context.Context)) *Scheduler {
	logger := cron.VerbosePrintfLogger(log.New(os.Stderr, "[scheduler] ", log.LstdFlags))
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		spec: spec,
		run:  run,
	}
}

// Start registers the job, starts the cron loop and triggers one run right
// away so the first results do not wait for a tick.
func (s *Scheduler) Start(ctx context.Context) error {
	id, err := s.cron.AddFunc(s.spec, func() {
		s.run(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	log.Printf("⏰ Cron started, spec: %s", s.spec)

	//the wrapped job shares the skip-if-running guard with the ticks
	job := s.cron.Entry(id).WrappedJob
	s.first.Add(1)
	go func() {
		defer s.first.Done()
		job.Run()
	}()

	return nil
}

// Stop stops new ticks and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.first.Wait()
	log.Println("⏰ Cron stopped")
}
