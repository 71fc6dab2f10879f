package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-co-op/gocron"
	log "github.com/sirupsen/logrus"

	"github.com/i474232898/weather-cli/internal/weather"
)

// Scheduler periodically looks up the weather for one city (or the caller's
// own city when none is configured) and appends it to history.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	city      string
	interval  time.Duration
	timeout   time.Duration
	out       io.Writer
}

// New creates a new Scheduler. Reports of successful lookups go to out.
func New(city string, interval, timeout time.Duration, service *weather.Service, out io.Writer) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		city:      city,
		interval:  interval,
		timeout:   timeout,
		out:       out,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first lookup runs immediately. Runs never overlap.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return errors.New("scheduler: interval must be positive")
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
		log.Debug("[scheduler] running weather lookup job")
		if err := s.RunOnce(context.Background()); err != nil {
			log.Warnf("[scheduler] lookup failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce performs a single lookup bounded by the configured timeout.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		rec weather.Record
		err error
	)
	if s.city == "" {
		rec, err = s.service.LookupLocal(ctx)
	} else {
		rec, err = s.service.Lookup(ctx, s.city)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(s.out, "\n%s", weather.FormatReport(rec))
	return err
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
