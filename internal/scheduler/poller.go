package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/icarus/internal/geolocation"
	"github.com/go-co-op/gocron"
)

const defaultInterval = 30 * time.Second

// Poller periodically reads the user location from a geolocation source and forwards every
// reading, including degraded ones, to a channel.
type Poller struct {
	scheduler *gocron.Scheduler
	source    geolocation.Source
	interval  time.Duration
	out       chan<- geolocation.Reading
	log       *slog.Logger
}

// New creates a Poller delivering to out. A non-positive interval falls back to 30 seconds.
func New(source geolocation.Source, interval time.Duration, out chan<- geolocation.Reading, log *slog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}

	return &Poller{
		scheduler: gocron.NewScheduler(time.UTC),
		source:    source,
		interval:  interval,
		out:       out,
		log:       log,
	}
}

// Start schedules the poll job, running it immediately and then every interval.
func (p *Poller) Start(ctx context.Context) error {
	_, err := p.scheduler.Every(p.interval).SingletonMode().Do(func() {
		p.poll(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule location polling: %w", err)
	}

	p.log.InfoContext(ctx, "Location poller started", "interval", p.interval)
	p.scheduler.StartAsync()

	return nil
}

// Stop stops the scheduler and cancels any future polls.
func (p *Poller) Stop() {
	if p.scheduler != nil {
		p.scheduler.Stop()
	}
}

func (p *Poller) poll(ctx context.Context) {
	pollCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	reading, err := p.source.Locate(pollCtx)
	if err != nil {
		p.log.WarnContext(ctx, "Failed to locate user", "error", err)
	}

	select {
	case <-ctx.Done():
	case p.out <- reading:
	}
}
