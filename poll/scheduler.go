// Package poll drives the periodic endpoint sweeps and the rate scrape.
package poll

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sig-0/iq"

	"github.com/sig-0/ratewatch/fetch"
	"github.com/sig-0/ratewatch/metrics"
	"github.com/sig-0/ratewatch/poll/config"
	"github.com/sig-0/ratewatch/storage"
	"github.com/sig-0/ratewatch/storage/types"
	"github.com/sig-0/ratewatch/tracker"
)

var (
	errInvalidTracker  = errors.New("invalid tracker")
	errInvalidInterval = errors.New("invalid interval")
)

// Caller executes a single outbound request
type Caller interface {
	Do(context.Context, *fetch.Request) (*fetch.Response, error)
}

// Scraper fetches and normalizes a provider rate table
type Scraper interface {
	// Name returns the label the scrape is tracked under
	Name() string

	// URL returns the scraped URL
	URL() string

	// Scrape fetches the rate table, yielding a fresh snapshot
	Scrape(context.Context) (*types.ExchangeSnapshot, error)
}

// Scheduler runs a sweep over every configured endpoint (followed
// by the rate scrape) on a fixed interval
type Scheduler struct {
	tracker *tracker.Tracker
	caller  Caller
	scraper Scraper
	storage storage.Storage
	metrics *metrics.Metrics
	logger  *slog.Logger

	endpoints    []config.Endpoint
	monitorPairs []config.MonitorPair

	q             iq.Queue[scheduledSweep]
	interval      time.Duration
	queryInterval time.Duration
	qMux          sync.Mutex

	wg sync.WaitGroup
}

// New creates a new Scheduler instance
func New(t *tracker.Tracker, caller Caller, opts ...Option) *Scheduler {
	s := &Scheduler{
		tracker:       t,
		caller:        caller,
		metrics:       metrics.New(nil),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		q:             iq.NewQueue[scheduledSweep](),
		interval:      config.DefaultInterval,
		queryInterval: time.Second, // every second
	}

	// Apply the options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start starts the sweep loop [BLOCKING].
// The first sweep runs immediately. On shutdown the scheduler
// stops dispatching and waits for in-flight sweeps
func (s *Scheduler) Start(ctx context.Context) error {
	if s.tracker == nil {
		return errInvalidTracker
	}

	if s.interval <= 0 {
		return errInvalidInterval
	}

	collectorCh := make(chan *sweepResult, 16)

	// Start a listener for due sweeps
	ticker := time.NewTicker(s.queryInterval)
	defer ticker.Stop()

	// handleSweeps dispatches all sweeps that are due
	handleSweeps := func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				next := s.nextSweep()
				if next == nil {
					return // nothing is due
				}

				// Schedule the following sweep right away,
				// so a slow sweep never delays the next one
				s.scheduleSweep(s.followUp(next.at), xid.New())

				s.logger.Debug(
					"dispatching sweep",
					"id", next.id.String(),
				)

				s.wg.Add(1)

				go func() {
					defer s.wg.Done()

					handleSweep(ctx, s, next.id, collectorCh)
				}()
			}
		}
	}

	s.scheduleSweep(time.Now(), xid.New())

	// Run the first sweep on boot
	handleSweeps()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.logger.Info("scheduler shut down")

			return nil
		case <-ticker.C:
			handleSweeps()
		case res := <-collectorCh:
			s.logger.Info(
				"sweep completed",
				"id", res.id.String(),
				"duration", res.duration.String(),
				"succeeded", res.succeeded,
				"failed", res.failed,
				"blocked", res.blocked,
			)
		}
	}
}

// followUp returns the due time of the sweep after the one due at
func (s *Scheduler) followUp(at time.Time) time.Time {
	next := at.Add(s.interval)

	if now := time.Now(); next.Before(now) {
		return now.Add(s.interval)
	}

	return next
}

// scheduleSweep schedules a new sweep
func (s *Scheduler) scheduleSweep(at time.Time, id xid.ID) {
	s.qMux.Lock()
	defer s.qMux.Unlock()

	s.q.Push(scheduledSweep{
		at: at,
		id: id,
	})
}

// nextSweep fetches the next due sweep, as of the moment of calling
func (s *Scheduler) nextSweep() *scheduledSweep {
	s.qMux.Lock()
	defer s.qMux.Unlock()

	if s.q.Len() == 0 {
		return nil
	}

	// Check if the top element is due
	if s.q.Index(0).at.After(time.Now()) {
		return nil
	}

	return s.q.PopFront()
}
