package poll

import (
	"log/slog"
	"time"

	"github.com/sig-0/ratewatch/metrics"
	"github.com/sig-0/ratewatch/poll/config"
	"github.com/sig-0/ratewatch/storage"
)

type Option func(s *Scheduler)

// WithLogger specifies the logger for the scheduler
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// WithInterval specifies the sweep interval.
// Defaults to 3m
func WithInterval(interval time.Duration) Option {
	return func(s *Scheduler) {
		s.interval = interval
	}
}

// WithQueryInterval specifies how often the scheduler checks for due sweeps.
// Defaults to 1s
func WithQueryInterval(q time.Duration) Option {
	return func(s *Scheduler) {
		s.queryInterval = q
	}
}

// WithEndpoints specifies the endpoints called on every sweep
func WithEndpoints(endpoints []config.Endpoint) Option {
	return func(s *Scheduler) {
		s.endpoints = endpoints
	}
}

// WithMonitorPairs specifies the pairs logged after every successful scrape
func WithMonitorPairs(pairs []config.MonitorPair) Option {
	return func(s *Scheduler) {
		s.monitorPairs = pairs
	}
}

// WithScraper specifies the scraper run at the end of every sweep
func WithScraper(scraper Scraper) Option {
	return func(s *Scheduler) {
		s.scraper = scraper
	}
}

// WithStorage specifies where successful scrapes are saved
func WithStorage(st storage.Storage) Option {
	return func(s *Scheduler) {
		s.storage = st
	}
}

// WithMetrics specifies the polling metrics.
// Defaults to unregistered metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) {
		if m != nil {
			s.metrics = m
		}
	}
}
