package serve

import (
	"log/slog"

	"github.com/sig-0/ratewatch/fetch"
	"github.com/sig-0/ratewatch/metrics"
	"github.com/sig-0/ratewatch/poll"
	pollconfig "github.com/sig-0/ratewatch/poll/config"
	"github.com/sig-0/ratewatch/provider/taptap"
	"github.com/sig-0/ratewatch/storage"
	"github.com/sig-0/ratewatch/tracker"
)

// newScheduler wires the polling scheduler from the poll configuration
func newScheduler(
	cfg *pollconfig.Config,
	calls *tracker.Tracker,
	store storage.Storage,
	m *metrics.Metrics,
	logger *slog.Logger,
) *poll.Scheduler {
	client := fetch.NewClient(cfg.CallTimeout())

	scraperOpts := []taptap.Option{
		taptap.WithLogger(logger),
		taptap.WithSampleAmount(cfg.SampleAmount),
	}

	if cfg.Scraper.URL != "" {
		scraperOpts = append(scraperOpts, taptap.WithURL(cfg.Scraper.URL))
	}

	if len(cfg.Scraper.Headers) > 0 {
		scraperOpts = append(scraperOpts, taptap.WithHeaders(cfg.Scraper.Headers))
	}

	return poll.New(
		calls,
		client,
		poll.WithLogger(logger),
		poll.WithInterval(cfg.PollInterval()),
		poll.WithEndpoints(cfg.Endpoints),
		poll.WithMonitorPairs(cfg.MonitorPairs),
		poll.WithScraper(taptap.NewScraper(client, scraperOpts...)),
		poll.WithStorage(store),
		poll.WithMetrics(m),
	)
}
