package poll

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"

	"github.com/sig-0/ratewatch/fetch"
	"github.com/sig-0/ratewatch/metrics"
	"github.com/sig-0/ratewatch/poll/config"
	"github.com/sig-0/ratewatch/storage/types"
	"github.com/sig-0/ratewatch/tracker"
)

// scheduledSweep is a single scheduled sweep
type scheduledSweep struct {
	at time.Time
	id xid.ID
}

// Less is utilized to sort scheduled sweeps by their due-time (earliest == first)
func (a scheduledSweep) Less(b scheduledSweep) bool {
	return a.at.Before(b.at)
}

// sweepResult is the outcome summary of a single sweep
type sweepResult struct {
	duration time.Duration
	id       xid.ID

	succeeded int64
	failed    int64
	blocked   int64
}

// outcome is the result of a single tracked call
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeFailure
	outcomeBlocked
)

// handleSweep runs the sweep and reports its summary
func handleSweep(
	ctx context.Context,
	s *Scheduler,
	id xid.ID,
	resCh chan<- *sweepResult,
) {
	res := s.sweep(ctx)
	res.id = id

	select {
	case <-ctx.Done():
	case resCh <- res:
	}
}

// sweep calls every configured endpoint concurrently, then runs
// a single scrape. Every outcome is fed to the tracker
func (s *Scheduler) sweep(ctx context.Context) *sweepResult {
	start := time.Now()

	s.tracker.RollIfNeeded()

	var (
		succeeded atomic.Int64
		failed    atomic.Int64
		blocked   atomic.Int64

		count = func(o outcome) {
			switch o {
			case outcomeSuccess:
				succeeded.Add(1)
			case outcomeFailure:
				failed.Add(1)
			case outcomeBlocked:
				failed.Add(1)
				blocked.Add(1)
			}
		}
	)

	var g errgroup.Group

	for _, ep := range s.endpoints {
		g.Go(func() error {
			count(s.callEndpoint(ctx, ep))

			return nil
		})
	}

	_ = g.Wait()

	if s.scraper != nil {
		count(s.scrape(ctx))
	}

	duration := time.Since(start)
	s.metrics.ObserveSweep(duration)

	return &sweepResult{
		duration:  duration,
		succeeded: succeeded.Load(),
		failed:    failed.Load(),
		blocked:   blocked.Load(),
	}
}

// callEndpoint calls a single endpoint and records the outcome
func (s *Scheduler) callEndpoint(ctx context.Context, ep config.Endpoint) outcome {
	resp, err := s.caller.Do(ctx, &fetch.Request{
		Method:  ep.Method,
		URL:     ep.URL,
		Headers: ep.Headers,
		Payload: ep.Payload,
	})
	if err != nil {
		return s.recordFailure(ep.Name, ep.Label(), ep.URL, err)
	}

	s.logger.Info(
		"Endpoint called",
		"endpoint", ep.Name,
		"url", ep.URL,
		"status", resp.StatusCode,
	)

	s.tracker.RecordSuccess()
	s.metrics.ObserveCall(ep.Name, metrics.OutcomeSuccess)

	return outcomeSuccess
}

// scrape runs a single scrape cycle and records the outcome
func (s *Scheduler) scrape(ctx context.Context) outcome {
	name := s.scraper.Name()

	snapshot, err := s.scraper.Scrape(ctx)
	if err != nil {
		s.tracker.RecordScrapeFailure()

		return s.recordFailure(name, name, s.scraper.URL(), err)
	}

	popular := PopularRates(snapshot)
	if len(popular) > 0 {
		s.logger.Info(
			"Popular TapTapSend rates",
			"rates", FormatPopular(popular),
		)
	}

	s.tracker.RecordScrape(snapshot, popular)
	s.metrics.SetScrapedRates(len(snapshot.Rates))

	if s.storage != nil {
		if err := s.storage.SaveSnapshot(ctx, snapshot); err != nil {
			s.logger.Error(
				"unable to save snapshot",
				"id", snapshot.ID,
				"err", err,
			)
		}
	}

	s.monitor(snapshot)

	s.tracker.RecordSuccess()
	s.metrics.ObserveCall(name, metrics.OutcomeSuccess)

	return outcomeSuccess
}

// recordFailure logs the failed call, and records a block
// event if the upstream refused it (status >= 400)
func (s *Scheduler) recordFailure(name, label, url string, err error) outcome {
	var (
		fErr   = fetch.AsError(err)
		reason = blockReason(fErr)
	)

	args := []any{
		"endpoint", name,
		"url", url,
		"kind", fErr.Kind.String(),
		"err", fErr,
	}

	if fErr.Status != 0 {
		args = append(args, "status", fErr.Status)
	}

	if fErr.RetryAfter != "" {
		args = append(args, "retry_after", fErr.RetryAfter+"s")
	}

	s.logger.Error("Endpoint call failed", args...)
	s.metrics.ObserveCall(name, metrics.OutcomeFailure)

	if !fErr.Blocked() {
		return outcomeFailure
	}

	status := fErr.Status

	s.tracker.RecordBlock(tracker.BlockEvent{
		Endpoint:  label,
		Timestamp: types.Timestamp(s.tracker.Now()),
		Status:    &status,
		Reason:    reason,
	})
	s.metrics.ObserveBlock(name, string(reason))

	return outcomeBlocked
}

// blockReason maps the failure kind to its block reason
func blockReason(err *fetch.Error) tracker.BlockReason {
	switch err.Kind {
	case fetch.KindRateLimited:
		return tracker.ReasonRateLimited
	case fetch.KindHTTP:
		return tracker.HTTPErrorReason(err.Status)
	case fetch.KindTimeout:
		return tracker.ReasonTimeout
	case fetch.KindDNS:
		return tracker.ReasonNotFound
	case fetch.KindMalformed:
		return tracker.ReasonMalformed
	case fetch.KindUnknown:
		return tracker.ReasonUnknown
	}

	return tracker.ReasonUnknown
}
