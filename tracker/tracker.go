// Package tracker keeps the call volume counters and the block event log.
//
// Daily and weekly buckets roll over lazily: a stale bucket is only reset
// by the next RollIfNeeded call, never by a background timer.
//
// The block log is append-only and is never pruned or capped, so it grows
// for the lifetime of the process.
package tracker

import (
	"maps"
	"sync"
	"time"

	"github.com/sig-0/ratewatch/storage/types"
)

const dateLayout = "2006-01-02"

// Tracker is the call tracking state. It is safe for concurrent use
type Tracker struct {
	now func() time.Time

	daily    DailyCalls
	weekly   WeeklyCalls
	weekYear int // ISO year of the weekly bucket

	blocks  []BlockEvent
	scrapes ScrapeStats

	mu sync.Mutex
}

// New creates a new tracker, with buckets keyed to the current day and week
func New(opts ...Option) *Tracker {
	t := &Tracker{
		now: time.Now,
	}

	for _, opt := range opts {
		opt(t)
	}

	now := t.now()
	year, week := now.ISOWeek()

	t.daily = DailyCalls{Date: now.Format(dateLayout)}
	t.weekly = WeeklyCalls{Week: week}
	t.weekYear = year

	return t
}

// RollIfNeeded resets the daily and weekly buckets if the current
// day or week differs from the stored one
func (t *Tracker) RollIfNeeded() {
	t.mu.Lock()
	defer t.mu.Unlock()

	var (
		now        = t.now()
		today      = now.Format(dateLayout)
		year, week = now.ISOWeek()
	)

	if t.daily.Date != today {
		t.daily = DailyCalls{Date: today}
	}

	if t.weekly.Week != week || t.weekYear != year {
		t.weekly = WeeklyCalls{Week: week}
		t.weekYear = year
	}
}

// RecordSuccess increments the daily and weekly counters
func (t *Tracker) RecordSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.daily.Count++
	t.weekly.Count++
}

// RecordBlock appends the block event to the log
func (t *Tracker) RecordBlock(event BlockEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.blocks = append(t.blocks, copyBlock(event))
}

// Snapshot returns a copy of the current counters and block log
func (t *Tracker) Snapshot() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	blocks := make([]BlockEvent, 0, len(t.blocks))
	for _, b := range t.blocks {
		blocks = append(blocks, copyBlock(b))
	}

	return Stats{
		DailyCalls:  t.daily,
		WeeklyCalls: t.weekly,
		Blocks:      blocks,
	}
}

// RecordScrape registers a successful rate scrape
func (t *Tracker) RecordScrape(snapshot *types.ExchangeSnapshot, popular map[string]float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	at := snapshot.Timestamp

	t.scrapes.TotalScrapes++
	t.scrapes.LastSuccessfulScrape = &at
	t.scrapes.LastRatesCount = len(snapshot.Rates)

	if popular != nil {
		t.scrapes.PopularRates = maps.Clone(popular)
	}
}

// RecordScrapeFailure registers a failed rate scrape
func (t *Tracker) RecordScrapeFailure() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.scrapes.TotalScrapes++
	t.scrapes.FailedScrapes++
}

// Scrapes returns a copy of the scrape stats
func (t *Tracker) Scrapes() ScrapeStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := t.scrapes
	out.PopularRates = maps.Clone(t.scrapes.PopularRates)

	if t.scrapes.LastSuccessfulScrape != nil {
		at := *t.scrapes.LastSuccessfulScrape
		out.LastSuccessfulScrape = &at
	}

	return out
}

// Now returns the current time, as seen by the tracker
func (t *Tracker) Now() time.Time {
	return t.now()
}

func copyBlock(in BlockEvent) BlockEvent {
	out := in

	if in.Status != nil {
		status := *in.Status
		out.Status = &status
	}

	return out
}
