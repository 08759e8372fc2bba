package tracker

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/ratewatch/storage/types"
)

// testClock is a manually advanced clock
type testClock struct {
	now time.Time
	mu  sync.Mutex
}

func newTestClock(now time.Time) *testClock {
	return &testClock{now: now}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *testClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now
}

func TestTracker_New(t *testing.T) {
	t.Parallel()

	// Wednesday of ISO week 2
	clock := newTestClock(time.Date(2026, time.January, 7, 12, 0, 0, 0, time.UTC))
	tr := New(WithClock(clock.Now))

	stats := tr.Snapshot()

	assert.Equal(t, "2026-01-07", stats.DailyCalls.Date)
	assert.Equal(t, int64(0), stats.DailyCalls.Count)
	assert.Equal(t, 2, stats.WeeklyCalls.Week)
	assert.Equal(t, int64(0), stats.WeeklyCalls.Count)
	assert.Empty(t, stats.Blocks)
}

func TestTracker_RollIfNeeded(t *testing.T) {
	t.Parallel()

	t.Run("same day is a no-op", func(t *testing.T) {
		t.Parallel()

		clock := newTestClock(time.Date(2026, time.January, 7, 8, 0, 0, 0, time.UTC))
		tr := New(WithClock(clock.Now))

		tr.RecordSuccess()
		tr.RecordSuccess()

		clock.Set(time.Date(2026, time.January, 7, 23, 59, 0, 0, time.UTC))
		tr.RollIfNeeded()
		tr.RollIfNeeded()

		stats := tr.Snapshot()

		assert.Equal(t, int64(2), stats.DailyCalls.Count)
		assert.Equal(t, int64(2), stats.WeeklyCalls.Count)
	})

	t.Run("day rollover keeps the week", func(t *testing.T) {
		t.Parallel()

		clock := newTestClock(time.Date(2026, time.January, 7, 8, 0, 0, 0, time.UTC))
		tr := New(WithClock(clock.Now))

		tr.RollIfNeeded()
		tr.RecordSuccess()
		tr.RecordSuccess()
		tr.RecordSuccess()

		clock.Set(time.Date(2026, time.January, 8, 0, 1, 0, 0, time.UTC))
		tr.RollIfNeeded()
		tr.RecordSuccess()

		stats := tr.Snapshot()

		assert.Equal(t, "2026-01-08", stats.DailyCalls.Date)
		assert.Equal(t, int64(1), stats.DailyCalls.Count)
		assert.Equal(t, 2, stats.WeeklyCalls.Week)
		assert.Equal(t, int64(4), stats.WeeklyCalls.Count)
	})

	t.Run("week rollover", func(t *testing.T) {
		t.Parallel()

		// Sunday of ISO week 2
		clock := newTestClock(time.Date(2026, time.January, 11, 22, 0, 0, 0, time.UTC))
		tr := New(WithClock(clock.Now))

		tr.RecordSuccess()
		tr.RecordSuccess()

		// Monday of ISO week 3
		clock.Set(time.Date(2026, time.January, 12, 6, 0, 0, 0, time.UTC))
		tr.RollIfNeeded()
		tr.RecordSuccess()

		stats := tr.Snapshot()

		assert.Equal(t, int64(1), stats.DailyCalls.Count)
		assert.Equal(t, 3, stats.WeeklyCalls.Week)
		assert.Equal(t, int64(1), stats.WeeklyCalls.Count)
	})

	t.Run("same week number in a different year", func(t *testing.T) {
		t.Parallel()

		clock := newTestClock(time.Date(2025, time.January, 8, 12, 0, 0, 0, time.UTC))
		tr := New(WithClock(clock.Now))

		tr.RecordSuccess()

		// ISO week 2 again, one year later
		clock.Set(time.Date(2026, time.January, 7, 12, 0, 0, 0, time.UTC))
		tr.RollIfNeeded()

		stats := tr.Snapshot()

		assert.Equal(t, 2, stats.WeeklyCalls.Week)
		assert.Equal(t, int64(0), stats.WeeklyCalls.Count)
	})

	t.Run("stale bucket without a tracked call", func(t *testing.T) {
		t.Parallel()

		clock := newTestClock(time.Date(2026, time.January, 7, 8, 0, 0, 0, time.UTC))
		tr := New(WithClock(clock.Now))

		tr.RecordSuccess()

		clock.Set(time.Date(2026, time.January, 20, 8, 0, 0, 0, time.UTC))

		// Nothing rolls until the next tracked call
		stats := tr.Snapshot()

		assert.Equal(t, "2026-01-07", stats.DailyCalls.Date)
		assert.Equal(t, int64(1), stats.DailyCalls.Count)
	})
}

func TestTracker_RecordBlock(t *testing.T) {
	t.Parallel()

	t.Run("append-only in call order", func(t *testing.T) {
		t.Parallel()

		tr := New()

		for i := 0; i < 5; i++ {
			status := 500 + i

			tr.RecordBlock(BlockEvent{
				Endpoint: fmt.Sprintf("endpoint-%d", i),
				Status:   &status,
				Reason:   ReasonHTTPError,
			})

			tr.RecordSuccess()
		}

		stats := tr.Snapshot()

		require.Len(t, stats.Blocks, 5)

		for i, b := range stats.Blocks {
			assert.Equal(t, fmt.Sprintf("endpoint-%d", i), b.Endpoint)
			require.NotNil(t, b.Status)
			assert.Equal(t, 500+i, *b.Status)
		}

		assert.Equal(t, int64(5), stats.DailyCalls.Count)
	})

	t.Run("duplicates are kept", func(t *testing.T) {
		t.Parallel()

		var (
			tr    = New()
			event = BlockEvent{Endpoint: "Lemfi", Reason: ReasonRateLimited}
		)

		tr.RecordBlock(event)
		tr.RecordBlock(event)

		assert.Len(t, tr.Snapshot().Blocks, 2)
	})

	t.Run("concurrent appends", func(t *testing.T) {
		t.Parallel()

		var (
			tr = New()
			wg sync.WaitGroup
		)

		for i := 0; i < 50; i++ {
			wg.Add(2)

			go func() {
				defer wg.Done()

				tr.RecordBlock(BlockEvent{Endpoint: "Nala", Reason: ReasonUnknown})
			}()

			go func() {
				defer wg.Done()

				tr.RollIfNeeded()
				tr.RecordSuccess()
			}()
		}

		wg.Wait()

		stats := tr.Snapshot()

		assert.Len(t, stats.Blocks, 50)
		assert.Equal(t, int64(50), stats.WeeklyCalls.Count)
	})
}

func TestTracker_Snapshot(t *testing.T) {
	t.Parallel()

	t.Run("copy semantics", func(t *testing.T) {
		t.Parallel()

		var (
			tr     = New()
			status = 429
		)

		tr.RecordBlock(BlockEvent{Endpoint: "Lemfi", Status: &status, Reason: ReasonRateLimited})

		first := tr.Snapshot()
		*first.Blocks[0].Status = 200
		first.Blocks[0].Endpoint = "mutated"
		first.DailyCalls.Count = 99

		// The caller's status pointer is not shared either
		status = 201

		second := tr.Snapshot()

		require.Len(t, second.Blocks, 1)
		assert.Equal(t, "Lemfi", second.Blocks[0].Endpoint)
		assert.Equal(t, 429, *second.Blocks[0].Status)
		assert.Equal(t, int64(0), second.DailyCalls.Count)
	})

	t.Run("json shape", func(t *testing.T) {
		t.Parallel()

		clock := newTestClock(time.Date(2026, time.January, 7, 9, 30, 15, 0, time.UTC))
		tr := New(WithClock(clock.Now))

		tr.RecordSuccess()
		tr.RecordBlock(BlockEvent{
			Endpoint:  "Nala (https://example.com)",
			Timestamp: types.Timestamp(clock.Now()),
			Reason:    ReasonTimeout,
		})

		encoded, err := json.Marshal(tr.Snapshot())
		require.NoError(t, err)

		assert.JSONEq(t, `{
			"dailyCalls": {"date": "2026-01-07", "count": 1},
			"weeklyCalls": {"week": 2, "count": 1},
			"blocks": [{
				"endpoint": "Nala (https://example.com)",
				"timestamp": "2026-01-07 09:30:15",
				"status": null,
				"reason": "Request Timeout"
			}]
		}`, string(encoded))
	})

	t.Run("empty block log encodes as an array", func(t *testing.T) {
		t.Parallel()

		encoded, err := json.Marshal(New().Snapshot())
		require.NoError(t, err)

		assert.Contains(t, string(encoded), `"blocks":[]`)
	})
}

func TestTracker_Scrapes(t *testing.T) {
	t.Parallel()

	var (
		clock = newTestClock(time.Date(2026, time.January, 7, 9, 0, 0, 0, time.UTC))
		tr    = New(WithClock(clock.Now))
	)

	tr.RecordScrapeFailure()

	stats := tr.Scrapes()
	assert.Equal(t, int64(1), stats.TotalScrapes)
	assert.Equal(t, int64(1), stats.FailedScrapes)
	assert.Nil(t, stats.LastSuccessfulScrape)

	popular := map[string]float64{"USD_NGN": 1520}

	tr.RecordScrape(&types.ExchangeSnapshot{
		Timestamp: types.Timestamp(clock.Now()),
		Rates:     make([]types.RateRecord, 3),
	}, popular)

	popular["USD_NGN"] = 0

	stats = tr.Scrapes()
	assert.Equal(t, int64(2), stats.TotalScrapes)
	assert.Equal(t, int64(1), stats.FailedScrapes)
	assert.Equal(t, 3, stats.LastRatesCount)
	require.NotNil(t, stats.LastSuccessfulScrape)
	assert.Equal(t, "2026-01-07 09:00:00", stats.LastSuccessfulScrape.String())
	assert.Equal(t, 1520.0, stats.PopularRates["USD_NGN"])
}
