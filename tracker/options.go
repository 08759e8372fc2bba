package tracker

import "time"

type Option func(t *Tracker)

// WithClock specifies the time source for the tracker.
// Defaults to time.Now
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}
