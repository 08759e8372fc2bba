package taptap

import (
	"log/slog"
	"time"
)

type Option func(s *Scraper)

// WithLogger specifies the logger for the scraper
func WithLogger(l *slog.Logger) Option {
	return func(s *Scraper) {
		s.logger = l
	}
}

// WithURL overrides the fxRates API URL
func WithURL(url string) Option {
	return func(s *Scraper) {
		s.url = url
	}
}

// WithHeaders overrides the request headers
func WithHeaders(headers map[string]string) Option {
	return func(s *Scraper) {
		s.headers = headers
	}
}

// WithSampleAmount specifies the amount the fee text is quoted for.
// Defaults to 100 units of the origin currency
func WithSampleAmount(amount float64) Option {
	return func(s *Scraper) {
		s.sampleAmount = amount
	}
}

// WithClock specifies the time source for snapshot timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Scraper) {
		s.now = now
	}
}
