package taptap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sig-0/ratewatch/fetch"
	"github.com/sig-0/ratewatch/storage/types"
)

const (
	// DefaultURL is the public fxRates API
	DefaultURL = "https://api.taptapsend.com/api/fxRates"

	// Name is the label the scrape is tracked under
	Name = "TapTapSend Exchange Rates"
)

// DefaultHeaders mimic the web client, the API rejects bare requests
var DefaultHeaders = map[string]string{
	"Appian-Version": "web/2022-05-03.0",
	"X-Device-Id":    "web",
	"X-Device-Model": "web",
	"User-Agent":     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
}

// Caller executes a single outbound request
type Caller interface {
	Do(context.Context, *fetch.Request) (*fetch.Response, error)
}

// Scraper fetches and normalizes the TapTapSend rate table
type Scraper struct {
	caller  Caller
	logger  *slog.Logger
	headers map[string]string
	now     func() time.Time

	url          string
	sampleAmount float64
}

// NewScraper creates a new instance of the TapTapSend scraper
func NewScraper(caller Caller, opts ...Option) *Scraper {
	s := &Scraper{
		caller:       caller,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		headers:      DefaultHeaders,
		now:          time.Now,
		url:          DefaultURL,
		sampleAmount: DefaultSampleAmount,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Scraper) Name() string {
	return Name
}

func (s *Scraper) URL() string {
	return s.url
}

// Scrape fetches the rate table and normalizes it.
// Every returned error is a *fetch.Error
func (s *Scraper) Scrape(ctx context.Context) (*types.ExchangeSnapshot, error) {
	at := s.now()

	resp, err := s.caller.Do(ctx, &fetch.Request{
		Method:  http.MethodGet,
		URL:     s.url,
		Headers: s.headers,
	})
	if err != nil {
		fErr := fetch.AsError(err)

		s.logger.Error(
			"TapTapSend scraping failed",
			"kind", fErr.Kind.String(),
			"status", fErr.Status,
			"err", fErr,
		)

		return nil, fErr
	}

	snapshot, err := Normalize(resp.Body, at, s.sampleAmount)
	if err != nil {
		fErr := &fetch.Error{
			Kind: fetch.KindMalformed,
			Err:  err,
		}

		s.logger.Error(
			"TapTapSend scraping failed",
			"kind", fErr.Kind.String(),
			"err", err,
		)

		return nil, fErr
	}

	s.logger.Info(
		"TapTapSend: scraped exchange rate pairs",
		"count", len(snapshot.Rates),
		"at", snapshot.Timestamp.String(),
	)

	return snapshot, nil
}
