package tracker

import (
	"fmt"

	"github.com/sig-0/ratewatch/storage/types"
)

// BlockReason is the category of a recorded block
type BlockReason string

const (
	ReasonRateLimited BlockReason = "Rate Limit Exceeded"
	ReasonHTTPError   BlockReason = "HTTP Error"
	ReasonTimeout     BlockReason = "Request Timeout"
	ReasonNotFound    BlockReason = "Endpoint Not Found"
	ReasonMalformed   BlockReason = "Malformed Response"
	ReasonUnknown     BlockReason = "Unknown"
)

// HTTPErrorReason is the block reason for a refused call with the given status
func HTTPErrorReason(status int) BlockReason {
	return BlockReason(fmt.Sprintf("%s %d", ReasonHTTPError, status))
}

// DailyCalls is the call counter for a single calendar day
type DailyCalls struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

// WeeklyCalls is the call counter for a single ISO week
type WeeklyCalls struct {
	Week  int   `json:"week"`
	Count int64 `json:"count"`
}

// BlockEvent is a single upstream refusal
type BlockEvent struct {
	Status    *int            `json:"status"`
	Timestamp types.Timestamp `json:"timestamp"`
	Endpoint  string          `json:"endpoint"`
	Reason    BlockReason     `json:"reason"`
}

// Stats is a point-in-time copy of the tracker counters
type Stats struct {
	DailyCalls  DailyCalls   `json:"dailyCalls"`
	WeeklyCalls WeeklyCalls  `json:"weeklyCalls"`
	Blocks      []BlockEvent `json:"blocks"`
}

// ScrapeStats summarizes the rate scrape history
type ScrapeStats struct {
	LastSuccessfulScrape *types.Timestamp   `json:"lastSuccessfulScrape"`
	PopularRates         map[string]float64 `json:"popularRates"`
	TotalScrapes         int64              `json:"totalScrapes"`
	FailedScrapes        int64              `json:"failedScrapes"`
	LastRatesCount       int                `json:"lastRatesCount"`
}
