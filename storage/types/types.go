package types

import (
	"encoding/json"
	"time"
)

// TimestampLayout is the layout used for every rendered timestamp
const TimestampLayout = "2006-01-02 15:04:05"

type Currency string

func (c Currency) String() string {
	return string(c)
}

// Timestamp is a point in time rendered as YYYY-MM-DD HH:mm:ss
type Timestamp time.Time

func (t Timestamp) String() string {
	return time.Time(t).Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	parsed, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err != nil {
		return err
	}

	*t = Timestamp(parsed)

	return nil
}

// RateRecord is a single directed corridor rate
type RateRecord struct {
	EffectiveRate *float64 `json:"effectiveRate,omitempty"`
	IncentiveNote *string  `json:"incentiveNote,omitempty"`
	From          Currency `json:"from"`
	To            Currency `json:"to"`
	FromCountry   string   `json:"fromCountry"`
	ToCountry     string   `json:"toCountry"`
	FeeText       string   `json:"fee"`
	Rate          float64  `json:"rate"`
	HasIncentive  bool     `json:"hasIncentive"`
}

// Quote returns the effective rate if one is set, otherwise the base rate
func (r *RateRecord) Quote() float64 {
	if r.EffectiveRate != nil && *r.EffectiveRate != 0 {
		return *r.EffectiveRate
	}

	return r.Rate
}

// ExchangeSnapshot is the result of a single successful rate scrape
type ExchangeSnapshot struct {
	Timestamp Timestamp    `json:"timestamp"`
	ID        string       `json:"id"`
	Rates     []RateRecord `json:"rates"`
}

// Find returns the first record for the given pair, if any
func (s *ExchangeSnapshot) Find(pair Pair) *RateRecord {
	for i := range s.Rates {
		if s.Rates[i].From == pair.Base && s.Rates[i].To == pair.Target {
			return &s.Rates[i]
		}
	}

	return nil
}

type Pair struct {
	Base   Currency `json:"base"`
	Target Currency `json:"target"`
}
