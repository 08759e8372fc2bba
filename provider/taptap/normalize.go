package taptap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/shopspring/decimal"

	"github.com/sig-0/ratewatch/storage/types"
)

const (
	// DefaultSampleAmount is the amount of origin currency the fee text is quoted for
	DefaultSampleAmount = 100.0

	noFeesText = "No transfer fees"
)

var errMissingCountries = errors.New("missing availableCountries")

// fxRatesResponse is the response from the fxRates API.
// Entries are decoded one by one so a single malformed entry
// does not fail the whole response
type fxRatesResponse struct {
	AvailableCountries *[]json.RawMessage `json:"availableCountries"`
}

type country struct {
	Currency           types.Currency    `json:"currency"`
	CountryDisplayName string            `json:"countryDisplayName"`
	Corridors          []json.RawMessage `json:"corridors"`
}

type corridor struct {
	FxRate             *number         `json:"fxRate"`
	Currency           types.Currency  `json:"currency"`
	CountryDisplayName string          `json:"countryDisplayName"`
	GovIncentive       json.RawMessage `json:"govIncentive"`
	FeeSchedule        json.RawMessage `json:"feeSchedule"`
}

type govIncentive struct {
	EffectiveFxRate *number `json:"effectiveFxRate"`
	Footnote        *string `json:"footnote"`
}

type feeSchedule struct {
	FlatFee    *number         `json:"flatFee"`
	FeePercent *number         `json:"feePercent"`
	MaxFee     *number         `json:"maxFee"`
	Type       string          `json:"type"`
	Tiers      json.RawMessage `json:"tiers"`
}

type feeTier struct {
	MinValue *number `json:"minValue"`
	Fee      *number `json:"fee"`
}

// number is a JSON number that also accepts numeric strings.
// Anything else decodes to NaN
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	*n = number(math.NaN())

	switch val := v.(type) {
	case float64:
		*n = number(val)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			*n = number(f)
		}
	}

	return nil
}

// value returns the number, or NaN if it is missing
func (n *number) value() float64 {
	if n == nil {
		return math.NaN()
	}

	return float64(*n)
}

// orZero returns the number, or 0 if it is missing or NaN
func (n *number) orZero() float64 {
	v := n.value()
	if math.IsNaN(v) {
		return 0
	}

	return v
}

// Normalize flattens a raw fxRates response into a snapshot with one record
// per (origin country, corridor) pair. Malformed countries and corridors are skipped.
// The fee text is quoted for sampleAmount units of the origin currency
func Normalize(raw []byte, at time.Time, sampleAmount float64) (*types.ExchangeSnapshot, error) {
	var resp fxRatesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unable to decode response: %w", err)
	}

	if resp.AvailableCountries == nil {
		return nil, errMissingCountries
	}

	rates := make([]types.RateRecord, 0)

	for _, rawCountry := range *resp.AvailableCountries {
		var origin country
		if isNull(rawCountry) || json.Unmarshal(rawCountry, &origin) != nil {
			continue
		}

		for _, rawCorridor := range origin.Corridors {
			record, ok := normalizeCorridor(&origin, rawCorridor, sampleAmount)
			if !ok {
				continue
			}

			rates = append(rates, record)
		}
	}

	return &types.ExchangeSnapshot{
		ID:        xid.New().String(),
		Timestamp: types.Timestamp(at),
		Rates:     rates,
	}, nil
}

// normalizeCorridor converts a single corridor into a rate record.
// Corridors without an fxRate are malformed
func normalizeCorridor(
	origin *country,
	raw json.RawMessage,
	sampleAmount float64,
) (types.RateRecord, bool) {
	var c corridor
	if isNull(raw) || json.Unmarshal(raw, &c) != nil {
		return types.RateRecord{}, false
	}

	if c.FxRate == nil {
		return types.RateRecord{}, false
	}

	var (
		rate      = c.FxRate.orZero()
		effective = rate
		incentive = parseIncentive(c.GovIncentive)
	)

	record := types.RateRecord{
		From:         origin.Currency,
		To:           c.Currency,
		FromCountry:  origin.CountryDisplayName,
		ToCountry:    c.CountryDisplayName,
		Rate:         rate,
		HasIncentive: incentive != nil,
	}

	if incentive != nil {
		if v := incentive.EffectiveFxRate.value(); !math.IsNaN(v) && v != 0 {
			effective = v
		}

		record.IncentiveNote = incentive.Footnote
	}

	if effective != rate {
		record.EffectiveRate = &effective
	}

	fee := ComputeFee(sampleAmount, parseFeeSchedule(c.FeeSchedule))
	record.FeeText = formatFee(fee, origin.Currency)

	return record, true
}

// parseIncentive decodes the government incentive, if any
func parseIncentive(raw json.RawMessage) *govIncentive {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}

	var incentive govIncentive
	if err := json.Unmarshal(raw, &incentive); err != nil {
		// Present but unreadable, still an incentive
		return &govIncentive{}
	}

	return &incentive
}

// parseFeeSchedule decodes the fee schedule.
// Unknown or unreadable schedules yield nil
func parseFeeSchedule(raw json.RawMessage) FeeSchedule {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}

	var fs feeSchedule
	if err := json.Unmarshal(raw, &fs); err != nil {
		return nil
	}

	switch fs.Type {
	case "standard":
		schedule := StandardFee{
			FlatFee:    fs.FlatFee.orZero(),
			FeePercent: fs.FeePercent.orZero(),
		}

		if maxFee := fs.MaxFee.value(); !math.IsNaN(maxFee) {
			schedule.MaxFee = &maxFee
		}

		return schedule
	case "tiered":
		var rawTiers []json.RawMessage
		if err := json.Unmarshal(fs.Tiers, &rawTiers); err != nil {
			return TieredFee{}
		}

		tiers := make([]FeeTier, 0, len(rawTiers))

		for _, rawTier := range rawTiers {
			var tier feeTier
			if isNull(rawTier) || json.Unmarshal(rawTier, &tier) != nil {
				continue
			}

			tiers = append(tiers, FeeTier{
				MinValue: tier.MinValue.value(),
				Fee:      tier.Fee.value(),
			})
		}

		return TieredFee{Tiers: tiers}
	default:
		return nil
	}
}

// formatFee renders the fee, rounded to 2 decimals, in the given currency
func formatFee(fee float64, currency types.Currency) string {
	if fee == 0 || math.IsNaN(fee) || math.IsInf(fee, 0) {
		return noFeesText
	}

	return fmt.Sprintf("%s %s fee", currency, decimal.NewFromFloat(fee).StringFixed(2))
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
