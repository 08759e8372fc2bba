package taptap

import (
	"math"
	"sort"
)

// FeeSchedule is a corridor fee schedule,
// either a StandardFee or a TieredFee
type FeeSchedule interface {
	fee(amount float64) float64
}

// StandardFee is a flat fee plus a percentage, optionally capped
type StandardFee struct {
	MaxFee     *float64 // cap, if any
	FlatFee    float64
	FeePercent float64
}

func (s StandardFee) fee(amount float64) float64 {
	fee := s.FlatFee + s.FeePercent*0.01*amount

	if s.MaxFee != nil && !math.IsNaN(*s.MaxFee) {
		fee = math.Min(*s.MaxFee, fee)
	}

	return fee
}

// FeeTier is a single tier of a tiered schedule
type FeeTier struct {
	MinValue float64
	Fee      float64
}

// TieredFee charges the fee of the tier with the largest
// minimum value that does not exceed the amount
type TieredFee struct {
	Tiers []FeeTier
}

func (t TieredFee) fee(amount float64) float64 {
	tiers := make([]FeeTier, 0, len(t.Tiers))

	for _, tier := range t.Tiers {
		if math.IsNaN(tier.MinValue) || math.IsNaN(tier.Fee) {
			continue
		}

		tiers = append(tiers, tier)
	}

	// Ties keep their original order
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].MinValue > tiers[j].MinValue
	})

	for _, tier := range tiers {
		if amount >= tier.MinValue {
			return tier.Fee
		}
	}

	return 0
}

// ComputeFee returns the fee charged for sending the given amount.
// It never fails: a missing schedule, a non-positive amount
// or a NaN result all yield 0
func ComputeFee(amount float64, schedule FeeSchedule) float64 {
	if schedule == nil || math.IsNaN(amount) || amount <= 0 {
		return 0
	}

	fee := schedule.fee(amount)
	if math.IsNaN(fee) {
		return 0
	}

	return fee
}
