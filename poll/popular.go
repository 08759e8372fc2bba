package poll

import (
	"fmt"
	"strings"

	"github.com/sig-0/ratewatch/provider/currencies"
	"github.com/sig-0/ratewatch/storage/types"
)

// popularKey is the key a popular USD rate is reported under ("USD_NGN")
func popularKey(target types.Currency) string {
	return fmt.Sprintf("%s_%s", currencies.USD, target)
}

// PopularRates returns the USD quote for every popular payout
// currency present in the snapshot, keyed as USD_<currency>
func PopularRates(snapshot *types.ExchangeSnapshot) map[string]float64 {
	rates := make(map[string]float64, len(currencies.Popular))

	for _, target := range currencies.Popular {
		record := snapshot.Find(types.Pair{
			Base:   currencies.USD,
			Target: target,
		})
		if record == nil {
			continue
		}

		rates[popularKey(target)] = record.Quote()
	}

	return rates
}

// FormatPopular renders the popular rates as "USD→NGN: 1520.00, ..."
func FormatPopular(rates map[string]float64) string {
	parts := make([]string, 0, len(rates))

	for _, target := range currencies.Popular {
		rate, ok := rates[popularKey(target)]
		if !ok {
			continue
		}

		parts = append(parts, fmt.Sprintf("%s→%s: %.2f", currencies.USD, target, rate))
	}

	return strings.Join(parts, ", ")
}

// monitor logs the current quote of every monitored pair
func (s *Scheduler) monitor(snapshot *types.ExchangeSnapshot) {
	for _, p := range s.monitorPairs {
		record := snapshot.Find(types.Pair{
			Base:   types.Currency(p.From),
			Target: types.Currency(p.To),
		})
		if record == nil {
			continue
		}

		s.logger.Info(
			fmt.Sprintf(
				"Rate Monitor: %s→%s = %.4f (%s → %s)",
				p.From,
				p.To,
				record.Quote(),
				record.FromCountry,
				record.ToCountry,
			),
		)
	}
}
