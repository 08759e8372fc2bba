// Package taptap provides the TapTapSend rate scraper.
//
// # Source
//
// API: https://api.taptapsend.com/api/fxRates
//
// The API returns every origin country the service sends from, each with
// the corridors (destination countries) it serves:
//
//	{"availableCountries": [{"currency": "USD", "corridors": [{"currency": "NGN", "fxRate": 1500, ...}]}]}
//
// # Normalization
//
// Every (origin country, corridor) pair becomes one rate record:
//   - rate is the corridor fxRate (non-numeric values count as 0)
//   - effectiveRate is the government incentive rate, reported only if it
//     differs from the base rate
//   - the fee is quoted for 100 units of the origin currency
//
// Null or malformed countries and corridors are skipped, a corridor without
// an fxRate is malformed.
//
// # Fees
//
// Corridors carry either a standard schedule (flat fee plus a percentage,
// optionally capped) or a tiered one, where the tier with the largest
// minimum value not exceeding the amount applies.
package taptap
