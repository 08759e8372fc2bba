package server

import "github.com/sig-0/ratewatch/storage/types"

type CurrenciesResponse struct {
	Results []types.Currency `json:"results"`
}

// RateResponse is a single pair lookup against the latest snapshot
type RateResponse struct {
	Record *types.RateRecord `json:"record"`
	Pair   types.Pair        `json:"pair"`
	Quote  float64           `json:"quote"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
