package storage

import (
	"context"

	"github.com/sig-0/ratewatch/storage/types"
)

// Storage is an abstraction over the latest scraped exchange rates.
// Only the most recent snapshot is retained
type Storage interface {
	// SaveSnapshot replaces the latest snapshot
	SaveSnapshot(context.Context, *types.ExchangeSnapshot) error

	// LatestSnapshot fetches the latest snapshot, if any
	LatestSnapshot(context.Context) (*types.ExchangeSnapshot, error)

	// RateFor fetches the latest rate record for the given pair, if any
	RateFor(context.Context, types.Pair) (*types.RateRecord, error)

	// ListCurrencies lists all currencies present in the latest snapshot
	ListCurrencies(context.Context) ([]types.Currency, error)
}
