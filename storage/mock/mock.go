package mock

import (
	"context"

	"github.com/sig-0/ratewatch/storage/types"
)

type (
	SaveSnapshotDelegate   func(context.Context, *types.ExchangeSnapshot) error
	LatestSnapshotDelegate func(context.Context) (*types.ExchangeSnapshot, error)
	RateForDelegate        func(context.Context, types.Pair) (*types.RateRecord, error)
	ListCurrenciesDelegate func(context.Context) ([]types.Currency, error)
)

type Storage struct {
	SaveSnapshotFn   SaveSnapshotDelegate
	LatestSnapshotFn LatestSnapshotDelegate
	RateForFn        RateForDelegate
	ListCurrenciesFn ListCurrenciesDelegate
}

func (m *Storage) SaveSnapshot(ctx context.Context, snapshot *types.ExchangeSnapshot) error {
	if m.SaveSnapshotFn != nil {
		return m.SaveSnapshotFn(ctx, snapshot)
	}

	return nil
}

func (m *Storage) LatestSnapshot(ctx context.Context) (*types.ExchangeSnapshot, error) {
	if m.LatestSnapshotFn != nil {
		return m.LatestSnapshotFn(ctx)
	}

	return nil, nil
}

func (m *Storage) RateFor(ctx context.Context, pair types.Pair) (*types.RateRecord, error) {
	if m.RateForFn != nil {
		return m.RateForFn(ctx, pair)
	}

	return nil, nil
}

func (m *Storage) ListCurrencies(ctx context.Context) ([]types.Currency, error) {
	if m.ListCurrenciesFn != nil {
		return m.ListCurrenciesFn(ctx)
	}

	return nil, nil
}
