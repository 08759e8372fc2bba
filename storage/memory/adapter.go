package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sig-0/ratewatch/storage/types"
)

type Storage struct {
	latest *types.ExchangeSnapshot

	mu sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{}
}

func (s *Storage) SaveSnapshot(_ context.Context, snapshot *types.ExchangeSnapshot) error {
	elem := copySnapshot(snapshot)

	s.mu.Lock()
	s.latest = elem
	s.mu.Unlock()

	return nil
}

func (s *Storage) LatestSnapshot(_ context.Context) (*types.ExchangeSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return nil, nil //nolint:nilnil // valid case
	}

	return copySnapshot(s.latest), nil
}

func (s *Storage) RateFor(_ context.Context, pair types.Pair) (*types.RateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return nil, nil //nolint:nilnil // valid case
	}

	record := s.latest.Find(pair)
	if record == nil {
		return nil, nil //nolint:nilnil // valid case
	}

	cp := *record

	return &cp, nil
}

func (s *Storage) ListCurrencies(_ context.Context) ([]types.Currency, error) {
	s.mu.RLock()

	seen := make(map[types.Currency]struct{})

	if s.latest != nil {
		for _, r := range s.latest.Rates {
			seen[r.From] = struct{}{}
			seen[r.To] = struct{}{}
		}
	}

	s.mu.RUnlock()

	out := make([]types.Currency, 0, len(seen))

	for v := range seen {
		out = append(out, v)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})

	return out, nil
}

// copySnapshot copies the snapshot so callers never share the rate slice
func copySnapshot(in *types.ExchangeSnapshot) *types.ExchangeSnapshot {
	out := *in
	out.Rates = make([]types.RateRecord, len(in.Rates))
	copy(out.Rates, in.Rates)

	return &out
}
