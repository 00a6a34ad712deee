package scan

import (
	"context"
	"sync"
	"time"

	"github.com/brock0312/solana-token-analysis/internal/arkham"
)

// stubProvider serves canned responses keyed by address, mirroring how the
// real API routes by query filter.
type stubProvider struct {
	mu        sync.Mutex
	entities  map[string]arkham.EntityInfo
	entityErr map[string]error
	to        map[string][]arkham.Transfer
	base      map[string][]arkham.Transfer
	from      map[string][]arkham.Transfer
	history   map[string][]arkham.HistoryPoint
	toErr     map[string]error
	baseErr   map[string]error
	fromCalls map[string]int

	// onTransfers, when set, observes every Transfers call before it is
	// served. Tests use it to cancel contexts mid-trace.
	onTransfers func(arkham.TransferQuery)
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		entities:  map[string]arkham.EntityInfo{},
		entityErr: map[string]error{},
		to:        map[string][]arkham.Transfer{},
		base:      map[string][]arkham.Transfer{},
		from:      map[string][]arkham.Transfer{},
		history:   map[string][]arkham.HistoryPoint{},
		toErr:     map[string]error{},
		baseErr:   map[string]error{},
		fromCalls: map[string]int{},
	}
}

func (s *stubProvider) LookupEntity(ctx context.Context, address, chain string) (arkham.EntityInfo, error) {
	if err := ctx.Err(); err != nil {
		return arkham.EntityInfo{}, err
	}
	if err := s.entityErr[address]; err != nil {
		return arkham.EntityInfo{}, err
	}
	return s.entities[address], nil
}

func (s *stubProvider) Transfers(ctx context.Context, q arkham.TransferQuery) ([]arkham.Transfer, error) {
	if s.onTransfers != nil {
		s.onTransfers(q)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case q.To != "":
		return s.to[q.To], s.toErr[q.To]
	case q.From != "":
		s.fromCalls[q.From]++
		return s.from[q.From], nil
	case q.Base != "":
		return s.base[q.Base], s.baseErr[q.Base]
	}
	return nil, nil
}

func (s *stubProvider) History(ctx context.Context, address, chain string) ([]arkham.HistoryPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.history[address], nil
}

func (s *stubProvider) fromCallCount(address string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fromCalls[address]
}

// incoming builds a transfer into `to` from `from` at the given time.
func incoming(from, to string, ts time.Time) arkham.Transfer {
	return arkham.Transfer{From: from, To: to, Time: ts}
}
