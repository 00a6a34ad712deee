package arkham

import "context"

// RLProvider wraps a Provider with a Limiter.
type RLProvider struct {
	p Provider
	l Limiter
}

func WrapWithLimiter(p Provider, l Limiter) Provider { return RLProvider{p: p, l: l} }

func (r RLProvider) LookupEntity(ctx context.Context, address, chain string) (EntityInfo, error) {
	if err := r.l.Wait(ctx); err != nil {
		return EntityInfo{}, err
	}
	return r.p.LookupEntity(ctx, address, chain)
}

func (r RLProvider) Transfers(ctx context.Context, q TransferQuery) ([]Transfer, error) {
	if err := r.l.Wait(ctx); err != nil {
		return nil, err
	}
	return r.p.Transfers(ctx, q)
}

func (r RLProvider) History(ctx context.Context, address, chain string) ([]HistoryPoint, error) {
	if err := r.l.Wait(ctx); err != nil {
		return nil, err
	}
	return r.p.History(ctx, address, chain)
}
