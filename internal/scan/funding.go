package scan

import (
	"context"
	"time"

	"github.com/brock0312/solana-token-analysis/internal/arkham"
)

// AddressDetails is what one hop of the trace needs to know about an address:
// when it first moved funds, who funded it, and how many records the capped
// transfer window returned (the truncation signal).
type AddressDetails struct {
	Address       string
	CreationTime  time.Time // zero = unknown
	Funder        string
	FunderEntity  string
	TransferCount int
}

// resolveDetails finds the earliest transfer touching address and derives the
// funding link from it. Incoming transfers are preferred; when the provider
// configuration omits directionality the either-direction fallback catches
// what the "to" filter missed. An error is returned only when both queries
// fail outright; empty results are a valid answer.
func resolveDetails(ctx context.Context, prov arkham.Provider, chain, address string, window int) (AddressDetails, error) {
	details := AddressDetails{Address: address}
	transfers, err := prov.Transfers(ctx, arkham.TransferQuery{
		Chain: chain, To: address, Limit: window, SortKey: "time", SortDir: "asc",
	})
	if err != nil || len(transfers) == 0 {
		var fbErr error
		transfers, fbErr = prov.Transfers(ctx, arkham.TransferQuery{
			Chain: chain, Base: address, Limit: window, SortKey: "time", SortDir: "asc",
		})
		if fbErr != nil {
			if err != nil {
				return details, err
			}
			return details, fbErr
		}
	}
	if len(transfers) == 0 {
		return details, nil
	}
	details.TransferCount = len(transfers)

	earliest, ok := earliestValid(transfers)
	if !ok {
		return details, nil
	}
	details.CreationTime = earliest.Time
	if earliest.To == address && earliest.From != "" {
		details.Funder = earliest.From
		details.FunderEntity = earliest.FromEntity
		if details.FunderEntity == "" {
			details.FunderEntity = earliest.FromLabel
		}
	}
	// Self-funding records are wrap-around artifacts and carry no upstream
	// link. A genuine self-funding loop through an intermediate swap would be
	// dropped here too; that ambiguity is inherited deliberately.
	if details.Funder == address {
		details.Funder = ""
		details.FunderEntity = ""
	}
	return details, nil
}

// earliestValid picks the earliest record carrying a timestamp. Records
// without one are malformed for ordering purposes and are skipped rather
// than failing the hop.
func earliestValid(transfers []arkham.Transfer) (arkham.Transfer, bool) {
	var best arkham.Transfer
	found := false
	for _, t := range transfers {
		if t.Time.IsZero() {
			continue
		}
		if !found || t.Time.Before(best.Time) {
			best = t
			found = true
		}
	}
	return best, found
}
