package scan

import (
	"context"

	"github.com/brock0312/solana-token-analysis/internal/arkham"
	"github.com/brock0312/solana-token-analysis/internal/logging"
)

// looksLikeDistributor reports whether an address fans funds out to many
// one-off recipients, the signature of a wallet-seeding script. A wallet
// transacting repeatedly with the same small set of counterparties scores a
// low unique-receiver ratio and passes. Small samples and lookup failures
// return false: absence of evidence is not suspicion.
func looksLikeDistributor(ctx context.Context, prov arkham.Provider, chain, address string, p *Policy) bool {
	transfers, err := prov.Transfers(ctx, arkham.TransferQuery{
		Chain: chain, From: address, Limit: p.TransferWindow,
	})
	if err != nil {
		logging.Logger().Debug("dispersion_lookup_failed",
			"component", "scan.dispersion",
			"address", address,
			"error", err.Error())
		return false
	}
	if len(transfers) < p.DispersionMinSample {
		return false
	}
	receivers := make(map[string]struct{}, len(transfers))
	for _, t := range transfers {
		if t.To != "" {
			receivers[t.To] = struct{}{}
		}
	}
	ratio := float64(len(receivers)) / float64(len(transfers))
	return ratio > p.DispersionUniqueRatio && len(receivers) > p.DispersionMinReceivers
}
