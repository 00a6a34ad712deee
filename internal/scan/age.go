package scan

import (
	"context"
	"time"

	"github.com/brock0312/solana-token-analysis/internal/arkham"
	"github.com/brock0312/solana-token-analysis/internal/logging"
)

// trueCreationTime escalates to the portfolio-history endpoint, which is not
// subject to the transfer window cap. A busy wallet (an exchange hot wallet,
// a market maker) can look freshly created through a capped window because
// the window only sees today's traffic; the history series reaches back to
// the wallet's actual first activity.
func trueCreationTime(ctx context.Context, prov arkham.Provider, chain, address string) (time.Time, bool) {
	points, err := prov.History(ctx, address, chain)
	if err != nil {
		logging.Logger().Debug("history_lookup_failed",
			"component", "scan.age",
			"address", address,
			"error", err.Error())
		return time.Time{}, false
	}
	for _, pt := range points {
		if !pt.Time.IsZero() {
			return pt.Time, true
		}
	}
	return time.Time{}, false
}

// splitAge converts an elapsed duration to whole days plus leftover hours.
// Negative elapsed time (clock skew) counts as zero age.
func splitAge(elapsed time.Duration) (days, hours int) {
	if elapsed < 0 {
		return 0, 0
	}
	totalHours := int(elapsed.Hours())
	return totalHours / 24, totalHours % 24
}

// tierRisk returns the risk delta of the first tier the age falls under, or
// zero when the wallet is older than every tier.
func tierRisk(tiers []AgeTier, ageDays int) int {
	for _, t := range tiers {
		if ageDays < t.MaxDays {
			return t.Risk
		}
	}
	return 0
}
