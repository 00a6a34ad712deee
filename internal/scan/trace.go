package scan

import (
	"context"
	"time"

	"github.com/brock0312/solana-token-analysis/internal/arkham"
	"github.com/brock0312/solana-token-analysis/internal/logging"
)

// StopReason records why a trace terminated.
type StopReason string

const (
	StopEntity       StopReason = "entity"        // funder carries a curated entity name
	StopNoFunder     StopReason = "no_funder"     // no upstream link could be resolved
	StopMaxDepth     StopReason = "max_depth"     // walked the full configured depth
	StopLookupFailed StopReason = "lookup_failed" // hop resolution failed (includes cancellation)
)

// HopRecord is one step of the funding provenance walk. AgeDays is -1 when
// the wallet's first activity could not be determined.
type HopRecord struct {
	Depth            int    `json:"depth"`
	Address          string `json:"address"`
	AgeDays          int    `json:"age_days"`
	AgeHours         int    `json:"age_hours"`
	KnownEntity      bool   `json:"is_known_entity"`
	VerifiedOld      bool   `json:"is_verified_old"`
	Distributor      bool   `json:"is_distributor"`
	EntityName       string `json:"entity_name,omitempty"`
	FundedByEntity   string `json:"funded_by_entity,omitempty"`
	RiskContribution int    `json:"risk_contribution"`
}

// TraceResult is the engine's raw output: an unclamped score (negative sums
// are possible when entity reductions dominate) plus the ordered hop trace.
type TraceResult struct {
	TotalScore int
	Trace      []HopRecord
	StopReason StopReason
}

// tracer walks the funding chain backward from a starting address. One
// instance serves one trace; it holds no state between runs.
type tracer struct {
	prov   arkham.Provider
	chain  string
	policy *Policy
	now    func() time.Time
}

// Trace runs the depth-bounded walk. Each iteration resolves the current
// address's earliest funder, scores the wallet's age and dispersion behavior,
// and either follows the funding link upstream or terminates. The walk is
// strictly finite: at most policy.MaxDepth+1 primary hops plus one synthetic
// entity hop.
func (t *tracer) Trace(ctx context.Context, start string) TraceResult {
	res := TraceResult{TotalScore: t.policy.BaseScore, StopReason: StopMaxDepth}
	logger := logging.Logger()
	began := t.now()
	cur := start

	for depth := 0; depth <= t.policy.MaxDepth; depth++ {
		details, err := resolveDetails(ctx, t.prov, t.chain, cur, t.policy.TransferWindow)
		if err != nil {
			logger.Warn("hop_resolution_failed",
				"component", "scan.trace",
				"address", cur,
				"depth", depth,
				"error", err.Error())
			res.StopReason = StopLookupFailed
			break
		}

		now := t.now()
		ageDays, ageHours := -1, 0
		if !details.CreationTime.IsZero() {
			ageDays, ageHours = splitAge(now.Sub(details.CreationTime))
		}

		// Truncation escalation: a full window whose earliest record is from
		// today means the window is capped, not that the wallet is new.
		verifiedOld := false
		if ageDays >= 0 && ageDays < t.policy.TruncationMaxAgeDays && details.TransferCount >= t.policy.TransferWindow {
			if trueTime, ok := trueCreationTime(ctx, t.prov, t.chain, cur); ok {
				trueDays, trueHours := splitAge(now.Sub(trueTime))
				ageDays, ageHours = trueDays, trueHours
				if trueDays > t.policy.OldWalletMinDays {
					verifiedOld = true
				}
			}
		}

		hop := HopRecord{
			Depth:       depth,
			Address:     cur,
			AgeDays:     ageDays,
			AgeHours:    ageHours,
			VerifiedOld: verifiedOld,
		}

		ageRisk := 0
		if ageDays != -1 {
			switch {
			case verifiedOld:
				ageRisk = t.policy.VerifiedOldRisk
			case depth == 0:
				ageRisk = tierRisk(t.policy.DeployerAgeTiers, ageDays)
			default:
				ageRisk = tierRisk(t.policy.UpstreamAgeTiers, ageDays)
			}
		}
		hop.RiskContribution += ageRisk
		res.TotalScore += ageRisk

		// A verified-old wallet naturally has many distinct counterparties;
		// the distributor heuristic only applies to unverified upstream hops.
		if depth > 0 && !verifiedOld {
			if looksLikeDistributor(ctx, t.prov, t.chain, cur, t.policy) {
				hop.Distributor = true
				hop.RiskContribution += t.policy.DispersionPenalty
				res.TotalScore += t.policy.DispersionPenalty
			}
		}

		// Known-entity funding resolves the provenance question outright:
		// the reduction lands on this hop, a synthetic terminal hop records
		// the entity itself, and the walk stops.
		if details.FunderEntity != "" {
			hop.FundedByEntity = details.FunderEntity
			hop.RiskContribution += t.policy.EntityFundingReduction
			res.TotalScore += t.policy.EntityFundingReduction
			res.Trace = append(res.Trace, hop)

			entityHop := HopRecord{
				Depth:            depth + 1,
				Address:          details.Funder,
				AgeDays:          -1,
				KnownEntity:      true,
				EntityName:       details.FunderEntity,
				RiskContribution: t.policy.EntityHopReduction,
			}
			res.Trace = append(res.Trace, entityHop)
			res.TotalScore += t.policy.EntityHopReduction
			res.StopReason = StopEntity
			break
		}

		res.Trace = append(res.Trace, hop)

		if details.Funder == "" {
			res.StopReason = StopNoFunder
			break
		}
		cur = details.Funder
	}

	logger.Info("trace_complete",
		"component", "scan.trace",
		"start", start,
		"hops", len(res.Trace),
		"raw_score", res.TotalScore,
		"stop_reason", string(res.StopReason),
		"elapsed_ms", t.now().Sub(began).Milliseconds())
	return res
}
