package scan

import (
	"fmt"

	"github.com/brock0312/solana-token-analysis/internal/addr"
)

// RiskAssessment is the final, clamped verdict for a token or address.
type RiskAssessment struct {
	Score int       `json:"score"`
	Label RiskLabel `json:"label"`
	Flags []string  `json:"flags"`
}

// Finalize clamps the raw trace score into [0,100], maps it to a label using
// the policy cutoffs, and derives advisory flags from the trace. Flags are
// text for a human reviewer; they feed no further scoring. The function is
// pure: the same TraceResult always yields the same assessment.
func Finalize(res TraceResult, p *Policy) RiskAssessment {
	score := res.TotalScore
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	label := LabelLow
	switch {
	case score >= p.HighCutoff:
		label = LabelHigh
	case score >= p.MediumCutoff:
		label = LabelMedium
	}

	var flags []string
	for _, hop := range res.Trace {
		role := hopRole(hop.Depth)
		short := addr.Short(hop.Address)
		if hop.KnownEntity {
			flags = append(flags, fmt.Sprintf("funded by trusted entity: %s (addr: %s)", hop.EntityName, short))
			continue
		}
		if hop.AgeDays != -1 && !hop.VerifiedOld {
			fresh := (hop.Depth == 0 && hop.AgeDays < p.DeployerFreshDays) ||
				(hop.Depth > 0 && hop.AgeDays < p.UpstreamFreshDays)
			if fresh {
				flags = append(flags, fmt.Sprintf("%s is fresh wallet (%s) (addr: %s)", role, ageString(hop), short))
			}
		}
		if hop.Distributor {
			flags = append(flags, fmt.Sprintf("%s shows suspicious dispersion pattern (addr: %s)", role, short))
		}
	}
	return RiskAssessment{Score: score, Label: label, Flags: flags}
}

func hopRole(depth int) string {
	if depth == 0 {
		return "deployer"
	}
	return fmt.Sprintf("source-%d", depth)
}

// ageString renders wallet age, adding hours only below one day where days
// alone would read as "0d".
func ageString(hop HopRecord) string {
	if hop.AgeDays == 0 {
		return fmt.Sprintf("0d %dh", hop.AgeHours)
	}
	return fmt.Sprintf("%dd", hop.AgeDays)
}
