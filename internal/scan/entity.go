package scan

import (
	"fmt"
	"strings"
)

// RiskLabel buckets a score for human consumption.
type RiskLabel string

const (
	LabelLow    RiskLabel = "LOW"
	LabelMedium RiskLabel = "MEDIUM"
	LabelHigh   RiskLabel = "HIGH"
)

// EntityVerdict is the classifier's answer for one address. Known=false means
// the database had nothing decisive and the caller should proceed to a deep
// trace.
type EntityVerdict struct {
	Known      bool
	Score      int
	Label      RiskLabel
	Reasons    []string
	EntityName string
}

// Classifier matches curated keyword sets against entity/label text from the
// intelligence database. It is a pure function of its inputs; the keyword
// sets live in the injected policy, never in package state.
type Classifier struct {
	policy *Policy
}

func NewClassifier(p *Policy) Classifier { return Classifier{policy: p} }

// Classify inspects the case-folded concatenation of an entity display name
// and label name. Precedence: blacklist, then trusted issuer, then any named
// entity, then unknown.
func (c Classifier) Classify(entityName, labelName string) EntityVerdict {
	full := strings.ToLower(strings.TrimSpace(entityName + " " + labelName))
	if full == "" {
		return EntityVerdict{}
	}
	display := entityName
	if display == "" {
		display = labelName
	}
	for _, bad := range c.policy.BlacklistKeywords {
		if strings.Contains(full, strings.ToLower(bad)) {
			return EntityVerdict{
				Known:      true,
				Score:      c.policy.BlacklistScore,
				Label:      LabelHigh,
				Reasons:    []string{fmt.Sprintf("database blacklist match: %s", display)},
				EntityName: display,
			}
		}
	}
	for _, good := range c.policy.TrustedKeywords {
		if strings.Contains(full, strings.ToLower(good)) {
			return EntityVerdict{
				Known:      true,
				Score:      c.policy.TrustedScore,
				Label:      LabelLow,
				Reasons:    []string{fmt.Sprintf("trusted entity verified: %s", display)},
				EntityName: display,
			}
		}
	}
	// A curated name with no keyword match still means the address is an
	// established, catalogued project rather than an anonymous wallet.
	if strings.TrimSpace(entityName) != "" {
		return EntityVerdict{
			Known:      true,
			Score:      c.policy.EstablishedScore,
			Label:      LabelLow,
			Reasons:    []string{fmt.Sprintf("established entity: %s", entityName)},
			EntityName: entityName,
		}
	}
	return EntityVerdict{}
}
