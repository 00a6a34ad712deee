package scan

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// AgeTier maps a wallet age bracket to a risk delta. Tiers are evaluated in
// order; the first tier whose MaxDays exceeds the wallet age wins.
type AgeTier struct {
	MaxDays int `yaml:"max_days" validate:"gt=0"`
	Risk    int `yaml:"risk"`
}

// Policy carries every tunable the engine and classifier consume. Nothing in
// control flow hardcodes a threshold; adjusting risk policy means editing a
// Policy value (or a YAML override file), not the trace loop.
type Policy struct {
	MaxDepth       int `yaml:"max_depth" validate:"min=0,max=10"`
	BaseScore      int `yaml:"base_score"`
	TransferWindow int `yaml:"transfer_window" validate:"min=1,max=1000"`

	BlacklistKeywords []string `yaml:"blacklist_keywords" validate:"min=1"`
	TrustedKeywords   []string `yaml:"trusted_keywords" validate:"min=1"`
	BlacklistScore    int      `yaml:"blacklist_score" validate:"min=0,max=100"`
	TrustedScore      int      `yaml:"trusted_score" validate:"min=0,max=100"`
	EstablishedScore  int      `yaml:"established_score" validate:"min=0,max=100"`

	DeployerAgeTiers []AgeTier `yaml:"deployer_age_tiers" validate:"dive"`
	UpstreamAgeTiers []AgeTier `yaml:"upstream_age_tiers" validate:"dive"`

	VerifiedOldRisk      int `yaml:"verified_old_risk"`
	OldWalletMinDays     int `yaml:"old_wallet_min_days" validate:"min=1"`
	TruncationMaxAgeDays int `yaml:"truncation_max_age_days" validate:"min=1"`

	DispersionMinSample    int     `yaml:"dispersion_min_sample" validate:"min=1"`
	DispersionUniqueRatio  float64 `yaml:"dispersion_unique_ratio" validate:"gt=0,lt=1"`
	DispersionMinReceivers int     `yaml:"dispersion_min_receivers" validate:"min=1"`
	DispersionPenalty      int     `yaml:"dispersion_penalty" validate:"min=0"`

	EntityFundingReduction int `yaml:"entity_funding_reduction" validate:"max=0"`
	EntityHopReduction     int `yaml:"entity_hop_reduction" validate:"max=0"`

	MediumCutoff int `yaml:"medium_cutoff" validate:"min=1,max=100"`
	HighCutoff   int `yaml:"high_cutoff" validate:"min=1,max=100,gtfield=MediumCutoff"`

	DeployerFreshDays int `yaml:"deployer_fresh_days" validate:"min=1"`
	UpstreamFreshDays int `yaml:"upstream_fresh_days" validate:"min=1"`
}

// DefaultPolicy returns the curated production defaults.
func DefaultPolicy() Policy {
	return Policy{
		MaxDepth:       3,
		BaseScore:      0,
		TransferWindow: 100,
		BlacklistKeywords: []string{
			"scam", "phish", "phishing", "rug", "rugpull", "exploit", "hack", "heist",
		},
		TrustedKeywords: []string{
			"binance", "coinbase", "kraken", "okx", "bybit", "kucoin",
			"gate.io", "htx", "bitget", "upbit", "crypto.com", "circle", "tether",
		},
		BlacklistScore:   100,
		TrustedScore:     0,
		EstablishedScore: 10,
		DeployerAgeTiers: []AgeTier{
			{MaxDays: 7, Risk: 20},
			{MaxDays: 14, Risk: 15},
			{MaxDays: 30, Risk: 10},
		},
		UpstreamAgeTiers: []AgeTier{
			{MaxDays: 30, Risk: 15},
			{MaxDays: 60, Risk: 10},
		},
		VerifiedOldRisk:        -10,
		OldWalletMinDays:       180,
		TruncationMaxAgeDays:   1,
		DispersionMinSample:    20,
		DispersionUniqueRatio:  0.5,
		DispersionMinReceivers: 20,
		DispersionPenalty:      30,
		EntityFundingReduction: -40,
		EntityHopReduction:     -20,
		MediumCutoff:           40,
		HighCutoff:             70,
		DeployerFreshDays:      30,
		UpstreamFreshDays:      60,
	}
}

// Validate checks both struct tags and cross-field constraints the tags
// cannot express (tier ordering).
func (p *Policy) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	for _, tiers := range [][]AgeTier{p.DeployerAgeTiers, p.UpstreamAgeTiers} {
		for i := 1; i < len(tiers); i++ {
			if tiers[i].MaxDays <= tiers[i-1].MaxDays {
				return fmt.Errorf("policy: age tiers must be strictly ascending by max_days (got %d after %d)",
					tiers[i].MaxDays, tiers[i-1].MaxDays)
			}
		}
	}
	return nil
}

// LoadPolicy reads a YAML override file on top of the defaults. An empty path
// returns the defaults unchanged.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("policy file: %w", err)
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Policy{}, fmt.Errorf("policy file %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}
