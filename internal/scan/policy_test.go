package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicyIsValid(t *testing.T) {
	p := DefaultPolicy()
	require.NoError(t, p.Validate())
	assert.Equal(t, 3, p.MaxDepth)
	assert.Equal(t, 100, p.TransferWindow)
	assert.Less(t, p.MediumCutoff, p.HighCutoff)
}

func TestLoadPolicy_EmptyPathReturnsDefaults(t *testing.T) {
	p, err := LoadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy(), p)
}

func TestLoadPolicy_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
max_depth: 5
dispersion_penalty: 45
medium_cutoff: 35
trusted_keywords: ["binance"]
`), 0o600))

	p, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, 5, p.MaxDepth)
	assert.Equal(t, 45, p.DispersionPenalty)
	assert.Equal(t, 35, p.MediumCutoff)
	assert.Equal(t, []string{"binance"}, p.TrustedKeywords)
	// Untouched fields keep their defaults.
	assert.Equal(t, 180, p.OldWalletMinDays)
}

func TestLoadPolicy_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"cutoffs inverted":  "medium_cutoff: 80\nhigh_cutoff: 40\n",
		"tiers out of order": "deployer_age_tiers:\n  - {max_days: 30, risk: 10}\n  - {max_days: 7, risk: 20}\n",
		"empty keywords":    "trusted_keywords: []\n",
		"bad ratio":         "dispersion_unique_ratio: 1.5\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := LoadPolicy(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadPolicy_MissingFile(t *testing.T) {
	_, err := LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
