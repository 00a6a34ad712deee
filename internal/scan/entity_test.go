package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	policy := DefaultPolicy()
	c := NewClassifier(&policy)

	t.Run("trusted issuer", func(t *testing.T) {
		v := c.Classify("Binance Hot Wallet", "")
		assert.True(t, v.Known)
		assert.Equal(t, LabelLow, v.Label)
		assert.Equal(t, 0, v.Score)
		assert.Contains(t, v.Reasons[0], "trusted entity verified")
	})

	t.Run("blacklist beats trusted", func(t *testing.T) {
		// "binance" appears too, but blacklist keywords take precedence.
		v := c.Classify("Fake Binance Rug Pull Deployer", "")
		assert.True(t, v.Known)
		assert.Equal(t, LabelHigh, v.Label)
		assert.Equal(t, 100, v.Score)
		assert.Contains(t, v.Reasons[0], "database blacklist match")
	})

	t.Run("blacklist via label", func(t *testing.T) {
		v := c.Classify("", "Phishing Cluster")
		assert.True(t, v.Known)
		assert.Equal(t, LabelHigh, v.Label)
		assert.Equal(t, "Phishing Cluster", v.EntityName)
	})

	t.Run("established entity gets small nonzero score", func(t *testing.T) {
		v := c.Classify("Raydium", "")
		assert.True(t, v.Known)
		assert.Equal(t, LabelLow, v.Label)
		assert.Equal(t, 10, v.Score)
		assert.Contains(t, v.Reasons[0], "established entity: Raydium")
	})

	t.Run("label alone is not established", func(t *testing.T) {
		v := c.Classify("", "Some Unmatched Label")
		assert.False(t, v.Known)
	})

	t.Run("empty input is unknown", func(t *testing.T) {
		assert.False(t, c.Classify("", "").Known)
		assert.False(t, c.Classify("  ", " ").Known)
	})

	t.Run("case insensitive", func(t *testing.T) {
		v := c.Classify("KRAKEN Cold Storage", "")
		assert.True(t, v.Known)
		assert.Equal(t, LabelLow, v.Label)
		assert.Equal(t, 0, v.Score)
	})
}

func TestClassifyUsesInjectedKeywords(t *testing.T) {
	policy := DefaultPolicy()
	policy.BlacklistKeywords = []string{"zzz"}
	policy.TrustedKeywords = []string{"yyy"}
	c := NewClassifier(&policy)

	assert.Equal(t, LabelHigh, c.Classify("a zzz b", "").Label)
	assert.Equal(t, 0, c.Classify("yyy exchange", "").Score)
	// Former defaults no longer match once the sets are replaced.
	v := c.Classify("Binance", "")
	assert.True(t, v.Known)
	assert.Equal(t, policy.EstablishedScore, v.Score)
}
