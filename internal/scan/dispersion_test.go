package scan

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brock0312/solana-token-analysis/internal/arkham"
)

// fanOut builds total outgoing transfers cycling through unique receivers.
func fanOut(from string, total, unique int) []arkham.Transfer {
	out := make([]arkham.Transfer, 0, total)
	for i := 0; i < total; i++ {
		out = append(out, arkham.Transfer{
			From: from,
			To:   fmt.Sprintf("recv-%d", i%unique),
			Time: time.Now(),
		})
	}
	return out
}

func TestLooksLikeDistributor(t *testing.T) {
	policy := DefaultPolicy()
	cases := []struct {
		name          string
		total, unique int
		want          bool
	}{
		{"high fan-out fires", 25, 21, true},
		{"repeat counterparties pass", 25, 10, false},
		{"below minimum sample passes", 15, 15, false},
		{"ratio high but few receivers", 30, 16, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			prov := newStubProvider()
			prov.from["w"] = fanOut("w", c.total, c.unique)
			got := looksLikeDistributor(context.Background(), prov, "solana", "w", &policy)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestLooksLikeDistributor_LookupFailureIsFalse(t *testing.T) {
	policy := DefaultPolicy()
	prov := newStubProvider()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, looksLikeDistributor(ctx, prov, "solana", "w", &policy))
}

func TestLooksLikeDistributor_IgnoresEmptyReceivers(t *testing.T) {
	policy := DefaultPolicy()
	prov := newStubProvider()
	transfers := fanOut("w", 25, 21)
	for i := range transfers {
		if i%2 == 0 {
			transfers[i].To = ""
		}
	}
	prov.from["w"] = transfers
	// Half the records lose their receiver; ~10 unique remain, under the bar.
	assert.False(t, looksLikeDistributor(context.Background(), prov, "solana", "w", &policy))
}
