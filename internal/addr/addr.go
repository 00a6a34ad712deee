// Package addr provides chain-aware address shape validation and display
// helpers. Addresses are treated as opaque strings everywhere else; this is
// the only place that knows what they look like.
package addr

import (
	"encoding/hex"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

var (
	evmPattern    = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	base58Pattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
)

// IsValid reports whether s is a plausible address for the given chain.
// EVM-style chains require a 0x-prefixed 20-byte hex string; everything else
// (solana and friends) is checked against the base58 alphabet and length.
func IsValid(chain, s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if isEVMChain(chain) {
		return evmPattern.MatchString(s)
	}
	return base58Pattern.MatchString(s)
}

func isEVMChain(chain string) bool {
	switch strings.ToLower(chain) {
	case "ethereum", "base", "arbitrum_one", "optimism", "polygon", "bsc", "avalanche", "linea", "mantle", "blast":
		return true
	}
	return false
}

// Checksum returns the EIP-55 mixed-case form of an EVM address. Non-EVM
// inputs are returned unchanged.
func Checksum(s string) string {
	if !evmPattern.MatchString(s) {
		return s
	}
	lower := strings.ToLower(s[2:])
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(lower))
	sum := hex.EncodeToString(hasher.Sum(nil))
	out := make([]byte, len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c >= 'a' && c <= 'f' && sum[i] >= '8' {
			c = c - 'a' + 'A'
		}
		out[i] = c
	}
	return "0x" + string(out)
}

// Canonical normalizes an address for use as a map key: EVM addresses are
// lower-cased, base58 addresses are case-sensitive and pass through.
func Canonical(chain, s string) string {
	s = strings.TrimSpace(s)
	if isEVMChain(chain) {
		return strings.ToLower(s)
	}
	return s
}

// Short abbreviates an address for report text, keeping enough of both ends
// to be recognizable.
func Short(s string) string {
	if len(s) <= 12 {
		return s
	}
	return s[:6] + ".." + s[len(s)-4:]
}
