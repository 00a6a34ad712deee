// Package report renders scan results for humans (trace log text) and for
// machines (indented JSON). It consumes finished reports only; no scoring
// happens here.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/brock0312/solana-token-analysis/internal/addr"
	"github.com/brock0312/solana-token-analysis/internal/scan"
)

// Entry is one token's outcome in a batch: a report or an error, never both.
type Entry struct {
	Token  string            `json:"token"`
	Report *scan.TokenReport `json:"report,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// FromBatch converts scanner results into renderable entries, preserving
// input order.
func FromBatch(results []scan.BatchResult) []Entry {
	entries := make([]Entry, 0, len(results))
	for _, r := range results {
		e := Entry{Token: r.Token, Report: r.Report}
		if r.Err != nil {
			e.Error = r.Err.Error()
		}
		entries = append(entries, e)
	}
	return entries
}

// WriteJSON emits the batch as an indented JSON array.
func WriteJSON(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// WriteText emits a reviewer-oriented summary, one block per token.
func WriteText(w io.Writer, entries []Entry) {
	for i, e := range entries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Token: %s\n", e.Token)
		if e.Error != "" {
			fmt.Fprintf(w, "  error: %s\n", e.Error)
			continue
		}
		r := e.Report
		fmt.Fprintf(w, "  risk: %d (%s)\n", r.Assessment.Score, r.Assessment.Label)
		if r.Deployer != "" {
			fmt.Fprintf(w, "  deployer: %s\n", r.Deployer)
		}
		for _, flag := range r.Assessment.Flags {
			fmt.Fprintf(w, "  flag: %s\n", flag)
		}
		for _, line := range TraceLog(r.Trace) {
			fmt.Fprintf(w, "  %s\n", line)
		}
		if r.StopReason != "" {
			fmt.Fprintf(w, "  stop: %s\n", r.StopReason)
		}
	}
}

// TraceLog renders one descriptive line per hop of the funding chain.
func TraceLog(trace []scan.HopRecord) []string {
	lines := make([]string, 0, len(trace))
	for _, hop := range trace {
		role := "Deployer"
		if hop.Depth > 0 {
			role = fmt.Sprintf("Source-%d", hop.Depth)
		}
		if hop.KnownEntity {
			lines = append(lines, fmt.Sprintf("[%s] is Known Entity: %s [SAFE]", role, hop.EntityName))
			continue
		}
		parts := []string{fmt.Sprintf("[%s]", role), addr.Short(hop.Address)}
		switch {
		case hop.VerifiedOld:
			parts = append(parts, fmt.Sprintf("Verified Old Wallet (%d days)", hop.AgeDays))
		case hop.AgeDays != -1:
			age := fmt.Sprintf("%dd", hop.AgeDays)
			if hop.AgeDays == 0 {
				age = fmt.Sprintf("0d %dh", hop.AgeHours)
			}
			parts = append(parts, fmt.Sprintf("Age: %s", age))
		default:
			parts = append(parts, "Age: unknown")
		}
		if hop.FundedByEntity != "" {
			parts = append(parts, fmt.Sprintf("<- Funded by: %s", hop.FundedByEntity))
		}
		if hop.Distributor {
			parts = append(parts, "[DISTRIBUTOR]")
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return lines
}
