package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/brock0312/solana-token-analysis/internal/scan"
)

func sampleResults() []scan.BatchResult {
	return []scan.BatchResult{
		{
			Token: "tok1",
			Report: &scan.TokenReport{
				Token:    "tok1",
				ScanID:   "run-1",
				Deployer: "deployer-address-000000000000000000",
				Assessment: scan.RiskAssessment{
					Score: 65,
					Label: scan.LabelMedium,
					Flags: []string{"deployer is fresh wallet (2d) (addr: deploy..0000)"},
				},
				Trace: []scan.HopRecord{
					{Depth: 0, Address: "deployer-address-000000000000000000", AgeDays: 2},
					{Depth: 1, Address: "spray-address-00000000000000000000", AgeDays: 10, Distributor: true},
					{Depth: 2, Address: "hot-address-0000000000000000000000", AgeDays: 300, VerifiedOld: true, FundedByEntity: "Kraken"},
					{Depth: 3, Address: "kraken-address-0000000000000000000", AgeDays: -1, KnownEntity: true, EntityName: "Kraken"},
				},
				StopReason: scan.StopEntity,
			},
		},
		{Token: "tok2", Err: errors.New("token tok2: no usable transfer history")},
	}
}

func TestFromBatch(t *testing.T) {
	entries := FromBatch(sampleResults())
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Error != "" || entries[0].Report == nil {
		t.Fatalf("entry 0 should carry a report: %+v", entries[0])
	}
	if entries[1].Report != nil || entries[1].Error == "" {
		t.Fatalf("entry 1 should carry an error: %+v", entries[1])
	}
}

func TestTraceLog(t *testing.T) {
	entries := FromBatch(sampleResults())
	lines := TraceLog(entries[0].Report.Trace)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %v", len(lines), lines)
	}
	checks := []struct{ line, want string }{
		{lines[0], "[Deployer]"},
		{lines[0], "Age: 2d"},
		{lines[1], "[DISTRIBUTOR]"},
		{lines[2], "Verified Old Wallet (300 days)"},
		{lines[2], "<- Funded by: Kraken"},
		{lines[3], "[Source-3] is Known Entity: Kraken [SAFE]"},
	}
	for _, c := range checks {
		if !strings.Contains(c.line, c.want) {
			t.Fatalf("line %q missing %q", c.line, c.want)
		}
	}
}

func TestTraceLog_SubDayAge(t *testing.T) {
	lines := TraceLog([]scan.HopRecord{{Depth: 0, Address: "w", AgeDays: 0, AgeHours: 5}})
	if !strings.Contains(lines[0], "Age: 0d 5h") {
		t.Fatalf("sub-day age not rendered: %q", lines[0])
	}
}

func TestWriteJSON_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, FromBatch(sampleResults())); err != nil {
		t.Fatal(err)
	}
	var decoded []Entry
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}
	if decoded[1].Error == "" {
		t.Fatal("error entry lost in JSON output")
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	WriteText(&buf, FromBatch(sampleResults()))
	out := buf.String()
	for _, want := range []string{
		"Token: tok1",
		"risk: 65 (MEDIUM)",
		"deployer: deployer-address-000000000000000000",
		"stop: entity",
		"Token: tok2",
		"error: token tok2: no usable transfer history",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("text output missing %q:\n%s", want, out)
		}
	}
}
