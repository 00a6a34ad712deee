package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/brock0312/solana-token-analysis/internal/arkham"
	"github.com/brock0312/solana-token-analysis/internal/logging"
)

// ErrNoHistory marks a token whose starting transfer history could not be
// resolved at all. It is the only per-token condition surfaced as an error:
// rendering it as a low score would disguise absence of data as safety.
var ErrNoHistory = errors.New("no usable transfer history")

// Options configure a Scanner.
type Options struct {
	Chain   string
	Workers int // concurrent traces in AssessBatch (<=0 means 1)
}

// Scanner assesses token risk by classifying known entities and tracing the
// funding provenance of unknown deployers. Independent tokens are traced
// concurrently; a single trace is inherently sequential because each hop's
// identity depends on the previous hop's resolved funder.
type Scanner struct {
	prov    arkham.Provider
	policy  Policy
	chain   string
	workers int
	now     func() time.Time
}

// TokenReport is the outward result for one token.
type TokenReport struct {
	Token      string         `json:"token"`
	ScanID     string         `json:"scan_id"`
	Deployer   string         `json:"deployer,omitempty"`
	Assessment RiskAssessment `json:"risk_assessment"`
	Trace      []HopRecord    `json:"trace,omitempty"`
	StopReason StopReason     `json:"stop_reason,omitempty"`
	Precheck   bool           `json:"precheck"`
}

// BatchResult pairs one input token with either its report or its error.
type BatchResult struct {
	Token  string
	Report *TokenReport
	Err    error
}

// New constructs a Scanner. The policy is copied; later mutation of the
// caller's value does not affect a running scanner.
func New(prov arkham.Provider, policy Policy, opts Options) *Scanner {
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Scanner{
		prov:    prov,
		policy:  policy,
		chain:   opts.Chain,
		workers: workers,
		now:     time.Now,
	}
}

// AssessToken scores a single token: database pre-check first, then deployer
// identification and the funding provenance trace.
func (s *Scanner) AssessToken(ctx context.Context, token string) (*TokenReport, error) {
	return s.assess(ctx, token, uuid.NewString())
}

func (s *Scanner) assess(ctx context.Context, token, scanID string) (*TokenReport, error) {
	logger := logging.Logger()
	began := s.now()

	// Pre-check: tokens already catalogued by the intelligence database skip
	// the deep trace entirely. Lookup failure is advisory, not a gate.
	verdict := s.precheck(ctx, token)
	if verdict.Known {
		tokensTotal.WithLabelValues(outcomePrecheck).Inc()
		logger.Info("token_precheck_hit",
			"component", "scan.scanner",
			"scan_id", scanID,
			"token", token,
			"label", string(verdict.Label))
		return &TokenReport{
			Token:  token,
			ScanID: scanID,
			Assessment: RiskAssessment{
				Score: verdict.Score,
				Label: verdict.Label,
				Flags: verdict.Reasons,
			},
			Precheck: true,
		}, nil
	}

	deployer, err := s.findDeployer(ctx, token)
	if err != nil {
		tokensTotal.WithLabelValues(outcomeFailed).Inc()
		return nil, fmt.Errorf("token %s: %w", token, err)
	}

	t := &tracer{prov: s.prov, chain: s.chain, policy: &s.policy, now: s.now}
	res := t.Trace(ctx, deployer)
	assessment := Finalize(res, &s.policy)
	tokensTotal.WithLabelValues(outcomeTraced).Inc()

	logger.Info("token_assessed",
		"component", "scan.scanner",
		"scan_id", scanID,
		"token", token,
		"deployer", deployer,
		"score", assessment.Score,
		"label", string(assessment.Label),
		"stop_reason", string(res.StopReason),
		"elapsed_ms", s.now().Sub(began).Milliseconds())

	return &TokenReport{
		Token:      token,
		ScanID:     scanID,
		Deployer:   deployer,
		Assessment: assessment,
		Trace:      res.Trace,
		StopReason: res.StopReason,
	}, nil
}

func (s *Scanner) precheck(ctx context.Context, token string) EntityVerdict {
	info, err := s.prov.LookupEntity(ctx, token, s.chain)
	if err != nil {
		logging.Logger().Debug("precheck_lookup_failed",
			"component", "scan.scanner",
			"token", token,
			"error", err.Error())
		return EntityVerdict{}
	}
	return NewClassifier(&s.policy).Classify(info.EntityName, info.LabelName)
}

// findDeployer identifies the address behind the token's earliest recorded
// transfer: the from-side when present, otherwise the to-side (mint-origin
// distributions have no meaningful source).
func (s *Scanner) findDeployer(ctx context.Context, token string) (string, error) {
	transfers, err := s.prov.Transfers(ctx, arkham.TransferQuery{
		Chain: s.chain, Base: token, Limit: s.policy.TransferWindow, SortKey: "time", SortDir: "asc",
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoHistory, err)
	}
	if len(transfers) == 0 {
		return "", ErrNoHistory
	}
	earliest, ok := earliestValid(transfers)
	if !ok {
		return "", fmt.Errorf("%w: no valid timestamps", ErrNoHistory)
	}
	deployer := earliest.From
	if deployer == "" {
		deployer = earliest.To
	}
	if deployer == "" {
		return "", fmt.Errorf("%w: earliest transfer names no addresses", ErrNoHistory)
	}
	return deployer, nil
}

// AssessBatch traces every token through a bounded worker pool, preserving
// input order. One token's failure never aborts the rest; each slot carries
// its own report or error.
func (s *Scanner) AssessBatch(ctx context.Context, tokens []string) []BatchResult {
	runID := uuid.NewString()
	results := make([]BatchResult, len(tokens))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, token := range tokens {
		i, token := i, token
		results[i].Token = token
		g.Go(func() error {
			report, err := s.assess(gctx, token, runID)
			results[i].Report = report
			results[i].Err = err
			// Individual failures are recorded in the slot, never returned:
			// returning one would cancel the sibling traces.
			return nil
		})
	}
	_ = g.Wait()

	logging.Logger().Info("batch_complete",
		"component", "scan.scanner",
		"scan_id", runID,
		"tokens", len(tokens),
		"failures", countFailures(results))
	return results
}

func countFailures(results []BatchResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// BatchErrors joins every per-token failure in a batch into one error, or
// nil when all tokens succeeded.
func BatchErrors(results []BatchResult) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errors.Join(errs...)
}
