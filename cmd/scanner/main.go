package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brock0312/solana-token-analysis/internal/addr"
	"github.com/brock0312/solana-token-analysis/internal/arkham"
	"github.com/brock0312/solana-token-analysis/internal/config"
	"github.com/brock0312/solana-token-analysis/internal/logging"
	"github.com/brock0312/solana-token-analysis/internal/scan"
	"github.com/brock0312/solana-token-analysis/pkg/report"
)

var (
	// version is set via -ldflags "-X main.version=..."
	version = "dev"
	// exit is aliased to os.Exit to allow overriding in tests.
	exit = os.Exit
	// function variables allow tests to inject stubs
	newProvider = defaultNewProvider
	newScanner  = defaultNewScanner
)

type assessor interface {
	AssessBatch(ctx context.Context, tokens []string) []scan.BatchResult
}

func defaultNewProvider(baseURL, apiKey string, rateLimit, retries int, backoff time.Duration) (arkham.Provider, error) {
	return arkham.NewProvider(baseURL, apiKey, rateLimit, retries, backoff)
}

func defaultNewScanner(p arkham.Provider, policy scan.Policy, opts scan.Options) assessor {
	return scan.New(p, policy, opts)
}

// readTokensFile loads one address per line; blank lines and #-comments are skipped.
func readTokensFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var tokens []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens = append(tokens, line)
	}
	return tokens, sc.Err()
}

func collectTokens(args []string, file string) ([]string, error) {
	tokens := append([]string(nil), args...)
	if file != "" {
		fromFile, err := readTokensFile(file)
		if err != nil {
			return nil, fmt.Errorf("tokens file: %w", err)
		}
		tokens = append(tokens, fromFile...)
	}
	return tokens, nil
}

func printUsage() {
	fmt.Fprintf(flag.CommandLine.Output(), "\nUsage:\n  %s [flags] TOKEN [TOKEN...]\n\n", os.Args[0])
	fmt.Fprintln(flag.CommandLine.Output(), "Flags:")
	flag.PrintDefaults()
	fmt.Fprintln(flag.CommandLine.Output(), "\nEnvironment variables (defaults):")
	fmt.Fprintln(flag.CommandLine.Output(), "  ARKHAM_API_KEY     Intelligence API key [required]")
	fmt.Fprintln(flag.CommandLine.Output(), "  ARKHAM_BASE_URL    API base URL (default https://api.arkm.com)")
	fmt.Fprintln(flag.CommandLine.Output(), "  SCAN_CHAIN         Chain to scan (default solana)")
	fmt.Fprintln(flag.CommandLine.Output(), "  RATE_LIMIT         API rate limit (req/s, default 2, 0 = unlimited)")
	fmt.Fprintln(flag.CommandLine.Output(), "  HTTP_RETRIES       Retries on 5xx/429/network (default 2)")
	fmt.Fprintln(flag.CommandLine.Output(), "  HTTP_BACKOFF_BASE  Backoff between retries (default 1s)")
	fmt.Fprintln(flag.CommandLine.Output(), "  SCAN_TIMEOUT       Overall scan timeout (default 5m)")
	fmt.Fprintln(flag.CommandLine.Output(), "  SCAN_WORKERS       Concurrent token traces (default 4)")
	fmt.Fprintln(flag.CommandLine.Output(), "  SCAN_MAX_DEPTH     Funding trace depth (default 3)")
	fmt.Fprintln(flag.CommandLine.Output(), "  POLICY_FILE        YAML risk policy overrides (optional)")
	fmt.Fprintln(flag.CommandLine.Output(), "  LOG_LEVEL          debug|info|warn|error (default info)")
	fmt.Fprintln(flag.CommandLine.Output(), "\nExamples:")
	fmt.Fprintln(flag.CommandLine.Output(), "  Scan two tokens and print a text report:")
	fmt.Fprintln(flag.CommandLine.Output(), "    scanner 9DjLxqbt...pump BNso1VUJ...X85")
	fmt.Fprintln(flag.CommandLine.Output(), "  Scan a token list as JSON:")
	fmt.Fprintln(flag.CommandLine.Output(), "    scanner --tokens-file tokens.txt --format json")
}

func main() {
	defaults := config.Load()
	var (
		tokensFile  string
		baseURL     string
		apiKey      string
		chain       string
		rateLimit   int
		workers     int
		maxDepth    int
		policyFile  string
		timeout     time.Duration
		format      string
		logLevel    string
		dryRun      bool
		showVersion bool
	)

	flag.Usage = printUsage
	flag.StringVar(&tokensFile, "tokens-file", "", "File with one token address per line")
	flag.StringVar(&baseURL, "base-url", defaults.BaseURL, "Intelligence API base URL (ARKHAM_BASE_URL)")
	flag.StringVar(&apiKey, "api-key", defaults.APIKey, "Intelligence API key (ARKHAM_API_KEY)")
	flag.StringVar(&chain, "chain", defaults.Chain, "Chain to scan (SCAN_CHAIN)")
	flag.IntVar(&rateLimit, "rate-limit", defaults.RateLimit, "API rate limit (req/s, 0 = unlimited)")
	flag.IntVar(&workers, "workers", defaults.Workers, "Concurrent token traces")
	flag.IntVar(&maxDepth, "max-depth", defaults.MaxDepth, "Funding trace depth")
	flag.StringVar(&policyFile, "policy", defaults.PolicyFile, "YAML risk policy overrides (POLICY_FILE)")
	flag.DurationVar(&timeout, "timeout", defaults.Timeout, "Overall scan timeout")
	flag.StringVar(&format, "format", "text", "Output format: text | json")
	flag.StringVar(&logLevel, "log-level", defaults.LogLevel, "Log level: debug|info|warn|error")
	flag.BoolVar(&dryRun, "dry-run", false, "Print plan and exit")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		return
	}

	tokens, err := collectTokens(flag.Args(), tokensFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		exit(2)
	}
	if len(tokens) == 0 {
		fmt.Fprintln(os.Stderr, "no tokens given; pass addresses as arguments or --tokens-file (see --help)")
		exit(2)
	}
	for _, token := range tokens {
		if !addr.IsValid(chain, token) {
			fmt.Fprintf(os.Stderr, "invalid %s address: %q\n", chain, token)
			exit(2)
		}
	}
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		fmt.Fprintf(os.Stderr, "unknown --format %q (use text|json)\n", format)
		exit(2)
	}
	if workers <= 0 {
		fmt.Fprintln(os.Stderr, "--workers must be > 0")
		exit(2)
	}

	policy, err := scan.LoadPolicy(policyFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		exit(2)
	}
	policy.MaxDepth = maxDepth
	if err := policy.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exit(2)
	}

	if dryRun {
		plan := map[string]any{
			"tokens":     tokens,
			"chain":      chain,
			"base_url":   baseURL,
			"api_key":    config.RedactKey(apiKey),
			"rate_limit": rateLimit,
			"workers":    workers,
			"max_depth":  policy.MaxDepth,
			"policy":     policyFile,
			"timeout":    timeout.String(),
			"format":     format,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(plan)
		return
	}

	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "missing API key; set ARKHAM_API_KEY or --api-key")
		exit(2)
	}

	// Reports go to stdout; logs stay on stderr.
	logging.Configure(logLevel, os.Stderr)

	prov, err := newProvider(baseURL, apiKey, rateLimit, defaults.HTTPRetries, defaults.HTTPBackoffBase)
	if err != nil {
		fmt.Fprintf(os.Stderr, "provider error: %v\n", err)
		exit(1)
	}
	scanner := newScanner(prov, policy, scan.Options{Chain: chain, Workers: workers})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	results := scanner.AssessBatch(ctx, tokens)
	entries := report.FromBatch(results)
	if format == "json" {
		if err := report.WriteJSON(os.Stdout, entries); err != nil {
			fmt.Fprintf(os.Stderr, "render error: %v\n", err)
			exit(1)
		}
	} else {
		report.WriteText(os.Stdout, entries)
	}

	if err := scan.BatchErrors(results); err != nil {
		fmt.Fprintf(os.Stderr, "scan errors:\n%v\n", err)
		failures := 0
		for _, r := range results {
			if r.Err != nil {
				failures++
			}
		}
		if failures == len(results) {
			exit(1)
		}
	}
}
