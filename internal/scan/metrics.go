package scan

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomePrecheck = "precheck"
	outcomeTraced   = "traced"
	outcomeFailed   = "failed"
)

var tokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "scan_tokens_total",
	Help: "Tokens assessed, by outcome (precheck short-circuit, full trace, failure).",
}, []string{"outcome"})
