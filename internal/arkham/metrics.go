package arkham

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arkham_requests_total",
		Help: "Intelligence API requests issued, by provider host and endpoint.",
	}, []string{"provider", "endpoint"})

	requestRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arkham_request_retries_total",
		Help: "Retry attempts after a retriable failure (5xx/429/network).",
	}, []string{"provider", "endpoint"})

	requestFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arkham_request_failures_total",
		Help: "Requests that exhausted retries or failed permanently.",
	}, []string{"provider", "endpoint"})
)
