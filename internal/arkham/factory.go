package arkham

import (
	"net/http"
	"strings"
	"time"
)

// NewProvider constructs a concrete Provider for the given base URL and wraps
// it with a rate limiter. Validation is centralized in NewHTTPProvider (after
// trimming whitespace) to keep behavior in one place.
func NewProvider(baseURL, apiKey string, rateLimit int, retries int, backoff time.Duration) (Provider, error) {
	base, err := NewHTTPProvider(strings.TrimSpace(baseURL), strings.TrimSpace(apiKey), &http.Client{Timeout: 30 * time.Second})
	if err != nil {
		return nil, err
	}
	if hp, ok := base.(*httpProvider); ok {
		if retries > 0 {
			hp.maxRetries = retries
		}
		if backoff > 0 {
			hp.backoffBase = backoff
		}
	}
	return WrapWithLimiter(base, NewLimiter(rateLimit)), nil
}
