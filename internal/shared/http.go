package shared

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedTransport paces outbound requests with a token bucket before delegating to Base.
type RateLimitedTransport struct {
	Base    http.RoundTripper
	Limiter *rate.Limiter
}

// RoundTrip waits for a token, honoring the request context, then performs the request.
func (t *RateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", ErrTimeout, err)
		}
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// NewHTTPClient builds the shared outbound client from cfg.
//
// Timeouts surface as request errors; there is no retry at this layer.
func NewHTTPClient(cfg HTTPConfig) *http.Client {
	client := &http.Client{}
	if cfg.TimeoutSeconds > 0 {
		client.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.RequestsPerSecond > 0 {
		client.Transport = &RateLimitedTransport{
			Base:    http.DefaultTransport,
			Limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		}
	}
	return client
}
