package acquisition

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// userAgent identifies the service to public flight data APIs.
const userAgent = "Icarus-Flight-Tracker/1.0 (https://github.com/UnknownOlympus/icarus)"

// transport performs rate limited GET requests guarded by a circuit breaker.
type transport struct {
	name    string
	client  HTTPClient
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     *slog.Logger
}

func newTransport(name string, client HTTPClient, limiter *rate.Limiter, log *slog.Logger) *transport {
	const (
		consecutiveFailures = 5
		openTimeout         = 30 * time.Second
	)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed", "provider", name, "from", from.String(), "to", to.String())
		},
	})

	return &transport{
		name:    name,
		client:  client,
		limiter: limiter,
		breaker: breaker,
		log:     log,
	}
}

// get fetches reqURL and returns the body of a 2xx reply. Every failure wraps ErrNetworkFailure.
func (t *transport) get(ctx context.Context, reqURL *url.URL) ([]byte, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit exceeded: %w", ErrNetworkFailure, err)
	}

	// The query may carry an access key, so only the host and path are logged.
	t.log.DebugContext(ctx, "Requesting flight provider", "provider", t.name, "host", reqURL.Host, "path", reqURL.Path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	result, err := t.breaker.Execute(func() (any, error) {
		resp, errDo := t.client.Do(req)
		if errDo != nil {
			return nil, fmt.Errorf("failed to execute %s request: %w", t.name, errDo)
		}
		defer resp.Body.Close()

		body, errRead := io.ReadAll(resp.Body)
		if errRead != nil {
			return nil, fmt.Errorf("failed to read response body: %w", errRead)
		}

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			t.log.ErrorContext(ctx, "Flight provider API error", "provider", t.name, "status", resp.StatusCode)
			return nil, fmt.Errorf("%s API returned status %d: %s", t.name, resp.StatusCode, string(body))
		}

		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s circuit breaker open: %w", ErrNetworkFailure, t.name, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result type from circuit breaker", ErrNetworkFailure)
	}

	return body, nil
}
