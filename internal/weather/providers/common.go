package providers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/i474232898/weather-cli/internal/weather"
	"github.com/sony/gobreaker"
)

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// doRequest executes a single HTTP request through the circuit breaker.
// There are no retries: the client's timeout is the only time budget.
// Responses whose status passes readable are returned with an open body;
// everything else is closed and mapped to an error.
func doRequest(
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	req *http.Request,
	readable func(status int) bool,
) (*http.Response, error) {
	if client == nil {
		return nil, errNoHTTPClient
	}

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, weather.ClassifyTransportError(execErr)
		}

		if readable(resp.StatusCode) {
			return resp, nil
		}
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, weather.ErrUnauthorized
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, fmt.Errorf("%w: %w", weather.ErrNetwork, errRateLimited)
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: %w: %d", weather.ErrNetwork, errServerError, resp.StatusCode)
		default:
			return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
		}
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w: %v", weather.ErrNetwork, errCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}
