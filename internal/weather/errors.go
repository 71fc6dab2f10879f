package weather

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrUnknownCity is returned when the weather service has no data for a city.
	ErrUnknownCity = errors.New("unknown city")
	// ErrTimeout is returned when an outbound request exceeds its time budget.
	ErrTimeout = errors.New("request timed out")
	// ErrNetwork covers transport failures and upstream server errors.
	ErrNetwork = errors.New("weather service unreachable")
	// ErrUnauthorized is returned when the service rejects the API key.
	ErrUnauthorized = errors.New("weather service rejected the api key")
	// ErrLocationUnavailable is returned when the caller's city cannot be resolved.
	ErrLocationUnavailable = errors.New("could not determine location")
	// ErrInvalidCount is returned for a negative history count.
	ErrInvalidCount = errors.New("count must not be negative")
	// ErrInvalidInput is returned when a numeric answer was expected.
	ErrInvalidInput = errors.New("input is not an integer")
)

// MissingFieldError reports a key absent from a weather payload. The service
// answers unknown cities with a sparse error body, so it unwraps to ErrUnknownCity.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("weather response is missing %q", e.Field)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrUnknownCity
}

// ClassifyTransportError wraps an HTTP client error as ErrTimeout or ErrNetwork.
func ClassifyTransportError(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
