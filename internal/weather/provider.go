package weather

import "context"

// Provider abstracts the remote weather service (e.g. OpenWeatherMap).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, city string) (RawResponse, error)
}

// Locator resolves the caller's approximate city from its IP address.
type Locator interface {
	ResolveCity(ctx context.Context) (string, error)
}

// Store is the contract for the lookup history. Records come back in
// insertion order; Clear reports whether there was anything to delete.
type Store interface {
	Load() ([]Record, error)
	Append(r Record) error
	Clear() (bool, error)
}
