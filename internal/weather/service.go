package weather

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Service runs the lookup pipeline: locate, fetch, parse, persist.
type Service struct {
	store    Store
	provider Provider
	locator  Locator
}

// NewService creates a new Service.
func NewService(store Store, provider Provider, locator Locator) *Service {
	return &Service{
		store:    store,
		provider: provider,
		locator:  locator,
	}
}

// Lookup fetches current weather for city and appends the parsed record to
// history. Nothing is written when fetching or parsing fails.
func (s *Service) Lookup(ctx context.Context, city string) (Record, error) {
	log.Debugf("[service] lookup for %q via %s", city, s.provider.Name())

	raw, err := s.provider.Fetch(ctx, city)
	if err != nil {
		return Record{}, fmt.Errorf("fetch weather for %q: %w", city, err)
	}

	rec, err := Parse(raw)
	if err != nil {
		return Record{}, fmt.Errorf("parse weather for %q: %w", city, err)
	}

	if err := s.store.Append(rec); err != nil {
		return Record{}, fmt.Errorf("append history: %w", err)
	}
	return rec, nil
}

// LookupLocal resolves the caller's city and then runs Lookup for it.
func (s *Service) LookupLocal(ctx context.Context) (Record, error) {
	if s.locator == nil {
		return Record{}, fmt.Errorf("%w: no locator configured", ErrLocationUnavailable)
	}

	city, err := s.locator.ResolveCity(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("resolve local city: %w", err)
	}
	log.Debugf("[service] resolved local city %q", city)

	return s.Lookup(ctx, city)
}

// History returns all persisted records in insertion order.
func (s *Service) History() ([]Record, error) {
	return s.store.Load()
}

// Recent returns up to n of the most recent records, newest first, together
// with the size of the whole history.
func (s *Service) Recent(n int) ([]Record, int, error) {
	history, err := s.store.Load()
	if err != nil {
		return nil, 0, err
	}
	selected, err := Recent(history, n)
	if err != nil {
		return nil, len(history), err
	}
	return selected, len(history), nil
}

// ClearHistory deletes the history and reports whether anything existed.
func (s *Service) ClearHistory() (bool, error) {
	return s.store.Clear()
}
