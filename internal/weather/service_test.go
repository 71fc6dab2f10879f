package weather

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type fakeProvider struct {
	responses map[string]string
	err       error
	calls     []string
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Fetch(_ context.Context, city string) (RawResponse, error) {
	p.calls = append(p.calls, city)
	if p.err != nil {
		return nil, p.err
	}
	body, ok := p.responses[city]
	if !ok {
		body = `{"cod":"404","message":"city not found"}`
	}
	return mustDecode(body), nil
}

func mustDecode(s string) RawResponse {
	var raw RawResponse
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		panic(err)
	}
	return raw
}

type fakeLocator struct {
	city string
	err  error
}

func (l fakeLocator) ResolveCity(context.Context) (string, error) { return l.city, l.err }

type sliceStore struct {
	records []Record
}

func (s *sliceStore) Load() ([]Record, error) {
	return append([]Record(nil), s.records...), nil
}

func (s *sliceStore) Append(r Record) error {
	s.records = append(s.records, r)
	return nil
}

func (s *sliceStore) Clear() (bool, error) {
	had := len(s.records) > 0
	s.records = nil
	return had, nil
}

func TestLookupAppendsRecord(t *testing.T) {
	store := &sliceStore{}
	svc := NewService(store, &fakeProvider{responses: map[string]string{"London": londonPayload}}, nil)

	rec, err := svc.Lookup(context.Background(), "London")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.City != "London" {
		t.Fatalf("expected London, got %q", rec.City)
	}
	if len(store.records) != 1 || store.records[0] != rec {
		t.Fatalf("expected record to be appended, got %+v", store.records)
	}
}

func TestLookupUnknownCityLeavesHistory(t *testing.T) {
	store := &sliceStore{records: []Record{{City: "Paris"}}}
	svc := NewService(store, &fakeProvider{}, nil)

	_, err := svc.Lookup(context.Background(), "Atlantis")
	if !errors.Is(err, ErrUnknownCity) {
		t.Fatalf("expected ErrUnknownCity, got %v", err)
	}
	if len(store.records) != 1 {
		t.Fatalf("expected history unchanged, got %d records", len(store.records))
	}
}

func TestLookupPropagatesTimeout(t *testing.T) {
	store := &sliceStore{}
	svc := NewService(store, &fakeProvider{err: ClassifyTransportError(context.DeadlineExceeded)}, nil)

	_, err := svc.Lookup(context.Background(), "London")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if len(store.records) != 0 {
		t.Fatalf("expected no records, got %d", len(store.records))
	}
}

func TestLookupLocal(t *testing.T) {
	provider := &fakeProvider{responses: map[string]string{"London": londonPayload}}
	svc := NewService(&sliceStore{}, provider, fakeLocator{city: "London"})

	if _, err := svc.LookupLocal(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(provider.calls) != 1 || provider.calls[0] != "London" {
		t.Fatalf("expected lookup for London, got %v", provider.calls)
	}

	failing := NewService(&sliceStore{}, provider, fakeLocator{err: ErrLocationUnavailable})
	if _, err := failing.LookupLocal(context.Background()); !errors.Is(err, ErrLocationUnavailable) {
		t.Fatalf("expected ErrLocationUnavailable, got %v", err)
	}
}

func TestServiceRecentAndClear(t *testing.T) {
	store := &sliceStore{records: []Record{{City: "a"}, {City: "b"}, {City: "c"}}}
	svc := NewService(store, &fakeProvider{}, nil)

	got, total, err := svc.Recent(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 || len(got) != 3 || got[0].City != "c" {
		t.Fatalf("expected all 3 newest first, got %v (total %d)", cities(got), total)
	}

	cleared, err := svc.ClearHistory()
	if err != nil || !cleared {
		t.Fatalf("expected history to be cleared, got %v, %v", cleared, err)
	}
	cleared, err = svc.ClearHistory()
	if err != nil || cleared {
		t.Fatalf("expected nothing to clear, got %v, %v", cleared, err)
	}
}
