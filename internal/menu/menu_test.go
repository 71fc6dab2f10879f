package menu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/i474232898/weather-cli/internal/store"
	"github.com/i474232898/weather-cli/internal/weather"
)

type fakeProvider struct {
	err error
}

func (fakeProvider) Name() string { return "fake" }

func (p fakeProvider) Fetch(_ context.Context, city string) (weather.RawResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	body := `{"cod":"404","message":"city not found"}`
	switch city {
	case "London", "Paris", "Oslo", "Kazan":
		body = `{"name":"` + city + `","dt":1700000000,"timezone":0,` +
			`"weather":[{"description":"ясно"}],"main":{"temp":10.5,"feels_like":9},"wind":{"speed":3}}`
	}
	var raw weather.RawResponse
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

type fakeLocator struct {
	city string
	err  error
}

func (l fakeLocator) ResolveCity(context.Context) (string, error) { return l.city, l.err }

func newController(t *testing.T, s weather.Store, p weather.Provider, input string) (*Controller, *bytes.Buffer) {
	t.Helper()
	svc := weather.NewService(s, p, fakeLocator{city: "Kazan"})
	out := &bytes.Buffer{}
	return New(svc, strings.NewReader(input), out), out
}

func runController(t *testing.T, c *Controller) {
	t.Helper()
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestLookupByNameFreshHistory(t *testing.T) {
	s := store.NewCSVStore(filepath.Join(t.TempDir(), "history.csv"))
	c, out := newController(t, s, fakeProvider{}, "2\nLondon\n5\n")
	runController(t, c)

	if !strings.Contains(out.String(), "Город: London") {
		t.Fatalf("expected a report for London, got:\n%s", out)
	}
	records, err := s.Load()
	if err != nil || len(records) != 1 || records[0].City != "London" {
		t.Fatalf("expected one London record, got %+v, %v", records, err)
	}
	if !strings.HasSuffix(out.String(), MsgFarewell) {
		t.Fatalf("expected farewell at the end, got:\n%s", out)
	}
}

func TestLookupLocal(t *testing.T) {
	s := store.NewMemoryStore(0)
	c, out := newController(t, s, fakeProvider{}, "1\n5\n")
	runController(t, c)

	if !strings.Contains(out.String(), "Город: Kazan") {
		t.Fatalf("expected a report for the local city, got:\n%s", out)
	}
}

func TestShowHistoryClampsToCount(t *testing.T) {
	s := store.NewMemoryStore(0)
	c, out := newController(t, s, fakeProvider{}, "2\nLondon\n2\nParis\n2\nOslo\n3\n5\n5\n")
	runController(t, c)

	text := out.String()
	listing := text[strings.Index(text, separator):]
	if !strings.Contains(text, "Выведены все запросы из истории: 3") {
		t.Fatalf("expected all-shown message, got:\n%s", text)
	}
	oslo := strings.Index(listing, "Город: Oslo")
	paris := strings.Index(listing, "Город: Paris")
	london := strings.Index(listing, "Город: London")
	if oslo < 0 || paris < 0 || london < 0 || !(oslo < paris && paris < london) {
		t.Fatalf("expected newest first, got:\n%s", listing)
	}
}

func TestShowHistoryCounts(t *testing.T) {
	seed := func(s weather.Store) {
		for _, city := range []string{"London", "Paris", "Oslo"} {
			_ = s.Append(weather.Record{City: city})
		}
	}

	cases := []struct {
		name  string
		count string
		want  string
	}{
		{"zero", "0", MsgZeroShown},
		{"negative", "-2", MsgInvalidCount},
		{"not a number", "many", MsgEnterInteger},
		{"partial", "2", "Выведено 2 запросов"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := store.NewMemoryStore(0)
			seed(s)
			c, out := newController(t, s, fakeProvider{}, "3\n"+tc.count+"\n5\n")
			runController(t, c)

			if !strings.Contains(out.String(), tc.want) {
				t.Fatalf("expected %q in:\n%s", tc.want, out)
			}
			if tc.name == "partial" && strings.Contains(out.String(), "Город: London") {
				t.Fatalf("expected oldest record to be omitted:\n%s", out)
			}
		})
	}
}

func TestUnknownCityKeepsHistory(t *testing.T) {
	s := store.NewMemoryStore(0)
	for _, city := range []string{"London", "Paris", "Oslo"} {
		_ = s.Append(weather.Record{City: city})
	}
	c, out := newController(t, s, fakeProvider{}, "2\nAtlantis\n5\n")
	runController(t, c)

	if !strings.Contains(out.String(), MsgUnknownCity) {
		t.Fatalf("expected unknown city message, got:\n%s", out)
	}
	if records, _ := s.Load(); len(records) != 3 {
		t.Fatalf("expected history to stay at 3 records, got %d", len(records))
	}
}

func TestClearThenShowHistory(t *testing.T) {
	s := store.NewCSVStore(filepath.Join(t.TempDir(), "history.csv"))
	_ = s.Append(weather.Record{City: "London"})

	c, out := newController(t, s, fakeProvider{}, "4\n3\n4\n5\n")
	runController(t, c)

	text := out.String()
	cleared := strings.Index(text, MsgHistoryCleared)
	empty := strings.Index(text, MsgHistoryEmpty)
	nothing := strings.Index(text, MsgNothingToClear)
	if cleared < 0 || empty < cleared || nothing < empty {
		t.Fatalf("expected clear, empty history, nothing to clear in order, got:\n%s", text)
	}
}

func TestMalformedInput(t *testing.T) {
	s := store.NewMemoryStore(0)
	c, out := newController(t, s, fakeProvider{}, "abc\n42\n5\n")
	runController(t, c)

	text := out.String()
	if !strings.Contains(text, MsgEnterInteger) {
		t.Fatalf("expected integer prompt, got:\n%s", text)
	}
	if !strings.Contains(text, MsgUnknownAction) {
		t.Fatalf("expected unknown action message, got:\n%s", text)
	}
	if strings.Count(text, promptMenu) != 3 {
		t.Fatalf("expected the menu to be shown three times, got:\n%s", text)
	}
}

func TestFailuresAreReported(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", weather.ClassifyTransportError(context.DeadlineExceeded), MsgTimeout},
		{"network", weather.ClassifyTransportError(errors.New("connection refused")), MsgNetwork},
		{"unauthorized", weather.ErrUnauthorized, MsgUnauthorized},
		{"unexpected", errors.New("disk on fire"), MsgUnexpected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := store.NewMemoryStore(0)
			c, out := newController(t, s, fakeProvider{err: tc.err}, "2\nLondon\n5\n")
			runController(t, c)

			if !strings.Contains(out.String(), tc.want) {
				t.Fatalf("expected %q in:\n%s", tc.want, out)
			}
			if records, _ := s.Load(); len(records) != 0 {
				t.Fatalf("expected no records, got %d", len(records))
			}
		})
	}
}

func TestLocationFailureIsReported(t *testing.T) {
	svc := weather.NewService(store.NewMemoryStore(0), fakeProvider{}, fakeLocator{err: weather.ErrLocationUnavailable})
	out := &bytes.Buffer{}
	runController(t, New(svc, strings.NewReader("1\n5\n"), out))

	if !strings.Contains(out.String(), MsgNoLocation) {
		t.Fatalf("expected location failure message, got:\n%s", out)
	}
}

func TestEndOfInputTerminates(t *testing.T) {
	c, out := newController(t, store.NewMemoryStore(0), fakeProvider{}, "")
	runController(t, c)

	if !strings.HasSuffix(out.String(), MsgFarewell) {
		t.Fatalf("expected farewell on end of input, got:\n%s", out)
	}
}

func TestEndOfInputAtSubPrompt(t *testing.T) {
	cases := map[string]string{
		"city prompt":  "2\n",
		"count prompt": "2\nLondon\n3\n",
	}

	for name, input := range cases {
		c, out := newController(t, store.NewMemoryStore(0), fakeProvider{}, input)
		runController(t, c)

		text := out.String()
		if strings.Contains(text, MsgUnexpected) {
			t.Fatalf("%s: expected no error message, got:\n%s", name, text)
		}
		if !strings.HasSuffix(text, MsgFarewell) || strings.Count(text, MsgFarewell) != 1 {
			t.Fatalf("%s: expected a single farewell at the end, got:\n%s", name, text)
		}
	}
}

func TestDispatchOutcome(t *testing.T) {
	c, _ := newController(t, store.NewMemoryStore(0), fakeProvider{}, "")

	if outcome, err := c.Dispatch(context.Background(), ActionExit); err != nil || outcome != Terminate {
		t.Fatalf("expected Terminate, got %v, %v", outcome, err)
	}
	if outcome, err := c.Dispatch(context.Background(), 0); err != nil || outcome != Continue {
		t.Fatalf("expected Continue, got %v, %v", outcome, err)
	}
}
