package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/gofrs/flock"
	log "github.com/sirupsen/logrus"

	"github.com/i474232898/weather-cli/internal/weather"
)

// DefaultHistoryFile is the conventional history location.
const DefaultHistoryFile = "history.csv"

const historyFileMode = 0o644

// Header is the column header of the history file.
var Header = []string{"current_time", "city", "cloud", "temp", "feels_like", "wind_speed"}

// CSVStore persists history as rows of a flat CSV file. Append rewrites the
// whole file. A mutex serialises writers sharing one store; an advisory lock
// on a sibling ".lock" file serialises writers across processes.
type CSVStore struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

// NewCSVStore creates a store backed by path. The file is created lazily.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the history file location.
func (s *CSVStore) Path() string {
	return s.path
}

// Load reads the whole history. A missing file is an empty history.
func (s *CSVStore) Load() ([]weather.Record, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []weather.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	records, err := readRecords(f)
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", s.path, err)
	}
	return records, nil
}

// Append adds r after the existing rows and rewrites the file.
func (s *CSVStore) Append(r weather.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock history: %w", err)
	}
	defer s.unlock()

	history, err := s.Load()
	if err != nil {
		return err
	}
	history = append(history, r)

	return s.rewrite(history)
}

// Clear deletes the history file and reports whether it existed.
func (s *CSVStore) Clear() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return false, fmt.Errorf("lock history: %w", err)
	}
	defer s.unlock()

	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("remove history: %w", err)
	}
	log.Debugf("[store] removed %s", s.path)
	return true, nil
}

func (s *CSVStore) unlock() {
	if err := s.lock.Unlock(); err != nil {
		log.Warnf("[store] unlock %s: %v", s.lock.Path(), err)
	}
}

// rewrite writes history to a temporary file and renames it over the target.
func (s *CSVStore) rewrite(history []weather.Record) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp history: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(historyFileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp history: %w", err)
	}
	if err := writeRecords(tmp, history); err != nil {
		tmp.Close()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}

func writeRecords(w io.Writer, history []weather.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range history {
		row := []string{
			r.LocalTime,
			r.City,
			r.Condition,
			weather.FormatFloat(r.Temperature),
			weather.FormatFloat(r.FeelsLike),
			weather.FormatFloat(r.WindSpeed),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// readRecords maps columns by header name, so files written by older
// revisions without current_time or cloud still load with those fields empty.
func readRecords(r io.Reader) ([]weather.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []weather.Record{}, nil
	}
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, required := range []string{"city", "temp", "feels_like", "wind_speed"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("history header lacks column %q", required)
		}
	}

	records := []weather.Record{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		col := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		rec := weather.Record{
			LocalTime: col("current_time"),
			City:      col("city"),
			Condition: col("cloud"),
		}
		if rec.Temperature, err = parseFloat(col("temp"), "temp", line); err != nil {
			return nil, err
		}
		if rec.FeelsLike, err = parseFloat(col("feels_like"), "feels_like", line); err != nil {
			return nil, err
		}
		if rec.WindSpeed, err = parseFloat(col("wind_speed"), "wind_speed", line); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseFloat(v, column string, line int) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid %s %q", line, column, v)
	}
	return f, nil
}
