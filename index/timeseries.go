package index

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrFixingConflict is returned when a different value is stored for a date that
// already has a fixing and overwriting was not requested.
var ErrFixingConflict = errors.New("conflicting fixing")

// ReferenceRateFeed supplies historical fixings by date.
type ReferenceRateFeed interface {
	RateOn(date time.Time) (float64, bool)
}

// TimeSeries is a date-keyed fixing history, safe for concurrent use. Clones of an
// Index share one TimeSeries.
type TimeSeries struct {
	mu    sync.RWMutex
	rates map[string]float64
}

// NewTimeSeries returns an empty series.
func NewTimeSeries() *TimeSeries {
	return &TimeSeries{rates: make(map[string]float64)}
}

// NewMapReferenceRateFeed seeds a series from a "2006-01-02"-keyed map.
func NewMapReferenceRateFeed(rates map[string]float64) *TimeSeries {
	ts := NewTimeSeries()
	for k, v := range rates {
		ts.rates[k] = v
	}
	return ts
}

// RateOn returns the fixing stored for date.
func (ts *TimeSeries) RateOn(date time.Time) (float64, bool) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	val, ok := ts.rates[date.Format("2006-01-02")]
	return val, ok
}

// Add stores a fixing. Re-adding the same value is a no-op; a different value needs
// overwrite.
func (ts *TimeSeries) Add(date time.Time, rate float64, overwrite bool) error {
	key := date.Format("2006-01-02")
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if old, ok := ts.rates[key]; ok && old != rate && !overwrite {
		return fmt.Errorf("TimeSeries.Add: %s already fixed at %g, got %g: %w", key, old, rate, ErrFixingConflict)
	}
	ts.rates[key] = rate
	return nil
}

// Len returns the number of stored fixings.
func (ts *TimeSeries) Len() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return len(ts.rates)
}

// Dates returns the fixing dates in ascending order.
func (ts *TimeSeries) Dates() []time.Time {
	ts.mu.RLock()
	keys := make([]string, 0, len(ts.rates))
	for k := range ts.rates {
		keys = append(keys, k)
	}
	ts.mu.RUnlock()
	sort.Strings(keys)
	out := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		t, err := time.Parse("2006-01-02", k)
		if err == nil {
			out = append(out, t)
		}
	}
	return out
}

// Clear drops every fixing.
func (ts *TimeSeries) Clear() {
	ts.mu.Lock()
	ts.rates = make(map[string]float64)
	ts.mu.Unlock()
}
