package marketdata

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/index"
	"github.com/meenmo/termstruct/utils"
)

// File is a market snapshot:
//
//	evaluation_date: 2023-06-15
//	prices:
//	  CHSWPC Curncy: 10.995
//	fixings:
//	  CLICP:
//	    2023-06-15: 0.1125
//	calendars:
//	  XCL:
//	    - 2023-06-21
//
// Fixings are decimal rates keyed by index name. Calendars are extra holiday lists
// registered under new calendar IDs.
type File struct {
	EvaluationDate string                        `yaml:"evaluation_date"`
	Prices         map[string]float64            `yaml:"prices"`
	Fixings        map[string]map[string]float64 `yaml:"fixings"`
	Calendars      map[string][]string           `yaml:"calendars"`
}

// LoadFile reads a YAML (or JSON) snapshot.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read market data: %w", err)
	}
	return Parse(data)
}

// Parse decodes a snapshot and checks its dates.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse market data: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	if f.EvaluationDate != "" {
		if _, err := utils.ParseDate(f.EvaluationDate); err != nil {
			return fmt.Errorf("market data: evaluation_date: %w", err)
		}
	}
	for name, series := range f.Fixings {
		for d := range series {
			if _, err := utils.ParseDate(d); err != nil {
				return fmt.Errorf("market data: fixing %s %q: %w", name, d, err)
			}
		}
	}
	for id, days := range f.Calendars {
		for _, d := range days {
			if _, err := utils.ParseDate(d); err != nil {
				return fmt.Errorf("market data: calendar %s %q: %w", id, d, err)
			}
		}
	}
	return nil
}

// Evaluation returns the parsed evaluation date, or zero when absent.
func (f *File) Evaluation() time.Time {
	t, _ := utils.ParseDate(f.EvaluationDate)
	return t
}

// Store builds a quote store from the prices.
func (f *File) Store() *Store {
	return NewStore(f.Prices)
}

// ApplyFixings loads the fixings recorded under the index name into ix. Keys match the
// index name case-insensitively.
func (f *File) ApplyFixings(ix *index.Index) error {
	for name, series := range f.Fixings {
		if !strings.EqualFold(name, ix.Name()) || len(series) == 0 {
			continue
		}
		dates := make([]string, 0, len(series))
		for d := range series {
			dates = append(dates, d)
		}
		sort.Strings(dates)
		from, err := utils.ParseDate(dates[0])
		if err != nil {
			return fmt.Errorf("market data: fixings %s: %w", name, err)
		}
		to, err := utils.ParseDate(dates[len(dates)-1])
		if err != nil {
			return fmt.Errorf("market data: fixings %s: %w", name, err)
		}
		if err := ix.LoadFixings(index.NewMapReferenceRateFeed(series), from, to); err != nil {
			return fmt.Errorf("market data: %w", err)
		}
	}
	return nil
}

// RegisterCalendars installs every holiday list of the file.
func (f *File) RegisterCalendars() error {
	ids := make([]string, 0, len(f.Calendars))
	for id := range f.Calendars {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		days := make([]time.Time, 0, len(f.Calendars[id]))
		for _, d := range f.Calendars[id] {
			t, err := utils.ParseDate(d)
			if err != nil {
				return fmt.Errorf("market data: calendar %s: %w", id, err)
			}
			days = append(days, t)
		}
		if err := calendar.Register(calendar.CalendarID(strings.ToUpper(id)), days); err != nil {
			return fmt.Errorf("market data: %w", err)
		}
	}
	return nil
}
