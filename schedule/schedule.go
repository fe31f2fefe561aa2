// Package schedule generates accrual date schedules.
package schedule

import (
	"fmt"
	"time"

	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/market"
)

// Rule is the generation direction.
type Rule int

const (
	// Backward rolls from termination, leaving any stub at the front (swap convention).
	Backward Rule = iota
	// Forward rolls from the effective date, leaving any stub at the back.
	Forward
	// Zero produces the single period [effective, termination].
	Zero
)

func (r Rule) String() string {
	switch r {
	case Forward:
		return "Forward"
	case Zero:
		return "Zero"
	default:
		return "Backward"
	}
}

// Params describes a rule-based schedule.
type Params struct {
	Effective             time.Time
	Termination           time.Time
	Tenor                 market.Period
	Calendar              calendar.Calendar
	Convention            calendar.BusinessDayConvention
	TerminationConvention calendar.BusinessDayConvention
	Rule                  Rule
	EndOfMonth            bool
}

// Period is one accrual period of a schedule.
type Period struct {
	Start time.Time
	End   time.Time
}

// Schedule is an ordered list of adjusted dates with at least two elements.
type Schedule struct {
	dates      []time.Time
	cal        calendar.Calendar
	conv       calendar.BusinessDayConvention
	tenor      market.Period
	endOfMonth bool
}

// New generates a schedule. A zero tenor or the Zero rule gives [effective, termination].
func New(p Params) (*Schedule, error) {
	if !p.Termination.After(p.Effective) {
		return nil, fmt.Errorf("schedule.New: termination %s not after effective %s: %w",
			p.Termination.Format("2006-01-02"), p.Effective.Format("2006-01-02"), market.ErrInconsistentSchedule)
	}
	if p.Tenor.N < 0 {
		return nil, fmt.Errorf("schedule.New: negative tenor %s: %w", p.Tenor, market.ErrInvalidConvention)
	}

	var unadjusted []time.Time
	switch {
	case p.Rule == Zero || p.Tenor.IsZero():
		unadjusted = []time.Time{p.Effective, p.Termination}
	case p.Rule == Forward:
		unadjusted = append(unadjusted, p.Effective)
		for k := 1; ; k++ {
			d := multiple(p.Tenor, k).AddTo(p.Effective)
			if !d.Before(p.Termination) {
				break
			}
			unadjusted = append(unadjusted, d)
		}
		unadjusted = append(unadjusted, p.Termination)
	default:
		rev := []time.Time{p.Termination}
		for k := 1; ; k++ {
			d := multiple(p.Tenor, -k).AddTo(p.Termination)
			if !d.After(p.Effective) {
				break
			}
			rev = append(rev, d)
		}
		rev = append(rev, p.Effective)
		for i := len(rev) - 1; i >= 0; i-- {
			unadjusted = append(unadjusted, rev[i])
		}
	}

	monthly := p.Tenor.Unit == market.Months || p.Tenor.Unit == market.Years
	anchor := p.Termination
	if p.Rule == Forward {
		anchor = p.Effective
	}
	eom := p.EndOfMonth && monthly && p.Calendar.IsEndOfMonth(p.Calendar.Adjust(anchor, p.Convention))

	n := len(unadjusted)
	adjusted := make([]time.Time, 0, n)
	for i, d := range unadjusted {
		switch {
		case i == n-1:
			d = p.Calendar.Adjust(d, p.TerminationConvention)
		case i > 0 && eom:
			d = p.Calendar.EndOfMonth(d)
		default:
			d = p.Calendar.Adjust(d, p.Convention)
		}
		// Adjustment can collapse a short stub onto its neighbour.
		if len(adjusted) > 0 && !d.After(adjusted[len(adjusted)-1]) {
			if i == n-1 {
				adjusted[len(adjusted)-1] = d
			}
			continue
		}
		adjusted = append(adjusted, d)
	}
	if len(adjusted) < 2 {
		return nil, fmt.Errorf("schedule.New: adjusted dates collapsed to %d: %w", len(adjusted), market.ErrInconsistentSchedule)
	}

	return &Schedule{dates: adjusted, cal: p.Calendar, conv: p.Convention, tenor: p.Tenor, endOfMonth: p.EndOfMonth}, nil
}

// FromDates wraps explicit dates. They must be at least two and strictly increasing.
func FromDates(dates []time.Time, cal calendar.Calendar, conv calendar.BusinessDayConvention) (*Schedule, error) {
	if len(dates) < 2 {
		return nil, fmt.Errorf("schedule.FromDates: need at least 2 dates, got %d: %w", len(dates), market.ErrInconsistentSchedule)
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("schedule.FromDates: %s does not follow %s: %w",
				dates[i].Format("2006-01-02"), dates[i-1].Format("2006-01-02"), market.ErrInconsistentSchedule)
		}
	}
	return &Schedule{dates: append([]time.Time(nil), dates...), cal: cal, conv: conv}, nil
}

func multiple(p market.Period, k int) market.Period {
	return market.Period{N: p.N * k, Unit: p.Unit}
}

// Dates returns a copy of the schedule dates.
func (s *Schedule) Dates() []time.Time { return append([]time.Time(nil), s.dates...) }

// Len is the number of dates.
func (s *Schedule) Len() int { return len(s.dates) }

// At returns the i-th date.
func (s *Schedule) At(i int) time.Time { return s.dates[i] }

func (s *Schedule) StartDate() time.Time                       { return s.dates[0] }
func (s *Schedule) EndDate() time.Time                         { return s.dates[len(s.dates)-1] }
func (s *Schedule) Calendar() calendar.Calendar                { return s.cal }
func (s *Schedule) Convention() calendar.BusinessDayConvention { return s.conv }
func (s *Schedule) Tenor() market.Period                       { return s.tenor }
func (s *Schedule) EndOfMonth() bool                           { return s.endOfMonth }

// Periods pairs consecutive dates.
func (s *Schedule) Periods() []Period {
	out := make([]Period, len(s.dates)-1)
	for i := range out {
		out[i] = Period{Start: s.dates[i], End: s.dates[i+1]}
	}
	return out
}
