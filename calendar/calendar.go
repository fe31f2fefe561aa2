package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/meenmo/termstruct/market"
	"github.com/meenmo/termstruct/utils"
)

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	TARGET CalendarID = "TARGET"
	FD     CalendarID = "FD" // US Federal Reserve
	CL     CalendarID = "CL" // Chile
	NULL   CalendarID = "NULL"
	WE     CalendarID = "WE" // weekends only
)

// JoinRule decides how a joint calendar combines its constituents.
type JoinRule int

const (
	// JoinHolidays: a holiday in any constituent is a holiday of the joint calendar.
	JoinHolidays JoinRule = iota
	// JoinBusinessDays: a business day in any constituent is a business day.
	JoinBusinessDays
)

func (r JoinRule) String() string {
	if r == JoinBusinessDays {
		return "JoinBusinessDays"
	}
	return "JoinHolidays"
}

// Calendar is a single holiday calendar or a fixed combination of several.
// The zero value behaves as the NULL calendar.
type Calendar struct {
	ids  []CalendarID
	rule JoinRule
}

// New returns the calendar for id.
func New(id CalendarID) Calendar {
	return Calendar{ids: []CalendarID{id}}
}

// Joint combines ids under rule. The constituent list is copied.
func Joint(rule JoinRule, ids ...CalendarID) Calendar {
	cp := make([]CalendarID, len(ids))
	copy(cp, ids)
	return Calendar{ids: cp, rule: rule}
}

// Parse accepts a single ID ("CL") or a joint spec ("FD+CL" joins holidays, "FD|CL" joins
// business days). Unknown IDs are rejected.
func Parse(spec string) (Calendar, error) {
	s := strings.ToUpper(strings.TrimSpace(spec))
	rule, sep := JoinHolidays, "+"
	if strings.Contains(s, "|") {
		rule, sep = JoinBusinessDays, "|"
	}
	var ids []CalendarID
	for _, part := range strings.Split(s, sep) {
		id := CalendarID(strings.TrimSpace(part))
		if !Known(id) {
			return Calendar{}, fmt.Errorf("calendar.Parse: unknown calendar %q: %w", part, market.ErrInvalidConvention)
		}
		ids = append(ids, id)
	}
	if len(ids) == 1 {
		return New(ids[0]), nil
	}
	return Joint(rule, ids...), nil
}

// Name returns the calendar ID, or a description of the join for joint calendars.
func (c Calendar) Name() string {
	switch len(c.ids) {
	case 0:
		return string(NULL)
	case 1:
		return string(c.ids[0])
	}
	names := make([]string, len(c.ids))
	for i, id := range c.ids {
		names[i] = string(id)
	}
	return fmt.Sprintf("%s(%s)", c.rule, strings.Join(names, ", "))
}

// IDs returns the constituent calendar IDs.
func (c Calendar) IDs() []CalendarID {
	out := make([]CalendarID, len(c.ids))
	copy(out, c.ids)
	return out
}

// IsBusinessDay checks weekends and holiday sets of every constituent.
func (c Calendar) IsBusinessDay(t time.Time) bool {
	if len(c.ids) == 0 {
		return true
	}
	if c.rule == JoinBusinessDays {
		for _, id := range c.ids {
			if isBusinessDay(id, t) {
				return true
			}
		}
		return false
	}
	for _, id := range c.ids {
		if !isBusinessDay(id, t) {
			return false
		}
	}
	return true
}

// IsHoliday is the negation of IsBusinessDay.
func (c Calendar) IsHoliday(t time.Time) bool {
	return !c.IsBusinessDay(t)
}

// IsWeekend reports whether t falls on the weekend of the calendar.
func (c Calendar) IsWeekend(t time.Time) bool {
	if len(c.ids) == 0 {
		return false
	}
	weekend := func(id CalendarID) bool { return id != NULL && isWeekend(t) }
	if c.rule == JoinBusinessDays {
		for _, id := range c.ids {
			if !weekend(id) {
				return false
			}
		}
		return true
	}
	for _, id := range c.ids {
		if weekend(id) {
			return true
		}
	}
	return false
}

// EndOfMonth returns the last business day of the month containing t.
func (c Calendar) EndOfMonth(t time.Time) time.Time {
	return c.Adjust(utils.EndOfMonth(t), Preceding)
}

// IsEndOfMonth checks if t is the last business day of its month.
func (c Calendar) IsEndOfMonth(t time.Time) bool {
	return t.Month() != c.Adjust(t.AddDate(0, 0, 1), Following).Month()
}

// AddBusinessDays advances n business days (n can be negative). For n == 0 the date is
// returned unchanged.
func (c Calendar) AddBusinessDays(t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if c.IsBusinessDay(t) {
			n -= step
		}
	}
	return t
}

// Advance moves t by p. Days count business days (0 days just adjusts t), weeks are
// calendar weeks followed by adjustment, months and years follow EDATE arithmetic. With
// endOfMonth set, a start on the last business day of its month lands on the last
// business day of the target month.
func (c Calendar) Advance(t time.Time, p market.Period, conv BusinessDayConvention, endOfMonth bool) time.Time {
	if p.N == 0 {
		return c.Adjust(t, conv)
	}
	switch p.Unit {
	case market.Days:
		return c.AddBusinessDays(t, p.N)
	case market.Weeks:
		return c.Adjust(t.AddDate(0, 0, 7*p.N), conv)
	default:
		d := p.AddTo(t)
		if endOfMonth && c.IsEndOfMonth(t) {
			return c.EndOfMonth(d)
		}
		return c.Adjust(d, conv)
	}
}

// BusinessDaysBetween counts business days in [from, to). The result is negative when
// to precedes from.
func (c Calendar) BusinessDaysBetween(from, to time.Time) int {
	if to.Before(from) {
		return -c.BusinessDaysBetween(to, from)
	}
	n := 0
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		if c.IsBusinessDay(d) {
			n++
		}
	}
	return n
}

// HolidayList returns the non-business days between from and to inclusive, optionally
// leaving weekends out.
func (c Calendar) HolidayList(from, to time.Time, includeWeekends bool) []time.Time {
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if c.IsHoliday(d) && (includeWeekends || !isWeekend(d)) {
			out = append(out, d)
		}
	}
	return out
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

func isBusinessDay(id CalendarID, t time.Time) bool {
	switch id {
	case NULL:
		return true
	case WE:
		return !isWeekend(t)
	}
	if isWeekend(t) {
		return false
	}
	return !isHoliday(id, t)
}
