// Package daycount implements the day-count conventions used for accrual and curve
// time measurement.
package daycount

import (
	"fmt"
	"strings"
	"time"

	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/market"
	"github.com/meenmo/termstruct/utils"
)

// Convention enumerates the supported day-count rules.
type Convention int

const (
	Actual360 Convention = iota
	Actual365Fixed
	ActualActualISDA
	Business252
	Simple
	Thirty360
	Thirty360E
)

var names = map[Convention]string{
	Actual360:        "Actual/360",
	Actual365Fixed:   "Actual/365 (Fixed)",
	ActualActualISDA: "Actual/Actual (ISDA)",
	Business252:      "Business/252",
	Simple:           "Simple",
	Thirty360:        "30/360 (Bond Basis)",
	Thirty360E:       "30E/360 (Eurobond Basis)",
}

// DayCounter measures day counts and year fractions between dates.
// The zero value is Actual/360.
type DayCounter struct {
	conv Convention
	cal  calendar.Calendar
}

// New returns the day counter for conv. Business252 uses the NULL calendar; use
// NewBusiness252 to supply a real one.
func New(conv Convention) DayCounter {
	return DayCounter{conv: conv}
}

// NewBusiness252 counts business days of cal.
func NewBusiness252(cal calendar.Calendar) DayCounter {
	return DayCounter{conv: Business252, cal: cal}
}

// Parse accepts the common spellings, e.g. "ACT/360", "Actual/365 (Fixed)", "30/360".
// "BUS/252:CL" selects the Business/252 calendar.
func Parse(name string) (DayCounter, error) {
	key := normalize(name)
	if strings.HasPrefix(key, "BUS/252:") || strings.HasPrefix(key, "BUSINESS/252:") {
		cal, err := calendar.Parse(key[strings.Index(key, ":")+1:])
		if err != nil {
			return DayCounter{}, fmt.Errorf("daycount.Parse: %q: %w", name, err)
		}
		return NewBusiness252(cal), nil
	}
	if c, ok := alias(key); ok {
		return New(c), nil
	}
	return DayCounter{}, fmt.Errorf("daycount.Parse: unknown day counter %q: %w", name, market.ErrInvalidConvention)
}

// Convention returns the rule of dc.
func (dc DayCounter) Convention() Convention { return dc.conv }

// Name returns the conventional display name.
func (dc DayCounter) Name() string {
	if dc.conv == Business252 {
		return fmt.Sprintf("Business/252(%s)", dc.cal.Name())
	}
	return names[dc.conv]
}

func (dc DayCounter) String() string { return dc.Name() }

// DayCount returns the number of days between d1 and d2 under the convention.
// Reversed arguments give the negated count.
func (dc DayCounter) DayCount(d1, d2 time.Time) int {
	if d2.Before(d1) {
		return -dc.DayCount(d2, d1)
	}
	switch dc.conv {
	case Business252:
		return dc.cal.BusinessDaysBetween(d1, d2)
	case Simple:
		return simpleSerial(d2) - simpleSerial(d1)
	case Thirty360:
		return thirty360BondBasis(d1, d2)
	case Thirty360E:
		return thirty360Eurobond(d1, d2)
	default:
		return utils.Days(d1, d2)
	}
}

// YearFraction returns the accrual fraction between d1 and d2. It is zero for equal
// dates, non-decreasing in d2, and reversed arguments give the negated value.
func (dc DayCounter) YearFraction(d1, d2 time.Time) float64 {
	if d1.Equal(d2) {
		return 0
	}
	if d2.Before(d1) {
		return -dc.YearFraction(d2, d1)
	}
	switch dc.conv {
	case Actual360:
		return float64(utils.Days(d1, d2)) / 360.0
	case Actual365Fixed:
		return float64(utils.Days(d1, d2)) / 365.0
	case ActualActualISDA:
		return actualActualISDA(d1, d2)
	case Business252:
		return float64(dc.cal.BusinessDaysBetween(d1, d2)) / 252.0
	case Simple:
		return simpleYearFraction(d1, d2)
	case Thirty360:
		return float64(thirty360BondBasis(d1, d2)) / 360.0
	case Thirty360E:
		return float64(thirty360Eurobond(d1, d2)) / 360.0
	default:
		return float64(utils.Days(d1, d2)) / 360.0
	}
}

func actualActualISDA(d1, d2 time.Time) float64 {
	y1, y2 := d1.Year(), d2.Year()
	if y1 == y2 {
		return float64(utils.Days(d1, d2)) / yearLength(y1)
	}
	sum := float64(y2 - y1 - 1)
	sum += float64(utils.Days(d1, utils.Date(y1+1, time.January, 1))) / yearLength(y1)
	sum += float64(utils.Days(utils.Date(y2, time.January, 1), d2)) / yearLength(y2)
	return sum
}

func yearLength(y int) float64 {
	if utils.IsLeapYear(y) {
		return 366
	}
	return 365
}

// simpleYearFraction counts 30-day months between serial day numbers, so whole-month
// steps (month end to month end included) are exact twelfths and splitting an interval
// at any date adds up to the whole.
func simpleYearFraction(d1, d2 time.Time) float64 {
	return float64(simpleSerial(d2)-simpleSerial(d1)) / 360.0
}

// simpleSerial numbers days on a 30/360 grid; a month end is day 30.
func simpleSerial(t time.Time) int {
	d := t.Day()
	if d > 30 || utils.IsEndOfMonth(t) {
		d = 30
	}
	return 360*t.Year() + 30*(int(t.Month())-1) + d
}

func thirty360BondBasis(d1, d2 time.Time) int {
	dd1, dd2 := d1.Day(), d2.Day()
	if dd1 == 31 {
		dd1 = 30
	}
	if dd2 == 31 && dd1 >= 30 {
		dd2 = 30
	}
	return 360*(d2.Year()-d1.Year()) + 30*(int(d2.Month())-int(d1.Month())) + dd2 - dd1
}

func thirty360Eurobond(d1, d2 time.Time) int {
	dd1, dd2 := d1.Day(), d2.Day()
	if dd1 == 31 {
		dd1 = 30
	}
	if dd2 == 31 {
		dd2 = 30
	}
	return 360*(d2.Year()-d1.Year()) + 30*(int(d2.Month())-int(d1.Month())) + dd2 - dd1
}

var normalizer = strings.NewReplacer(" ", "", "(", "", ")", "", "FIXED", "F")

func normalize(name string) string {
	return normalizer.Replace(strings.ToUpper(strings.TrimSpace(name)))
}

func alias(key string) (Convention, bool) {
	switch key {
	case "ACT/360", "ACTUAL/360", "A360":
		return Actual360, true
	case "ACT/365", "ACT/365F", "ACTUAL/365", "ACTUAL/365F", "A365", "A365F":
		return Actual365Fixed, true
	case "ACT/ACT", "ACTUAL/ACTUAL", "ACT/ACTISDA", "ACTUAL/ACTUALISDA":
		return ActualActualISDA, true
	case "BUS/252", "BUSINESS/252":
		return Business252, true
	case "SIMPLE":
		return Simple, true
	case "30/360", "30U/360", "30/360BB", "30/360BONDBASIS":
		return Thirty360, true
	case "30E/360", "30E/360EUROBONDBASIS":
		return Thirty360E, true
	}
	return 0, false
}
