package market

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/meenmo/termstruct/utils"
)

// TimeUnit is the unit of a Period.
type TimeUnit int

const (
	Days TimeUnit = iota
	Weeks
	Months
	Years
)

func (u TimeUnit) String() string {
	switch u {
	case Days:
		return "D"
	case Weeks:
		return "W"
	case Months:
		return "M"
	case Years:
		return "Y"
	default:
		return fmt.Sprintf("TimeUnit(%d)", int(u))
	}
}

// Period is a signed count of a time unit, used for tenors and offsets.
type Period struct {
	N    int
	Unit TimeUnit
}

// NewPeriod returns n units.
func NewPeriod(n int, unit TimeUnit) Period {
	return Period{N: n, Unit: unit}
}

func (p Period) String() string {
	return strconv.Itoa(p.N) + p.Unit.String()
}

// IsZero reports whether the period has zero length.
func (p Period) IsZero() bool {
	return p.N == 0
}

// Negate returns the period with the opposite sign.
func (p Period) Negate() Period {
	return Period{N: -p.N, Unit: p.Unit}
}

// Normalized folds weeks into days and years into months.
func (p Period) Normalized() Period {
	switch p.Unit {
	case Weeks:
		return Period{N: 7 * p.N, Unit: Days}
	case Years:
		return Period{N: 12 * p.N, Unit: Months}
	default:
		return p
	}
}

// Years returns an approximate length in years.
func (p Period) Years() float64 {
	switch p.Unit {
	case Days:
		return float64(p.N) / 365.0
	case Weeks:
		return float64(p.N) * 7.0 / 365.0
	case Months:
		return float64(p.N) / 12.0
	default:
		return float64(p.N)
	}
}

// AddTo applies the period to t without business-day adjustment.
// Months and years follow EDATE semantics (Jan 31 + 1M is the last day of February).
func (p Period) AddTo(t time.Time) time.Time {
	switch p.Unit {
	case Days:
		return t.AddDate(0, 0, p.N)
	case Weeks:
		return t.AddDate(0, 0, 7*p.N)
	case Months:
		return utils.AddMonth(t, p.N)
	default:
		return utils.AddMonth(t, 12*p.N)
	}
}

// Compare orders two periods. Periods in the same unit family (days/weeks or
// months/years) compare exactly; across families the day ranges of the month-based side
// are used, falling back to average month lengths when the ranges overlap.
func (p Period) Compare(q Period) int {
	a, b := p.Normalized(), q.Normalized()
	if a.Unit == b.Unit {
		return compareInt(a.N, b.N)
	}
	if a.Unit == Days {
		return -compareDaysToMonths(b.N, a.N)
	}
	return compareDaysToMonths(a.N, b.N)
}

// compareDaysToMonths compares months m against days d.
func compareDaysToMonths(m, d int) int {
	lo, hi := 28*m, 31*m
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi < d {
		return -1
	}
	if lo > d {
		return 1
	}
	avg := float64(m) * 365.25 / 12.0
	switch {
	case avg < float64(d):
		return -1
	case avg > float64(d):
		return 1
	default:
		return 0
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ParsePeriod converts tenor strings like "1W", "3M", "18M", "10Y" or "1Y6M" to a
// Period. Compound tenors are folded into a single unit (months or days).
func ParsePeriod(tenor string) (Period, error) {
	s := strings.TrimSpace(strings.ToUpper(tenor))
	if s == "" {
		return Period{}, fmt.Errorf("ParsePeriod: empty tenor: %w", ErrInvalidConvention)
	}
	sign := 1
	if s[0] == '-' || s[0] == '+' {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}

	var parts []Period
	for len(s) > 0 {
		i := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == 0 || i == len(s) {
			return Period{}, fmt.Errorf("ParsePeriod: malformed tenor %q: %w", tenor, ErrInvalidConvention)
		}
		n, err := strconv.Atoi(s[:i])
		if err != nil {
			return Period{}, fmt.Errorf("ParsePeriod: malformed tenor %q: %w", tenor, ErrInvalidConvention)
		}
		unit, err := parseUnit(s[i])
		if err != nil {
			return Period{}, fmt.Errorf("ParsePeriod: tenor %q: %w", tenor, err)
		}
		parts = append(parts, Period{N: n, Unit: unit})
		s = s[i+1:]
	}

	if len(parts) == 1 {
		p := parts[0]
		p.N *= sign
		return p, nil
	}

	total := parts[0].Normalized()
	for _, p := range parts[1:] {
		np := p.Normalized()
		if np.Unit != total.Unit {
			return Period{}, fmt.Errorf("ParsePeriod: tenor %q mixes days and months: %w", tenor, ErrInvalidConvention)
		}
		total.N += np.N
	}
	total.N *= sign
	return total, nil
}

// MustParsePeriod is ParsePeriod for constant tenors; it panics on error.
func MustParsePeriod(tenor string) Period {
	p, err := ParsePeriod(tenor)
	if err != nil {
		panic(err)
	}
	return p
}

func parseUnit(c byte) (TimeUnit, error) {
	switch c {
	case 'D':
		return Days, nil
	case 'W':
		return Weeks, nil
	case 'M':
		return Months, nil
	case 'Y':
		return Years, nil
	default:
		return 0, fmt.Errorf("unknown time unit %q: %w", string(c), ErrInvalidConvention)
	}
}
