package cashflow

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/meenmo/termstruct/daycount"
	"github.com/meenmo/termstruct/market"
)

// Compounding is the convention turning a rate into a growth factor.
type Compounding int

const (
	Simple Compounding = iota
	Compounded
	Continuous
	// SimpleThenCompounded is simple up to one compounding period, compounded beyond.
	SimpleThenCompounded
	// CompoundedThenSimple is compounded up to one period, simple beyond.
	CompoundedThenSimple
)

var compoundingNames = map[Compounding]string{
	Simple:               "Simple",
	Compounded:           "Compounded",
	Continuous:           "Continuous",
	SimpleThenCompounded: "SimpleThenCompounded",
	CompoundedThenSimple: "CompoundedThenSimple",
}

func (c Compounding) String() string {
	if s, ok := compoundingNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Compounding(%d)", int(c))
}

// ParseCompounding accepts the names above in any case.
func ParseCompounding(s string) (Compounding, error) {
	for c, name := range compoundingNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return Simple, fmt.Errorf("ParseCompounding: %q: %w", s, market.ErrInvalidConvention)
}

func (c Compounding) needsFrequency() bool {
	return c == Compounded || c == SimpleThenCompounded || c == CompoundedThenSimple
}

// InterestRate is a rate with the conventions needed to turn it into accrual.
type InterestRate struct {
	Rate        float64
	DayCounter  daycount.DayCounter
	Compounding Compounding
	Frequency   market.Frequency
}

// NewInterestRate validates that compounded conventions carry a real frequency.
func NewInterestRate(rate float64, dc daycount.DayCounter, comp Compounding, freq market.Frequency) (InterestRate, error) {
	r := InterestRate{Rate: rate, DayCounter: dc, Compounding: comp, Frequency: freq}
	if err := r.validate(); err != nil {
		return InterestRate{}, fmt.Errorf("NewInterestRate: %w", err)
	}
	return r, nil
}

// validate rejects compounded conventions without a compounding frequency and unknown
// compounding values.
func (r InterestRate) validate() error {
	if _, ok := compoundingNames[r.Compounding]; !ok {
		return fmt.Errorf("unknown compounding %s: %w", r.Compounding, market.ErrInvalidConvention)
	}
	if r.Compounding.needsFrequency() && !r.Frequency.IsCompounding() {
		return fmt.Errorf("%s compounding needs a frequency, got %s: %w", r.Compounding, r.Frequency, market.ErrInvalidConvention)
	}
	return nil
}

// MustInterestRate panics on invalid conventions.
func MustInterestRate(rate float64, dc daycount.DayCounter, comp Compounding, freq market.Frequency) InterestRate {
	r, err := NewInterestRate(rate, dc, comp, freq)
	if err != nil {
		panic(err)
	}
	return r
}

// CompoundFactorT is the growth factor over t years.
func (r InterestRate) CompoundFactorT(t float64) float64 {
	f := float64(r.Frequency)
	compounded := func() float64 { return math.Pow(1+r.Rate/f, f*t) }
	switch r.Compounding {
	case Compounded:
		return compounded()
	case Continuous:
		return math.Exp(r.Rate * t)
	case SimpleThenCompounded:
		if t <= 1/f {
			return 1 + r.Rate*t
		}
		return compounded()
	case CompoundedThenSimple:
		if t <= 1/f {
			return compounded()
		}
		return 1 + r.Rate*t
	default:
		return 1 + r.Rate*t
	}
}

// CompoundFactor is the growth factor between two dates on the rate's day counter.
func (r InterestRate) CompoundFactor(d1, d2 time.Time) float64 {
	return r.CompoundFactorT(r.DayCounter.YearFraction(d1, d2))
}

// DiscountFactor is 1/CompoundFactor.
func (r InterestRate) DiscountFactor(d1, d2 time.Time) float64 {
	return 1 / r.CompoundFactor(d1, d2)
}

// ImpliedRate inverts CompoundFactorT: the rate that grows 1 into factor over t years.
func ImpliedRate(factor float64, dc daycount.DayCounter, comp Compounding, freq market.Frequency, t float64) (InterestRate, error) {
	if factor <= 0 {
		return InterestRate{}, fmt.Errorf("ImpliedRate: non-positive compound factor %g", factor)
	}
	if comp.needsFrequency() && !freq.IsCompounding() {
		return InterestRate{}, fmt.Errorf("ImpliedRate: %s compounding needs a frequency, got %s: %w", comp, freq, market.ErrInvalidConvention)
	}
	if factor == 1 {
		return InterestRate{Rate: 0, DayCounter: dc, Compounding: comp, Frequency: freq}, nil
	}
	if t <= 0 {
		return InterestRate{}, fmt.Errorf("ImpliedRate: non-positive time %g: %w", t, market.ErrInconsistentSchedule)
	}

	f := float64(freq)
	simple := func() float64 { return (factor - 1) / t }
	compounded := func() float64 { return (math.Pow(factor, 1/(f*t)) - 1) * f }
	var rate float64
	switch comp {
	case Compounded:
		rate = compounded()
	case Continuous:
		rate = math.Log(factor) / t
	case SimpleThenCompounded:
		if t <= 1/f {
			rate = simple()
		} else {
			rate = compounded()
		}
	case CompoundedThenSimple:
		if t <= 1/f {
			rate = compounded()
		} else {
			rate = simple()
		}
	default:
		rate = simple()
	}
	return InterestRate{Rate: rate, DayCounter: dc, Compounding: comp, Frequency: freq}, nil
}

// ImpliedRateBetween measures t between two dates on dc.
func ImpliedRateBetween(factor float64, dc daycount.DayCounter, comp Compounding, freq market.Frequency, d1, d2 time.Time) (InterestRate, error) {
	return ImpliedRate(factor, dc, comp, freq, dc.YearFraction(d1, d2))
}

// EquivalentRate re-expresses r under other conventions over the period [d1, d2].
func (r InterestRate) EquivalentRate(dc daycount.DayCounter, comp Compounding, freq market.Frequency, d1, d2 time.Time) (InterestRate, error) {
	return ImpliedRateBetween(r.CompoundFactor(d1, d2), dc, comp, freq, d1, d2)
}

func (r InterestRate) String() string {
	s := fmt.Sprintf("%.6f%% %s %s", r.Rate*100, r.DayCounter.Name(), r.Compounding)
	if r.Compounding.needsFrequency() {
		s += " " + r.Frequency.String()
	}
	return s
}
