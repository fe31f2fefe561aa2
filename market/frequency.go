package market

import (
	"fmt"
	"strings"
)

// Frequency is the number of payments or compounding periods per year.
type Frequency int

const (
	NoFrequency      Frequency = -1
	Once             Frequency = 0
	Annual           Frequency = 1
	Semiannual       Frequency = 2
	EveryFourthMonth Frequency = 3
	Quarterly        Frequency = 4
	Bimonthly        Frequency = 6
	Monthly          Frequency = 12
	EveryFourthWeek  Frequency = 13
	Biweekly         Frequency = 26
	Weekly           Frequency = 52
	Daily            Frequency = 365
)

var frequencyNames = map[Frequency]string{
	NoFrequency:      "NO_FREQUENCY",
	Once:             "ONCE",
	Annual:           "ANNUAL",
	Semiannual:       "SEMIANNUAL",
	EveryFourthMonth: "EVERY_FOURTH_MONTH",
	Quarterly:        "QUARTERLY",
	Bimonthly:        "BIMONTHLY",
	Monthly:          "MONTHLY",
	EveryFourthWeek:  "EVERY_FOURTH_WEEK",
	Biweekly:         "BIWEEKLY",
	Weekly:           "WEEKLY",
	Daily:            "DAILY",
}

func (f Frequency) String() string {
	if s, ok := frequencyNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Frequency(%d)", int(f))
}

// Period returns the coupon tenor for f. Once maps to a zero period, meaning a single
// period spanning the whole schedule.
func (f Frequency) Period() (Period, error) {
	switch f {
	case Once:
		return Period{N: 0, Unit: Days}, nil
	case Annual:
		return Period{N: 1, Unit: Years}, nil
	case Semiannual, EveryFourthMonth, Quarterly, Bimonthly, Monthly:
		return Period{N: 12 / int(f), Unit: Months}, nil
	case EveryFourthWeek:
		return Period{N: 4, Unit: Weeks}, nil
	case Biweekly:
		return Period{N: 2, Unit: Weeks}, nil
	case Weekly:
		return Period{N: 1, Unit: Weeks}, nil
	case Daily:
		return Period{N: 1, Unit: Days}, nil
	default:
		return Period{}, fmt.Errorf("Frequency.Period: no tenor for %s: %w", f, ErrInvalidConvention)
	}
}

// IsCompounding reports whether f can drive periodic compounding.
func (f Frequency) IsCompounding() bool {
	return f > 0
}

// ParseFrequency accepts names like "Annual", "SEMIANNUAL", "Once" or "quarterly".
func ParseFrequency(s string) (Frequency, error) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
	switch key {
	case "SEMI", "SEMI_ANNUAL":
		return Semiannual, nil
	case "NONE":
		return NoFrequency, nil
	}
	for f, name := range frequencyNames {
		if name == key {
			return f, nil
		}
	}
	return NoFrequency, fmt.Errorf("ParseFrequency: unknown frequency %q: %w", s, ErrInvalidConvention)
}
