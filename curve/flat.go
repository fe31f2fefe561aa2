package curve

import (
	"math"
	"time"

	"github.com/meenmo/termstruct/daycount"
)

// FlatForward discounts at a constant continuously compounded rate. It answers every
// date, so MaxDate is far in the future.
type FlatForward struct {
	referenceDate time.Time
	rate          float64
	dc            daycount.DayCounter
}

// NewFlatForward returns a flat curve.
func NewFlatForward(referenceDate time.Time, rate float64, dc daycount.DayCounter) *FlatForward {
	return &FlatForward{referenceDate: referenceDate, rate: rate, dc: dc}
}

func (f *FlatForward) ReferenceDate() time.Time { return f.referenceDate }

func (f *FlatForward) MaxDate() time.Time { return f.referenceDate.AddDate(200, 0, 0) }

func (f *FlatForward) DF(t time.Time) (float64, error) {
	return math.Exp(-f.rate * f.dc.YearFraction(f.referenceDate, t)), nil
}
