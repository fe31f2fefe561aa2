package cashflow

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/termstruct/market"
)

// MinorUnitFlow is a cashflow amount rounded to the currency's minor units, the form
// settlement feeds store coupons in (cents for USD and EUR, places = 0 for CLP).
type MinorUnitFlow struct {
	Date   time.Time
	Units  int64
	Amount decimal.Decimal
}

// String prints the amount with exactly places decimals.
func (f MinorUnitFlow) String(places int32) string {
	return f.Amount.StringFixed(places)
}

// ToMinorUnits rounds each amount half away from zero to places decimals.
func ToMinorUnits(leg Leg, places int32) ([]MinorUnitFlow, error) {
	if places < 0 {
		return nil, fmt.Errorf("ToMinorUnits: negative places %d: %w", places, market.ErrInvalidConvention)
	}
	out := make([]MinorUnitFlow, 0, len(leg))
	for _, cf := range leg {
		a, err := cf.Amount()
		if err != nil {
			return nil, fmt.Errorf("ToMinorUnits: %w", err)
		}
		d := decimal.NewFromFloat(a).Round(places)
		out = append(out, MinorUnitFlow{
			Date:   cf.Date(),
			Units:  d.Shift(places).IntPart(),
			Amount: d,
		})
	}
	return out, nil
}

// FromMinorUnits turns integer minor units back into a cashflow.
func FromMinorUnits(date time.Time, units int64, places int32) *SimpleCashflow {
	amount, _ := decimal.New(units, -places).Float64()
	return NewSimpleCashflow(date, amount)
}
