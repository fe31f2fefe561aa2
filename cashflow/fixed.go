package cashflow

import (
	"fmt"
	"time"
)

// FixedRateCoupon accrues a fixed InterestRate; its day counter is the rate's.
type FixedRateCoupon struct {
	couponBase
	rate InterestRate
}

// NewFixedRateCoupon returns a fixed coupon. Reference dates may be zero, in which
// case the accrual dates are used.
func NewFixedRateCoupon(paymentDate time.Time, nominal float64, rate InterestRate, start, end, refStart, refEnd time.Time) (*FixedRateCoupon, error) {
	if err := rate.validate(); err != nil {
		return nil, fmt.Errorf("NewFixedRateCoupon: %w", err)
	}
	base, err := newCouponBase(paymentDate, nominal, start, end, refStart, refEnd, rate.DayCounter)
	if err != nil {
		return nil, err
	}
	return &FixedRateCoupon{couponBase: base, rate: rate}, nil
}

// InterestRate returns the coupon rate with its conventions.
func (c *FixedRateCoupon) InterestRate() InterestRate { return c.rate }

func (c *FixedRateCoupon) Rate() (float64, error) { return c.rate.Rate, nil }

// Amount is N·(compound factor over the accrual period − 1), i.e. N·r·τ when simple.
func (c *FixedRateCoupon) Amount() (float64, error) {
	return c.nominal * (c.rate.CompoundFactor(c.accrualStart, c.accrualEnd) - 1), nil
}

// AccruedAmount is the amount earned from the accrual start to d, with d clamped into
// the accrual period.
func (c *FixedRateCoupon) AccruedAmount(d time.Time) (float64, error) {
	return c.nominal * (c.rate.CompoundFactor(c.accrualStart, c.clamp(d)) - 1), nil
}

func (c *FixedRateCoupon) Accept(v Visitor) {
	if fv, ok := v.(FixedRateCouponVisitor); ok {
		fv.VisitFixedRateCoupon(c)
		return
	}
	acceptCoupon(c, v)
}
