// Package cashflow models fixed, IBOR and overnight-indexed coupons, the legs built from
// them and their present value against a discount curve.
package cashflow

import (
	"fmt"
	"sort"
	"time"

	"github.com/meenmo/termstruct/daycount"
	"github.com/meenmo/termstruct/market"
	"github.com/meenmo/termstruct/utils"
)

// Cashflow is a dated amount.
type Cashflow interface {
	Date() time.Time
	Amount() (float64, error)
	Accept(v Visitor)
}

// Coupon is a cashflow accruing interest over a period.
type Coupon interface {
	Cashflow
	Nominal() float64
	AccrualStartDate() time.Time
	AccrualEndDate() time.Time
	ReferencePeriodStart() time.Time
	ReferencePeriodEnd() time.Time
	DayCounter() daycount.DayCounter
	AccrualPeriod() float64
	AccrualDays() int
	AccruedPeriod(d time.Time) float64
	AccruedDays(d time.Time) int
	AccruedAmount(d time.Time) (float64, error)
	Rate() (float64, error)
}

// SimpleCashflow is a fixed amount paid on a date, e.g. a notional exchange.
type SimpleCashflow struct {
	date   time.Time
	amount float64
}

// NewSimpleCashflow returns a redemption-style flow.
func NewSimpleCashflow(date time.Time, amount float64) *SimpleCashflow {
	return &SimpleCashflow{date: date, amount: amount}
}

func (c *SimpleCashflow) Date() time.Time          { return c.date }
func (c *SimpleCashflow) Amount() (float64, error) { return c.amount, nil }

func (c *SimpleCashflow) Accept(v Visitor) {
	if cv, ok := v.(CashflowVisitor); ok {
		cv.VisitCashflow(c)
	}
}

// Leg is a sequence of cashflows ordered by date.
type Leg []Cashflow

// Sort orders the leg by payment date, keeping the order of equal dates.
func (l Leg) Sort() {
	sort.SliceStable(l, func(i, j int) bool { return l[i].Date().Before(l[j].Date()) })
}

// StartDate is the earliest accrual start, or the first payment date for legs without
// coupons.
func (l Leg) StartDate() time.Time {
	var start time.Time
	for _, cf := range l {
		d := cf.Date()
		if c, ok := cf.(Coupon); ok {
			d = c.AccrualStartDate()
		}
		if start.IsZero() || d.Before(start) {
			start = d
		}
	}
	return start
}

// MaturityDate is the latest of accrual ends and payment dates.
func (l Leg) MaturityDate() time.Time {
	var end time.Time
	for _, cf := range l {
		d := cf.Date()
		if c, ok := cf.(Coupon); ok && c.AccrualEndDate().After(d) {
			d = c.AccrualEndDate()
		}
		if d.After(end) {
			end = d
		}
	}
	return end
}

// Accept visits every cashflow of the leg.
func (l Leg) Accept(v Visitor) {
	for _, cf := range l {
		cf.Accept(v)
	}
}

// couponBase holds the accrual data shared by every coupon kind.
type couponBase struct {
	paymentDate  time.Time
	nominal      float64
	accrualStart time.Time
	accrualEnd   time.Time
	refStart     time.Time
	refEnd       time.Time
	dc           daycount.DayCounter
}

func newCouponBase(paymentDate time.Time, nominal float64, start, end, refStart, refEnd time.Time, dc daycount.DayCounter) (couponBase, error) {
	if end.Before(start) {
		return couponBase{}, fmt.Errorf("coupon: accrual end %s before start %s: %w",
			end.Format(utils.DateLayout), start.Format(utils.DateLayout), market.ErrInconsistentSchedule)
	}
	if refStart.IsZero() {
		refStart = start
	}
	if refEnd.IsZero() {
		refEnd = end
	}
	return couponBase{
		paymentDate:  paymentDate,
		nominal:      nominal,
		accrualStart: start,
		accrualEnd:   end,
		refStart:     refStart,
		refEnd:       refEnd,
		dc:           dc,
	}, nil
}

func (c *couponBase) Date() time.Time                 { return c.paymentDate }
func (c *couponBase) Nominal() float64                { return c.nominal }
func (c *couponBase) AccrualStartDate() time.Time     { return c.accrualStart }
func (c *couponBase) AccrualEndDate() time.Time       { return c.accrualEnd }
func (c *couponBase) ReferencePeriodStart() time.Time { return c.refStart }
func (c *couponBase) ReferencePeriodEnd() time.Time   { return c.refEnd }
func (c *couponBase) DayCounter() daycount.DayCounter { return c.dc }

func (c *couponBase) AccrualPeriod() float64 {
	return c.dc.YearFraction(c.accrualStart, c.accrualEnd)
}

func (c *couponBase) AccrualDays() int {
	return c.dc.DayCount(c.accrualStart, c.accrualEnd)
}

// clamp moves d into [accrual start, accrual end].
func (c *couponBase) clamp(d time.Time) time.Time {
	if d.Before(c.accrualStart) {
		return c.accrualStart
	}
	if d.After(c.accrualEnd) {
		return c.accrualEnd
	}
	return d
}

func (c *couponBase) AccruedPeriod(d time.Time) float64 {
	return c.dc.YearFraction(c.accrualStart, c.clamp(d))
}

func (c *couponBase) AccruedDays(d time.Time) int {
	return c.dc.DayCount(c.accrualStart, c.clamp(d))
}
