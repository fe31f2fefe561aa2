package cashflow

import (
	"fmt"
	"time"

	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/daycount"
	"github.com/meenmo/termstruct/index"
	"github.com/meenmo/termstruct/market"
	"github.com/meenmo/termstruct/schedule"
)

// Payment describes how accrual end dates become payment dates. The zero Calendar
// means the schedule calendar.
type Payment struct {
	Calendar   calendar.Calendar
	Convention calendar.BusinessDayConvention
	Lag        int
}

func (p Payment) date(s *schedule.Schedule, accrualEnd time.Time) time.Time {
	cal := p.Calendar
	if len(cal.IDs()) == 0 {
		cal = s.Calendar()
	}
	return cal.Advance(accrualEnd, market.NewPeriod(p.Lag, market.Days), p.Convention, false)
}

// FixedRateLegParams builds a leg of fixed-rate coupons. Rates takes precedence;
// otherwise CouponRates are combined with DayCounter, Compounding and Frequency.
type FixedRateLegParams struct {
	Schedule    *schedule.Schedule
	Notionals   []float64
	Rates       []InterestRate
	CouponRates []float64
	DayCounter  daycount.DayCounter
	Compounding Compounding
	Frequency   market.Frequency
	Payment     Payment
}

// FixedRateLeg returns one coupon per schedule period. When fewer notionals or rates
// than periods are given, the last one repeats.
func FixedRateLeg(p FixedRateLegParams) (Leg, error) {
	if err := checkLegInputs("FixedRateLeg", p.Schedule, p.Notionals); err != nil {
		return nil, err
	}
	rates := p.Rates
	for i, r := range rates {
		if err := r.validate(); err != nil {
			return nil, fmt.Errorf("FixedRateLeg: rate %d: %w", i, err)
		}
	}
	if len(rates) == 0 {
		if len(p.CouponRates) == 0 {
			return nil, fmt.Errorf("FixedRateLeg: no coupon rates: %w", market.ErrInvalidConvention)
		}
		rates = make([]InterestRate, len(p.CouponRates))
		for i, r := range p.CouponRates {
			ir, err := NewInterestRate(r, p.DayCounter, p.Compounding, p.Frequency)
			if err != nil {
				return nil, fmt.Errorf("FixedRateLeg: %w", err)
			}
			rates[i] = ir
		}
	}

	periods := p.Schedule.Periods()
	leg := make(Leg, 0, len(periods))
	for i, per := range periods {
		c, err := NewFixedRateCoupon(
			p.Payment.date(p.Schedule, per.End),
			at(p.Notionals, i),
			rates[min(i, len(rates)-1)],
			per.Start, per.End, per.Start, per.End,
		)
		if err != nil {
			return nil, fmt.Errorf("FixedRateLeg: period %d: %w", i, err)
		}
		leg = append(leg, c)
	}
	return leg, nil
}

// IborLegParams builds a leg of IBOR-style floating coupons.
type IborLegParams struct {
	Schedule   *schedule.Schedule
	Index      *index.Index
	Notionals  []float64
	Gearings   []float64
	Spreads    []float64
	FixingDays *int                 // nil means the index fixing days
	DayCounter *daycount.DayCounter // nil means the index day counter
	InArrears  bool
	Payment    Payment
}

// IborLeg returns one floating coupon per schedule period.
func IborLeg(ctx market.EvaluationContext, p IborLegParams) (Leg, error) {
	if err := checkLegInputs("IborLeg", p.Schedule, p.Notionals); err != nil {
		return nil, err
	}
	if p.Index == nil {
		return nil, fmt.Errorf("IborLeg: nil index: %w", market.ErrInvalidConvention)
	}
	fixingDays := p.Index.FixingDays()
	if p.FixingDays != nil {
		fixingDays = *p.FixingDays
	}

	periods := p.Schedule.Periods()
	leg := make(Leg, 0, len(periods))
	for i, per := range periods {
		c, err := NewFloatingRateCoupon(ctx, FloatingRateParams{
			PaymentDate: p.Payment.date(p.Schedule, per.End),
			Nominal:     at(p.Notionals, i),
			Start:       per.Start,
			End:         per.End,
			FixingDays:  fixingDays,
			Index:       p.Index,
			Gearing:     atOr(p.Gearings, i, 1),
			Spread:      atOr(p.Spreads, i, 0),
			DayCounter:  p.DayCounter,
			InArrears:   p.InArrears,
		})
		if err != nil {
			return nil, fmt.Errorf("IborLeg: period %d: %w", i, err)
		}
		leg = append(leg, c)
	}
	return leg, nil
}

// OvernightLegParams builds a leg of overnight-indexed coupons.
type OvernightLegParams struct {
	Schedule   *schedule.Schedule
	Index      *index.Index
	Notionals  []float64
	Gearings   []float64
	Spreads    []float64
	DayCounter *daycount.DayCounter
	Averaging  Averaging
	Telescopic bool
	Payment    Payment
}

// OvernightLeg returns one overnight-indexed coupon per schedule period.
func OvernightLeg(ctx market.EvaluationContext, p OvernightLegParams) (Leg, error) {
	if err := checkLegInputs("OvernightLeg", p.Schedule, p.Notionals); err != nil {
		return nil, err
	}
	periods := p.Schedule.Periods()
	leg := make(Leg, 0, len(periods))
	for i, per := range periods {
		c, err := NewOvernightIndexedCoupon(ctx, OvernightParams{
			PaymentDate: p.Payment.date(p.Schedule, per.End),
			Nominal:     at(p.Notionals, i),
			Start:       per.Start,
			End:         per.End,
			Index:       p.Index,
			Gearing:     atOr(p.Gearings, i, 1),
			Spread:      atOr(p.Spreads, i, 0),
			DayCounter:  p.DayCounter,
			Averaging:   p.Averaging,
			Telescopic:  p.Telescopic,
		})
		if err != nil {
			return nil, fmt.Errorf("OvernightLeg: period %d: %w", i, err)
		}
		leg = append(leg, c)
	}
	return leg, nil
}

func checkLegInputs(fn string, s *schedule.Schedule, notionals []float64) error {
	if s == nil {
		return fmt.Errorf("%s: nil schedule: %w", fn, market.ErrInconsistentSchedule)
	}
	if len(notionals) == 0 {
		return fmt.Errorf("%s: no notionals: %w", fn, market.ErrInconsistentSchedule)
	}
	return nil
}

// at returns xs[i], repeating the last element past the end.
func at(xs []float64, i int) float64 {
	return xs[min(i, len(xs)-1)]
}

func atOr(xs []float64, i int, def float64) float64 {
	if len(xs) == 0 {
		return def
	}
	return at(xs, i)
}
