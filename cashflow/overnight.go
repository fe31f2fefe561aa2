package cashflow

import (
	"fmt"
	"time"

	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/daycount"
	"github.com/meenmo/termstruct/index"
	"github.com/meenmo/termstruct/market"
	"github.com/meenmo/termstruct/schedule"
	"github.com/meenmo/termstruct/utils"
)

// Averaging selects how daily overnight fixings combine into a coupon rate.
type Averaging int

const (
	// Compound is Π(1 + r_i·δ_i) − 1 over the period, divided by τ.
	Compound Averaging = iota
	// SimpleAverage is Σ r_i·δ_i / τ.
	SimpleAverage
)

func (a Averaging) String() string {
	if a == SimpleAverage {
		return "Simple"
	}
	return "Compound"
}

// ParseAveraging accepts "compound" or "simple".
func ParseAveraging(s string) (Averaging, error) {
	switch s {
	case "", "compound", "Compound", "COMPOUND":
		return Compound, nil
	case "simple", "Simple", "SIMPLE":
		return SimpleAverage, nil
	}
	return Compound, fmt.Errorf("ParseAveraging: %q: %w", s, market.ErrInvalidConvention)
}

// OvernightParams describes an overnight-indexed coupon.
type OvernightParams struct {
	PaymentDate time.Time
	Nominal     float64
	Start       time.Time
	End         time.Time
	Index       *index.Index
	Gearing     float64 // zero means 1
	Spread      float64
	RefStart    time.Time
	RefEnd      time.Time
	DayCounter  *daycount.DayCounter // nil means the index day counter
	Averaging   Averaging
	// Telescopic forecasts the future part of a compounded period from two discount
	// factors instead of one forward per day.
	Telescopic bool
}

// OvernightIndexedCoupon accrues the daily fixings of an overnight index over its
// value dates, the business days of the index calendar in the accrual period.
type OvernightIndexedCoupon struct {
	couponBase
	ctx         market.EvaluationContext
	index       *index.Index
	gearing     float64
	spread      float64
	averaging   Averaging
	telescopic  bool
	valueDates  []time.Time
	fixingDates []time.Time
	dt          []float64
}

// NewOvernightIndexedCoupon builds the value-date grid of the coupon.
func NewOvernightIndexedCoupon(ctx market.EvaluationContext, p OvernightParams) (*OvernightIndexedCoupon, error) {
	if p.Index == nil || !p.Index.IsOvernight() {
		return nil, fmt.Errorf("NewOvernightIndexedCoupon: overnight index required: %w", market.ErrInvalidConvention)
	}
	dc := p.Index.DayCounter()
	if p.DayCounter != nil {
		dc = *p.DayCounter
	}
	base, err := newCouponBase(p.PaymentDate, p.Nominal, p.Start, p.End, p.RefStart, p.RefEnd, dc)
	if err != nil {
		return nil, err
	}
	if !p.End.After(p.Start) {
		return nil, fmt.Errorf("NewOvernightIndexedCoupon: empty period at %s: %w", p.Start.Format(utils.DateLayout), market.ErrInconsistentSchedule)
	}

	sch, err := schedule.New(schedule.Params{
		Effective:             p.Start,
		Termination:           p.End,
		Tenor:                 market.NewPeriod(1, market.Days),
		Calendar:              p.Index.FixingCalendar(),
		Convention:            calendar.Following,
		TerminationConvention: calendar.Following,
		Rule:                  schedule.Forward,
	})
	if err != nil {
		return nil, fmt.Errorf("NewOvernightIndexedCoupon: value dates: %w", err)
	}
	valueDates := sch.Dates()
	n := len(valueDates) - 1
	fixingDates := make([]time.Time, n)
	dt := make([]float64, n)
	idc := p.Index.DayCounter()
	for i := 0; i < n; i++ {
		fixingDates[i] = p.Index.FixingDate(valueDates[i])
		dt[i] = idc.YearFraction(valueDates[i], valueDates[i+1])
	}

	g := p.Gearing
	if g == 0 {
		g = 1
	}
	return &OvernightIndexedCoupon{
		couponBase:  base,
		ctx:         ctx,
		index:       p.Index,
		gearing:     g,
		spread:      p.Spread,
		averaging:   p.Averaging,
		telescopic:  p.Telescopic,
		valueDates:  valueDates,
		fixingDates: fixingDates,
		dt:          dt,
	}, nil
}

func (c *OvernightIndexedCoupon) Index() *index.Index  { return c.index }
func (c *OvernightIndexedCoupon) Gearing() float64     { return c.gearing }
func (c *OvernightIndexedCoupon) Spread() float64      { return c.spread }
func (c *OvernightIndexedCoupon) Averaging() Averaging { return c.averaging }
func (c *OvernightIndexedCoupon) IsTelescopic() bool   { return c.telescopic }

func (c *OvernightIndexedCoupon) ValueDates() []time.Time {
	return append([]time.Time(nil), c.valueDates...)
}
func (c *OvernightIndexedCoupon) FixingDates() []time.Time {
	return append([]time.Time(nil), c.fixingDates...)
}

// LastValueDate is the end of the last overnight period, which can fall after the
// accrual end when that is not a business day of the index calendar.
func (c *OvernightIndexedCoupon) LastValueDate() time.Time {
	return c.valueDates[len(c.valueDates)-1]
}

// IndexFixings returns the daily fixings: historical up to the evaluation date,
// forecast after it.
func (c *OvernightIndexedCoupon) IndexFixings() ([]float64, error) {
	out := make([]float64, len(c.fixingDates))
	for i := range c.fixingDates {
		r, err := c.fixing(i)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// fixing is the rate for the i-th overnight period. Forecasts read the curve over the
// value-date pair directly.
func (c *OvernightIndexedCoupon) fixing(i int) (float64, error) {
	var (
		r   float64
		err error
	)
	if c.fixingDates[i].After(c.ctx.Today()) {
		r, err = c.index.ForecastBetween(c.valueDates[i], c.valueDates[i+1])
	} else {
		r, err = c.index.Fixing(c.ctx, c.fixingDates[i])
	}
	if err != nil {
		return 0, fmt.Errorf("OvernightIndexedCoupon %s: %w", c.paymentDate.Format(utils.DateLayout), err)
	}
	return r, nil
}

// growth is Π(1 + r_i·δ_i) over the coupon. In telescopic mode the forecast tail is
// D(first forecast value date)/D(last value date).
func (c *OvernightIndexedCoupon) growth() (float64, error) {
	n := len(c.fixingDates)
	today := c.ctx.Today()
	factor := 1.0
	for i := 0; i < n; i++ {
		if c.telescopic && c.fixingDates[i].After(today) {
			return c.telescope(factor, i)
		}
		r, err := c.fixing(i)
		if err != nil {
			return 0, err
		}
		factor *= 1 + r*c.dt[i]
	}
	return factor, nil
}

func (c *OvernightIndexedCoupon) telescope(factor float64, k int) (float64, error) {
	h := c.index.Handle()
	dfStart, err := h.DF(c.valueDates[k])
	if err != nil {
		return 0, fmt.Errorf("OvernightIndexedCoupon %s: %w", c.paymentDate.Format(utils.DateLayout), err)
	}
	dfEnd, err := h.DF(c.LastValueDate())
	if err != nil {
		return 0, fmt.Errorf("OvernightIndexedCoupon %s: %w", c.paymentDate.Format(utils.DateLayout), err)
	}
	return factor * dfStart / dfEnd, nil
}

// AverageRate is the compounded or averaged overnight rate before gearing and spread.
func (c *OvernightIndexedCoupon) AverageRate() (float64, error) {
	tau := c.index.DayCounter().YearFraction(c.valueDates[0], c.LastValueDate())
	if c.averaging == SimpleAverage {
		fixings, err := c.IndexFixings()
		if err != nil {
			return 0, err
		}
		sum := 0.0
		for i, r := range fixings {
			sum += r * c.dt[i]
		}
		return sum / tau, nil
	}
	g, err := c.growth()
	if err != nil {
		return 0, err
	}
	return (g - 1) / tau, nil
}

// Rate is g·average rate + spread.
func (c *OvernightIndexedCoupon) Rate() (float64, error) {
	r, err := c.AverageRate()
	if err != nil {
		return 0, err
	}
	return c.gearing*r + c.spread, nil
}

func (c *OvernightIndexedCoupon) Amount() (float64, error) {
	r, err := c.Rate()
	if err != nil {
		return 0, err
	}
	return c.nominal * c.AccrualPeriod() * r, nil
}

func (c *OvernightIndexedCoupon) AccruedAmount(d time.Time) (float64, error) {
	r, err := c.Rate()
	if err != nil {
		return 0, err
	}
	return c.nominal * c.AccruedPeriod(d) * r, nil
}

func (c *OvernightIndexedCoupon) Accept(v Visitor) {
	if ov, ok := v.(OvernightIndexedCouponVisitor); ok {
		ov.VisitOvernightIndexedCoupon(c)
		return
	}
	acceptCoupon(c, v)
}
