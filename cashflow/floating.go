package cashflow

import (
	"fmt"
	"time"

	"github.com/meenmo/termstruct/daycount"
	"github.com/meenmo/termstruct/index"
	"github.com/meenmo/termstruct/market"
)

// FloatingRateParams describes an IBOR-style coupon.
type FloatingRateParams struct {
	PaymentDate time.Time
	Nominal     float64
	Start       time.Time
	End         time.Time
	FixingDays  int
	Index       *index.Index
	Gearing     float64 // zero means 1
	Spread      float64
	RefStart    time.Time
	RefEnd      time.Time
	DayCounter  *daycount.DayCounter // nil means the index day counter
	InArrears   bool
}

// FloatingRateCoupon pays N·τ·(g·(fixing + convexity) + spread).
type FloatingRateCoupon struct {
	couponBase
	ctx        market.EvaluationContext
	index      *index.Index
	fixingDays int
	gearing    float64
	spread     float64
	inArrears  bool
}

// NewFloatingRateCoupon builds the coupon; the evaluation context decides between
// historical and forecast fixings.
func NewFloatingRateCoupon(ctx market.EvaluationContext, p FloatingRateParams) (*FloatingRateCoupon, error) {
	if p.Index == nil {
		return nil, fmt.Errorf("NewFloatingRateCoupon: nil index: %w", market.ErrInvalidConvention)
	}
	dc := p.Index.DayCounter()
	if p.DayCounter != nil {
		dc = *p.DayCounter
	}
	base, err := newCouponBase(p.PaymentDate, p.Nominal, p.Start, p.End, p.RefStart, p.RefEnd, dc)
	if err != nil {
		return nil, err
	}
	g := p.Gearing
	if g == 0 {
		g = 1
	}
	return &FloatingRateCoupon{
		couponBase: base,
		ctx:        ctx,
		index:      p.Index,
		fixingDays: p.FixingDays,
		gearing:    g,
		spread:     p.Spread,
		inArrears:  p.InArrears,
	}, nil
}

func (c *FloatingRateCoupon) Index() *index.Index { return c.index }
func (c *FloatingRateCoupon) FixingDays() int     { return c.fixingDays }
func (c *FloatingRateCoupon) Gearing() float64    { return c.gearing }
func (c *FloatingRateCoupon) Spread() float64     { return c.spread }
func (c *FloatingRateCoupon) IsInArrears() bool   { return c.inArrears }

// FixingDate is fixingDays business days of the index calendar before the accrual
// start, or before the accrual end when fixed in arrears.
func (c *FloatingRateCoupon) FixingDate() time.Time {
	boundary := c.accrualStart
	if c.inArrears {
		boundary = c.accrualEnd
	}
	return c.index.FixingCalendar().Advance(boundary, market.NewPeriod(-c.fixingDays, market.Days), c.index.Convention(), false)
}

// IndexFixing is the historical fixing when the fixing date is on or before the
// evaluation date, the curve forecast otherwise.
func (c *FloatingRateCoupon) IndexFixing() (float64, error) {
	r, err := c.index.Fixing(c.ctx, c.FixingDate())
	if err != nil {
		return 0, fmt.Errorf("FloatingRateCoupon %s: %w", c.paymentDate.Format("2006-01-02"), err)
	}
	return r, nil
}

// ConvexityAdjustment is zero for historical fixings.
func (c *FloatingRateCoupon) ConvexityAdjustment() (float64, error) {
	fixingDate := c.FixingDate()
	if !fixingDate.After(c.ctx.Today()) {
		return 0, nil
	}
	fwd, err := c.IndexFixing()
	if err != nil {
		return 0, err
	}
	axis := daycount.New(daycount.Actual365Fixed)
	end := c.index.MaturityDate(c.index.ValueDate(fixingDate))
	return c.index.Convexity().Adjustment(fwd, axis.YearFraction(c.ctx.Today(), fixingDate), axis.YearFraction(c.ctx.Today(), end)), nil
}

// AdjustedFixing is the index fixing plus its convexity adjustment.
func (c *FloatingRateCoupon) AdjustedFixing() (float64, error) {
	fixing, err := c.IndexFixing()
	if err != nil {
		return 0, err
	}
	adj, err := c.ConvexityAdjustment()
	if err != nil {
		return 0, err
	}
	return fixing + adj, nil
}

// Rate is g·adjusted fixing + spread.
func (c *FloatingRateCoupon) Rate() (float64, error) {
	f, err := c.AdjustedFixing()
	if err != nil {
		return 0, err
	}
	return c.gearing*f + c.spread, nil
}

func (c *FloatingRateCoupon) Amount() (float64, error) {
	r, err := c.Rate()
	if err != nil {
		return 0, err
	}
	return c.nominal * c.AccrualPeriod() * r, nil
}

func (c *FloatingRateCoupon) AccruedAmount(d time.Time) (float64, error) {
	r, err := c.Rate()
	if err != nil {
		return 0, err
	}
	return c.nominal * c.AccruedPeriod(d) * r, nil
}

func (c *FloatingRateCoupon) Accept(v Visitor) {
	if fv, ok := v.(FloatingRateCouponVisitor); ok {
		fv.VisitFloatingRateCoupon(c)
		return
	}
	acceptCoupon(c, v)
}
