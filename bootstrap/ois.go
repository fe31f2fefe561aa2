package bootstrap

import (
	"fmt"
	"time"

	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/cashflow"
	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/daycount"
	"github.com/meenmo/termstruct/index"
	"github.com/meenmo/termstruct/market"
	"github.com/meenmo/termstruct/quote"
	"github.com/meenmo/termstruct/schedule"
	"github.com/meenmo/termstruct/utils"
)

const basisPoint = 1e-4

// OISParams describes an overnight-index swap quote.
type OISParams struct {
	SettlementDays int
	// Tenor wins over TenorString when both are set.
	Tenor       market.Period
	TenorString string
	FixedRate   quote.Quote
	Index       *index.Index
	// DiscountHandle discounts both legs when linked; otherwise the curve being built does.
	DiscountHandle       *curve.Handle
	TelescopicValueDates bool
	PaymentLag           int
	PaymentConvention    calendar.BusinessDayConvention
	// PaymentFrequency Once (the zero value) pays a single period.
	PaymentFrequency market.Frequency
	// PaymentCalendar defaults to the index fixing calendar.
	PaymentCalendar  calendar.Calendar
	ForwardStart     market.Period
	OvernightSpread  float64
	Pillar           Pillar
	CustomPillarDate time.Time
	Averaging        cashflow.Averaging
	EndOfMonth       bool
	// FixedDayCounter defaults to the index day counter.
	FixedDayCounter *daycount.DayCounter
}

// OISRateHelper calibrates the curve to a par OIS rate.
type OISRateHelper struct {
	helperBase
	ctx          market.EvaluationContext
	tenor        market.Period
	index        *index.Index
	discount     *curve.Handle
	schedule     *schedule.Schedule
	fixedLeg     cashflow.Leg
	overnightLeg cashflow.Leg
}

// NewOISRateHelper generates the swap dates and both legs. Only the evaluation date,
// tenor, calendars and pillar policy decide the dates; the quote is read later.
func NewOISRateHelper(ctx market.EvaluationContext, p OISParams) (*OISRateHelper, error) {
	tenor := p.Tenor
	if tenor.IsZero() && p.TenorString != "" {
		t, err := market.ParsePeriod(p.TenorString)
		if err != nil {
			return nil, fmt.Errorf("NewOISRateHelper: %w", err)
		}
		tenor = t
	}
	switch {
	case tenor.N <= 0:
		return nil, fmt.Errorf("NewOISRateHelper: non-positive tenor %s: %w", tenor, market.ErrInvalidHelper)
	case p.FixedRate == nil:
		return nil, fmt.Errorf("NewOISRateHelper %s: nil quote: %w", tenor, market.ErrInvalidHelper)
	case p.Index == nil || !p.Index.IsOvernight():
		return nil, fmt.Errorf("NewOISRateHelper %s: overnight index required: %w", tenor, market.ErrInvalidHelper)
	case p.Pillar == PillarCustomDate && p.CustomPillarDate.IsZero():
		return nil, fmt.Errorf("NewOISRateHelper %s: custom pillar without a date: %w", tenor, market.ErrInvalidConvention)
	}

	fixingCal := p.Index.FixingCalendar()
	payCal := p.PaymentCalendar
	if len(payCal.IDs()) == 0 {
		payCal = fixingCal
	}
	freq, err := p.PaymentFrequency.Period()
	if err != nil {
		return nil, fmt.Errorf("NewOISRateHelper %s: %w", tenor, err)
	}

	ref := fixingCal.Adjust(ctx.Today(), calendar.Following)
	spot := fixingCal.Advance(ref, market.NewPeriod(p.SettlementDays, market.Days), calendar.Following, false)
	start := fixingCal.Advance(spot, p.ForwardStart, calendar.Following, false)
	sch, err := schedule.New(schedule.Params{
		Effective:             start,
		Termination:           tenor.AddTo(start),
		Tenor:                 freq,
		Calendar:              fixingCal,
		Convention:            p.PaymentConvention,
		TerminationConvention: p.PaymentConvention,
		Rule:                  schedule.Backward,
		EndOfMonth:            p.EndOfMonth,
	})
	if err != nil {
		return nil, fmt.Errorf("NewOISRateHelper %s: %w", tenor, err)
	}

	h := &OISRateHelper{
		helperBase: helperBase{quote: p.FixedRate, handle: curve.NewHandle(nil)},
		ctx:        ctx,
		tenor:      tenor,
		discount:   p.DiscountHandle,
		schedule:   sch,
	}
	h.index = p.Index.Clone(h.handle)

	payment := cashflow.Payment{Calendar: payCal, Convention: p.PaymentConvention, Lag: p.PaymentLag}
	fixedDC := p.Index.DayCounter()
	if p.FixedDayCounter != nil {
		fixedDC = *p.FixedDayCounter
	}
	// Only the accrual periods of the fixed leg matter, so it carries a zero rate.
	h.fixedLeg, err = cashflow.FixedRateLeg(cashflow.FixedRateLegParams{
		Schedule:    sch,
		Notionals:   []float64{1},
		CouponRates: []float64{0},
		DayCounter:  fixedDC,
		Payment:     payment,
	})
	if err != nil {
		return nil, fmt.Errorf("NewOISRateHelper %s: %w", tenor, err)
	}
	h.overnightLeg, err = cashflow.OvernightLeg(ctx, cashflow.OvernightLegParams{
		Schedule:   sch,
		Index:      h.index,
		Notionals:  []float64{1},
		Spreads:    []float64{p.OvernightSpread},
		Averaging:  p.Averaging,
		Telescopic: p.TelescopicValueDates,
		Payment:    payment,
	})
	if err != nil {
		return nil, fmt.Errorf("NewOISRateHelper %s: %w", tenor, err)
	}

	h.earliest = sch.StartDate()
	h.maturity = sch.EndDate()
	h.latest = h.maturity
	for _, leg := range []cashflow.Leg{h.fixedLeg, h.overnightLeg} {
		if d := leg[len(leg)-1].Date(); d.After(h.latest) {
			h.latest = d
		}
	}
	last := h.overnightLeg[len(h.overnightLeg)-1].(*cashflow.OvernightIndexedCoupon)
	if d := last.LastValueDate(); d.After(h.latest) {
		h.latest = d
	}
	if err := h.choosePillar(p.Pillar, p.CustomPillarDate); err != nil {
		return nil, fmt.Errorf("NewOISRateHelper %s: %w", tenor, err)
	}
	return h, nil
}

func (h *OISRateHelper) Tenor() market.Period              { return h.tenor }
func (h *OISRateHelper) Index() *index.Index               { return h.index }
func (h *OISRateHelper) Schedule() *schedule.Schedule      { return h.schedule }
func (h *OISRateHelper) FixedLeg() cashflow.Leg            { return h.fixedLeg }
func (h *OISRateHelper) OvernightLeg() cashflow.Leg        { return h.overnightLeg }
func (h *OISRateHelper) Context() market.EvaluationContext { return h.ctx }

func (h *OISRateHelper) discountCurve() curve.YieldCurve {
	if h.discount != nil && !h.discount.Empty() {
		return h.discount
	}
	return h.handle
}

// ImpliedQuote is PV(overnight leg) over the fixed-leg annuity Σ τ_i·D(pay_i).
func (h *OISRateHelper) ImpliedQuote() (float64, error) {
	disc := h.discountCurve()
	today := h.ctx.Today()
	floatPV, err := cashflow.NPV(h.overnightLeg, disc, today, false)
	if err != nil {
		return 0, fmt.Errorf("OISRateHelper %s: %w", h.tenor, err)
	}
	bps, err := cashflow.BPS(h.fixedLeg, disc, today, false)
	if err != nil {
		return 0, fmt.Errorf("OISRateHelper %s: %w", h.tenor, err)
	}
	if bps == 0 {
		return 0, fmt.Errorf("OISRateHelper %s: zero fixed-leg annuity: %w", h.tenor, market.ErrInvalidHelper)
	}
	return floatPV / (bps / basisPoint), nil
}

func (h *OISRateHelper) QuoteError() (float64, error) {
	implied, err := h.ImpliedQuote()
	if err != nil {
		return 0, err
	}
	return h.quote.Value() - implied, nil
}

func (h *OISRateHelper) String() string {
	return fmt.Sprintf("OIS %s %s [%s, %s]", h.index.Name(), h.tenor,
		h.earliest.Format(utils.DateLayout), h.pillar.Format(utils.DateLayout))
}
