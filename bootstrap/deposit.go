package bootstrap

import (
	"fmt"

	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/daycount"
	"github.com/meenmo/termstruct/market"
	"github.com/meenmo/termstruct/quote"
)

// DepositParams describes a money-market deposit quoted as a simple rate.
type DepositParams struct {
	Rate       quote.Quote
	Tenor      market.Period
	FixingDays int
	Calendar   calendar.Calendar
	Convention calendar.BusinessDayConvention
	EndOfMonth bool
	DayCounter daycount.DayCounter
}

// DepositRateHelper calibrates the curve to (D(start)/D(end) − 1)/τ.
type DepositRateHelper struct {
	helperBase
	tenor market.Period
	dc    daycount.DayCounter
}

// NewDepositRateHelper fixes the deposit period from the evaluation date.
func NewDepositRateHelper(ctx market.EvaluationContext, p DepositParams) (*DepositRateHelper, error) {
	switch {
	case p.Tenor.N <= 0:
		return nil, fmt.Errorf("NewDepositRateHelper: non-positive tenor %s: %w", p.Tenor, market.ErrInvalidHelper)
	case p.Rate == nil:
		return nil, fmt.Errorf("NewDepositRateHelper %s: nil quote: %w", p.Tenor, market.ErrInvalidHelper)
	}
	ref := p.Calendar.Adjust(ctx.Today(), calendar.Following)
	start := p.Calendar.Advance(ref, market.NewPeriod(p.FixingDays, market.Days), calendar.Following, false)
	end := p.Calendar.Advance(start, p.Tenor, p.Convention, p.EndOfMonth)

	h := &DepositRateHelper{
		helperBase: helperBase{
			quote:    p.Rate,
			handle:   curve.NewHandle(nil),
			earliest: start,
			maturity: end,
			latest:   end,
			pillar:   end,
		},
		tenor: p.Tenor,
		dc:    p.DayCounter,
	}
	return h, nil
}

func (h *DepositRateHelper) Tenor() market.Period { return h.tenor }

func (h *DepositRateHelper) ImpliedQuote() (float64, error) {
	r, err := curve.SimpleForward(h.handle, h.dc, h.earliest, h.maturity)
	if err != nil {
		return 0, fmt.Errorf("DepositRateHelper %s: %w", h.tenor, err)
	}
	return r, nil
}

func (h *DepositRateHelper) QuoteError() (float64, error) {
	implied, err := h.ImpliedQuote()
	if err != nil {
		return 0, err
	}
	return h.quote.Value() - implied, nil
}
