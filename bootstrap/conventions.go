package bootstrap

import (
	"fmt"
	"strings"

	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/index"
	"github.com/meenmo/termstruct/market"
	"github.com/meenmo/termstruct/quote"
)

// OISConvention is the market convention of an OIS quote strip. Short tenors pay once
// at maturity; longer ones pay at LongFrequency.
type OISConvention struct {
	Index             index.ReferenceIndex
	SettlementDays    int
	PaymentLag        int
	PaymentConvention calendar.BusinessDayConvention
	// PaymentCalendar zero means the index calendar.
	PaymentCalendar calendar.Calendar
	ShortFrequency  market.Frequency
	LongFrequency   market.Frequency
	// ShortTenorLimit is the longest tenor paid at ShortFrequency.
	ShortTenorLimit market.Period
	EndOfMonth      bool
	Telescopic      bool
}

// Preset OIS conventions.
var (
	// OisCLICP is the Chilean camara swap: T+2, one payment up to 18M, semiannual beyond,
	// payments on days open in both New York and Santiago.
	OisCLICP = OISConvention{
		Index:             index.CLICP,
		SettlementDays:    2,
		PaymentConvention: calendar.ModifiedFollowing,
		PaymentCalendar:   calendar.Joint(calendar.JoinHolidays, calendar.FD, calendar.CL),
		ShortFrequency:    market.Once,
		LongFrequency:     market.Semiannual,
		ShortTenorLimit:   market.NewPeriod(18, market.Months),
	}

	OisSOFR = OISConvention{
		Index:             index.SOFR,
		SettlementDays:    2,
		PaymentLag:        2,
		PaymentConvention: calendar.ModifiedFollowing,
		ShortFrequency:    market.Once,
		LongFrequency:     market.Annual,
		ShortTenorLimit:   market.NewPeriod(1, market.Years),
	}

	OisESTR = OISConvention{
		Index:             index.ESTR,
		SettlementDays:    2,
		PaymentLag:        1,
		PaymentConvention: calendar.ModifiedFollowing,
		ShortFrequency:    market.Once,
		LongFrequency:     market.Annual,
		ShortTenorLimit:   market.NewPeriod(1, market.Years),
	}
)

var oisConventions = map[index.ReferenceIndex]OISConvention{
	index.CLICP: OisCLICP,
	index.SOFR:  OisSOFR,
	index.ESTR:  OisESTR,
}

// OISConventionFor looks up a preset by index name, case-insensitively.
func OISConventionFor(name string) (OISConvention, error) {
	c, ok := oisConventions[index.ReferenceIndex(strings.ToUpper(strings.TrimSpace(name)))]
	if !ok {
		return OISConvention{}, fmt.Errorf("OISConventionFor: no convention for %q: %w", name, market.ErrInvalidConvention)
	}
	return c, nil
}

// Frequency is the payment frequency for a swap of the given tenor.
func (c OISConvention) Frequency(tenor market.Period) market.Frequency {
	if tenor.Compare(c.ShortTenorLimit) > 0 {
		return c.LongFrequency
	}
	return c.ShortFrequency
}

// Params fills OISParams for one tenor; callers may adjust them before building.
func (c OISConvention) Params(tenor market.Period, q quote.Quote, ix *index.Index, discount *curve.Handle) OISParams {
	return OISParams{
		SettlementDays:       c.SettlementDays,
		Tenor:                tenor,
		FixedRate:            q,
		Index:                ix,
		DiscountHandle:       discount,
		TelescopicValueDates: c.Telescopic,
		PaymentLag:           c.PaymentLag,
		PaymentConvention:    c.PaymentConvention,
		PaymentFrequency:     c.Frequency(tenor),
		PaymentCalendar:      c.PaymentCalendar,
		EndOfMonth:           c.EndOfMonth,
	}
}

// Helper builds an OIS helper for one tenor. ix must be the convention's index;
// discount may be nil to discount on the curve being built.
func (c OISConvention) Helper(ctx market.EvaluationContext, tenor market.Period, q quote.Quote, ix *index.Index, discount *curve.Handle) (*OISRateHelper, error) {
	return NewOISRateHelper(ctx, c.Params(tenor, q, ix, discount))
}
