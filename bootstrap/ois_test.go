package bootstrap_test

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/termstruct/bootstrap"
	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/cashflow"
	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/daycount"
	"github.com/meenmo/termstruct/index"
	"github.com/meenmo/termstruct/market"
	"github.com/meenmo/termstruct/quote"
	"github.com/meenmo/termstruct/utils"
)

func TestCLICPHelperEarliestDates(t *testing.T) {
	t.Parallel()

	joint := calendar.Joint(calendar.JoinHolidays, calendar.FD, calendar.CL)
	cases := []struct {
		eval          time.Time
		wantEarliest  time.Time
		wantJointSpot time.Time
	}{
		// Juneteenth closes New York but not Santiago.
		{utils.Date(2023, 6, 15), utils.Date(2023, 6, 19), utils.Date(2023, 6, 20)},
		{utils.Date(2023, 6, 16), utils.Date(2023, 6, 20), utils.Date(2023, 6, 22)},
		{utils.Date(2023, 6, 20), utils.Date(2023, 6, 23), utils.Date(2023, 6, 23)},
	}
	for _, tc := range cases {
		ctx := market.NewEvaluationContext(tc.eval)
		ix := index.NewCLICP(nil)
		for _, tenor := range []string{"3M", "2Y"} {
			h, err := bootstrap.OisCLICP.Helper(ctx, market.MustParsePeriod(tenor), quote.NewSimple(0.1), ix, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.wantEarliest, h.EarliestDate(), "eval %s tenor %s", tc.eval.Format(utils.DateLayout), tenor)
		}
		spot := joint.Advance(tc.eval, market.NewPeriod(2, market.Days), calendar.Following, false)
		assert.Equal(t, tc.wantJointSpot, spot, "eval %s", tc.eval.Format(utils.DateLayout))
	}
}

func TestCLICPHelperSchedule(t *testing.T) {
	t.Parallel()

	ctx := market.NewEvaluationContext(utils.Date(2023, 6, 15))
	ix := index.NewCLICP(nil)

	short, err := bootstrap.OisCLICP.Helper(ctx, market.MustParsePeriod("3M"), quote.NewSimple(0.11), ix, nil)
	require.NoError(t, err)
	// 2023-09-19 is a Chilean holiday, so the accrual end rolls to the 20th.
	assert.Equal(t, utils.Date(2023, 9, 20), short.MaturityDate())
	assert.Equal(t, utils.Date(2023, 9, 20), short.PillarDate())
	assert.Len(t, short.FixedLeg(), 1)
	assert.Len(t, short.OvernightLeg(), 1)

	long, err := bootstrap.OisCLICP.Helper(ctx, market.MustParsePeriod("2Y"), quote.NewSimple(0.0688), ix, nil)
	require.NoError(t, err)
	assert.Len(t, long.FixedLeg(), 4)
	want := []time.Time{
		utils.Date(2023, 6, 19), utils.Date(2023, 12, 19), utils.Date(2024, 6, 19),
		utils.Date(2024, 12, 19), utils.Date(2025, 6, 19),
	}
	if diff := cmp.Diff(want, long.Schedule().Dates()); diff != "" {
		t.Fatalf("schedule mismatch (-want +got):\n%s", diff)
	}
	// Payments fall on days open in both New York and Santiago.
	joint := calendar.Joint(calendar.JoinHolidays, calendar.FD, calendar.CL)
	for _, cf := range long.FixedLeg() {
		assert.True(t, joint.IsBusinessDay(cf.Date()), cf.Date().Format(utils.DateLayout))
	}
	// The overnight index is a clone sharing the fixing history.
	assert.Same(t, ix.TimeSeries(), long.Index().TimeSeries())
	assert.NotSame(t, ix.Handle(), long.Index().Handle())
}

func TestCLICPBootstrapNeedsTodaysFixing(t *testing.T) {
	t.Parallel()

	eval := utils.Date(2023, 6, 15)
	ctx := market.NewEvaluationContext(eval)
	ix := index.NewCLICP(nil)

	var helpers []bootstrap.RateHelper
	for _, tq := range []tenorQuote{{"3M", 0.10995}, {"6M", 0.1044}, {"1Y", 0.09028}, {"2Y", 0.0688}} {
		h, err := bootstrap.OisCLICP.Helper(ctx, market.MustParsePeriod(tq.tenor), quote.NewSimple(tq.rate), ix, nil)
		require.NoError(t, err)
		helpers = append(helpers, h)
	}

	dc := daycount.New(daycount.Actual360)
	p := bootstrap.CurveParams{
		Context:            ctx,
		Calendar:           calendar.Joint(calendar.JoinHolidays, calendar.FD, calendar.CL),
		DayCounter:         &dc,
		Helpers:            helpers,
		AllowExtrapolation: true,
	}
	// The first overnight period fixes on the evaluation date itself.
	_, err := bootstrap.Bootstrap(p)
	require.ErrorIs(t, err, market.ErrMissingFixing)

	require.NoError(t, ix.AddFixing(eval, 0.1125, false))
	pc, err := bootstrap.Bootstrap(p)
	require.NoError(t, err)
	assertParCondition(t, pc.Helpers())
	assert.Equal(t, eval, pc.ReferenceDate())
}

func TestOISHelperTelescopicAgreesWithDaily(t *testing.T) {
	t.Parallel()

	ctx := market.NewEvaluationContext(utils.Date(2024, 3, 15))
	ix, _ := index.FromPreset(index.ESTR, nil)
	flat := curve.NewFlatForward(ctx.Today(), 0.035, daycount.New(daycount.Actual365Fixed))

	implied := make([]float64, 0, 2)
	for _, telescopic := range []bool{false, true} {
		h, err := bootstrap.NewOISRateHelper(ctx, bootstrap.OISParams{
			SettlementDays:       2,
			Tenor:                market.NewPeriod(2, market.Years),
			FixedRate:            quote.NewSimple(0.035),
			Index:                ix,
			TelescopicValueDates: telescopic,
			PaymentLag:           1,
			PaymentConvention:    calendar.ModifiedFollowing,
			PaymentFrequency:     market.Annual,
		})
		require.NoError(t, err)
		h.SetTermStructure(flat)
		q, err := h.ImpliedQuote()
		require.NoError(t, err)
		implied = append(implied, q)
	}
	assert.InDelta(t, implied[0], implied[1], 1e-12)
}

func TestOISHelperExogenousDiscounting(t *testing.T) {
	t.Parallel()

	ctx := market.NewEvaluationContext(utils.Date(2024, 3, 15))
	ix, _ := index.FromPreset(index.ESTR, nil)
	dc := daycount.New(daycount.Actual365Fixed)
	discount := curve.NewHandle(curve.NewFlatForward(ctx.Today(), 0.05, dc))

	params := bootstrap.OISParams{
		SettlementDays:    2,
		TenorString:       "3Y",
		FixedRate:         quote.NewSimple(0.03),
		Index:             ix,
		PaymentLag:        1,
		PaymentConvention: calendar.ModifiedFollowing,
		PaymentFrequency:  market.Annual,
	}
	own, err := bootstrap.NewOISRateHelper(ctx, params)
	require.NoError(t, err)
	params.DiscountHandle = discount
	exo, err := bootstrap.NewOISRateHelper(ctx, params)
	require.NoError(t, err)

	// Rising forwards make the period rates differ, so the weights matter.
	ref := ctx.Today()
	opts := curve.DefaultOptions()
	opts.AllowExtrapolation = true
	forecast, err := curve.New(ref,
		[]time.Time{ref, ref.AddDate(1, 0, 0), ref.AddDate(4, 0, 0)},
		[]float64{1, math.Exp(-0.02), math.Exp(-0.02 - 0.05*3)},
		opts)
	require.NoError(t, err)
	own.SetTermStructure(forecast)
	exo.SetTermStructure(forecast)

	a, err := own.ImpliedQuote()
	require.NoError(t, err)
	b, err := exo.ImpliedQuote()
	require.NoError(t, err)
	// Same forecasts, different discounting: close but not equal.
	assert.InDelta(t, a, b, 1e-3)
	assert.NotEqual(t, a, b)
}

func TestOISHelperPillarChoice(t *testing.T) {
	t.Parallel()

	ctx := market.NewEvaluationContext(utils.Date(2024, 3, 15))
	ix, _ := index.FromPreset(index.SOFR, nil)
	base := bootstrap.OISParams{
		SettlementDays:    2,
		TenorString:       "1Y",
		FixedRate:         quote.NewSimple(0.05),
		Index:             ix,
		PaymentLag:        2,
		PaymentConvention: calendar.ModifiedFollowing,
	}

	last, err := bootstrap.NewOISRateHelper(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, utils.Date(2024, 3, 19), last.EarliestDate())
	assert.Equal(t, utils.Date(2025, 3, 19), last.MaturityDate())
	assert.Equal(t, utils.Date(2025, 3, 21), last.LatestRelevantDate())
	assert.Equal(t, last.LatestRelevantDate(), last.PillarDate())

	p := base
	p.Pillar = bootstrap.PillarMaturityDate
	mat, err := bootstrap.NewOISRateHelper(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, mat.MaturityDate(), mat.PillarDate())

	p.Pillar = bootstrap.PillarCustomDate
	p.CustomPillarDate = utils.Date(2025, 1, 15)
	custom, err := bootstrap.NewOISRateHelper(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, utils.Date(2025, 1, 15), custom.PillarDate())

	p.CustomPillarDate = utils.Date(2026, 1, 15)
	_, err = bootstrap.NewOISRateHelper(ctx, p)
	assert.ErrorIs(t, err, market.ErrInvalidHelper)

	p.CustomPillarDate = time.Time{}
	_, err = bootstrap.NewOISRateHelper(ctx, p)
	assert.ErrorIs(t, err, market.ErrInvalidConvention)
}

func TestOISHelperErrors(t *testing.T) {
	t.Parallel()

	ctx := market.NewEvaluationContext(utils.Date(2024, 3, 15))
	estr, _ := index.FromPreset(index.ESTR, nil)
	base := bootstrap.OISParams{
		SettlementDays: 2,
		Tenor:          market.NewPeriod(1, market.Years),
		FixedRate:      quote.NewSimple(0.03),
		Index:          estr,
	}

	cases := map[string]struct {
		edit func(p *bootstrap.OISParams)
		want error
	}{
		"nil quote":     {func(p *bootstrap.OISParams) { p.FixedRate = nil }, market.ErrInvalidHelper},
		"nil index":     {func(p *bootstrap.OISParams) { p.Index = nil }, market.ErrInvalidHelper},
		"ibor index":    {func(p *bootstrap.OISParams) { p.Index = index.NewEuribor6M(nil) }, market.ErrInvalidHelper},
		"zero tenor":    {func(p *bootstrap.OISParams) { p.Tenor = market.Period{} }, market.ErrInvalidHelper},
		"bad tenor":     {func(p *bootstrap.OISParams) { p.Tenor, p.TenorString = market.Period{}, "3X" }, market.ErrInvalidConvention},
		"negative":      {func(p *bootstrap.OISParams) { p.Tenor = market.NewPeriod(-1, market.Years) }, market.ErrInvalidHelper},
		"custom no day": {func(p *bootstrap.OISParams) { p.Pillar = bootstrap.PillarCustomDate }, market.ErrInvalidConvention},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := base
			tc.edit(&p)
			_, err := bootstrap.NewOISRateHelper(ctx, p)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestOISHelperSimpleAveraging(t *testing.T) {
	t.Parallel()

	ctx := market.NewEvaluationContext(utils.Date(2024, 3, 15))
	ix, _ := index.FromPreset(index.SOFR, nil)
	flat := curve.NewFlatForward(ctx.Today(), 0.05, daycount.New(daycount.Actual365Fixed))

	rates := map[cashflow.Averaging]float64{}
	for _, avg := range []cashflow.Averaging{cashflow.Compound, cashflow.SimpleAverage} {
		h, err := bootstrap.NewOISRateHelper(ctx, bootstrap.OISParams{
			SettlementDays: 2,
			TenorString:    "1Y",
			FixedRate:      quote.NewSimple(0.05),
			Index:          ix,
			Averaging:      avg,
		})
		require.NoError(t, err)
		h.SetTermStructure(flat)
		rates[avg], err = h.ImpliedQuote()
		require.NoError(t, err)
	}
	// Daily compounding beats the arithmetic average of the same forwards.
	assert.Greater(t, rates[cashflow.Compound], rates[cashflow.SimpleAverage])
}
