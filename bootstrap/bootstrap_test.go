package bootstrap_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/termstruct/bootstrap"
	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/config"
	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/daycount"
	"github.com/meenmo/termstruct/index"
	"github.com/meenmo/termstruct/market"
	"github.com/meenmo/termstruct/quote"
	"github.com/meenmo/termstruct/utils"
)

type tenorQuote struct {
	tenor string
	rate  float64
}

var estrStrip = []tenorQuote{
	{"3M", 0.0391},
	{"6M", 0.0385},
	{"1Y", 0.0366},
	{"2Y", 0.0332},
	{"3Y", 0.0310},
	{"5Y", 0.0291},
}

func estrHelpers(t *testing.T, ctx market.EvaluationContext, strip []tenorQuote) []bootstrap.RateHelper {
	t.Helper()
	ix, ok := index.FromPreset(index.ESTR, nil)
	require.True(t, ok)
	helpers := make([]bootstrap.RateHelper, 0, len(strip))
	for _, tq := range strip {
		h, err := bootstrap.OisESTR.Helper(ctx, market.MustParsePeriod(tq.tenor), quote.NewSimple(tq.rate), ix, nil)
		require.NoError(t, err)
		helpers = append(helpers, h)
	}
	return helpers
}

func estrParams(ctx market.EvaluationContext, helpers []bootstrap.RateHelper, interp curve.Interpolation) bootstrap.CurveParams {
	dc := daycount.New(daycount.Actual365Fixed)
	return bootstrap.CurveParams{
		Context:        ctx,
		SettlementDays: 0,
		Calendar:       calendar.New(calendar.TARGET),
		DayCounter:     &dc,
		Helpers:        helpers,
		Interpolation:  interp,
	}
}

func assertParCondition(t *testing.T, helpers []bootstrap.RateHelper) {
	t.Helper()
	for _, h := range helpers {
		implied, err := h.ImpliedQuote()
		require.NoError(t, err)
		assert.InEpsilon(t, h.Quote().Value(), implied, 1e-10, "pillar %s", h.PillarDate().Format(utils.DateLayout))
	}
}

func TestBootstrapRepricesHelpers(t *testing.T) {
	t.Parallel()

	for _, interp := range []curve.Interpolation{curve.LogCubic, curve.LogLinear} {
		interp := interp
		t.Run(interp.String(), func(t *testing.T) {
			t.Parallel()

			ctx := market.NewEvaluationContext(utils.Date(2024, 3, 15))
			helpers := estrHelpers(t, ctx, estrStrip)
			pc, err := bootstrap.Bootstrap(estrParams(ctx, helpers, interp))
			require.NoError(t, err)

			assert.Equal(t, utils.Date(2024, 3, 15), pc.ReferenceDate())
			assert.Len(t, pc.PillarDates(), len(estrStrip))
			assert.GreaterOrEqual(t, pc.Passes(), 1)
			assertParCondition(t, pc.Helpers())

			df, err := pc.DF(pc.ReferenceDate())
			require.NoError(t, err)
			assert.Equal(t, 1.0, df)
		})
	}
}

func TestBootstrapIsDeterministic(t *testing.T) {
	t.Parallel()

	ctx := market.NewEvaluationContext(utils.Date(2024, 3, 15))
	helpers := estrHelpers(t, ctx, estrStrip)

	first, err := bootstrap.Bootstrap(estrParams(ctx, helpers, curve.LogCubic))
	require.NoError(t, err)
	second, err := bootstrap.Bootstrap(estrParams(ctx, helpers, curve.LogCubic))
	require.NoError(t, err)

	if diff := cmp.Diff(first.DiscountFactors(), second.DiscountFactors()); diff != "" {
		t.Fatalf("discount factors differ between runs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.Dates(), second.Dates()); diff != "" {
		t.Fatalf("node dates differ between runs (-first +second):\n%s", diff)
	}
}

func TestBootstrapDiscountFactorsNonIncreasing(t *testing.T) {
	t.Parallel()

	ctx := market.NewEvaluationContext(utils.Date(2024, 3, 15))
	pc, err := bootstrap.Bootstrap(estrParams(ctx, estrHelpers(t, ctx, estrStrip), curve.LogCubic))
	require.NoError(t, err)

	prev := 1.0
	for d := pc.ReferenceDate(); !d.After(pc.MaxDate()); d = d.AddDate(0, 0, 1) {
		df, err := pc.DF(d)
		require.NoError(t, err)
		require.LessOrEqual(t, df, prev, "D(t) increases at %s", d.Format(utils.DateLayout))
		prev = df
	}
}

func TestBootstrapExtrapolation(t *testing.T) {
	t.Parallel()

	ctx := market.NewEvaluationContext(utils.Date(2024, 3, 15))
	helpers := estrHelpers(t, ctx, estrStrip[:3])

	p := estrParams(ctx, helpers, curve.LogCubic)
	pc, err := bootstrap.Bootstrap(p)
	require.NoError(t, err)
	_, err = pc.DF(pc.MaxDate().AddDate(1, 0, 0))
	assert.ErrorIs(t, err, market.ErrExtrapolationDisallowed)

	p.AllowExtrapolation = true
	pc, err = bootstrap.Bootstrap(p)
	require.NoError(t, err)
	df, err := pc.DF(pc.MaxDate().AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Greater(t, df, 0.0)
}

func TestBootstrapDuplicatePillar(t *testing.T) {
	t.Parallel()

	ctx := market.NewEvaluationContext(utils.Date(2024, 6, 14))
	ix, _ := index.FromPreset(index.ESTR, nil)
	pillar := utils.Date(2025, 6, 15)

	var helpers []bootstrap.RateHelper
	for _, tq := range []tenorQuote{{"1Y", 0.036}, {"2Y", 0.033}} {
		h, err := bootstrap.NewOISRateHelper(ctx, bootstrap.OISParams{
			SettlementDays:    2,
			TenorString:       tq.tenor,
			FixedRate:         quote.NewSimple(tq.rate),
			Index:             ix,
			PaymentLag:        1,
			PaymentConvention: calendar.ModifiedFollowing,
			PaymentFrequency:  market.Annual,
			Pillar:            bootstrap.PillarCustomDate,
			CustomPillarDate:  pillar,
		})
		require.NoError(t, err)
		require.Equal(t, pillar, h.PillarDate())
		helpers = append(helpers, h)
	}

	_, err := bootstrap.Bootstrap(estrParams(ctx, helpers, curve.LogCubic))
	require.ErrorIs(t, err, market.ErrDuplicatePillar)
	assert.Contains(t, err.Error(), "2025-06-15")
}

func TestBootstrapNonConvergence(t *testing.T) {
	t.Parallel()

	ctx := market.NewEvaluationContext(utils.Date(2024, 3, 15))
	cfg := config.DefaultConfig
	cfg.MaxForwardRate = 0.01

	helpers := estrHelpers(t, ctx, estrStrip[:2])
	p := estrParams(ctx, helpers, curve.LogCubic)
	p.Config = &cfg
	_, err := bootstrap.Bootstrap(p)
	assert.ErrorIs(t, err, market.ErrBootstrapNonConvergence)

	// No helper stays linked to a discarded candidate curve.
	for _, h := range helpers {
		_, err := h.ImpliedQuote()
		assert.ErrorIs(t, err, market.ErrNilCurve)
	}
}

func TestBootstrapInputErrors(t *testing.T) {
	t.Parallel()

	ctx := market.NewEvaluationContext(utils.Date(2024, 3, 15))

	_, err := bootstrap.Bootstrap(estrParams(ctx, nil, curve.LogCubic))
	assert.ErrorIs(t, err, market.ErrInvalidHelper)

	_, err = bootstrap.Bootstrap(estrParams(market.EvaluationContext{}, estrHelpers(t, ctx, estrStrip[:1]), curve.LogCubic))
	assert.ErrorIs(t, err, market.ErrInvalidHelper)

	// A deposit settling today with the curve settling two days later.
	dep, err := bootstrap.NewDepositRateHelper(ctx, bootstrap.DepositParams{
		Rate:       quote.NewSimple(0.039),
		Tenor:      market.NewPeriod(1, market.Days),
		Calendar:   calendar.New(calendar.TARGET),
		Convention: calendar.Following,
		DayCounter: daycount.New(daycount.Actual360),
	})
	require.NoError(t, err)
	p := estrParams(ctx, []bootstrap.RateHelper{dep}, curve.LogCubic)
	p.SettlementDays = 2
	_, err = bootstrap.Bootstrap(p)
	assert.ErrorIs(t, err, market.ErrInvalidHelper)
}

func TestBootstrapWithDepositFront(t *testing.T) {
	t.Parallel()

	ctx := market.NewEvaluationContext(utils.Date(2024, 3, 15))
	dep, err := bootstrap.NewDepositRateHelper(ctx, bootstrap.DepositParams{
		Rate:       quote.NewSimple(0.0390),
		Tenor:      market.NewPeriod(1, market.Weeks),
		FixingDays: 2,
		Calendar:   calendar.New(calendar.TARGET),
		Convention: calendar.ModifiedFollowing,
		DayCounter: daycount.New(daycount.Actual360),
	})
	require.NoError(t, err)
	assert.Equal(t, utils.Date(2024, 3, 19), dep.EarliestDate())
	assert.Equal(t, utils.Date(2024, 3, 26), dep.MaturityDate())

	helpers := append([]bootstrap.RateHelper{dep}, estrHelpers(t, ctx, estrStrip[:3])...)
	pc, err := bootstrap.Bootstrap(estrParams(ctx, helpers, curve.LogLinear))
	require.NoError(t, err)
	assert.Equal(t, dep.PillarDate(), pc.PillarDates()[0])
	assertParCondition(t, pc.Helpers())
}

func TestDepositImpliedQuote(t *testing.T) {
	t.Parallel()

	ctx := market.NewEvaluationContext(utils.Date(2024, 3, 15))
	dc := daycount.New(daycount.Actual360)
	dep, err := bootstrap.NewDepositRateHelper(ctx, bootstrap.DepositParams{
		Rate:       quote.NewSimple(0.04),
		Tenor:      market.NewPeriod(3, market.Months),
		FixingDays: 2,
		Calendar:   calendar.New(calendar.TARGET),
		Convention: calendar.ModifiedFollowing,
		DayCounter: dc,
	})
	require.NoError(t, err)

	_, err = dep.ImpliedQuote()
	assert.ErrorIs(t, err, market.ErrNilCurve)

	flat := curve.NewFlatForward(ctx.Today(), 0.04, dc)
	dep.SetTermStructure(flat)
	implied, err := dep.ImpliedQuote()
	require.NoError(t, err)
	want, err := curve.SimpleForward(flat, dc, dep.EarliestDate(), dep.MaturityDate())
	require.NoError(t, err)
	assert.InDelta(t, want, implied, 1e-15)
	assert.Greater(t, implied, 0.04)

	qe, err := dep.QuoteError()
	require.NoError(t, err)
	assert.InDelta(t, 0.04-implied, qe, 1e-15)
}

func TestCurveBuilderRelinksOnRebuild(t *testing.T) {
	t.Parallel()

	ctx := market.NewEvaluationContext(utils.Date(2024, 3, 15))
	helpers := estrHelpers(t, ctx, estrStrip[:3])
	b := bootstrap.NewCurveBuilder(estrParams(ctx, helpers, curve.LogCubic))

	assert.True(t, b.Stale())
	assert.Nil(t, b.Curve())
	assert.True(t, b.Handle().Empty())

	first, err := b.Rebuild()
	require.NoError(t, err)
	assert.False(t, b.Stale())
	assert.Same(t, first, b.Handle().Current())
	version := b.Handle().Version()

	q := helpers[0].Quote().(*quote.SimpleQuote)
	q.SetValue(0.0401)
	assert.True(t, b.Stale())

	second, err := b.Rebuild()
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Same(t, second, b.Handle().Current())
	assert.Greater(t, b.Handle().Version(), version)
	assertParCondition(t, second.Helpers())

	// A quote the bracket cannot reach leaves the previous curve linked.
	q.SetValue(5.0)
	_, err = b.Rebuild()
	require.ErrorIs(t, err, market.ErrBootstrapNonConvergence)
	assert.Same(t, second, b.Handle().Current())
	assert.Same(t, second, b.Curve())
	assert.True(t, b.Stale())

	// The helpers read the previous curve again, not the failed candidate.
	implied, err := helpers[0].ImpliedQuote()
	require.NoError(t, err)
	assert.InEpsilon(t, 0.0401, implied, 1e-10)
	for _, h := range helpers[1:] {
		implied, err := h.ImpliedQuote()
		require.NoError(t, err)
		assert.InEpsilon(t, h.Quote().Value(), implied, 1e-10)
	}
}

func TestParsePillar(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]bootstrap.Pillar{
		"":                 bootstrap.PillarLastRelevantDate,
		"lastRelevantDate": bootstrap.PillarLastRelevantDate,
		"maturity_date":    bootstrap.PillarMaturityDate,
		"Custom":           bootstrap.PillarCustomDate,
	} {
		got, err := bootstrap.ParsePillar(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := bootstrap.ParsePillar("midpoint")
	assert.ErrorIs(t, err, market.ErrInvalidConvention)
	assert.Equal(t, "MaturityDate", bootstrap.PillarMaturityDate.String())
}

func TestOISConventionLookup(t *testing.T) {
	t.Parallel()

	c, err := bootstrap.OISConventionFor(" clicp ")
	require.NoError(t, err)
	assert.Equal(t, index.CLICP, c.Index)
	assert.Equal(t, market.Once, c.Frequency(market.MustParsePeriod("18M")))
	assert.Equal(t, market.Once, c.Frequency(market.MustParsePeriod("1Y")))
	assert.Equal(t, market.Semiannual, c.Frequency(market.MustParsePeriod("2Y")))

	sofr, err := bootstrap.OISConventionFor("SOFR")
	require.NoError(t, err)
	assert.Equal(t, market.Annual, sofr.Frequency(market.MustParsePeriod("18M")))

	_, err = bootstrap.OISConventionFor("TONAR")
	assert.ErrorIs(t, err, market.ErrInvalidConvention)
}

// stubHelper pins a pillar without pricing anything.
type stubHelper struct {
	q      quote.Quote
	pillar time.Time
}

func (s stubHelper) Quote() quote.Quote                { return s.q }
func (s stubHelper) EarliestDate() time.Time           { return s.pillar }
func (s stubHelper) MaturityDate() time.Time           { return s.pillar }
func (s stubHelper) LatestRelevantDate() time.Time     { return s.pillar }
func (s stubHelper) PillarDate() time.Time             { return s.pillar }
func (s stubHelper) ImpliedQuote() (float64, error)    { return 0, nil }
func (s stubHelper) QuoteError() (float64, error)      { return 0, nil }
func (s stubHelper) SetTermStructure(curve.YieldCurve) {}

func TestBootstrapRejectsPillarOnReferenceDate(t *testing.T) {
	t.Parallel()

	ctx := market.NewEvaluationContext(utils.Date(2024, 3, 15))
	h := stubHelper{q: quote.NewSimple(0), pillar: ctx.Today()}
	_, err := bootstrap.Bootstrap(estrParams(ctx, []bootstrap.RateHelper{h}, curve.LogCubic))
	assert.ErrorIs(t, err, market.ErrInvalidHelper)

	_, err = bootstrap.Bootstrap(estrParams(ctx, []bootstrap.RateHelper{nil}, curve.LogCubic))
	assert.ErrorIs(t, err, market.ErrInvalidHelper)
}
