package cashflow_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/cashflow"
	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/daycount"
	"github.com/meenmo/termstruct/market"
	"github.com/meenmo/termstruct/schedule"
	"github.com/meenmo/termstruct/utils"
)

func semiannualLeg(t *testing.T) cashflow.Leg {
	t.Helper()
	sch, err := schedule.FromDates([]time.Time{
		utils.Date(2020, 1, 1), utils.Date(2020, 7, 1), utils.Date(2021, 1, 1),
	}, calendar.Calendar{}, calendar.Unadjusted)
	require.NoError(t, err)
	leg, err := cashflow.FixedRateLeg(cashflow.FixedRateLegParams{
		Schedule:    sch,
		Notionals:   []float64{100},
		CouponRates: []float64{0.04},
		DayCounter:  daycount.New(daycount.Actual360),
	})
	require.NoError(t, err)
	return leg
}

func TestNPVAndBPS(t *testing.T) {
	t.Parallel()

	ref := utils.Date(2020, 1, 1)
	disc := curve.NewFlatForward(ref, 0.03, daycount.New(daycount.Actual365Fixed))
	leg := semiannualLeg(t)

	npv, err := cashflow.NPV(leg, disc, ref, false)
	require.NoError(t, err)
	var want float64
	for _, cf := range leg {
		a, err := cf.Amount()
		require.NoError(t, err)
		df, err := disc.DF(cf.Date())
		require.NoError(t, err)
		want += a * df
	}
	assert.InDelta(t, want, npv, 1e-12)

	bps, err := cashflow.BPS(leg, disc, ref, false)
	require.NoError(t, err)
	assert.InDelta(t, npv, 0.04*bps/1e-4, 1e-10)

	settle := utils.Date(2020, 7, 1)
	excl, err := cashflow.NPV(leg, disc, settle, false)
	require.NoError(t, err)
	incl, err := cashflow.NPV(leg, disc, settle, true)
	require.NoError(t, err)
	assert.InDelta(t, npv, incl, 1e-12)
	assert.Less(t, excl, incl)

	_, err = cashflow.NPV(leg, nil, ref, false)
	assert.ErrorIs(t, err, market.ErrNilCurve)
}

func TestNPVPropagatesCurveErrors(t *testing.T) {
	t.Parallel()

	ref := utils.Date(2020, 1, 1)
	short, err := curve.New(ref, []time.Time{ref, utils.Date(2020, 6, 1)}, []float64{1, 0.99}, curve.DefaultOptions())
	require.NoError(t, err)
	_, err = cashflow.NPV(semiannualLeg(t), short, ref, false)
	assert.ErrorIs(t, err, market.ErrExtrapolationDisallowed)
}

func TestLegAccruedAmount(t *testing.T) {
	t.Parallel()

	leg := semiannualLeg(t)
	accrued, err := cashflow.AccruedAmount(leg, utils.Date(2020, 10, 1))
	require.NoError(t, err)
	assert.InDelta(t, 100*0.04*92/360.0, accrued, 1e-12)

	accrued, err = cashflow.AccruedAmount(leg, utils.Date(2020, 7, 1))
	require.NoError(t, err)
	assert.Zero(t, accrued)
}

func TestTable(t *testing.T) {
	t.Parallel()

	ref := utils.Date(2020, 1, 1)
	disc := curve.NewFlatForward(ref, 0.03, daycount.New(daycount.Actual365Fixed))
	leg := append(semiannualLeg(t), cashflow.NewSimpleCashflow(utils.Date(2021, 1, 1), 100))

	rows, err := cashflow.Table(leg, disc)
	require.NoError(t, err)
	var kinds []string
	for _, r := range rows {
		kinds = append(kinds, r.Kind)
		assert.InDelta(t, r.DF*r.Amount, r.PV, 1e-12)
	}
	if diff := cmp.Diff([]string{"fixed", "fixed", "cashflow"}, kinds); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
	assert.InDelta(t, 0.04, rows[0].Rate, 0)
	assert.InDelta(t, 182/360.0, rows[0].AccrualPeriod, 1e-15)

	rows, err = cashflow.Table(leg, nil)
	require.NoError(t, err)
	assert.Zero(t, rows[0].DF)
}

func TestToMinorUnits(t *testing.T) {
	t.Parallel()

	d := utils.Date(2024, 3, 1)
	leg := cashflow.Leg{
		cashflow.NewSimpleCashflow(d, 12.345),
		cashflow.NewSimpleCashflow(d, 1.005),
		cashflow.NewSimpleCashflow(d, -2.5),
	}
	flows, err := cashflow.ToMinorUnits(leg, 2)
	require.NoError(t, err)
	var units []int64
	var text []string
	for _, f := range flows {
		units = append(units, f.Units)
		text = append(text, f.String(2))
	}
	if diff := cmp.Diff([]int64{1235, 101, -250}, units); diff != "" {
		t.Fatalf("units mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"12.35", "1.01", "-2.50"}, text); diff != "" {
		t.Fatalf("text mismatch (-want +got):\n%s", diff)
	}

	clp, err := cashflow.ToMinorUnits(cashflow.Leg{cashflow.NewSimpleCashflow(d, 1234.5)}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1235), clp[0].Units)

	_, err = cashflow.ToMinorUnits(leg, -1)
	assert.ErrorIs(t, err, market.ErrInvalidConvention)

	back, _ := cashflow.FromMinorUnits(d, 1235, 2).Amount()
	assert.InDelta(t, 12.35, back, 1e-15)
}
