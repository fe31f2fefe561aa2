package curve

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/meenmo/termstruct/daycount"
	"github.com/meenmo/termstruct/market"
)

// YieldCurve is the read side of a discount curve.
type YieldCurve interface {
	ReferenceDate() time.Time
	// DF returns the discount factor for t, D(reference date) == 1 by construction of
	// bootstrapped curves.
	DF(t time.Time) (float64, error)
	// MaxDate is the last date answered without extrapolation.
	MaxDate() time.Time
}

// Options controls the time axis, interpolation and extrapolation of a Curve.
type Options struct {
	DayCounter         daycount.DayCounter
	Interpolation      Interpolation
	AllowExtrapolation bool
}

// DefaultOptions uses the market-standard ACT/365F time axis with log-cubic
// interpolation and no extrapolation.
func DefaultOptions() Options {
	return Options{
		DayCounter:    daycount.New(daycount.Actual365Fixed),
		Interpolation: LogCubic,
	}
}

// Curve is an interpolated discount curve over (date, DF) nodes. It is immutable after
// construction and safe for concurrent reads.
type Curve struct {
	referenceDate time.Time
	dates         []time.Time
	times         []float64
	dfs           []float64
	opts          Options
	logDF         predictor
}

// New builds a curve. dates must start at referenceDate and strictly increase; every
// DF must be positive and finite.
func New(referenceDate time.Time, dates []time.Time, dfs []float64, opts Options) (*Curve, error) {
	if len(dates) < 2 {
		return nil, fmt.Errorf("curve.New: need at least 2 nodes, got %d: %w", len(dates), market.ErrInvalidCurve)
	}
	if len(dates) != len(dfs) {
		return nil, fmt.Errorf("curve.New: %d dates but %d discount factors: %w", len(dates), len(dfs), market.ErrInvalidCurve)
	}
	if !dates[0].Equal(referenceDate) {
		return nil, fmt.Errorf("curve.New: first node %s is not the reference date %s: %w",
			dates[0].Format("2006-01-02"), referenceDate.Format("2006-01-02"), market.ErrInvalidCurve)
	}
	if floats.HasNaN(dfs) {
		return nil, fmt.Errorf("curve.New: NaN discount factor: %w", market.ErrInvalidCurve)
	}
	for i, df := range dfs {
		if df <= 0 || math.IsInf(df, 0) {
			return nil, fmt.Errorf("curve.New: discount factor %g at %s: %w", df, dates[i].Format("2006-01-02"), market.ErrInvalidCurve)
		}
	}

	c := &Curve{
		referenceDate: referenceDate,
		dates:         append([]time.Time(nil), dates...),
		dfs:           append([]float64(nil), dfs...),
		times:         make([]float64, len(dates)),
		opts:          opts,
	}
	logs := make([]float64, len(dfs))
	for i, d := range c.dates {
		c.times[i] = opts.DayCounter.YearFraction(referenceDate, d)
		if i > 0 && c.times[i] <= c.times[i-1] {
			return nil, fmt.Errorf("curve.New: node %s does not increase curve time: %w", d.Format("2006-01-02"), market.ErrInvalidCurve)
		}
		logs[i] = math.Log(c.dfs[i])
	}

	p, err := newPredictor(opts.Interpolation, c.times, logs)
	if err != nil {
		return nil, fmt.Errorf("curve.New: %w", err)
	}
	c.logDF = p
	return c, nil
}

func (c *Curve) ReferenceDate() time.Time { return c.referenceDate }

func (c *Curve) MaxDate() time.Time { return c.dates[len(c.dates)-1] }

// Dates returns a copy of the node dates.
func (c *Curve) Dates() []time.Time {
	return append([]time.Time(nil), c.dates...)
}

// DiscountFactors returns a copy of the node discount factors.
func (c *Curve) DiscountFactors() []float64 {
	return append([]float64(nil), c.dfs...)
}

// Nodes returns the node discount factors keyed by date.
func (c *Curve) Nodes() map[time.Time]float64 {
	result := make(map[time.Time]float64, len(c.dates))
	for i, d := range c.dates {
		result[d] = c.dfs[i]
	}
	return result
}

// Options returns the construction options.
func (c *Curve) Options() Options { return c.opts }

// TimeFromReference measures t on the curve time axis.
func (c *Curve) TimeFromReference(t time.Time) float64 {
	return c.opts.DayCounter.YearFraction(c.referenceDate, t)
}

// DF returns the discount factor for t. Node dates return the stored value exactly.
func (c *Curve) DF(t time.Time) (float64, error) {
	if i := binarySearchDate(c.dates, t); i < len(c.dates) && c.dates[i].Equal(t) {
		return c.dfs[i], nil
	}
	if t.Before(c.referenceDate) || t.After(c.MaxDate()) {
		if !c.opts.AllowExtrapolation {
			return 0, fmt.Errorf("curve.DF: %s outside [%s, %s]: %w", t.Format("2006-01-02"),
				c.referenceDate.Format("2006-01-02"), c.MaxDate().Format("2006-01-02"), market.ErrExtrapolationDisallowed)
		}
		return math.Exp(c.extrapolateLogDF(c.TimeFromReference(t))), nil
	}
	return math.Exp(c.logDF.Predict(c.TimeFromReference(t))), nil
}

// extrapolateLogDF continues the flat forward of the nearest end segment.
func (c *Curve) extrapolateLogDF(x float64) float64 {
	n := len(c.times)
	i0, i1 := n-2, n-1
	if x < c.times[0] {
		i0, i1 = 0, 1
	}
	slope := (math.Log(c.dfs[i1]) - math.Log(c.dfs[i0])) / (c.times[i1] - c.times[i0])
	if x < c.times[0] {
		return math.Log(c.dfs[0]) + slope*(x-c.times[0])
	}
	return math.Log(c.dfs[n-1]) + slope*(x-c.times[n-1])
}

// ZeroRateAt returns the continuously compounded zero rate to t in percent on the
// curve time axis. At the reference date the short end of the first segment is used.
func (c *Curve) ZeroRateAt(t time.Time) (float64, error) {
	yf := c.TimeFromReference(t)
	if yf == 0 {
		return -(math.Log(c.dfs[1]) - math.Log(c.dfs[0])) / c.times[1] * 100, nil
	}
	df, err := c.DF(t)
	if err != nil {
		return 0, fmt.Errorf("curve.ZeroRateAt: %w", err)
	}
	return -math.Log(df) / yf * 100, nil
}

// ForwardRate returns the continuously compounded forward between d1 and d2 as a
// decimal rate on the curve time axis.
func (c *Curve) ForwardRate(d1, d2 time.Time) (float64, error) {
	return ContinuousForward(c, c.opts.DayCounter, d1, d2)
}

// ContinuousForward computes ln(D(d1)/D(d2))/τ(d1, d2) on any curve.
func ContinuousForward(yc YieldCurve, dc daycount.DayCounter, d1, d2 time.Time) (float64, error) {
	tau := dc.YearFraction(d1, d2)
	if tau == 0 {
		return 0, fmt.Errorf("curve.ContinuousForward: empty period at %s: %w", d1.Format("2006-01-02"), market.ErrInconsistentSchedule)
	}
	df1, err := yc.DF(d1)
	if err != nil {
		return 0, err
	}
	df2, err := yc.DF(d2)
	if err != nil {
		return 0, err
	}
	return math.Log(df1/df2) / tau, nil
}

// SimpleForward is the simply compounded forward (D(d1)/D(d2) − 1)/τ.
func SimpleForward(yc YieldCurve, dc daycount.DayCounter, d1, d2 time.Time) (float64, error) {
	tau := dc.YearFraction(d1, d2)
	if tau == 0 {
		return 0, fmt.Errorf("curve.SimpleForward: empty period at %s: %w", d1.Format("2006-01-02"), market.ErrInconsistentSchedule)
	}
	df1, err := yc.DF(d1)
	if err != nil {
		return 0, err
	}
	df2, err := yc.DF(d2)
	if err != nil {
		return 0, err
	}
	return (df1/df2 - 1) / tau, nil
}
