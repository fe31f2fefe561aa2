package bootstrap

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/config"
	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/daycount"
	"github.com/meenmo/termstruct/market"
	"github.com/meenmo/termstruct/utils"
)

// CurveParams configures a bootstrap.
type CurveParams struct {
	Context        market.EvaluationContext
	SettlementDays int
	Calendar       calendar.Calendar
	// DayCounter is the curve time axis; nil uses the configured CurveDayCount.
	DayCounter         *daycount.DayCounter
	Helpers            []RateHelper
	Interpolation      curve.Interpolation
	AllowExtrapolation bool
	// Config nil uses config.GetConfig().
	Config *config.Config
	// Logger nil discards.
	Logger *zerolog.Logger
}

// PiecewiseCurve is a discount curve whose nodes reprice every helper.
type PiecewiseCurve struct {
	*curve.Curve
	helpers []RateHelper
	passes  int
}

// Helpers returns the helpers sorted by pillar date.
func (pc *PiecewiseCurve) Helpers() []RateHelper {
	return append([]RateHelper(nil), pc.helpers...)
}

// Passes is the number of full re-solve passes after the sequential one.
func (pc *PiecewiseCurve) Passes() int { return pc.passes }

// PillarDates returns the solved node dates, without the reference date.
func (pc *PiecewiseCurve) PillarDates() []time.Time {
	return pc.Dates()[1:]
}

// bootstrapper carries the working node set through the passes.
type bootstrapper struct {
	ref     time.Time
	cfg     config.Config
	opts    curve.Options
	helpers []RateHelper
	dates   []time.Time
	dfs     []float64
	times   []float64
	log     zerolog.Logger
}

// Bootstrap solves one discount factor per helper pillar so that every helper's
// QuoteError is zero on the resulting curve.
//
// Pillars are solved in date order with Brent's method. Since the log-cubic scheme is
// not local, complete passes over all pillars follow until no discount factor moves by
// more than the configured tolerance.
func Bootstrap(p CurveParams) (*PiecewiseCurve, error) {
	cfg := config.GetConfig()
	if p.Config != nil {
		cfg = *p.Config
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("Bootstrap: %w", err)
	}
	log := zerolog.Nop()
	if p.Logger != nil {
		log = *p.Logger
	}
	if p.Context.IsZero() {
		return nil, fmt.Errorf("Bootstrap: evaluation date not set: %w", market.ErrInvalidHelper)
	}
	if len(p.Helpers) == 0 {
		return nil, fmt.Errorf("Bootstrap: no rate helpers: %w", market.ErrInvalidHelper)
	}

	dc := p.DayCounter
	if dc == nil {
		parsed, err := daycount.Parse(cfg.CurveDayCount)
		if err != nil {
			return nil, fmt.Errorf("Bootstrap: curve day count: %w", err)
		}
		dc = &parsed
	}

	ref := p.Calendar.Advance(p.Context.Today(), market.NewPeriod(p.SettlementDays, market.Days), calendar.Following, false)

	helpers, err := sortHelpers(ref, p.Helpers)
	if err != nil {
		return nil, err
	}

	b := &bootstrapper{
		ref: ref,
		cfg: cfg,
		opts: curve.Options{
			DayCounter:         *dc,
			Interpolation:      p.Interpolation,
			AllowExtrapolation: true,
		},
		helpers: helpers,
		dates:   make([]time.Time, len(helpers)+1),
		dfs:     make([]float64, len(helpers)+1),
		times:   make([]float64, len(helpers)+1),
		log:     log,
	}
	b.dates[0], b.dfs[0] = ref, 1
	for i, h := range helpers {
		b.dates[i+1] = h.PillarDate()
		b.times[i+1] = dc.YearFraction(ref, h.PillarDate())
	}

	start := time.Now()
	passes, err := b.run()
	if err != nil {
		b.unlink()
		return nil, err
	}

	opts := b.opts
	opts.AllowExtrapolation = p.AllowExtrapolation
	final, err := curve.New(ref, b.dates, b.dfs, opts)
	if err != nil {
		b.unlink()
		return nil, fmt.Errorf("Bootstrap: %w", err)
	}
	for _, h := range helpers {
		h.SetTermStructure(final)
	}

	log.Info().
		Str("reference_date", ref.Format(utils.DateLayout)).
		Int("pillars", len(helpers)).
		Int("passes", passes).
		Str("interpolation", p.Interpolation.String()).
		Dur("elapsed", time.Since(start)).
		Msg("curve bootstrapped")

	return &PiecewiseCurve{Curve: final, helpers: helpers, passes: passes}, nil
}

// sortHelpers orders a copy of the helpers by pillar and rejects duplicate or
// non-future pillars.
func sortHelpers(ref time.Time, in []RateHelper) ([]RateHelper, error) {
	helpers := append([]RateHelper(nil), in...)
	for i, h := range helpers {
		if h == nil {
			return nil, fmt.Errorf("Bootstrap: helper %d is nil: %w", i, market.ErrInvalidHelper)
		}
	}
	sort.SliceStable(helpers, func(i, j int) bool {
		return helpers[i].PillarDate().Before(helpers[j].PillarDate())
	})
	for i, h := range helpers {
		pillar := h.PillarDate()
		if !pillar.After(ref) {
			return nil, fmt.Errorf("Bootstrap: pillar %s not after reference date %s: %w",
				pillar.Format(utils.DateLayout), ref.Format(utils.DateLayout), market.ErrInvalidHelper)
		}
		if i > 0 && pillar.Equal(helpers[i-1].PillarDate()) {
			return nil, fmt.Errorf("Bootstrap: two helpers share pillar %s: %w", pillar.Format(utils.DateLayout), market.ErrDuplicatePillar)
		}
	}
	return helpers, nil
}

// run performs the sequential pass and then full passes until the nodes settle, and
// returns the number of full passes.
func (b *bootstrapper) run() (int, error) {
	if err := b.sequentialPass(); err != nil {
		return 0, err
	}
	passes := 0
	for {
		passes++
		if passes > b.cfg.MaxBootstrapPasses {
			return 0, fmt.Errorf("Bootstrap: nodes still moving after %d passes: %w", b.cfg.MaxBootstrapPasses, market.ErrBootstrapNonConvergence)
		}
		change, err := b.fullPass(passes)
		if err != nil {
			return 0, err
		}
		if change < b.cfg.ConvergenceTolerance {
			return passes, nil
		}
	}
}

// unlink detaches the helpers from the last candidate curve of a failed build.
func (b *bootstrapper) unlink() {
	for _, h := range b.helpers {
		h.SetTermStructure(nil)
	}
}

// sequentialPass solves pillar i on the nodes 0..i, extrapolating past it.
func (b *bootstrapper) sequentialPass() error {
	for i := range b.helpers {
		n := i + 2
		df, iters, err := b.solve(i, n)
		if err != nil {
			return err
		}
		b.dfs[i+1] = df
		b.logPillar(i, 0, iters)
	}
	return nil
}

// fullPass re-solves every pillar against the complete node set and returns the
// largest absolute change in a discount factor.
func (b *bootstrapper) fullPass(pass int) (float64, error) {
	var change float64
	for i := range b.helpers {
		old := b.dfs[i+1]
		df, iters, err := b.solve(i, len(b.dates))
		if err != nil {
			return 0, err
		}
		b.dfs[i+1] = df
		change = math.Max(change, math.Abs(df-old))
		b.logPillar(i, pass, iters)
	}
	return change, nil
}

// solve finds D(t_{i+1}) on the first n nodes. The bracket keeps the forward from the
// previous node within [MinForwardRate, MaxForwardRate].
func (b *bootstrapper) solve(i, n int) (float64, int, error) {
	h := b.helpers[i]
	prev := b.dfs[i]
	dt := b.times[i+1] - b.times[i]
	lo := prev * math.Exp(-b.cfg.MaxForwardRate*dt)
	hi := prev * math.Exp(-b.cfg.MinForwardRate*dt)

	dfs := append([]float64(nil), b.dfs[:n]...)
	residual := func(x float64) (float64, error) {
		dfs[i+1] = x
		candidate, err := curve.New(b.ref, b.dates[:n], dfs, b.opts)
		if err != nil {
			return 0, err
		}
		h.SetTermStructure(candidate)
		return h.QuoteError()
	}

	df, iters, err := brent(residual, lo, hi, b.cfg.ConvergenceTolerance*1e-2, b.cfg.MaxBootstrapIterations)
	if err != nil {
		return 0, iters, fmt.Errorf("Bootstrap: pillar %s: %w", h.PillarDate().Format(utils.DateLayout), err)
	}
	return df, iters, nil
}

func (b *bootstrapper) logPillar(i, pass, iters int) {
	b.log.Debug().
		Str("pillar", b.dates[i+1].Format(utils.DateLayout)).
		Float64("df", b.dfs[i+1]).
		Int("iterations", iters).
		Int("pass", pass).
		Msg("pillar solved")
}
