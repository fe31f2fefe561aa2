package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/meenmo/termstruct/bootstrap"
	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/daycount"
	"github.com/meenmo/termstruct/index"
	"github.com/meenmo/termstruct/logger"
	"github.com/meenmo/termstruct/market"
	"github.com/meenmo/termstruct/marketdata"
	"github.com/meenmo/termstruct/utils"
)

var clpStrip = []struct{ tenor, ticker string }{
	{"3M", "CHSWPC Curncy"},
	{"6M", "CHSWPF Curncy"},
	{"9M", "CHSWPI Curncy"},
	{"1Y", "CHSWP1 Curncy"},
	{"18M", "CHSWP1F Curncy"},
	{"2Y", "CHSWP2 Curncy"},
	{"3Y", "CHSWP3 Curncy"},
	{"4Y", "CHSWP4 Curncy"},
	{"5Y", "CHSWP5 Curncy"},
	{"6Y", "CHSWP6 Curncy"},
	{"7Y", "CHSWP7 Curncy"},
	{"8Y", "CHSWP8 Curncy"},
	{"9Y", "CHSWP9 Curncy"},
	{"10Y", "CHSWP10 Curncy"},
	{"12Y", "CHSWP12 Curncy"},
	{"15Y", "CHSWP15 Curncy"},
	{"20Y", "CHSWP20 Curncy"},
}

func main() {
	log := logger.New(logger.Config{Level: "info", Pretty: true})

	store := marketdata.NewStore(map[string]float64{
		"CHSWP20 Curncy": 5.145,
		"CHSWP10 Curncy": 5.015,
		"CHSWP9 Curncy":  5.01,
		"CHSWP8 Curncy":  5.045,
		"CHSWP7 Curncy":  5.085,
		"CHSWP6 Curncy":  5.155,
		"CHSWP5 Curncy":  5.267,
		"CHSWP12 Curncy": 5.055,
		"CHSWP4 Curncy":  5.545,
		"CHSWP2 Curncy":  6.88,
		"CHSWP1F Curncy": 7.84,
		"CHSWP1 Curncy":  9.028,
		"CHSWPI Curncy":  9.755,
		"CHSWPF Curncy":  10.44,
		"CHSWPC Curncy":  10.995,
		"CHSWP3 Curncy":  6.015,
		"CHSWP15 Curncy": 5.075,
	})
	cal := calendar.Joint(calendar.JoinHolidays, calendar.FD, calendar.CL)
	dc := daycount.New(daycount.Actual360)

	for _, eval := range []time.Time{utils.Date(2023, 6, 15), utils.Date(2023, 6, 16), utils.Date(2023, 6, 20)} {
		ctx := market.NewEvaluationContext(eval)
		handle := curve.NewHandle(nil)
		clicp := index.NewCLICP(handle)
		// Camara fixes on the trade date, so today's print is needed before the curve can be built.
		if err := clicp.AddFixing(eval, 0.1125, true); err != nil {
			log.Fatal().Err(err).Msg("add fixing")
		}

		helpers := make([]bootstrap.RateHelper, 0, len(clpStrip))
		for _, s := range clpStrip {
			h, err := bootstrap.OisCLICP.Helper(ctx, market.MustParsePeriod(s.tenor), store.DerivedQuote(s.ticker, 100), clicp, nil)
			if err != nil {
				log.Fatal().Err(err).Str("tenor", s.tenor).Msg("build helper")
			}
			helpers = append(helpers, h)
		}

		pc, err := bootstrap.Bootstrap(bootstrap.CurveParams{
			Context:            ctx,
			SettlementDays:     0,
			Calendar:           cal,
			DayCounter:         &dc,
			Helpers:            helpers,
			Interpolation:      curve.LogCubic,
			AllowExtrapolation: true,
			Logger:             &log,
		})
		if err != nil {
			log.Error().Err(err).Time("eval", eval).Msg("bootstrap failed")
			os.Exit(1)
		}
		handle.LinkTo(pc)

		fmt.Printf("Evaluation Date: %s\n", eval.Format(utils.DateLayout))
		for _, d := range earliestDates(helpers) {
			fmt.Printf("    Helper Date: %s\n", d.Format(utils.DateLayout))
		}
		advanced := cal.Advance(eval, market.NewPeriod(2, market.Days), calendar.Following, false)
		fmt.Printf("    Calendar Advanced Date: %s\n", advanced.Format(utils.DateLayout))

		df, err := pc.DF(utils.Date(2033, 6, 15))
		if err != nil {
			log.Error().Err(err).Time("eval", eval).Msg("discount factor")
			os.Exit(1)
		}
		fmt.Printf("    10Y DF: %.10f (passes %d)\n", df, pc.Passes())
	}
}

func earliestDates(helpers []bootstrap.RateHelper) []time.Time {
	seen := make(map[time.Time]bool)
	var out []time.Time
	for _, h := range helpers {
		if d := h.EarliestDate(); !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
