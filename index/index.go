// Package index models interest-rate benchmarks: fixing histories and forecasts from
// a linked discount curve.
package index

import (
	"fmt"
	"time"

	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/daycount"
	"github.com/meenmo/termstruct/market"
)

// Params describes an index convention.
type Params struct {
	Name       string
	Tenor      market.Period // 1D for overnight indices
	FixingDays int
	Currency   string
	Calendar   calendar.Calendar
	Convention calendar.BusinessDayConvention
	EndOfMonth bool
	DayCounter daycount.DayCounter
	Overnight  bool
	Convexity  ConvexityModel
}

// Index is an interest-rate benchmark bound to a forecasting curve handle.
type Index struct {
	p       Params
	handle  *curve.Handle
	fixings *TimeSeries
}

// New returns an index forecasting from h. A nil h gives an index that can only
// return historical fixings.
func New(p Params, h *curve.Handle) *Index {
	if p.Convexity == nil {
		p.Convexity = NoConvexity{}
	}
	if p.Overnight {
		p.Tenor = market.NewPeriod(1, market.Days)
	}
	if h == nil {
		h = curve.NewHandle(nil)
	}
	return &Index{p: p, handle: h, fixings: NewTimeSeries()}
}

// NewOvernight returns an overnight index.
func NewOvernight(name string, fixingDays int, currency string, cal calendar.Calendar, dc daycount.DayCounter, h *curve.Handle) *Index {
	return New(Params{
		Name:       name,
		FixingDays: fixingDays,
		Currency:   currency,
		Calendar:   cal,
		Convention: calendar.Following,
		DayCounter: dc,
		Overnight:  true,
	}, h)
}

// Clone returns the same index bound to another handle. The fixing history is shared.
func (ix *Index) Clone(h *curve.Handle) *Index {
	if h == nil {
		h = curve.NewHandle(nil)
	}
	return &Index{p: ix.p, handle: h, fixings: ix.fixings}
}

func (ix *Index) Name() string                               { return ix.p.Name }
func (ix *Index) Tenor() market.Period                       { return ix.p.Tenor }
func (ix *Index) FixingDays() int                            { return ix.p.FixingDays }
func (ix *Index) Currency() string                           { return ix.p.Currency }
func (ix *Index) FixingCalendar() calendar.Calendar          { return ix.p.Calendar }
func (ix *Index) Convention() calendar.BusinessDayConvention { return ix.p.Convention }
func (ix *Index) EndOfMonth() bool                           { return ix.p.EndOfMonth }
func (ix *Index) DayCounter() daycount.DayCounter            { return ix.p.DayCounter }
func (ix *Index) IsOvernight() bool                          { return ix.p.Overnight }
func (ix *Index) Convexity() ConvexityModel                  { return ix.p.Convexity }

// Handle returns the forecasting curve handle.
func (ix *Index) Handle() *curve.Handle { return ix.handle }

// TimeSeries returns the shared fixing history.
func (ix *Index) TimeSeries() *TimeSeries { return ix.fixings }

// IsValidFixingDate reports whether d is a business day of the fixing calendar.
func (ix *Index) IsValidFixingDate(d time.Time) bool {
	return ix.p.Calendar.IsBusinessDay(d)
}

// FixingDate is the fixing date for an accrual starting on valueDate.
func (ix *Index) FixingDate(valueDate time.Time) time.Time {
	return ix.p.Calendar.Advance(valueDate, market.NewPeriod(-ix.p.FixingDays, market.Days), calendar.Following, false)
}

// ValueDate is the start of the period fixed on fixingDate.
func (ix *Index) ValueDate(fixingDate time.Time) time.Time {
	return ix.p.Calendar.Advance(fixingDate, market.NewPeriod(ix.p.FixingDays, market.Days), calendar.Following, false)
}

// MaturityDate is the end of the index period starting on valueDate.
func (ix *Index) MaturityDate(valueDate time.Time) time.Time {
	return ix.p.Calendar.Advance(valueDate, ix.p.Tenor, ix.p.Convention, ix.p.EndOfMonth)
}

// AddFixing records a historical fixing. Re-adding the stored value is a no-op.
func (ix *Index) AddFixing(fixingDate time.Time, rate float64, overwrite bool) error {
	if !ix.IsValidFixingDate(fixingDate) {
		return fmt.Errorf("%s.AddFixing: %s: %w", ix.p.Name, fixingDate.Format("2006-01-02"), market.ErrInvalidFixingDate)
	}
	if err := ix.fixings.Add(fixingDate, rate, overwrite); err != nil {
		return fmt.Errorf("%s.AddFixing: %w", ix.p.Name, err)
	}
	return nil
}

// LoadFixings copies every fixing the feed has between from and to. A fixing dated on
// a day the fixing calendar is closed fails with ErrInvalidFixingDate.
func (ix *Index) LoadFixings(feed ReferenceRateFeed, from, to time.Time) error {
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if r, ok := feed.RateOn(d); ok {
			if err := ix.AddFixing(d, r, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// PastFixing returns the stored fixing for fixingDate.
func (ix *Index) PastFixing(fixingDate time.Time) (float64, bool) {
	return ix.fixings.RateOn(fixingDate)
}

// Fixing returns the historical fixing when fixingDate is on or before the evaluation
// date, and the forecast otherwise.
func (ix *Index) Fixing(ctx market.EvaluationContext, fixingDate time.Time) (float64, error) {
	if !ix.IsValidFixingDate(fixingDate) {
		return 0, fmt.Errorf("%s.Fixing: %s: %w", ix.p.Name, fixingDate.Format("2006-01-02"), market.ErrInvalidFixingDate)
	}
	if !fixingDate.After(ctx.Today()) {
		if r, ok := ix.PastFixing(fixingDate); ok {
			return r, nil
		}
		return 0, fmt.Errorf("%s.Fixing: %s: %w", ix.p.Name, fixingDate.Format("2006-01-02"), market.ErrMissingFixing)
	}
	return ix.ForecastFixing(fixingDate)
}

// ForecastFixing is the simply compounded forward over the index period fixed on
// fixingDate, read from the linked curve.
func (ix *Index) ForecastFixing(fixingDate time.Time) (float64, error) {
	if ix.handle.Empty() {
		return 0, fmt.Errorf("%s.ForecastFixing: %w", ix.p.Name, market.ErrNilCurve)
	}
	start := ix.ValueDate(fixingDate)
	end := ix.MaturityDate(start)
	return ix.ForecastBetween(start, end)
}

// ForecastBetween is the simply compounded forward between two value dates on the
// index day counter.
func (ix *Index) ForecastBetween(start, end time.Time) (float64, error) {
	r, err := curve.SimpleForward(ix.handle, ix.p.DayCounter, start, end)
	if err != nil {
		return 0, fmt.Errorf("%s.ForecastFixing: %w", ix.p.Name, err)
	}
	return r, nil
}

func (ix *Index) String() string {
	if ix.p.Overnight {
		return ix.p.Name
	}
	return fmt.Sprintf("%s%s", ix.p.Name, ix.p.Tenor)
}
