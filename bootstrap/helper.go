// Package bootstrap builds discount curves that reprice a set of quoted instruments.
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/market"
	"github.com/meenmo/termstruct/quote"
)

// RateHelper turns one market quote into a calibration constraint on the curve.
//
// The helper reads the curve under construction through SetTermStructure; it never
// owns it. The quote is read on every ImpliedQuote call.
type RateHelper interface {
	Quote() quote.Quote
	EarliestDate() time.Time
	MaturityDate() time.Time
	LatestRelevantDate() time.Time
	// PillarDate is the node the bootstrapper solves for this helper.
	PillarDate() time.Time
	// ImpliedQuote is the quote the linked curve reprices the instrument at.
	ImpliedQuote() (float64, error)
	// QuoteError is the market quote minus the implied quote.
	QuoteError() (float64, error)
	SetTermStructure(yc curve.YieldCurve)
}

// Pillar selects the node date of a helper.
type Pillar int

const (
	// PillarLastRelevantDate is the last date whose discount factor the helper reads.
	PillarLastRelevantDate Pillar = iota
	PillarMaturityDate
	PillarCustomDate
)

func (p Pillar) String() string {
	switch p {
	case PillarMaturityDate:
		return "MaturityDate"
	case PillarCustomDate:
		return "CustomDate"
	default:
		return "LastRelevantDate"
	}
}

// ParsePillar accepts the names above, case-insensitively; "" is LastRelevantDate.
func ParsePillar(s string) (Pillar, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "LASTRELEVANTDATE", "LAST_RELEVANT_DATE":
		return PillarLastRelevantDate, nil
	case "MATURITYDATE", "MATURITY_DATE", "MATURITY":
		return PillarMaturityDate, nil
	case "CUSTOMDATE", "CUSTOM_DATE", "CUSTOM":
		return PillarCustomDate, nil
	}
	return PillarLastRelevantDate, fmt.Errorf("ParsePillar: %q: %w", s, market.ErrInvalidConvention)
}

// helperBase holds the dates and the private curve handle common to every helper.
type helperBase struct {
	quote    quote.Quote
	handle   *curve.Handle
	earliest time.Time
	maturity time.Time
	latest   time.Time
	pillar   time.Time
}

func (h *helperBase) Quote() quote.Quote            { return h.quote }
func (h *helperBase) EarliestDate() time.Time       { return h.earliest }
func (h *helperBase) MaturityDate() time.Time       { return h.maturity }
func (h *helperBase) LatestRelevantDate() time.Time { return h.latest }
func (h *helperBase) PillarDate() time.Time         { return h.pillar }

// SetTermStructure relinks the helper's private handle.
func (h *helperBase) SetTermStructure(yc curve.YieldCurve) {
	h.handle.LinkTo(yc)
}

// choosePillar applies the pillar policy once latest and maturity are known.
func (h *helperBase) choosePillar(p Pillar, custom time.Time) error {
	switch p {
	case PillarMaturityDate:
		h.pillar = h.maturity
	case PillarCustomDate:
		if custom.IsZero() {
			return fmt.Errorf("custom pillar without a date: %w", market.ErrInvalidConvention)
		}
		if custom.Before(h.earliest) || custom.After(h.latest) {
			return fmt.Errorf("custom pillar %s outside [%s, %s]: %w", custom.Format("2006-01-02"),
				h.earliest.Format("2006-01-02"), h.latest.Format("2006-01-02"), market.ErrInvalidHelper)
		}
		h.pillar = custom
	default:
		h.pillar = h.latest
	}
	return nil
}
