package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/meenmo/termstruct/market"
)

// BusinessDayConvention rolls a non-business day onto a business day.
type BusinessDayConvention int

const (
	Following BusinessDayConvention = iota
	ModifiedFollowing
	Preceding
	ModifiedPreceding
	Unadjusted
	HalfMonthModifiedFollowing
	Nearest
)

var conventionNames = map[BusinessDayConvention]string{
	Following:                  "Following",
	ModifiedFollowing:          "ModifiedFollowing",
	Preceding:                  "Preceding",
	ModifiedPreceding:          "ModifiedPreceding",
	Unadjusted:                 "Unadjusted",
	HalfMonthModifiedFollowing: "HalfMonthModifiedFollowing",
	Nearest:                    "Nearest",
}

func (c BusinessDayConvention) String() string {
	if s, ok := conventionNames[c]; ok {
		return s
	}
	return fmt.Sprintf("BusinessDayConvention(%d)", int(c))
}

// ParseBusinessDayConvention accepts full names and the usual short forms (F, MF, P, MP, U).
func ParseBusinessDayConvention(s string) (BusinessDayConvention, error) {
	key := strings.ToUpper(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s))
	switch key {
	case "F", "FOLLOWING":
		return Following, nil
	case "MF", "MODIFIEDFOLLOWING":
		return ModifiedFollowing, nil
	case "P", "PRECEDING":
		return Preceding, nil
	case "MP", "MODIFIEDPRECEDING":
		return ModifiedPreceding, nil
	case "U", "NONE", "UNADJUSTED":
		return Unadjusted, nil
	case "HMMF", "HALFMONTHMODIFIEDFOLLOWING":
		return HalfMonthModifiedFollowing, nil
	case "N", "NEAREST":
		return Nearest, nil
	}
	return Unadjusted, fmt.Errorf("ParseBusinessDayConvention: %q: %w", s, market.ErrInvalidConvention)
}

// Adjust rolls t according to conv.
func (c Calendar) Adjust(t time.Time, conv BusinessDayConvention) time.Time {
	switch conv {
	case Unadjusted:
		return t
	case Following:
		return c.following(t)
	case Preceding:
		return c.preceding(t)
	case ModifiedFollowing, HalfMonthModifiedFollowing:
		d := c.following(t)
		if d.Month() != t.Month() {
			return c.preceding(t)
		}
		if conv == HalfMonthModifiedFollowing && t.Day() <= 15 && d.Day() > 15 {
			return c.preceding(t)
		}
		return d
	case ModifiedPreceding:
		d := c.preceding(t)
		if d.Month() != t.Month() {
			return c.following(t)
		}
		return d
	case Nearest:
		fwd, bwd := t, t
		for !c.IsBusinessDay(fwd) && !c.IsBusinessDay(bwd) {
			fwd = fwd.AddDate(0, 0, 1)
			bwd = bwd.AddDate(0, 0, -1)
		}
		if c.IsBusinessDay(fwd) {
			return fwd
		}
		return bwd
	default:
		return t
	}
}

func (c Calendar) following(t time.Time) time.Time {
	for !c.IsBusinessDay(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func (c Calendar) preceding(t time.Time) time.Time {
	for !c.IsBusinessDay(t) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}
