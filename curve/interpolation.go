package curve

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/interp"

	"github.com/meenmo/termstruct/market"
)

// Interpolation selects the scheme applied to log discount factors.
type Interpolation int

const (
	// LogCubic is a monotone (Fritsch-Butland) cubic on log D(t). It never overshoots,
	// so non-increasing nodes never produce negative forwards between them.
	LogCubic Interpolation = iota
	// LogLinear is linear on log D(t), i.e. piecewise flat forwards.
	LogLinear
)

func (i Interpolation) String() string {
	switch i {
	case LogCubic:
		return "LOG_CUBIC"
	case LogLinear:
		return "LOG_LINEAR"
	default:
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
}

// ParseInterpolation accepts LOG_CUBIC / LOG_LINEAR in any case, with or without
// separators.
func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToUpper(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)) {
	case "LOGCUBIC", "MONOTONICLOGCUBIC":
		return LogCubic, nil
	case "LOGLINEAR":
		return LogLinear, nil
	}
	return LogCubic, fmt.Errorf("curve.ParseInterpolation: %q: %w", s, market.ErrInvalidConvention)
}

type predictor interface {
	Predict(x float64) float64
}

func newPredictor(kind Interpolation, xs, ys []float64) (predictor, error) {
	switch kind {
	case LogCubic:
		var fb interp.FritschButland
		if err := fb.Fit(xs, ys); err != nil {
			return nil, err
		}
		return &fb, nil
	case LogLinear:
		var pl interp.PiecewiseLinear
		if err := pl.Fit(xs, ys); err != nil {
			return nil, err
		}
		return &pl, nil
	default:
		return nil, fmt.Errorf("interpolation %s: %w", kind, market.ErrInvalidConvention)
	}
}
