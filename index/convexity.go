package index

// ConvexityModel returns the correction added to a forward rate to obtain the expected
// fixing. fixingTime and endTime are year fractions from the evaluation date to the
// fixing date and to the end of the index period.
type ConvexityModel interface {
	Adjustment(forward, fixingTime, endTime float64) float64
}

// NoConvexity never adjusts.
type NoConvexity struct{}

func (NoConvexity) Adjustment(_, _, _ float64) float64 { return 0 }

// HoLeeConvexity is the Ho-Lee futures/forward correction ½σ²·t_fix·t_end for a
// normal short-rate volatility σ.
type HoLeeConvexity struct {
	Volatility float64
}

func (m HoLeeConvexity) Adjustment(_, fixingTime, endTime float64) float64 {
	if fixingTime <= 0 {
		return 0
	}
	return 0.5 * m.Volatility * m.Volatility * fixingTime * endTime
}
