package bootstrap

import (
	"fmt"
	"math"

	"github.com/meenmo/termstruct/market"
)

const machineEpsilon = 2.220446049250313e-16

// brent finds a root of f inside [a, b] with Brent's method: inverse quadratic and
// secant steps, falling back to bisection whenever a step leaves the bracket or does
// not shrink it fast enough. f(a) and f(b) must differ in sign.
func brent(f func(float64) (float64, error), a, b, accuracy float64, maxIter int) (float64, int, error) {
	fa, err := f(a)
	if err != nil {
		return 0, 0, err
	}
	fb, err := f(b)
	if err != nil {
		return 0, 0, err
	}
	switch {
	case fa == 0:
		return a, 0, nil
	case fb == 0:
		return b, 0, nil
	case fa*fb > 0:
		return 0, 0, fmt.Errorf("root not bracketed in [%g, %g] (f = %g, %g): %w", a, b, fa, fb, market.ErrBootstrapNonConvergence)
	}

	c, fc := b, fb
	var d, e float64
	for i := 1; i <= maxIter; i++ {
		if (fb > 0 && fc > 0) || (fb < 0 && fc < 0) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}
		tol := 2*machineEpsilon*math.Abs(b) + 0.5*accuracy
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol || fb == 0 {
			return b, i, nil
		}

		if math.Abs(e) >= tol && math.Abs(fa) > math.Abs(fb) {
			s := fb / fa
			var p, q float64
			if a == c {
				p = 2 * xm * s
				q = 1 - s
			} else {
				q = fa / fc
				r := fb / fc
				p = s * (2*xm*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			if 2*p < math.Min(3*xm*q-math.Abs(tol*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}

		a, fa = b, fb
		if math.Abs(d) > tol {
			b += d
		} else {
			b += math.Copysign(tol, xm)
		}
		if fb, err = f(b); err != nil {
			return 0, i, err
		}
	}
	return 0, maxIter, fmt.Errorf("no convergence after %d iterations: %w", maxIter, market.ErrBootstrapNonConvergence)
}
