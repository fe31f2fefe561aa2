package bootstrap

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/termstruct/market"
)

func TestBrentFindsRoot(t *testing.T) {
	t.Parallel()

	f := func(x float64) (float64, error) { return x*x - 2, nil }
	root, iters, err := brent(f, 0, 2, 1e-14, 100)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, root, 1e-13)
	assert.Less(t, iters, 20)

	// Discount-factor shaped residual: solve exp(-r*5) for r = 3%.
	g := func(x float64) (float64, error) { return 0.03 + math.Log(x)/5, nil }
	root, _, err = brent(g, math.Exp(-2*5), math.Exp(0.05*5), 1e-14, 100)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-0.15), root, 1e-13)
}

func TestBrentEndpointRoot(t *testing.T) {
	t.Parallel()

	f := func(x float64) (float64, error) { return x - 1, nil }
	root, iters, err := brent(f, 1, 3, 1e-12, 100)
	require.NoError(t, err)
	assert.Equal(t, 1.0, root)
	assert.Zero(t, iters)
}

func TestBrentFailures(t *testing.T) {
	t.Parallel()

	t.Run("no bracket", func(t *testing.T) {
		f := func(x float64) (float64, error) { return x*x + 1, nil }
		_, _, err := brent(f, -1, 1, 1e-12, 100)
		assert.ErrorIs(t, err, market.ErrBootstrapNonConvergence)
	})

	t.Run("iteration bound", func(t *testing.T) {
		f := func(x float64) (float64, error) { return math.Exp(x) - 2, nil }
		_, iters, err := brent(f, 0, 1, 1e-14, 1)
		assert.ErrorIs(t, err, market.ErrBootstrapNonConvergence)
		assert.Equal(t, 1, iters)
	})

	t.Run("residual error", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		f := func(x float64) (float64, error) {
			calls++
			if calls > 2 {
				return 0, boom
			}
			return x - 0.5, nil
		}
		_, _, err := brent(f, 0, 3, 1e-14, 100)
		assert.ErrorIs(t, err, boom)
	})
}
