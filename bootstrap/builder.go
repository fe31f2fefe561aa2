package bootstrap

import (
	"sync"

	"github.com/meenmo/termstruct/curve"
)

// CurveBuilder rebuilds a curve from fixed helpers whenever their quotes move, and
// publishes each new curve through one handle.
type CurveBuilder struct {
	mu       sync.Mutex
	params   CurveParams
	handle   *curve.Handle
	current  *PiecewiseCurve
	versions []uint64
}

// NewCurveBuilder keeps params; nothing is built until Rebuild.
func NewCurveBuilder(p CurveParams) *CurveBuilder {
	p.Helpers = append([]RateHelper(nil), p.Helpers...)
	return &CurveBuilder{params: p, handle: curve.NewHandle(nil)}
}

// Handle is linked to the latest successful build.
func (b *CurveBuilder) Handle() *curve.Handle { return b.handle }

// Curve returns the latest successful build, or nil.
func (b *CurveBuilder) Curve() *PiecewiseCurve {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Rebuild bootstraps from the current quotes. On failure the handle and the helpers
// keep the previous curve.
func (b *CurveBuilder) Rebuild() (*PiecewiseCurve, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	versions := b.quoteVersions()
	pc, err := Bootstrap(b.params)
	if err != nil {
		if b.current != nil {
			for _, h := range b.params.Helpers {
				if h != nil {
					h.SetTermStructure(b.current.Curve)
				}
			}
		}
		return nil, err
	}
	b.current = pc
	b.versions = versions
	b.handle.LinkTo(pc)
	return pc, nil
}

// Stale reports whether a quote changed since the last successful build. A builder
// that never built is stale.
func (b *CurveBuilder) Stale() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return true
	}
	for i, v := range b.quoteVersions() {
		if v != b.versions[i] {
			return true
		}
	}
	return false
}

func (b *CurveBuilder) quoteVersions() []uint64 {
	versions := make([]uint64, len(b.params.Helpers))
	for i, h := range b.params.Helpers {
		if h != nil && h.Quote() != nil {
			versions[i] = h.Quote().Version()
		}
	}
	return versions
}
