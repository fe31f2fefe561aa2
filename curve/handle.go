package curve

import (
	"fmt"
	"sync"
	"time"

	"github.com/meenmo/termstruct/market"
)

// Handle is a relinkable reference to a YieldCurve. Indices, coupons and rate helpers
// hold a Handle so that a rebuilt curve becomes visible to all of them with one LinkTo.
type Handle struct {
	mu      sync.RWMutex
	curve   YieldCurve
	version uint64
}

// NewHandle returns a handle linked to c, which may be nil.
func NewHandle(c YieldCurve) *Handle {
	return &Handle{curve: c}
}

// LinkTo swaps the target curve.
func (h *Handle) LinkTo(c YieldCurve) {
	h.mu.Lock()
	h.curve = c
	h.version++
	h.mu.Unlock()
}

// Current returns the linked curve, or nil.
func (h *Handle) Current() YieldCurve {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.curve
}

// Empty reports whether no curve is linked.
func (h *Handle) Empty() bool {
	return h.Current() == nil
}

// Version counts LinkTo calls.
func (h *Handle) Version() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.version
}

// DF reads through to the linked curve.
func (h *Handle) DF(t time.Time) (float64, error) {
	c := h.Current()
	if c == nil {
		return 0, fmt.Errorf("curve.Handle.DF: %w", market.ErrNilCurve)
	}
	return c.DF(t)
}

// ReferenceDate of the linked curve; zero when empty.
func (h *Handle) ReferenceDate() time.Time {
	if c := h.Current(); c != nil {
		return c.ReferenceDate()
	}
	return time.Time{}
}

// MaxDate of the linked curve; zero when empty.
func (h *Handle) MaxDate() time.Time {
	if c := h.Current(); c != nil {
		return c.MaxDate()
	}
	return time.Time{}
}
