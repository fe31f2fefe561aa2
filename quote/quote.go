// Package quote holds observable market levels that rate helpers read at every
// evaluation.
package quote

import (
	"math"
	"sync"
)

// Quote is an observable market level. Version changes whenever the value may have
// changed, so dependants can detect staleness without callbacks.
type Quote interface {
	Value() float64
	Version() uint64
}

// SimpleQuote is a settable quote, safe for concurrent use.
type SimpleQuote struct {
	mu      sync.RWMutex
	value   float64
	version uint64
}

// NewSimple returns a quote holding v.
func NewSimple(v float64) *SimpleQuote {
	return &SimpleQuote{value: v}
}

func (q *SimpleQuote) Value() float64 {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.value
}

func (q *SimpleQuote) Version() uint64 {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.version
}

// SetValue stores v and returns the change from the previous value. The version is
// bumped only when the value actually changes.
func (q *SimpleQuote) SetValue(v float64) float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	diff := v - q.value
	if diff != 0 || (math.IsNaN(v) != math.IsNaN(q.value)) {
		q.value = v
		q.version++
	}
	return diff
}

// DerivedQuote applies a transform to an underlying quote on every read.
type DerivedQuote struct {
	underlying Quote
	f          func(float64) float64
}

// NewDerived returns a quote whose value is always f(underlying.Value()).
func NewDerived(underlying Quote, f func(float64) float64) *DerivedQuote {
	return &DerivedQuote{underlying: underlying, f: f}
}

func (q *DerivedQuote) Value() float64 {
	return q.f(q.underlying.Value())
}

// Version forwards the underlying version.
func (q *DerivedQuote) Version() uint64 {
	return q.underlying.Version()
}

// DivideBy returns x -> x/n, e.g. DivideBy(100) turns a percent level into a decimal rate.
func DivideBy(n float64) func(float64) float64 {
	return func(x float64) float64 { return x / n }
}
