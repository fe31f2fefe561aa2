// Package marketdata keeps ticker quotes and loads market snapshots from YAML files.
package marketdata

import (
	"sort"
	"sync"

	"github.com/meenmo/termstruct/quote"
)

// Store maps tickers to settable quotes. Asking for an unknown ticker creates its quote
// at zero, so helpers can be wired before prices arrive.
type Store struct {
	mu     sync.Mutex
	quotes map[string]*quote.SimpleQuote
}

// NewStore seeds a store with prices.
func NewStore(prices map[string]float64) *Store {
	s := &Store{quotes: make(map[string]*quote.SimpleQuote, len(prices))}
	for ticker, price := range prices {
		s.quotes[ticker] = quote.NewSimple(price)
	}
	return s
}

// Quote returns the quote for ticker, creating it at zero when missing.
func (s *Store) Quote(ticker string) *quote.SimpleQuote {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[ticker]
	if !ok {
		q = quote.NewSimple(0)
		s.quotes[ticker] = q
	}
	return q
}

// DerivedQuote reads ticker divided by divisor, e.g. 100 for quotes in percent.
func (s *Store) DerivedQuote(ticker string, divisor float64) *quote.DerivedQuote {
	return quote.NewDerived(s.Quote(ticker), quote.DivideBy(divisor))
}

// Set updates ticker and returns the change from its previous value.
func (s *Store) Set(ticker string, price float64) float64 {
	return s.Quote(ticker).SetValue(price)
}

// Has reports whether ticker was priced or requested.
func (s *Store) Has(ticker string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.quotes[ticker]
	return ok
}

// Tickers returns the known tickers in sorted order.
func (s *Store) Tickers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.quotes))
	for t := range s.quotes {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Snapshot copies the current prices.
func (s *Store) Snapshot() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.quotes))
	for t, q := range s.quotes {
		out[t] = q.Value()
	}
	return out
}
