package calendar

import (
	"fmt"
	"sync"
	"time"

	"github.com/meenmo/termstruct/market"
)

var (
	registryMu sync.RWMutex
	registry   = map[CalendarID]map[string]struct{}{}
)

var builtins = map[CalendarID]struct{}{TARGET: {}, FD: {}, CL: {}, NULL: {}, WE: {}}

// Register installs a holiday-list calendar under id. Weekends are always holidays of a
// registered calendar. Registering an existing ID replaces its list; built-in IDs cannot
// be overridden.
func Register(id CalendarID, holidays []time.Time) error {
	if _, ok := builtins[id]; ok {
		return fmt.Errorf("calendar.Register: %s is built in: %w", id, market.ErrInvalidConvention)
	}
	if id == "" {
		return fmt.Errorf("calendar.Register: empty id: %w", market.ErrInvalidConvention)
	}
	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		set[h.Format("2006-01-02")] = struct{}{}
	}
	registryMu.Lock()
	registry[id] = set
	registryMu.Unlock()
	return nil
}

// Known reports whether id is built in or registered.
func Known(id CalendarID) bool {
	if _, ok := builtins[id]; ok {
		return true
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[id]
	return ok
}

func isRegisteredHoliday(id CalendarID, t time.Time) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	set, ok := registry[id]
	if !ok {
		return false
	}
	_, hit := set[t.Format("2006-01-02")]
	return hit
}
