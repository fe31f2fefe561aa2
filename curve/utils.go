package curve

import (
	"sort"
	"time"
)

// binarySearchDate finds the index of the first date >= target using binary search.
// Returns len(dates) if all dates are before target.
func binarySearchDate(dates []time.Time, target time.Time) int {
	return sort.Search(len(dates), func(i int) bool {
		return !dates[i].Before(target)
	})
}
