package market

import "time"

// EvaluationContext scopes every date-relative computation of a run: fixing-date
// comparisons, curve reference dates and helper date generation.
//
// It is passed explicitly instead of living in a process-wide setting, so two curves
// can be built concurrently for different evaluation dates.
type EvaluationContext struct {
	EvaluationDate time.Time
}

// NewEvaluationContext normalises date to UTC midnight.
func NewEvaluationContext(date time.Time) EvaluationContext {
	return EvaluationContext{EvaluationDate: Normalize(date)}
}

// Today returns the evaluation date.
func (c EvaluationContext) Today() time.Time {
	return c.EvaluationDate
}

// IsZero reports whether no evaluation date was set.
func (c EvaluationContext) IsZero() bool {
	return c.EvaluationDate.IsZero()
}

// Normalize truncates t to a calendar day in UTC.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
