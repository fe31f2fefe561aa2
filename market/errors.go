package market

import "errors"

// Error kinds surfaced by the curve and cashflow packages. Callers match them with
// errors.Is; every package wraps them with call-site context.
var (
	// ErrInvalidConvention is returned for unsupported day-count, tenor, frequency or
	// business-day-convention strings.
	ErrInvalidConvention = errors.New("invalid convention")

	// ErrDuplicatePillar is returned when two rate helpers resolve to the same pillar date.
	ErrDuplicatePillar = errors.New("duplicate pillar")

	// ErrBootstrapNonConvergence is returned when the root solver cannot bracket or
	// converge on a pillar discount factor.
	ErrBootstrapNonConvergence = errors.New("bootstrap did not converge")

	// ErrMissingFixing is returned when a historical index fixing is required but absent.
	ErrMissingFixing = errors.New("missing fixing")

	// ErrExtrapolationDisallowed is returned for curve queries outside the node range
	// when extrapolation has not been enabled.
	ErrExtrapolationDisallowed = errors.New("extrapolation disallowed")

	// ErrInconsistentSchedule is returned for schedules with fewer than two dates or
	// non-increasing dates, and for coupons whose accrual end precedes the start.
	ErrInconsistentSchedule = errors.New("inconsistent schedule")

	// ErrInvalidHelper is returned for rate helpers with unusable parameters.
	ErrInvalidHelper = errors.New("invalid rate helper")

	// ErrInvalidCurve is returned when curve nodes are malformed.
	ErrInvalidCurve = errors.New("invalid curve")

	// ErrInvalidFixingDate is returned when an index is asked for a fixing on a
	// non-business day of its fixing calendar.
	ErrInvalidFixingDate = errors.New("invalid fixing date")

	// ErrNilCurve is returned when a required curve or handle is nil or empty.
	ErrNilCurve = errors.New("nil curve")
)
