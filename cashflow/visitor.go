package cashflow

// Visitor is any value implementing one or more of the capability interfaces below.
// Accept dispatches to the most specific one the visitor implements and skips the
// element when none applies.
type Visitor any

type CashflowVisitor interface {
	VisitCashflow(Cashflow)
}

type CouponVisitor interface {
	VisitCoupon(Coupon)
}

type FixedRateCouponVisitor interface {
	VisitFixedRateCoupon(*FixedRateCoupon)
}

type FloatingRateCouponVisitor interface {
	VisitFloatingRateCoupon(*FloatingRateCoupon)
}

type OvernightIndexedCouponVisitor interface {
	VisitOvernightIndexedCoupon(*OvernightIndexedCoupon)
}

// acceptCoupon is the fallback chain shared by every coupon kind.
func acceptCoupon(c Coupon, v Visitor) {
	if cv, ok := v.(CouponVisitor); ok {
		cv.VisitCoupon(c)
		return
	}
	if cv, ok := v.(CashflowVisitor); ok {
		cv.VisitCashflow(c)
	}
}
