package cashflow

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/market"
)

const basisPoint = 1e-4

// counts reports whether a flow paid on d is still alive at settlement.
func counts(d, settlement time.Time, includeSettlementFlows bool) bool {
	if includeSettlementFlows {
		return !d.Before(settlement)
	}
	return d.After(settlement)
}

// NPV is Σ amount·D(payment date) over the flows paid after settlement, discounted to
// the curve reference date.
func NPV(leg Leg, discount curve.YieldCurve, settlement time.Time, includeSettlementFlows bool) (float64, error) {
	if discount == nil {
		return 0, fmt.Errorf("NPV: %w", market.ErrNilCurve)
	}
	amounts := make([]float64, 0, len(leg))
	dfs := make([]float64, 0, len(leg))
	for _, cf := range leg {
		if !counts(cf.Date(), settlement, includeSettlementFlows) {
			continue
		}
		a, err := cf.Amount()
		if err != nil {
			return 0, fmt.Errorf("NPV: %w", err)
		}
		df, err := discount.DF(cf.Date())
		if err != nil {
			return 0, fmt.Errorf("NPV: %w", err)
		}
		amounts = append(amounts, a)
		dfs = append(dfs, df)
	}
	return floats.Dot(amounts, dfs), nil
}

// BPS is the value of one basis point of coupon rate: Σ N·τ·D(payment)·1e-4 over the
// coupons paid after settlement.
func BPS(leg Leg, discount curve.YieldCurve, settlement time.Time, includeSettlementFlows bool) (float64, error) {
	if discount == nil {
		return 0, fmt.Errorf("BPS: %w", market.ErrNilCurve)
	}
	var weights, dfs []float64
	for _, cf := range leg {
		c, ok := cf.(Coupon)
		if !ok || !counts(cf.Date(), settlement, includeSettlementFlows) {
			continue
		}
		df, err := discount.DF(c.Date())
		if err != nil {
			return 0, fmt.Errorf("BPS: %w", err)
		}
		weights = append(weights, c.Nominal()*c.AccrualPeriod())
		dfs = append(dfs, df)
	}
	if len(weights) == 0 {
		return 0, nil
	}
	return floats.Dot(weights, dfs) * basisPoint, nil
}

// AccruedAmount sums the interest accrued at d by coupons that started before d and
// are paid after it.
func AccruedAmount(leg Leg, d time.Time) (float64, error) {
	var accrued []float64
	for _, cf := range leg {
		c, ok := cf.(Coupon)
		if !ok || !c.AccrualStartDate().Before(d) || !c.Date().After(d) {
			continue
		}
		a, err := c.AccruedAmount(d)
		if err != nil {
			return 0, fmt.Errorf("AccruedAmount: %w", err)
		}
		accrued = append(accrued, a)
	}
	if len(accrued) == 0 {
		return 0, nil
	}
	return floats.Sum(accrued), nil
}

// Row is one line of a cashflow table. Coupon fields are zero for plain cashflows and
// discount fields are zero when no curve is given.
type Row struct {
	Kind          string    `json:"kind"`
	PaymentDate   time.Time `json:"payment_date"`
	AccrualStart  time.Time `json:"accrual_start"`
	AccrualEnd    time.Time `json:"accrual_end"`
	Nominal       float64   `json:"nominal,omitempty"`
	Rate          float64   `json:"rate,omitempty"`
	AccrualPeriod float64   `json:"accrual_period,omitempty"`
	Amount        float64   `json:"amount"`
	DF            float64   `json:"df,omitempty"`
	PV            float64   `json:"pv,omitempty"`
}

// kindVisitor labels each flow with its most specific type.
type kindVisitor struct{ kind string }

func (v *kindVisitor) VisitCashflow(Cashflow)                              { v.kind = "cashflow" }
func (v *kindVisitor) VisitCoupon(Coupon)                                  { v.kind = "coupon" }
func (v *kindVisitor) VisitFixedRateCoupon(*FixedRateCoupon)               { v.kind = "fixed" }
func (v *kindVisitor) VisitFloatingRateCoupon(*FloatingRateCoupon)         { v.kind = "floating" }
func (v *kindVisitor) VisitOvernightIndexedCoupon(*OvernightIndexedCoupon) { v.kind = "overnight" }

// Table lists every flow of the leg. discount may be nil.
func Table(leg Leg, discount curve.YieldCurve) ([]Row, error) {
	rows := make([]Row, 0, len(leg))
	for _, cf := range leg {
		kv := &kindVisitor{}
		cf.Accept(kv)
		amount, err := cf.Amount()
		if err != nil {
			return nil, fmt.Errorf("Table: %w", err)
		}
		row := Row{Kind: kv.kind, PaymentDate: cf.Date(), Amount: amount}
		if c, ok := cf.(Coupon); ok {
			rate, err := c.Rate()
			if err != nil {
				return nil, fmt.Errorf("Table: %w", err)
			}
			row.AccrualStart = c.AccrualStartDate()
			row.AccrualEnd = c.AccrualEndDate()
			row.Nominal = c.Nominal()
			row.Rate = rate
			row.AccrualPeriod = c.AccrualPeriod()
		}
		if discount != nil {
			df, err := discount.DF(cf.Date())
			if err != nil {
				return nil, fmt.Errorf("Table: %w", err)
			}
			row.DF = df
			row.PV = df * amount
		}
		rows = append(rows, row)
	}
	return rows, nil
}
