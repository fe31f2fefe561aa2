package fixedleg

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/cashflow"
	"github.com/meenmo/termstruct/config"
	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/daycount"
	"github.com/meenmo/termstruct/market"
	"github.com/meenmo/termstruct/schedule"
	"github.com/meenmo/termstruct/utils"
)

// Input defines the JSON/YAML input schema for a fixed-rate leg.
//
// Conventions:
// - rate and discount_rate are decimals (0.05 means 5%)
// - dates are accrual boundaries; payments follow calendar, convention and payment_lag
type Input struct {
	Dates       []string `yaml:"dates"`
	Notional    float64  `yaml:"notional"`
	Rate        float64  `yaml:"rate"`
	DayCount    string   `yaml:"day_count"`   // default ACT/360
	Compounding string   `yaml:"compounding"` // default Simple
	Frequency   string   `yaml:"frequency"`   // needed by compounded rates; default Annual

	Calendar   string `yaml:"calendar"`   // default NULL
	Convention string `yaml:"convention"` // payment adjustment; default Unadjusted
	PaymentLag int    `yaml:"payment_lag"`

	AccrualDate     string   `yaml:"accrual_date"`      // optional: accrued amount as of this date
	MinorUnitPlaces *int32   `yaml:"minor_unit_places"` // default from config
	DiscountRate    *float64 `yaml:"discount_rate"`     // optional flat continuous ACT/365F rate
	ValuationDate   string   `yaml:"valuation_date"`    // discount curve reference; default first date
}

type Output struct {
	Coupons []Coupon `json:"coupons"`
	Total   string   `json:"total"`
	Accrued *float64 `json:"accrued,omitempty"`
	NPV     *float64 `json:"npv,omitempty"`
}

type Coupon struct {
	PaymentDate   string  `json:"payment_date"`
	AccrualStart  string  `json:"accrual_start"`
	AccrualEnd    string  `json:"accrual_end"`
	AccrualPeriod float64 `json:"accrual_period"`
	Amount        float64 `json:"amount"`
	AmountText    string  `json:"amount_text"`
	MinorUnits    int64   `json:"minor_units"`
	DF            float64 `json:"df,omitempty"`
	PV            float64 `json:"pv,omitempty"`
}

type errorOutput struct {
	Error string `json:"error"`
}

func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("leg", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inputPath := fs.String("input", "", "JSON or YAML input path (optional; if set, ignores stdin)")
	help := fs.Bool("h", false, "Show help")
	fs.BoolVar(help, "help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *help {
		usage(stderr)
		return 0
	}

	path := strings.TrimSpace(*inputPath)
	if path == "" {
		if f, ok := stdin.(*os.File); ok {
			if stat, err := f.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
				usage(stderr)
				return 2
			}
		}
	}

	inputBytes, err := readInput(stdin, path)
	if err != nil {
		return writeError(stdout, fmt.Sprintf("failed to read input: %v", err))
	}

	var input Input
	if err := yaml.Unmarshal(inputBytes, &input); err != nil {
		return writeError(stdout, fmt.Sprintf("failed to parse input: %v", err))
	}

	output, err := buildLeg(input, config.GetConfig())
	if err != nil {
		return writeError(stdout, err.Error())
	}

	outputBytes, _ := json.Marshal(output)
	fmt.Fprintln(stdout, string(outputBytes))
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  termcurve leg < input.yaml")
	fmt.Fprintln(w, "  termcurve leg -input /path/to/input.json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Read accrual dates and a fixed rate, output coupon amounts as JSON.")
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(stdin)
}

func writeError(stdout io.Writer, msg string) int {
	outputBytes, _ := json.Marshal(errorOutput{Error: msg})
	fmt.Fprintln(stdout, string(outputBytes))
	return 1
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func buildLeg(input Input, cfg config.Config) (*Output, error) {
	if input.Notional == 0 {
		return nil, fmt.Errorf("notional is required")
	}
	dates := make([]time.Time, len(input.Dates))
	for i, s := range input.Dates {
		d, err := utils.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("invalid dates[%d]: %v", i, err)
		}
		dates[i] = d
	}

	dc, err := daycount.Parse(orDefault(input.DayCount, "ACT/360"))
	if err != nil {
		return nil, fmt.Errorf("invalid day_count: %w", err)
	}
	comp, err := cashflow.ParseCompounding(orDefault(input.Compounding, "Simple"))
	if err != nil {
		return nil, fmt.Errorf("invalid compounding: %w", err)
	}
	freq, err := market.ParseFrequency(orDefault(input.Frequency, "Annual"))
	if err != nil {
		return nil, fmt.Errorf("invalid frequency: %w", err)
	}
	cal, err := calendar.Parse(orDefault(input.Calendar, "NULL"))
	if err != nil {
		return nil, fmt.Errorf("invalid calendar: %w", err)
	}
	conv, err := calendar.ParseBusinessDayConvention(orDefault(input.Convention, "Unadjusted"))
	if err != nil {
		return nil, fmt.Errorf("invalid convention: %w", err)
	}
	places := cfg.MinorUnitPlaces
	if input.MinorUnitPlaces != nil {
		places = *input.MinorUnitPlaces
	}

	sch, err := schedule.FromDates(dates, cal, conv)
	if err != nil {
		return nil, err
	}
	leg, err := cashflow.FixedRateLeg(cashflow.FixedRateLegParams{
		Schedule:    sch,
		Notionals:   []float64{input.Notional},
		CouponRates: []float64{input.Rate},
		DayCounter:  dc,
		Compounding: comp,
		Frequency:   freq,
		Payment:     cashflow.Payment{Convention: conv, Lag: input.PaymentLag},
	})
	if err != nil {
		return nil, err
	}

	var discount curve.YieldCurve
	if input.DiscountRate != nil {
		ref := dates[0]
		if input.ValuationDate != "" {
			if ref, err = utils.ParseDate(input.ValuationDate); err != nil {
				return nil, fmt.Errorf("invalid valuation_date: %v", err)
			}
		}
		discount = curve.NewFlatForward(ref, *input.DiscountRate, daycount.New(daycount.Actual365Fixed))
	}

	rows, err := cashflow.Table(leg, discount)
	if err != nil {
		return nil, err
	}
	minor, err := cashflow.ToMinorUnits(leg, places)
	if err != nil {
		return nil, err
	}

	out := &Output{Coupons: make([]Coupon, len(rows))}
	total := decimal.Zero
	for i, r := range rows {
		out.Coupons[i] = Coupon{
			PaymentDate:   r.PaymentDate.Format(utils.DateLayout),
			AccrualStart:  r.AccrualStart.Format(utils.DateLayout),
			AccrualEnd:    r.AccrualEnd.Format(utils.DateLayout),
			AccrualPeriod: r.AccrualPeriod,
			Amount:        r.Amount,
			AmountText:    minor[i].String(places),
			MinorUnits:    minor[i].Units,
			DF:            r.DF,
			PV:            r.PV,
		}
		total = total.Add(minor[i].Amount)
	}
	out.Total = total.StringFixed(places)

	if input.AccrualDate != "" {
		d, err := utils.ParseDate(input.AccrualDate)
		if err != nil {
			return nil, fmt.Errorf("invalid accrual_date: %v", err)
		}
		accrued, err := cashflow.AccruedAmount(leg, d)
		if err != nil {
			return nil, err
		}
		out.Accrued = &accrued
	}
	if discount != nil {
		npv, err := cashflow.NPV(leg, discount, discount.ReferenceDate(), true)
		if err != nil {
			return nil, err
		}
		out.NPV = &npv
	}
	return out, nil
}
