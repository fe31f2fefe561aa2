package oiscurve

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/meenmo/termstruct/bootstrap"
	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/config"
	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/daycount"
	"github.com/meenmo/termstruct/index"
	"github.com/meenmo/termstruct/logger"
	"github.com/meenmo/termstruct/market"
	"github.com/meenmo/termstruct/marketdata"
	"github.com/meenmo/termstruct/utils"
)

// Input defines the JSON/YAML input schema for an OIS curve bootstrap.
//
// Conventions:
// - prices are divided by divisor (default 100, i.e. quotes in percent)
// - fixings are decimal rates keyed by index name, then by date
type Input struct {
	Index          string `yaml:"index"`           // CLICP, SOFR or ESTR
	SettlementDays int    `yaml:"settlement_days"` // curve reference date offset
	Calendar       string `yaml:"calendar"`        // e.g. "FD+CL"; defaults to the payment calendar
	DayCount       string `yaml:"day_count"`       // curve time axis; defaults to config
	Interpolation  string `yaml:"interpolation"`   // LOG_CUBIC or LOG_LINEAR; defaults to config

	AllowExtrapolation *bool   `yaml:"allow_extrapolation"`
	Divisor            float64 `yaml:"divisor"`
	Telescopic         bool    `yaml:"telescopic"`

	Helpers []HelperInput `yaml:"helpers"`

	marketdata.File `yaml:",inline"`
}

// HelperInput is one calibration instrument.
type HelperInput struct {
	Type      string `yaml:"type"` // ois (default) or deposit
	Tenor     string `yaml:"tenor"`
	Ticker    string `yaml:"ticker"`
	Frequency string `yaml:"frequency"` // overrides the convention
	Pillar    string `yaml:"pillar"`
}

type Output struct {
	ReferenceDate string         `json:"reference_date"`
	Interpolation string         `json:"interpolation"`
	Passes        int            `json:"passes"`
	Nodes         []Node         `json:"nodes"`
	Helpers       []HelperResult `json:"helpers"`
}

type Node struct {
	Date     string  `json:"date"`
	DF       float64 `json:"df"`
	ZeroRate float64 `json:"zero_rate"` // percent, continuous
}

type HelperResult struct {
	Tenor   string  `json:"tenor"`
	Pillar  string  `json:"pillar"`
	Quote   float64 `json:"quote"`
	Implied float64 `json:"implied"`
}

type errorOutput struct {
	Error string `json:"error"`
}

func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bootstrap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inputPath := fs.String("input", "", "JSON or YAML input path (optional; if set, ignores stdin)")
	configPath := fs.String("config", "", "YAML solver config (optional)")
	logLevel := fs.String("log-level", "", "debug, info, warn or error (overrides config)")
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

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return writeError(stdout, err.Error())
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Output: stderr})

	inputBytes, err := readInput(stdin, path)
	if err != nil {
		return writeError(stdout, fmt.Sprintf("failed to read input: %v", err))
	}

	var input Input
	if err := yaml.Unmarshal(inputBytes, &input); err != nil {
		return writeError(stdout, fmt.Sprintf("failed to parse input: %v", err))
	}

	output, err := buildCurve(input, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("bootstrap failed")
		return writeError(stdout, err.Error())
	}

	outputBytes, _ := json.Marshal(output)
	fmt.Fprintln(stdout, string(outputBytes))
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  termcurve bootstrap < input.yaml")
	fmt.Fprintln(w, "  termcurve bootstrap -input /path/to/input.json [-config solver.yaml] [-log-level debug]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Read OIS quotes, bootstrap the discount curve, output nodes and repricing as JSON.")
}

func loadConfig(path string) (config.Config, error) {
	cfg := config.GetConfig()
	if strings.TrimSpace(path) != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	return config.FromEnv(cfg, ".env")
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

func buildCurve(input Input, cfg config.Config, log zerolog.Logger) (*Output, error) {
	if input.EvaluationDate == "" {
		return nil, fmt.Errorf("evaluation_date is required")
	}
	eval, err := utils.ParseDate(input.EvaluationDate)
	if err != nil {
		return nil, fmt.Errorf("invalid evaluation_date: %w", err)
	}
	if len(input.Helpers) == 0 {
		return nil, fmt.Errorf("helpers is required")
	}
	if err := input.RegisterCalendars(); err != nil {
		return nil, err
	}

	conv, err := bootstrap.OISConventionFor(input.Index)
	if err != nil {
		return nil, err
	}
	conv.Telescopic = input.Telescopic
	ix, ok := index.FromPreset(conv.Index, nil)
	if !ok {
		return nil, fmt.Errorf("no index preset for %s: %w", conv.Index, market.ErrInvalidConvention)
	}
	if err := input.ApplyFixings(ix); err != nil {
		return nil, err
	}

	curveCal := conv.PaymentCalendar
	if len(curveCal.IDs()) == 0 {
		curveCal = ix.FixingCalendar()
	}
	if input.Calendar != "" {
		if curveCal, err = calendar.Parse(input.Calendar); err != nil {
			return nil, fmt.Errorf("invalid calendar: %w", err)
		}
	}
	var dc *daycount.DayCounter
	if input.DayCount != "" {
		parsed, err := daycount.Parse(input.DayCount)
		if err != nil {
			return nil, fmt.Errorf("invalid day_count: %w", err)
		}
		dc = &parsed
	}
	interpName := cfg.Interpolation
	if input.Interpolation != "" {
		interpName = input.Interpolation
	}
	interp, err := curve.ParseInterpolation(interpName)
	if err != nil {
		return nil, fmt.Errorf("invalid interpolation: %w", err)
	}
	extrapolate := cfg.AllowExtrapolation
	if input.AllowExtrapolation != nil {
		extrapolate = *input.AllowExtrapolation
	}
	divisor := input.Divisor
	if divisor == 0 {
		divisor = 100
	}

	ctx := market.NewEvaluationContext(eval)
	store := input.Store()
	helpers := make([]bootstrap.RateHelper, 0, len(input.Helpers))
	tenors := make(map[bootstrap.RateHelper]string, len(input.Helpers))
	for i, hi := range input.Helpers {
		h, err := newHelper(ctx, conv, ix, store, divisor, hi)
		if err != nil {
			return nil, fmt.Errorf("helpers[%d]: %w", i, err)
		}
		helpers = append(helpers, h)
		tenors[h] = hi.Tenor
	}

	pc, err := bootstrap.Bootstrap(bootstrap.CurveParams{
		Context:            ctx,
		SettlementDays:     input.SettlementDays,
		Calendar:           curveCal,
		DayCounter:         dc,
		Helpers:            helpers,
		Interpolation:      interp,
		AllowExtrapolation: extrapolate,
		Config:             &cfg,
		Logger:             &log,
	})
	if err != nil {
		return nil, err
	}

	out := &Output{
		ReferenceDate: pc.ReferenceDate().Format(utils.DateLayout),
		Interpolation: interp.String(),
		Passes:        pc.Passes(),
	}
	dfs := pc.DiscountFactors()
	for i, d := range pc.Dates() {
		z, err := pc.ZeroRateAt(d)
		if err != nil {
			return nil, err
		}
		out.Nodes = append(out.Nodes, Node{Date: d.Format(utils.DateLayout), DF: dfs[i], ZeroRate: z})
	}
	for _, h := range pc.Helpers() {
		implied, err := h.ImpliedQuote()
		if err != nil {
			return nil, err
		}
		out.Helpers = append(out.Helpers, HelperResult{
			Tenor:   tenors[h],
			Pillar:  h.PillarDate().Format(utils.DateLayout),
			Quote:   h.Quote().Value(),
			Implied: implied,
		})
	}
	return out, nil
}

func newHelper(ctx market.EvaluationContext, conv bootstrap.OISConvention, ix *index.Index, store *marketdata.Store, divisor float64, in HelperInput) (bootstrap.RateHelper, error) {
	tenor, err := market.ParsePeriod(in.Tenor)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Ticker) == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	if !store.Has(in.Ticker) {
		return nil, fmt.Errorf("no price for ticker %q", in.Ticker)
	}
	q := store.DerivedQuote(in.Ticker, divisor)

	switch strings.ToLower(strings.TrimSpace(in.Type)) {
	case "", "ois":
		p := conv.Params(tenor, q, ix, nil)
		if in.Frequency != "" {
			if p.PaymentFrequency, err = market.ParseFrequency(in.Frequency); err != nil {
				return nil, err
			}
		}
		if in.Pillar != "" {
			if p.Pillar, err = bootstrap.ParsePillar(in.Pillar); err != nil {
				return nil, err
			}
		}
		return bootstrap.NewOISRateHelper(ctx, p)
	case "deposit":
		return bootstrap.NewDepositRateHelper(ctx, bootstrap.DepositParams{
			Rate:       q,
			Tenor:      tenor,
			FixingDays: conv.SettlementDays,
			Calendar:   ix.FixingCalendar(),
			Convention: calendar.ModifiedFollowing,
			DayCounter: ix.DayCounter(),
		})
	default:
		return nil, fmt.Errorf("unknown helper type %q (use ois or deposit)", in.Type)
	}
}
