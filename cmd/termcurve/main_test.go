package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type curveOutput struct {
	ReferenceDate string `json:"reference_date"`
	Nodes         []struct {
		Date     string  `json:"date"`
		DF       float64 `json:"df"`
		ZeroRate float64 `json:"zero_rate"`
	} `json:"nodes"`
	Helpers []struct {
		Tenor   string  `json:"tenor"`
		Pillar  string  `json:"pillar"`
		Quote   float64 `json:"quote"`
		Implied float64 `json:"implied"`
	} `json:"helpers"`
}

func TestBootstrapCommand(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := run([]string{"bootstrap", "-input", filepath.Join("testdata", "clicp.yaml"), "-log-level", "debug"},
		strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code, stdout.String())

	var out curveOutput
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, "2023-06-15", out.ReferenceDate)
	require.Len(t, out.Nodes, 5)
	assert.Equal(t, 1.0, out.Nodes[0].DF)
	for i := 1; i < len(out.Nodes); i++ {
		assert.Less(t, out.Nodes[i].DF, out.Nodes[i-1].DF)
	}

	require.Len(t, out.Helpers, 4)
	assert.Equal(t, "3M", out.Helpers[0].Tenor)
	assert.Equal(t, "2023-09-20", out.Helpers[0].Pillar)
	assert.InDelta(t, 0.10995, out.Helpers[0].Quote, 1e-15)
	for _, h := range out.Helpers {
		assert.InEpsilon(t, h.Quote, h.Implied, 1e-10, h.Tenor)
	}

	assert.Contains(t, stderr.String(), "curve bootstrapped")
	assert.Contains(t, stderr.String(), "pillar solved")
}

func TestBootstrapCommandErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"no evaluation date": "index: CLICP\nhelpers: [{tenor: 3M, ticker: A}]\nprices: {A: 10}\n",
		"unknown index":      "evaluation_date: 2023-06-15\nindex: TONAR\nhelpers: [{tenor: 3M, ticker: A}]\nprices: {A: 10}\n",
		"missing price":      "evaluation_date: 2023-06-15\nindex: SOFR\nhelpers: [{tenor: 3M, ticker: A}]\n",
		"bad tenor":          "evaluation_date: 2023-06-15\nindex: SOFR\nhelpers: [{tenor: 3Q, ticker: A}]\nprices: {A: 5}\n",
		"missing fixing":     "evaluation_date: 2023-06-15\nindex: CLICP\nhelpers: [{tenor: 3M, ticker: A}]\nprices: {A: 10}\n",
		"not yaml":           "helpers: [\n",
		"bad date":           "evaluation_date: 15/06/2023\nindex: SOFR\nhelpers: [{tenor: 3M, ticker: A}]\nprices: {A: 5}\n",
		"weekend fixing":     "evaluation_date: 2023-06-15\nindex: CLICP\nhelpers: [{tenor: 3M, ticker: A}]\nprices: {A: 10}\nfixings: {CLICP: {2023-06-17: 0.11}}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run([]string{"bootstrap"}, strings.NewReader(doc), &stdout, &stderr)
			assert.Equal(t, 1, code)

			var out map[string]string
			require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
			assert.NotEmpty(t, out["error"])
			assert.Len(t, out, 1)
		})
	}
}

func TestLegCommand(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := run([]string{"leg", "-input", filepath.Join("testdata", "leg.json")}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code, stdout.String())

	var out struct {
		Coupons []struct {
			PaymentDate   string  `json:"payment_date"`
			AccrualPeriod float64 `json:"accrual_period"`
			Amount        float64 `json:"amount"`
			AmountText    string  `json:"amount_text"`
			MinorUnits    int64   `json:"minor_units"`
			DF            float64 `json:"df"`
		} `json:"coupons"`
		Total   string   `json:"total"`
		Accrued *float64 `json:"accrued"`
		NPV     *float64 `json:"npv"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	require.Len(t, out.Coupons, 2)
	assert.InDelta(t, 5.0, out.Coupons[0].Amount, 1e-12)
	assert.InDelta(t, 15.0, out.Coupons[1].Amount, 1e-12)
	assert.Equal(t, "5.00", out.Coupons[0].AmountText)
	assert.Equal(t, int64(1500), out.Coupons[1].MinorUnits)
	assert.Equal(t, "2024-01-01", out.Coupons[1].PaymentDate)
	assert.Equal(t, "20.00", out.Total)

	require.NotNil(t, out.Accrued)
	assert.InDelta(t, 7.5, *out.Accrued, 1e-12)
	require.NotNil(t, out.NPV)
	assert.InDelta(t, 5*out.Coupons[0].DF+15*out.Coupons[1].DF, *out.NPV, 1e-9)
}

func TestLegCommandErrors(t *testing.T) {
	t.Parallel()

	for name, doc := range map[string]string{
		"one date":     `{"dates": ["2020-01-01"], "notional": 1, "rate": 0.05}`,
		"no notional":  `{"dates": ["2020-01-01", "2021-01-01"], "rate": 0.05}`,
		"bad daycount": `{"dates": ["2020-01-01", "2021-01-01"], "notional": 1, "day_count": "ACT/999"}`,
		"reversed":     `{"dates": ["2021-01-01", "2020-01-01"], "notional": 1, "rate": 0.05}`,
	} {
		var stdout, stderr bytes.Buffer
		code := run([]string{"leg"}, strings.NewReader(doc), &stdout, &stderr)
		assert.Equal(t, 1, code, name)
		assert.Contains(t, stdout.String(), `"error"`, name)
	}
}

func TestRunUsage(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, strings.NewReader(""), &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: termcurve")

	stderr.Reset()
	assert.Equal(t, 2, run([]string{"price"}, strings.NewReader(""), &stdout, &stderr))
	assert.Contains(t, stderr.String(), `unknown command "price"`)

	stdout.Reset()
	assert.Equal(t, 0, run([]string{"help"}, strings.NewReader(""), &stdout, &stderr))
	assert.Contains(t, stdout.String(), "bootstrap")
}
