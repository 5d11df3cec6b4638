package rate_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/staffing-engine/core"
	"github.com/warp/staffing-engine/rate"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// =============================================================================
// MARGIN COMPUTATION TESTS
// =============================================================================

func TestComputeMargin_StandardPair(t *testing.T) {
	// GIVEN: Bill rate 125, pay rate 100
	// WHEN: Computing margin
	// THEN: Gross 25, margin 20%, markup 25%, quality excellent

	res := rate.ComputeMargin(d("125"), d("100"))

	require.True(t, res.Defined)
	assert.True(t, res.GrossMargin.Equal(d("25")), "gross margin should be 25, got %s", res.GrossMargin)
	assert.True(t, res.MarginPercentage.Equal(d("20")), "margin should be 20%%, got %s", res.MarginPercentage)
	assert.True(t, res.MarkupPercentage.Equal(d("25")), "markup should be 25%%, got %s", res.MarkupPercentage)
	assert.Equal(t, rate.QualityExcellent, res.Quality)
}

func TestComputeMargin_ThinMargin(t *testing.T) {
	// GIVEN: Bill rate 110, pay rate 100
	// WHEN: Computing margin
	// THEN: Margin is about 9.09% and classifies as low

	res := rate.ComputeMargin(d("110"), d("100"))

	require.True(t, res.Defined)
	assert.True(t, res.MarginPercentage.Sub(d("9.09")).Abs().LessThan(d("0.01")),
		"margin should be ~9.09%%, got %s", res.MarginPercentage)
	assert.Equal(t, rate.QualityLow, res.Quality)
}

func TestComputeMargin_ZeroInputs_Unknown(t *testing.T) {
	// GIVEN: A blank editing state (zero rates)
	// WHEN: Computing margin
	// THEN: Result is undefined with quality unknown, no error

	cases := []struct {
		name     string
		bill     string
		pay      string
	}{
		{"both zero", "0", "0"},
		{"zero bill", "0", "100"},
		{"zero pay", "125", "0"},
		{"negative bill", "-10", "100"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := rate.ComputeMargin(d(tc.bill), d(tc.pay))
			assert.False(t, res.Defined)
			assert.Equal(t, rate.QualityUnknown, res.Quality)
			assert.True(t, res.GrossMargin.IsZero())
			assert.True(t, res.MarginPercentage.IsZero())
		})
	}
}

func TestComputeMargin_NegativeMargin_Critical(t *testing.T) {
	// GIVEN: Pay rate above bill rate (losing money)
	// WHEN: Computing margin
	// THEN: Margin is negative and classifies as critical

	res := rate.ComputeMargin(d("90"), d("100"))

	require.True(t, res.Defined)
	assert.True(t, res.GrossMargin.IsNegative())
	assert.Equal(t, rate.QualityCritical, res.Quality)
}

// =============================================================================
// QUALITY BAND TESTS
// =============================================================================

func TestQualityFor_BandBoundaries(t *testing.T) {
	cases := []struct {
		marginPct string
		want      rate.Quality
	}{
		{"25", rate.QualityExcellent},
		{"20", rate.QualityExcellent},
		{"19.99", rate.QualityGood},
		{"15", rate.QualityGood},
		{"14.99", rate.QualityAcceptable},
		{"10", rate.QualityAcceptable},
		{"9.99", rate.QualityLow},
		{"5", rate.QualityLow},
		{"4.99", rate.QualityCritical},
		{"0", rate.QualityCritical},
		{"-10", rate.QualityCritical},
	}

	for _, tc := range cases {
		t.Run(tc.marginPct, func(t *testing.T) {
			assert.Equal(t, tc.want, rate.QualityFor(d(tc.marginPct)))
		})
	}
}

// =============================================================================
// INVERSE SOLVER TESTS
// =============================================================================

func TestBillRateFromPayAndMargin_Solves(t *testing.T) {
	// GIVEN: Pay rate 100 and a 20% target margin
	// WHEN: Solving for the bill rate
	// THEN: Bill rate is 125 and achieves exactly the target

	bill, err := rate.BillRateFromPayAndMargin(d("100"), d("20"))

	require.NoError(t, err)
	assert.True(t, bill.Equal(d("125")), "bill rate should be 125, got %s", bill)

	res := rate.ComputeMargin(bill, d("100"))
	assert.True(t, res.MarginPercentage.Equal(d("20")))
}

func TestBillRateFromPayAndMargin_HundredPercent_Invalid(t *testing.T) {
	// GIVEN: A target margin of 100% (would require division by zero)
	// WHEN: Solving for the bill rate
	// THEN: InvalidMarginInput error, never a clamped value

	_, err := rate.BillRateFromPayAndMargin(d("100"), d("100"))

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidMarginInput)

	var invalidErr *core.InvalidMarginError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "100", invalidErr.TargetMarginPct)
}

func TestBillRateFromPayAndMargin_OverHundredPercent_Invalid(t *testing.T) {
	_, err := rate.BillRateFromPayAndMargin(d("100"), d("150"))
	assert.ErrorIs(t, err, core.ErrInvalidMarginInput)
}

func TestBillRateFromPayAndMargin_ZeroPayRate_Zero(t *testing.T) {
	// GIVEN: No pay rate entered yet
	// WHEN: Solving for the bill rate
	// THEN: Zero result, no error (blank inputs are not errors)

	bill, err := rate.BillRateFromPayAndMargin(d("0"), d("20"))

	require.NoError(t, err)
	assert.True(t, bill.IsZero())
}

func TestPayRateFromBillAndMargin_Solves(t *testing.T) {
	// GIVEN: Bill rate 125 and a 20% target margin
	// WHEN: Solving for the pay rate
	// THEN: Pay rate is 100

	pay, err := rate.PayRateFromBillAndMargin(d("125"), d("20"))

	require.NoError(t, err)
	assert.True(t, pay.Equal(d("100")), "pay rate should be 100, got %s", pay)
}

func TestPayRateFromBillAndMargin_HundredPercent_Invalid(t *testing.T) {
	_, err := rate.PayRateFromBillAndMargin(d("125"), d("100"))
	assert.ErrorIs(t, err, core.ErrInvalidMarginInput)
}

func TestInverseSolvers_RoundTrip(t *testing.T) {
	// GIVEN: A pay rate and any valid target margin below 100%
	// WHEN: Solving pay -> bill, then bill -> pay
	// THEN: The original pay rate comes back (within decimal precision)

	targets := []string{"0", "5", "10", "20", "33.33", "50", "75", "99"}
	pay := d("87.50")

	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			bill, err := rate.BillRateFromPayAndMargin(pay, d(target))
			require.NoError(t, err)

			back, err := rate.PayRateFromBillAndMargin(bill, d(target))
			require.NoError(t, err)

			assert.True(t, back.Sub(pay).Abs().LessThan(d("0.0001")),
				"round trip drifted: %s -> %s -> %s", pay, bill, back)
		})
	}
}

// =============================================================================
// MINIMUM MARGIN TESTS
// =============================================================================

func TestBelowMinimumMargin(t *testing.T) {
	minimum := d("10")

	// Margin 20% is comfortably above a 10% minimum.
	res := rate.ComputeMargin(d("125"), d("100"))
	assert.False(t, rate.BelowMinimumMargin(res, minimum))

	// Margin ~9.09% is below.
	res = rate.ComputeMargin(d("110"), d("100"))
	assert.True(t, rate.BelowMinimumMargin(res, minimum))

	// Exactly at the minimum is not below.
	res = rate.ComputeMargin(d("100"), d("90"))
	assert.False(t, rate.BelowMinimumMargin(res, minimum))
}

func TestBelowMinimumMargin_UndefinedNeverFlags(t *testing.T) {
	// GIVEN: A blank pair (margin undefined)
	// WHEN: Checking against any minimum
	// THEN: Never flagged; warnings wait for complete input

	res := rate.ComputeMargin(decimal.Zero, decimal.Zero)
	assert.False(t, rate.BelowMinimumMargin(res, d("99")))
}

// =============================================================================
// QUOTE TESTS
// =============================================================================

func TestQuote_Margin(t *testing.T) {
	q := rate.Quote{BillRate: d("150"), PayRate: d("120"), Unit: rate.UnitHourly, Currency: "USD"}

	res := q.Margin()

	require.True(t, res.Defined)
	assert.True(t, res.MarginPercentage.Equal(d("20")))
	assert.Equal(t, rate.QualityExcellent, res.Quality)
}
