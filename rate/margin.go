/*
margin.go - Margin and markup arithmetic

PURPOSE:
  The deterministic function library at the heart of rate administration:

    grossMargin      = billRate - payRate
    marginPercentage = grossMargin / billRate * 100
    markupPercentage = grossMargin / payRate * 100

  and the inverse solvers used by rate editors:

    billRate = payRate / (1 - targetMargin/100)
    payRate  = billRate * (1 - targetMargin/100)

QUALITY BANDS (margin percentage of bill rate, first match wins):
  >= 20  excellent
  >= 15  good
  >= 10  acceptable
  >=  5  low
  <   5  critical

  Zero or blank inputs are a normal editing-in-progress state and classify
  as unknown rather than erroring.

Every function here is idempotent and referentially transparent.
*/
package rate

import (
	"github.com/shopspring/decimal"
	"github.com/warp/staffing-engine/core"
)

var hundred = decimal.NewFromInt(100)

// Quality thresholds, evaluated in descending order.
var qualityBands = []struct {
	min     decimal.Decimal
	quality Quality
}{
	{decimal.NewFromInt(20), QualityExcellent},
	{decimal.NewFromInt(15), QualityGood},
	{decimal.NewFromInt(10), QualityAcceptable},
	{decimal.NewFromInt(5), QualityLow},
}

// QualityFor classifies a margin percentage into a band.
func QualityFor(marginPct decimal.Decimal) Quality {
	for _, band := range qualityBands {
		if marginPct.GreaterThanOrEqual(band.min) {
			return band.quality
		}
	}
	return QualityCritical
}

// ComputeMargin derives margin figures from a bill/pay pair. When either
// rate is zero or negative the result is undefined: all derived fields are
// zero and Quality is QualityUnknown. This is not an error; blank inputs
// are a normal state while an operator is still typing.
func ComputeMargin(billRate, payRate decimal.Decimal) MarginResult {
	if !billRate.IsPositive() || !payRate.IsPositive() {
		return MarginResult{Quality: QualityUnknown}
	}

	gross := billRate.Sub(payRate)
	return MarginResult{
		GrossMargin:      gross,
		MarginPercentage: gross.Div(billRate).Mul(hundred),
		MarkupPercentage: gross.Div(payRate).Mul(hundred),
		Quality:          QualityFor(gross.Div(billRate).Mul(hundred)),
		Defined:          true,
	}
}

// BillRateFromPayAndMargin solves for the bill rate that yields the target
// margin percentage over the given pay rate:
//
//	billRate = payRate / (1 - targetMarginPct/100)
//
// A target margin of 100% or more is invalid and returns an
// InvalidMarginError; it is never silently clamped. A pay rate of zero or
// less yields zero, representing "no input yet".
func BillRateFromPayAndMargin(payRate, targetMarginPct decimal.Decimal) (decimal.Decimal, error) {
	if targetMarginPct.GreaterThanOrEqual(hundred) {
		return decimal.Zero, &core.InvalidMarginError{TargetMarginPct: targetMarginPct.String()}
	}
	if !payRate.IsPositive() {
		return decimal.Zero, nil
	}
	factor := decimal.NewFromInt(1).Sub(targetMarginPct.Div(hundred))
	return payRate.Div(factor), nil
}

// PayRateFromBillAndMargin solves for the pay rate that yields the target
// margin percentage under the given bill rate:
//
//	payRate = billRate * (1 - targetMarginPct/100)
//
// The same target-margin bound applies as for BillRateFromPayAndMargin.
// A bill rate of zero or less yields zero.
func PayRateFromBillAndMargin(billRate, targetMarginPct decimal.Decimal) (decimal.Decimal, error) {
	if targetMarginPct.GreaterThanOrEqual(hundred) {
		return decimal.Zero, &core.InvalidMarginError{TargetMarginPct: targetMarginPct.String()}
	}
	if !billRate.IsPositive() {
		return decimal.Zero, nil
	}
	factor := decimal.NewFromInt(1).Sub(targetMarginPct.Div(hundred))
	return billRate.Mul(factor), nil
}

// BelowMinimumMargin reports whether the computed margin falls short of the
// given minimum. An undefined margin is never below minimum; warning badges
// only fire once both rates are present. Never returns an error.
func BelowMinimumMargin(result MarginResult, minMarginPct decimal.Decimal) bool {
	if !result.Defined {
		return false
	}
	return result.MarginPercentage.LessThan(minMarginPct)
}
