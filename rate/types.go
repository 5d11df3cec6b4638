/*
Package rate implements the rate and margin engine.

PURPOSE:
  Pure, side-effect-free arithmetic over bill/pay rate pairs: gross margin,
  margin and markup percentages, quality classification, and the inverse
  solvers (bill rate from pay rate and target margin, and vice versa). Also
  holds rate cards (reusable pricing tables) and the rate approval workflow.

KEY CONCEPTS IN THIS FILE (types.go):
  - Quote: An immutable snapshot of a bill/pay rate pair
  - MarginResult: Derived margin figures, never persisted directly
  - Quality: Classification of a margin percentage into bands

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal everywhere, no float drift in money math
  2. Immutability: A Quote is superseded by a new Quote on edit, never mutated
  3. Blank-friendly: Zero or missing rates are a normal editing-in-progress
     state, classified as QualityUnknown rather than rejected

SEE ALSO:
  - margin.go: The computation functions
  - card.go: Rate cards and their version chains
  - approval.go: Rate change approval workflow
*/
package rate

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/staffing-engine/core"
)

// =============================================================================
// RATE UNIT
// =============================================================================

type Unit string

const (
	UnitHourly  Unit = "hourly"
	UnitDaily   Unit = "daily"
	UnitWeekly  Unit = "weekly"
	UnitMonthly Unit = "monthly"
	UnitAnnual  Unit = "annual"
	UnitFixed   Unit = "fixed"
)

// ParseUnit parses a stored unit string. Unrecognized values are a
// data-integrity error, not a silent fallback.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case UnitHourly, UnitDaily, UnitWeekly, UnitMonthly, UnitAnnual, UnitFixed:
		return Unit(s), nil
	}
	return "", &core.UnknownStatusError{EntityKind: "rate unit", Value: s}
}

// =============================================================================
// QUOTE - Snapshot of a bill/pay rate pair
// =============================================================================

// Quote is a snapshot of a bill/pay rate pair at a point in time. Quotes are
// immutable once computed; an edit produces a new Quote.
type Quote struct {
	BillRate    decimal.Decimal
	PayRate     decimal.Decimal
	Unit        Unit
	Currency    string
	EffectiveAt time.Time
}

// Margin computes the margin figures for this quote.
func (q Quote) Margin() MarginResult {
	return ComputeMargin(q.BillRate, q.PayRate)
}

// =============================================================================
// MARGIN RESULT - Derived, never persisted
// =============================================================================

// Quality classifies a margin percentage. QualityUnknown means the margin is
// undefined because either rate is zero or missing.
type Quality string

const (
	QualityExcellent  Quality = "excellent"
	QualityGood       Quality = "good"
	QualityAcceptable Quality = "acceptable"
	QualityLow        Quality = "low"
	QualityCritical   Quality = "critical"
	QualityUnknown    Quality = "unknown"
)

// MarginResult holds the derived figures for one bill/pay pair. Defined is
// false when either input was zero or negative, in which case the numeric
// fields are zero and Quality is QualityUnknown.
type MarginResult struct {
	GrossMargin      decimal.Decimal
	MarginPercentage decimal.Decimal
	MarkupPercentage decimal.Decimal
	Quality          Quality
	Defined          bool
}
