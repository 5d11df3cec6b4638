/*
card.go - Rate cards

PURPOSE:
  A rate card is a reusable pricing table, not tied to a specific client or
  placement. Line items are keyed by job category and level, each carrying
  min/max/target pay and bill rates plus margin thresholds. Editors validate
  a proposed quote against the matching line item.

VERSIONING:
  Rate cards are versioned exactly like contracts: an edit creates the next
  version in the chain and the prior version is retained. Only the latest
  version is offered for new quotes.
*/
package rate

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/staffing-engine/core"
)

// =============================================================================
// RATE CARD
// =============================================================================

// Card is one version of a reusable pricing table.
type Card struct {
	ID              core.RateCardID
	OrgID           core.OrgID
	Name            string
	Currency        string
	Unit            Unit
	Version         int
	IsLatestVersion bool
	Items           []CardItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// VersionNumber implements core.Versioned.
func (c *Card) VersionNumber() int { return c.Version }

// CardItem is one line of a rate card, keyed by job category and level.
type CardItem struct {
	ID              string
	CardID          core.RateCardID
	JobCategory     string
	JobLevel        string
	MinPayRate      decimal.Decimal
	MaxPayRate      decimal.Decimal
	TargetPayRate   decimal.Decimal
	MinBillRate     decimal.Decimal
	MaxBillRate     decimal.Decimal
	TargetBillRate  decimal.Decimal
	MinMarginPct    decimal.Decimal
	TargetMarginPct decimal.Decimal
}

// Item returns the line item for a category/level pair.
func (c *Card) Item(category, level string) (CardItem, bool) {
	for _, it := range c.Items {
		if it.JobCategory == category && it.JobLevel == level {
			return it, true
		}
	}
	return CardItem{}, false
}

// NextVersion produces the successor version of this card with the given ID,
// carrying the items forward. The receiver is marked superseded in the chain;
// persisting both versions is the caller's job.
func (c *Card) NextVersion(newID core.RateCardID, now time.Time) *Card {
	next := &Card{
		ID:              newID,
		OrgID:           c.OrgID,
		Name:            c.Name,
		Currency:        c.Currency,
		Unit:            c.Unit,
		Version:         c.Version + 1,
		IsLatestVersion: true,
		Items:           make([]CardItem, len(c.Items)),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for i, it := range c.Items {
		it.CardID = newID
		next.Items[i] = it
	}
	c.IsLatestVersion = false
	return next
}

// =============================================================================
// QUOTE VALIDATION AGAINST A CARD ITEM
// =============================================================================

// QuoteIssue describes one way a quote deviates from its rate card line.
type QuoteIssue string

const (
	IssuePayBelowMin    QuoteIssue = "pay_below_min"
	IssuePayAboveMax    QuoteIssue = "pay_above_max"
	IssueBillBelowMin   QuoteIssue = "bill_below_min"
	IssueBillAboveMax   QuoteIssue = "bill_above_max"
	IssueMarginBelowMin QuoteIssue = "margin_below_min"
)

// CheckQuote compares a quote against this line item and returns every
// deviation found. An empty slice means the quote is within bounds. Zero
// rates are skipped; partial input is not a deviation.
func (it CardItem) CheckQuote(q Quote) []QuoteIssue {
	var issues []QuoteIssue

	if q.PayRate.IsPositive() {
		if it.MinPayRate.IsPositive() && q.PayRate.LessThan(it.MinPayRate) {
			issues = append(issues, IssuePayBelowMin)
		}
		if it.MaxPayRate.IsPositive() && q.PayRate.GreaterThan(it.MaxPayRate) {
			issues = append(issues, IssuePayAboveMax)
		}
	}
	if q.BillRate.IsPositive() {
		if it.MinBillRate.IsPositive() && q.BillRate.LessThan(it.MinBillRate) {
			issues = append(issues, IssueBillBelowMin)
		}
		if it.MaxBillRate.IsPositive() && q.BillRate.GreaterThan(it.MaxBillRate) {
			issues = append(issues, IssueBillAboveMax)
		}
	}
	if BelowMinimumMargin(q.Margin(), it.MinMarginPct) {
		issues = append(issues, IssueMarginBelowMin)
	}
	return issues
}
