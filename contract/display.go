/*
display.go - Derived display status and alert predicates

PURPOSE:
  Read-time derivations layered over the stored status. A contract whose
  expiry date has passed is displayed as expired and flagged for the
  explicit MarkExpired transition, but the stored status is never rewritten
  here. Same for "expiring soon": a pure predicate for alert widgets,
  recomputed on every query against an injected now.
*/
package contract

import (
	"time"

	"github.com/warp/staffing-engine/core"
)

// DefaultRenewalNoticeDays is used when a contract carries no notice window.
const DefaultRenewalNoticeDays = 30

// ExpiredByDate reports whether the expiry date has passed while the stored
// status is still non-terminal. This is the "logically expired" condition:
// true means the record is displayed as expired and flagged for an explicit
// MarkExpired transition, regardless of what is stored.
func (c *Contract) ExpiredByDate(now time.Time) bool {
	if c.ExpiryDate == nil || c.Status.Terminal() {
		return false
	}
	return core.DateOf(*c.ExpiryDate).Before(core.DateOf(now))
}

// ExpiringSoon reports whether the expiry date falls inside the renewal
// notice window: now <= expiry <= now + notice days.
func (c *Contract) ExpiringSoon(now time.Time) bool {
	if c.ExpiryDate == nil || c.Status.Terminal() {
		return false
	}
	days := core.DaysUntil(now, *c.ExpiryDate)
	notice := c.RenewalNoticeDays
	if notice <= 0 {
		notice = DefaultRenewalNoticeDays
	}
	return days >= 0 && days <= notice
}

// DeriveDisplayStatus returns the status to render: the stored status,
// except that a logically expired contract displays as expired. The stored
// field is untouched.
func DeriveDisplayStatus(c *Contract, now time.Time) Status {
	if c.ExpiredByDate(now) {
		return StatusExpired
	}
	return c.Status
}

// NeedsExpiryTransition reports whether the displayed and stored statuses
// disagree, i.e. the contract awaits an explicit MarkExpired call.
func NeedsExpiryTransition(c *Contract, now time.Time) bool {
	return DeriveDisplayStatus(c, now) != c.Status
}
