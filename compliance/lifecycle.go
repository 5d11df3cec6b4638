/*
lifecycle.go - Compliance item transitions, derived display status, urgency

STATE MACHINE (stored, explicit transitions only):

  pending ──▶ received ──▶ under_review ──▶ verified
                               │
                               └──▶ rejected
  any state ──▶ waived   (explicit administrative override, actor recorded)

DERIVED PATH (read time only):
  verified ──▶ expiring ──▶ expired
  Computed from expiryDate against an injected now plus a lookahead window.
  The stored status is updated only by an explicit action; the derivation
  never writes.

URGENCY BUCKETS (daysUntilExpiry = expiryDate - now, calendar days):
  < 0          expired
  0..7         critical
  8..14        warning
  15..lookahead  upcoming
  beyond       none
*/
package compliance

import (
	"time"

	"github.com/warp/staffing-engine/core"
)

// DefaultLookaheadDays is the expiry lookahead window when the requirement
// does not configure one.
const DefaultLookaheadDays = 30

// =============================================================================
// STORED TRANSITIONS
// =============================================================================

var transitions = map[Status][]Status{
	StatusPending:     {StatusReceived},
	StatusReceived:    {StatusUnderReview},
	StatusUnderReview: {StatusVerified, StatusRejected},
	// Explicit expiry commits for items flagged by the derived path.
	StatusVerified: {StatusExpiring, StatusExpired},
	StatusExpiring: {StatusExpired},
}

func (it *Item) transition(to Status, reason string, now time.Time) error {
	// Waive is an administrative override reachable from any other state.
	if to == StatusWaived {
		if it.Status == StatusWaived {
			return &core.TransitionError{EntityKind: "compliance item", From: string(it.Status), To: string(to), Reason: "already waived"}
		}
		it.Status = to
		it.UpdatedAt = now
		return nil
	}

	for _, next := range transitions[it.Status] {
		if next == to {
			it.Status = to
			it.UpdatedAt = now
			return nil
		}
	}
	return &core.TransitionError{EntityKind: "compliance item", From: string(it.Status), To: string(to), Reason: reason}
}

// Receive records that the document or evidence arrived.
func (it *Item) Receive(now time.Time) error {
	return it.transition(StatusReceived, "only pending items can be received", now)
}

// StartReview moves a received item into review.
func (it *Item) StartReview(now time.Time) error {
	return it.transition(StatusUnderReview, "only received items can enter review", now)
}

// Verify marks an item verified, recording actor and timestamp. When the
// requirement defines a validity window the expiry date is set from it.
func (it *Item) Verify(actor core.ActorID, req *Requirement, now time.Time) error {
	if err := it.transition(StatusVerified, "only items under review can be verified", now); err != nil {
		return err
	}
	it.VerifiedAt = &now
	it.VerifiedBy = &actor
	if it.EffectiveDate == nil {
		effective := core.DateOf(now)
		it.EffectiveDate = &effective
	}
	if it.ExpiryDate == nil && req != nil && req.ValidityDays > 0 {
		expiry := core.DateOf(now).AddDate(0, 0, req.ValidityDays)
		it.ExpiryDate = &expiry
	}
	return nil
}

// Reject refuses an item under review.
func (it *Item) Reject(notes string, now time.Time) error {
	if err := it.transition(StatusRejected, "only items under review can be rejected", now); err != nil {
		return err
	}
	if notes != "" {
		it.Notes = notes
	}
	return nil
}

// Waive overrides the requirement for this entity. The waiving actor is
// required; waivers are always attributable.
func (it *Item) Waive(actor core.ActorID, notes string, now time.Time) error {
	if err := it.transition(StatusWaived, "", now); err != nil {
		return err
	}
	it.WaivedAt = &now
	it.WaivedBy = &actor
	if notes != "" {
		it.Notes = notes
	}
	return nil
}

// MarkExpiring and MarkExpired commit the derived path to storage once a
// caller decides to make it authoritative.
func (it *Item) MarkExpiring(now time.Time) error {
	return it.transition(StatusExpiring, "only verified items can be marked expiring", now)
}

func (it *Item) MarkExpired(now time.Time) error {
	if !it.expiryPassed(now) {
		return &core.TransitionError{EntityKind: "compliance item", From: string(it.Status), To: string(StatusExpired), Reason: "expiry date has not passed"}
	}
	return it.transition(StatusExpired, "only verified or expiring items expire", now)
}

func (it *Item) expiryPassed(now time.Time) bool {
	return it.ExpiryDate != nil && core.DateOf(*it.ExpiryDate).Before(core.DateOf(now))
}

// =============================================================================
// DERIVED DISPLAY STATUS
// =============================================================================

// DeriveDisplayStatus returns the status to render. A verified item whose
// expiry has passed displays as expired; one inside the lookahead window
// displays as expiring. The stored status is untouched.
func DeriveDisplayStatus(it *Item, now time.Time, lookaheadDays int) Status {
	if lookaheadDays <= 0 {
		lookaheadDays = DefaultLookaheadDays
	}
	if it.Status != StatusVerified && it.Status != StatusExpiring {
		return it.Status
	}
	if it.ExpiryDate == nil {
		return it.Status
	}
	days := core.DaysUntil(now, *it.ExpiryDate)
	switch {
	case days < 0:
		return StatusExpired
	case days <= lookaheadDays:
		return StatusExpiring
	default:
		return it.Status
	}
}

// NeedsExpiryTransition reports whether the displayed and stored statuses
// disagree, i.e. the item awaits an explicit MarkExpiring/MarkExpired call.
func NeedsExpiryTransition(it *Item, now time.Time, lookaheadDays int) bool {
	return DeriveDisplayStatus(it, now, lookaheadDays) != it.Status
}

// =============================================================================
// URGENCY BUCKETING
// =============================================================================

type Urgency string

const (
	UrgencyExpired  Urgency = "expired"
	UrgencyCritical Urgency = "critical"
	UrgencyWarning  Urgency = "warning"
	UrgencyUpcoming Urgency = "upcoming"
	UrgencyNone     Urgency = "none"
)

// UrgencyFor buckets an expiry date for alert widgets. Pure read-time
// classification, recomputed on every query.
func UrgencyFor(expiry, now time.Time, lookaheadDays int) Urgency {
	if lookaheadDays <= 0 {
		lookaheadDays = DefaultLookaheadDays
	}
	days := core.DaysUntil(now, expiry)
	switch {
	case days < 0:
		return UrgencyExpired
	case days <= 7:
		return UrgencyCritical
	case days <= 14:
		return UrgencyWarning
	case days <= lookaheadDays:
		return UrgencyUpcoming
	default:
		return UrgencyNone
	}
}

// ItemUrgency buckets an item. Items without an expiry date never alert.
func ItemUrgency(it *Item, now time.Time, lookaheadDays int) Urgency {
	if it.ExpiryDate == nil {
		return UrgencyNone
	}
	if it.Status == StatusWaived || it.Status == StatusRejected {
		return UrgencyNone
	}
	return UrgencyFor(*it.ExpiryDate, now, lookaheadDays)
}
