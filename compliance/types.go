/*
Package compliance implements the compliance item lifecycle model.

PURPOSE:
  Tracks requirement instances (background checks, licenses, insurance
  certificates) per entity — candidate, placement, or vendor. Items move
  from pending through review to verified by explicit, audited transitions;
  expiry-driven states (expiring, expired) are derived at read time from an
  injected now and never overwrite the stored status implicitly.

KEY CONCEPTS IN THIS FILE (types.go):
  - Requirement: An organization-defined rule items fulfill
  - Item: One tracked requirement instance for one entity
  - Status: The closed set of stored item statuses
  - Urgency: Read-time alert bucketing by days until expiry

SEE ALSO:
  - lifecycle.go: Transitions, derived display status, urgency bucketing
*/
package compliance

import (
	"time"

	"github.com/warp/staffing-engine/core"
)

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusPending     Status = "pending"
	StatusReceived    Status = "received"
	StatusUnderReview Status = "under_review"
	StatusVerified    Status = "verified"
	StatusExpiring    Status = "expiring"
	StatusExpired     Status = "expired"
	StatusRejected    Status = "rejected"
	StatusWaived      Status = "waived"
)

// ParseStatus parses a stored status string. Unrecognized values are a
// data-integrity error, not a silent fallback badge.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusReceived, StatusUnderReview, StatusVerified,
		StatusExpiring, StatusExpired, StatusRejected, StatusWaived:
		return Status(s), nil
	}
	return "", &core.UnknownStatusError{EntityKind: "compliance item", Value: s}
}

// =============================================================================
// REQUIREMENT - Organization-defined rule
// =============================================================================

// Requirement is the template a compliance item fulfills, e.g. "background
// check" or "nursing license".
type Requirement struct {
	ID          core.RequirementID
	OrgID       core.OrgID
	Name        string
	Category    string
	Description string

	// How long a verified item stays valid. Zero means it never expires.
	ValidityDays int

	// Days before expiry during which items show as expiring. Zero falls
	// back to DefaultLookaheadDays.
	LookaheadDays int

	CreatedAt time.Time
}

// =============================================================================
// ITEM - One tracked requirement instance
// =============================================================================

// Item is one compliance requirement instance tracked for an entity.
type Item struct {
	ID            core.ComplianceItemID
	OrgID         core.OrgID
	EntityType    string
	EntityID      string
	RequirementID *core.RequirementID

	Status        Status
	EffectiveDate *time.Time
	ExpiryDate    *time.Time

	VerifiedAt *time.Time
	VerifiedBy *core.ActorID
	WaivedAt   *time.Time
	WaivedBy   *core.ActorID
	Notes      string

	Revision  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
