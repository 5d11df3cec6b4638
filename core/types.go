/*
Package core provides the shared value objects and cross-cutting types for the
staffing engine.

PURPOSE:
  This package contains the domain-agnostic building blocks used by every
  other package: type-safe identifiers, the injected clock, version chains,
  and the error taxonomy. It has no dependencies on the domain packages.

KEY CONCEPTS IN THIS FILE (types.go):
  - Identifiers: Type-safe IDs for every entity kind
  - Organization: The multi-tenant partition every entity belongs to
  - Actor: Who performed an action (required for audited operations)

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for all money and percentage values
  2. Type Safety: Strong typing for IDs prevents mixing entity kinds
  3. Determinism: "now" is always injected via Clock, never read ad hoc
  4. Auditability: Every stored status change records who and when

SEE ALSO:
  - clock.go: Injected time source and date arithmetic
  - errors.go: Sentinel and structured errors
  - version.go: Ordered version chains
*/
package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type OrgID string
type ContractID string
type SignatoryID string
type ComplianceItemID string
type RequirementID string
type RateCardID string
type ApprovalID string
type ActorID string

// =============================================================================
// ORGANIZATION - Multi-tenant partition
// =============================================================================

// Organization is the tenant boundary. Every entity belongs to exactly one
// organization and every store query is scoped by OrgID. A row owned by
// another organization is indistinguishable from a missing row.
type Organization struct {
	ID        OrgID
	Name      string
	CreatedAt time.Time
}

// =============================================================================
// AUDIT - Who did what when
// =============================================================================

// AuditEntry records a stored status change. The audit log is append-only;
// corrections are recorded as new entries, never edits.
type AuditEntry struct {
	ID         string
	OrgID      OrgID
	EntityKind string // "contract", "signatory", "compliance_item", "rate_approval"
	EntityID   string
	Action     string
	ActorID    ActorID
	FromStatus string
	ToStatus   string
	Detail     string
	At         time.Time
}

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

// MustParseDecimal parses s, returning zero on malformed input. Intended for
// trusted inputs (test fixtures, seeded data); store code parses explicitly.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
