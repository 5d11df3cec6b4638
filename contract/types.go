/*
Package contract implements the contract lifecycle model.

PURPOSE:
  Governs the status of an agreement record from draft through signature to
  a terminal state, the per-party signatory sub-state machine, and the
  derived display states (expired, expiring soon) computed against an
  injected "now" without ever mutating stored status implicitly.

KEY CONCEPTS IN THIS FILE (types.go):
  - Status: The closed set of stored contract statuses
  - Contract: One version of an agreement record
  - Signatory: A party required to sign before full execution

STORED vs DISPLAYED STATUS:
  A contract whose expiry date has passed is DISPLAYED as expired even while
  its stored status still says active. The stored field changes only through
  an explicit, audited transition. This keeps the audit trail honest: no
  background process silently rewrites state.

SEE ALSO:
  - lifecycle.go: Authoritative transitions
  - display.go: Derived display status and alert predicates
*/
package contract

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/staffing-engine/core"
)

// =============================================================================
// CONTRACT STATUS
// =============================================================================

type Status string

const (
	StatusDraft            Status = "draft"
	StatusPendingReview    Status = "pending_review"
	StatusPendingSignature Status = "pending_signature"
	StatusPartiallySigned  Status = "partially_signed"
	StatusActive           Status = "active"
	StatusExpired          Status = "expired"
	StatusTerminated       Status = "terminated"
	StatusRenewed          Status = "renewed"
	StatusSuperseded       Status = "superseded"
)

// ParseStatus parses a stored status string. An unrecognized value is a
// data-integrity error to be logged, never a silent "unknown" badge.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusPendingReview, StatusPendingSignature,
		StatusPartiallySigned, StatusActive, StatusExpired,
		StatusTerminated, StatusRenewed, StatusSuperseded:
		return Status(s), nil
	}
	return "", &core.UnknownStatusError{EntityKind: "contract", Value: s}
}

// Terminal reports whether the status has no outgoing transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusTerminated, StatusSuperseded, StatusRenewed, StatusExpired:
		return true
	}
	return false
}

// =============================================================================
// SIGNATORY - Per-party signing state
// =============================================================================

type SignatoryState string

const (
	SignatoryPending   SignatoryState = "pending"
	SignatoryRequested SignatoryState = "requested"
	SignatorySigned    SignatoryState = "signed"
	SignatoryDeclined  SignatoryState = "declined"
	SignatoryVoided    SignatoryState = "voided"
)

// ParseSignatoryState parses a stored signatory state string.
func ParseSignatoryState(s string) (SignatoryState, error) {
	switch SignatoryState(s) {
	case SignatoryPending, SignatoryRequested, SignatorySigned,
		SignatoryDeclined, SignatoryVoided:
		return SignatoryState(s), nil
	}
	return "", &core.UnknownStatusError{EntityKind: "signatory", Value: s}
}

// Signatory is one party required (or invited) to sign a contract.
type Signatory struct {
	ID         core.SignatoryID
	ContractID core.ContractID
	Name       string
	Email      string
	Role       string
	Required   bool
	State      SignatoryState
	SignedAt   *time.Time
}

// =============================================================================
// CONTRACT - One version of an agreement record
// =============================================================================

// Contract is one version of an agreement. Versions form an ordered chain;
// only the latest version is edited in practice, older versions are retained
// as audit trail.
type Contract struct {
	ID             core.ContractID
	OrgID          core.OrgID
	ContractNumber string
	Status         Status

	EffectiveDate *time.Time
	ExpiryDate    *time.Time
	ContractValue *decimal.Decimal
	Currency      string

	// Days before expiry during which the contract shows as expiring soon.
	RenewalNoticeDays int

	Version           int
	IsLatestVersion   bool
	PreviousVersionID *core.ContractID

	TerminatedBy *core.ActorID
	TerminatedAt *time.Time

	Signatories []Signatory

	Revision  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VersionNumber implements core.Versioned.
func (c *Contract) VersionNumber() int { return c.Version }

// Signatory returns the signatory with the given ID.
func (c *Contract) Signatory(id core.SignatoryID) (*Signatory, bool) {
	for i := range c.Signatories {
		if c.Signatories[i].ID == id {
			return &c.Signatories[i], true
		}
	}
	return nil, false
}

// FullyExecuted reports whether every required signatory has signed. A
// contract with no required signatories is not considered executed; there is
// nobody whose signature could have executed it.
func (c *Contract) FullyExecuted() bool {
	required := 0
	for _, s := range c.Signatories {
		if !s.Required {
			continue
		}
		required++
		if s.State != SignatorySigned {
			return false
		}
	}
	return required > 0
}
