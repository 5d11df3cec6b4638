/*
lifecycle.go - Authoritative contract transitions

PURPOSE:
  Every change to a stored contract status happens through one of the
  explicit operations below. No background job mutates stored state; the
  expiry-driven "expired" view lives in display.go until a caller commits
  the explicit transition.

STATE MACHINE:

  draft ──▶ pending_review ──▶ pending_signature ──▶ partially_signed
                                      │                    │
                                      └──────▶ active ◀────┘
                                                 │
                            ┌────────────────────┼───────────────┐
                            ▼                    ▼               ▼
                        terminated            renewed         expired

  any non-terminal ──▶ superseded

  Terminal: terminated, superseded, renewed, expired.

SIGNATORY SUB-MACHINE (per party):
  pending ──▶ requested ──▶ signed
                   │
                   └──▶ declined
  voided reachable from any non-signed state.
  A signed signatory can never be deleted or transitioned backward.

All operations are pure mutations of the in-memory Contract; persisting the
result (with an optimistic revision check) and the audit entry is the
caller's job.
*/
package contract

import (
	"time"

	"github.com/warp/staffing-engine/core"
)

// transitions is the authoritative adjacency list for stored statuses.
var transitions = map[Status][]Status{
	StatusDraft:            {StatusPendingReview, StatusSuperseded},
	StatusPendingReview:    {StatusPendingSignature, StatusSuperseded},
	StatusPendingSignature: {StatusPartiallySigned, StatusActive, StatusSuperseded},
	StatusPartiallySigned:  {StatusActive, StatusSuperseded},
	StatusActive:           {StatusTerminated, StatusRenewed, StatusExpired, StatusSuperseded},
}

// CanTransition reports whether from → to is an allowed stored transition.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (c *Contract) transition(to Status, reason string, now time.Time) error {
	if !CanTransition(c.Status, to) {
		r := reason
		if c.Status.Terminal() {
			r = "status is terminal"
		}
		return &core.TransitionError{EntityKind: "contract", From: string(c.Status), To: string(to), Reason: r}
	}
	c.Status = to
	c.UpdatedAt = now
	return nil
}

// =============================================================================
// LIFECYCLE OPERATIONS
// =============================================================================

// SubmitForReview moves a draft into review.
func (c *Contract) SubmitForReview(now time.Time) error {
	return c.transition(StatusPendingReview, "only drafts can be submitted for review", now)
}

// ApproveReview moves a reviewed contract out for signature.
func (c *Contract) ApproveReview(now time.Time) error {
	return c.transition(StatusPendingSignature, "only contracts in review can be approved", now)
}

// RequestSignature marks a signatory as having been sent a signature request.
func (c *Contract) RequestSignature(id core.SignatoryID, now time.Time) error {
	s, ok := c.Signatory(id)
	if !ok {
		return core.ErrNotFound
	}
	return s.transitionTo(SignatoryRequested, now)
}

// RecordSignature marks a signatory as signed and advances the contract:
// when every required signatory has signed and the effective date has
// arrived the contract becomes active; a partial set of signatures moves
// pending_signature to partially_signed.
func (c *Contract) RecordSignature(id core.SignatoryID, now time.Time) error {
	if c.Status != StatusPendingSignature && c.Status != StatusPartiallySigned {
		return &core.TransitionError{
			EntityKind: "contract",
			From:       string(c.Status),
			To:         string(StatusPartiallySigned),
			Reason:     "signatures are only recorded while out for signature",
		}
	}

	s, ok := c.Signatory(id)
	if !ok {
		return core.ErrNotFound
	}
	if err := s.transitionTo(SignatorySigned, now); err != nil {
		return err
	}

	if c.FullyExecuted() && c.effectiveOnOrBefore(now) {
		return c.transition(StatusActive, "", now)
	}
	// Either not everyone has signed yet, or the contract is fully signed but
	// not yet effective. It waits in partially_signed until an explicit
	// Activate once the effective date arrives.
	if c.Status == StatusPendingSignature {
		return c.transition(StatusPartiallySigned, "", now)
	}
	c.UpdatedAt = now
	return nil
}

// DeclineSignature records a signatory's refusal to sign.
func (c *Contract) DeclineSignature(id core.SignatoryID, now time.Time) error {
	s, ok := c.Signatory(id)
	if !ok {
		return core.ErrNotFound
	}
	return s.transitionTo(SignatoryDeclined, now)
}

// VoidSignatory voids a signature request. Signed signatories cannot be voided.
func (c *Contract) VoidSignatory(id core.SignatoryID, now time.Time) error {
	s, ok := c.Signatory(id)
	if !ok {
		return core.ErrNotFound
	}
	return s.transitionTo(SignatoryVoided, now)
}

// RemoveSignatory deletes a signatory from the contract. A signed signatory
// is part of the executed record and can never be removed.
func (c *Contract) RemoveSignatory(id core.SignatoryID, now time.Time) error {
	for i, s := range c.Signatories {
		if s.ID != id {
			continue
		}
		if s.State == SignatorySigned {
			return &core.TransitionError{
				EntityKind: "signatory",
				From:       string(SignatorySigned),
				To:         "deleted",
				Reason:     "signed signatories cannot be removed",
			}
		}
		c.Signatories = append(c.Signatories[:i], c.Signatories[i+1:]...)
		c.UpdatedAt = now
		return nil
	}
	return core.ErrNotFound
}

// Activate moves a fully signed contract to active once its effective date
// has arrived. Used when signatures completed before the effective date.
func (c *Contract) Activate(now time.Time) error {
	if !c.FullyExecuted() {
		return &core.TransitionError{
			EntityKind: "contract",
			From:       string(c.Status),
			To:         string(StatusActive),
			Reason:     "not all required signatories have signed",
		}
	}
	if !c.effectiveOnOrBefore(now) {
		return &core.TransitionError{
			EntityKind: "contract",
			From:       string(c.Status),
			To:         string(StatusActive),
			Reason:     "effective date has not arrived",
		}
	}
	return c.transition(StatusActive, "", now)
}

// Terminate ends an active contract. The terminating actor and timestamp are
// recorded on the contract itself, in addition to the audit log.
func (c *Contract) Terminate(actor core.ActorID, now time.Time) error {
	if err := c.transition(StatusTerminated, "only active contracts can be terminated", now); err != nil {
		return err
	}
	c.TerminatedBy = &actor
	c.TerminatedAt = &now
	return nil
}

// Renew closes an active contract in the renewed status and returns the next
// version as a fresh draft linked to this one. Signatories carry forward as
// pending copies and must sign the new version. The copies keep this
// version's signatory IDs; the caller assigns fresh IDs before persisting,
// along with both contract versions.
func (c *Contract) Renew(newID core.ContractID, now time.Time) (*Contract, error) {
	if err := c.transition(StatusRenewed, "only active contracts can be renewed", now); err != nil {
		return nil, err
	}
	c.IsLatestVersion = false

	prev := c.ID
	next := &Contract{
		ID:                newID,
		OrgID:             c.OrgID,
		ContractNumber:    c.ContractNumber,
		Status:            StatusDraft,
		EffectiveDate:     c.ExpiryDate,
		Currency:          c.Currency,
		ContractValue:     c.ContractValue,
		RenewalNoticeDays: c.RenewalNoticeDays,
		Version:           c.Version + 1,
		IsLatestVersion:   true,
		PreviousVersionID: &prev,
		Revision:          1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	for _, sig := range c.Signatories {
		next.Signatories = append(next.Signatories, Signatory{
			ID:         sig.ID,
			ContractID: newID,
			Name:       sig.Name,
			Email:      sig.Email,
			Role:       sig.Role,
			Required:   sig.Required,
			State:      SignatoryPending,
		})
	}
	return next, nil
}

// Supersede marks this version as replaced by a newer version of the same
// logical contract. Valid from any non-terminal status.
func (c *Contract) Supersede(now time.Time) error {
	return c.transition(StatusSuperseded, "", now)
}

// MarkExpired commits the explicit expiry transition for a contract whose
// expiry date has passed. The derived display status flags candidates; this
// is the only way the stored status becomes expired.
func (c *Contract) MarkExpired(now time.Time) error {
	if !c.ExpiredByDate(now) {
		return &core.TransitionError{
			EntityKind: "contract",
			From:       string(c.Status),
			To:         string(StatusExpired),
			Reason:     "expiry date has not passed",
		}
	}
	return c.transition(StatusExpired, "only active contracts expire", now)
}

func (c *Contract) effectiveOnOrBefore(now time.Time) bool {
	if c.EffectiveDate == nil {
		return true
	}
	return !core.DateOf(*c.EffectiveDate).After(core.DateOf(now))
}

// =============================================================================
// SIGNATORY TRANSITIONS
// =============================================================================

var signatoryTransitions = map[SignatoryState][]SignatoryState{
	SignatoryPending:   {SignatoryRequested, SignatoryVoided},
	SignatoryRequested: {SignatorySigned, SignatoryDeclined, SignatoryVoided},
	SignatoryDeclined:  {SignatoryVoided},
}

func (s *Signatory) transitionTo(to SignatoryState, now time.Time) error {
	allowed := false
	for _, next := range signatoryTransitions[s.State] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		reason := ""
		if s.State == SignatorySigned {
			reason = "signed signatories cannot change state"
		}
		return &core.TransitionError{EntityKind: "signatory", From: string(s.State), To: string(to), Reason: reason}
	}
	s.State = to
	if to == SignatorySigned {
		signedAt := now
		s.SignedAt = &signedAt
	}
	return nil
}
