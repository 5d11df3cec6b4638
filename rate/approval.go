/*
approval.go - Rate change approval workflow

PURPOSE:
  Handles the lifecycle of a proposed rate change:
  1. Submit: Operator proposes a new quote for an entity
  2. Pending: Awaiting a decision from an approver
  3. Approve: Quote becomes the entity's current rate
  4. Reject:  Terminal refusal
  5. Request changes: Non-terminal refusal; the proposer may resubmit

REJECT vs REQUEST CHANGES:
  Both record a refusal by the same approver action with different default
  messages. They are distinct statuses: rejected is terminal, while
  changes_requested allows a Resubmit back to pending with an amended quote.

APPROVAL FLOW:
                     ┌───────────┐
     Submit ───────▶ │  pending  │ ◀──────────── Resubmit
                     └───────────┘                    │
                       │   │   │                      │
            Approve ◀──┘   │   └──▶ RequestChanges    │
                           ▼              │           │
                       Reject             ▼           │
                           │      ┌────────────────┐  │
                           ▼      │changes_requested│ ─┘
                     ┌──────────┐ └────────────────┘
                     │ rejected │
                     └──────────┘

  Every decision records who and when.
*/
package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/staffing-engine/core"
)

// =============================================================================
// APPROVAL - A proposed rate change awaiting a decision
// =============================================================================

type ApprovalStatus string

const (
	ApprovalPending          ApprovalStatus = "pending"
	ApprovalApproved         ApprovalStatus = "approved"
	ApprovalRejected         ApprovalStatus = "rejected"
	ApprovalChangesRequested ApprovalStatus = "changes_requested"
)

// ParseApprovalStatus parses a stored status string.
func ParseApprovalStatus(s string) (ApprovalStatus, error) {
	switch ApprovalStatus(s) {
	case ApprovalPending, ApprovalApproved, ApprovalRejected, ApprovalChangesRequested:
		return ApprovalStatus(s), nil
	}
	return "", &core.UnknownStatusError{EntityKind: "rate approval", Value: s}
}

// Approval is one proposed rate change for an entity (placement, job, or
// vendor agreement).
type Approval struct {
	ID         core.ApprovalID
	OrgID      core.OrgID
	EntityType string
	EntityID   string

	Proposed Quote
	Status   ApprovalStatus

	// Margin snapshot computed at submission for fast list rendering.
	// Authoritative margin is always recomputed from the quote.
	BelowMinimum bool

	RequestedBy core.ActorID
	DecidedBy   *core.ActorID
	DecidedAt   *time.Time
	Message     string

	Revision  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// APPROVAL STORE - Persistence interface
// =============================================================================

// ApprovalStore persists approvals. Updates carry the revision read earlier;
// a mismatch surfaces core.ErrConcurrentModification.
type ApprovalStore interface {
	CreateApproval(ctx context.Context, a *Approval) error
	GetApproval(ctx context.Context, orgID core.OrgID, id core.ApprovalID) (*Approval, error)
	UpdateApproval(ctx context.Context, a *Approval, expectedRevision int) error
	AppendAudit(ctx context.Context, entry core.AuditEntry) error
}

// =============================================================================
// APPROVAL SERVICE
// =============================================================================

// ApprovalService orchestrates the approval lifecycle.
type ApprovalService struct {
	Store        ApprovalStore
	Clock        core.Clock
	MinMarginPct decimal.Decimal
	NewID        func() string
}

// Submit creates a pending approval for a proposed quote.
func (s *ApprovalService) Submit(
	ctx context.Context,
	orgID core.OrgID,
	entityType, entityID string,
	proposed Quote,
	requestedBy core.ActorID,
	message string,
) (*Approval, error) {
	now := s.Clock.Now()

	a := &Approval{
		ID:           core.ApprovalID(s.NewID()),
		OrgID:        orgID,
		EntityType:   entityType,
		EntityID:     entityID,
		Proposed:     proposed,
		Status:       ApprovalPending,
		BelowMinimum: BelowMinimumMargin(proposed.Margin(), s.MinMarginPct),
		RequestedBy:  requestedBy,
		Message:      message,
		Revision:     1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.CreateApproval(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create approval: %w", err)
	}

	s.audit(ctx, a, "submitted", requestedBy, "", string(ApprovalPending), message)
	return a, nil
}

// Approve marks a pending approval as approved.
func (s *ApprovalService) Approve(ctx context.Context, orgID core.OrgID, id core.ApprovalID, approver core.ActorID) (*Approval, error) {
	return s.decide(ctx, orgID, id, approver, ApprovalApproved, "approved")
}

// Reject terminally refuses a pending approval. An empty reason gets the
// default rejection message.
func (s *ApprovalService) Reject(ctx context.Context, orgID core.OrgID, id core.ApprovalID, approver core.ActorID, reason string) (*Approval, error) {
	if reason == "" {
		reason = "rate change rejected"
	}
	return s.decide(ctx, orgID, id, approver, ApprovalRejected, reason)
}

// RequestChanges refuses a pending approval but leaves it open for
// resubmission. An empty reason gets the default message.
func (s *ApprovalService) RequestChanges(ctx context.Context, orgID core.OrgID, id core.ApprovalID, approver core.ActorID, reason string) (*Approval, error) {
	if reason == "" {
		reason = "changes requested before approval"
	}
	return s.decide(ctx, orgID, id, approver, ApprovalChangesRequested, reason)
}

func (s *ApprovalService) decide(ctx context.Context, orgID core.OrgID, id core.ApprovalID, approver core.ActorID, to ApprovalStatus, message string) (*Approval, error) {
	a, err := s.Store.GetApproval(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if a.Status != ApprovalPending {
		return nil, &core.TransitionError{
			EntityKind: "rate approval",
			From:       string(a.Status),
			To:         string(to),
			Reason:     "only pending approvals can be decided",
		}
	}

	now := s.Clock.Now()
	from := a.Status
	a.Status = to
	a.DecidedBy = &approver
	a.DecidedAt = &now
	a.Message = message
	a.UpdatedAt = now

	if err := s.Store.UpdateApproval(ctx, a, a.Revision); err != nil {
		return nil, err
	}

	s.audit(ctx, a, "decided", approver, string(from), string(to), message)
	return a, nil
}

// Resubmit replaces the quote on a changes_requested approval and returns it
// to pending. Rejected approvals stay rejected; a new submission is required.
func (s *ApprovalService) Resubmit(ctx context.Context, orgID core.OrgID, id core.ApprovalID, proposed Quote, requestedBy core.ActorID) (*Approval, error) {
	a, err := s.Store.GetApproval(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if a.Status != ApprovalChangesRequested {
		return nil, &core.TransitionError{
			EntityKind: "rate approval",
			From:       string(a.Status),
			To:         string(ApprovalPending),
			Reason:     "only changes_requested approvals can be resubmitted",
		}
	}

	now := s.Clock.Now()
	from := a.Status
	a.Proposed = proposed
	a.BelowMinimum = BelowMinimumMargin(proposed.Margin(), s.MinMarginPct)
	a.Status = ApprovalPending
	a.DecidedBy = nil
	a.DecidedAt = nil
	a.Message = ""
	a.RequestedBy = requestedBy
	a.UpdatedAt = now

	if err := s.Store.UpdateApproval(ctx, a, a.Revision); err != nil {
		return nil, err
	}

	s.audit(ctx, a, "resubmitted", requestedBy, string(from), string(ApprovalPending), "")
	return a, nil
}

func (s *ApprovalService) audit(ctx context.Context, a *Approval, action string, actor core.ActorID, from, to, detail string) {
	// Audit failures are logged by the store, never block the operation.
	_ = s.Store.AppendAudit(ctx, core.AuditEntry{
		ID:         s.NewID(),
		OrgID:      a.OrgID,
		EntityKind: "rate_approval",
		EntityID:   string(a.ID),
		Action:     action,
		ActorID:    actor,
		FromStatus: from,
		ToStatus:   to,
		Detail:     detail,
		At:         s.Clock.Now(),
	})
}
