package rate_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/staffing-engine/core"
	"github.com/warp/staffing-engine/rate"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// memApprovalStore is an in-memory ApprovalStore for workflow tests.
type memApprovalStore struct {
	approvals map[core.ApprovalID]*rate.Approval
	audit     []core.AuditEntry
}

func newMemApprovalStore() *memApprovalStore {
	return &memApprovalStore{approvals: make(map[core.ApprovalID]*rate.Approval)}
}

func (m *memApprovalStore) CreateApproval(_ context.Context, a *rate.Approval) error {
	cp := *a
	m.approvals[a.ID] = &cp
	return nil
}

func (m *memApprovalStore) GetApproval(_ context.Context, orgID core.OrgID, id core.ApprovalID) (*rate.Approval, error) {
	a, ok := m.approvals[id]
	if !ok || a.OrgID != orgID {
		return nil, core.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memApprovalStore) UpdateApproval(_ context.Context, a *rate.Approval, expectedRevision int) error {
	stored, ok := m.approvals[a.ID]
	if !ok {
		return core.ErrNotFound
	}
	if stored.Revision != expectedRevision {
		return core.ErrConcurrentModification
	}
	cp := *a
	cp.Revision = expectedRevision + 1
	m.approvals[a.ID] = &cp
	a.Revision = cp.Revision
	return nil
}

func (m *memApprovalStore) AppendAudit(_ context.Context, entry core.AuditEntry) error {
	m.audit = append(m.audit, entry)
	return nil
}

func newApprovalService(store *memApprovalStore) *rate.ApprovalService {
	n := 0
	return &rate.ApprovalService{
		Store:        store,
		Clock:        core.NewFixedClock(2025, 6, 1),
		MinMarginPct: decimal.NewFromInt(10),
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
}

func submitQuote(t *testing.T, svc *rate.ApprovalService, bill, pay string) *rate.Approval {
	t.Helper()
	q := rate.Quote{
		BillRate: d(bill),
		PayRate:  d(pay),
		Unit:     rate.UnitHourly,
		Currency: "USD",
	}
	a, err := svc.Submit(context.Background(), "org-1", "placement", "pl-1", q, "alex", "new placement rate")
	require.NoError(t, err)
	return a
}

// =============================================================================
// SUBMISSION TESTS
// =============================================================================

func TestApprovalService_Submit_Pending(t *testing.T) {
	// GIVEN: A healthy 20% margin quote
	// WHEN: Submitting for approval
	// THEN: Approval is pending, not flagged below minimum

	store := newMemApprovalStore()
	svc := newApprovalService(store)

	a := submitQuote(t, svc, "125", "100")

	assert.Equal(t, rate.ApprovalPending, a.Status)
	assert.False(t, a.BelowMinimum)
	assert.Equal(t, 1, a.Revision)
	assert.Equal(t, core.ActorID("alex"), a.RequestedBy)
}

func TestApprovalService_Submit_FlagsThinMargin(t *testing.T) {
	// GIVEN: A quote with ~9% margin against a 10% minimum
	// WHEN: Submitting for approval
	// THEN: The approval is flagged below minimum but still accepted

	store := newMemApprovalStore()
	svc := newApprovalService(store)

	a := submitQuote(t, svc, "110", "100")

	assert.Equal(t, rate.ApprovalPending, a.Status)
	assert.True(t, a.BelowMinimum)
}

func TestApprovalService_Submit_WritesAudit(t *testing.T) {
	store := newMemApprovalStore()
	svc := newApprovalService(store)

	a := submitQuote(t, svc, "125", "100")

	require.Len(t, store.audit, 1)
	assert.Equal(t, "submitted", store.audit[0].Action)
	assert.Equal(t, string(a.ID), store.audit[0].EntityID)
}

// =============================================================================
// DECISION TESTS
// =============================================================================

func TestApprovalService_Approve(t *testing.T) {
	store := newMemApprovalStore()
	svc := newApprovalService(store)
	a := submitQuote(t, svc, "125", "100")

	decided, err := svc.Approve(context.Background(), "org-1", a.ID, "morgan")

	require.NoError(t, err)
	assert.Equal(t, rate.ApprovalApproved, decided.Status)
	require.NotNil(t, decided.DecidedBy)
	assert.Equal(t, core.ActorID("morgan"), *decided.DecidedBy)
	assert.NotNil(t, decided.DecidedAt)
	assert.Equal(t, 2, decided.Revision)
}

func TestApprovalService_Reject_DefaultMessage(t *testing.T) {
	store := newMemApprovalStore()
	svc := newApprovalService(store)
	a := submitQuote(t, svc, "125", "100")

	decided, err := svc.Reject(context.Background(), "org-1", a.ID, "morgan", "")

	require.NoError(t, err)
	assert.Equal(t, rate.ApprovalRejected, decided.Status)
	assert.Equal(t, "rate change rejected", decided.Message)
}

func TestApprovalService_DecideTwice_Fails(t *testing.T) {
	// GIVEN: An already approved approval
	// WHEN: Deciding it again
	// THEN: TransitionError; decisions are one-shot

	store := newMemApprovalStore()
	svc := newApprovalService(store)
	a := submitQuote(t, svc, "125", "100")

	_, err := svc.Approve(context.Background(), "org-1", a.ID, "morgan")
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), "org-1", a.ID, "morgan", "changed my mind")

	require.Error(t, err)
	var transErr *core.TransitionError
	assert.ErrorAs(t, err, &transErr)
	assert.ErrorIs(t, err, core.ErrPreconditionFailed)
}

func TestApprovalService_CrossOrg_NotFound(t *testing.T) {
	// GIVEN: An approval in org-1
	// WHEN: org-2 tries to approve it
	// THEN: NotFound; tenants cannot see each other's records

	store := newMemApprovalStore()
	svc := newApprovalService(store)
	a := submitQuote(t, svc, "125", "100")

	_, err := svc.Approve(context.Background(), "org-2", a.ID, "morgan")

	assert.ErrorIs(t, err, core.ErrNotFound)
}

// =============================================================================
// RESUBMISSION TESTS
// =============================================================================

func TestApprovalService_RequestChanges_ThenResubmit(t *testing.T) {
	// GIVEN: An approval sent back for changes
	// WHEN: The requester resubmits with a healthier quote
	// THEN: The approval returns to pending with the new quote and no
	//       leftover decision fields

	store := newMemApprovalStore()
	svc := newApprovalService(store)
	ctx := context.Background()
	a := submitQuote(t, svc, "110", "100")

	sent, err := svc.RequestChanges(ctx, "org-1", a.ID, "morgan", "margin too thin")
	require.NoError(t, err)
	assert.Equal(t, rate.ApprovalChangesRequested, sent.Status)
	assert.Equal(t, "margin too thin", sent.Message)

	better := rate.Quote{BillRate: d("130"), PayRate: d("100"), Unit: rate.UnitHourly, Currency: "USD"}
	resubmitted, err := svc.Resubmit(ctx, "org-1", a.ID, better, "alex")

	require.NoError(t, err)
	assert.Equal(t, rate.ApprovalPending, resubmitted.Status)
	assert.False(t, resubmitted.BelowMinimum)
	assert.Nil(t, resubmitted.DecidedBy)
	assert.Nil(t, resubmitted.DecidedAt)
	assert.Empty(t, resubmitted.Message)
	assert.True(t, resubmitted.Proposed.BillRate.Equal(d("130")))
}

func TestApprovalService_Resubmit_RejectedStaysRejected(t *testing.T) {
	// GIVEN: A terminally rejected approval
	// WHEN: Attempting to resubmit
	// THEN: TransitionError; a rejected rate needs a fresh submission

	store := newMemApprovalStore()
	svc := newApprovalService(store)
	ctx := context.Background()
	a := submitQuote(t, svc, "110", "100")

	_, err := svc.Reject(ctx, "org-1", a.ID, "morgan", "")
	require.NoError(t, err)

	q := rate.Quote{BillRate: d("130"), PayRate: d("100"), Unit: rate.UnitHourly}
	_, err = svc.Resubmit(ctx, "org-1", a.ID, q, "alex")

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrPreconditionFailed)
}

// =============================================================================
// VERSION CARD TESTS
// =============================================================================

func TestCard_NextVersion(t *testing.T) {
	// GIVEN: Version 1 of a rate card
	// WHEN: Creating the next version
	// THEN: Version 2 carries the items; version 1 is no longer latest

	clock := core.NewFixedClock(2025, 6, 1)
	card := &rate.Card{
		ID:              "card-1",
		OrgID:           "org-1",
		Name:            "Engineering",
		Currency:        "USD",
		Unit:            rate.UnitHourly,
		Version:         1,
		IsLatestVersion: true,
		Items: []rate.CardItem{
			{ID: "item-1", CardID: "card-1", JobCategory: "engineering", JobLevel: "senior"},
		},
	}

	next := card.NextVersion("card-2", clock.Now())

	assert.Equal(t, 2, next.Version)
	assert.True(t, next.IsLatestVersion)
	assert.False(t, card.IsLatestVersion)
	assert.Len(t, next.Items, 1)
	assert.Equal(t, core.RateCardID("card-2"), next.Items[0].CardID)
}

func TestCard_Item_Lookup(t *testing.T) {
	card := &rate.Card{
		Items: []rate.CardItem{
			{JobCategory: "engineering", JobLevel: "senior", TargetBillRate: d("150")},
			{JobCategory: "engineering", JobLevel: "junior", TargetBillRate: d("95")},
		},
	}

	it, ok := card.Item("engineering", "junior")
	require.True(t, ok)
	assert.True(t, it.TargetBillRate.Equal(d("95")))

	_, ok = card.Item("finance", "senior")
	assert.False(t, ok)
}

func TestCardItem_CheckQuote_WithinBounds(t *testing.T) {
	item := rate.CardItem{
		MinPayRate: d("90"), MaxPayRate: d("120"), TargetPayRate: d("100"),
		MinBillRate: d("120"), MaxBillRate: d("170"), TargetBillRate: d("150"),
		MinMarginPct: d("15"),
	}

	issues := item.CheckQuote(rate.Quote{BillRate: d("150"), PayRate: d("115")})

	assert.Empty(t, issues)
}

func TestCardItem_CheckQuote_Deviations(t *testing.T) {
	// GIVEN: A line item with pay/bill bands and a 15% margin floor
	// WHEN: Checking a quote that busts the pay ceiling and the margin floor
	// THEN: Both deviations are reported

	item := rate.CardItem{
		MinPayRate: d("90"), MaxPayRate: d("120"),
		MinBillRate: d("120"), MaxBillRate: d("170"),
		MinMarginPct: d("15"),
	}

	issues := item.CheckQuote(rate.Quote{BillRate: d("135"), PayRate: d("125")})

	assert.Contains(t, issues, rate.IssuePayAboveMax)
	assert.Contains(t, issues, rate.IssueMarginBelowMin, "7.4%% margin is under the 15%% floor")
	assert.NotContains(t, issues, rate.IssueBillBelowMin)
}

func TestCardItem_CheckQuote_PartialInputSkipped(t *testing.T) {
	item := rate.CardItem{
		MinPayRate: d("90"), MaxPayRate: d("120"),
		MinBillRate: d("120"), MaxBillRate: d("170"),
		MinMarginPct: d("15"),
	}

	// Zero rates are editing-in-progress, not deviations; an undefined
	// margin never trips the floor.
	issues := item.CheckQuote(rate.Quote{BillRate: d("0"), PayRate: d("0")})

	assert.Empty(t, issues)
}
