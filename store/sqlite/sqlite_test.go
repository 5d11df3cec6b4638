package sqlite_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/staffing-engine/compliance"
	"github.com/warp/staffing-engine/contract"
	"github.com/warp/staffing-engine/core"
	"github.com/warp/staffing-engine/rate"
	"github.com/warp/staffing-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var june1 = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func datePtr(year int, month time.Month, day int) *time.Time {
	ts := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &ts
}

func seedOrg(t *testing.T, store *sqlite.Store, id core.OrgID) {
	t.Helper()
	err := store.SaveOrganization(context.Background(), core.Organization{
		ID: id, Name: string(id), CreatedAt: june1,
	})
	require.NoError(t, err)
}

func seedContract(t *testing.T, store *sqlite.Store, orgID core.OrgID, id core.ContractID, status contract.Status) *contract.Contract {
	t.Helper()
	value := decimal.NewFromInt(250000)
	c := &contract.Contract{
		ID:             id,
		OrgID:          orgID,
		ContractNumber: "MSA-2025-001",
		Status:         status,
		EffectiveDate:  datePtr(2025, time.January, 1),
		ExpiryDate:     datePtr(2025, time.December, 31),
		ContractValue:  &value,
		Currency:       "USD",

		RenewalNoticeDays: 30,
		Version:           1,
		IsLatestVersion:   true,
		Signatories: []contract.Signatory{
			{ID: core.SignatoryID(string(id) + "-sig-1"), ContractID: id, Name: "Client", Email: "client@example.com", Required: true, State: contract.SignatoryPending},
		},
		Revision:  1,
		CreatedAt: june1,
		UpdatedAt: june1,
	}
	require.NoError(t, store.CreateContract(context.Background(), c))
	return c
}

// =============================================================================
// CONTRACT PERSISTENCE TESTS
// =============================================================================

func TestStore_ContractRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedOrg(t, store, "org-1")
	seedContract(t, store, "org-1", "con-1", contract.StatusDraft)

	got, err := store.GetContract(ctx, "org-1", "con-1")

	require.NoError(t, err)
	assert.Equal(t, "MSA-2025-001", got.ContractNumber)
	assert.Equal(t, contract.StatusDraft, got.Status)
	require.NotNil(t, got.ContractValue)
	assert.True(t, got.ContractValue.Equal(decimal.NewFromInt(250000)))
	assert.Equal(t, *datePtr(2025, time.December, 31), *got.ExpiryDate)
	require.Len(t, got.Signatories, 1)
	assert.Equal(t, "Client", got.Signatories[0].Name)
	assert.Equal(t, contract.SignatoryPending, got.Signatories[0].State)
	assert.Equal(t, 1, got.Revision)
}

func TestStore_GetContract_CrossOrg_NotFound(t *testing.T) {
	// GIVEN: A contract in org-1
	// WHEN: org-2 asks for it by ID
	// THEN: NotFound, indistinguishable from a missing record

	store := newTestStore(t)
	seedOrg(t, store, "org-1")
	seedOrg(t, store, "org-2")
	seedContract(t, store, "org-1", "con-1", contract.StatusDraft)

	_, err := store.GetContract(context.Background(), "org-2", "con-1")

	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_UpdateContract_BumpsRevision(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedOrg(t, store, "org-1")
	c := seedContract(t, store, "org-1", "con-1", contract.StatusDraft)

	require.NoError(t, c.SubmitForReview(june1))
	require.NoError(t, store.UpdateContract(ctx, c, 1))
	assert.Equal(t, 2, c.Revision)

	got, err := store.GetContract(ctx, "org-1", "con-1")
	require.NoError(t, err)
	assert.Equal(t, contract.StatusPendingReview, got.Status)
	assert.Equal(t, 2, got.Revision)
}

func TestStore_UpdateContract_StaleRevision_Conflict(t *testing.T) {
	// GIVEN: Two operators loaded revision 1
	// WHEN: Both save
	// THEN: The first wins, the second gets ErrConcurrentModification

	store := newTestStore(t)
	ctx := context.Background()
	seedOrg(t, store, "org-1")
	seedContract(t, store, "org-1", "con-1", contract.StatusDraft)

	first, err := store.GetContract(ctx, "org-1", "con-1")
	require.NoError(t, err)
	second, err := store.GetContract(ctx, "org-1", "con-1")
	require.NoError(t, err)

	require.NoError(t, first.SubmitForReview(june1))
	require.NoError(t, store.UpdateContract(ctx, first, first.Revision))

	require.NoError(t, second.SubmitForReview(june1))
	err = store.UpdateContract(ctx, second, second.Revision)

	assert.ErrorIs(t, err, core.ErrConcurrentModification)
}

func TestStore_ZeroTimestampsRoundTripAsZero(t *testing.T) {
	// GIVEN: A contract persisted without timestamps
	// WHEN: Reading it back
	// THEN: The timestamps are still zero; the store never mints wall-clock
	//       time on its own

	store := newTestStore(t)
	ctx := context.Background()
	seedOrg(t, store, "org-1")
	c := &contract.Contract{
		ID: "con-z", OrgID: "org-1", ContractNumber: "MSA-Z", Status: contract.StatusDraft,
		Currency: "USD", Version: 1, IsLatestVersion: true, Revision: 1,
	}
	require.NoError(t, store.CreateContract(ctx, c))

	got, err := store.GetContract(ctx, "org-1", "con-z")
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.IsZero())
	assert.True(t, got.UpdatedAt.IsZero())
}

func TestStore_UpdateContract_Missing_NotFound(t *testing.T) {
	store := newTestStore(t)
	seedOrg(t, store, "org-1")
	c := &contract.Contract{
		ID: "ghost", OrgID: "org-1", ContractNumber: "X", Status: contract.StatusDraft,
		Currency: "USD", Version: 1, Revision: 1, CreatedAt: june1, UpdatedAt: june1,
	}

	err := store.UpdateContract(context.Background(), c, 1)

	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_UpdateContract_ReplacesSignatories(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedOrg(t, store, "org-1")
	c := seedContract(t, store, "org-1", "con-1", contract.StatusDraft)

	c.Signatories = append(c.Signatories, contract.Signatory{
		ID: "con-1-sig-2", ContractID: "con-1", Name: "Agency", Required: true, State: contract.SignatoryPending,
	})
	require.NoError(t, store.UpdateContract(ctx, c, 1))

	got, err := store.GetContract(ctx, "org-1", "con-1")
	require.NoError(t, err)
	assert.Len(t, got.Signatories, 2)
}

// =============================================================================
// CONTRACT VERSION AND SWEEP QUERY TESTS
// =============================================================================

func TestStore_ListContractVersions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedOrg(t, store, "org-1")
	v1 := seedContract(t, store, "org-1", "con-1", contract.StatusActive)

	// Renew v1 into v2 and persist both. The carried signatories get fresh
	// IDs, as the API layer assigns them.
	next, err := v1.Renew("con-2", june1)
	require.NoError(t, err)
	for i := range next.Signatories {
		next.Signatories[i].ID = core.SignatoryID(fmt.Sprintf("con-2-sig-%d", i+1))
	}
	require.NoError(t, store.UpdateContract(ctx, v1, 1))
	require.NoError(t, store.CreateContract(ctx, next))

	versions, err := store.ListContractVersions(ctx, "org-1", "MSA-2025-001")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 1, versions[0].Version)
	assert.Equal(t, 2, versions[1].Version)
	assert.False(t, versions[0].IsLatestVersion)
	assert.True(t, versions[1].IsLatestVersion)

	// latestOnly filters the renewed-away version.
	latest, err := store.ListContracts(ctx, "org-1", true)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, core.ContractID("con-2"), latest[0].ID)
}

func TestStore_ListContractsNeedingExpiry(t *testing.T) {
	// GIVEN: An active contract past expiry, one far from expiry, and a
	//        terminated one past expiry
	// WHEN: Sweeping for contracts needing the expiry transition
	// THEN: Only the active past-expiry contract is flagged

	store := newTestStore(t)
	ctx := context.Background()
	seedOrg(t, store, "org-1")

	past := seedContract(t, store, "org-1", "con-past", contract.StatusActive)
	past.ExpiryDate = datePtr(2025, time.May, 31)
	require.NoError(t, store.UpdateContract(ctx, past, 1))

	seedContract(t, store, "org-1", "con-future", contract.StatusActive)

	terminated := seedContract(t, store, "org-1", "con-done", contract.StatusTerminated)
	terminated.ExpiryDate = datePtr(2025, time.May, 31)
	require.NoError(t, store.UpdateContract(ctx, terminated, 1))

	flagged, err := store.ListContractsNeedingExpiry(ctx, "org-1", june1)

	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, core.ContractID("con-past"), flagged[0].ID)
}

func TestStore_ListContractsExpiring(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedOrg(t, store, "org-1")

	soon := seedContract(t, store, "org-1", "con-soon", contract.StatusActive)
	soon.ExpiryDate = datePtr(2025, time.June, 15)
	require.NoError(t, store.UpdateContract(ctx, soon, 1))

	seedContract(t, store, "org-1", "con-later", contract.StatusActive) // expires Dec 31

	expiring, err := store.ListContractsExpiring(ctx, "org-1", june1, 30)

	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, core.ContractID("con-soon"), expiring[0].ID)
}

// =============================================================================
// COMPLIANCE PERSISTENCE TESTS
// =============================================================================

func TestStore_ComplianceItemRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedOrg(t, store, "org-1")

	req := &compliance.Requirement{
		ID: "req-1", OrgID: "org-1", Name: "Background check",
		Category: "screening", ValidityDays: 90, LookaheadDays: 14, CreatedAt: june1,
	}
	require.NoError(t, store.SaveRequirement(ctx, req))

	reqID := core.RequirementID("req-1")
	it := &compliance.Item{
		ID: "item-1", OrgID: "org-1", EntityType: "contractor", EntityID: "ctr-1",
		RequirementID: &reqID, Status: compliance.StatusPending,
		Revision: 1, CreatedAt: june1, UpdatedAt: june1,
	}
	require.NoError(t, store.CreateComplianceItem(ctx, it))

	got, err := store.GetComplianceItem(ctx, "org-1", "item-1")
	require.NoError(t, err)
	assert.Equal(t, compliance.StatusPending, got.Status)
	require.NotNil(t, got.RequirementID)
	assert.Equal(t, reqID, *got.RequirementID)
}

func TestStore_UpdateComplianceItem_StaleRevision_Conflict(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedOrg(t, store, "org-1")
	it := &compliance.Item{
		ID: "item-1", OrgID: "org-1", EntityType: "contractor", EntityID: "ctr-1",
		Status: compliance.StatusPending, Revision: 1, CreatedAt: june1, UpdatedAt: june1,
	}
	require.NoError(t, store.CreateComplianceItem(ctx, it))

	require.NoError(t, it.Receive(june1))
	require.NoError(t, store.UpdateComplianceItem(ctx, it, 1))
	assert.Equal(t, 2, it.Revision)

	err := store.UpdateComplianceItem(ctx, it, 1)

	assert.ErrorIs(t, err, core.ErrConcurrentModification)
}

func TestStore_ListComplianceExpiring_SkipsWaived(t *testing.T) {
	// GIVEN: A verified item expiring soon and a waived one expiring sooner
	// WHEN: Listing the expiring window
	// THEN: Only the verified item appears, soonest first

	store := newTestStore(t)
	ctx := context.Background()
	seedOrg(t, store, "org-1")

	verified := &compliance.Item{
		ID: "item-1", OrgID: "org-1", EntityType: "contractor", EntityID: "ctr-1",
		Status: compliance.StatusVerified, ExpiryDate: datePtr(2025, time.June, 20),
		Revision: 1, CreatedAt: june1, UpdatedAt: june1,
	}
	waived := &compliance.Item{
		ID: "item-2", OrgID: "org-1", EntityType: "contractor", EntityID: "ctr-1",
		Status: compliance.StatusWaived, ExpiryDate: datePtr(2025, time.June, 10),
		Revision: 1, CreatedAt: june1, UpdatedAt: june1,
	}
	require.NoError(t, store.CreateComplianceItem(ctx, verified))
	require.NoError(t, store.CreateComplianceItem(ctx, waived))

	items, err := store.ListComplianceExpiring(ctx, "org-1", june1, 30)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, core.ComplianceItemID("item-1"), items[0].ID)
}

// =============================================================================
// RATE CARD PERSISTENCE TESTS
// =============================================================================

func TestStore_RateCardRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedOrg(t, store, "org-1")

	card := &rate.Card{
		ID: "card-1", OrgID: "org-1", Name: "Engineering", Currency: "USD",
		Unit: rate.UnitHourly, Version: 1, IsLatestVersion: true,
		Items: []rate.CardItem{
			{
				ID: "li-1", CardID: "card-1", JobCategory: "engineering", JobLevel: "senior",
				MinPayRate:   decimal.NewFromInt(80),
				MaxPayRate:   decimal.NewFromInt(120),
				MinMarginPct: decimal.NewFromInt(15),
			},
		},
		CreatedAt: june1, UpdatedAt: june1,
	}
	require.NoError(t, store.SaveRateCard(ctx, card))

	got, err := store.GetRateCard(ctx, "org-1", "card-1")
	require.NoError(t, err)
	assert.Equal(t, "Engineering", got.Name)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].MinPayRate.Equal(decimal.NewFromInt(80)))
	assert.True(t, got.Items[0].MinMarginPct.Equal(decimal.NewFromInt(15)))
}

func TestStore_RateCardVersionChain(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedOrg(t, store, "org-1")

	v1 := &rate.Card{
		ID: "card-1", OrgID: "org-1", Name: "Engineering", Currency: "USD",
		Unit: rate.UnitHourly, Version: 1, IsLatestVersion: true,
		CreatedAt: june1, UpdatedAt: june1,
	}
	require.NoError(t, store.SaveRateCard(ctx, v1))

	v2 := v1.NextVersion("card-2", june1)
	require.NoError(t, store.SaveRateCard(ctx, v1)) // persist superseded flag
	require.NoError(t, store.SaveRateCard(ctx, v2))

	versions, err := store.ListRateCardVersions(ctx, "org-1", "Engineering")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.False(t, versions[0].IsLatestVersion)
	assert.True(t, versions[1].IsLatestVersion)

	latest, err := store.ListRateCards(ctx, "org-1", true)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, core.RateCardID("card-2"), latest[0].ID)
}

// =============================================================================
// RATE APPROVAL PERSISTENCE TESTS
// =============================================================================

func TestStore_ApprovalRoundTripAndFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedOrg(t, store, "org-1")

	pending := &rate.Approval{
		ID: "appr-1", OrgID: "org-1", EntityType: "placement", EntityID: "pl-1",
		Proposed: rate.Quote{
			BillRate: decimal.NewFromInt(125), PayRate: decimal.NewFromInt(100),
			Unit: rate.UnitHourly, Currency: "USD", EffectiveAt: june1,
		},
		Status: rate.ApprovalPending, RequestedBy: "alex",
		Revision: 1, CreatedAt: june1, UpdatedAt: june1,
	}
	require.NoError(t, store.CreateApproval(ctx, pending))

	got, err := store.GetApproval(ctx, "org-1", "appr-1")
	require.NoError(t, err)
	assert.True(t, got.Proposed.BillRate.Equal(decimal.NewFromInt(125)))
	assert.Equal(t, rate.ApprovalPending, got.Status)

	decidedBy := core.ActorID("morgan")
	decidedAt := june1.Add(time.Hour)
	got.Status = rate.ApprovalApproved
	got.DecidedBy = &decidedBy
	got.DecidedAt = &decidedAt
	require.NoError(t, store.UpdateApproval(ctx, got, 1))
	assert.Equal(t, 2, got.Revision)

	approved, err := store.ListApprovals(ctx, "org-1", rate.ApprovalApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	require.NotNil(t, approved[0].DecidedBy)
	assert.Equal(t, decidedBy, *approved[0].DecidedBy)

	stillPending, err := store.ListApprovals(ctx, "org-1", rate.ApprovalPending)
	require.NoError(t, err)
	assert.Empty(t, stillPending)
}

// =============================================================================
// AUDIT LOG TESTS
// =============================================================================

func TestStore_AuditAppendAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedOrg(t, store, "org-1")

	entries := []core.AuditEntry{
		{ID: "a-1", OrgID: "org-1", EntityKind: "contract", EntityID: "con-1", Action: "created", ActorID: "alex", ToStatus: "draft", At: june1},
		{ID: "a-2", OrgID: "org-1", EntityKind: "contract", EntityID: "con-1", Action: "submitted_for_review", ActorID: "alex", FromStatus: "draft", ToStatus: "pending_review", At: june1.Add(time.Minute)},
		{ID: "a-3", OrgID: "org-1", EntityKind: "contract", EntityID: "con-2", Action: "created", ActorID: "alex", ToStatus: "draft", At: june1},
	}
	for _, e := range entries {
		require.NoError(t, store.AppendAudit(ctx, e))
	}

	got, err := store.ListAudit(ctx, "org-1", "contract", "con-1")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "created", got[0].Action)
	assert.Equal(t, "submitted_for_review", got[1].Action)
	assert.Equal(t, "draft", got[1].FromStatus)

	// Audit entries are invisible across orgs.
	other, err := store.ListAudit(ctx, "org-2", "contract", "con-1")
	require.NoError(t, err)
	assert.Empty(t, other)
}
