/*
handlers_compliance.go - Compliance requirement and item handlers

PURPOSE:
  Exposes the compliance tracking slice: requirement catalogs, tracked
  items per entity, the verification lifecycle, and the expiry alert feed.

ENDPOINTS (all org-scoped):
  Requirements:
    GET    /compliance/requirements        List catalog
    POST   /compliance/requirements        Create requirement
    GET    /compliance/requirements/{id}   Get one

  Items:
    GET    /compliance/items               List, ?entity_type=&entity_id=
    POST   /compliance/items               Create pending item
    GET    /compliance/items/{id}          Get with display status
    GET    /compliance/items/{id}/audit    Audit trail
    POST   .../{id}/receive|review|verify|reject|waive|expire

  Alerts:
    GET    /compliance/alerts              Items expiring inside the
                                           lookahead window, with urgency

DISPLAY STATUS:
  GET responses carry both the stored status and a display status derived
  against the request clock. Expired is committed only through the
  explicit /expire transition; reads never write.

SEE ALSO:
  - handlers.go: Handler struct, error mapping, shared helpers
  - ../compliance: Lifecycle and urgency logic
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/staffing-engine/compliance"
	"github.com/warp/staffing-engine/core"
	"github.com/warp/staffing-engine/pkg/logger"
)

// =============================================================================
// REQUIREMENT HANDLERS
// =============================================================================

// ListRequirements returns the org's requirement catalog.
func (h *Handler) ListRequirements(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Store.ListRequirements(r.Context(), orgParam(r))
	if err != nil {
		writeInternalError(w, r, "Failed to list requirements", err)
		return
	}

	dtos := make([]RequirementDTO, len(reqs))
	for i, req := range reqs {
		dtos[i] = toRequirementDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRequirement adds a requirement to the org's catalog.
func (h *Handler) CreateRequirement(w http.ResponseWriter, r *http.Request) {
	var req CreateRequirementRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	requirement := &compliance.Requirement{
		ID:            core.RequirementID(h.NewID()),
		OrgID:         orgParam(r),
		Name:          req.Name,
		Category:      req.Category,
		Description:   req.Description,
		ValidityDays:  req.ValidityDays,
		LookaheadDays: req.LookaheadDays,
		CreatedAt:     h.now(),
	}
	if err := h.Store.SaveRequirement(r.Context(), requirement); err != nil {
		writeInternalError(w, r, "Failed to create requirement", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequirementDTO(requirement))
}

// GetRequirement returns one requirement.
func (h *Handler) GetRequirement(w http.ResponseWriter, r *http.Request) {
	req, err := h.Store.GetRequirement(r.Context(), orgParam(r), core.RequirementID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequirementDTO(req))
}

// =============================================================================
// COMPLIANCE ITEM HANDLERS
// =============================================================================

// ListComplianceItems returns the org's tracked items, optionally filtered
// by ?entity_type= and ?entity_id=.
func (h *Handler) ListComplianceItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.Store.ListComplianceItems(r.Context(), orgParam(r), q.Get("entity_type"), q.Get("entity_id"))
	if err != nil {
		writeInternalError(w, r, "Failed to list compliance items", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toComplianceItemDTOs(items))
}

// CreateComplianceItem creates a pending item for an entity.
func (h *Handler) CreateComplianceItem(w http.ResponseWriter, r *http.Request) {
	var req CreateComplianceItemRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	orgID := orgParam(r)
	now := h.now()
	it := &compliance.Item{
		ID:         core.ComplianceItemID(h.NewID()),
		OrgID:      orgID,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Status:     compliance.StatusPending,
		Notes:      req.Notes,
		Revision:   1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.RequirementID != nil {
		reqID := core.RequirementID(*req.RequirementID)
		// The requirement must exist in this org.
		if _, err := h.Store.GetRequirement(ctx, orgID, reqID); err != nil {
			writeDomainError(w, r, err)
			return
		}
		it.RequirementID = &reqID
	}

	var err error
	if it.EffectiveDate, err = parseDatePtr(req.EffectiveDate); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid effective_date", err)
		return
	}
	if it.ExpiryDate, err = parseDatePtr(req.ExpiryDate); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid expiry_date", err)
		return
	}

	if err := h.Store.CreateComplianceItem(ctx, it); err != nil {
		writeInternalError(w, r, "Failed to create compliance item", err)
		return
	}
	h.audit(r, orgID, "compliance_item", string(it.ID), "created", "", "", string(it.Status), "")

	writeJSON(w, http.StatusCreated, toComplianceItemDTO(it, now, h.lookaheadFor(nil)))
}

// GetComplianceItem returns one item with its derived display status.
func (h *Handler) GetComplianceItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID := orgParam(r)
	it, err := h.Store.GetComplianceItem(ctx, orgID, core.ComplianceItemID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toComplianceItemDTO(it, h.now(), h.itemLookahead(ctx, it)))
}

// GetComplianceItemAudit returns the audit trail for an item.
func (h *Handler) GetComplianceItemAudit(w http.ResponseWriter, r *http.Request) {
	orgID := orgParam(r)
	id := chi.URLParam(r, "id")
	if _, err := h.Store.GetComplianceItem(r.Context(), orgID, core.ComplianceItemID(id)); err != nil {
		writeDomainError(w, r, err)
		return
	}
	entries, err := h.Store.ListAudit(r.Context(), orgID, "compliance_item", id)
	if err != nil {
		writeInternalError(w, r, "Failed to list audit entries", err)
		return
	}
	dtos := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toAuditEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// COMPLIANCE LIFECYCLE HANDLERS
// =============================================================================

// ReceiveComplianceItem records the document as received.
func (h *Handler) ReceiveComplianceItem(w http.ResponseWriter, r *http.Request) {
	h.transitionComplianceItem(w, r, "received", func(it *compliance.Item, _ ActorRequest, now time.Time) error {
		return it.Receive(now)
	})
}

// ReviewComplianceItem moves a received item into review.
func (h *Handler) ReviewComplianceItem(w http.ResponseWriter, r *http.Request) {
	h.transitionComplianceItem(w, r, "review_started", func(it *compliance.Item, _ ActorRequest, now time.Time) error {
		return it.StartReview(now)
	})
}

// VerifyComplianceItem marks the item verified, deriving the expiry date
// from the requirement's validity window when one is linked.
func (h *Handler) VerifyComplianceItem(w http.ResponseWriter, r *http.Request) {
	h.transitionComplianceItem(w, r, "verified", func(it *compliance.Item, req ActorRequest, now time.Time) error {
		var requirement *compliance.Requirement
		if it.RequirementID != nil {
			var err error
			requirement, err = h.Store.GetRequirement(r.Context(), it.OrgID, *it.RequirementID)
			if err != nil {
				return err
			}
		}
		return it.Verify(core.ActorID(req.Actor), requirement, now)
	})
}

// RejectComplianceItem rejects the submitted document.
func (h *Handler) RejectComplianceItem(w http.ResponseWriter, r *http.Request) {
	h.transitionComplianceItem(w, r, "rejected", func(it *compliance.Item, req ActorRequest, now time.Time) error {
		return it.Reject(req.Reason, now)
	})
}

// WaiveComplianceItem waives the requirement for this entity.
func (h *Handler) WaiveComplianceItem(w http.ResponseWriter, r *http.Request) {
	h.transitionComplianceItem(w, r, "waived", func(it *compliance.Item, req ActorRequest, now time.Time) error {
		return it.Waive(core.ActorID(req.Actor), req.Reason, now)
	})
}

// MarkComplianceItemExpired commits the expired status for an item whose
// expiry date has passed.
func (h *Handler) MarkComplianceItemExpired(w http.ResponseWriter, r *http.Request) {
	h.transitionComplianceItem(w, r, "expired", func(it *compliance.Item, _ ActorRequest, now time.Time) error {
		return it.MarkExpired(now)
	})
}

func (h *Handler) transitionComplianceItem(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	apply func(it *compliance.Item, req ActorRequest, now time.Time) error,
) {
	var req ActorRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	orgID := orgParam(r)
	it, err := h.Store.GetComplianceItem(ctx, orgID, core.ComplianceItemID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	now := h.now()
	from := it.Status
	if err := apply(it, req, now); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := h.Store.UpdateComplianceItem(ctx, it, it.Revision); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.audit(r, orgID, "compliance_item", string(it.ID), action, req.Actor, string(from), string(it.Status), req.Reason)

	writeJSON(w, http.StatusOK, toComplianceItemDTO(it, now, h.itemLookahead(ctx, it)))
}

// =============================================================================
// ALERT HANDLERS
// =============================================================================

// ListComplianceAlerts returns items whose expiry date falls inside the
// lookahead window (?days= overrides the default), sorted by the store from
// soonest expiry, each tagged with an urgency bucket.
func (h *Handler) ListComplianceAlerts(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", h.lookaheadFor(nil))
	now := h.now()
	items, err := h.Store.ListComplianceExpiring(r.Context(), orgParam(r), now, days)
	if err != nil {
		writeInternalError(w, r, "Failed to list expiring items", err)
		return
	}

	alerts := make([]ComplianceAlertDTO, 0, len(items))
	for _, it := range items {
		urgency := compliance.ItemUrgency(it, now, days)
		if urgency == compliance.UrgencyNone {
			continue
		}
		alerts = append(alerts, ComplianceAlertDTO{
			Item:            toComplianceItemDTO(it, now, days),
			DaysUntilExpiry: core.DaysUntil(now, *it.ExpiryDate),
			Urgency:         string(urgency),
		})
	}
	writeJSON(w, http.StatusOK, alerts)
}

// =============================================================================
// LOOKAHEAD RESOLUTION
// =============================================================================

// lookaheadFor resolves the lookahead window: the requirement's own window
// when set, otherwise the handler default, otherwise the package default.
func (h *Handler) lookaheadFor(req *compliance.Requirement) int {
	if req != nil && req.LookaheadDays > 0 {
		return req.LookaheadDays
	}
	if h.LookaheadDays > 0 {
		return h.LookaheadDays
	}
	return compliance.DefaultLookaheadDays
}

// itemLookahead resolves the lookahead for an item, following its
// requirement link when present. Lookup failures fall back to the default;
// display derivation must not fail a read.
func (h *Handler) itemLookahead(ctx context.Context, it *compliance.Item) int {
	if it.RequirementID == nil {
		return h.lookaheadFor(nil)
	}
	req, err := h.Store.GetRequirement(ctx, it.OrgID, *it.RequirementID)
	if err != nil {
		logger.Debug(ctx, "requirement lookup failed, using default lookahead", "error", err, "requirement_id", string(*it.RequirementID))
		return h.lookaheadFor(nil)
	}
	return h.lookaheadFor(req)
}

func (h *Handler) toComplianceItemDTOs(items []*compliance.Item) []ComplianceItemDTO {
	now := h.now()
	dtos := make([]ComplianceItemDTO, len(items))
	for i, it := range items {
		// List views use the default window; detail views resolve the
		// requirement's own window.
		dtos[i] = toComplianceItemDTO(it, now, h.lookaheadFor(nil))
	}
	return dtos
}
