/*
handlers_rates.go - Rate card, rate approval, and margin calculation handlers

PURPOSE:
  The rate side of the API: versioned rate cards, the approval workflow
  for out-of-band rates, and the pure margin calculation endpoints backed
  by the rate engine.

ENDPOINTS:
  Rate cards (org-scoped):
    GET    /rate-cards                 List (latest versions)
    POST   /rate-cards                 Create version 1
    GET    /rate-cards/{id}            Get one version
    GET    /rate-cards/{id}/versions   Version chain
    POST   /rate-cards/{id}/versions   Create the next version
    POST   /rate-cards/{id}/check      Validate a quote against a line item

  Rate approvals (org-scoped):
    GET    /rate-approvals             List, ?status= filter
    POST   /rate-approvals             Submit a proposed rate
    GET    /rate-approvals/{id}        Get one
    POST   /rate-approvals/{id}/approve|reject|request-changes|resubmit

  Calculations (stateless, no org scope):
    POST   /api/rates/margin           Margin figures for a bill/pay pair
    POST   /api/rates/bill-rate        Solve bill rate for a target margin
    POST   /api/rates/pay-rate         Solve pay rate for a target margin

DECIMAL DISCIPLINE:
  Rates arrive and leave as decimal strings; the handlers parse them with
  decimal.NewFromString and reject anything that does not parse. No floats.

SEE ALSO:
  - handlers.go: Handler struct, error mapping, shared helpers
  - ../rate: The margin engine and approval workflow
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/staffing-engine/core"
	"github.com/warp/staffing-engine/rate"
)

// =============================================================================
// CALCULATION HANDLERS - Pure, no persistence
// =============================================================================

// ComputeMargin returns the margin figures for a bill/pay rate pair. A pair
// with a zero or missing rate yields quality "unknown", not an error.
func (h *Handler) ComputeMargin(w http.ResponseWriter, r *http.Request) {
	var req MarginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	bill, pay, ok := h.parseRatePair(w, req.BillRate, req.PayRate)
	if !ok {
		return
	}

	res := rate.ComputeMargin(bill, pay)
	writeJSON(w, http.StatusOK, toMarginResultDTO(res, rate.BelowMinimumMargin(res, h.MinMarginPct)))
}

// SolveBillRate computes the bill rate that achieves a target margin over a
// pay rate. A target of 100% or more is unsatisfiable and rejected.
func (h *Handler) SolveBillRate(w http.ResponseWriter, r *http.Request) {
	var req SolveBillRateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	pay, target, ok := h.parseRatePair(w, req.PayRate, req.TargetMarginPct)
	if !ok {
		return
	}

	bill, err := rate.BillRateFromPayAndMargin(pay, target)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := rate.ComputeMargin(bill, pay)
	dto := toMarginResultDTO(res, rate.BelowMinimumMargin(res, h.MinMarginPct))
	writeJSON(w, http.StatusOK, SolvedRateDTO{
		BillRate: bill.String(),
		PayRate:  pay.String(),
		Margin:   &dto,
	})
}

// SolvePayRate computes the pay rate that achieves a target margin under a
// bill rate.
func (h *Handler) SolvePayRate(w http.ResponseWriter, r *http.Request) {
	var req SolvePayRateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	bill, target, ok := h.parseRatePair(w, req.BillRate, req.TargetMarginPct)
	if !ok {
		return
	}

	pay, err := rate.PayRateFromBillAndMargin(bill, target)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := rate.ComputeMargin(bill, pay)
	dto := toMarginResultDTO(res, rate.BelowMinimumMargin(res, h.MinMarginPct))
	writeJSON(w, http.StatusOK, SolvedRateDTO{
		BillRate: bill.String(),
		PayRate:  pay.String(),
		Margin:   &dto,
	})
}

// parseRatePair parses two decimal strings, writing a 400 on failure.
func (h *Handler) parseRatePair(w http.ResponseWriter, first, second string) (decimal.Decimal, decimal.Decimal, bool) {
	a, err := decimal.NewFromString(first)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid decimal value: "+first, err)
		return decimal.Zero, decimal.Zero, false
	}
	b, err := decimal.NewFromString(second)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid decimal value: "+second, err)
		return decimal.Zero, decimal.Zero, false
	}
	return a, b, true
}

// =============================================================================
// RATE CARD HANDLERS
// =============================================================================

// ListRateCards returns rate cards for the org. By default only the latest
// version of each card name; ?all=true includes superseded versions.
func (h *Handler) ListRateCards(w http.ResponseWriter, r *http.Request) {
	latestOnly := r.URL.Query().Get("all") != "true"
	cards, err := h.Store.ListRateCards(r.Context(), orgParam(r), latestOnly)
	if err != nil {
		writeInternalError(w, r, "Failed to list rate cards", err)
		return
	}

	dtos := make([]RateCardDTO, len(cards))
	for i, c := range cards {
		dtos[i] = toRateCardDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRateCard creates version 1 of a new rate card.
func (h *Handler) CreateRateCard(w http.ResponseWriter, r *http.Request) {
	var req CreateRateCardRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	now := h.now()
	card := &rate.Card{
		ID:              core.RateCardID(h.NewID()),
		OrgID:           orgParam(r),
		Name:            req.Name,
		Currency:        req.Currency,
		Unit:            rate.UnitHourly,
		Version:         1,
		IsLatestVersion: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if card.Currency == "" {
		card.Currency = "USD"
	}
	if req.Unit != "" {
		u, err := rate.ParseUnit(req.Unit)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid unit", err)
			return
		}
		card.Unit = u
	}

	items, ok := h.buildCardItems(w, card.ID, req.Items)
	if !ok {
		return
	}
	card.Items = items

	if err := h.Store.SaveRateCard(r.Context(), card); err != nil {
		writeInternalError(w, r, "Failed to create rate card", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRateCardDTO(card))
}

// GetRateCard returns one rate card version with its items.
func (h *Handler) GetRateCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.Store.GetRateCard(r.Context(), orgParam(r), core.RateCardID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRateCardDTO(card))
}

// CheckRateCardQuote validates a proposed bill/pay pair against the card's
// line item for the given category and level. A missing line item is a 404;
// a quote outside its bounds is still a 200 carrying the deviations.
func (h *Handler) CheckRateCardQuote(w http.ResponseWriter, r *http.Request) {
	var req CheckQuoteRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.Store.GetRateCard(r.Context(), orgParam(r), core.RateCardID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	item, ok := card.Item(req.JobCategory, req.JobLevel)
	if !ok {
		writeError(w, http.StatusNotFound, "No rate card line for that category and level", core.ErrNotFound)
		return
	}

	bill, pay, ok := h.parseRatePair(w, req.BillRate, req.PayRate)
	if !ok {
		return
	}
	quote := rate.Quote{BillRate: bill, PayRate: pay, Unit: card.Unit, Currency: card.Currency, EffectiveAt: h.now()}

	issues := item.CheckQuote(quote)
	names := make([]string, len(issues))
	for i, issue := range issues {
		names[i] = string(issue)
	}
	res := quote.Margin()
	writeJSON(w, http.StatusOK, QuoteCheckDTO{
		WithinBounds: len(issues) == 0,
		Issues:       names,
		Margin:       toMarginResultDTO(res, rate.BelowMinimumMargin(res, h.MinMarginPct)),
	})
}

// ListRateCardVersions returns the version chain for the card's name,
// oldest first.
func (h *Handler) ListRateCardVersions(w http.ResponseWriter, r *http.Request) {
	orgID := orgParam(r)
	card, err := h.Store.GetRateCard(r.Context(), orgID, core.RateCardID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	versions, err := h.Store.ListRateCardVersions(r.Context(), orgID, card.Name)
	if err != nil {
		writeInternalError(w, r, "Failed to list versions", err)
		return
	}
	chain, err := core.NewVersionChain(versions...)
	if err != nil {
		writeInternalError(w, r, "Version chain is inconsistent", err)
		return
	}

	dtos := make([]RateCardDTO, chain.Len())
	for i, v := range chain.All() {
		dtos[i] = toRateCardDTO(v)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRateCardVersion creates the next version of an existing card. The
// request body carries the new item set; the old version is retained and
// marked superseded.
func (h *Handler) CreateRateCardVersion(w http.ResponseWriter, r *http.Request) {
	var req CreateRateCardRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	orgID := orgParam(r)
	card, err := h.Store.GetRateCard(ctx, orgID, core.RateCardID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !card.IsLatestVersion {
		writeError(w, http.StatusConflict, "Only the latest version can be versioned", core.ErrPreconditionFailed)
		return
	}

	next := card.NextVersion(core.RateCardID(h.NewID()), h.now())
	items, ok := h.buildCardItems(w, next.ID, req.Items)
	if !ok {
		return
	}
	next.Items = items

	if err := h.Store.SaveRateCard(ctx, card); err != nil {
		writeInternalError(w, r, "Failed to supersede old version", err)
		return
	}
	if err := h.Store.SaveRateCard(ctx, next); err != nil {
		writeInternalError(w, r, "Failed to create new version", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRateCardDTO(next))
}

func (h *Handler) buildCardItems(w http.ResponseWriter, cardID core.RateCardID, reqs []RateCardItemRequest) ([]rate.CardItem, bool) {
	items := make([]rate.CardItem, len(reqs))
	for i, ir := range reqs {
		item := rate.CardItem{
			ID:          h.NewID(),
			CardID:      cardID,
			JobCategory: ir.JobCategory,
			JobLevel:    ir.JobLevel,
		}
		fields := []struct {
			raw string
			dst *decimal.Decimal
		}{
			{ir.MinPayRate, &item.MinPayRate},
			{ir.MaxPayRate, &item.MaxPayRate},
			{ir.TargetPayRate, &item.TargetPayRate},
			{ir.MinBillRate, &item.MinBillRate},
			{ir.MaxBillRate, &item.MaxBillRate},
			{ir.TargetBillRate, &item.TargetBillRate},
			{ir.MinMarginPct, &item.MinMarginPct},
			{ir.TargetMarginPct, &item.TargetMarginPct},
		}
		for _, f := range fields {
			if f.raw == "" {
				continue
			}
			d, err := decimal.NewFromString(f.raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid decimal value: "+f.raw, err)
				return nil, false
			}
			*f.dst = d
		}
		items[i] = item
	}
	return items, true
}

// =============================================================================
// RATE APPROVAL HANDLERS
// =============================================================================

// ListApprovals returns rate approvals for the org, optionally filtered with
// ?status=pending|approved|rejected|changes_requested.
func (h *Handler) ListApprovals(w http.ResponseWriter, r *http.Request) {
	var status rate.ApprovalStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s, err := rate.ParseApprovalStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid status filter", err)
			return
		}
		status = s
	}

	approvals, err := h.Store.ListApprovals(r.Context(), orgParam(r), status)
	if err != nil {
		writeInternalError(w, r, "Failed to list approvals", err)
		return
	}

	dtos := make([]ApprovalDTO, len(approvals))
	for i, a := range approvals {
		dtos[i] = toApprovalDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SubmitApproval submits a proposed rate for approval.
func (h *Handler) SubmitApproval(w http.ResponseWriter, r *http.Request) {
	var req SubmitApprovalRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	quote, ok := h.buildQuote(w, req.BillRate, req.PayRate, req.Unit, req.Currency)
	if !ok {
		return
	}

	a, err := h.Approvals.Submit(r.Context(), orgParam(r), req.EntityType, req.EntityID, quote, core.ActorID(req.RequestedBy), req.Message)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toApprovalDTO(a))
}

// GetApproval returns one rate approval.
func (h *Handler) GetApproval(w http.ResponseWriter, r *http.Request) {
	a, err := h.Store.GetApproval(r.Context(), orgParam(r), core.ApprovalID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toApprovalDTO(a))
}

// ApproveRate approves a pending rate approval.
func (h *Handler) ApproveRate(w http.ResponseWriter, r *http.Request) {
	var req ActorRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	a, err := h.Approvals.Approve(r.Context(), orgParam(r), core.ApprovalID(chi.URLParam(r, "id")), core.ActorID(req.Actor))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toApprovalDTO(a))
}

// RejectRate rejects a pending rate approval. Rejection is terminal.
func (h *Handler) RejectRate(w http.ResponseWriter, r *http.Request) {
	var req ActorRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	a, err := h.Approvals.Reject(r.Context(), orgParam(r), core.ApprovalID(chi.URLParam(r, "id")), core.ActorID(req.Actor), req.Reason)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toApprovalDTO(a))
}

// RequestRateChanges sends a pending approval back for changes. Unlike
// rejection, the requester may resubmit.
func (h *Handler) RequestRateChanges(w http.ResponseWriter, r *http.Request) {
	var req ActorRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	a, err := h.Approvals.RequestChanges(r.Context(), orgParam(r), core.ApprovalID(chi.URLParam(r, "id")), core.ActorID(req.Actor), req.Reason)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toApprovalDTO(a))
}

// ResubmitRate resubmits a changes-requested approval with an updated quote.
func (h *Handler) ResubmitRate(w http.ResponseWriter, r *http.Request) {
	var req ResubmitApprovalRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	orgID := orgParam(r)
	id := core.ApprovalID(chi.URLParam(r, "id"))
	prev, err := h.Store.GetApproval(r.Context(), orgID, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	quote, ok := h.buildQuote(w, req.BillRate, req.PayRate, string(prev.Proposed.Unit), prev.Proposed.Currency)
	if !ok {
		return
	}

	a, err := h.Approvals.Resubmit(r.Context(), orgID, id, quote, core.ActorID(req.RequestedBy))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toApprovalDTO(a))
}

func (h *Handler) buildQuote(w http.ResponseWriter, billRate, payRate, unit, currency string) (rate.Quote, bool) {
	bill, pay, ok := h.parseRatePair(w, billRate, payRate)
	if !ok {
		return rate.Quote{}, false
	}

	q := rate.Quote{
		BillRate:    bill,
		PayRate:     pay,
		Unit:        rate.UnitHourly,
		Currency:    currency,
		EffectiveAt: h.now(),
	}
	if q.Currency == "" {
		q.Currency = "USD"
	}
	if unit != "" {
		u, err := rate.ParseUnit(unit)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid unit", err)
			return rate.Quote{}, false
		}
		q.Unit = u
	}
	return q, true
}
