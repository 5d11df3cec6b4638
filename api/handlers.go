/*
handlers.go - HTTP API handlers for organizations and contracts

PURPOSE:
  Exposes the staffing engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS (this file):
  Organizations:
    GET    /api/orgs                   List organizations
    POST   /api/orgs                   Create organization
    GET    /api/orgs/{orgID}           Get organization

  Contracts:
    GET    /api/orgs/{orgID}/contracts             List (latest versions)
    POST   /api/orgs/{orgID}/contracts             Create draft
    GET    /api/orgs/{orgID}/contracts/expiring    Expiring within window
    GET    /api/orgs/{orgID}/contracts/flagged     Awaiting expiry transition
    GET    /api/orgs/{orgID}/contracts/{id}        Get with display status
    GET    /api/orgs/{orgID}/contracts/{id}/versions  Version chain
    GET    /api/orgs/{orgID}/contracts/{id}/audit  Audit trail
    POST   .../{id}/submit|approve|activate|terminate|renew|supersede|expire
    POST   .../{id}/signatories                    Add signatory
    DELETE .../{id}/signatories/{sigID}            Remove (unless signed)
    POST   .../{id}/signatories/{sigID}/request|sign|decline|void

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Clock: Injected time source, fixed in tests
  - Validate: Request validation
  - Approvals: Rate approval workflow service

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (lifecycle, margin engine, etc.)
  4. Persist with the revision read in step 3
  5. Serialize response, handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found (including cross-org access)
  - 409: Conflict (guard violations, stale revisions)
  - 422: Unsatisfiable margin targets
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - handlers_compliance.go: Compliance endpoints
  - handlers_rates.go: Rate card, approval, and calculation endpoints
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/staffing-engine/contract"
	"github.com/warp/staffing-engine/core"
	"github.com/warp/staffing-engine/pkg/logger"
	"github.com/warp/staffing-engine/rate"
	"github.com/warp/staffing-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Clock     core.Clock
	Validate  *validator.Validate
	Approvals *rate.ApprovalService

	// Org-independent defaults, overridable per requirement/contract.
	LookaheadDays     int
	RenewalNoticeDays int
	MinMarginPct      decimal.Decimal

	// NewID generates entity IDs. Swapped for a deterministic sequence
	// in tests.
	NewID func() string
}

// NewHandler creates a handler with production defaults.
func NewHandler(store *sqlite.Store, clock core.Clock, minMarginPct decimal.Decimal, lookaheadDays, renewalNoticeDays int) *Handler {
	h := &Handler{
		Store:             store,
		Clock:             clock,
		Validate:          validator.New(),
		LookaheadDays:     lookaheadDays,
		RenewalNoticeDays: renewalNoticeDays,
		MinMarginPct:      minMarginPct,
		NewID:             uuid.NewString,
	}
	h.Approvals = &rate.ApprovalService{
		Store:        store,
		Clock:        clock,
		MinMarginPct: minMarginPct,
		NewID:        h.newID,
	}
	return h
}

func (h *Handler) newID() string { return h.NewID() }

func (h *Handler) now() time.Time { return h.Clock.Now() }

// renewalNotice is the configured default expiring-soon window for contracts
// that do not set their own.
func (h *Handler) renewalNotice() int {
	if h.RenewalNoticeDays > 0 {
		return h.RenewalNoticeDays
	}
	return contract.DefaultRenewalNoticeDays
}

// decodeAndValidate decodes the JSON body into dst and runs struct validation.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return false
	}
	if err := h.Validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

func orgParam(r *http.Request) core.OrgID {
	return core.OrgID(chi.URLParam(r, "orgID"))
}

// =============================================================================
// ORGANIZATION HANDLERS
// =============================================================================

// ListOrganizations returns all organizations.
func (h *Handler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.Store.ListOrganizations(r.Context())
	if err != nil {
		writeInternalError(w, r, "Failed to list organizations", err)
		return
	}

	dtos := make([]OrganizationDTO, len(orgs))
	for i, o := range orgs {
		dtos[i] = OrganizationDTO{
			ID:        string(o.ID),
			Name:      o.Name,
			CreatedAt: o.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateOrganization creates a new organization.
func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req CreateOrganizationRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	org := core.Organization{
		ID:        core.OrgID(h.NewID()),
		Name:      req.Name,
		CreatedAt: h.now(),
	}
	if err := h.Store.SaveOrganization(r.Context(), org); err != nil {
		writeInternalError(w, r, "Failed to create organization", err)
		return
	}

	writeJSON(w, http.StatusCreated, OrganizationDTO{
		ID:        string(org.ID),
		Name:      org.Name,
		CreatedAt: org.CreatedAt.Format(time.RFC3339),
	})
}

// GetOrganization returns a single organization.
func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := h.Store.GetOrganization(r.Context(), orgParam(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OrganizationDTO{
		ID:        string(org.ID),
		Name:      org.Name,
		CreatedAt: org.CreatedAt.Format(time.RFC3339),
	})
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

// ListContracts returns contracts for the org. By default only the latest
// version of each contract number; ?all=true includes superseded versions.
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	latestOnly := r.URL.Query().Get("all") != "true"
	contracts, err := h.Store.ListContracts(r.Context(), orgParam(r), latestOnly)
	if err != nil {
		writeInternalError(w, r, "Failed to list contracts", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toContractDTOs(contracts))
}

// CreateContract creates a new draft contract with its signatories.
func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req CreateContractRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	now := h.now()
	c := &contract.Contract{
		ID:                core.ContractID(h.NewID()),
		OrgID:             orgParam(r),
		ContractNumber:    req.ContractNumber,
		Status:            contract.StatusDraft,
		Currency:          req.Currency,
		RenewalNoticeDays: req.RenewalNoticeDays,
		Version:           1,
		IsLatestVersion:   true,
		Revision:          1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if c.Currency == "" {
		c.Currency = "USD"
	}
	if c.RenewalNoticeDays == 0 {
		c.RenewalNoticeDays = h.renewalNotice()
	}

	var err error
	if c.EffectiveDate, err = parseDatePtr(req.EffectiveDate); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid effective_date", err)
		return
	}
	if c.ExpiryDate, err = parseDatePtr(req.ExpiryDate); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid expiry_date", err)
		return
	}
	if req.ContractValue != nil {
		v, err := decimal.NewFromString(*req.ContractValue)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid contract_value", err)
			return
		}
		c.ContractValue = &v
	}

	for _, sr := range req.Signatories {
		c.Signatories = append(c.Signatories, contract.Signatory{
			ID:         core.SignatoryID(h.NewID()),
			ContractID: c.ID,
			Name:       sr.Name,
			Email:      sr.Email,
			Role:       sr.Role,
			Required:   sr.Required,
			State:      contract.SignatoryPending,
		})
	}

	if err := h.Store.CreateContract(r.Context(), c); err != nil {
		writeInternalError(w, r, "Failed to create contract", err)
		return
	}
	h.audit(r, c.OrgID, "contract", string(c.ID), "created", "", "", string(c.Status), "")

	writeJSON(w, http.StatusCreated, toContractDTO(c, now))
}

// GetContract returns a contract with its derived display status.
func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetContract(r.Context(), orgParam(r), core.ContractID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(c, h.now()))
}

// ListContractVersions returns the full version chain for the contract
// number of the given contract, oldest first.
func (h *Handler) ListContractVersions(w http.ResponseWriter, r *http.Request) {
	orgID := orgParam(r)
	c, err := h.Store.GetContract(r.Context(), orgID, core.ContractID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	versions, err := h.Store.ListContractVersions(r.Context(), orgID, c.ContractNumber)
	if err != nil {
		writeInternalError(w, r, "Failed to list versions", err)
		return
	}
	chain, err := core.NewVersionChain(versions...)
	if err != nil {
		// A gap in the chain means the stored versions are corrupt.
		writeInternalError(w, r, "Version chain is inconsistent", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toContractDTOs(chain.All()))
}

// GetContractAudit returns the audit trail for a contract.
func (h *Handler) GetContractAudit(w http.ResponseWriter, r *http.Request) {
	orgID := orgParam(r)
	id := chi.URLParam(r, "id")
	if _, err := h.Store.GetContract(r.Context(), orgID, core.ContractID(id)); err != nil {
		writeDomainError(w, r, err)
		return
	}
	entries, err := h.Store.ListAudit(r.Context(), orgID, "contract", id)
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

// ListContractsExpiring returns non-terminal contracts whose expiry date
// falls within ?days= (default 30).
func (h *Handler) ListContractsExpiring(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", h.renewalNotice())
	contracts, err := h.Store.ListContractsExpiring(r.Context(), orgParam(r), h.now(), days)
	if err != nil {
		writeInternalError(w, r, "Failed to list expiring contracts", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toContractDTOs(contracts))
}

// ListContractsFlagged returns contracts whose expiry date has passed while
// the stored status is still non-terminal, i.e. awaiting an explicit
// MarkExpired transition.
func (h *Handler) ListContractsFlagged(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.Store.ListContractsNeedingExpiry(r.Context(), orgParam(r), h.now())
	if err != nil {
		writeInternalError(w, r, "Failed to list flagged contracts", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toContractDTOs(contracts))
}

// =============================================================================
// CONTRACT LIFECYCLE HANDLERS
// =============================================================================

// SubmitContractForReview moves draft -> pending_review.
func (h *Handler) SubmitContractForReview(w http.ResponseWriter, r *http.Request) {
	h.transitionContract(w, r, "submitted_for_review", func(c *contract.Contract, _ ActorRequest, now time.Time) error {
		return c.SubmitForReview(now)
	})
}

// ApproveContractReview moves pending_review -> pending_signature.
func (h *Handler) ApproveContractReview(w http.ResponseWriter, r *http.Request) {
	h.transitionContract(w, r, "review_approved", func(c *contract.Contract, _ ActorRequest, now time.Time) error {
		return c.ApproveReview(now)
	})
}

// ActivateContract moves a fully executed contract to active.
func (h *Handler) ActivateContract(w http.ResponseWriter, r *http.Request) {
	h.transitionContract(w, r, "activated", func(c *contract.Contract, _ ActorRequest, now time.Time) error {
		return c.Activate(now)
	})
}

// TerminateContract terminates an active contract, recording who and when.
func (h *Handler) TerminateContract(w http.ResponseWriter, r *http.Request) {
	h.transitionContract(w, r, "terminated", func(c *contract.Contract, req ActorRequest, now time.Time) error {
		return c.Terminate(core.ActorID(req.Actor), now)
	})
}

// SupersedeContract marks a non-terminal contract as superseded.
func (h *Handler) SupersedeContract(w http.ResponseWriter, r *http.Request) {
	h.transitionContract(w, r, "superseded", func(c *contract.Contract, _ ActorRequest, now time.Time) error {
		return c.Supersede(now)
	})
}

// MarkContractExpired commits the expired status for a contract whose
// expiry date has passed. Displayed-expired contracts stay in their stored
// status until this explicit call.
func (h *Handler) MarkContractExpired(w http.ResponseWriter, r *http.Request) {
	h.transitionContract(w, r, "expired", func(c *contract.Contract, _ ActorRequest, now time.Time) error {
		return c.MarkExpired(now)
	})
}

// RenewContract marks the contract renewed and creates the next draft
// version. Returns the new version.
func (h *Handler) RenewContract(w http.ResponseWriter, r *http.Request) {
	var req ActorRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	orgID := orgParam(r)
	c, err := h.Store.GetContract(ctx, orgID, core.ContractID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	now := h.now()
	from := c.Status
	next, err := c.Renew(core.ContractID(h.NewID()), now)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	for i := range next.Signatories {
		next.Signatories[i].ID = core.SignatoryID(h.NewID())
		next.Signatories[i].ContractID = next.ID
	}

	if err := h.Store.UpdateContract(ctx, c, c.Revision); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := h.Store.CreateContract(ctx, next); err != nil {
		writeInternalError(w, r, "Failed to create renewal version", err)
		return
	}
	h.audit(r, orgID, "contract", string(c.ID), "renewed", req.Actor, string(from), string(c.Status), "next version "+string(next.ID))
	h.audit(r, orgID, "contract", string(next.ID), "created", req.Actor, "", string(next.Status), "renewal of "+string(c.ID))

	writeJSON(w, http.StatusCreated, toContractDTO(next, now))
}

// transitionContract is the shared load -> mutate -> persist -> audit path
// for single-contract lifecycle transitions.
func (h *Handler) transitionContract(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	apply func(c *contract.Contract, req ActorRequest, now time.Time) error,
) {
	var req ActorRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	orgID := orgParam(r)
	c, err := h.Store.GetContract(ctx, orgID, core.ContractID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	now := h.now()
	from := c.Status
	if err := apply(c, req, now); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := h.Store.UpdateContract(ctx, c, c.Revision); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.audit(r, orgID, "contract", string(c.ID), action, req.Actor, string(from), string(c.Status), req.Reason)

	writeJSON(w, http.StatusOK, toContractDTO(c, now))
}

// =============================================================================
// SIGNATORY HANDLERS
// =============================================================================

// AddSignatory adds a signatory to a contract that has not reached a
// terminal state.
func (h *Handler) AddSignatory(w http.ResponseWriter, r *http.Request) {
	var req CreateSignatoryRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	orgID := orgParam(r)
	c, err := h.Store.GetContract(ctx, orgID, core.ContractID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if c.Status.Terminal() {
		writeError(w, http.StatusConflict, "Cannot add signatories to a "+string(c.Status)+" contract", core.ErrPreconditionFailed)
		return
	}

	sig := contract.Signatory{
		ID:         core.SignatoryID(h.NewID()),
		ContractID: c.ID,
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		Required:   req.Required,
		State:      contract.SignatoryPending,
	}
	c.Signatories = append(c.Signatories, sig)
	c.UpdatedAt = h.now()

	if err := h.Store.UpdateContract(ctx, c, c.Revision); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.audit(r, orgID, "signatory", string(sig.ID), "added", "", "", string(sig.State), sig.Name)

	writeJSON(w, http.StatusCreated, toContractDTO(c, h.now()))
}

// RemoveSignatory removes a signatory. A signed signatory cannot be removed.
func (h *Handler) RemoveSignatory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID := orgParam(r)
	c, err := h.Store.GetContract(ctx, orgID, core.ContractID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	now := h.now()
	sigID := core.SignatoryID(chi.URLParam(r, "sigID"))
	if err := c.RemoveSignatory(sigID, now); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := h.Store.UpdateContract(ctx, c, c.Revision); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.audit(r, orgID, "signatory", string(sigID), "removed", "", "", "", "")

	writeJSON(w, http.StatusOK, toContractDTO(c, now))
}

// RequestSignature moves a signatory from pending to requested.
func (h *Handler) RequestSignature(w http.ResponseWriter, r *http.Request) {
	h.transitionSignatory(w, r, "signature_requested", (*contract.Contract).RequestSignature)
}

// RecordSignature records a signature. When the last required signatory
// signs and the effective date has arrived, the contract activates.
func (h *Handler) RecordSignature(w http.ResponseWriter, r *http.Request) {
	h.transitionSignatory(w, r, "signed", (*contract.Contract).RecordSignature)
}

// DeclineSignature records a declined signature.
func (h *Handler) DeclineSignature(w http.ResponseWriter, r *http.Request) {
	h.transitionSignatory(w, r, "declined", (*contract.Contract).DeclineSignature)
}

// VoidSignatory voids a signature request. Signed signatories cannot be voided.
func (h *Handler) VoidSignatory(w http.ResponseWriter, r *http.Request) {
	h.transitionSignatory(w, r, "voided", (*contract.Contract).VoidSignatory)
}

func (h *Handler) transitionSignatory(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	apply func(c *contract.Contract, id core.SignatoryID, now time.Time) error,
) {
	ctx := r.Context()
	orgID := orgParam(r)
	c, err := h.Store.GetContract(ctx, orgID, core.ContractID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	sigID := core.SignatoryID(chi.URLParam(r, "sigID"))
	sig, ok := c.Signatory(sigID)
	if !ok {
		writeError(w, http.StatusNotFound, "Signatory not found", core.ErrNotFound)
		return
	}

	now := h.now()
	fromSig := sig.State
	fromContract := c.Status
	if err := apply(c, sigID, now); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := h.Store.UpdateContract(ctx, c, c.Revision); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.audit(r, orgID, "signatory", string(sigID), action, "", string(fromSig), string(sig.State), "")
	if c.Status != fromContract {
		h.audit(r, orgID, "contract", string(c.ID), "status_changed", "", string(fromContract), string(c.Status), "signature progress")
	}

	writeJSON(w, http.StatusOK, toContractDTO(c, now))
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

func (h *Handler) toContractDTOs(contracts []*contract.Contract) []ContractDTO {
	now := h.now()
	dtos := make([]ContractDTO, len(contracts))
	for i, c := range contracts {
		dtos[i] = toContractDTO(c, now)
	}
	return dtos
}

// audit appends an audit entry. Audit failures never fail the request; they
// are logged instead.
func (h *Handler) audit(r *http.Request, orgID core.OrgID, kind, entityID, action, actor, from, to, detail string) {
	err := h.Store.AppendAudit(r.Context(), core.AuditEntry{
		ID:         h.NewID(),
		OrgID:      orgID,
		EntityKind: kind,
		EntityID:   entityID,
		Action:     action,
		ActorID:    core.ActorID(actor),
		FromStatus: from,
		ToStatus:   to,
		Detail:     detail,
		At:         h.now(),
	})
	if err != nil {
		logger.Warn(r.Context(), "audit append failed", "error", err, "entity_kind", kind, "entity_id", entityID, "action", action)
	}
}

func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeInternalError logs the failure with its request context and responds
// with a 500. Client-caused errors go through writeError directly and are
// not logged.
func writeInternalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	logger.Error(r.Context(), message, "error", err)
	writeError(w, http.StatusInternalServerError, message, err)
}

// writeDomainError maps domain error kinds to HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, core.ErrConcurrentModification):
		writeError(w, http.StatusConflict, "Record was modified concurrently, reload and retry", err)
	case errors.Is(err, core.ErrPreconditionFailed):
		writeError(w, http.StatusConflict, "Operation not allowed in current state", err)
	case errors.Is(err, core.ErrInvalidMarginInput):
		writeError(w, http.StatusUnprocessableEntity, "Invalid margin input", err)
	case errors.Is(err, core.ErrUnknownStatus):
		// Data-integrity error: always logged, never silently displayed.
		writeInternalError(w, r, "Stored status is corrupt", err)
	default:
		writeInternalError(w, r, "Internal error", err)
	}
}
