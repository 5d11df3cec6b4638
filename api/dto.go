/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY AND RATES:
  All monetary values and percentages travel as decimal strings, never
  floats. Clients render them as-is; the server parses with
  decimal.NewFromString.

VALIDATION:
  Request types carry validator struct tags; handlers run the shared
  validator instance before touching domain logic.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/staffing-engine/compliance"
	"github.com/warp/staffing-engine/contract"
	"github.com/warp/staffing-engine/core"
	"github.com/warp/staffing-engine/rate"
)

const dateLayout = "2006-01-02"

// =============================================================================
// ORGANIZATIONS
// =============================================================================

type OrganizationDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"required"`
}

// =============================================================================
// CONTRACTS
// =============================================================================

type SignatoryDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email,omitempty"`
	Role     string  `json:"role,omitempty"`
	Required bool    `json:"required"`
	State    string  `json:"state"`
	SignedAt *string `json:"signed_at,omitempty"`
}

type ContractDTO struct {
	ID             string `json:"id"`
	ContractNumber string `json:"contract_number"`
	Status         string `json:"status"`

	// DisplayStatus is derived against the request clock; it differs from
	// Status when the contract is logically expired but not yet transitioned.
	DisplayStatus         string `json:"display_status"`
	ExpiringSoon          bool   `json:"expiring_soon"`
	NeedsExpiryTransition bool   `json:"needs_expiry_transition"`
	FullyExecuted         bool   `json:"fully_executed"`

	EffectiveDate     *string `json:"effective_date,omitempty"`
	ExpiryDate        *string `json:"expiry_date,omitempty"`
	ContractValue     *string `json:"contract_value,omitempty"`
	Currency          string  `json:"currency"`
	RenewalNoticeDays int     `json:"renewal_notice_days"`

	Version           int     `json:"version"`
	IsLatestVersion   bool    `json:"is_latest_version"`
	PreviousVersionID *string `json:"previous_version_id,omitempty"`

	TerminatedBy *string `json:"terminated_by,omitempty"`
	TerminatedAt *string `json:"terminated_at,omitempty"`

	Signatories []SignatoryDTO `json:"signatories"`

	Revision  int    `json:"revision"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type CreateSignatoryRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Role     string `json:"role"`
	Required bool   `json:"required"`
}

type CreateContractRequest struct {
	ContractNumber    string                   `json:"contract_number" validate:"required"`
	EffectiveDate     *string                  `json:"effective_date" validate:"omitempty,datetime=2006-01-02"`
	ExpiryDate        *string                  `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	ContractValue     *string                  `json:"contract_value"`
	Currency          string                   `json:"currency"`
	RenewalNoticeDays int                      `json:"renewal_notice_days" validate:"gte=0"`
	Signatories       []CreateSignatoryRequest `json:"signatories" validate:"dive"`
}

// ActorRequest carries the acting operator for audited transitions.
type ActorRequest struct {
	Actor  string `json:"actor" validate:"required"`
	Reason string `json:"reason"`
}

// =============================================================================
// RATES
// =============================================================================

type MarginRequest struct {
	BillRate string `json:"bill_rate" validate:"required"`
	PayRate  string `json:"pay_rate" validate:"required"`
}

type MarginResultDTO struct {
	GrossMargin      string `json:"gross_margin"`
	MarginPercentage string `json:"margin_percentage"`
	MarkupPercentage string `json:"markup_percentage"`
	Quality          string `json:"quality"`
	Defined          bool   `json:"defined"`
	BelowMinimum     bool   `json:"below_minimum"`
}

type SolveBillRateRequest struct {
	PayRate         string `json:"pay_rate" validate:"required"`
	TargetMarginPct string `json:"target_margin_pct" validate:"required"`
}

type SolvePayRateRequest struct {
	BillRate        string `json:"bill_rate" validate:"required"`
	TargetMarginPct string `json:"target_margin_pct" validate:"required"`
}

type SolvedRateDTO struct {
	BillRate string           `json:"bill_rate"`
	PayRate  string           `json:"pay_rate"`
	Margin   *MarginResultDTO `json:"margin,omitempty"`
}

// =============================================================================
// RATE CARDS
// =============================================================================

type RateCardItemDTO struct {
	ID              string `json:"id"`
	JobCategory     string `json:"job_category"`
	JobLevel        string `json:"job_level"`
	MinPayRate      string `json:"min_pay_rate"`
	MaxPayRate      string `json:"max_pay_rate"`
	TargetPayRate   string `json:"target_pay_rate"`
	MinBillRate     string `json:"min_bill_rate"`
	MaxBillRate     string `json:"max_bill_rate"`
	TargetBillRate  string `json:"target_bill_rate"`
	MinMarginPct    string `json:"min_margin_pct"`
	TargetMarginPct string `json:"target_margin_pct"`
}

type RateCardDTO struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Currency        string            `json:"currency"`
	Unit            string            `json:"unit"`
	Version         int               `json:"version"`
	IsLatestVersion bool              `json:"is_latest_version"`
	Items           []RateCardItemDTO `json:"items"`
	CreatedAt       string            `json:"created_at,omitempty"`
	UpdatedAt       string            `json:"updated_at,omitempty"`
}

type RateCardItemRequest struct {
	JobCategory     string `json:"job_category" validate:"required"`
	JobLevel        string `json:"job_level" validate:"required"`
	MinPayRate      string `json:"min_pay_rate"`
	MaxPayRate      string `json:"max_pay_rate"`
	TargetPayRate   string `json:"target_pay_rate"`
	MinBillRate     string `json:"min_bill_rate"`
	MaxBillRate     string `json:"max_bill_rate"`
	TargetBillRate  string `json:"target_bill_rate"`
	MinMarginPct    string `json:"min_margin_pct"`
	TargetMarginPct string `json:"target_margin_pct"`
}

// CheckQuoteRequest asks whether a proposed bill/pay pair fits within a rate
// card's line item for a category/level.
type CheckQuoteRequest struct {
	JobCategory string `json:"job_category" validate:"required"`
	JobLevel    string `json:"job_level" validate:"required"`
	BillRate    string `json:"bill_rate" validate:"required"`
	PayRate     string `json:"pay_rate" validate:"required"`
}

type QuoteCheckDTO struct {
	WithinBounds bool            `json:"within_bounds"`
	Issues       []string        `json:"issues"`
	Margin       MarginResultDTO `json:"margin"`
}

type CreateRateCardRequest struct {
	Name     string                `json:"name" validate:"required"`
	Currency string                `json:"currency"`
	Unit     string                `json:"unit" validate:"omitempty,oneof=hourly daily weekly monthly annual fixed"`
	Items    []RateCardItemRequest `json:"items" validate:"dive"`
}

// =============================================================================
// RATE APPROVALS
// =============================================================================

type ApprovalDTO struct {
	ID           string  `json:"id"`
	EntityType   string  `json:"entity_type"`
	EntityID     string  `json:"entity_id"`
	BillRate     string  `json:"bill_rate"`
	PayRate      string  `json:"pay_rate"`
	Unit         string  `json:"unit"`
	Currency     string  `json:"currency"`
	Status       string  `json:"status"`
	BelowMinimum bool    `json:"below_minimum"`
	RequestedBy  string  `json:"requested_by"`
	DecidedBy    *string `json:"decided_by,omitempty"`
	DecidedAt    *string `json:"decided_at,omitempty"`
	Message      string  `json:"message,omitempty"`
	Revision     int     `json:"revision"`
	CreatedAt    string  `json:"created_at,omitempty"`
	UpdatedAt    string  `json:"updated_at,omitempty"`
}

type SubmitApprovalRequest struct {
	EntityType  string `json:"entity_type" validate:"required"`
	EntityID    string `json:"entity_id" validate:"required"`
	BillRate    string `json:"bill_rate" validate:"required"`
	PayRate     string `json:"pay_rate" validate:"required"`
	Unit        string `json:"unit" validate:"omitempty,oneof=hourly daily weekly monthly annual fixed"`
	Currency    string `json:"currency"`
	RequestedBy string `json:"requested_by" validate:"required"`
	Message     string `json:"message"`
}

type ResubmitApprovalRequest struct {
	BillRate    string `json:"bill_rate" validate:"required"`
	PayRate     string `json:"pay_rate" validate:"required"`
	RequestedBy string `json:"requested_by" validate:"required"`
}

// =============================================================================
// COMPLIANCE
// =============================================================================

type RequirementDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category,omitempty"`
	Description   string `json:"description,omitempty"`
	ValidityDays  int    `json:"validity_days"`
	LookaheadDays int    `json:"lookahead_days"`
	CreatedAt     string `json:"created_at,omitempty"`
}

type CreateRequirementRequest struct {
	Name          string `json:"name" validate:"required"`
	Category      string `json:"category"`
	Description   string `json:"description"`
	ValidityDays  int    `json:"validity_days" validate:"gte=0"`
	LookaheadDays int    `json:"lookahead_days" validate:"gte=0"`
}

type ComplianceItemDTO struct {
	ID            string  `json:"id"`
	EntityType    string  `json:"entity_type"`
	EntityID      string  `json:"entity_id"`
	RequirementID *string `json:"requirement_id,omitempty"`
	Status        string  `json:"status"`

	// DisplayStatus is derived against the request clock and lookahead
	// window; the stored status is never rewritten by reads.
	DisplayStatus         string `json:"display_status"`
	NeedsExpiryTransition bool   `json:"needs_expiry_transition"`

	EffectiveDate *string `json:"effective_date,omitempty"`
	ExpiryDate    *string `json:"expiry_date,omitempty"`
	VerifiedAt    *string `json:"verified_at,omitempty"`
	VerifiedBy    *string `json:"verified_by,omitempty"`
	WaivedAt      *string `json:"waived_at,omitempty"`
	WaivedBy      *string `json:"waived_by,omitempty"`
	Notes         string  `json:"notes,omitempty"`

	Revision  int    `json:"revision"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type CreateComplianceItemRequest struct {
	EntityType    string  `json:"entity_type" validate:"required"`
	EntityID      string  `json:"entity_id" validate:"required"`
	RequirementID *string `json:"requirement_id"`
	EffectiveDate *string `json:"effective_date" validate:"omitempty,datetime=2006-01-02"`
	ExpiryDate    *string `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	Notes         string  `json:"notes"`
}

// ComplianceAlertDTO is one row of the expiry alert widget.
type ComplianceAlertDTO struct {
	Item            ComplianceItemDTO `json:"item"`
	DaysUntilExpiry int               `json:"days_until_expiry"`
	Urgency         string            `json:"urgency"`
}

// =============================================================================
// AUDIT
// =============================================================================

type AuditEntryDTO struct {
	ID         string `json:"id"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id"`
	Action     string `json:"action"`
	Actor      string `json:"actor"`
	FromStatus string `json:"from_status,omitempty"`
	ToStatus   string `json:"to_status,omitempty"`
	Detail     string `json:"detail,omitempty"`
	At         string `json:"at"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toContractDTO(c *contract.Contract, now time.Time) ContractDTO {
	dto := ContractDTO{
		ID:                    string(c.ID),
		ContractNumber:        c.ContractNumber,
		Status:                string(c.Status),
		DisplayStatus:         string(contract.DeriveDisplayStatus(c, now)),
		ExpiringSoon:          c.ExpiringSoon(now),
		NeedsExpiryTransition: contract.NeedsExpiryTransition(c, now),
		FullyExecuted:         c.FullyExecuted(),
		EffectiveDate:         fmtDatePtr(c.EffectiveDate),
		ExpiryDate:            fmtDatePtr(c.ExpiryDate),
		Currency:              c.Currency,
		RenewalNoticeDays:     c.RenewalNoticeDays,
		Version:               c.Version,
		IsLatestVersion:       c.IsLatestVersion,
		TerminatedAt:          fmtTimePtr(c.TerminatedAt),
		Signatories:           make([]SignatoryDTO, len(c.Signatories)),
		Revision:              c.Revision,
		CreatedAt:             c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:             c.UpdatedAt.Format(time.RFC3339),
	}
	if c.ContractValue != nil {
		v := c.ContractValue.String()
		dto.ContractValue = &v
	}
	if c.PreviousVersionID != nil {
		id := string(*c.PreviousVersionID)
		dto.PreviousVersionID = &id
	}
	if c.TerminatedBy != nil {
		actor := string(*c.TerminatedBy)
		dto.TerminatedBy = &actor
	}
	for i, sig := range c.Signatories {
		dto.Signatories[i] = SignatoryDTO{
			ID:       string(sig.ID),
			Name:     sig.Name,
			Email:    sig.Email,
			Role:     sig.Role,
			Required: sig.Required,
			State:    string(sig.State),
			SignedAt: fmtTimePtr(sig.SignedAt),
		}
	}
	return dto
}

func toMarginResultDTO(res rate.MarginResult, belowMin bool) MarginResultDTO {
	return MarginResultDTO{
		GrossMargin:      res.GrossMargin.String(),
		MarginPercentage: res.MarginPercentage.String(),
		MarkupPercentage: res.MarkupPercentage.String(),
		Quality:          string(res.Quality),
		Defined:          res.Defined,
		BelowMinimum:     belowMin,
	}
}

func toRateCardDTO(card *rate.Card) RateCardDTO {
	dto := RateCardDTO{
		ID:              string(card.ID),
		Name:            card.Name,
		Currency:        card.Currency,
		Unit:            string(card.Unit),
		Version:         card.Version,
		IsLatestVersion: card.IsLatestVersion,
		Items:           make([]RateCardItemDTO, len(card.Items)),
		CreatedAt:       card.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       card.UpdatedAt.Format(time.RFC3339),
	}
	for i, it := range card.Items {
		dto.Items[i] = RateCardItemDTO{
			ID:              it.ID,
			JobCategory:     it.JobCategory,
			JobLevel:        it.JobLevel,
			MinPayRate:      it.MinPayRate.String(),
			MaxPayRate:      it.MaxPayRate.String(),
			TargetPayRate:   it.TargetPayRate.String(),
			MinBillRate:     it.MinBillRate.String(),
			MaxBillRate:     it.MaxBillRate.String(),
			TargetBillRate:  it.TargetBillRate.String(),
			MinMarginPct:    it.MinMarginPct.String(),
			TargetMarginPct: it.TargetMarginPct.String(),
		}
	}
	return dto
}

func toApprovalDTO(a *rate.Approval) ApprovalDTO {
	dto := ApprovalDTO{
		ID:           string(a.ID),
		EntityType:   a.EntityType,
		EntityID:     a.EntityID,
		BillRate:     a.Proposed.BillRate.String(),
		PayRate:      a.Proposed.PayRate.String(),
		Unit:         string(a.Proposed.Unit),
		Currency:     a.Proposed.Currency,
		Status:       string(a.Status),
		BelowMinimum: a.BelowMinimum,
		RequestedBy:  string(a.RequestedBy),
		Message:      a.Message,
		Revision:     a.Revision,
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    a.UpdatedAt.Format(time.RFC3339),
	}
	if a.DecidedBy != nil {
		actor := string(*a.DecidedBy)
		dto.DecidedBy = &actor
	}
	dto.DecidedAt = fmtTimePtr(a.DecidedAt)
	return dto
}

func toComplianceItemDTO(it *compliance.Item, now time.Time, lookaheadDays int) ComplianceItemDTO {
	dto := ComplianceItemDTO{
		ID:                    string(it.ID),
		EntityType:            it.EntityType,
		EntityID:              it.EntityID,
		Status:                string(it.Status),
		DisplayStatus:         string(compliance.DeriveDisplayStatus(it, now, lookaheadDays)),
		NeedsExpiryTransition: compliance.NeedsExpiryTransition(it, now, lookaheadDays),
		EffectiveDate:         fmtDatePtr(it.EffectiveDate),
		ExpiryDate:            fmtDatePtr(it.ExpiryDate),
		VerifiedAt:            fmtTimePtr(it.VerifiedAt),
		WaivedAt:              fmtTimePtr(it.WaivedAt),
		Notes:                 it.Notes,
		Revision:              it.Revision,
		CreatedAt:             it.CreatedAt.Format(time.RFC3339),
		UpdatedAt:             it.UpdatedAt.Format(time.RFC3339),
	}
	if it.RequirementID != nil {
		id := string(*it.RequirementID)
		dto.RequirementID = &id
	}
	if it.VerifiedBy != nil {
		actor := string(*it.VerifiedBy)
		dto.VerifiedBy = &actor
	}
	if it.WaivedBy != nil {
		actor := string(*it.WaivedBy)
		dto.WaivedBy = &actor
	}
	return dto
}

func toRequirementDTO(r *compliance.Requirement) RequirementDTO {
	return RequirementDTO{
		ID:            string(r.ID),
		Name:          r.Name,
		Category:      r.Category,
		Description:   r.Description,
		ValidityDays:  r.ValidityDays,
		LookaheadDays: r.LookaheadDays,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
}

func toAuditEntryDTO(e core.AuditEntry) AuditEntryDTO {
	return AuditEntryDTO{
		ID:         e.ID,
		EntityKind: e.EntityKind,
		EntityID:   e.EntityID,
		Action:     e.Action,
		Actor:      string(e.ActorID),
		FromStatus: e.FromStatus,
		ToStatus:   e.ToStatus,
		Detail:     e.Detail,
		At:         e.At.Format(time.RFC3339),
	}
}

func fmtDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
