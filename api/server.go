/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. logContext: Copies the request ID (and, per org subtree, the org ID)
                 into the context keys the contextual logger reads
  5. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/orgs                      Organization management
  /api/orgs/{orgID}/contracts    Contract lifecycle
  /api/orgs/{orgID}/compliance   Compliance requirements, items, alerts
  /api/orgs/{orgID}/rate-cards   Rate card versions
  /api/orgs/{orgID}/rate-approvals  Rate approval workflow
  /api/rates/*                   Pure rate and margin calculations

MULTI-TENANCY:
  Every entity route is nested under /orgs/{orgID}. Handlers pass the org
  ID into every store call; a record belonging to another org surfaces as
  404, identical to a record that does not exist.

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/warp/staffing-engine/pkg/logger"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(logContext)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Organization routes
		r.Route("/orgs", func(r chi.Router) {
			r.Get("/", h.ListOrganizations)
			r.Post("/", h.CreateOrganization)
			r.Get("/{orgID}", h.GetOrganization)

			// Everything below is scoped to one organization.
			r.Route("/{orgID}", func(r chi.Router) {
				r.Use(orgLogContext)

				// Contract routes
				r.Route("/contracts", func(r chi.Router) {
					r.Get("/", h.ListContracts)
					r.Post("/", h.CreateContract)
					r.Get("/expiring", h.ListContractsExpiring)
					r.Get("/flagged", h.ListContractsFlagged)
					r.Get("/{id}", h.GetContract)
					r.Get("/{id}/versions", h.ListContractVersions)
					r.Get("/{id}/audit", h.GetContractAudit)

					// Lifecycle transitions
					r.Post("/{id}/submit", h.SubmitContractForReview)
					r.Post("/{id}/approve", h.ApproveContractReview)
					r.Post("/{id}/activate", h.ActivateContract)
					r.Post("/{id}/terminate", h.TerminateContract)
					r.Post("/{id}/renew", h.RenewContract)
					r.Post("/{id}/supersede", h.SupersedeContract)
					r.Post("/{id}/expire", h.MarkContractExpired)

					// Signatory sub-resource
					r.Post("/{id}/signatories", h.AddSignatory)
					r.Delete("/{id}/signatories/{sigID}", h.RemoveSignatory)
					r.Post("/{id}/signatories/{sigID}/request", h.RequestSignature)
					r.Post("/{id}/signatories/{sigID}/sign", h.RecordSignature)
					r.Post("/{id}/signatories/{sigID}/decline", h.DeclineSignature)
					r.Post("/{id}/signatories/{sigID}/void", h.VoidSignatory)
				})

				// Compliance routes
				r.Route("/compliance", func(r chi.Router) {
					r.Get("/requirements", h.ListRequirements)
					r.Post("/requirements", h.CreateRequirement)
					r.Get("/requirements/{id}", h.GetRequirement)

					r.Get("/items", h.ListComplianceItems)
					r.Post("/items", h.CreateComplianceItem)
					r.Get("/items/{id}", h.GetComplianceItem)
					r.Get("/items/{id}/audit", h.GetComplianceItemAudit)
					r.Post("/items/{id}/receive", h.ReceiveComplianceItem)
					r.Post("/items/{id}/review", h.ReviewComplianceItem)
					r.Post("/items/{id}/verify", h.VerifyComplianceItem)
					r.Post("/items/{id}/reject", h.RejectComplianceItem)
					r.Post("/items/{id}/waive", h.WaiveComplianceItem)
					r.Post("/items/{id}/expire", h.MarkComplianceItemExpired)

					r.Get("/alerts", h.ListComplianceAlerts)
				})

				// Rate card routes
				r.Route("/rate-cards", func(r chi.Router) {
					r.Get("/", h.ListRateCards)
					r.Post("/", h.CreateRateCard)
					r.Get("/{id}", h.GetRateCard)
					r.Get("/{id}/versions", h.ListRateCardVersions)
					r.Post("/{id}/versions", h.CreateRateCardVersion)
					r.Post("/{id}/check", h.CheckRateCardQuote)
				})

				// Rate approval routes
				r.Route("/rate-approvals", func(r chi.Router) {
					r.Get("/", h.ListApprovals)
					r.Post("/", h.SubmitApproval)
					r.Get("/{id}", h.GetApproval)
					r.Post("/{id}/approve", h.ApproveRate)
					r.Post("/{id}/reject", h.RejectRate)
					r.Post("/{id}/request-changes", h.RequestRateChanges)
					r.Post("/{id}/resubmit", h.ResubmitRate)
				})
			})
		})

		// Pure calculation routes, no persistence
		r.Route("/rates", func(r chi.Router) {
			r.Post("/margin", h.ComputeMargin)
			r.Post("/bill-rate", h.SolveBillRate)
			r.Post("/pay-rate", h.SolvePayRate)
		})
	})

	return r
}

// logContext copies the request ID assigned by the RequestID middleware into
// the context key the contextual logger reads, so every log record emitted
// while handling the request carries it.
func logContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if reqID := middleware.GetReqID(ctx); reqID != "" {
			ctx = context.WithValue(ctx, logger.RequestIDKey, reqID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// orgLogContext records the tenant on the context for log enrichment. Mounted
// on the org subtree, where the orgID route param has already been captured.
func orgLogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), logger.OrgKey, chi.URLParam(r, "orgID"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
