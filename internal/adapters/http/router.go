package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/casetrail/assurance-service/internal/application"
	"github.com/casetrail/assurance-service/internal/ports"
)

// Handler is the HTTP adapter entrypoint for assurance use-cases.
// Keeping only application dependency here preserves clean adapter boundaries.
type Handler struct {
	service  *application.Service
	verifier ports.TokenVerifier
	authz    ports.Authorizer
}

// NewHandler constructs an HTTP handler bound to the application service.
func NewHandler(service *application.Service, verifier ports.TokenVerifier, authz ports.Authorizer) *Handler {
	return &Handler{service: service, verifier: verifier, authz: authz}
}

// NewRouter registers assurance HTTP routes and middleware stack.
// Centralizing routes here ensures consistent auth and error behavior across endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/assurance/v1", func(r chi.Router) {
		r.Use(handler.authMiddleware)

		r.Route("/audit", func(r chi.Router) {
			r.With(handler.require("audit:append")).Post("/events", handler.appendAuditEvent)
			r.With(handler.require("audit:verify")).Post("/verify", handler.verifyChain)
			r.With(handler.require("audit:verify")).Get("/head", handler.chainHead)
		})

		r.Route("/access-logs", func(r chi.Router) {
			r.With(handler.require("access_logs:write")).Post("/", handler.logAccess)
			r.With(handler.require("access_logs:read")).Get("/", handler.queryAccessLogs)
		})

		r.Route("/retention", func(r chi.Router) {
			r.Route("/policies", func(r chi.Router) {
				r.With(handler.require("retention:read")).Get("/", handler.listRetentionPolicies)
				r.With(handler.require("retention:write")).Post("/", handler.createRetentionPolicy)
				r.With(handler.require("retention:write")).Put("/{policy_id}", handler.updateRetentionPolicy)
				r.With(handler.require("retention:write")).Delete("/{policy_id}", handler.deleteRetentionPolicy)
			})
			r.Route("/jobs", func(r chi.Router) {
				r.With(handler.require("jobs:trigger")).Post("/", handler.runRetentionJob)
				r.With(handler.require("jobs:read")).Get("/", handler.listDeletionJobs)
				r.With(handler.require("jobs:read")).Get("/{job_id}", handler.getDeletionJob)
				r.With(handler.require("jobs:read")).Get("/{job_id}/events", handler.listDeletionEvents)
				r.With(handler.require("proofs:export")).Get("/{job_id}/export", handler.exportDeletionEvents)
				r.With(handler.require("jobs:read")).Post("/{job_id}/events/{deletion_event_id}/verify", handler.verifyDeletionProof)
			})
		})

		r.With(handler.require("artifacts:write")).Post("/artifacts", handler.registerArtifact)

		r.Route("/sod", func(r chi.Router) {
			r.With(handler.require("sod:read")).Get("/policy", handler.getSodPolicy)
			r.With(handler.require("sod:write")).Put("/policy", handler.updateSodPolicy)
			r.With(handler.require("sod:write")).Patch("/policy/rules/{rule_id}", handler.toggleSodRule)
			r.With(handler.require("sod:read")).Post("/check", handler.checkSod)
		})

		r.Route("/approvals", func(r chi.Router) {
			r.With(handler.require("approvals:create")).Post("/", handler.createApproval)
			r.With(handler.require("approvals:decide")).Get("/", handler.listApprovals)
			r.With(handler.require("approvals:decide")).Post("/{request_id}/decision", handler.decideApproval)
		})
	})

	return r
}
