package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/casetrail/assurance-service/internal/application"
	"github.com/casetrail/assurance-service/internal/domain"
)

type retentionPolicyRequest struct {
	ArtifactType      string `json:"artifact_type"`
	RetentionDays     int    `json:"retention_days"`
	DeleteMode        string `json:"delete_mode"`
	LegalHoldRespects bool   `json:"legal_hold_respects"`
	Enabled           bool   `json:"enabled"`
}

func (req retentionPolicyRequest) toInput() application.RetentionPolicyInput {
	return application.RetentionPolicyInput{
		ArtifactType:      req.ArtifactType,
		RetentionDays:     req.RetentionDays,
		DeleteMode:        domain.DeleteMode(req.DeleteMode),
		LegalHoldRespects: req.LegalHoldRespects,
		Enabled:           req.Enabled,
	}
}

func policyResponse(policy domain.RetentionPolicy) map[string]any {
	return map[string]any{
		"policy_id":           policy.PolicyID,
		"artifact_type":       policy.ArtifactType,
		"retention_days":      policy.RetentionDays,
		"delete_mode":         policy.DeleteMode,
		"legal_hold_respects": policy.LegalHoldRespects,
		"enabled":             policy.Enabled,
		"created_at":          policy.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":          policy.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (h *Handler) createRetentionPolicy(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	var req retentionPolicyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	policy, err := h.service.CreateRetentionPolicy(r.Context(), actor.TenantID, actor.UserID, req.toInput())
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusCreated, policyResponse(policy))
}

func (h *Handler) updateRetentionPolicy(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	policyID, err := uuid.Parse(chi.URLParam(r, "policy_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid policy_id")
		return
	}
	var req retentionPolicyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	policy, err := h.service.UpdateRetentionPolicy(r.Context(), actor.TenantID, actor.UserID, policyID, req.toInput())
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, policyResponse(policy))
}

func (h *Handler) deleteRetentionPolicy(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	policyID, err := uuid.Parse(chi.URLParam(r, "policy_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid policy_id")
		return
	}
	if err := h.service.DeleteRetentionPolicy(r.Context(), actor.TenantID, actor.UserID, policyID); err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeMessage(w, http.StatusOK, "Retention policy deleted")
}

func (h *Handler) listRetentionPolicies(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	policies, err := h.service.ListRetentionPolicies(r.Context(), actor.TenantID)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	items := make([]map[string]any, 0, len(policies))
	for _, policy := range policies {
		items = append(items, policyResponse(policy))
	}
	writeSuccess(w, http.StatusOK, map[string]any{"policies": items})
}

type registerArtifactRequest struct {
	ArtifactID   string  `json:"artifact_id"`
	ArtifactType string  `json:"artifact_type"`
	CaseID       *string `json:"case_id"`
	StorageRef   string  `json:"storage_ref"`
	CreatedAt    *string `json:"created_at"`
}

func (h *Handler) registerArtifact(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	var req registerArtifactRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	artifact := domain.Artifact{
		TenantID:     actor.TenantID,
		ArtifactID:   req.ArtifactID,
		ArtifactType: req.ArtifactType,
		CaseID:       req.CaseID,
		StorageRef:   req.StorageRef,
	}
	if req.CreatedAt != nil {
		t, err := time.Parse(time.RFC3339, *req.CreatedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid created_at")
			return
		}
		artifact.CreatedAt = t.UTC()
	}

	stored, err := h.service.RegisterArtifact(r.Context(), artifact)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{
		"artifact_id":   stored.ArtifactID,
		"artifact_type": stored.ArtifactType,
		"created_at":    stored.CreatedAt.Format(time.RFC3339Nano),
	})
}
