package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/casetrail/assurance-service/internal/application"
	"github.com/casetrail/assurance-service/internal/domain"
)

func sodPolicyResponse(policy domain.SodPolicy) map[string]any {
	return map[string]any{
		"enabled":    policy.Enabled,
		"rules":      policy.Rules,
		"updated_at": policy.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func approvalResponse(request domain.ApprovalRequest) map[string]any {
	var decidedAt *string
	if request.DecidedAt != nil {
		s := request.DecidedAt.Format(time.RFC3339Nano)
		decidedAt = &s
	}
	return map[string]any{
		"request_id":   request.RequestID,
		"rule_id":      request.RuleID,
		"action_type":  request.ActionType,
		"subject_type": request.SubjectType,
		"subject_id":   request.SubjectID,
		"created_by":   request.CreatedBy,
		"created_at":   request.CreatedAt.Format(time.RFC3339Nano),
		"status":       request.Status,
		"decided_by":   request.DecidedBy,
		"decided_at":   decidedAt,
		"comment":      request.Comment,
	}
}

func (h *Handler) getSodPolicy(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	policy, err := h.service.GetSodPolicy(r.Context(), actor.TenantID)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, sodPolicyResponse(policy))
}

type sodPolicyRequest struct {
	Enabled bool             `json:"enabled"`
	Rules   []domain.SodRule `json:"rules"`
}

func (h *Handler) updateSodPolicy(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	var req sodPolicyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	policy, err := h.service.UpdateSodPolicy(r.Context(), actor.TenantID, actor.UserID, application.SodPolicyInput{
		Enabled: req.Enabled,
		Rules:   req.Rules,
	})
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, sodPolicyResponse(policy))
}

func (h *Handler) toggleSodRule(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	policy, err := h.service.ToggleSodRule(r.Context(), actor.TenantID, actor.UserID, chi.URLParam(r, "rule_id"), req.Enabled)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, sodPolicyResponse(policy))
}

type sodCheckRequest struct {
	RuleID        string `json:"rule_id"`
	ActorUserID   string `json:"actor_user_id"`
	CreatorUserID string `json:"creator_user_id"`
}

func (h *Handler) checkSod(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	var req sodCheckRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	result, err := h.service.CheckSod(r.Context(), actor.TenantID, req.RuleID, req.ActorUserID, req.CreatorUserID)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	resp := map[string]any{"allowed": result.Allowed}
	if result.ViolatedRule != nil {
		resp["violated_rule"] = result.ViolatedRule
	}
	writeSuccess(w, http.StatusOK, resp)
}

type createApprovalRequest struct {
	RuleID      string  `json:"rule_id"`
	ActionType  string  `json:"action_type"`
	SubjectType string  `json:"subject_type"`
	SubjectID   *string `json:"subject_id"`
}

func (h *Handler) createApproval(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	var req createApprovalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	request, err := h.service.CreateApproval(r.Context(), actor.TenantID, actor.UserID, application.ApprovalInput{
		RuleID:      req.RuleID,
		ActionType:  req.ActionType,
		SubjectType: req.SubjectType,
		SubjectID:   req.SubjectID,
	})
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusCreated, approvalResponse(request))
}

func (h *Handler) listApprovals(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	q := r.URL.Query()
	var status *domain.ApprovalStatus
	if raw := optionalParam(q.Get("status")); raw != nil {
		s := domain.ApprovalStatus(*raw)
		status = &s
	}
	requests, err := h.service.ListApprovals(r.Context(), actor.TenantID, status,
		parseIntDefault(q.Get("limit"), 0), parseIntDefault(q.Get("offset"), 0))
	if err != nil {
		httpStatus, code, msg := mapDomainError(err)
		writeError(w, httpStatus, code, msg)
		return
	}
	items := make([]map[string]any, 0, len(requests))
	for _, request := range requests {
		items = append(items, approvalResponse(request))
	}
	writeSuccess(w, http.StatusOK, map[string]any{"approvals": items})
}

type approvalDecisionRequest struct {
	Approve bool    `json:"approve"`
	Comment *string `json:"comment"`
}

func (h *Handler) decideApproval(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	requestID, err := uuid.Parse(chi.URLParam(r, "request_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request_id")
		return
	}
	var req approvalDecisionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	decided, err := h.service.DecideApproval(r.Context(), actor.TenantID, actor.UserID, application.ApprovalDecision{
		RequestID: requestID,
		Approve:   req.Approve,
		Comment:   req.Comment,
	})
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, approvalResponse(decided))
}
