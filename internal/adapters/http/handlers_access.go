package http

import (
	"net/http"
	"time"

	"github.com/casetrail/assurance-service/internal/application"
	"github.com/casetrail/assurance-service/internal/domain"
)

type logAccessRequest struct {
	UserID       *string `json:"user_id"`
	AccessType   string  `json:"access_type"`
	ResourceType string  `json:"resource_type"`
	ResourceID   string  `json:"resource_id"`
	CaseID       *string `json:"case_id"`
	IPAddress    string  `json:"ip_address"`
	UserAgent    string  `json:"user_agent"`
	Outcome      string  `json:"outcome"`
	Reason       *string `json:"reason"`
}

func (h *Handler) logAccess(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	var req logAccessRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	// Calling services forward the end-user's transport attributes; when they
	// don't, fall back to this request's.
	if req.IPAddress == "" {
		req.IPAddress = readIP(r)
	}
	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}

	entry, err := h.service.LogAccess(r.Context(), application.LogAccessInput{
		TenantID:     actor.TenantID,
		UserID:       req.UserID,
		AccessType:   req.AccessType,
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		CaseID:       req.CaseID,
		IPAddress:    req.IPAddress,
		UserAgent:    req.UserAgent,
		Outcome:      domain.AccessOutcome(req.Outcome),
		Reason:       req.Reason,
	})
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{
		"entry_id":    entry.EntryID,
		"occurred_at": entry.OccurredAt.Format(time.RFC3339Nano),
	})
}

func (h *Handler) queryAccessLogs(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	q := r.URL.Query()
	query := application.AccessLogQuery{
		ResourceType: optionalParam(q.Get("resource_type")),
		CaseID:       optionalParam(q.Get("case_id")),
		UserID:       optionalParam(q.Get("user_id")),
		From:         parseTimeParam(q.Get("from")),
		To:           parseTimeParam(q.Get("to")),
		Limit:        parseIntDefault(q.Get("limit"), 0),
		Offset:       parseIntDefault(q.Get("offset"), 0),
	}
	if raw := optionalParam(q.Get("outcome")); raw != nil {
		outcome := domain.AccessOutcome(*raw)
		query.Outcome = &outcome
	}

	page, err := h.service.QueryAccessLogs(r.Context(), actor.TenantID, query)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}

	entries := make([]map[string]any, 0, len(page.Entries))
	for _, entry := range page.Entries {
		entries = append(entries, map[string]any{
			"entry_id":        entry.EntryID,
			"user_id":         entry.UserID,
			"access_type":     entry.AccessType,
			"resource_type":   entry.ResourceType,
			"resource_id":     entry.ResourceID,
			"case_id":         entry.CaseID,
			"ip_hash":         entry.IPHash,
			"user_agent_hash": entry.UserAgentHash,
			"outcome":         entry.Outcome,
			"reason":          entry.Reason,
			"occurred_at":     entry.OccurredAt.Format(time.RFC3339Nano),
		})
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"entries": entries,
		"total":   page.Total,
		"limit":   page.Limit,
		"offset":  page.Offset,
	})
}
