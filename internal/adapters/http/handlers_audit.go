package http

import (
	"net/http"
	"time"

	"github.com/casetrail/assurance-service/internal/application"
	"github.com/casetrail/assurance-service/internal/canonical"
)

type appendEventRequest struct {
	EntityType  string          `json:"entity_type"`
	EntityID    *string         `json:"entity_id"`
	Action      string          `json:"action"`
	ActorUserID *string         `json:"actor_user_id"`
	ActorType   string          `json:"actor_type"`
	Diff        canonical.Value `json:"diff"`
	Metadata    canonical.Value `json:"metadata"`
}

func (h *Handler) appendAuditEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	var req appendEventRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	event, err := h.service.AppendEvent(r.Context(), application.AppendEventInput{
		TenantID:    actor.TenantID,
		EntityType:  req.EntityType,
		EntityID:    req.EntityID,
		Action:      req.Action,
		ActorUserID: req.ActorUserID,
		ActorType:   req.ActorType,
		Diff:        req.Diff,
		Metadata:    req.Metadata,
	})
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{
		"event_id":    event.EventID,
		"seq":         event.Seq,
		"hash":        event.Hash,
		"prev_hash":   event.PrevHash,
		"occurred_at": event.OccurredAt.Format(time.RFC3339Nano),
	})
}

func (h *Handler) verifyChain(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	result, err := h.service.VerifyChain(r.Context(), actor.TenantID)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

func (h *Handler) chainHead(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	seq, hash, err := h.service.ChainHeadStatus(r.Context(), actor.TenantID)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"total_entries": seq,
		"head_hash":     hash,
	})
}
