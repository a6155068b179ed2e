package httptransport

import (
	"net/http"

	"dealer/pkg/platform/audit"
	"dealer/pkg/platform/httputil"
)

type recordsResponse struct {
	Records []audit.Record `json:"records"`
}

type errorsResponse struct {
	Errors []audit.ErrorEvent `json:"errors"`
}

func (h *Handler) handleAuditRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.writeError(w, r, "invalid limit", err)
		return
	}
	records, err := h.audit.ListRecords(r.Context(), audit.RecordFilter{
		EntityType: audit.EntityType(q.Get("entity_type")),
		EntityID:   q.Get("entity_id"),
		Action:     audit.Action(q.Get("action")),
		Limit:      limit,
	})
	if err != nil {
		h.writeError(w, r, "list audit records failed", err)
		return
	}
	if records == nil {
		records = []audit.Record{}
	}
	httputil.WriteJSON(w, http.StatusOK, recordsResponse{Records: records})
}

func (h *Handler) handleAuditErrors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.writeError(w, r, "invalid limit", err)
		return
	}
	events, err := h.audit.ListErrors(r.Context(), audit.ErrorFilter{
		Origin: q.Get("origin"),
		Code:   q.Get("code"),
		Limit:  limit,
	})
	if err != nil {
		h.writeError(w, r, "list error events failed", err)
		return
	}
	if events == nil {
		events = []audit.ErrorEvent{}
	}
	httputil.WriteJSON(w, http.StatusOK, errorsResponse{Errors: events})
}
