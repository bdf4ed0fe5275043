package handlers

import (
	"net/http"

	"github.com/crucial707/landscape-lab/internal/repo"
)

// AuditHandler serves audit log endpoints.
type AuditHandler struct {
	Repo *repo.AuditRepo
}

// ListAudit returns recent audit log entries. Query: resource_type, limit (default 50), offset (default 0).
func (h *AuditHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)
	resourceType := r.URL.Query().Get("resource_type")

	entries, err := h.Repo.List(r.Context(), resourceType, p.Limit, p.Offset)
	if err != nil {
		writeError(w, r, err, "audit entry")
		return
	}
	total, err := h.Repo.Count(r.Context(), resourceType)
	if err != nil {
		writeError(w, r, err, "audit entry")
		return
	}
	writePage(w, entries, total, p)
}
