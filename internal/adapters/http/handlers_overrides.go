package httpadapter

import (
	"net/http"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

func (rt *Router) listOverrides(w http.ResponseWriter, r *http.Request) {
	records, err := rt.deps.Overrides.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"overrides": records})
}

func (rt *Router) setOverride(w http.ResponseWriter, r *http.Request) {
	kind, groupKey, ok := overrideTarget(w, r)
	if !ok {
		return
	}
	record, err := rt.deps.Overrides.Set(r.Context(), kind, groupKey)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (rt *Router) deleteOverride(w http.ResponseWriter, r *http.Request) {
	kind, groupKey, ok := overrideTarget(w, r)
	if !ok {
		return
	}
	if err := rt.deps.Overrides.Delete(r.Context(), kind, groupKey); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func overrideTarget(w http.ResponseWriter, r *http.Request) (domain.OverrideKind, string, bool) {
	kind, err := bindPathParam(r, "kind")
	if err != nil {
		writeDomainError(w, r, err)
		return "", "", false
	}
	groupKey, err := bindPathParam(r, "groupKey")
	if err != nil {
		writeDomainError(w, r, err)
		return "", "", false
	}
	return domain.OverrideKind(kind), groupKey, true
}
