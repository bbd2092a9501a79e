package httpadapter

import (
	"bytes"
	"net/http"
	"time"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (rt *Router) listRows(w http.ResponseWriter, r *http.Request) {
	rows, err := rt.deps.Dashboard.Rows(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows, "count": len(rows)})
}

func (rt *Router) overview(w http.ResponseWriter, r *http.Request) {
	groups, ok := rt.loadOverview(w, r)
	if !ok {
		return
	}
	if rt.deps.Metrics != nil {
		rt.deps.Metrics.RecordOverview(serviceName, countByLifecycle(groups))
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups, "count": len(groups)})
}

func (rt *Router) exportOverview(w http.ResponseWriter, r *http.Request) {
	groups, ok := rt.loadOverview(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := writeOverviewXLSX(&buf, groups); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if rt.deps.Metrics != nil {
		rt.deps.Metrics.RecordExport(serviceName, "xlsx")
	}

	filename := "dokumentenstatus-" + time.Now().UTC().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (rt *Router) loadOverview(w http.ResponseWriter, r *http.Request) ([]domain.GroupSummary, bool) {
	query, err := bindOverviewQuery(r)
	if err != nil {
		writeDomainError(w, r, err)
		return nil, false
	}
	groups, err := rt.deps.Dashboard.Overview(r.Context(), query)
	if err != nil {
		writeDomainError(w, r, err)
		return nil, false
	}
	return groups, true
}

func (rt *Router) snapshot(w http.ResponseWriter, r *http.Request) {
	counts, err := rt.deps.Dashboard.Snapshot(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (rt *Router) groupDetail(w http.ResponseWriter, r *http.Request) {
	customerID, err := bindPathParam(r, "customerId")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	role, err := bindOptionalQuery(r, "role")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	detail, err := rt.deps.Dashboard.Detail(r.Context(), customerID, role)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if rt.deps.Metrics != nil && detail.Reconciliation.HasModule {
		rt.deps.Metrics.RecordReconciliation(serviceName, reconciliationOutcome(detail.Reconciliation.NettoReconciliation))
	}
	writeJSON(w, http.StatusOK, detail)
}

func countByLifecycle(groups []domain.GroupSummary) map[string]int {
	counts := make(map[string]int)
	for _, g := range groups {
		counts[string(g.Lifecycle)]++
	}
	return counts
}

func reconciliationOutcome(rec domain.NettoReconciliation) string {
	switch {
	case !rec.Delta.Valid:
		return "pending"
	case rec.Passed:
		return "passed"
	default:
		return "failed"
	}
}
