package status

import (
	"strconv"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

// BuildDetail assembles the detail view of one group from the full row set.
// It returns false when no row belongs to the group.
func BuildDetail(rows []domain.StatusRow, groupKey string, overrides domain.Overrides, reconciler *Reconciler) (domain.GroupDetail, bool) {
	own := make([]domain.StatusRow, 0)
	for _, row := range rows {
		if row.GroupKey() == groupKey {
			own = append(own, row)
		}
	}
	if len(own) == 0 {
		return domain.GroupDetail{}, false
	}

	groups := Aggregate(own)
	detail := domain.GroupDetail{
		Summary:        ApplyOverride(groups[0], overrides),
		Documents:      make([]domain.DocumentView, 0, len(own)),
		Reconciliation: reconciler.Panel(own),
	}
	for _, row := range own {
		detail.Documents = append(detail.Documents, documentView(row))
	}
	return detail, true
}

func documentView(row domain.StatusRow) domain.DocumentView {
	view := domain.DocumentView{
		StatusRow:       row,
		MissingRequired: row.IsRequired && !row.IsPresent,
		HasDetails:      row.RequiresDeepVerification && (row.CaseType != "" || row.DeepSummary != nil),
	}
	if row.MinimumCount != nil {
		present := 0
		if row.PresentCount != nil {
			present = *row.PresentCount
		}
		view.MinimumLabel = strconv.Itoa(present) + "/" + strconv.Itoa(*row.MinimumCount)
	}
	return view
}
