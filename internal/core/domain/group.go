package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LifecycleStatus string

const (
	LifecycleWaitingForUpload  LifecycleStatus = "waiting_for_upload"
	LifecycleInProgress        LifecycleStatus = "in_progress"
	LifecycleCompleted         LifecycleStatus = "completed"
	LifecycleFailed            LifecycleStatus = "failed"
	LifecycleManuallyCompleted LifecycleStatus = "manually_completed"
)

var lifecycleLabels = map[LifecycleStatus]string{
	LifecycleWaitingForUpload:  "Wartet auf Upload",
	LifecycleInProgress:        "In Bearbeitung",
	LifecycleCompleted:         "Abgeschlossen",
	LifecycleFailed:            "Fehlgeschlagen",
	LifecycleManuallyCompleted: "Manuell abgeschlossen",
}

// Label returns the customer-facing German wording of the status.
func (s LifecycleStatus) Label() string {
	if label, ok := lifecycleLabels[s]; ok {
		return label
	}
	return string(s)
}

func (s LifecycleStatus) Valid() bool {
	_, ok := lifecycleLabels[s]
	return ok
}

// GroupSummary aggregates all rows of one (customer, role) pair. It is
// rebuilt from source rows on every read and never stored.
type GroupSummary struct {
	Key          string `json:"key"`
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	RoleLabel    string `json:"role_label"`

	RequiredTotal     int `json:"required_total"`
	RequiredSatisfied int `json:"required_satisfied"`
	MinimumTotal      int `json:"minimum_total"`
	MinimumSatisfied  int `json:"minimum_satisfied"`
	DeepTotal         int `json:"deep_total"`
	DeepPassed        int `json:"deep_passed"`
	DeepFailed        int `json:"deep_failed"`

	// MinimumCredit sums per-row fulfillment of minimum counts, giving
	// partial credit for present/minimum below one.
	MinimumCredit float64 `json:"minimum_credit"`

	HasAnyUpload   bool       `json:"has_any_upload"`
	LastActivityAt *time.Time `json:"last_activity_at"`

	ProgressPercent int             `json:"progress_percent"`
	Lifecycle       LifecycleStatus `json:"lifecycle_status"`

	// Overlay from the override store, not derived from backend data.
	Hidden              bool       `json:"hidden"`
	ManuallyCompletedAt *time.Time `json:"manually_completed_at,omitempty"`
}

// NettoReconciliation compares the self-declared net income with the lowest
// net income evidenced by salary proofs.
type NettoReconciliation struct {
	LowestSalaryNet decimal.NullDecimal `json:"lowest_salary_net"`
	SelfDeclaredNet decimal.NullDecimal `json:"self_declared_net"`
	// Delta is SelfDeclaredNet - LowestSalaryNet; positive means the
	// declaration exceeds the proof.
	Delta  decimal.NullDecimal `json:"delta"`
	Passed bool                `json:"passed"`
}

type PanelBadgeKind string

const (
	PanelBadgeOK   PanelBadgeKind = "ok"
	PanelBadgeWarn PanelBadgeKind = "warn"
	PanelBadgeFail PanelBadgeKind = "fail"
	PanelBadgeInfo PanelBadgeKind = "info"
)

type PanelBadge struct {
	Kind PanelBadgeKind `json:"kind"`
	Text string         `json:"text"`
}

// ReconciliationPanel is the credit-check block of the detail view.
type ReconciliationPanel struct {
	NettoReconciliation

	HasModule   bool         `json:"has_module"`
	CaseStatus  string       `json:"case_status,omitempty"`
	MinimumHint *MinimumHint `json:"minimum_hint,omitempty"`
	Badge       PanelBadge   `json:"badge"`
}

// MinimumHint reports the salary-proof minimum count of the first
// salary-proof row.
type MinimumHint struct {
	Required  int  `json:"required"`
	Present   int  `json:"present"`
	Satisfied bool `json:"satisfied"`
}

// DocumentView is one line of the detail checklist.
type DocumentView struct {
	StatusRow

	MissingRequired bool   `json:"missing_required"`
	MinimumLabel    string `json:"minimum_label,omitempty"`
	HasDetails      bool   `json:"has_details"`
}

type GroupDetail struct {
	Summary        GroupSummary        `json:"summary"`
	Documents      []DocumentView      `json:"documents"`
	Reconciliation ReconciliationPanel `json:"reconciliation"`
}

type OverviewSort string

const (
	SortByName     OverviewSort = "name"
	SortByProgress OverviewSort = "progress"
	SortByActivity OverviewSort = "activity"
	SortByStatus   OverviewSort = "status"
)

func (s OverviewSort) Valid() bool {
	switch s {
	case SortByName, SortByProgress, SortByActivity, SortByStatus:
		return true
	default:
		return false
	}
}

// OverviewQuery narrows and orders the overview. Zero value means: all
// visible groups sorted by name.
type OverviewQuery struct {
	RoleLabel     string
	Lifecycle     LifecycleStatus
	Search        string
	IncludeHidden bool
	Sort          OverviewSort
}

// LifecycleCounts is a point-in-time tally used by the snapshot job.
type LifecycleCounts struct {
	TakenAt time.Time               `json:"taken_at"`
	Groups  int                     `json:"groups"`
	Rows    int                     `json:"rows"`
	ByState map[LifecycleStatus]int `json:"by_state"`
	Passed  int                     `json:"reconciliations_passed"`
	Failed  int                     `json:"reconciliations_failed"`
	Pending int                     `json:"reconciliations_pending"`
}
