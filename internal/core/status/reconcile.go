package status

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

const (
	badgePassed       = "Abgleich bestanden"
	badgeFailed       = "Abgleich fehlgeschlagen"
	badgeMinimumUnmet = "Mindestanzahl nicht erfüllt"
	badgeIncomplete   = "Unvollständig"
)

// Reconciler compares self-declared net income against salary proofs.
type Reconciler struct {
	rules Rules
	lo    decimal.Decimal
	hi    decimal.Decimal
}

func NewReconciler(rules Rules) *Reconciler {
	rules = rules.WithDefaults()
	lo, hi := rules.plausibleRange()
	return &Reconciler{rules: rules, lo: lo, hi: hi}
}

func (r *Reconciler) IsSalaryProof(row domain.StatusRow) bool {
	return containsAny(row.DocumentName, r.rules.SalaryProofMarkers) ||
		containsAny(row.DisplayName, r.rules.SalaryProofMarkers)
}

// IsSelfDeclaration reports a self-declaration document. Salary proofs never
// count as self-declaration evidence.
func (r *Reconciler) IsSelfDeclaration(row domain.StatusRow) bool {
	if r.IsSalaryProof(row) {
		return false
	}
	return containsAny(row.DocumentName, r.rules.SelfDeclarationMarkers) ||
		containsAny(row.DisplayName, r.rules.SelfDeclarationMarkers)
}

// IsReconciliationCase matches the net-income reconciliation case type exactly
// or a declared-net-income case type by substring.
func (r *Reconciler) IsReconciliationCase(row domain.StatusRow) bool {
	caseType := strings.ToLower(strings.TrimSpace(row.CaseType))
	if caseType == "" {
		return false
	}
	for _, t := range r.rules.ReconciliationCaseTypes {
		if caseType == t {
			return true
		}
	}
	return containsAny(caseType, r.rules.DeclaredNetCaseMarkers)
}

func (r *Reconciler) mentionsDeclaredNet(row domain.StatusRow) bool {
	return containsAny(row.CaseType, r.rules.FallbackTokens) ||
		containsAny(row.CaseDetails.Serialized(), r.rules.FallbackTokens)
}

// Extract computes the reconciliation for the rows of one group. Missing data
// on either side yields a null delta and passed=false.
func (r *Reconciler) Extract(rows []domain.StatusRow) domain.NettoReconciliation {
	var salary, declared, cases, fallback []decimal.Decimal
	for _, row := range rows {
		if r.IsSalaryProof(row) {
			salary = append(salary, r.salaryAmounts(row)...)
			continue
		}
		if r.IsSelfDeclaration(row) {
			declared = append(declared, AmountsFromDetails(row.CaseDetails, r.rules.AmountKeys)...)
		}
		if r.IsReconciliationCase(row) {
			cases = append(cases, AmountsFromDetails(row.CaseDetails, r.rules.AmountKeys)...)
		}
		if r.mentionsDeclaredNet(row) {
			fallback = append(fallback, ScanDetails(row.CaseDetails, r.lo, r.hi)...)
		}
	}

	out := domain.NettoReconciliation{LowestSalaryNet: minOf(salary)}
	for _, candidates := range [][]decimal.Decimal{declared, cases, fallback} {
		if len(candidates) > 0 {
			out.SelfDeclaredNet = maxOf(candidates)
			break
		}
	}
	if out.LowestSalaryNet.Valid && out.SelfDeclaredNet.Valid {
		lowest, declaredNet := out.LowestSalaryNet.Decimal, out.SelfDeclaredNet.Decimal
		out.Delta = decimal.NewNullDecimal(declaredNet.Sub(lowest).Round(2))
		out.Passed = lowest.GreaterThanOrEqual(declaredNet)
	}
	return out
}

// salaryAmounts reads a salary proof strictly first; free-form details are
// scanned within the plausibility range only when that finds nothing.
func (r *Reconciler) salaryAmounts(row domain.StatusRow) []decimal.Decimal {
	if amounts := AmountsFromDetails(row.CaseDetails, r.rules.AmountKeys); len(amounts) > 0 {
		return amounts
	}
	return ScanDetails(row.CaseDetails, r.lo, r.hi)
}

// Panel extends Extract with the module, case status and minimum-count facts
// shown next to the reconciliation.
func (r *Reconciler) Panel(rows []domain.StatusRow) domain.ReconciliationPanel {
	panel := domain.ReconciliationPanel{NettoReconciliation: r.Extract(rows)}

	var hasSalary, hasSelfDeclaration, caseSeen bool
	for _, row := range rows {
		if r.IsSalaryProof(row) {
			hasSalary = true
			if panel.MinimumHint == nil && row.MinimumCount != nil {
				panel.MinimumHint = minimumHint(row)
			}
		}
		if r.IsSelfDeclaration(row) {
			hasSelfDeclaration = true
		}
		if !caseSeen && r.isExactReconciliationCase(row) {
			caseSeen = true
			panel.CaseStatus = row.CaseStatus
		}
	}
	panel.HasModule = hasSalary && hasSelfDeclaration
	panel.Badge = badgeFor(panel)
	return panel
}

func (r *Reconciler) isExactReconciliationCase(row domain.StatusRow) bool {
	caseType := strings.ToLower(strings.TrimSpace(row.CaseType))
	for _, t := range r.rules.ReconciliationCaseTypes {
		if caseType == t {
			return true
		}
	}
	return false
}

func minimumHint(row domain.StatusRow) *domain.MinimumHint {
	hint := &domain.MinimumHint{Required: *row.MinimumCount}
	if row.PresentCount != nil {
		hint.Present = *row.PresentCount
	}
	if row.MinimumSatisfied != nil {
		hint.Satisfied = *row.MinimumSatisfied
	}
	return hint
}

func badgeFor(panel domain.ReconciliationPanel) domain.PanelBadge {
	switch {
	case panel.CaseStatus == "passed":
		return domain.PanelBadge{Kind: domain.PanelBadgeOK, Text: badgePassed}
	case panel.CaseStatus == "failed":
		return domain.PanelBadge{Kind: domain.PanelBadgeFail, Text: badgeFailed}
	case panel.MinimumHint != nil && !panel.MinimumHint.Satisfied:
		return domain.PanelBadge{Kind: domain.PanelBadgeWarn, Text: badgeMinimumUnmet}
	default:
		return domain.PanelBadge{Kind: domain.PanelBadgeInfo, Text: badgeIncomplete}
	}
}
