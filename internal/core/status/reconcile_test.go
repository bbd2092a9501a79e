package status

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

func salaryRow(details any) domain.StatusRow {
	return domain.StatusRow{
		CustomerID:   "5",
		RoleLabel:    "Käufer (angestellt)",
		DocumentName: "Gehaltsnachweis",
		IsRequired:   true,
		IsPresent:    true,
		CaseDetails:  ParseCaseDetails(details),
	}
}

func selfDeclarationRow(details any) domain.StatusRow {
	return domain.StatusRow{
		CustomerID:   "5",
		RoleLabel:    "Käufer (angestellt)",
		DocumentName: "Selbstauskunft",
		CaseDetails:  ParseCaseDetails(details),
	}
}

func TestExtractReconciliationPassed(t *testing.T) {
	r := NewReconciler(DefaultRules())
	rows := []domain.StatusRow{
		salaryRow(json.Number("2100.50")),
		salaryRow(map[string]any{"netto": "1.950,00"}),
		selfDeclarationRow("1.900,00"),
	}

	got := r.Extract(rows)
	if !got.LowestSalaryNet.Valid || !got.LowestSalaryNet.Decimal.Equal(decimal.RequireFromString("1950.00")) {
		t.Fatalf("expected lowest 1950.00, got %v", got.LowestSalaryNet)
	}
	if !got.SelfDeclaredNet.Valid || !got.SelfDeclaredNet.Decimal.Equal(decimal.RequireFromString("1900.00")) {
		t.Fatalf("expected declared 1900.00, got %v", got.SelfDeclaredNet)
	}
	if !got.Delta.Valid || !got.Delta.Decimal.Equal(decimal.RequireFromString("-50.00")) {
		t.Fatalf("expected delta -50.00, got %v", got.Delta)
	}
	if !got.Passed {
		t.Fatal("expected passed")
	}
}

func TestExtractReconciliationFailsWhenDeclarationExceedsProof(t *testing.T) {
	r := NewReconciler(DefaultRules())
	got := r.Extract([]domain.StatusRow{salaryRow(json.Number("1800")), selfDeclarationRow(json.Number("2000.555"))})
	if got.Passed {
		t.Fatal("expected failed reconciliation")
	}
	if !got.Delta.Decimal.Equal(decimal.RequireFromString("200.56")) {
		t.Fatalf("expected delta 200.56, got %v", got.Delta)
	}
}

func TestExtractReconciliationIndeterminateWithoutBothSides(t *testing.T) {
	r := NewReconciler(DefaultRules())
	cases := map[string][]domain.StatusRow{
		"no salary":          {selfDeclarationRow(json.Number("1900"))},
		"no declaration":     {salaryRow(json.Number("1900"))},
		"unparseable salary": {salaryRow("n/a"), selfDeclarationRow(json.Number("1900"))},
		"empty":              nil,
	}
	for name, rows := range cases {
		got := r.Extract(rows)
		if got.Passed || got.Delta.Valid {
			t.Fatalf("%s: expected indeterminate result, got %+v", name, got)
		}
	}
}

func TestExtractReconciliationEvidencePriority(t *testing.T) {
	r := NewReconciler(DefaultRules())
	caseRow := domain.StatusRow{
		DocumentName:             "Bonitätsprüfung",
		RequiresDeepVerification: true,
		CaseType:                 "angegebenes_netto",
		CaseDetails:              ParseCaseDetails(map[string]any{"betrag": json.Number("2500")}),
	}
	looseRow := domain.StatusRow{
		DocumentName: "Notiz",
		CaseType:     "freitext",
		CaseDetails:  ParseCaseDetails("Monatlich_netto laut Kunde 3.100,00 bei Seite 2"),
	}

	got := r.Extract([]domain.StatusRow{salaryRow(json.Number("2000")), looseRow, caseRow, selfDeclarationRow(json.Number("1700")), selfDeclarationRow(json.Number("1750"))})
	if !got.SelfDeclaredNet.Decimal.Equal(decimal.NewFromInt(1750)) {
		t.Fatalf("expected max of self-declaration rows 1750, got %v", got.SelfDeclaredNet)
	}

	got = r.Extract([]domain.StatusRow{salaryRow(json.Number("2000")), looseRow, caseRow})
	if !got.SelfDeclaredNet.Decimal.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("expected reconciliation case value 2500, got %v", got.SelfDeclaredNet)
	}

	got = r.Extract([]domain.StatusRow{salaryRow(json.Number("2000")), looseRow})
	if !got.SelfDeclaredNet.Decimal.Equal(decimal.NewFromInt(3100)) {
		t.Fatalf("expected fallback value 3100, got %v", got.SelfDeclaredNet)
	}
	if got.Passed {
		t.Fatal("expected failed reconciliation for 3100 > 2000")
	}
}

func TestExtractReconciliationScansFreeTextSalaryProof(t *testing.T) {
	r := NewReconciler(DefaultRules())
	rows := []domain.StatusRow{
		salaryRow("Netto laut Abrechnung: 2.100,50 €"),
		salaryRow(map[string]any{"netto": "2.300,00"}),
		selfDeclarationRow(json.Number("2000")),
	}

	got := r.Extract(rows)
	if !got.LowestSalaryNet.Valid || !got.LowestSalaryNet.Decimal.Equal(decimal.RequireFromString("2100.50")) {
		t.Fatalf("expected lowest 2100.50 from free text, got %v", got.LowestSalaryNet)
	}
	if !got.Passed {
		t.Fatal("expected passed")
	}

	got = r.Extract([]domain.StatusRow{salaryRow("Abrechnung 03/2025, Personalnummer 12"), selfDeclarationRow(json.Number("2000"))})
	if got.LowestSalaryNet.Valid {
		t.Fatalf("expected no salary value outside the plausible range, got %v", got.LowestSalaryNet)
	}
}

func TestReconcilerIgnoresSalaryProofsAsDeclarations(t *testing.T) {
	r := NewReconciler(DefaultRules())
	row := domain.StatusRow{DocumentName: "Gehaltsnachweis Selbstauskunft", CaseType: "netto_abgleich", CaseDetails: ParseCaseDetails(json.Number("2000"))}
	if r.IsSelfDeclaration(row) {
		t.Fatal("salary proof must not count as self-declaration")
	}
	got := r.Extract([]domain.StatusRow{row})
	if got.SelfDeclaredNet.Valid {
		t.Fatalf("expected no declared value, got %v", got.SelfDeclaredNet)
	}
}

func TestPanelBadges(t *testing.T) {
	r := NewReconciler(DefaultRules())
	unmet := salaryRow(json.Number("2000"))
	unmet.MinimumCount = intPtr(3)
	unmet.PresentCount = intPtr(1)
	unmet.MinimumSatisfied = boolPtr(false)

	panel := r.Panel([]domain.StatusRow{unmet, selfDeclarationRow(json.Number("1900"))})
	if !panel.HasModule {
		t.Fatal("expected module present")
	}
	if panel.Badge.Kind != domain.PanelBadgeWarn {
		t.Fatalf("expected warn badge, got %+v", panel.Badge)
	}
	if panel.MinimumHint == nil || panel.MinimumHint.Required != 3 || panel.MinimumHint.Present != 1 {
		t.Fatalf("unexpected minimum hint %+v", panel.MinimumHint)
	}

	caseRow := domain.StatusRow{DocumentName: "Abgleich", CaseType: "Netto_Abgleich", CaseStatus: "failed"}
	panel = r.Panel([]domain.StatusRow{unmet, caseRow})
	if panel.Badge.Kind != domain.PanelBadgeFail || panel.CaseStatus != "failed" {
		t.Fatalf("expected fail badge, got %+v", panel)
	}
	if panel.HasModule {
		t.Fatal("expected no module without self-declaration")
	}

	panel = r.Panel(nil)
	if panel.Badge.Kind != domain.PanelBadgeInfo {
		t.Fatalf("expected info badge, got %+v", panel.Badge)
	}
}
