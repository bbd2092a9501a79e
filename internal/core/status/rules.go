package status

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Rules holds the marker tokens used to recognize salary proofs and
// self-declared income. All token matches are case-insensitive substrings
// except ReconciliationCaseTypes, which must equal the case type.
type Rules struct {
	SalaryProofMarkers      []string `yaml:"salary_proof_markers"`
	SelfDeclarationMarkers  []string `yaml:"self_declaration_markers"`
	ReconciliationCaseTypes []string `yaml:"reconciliation_case_types"`
	DeclaredNetCaseMarkers  []string `yaml:"declared_net_case_markers"`
	FallbackTokens          []string `yaml:"fallback_tokens"`
	AmountKeys              []string `yaml:"amount_keys"`
	PlausibleMin            float64  `yaml:"plausible_min"`
	PlausibleMax            float64  `yaml:"plausible_max"`
}

func DefaultRules() Rules {
	return Rules{
		SalaryProofMarkers:      []string{"gehalts", "lohn", "salary", "payslip"},
		SelfDeclarationMarkers:  []string{"selbstauskunft", "self_declaration"},
		ReconciliationCaseTypes: []string{"netto_abgleich"},
		DeclaredNetCaseMarkers:  []string{"angegebenes_netto"},
		FallbackTokens:          []string{"selbstauskunft", "angegebenes_netto", "netto", "monatlich_netto"},
		AmountKeys:              []string{"netto", "value", "betrag", "amount"},
		PlausibleMin:            500,
		PlausibleMax:            50000,
	}
}

// WithDefaults fills every unset field from DefaultRules.
func (r Rules) WithDefaults() Rules {
	def := DefaultRules()
	if len(r.SalaryProofMarkers) == 0 {
		r.SalaryProofMarkers = def.SalaryProofMarkers
	}
	if len(r.SelfDeclarationMarkers) == 0 {
		r.SelfDeclarationMarkers = def.SelfDeclarationMarkers
	}
	if len(r.ReconciliationCaseTypes) == 0 {
		r.ReconciliationCaseTypes = def.ReconciliationCaseTypes
	}
	if len(r.DeclaredNetCaseMarkers) == 0 {
		r.DeclaredNetCaseMarkers = def.DeclaredNetCaseMarkers
	}
	if len(r.FallbackTokens) == 0 {
		r.FallbackTokens = def.FallbackTokens
	}
	if len(r.AmountKeys) == 0 {
		r.AmountKeys = def.AmountKeys
	}
	if r.PlausibleMin == 0 && r.PlausibleMax == 0 {
		r.PlausibleMin, r.PlausibleMax = def.PlausibleMin, def.PlausibleMax
	}
	r.SalaryProofMarkers = lowerAll(r.SalaryProofMarkers)
	r.SelfDeclarationMarkers = lowerAll(r.SelfDeclarationMarkers)
	r.ReconciliationCaseTypes = lowerAll(r.ReconciliationCaseTypes)
	r.DeclaredNetCaseMarkers = lowerAll(r.DeclaredNetCaseMarkers)
	r.FallbackTokens = lowerAll(r.FallbackTokens)
	return r
}

func (r Rules) plausibleRange() (decimal.Decimal, decimal.Decimal) {
	return decimal.NewFromFloat(r.PlausibleMin), decimal.NewFromFloat(r.PlausibleMax)
}

func lowerAll(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func containsAny(text string, tokens []string) bool {
	if text == "" {
		return false
	}
	text = strings.ToLower(text)
	for _, t := range tokens {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
