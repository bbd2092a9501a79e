package status

import (
	"strings"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

// Normalizer turns raw view records into StatusRows. It is total: type
// mismatches fall back to zero values and never produce an error.
type Normalizer struct {
	fields RowFields
}

func NewNormalizer(fields RowFields) *Normalizer {
	return &Normalizer{fields: fields}
}

var defaultNormalizer = NewNormalizer(DefaultRowFields())

// Normalize uses the default column mapping.
func Normalize(raw domain.RawRow) domain.StatusRow {
	return defaultNormalizer.Normalize(raw)
}

func NormalizeAll(raws []domain.RawRow) []domain.StatusRow {
	return defaultNormalizer.NormalizeAll(raws)
}

func (n *Normalizer) Normalize(raw domain.RawRow) domain.StatusRow {
	f := n.fields
	row := domain.StatusRow{
		CustomerID:               n.text(f.CustomerID, raw),
		CustomerName:             n.text(f.CustomerName, raw),
		RoleLabel:                n.text(f.RoleLabel, raw),
		DocumentTypeID:           n.text(f.DocumentTypeID, raw),
		DocumentName:             n.text(f.DocumentName, raw),
		DisplayName:              n.text(f.DisplayName, raw),
		IsRequired:               n.flag(f.IsRequired, raw),
		IsPresent:                n.flag(f.IsPresent, raw),
		MinimumCount:             n.count(f.MinimumCount, raw),
		PresentCount:             n.count(f.PresentCount, raw),
		RequiresDeepVerification: n.flag(f.RequiresDeepVerification, raw),
		CaseType:                 n.text(f.CaseType, raw),
		CaseStatus:               strings.ToLower(n.text(f.CaseStatus, raw)),
		FileReference:            n.text(f.FileReference, raw),
	}
	if v, ok := resolve(f.MinimumSatisfied, raw); ok {
		satisfied := asBool(v)
		row.MinimumSatisfied = &satisfied
	}
	if v, ok := resolve(f.CaseDetails, raw); ok {
		row.CaseDetails = ParseCaseDetails(v)
	}
	if v, ok := resolve(f.DeepSummary, raw); ok {
		row.DeepSummary = asDeepSummary(v)
	}
	if v, ok := resolve(f.LastUpdatedAt, raw); ok {
		row.LastUpdatedAt = asTime(v)
	}
	return row
}

func (n *Normalizer) NormalizeAll(raws []domain.RawRow) []domain.StatusRow {
	rows := make([]domain.StatusRow, 0, len(raws))
	for _, raw := range raws {
		rows = append(rows, n.Normalize(raw))
	}
	return rows
}

func (n *Normalizer) text(r FieldResolver, raw domain.RawRow) string {
	v, ok := resolve(r, raw)
	if !ok {
		return ""
	}
	return asString(v)
}

func (n *Normalizer) flag(r FieldResolver, raw domain.RawRow) bool {
	v, ok := resolve(r, raw)
	return ok && asBool(v)
}

func (n *Normalizer) count(r FieldResolver, raw domain.RawRow) *int {
	v, ok := resolve(r, raw)
	if !ok {
		return nil
	}
	return asInt(v)
}

func resolve(r FieldResolver, raw domain.RawRow) (any, bool) {
	if r == nil || raw == nil {
		return nil, false
	}
	return r.Resolve(raw)
}
