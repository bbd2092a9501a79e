package status

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

// ParseCaseDetails classifies the case_details column. Text that holds a JSON
// object is promoted to Structured.
func ParseCaseDetails(v any) domain.CaseDetails {
	switch t := v.(type) {
	case nil:
		return domain.CaseDetails{}
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return domain.CaseDetails{Kind: domain.CaseDetailsUnparseable, Raw: v}
		}
		return domain.CaseDetails{Kind: domain.CaseDetailsNumber, Number: d, Raw: v}
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return domain.CaseDetails{Kind: domain.CaseDetailsUnparseable, Raw: v}
		}
		return domain.CaseDetails{Kind: domain.CaseDetailsNumber, Number: decimal.NewFromFloat(t), Raw: v}
	case int:
		return domain.CaseDetails{Kind: domain.CaseDetailsNumber, Number: decimal.NewFromInt(int64(t)), Raw: v}
	case int64:
		return domain.CaseDetails{Kind: domain.CaseDetailsNumber, Number: decimal.NewFromInt(t), Raw: v}
	case map[string]any:
		return domain.CaseDetails{Kind: domain.CaseDetailsStructured, Fields: t, Raw: v}
	case string:
		text := strings.TrimSpace(t)
		if text == "" {
			return domain.CaseDetails{}
		}
		if strings.HasPrefix(text, "{") {
			if fields, ok := decodeObject(text); ok {
				return domain.CaseDetails{Kind: domain.CaseDetailsStructured, Fields: fields, Raw: v}
			}
		}
		return domain.CaseDetails{Kind: domain.CaseDetailsText, Text: text, Raw: v}
	default:
		return domain.CaseDetails{Kind: domain.CaseDetailsUnparseable, Raw: v}
	}
}

func decodeObject(text string) (map[string]any, bool) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}
