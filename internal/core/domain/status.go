package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// RawRow is one record of the dashboard_dokumentenstatus view exactly as the
// backend delivers it. Field names are the backend's and are never renamed.
type RawRow map[string]any

// StatusRow is the normalized shape of one document requirement of one
// customer in one role.
type StatusRow struct {
	CustomerID     string `json:"customer_id"`
	CustomerName   string `json:"customer_name"`
	RoleLabel      string `json:"role_label"`
	DocumentTypeID string `json:"document_type_id,omitempty"`
	DocumentName   string `json:"document_name"`
	DisplayName    string `json:"display_name,omitempty"`

	IsRequired bool `json:"is_required"`
	IsPresent  bool `json:"is_present"`

	// MinimumSatisfied is only meaningful when MinimumCount is set.
	MinimumCount     *int  `json:"minimum_count"`
	PresentCount     *int  `json:"present_count"`
	MinimumSatisfied *bool `json:"minimum_satisfied"`

	// Case fields are only meaningful when RequiresDeepVerification is set.
	RequiresDeepVerification bool         `json:"requires_deep_verification"`
	CaseType                 string       `json:"case_type,omitempty"`
	CaseStatus               string       `json:"case_status,omitempty"`
	CaseDetails              CaseDetails  `json:"case_details"`
	DeepSummary              *DeepSummary `json:"deep_summary,omitempty"`

	FileReference string     `json:"file_reference,omitempty"`
	LastUpdatedAt *time.Time `json:"last_updated_at"`
}

// GroupKey returns the aggregation key of the row.
func (r StatusRow) GroupKey() string {
	return GroupKey(r.CustomerID, r.RoleLabel)
}

func GroupKey(customerID, roleLabel string) string {
	return customerID + "::" + roleLabel
}

type DeepSummary struct {
	Passed int `json:"passed"`
	Open   int `json:"offen"`
	Failed int `json:"failed"`
}

type CaseDetailsKind int

const (
	CaseDetailsNone CaseDetailsKind = iota
	CaseDetailsNumber
	CaseDetailsText
	CaseDetailsStructured
	CaseDetailsUnparseable
)

func (k CaseDetailsKind) String() string {
	switch k {
	case CaseDetailsNumber:
		return "number"
	case CaseDetailsText:
		return "text"
	case CaseDetailsStructured:
		return "structured"
	case CaseDetailsUnparseable:
		return "unparseable"
	default:
		return "none"
	}
}

// CaseDetails is the parsed form of the unstructured case_details column.
// Exactly one of Number, Text or Fields is populated, selected by Kind.
// Raw keeps the original value for display.
type CaseDetails struct {
	Kind   CaseDetailsKind `json:"-"`
	Number decimal.Decimal `json:"-"`
	Text   string          `json:"-"`
	Fields map[string]any  `json:"-"`
	Raw    any             `json:"-"`
}

func (d CaseDetails) IsZero() bool {
	return d.Kind == CaseDetailsNone
}

// MarshalJSON renders the original value so that API clients see the
// details the backend stored.
func (d CaseDetails) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case CaseDetailsNone:
		return []byte("null"), nil
	case CaseDetailsNumber:
		return []byte(d.Number.String()), nil
	case CaseDetailsText:
		return json.Marshal(d.Text)
	case CaseDetailsStructured:
		return json.Marshal(d.Fields)
	default:
		return json.Marshal(d.Raw)
	}
}

// Serialized returns a textual form of the details suitable for token search.
func (d CaseDetails) Serialized() string {
	switch d.Kind {
	case CaseDetailsNone:
		return ""
	case CaseDetailsNumber:
		return d.Number.String()
	case CaseDetailsText:
		return d.Text
	default:
		raw, err := d.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
