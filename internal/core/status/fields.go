package status

import "github.com/kirillkom/document-status-dashboard/internal/core/domain"

// FieldResolver reads one logical field from a raw row.
type FieldResolver interface {
	Resolve(raw domain.RawRow) (any, bool)
}

// Key resolves a single column; null and missing are both absent.
type Key string

func (k Key) Resolve(raw domain.RawRow) (any, bool) {
	v, ok := raw[string(k)]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// FirstOf tries its resolvers in order; the first non-null value wins.
type FirstOf []FieldResolver

func (f FirstOf) Resolve(raw domain.RawRow) (any, bool) {
	for _, r := range f {
		if v, ok := r.Resolve(raw); ok {
			return v, true
		}
	}
	return nil, false
}

// Synonyms builds a FirstOf chain over plain column names.
func Synonyms(keys ...string) FieldResolver {
	if len(keys) == 1 {
		return Key(keys[0])
	}
	chain := make(FirstOf, 0, len(keys))
	for _, k := range keys {
		chain = append(chain, Key(k))
	}
	return chain
}

// RowFields maps each StatusRow field to the backend columns that may carry it.
type RowFields struct {
	CustomerID               FieldResolver
	CustomerName             FieldResolver
	RoleLabel                FieldResolver
	DocumentTypeID           FieldResolver
	DocumentName             FieldResolver
	DisplayName              FieldResolver
	IsRequired               FieldResolver
	IsPresent                FieldResolver
	MinimumCount             FieldResolver
	PresentCount             FieldResolver
	MinimumSatisfied         FieldResolver
	RequiresDeepVerification FieldResolver
	CaseType                 FieldResolver
	CaseStatus               FieldResolver
	CaseDetails              FieldResolver
	DeepSummary              FieldResolver
	FileReference            FieldResolver
	LastUpdatedAt            FieldResolver
}

// DefaultRowFields is the column mapping of the dashboard_dokumentenstatus view.
// The minimum-count flag exists with the native umlaut and transliterated.
func DefaultRowFields() RowFields {
	return RowFields{
		CustomerID:               Key("kunde_id"),
		CustomerName:             Key("kunde_name"),
		RoleLabel:                Key("kundenrolle"),
		DocumentTypeID:           Key("dokumenttyp_id"),
		DocumentName:             Key("dokument_name"),
		DisplayName:              Key("anzeige_name"),
		IsRequired:               Key("erforderlich"),
		IsPresent:                Key("vorhanden"),
		MinimumCount:             Key("mindestanzahl"),
		PresentCount:             Key("anzahl_vorhanden"),
		MinimumSatisfied:         Synonyms("mindestanzahl_erfüllt", "mindestanzahl_erfuellt"),
		RequiresDeepVerification: Key("tiefergehende_pruefung"),
		CaseType:                 Key("case_typ"),
		CaseStatus:               Key("case_status"),
		CaseDetails:              Key("case_details"),
		DeepSummary:              Key("deep_summary"),
		FileReference:            Key("file_url"),
		LastUpdatedAt:            Synonyms("letztes_update", "erkannt_am"),
	}
}
