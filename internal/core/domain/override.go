package domain

import "time"

type OverrideKind string

const (
	OverrideHidden     OverrideKind = "hidden"
	OverrideManualDone OverrideKind = "manual_done"
)

func (k OverrideKind) Valid() bool {
	return k == OverrideHidden || k == OverrideManualDone
}

// OverrideRecord pins a presentation flag on one group. Records are
// installation-local and never derived from backend data.
type OverrideRecord struct {
	Kind     OverrideKind `json:"kind"`
	GroupKey string       `json:"group_key"`
	SetAt    time.Time    `json:"set_at"`
}

// Overrides is an immutable lookup view over a set of override records.
type Overrides struct {
	hidden     map[string]time.Time
	manualDone map[string]time.Time
}

func NewOverrides(records []OverrideRecord) Overrides {
	o := Overrides{
		hidden:     make(map[string]time.Time),
		manualDone: make(map[string]time.Time),
	}
	for _, rec := range records {
		switch rec.Kind {
		case OverrideHidden:
			o.hidden[rec.GroupKey] = rec.SetAt
		case OverrideManualDone:
			o.manualDone[rec.GroupKey] = rec.SetAt
		}
	}
	return o
}

func (o Overrides) IsHidden(groupKey string) bool {
	_, ok := o.hidden[groupKey]
	return ok
}

func (o Overrides) ManualDoneAt(groupKey string) (time.Time, bool) {
	at, ok := o.manualDone[groupKey]
	return at, ok
}
