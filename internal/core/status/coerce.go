package status

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case int64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "t", "1", "yes", "y", "ja", "j":
			return true
		}
	}
	return false
}

func asInt(v any) *int {
	var f float64
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			out := int(n)
			return &out
		}
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case float64:
		f = t
	case int:
		out := t
		return &out
	case int64:
		out := int(t)
		return &out
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f >= math.MaxInt || f < math.MinInt {
		return nil
	}
	out := int(f)
	return &out
}

func asTime(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return nil
		}
		out := t.UTC()
		return &out
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				out := parsed.UTC()
				return &out
			}
		}
	}
	return nil
}

func asDeepSummary(v any) *domain.DeepSummary {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	count := func(key string) int {
		if n := asInt(m[key]); n != nil {
			return *n
		}
		return 0
	}
	return &domain.DeepSummary{
		Passed: count("passed"),
		Open:   count("offen"),
		Failed: count("failed"),
	}
}
