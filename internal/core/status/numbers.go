package status

import (
	"encoding/json"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

var (
	plainNumberPattern = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)
	amountPattern      = regexp.MustCompile(`\d[\d.,]*\d|\d`)
)

// ParseAmount parses a loosely formatted monetary string such as "2.100,50",
// "1950.50" or "1 950 €". It returns false for anything that is not a plain
// finite number after separator normalization.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '€' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero, false
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0:
		intPart := strings.TrimLeft(s[:lastDot], "+-")
		groupedThousands := len(s)-lastDot-1 == 3 && intPart != "" && intPart != "0"
		if strings.Count(s, ".") > 1 || groupedThousands {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	if !plainNumberPattern.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// AmountFromValue extracts one amount from an arbitrary decoded value. Objects
// are probed with keys in order, recursively; the first success wins.
func AmountFromValue(v any, keys []string) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case string:
		return ParseAmount(t)
	case map[string]any:
		for _, key := range keys {
			val, ok := t[key]
			if !ok || val == nil {
				continue
			}
			if d, ok := AmountFromValue(val, keys); ok {
				return d, true
			}
		}
	}
	return decimal.Zero, false
}

// AmountsFromValue is AmountFromValue that also collects every element of an
// array.
func AmountsFromValue(v any, keys []string) []decimal.Decimal {
	if items, ok := v.([]any); ok {
		var out []decimal.Decimal
		for _, item := range items {
			out = append(out, AmountsFromValue(item, keys)...)
		}
		return out
	}
	if d, ok := AmountFromValue(v, keys); ok {
		return []decimal.Decimal{d}
	}
	return nil
}

// AmountsFromDetails extracts the amounts carried by parsed case details.
func AmountsFromDetails(d domain.CaseDetails, keys []string) []decimal.Decimal {
	switch d.Kind {
	case domain.CaseDetailsNumber:
		return []decimal.Decimal{d.Number}
	case domain.CaseDetailsText:
		if n, ok := ParseAmount(d.Text); ok {
			return []decimal.Decimal{n}
		}
	case domain.CaseDetailsStructured:
		if n, ok := AmountFromValue(d.Fields, keys); ok {
			return []decimal.Decimal{n}
		}
	case domain.CaseDetailsUnparseable:
		return AmountsFromValue(d.Raw, keys)
	}
	return nil
}

// ScanAmounts finds number-like substrings in free text and keeps those within
// [lo, hi]. Fragments of dates, times and identifiers are skipped.
func ScanAmounts(text string, lo, hi decimal.Decimal) []decimal.Decimal {
	var out []decimal.Decimal
	for _, loc := range amountPattern.FindAllStringIndex(text, -1) {
		if partOfDateOrIdentifier(text, loc[0], loc[1]) {
			continue
		}
		if d, ok := ParseAmount(text[loc[0]:loc[1]]); ok {
			out = append(out, inRange([]decimal.Decimal{d}, lo, hi)...)
		}
	}
	return out
}

// ScanDetails applies ScanAmounts to every leaf of the case details. Numeric
// leaves are range-checked directly.
func ScanDetails(d domain.CaseDetails, lo, hi decimal.Decimal) []decimal.Decimal {
	switch d.Kind {
	case domain.CaseDetailsNone:
		return nil
	case domain.CaseDetailsNumber:
		return inRange([]decimal.Decimal{d.Number}, lo, hi)
	case domain.CaseDetailsText:
		return ScanAmounts(d.Text, lo, hi)
	case domain.CaseDetailsStructured:
		return scanValue(d.Fields, lo, hi)
	default:
		return scanValue(d.Raw, lo, hi)
	}
}

func scanValue(v any, lo, hi decimal.Decimal) []decimal.Decimal {
	switch t := v.(type) {
	case string:
		return ScanAmounts(t, lo, hi)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []decimal.Decimal
		for _, k := range keys {
			out = append(out, scanValue(t[k], lo, hi)...)
		}
		return out
	case []any:
		var out []decimal.Decimal
		for _, item := range t {
			out = append(out, scanValue(item, lo, hi)...)
		}
		return out
	default:
		if d, ok := AmountFromValue(v, nil); ok {
			return inRange([]decimal.Decimal{d}, lo, hi)
		}
		return nil
	}
}

func inRange(values []decimal.Decimal, lo, hi decimal.Decimal) []decimal.Decimal {
	out := values[:0:0]
	for _, v := range values {
		if !v.LessThan(lo) && !v.GreaterThan(hi) {
			out = append(out, v)
		}
	}
	return out
}

func partOfDateOrIdentifier(text string, start, end int) bool {
	if start > 0 {
		prev := text[start-1]
		switch {
		case isASCIILetter(prev) || prev == '_' || prev == '/':
			return true
		case (prev == '-' || prev == ':') && start > 1 && isDigit(text[start-2]):
			return true
		}
	}
	if end < len(text) {
		next := text[end]
		switch {
		case next == '/' || next == '_':
			return true
		case (next == '-' || next == ':') && end+1 < len(text) && isDigit(text[end+1]):
			return true
		}
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func maxOf(values []decimal.Decimal) decimal.NullDecimal {
	if len(values) == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.Max(values[0], values[1:]...))
}

func minOf(values []decimal.Decimal) decimal.NullDecimal {
	if len(values) == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.Min(values[0], values[1:]...))
}
