package ingest

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vvka-141/dwhload/internal/schema"
)

// timestampLayouts are tried for string timestamps that are not epoch numbers.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// coerce converts a decoded JSON value to the column's type.
//
// Blank and empty strings become NULL, values that cannot be represented
// in the column type become NULL, VARCHAR(n) values are cut to n bytes on
// a character boundary, and numeric timestamps are epoch milliseconds.
func coerce(col schema.Column, v any) any {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}

	switch col.Type {
	case schema.Varchar:
		return toVarchar(v, col.Length)
	case schema.Integer:
		return toInteger(v)
	case schema.Decimal:
		return toDecimal(v)
	case schema.Timestamp:
		return toTimestamp(v)
	default:
		return nil
	}
}

func toVarchar(v any, length int) any {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case json.Number:
		s = x.String()
	case bool:
		s = strconv.FormatBool(x)
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return nil
		}
		s = string(raw)
	}
	return truncate(s, length)
}

// truncate cuts s to at most n bytes without splitting a character.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func numberText(v any) (string, bool) {
	switch x := v.(type) {
	case json.Number:
		return x.String(), true
	case string:
		return strings.TrimSpace(x), true
	default:
		return "", false
	}
}

func toInteger(v any) any {
	text, ok := numberText(v)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(text, 64)
		if ferr != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return nil
		}
		n = int64(f)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil
	}
	return n
}

func toDecimal(v any) any {
	text, ok := numberText(v)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func toTimestamp(v any) any {
	text, ok := numberText(v)
	if !ok {
		return nil
	}

	if ms, err := strconv.ParseInt(text, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return time.UnixMilli(int64(f)).UTC()
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC()
		}
	}
	return nil
}
