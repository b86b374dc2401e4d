package browser

import (
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dracory/slidebase/internal/dbapi"
	hb "github.com/gouniverse/hb"
	"github.com/samber/lo"
)

const (
	// NullMarker renders a null or missing value.
	NullMarker = "<em>null</em>"
	// NoneMarker renders an empty array.
	NoneMarker = "<em>none</em>"
)

// Columns returns the header columns for a page of records: the keys of the
// first record, or the first-seen union of all keys when union is set.
func Columns(records []dbapi.Record, union bool) []string {
	if len(records) == 0 {
		return nil
	}
	if !union {
		return records[0].Keys()
	}
	all := lo.FlatMap(records, func(r dbapi.Record, _ int) []string { return r.Keys() })
	return lo.Uniq(all)
}

// ColumnHeader upper-cases the first character and turns the remaining
// underscores into spaces.
func ColumnHeader(col string) string {
	if col == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(col)
	return string(unicode.ToUpper(first)) + strings.ReplaceAll(col[size:], "_", " ")
}

// FormatCell renders one cell as HTML. value and present come from
// record.Get(col).
func FormatCell(col string, value any, present bool, record dbapi.Record) string {
	if !present || value == nil {
		return NullMarker
	}

	colLower := strings.ToLower(col)

	switch v := value.(type) {
	case []any:
		if len(v) == 0 {
			return NoneMarker
		}
		if colLower == "urls" {
			return strings.Join(lo.Map(v, func(item any, _ int) string { return urlItem(item) }), "<br>")
		}
		return strings.Join(lo.Map(v, func(item any, _ int) string {
			if isObject(item) {
				return html.EscapeString(toJSON(item))
			}
			return html.EscapeString(scalarString(item))
		}), "<br>")
	case map[string]any, dbapi.Record:
		return html.EscapeString(toJSON(v))
	}

	text := scalarString(value)

	if (colLower == "url" || colLower == "urls") && looksLikeURL(text) {
		label := text
		if s, ok := truthyField(record, "link_text"); ok {
			label = s
		} else if s, ok := truthyField(record, "text"); ok {
			label = s
		}
		return link(text, label, true)
	}

	if colLower == "link_text" {
		if raw, ok := record.Get("url"); ok {
			if u, isString := raw.(string); isString && looksLikeURL(u) {
				return link(u, text, false)
			}
		}
	}

	return html.EscapeString(text)
}

// urlItem links one element of a urls array. Anything that is not an
// http, https or mailto address is shown as escaped text.
func urlItem(item any) string {
	if obj, ok := item.(map[string]any); ok {
		u, ok := truthy(obj["url"])
		if !ok || !looksLikeURL(u) {
			return html.EscapeString(lo.Ternary(ok, u, toJSON(obj)))
		}
		label := u
		if lt, ok := truthy(obj["link_text"]); ok {
			label = lt
		}
		return link(u, label, false)
	}
	text := scalarString(item)
	if !looksLikeURL(text) {
		return html.EscapeString(text)
	}
	return link(text, text, false)
}

func link(href, label string, noopener bool) string {
	a := hb.A().Href(href).Attr("target", "_blank").Text(label)
	if noopener {
		a = a.Attr("rel", "noopener noreferrer")
	}
	return a.ToHTML()
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "mailto:")
}

func isObject(v any) bool {
	switch v.(type) {
	case map[string]any, []any, dbapi.Record:
		return true
	}
	return false
}

func truthyField(record dbapi.Record, key string) (string, bool) {
	v, ok := record.Get(key)
	if !ok {
		return "", false
	}
	return truthy(v)
}

// truthy mirrors how the page decides a fallback label: null, empty strings,
// zero and false do not count.
func truthy(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case bool:
		return scalarString(t), t
	case float64:
		return scalarString(t), t != 0
	case int:
		return scalarString(t), t != 0
	case int64:
		return scalarString(t), t != 0
	}
	return scalarString(v), true
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case json.Number:
		return t.String()
	case map[string]any, []any, dbapi.Record:
		return toJSON(t)
	}
	return fmt.Sprint(v)
}

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
