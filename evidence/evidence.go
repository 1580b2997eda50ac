// Package evidence converts heterogeneously-shaped retrieval results into
// the canonical core.Evidence record. It is the single normalization path
// shared by the prompt builder and the answer pipeline, so defaults cannot
// drift between the two call sites.
package evidence

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/poiesic/newsqa/core"
)

// kind tags the input variants Coerce distinguishes.
type kind int

const (
	kindMapping kind = iota // keyed record: map[string]any or core.Evidence
	kindText                // plain string
	kindPair                // two-element ordered pair
	kindOther               // anything else, string-converted
)

func classify(item any) kind {
	switch v := item.(type) {
	case core.Evidence, *core.Evidence, map[string]any:
		return kindMapping
	case string:
		return kindText
	case []any:
		if len(v) == 2 {
			return kindPair
		}
		return kindOther
	case [2]any:
		return kindPair
	default:
		return kindOther
	}
}

// Coerce converts an arbitrary retrieval item into a canonical Evidence
// record. It is total: no input shape produces an error. Missing fields
// resolve to their defaults ("(no title)", empty strings, nil score).
func Coerce(item any) core.Evidence {
	switch classify(item) {
	case kindMapping:
		return coerceMapping(item)
	case kindText:
		return withDefaults(core.Evidence{Text: item.(string)})
	case kindPair:
		return coercePair(toPair(item))
	default:
		return withDefaults(core.Evidence{Text: stringify(item)})
	}
}

// CoerceList converts an arbitrary retrieval result into a list of canonical
// Evidence records. nil yields an empty list; a keyed collection contributes
// its values with the keys discarded; any slice is normalized element-wise;
// a single non-collection value is wrapped as a one-element list.
func CoerceList(items any) []core.Evidence {
	if items == nil {
		return []core.Evidence{}
	}

	switch v := items.(type) {
	case []core.Evidence:
		out := make([]core.Evidence, len(v))
		for i, ev := range v {
			out[i] = withDefaults(ev)
		}
		return out
	case []any:
		out := make([]core.Evidence, len(v))
		for i, item := range v {
			out[i] = Coerce(item)
		}
		return out
	case map[string]any:
		out := make([]core.Evidence, 0, len(v))
		for _, item := range v {
			out = append(out, Coerce(item))
		}
		return out
	}

	// Other slice or map element types via reflection, e.g. []string or
	// []map[string]any straight out of a JSON decoder.
	rv := reflect.ValueOf(items)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]core.Evidence, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Coerce(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make([]core.Evidence, 0, rv.Len())
		for _, key := range rv.MapKeys() {
			out = append(out, Coerce(rv.MapIndex(key).Interface()))
		}
		return out
	}

	return []core.Evidence{Coerce(items)}
}

func coerceMapping(item any) core.Evidence {
	switch v := item.(type) {
	case core.Evidence:
		return withDefaults(v)
	case *core.Evidence:
		if v == nil {
			return withDefaults(core.Evidence{})
		}
		return withDefaults(*v)
	case map[string]any:
		return withDefaults(core.Evidence{
			Title:         stringField(v, "title"),
			URL:           stringField(v, "url"),
			Source:        stringField(v, "source"),
			DatePublished: stringField(v, "date_published"),
			Score:         scoreField(v, "score"),
			Text:          stringField(v, "text"),
		})
	}
	return withDefaults(core.Evidence{})
}

// coercePair disambiguates a two-element pair: the element that looks like a
// keyed record supplies metadata, the other supplies text. If neither or
// both are keyed records, the whole pair is treated as texts joined by a
// space, with empty metadata.
func coercePair(a, b any) core.Evidence {
	aKeyed := classify(a) == kindMapping
	bKeyed := classify(b) == kindMapping

	var meta, text any
	switch {
	case aKeyed && !bKeyed:
		meta, text = a, b
	case bKeyed && !aKeyed:
		meta, text = b, a
	default:
		return withDefaults(core.Evidence{
			Text: strings.TrimSpace(stringify(a) + " " + stringify(b)),
		})
	}

	ev := coerceMapping(meta)
	ev.Text = stringify(text)
	return withDefaults(ev)
}

func toPair(item any) (any, any) {
	switch v := item.(type) {
	case []any:
		return v[0], v[1]
	case [2]any:
		return v[0], v[1]
	}
	return nil, nil
}

// withDefaults fills absent optional fields with their canonical defaults
// and trims the passage text.
func withDefaults(ev core.Evidence) core.Evidence {
	if strings.TrimSpace(ev.Title) == "" {
		ev.Title = core.DefaultTitle
	}
	ev.Text = strings.TrimSpace(ev.Text)
	return ev
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return stringify(v)
}

func scoreField(m map[string]any, key string) *float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	var score float64
	switch n := v.(type) {
	case float64:
		score = n
	case float32:
		score = float64(n)
	case int:
		score = float64(n)
	case int64:
		score = float64(n)
	default:
		return nil
	}
	return &score
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
