package evidence

import (
	"testing"

	"github.com/poiesic/newsqa/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce_CanonicalRoundTrip(t *testing.T) {
	score := 0.91
	in := core.Evidence{
		Title:         "T",
		URL:           "https://example.com/a",
		Source:        "example.com",
		DatePublished: "2025-06-01",
		Score:         &score,
		Text:          "hello",
	}

	out := Coerce(in)

	// Identity up to default-filling: nothing present may change.
	assert.Equal(t, in, out)
}

func TestCoerce_CanonicalDefaultsFilled(t *testing.T) {
	out := Coerce(core.Evidence{Text: "hello"})

	assert.Equal(t, core.DefaultTitle, out.Title)
	assert.Empty(t, out.URL)
	assert.Empty(t, out.Source)
	assert.Empty(t, out.DatePublished)
	assert.Nil(t, out.Score)
	assert.Equal(t, "hello", out.Text)
}

func TestCoerce_Mapping(t *testing.T) {
	out := Coerce(map[string]any{
		"title": "X",
		"url":   "https://example.com/x",
		"score": 0.5,
		"text":  "  body  ",
	})

	assert.Equal(t, "X", out.Title)
	assert.Equal(t, "https://example.com/x", out.URL)
	require.NotNil(t, out.Score)
	assert.Equal(t, 0.5, *out.Score)
	assert.Equal(t, "body", out.Text)
}

func TestCoerce_PlainString(t *testing.T) {
	out := Coerce("just a passage")

	assert.Equal(t, core.DefaultTitle, out.Title)
	assert.Equal(t, "just a passage", out.Text)
	assert.Nil(t, out.Score)
}

func TestCoerce_Pair(t *testing.T) {
	tests := []struct {
		name      string
		pair      []any
		wantTitle string
		wantText  string
	}{
		{
			name:      "text then metadata",
			pair:      []any{"meta-text", map[string]any{"title": "X"}},
			wantTitle: "X",
			wantText:  "meta-text",
		},
		{
			name:      "metadata then text",
			pair:      []any{map[string]any{"title": "Y"}, "body"},
			wantTitle: "Y",
			wantText:  "body",
		},
		{
			name:      "neither keyed joins texts",
			pair:      []any{"first", "second"},
			wantTitle: core.DefaultTitle,
			wantText:  "first second",
		},
		{
			name: "both keyed joins string forms",
			pair: []any{
				map[string]any{"title": "A"},
				map[string]any{"title": "B"},
			},
			wantTitle: core.DefaultTitle,
			wantText:  "map[title:A] map[title:B]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Coerce(tt.pair)
			assert.Equal(t, tt.wantTitle, out.Title)
			assert.Equal(t, tt.wantText, out.Text)
		})
	}
}

func TestCoerce_OtherShapes(t *testing.T) {
	out := Coerce(42)
	assert.Equal(t, "42", out.Text)
	assert.Equal(t, core.DefaultTitle, out.Title)

	out = Coerce([]any{"a", "b", "c"})
	assert.Equal(t, "[a b c]", out.Text)
}

func TestCoerceList(t *testing.T) {
	t.Run("nil yields empty list", func(t *testing.T) {
		out := CoerceList(nil)
		require.NotNil(t, out)
		assert.Empty(t, out)
	})

	t.Run("keyed collection discards keys", func(t *testing.T) {
		out := CoerceList(map[string]any{
			"a": "first",
			"b": "second",
		})
		require.Len(t, out, 2)
		texts := []string{out[0].Text, out[1].Text}
		assert.ElementsMatch(t, []string{"first", "second"}, texts)
	})

	t.Run("mixed slice normalized element-wise", func(t *testing.T) {
		out := CoerceList([]any{
			"plain",
			map[string]any{"title": "T", "text": "keyed"},
		})
		require.Len(t, out, 2)
		assert.Equal(t, "plain", out[0].Text)
		assert.Equal(t, "T", out[1].Title)
	})

	t.Run("string slice via reflection", func(t *testing.T) {
		out := CoerceList([]string{"x", "y"})
		require.Len(t, out, 2)
		assert.Equal(t, "x", out[0].Text)
		assert.Equal(t, "y", out[1].Text)
	})

	t.Run("single value wrapped", func(t *testing.T) {
		out := CoerceList("lonely")
		require.Len(t, out, 1)
		assert.Equal(t, "lonely", out[0].Text)
	})

	t.Run("canonical slice passes through with defaults", func(t *testing.T) {
		out := CoerceList([]core.Evidence{{Text: "t"}})
		require.Len(t, out, 1)
		assert.Equal(t, core.DefaultTitle, out[0].Title)
		assert.Equal(t, "t", out[0].Text)
	})
}
