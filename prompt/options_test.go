package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOptions_Defaults(t *testing.T) {
	o := NewOptions()

	assert.Equal(t, "en", o.Language)
	assert.Equal(t, 5, o.BulletsMin)
	assert.Equal(t, 2, o.SentencesPerBulletMin)
	assert.True(t, o.RequireSources)
	assert.True(t, o.ForbidHallucination)
	assert.Equal(t, 4200, o.MaxContextChars)
	assert.Equal(t, 1000, o.MaxBlockChars)
	assert.Equal(t, 7, o.MaxBlocks)
	assert.True(t, o.SilentReasoning)
	assert.False(t, o.ReactHint)
}

func TestNewOptions_LegacyAliasWins(t *testing.T) {
	// The alias overrides the canonical field regardless of option order.
	o := NewOptions(WithIncludeSources(false), WithRequireSources(true))
	assert.False(t, o.RequireSources)

	o = NewOptions(WithRequireSources(false), WithIncludeSources(true))
	assert.True(t, o.RequireSources)

	// Without the alias the canonical field stands.
	o = NewOptions(WithRequireSources(false))
	assert.False(t, o.RequireSources)
}

func TestNewOptions_LegacyStyleAccepted(t *testing.T) {
	o := NewOptions(WithStyle("bullets"))
	assert.Equal(t, "bullets", o.Style)

	// Style produces no directive.
	assert.NotContains(t, o.RenderSystemDirectives(), "bullets\n")
}

func TestRenderSystemDirectives_Order(t *testing.T) {
	o := NewOptions(
		WithTitle("a news research assistant"),
		WithReactHint(true),
	)

	lines := strings.Split(o.RenderSystemDirectives(), "\n")
	require.Len(t, lines, 10)

	// Fixed contract order: role, hallucination pair, length/structure,
	// citation specificity, no-repetition, bullet structure, sources,
	// silent reasoning, react hint.
	assert.Equal(t, "You are a news research assistant.", lines[0])
	assert.Contains(t, lines[1], "only the information contained in the Evidence")
	assert.Contains(t, lines[2], "say you don't know")
	assert.Contains(t, lines[3], "at least 5 bullets")
	assert.Contains(t, lines[3], "at least 2 sentences per bullet")
	assert.Contains(t, lines[4], "dates, figures, and proper nouns")
	assert.Contains(t, lines[5], "Do not repeat")
	assert.Contains(t, lines[6], "core claim")
	assert.Contains(t, lines[7], "'Sources' section")
	assert.Contains(t, lines[8], "do not output the reasoning")
	assert.Contains(t, lines[9], "further retrieval is needed")
}

func TestRenderSystemDirectives_FlagsOff(t *testing.T) {
	o := NewOptions(
		WithForbidHallucination(false),
		WithRequireSources(false),
		WithSilentReasoning(false),
	)

	directives := o.RenderSystemDirectives()
	lines := strings.Split(directives, "\n")
	require.Len(t, lines, 5)

	assert.NotContains(t, directives, "Do not guess or invent")
	assert.NotContains(t, directives, "'Sources' section")
	assert.NotContains(t, directives, "step by step")
}
