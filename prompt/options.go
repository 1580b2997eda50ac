// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package prompt

import (
	"fmt"
	"strings"
)

// Options holds configuration for prompt assembly.
type Options struct {
	// Language is the language the model should answer in.
	Language string

	// BulletsMin is the minimum number of bullets the answer must contain.
	BulletsMin int

	// SentencesPerBulletMin is the minimum number of sentences per bullet.
	SentencesPerBulletMin int

	// RequireSources requires a numbered "Sources" section at the end of the answer.
	RequireSources bool

	// ForbidHallucination instructs the model to answer only from the
	// supplied evidence and to say so when the evidence is insufficient.
	ForbidHallucination bool

	// MaxContextChars caps the total length of the rendered evidence section.
	MaxContextChars int

	// MaxBlockChars caps the passage text length of a single evidence block.
	MaxBlockChars int

	// MaxBlocks caps the number of evidence blocks (top-k analogue).
	MaxBlocks int

	// Title is the assistant role announced in the first system directive.
	Title string

	// SilentReasoning instructs the model to reason step by step without
	// emitting the reasoning.
	SilentReasoning bool

	// ReactHint instructs the model to flag insufficient evidence.
	ReactHint bool

	// Style is a legacy output-style hint older callers still pass.
	// It is accepted and retained but no directive is derived from it.
	Style string

	// includeSources is the legacy alias for RequireSources. When supplied
	// it wins over RequireSources, resolved once in NewOptions.
	includeSources *bool
}

// Option configures Options.
type Option func(*Options)

// WithLanguage sets the answer language.
func WithLanguage(language string) Option {
	return func(o *Options) { o.Language = language }
}

// WithBulletsMin sets the minimum bullet count.
func WithBulletsMin(n int) Option {
	return func(o *Options) { o.BulletsMin = n }
}

// WithSentencesPerBulletMin sets the minimum sentences per bullet.
func WithSentencesPerBulletMin(n int) Option {
	return func(o *Options) { o.SentencesPerBulletMin = n }
}

// WithRequireSources sets whether a Sources section is required.
func WithRequireSources(require bool) Option {
	return func(o *Options) { o.RequireSources = require }
}

// WithForbidHallucination sets whether evidence-only answering is enforced.
func WithForbidHallucination(forbid bool) Option {
	return func(o *Options) { o.ForbidHallucination = forbid }
}

// WithMaxContextChars caps the total rendered evidence length.
func WithMaxContextChars(n int) Option {
	return func(o *Options) { o.MaxContextChars = n }
}

// WithMaxBlockChars caps a single block's passage text length.
func WithMaxBlockChars(n int) Option {
	return func(o *Options) { o.MaxBlockChars = n }
}

// WithMaxBlocks caps the number of evidence blocks.
func WithMaxBlocks(n int) Option {
	return func(o *Options) { o.MaxBlocks = n }
}

// WithTitle sets the assistant role title.
func WithTitle(title string) Option {
	return func(o *Options) { o.Title = title }
}

// WithSilentReasoning sets the silent step-by-step reasoning directive.
func WithSilentReasoning(silent bool) Option {
	return func(o *Options) { o.SilentReasoning = silent }
}

// WithReactHint sets the insufficient-evidence hint directive.
func WithReactHint(hint bool) Option {
	return func(o *Options) { o.ReactHint = hint }
}

// WithStyle sets the legacy style hint. Accepted for compatibility with
// older callers; no directive is derived from it.
func WithStyle(style string) Option {
	return func(o *Options) { o.Style = style }
}

// WithIncludeSources sets the legacy alias for RequireSources.
// When supplied, the alias wins over WithRequireSources regardless of the
// order the two options appear in.
func WithIncludeSources(include bool) Option {
	return func(o *Options) { o.includeSources = &include }
}

// DefaultOptions returns Options with the standard defaults.
func DefaultOptions() Options {
	return Options{
		Language:              "en",
		BulletsMin:            5,
		SentencesPerBulletMin: 2,
		RequireSources:        true,
		ForbidHallucination:   true,
		MaxContextChars:       4200,
		MaxBlockChars:         1000,
		MaxBlocks:             7,
		Title:                 "a news research assistant",
		SilentReasoning:       true,
		ReactHint:             false,
	}
}

// NewOptions creates Options with the defaults and applies the provided
// options. Legacy aliases are resolved here, once, with alias-wins
// precedence, rather than implicitly inside accessors.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.includeSources != nil {
		o.RequireSources = *o.includeSources
	}
	return o
}

// RenderSystemDirectives assembles the system prompt as a deterministic,
// ordered list of directive lines. The order is a contract: answer length
// and quality scale with instruction density, and tests assert on it.
func (o Options) RenderSystemDirectives() string {
	var rules []string
	rules = append(rules, fmt.Sprintf("You are %s.", o.Title))

	if o.ForbidHallucination {
		rules = append(rules,
			"Answer using only the information contained in the Evidence below. Do not guess or invent.",
			"If the Evidence is insufficient, clearly say you don't know.")
	}

	rules = append(rules, fmt.Sprintf(
		"Write the answer in %s, with at least %d bullets and at least %d sentences per bullet.",
		o.Language, o.BulletsMin, o.SentencesPerBulletMin))
	rules = append(rules, "Where possible, cite dates, figures, and proper nouns from the Evidence to stay specific.")
	rules = append(rules, "Do not repeat the same content; add new information with every bullet.")
	rules = append(rules, "Structure each bullet as: core claim, then supporting evidence, then implication.")

	if o.RequireSources {
		rules = append(rules, "End the answer with a 'Sources' section listing every referenced URL with its number.")
	}

	if o.SilentReasoning {
		rules = append(rules, "Before writing, think through the answer step by step silently; do not output the reasoning.")
	}

	if o.ReactHint {
		rules = append(rules, "If you judge the Evidence to be insufficient, briefly note in the answer that further retrieval is needed.")
	}

	return strings.Join(rules, "\n")
}
