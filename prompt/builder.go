// Package prompt assembles the bounded, schema-stable instruction pair sent
// to the generation service: a system prompt of ordered directives and a
// user prompt carrying the question plus a size-capped evidence section.
package prompt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/poiesic/newsqa/core"
	"github.com/poiesic/newsqa/evidence"
)

// NoEvidencePlaceholder is emitted in place of the evidence section when no
// block survives rendering, so the model never sees an empty section.
const NoEvidencePlaceholder = "(no evidence)"

// blockSeparator terminates every evidence block.
const blockSeparator = "---"

// ellipsis marks truncated passage text.
const ellipsis = "..."

// Builder renders prompts from canonical evidence and a question.
// It is pure given its inputs except for the date read, which is injectable
// for tests.
type Builder struct {
	opt Options
	now func() time.Time
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithClock sets the clock used to stamp the current date into the user
// prompt. Default is time.Now.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBuilder creates a Builder with the given options.
func NewBuilder(opt Options, opts ...BuilderOption) *Builder {
	b := &Builder{
		opt: opt,
		now: time.Now,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Options returns the builder's prompt options.
func (b *Builder) Options() Options {
	return b.opt
}

// truncate caps txt at limit bytes, reserving room for an ellipsis marker
// when truncation occurs. The cut backs up to a rune boundary so multi-byte
// text is never sliced mid-rune. Limits too small to hold the marker degrade
// to the marker alone.
func truncate(txt string, limit int) string {
	if len(txt) <= limit {
		return txt
	}
	cut := limit - len(ellipsis)
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8.RuneStart(txt[cut]) {
		cut--
	}
	return txt[:cut] + ellipsis
}

// formatScore renders a similarity score rounded to 4 decimals, without
// trailing zeros.
func formatScore(score float64) string {
	return strconv.FormatFloat(math.Round(score*10000)/10000, 'g', -1, 64)
}

// RenderEvidenceBlock renders at most MaxBlocks evidence items, in input
// order, into numbered citation blocks. Ranking is the retriever's
// responsibility; no re-sorting happens here.
//
// Emission stops as soon as adding the next block would exceed
// MaxContextChars: a strict greedy fill, with no skipping ahead to shorter
// items. When nothing is emitted, the placeholder is returned instead of an
// empty string.
func (b *Builder) RenderEvidenceBlock(evidences []core.Evidence) string {
	maxBlocks := b.opt.MaxBlocks
	if maxBlocks < 1 {
		maxBlocks = 1
	}
	items := evidences
	if len(items) > maxBlocks {
		items = items[:maxBlocks]
	}

	var blocks []string
	totalLen := 0
	for i, ev := range items {
		title := strings.TrimSpace(ev.Title)
		if title == "" {
			title = core.DefaultTitle
		}
		url := strings.TrimSpace(ev.URL)
		source := strings.TrimSpace(ev.Source)
		datePublished := strings.TrimSpace(ev.DatePublished)
		text := strings.TrimSpace(ev.Text)

		head := fmt.Sprintf("[%d] %s", i+1, title)
		if url != "" {
			head += fmt.Sprintf(" (%s)", url)
		}

		var metaTail []string
		if source != "" {
			metaTail = append(metaTail, source)
		}
		if datePublished != "" {
			metaTail = append(metaTail, datePublished)
		}
		if len(metaTail) > 0 {
			head += "  |  " + strings.Join(metaTail, " · ")
		}
		if ev.Score != nil {
			head += "  |  score=" + formatScore(*ev.Score)
		}

		block := head
		if text != "" {
			block += "\n" + truncate(text, b.opt.MaxBlockChars)
		}
		block += "\n" + blockSeparator

		if totalLen+len(block) > b.opt.MaxContextChars {
			break
		}
		blocks = append(blocks, block)
		totalLen += len(block)
	}

	if len(blocks) == 0 {
		return NoEvidencePlaceholder
	}
	return strings.Join(blocks, "\n")
}

// BuildMessages composes the final (system, user) prompt pair.
//
// evidences may be any shape the retrieval collaborator produced; it is
// normalized through the evidence package first, the one conversion path
// shared with the answer pipeline. extraInstructions, when non-empty, is
// appended as the last format directive.
func (b *Builder) BuildMessages(question string, evidences any, extraInstructions string) (systemText, userText string) {
	evs := evidence.CoerceList(evidences)

	today := b.now().Format("2006-01-02")
	systemText = b.opt.RenderSystemDirectives()
	evBlock := b.RenderEvidenceBlock(evs)

	fmtLines := []string{
		fmt.Sprintf("- answer in %s", b.opt.Language),
		fmt.Sprintf("- at least %d bullets", b.opt.BulletsMin),
		fmt.Sprintf("- at least %d sentences per bullet", b.opt.SentencesPerBulletMin),
	}
	if b.opt.RequireSources {
		fmtLines = append(fmtLines, "- end with a numbered Sources section listing the referenced URLs")
	}
	if extra := strings.TrimSpace(extraInstructions); extra != "" {
		fmtLines = append(fmtLines, "- additional instruction: "+extra)
	}

	userText = fmt.Sprintf(
		"Question: %s\nToday's date: %s\n\nEvidence:\n%s\n\nRequested format:\n%s",
		question, today, evBlock, strings.Join(fmtLines, "\n"))

	return systemText, userText
}
