package qa

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/newsqa/ai"
	"github.com/poiesic/newsqa/core"
	"github.com/poiesic/newsqa/evidence"
	"github.com/poiesic/newsqa/prompt"
)

// Models answer with Markdown bodies; some also append their own trailing
// "Sources:" section, which duplicates the structured Sources field.
var trailingSources = regexp.MustCompile(`(?is)\n+sources?:\s*\n[\s\S]*$`)

const (
	// DefaultTopK is the number of evidence passages requested per question.
	DefaultTopK = 7

	// DefaultMaxTokens caps the generated answer length when the caller
	// passes zero.
	DefaultMaxTokens = 600
)

// Retriever fetches candidate evidence for a question. The return value is
// deliberately loose: implementations may return []core.Evidence, a map, or
// any slice shape, and the answerer coerces it defensively.
type Retriever interface {
	Retrieve(ctx context.Context, question string, topK int) (any, error)
}

// Answerer orchestrates retrieval, prompt assembly, and generation into
// per-model answer results. Failures never propagate as errors: every model
// yields a fully populated core.AnswerResult, failed or not.
type Answerer struct {
	retriever Retriever
	generator ai.Generator
	builder   *prompt.Builder
	topK      int
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures an Answerer.
type Option func(*Answerer) error

// WithTopK sets how many evidence passages are requested per question.
// Default is DefaultTopK.
func WithTopK(topK int) Option {
	return func(a *Answerer) error {
		if topK < 1 {
			topK = 1
		}
		a.topK = topK
		return nil
	}
}

// WithPromptOptions rebuilds the prompt builder with the given options.
func WithPromptOptions(opts ...prompt.Option) Option {
	return func(a *Answerer) error {
		a.builder = prompt.NewBuilder(prompt.NewOptions(opts...))
		return nil
	}
}

// WithBuilder replaces the prompt builder entirely. Useful in tests that
// need an injected clock.
func WithBuilder(builder *prompt.Builder) Option {
	return func(a *Answerer) error {
		if builder == nil {
			return fmt.Errorf("builder must not be nil")
		}
		a.builder = builder
		return nil
	}
}

// WithPoolSize enables concurrent AnswerMany fan-out using a bounded worker
// pool. Without this option, models run sequentially.
func WithPoolSize(size int) Option {
	return func(a *Answerer) error {
		if size < 1 {
			size = 1
		}

		if a.pool != nil {
			a.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		a.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Answerer) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAnswerer creates an answer orchestrator over the given collaborators.
func NewAnswerer(retriever Retriever, generator ai.Generator, opts ...Option) (*Answerer, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	a := &Answerer{
		retriever: retriever,
		generator: generator,
		builder:   prompt.NewBuilder(prompt.DefaultOptions()),
		topK:      DefaultTopK,
		logger:    slog.Default().With("component", "answerer"),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			a.Release()
			return nil, err
		}
	}

	return a, nil
}

// AnswerOne runs the full pipeline for a single model. It never returns an
// error: any failure, including a panic in a collaborator, produces a result
// with Answer "[ERROR] <msg>" and Err set.
func (a *Answerer) AnswerOne(ctx context.Context, question, model string, maxTokens int, extraInstructions string) (result core.AnswerResult) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("answer pipeline panicked", "model", model, "panic", r)
			result = a.failed(model, fmt.Sprintf("panic: %v", r))
		}
	}()

	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	retrievalStart := time.Now()
	raw, err := a.retriever.Retrieve(ctx, question, a.topK)
	if err != nil {
		a.logger.Error("retrieval failed", "model", model, "err", err)
		return a.failed(model, err.Error())
	}
	retrievalMs := time.Since(retrievalStart).Milliseconds()

	sources := evidence.CoerceList(raw)

	systemText, userText := a.builder.BuildMessages(question, sources, extraInstructions)

	genStart := time.Now()
	answer, err := a.generator.GenerateText(ctx, systemText, userText, model, maxTokens)
	if err != nil {
		a.logger.Error("generation failed", "model", model, "err", err)
		return a.failed(model, err.Error())
	}
	genMs := time.Since(genStart).Milliseconds()

	answer = strings.TrimSpace(trailingSources.ReplaceAllString(answer, ""))

	a.logger.Debug("answer generated",
		"model", model,
		"sources", len(sources),
		"retrieval_ms", retrievalMs,
		"gen_ms", genMs)

	return core.AnswerResult{
		Model:       model,
		Answer:      answer,
		Sources:     sources,
		UsedTopK:    len(sources),
		RetrievalMs: retrievalMs,
		GenMs:       genMs,
	}
}

// AnswerMany runs AnswerOne for each model and returns one result per model,
// in input order. Models run sequentially unless WithPoolSize enabled the
// worker pool, in which case they fan out concurrently with order preserved
// by indexed result slots.
func (a *Answerer) AnswerMany(ctx context.Context, question string, models []string, maxTokens int, extraInstructions string) []core.AnswerResult {
	results := make([]core.AnswerResult, len(models))

	if a.pool == nil || len(models) < 2 {
		for i, model := range models {
			results[i] = a.AnswerOne(ctx, question, model, maxTokens, extraInstructions)
		}
		return results
	}

	var wg sync.WaitGroup
	for i, model := range models {
		wg.Add(1)
		submitErr := a.pool.Submit(func() {
			defer wg.Done()
			results[i] = a.AnswerOne(ctx, question, model, maxTokens, extraInstructions)
		})
		if submitErr != nil {
			wg.Done()
			results[i] = a.failed(model, submitErr.Error())
		}
	}
	wg.Wait()

	return results
}

// Release releases the worker pool, if any. The answerer remains usable for
// sequential answering afterwards.
func (a *Answerer) Release() {
	if a.pool != nil {
		a.pool.Release()
		a.pool = nil
	}
}

// failed builds the uniform failure result for a model.
func (a *Answerer) failed(model, msg string) core.AnswerResult {
	return core.AnswerResult{
		Model:   model,
		Answer:  "[ERROR] " + msg,
		Sources: []core.Evidence{},
		Err:     msg,
	}
}
