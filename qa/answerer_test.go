package qa

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/newsqa/ai/mock"
	"github.com/poiesic/newsqa/core"
)

// stubRetriever adapts a function to the Retriever interface.
type stubRetriever struct {
	fn func(ctx context.Context, question string, topK int) (any, error)
}

func (s *stubRetriever) Retrieve(ctx context.Context, question string, topK int) (any, error) {
	return s.fn(ctx, question, topK)
}

func evidenceRetriever(items []core.Evidence) *stubRetriever {
	return &stubRetriever{fn: func(ctx context.Context, question string, topK int) (any, error) {
		return items, nil
	}}
}

func sampleEvidence() []core.Evidence {
	return []core.Evidence{
		{Title: "Rate decision", URL: "https://example.com/a", Source: "example.com", Text: "The central bank held rates."},
		{Title: "Market reaction", URL: "https://example.com/b", Source: "example.com", Text: "Stocks rallied after the decision."},
	}
}

func TestNewAnswerer_RequiresCollaborators(t *testing.T) {
	gen := mock.NewMockGenerator()

	_, err := NewAnswerer(nil, gen)
	assert.ErrorIs(t, err, ErrRetrieverRequired)

	_, err = NewAnswerer(evidenceRetriever(nil), nil)
	assert.ErrorIs(t, err, ErrGeneratorRequired)
}

func TestAnswerOne_Success(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateTextFunc = func(ctx context.Context, system, user, model string, maxTokens int) (string, error) {
		assert.Contains(t, user, "The central bank held rates.")
		assert.Contains(t, system, "news research assistant")
		return "- The bank held rates steady.", nil
	}

	answerer, err := NewAnswerer(evidenceRetriever(sampleEvidence()), gen)
	require.NoError(t, err)

	result := answerer.AnswerOne(context.Background(), "What did the bank do?", "qwen2.5:3b", 0, "")

	assert.False(t, result.Failed())
	assert.Equal(t, "qwen2.5:3b", result.Model)
	assert.Equal(t, "- The bank held rates steady.", result.Answer)
	assert.Len(t, result.Sources, 2)
	assert.Equal(t, 2, result.UsedTopK)
	assert.Empty(t, result.Err)
}

func TestAnswerOne_StripsTrailingSources(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateTextFunc = func(ctx context.Context, system, user, model string, maxTokens int) (string, error) {
		return "The answer body.\n\nSources:\n[1] something\n[2] something else", nil
	}

	answerer, err := NewAnswerer(evidenceRetriever(sampleEvidence()), gen)
	require.NoError(t, err)

	result := answerer.AnswerOne(context.Background(), "q", "m", 600, "")

	assert.Equal(t, "The answer body.", result.Answer)
}

func TestAnswerOne_RetrievalFailure(t *testing.T) {
	retriever := &stubRetriever{fn: func(ctx context.Context, question string, topK int) (any, error) {
		return nil, errors.New("index unavailable")
	}}

	answerer, err := NewAnswerer(retriever, mock.NewMockGenerator())
	require.NoError(t, err)

	result := answerer.AnswerOne(context.Background(), "q", "m", 600, "")

	assert.True(t, result.Failed())
	assert.Equal(t, "[ERROR] index unavailable", result.Answer)
	assert.Equal(t, "index unavailable", result.Err)
	assert.Empty(t, result.Sources)
	assert.Zero(t, result.UsedTopK)
	assert.Zero(t, result.RetrievalMs)
	assert.Zero(t, result.GenMs)
}

func TestAnswerOne_GenerationFailure(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateTextFunc = func(ctx context.Context, system, user, model string, maxTokens int) (string, error) {
		return "", errors.New("slow")
	}

	answerer, err := NewAnswerer(evidenceRetriever(sampleEvidence()), gen)
	require.NoError(t, err)

	result := answerer.AnswerOne(context.Background(), "q", "m", 600, "")

	assert.True(t, result.Failed())
	assert.Equal(t, "[ERROR] slow", result.Answer)
	assert.Equal(t, "slow", result.Err)
	assert.Empty(t, result.Sources)
}

func TestAnswerOne_RecoversPanic(t *testing.T) {
	retriever := &stubRetriever{fn: func(ctx context.Context, question string, topK int) (any, error) {
		panic("boom")
	}}

	answerer, err := NewAnswerer(retriever, mock.NewMockGenerator())
	require.NoError(t, err)

	result := answerer.AnswerOne(context.Background(), "q", "m", 600, "")

	assert.True(t, result.Failed())
	assert.Equal(t, "[ERROR] panic: boom", result.Answer)
	assert.Equal(t, "panic: boom", result.Err)
	assert.Empty(t, result.Sources)
}

func TestAnswerOne_CoercesLooseRetrieverShapes(t *testing.T) {
	retriever := &stubRetriever{fn: func(ctx context.Context, question string, topK int) (any, error) {
		return []any{
			"plain passage text",
			map[string]any{"title": "T", "text": "keyed passage"},
		}, nil
	}}

	answerer, err := NewAnswerer(retriever, mock.NewMockGenerator())
	require.NoError(t, err)

	result := answerer.AnswerOne(context.Background(), "q", "m", 600, "")

	require.False(t, result.Failed())
	require.Len(t, result.Sources, 2)
	assert.Equal(t, "plain passage text", result.Sources[0].Text)
	assert.Equal(t, "T", result.Sources[1].Title)
	assert.Equal(t, 2, result.UsedTopK)
}

func TestAnswerMany_OneResultPerModelInOrder(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateTextFunc = func(ctx context.Context, system, user, model string, maxTokens int) (string, error) {
		if model == "broken" {
			return "", errors.New("model offline")
		}
		return "answer from " + model, nil
	}

	answerer, err := NewAnswerer(evidenceRetriever(sampleEvidence()), gen)
	require.NoError(t, err)

	models := []string{"alpha", "broken", "beta"}
	results := answerer.AnswerMany(context.Background(), "q", models, 600, "")

	require.Len(t, results, len(models))
	for i, model := range models {
		assert.Equal(t, model, results[i].Model)
	}

	assert.False(t, results[0].Failed())
	assert.Equal(t, "answer from alpha", results[0].Answer)
	assert.True(t, results[1].Failed())
	assert.Equal(t, "[ERROR] model offline", results[1].Answer)
	assert.False(t, results[2].Failed())
	assert.Equal(t, "answer from beta", results[2].Answer)
}

func TestAnswerMany_ConcurrentPreservesOrder(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateTextFunc = func(ctx context.Context, system, user, model string, maxTokens int) (string, error) {
		return "answer from " + model, nil
	}

	answerer, err := NewAnswerer(evidenceRetriever(sampleEvidence()), gen,
		WithPoolSize(3))
	require.NoError(t, err)
	defer answerer.Release()

	models := []string{"m1", "m2", "m3", "m4", "m5"}
	results := answerer.AnswerMany(context.Background(), "q", models, 600, "")

	require.Len(t, results, len(models))
	for i, model := range models {
		assert.Equal(t, model, results[i].Model)
		assert.Equal(t, "answer from "+model, results[i].Answer)
	}
}

func TestAnswerMany_EmptyModels(t *testing.T) {
	answerer, err := NewAnswerer(evidenceRetriever(nil), mock.NewMockGenerator())
	require.NoError(t, err)

	results := answerer.AnswerMany(context.Background(), "q", nil, 600, "")
	assert.Empty(t, results)
}
