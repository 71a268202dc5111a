package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordEmbedder scores texts on fixed topics so similarity is predictable.
type keywordEmbedder struct{}

func (keywordEmbedder) Model() string { return "keywords" }

func (keywordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	topics := []string{"park", "work", "family", "sleep"}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, len(topics))
		for j, topic := range topics {
			vec[j] = float32(strings.Count(strings.ToLower(text), topic))
		}
		out[i] = vec
	}
	return out, nil
}

func TestAnswerWithoutEntriesSkipsModel(t *testing.T) {
	model := script()
	qa := NewQA(keywordEmbedder{}, model, nil)

	answer, err := qa.Answer(context.Background(), "How was my week?", nil)
	require.NoError(t, err)
	assert.Equal(t, NoEntriesAnswer, answer)
	assert.Zero(t, model.calls())

	_, err = qa.Answer(context.Background(), "   ", []Document{{Content: "x"}})
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestAnswerRefinesOverTopEntries(t *testing.T) {
	docs := []Document{
		{ID: "1", Content: "Long day at work, work never ends."},
		{ID: "2", Content: "Walked in the park, the park was lovely."},
		{ID: "3", Content: "Dinner with family."},
		{ID: "4", Content: "Slept badly, need more sleep."},
		{ID: "5", Content: "Another park visit with family at the park."},
		{ID: "6", Content: "Groceries."},
	}
	model := script(reply("draft"), reply("better"), reply("best"), reply(" final \n"))
	qa := NewQA(keywordEmbedder{}, model, nil)

	answer, err := qa.Answer(context.Background(), "When did I go to the park?", docs)
	require.NoError(t, err)
	assert.Equal(t, "final", answer)
	require.Equal(t, 4, model.calls())

	// The closest entries are refined first.
	assert.Contains(t, model.prompts[0], "Walked in the park")
	assert.Contains(t, model.prompts[0], "When did I go to the park?")
	assert.Contains(t, model.prompts[1], "Another park visit")
	assert.Contains(t, model.prompts[1], "draft")
	for _, p := range model.prompts {
		assert.NotContains(t, p, "Groceries.")
	}
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 2}))
}
