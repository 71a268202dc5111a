package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormed = `{"mood":"joyful","subject":"park","negative":false,"summary":"A sunny afternoon outside.","color":"#FFD700","sentimentScore":8}`

func TestParseAnalysisAcceptsWellFormed(t *testing.T) {
	cases := map[string]string{
		"bare":        wellFormed,
		"fenced":      "```json\n" + wellFormed + "\n```",
		"fenced bare": "```\n" + wellFormed + "\n```",
		"with prose":  "Sure! Here is the analysis:\n" + wellFormed + "\nLet me know if you need more.",
		"extra keys":  `{"mood":"joyful","subject":"park","negative":false,"summary":"A sunny afternoon outside.","color":"#FFD700","sentimentScore":8,"confidence":0.9}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseAnalysis(raw)
			require.NoError(t, err)
			assert.Equal(t, "joyful", got.Mood)
			assert.Equal(t, "park", got.Subject)
			assert.False(t, got.Negative)
			assert.Equal(t, "#FFD700", got.Color)
			assert.Equal(t, 8.0, got.SentimentScore)
		})
	}
}

func TestParseAnalysisBoundaryValues(t *testing.T) {
	got, err := ParseAnalysis(`{"mood":"","subject":"","negative":true,"summary":"","color":"#abc","sentimentScore":-10}`)
	require.NoError(t, err)
	assert.Empty(t, got.Mood)
	assert.Empty(t, got.Summary)
	assert.True(t, got.Negative)
	assert.Equal(t, "#abc", got.Color)
	assert.Equal(t, -10.0, got.SentimentScore)

	got, err = ParseAnalysis(`{"mood":"calm","subject":"tea","negative":false,"summary":"ok","color":"#0101fe","sentimentScore":10.0}`)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.SentimentScore)
}

func TestParseAnalysisRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"empty":            "",
		"no json":          "I could not analyze this entry.",
		"truncated":        `{"mood":"sad","subject":`,
		"missing key":      `{"mood":"sad","subject":"work","negative":true,"summary":"bad day","color":"#000000"}`,
		"null value":       `{"mood":null,"subject":"work","negative":true,"summary":"bad day","color":"#000000","sentimentScore":-4}`,
		"string score":     `{"mood":"sad","subject":"work","negative":true,"summary":"bad day","color":"#000000","sentimentScore":"-4"}`,
		"string negative":  `{"mood":"sad","subject":"work","negative":"yes","summary":"bad day","color":"#000000","sentimentScore":-4}`,
		"named color":      `{"mood":"sad","subject":"work","negative":true,"summary":"bad day","color":"blue","sentimentScore":-4}`,
		"color no hash":    `{"mood":"sad","subject":"work","negative":true,"summary":"bad day","color":"0000ff","sentimentScore":-4}`,
		"score too high":   `{"mood":"sad","subject":"work","negative":true,"summary":"bad day","color":"#000000","sentimentScore":11}`,
		"score too low":    `{"mood":"sad","subject":"work","negative":true,"summary":"bad day","color":"#000000","sentimentScore":-10.5}`,
		"score overflow":   `{"mood":"sad","subject":"work","negative":true,"summary":"bad day","color":"#000000","sentimentScore":1e400}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseAnalysis(raw)
			assert.Nil(t, got)
			require.Error(t, err)

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, raw, schemaErr.Raw)
		})
	}
}

func TestParseAnalysisSkipsBracesInProse(t *testing.T) {
	raw := "Format {like this}: " + wellFormed
	got, err := ParseAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, "joyful", got.Mood)
}
