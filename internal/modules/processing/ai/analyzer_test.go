package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAnalyzeParsesFirstCompletion(t *testing.T) {
	model := script(reply(`{"mood":"happy","subject":"the park","negative":false,"summary":"A wonderful day at the park.","color":"#7CFC00","sentimentScore":8}`))
	a := NewAnalyzer(model, zap.NewNop())

	out := a.Analyze(context.Background(), "I had a wonderful day at the park")

	require.Equal(t, OutcomeParsed, out.Status)
	assert.False(t, out.Repaired)
	assert.Equal(t, 1, model.calls())
	assert.Contains(t, model.prompts[0], "I had a wonderful day at the park")

	analysis, err := out.Result()
	require.NoError(t, err)
	assert.False(t, analysis.Negative)
	assert.Greater(t, analysis.SentimentScore, 0.0)
}

func TestAnalyzeRepairsOnce(t *testing.T) {
	bad := `{"mood":"tired","subject":"work","negative":true,"summary":"long shift","color":"grey","sentimentScore":-3}`
	model := script(
		reply(bad),
		reply("```json\n{\"mood\":\"tired\",\"subject\":\"work\",\"negative\":true,\"summary\":\"long shift\",\"color\":\"#808080\",\"sentimentScore\":-3}\n```"),
	)
	a := NewAnalyzer(model, nil)

	out := a.Analyze(context.Background(), "Work ran late again.")

	require.Equal(t, OutcomeRepaired, out.Status)
	assert.True(t, out.Repaired)
	require.Equal(t, 2, model.calls())
	assert.Contains(t, model.prompts[1], bad)
	assert.Contains(t, model.prompts[1], `color "grey" is not a hex color code`)
	assert.Equal(t, "#808080", out.Analysis.Color)
}

func TestAnalyzeFailsAfterSingleRepair(t *testing.T) {
	model := script(reply("not json"), reply("still not json"), reply(wellFormed))
	a := NewAnalyzer(model, nil)

	out := a.Analyze(context.Background(), "whatever")

	assert.Equal(t, OutcomeFailed, out.Status)
	assert.Equal(t, 2, model.calls())
	assert.Equal(t, "still not json", out.Raw)

	_, err := out.Result()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnparseable)
	var schemaErr *SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}

func TestAnalyzeInvocationFailureSkipsRepair(t *testing.T) {
	upstream := errors.New("connection reset")
	model := script(failWith(upstream))
	a := NewAnalyzer(model, nil)

	out := a.Analyze(context.Background(), "entry")

	assert.Equal(t, OutcomeFailed, out.Status)
	assert.Equal(t, 1, model.calls())
	assert.ErrorIs(t, out.Err, upstream)
	assert.False(t, out.OK())
}

func TestAnalyzeRepairInvocationFailure(t *testing.T) {
	upstream := errors.New("rate limited upstream")
	model := script(reply("{}"), failWith(upstream))
	a := NewAnalyzer(model, nil)

	out := a.Analyze(context.Background(), "entry")

	assert.Equal(t, OutcomeFailed, out.Status)
	assert.Equal(t, 2, model.calls())
	assert.ErrorIs(t, out.Err, upstream)
	assert.Equal(t, "{}", out.Raw)
}

func TestAnalyzeEmptyContentStillCallsModel(t *testing.T) {
	model := script(reply(`{"mood":"","subject":"","negative":false,"summary":"","color":"#ffffff","sentimentScore":0}`))
	a := NewAnalyzer(model, nil)

	out := a.Analyze(context.Background(), "")

	require.Equal(t, OutcomeParsed, out.Status)
	assert.Equal(t, 1, model.calls())
	assert.Empty(t, out.Analysis.Mood)
	assert.Zero(t, out.Analysis.SentimentScore)
}

func TestOutcomeResultWithoutError(t *testing.T) {
	_, err := Outcome{Status: OutcomeFailed}.Result()
	assert.ErrorIs(t, err, ErrAnalysisFailed)
	assert.Equal(t, "repaired", OutcomeRepaired.String())
	assert.Equal(t, "unknown", OutcomeStatus(0).String())
}
