package ai

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildAnalysisPrompt(t *testing.T) {
	prompt := BuildAnalysisPrompt("Dear diary, today was fine.")

	assert.Contains(t, prompt, "Dear diary, today was fine.")
	assert.Contains(t, prompt, FormatInstructions())
	for _, f := range analysisFields {
		assert.Contains(t, prompt, `"`+f.Name+`"`)
	}
}

func TestBuildAnalysisPromptPassesContentThrough(t *testing.T) {
	long := strings.Repeat("word ", 20000)

	assert.Contains(t, BuildAnalysisPrompt(long), long)
	assert.Contains(t, BuildAnalysisPrompt(""), "<<<ENTRY\n\nENTRY")
}

func TestBuildRepairPrompt(t *testing.T) {
	prompt := BuildRepairPrompt(`{"mood": 3}`, errors.New("key \"mood\" must be a string"))

	assert.Contains(t, prompt, `{"mood": 3}`)
	assert.Contains(t, prompt, `key "mood" must be a string`)
	assert.Contains(t, prompt, FormatInstructions())
}
