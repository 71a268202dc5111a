package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

const (
	MinSentimentScore = -10
	MaxSentimentScore = 10
)

var hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Analysis is the structured annotation produced for one entry.
type Analysis struct {
	Mood           string  `json:"mood"`
	Subject        string  `json:"subject"`
	Negative       bool    `json:"negative"`
	Summary        string  `json:"summary"`
	Color          string  `json:"color"`
	SentimentScore float64 `json:"sentimentScore"`
}

// SchemaError reports a completion that does not match the analysis schema.
type SchemaError struct {
	Raw    string
	Reason error
}

func (e *SchemaError) Error() string {
	return "analysis schema: " + e.Reason.Error()
}

func (e *SchemaError) Unwrap() error { return e.Reason }

var errNoJSONObject = errors.New("no JSON object found in completion")

// ParseAnalysis extracts the first JSON object in raw and validates it against
// the analysis schema. Markdown code fences around the object are ignored.
func ParseAnalysis(raw string) (*Analysis, error) {
	fail := func(reason error) (*Analysis, error) {
		return nil, &SchemaError{Raw: raw, Reason: reason}
	}

	fields, err := firstJSONObject(raw)
	if err != nil {
		return fail(err)
	}

	var out Analysis
	targets := map[string]interface{}{
		"mood":           &out.Mood,
		"subject":        &out.Subject,
		"negative":       &out.Negative,
		"summary":        &out.Summary,
		"color":          &out.Color,
		"sentimentScore": &out.SentimentScore,
	}
	for _, f := range analysisFields {
		value, ok := fields[f.Name]
		if !ok {
			return fail(fmt.Errorf("missing key %q", f.Name))
		}
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return fail(fmt.Errorf("key %q must be a %s, got null", f.Name, f.Type))
		}
		if err := json.Unmarshal(value, targets[f.Name]); err != nil {
			return fail(fmt.Errorf("key %q must be a %s", f.Name, f.Type))
		}
	}

	if !hexColorPattern.MatchString(out.Color) {
		return fail(fmt.Errorf("color %q is not a hex color code", out.Color))
	}
	if math.IsNaN(out.SentimentScore) || math.IsInf(out.SentimentScore, 0) {
		return fail(errors.New("sentimentScore must be a finite number"))
	}
	if out.SentimentScore < MinSentimentScore || out.SentimentScore > MaxSentimentScore {
		return fail(fmt.Errorf("sentimentScore %v is outside [%d, %d]", out.SentimentScore, MinSentimentScore, MaxSentimentScore))
	}
	return &out, nil
}

// firstJSONObject decodes the first top-level object in raw, tolerating code
// fences and prose around it.
func firstJSONObject(raw string) (map[string]json.RawMessage, error) {
	cleaned := stripCodeFence(raw)

	for offset := 0; offset < len(cleaned); {
		start := strings.IndexByte(cleaned[offset:], '{')
		if start < 0 {
			break
		}
		start += offset

		var fields map[string]json.RawMessage
		dec := json.NewDecoder(strings.NewReader(cleaned[start:]))
		if err := dec.Decode(&fields); err == nil {
			return fields, nil
		}
		offset = start + 1
	}
	return nil, errNoJSONObject
}

func stripCodeFence(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if i := strings.Index(cleaned, "```"); i >= 0 {
		body := cleaned[i+3:]
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			// Drop the info string ("json", "JSON", ...).
			if lang := strings.TrimSpace(body[:nl]); !strings.ContainsAny(lang, "{}") {
				body = body[nl+1:]
			}
		}
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		cleaned = strings.TrimSpace(body)
	}
	return cleaned
}
