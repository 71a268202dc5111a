package ai

import "errors"

// OutcomeStatus tells how an analysis run ended.
type OutcomeStatus int

const (
	// OutcomeParsed means the first completion matched the schema.
	OutcomeParsed OutcomeStatus = iota + 1
	// OutcomeRepaired means the first completion failed the schema and the
	// single repair completion passed.
	OutcomeRepaired
	// OutcomeFailed means the model call or the repair failed.
	OutcomeFailed
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeParsed:
		return "parsed"
	case OutcomeRepaired:
		return "repaired"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrAnalysisFailed is returned by Outcome.Result when no analysis was
// produced and the outcome carries no more specific error.
var ErrAnalysisFailed = errors.New("analysis failed")

// ErrUnparseable marks an outcome whose repair completion still failed the
// schema.
var ErrUnparseable = errors.New("model output could not be parsed after repair")

// Outcome is the result of one pass through the analysis pipeline.
type Outcome struct {
	Status   OutcomeStatus
	Analysis *Analysis
	// Raw is the last completion received from the model, if any.
	Raw      string
	Repaired bool
	Err      error
}

// OK reports whether the outcome carries an analysis.
func (o Outcome) OK() bool {
	return o.Status != OutcomeFailed && o.Analysis != nil
}

// Result converts the outcome into the conventional (value, error) pair.
func (o Outcome) Result() (*Analysis, error) {
	if o.OK() {
		return o.Analysis, nil
	}
	if o.Err != nil {
		return nil, o.Err
	}
	return nil, ErrAnalysisFailed
}
