package ai

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/mx-space/journal/internal/modules/processing/ai"

// Completer sends a prompt to a language model and returns its text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Analyzer runs prompt building, model invocation, parsing and the single
// repair attempt for a journal entry.
type Analyzer struct {
	completer Completer
	log       *zap.Logger
	tracer    trace.Tracer
}

func NewAnalyzer(completer Completer, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{
		completer: completer,
		log:       log,
		tracer:    otel.Tracer(tracerName),
	}
}

// Analyze annotates content. A failed first model call ends the run without a
// repair attempt; repair only covers completions that fail the schema.
func (a *Analyzer) Analyze(ctx context.Context, content string) Outcome {
	ctx, span := a.tracer.Start(ctx, "ai.Analyze", trace.WithAttributes(
		attribute.Int("journal.content_length", len(content)),
	))
	defer span.End()

	outcome := a.run(ctx, content)
	span.SetAttributes(attribute.String("ai.outcome", outcome.Status.String()))
	if outcome.Err != nil {
		span.RecordError(outcome.Err)
		span.SetStatus(codes.Error, outcome.Err.Error())
	}
	return outcome
}

func (a *Analyzer) run(ctx context.Context, content string) Outcome {
	raw, err := a.complete(ctx, "ai.invoke", BuildAnalysisPrompt(content))
	if err != nil {
		a.log.Warn("analysis model call failed", zap.Error(err))
		return Outcome{Status: OutcomeFailed, Err: fmt.Errorf("invoke model: %w", err)}
	}

	analysis, parseErr := a.parse(ctx, raw)
	if parseErr == nil {
		return Outcome{Status: OutcomeParsed, Analysis: analysis, Raw: raw}
	}
	a.log.Info("analysis completion failed schema, attempting repair", zap.Error(parseErr))

	fixed, err := a.complete(ctx, "ai.repair", BuildRepairPrompt(raw, parseErr))
	if err != nil {
		a.log.Warn("analysis repair call failed", zap.Error(err))
		return Outcome{Status: OutcomeFailed, Raw: raw, Err: fmt.Errorf("repair: invoke model: %w", err)}
	}

	analysis, parseErr = a.parse(ctx, fixed)
	if parseErr != nil {
		a.log.Warn("analysis repair failed schema", zap.Error(parseErr))
		return Outcome{Status: OutcomeFailed, Raw: fixed, Err: fmt.Errorf("%w: %w", ErrUnparseable, parseErr)}
	}
	return Outcome{Status: OutcomeRepaired, Analysis: analysis, Raw: fixed, Repaired: true}
}

func (a *Analyzer) complete(ctx context.Context, name, prompt string) (string, error) {
	ctx, span := a.tracer.Start(ctx, name)
	defer span.End()

	raw, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("ai.completion_length", len(raw)))
	return raw, nil
}

func (a *Analyzer) parse(ctx context.Context, raw string) (*Analysis, error) {
	_, span := a.tracer.Start(ctx, "ai.parse")
	defer span.End()

	analysis, err := ParseAnalysis(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "schema mismatch")
	}
	return analysis, err
}
