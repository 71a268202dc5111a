package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	defaultQATopK = 4
	// NoEntriesAnswer is returned without a model call when the user has
	// nothing written yet.
	NoEntriesAnswer = "You have not written any journal entries yet, so there is nothing to answer from."
)

var ErrEmptyQuestion = errors.New("question is empty")

// Document is one journal entry offered as context for a question.
type Document struct {
	ID        string
	Content   string
	CreatedAt time.Time
}

// QA answers free-form questions over a user's entries: rank entries by
// embedding similarity, then refine an answer across the closest ones.
type QA struct {
	embedder  Embedder
	completer Completer
	topK      int
	log       *zap.Logger
	tracer    trace.Tracer
}

func NewQA(embedder Embedder, completer Completer, log *zap.Logger) *QA {
	if log == nil {
		log = zap.NewNop()
	}
	return &QA{
		embedder:  embedder,
		completer: completer,
		topK:      defaultQATopK,
		log:       log,
		tracer:    otel.Tracer(tracerName),
	}
}

func (q *QA) Answer(ctx context.Context, question string, docs []Document) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	if len(docs) == 0 {
		return NoEntriesAnswer, nil
	}

	ctx, span := q.tracer.Start(ctx, "ai.Answer", trace.WithAttributes(
		attribute.Int("qa.documents", len(docs)),
	))
	defer span.End()

	relevant, err := q.rank(ctx, question, docs)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	answer, err := q.completer.Complete(ctx, buildQAInitialPrompt(question, formatDocument(relevant[0])))
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("answer question: %w", err)
	}
	for _, doc := range relevant[1:] {
		refined, err := q.completer.Complete(ctx, buildQARefinePrompt(question, answer, formatDocument(doc)))
		if err != nil {
			span.RecordError(err)
			return "", fmt.Errorf("refine answer: %w", err)
		}
		answer = refined
	}
	q.log.Debug("question answered", zap.Int("documents", len(relevant)))
	return strings.TrimSpace(answer), nil
}

// rank returns at most topK docs ordered by similarity to question.
func (q *QA) rank(ctx context.Context, question string, docs []Document) ([]Document, error) {
	texts := make([]string, 0, len(docs)+1)
	for _, doc := range docs {
		texts = append(texts, doc.Content)
	}
	texts = append(texts, question)

	vectors, err := q.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed entries: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed entries: got %d vectors for %d texts", len(vectors), len(texts))
	}
	queryVec := vectors[len(vectors)-1]

	type scored struct {
		doc   Document
		score float64
	}
	ranked := make([]scored, len(docs))
	for i, doc := range docs {
		ranked[i] = scored{doc: doc, score: cosineSimilarity(vectors[i], queryVec)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	k := q.topK
	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]Document, k)
	for i := 0; i < k; i++ {
		out[i] = ranked[i].doc
	}
	return out, nil
}

func formatDocument(doc Document) string {
	if doc.CreatedAt.IsZero() {
		return doc.Content
	}
	return "Written " + doc.CreatedAt.Format("2006-01-02") + ":\n" + doc.Content
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
