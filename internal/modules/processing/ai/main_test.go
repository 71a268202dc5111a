package ai

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// scriptedCompleter replays canned completions and records every prompt.
type scriptedCompleter struct {
	mu        sync.Mutex
	responses []scriptedResponse
	prompts   []string
}

type scriptedResponse struct {
	text string
	err  error
}

func script(responses ...scriptedResponse) *scriptedCompleter {
	return &scriptedCompleter{responses: responses}
}

func reply(text string) scriptedResponse { return scriptedResponse{text: text} }

func failWith(err error) scriptedResponse { return scriptedResponse{err: err} }

func (s *scriptedCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if len(s.responses) == 0 {
		return "", errScriptExhausted
	}
	next := s.responses[0]
	s.responses = s.responses[1:]
	return next.text, next.err
}

func (s *scriptedCompleter) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

type scriptError string

func (e scriptError) Error() string { return string(e) }

const errScriptExhausted = scriptError("scripted completer has no more responses")
