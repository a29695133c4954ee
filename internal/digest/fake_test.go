package digest

import (
	"context"
	"strings"
	"sync"

	"github.com/jdholdren/mldigest/internal/llm"
)

// fakeLLM records every request and answers from respond.
type fakeLLM struct {
	mu       sync.Mutex
	requests []llm.Request
	respond  func(llm.Request) (string, error)
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	return f.respond(req)
}

// Requests made with the given system prompt.
func (f *fakeLLM) calls(system string) []llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []llm.Request
	for _, r := range f.requests {
		if r.System == strings.TrimSpace(system) {
			out = append(out, r)
		}
	}

	return out
}
