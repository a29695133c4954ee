// Package llm talks to the language model that writes the summaries and the digest.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

// ErrRateLimited is returned when the model provider refuses the request
// because too many were sent.
var ErrRateLimited = errors.New("rate limit hit")

// Request is one completion: a system instruction and the user messages that follow it.
type Request struct {
	System   string
	Messages []string
}

// Completer generates text for a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

const (
	DefaultModel     = anthropic.ModelClaudeHaiku4_5
	defaultMaxTokens = 1024
)

// Claude is a [Completer] backed by the Anthropic messages API.
type Claude struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

type ClaudeOption func(*Claude)

func WithModel(model string) ClaudeOption {
	return func(c *Claude) {
		if model != "" {
			c.model = anthropic.Model(model)
		}
	}
}

func WithMaxTokens(n int64) ClaudeOption {
	return func(c *Claude) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

func NewClaude(client *anthropic.Client, opts ...ClaudeOption) *Claude {
	c := &Claude{
		client:    client,
		model:     DefaultModel,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Complete sends the request as a single message call and returns the text
// of the reply.
func (c *Claude) Complete(ctx context.Context, req Request) (string, error) {
	if len(req.Messages) == 0 {
		return "", errors.New("error completing: no messages")
	}

	msgs := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m)))
	}
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  msgs,
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	// Rate limits get their own error so callers can tell them apart
	var claudeErr *anthropic.Error
	if errors.As(err, &claudeErr) && claudeErr.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	if err != nil {
		return "", fmt.Errorf("error calling claude: %w", err)
	}

	var text strings.Builder
	for _, content := range resp.Content {
		text.WriteString(content.Text)
	}

	return text.String(), nil
}
