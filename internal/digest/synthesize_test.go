package digest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdholdren/mldigest/internal/llm"
)

func TestSynthesize(t *testing.T) {
	fake := &fakeLLM{respond: func(llm.Request) (string, error) {
		return "# Today in ML", nil
	}}

	got, err := NewSynthesizer(fake).Synthesize(context.Background(), []Summary{
		{Summary: "One happened.", Topic: "a"},
		{Summary: "Two happened.", Topic: "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, "# Today in ML", got)

	reqs := fake.calls(digestPrompt)
	require.Len(t, reqs, 1)
	assert.Equal(t, []string{"One happened.\nTwo happened."}, reqs[0].Messages)
}

func TestSynthesize_Error(t *testing.T) {
	fake := &fakeLLM{respond: func(llm.Request) (string, error) {
		return "", llm.ErrRateLimited
	}}

	_, err := NewSynthesizer(fake).Synthesize(context.Background(), []Summary{{Summary: "x"}})
	assert.ErrorIs(t, err, llm.ErrRateLimited)
}

func TestAnswer(t *testing.T) {
	summaries := []Summary{
		{Summary: "A new vision model beat the benchmark.", Topic: "Computer Vision"},
		{Summary: "A robot learned to fold laundry.", Topic: "Robotics"},
		{Summary: "Untopical news."},
	}

	tests := []struct {
		name         string
		topic        string
		wantIncluded []string
		wantExcluded []string
	}{
		{
			name:         "matching topic narrows the summaries",
			topic:        "  robotics\n",
			wantIncluded: []string{"fold laundry"},
			wantExcluded: []string{"vision model", "Untopical"},
		},
		{
			name:         "no match uses everything",
			topic:        "Finance",
			wantIncluded: []string{"fold laundry", "vision model", "Untopical"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeLLM{respond: func(req llm.Request) (string, error) {
				if req.System == strings.TrimSpace(topicPrompt) {
					return tt.topic, nil
				}
				return "the answer", nil
			}}

			got, err := NewSynthesizer(fake).Answer(context.Background(), "What happened in robotics?", summaries)
			require.NoError(t, err)
			assert.Equal(t, "the answer", got)

			topicReqs := fake.calls(topicPrompt)
			require.Len(t, topicReqs, 1)
			assert.Equal(t, []string{"What happened in robotics?"}, topicReqs[0].Messages)

			answerReqs := fake.calls(answerPrompt)
			require.Len(t, answerReqs, 1)
			msg := answerReqs[0].Messages[0]
			assert.True(t, strings.HasPrefix(msg, "Question: What happened in robotics?"))
			for _, s := range tt.wantIncluded {
				assert.Contains(t, msg, s)
			}
			for _, s := range tt.wantExcluded {
				assert.NotContains(t, msg, s)
			}
		})
	}
}

func TestExtractTopic_Error(t *testing.T) {
	fake := &fakeLLM{respond: func(llm.Request) (string, error) {
		return "", errors.New("down")
	}}

	_, err := NewSynthesizer(fake).Answer(context.Background(), "why?", nil)
	assert.Error(t, err)
	assert.Empty(t, fake.calls(answerPrompt))
}
