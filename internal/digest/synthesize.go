package digest

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jdholdren/mldigest/internal/llm"
)

var (
	//go:embed digest_prompt.txt
	digestPrompt string
	//go:embed topic_prompt.txt
	topicPrompt string
	//go:embed answer_prompt.txt
	answerPrompt string
)

// Synthesizer writes the final texts out of a run's summaries.
type Synthesizer struct {
	llm llm.Completer
}

func NewSynthesizer(c llm.Completer) *Synthesizer {
	return &Synthesizer{llm: c}
}

// Synthesize makes a single call with every summary, one per line, and
// returns the themed digest.
func (s *Synthesizer) Synthesize(ctx context.Context, summaries []Summary) (string, error) {
	text, err := s.llm.Complete(ctx, llm.Request{
		System:   strings.TrimSpace(digestPrompt),
		Messages: []string{joinSummaries(summaries)},
	})
	if err != nil {
		return "", fmt.Errorf("error generating digest: %w", err)
	}

	return text, nil
}

// ExtractTopic asks for the main topic of a question.
func (s *Synthesizer) ExtractTopic(ctx context.Context, question string) (string, error) {
	text, err := s.llm.Complete(ctx, llm.Request{
		System:   strings.TrimSpace(topicPrompt),
		Messages: []string{question},
	})
	if err != nil {
		return "", fmt.Errorf("error extracting topic: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// Answer replies to a question from the summaries.
//
// Summaries whose topic matches the question's are used when there are any,
// otherwise all of them are.
func (s *Synthesizer) Answer(ctx context.Context, question string, summaries []Summary) (string, error) {
	topic, err := s.ExtractTopic(ctx, question)
	if err != nil {
		return "", err
	}

	relevant := matchingTopic(summaries, topic)
	if len(relevant) == 0 {
		relevant = summaries
	}

	text, err := s.llm.Complete(ctx, llm.Request{
		System:   strings.TrimSpace(answerPrompt),
		Messages: []string{fmt.Sprintf("Question: %s\n\nSummaries:\n%s", question, joinSummaries(relevant))},
	})
	if err != nil {
		return "", fmt.Errorf("error answering question: %w", err)
	}

	return text, nil
}

func matchingTopic(summaries []Summary, topic string) []Summary {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		return nil
	}

	var matched []Summary
	for _, s := range summaries {
		t := strings.ToLower(s.Topic)
		if t == "" {
			continue
		}
		if strings.Contains(t, topic) || strings.Contains(topic, t) {
			matched = append(matched, s)
		}
	}

	return matched
}

func joinSummaries(summaries []Summary) string {
	lines := make([]string, 0, len(summaries))
	for _, s := range summaries {
		lines = append(lines, s.Summary)
	}

	return strings.Join(lines, "\n")
}
