package digest

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jdholdren/mldigest/internal/feed"
	"github.com/jdholdren/mldigest/internal/llm"
	"github.com/jdholdren/mldigest/internal/progress"
)

//go:embed summarize_prompt.txt
var summarizePrompt string

// Summary is what the model made of one article.
type Summary struct {
	Summary string
	Topic   string
}

// Summarizer asks the model for one summary per article.
type Summarizer struct {
	llm         llm.Completer
	concurrency int
}

// NewSummarizer creates a Summarizer running at most concurrency calls at
// once. Zero or less means no limit.
func NewSummarizer(c llm.Completer, concurrency int) *Summarizer {
	return &Summarizer{llm: c, concurrency: concurrency}
}

// Summarize sends the article to the model and splits the reply into the
// summary (first line) and the topic (the rest).
func (s *Summarizer) Summarize(ctx context.Context, a feed.Article) (Summary, error) {
	text, err := s.llm.Complete(ctx, llm.Request{
		System:   strings.TrimSpace(summarizePrompt),
		Messages: []string{fmt.Sprintf("Title: %s.\nDescription: %s.", a.Title, a.Description)},
	})
	if err != nil {
		return Summary{}, fmt.Errorf("error summarizing %q: %w", a.Link, err)
	}

	return parseSummary(text), nil
}

func parseSummary(text string) Summary {
	summary, topic, found := strings.Cut(text, "\n")
	if !found {
		return Summary{Summary: text}
	}

	return Summary{Summary: summary, Topic: strings.TrimSpace(topic)}
}

// SummarizeAll summarizes every article concurrently. The first failure
// cancels the rest and is returned.
//
// Summaries come back in the same order as the articles.
func (s *Summarizer) SummarizeAll(ctx context.Context, articles []feed.Article) ([]Summary, error) {
	var (
		summaries = make([]Summary, len(articles))
		counter   = progress.New(ctx, "summarizing articles", len(articles))
	)
	g, gCtx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}

	for i, a := range articles {
		g.Go(func() error {
			summary, err := s.Summarize(gCtx, a)
			if err != nil {
				return err
			}

			summaries[i] = summary
			counter.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summaries, nil
}
