// Package digest turns the recent articles of a set of feeds into a themed
// digest written by a language model.
package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jdholdren/mldigest/internal/feed"
	"github.com/jdholdren/mldigest/internal/llm"
	"github.com/jdholdren/mldigest/internal/opml"
)

// ErrNoArticles is returned when none of the feeds had anything from today or yesterday.
var ErrNoArticles = errors.New("no recent articles")

type (
	// Generator runs the whole pipeline: feeds, articles, summaries, digest.
	Generator struct {
		fetcher     *feed.Fetcher
		reader      *feed.Reader
		summarizer  *Summarizer
		synthesizer *Synthesizer
		concurrency int
		question    string
		now         func() time.Time
	}

	Params struct {
		Fetcher *feed.Fetcher
		LLM     llm.Completer

		// Optional: fills in articles that only carry a teaser
		Reader *feed.Reader
		// Optional: answered from the summaries after the digest is written
		Question string
		// Caps concurrent model calls and page fetches, zero for no cap
		Concurrency int
		// Defaults to time.Now
		Now func() time.Time
	}

	// Result is everything a run produced.
	Result struct {
		Articles  []feed.Article
		Summaries []Summary
		Digest    string
		Answer    string
	}
)

func NewGenerator(p Params) *Generator {
	now := p.Now
	if now == nil {
		now = time.Now
	}

	return &Generator{
		fetcher:     p.Fetcher,
		reader:      p.Reader,
		summarizer:  NewSummarizer(p.LLM, p.Concurrency),
		synthesizer: NewSynthesizer(p.LLM),
		concurrency: p.Concurrency,
		question:    p.Question,
		now:         now,
	}
}

// Generate reads the feeds listed in the opml file and writes the digest of
// their recent articles.
func (g *Generator) Generate(ctx context.Context, opmlPath string) (Result, error) {
	feedURLs, err := opml.ParseFile(opmlPath)
	if err != nil {
		return Result{}, err
	}
	slog.InfoContext(ctx, "parsed opml", "feeds", len(feedURLs))

	feeds := g.fetcher.FetchAll(ctx, feedURLs)
	articles := feed.Recent(feeds, g.now())
	slog.InfoContext(ctx, "collected recent articles", "feeds", len(feeds), "articles", len(articles))
	if len(articles) == 0 {
		return Result{}, ErrNoArticles
	}

	if g.reader != nil {
		articles = g.enrich(ctx, articles)
	}

	summaries, err := g.summarizer.SummarizeAll(ctx, articles)
	if err != nil {
		return Result{}, fmt.Errorf("error summarizing articles: %w", err)
	}

	digest, err := g.synthesizer.Synthesize(ctx, summaries)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Articles:  articles,
		Summaries: summaries,
		Digest:    digest,
	}
	if g.question == "" {
		return res, nil
	}

	res.Answer, err = g.synthesizer.Answer(ctx, g.question, summaries)
	if err != nil {
		return Result{}, err
	}

	return res, nil
}

func (g *Generator) enrich(ctx context.Context, articles []feed.Article) []feed.Article {
	var (
		enriched = make([]feed.Article, len(articles))
		eg       errgroup.Group
	)
	if g.concurrency > 0 {
		eg.SetLimit(g.concurrency)
	}

	for i, a := range articles {
		eg.Go(func() error {
			enriched[i] = g.reader.Enrich(ctx, a)
			return nil
		})
	}
	_ = eg.Wait() // Enrich keeps the article on failure

	return enriched
}
