// Digest reads the feeds listed in an opml file and prints a themed digest
// of everything they published today and yesterday.
//
// Each recent article is summarized by Claude, then the summaries are
// combined into one digest. Configuration comes from the environment.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sethvargo/go-envconfig"

	"github.com/jdholdren/mldigest/internal/digest"
	"github.com/jdholdren/mldigest/internal/feed"
	"github.com/jdholdren/mldigest/internal/llm"
	"github.com/jdholdren/mldigest/internal/logger"
)

type config struct {
	OPMLFile string `env:"OPML_FILE, default=feeds.xml"`

	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY, required"`
	AnthropicBaseURL string `env:"ANTHROPIC_BASE_URL"`
	Model            string `env:"MODEL, default=claude-haiku-4-5"`
	MaxTokens        int64  `env:"MAX_TOKENS, default=1024"`
	LLMMaxRetries    int    `env:"LLM_MAX_RETRIES, default=2"`

	FetchAttempts int           `env:"FETCH_ATTEMPTS, default=3"`
	FetchBackoff  time.Duration `env:"FETCH_BACKOFF, default=2s"`
	FetchTimeout  time.Duration `env:"FETCH_TIMEOUT, default=20s"`
	Concurrency   int           `env:"CONCURRENCY, default=8"`

	// Fetch the page of articles whose feed only has a teaser
	EnrichArticles bool `env:"ENRICH_ARTICLES, default=false"`
	// Answered from the summaries after the digest
	Question string `env:"QUESTION"`

	// Which format to use for logging: either text or json
	LoggerFormat string `env:"LOGGER_FORMAT, default=text"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Parse the config
	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		log.Fatalf("error parsing config: %s", err)
	}

	// Logs go to stderr, the digest is the only thing on stdout
	slog.SetDefault(logger.New(os.Stderr, cfg.LoggerFormat))

	err := run(ctx, cfg, os.Stdout)
	if errors.Is(err, digest.ErrNoArticles) {
		slog.Info("nothing published today or yesterday")
		return
	}
	if err != nil {
		slog.Error("error running", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, stdout io.Writer) error {
	ctx = logger.Ctx(ctx, slog.String("run_id", uuid.NewString()))
	slog.InfoContext(ctx, "running",
		"opml_file", cfg.OPMLFile,
		"model", cfg.Model,
		"concurrency", cfg.Concurrency,
		"enrich_articles", cfg.EnrichArticles,
	)

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.AnthropicAPIKey),
		option.WithMaxRetries(cfg.LLMMaxRetries),
	}
	if cfg.AnthropicBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.AnthropicBaseURL))
	}
	claudeClient := anthropic.NewClient(opts...)

	httpClient := &http.Client{Timeout: cfg.FetchTimeout}
	fetcher := feed.NewFetcher(
		feed.WithHTTPClient(httpClient),
		feed.WithAttempts(cfg.FetchAttempts),
		feed.WithBackoff(cfg.FetchBackoff),
		feed.WithConcurrency(cfg.Concurrency),
	)

	var reader *feed.Reader
	if cfg.EnrichArticles {
		r, err := feed.NewReader(httpClient, 512)
		if err != nil {
			return err
		}
		reader = r
	}

	gen := digest.NewGenerator(digest.Params{
		Fetcher: fetcher,
		LLM: llm.NewClaude(&claudeClient,
			llm.WithModel(cfg.Model),
			llm.WithMaxTokens(cfg.MaxTokens),
		),
		Reader:      reader,
		Question:    cfg.Question,
		Concurrency: cfg.Concurrency,
	})

	res, err := gen.Generate(ctx, cfg.OPMLFile)
	if err != nil {
		return fmt.Errorf("error generating digest: %w", err)
	}

	if _, err := fmt.Fprintln(stdout, res.Digest); err != nil {
		return fmt.Errorf("error writing digest: %w", err)
	}
	if res.Answer != "" {
		if _, err := fmt.Fprintf(stdout, "\nQ: %s\nA: %s\n", cfg.Question, res.Answer); err != nil {
			return fmt.Errorf("error writing answer: %w", err)
		}
	}

	return nil
}
