package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/jdholdren/mldigest/internal/logger"
)

// Reader fills in articles whose feed only carries a teaser by fetching the
// page itself and extracting the readable part.
type Reader struct {
	client    *http.Client
	cache     *lru.Cache[string, string]
	inflight  singleflight.Group
	minLength int
}

// Descriptions shorter than this get the full page fetched.
const defaultMinLength = 280

func NewReader(client *http.Client, cacheSize int) (*Reader, error) {
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("error creating reader cache: %w", err)
	}

	return &Reader{
		client:    client,
		cache:     cache,
		minLength: defaultMinLength,
	}, nil
}

// Enrich returns the article with its description replaced by the page's
// text, when the description is short. On any failure the article is
// returned untouched.
func (r *Reader) Enrich(ctx context.Context, a Article) Article {
	if a.Link == "" || utf8.RuneCountInString(a.Description) >= r.minLength {
		return a
	}

	// Cache results, and share in-flight fetches, so a link listed in
	// several feeds is fetched once
	if text, ok := r.cache.Get(a.Link); ok {
		a.Description = text
		return a
	}

	ctx = logger.Ctx(ctx, slog.String("link", a.Link))
	v, err, _ := r.inflight.Do(a.Link, func() (any, error) {
		if text, ok := r.cache.Get(a.Link); ok {
			return text, nil
		}

		text, err := r.read(ctx, a.Link)
		if err != nil {
			return "", err
		}
		if text != "" {
			r.cache.Add(a.Link, text)
		}
		return text, nil
	})
	if err != nil {
		slog.WarnContext(ctx, "error reading article page", "error", err)
		return a
	}

	if text := v.(string); text != "" {
		a.Description = text
	}
	return a
}

func (r *Reader) read(ctx context.Context, link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("error with the article's url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("error building request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error fetching article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// Strip it for readability, then down to text
	parser := readability.NewParser()
	article, err := parser.Parse(resp.Body, u)
	if err != nil {
		return "", fmt.Errorf("error parsing article: %w", err)
	}

	return textify(article.Content), nil
}
