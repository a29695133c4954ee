package feed

import (
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

// Article is a feed entry reduced to what the summarizer needs.
type Article struct {
	Title       string
	Link        string
	Published   string
	Description string // Plain text
}

// Extract turns a feed item into an Article, converting its html to text.
func Extract(item *gofeed.Item) Article {
	desc := item.Description
	if strings.TrimSpace(desc) == "" {
		desc = item.Content
	}

	published := item.Published
	if published == "" {
		published = item.Updated
	}

	return Article{
		Title:       textify(item.Title),
		Link:        strings.TrimSpace(item.Link),
		Published:   published,
		Description: textify(desc),
	}
}

// Recent gathers the articles from all feeds that were published today or yesterday.
func Recent(feeds []*gofeed.Feed, now time.Time) []Article {
	var articles []Article
	for _, fd := range feeds {
		if fd == nil {
			continue
		}
		for _, item := range fd.Items {
			if IsRecent(item, now) {
				articles = append(articles, Extract(item))
			}
		}
	}

	return articles
}

var stripPolicy = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)

const maxTextLength = 4096

// Removes all html tags (and with them any links), unescapes entities and
// collapses whitespace.
//
// Also limits the length of the text so the model isn't sent a massive chunk of it.
func textify(s string) string {
	s = stripPolicy.Sanitize(s)
	s = html.UnescapeString(s)
	s = strings.Join(strings.Fields(s), " ")

	if utf8.RuneCountInString(s) > maxTextLength {
		s = string([]rune(s)[:maxTextLength])
	}

	return s
}
