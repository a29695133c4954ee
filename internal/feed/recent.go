package feed

import (
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
)

// IsRecent reports whether the item was published (or, lacking that,
// updated) today or yesterday.
//
// The item's calendar date is taken in its own zone and compared with now's
// calendar dates. Timestamps without a zone are read in now's location.
// Items without a date, or with one that can't be parsed, are not recent.
func IsRecent(item *gofeed.Item, now time.Time) bool {
	if item == nil {
		return false
	}

	t, ok := publishTime(item, now.Location())
	if !ok {
		return false
	}

	yesterday := now.AddDate(0, 0, -1)
	return sameDay(t, now) || sameDay(t, yesterday)
}

func publishTime(item *gofeed.Item, loc *time.Location) (time.Time, bool) {
	raw, parsed := item.Published, item.PublishedParsed
	if raw == "" {
		raw, parsed = item.Updated, item.UpdatedParsed
	}
	if raw == "" {
		return time.Time{}, false
	}

	if t, err := dateparse.ParseIn(raw, loc); err == nil {
		return t, true
	}
	// gofeed knows a few more of the odd layouts feeds use
	if parsed != nil {
		return *parsed, true
	}

	return time.Time{}, false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
