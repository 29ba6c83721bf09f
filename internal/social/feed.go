package social

import (
	"context"
	"log"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/ppiankov/claimwatch/internal/fetch"
	"github.com/ppiankov/claimwatch/internal/util"
)

// Feed reads any RSS/Atom/JSON feed URL, e.g. a podcast or blog; the handle is the feed URL
type Feed struct {
	client *fetch.Client
	robots *util.RobotsChecker
	logger *log.Logger
}

// NewFeed creates a feed source. A nil robots checker skips robots.txt checks.
func NewFeed(client *fetch.Client, robots *util.RobotsChecker, logger *log.Logger) *Feed {
	if logger == nil {
		logger = log.Default()
	}
	return &Feed{client: client, robots: robots, logger: logger}
}

// Name returns "feed"
func (f *Feed) Name() string { return "feed" }

// FetchRecent returns "title. description" for the newest items of the feed at handle
func (f *Feed) FetchRecent(ctx context.Context, handle string, limit int) []string {
	feedURL := strings.TrimSpace(handle)
	if !strings.HasPrefix(feedURL, "http://") && !strings.HasPrefix(feedURL, "https://") {
		f.logger.Printf("feed: %q is not a feed URL", handle)
		return []string{}
	}

	if f.robots != nil && !f.robots.IsAllowed(ctx, feedURL) {
		f.logger.Printf("feed: robots.txt disallows %s", feedURL)
		return []string{}
	}

	feed, err := parseFeed(ctx, f.client, feedURL)
	if err != nil {
		f.logger.Printf("feed: %s: %v", feedURL, err)
		return []string{}
	}

	return itemTexts(feed, clampLimit(limit), func(item *gofeed.Item) string {
		title := strings.TrimSpace(item.Title)
		desc := plainText(item.Description)
		if desc == "" {
			desc = plainText(item.Content)
		}
		switch {
		case title == "":
			return desc
		case desc == "":
			return title
		default:
			return strings.TrimRight(title, ".!? ") + ". " + desc
		}
	})
}

func parseFeed(ctx context.Context, client *fetch.Client, feedURL string) (*gofeed.Feed, error) {
	resp, err := client.Get(ctx, feedURL, map[string]string{
		"Accept": "application/rss+xml, application/atom+xml, application/feed+json, application/xml;q=0.9, */*;q=0.8",
	})
	if err != nil {
		return nil, err
	}
	return gofeed.NewParser().ParseString(string(resp.Body))
}

// itemTexts applies text to the first limit items, skipping empty results
func itemTexts(feed *gofeed.Feed, limit int, text func(*gofeed.Item) string) []string {
	out := make([]string, 0, min(limit, len(feed.Items)))
	for _, item := range feed.Items {
		if len(out) == limit {
			break
		}
		if t := strings.TrimSpace(text(item)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
