package social

import (
	"context"
	"log"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/ppiankov/claimwatch/internal/fetch"
)

// YouTube reads a channel's public upload feed; no API key is needed
type YouTube struct {
	client  *fetch.Client
	feedURL string
	logger  *log.Logger
}

// NewYouTube creates the YouTube source. feedURL defaults to the public videos.xml endpoint.
func NewYouTube(client *fetch.Client, feedURL string, logger *log.Logger) *YouTube {
	if feedURL == "" {
		feedURL = "https://www.youtube.com/feeds/videos.xml"
	}
	if logger == nil {
		logger = log.Default()
	}
	return &YouTube{client: client, feedURL: feedURL, logger: logger}
}

// Name returns "youtube"
func (y *YouTube) Name() string { return "youtube" }

// FetchRecent returns the descriptions of the channel's latest videos. handle is a channel
// id ("UC...") or a legacy username.
func (y *YouTube) FetchRecent(ctx context.Context, handle string, limit int) []string {
	handle = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
	if handle == "" {
		return []string{}
	}

	params := url.Values{}
	if strings.HasPrefix(handle, "UC") && len(handle) == 24 {
		params.Set("channel_id", handle)
	} else {
		params.Set("user", handle)
	}

	feed, err := parseFeed(ctx, y.client, y.feedURL+"?"+params.Encode())
	if err != nil {
		y.logger.Printf("youtube: %s: %v", handle, err)
		return []string{}
	}

	return itemTexts(feed, clampLimit(limit), func(item *gofeed.Item) string {
		if desc := mediaDescription(item); desc != "" {
			return desc
		}
		if desc := plainText(item.Description); desc != "" {
			return desc
		}
		return strings.TrimSpace(item.Title)
	})
}

// mediaDescription reads <media:group><media:description> from a YouTube Atom entry
func mediaDescription(item *gofeed.Item) string {
	groups := item.Extensions["media"]["group"]
	for _, g := range groups {
		for _, d := range g.Children["description"] {
			if v := strings.TrimSpace(d.Value); v != "" {
				return v
			}
		}
	}
	return ""
}
