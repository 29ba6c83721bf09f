package social

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/ppiankov/claimwatch/internal/fetch"
	"github.com/ppiankov/claimwatch/internal/model"
)

// Twitter reads recent posts through the X API v2 with an app bearer token
type Twitter struct {
	client  *fetch.Client
	baseURL string
	token   string
	logger  *log.Logger
}

// NewTwitter creates the Twitter source; it fails with model.ErrMissingCredentials without a token
func NewTwitter(client *fetch.Client, baseURL, token string, logger *log.Logger) (*Twitter, error) {
	if token == "" {
		return nil, fmt.Errorf("twitter: %w (set TWITTER_BEARER_TOKEN)", model.ErrMissingCredentials)
	}
	if baseURL == "" {
		baseURL = "https://api.twitter.com/2"
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Twitter{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		logger:  logger,
	}, nil
}

// Name returns "twitter"
func (t *Twitter) Name() string { return "twitter" }

type twitterUser struct {
	Data struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"data"`
}

type twitterTimeline struct {
	Data []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// FetchRecent resolves the username and returns its latest original posts (no retweets or replies)
func (t *Twitter) FetchRecent(ctx context.Context, handle string, limit int) []string {
	username := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
	if username == "" {
		return []string{}
	}
	limit = clampLimit(limit)
	headers := map[string]string{"Authorization": "Bearer " + t.token}

	var user twitterUser
	if err := t.client.GetJSON(ctx, t.baseURL+"/users/by/username/"+url.PathEscape(username), headers, &user); err != nil {
		t.logger.Printf("twitter: lookup %s: %v", username, err)
		return []string{}
	}
	if user.Data.ID == "" {
		t.logger.Printf("twitter: user %s not found", username)
		return []string{}
	}

	// The API accepts 5..100 results per page
	params := url.Values{}
	params.Set("max_results", strconv.Itoa(min(max(limit, 5), 100)))
	params.Set("exclude", "retweets,replies")

	var timeline twitterTimeline
	if err := t.client.GetJSON(ctx, t.baseURL+"/users/"+user.Data.ID+"/tweets?"+params.Encode(), headers, &timeline); err != nil {
		t.logger.Printf("twitter: timeline %s: %v", username, err)
		return []string{}
	}

	posts := make([]string, 0, len(timeline.Data))
	for _, tw := range timeline.Data {
		if len(posts) == limit {
			break
		}
		if text := strings.TrimSpace(tw.Text); text != "" {
			posts = append(posts, text)
		}
	}
	return posts
}
