package social

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/claimwatch/internal/fetch"
	"github.com/ppiankov/claimwatch/internal/model"
	"github.com/ppiankov/claimwatch/internal/util"
)

func testClient() *fetch.Client {
	cfg := model.DefaultConfig().HTTP
	cfg.MaxRetries = 0
	cfg.Timeout = 5 * time.Second
	return fetch.NewClient(cfg, nil)
}

func quietLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

type staticSource struct {
	name  string
	posts []string
	delay time.Duration
	panic bool
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) FetchRecent(_ context.Context, _ string, limit int) []string {
	if s.panic {
		panic("boom")
	}
	time.Sleep(s.delay)
	if limit > 0 && len(s.posts) > limit {
		return s.posts[:limit]
	}
	return s.posts
}

func TestTwitter_FetchRecent(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/users/by/username/drhealth":
			fmt.Fprint(w, `{"data":{"id":"42","username":"drhealth"}}`)
		case "/users/42/tweets":
			gotQuery = r.URL.RawQuery
			fmt.Fprint(w, `{"data":[
				{"id":"1","text":"Vitamin D boosts immunity"},
				{"id":"2","text":"  "},
				{"id":"3","text":"Cold plunges reduce inflammation"},
				{"id":"4","text":"Sleep is good for memory"}
			]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	logger, _ := quietLogger()
	tw, err := NewTwitter(testClient(), srv.URL, "secret", logger)
	if err != nil {
		t.Fatalf("NewTwitter: %v", err)
	}

	posts := tw.FetchRecent(context.Background(), "@drhealth", 2)

	if gotAuth != "Bearer secret" {
		t.Errorf("Expected bearer header, got %q", gotAuth)
	}
	if !strings.Contains(gotQuery, "max_results=5") || !strings.Contains(gotQuery, "exclude=retweets%2Creplies") {
		t.Errorf("Unexpected timeline query %q", gotQuery)
	}
	want := []string{"Vitamin D boosts immunity", "Cold plunges reduce inflammation"}
	if len(posts) != len(want) {
		t.Fatalf("Expected %v, got %v", want, posts)
	}
	for i := range want {
		if posts[i] != want[i] {
			t.Errorf("Post %d: expected %q, got %q", i, want[i], posts[i])
		}
	}
}

func TestTwitter_FailureReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"title":"Unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	logger, buf := quietLogger()
	tw, err := NewTwitter(testClient(), srv.URL, "bad", logger)
	if err != nil {
		t.Fatalf("NewTwitter: %v", err)
	}

	posts := tw.FetchRecent(context.Background(), "someone", 10)
	if posts == nil || len(posts) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", posts)
	}
	if !strings.Contains(buf.String(), "twitter: lookup someone") {
		t.Errorf("Expected failure to be logged, got %q", buf.String())
	}
}

func TestTwitter_MissingToken(t *testing.T) {
	_, err := NewTwitter(testClient(), "", "", nil)
	if !errors.Is(err, model.ErrMissingCredentials) {
		t.Errorf("Expected ErrMissingCredentials, got %v", err)
	}
}

const youtubeFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns:media="http://search.yahoo.com/mrss/" xmlns="http://www.w3.org/2005/Atom">
  <title>Dr Health</title>
  <entry>
    <id>yt:video:a</id>
    <title>Fasting explained</title>
    <media:group>
      <media:title>Fasting explained</media:title>
      <media:description>Intermittent fasting improves insulin sensitivity.</media:description>
    </media:group>
  </entry>
  <entry>
    <id>yt:video:b</id>
    <title>Q and A</title>
    <media:group>
      <media:title>Q and A</media:title>
      <media:description></media:description>
    </media:group>
  </entry>
  <entry>
    <id>yt:video:c</id>
    <title>Third video</title>
  </entry>
</feed>`

func TestYouTube_FetchRecent(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, youtubeFeed)
	}))
	defer srv.Close()

	logger, _ := quietLogger()
	yt := NewYouTube(testClient(), srv.URL+"/feeds/videos.xml", logger)

	posts := yt.FetchRecent(context.Background(), "UCabcdefghijklmnopqrstuv", 2)
	if gotQuery != "channel_id=UCabcdefghijklmnopqrstuv" {
		t.Errorf("Expected channel_id query, got %q", gotQuery)
	}
	want := []string{"Intermittent fasting improves insulin sensitivity.", "Q and A"}
	if len(posts) != len(want) {
		t.Fatalf("Expected %v, got %v", want, posts)
	}
	for i := range want {
		if posts[i] != want[i] {
			t.Errorf("Post %d: expected %q, got %q", i, want[i], posts[i])
		}
	}

	yt.FetchRecent(context.Background(), "@drhealth", 1)
	if gotQuery != "user=drhealth" {
		t.Errorf("Expected user query, got %q", gotQuery)
	}
}

func TestYouTube_BadFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not a feed")
	}))
	defer srv.Close()

	logger, buf := quietLogger()
	posts := NewYouTube(testClient(), srv.URL, logger).FetchRecent(context.Background(), "x", 5)
	if len(posts) != 0 {
		t.Errorf("Expected no posts, got %v", posts)
	}
	if !strings.Contains(buf.String(), "youtube: x") {
		t.Errorf("Expected failure to be logged, got %q", buf.String())
	}
}

const podcastFeed = `<?xml version="1.0"?>
<rss version="2.0">
<channel>
  <title>Wellness Hour</title>
  <item>
    <title>Episode 12: Magnesium</title>
    <description>&lt;p&gt;Magnesium &lt;b&gt;helps&lt;/b&gt; sleep &amp;amp; recovery&lt;/p&gt;</description>
  </item>
  <item>
    <title>Episode 11</title>
  </item>
</channel>
</rss>`

func feedServer(robots string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			fmt.Fprint(w, robots)
		case "/podcast.xml", "/private/feed.xml":
			w.Header().Set("Content-Type", "application/rss+xml")
			fmt.Fprint(w, podcastFeed)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestFeed_FetchRecent(t *testing.T) {
	srv := feedServer("User-agent: *\nDisallow: /private/\n")
	defer srv.Close()

	logger, _ := quietLogger()
	robots := util.NewRobotsChecker("claimwatch/test", 5*time.Second)
	feed := NewFeed(testClient(), robots, logger)

	posts := feed.FetchRecent(context.Background(), srv.URL+"/podcast.xml", 10)
	want := []string{"Episode 12: Magnesium. Magnesium helps sleep & recovery", "Episode 11"}
	if len(posts) != len(want) {
		t.Fatalf("Expected %v, got %v", want, posts)
	}
	for i := range want {
		if posts[i] != want[i] {
			t.Errorf("Post %d: expected %q, got %q", i, want[i], posts[i])
		}
	}
}

func TestFeed_RobotsDisallowed(t *testing.T) {
	srv := feedServer("User-agent: *\nDisallow: /private/\n")
	defer srv.Close()

	logger, buf := quietLogger()
	feed := NewFeed(testClient(), util.NewRobotsChecker("claimwatch/test", 5*time.Second), logger)

	if posts := feed.FetchRecent(context.Background(), srv.URL+"/private/feed.xml", 10); len(posts) != 0 {
		t.Errorf("Expected robots.txt to block the feed, got %v", posts)
	}
	if !strings.Contains(buf.String(), "robots.txt disallows") {
		t.Errorf("Expected block to be logged, got %q", buf.String())
	}

	// Without a checker the same URL is fetched
	if posts := NewFeed(testClient(), nil, logger).FetchRecent(context.Background(), srv.URL+"/private/feed.xml", 10); len(posts) != 2 {
		t.Errorf("Expected 2 posts without robots checks, got %v", posts)
	}
}

func TestFeed_NotAURL(t *testing.T) {
	logger, _ := quietLogger()
	if posts := NewFeed(testClient(), nil, logger).FetchRecent(context.Background(), "@someone", 5); len(posts) != 0 {
		t.Errorf("Expected no posts, got %v", posts)
	}
}

func TestRegistry_Gather(t *testing.T) {
	logger, buf := quietLogger()
	r := NewRegistry(logger,
		&staticSource{name: "twitter", posts: []string{"t1", "t2", "t3"}, delay: 20 * time.Millisecond},
		&staticSource{name: "youtube", posts: []string{"y1"}},
		&staticSource{name: "broken", panic: true},
	)

	items, err := r.Gather(context.Background(), "doc", []string{"YouTube", "twitter", "broken"}, 2)
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	want := []model.RawContentItem{
		{Text: "y1", Source: "youtube:doc"},
		{Text: "t1", Source: "twitter:doc"},
		{Text: "t2", Source: "twitter:doc"},
	}
	if len(items) != len(want) {
		t.Fatalf("Expected %v, got %v", want, items)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("Item %d: expected %+v, got %+v", i, want[i], items[i])
		}
	}
	if !strings.Contains(buf.String(), "social source broken panicked") {
		t.Errorf("Expected panic to be logged, got %q", buf.String())
	}
	if got := Texts(items); got[0] != "y1" {
		t.Errorf("Texts: got %v", got)
	}
}

func TestRegistry_DefaultsAndErrors(t *testing.T) {
	r := NewRegistry(nil,
		&staticSource{name: "twitter", posts: []string{"t1"}},
		&staticSource{name: "feed", posts: []string{"f1"}},
	)

	if names := r.Names(); len(names) != 2 || names[0] != "twitter" || names[1] != "feed" {
		t.Errorf("Unexpected names %v", names)
	}

	items, err := r.Gather(context.Background(), "h", nil, 0)
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("Expected every platform to be used, got %v", items)
	}

	_, err = r.Gather(context.Background(), "h", []string{"twitter", "myspace"}, 5)
	if !errors.Is(err, model.ErrUnknownPlatform) {
		t.Errorf("Expected ErrUnknownPlatform, got %v", err)
	}
}
