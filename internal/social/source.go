// Package social fetches recent public posts from influencer accounts and feeds.
// Fetch failures never surface as errors: a source that cannot answer returns no content.
package social

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/ppiankov/claimwatch/internal/model"
)

// DefaultLimit is how many posts a source returns when the caller asks for none
const DefaultLimit = 10

// Source is a social content platform
type Source interface {
	Name() string
	// FetchRecent returns up to limit recent post texts for handle, newest first.
	// It never fails; an unreachable platform yields an empty slice.
	FetchRecent(ctx context.Context, handle string, limit int) []string
}

// Registry resolves platform names to sources
type Registry struct {
	sources map[string]Source
	order   []string
	logger  *log.Logger
}

// NewRegistry creates a registry over sources, in the given order
func NewRegistry(logger *log.Logger, sources ...Source) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	r := &Registry{sources: make(map[string]Source, len(sources)), logger: logger}
	for _, s := range sources {
		if _, dup := r.sources[s.Name()]; !dup {
			r.order = append(r.order, s.Name())
		}
		r.sources[s.Name()] = s
	}
	return r
}

// Names lists the registered platforms
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Get returns the source for platform or model.ErrUnknownPlatform
func (r *Registry) Get(platform string) (Source, error) {
	s, ok := r.sources[strings.ToLower(strings.TrimSpace(platform))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownPlatform, platform)
	}
	return s, nil
}

// Gather fetches recent content for handle from each platform concurrently. No platforms
// means every registered one. Items come back grouped by platform in request order.
// An unknown platform fails the whole call before anything is fetched.
func (r *Registry) Gather(ctx context.Context, handle string, platforms []string, limit int) ([]model.RawContentItem, error) {
	if len(platforms) == 0 {
		platforms = r.order
	}

	sources := make([]Source, len(platforms))
	for i, p := range platforms {
		s, err := r.Get(p)
		if err != nil {
			return nil, err
		}
		sources[i] = s
	}

	posts := make([][]string, len(sources))
	var wg sync.WaitGroup
	for i, s := range sources {
		wg.Add(1)
		go func(idx int, src Source) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Printf("social source %s panicked: %v", src.Name(), rec)
				}
			}()
			posts[idx] = src.FetchRecent(ctx, handle, limit)
		}(i, s)
	}
	wg.Wait()

	items := []model.RawContentItem{}
	for i, texts := range posts {
		for _, t := range texts {
			items = append(items, model.RawContentItem{
				Text:   t,
				Source: sources[i].Name() + ":" + handle,
			})
		}
	}
	return items, nil
}

// Texts returns the item texts in order
func Texts(items []model.RawContentItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

var strict = bluemonday.StrictPolicy()

// plainText strips markup from feed descriptions
func plainText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(strict.Sanitize(s))), " ")
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
