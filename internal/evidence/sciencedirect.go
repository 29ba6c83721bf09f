package evidence

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ppiankov/claimwatch/internal/fetch"
	"github.com/ppiankov/claimwatch/internal/model"
)

// ScienceDirect searches Elsevier's ScienceDirect index; it requires an API key
type ScienceDirect struct {
	search
	apiKey string
}

// NewScienceDirect creates a ScienceDirect source or fails with model.ErrMissingCredentials
func NewScienceDirect(client *fetch.Client, baseURL, apiKey string, maxStudies int, authority *AuthorityClassifier) (*ScienceDirect, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("sciencedirect: %w (set ELSEVIER_API_KEY)", model.ErrMissingCredentials)
	}
	return &ScienceDirect{
		search: newSearch(client, baseURL, maxStudies, authority),
		apiKey: apiKey,
	}, nil
}

// Name returns "sciencedirect"
func (s *ScienceDirect) Name() string { return "sciencedirect" }

type scienceDirectResponse struct {
	SearchResults struct {
		TotalResults string `json:"opensearch:totalResults"`
		Entry        []struct {
			Title string `json:"dc:title"`
			DOI   string `json:"prism:doi"`
			Error string `json:"error"`
			Link  []struct {
				Ref  string `json:"@ref"`
				Href string `json:"@href"`
			} `json:"link"`
		} `json:"entry"`
	} `json:"search-results"`
}

// Search queries ScienceDirect for the claim's terms
func (s *ScienceDirect) Search(ctx context.Context, claim string) (*SearchResult, error) {
	params := url.Values{}
	params.Set("query", Query(claim))
	params.Set("count", strconv.Itoa(s.maxStudies))

	var resp scienceDirectResponse
	headers := map[string]string{"X-ELS-APIKey": s.apiKey}
	if err := s.client.GetJSON(ctx, s.baseURL+"/content/search/sciencedirect?"+params.Encode(), headers, &resp); err != nil {
		return nil, fmt.Errorf("sciencedirect search: %w", err)
	}

	total, _ := strconv.Atoi(resp.SearchResults.TotalResults)

	var studies []model.EvidenceRecord
	for _, e := range resp.SearchResults.Entry {
		// An empty result set comes back as a single entry carrying "Result set was empty"
		if e.Error != "" || e.Title == "" {
			continue
		}
		link := ""
		for _, l := range e.Link {
			if l.Ref == "scidir" {
				link = l.Href
				break
			}
		}
		if link == "" && e.DOI != "" {
			link = "https://doi.org/" + e.DOI
		}
		studies = append(studies, model.EvidenceRecord{Title: e.Title, URL: link})
	}

	return s.result(s.Name(), claim, total, studies), nil
}
