package evidence

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ppiankov/claimwatch/internal/fetch"
	"github.com/ppiankov/claimwatch/internal/model"
)

// Crossref searches DOI metadata through the Crossref REST API
type Crossref struct {
	search
	mailto string
}

// NewCrossref creates a Crossref source. mailto opts into Crossref's polite pool.
func NewCrossref(client *fetch.Client, baseURL, mailto string, maxStudies int, authority *AuthorityClassifier) *Crossref {
	return &Crossref{
		search: newSearch(client, baseURL, maxStudies, authority),
		mailto: mailto,
	}
}

// Name returns "crossref"
func (c *Crossref) Name() string { return "crossref" }

type crossrefResponse struct {
	Message struct {
		TotalResults int `json:"total-results"`
		Items        []struct {
			DOI   string   `json:"DOI"`
			Title []string `json:"title"`
			URL   string   `json:"URL"`
		} `json:"items"`
	} `json:"message"`
}

// Search queries Crossref works for the claim's terms
func (c *Crossref) Search(ctx context.Context, claim string) (*SearchResult, error) {
	params := url.Values{}
	params.Set("query.bibliographic", Query(claim))
	params.Set("rows", strconv.Itoa(c.maxStudies))
	params.Set("select", "DOI,title,URL")
	if c.mailto != "" {
		params.Set("mailto", c.mailto)
	}

	var resp crossrefResponse
	if err := c.client.GetJSON(ctx, c.baseURL+"/works?"+params.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("crossref works: %w", err)
	}

	var studies []model.EvidenceRecord
	for _, item := range resp.Message.Items {
		if len(item.Title) == 0 {
			continue
		}
		link := item.URL
		if link == "" && item.DOI != "" {
			link = "https://doi.org/" + item.DOI
		}
		studies = append(studies, model.EvidenceRecord{
			Title: strings.TrimSpace(item.Title[0]),
			URL:   link,
		})
	}

	return c.result(c.Name(), claim, resp.Message.TotalResults, studies), nil
}
