package evidence

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ppiankov/claimwatch/internal/fetch"
	"github.com/ppiankov/claimwatch/internal/model"
)

// EuropePMC searches the Europe PMC REST API
type EuropePMC struct {
	search
}

// NewEuropePMC creates a Europe PMC source
func NewEuropePMC(client *fetch.Client, baseURL string, maxStudies int, authority *AuthorityClassifier) *EuropePMC {
	return &EuropePMC{search: newSearch(client, baseURL, maxStudies, authority)}
}

// Name returns "europepmc"
func (e *EuropePMC) Name() string { return "europepmc" }

type europePMCResponse struct {
	HitCount   int `json:"hitCount"`
	ResultList struct {
		Result []struct {
			ID           string `json:"id"`
			Source       string `json:"source"`
			DOI          string `json:"doi"`
			Title        string `json:"title"`
			JournalTitle string `json:"journalTitle"`
		} `json:"result"`
	} `json:"resultList"`
}

// Search queries Europe PMC for the claim's terms
func (e *EuropePMC) Search(ctx context.Context, claim string) (*SearchResult, error) {
	params := url.Values{}
	params.Set("query", Query(claim))
	params.Set("format", "json")
	params.Set("resultType", "lite")
	params.Set("pageSize", strconv.Itoa(e.maxStudies))

	var resp europePMCResponse
	if err := e.client.GetJSON(ctx, e.baseURL+"/search?"+params.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("europepmc search: %w", err)
	}

	studies := make([]model.EvidenceRecord, 0, len(resp.ResultList.Result))
	for _, r := range resp.ResultList.Result {
		link := "https://europepmc.org/article/" + r.Source + "/" + r.ID
		if r.DOI != "" {
			link = "https://doi.org/" + r.DOI
		}
		studies = append(studies, model.EvidenceRecord{Title: r.Title, URL: link})
	}

	return e.result(e.Name(), claim, resp.HitCount, studies), nil
}
