package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ppiankov/claimwatch/internal/fetch"
	"github.com/ppiankov/claimwatch/internal/model"
)

// PubMed searches MEDLINE through NCBI E-utilities (esearch + esummary)
type PubMed struct {
	search
	apiKey string
}

// NewPubMed creates a PubMed source. apiKey is optional and raises NCBI's rate limit.
func NewPubMed(client *fetch.Client, baseURL, apiKey string, maxStudies int, authority *AuthorityClassifier) *PubMed {
	return &PubMed{
		search: newSearch(client, baseURL, maxStudies, authority),
		apiKey: apiKey,
	}
}

// Name returns "pubmed"
func (p *PubMed) Name() string { return "pubmed" }

type esearchResponse struct {
	Result struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type esummaryDoc struct {
	UID     string `json:"uid"`
	Title   string `json:"title"`
	Source  string `json:"source"`
	PubDate string `json:"pubdate"`
}

// Search runs esearch for the claim's terms and fetches titles for the top hits
func (p *PubMed) Search(ctx context.Context, claim string) (*SearchResult, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", Query(claim))
	params.Set("retmode", "json")
	params.Set("retmax", strconv.Itoa(p.maxStudies))
	p.withKey(params)

	var found esearchResponse
	if err := p.client.GetJSON(ctx, p.baseURL+"/esearch.fcgi?"+params.Encode(), nil, &found); err != nil {
		return nil, fmt.Errorf("pubmed esearch: %w", err)
	}

	total, _ := strconv.Atoi(found.Result.Count)
	if len(found.Result.IDList) == 0 {
		return p.result(p.Name(), claim, total, nil), nil
	}

	params = url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(found.Result.IDList, ","))
	params.Set("retmode", "json")
	p.withKey(params)

	var summary struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := p.client.GetJSON(ctx, p.baseURL+"/esummary.fcgi?"+params.Encode(), nil, &summary); err != nil {
		return nil, fmt.Errorf("pubmed esummary: %w", err)
	}

	var studies []model.EvidenceRecord
	for _, id := range found.Result.IDList {
		raw, ok := summary.Result[id]
		if !ok {
			continue
		}
		var doc esummaryDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		studies = append(studies, model.EvidenceRecord{
			Title: strings.TrimSpace(doc.Title),
			URL:   "https://pubmed.ncbi.nlm.nih.gov/" + id + "/",
		})
	}

	return p.result(p.Name(), claim, total, studies), nil
}

func (p *PubMed) withKey(params url.Values) {
	if p.apiKey != "" {
		params.Set("api_key", p.apiKey)
	}
}
