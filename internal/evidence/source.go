// Package evidence searches medical literature for a claim and aggregates the answers.
package evidence

import (
	"context"
	"strings"

	"github.com/ppiankov/claimwatch/internal/fetch"
	"github.com/ppiankov/claimwatch/internal/model"
)

// SearchResult is one source's answer for a claim
type SearchResult struct {
	Studies         []model.EvidenceRecord `json:"studies"`
	ConfidenceScore float64                `json:"confidence_score"`
	SupportsClaim   bool                   `json:"supports_claim"`
	TotalHits       int                    `json:"total_hits"`
}

// Source is an independently callable, independently fallible literature search
type Source interface {
	Name() string
	Search(ctx context.Context, claim string) (*SearchResult, error)
}

// search holds what every HTTP-backed source shares
type search struct {
	client     *fetch.Client
	baseURL    string
	maxStudies int
	authority  *AuthorityClassifier
}

func newSearch(client *fetch.Client, baseURL string, maxStudies int, authority *AuthorityClassifier) search {
	if maxStudies <= 0 {
		maxStudies = 5
	}
	if authority == nil {
		authority = NewAuthorityClassifier(nil)
	}
	return search{
		client:     client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxStudies: maxStudies,
		authority:  authority,
	}
}

// result classifies the raw studies for claim and scores the answer
func (s search) result(name, claim string, totalHits int, studies []model.EvidenceRecord) *SearchResult {
	if len(studies) > s.maxStudies {
		studies = studies[:s.maxStudies]
	}
	for i := range studies {
		studies[i].SourceName = name
		studies[i].SupportsClaim = Supports(claim, studies[i].Title)
		studies[i].Authority = s.authority.Classify(studies[i].URL)
	}

	confidence := Confidence(totalHits, studies)
	for i := range studies {
		studies[i].ConfidenceScore = confidence
	}

	return &SearchResult{
		Studies:         studies,
		ConfidenceScore: confidence,
		SupportsClaim:   majoritySupports(studies),
		TotalHits:       totalHits,
	}
}
