// Package report renders scored claims as JSON, Markdown, DOCX and a terminal summary.
package report

import (
	"time"

	"github.com/ppiankov/claimwatch/internal/model"
	"github.com/ppiankov/claimwatch/internal/worker"
)

// Entry is one analyzed claim; exactly one of Result or Error is set
type Entry struct {
	Claim  string             `json:"claim"`
	Group  int                `json:"group"`
	Result *model.ScoredClaim `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// Failed reports whether the claim could not be analyzed
func (e Entry) Failed() bool {
	return e.Result == nil
}

// Summary aggregates the successful entries of a report
type Summary struct {
	Total         int                              `json:"total"`
	Succeeded     int                              `json:"succeeded"`
	Failed        int                              `json:"failed"`
	Fallbacks     int                              `json:"fallbacks"` // Scored by the keyword classifier
	AvgTrustScore float64                          `json:"avg_trust_score"`
	Statuses      map[model.VerificationStatus]int `json:"statuses"`
	Categories    map[model.Category]int           `json:"categories"`
	Consensus     map[model.ConsensusStrength]int  `json:"consensus"`
}

// Report is a rendered batch of claim analyses
type Report struct {
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generated_at"`
	Summary     Summary   `json:"summary"`
	Entries     []Entry   `json:"results"`
}

// New builds a report over entries
func New(title string, entries []Entry) *Report {
	if entries == nil {
		entries = []Entry{}
	}
	return &Report{
		Title:       title,
		GeneratedAt: time.Now().UTC(),
		Summary:     summarize(entries),
		Entries:     entries,
	}
}

// FromBatch converts batch processor results, keeping their order
func FromBatch(title string, results []*worker.ClaimResult) *Report {
	entries := make([]Entry, len(results))
	for i, r := range results {
		entries[i] = Entry{Claim: r.Claim, Group: r.Group, Result: r.Scored}
		if r.Error != nil {
			entries[i].Result = nil
			entries[i].Error = r.Error.Error()
		}
	}
	return New(title, entries)
}

// FromScored wraps already-scored claims (e.g. extract-and-score output)
func FromScored(title string, scored []model.ScoredClaim) *Report {
	entries := make([]Entry, len(scored))
	for i := range scored {
		entries[i] = Entry{Claim: scored[i].Claim, Result: &scored[i]}
	}
	return New(title, entries)
}

func summarize(entries []Entry) Summary {
	s := Summary{
		Total:      len(entries),
		Statuses:   make(map[model.VerificationStatus]int),
		Categories: make(map[model.Category]int),
		Consensus:  make(map[model.ConsensusStrength]int),
	}
	var sum float64
	for _, e := range entries {
		if e.Failed() {
			s.Failed++
			continue
		}
		s.Succeeded++
		v := e.Result.Verdict
		sum += v.TrustScore
		s.Statuses[v.VerificationStatus]++
		s.Categories[v.Category]++
		if c := e.Result.Validation.ConsensusStrength; c != "" {
			s.Consensus[c]++
		}
		if e.Result.Fallback {
			s.Fallbacks++
		}
	}
	if s.Succeeded > 0 {
		s.AvgTrustScore = sum / float64(s.Succeeded)
	}
	return s
}
