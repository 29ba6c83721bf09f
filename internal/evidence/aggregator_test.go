package evidence

import (
	"context"
	"errors"
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/claimwatch/internal/model"
)

// fakeSource returns a canned result, error, panic or hang
type fakeSource struct {
	name   string
	result *SearchResult
	err    error
	panics bool
	hang   bool
	stuck  chan struct{} // when set, Search blocks on it and ignores ctx
	calls  atomic.Int32
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Search(ctx context.Context, claim string) (*SearchResult, error) {
	f.calls.Add(1)
	if f.panics {
		panic("source exploded")
	}
	if f.stuck != nil {
		<-f.stuck
		return f.result, f.err
	}
	if f.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.result, f.err
}

func studies(name string, supporting, total int) []model.EvidenceRecord {
	out := make([]model.EvidenceRecord, total)
	for i := range out {
		out[i] = model.EvidenceRecord{SourceName: name, SupportsClaim: i < supporting}
	}
	return out
}

func quiet() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestAggregator_PartialFailure(t *testing.T) {
	pubmed := &fakeSource{name: "pubmed", result: &SearchResult{Studies: studies("pubmed", 2, 2), ConfidenceScore: 80, SupportsClaim: true}}
	europepmc := &fakeSource{name: "europepmc", err: errors.New("503 service unavailable")}
	crossref := &fakeSource{name: "crossref", result: &SearchResult{Studies: studies("crossref", 1, 3), ConfidenceScore: 60}}

	agg := NewAggregator([]Source{pubmed, europepmc, crossref}, time.Second, quiet())
	res, err := agg.Validate(context.Background(), "Vitamin D improves mood", nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if res.ValidationScore != 70 {
		t.Errorf("expected mean of succeeding sources (70), got %v", res.ValidationScore)
	}
	if len(res.SupportingEvidence) != 5 {
		t.Errorf("expected 5 records from the 2 succeeding sources, got %d", len(res.SupportingEvidence))
	}
	for _, r := range res.SupportingEvidence {
		if r.SourceName == "europepmc" {
			t.Error("failed source must not contribute evidence")
		}
	}

	// 3 of 5 support: exactly 0.6
	if res.ConsensusStrength != model.ConsensusModerate {
		t.Errorf("expected Moderate Consensus, got %s", res.ConsensusStrength)
	}

	if len(res.Sources) != 3 {
		t.Fatalf("expected a report per source, got %d", len(res.Sources))
	}
	if res.Sources[0].Name != "pubmed" || res.Sources[1].Name != "europepmc" || res.Sources[2].Name != "crossref" {
		t.Errorf("expected reports in source order, got %+v", res.Sources)
	}
	if !res.Sources[1].Failed() {
		t.Error("expected europepmc to be tagged as failed")
	}
	if res.Sources[0].Failed() || res.Sources[2].Failed() {
		t.Error("expected healthy sources not to be tagged")
	}
}

func TestAggregator_PanicAndTimeoutAreIsolated(t *testing.T) {
	good := &fakeSource{name: "pubmed", result: &SearchResult{Studies: studies("pubmed", 1, 1), ConfidenceScore: 90}}
	panicky := &fakeSource{name: "europepmc", panics: true}
	slow := &fakeSource{name: "crossref", hang: true}

	agg := NewAggregator([]Source{good, panicky, slow}, 20*time.Millisecond, quiet())

	start := time.Now()
	res, err := agg.Validate(context.Background(), "claim", nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("expected the per-call timeout to bound the slow source")
	}

	if res.ValidationScore != 90 {
		t.Errorf("expected score from the single healthy source, got %v", res.ValidationScore)
	}
	if !res.Sources[1].Failed() || !res.Sources[2].Failed() {
		t.Errorf("expected panic and timeout to be tagged as failures: %+v", res.Sources)
	}
}

func TestAggregator_TimeoutBoundsSourceIgnoringContext(t *testing.T) {
	good := &fakeSource{name: "pubmed", result: &SearchResult{Studies: studies("pubmed", 1, 1), ConfidenceScore: 80}}
	stuck := &fakeSource{name: "crossref", stuck: make(chan struct{})}
	defer close(stuck.stuck)

	agg := NewAggregator([]Source{good, stuck}, 20*time.Millisecond, quiet())

	done := make(chan model.ValidationResult, 1)
	go func() {
		res, _ := agg.Validate(context.Background(), "claim", nil)
		done <- res
	}()

	select {
	case res := <-done:
		if !res.Sources[1].Failed() {
			t.Errorf("expected the stuck source to be tagged as failed: %+v", res.Sources[1])
		}
		if res.ValidationScore != 80 {
			t.Errorf("expected score from the healthy source, got %v", res.ValidationScore)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Validate did not return while a source ignored its context")
	}
}

func TestAggregator_AllFailNeutralScore(t *testing.T) {
	agg := NewAggregator([]Source{
		&fakeSource{name: "pubmed", err: errors.New("down")},
		&fakeSource{name: "crossref", err: errors.New("down")},
	}, time.Second, quiet())

	res, err := agg.Validate(context.Background(), "claim", nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.ValidationScore != NeutralScore {
		t.Errorf("expected neutral score 50, got %v", res.ValidationScore)
	}
	if res.ConsensusStrength != model.ConsensusInsufficient {
		t.Errorf("expected Insufficient Evidence, got %s", res.ConsensusStrength)
	}
	if res.SupportingEvidence == nil {
		t.Error("expected an empty, non-nil evidence list")
	}
}

func TestAggregator_NoSources(t *testing.T) {
	res, err := NewAggregator(nil, 0, quiet()).Validate(context.Background(), "claim", nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.ValidationScore != NeutralScore || res.ConsensusStrength != model.ConsensusInsufficient {
		t.Errorf("unexpected result for no sources: %+v", res)
	}
}

func TestAggregator_ExplicitSources(t *testing.T) {
	pubmed := &fakeSource{name: "pubmed", result: &SearchResult{ConfidenceScore: 40}}
	crossref := &fakeSource{name: "crossref", result: &SearchResult{ConfidenceScore: 60}}
	agg := NewAggregator([]Source{pubmed, crossref}, time.Second, quiet())

	res, err := agg.Validate(context.Background(), "claim", []string{"crossref"})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.ValidationScore != 60 {
		t.Errorf("expected only crossref to be used, got score %v", res.ValidationScore)
	}
	if pubmed.calls.Load() != 0 {
		t.Error("expected pubmed not to be called")
	}
}

func TestAggregator_UnknownSource(t *testing.T) {
	pubmed := &fakeSource{name: "pubmed", result: &SearchResult{}}
	agg := NewAggregator([]Source{pubmed}, time.Second, quiet())

	_, err := agg.Validate(context.Background(), "claim", []string{"pubmed", "lancet"})
	if !errors.Is(err, model.ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}
	if pubmed.calls.Load() != 0 {
		t.Error("expected no source to be called when a name is unknown")
	}
}

func TestAggregator_Names(t *testing.T) {
	agg := NewAggregator([]Source{&fakeSource{name: "pubmed"}, &fakeSource{name: "crossref"}}, 0, quiet())
	names := agg.Names()
	if len(names) != 2 || names[0] != "pubmed" || names[1] != "crossref" {
		t.Errorf("unexpected names %v", names)
	}
}

func TestConsensus(t *testing.T) {
	tests := []struct {
		supporting, total int
		want              model.ConsensusStrength
	}{
		{0, 0, model.ConsensusInsufficient},
		{5, 5, model.ConsensusStrong},
		{4, 5, model.ConsensusStrong},
		{3, 5, model.ConsensusModerate},
		{2, 5, model.ConsensusMixed},
		{1, 5, model.ConsensusLimited},
		{0, 5, model.ConsensusLimited},
	}

	for _, tt := range tests {
		if got := Consensus(studies("x", tt.supporting, tt.total)); got != tt.want {
			t.Errorf("Consensus(%d/%d) = %s, want %s", tt.supporting, tt.total, got, tt.want)
		}
	}
}
