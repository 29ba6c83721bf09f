package evidence

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ppiankov/claimwatch/internal/model"
)

const (
	// DefaultTimeout bounds each source call
	DefaultTimeout = 30 * time.Second
	// NeutralScore is the validation score when no source answered
	NeutralScore = 50.0
)

// Aggregator fans a claim out to its sources and reduces the answers to one judgment
type Aggregator struct {
	sources []Source
	byName  map[string]Source
	timeout time.Duration
	logger  *log.Logger
}

// NewAggregator creates an aggregator over sources (in reporting order)
func NewAggregator(sources []Source, timeout time.Duration, logger *log.Logger) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.Default()
	}

	byName := make(map[string]Source, len(sources))
	for _, s := range sources {
		byName[s.Name()] = s
	}
	return &Aggregator{
		sources: sources,
		byName:  byName,
		timeout: timeout,
		logger:  logger,
	}
}

// Names lists the configured sources
func (a *Aggregator) Names() []string {
	names := make([]string, len(a.sources))
	for i, s := range a.sources {
		names[i] = s.Name()
	}
	return names
}

// Resolve maps names to sources; no names means every configured source
func (a *Aggregator) Resolve(names []string) ([]Source, error) {
	if len(names) == 0 {
		return a.sources, nil
	}

	out := make([]Source, 0, len(names))
	for _, n := range names {
		s, ok := a.byName[n]
		if !ok {
			return nil, fmt.Errorf("%w: %q", model.ErrUnknownSource, n)
		}
		out = append(out, s)
	}
	return out, nil
}

// Validate searches every requested source concurrently. A failing, panicking or timed-out
// source is tagged in Sources and excluded from the score; it never fails the call.
// The only error is model.ErrUnknownSource for a bad name, returned before any search starts.
func (a *Aggregator) Validate(ctx context.Context, claim string, names []string) (model.ValidationResult, error) {
	sources, err := a.Resolve(names)
	if err != nil {
		return model.ValidationResult{}, err
	}

	outcomes := make([]model.Outcome[*SearchResult], len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			outcomes[idx] = a.call(ctx, s, claim)
		}(i, src)
	}
	wg.Wait()

	return a.reduce(sources, outcomes), nil
}

func (a *Aggregator) call(ctx context.Context, s Source, claim string) model.Outcome[*SearchResult] {
	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	// Buffered so a source that ignores its context can finish after we stop waiting
	done := make(chan model.Outcome[*SearchResult], 1)
	go func() {
		done <- model.Capture(func() (*SearchResult, error) {
			res, err := s.Search(cctx, claim)
			if err == nil && res == nil {
				err = errors.New("source returned no result")
			}
			return res, err
		})
	}()

	var out model.Outcome[*SearchResult]
	select {
	case out = <-done:
	case <-cctx.Done():
		out = model.Failure[*SearchResult](fmt.Errorf("search abandoned: %w", cctx.Err()))
	}
	if !out.OK() {
		a.logger.Printf("evidence source %s failed: %s", s.Name(), out.Reason())
	}
	return out
}

func (a *Aggregator) reduce(sources []Source, outcomes []model.Outcome[*SearchResult]) model.ValidationResult {
	result := model.ValidationResult{
		SupportingEvidence: []model.EvidenceRecord{},
		Sources:            make([]model.SourceReport, len(sources)),
	}

	var confidenceSum float64
	succeeded := 0
	for i, out := range outcomes {
		report := model.SourceReport{Name: sources[i].Name()}
		if !out.OK() {
			report.Error = out.Reason()
			result.Sources[i] = report
			continue
		}

		res := out.Value
		report.ConfidenceScore = res.ConfidenceScore
		report.SupportsClaim = res.SupportsClaim
		report.Studies = res.Studies
		result.Sources[i] = report

		confidenceSum += res.ConfidenceScore
		succeeded++
		result.SupportingEvidence = append(result.SupportingEvidence, res.Studies...)
	}

	result.ValidationScore = NeutralScore
	if succeeded > 0 {
		result.ValidationScore = model.ClampScore(confidenceSum / float64(succeeded))
	}
	result.ConsensusStrength = Consensus(result.SupportingEvidence)
	return result
}

// Consensus labels agreement by the share of records supporting the claim
func Consensus(records []model.EvidenceRecord) model.ConsensusStrength {
	if len(records) == 0 {
		return model.ConsensusInsufficient
	}

	supporting := 0
	for _, r := range records {
		if r.SupportsClaim {
			supporting++
		}
	}
	ratio := float64(supporting) / float64(len(records))

	switch {
	case ratio >= 0.8:
		return model.ConsensusStrong
	case ratio >= 0.6:
		return model.ConsensusModerate
	case ratio >= 0.4:
		return model.ConsensusMixed
	default:
		return model.ConsensusLimited
	}
}
