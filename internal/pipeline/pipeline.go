// Package pipeline wires extraction, deduplication, AI scoring, evidence validation and
// trust scoring into the per-claim and per-text operations the CLI and API expose.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/claimwatch/internal/classify"
	"github.com/ppiankov/claimwatch/internal/extract"
	"github.com/ppiankov/claimwatch/internal/model"
	"github.com/ppiankov/claimwatch/internal/score"
	"github.com/ppiankov/claimwatch/internal/similarity"
	"github.com/ppiankov/claimwatch/internal/worker"
)

// AIScorer is the AI scoring service. llm.Provider satisfies it.
type AIScorer interface {
	Name() string
	Analyze(ctx context.Context, claim string) (*model.Analysis, error)
}

// Validator gathers journal evidence for a claim. evidence.Aggregator satisfies it.
type Validator interface {
	Validate(ctx context.Context, claim string, sources []string) (model.ValidationResult, error)
}

var errAIDisabled = errors.New("AI scoring disabled")

// Options configures a Pipeline. Nil AI or Validator disables that stage.
type Options struct {
	Extractor  *extract.ClaimExtractor
	Classifier *classify.Classifier
	AI         AIScorer
	Validator  Validator
	Comparator similarity.Comparator
	Scorer     *score.Scorer
	Workers    int // Concurrency for ExtractAndScore
	Logger     *log.Logger
}

// Pipeline orchestrates the claim scoring chain
type Pipeline struct {
	extractor  *extract.ClaimExtractor
	classifier *classify.Classifier
	ai         AIScorer
	validator  Validator
	comparator similarity.Comparator
	scorer     *score.Scorer
	workers    int
	logger     *log.Logger
	now        func() time.Time
}

// New creates a pipeline, filling unset options with the reference components
func New(opts Options) *Pipeline {
	p := &Pipeline{
		extractor:  opts.Extractor,
		classifier: opts.Classifier,
		ai:         opts.AI,
		validator:  opts.Validator,
		comparator: opts.Comparator,
		scorer:     opts.Scorer,
		workers:    opts.Workers,
		logger:     opts.Logger,
		now:        func() time.Time { return time.Now().UTC() },
	}

	if p.extractor == nil {
		p.extractor = extract.NewClaimExtractor()
	}
	if p.classifier == nil {
		p.classifier = classify.NewReference()
	}
	if p.comparator == nil {
		p.comparator = similarity.NewLexical(similarity.DefaultLexicalThreshold)
	}
	if p.scorer == nil {
		p.scorer = score.NewScorer(score.DefaultPolicy())
	}
	if p.workers <= 0 {
		p.workers = 4
	}
	if p.logger == nil {
		p.logger = log.Default()
	}
	return p
}

// AIName returns the AI provider name, or "" when AI scoring is disabled
func (p *Pipeline) AIName() string {
	if p.ai == nil {
		return ""
	}
	return p.ai.Name()
}

// Analyze scores one claim against every configured evidence source
func (p *Pipeline) Analyze(ctx context.Context, claim string) (*model.ScoredClaim, error) {
	return p.AnalyzeWithSources(ctx, claim, nil)
}

// AnalyzeWithSources scores one claim. The AI judgment and the evidence search run
// concurrently. An AI failure falls back to the keyword classifier; evidence source
// failures only lower the validation quality. The only errors are invalid input and
// an unknown source name.
func (p *Pipeline) AnalyzeWithSources(ctx context.Context, claim string, sources []string) (*model.ScoredClaim, error) {
	claim = strings.TrimSpace(claim)
	if claim == "" {
		return nil, fmt.Errorf("empty claim: %w", model.ErrInvalidInput)
	}

	var (
		wg         sync.WaitGroup
		ai         model.Outcome[*model.Analysis]
		validation model.ValidationResult
		valErr     error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		ai = p.askAI(ctx, claim)
	}()
	go func() {
		defer wg.Done()
		validation, valErr = p.validate(ctx, claim, sources)
	}()
	wg.Wait()

	if valErr != nil {
		return nil, valErr
	}

	category, trust, fallback := p.judge(claim, ai)
	verdict := p.scorer.Score(category, trust, validation)

	return &model.ScoredClaim{
		Claim:      claim,
		Verdict:    verdict,
		Validation: validation,
		Fallback:   fallback,
		ScoredAt:   p.now(),
	}, nil
}

func (p *Pipeline) askAI(ctx context.Context, claim string) model.Outcome[*model.Analysis] {
	if p.ai == nil {
		return model.Failure[*model.Analysis](errAIDisabled)
	}
	return model.Capture(func() (*model.Analysis, error) {
		a, err := p.ai.Analyze(ctx, claim)
		if err == nil && a == nil {
			err = errors.New("empty analysis")
		}
		return a, err
	})
}

func (p *Pipeline) validate(ctx context.Context, claim string, sources []string) (model.ValidationResult, error) {
	if p.validator == nil {
		return model.ValidationResult{
			ValidationScore:    50,
			ConsensusStrength:  model.ConsensusInsufficient,
			SupportingEvidence: []model.EvidenceRecord{},
		}, nil
	}
	return p.validator.Validate(ctx, claim, sources)
}

// judge picks the category and pre-evidence trust from the AI outcome or the classifier
func (p *Pipeline) judge(claim string, ai model.Outcome[*model.Analysis]) (model.Category, float64, bool) {
	if ai.OK() {
		return ai.Value.Category, ai.Value.TrustScore, false
	}

	if !errors.Is(ai.Err, errAIDisabled) {
		p.logger.Printf("AI analysis failed, using keyword classifier: %s", ai.Reason())
	}
	c := p.classifier.Classify(claim)
	return c.Category, c.BaselineTrust, true
}

// ExtractAndScore extracts candidate claims from raw texts, removes near-duplicates, scores
// the survivors concurrently and keeps those with trust >= minTrust in an allowed category
// (an empty category list allows all). Output follows extraction order. Claims whose
// scoring fails are logged and dropped.
func (p *Pipeline) ExtractAndScore(ctx context.Context, rawTexts []string, minTrust float64, categories []model.Category) []model.ScoredClaim {
	candidates := extract.Collect(p.extractor.Extract(rawTexts))
	unique := similarity.DedupeCandidates(ctx, p.comparator, candidates)
	if len(unique) == 0 {
		return []model.ScoredClaim{}
	}

	jobs := make([]worker.Job, len(unique))
	for i, c := range unique {
		jobs[i] = &candidateJob{pipeline: p, candidate: c}
	}
	results := worker.Run(ctx, p.workers, jobs)

	out := make([]model.ScoredClaim, 0, len(results))
	for i, r := range results {
		if err := r.GetError(); err != nil {
			p.logger.Printf("scoring %q failed: %v", unique[i].Text, err)
			continue
		}
		scored := r.(*candidateResult).scored
		if scored.Verdict.TrustScore < minTrust {
			continue
		}
		if !model.CategoryAllowed(categories, scored.Verdict.Category) {
			continue
		}
		out = append(out, *scored)
	}
	return out
}

type candidateJob struct {
	pipeline  *Pipeline
	candidate model.Candidate
}

func (j *candidateJob) Execute(ctx context.Context) worker.Result {
	scored, err := j.pipeline.Analyze(ctx, j.candidate.Text)
	if err == nil {
		scored.Pattern = j.candidate.Pattern
	}
	return &candidateResult{scored: scored, err: err}
}

type candidateResult struct {
	scored *model.ScoredClaim
	err    error
}

func (r *candidateResult) GetError() error {
	return r.err
}
