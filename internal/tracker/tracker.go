// Package tracker ties the repository, social sources and the scoring pipeline together:
// recording analyzed claims, scanning influencer accounts and building influencer analyses.
package tracker

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ppiankov/claimwatch/internal/model"
	"github.com/ppiankov/claimwatch/internal/social"
	"github.com/ppiankov/claimwatch/internal/store"
)

// Scorer scores claim texts
type Scorer interface {
	AnalyzeWithSources(ctx context.Context, claim string, sources []string) (*model.ScoredClaim, error)
	ExtractAndScore(ctx context.Context, rawTexts []string, minTrust float64, categories []model.Category) []model.ScoredClaim
}

// Gatherer fetches recent influencer content
type Gatherer interface {
	Gather(ctx context.Context, handle string, platforms []string, limit int) ([]model.RawContentItem, error)
}

// Claim sources recorded by the tracker
const (
	SourceAnalysis = "AI Analysis"
	scanSuffix     = " Scan"
)

// Tracker coordinates influencer operations
type Tracker struct {
	repo     store.Repository
	scorer   Scorer
	social   Gatherer
	research *store.ResearchSettings
	limit    int
	logger   *log.Logger
}

// Options configures a Tracker
type Options struct {
	Repo     store.Repository
	Scorer   Scorer
	Social   Gatherer // Optional; scans and analyses fail with ErrUnknownPlatform without it
	Research *store.ResearchSettings
	Limit    int // Posts fetched per scan
	Logger   *log.Logger
}

// New creates a tracker
func New(opts Options) *Tracker {
	t := &Tracker{
		repo:     opts.Repo,
		scorer:   opts.Scorer,
		social:   opts.Social,
		research: opts.Research,
		limit:    opts.Limit,
		logger:   opts.Logger,
	}
	if t.repo == nil {
		t.repo = store.NewMemoryRepository()
	}
	if t.research == nil {
		t.research = store.NewResearchSettings(model.DefaultConfig().Research)
	}
	if t.limit <= 0 {
		t.limit = social.DefaultLimit
	}
	if t.logger == nil {
		t.logger = log.Default()
	}
	return t
}

// Repo returns the underlying repository
func (t *Tracker) Repo() store.Repository { return t.repo }

// Research returns the runtime research settings
func (t *Tracker) Research() *store.ResearchSettings { return t.research }

// AddClaim analyzes content against the configured journal sources and records it for the influencer
func (t *Tracker) AddClaim(ctx context.Context, influencerID, content string) (model.Claim, error) {
	if _, err := t.repo.Influencer(ctx, influencerID); err != nil {
		return model.Claim{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Claim{}, fmt.Errorf("%w: empty claim", model.ErrInvalidInput)
	}

	scored, err := t.scorer.AnalyzeWithSources(ctx, content, t.research.Get().JournalSources)
	if err != nil {
		return model.Claim{}, fmt.Errorf("analyze claim: %w", err)
	}
	return t.repo.AddClaim(ctx, model.NewClaim(influencerID, content, SourceAnalysis, scored.Verdict))
}

// ScanResult is the outcome of scanning an influencer's account
type ScanResult struct {
	Message string        `json:"message"`
	Claims  []model.Claim `json:"claims"`
}

// Scan fetches the influencer's recent posts from their platform, scores each post as a
// claim and records those with a positive trust score. Posts that fail to score are skipped.
func (t *Tracker) Scan(ctx context.Context, influencerID string) (ScanResult, error) {
	inf, err := t.repo.Influencer(ctx, influencerID)
	if err != nil {
		return ScanResult{}, err
	}
	items, err := t.gather(ctx, inf)
	if err != nil {
		return ScanResult{}, err
	}

	sources := t.research.Get().JournalSources
	found := []model.Claim{}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return ScanResult{}, err
		}
		scored, err := t.scorer.AnalyzeWithSources(ctx, item.Text, sources)
		if err != nil {
			t.logger.Printf("scan %s: skipping post: %v", inf.Name, err)
			continue
		}
		if scored.Verdict.TrustScore <= 0 {
			continue
		}
		claim, err := t.repo.AddClaim(ctx, model.NewClaim(inf.ID, item.Text, inf.Platform+scanSuffix, scored.Verdict))
		if err != nil {
			return ScanResult{}, err
		}
		found = append(found, claim)
	}

	return ScanResult{
		Message: fmt.Sprintf("Found %d new claims", len(found)),
		Claims:  found,
	}, nil
}

// Summary aggregates an influencer analysis
type Summary struct {
	store.ClaimStats
	Categories map[model.Category]int `json:"categories"`
}

// Analysis is a full influencer analysis; its claims are not recorded
type Analysis struct {
	Influencer     model.Influencer `json:"influencer"`
	AnalyzedClaims []model.Claim    `json:"analyzed_claims"`
	Summary        Summary          `json:"analysis_summary"`
}

// Analyze extracts, deduplicates and scores claims from the influencer's recent content,
// keeping those that pass the research filters. A nil cfg uses the current research settings.
func (t *Tracker) Analyze(ctx context.Context, influencerID string, cfg *model.ResearchConfig) (Analysis, error) {
	inf, err := t.repo.Influencer(ctx, influencerID)
	if err != nil {
		return Analysis{}, err
	}

	research := t.research.Get()
	if cfg != nil {
		if research, err = store.NormalizeResearch(*cfg); err != nil {
			return Analysis{}, err
		}
	}

	items, err := t.gather(ctx, inf)
	if err != nil {
		return Analysis{}, err
	}

	scored := t.scorer.ExtractAndScore(ctx, social.Texts(items), research.MinTrustScore, research.Categories)
	if research.ClaimLimit > 0 && len(scored) > research.ClaimLimit {
		scored = scored[:research.ClaimLimit]
	}

	claims := make([]model.Claim, len(scored))
	for i, s := range scored {
		claims[i] = model.NewClaim(inf.ID, s.Claim, inf.Platform, s.Verdict)
	}

	categories := research.Categories
	if len(categories) == 0 {
		categories = model.Categories()
	}
	return Analysis{
		Influencer:     inf,
		AnalyzedClaims: claims,
		Summary: Summary{
			ClaimStats: store.Summarize(claims),
			Categories: store.CountCategories(claims, categories),
		},
	}, nil
}

func (t *Tracker) gather(ctx context.Context, inf model.Influencer) ([]model.RawContentItem, error) {
	if t.social == nil {
		return nil, fmt.Errorf("%w: %q (no social sources configured)", model.ErrUnknownPlatform, inf.Platform)
	}
	return t.social.Gather(ctx, inf.Account(), []string{inf.Platform}, t.limit)
}
