package store

import (
	"context"
	"log"

	"github.com/ppiankov/claimwatch/internal/model"
)

// ClaimAnalyzer scores a single claim text
type ClaimAnalyzer interface {
	Analyze(ctx context.Context, claim string) (*model.ScoredClaim, error)
}

// SampleSource is the claim source recorded for seeded claims
const SampleSource = "Sample Data"

var sampleInfluencers = []model.Influencer{
	{Name: "HealthGuru", Platform: "Instagram", FollowerCount: 482_000, Bio: "Evidence-based nutrition advice"},
	{Name: "WellnessCoach", Platform: "YouTube", FollowerCount: 215_000, Bio: "Holistic health practitioner"},
	{Name: "NutritionExpert", Platform: "Twitter", FollowerCount: 96_000, Bio: "PhD in Nutritional Science"},
	{Name: "FitnessDoc", Platform: "Instagram", FollowerCount: 731_000, Bio: "Medical doctor & fitness expert"},
	{Name: "MindfulHealer", Platform: "YouTube", FollowerCount: 54_000, Bio: "Mental health advocate"},
}

var sampleClaims = []string{
	"Regular consumption of green tea can boost metabolism by up to 4%",
	"Intermittent fasting increases human growth hormone production by 500%",
	"Meditation for 10 minutes daily reduces cortisol levels by 25%",
	"High-intensity interval training burns 50% more calories than steady-state cardio",
	"Omega-3 supplements can improve memory function by 15%",
}

// Seed fills repo with the sample influencers, each carrying every sample claim. Each claim
// text is analyzed once; a claim whose analysis fails is skipped and logged.
func Seed(ctx context.Context, repo Repository, analyzer ClaimAnalyzer, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}

	verdicts := make(map[string]model.AnalysisVerdict, len(sampleClaims))
	for _, text := range sampleClaims {
		if err := ctx.Err(); err != nil {
			return err
		}
		scored, err := analyzer.Analyze(ctx, text)
		if err != nil {
			logger.Printf("seed: analyze %q: %v", text, err)
			continue
		}
		verdicts[text] = scored.Verdict
	}

	for _, sample := range sampleInfluencers {
		inf, err := repo.AddInfluencer(ctx, sample)
		if err != nil {
			return err
		}
		for _, text := range sampleClaims {
			v, ok := verdicts[text]
			if !ok {
				continue
			}
			if _, err := repo.AddClaim(ctx, model.NewClaim(inf.ID, text, SampleSource, v)); err != nil {
				return err
			}
		}
	}

	logger.Printf("seeded %d influencers with %d scored sample claims each", len(sampleInfluencers), len(verdicts))
	return nil
}
