package score

import "github.com/ppiankov/claimwatch/internal/model"

// Policy holds the trust scoring knobs
type Policy struct {
	Baseline         float64 // Starting score when evidence is available
	SupportIncrement float64 // Added per supporting evidence record
	VerifiedAbove    float64 // Scores strictly above this are Verified
	DebunkedBelow    float64 // Scores strictly below this are Debunked

	// NeutralWithoutEvidence scores claims without evidence at Baseline rather than the classifier trust
	NeutralWithoutEvidence bool
}

// DefaultPolicy returns the reference policy: 50 + 10 per supporting study, Verified > 70, Debunked < 30
func DefaultPolicy() Policy {
	return Policy{
		Baseline:         50,
		SupportIncrement: 10,
		VerifiedAbove:    70,
		DebunkedBelow:    30,
	}
}

// PolicyFromConfig builds a policy from configuration, keeping defaults for unset thresholds
func PolicyFromConfig(cfg model.ScoringConfig) Policy {
	p := DefaultPolicy()
	if cfg.Baseline > 0 {
		p.Baseline = cfg.Baseline
	}
	if cfg.SupportIncrement > 0 {
		p.SupportIncrement = cfg.SupportIncrement
	}
	if cfg.VerifiedAbove > 0 {
		p.VerifiedAbove = cfg.VerifiedAbove
	}
	if cfg.DebunkedBelow > 0 {
		p.DebunkedBelow = cfg.DebunkedBelow
	}
	p.NeutralWithoutEvidence = cfg.NeutralWithoutEvidence
	return p
}

// Scorer assembles the final verdict for a claim
type Scorer struct {
	policy Policy
}

// NewScorer creates a scorer with the given policy
func NewScorer(policy Policy) *Scorer {
	return &Scorer{policy: policy}
}

// Policy returns the scorer's policy
func (s *Scorer) Policy() Policy {
	return s.policy
}

// Score combines the category, the classifier (or AI) trust and the validation result.
// With evidence the score is Baseline + SupportIncrement per supporting record; without
// evidence the classifier trust stands, or Baseline under NeutralWithoutEvidence. The
// result is always clamped to [0,100].
func (s *Scorer) Score(category model.Category, classifierTrust float64, validation model.ValidationResult) model.AnalysisVerdict {
	score := classifierTrust
	switch {
	case len(validation.SupportingEvidence) > 0:
		score = s.policy.Baseline + s.policy.SupportIncrement*float64(validation.SupportingCount())
	case s.policy.NeutralWithoutEvidence:
		score = s.policy.Baseline
	}
	score = model.ClampScore(score)

	evidence := make([]model.EvidenceRecord, len(validation.SupportingEvidence))
	copy(evidence, validation.SupportingEvidence)

	return model.AnalysisVerdict{
		Category:           category,
		VerificationStatus: s.Status(score),
		TrustScore:         score,
		ScientificEvidence: evidence,
	}
}

// Status maps a trust score to a verification status
func (s *Scorer) Status(score float64) model.VerificationStatus {
	switch {
	case score > s.policy.VerifiedAbove:
		return model.StatusVerified
	case score < s.policy.DebunkedBelow:
		return model.StatusDebunked
	default:
		return model.StatusQuestionable
	}
}
