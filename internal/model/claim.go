package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Category classifies the health domain of a claim
type Category string

const (
	CategoryNutrition           Category = "Nutrition"
	CategoryMedicine            Category = "Medicine"
	CategoryMentalHealth        Category = "Mental Health"
	CategoryFitness             Category = "Fitness"
	CategoryAlternativeMedicine Category = "Alternative Medicine"
	CategoryUnknown             Category = "Unknown"
)

// Categories lists the known categories in declaration order (Unknown excluded)
func Categories() []Category {
	return []Category{
		CategoryNutrition,
		CategoryMedicine,
		CategoryMentalHealth,
		CategoryFitness,
		CategoryAlternativeMedicine,
	}
}

// ParseCategory maps free text (e.g. an LLM answer) onto a Category
func ParseCategory(s string) Category {
	// "mental health", "MentalHealth" and "Mental-Health" all match
	for _, c := range Categories() {
		if normalizeLabel(string(c)) == normalizeLabel(s) {
			return c
		}
	}
	return CategoryUnknown
}

// VerificationStatus is the verdict label derived from a trust score
type VerificationStatus string

const (
	StatusVerified     VerificationStatus = "Verified"
	StatusQuestionable VerificationStatus = "Questionable"
	StatusDebunked     VerificationStatus = "Debunked"
)

// ParseStatus maps free text onto a VerificationStatus, defaulting to Questionable
func ParseStatus(s string) VerificationStatus {
	switch normalizeLabel(s) {
	case "verified":
		return StatusVerified
	case "debunked":
		return StatusDebunked
	default:
		return StatusQuestionable
	}
}

// Claim is a scored, categorized health assertion attributed to an influencer.
// Claims are built once by NewClaim and never mutated afterwards.
type Claim struct {
	ID                 string             `json:"id"`
	InfluencerID       string             `json:"influencer_id"`
	Content            string             `json:"content"`
	Category           Category           `json:"category"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	TrustScore         float64            `json:"trust_score"`
	Source             string             `json:"source"` // Where the claim came from (e.g. "Twitter Scan")
	CreatedAt          time.Time          `json:"created_at"`
}

// NewClaim builds an immutable Claim from a verdict
func NewClaim(influencerID, content, source string, v AnalysisVerdict) Claim {
	return Claim{
		ID:                 uuid.NewString(),
		InfluencerID:       influencerID,
		Content:            content,
		Category:           v.Category,
		VerificationStatus: v.VerificationStatus,
		TrustScore:         ClampScore(v.TrustScore),
		Source:             source,
		CreatedAt:          time.Now().UTC(),
	}
}

// RawContentItem is a block of text fetched from an external source
type RawContentItem struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"` // e.g. "twitter:@handle"
}

// Candidate is a text fragment that matched a claim template
type Candidate struct {
	Text    string `json:"text"`
	Pattern string `json:"pattern"`          // Name of the template that matched
	Block   int    `json:"block"`            // Index of the source text block
	Source  string `json:"source,omitempty"` // The block the fragment came from
}

// ClampScore clamps a trust score into [0,100]; NaN becomes 0
func ClampScore(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func normalizeLabel(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r >= 'a' && r <= 'z':
			out = append(out, r)
		}
	}
	return string(out)
}
