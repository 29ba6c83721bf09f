package store

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/ppiankov/claimwatch/internal/model"
)

// Stats summarizes the whole repository
type Stats struct {
	TotalInfluencers int                    `json:"total_influencers"`
	TotalClaims      int                    `json:"total_claims"`
	VerifiedClaims   int                    `json:"verified_claims"`
	AvgTrustScore    float64                `json:"avg_trust_score"`
	Categories       map[model.Category]int `json:"categories"`
}

// ClaimStats summarizes one set of claims
type ClaimStats struct {
	TotalClaims    int     `json:"total_claims"`
	VerifiedClaims int     `json:"verified_claims"`
	AvgTrustScore  float64 `json:"avg_trust_score"`
}

// Dashboard is the detail view of one influencer
type Dashboard struct {
	Influencer model.Influencer `json:"influencer"`
	Claims     []model.Claim    `json:"claims"`
	Stats      ClaimStats       `json:"stats"`
}

// Summarize counts claims and averages their trust (0 for no claims)
func Summarize(claims []model.Claim) ClaimStats {
	s := ClaimStats{TotalClaims: len(claims)}
	if len(claims) == 0 {
		return s
	}
	var sum float64
	for _, c := range claims {
		sum += c.TrustScore
		if c.VerificationStatus == model.StatusVerified {
			s.VerifiedClaims++
		}
	}
	s.AvgTrustScore = sum / float64(len(claims))
	return s
}

// CountCategories counts claims per category. Every category in categories is present,
// zero counts included; claims outside it are not counted.
func CountCategories(claims []model.Claim, categories []model.Category) map[model.Category]int {
	counts := make(map[model.Category]int, len(categories))
	for _, c := range categories {
		counts[c] = 0
	}
	for _, c := range claims {
		if _, ok := counts[c.Category]; ok {
			counts[c.Category]++
		}
	}
	return counts
}

// GetStats returns the repository-wide summary
func GetStats(ctx context.Context, repo Repository) (Stats, error) {
	influencers, err := repo.Influencers(ctx)
	if err != nil {
		return Stats{}, err
	}
	claims, err := repo.AllClaims(ctx)
	if err != nil {
		return Stats{}, err
	}

	summary := Summarize(claims)
	return Stats{
		TotalInfluencers: len(influencers),
		TotalClaims:      summary.TotalClaims,
		VerifiedClaims:   summary.VerifiedClaims,
		AvgTrustScore:    summary.AvgTrustScore,
		Categories:       CountCategories(claims, model.Categories()),
	}, nil
}

// Leaderboard returns influencers by trust score, highest first. Ties keep insertion order.
func Leaderboard(ctx context.Context, repo Repository) ([]model.Influencer, error) {
	influencers, err := repo.Influencers(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(influencers, func(a, b model.Influencer) int {
		return cmp.Compare(b.TrustScore, a.TrustScore)
	})
	return influencers, nil
}

// GetDashboard returns the influencer with its claims and their summary
func GetDashboard(ctx context.Context, repo Repository, id string) (Dashboard, error) {
	inf, err := repo.Influencer(ctx, id)
	if err != nil {
		return Dashboard{}, err
	}
	claims, err := repo.Claims(ctx, id)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{Influencer: inf, Claims: claims, Stats: Summarize(claims)}, nil
}

// DayCount is the number of claims recorded on one UTC day
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// Analytics is the repository-wide trend report
type Analytics struct {
	TotalClaims        int                              `json:"total_claims"`
	AvgTrustScore      float64                          `json:"avg_trust_score"`
	VerifiedPercentage float64                          `json:"verified_percentage"`
	ClaimsPerDay       float64                          `json:"claims_per_day"`
	DailyVolume        []DayCount                       `json:"daily_volume"`
	Categories         map[model.Category]int           `json:"categories"`
	Statuses           map[model.VerificationStatus]int `json:"statuses"`
	TopInfluencers     []model.Influencer               `json:"top_influencers"`
}

// topInfluencers is how many leaderboard entries the analytics report carries
const topInfluencers = 5

// GetAnalytics builds the trend report. Days without claims inside the observed range
// appear with a zero count.
func GetAnalytics(ctx context.Context, repo Repository) (Analytics, error) {
	claims, err := repo.AllClaims(ctx)
	if err != nil {
		return Analytics{}, err
	}
	leaders, err := Leaderboard(ctx, repo)
	if err != nil {
		return Analytics{}, err
	}

	summary := Summarize(claims)
	a := Analytics{
		TotalClaims:    summary.TotalClaims,
		AvgTrustScore:  summary.AvgTrustScore,
		DailyVolume:    dailyVolume(claims),
		Categories:     CountCategories(claims, model.Categories()),
		Statuses:       make(map[model.VerificationStatus]int),
		TopInfluencers: leaders[:min(len(leaders), topInfluencers)],
	}
	for _, c := range claims {
		a.Statuses[c.VerificationStatus]++
	}
	if summary.TotalClaims > 0 {
		a.VerifiedPercentage = float64(summary.VerifiedClaims) / float64(summary.TotalClaims) * 100
		a.ClaimsPerDay = float64(summary.TotalClaims) / float64(len(a.DailyVolume))
	}
	return a, nil
}

func dailyVolume(claims []model.Claim) []DayCount {
	if len(claims) == 0 {
		return []DayCount{}
	}

	counts := make(map[string]int)
	first, last := claims[0].CreatedAt.UTC(), claims[0].CreatedAt.UTC()
	for _, c := range claims {
		t := c.CreatedAt.UTC()
		counts[t.Format(time.DateOnly)]++
		if t.Before(first) {
			first = t
		}
		if t.After(last) {
			last = t
		}
	}

	var out []DayCount
	day := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)
	for !day.After(last) {
		key := day.Format(time.DateOnly)
		out = append(out, DayCount{Date: key, Count: counts[key]})
		day = day.AddDate(0, 0, 1)
	}
	return out
}
