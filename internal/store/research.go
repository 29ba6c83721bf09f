package store

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/claimwatch/internal/model"
)

var dateRangePattern = regexp.MustCompile(`^(\d+)([hdw])$`)

// ResearchSettings holds the research configuration, replaceable at runtime
type ResearchSettings struct {
	mu  sync.RWMutex
	cfg model.ResearchConfig
}

// NewResearchSettings creates settings holding cfg. An invalid cfg is replaced by the defaults.
func NewResearchSettings(cfg model.ResearchConfig) *ResearchSettings {
	valid, err := NormalizeResearch(cfg)
	if err != nil {
		valid = model.DefaultConfig().Research
	}
	return &ResearchSettings{cfg: valid}
}

// Get returns a copy of the current configuration
func (s *ResearchSettings) Get() model.ResearchConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneResearch(s.cfg)
}

// Set validates and replaces the configuration, returning the stored form
func (s *ResearchSettings) Set(cfg model.ResearchConfig) (model.ResearchConfig, error) {
	valid, err := NormalizeResearch(cfg)
	if err != nil {
		return model.ResearchConfig{}, err
	}
	s.mu.Lock()
	s.cfg = valid
	s.mu.Unlock()
	return cloneResearch(valid), nil
}

// NormalizeResearch validates cfg and canonicalizes its labels: categories are matched
// loosely ("mental health"), journal sources lowercased.
func NormalizeResearch(cfg model.ResearchConfig) (model.ResearchConfig, error) {
	cfg.DateRange = strings.ToLower(strings.TrimSpace(cfg.DateRange))
	if cfg.DateRange == "" {
		cfg.DateRange = "all"
	}
	if _, err := DateRangeWindow(cfg.DateRange); err != nil {
		return model.ResearchConfig{}, err
	}
	if cfg.ClaimLimit < 0 {
		return model.ResearchConfig{}, fmt.Errorf("%w: claim_limit must not be negative", model.ErrInvalidInput)
	}
	if cfg.MinTrustScore < 0 || cfg.MinTrustScore > 100 {
		return model.ResearchConfig{}, fmt.Errorf("%w: min_trust_score must be within 0..100", model.ErrInvalidInput)
	}

	sources := make([]string, 0, len(cfg.JournalSources))
	for _, s := range cfg.JournalSources {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			sources = append(sources, s)
		}
	}
	cfg.JournalSources = sources

	categories := make([]model.Category, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		parsed := model.ParseCategory(string(c))
		if parsed == model.CategoryUnknown {
			return model.ResearchConfig{}, fmt.Errorf("%w: unknown category %q", model.ErrInvalidInput, c)
		}
		categories = append(categories, parsed)
	}
	cfg.Categories = categories
	return cfg, nil
}

// DateRangeWindow parses "24h", "7d", "2w" or "all". "all" yields 0.
func DateRangeWindow(r string) (time.Duration, error) {
	if r == "all" {
		return 0, nil
	}
	m := dateRangePattern.FindStringSubmatch(r)
	if m == nil {
		return 0, fmt.Errorf("%w: date_range %q (want e.g. 24h, 30d, 2w or all)", model.ErrInvalidInput, r)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: date_range %q", model.ErrInvalidInput, r)
	}
	unit := time.Hour
	switch m[2] {
	case "d":
		unit = 24 * time.Hour
	case "w":
		unit = 7 * 24 * time.Hour
	}
	return time.Duration(n) * unit, nil
}

// WithinRange keeps the claims created inside the date range ending at now
func WithinRange(claims []model.Claim, dateRange string, now time.Time) []model.Claim {
	window, err := DateRangeWindow(dateRange)
	if err != nil || window == 0 {
		return claims
	}
	cutoff := now.Add(-window)
	out := make([]model.Claim, 0, len(claims))
	for _, c := range claims {
		if !c.CreatedAt.Before(cutoff) {
			out = append(out, c)
		}
	}
	return out
}

func cloneResearch(cfg model.ResearchConfig) model.ResearchConfig {
	cfg.JournalSources = append([]string{}, cfg.JournalSources...)
	cfg.Categories = append([]model.Category{}, cfg.Categories...)
	return cfg
}
