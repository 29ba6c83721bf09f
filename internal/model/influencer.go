package model

// Influencer is a tracked social-media account
type Influencer struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Platform      string  `json:"platform"`
	Handle        string  `json:"handle,omitempty"` // Account handle or feed URL; Name when empty
	FollowerCount int     `json:"follower_count"`
	TrustScore    float64 `json:"trust_score"` // Mean trust score of the influencer's claims
	Bio           string  `json:"bio,omitempty"`
}

// Account returns the handle used to fetch the influencer's content
func (i Influencer) Account() string {
	if i.Handle != "" {
		return i.Handle
	}
	return i.Name
}

// ResearchConfig controls how influencer analyses are filtered
type ResearchConfig struct {
	DateRange      string     `json:"date_range" yaml:"date_range" mapstructure:"date_range"`
	ClaimLimit     int        `json:"claim_limit" yaml:"claim_limit" mapstructure:"claim_limit"`
	JournalSources []string   `json:"journal_sources" yaml:"journal_sources" mapstructure:"journal_sources"`
	MinTrustScore  float64    `json:"min_trust_score" yaml:"min_trust_score" mapstructure:"min_trust_score"`
	Categories     []Category `json:"categories" yaml:"categories" mapstructure:"categories"`
}

// AllowsCategory reports whether c passes the category filter (an empty filter allows everything)
func (r ResearchConfig) AllowsCategory(c Category) bool {
	return CategoryAllowed(r.Categories, c)
}

// CategoryAllowed reports whether c is in allowed, treating an empty list as "all"
func CategoryAllowed(allowed []Category, c Category) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == c {
			return true
		}
	}
	return false
}
