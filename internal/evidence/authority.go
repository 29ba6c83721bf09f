package evidence

import (
	"net/url"
	"strings"

	"github.com/ppiankov/claimwatch/internal/model"
)

// AuthorityClassifier assigns publisher authority tiers to study URLs
type AuthorityClassifier struct {
	domainMap map[string]model.AuthorityTier
	primary   []string
	secondary []string
}

// NewAuthorityClassifier creates a classifier from config; nil uses the defaults
func NewAuthorityClassifier(config *model.AuthorityConfig) *AuthorityClassifier {
	if config == nil {
		config = &model.DefaultConfig().Authority
	}

	a := &AuthorityClassifier{
		domainMap: make(map[string]model.AuthorityTier, len(config.DomainMap)),
		primary:   lowerAll(config.PrimaryDomains),
		secondary: lowerAll(config.SecondaryDomains),
	}
	for host, tier := range config.DomainMap {
		a.domainMap[strings.ToLower(host)] = parseTier(tier)
	}
	return a
}

// Classify returns the tier for rawURL. Explicit mappings win, then primary and secondary
// domain suffixes, then .gov/.edu/.ac.uk hosts; everything else is tertiary.
func (a *AuthorityClassifier) Classify(rawURL string) model.AuthorityTier {
	if rawURL == "" {
		return model.TierUnknown
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return model.TierTertiary
	}
	host := strings.ToLower(parsed.Hostname())

	if tier, ok := a.domainMap[host]; ok {
		return tier
	}
	if matchesDomain(host, a.primary) {
		return model.TierPrimary
	}
	if matchesDomain(host, a.secondary) {
		return model.TierSecondary
	}
	for _, suffix := range []string{".gov", ".edu", ".ac.uk"} {
		if strings.HasSuffix(host, suffix) {
			return model.TierPrimary
		}
	}
	return model.TierTertiary
}

func matchesDomain(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func parseTier(tier string) model.AuthorityTier {
	switch strings.ToLower(tier) {
	case "primary", "1":
		return model.TierPrimary
	case "secondary", "2":
		return model.TierSecondary
	default:
		return model.TierTertiary
	}
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
