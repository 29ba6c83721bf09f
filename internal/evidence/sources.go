package evidence

import (
	"fmt"
	"time"

	"github.com/ppiankov/claimwatch/internal/cache"
	"github.com/ppiankov/claimwatch/internal/fetch"
	"github.com/ppiankov/claimwatch/internal/model"
)

// KnownSources lists every source name NewSources understands
func KnownSources() []string {
	return []string{"pubmed", "europepmc", "crossref", "sciencedirect"}
}

// NewSources builds the enabled sources in configured order, wrapping each with c when set.
// A source that needs a missing key fails with model.ErrMissingCredentials.
func NewSources(cfg model.SourcesConfig, authority model.AuthorityConfig, client *fetch.Client, c cache.Cache, ttl time.Duration) ([]Source, error) {
	ac := NewAuthorityClassifier(&authority)

	sources := make([]Source, 0, len(cfg.Enabled))
	for _, name := range cfg.Enabled {
		var src Source
		switch name {
		case "pubmed":
			src = NewPubMed(client, cfg.PubMedURL, cfg.NCBIKey, cfg.MaxStudies, ac)
		case "europepmc":
			src = NewEuropePMC(client, cfg.EuropePMCURL, cfg.MaxStudies, ac)
		case "crossref":
			src = NewCrossref(client, cfg.CrossrefURL, cfg.Mailto, cfg.MaxStudies, ac)
		case "sciencedirect":
			sd, err := NewScienceDirect(client, cfg.ElsevierURL, cfg.ElsevierKey, cfg.MaxStudies, ac)
			if err != nil {
				return nil, err
			}
			src = sd
		default:
			return nil, fmt.Errorf("%w: %q", model.ErrUnknownSource, name)
		}
		sources = append(sources, NewCached(src, c, ttl))
	}
	return sources, nil
}
