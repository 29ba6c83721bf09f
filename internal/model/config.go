package model

import "time"

// Config is the complete claimwatch configuration
type Config struct {
	HTTP         HTTPConfig       `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Batch        BatchConfig      `yaml:"batch" mapstructure:"batch"`
	AI           AIConfig         `yaml:"ai" mapstructure:"ai"`
	Similarity   SimilarityConfig `yaml:"similarity" mapstructure:"similarity"`
	Sources      SourcesConfig    `yaml:"sources" mapstructure:"sources"`
	Social       SocialConfig     `yaml:"social" mapstructure:"social"`
	Scoring      ScoringConfig    `yaml:"scoring" mapstructure:"scoring"`
	Server       ServerConfig     `yaml:"server" mapstructure:"server"`
	Research     ResearchConfig   `yaml:"research" mapstructure:"research"`
	RateLimiting RateLimitConfig  `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Authority    AuthorityConfig  `yaml:"authority" mapstructure:"authority"`
}

// HTTPConfig configures outbound HTTP for every external adapter
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxRetries   int           `yaml:"max_retries" mapstructure:"max_retries"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig selects the cache backend for AI analyses and evidence searches
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Backend   string        `yaml:"backend" mapstructure:"backend"` // memory, layered, redis
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir" mapstructure:"disk_dir"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
	RedisURL  string        `yaml:"redis_url,omitempty" mapstructure:"redis_url"`
}

// BatchConfig controls the batch orchestrator
type BatchConfig struct {
	GroupSize  int           `yaml:"group_size" mapstructure:"group_size"`
	GroupDelay time.Duration `yaml:"group_delay" mapstructure:"group_delay"`
	Workers    int           `yaml:"workers" mapstructure:"workers"` // Concurrency for extract-and-score
}

// AIConfig configures the AI scoring service
type AIConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // perplexity, openai, anthropic, ollama, "" (disabled)
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SimilarityConfig configures claim deduplication
type SimilarityConfig struct {
	Mode              string  `yaml:"mode" mapstructure:"mode"` // lexical, semantic
	LexicalThreshold  float64 `yaml:"lexical_threshold" mapstructure:"lexical_threshold"`
	SemanticThreshold float64 `yaml:"semantic_threshold" mapstructure:"semantic_threshold"`
	EmbeddingProvider string  `yaml:"embedding_provider" mapstructure:"embedding_provider"` // openai, ollama
	EmbeddingModel    string  `yaml:"embedding_model" mapstructure:"embedding_model"`
	APIKey            string  `yaml:"-" mapstructure:"api_key"`
	BaseURL           string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
}

// SourcesConfig configures the journal/evidence validator sources
type SourcesConfig struct {
	Enabled      []string      `yaml:"enabled" mapstructure:"enabled"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"` // Per validator call
	MaxStudies   int           `yaml:"max_studies" mapstructure:"max_studies"`
	Mailto       string        `yaml:"mailto,omitempty" mapstructure:"mailto"` // Crossref polite pool contact
	NCBIKey      string        `yaml:"-" mapstructure:"ncbi_key"`
	ElsevierKey  string        `yaml:"-" mapstructure:"elsevier_key"`
	PubMedURL    string        `yaml:"pubmed_url" mapstructure:"pubmed_url"`
	EuropePMCURL string        `yaml:"europepmc_url" mapstructure:"europepmc_url"`
	CrossrefURL  string        `yaml:"crossref_url" mapstructure:"crossref_url"`
	ElsevierURL  string        `yaml:"elsevier_url" mapstructure:"elsevier_url"`
}

// SocialConfig configures social content sources
type SocialConfig struct {
	Platforms     []string `yaml:"platforms" mapstructure:"platforms"`
	Limit         int      `yaml:"limit" mapstructure:"limit"`
	TwitterToken  string   `yaml:"-" mapstructure:"twitter_token"`
	TwitterURL    string   `yaml:"twitter_url" mapstructure:"twitter_url"`
	YouTubeURL    string   `yaml:"youtube_url" mapstructure:"youtube_url"`
	RespectRobots bool     `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// ScoringConfig holds the trust scoring policy knobs
type ScoringConfig struct {
	Baseline           float64 `yaml:"baseline" mapstructure:"baseline"`
	SupportIncrement   float64 `yaml:"support_increment" mapstructure:"support_increment"`
	VerifiedAbove      float64 `yaml:"verified_above" mapstructure:"verified_above"`
	DebunkedBelow      float64 `yaml:"debunked_below" mapstructure:"debunked_below"`
	ClassifierBaseline float64 `yaml:"classifier_baseline" mapstructure:"classifier_baseline"`
	// NeutralWithoutEvidence scores claims with no evidence at Baseline instead of the classifier trust
	NeutralWithoutEvidence bool `yaml:"neutral_without_evidence" mapstructure:"neutral_without_evidence"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr         string   `yaml:"addr" mapstructure:"addr"`
	AllowOrigins []string `yaml:"allow_origins" mapstructure:"allow_origins"`
	SeedSamples  bool     `yaml:"seed_samples" mapstructure:"seed_samples"`
}

// RateLimitConfig limits outbound requests per host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// AuthorityConfig drives publisher authority classification of evidence URLs
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "claimwatch/0.3 (+https://github.com/ppiankov/claimwatch)",
			MaxBodyBytes: 2_000_000,
			MaxRetries:   3,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Backend:   "memory",
			MemoryTTL: 1 * time.Hour,
			DiskDir:   ".claimwatch-cache",
			DiskTTL:   24 * time.Hour,
		},
		Batch: BatchConfig{
			GroupSize:  10,
			GroupDelay: 1 * time.Second,
			Workers:    4,
		},
		AI: AIConfig{
			Provider:  "perplexity",
			Model:     "sonar",
			Timeout:   30,
			MaxTokens: 800,
		},
		Similarity: SimilarityConfig{
			Mode:              "lexical",
			LexicalThreshold:  0.8,
			SemanticThreshold: 0.85,
			EmbeddingProvider: "openai",
			EmbeddingModel:    "text-embedding-3-small",
		},
		Sources: SourcesConfig{
			Enabled:      []string{"pubmed", "europepmc", "crossref"},
			Timeout:      30 * time.Second,
			MaxStudies:   5,
			PubMedURL:    "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
			EuropePMCURL: "https://www.ebi.ac.uk/europepmc/webservices/rest",
			CrossrefURL:  "https://api.crossref.org",
			ElsevierURL:  "https://api.elsevier.com",
		},
		Social: SocialConfig{
			Platforms:     []string{"twitter", "youtube", "feed"},
			Limit:         10,
			TwitterURL:    "https://api.twitter.com/2",
			YouTubeURL:    "https://www.youtube.com/feeds/videos.xml",
			RespectRobots: true,
		},
		Scoring: ScoringConfig{
			Baseline:           50,
			SupportIncrement:   10,
			VerifiedAbove:      70,
			DebunkedBelow:      30,
			ClassifierBaseline: 70,
		},
		Server: ServerConfig{
			Addr:         ":8000",
			AllowOrigins: []string{"*"},
			SeedSamples:  true,
		},
		Research: ResearchConfig{
			DateRange:      "30d",
			ClaimLimit:     100,
			JournalSources: []string{"pubmed", "europepmc", "crossref"},
			MinTrustScore:  60,
			Categories:     Categories(),
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 3,
			BurstSize:         5,
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"ncbi.nlm.nih.gov", "nih.gov", "who.int", "cdc.gov", "cochranelibrary.com",
				"thelancet.com", "nejm.org", "bmj.com", "jamanetwork.com", "nature.com",
				"sciencedirect.com", "doi.org",
			},
			SecondaryDomains: []string{
				"europepmc.org", "medrxiv.org", "biorxiv.org", "mayoclinic.org",
				"health.harvard.edu", "nhs.uk", "webmd.com",
			},
		},
	}
}
