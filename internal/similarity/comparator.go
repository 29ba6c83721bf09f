package similarity

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/claimwatch/internal/model"
)

const (
	// DefaultLexicalThreshold is the ratio above which two claims are duplicates without further checks
	DefaultLexicalThreshold = 0.8
	// DefaultSemanticThreshold is the embedding cosine above which two claims are duplicates
	DefaultSemanticThreshold = 0.85
)

// Comparator decides whether two claims are near-duplicates
type Comparator interface {
	IsSimilar(ctx context.Context, a, b string) bool
}

// Lexical compares claims by character-level ratio only
type Lexical struct {
	threshold float64
}

// NewLexical creates a lexical comparator; threshold <= 0 uses DefaultLexicalThreshold
func NewLexical(threshold float64) *Lexical {
	if threshold <= 0 {
		threshold = DefaultLexicalThreshold
	}
	return &Lexical{threshold: threshold}
}

// IsSimilar reports whether Ratio(a, b) exceeds the threshold
func (l *Lexical) IsSimilar(_ context.Context, a, b string) bool {
	return Ratio(a, b) > l.threshold
}

// New picks the comparator for the configured mode. Semantic mode without a factory degrades to lexical.
func New(cfg model.SimilarityConfig, factory EmbedderFactory, logger *log.Logger) Comparator {
	if cfg.Mode == "semantic" && factory != nil {
		return NewSemantic(factory, cfg.LexicalThreshold, cfg.SemanticThreshold, logger)
	}
	return NewLexical(cfg.LexicalThreshold)
}

// Embedder turns a sentence into a vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbedderFactory builds an Embedder; it is called at most once per Semantic comparator
type EmbedderFactory func() (Embedder, error)

// Semantic uses the lexical ratio as a fast path and falls back to embedding cosine
// similarity when the ratio is inconclusive. The embedder is constructed on first need;
// if construction fails the semantic path stays off for the life of the comparator.
type Semantic struct {
	lexical   *Lexical
	threshold float64
	factory   EmbedderFactory
	logger    *log.Logger

	once     sync.Once
	embedder Embedder
	disabled atomic.Bool

	memo *gocache.Cache
}

// NewSemantic creates a semantic comparator. Thresholds <= 0 use the defaults.
func NewSemantic(factory EmbedderFactory, lexicalThreshold, semanticThreshold float64, logger *log.Logger) *Semantic {
	if semanticThreshold <= 0 {
		semanticThreshold = DefaultSemanticThreshold
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Semantic{
		lexical:   NewLexical(lexicalThreshold),
		threshold: semanticThreshold,
		factory:   factory,
		logger:    logger,
		memo:      gocache.New(time.Hour, 10*time.Minute),
	}
}

// Available reports whether the semantic path is still usable
func (s *Semantic) Available() bool {
	return !s.disabled.Load()
}

// IsSimilar returns true when the lexical ratio is above its threshold. Otherwise it compares
// embeddings; when embeddings are unavailable or fail, the lexical verdict (false) stands.
func (s *Semantic) IsSimilar(ctx context.Context, a, b string) bool {
	if s.lexical.IsSimilar(ctx, a, b) {
		return true
	}

	embedder := s.load()
	if embedder == nil {
		return false
	}

	va, err := s.embed(ctx, embedder, a)
	if err != nil {
		return false
	}
	vb, err := s.embed(ctx, embedder, b)
	if err != nil {
		return false
	}

	return Cosine(va, vb) > s.threshold
}

func (s *Semantic) load() Embedder {
	if s.disabled.Load() {
		return nil
	}

	s.once.Do(func() {
		embedder, err := s.build()
		if err != nil {
			s.logger.Printf("semantic similarity disabled: %v", err)
			s.disabled.Store(true)
			return
		}
		s.embedder = embedder
	})

	if s.disabled.Load() {
		return nil
	}
	return s.embedder
}

func (s *Semantic) build() (e Embedder, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("embedder construction panicked: %v", r)
		}
	}()

	if s.factory == nil {
		return nil, fmt.Errorf("no embedder configured")
	}
	e, err = s.factory()
	if err == nil && e == nil {
		err = fmt.Errorf("embedder factory returned nil")
	}
	return e, err
}

func (s *Semantic) embed(ctx context.Context, embedder Embedder, text string) ([]float32, error) {
	key := strings.ToLower(strings.TrimSpace(text))
	if v, ok := s.memo.Get(key); ok {
		return v.([]float32), nil
	}

	vec, err := embedder.Embed(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	s.memo.SetDefault(key, vec)
	return vec, nil
}

// Cosine returns the cosine similarity of two vectors, or 0 when it is undefined
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
