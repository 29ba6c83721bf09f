package similarity

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ppiankov/claimwatch/internal/model"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1.0},
		{"abc", "", 0.0},
		{"abcd", "bcde", 0.75},
		{"tide", "diet", 0.25},
		{"diet", "tide", 0.5},
		{"ABC", "abc", 1.0},
		{"A increases B", "C reduces D", 0.5},
		{"Vitamin D improves mood", "vitamin d improves your mood", 46.0 / 51.0},
	}

	for _, tt := range tests {
		if got := Ratio(tt.a, tt.b); !approx(got, tt.want) {
			t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestLexical(t *testing.T) {
	cmp := NewLexical(0)
	ctx := context.Background()

	if !cmp.IsSimilar(ctx, "Coffee boosts focus", "Coffee boosts your focus") {
		t.Error("Expected near-identical claims to be similar")
	}
	if cmp.IsSimilar(ctx, "Exercise reduces stress", "Working out lowers anxiety") {
		t.Error("Expected paraphrases to be dissimilar lexically")
	}

	// Threshold is strict: identical ratio to the threshold is not similar
	strict := NewLexical(0.75)
	if strict.IsSimilar(ctx, "abcd", "bcde") {
		t.Error("Expected ratio equal to threshold to be dissimilar")
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe(context.Background(), NewLexical(0), []string{"A increases B", "A increases B", "C reduces D"})
	want := []string{"A increases B", "C reduces D"}

	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestDedupe_FirstSeenWins(t *testing.T) {
	got := Dedupe(context.Background(), NewLexical(0), []string{
		"Vitamin D improves mood",
		"Fasting is good for longevity",
		"vitamin d improves your mood",
	})

	if len(got) != 2 || got[0] != "Vitamin D improves mood" || got[1] != "Fasting is good for longevity" {
		t.Errorf("Unexpected dedupe result: %v", got)
	}
}

func TestDedupeCandidates(t *testing.T) {
	in := []model.Candidate{
		{Text: "Sleep helps recovery", Pattern: "trigger"},
		{Text: "Sleep helps recovery", Pattern: "causal"},
	}
	got := DedupeCandidates(context.Background(), NewLexical(0), in)
	if len(got) != 1 || got[0].Pattern != "trigger" {
		t.Errorf("Expected first candidate kept, got %+v", got)
	}
}

// fakeEmbedder maps known texts to fixed vectors
type fakeEmbedder struct {
	vectors map[string][]float32
	calls   atomic.Int32
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.vectors[text]
	if !ok {
		return []float32{0, 0, 1}, nil
	}
	return v, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestSemantic_UsesEmbeddings(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"exercise reduces stress":    {1, 0.1, 0},
		"working out lowers anxiety": {0.95, 0.15, 0},
		"sugar is bad for teeth":     {0, 1, 0},
	}}
	cmp := NewSemantic(func() (Embedder, error) { return emb, nil }, 0, 0, quietLogger())
	ctx := context.Background()

	if !cmp.IsSimilar(ctx, "Exercise reduces stress", "Working out lowers anxiety") {
		t.Error("Expected paraphrases to be semantically similar")
	}
	if cmp.IsSimilar(ctx, "Exercise reduces stress", "Sugar is bad for teeth") {
		t.Error("Expected unrelated claims to be dissimilar")
	}

	// Embeddings are memoised per text: 3 distinct texts
	if got := emb.calls.Load(); got != 3 {
		t.Errorf("Expected 3 embedding calls, got %d", got)
	}
}

func TestSemantic_LexicalFastPath(t *testing.T) {
	var built atomic.Int32
	cmp := NewSemantic(func() (Embedder, error) {
		built.Add(1)
		return &fakeEmbedder{}, nil
	}, 0, 0, quietLogger())

	if !cmp.IsSimilar(context.Background(), "A increases B", "A increases B") {
		t.Error("Expected identical claims to be similar")
	}
	if built.Load() != 0 {
		t.Error("Embedder must not be built when the lexical ratio decides")
	}
}

func TestSemantic_ConstructionFailureDisablesPermanently(t *testing.T) {
	var attempts atomic.Int32
	cmp := NewSemantic(func() (Embedder, error) {
		attempts.Add(1)
		return nil, errors.New("model unavailable")
	}, 0, 0, quietLogger())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if cmp.IsSimilar(ctx, "Exercise reduces stress", "Working out lowers anxiety") {
				t.Error("Expected lexical verdict when the model is unavailable")
			}
		}()
	}
	wg.Wait()

	// Lexical guarantee holds regardless of model availability
	if !cmp.IsSimilar(ctx, "Coffee boosts focus", "Coffee boosts your focus") {
		t.Error("Expected lexical fast path to still apply")
	}

	if attempts.Load() != 1 {
		t.Errorf("Expected exactly one construction attempt, got %d", attempts.Load())
	}
	if cmp.Available() {
		t.Error("Expected semantic path to be disabled")
	}
}

func TestSemantic_ConstructionPanicDisables(t *testing.T) {
	cmp := NewSemantic(func() (Embedder, error) { panic("boom") }, 0, 0, quietLogger())

	if cmp.IsSimilar(context.Background(), "Exercise reduces stress", "Working out lowers anxiety") {
		t.Error("Expected lexical verdict")
	}
	if cmp.Available() {
		t.Error("Expected semantic path to be disabled after a panic")
	}
}

func TestSemantic_EmbedErrorFallsBack(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("rate limited")}
	cmp := NewSemantic(func() (Embedder, error) { return emb, nil }, 0, 0, quietLogger())

	if cmp.IsSimilar(context.Background(), "Exercise reduces stress", "Working out lowers anxiety") {
		t.Error("Expected lexical verdict on embedding error")
	}
	if !cmp.Available() {
		t.Error("A per-call embedding error must not disable the semantic path")
	}
}

func TestCosine(t *testing.T) {
	if got := Cosine([]float32{1, 0}, []float32{1, 0}); !approx(got, 1) {
		t.Errorf("Expected 1, got %v", got)
	}
	if got := Cosine([]float32{1, 0}, []float32{0, 1}); !approx(got, 0) {
		t.Errorf("Expected 0, got %v", got)
	}
	if got := Cosine([]float32{1, 0}, []float32{1}); got != 0 {
		t.Errorf("Expected 0 for mismatched lengths, got %v", got)
	}
	if got := Cosine([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Errorf("Expected 0 for zero vector, got %v", got)
	}
}

func TestNew(t *testing.T) {
	cfg := model.DefaultConfig().Similarity

	if _, ok := New(cfg, nil, nil).(*Lexical); !ok {
		t.Error("Expected lexical comparator by default")
	}

	cfg.Mode = "semantic"
	if _, ok := New(cfg, func() (Embedder, error) { return &fakeEmbedder{}, nil }, quietLogger()).(*Semantic); !ok {
		t.Error("Expected semantic comparator")
	}
	if _, ok := New(cfg, nil, nil).(*Lexical); !ok {
		t.Error("Expected lexical comparator when no embedder factory is available")
	}
}
