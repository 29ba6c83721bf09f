package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/claimwatch/internal/model"
)

// mockAnalyzer echoes the claim back as a verdict
type mockAnalyzer struct {
	fail     map[string]bool
	panics   map[string]bool
	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	calls    atomic.Int32
}

func (m *mockAnalyzer) Analyze(ctx context.Context, claim string) (*model.ScoredClaim, error) {
	m.calls.Add(1)
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		seen := m.maxSeen.Load()
		if n <= seen || m.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.panics[claim] {
		panic("analyzer exploded")
	}
	if m.fail[claim] {
		return nil, errors.New("upstream unavailable")
	}
	return &model.ScoredClaim{Claim: claim, Verdict: model.AnalysisVerdict{TrustScore: 50}}, nil
}

func claimsN(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("claim %02d", i)
	}
	return out
}

// recordingSleep counts pauses without sleeping
type recordingSleep struct {
	mu     sync.Mutex
	pauses []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pauses = append(r.pauses, d)
	return ctx.Err()
}

func TestPartition(t *testing.T) {
	groups := Partition(25, 10)
	want := [][2]int{{0, 10}, {10, 20}, {20, 25}}

	if len(groups) != len(want) {
		t.Fatalf("expected %v, got %v", want, groups)
	}
	for i := range want {
		if groups[i] != want[i] {
			t.Errorf("group %d: expected %v, got %v", i, want[i], groups[i])
		}
	}

	if got := Partition(0, 10); len(got) != 0 {
		t.Errorf("expected no groups for empty input, got %v", got)
	}
	if got := Partition(10, 10); len(got) != 1 {
		t.Errorf("expected one full group, got %v", got)
	}
}

func TestBatchProcessor_GroupsAndOrder(t *testing.T) {
	analyzer := &mockAnalyzer{delay: 5 * time.Millisecond}
	sleeper := &recordingSleep{}
	bp := NewBatchProcessor(analyzer, 10, time.Second).WithSleep(sleeper.sleep)

	var progress []int
	bp.OnGroupDone = func(done, total int) {
		progress = append(progress, done)
		if total != 25 {
			t.Errorf("expected total 25, got %d", total)
		}
	}

	claims := claimsN(25)
	results := bp.ProcessBatch(context.Background(), claims)

	if len(results) != 25 {
		t.Fatalf("expected 25 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Claim != claims[i] {
			t.Errorf("position %d: expected %q, got %q", i, claims[i], r.Claim)
		}
		if r.Scored == nil || r.Scored.Claim != claims[i] {
			t.Errorf("position %d: verdict does not belong to its claim", i)
		}
		if wantGroup := i / 10; r.Group != wantGroup {
			t.Errorf("position %d: expected group %d, got %d", i, wantGroup, r.Group)
		}
	}

	if len(progress) != 3 || progress[0] != 10 || progress[1] != 20 || progress[2] != 25 {
		t.Errorf("expected progress 10,20,25, got %v", progress)
	}

	// Pauses between groups only, not after the last
	if len(sleeper.pauses) != 2 {
		t.Errorf("expected 2 pauses, got %d", len(sleeper.pauses))
	}
	for _, d := range sleeper.pauses {
		if d != time.Second {
			t.Errorf("expected 1s pause, got %v", d)
		}
	}

	if got := analyzer.maxSeen.Load(); got > 10 {
		t.Errorf("expected at most 10 concurrent analyses, got %d", got)
	}
	if got := analyzer.maxSeen.Load(); got < 2 {
		t.Errorf("expected group members to run concurrently, max was %d", got)
	}
}

func TestBatchProcessor_FailureIsolation(t *testing.T) {
	claims := claimsN(12)
	analyzer := &mockAnalyzer{
		fail:   map[string]bool{claims[3]: true},
		panics: map[string]bool{claims[11]: true},
	}
	bp := NewBatchProcessor(analyzer, 10, 0)

	results := bp.ProcessBatch(context.Background(), claims)
	if len(results) != 12 {
		t.Fatalf("expected 12 results, got %d", len(results))
	}

	for i, r := range results {
		switch i {
		case 3, 11:
			if r.Error == nil {
				t.Errorf("expected claim %d to fail", i)
			}
			if r.Claim != claims[i] {
				t.Errorf("failed result %d lost its claim text", i)
			}
		default:
			if r.Error != nil || r.Scored == nil {
				t.Errorf("expected claim %d to succeed, got %v", i, r.Error)
			}
		}
	}
}

func TestBatchProcessor_CancelBetweenGroups(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	analyzer := &mockAnalyzer{}

	bp := NewBatchProcessor(analyzer, 5, time.Second).WithSleep(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	})

	results := bp.ProcessBatch(ctx, claimsN(15))
	if len(results) != 15 {
		t.Fatalf("expected one result per claim, got %d", len(results))
	}

	for i := 0; i < 5; i++ {
		if results[i].Error != nil {
			t.Errorf("expected first group to complete, claim %d: %v", i, results[i].Error)
		}
	}
	for i := 5; i < 15; i++ {
		if !errors.Is(results[i].Error, context.Canceled) {
			t.Errorf("expected claim %d to be cancelled, got %v", i, results[i].Error)
		}
	}
	if got := analyzer.calls.Load(); got != 5 {
		t.Errorf("expected only the first group to run, got %d calls", got)
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	bp := NewBatchProcessor(&mockAnalyzer{}, 10, time.Second)
	if results := bp.ProcessBatch(context.Background(), nil); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestNewBatchProcessor_Defaults(t *testing.T) {
	bp := NewBatchProcessor(&mockAnalyzer{}, 0, -1)
	if bp.groupSize != DefaultGroupSize {
		t.Errorf("expected default group size, got %d", bp.groupSize)
	}
	if bp.groupDelay != DefaultGroupDelay {
		t.Errorf("expected default delay, got %v", bp.groupDelay)
	}
}

func TestReadClaimsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claims.txt")
	content := "# health claims\nVitamin C cures colds\n\n  Sugar is bad for teeth  \nVitamin C cures colds\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	claims, err := ReadClaimsFromFile(path)
	if err != nil {
		t.Fatalf("ReadClaimsFromFile: %v", err)
	}

	// Duplicates are kept: one result per input line
	want := []string{"Vitamin C cures colds", "Sugar is bad for teeth", "Vitamin C cures colds"}
	if len(claims) != len(want) {
		t.Fatalf("expected %v, got %v", want, claims)
	}
	for i := range want {
		if claims[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], claims[i])
		}
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claims.txt")
	if err := os.WriteFile(path, []byte("a\nb\nc\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	bp := NewBatchProcessor(&mockAnalyzer{}, 2, 0)
	results, err := bp.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}

	if _, err := bp.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSleepWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := sleepWithContext(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("expected cancelled sleep to return immediately")
	}
}
