package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/claimwatch/internal/model"
)

const (
	// DefaultGroupSize is how many claims run concurrently per group
	DefaultGroupSize = 10
	// DefaultGroupDelay is the pause between groups
	DefaultGroupDelay = time.Second
)

// Analyzer runs the full per-claim pipeline (scoring and evidence validation)
type Analyzer interface {
	Analyze(ctx context.Context, claim string) (*model.ScoredClaim, error)
}

// ClaimJob analyzes a single claim
type ClaimJob struct {
	Claim    string
	Group    int
	Analyzer Analyzer
}

// Execute runs the analyzer, converting errors and panics into a failed ClaimResult
func (j *ClaimJob) Execute(ctx context.Context) Result {
	out := model.Capture(func() (*model.ScoredClaim, error) {
		return j.Analyzer.Analyze(ctx, j.Claim)
	})
	return &ClaimResult{
		Claim:  j.Claim,
		Group:  j.Group,
		Scored: out.Value,
		Error:  out.Err,
	}
}

// ClaimResult is the outcome of analyzing one claim in a batch
type ClaimResult struct {
	Claim  string
	Group  int
	Scored *model.ScoredClaim
	Error  error
}

// GetError returns the claim's failure, if any
func (r *ClaimResult) GetError() error {
	return r.Error
}

// SleepFunc pauses between groups; it must return early with ctx.Err() when ctx ends
type SleepFunc func(ctx context.Context, d time.Duration) error

// BatchProcessor runs claims in fixed-size groups. Members of a group run concurrently;
// groups run strictly one after another with a pause in between.
type BatchProcessor struct {
	analyzer   Analyzer
	groupSize  int
	groupDelay time.Duration
	sleep      SleepFunc

	// OnGroupDone, when set, is called after each group with the number of claims finished so far
	OnGroupDone func(done, total int)
}

// NewBatchProcessor creates a batch processor; groupSize <= 0 uses DefaultGroupSize
// and a negative delay uses DefaultGroupDelay
func NewBatchProcessor(analyzer Analyzer, groupSize int, groupDelay time.Duration) *BatchProcessor {
	if groupSize <= 0 {
		groupSize = DefaultGroupSize
	}
	if groupDelay < 0 {
		groupDelay = DefaultGroupDelay
	}
	return &BatchProcessor{
		analyzer:   analyzer,
		groupSize:  groupSize,
		groupDelay: groupDelay,
		sleep:      sleepWithContext,
	}
}

// WithSleep replaces the inter-group pause (used by tests)
func (b *BatchProcessor) WithSleep(sleep SleepFunc) *BatchProcessor {
	b.sleep = sleep
	return b
}

// ProcessBatch analyzes every claim and returns exactly one result per claim, in input order.
// If ctx ends between groups, the remaining claims are returned as failed results.
func (b *BatchProcessor) ProcessBatch(ctx context.Context, claims []string) []*ClaimResult {
	out := make([]*ClaimResult, 0, len(claims))
	groups := Partition(len(claims), b.groupSize)

	for g, bounds := range groups {
		if err := ctx.Err(); err != nil {
			for _, claim := range claims[bounds[0]:] {
				out = append(out, &ClaimResult{Claim: claim, Group: g, Error: err})
			}
			break
		}

		out = append(out, b.runGroup(ctx, g, claims[bounds[0]:bounds[1]])...)

		if b.OnGroupDone != nil {
			b.OnGroupDone(len(out), len(claims))
		}

		if g < len(groups)-1 && b.groupDelay > 0 {
			// The next iteration reports the cancellation for the remaining claims
			_ = b.sleep(ctx, b.groupDelay)
		}
	}

	return out
}

func (b *BatchProcessor) runGroup(ctx context.Context, group int, claims []string) []*ClaimResult {
	jobs := make([]Job, len(claims))
	for i, claim := range claims {
		jobs[i] = &ClaimJob{Claim: claim, Group: group, Analyzer: b.analyzer}
	}

	results := Run(ctx, len(jobs), jobs)

	out := make([]*ClaimResult, len(results))
	for i, r := range results {
		if cr, ok := r.(*ClaimResult); ok {
			out[i] = cr
			continue
		}
		out[i] = &ClaimResult{Claim: claims[i], Group: group, Error: r.GetError()}
	}
	return out
}

// ProcessFile reads claims from a file (one per line) and processes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ClaimResult, error) {
	claims, err := ReadClaimsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}

	return b.ProcessBatch(ctx, claims), nil
}

// Partition splits n items into contiguous [start, end) ranges of at most size items
func Partition(n, size int) [][2]int {
	if size <= 0 {
		size = DefaultGroupSize
	}
	var groups [][2]int
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		groups = append(groups, [2]int{start, end})
	}
	return groups
}

// ReadClaimsFromFile reads claims, one per line, skipping blank lines and # comments
func ReadClaimsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var claims []string

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		claims = append(claims, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return claims, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
