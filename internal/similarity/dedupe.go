package similarity

import (
	"context"

	"github.com/ppiankov/claimwatch/internal/model"
)

// Dedupe keeps the first text of every near-duplicate cluster, preserving order.
// Each text is compared against the unique set accumulated so far.
func Dedupe(ctx context.Context, cmp Comparator, texts []string) []string {
	return dedupeBy(ctx, cmp, texts, func(s string) string { return s })
}

// DedupeCandidates is Dedupe over extracted candidates, keyed by candidate text
func DedupeCandidates(ctx context.Context, cmp Comparator, candidates []model.Candidate) []model.Candidate {
	return dedupeBy(ctx, cmp, candidates, func(c model.Candidate) string { return c.Text })
}

func dedupeBy[T any](ctx context.Context, cmp Comparator, items []T, text func(T) string) []T {
	unique := make([]T, 0, len(items))

outer:
	for _, item := range items {
		for _, kept := range unique {
			if cmp.IsSimilar(ctx, text(item), text(kept)) {
				continue outer
			}
		}
		unique = append(unique, item)
	}

	return unique
}
