// Package store keeps tracked influencers and their scored claims, and aggregates them
// into stats, leaderboards and dashboards.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/ppiankov/claimwatch/internal/model"
)

// Repository persists influencers and claims
type Repository interface {
	// AddInfluencer stores a new influencer and returns it with its assigned ID
	AddInfluencer(ctx context.Context, inf model.Influencer) (model.Influencer, error)
	Influencer(ctx context.Context, id string) (model.Influencer, error)
	// Influencers returns every influencer in insertion order
	Influencers(ctx context.Context) ([]model.Influencer, error)
	// AddClaim stores a claim for an existing influencer and refreshes that influencer's trust score
	AddClaim(ctx context.Context, claim model.Claim) (model.Claim, error)
	// Claims returns an influencer's claims in insertion order; unknown influencers have none
	Claims(ctx context.Context, influencerID string) ([]model.Claim, error)
	// AllClaims returns every claim in insertion order
	AllClaims(ctx context.Context) ([]model.Claim, error)
}

// MemoryRepository is a Repository held in process memory
type MemoryRepository struct {
	mu          sync.RWMutex
	influencers map[string]model.Influencer
	order       []string
	claims      []model.Claim
	byID        map[string][]int // influencer ID -> indexes into claims
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		influencers: make(map[string]model.Influencer),
		byID:        make(map[string][]int),
	}
}

// AddInfluencer validates and stores inf. Name and platform are required; an empty ID is assigned.
func (r *MemoryRepository) AddInfluencer(_ context.Context, inf model.Influencer) (model.Influencer, error) {
	inf.Name = strings.TrimSpace(inf.Name)
	inf.Platform = strings.TrimSpace(inf.Platform)
	if inf.Name == "" || inf.Platform == "" {
		return model.Influencer{}, fmt.Errorf("%w: influencer name and platform are required", model.ErrInvalidInput)
	}
	if inf.FollowerCount < 0 {
		return model.Influencer{}, fmt.Errorf("%w: negative follower count", model.ErrInvalidInput)
	}
	if inf.ID == "" {
		inf.ID = uuid.NewString()
	}
	inf.TrustScore = 0

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.influencers[inf.ID]; exists {
		return model.Influencer{}, fmt.Errorf("%w: influencer %s already exists", model.ErrInvalidInput, inf.ID)
	}
	r.influencers[inf.ID] = inf
	r.order = append(r.order, inf.ID)
	return inf, nil
}

// Influencer returns the influencer with id or model.ErrNotFound
func (r *MemoryRepository) Influencer(_ context.Context, id string) (model.Influencer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inf, ok := r.influencers[id]
	if !ok {
		return model.Influencer{}, fmt.Errorf("influencer %s: %w", id, model.ErrNotFound)
	}
	return inf, nil
}

func (r *MemoryRepository) Influencers(_ context.Context) ([]model.Influencer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Influencer, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.influencers[id])
	}
	return out, nil
}

func (r *MemoryRepository) AddClaim(_ context.Context, claim model.Claim) (model.Claim, error) {
	if strings.TrimSpace(claim.Content) == "" {
		return model.Claim{}, fmt.Errorf("%w: empty claim", model.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	inf, ok := r.influencers[claim.InfluencerID]
	if !ok {
		return model.Claim{}, fmt.Errorf("influencer %s: %w", claim.InfluencerID, model.ErrNotFound)
	}
	if claim.ID == "" {
		claim.ID = uuid.NewString()
	}

	r.claims = append(r.claims, claim)
	r.byID[inf.ID] = append(r.byID[inf.ID], len(r.claims)-1)

	inf.TrustScore = r.meanTrust(inf.ID)
	r.influencers[inf.ID] = inf
	return claim, nil
}

// meanTrust must be called with the lock held
func (r *MemoryRepository) meanTrust(influencerID string) float64 {
	idx := r.byID[influencerID]
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += r.claims[i].TrustScore
	}
	return sum / float64(len(idx))
}

func (r *MemoryRepository) Claims(_ context.Context, influencerID string) ([]model.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.byID[influencerID]
	out := make([]model.Claim, 0, len(idx))
	for _, i := range idx {
		out = append(out, r.claims[i])
	}
	return out, nil
}

func (r *MemoryRepository) AllClaims(_ context.Context) ([]model.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.Claim{}, r.claims...), nil
}
