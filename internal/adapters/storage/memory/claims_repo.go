package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-insurance-api/internal/domain/claims"
)

type claimRepo struct {
	mu   sync.RWMutex
	byID map[string]claims.Claim
}

func NewClaimRepo() claims.Repository {
	return &claimRepo{
		byID: make(map[string]claims.Claim),
	}
}

func (r *claimRepo) Create(ctx context.Context, c claims.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("claim id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("claim already exists")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *claimRepo) Update(ctx context.Context, c claims.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[c.ID]; !exists {
		return ErrNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *claimRepo) GetByID(ctx context.Context, id string) (claims.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return claims.Claim{}, ErrNotFound
	}
	return c, nil
}

func (r *claimRepo) ListAll(ctx context.Context) ([]claims.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]claims.Claim, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	sortClaims(out)
	return out, nil
}

func (r *claimRepo) ListByPolicyIDs(ctx context.Context, policyIDs []string) ([]claims.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]struct{}, len(policyIDs))
	for _, id := range policyIDs {
		wanted[id] = struct{}{}
	}

	out := make([]claims.Claim, 0)
	for _, c := range r.byID {
		if _, ok := wanted[c.PolicyID]; ok {
			out = append(out, c)
		}
	}
	sortClaims(out)
	return out, nil
}

// CreateIfNoOpenClaim: chequeo e inserción bajo el mismo write-lock,
// que es lo que hace atómica la ventana de dedup en este storage.
func (r *claimRepo) CreateIfNoOpenClaim(ctx context.Context, c claims.Claim, since time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return false, errors.New("claim id required")
	}

	for _, existing := range r.byID {
		if existing.PetID != c.PetID || existing.CreatedAt.Before(since) {
			continue
		}
		for _, st := range claims.OpenStatuses {
			if existing.Status == st {
				return false, nil
			}
		}
	}

	r.byID[c.ID] = c
	return true, nil
}

func sortClaims(out []claims.Claim) {
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
}
