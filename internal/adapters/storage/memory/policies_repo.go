package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-insurance-api/internal/domain/policies"
)

type policyRepo struct {
	mu   sync.RWMutex
	byID map[string]policies.Policy
}

func NewPolicyRepo() policies.Repository {
	return &policyRepo{
		byID: make(map[string]policies.Policy),
	}
}

func (r *policyRepo) Create(ctx context.Context, p policies.Policy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("policy id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("policy already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *policyRepo) Update(ctx context.Context, p policies.Policy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *policyRepo) GetByID(ctx context.Context, id string) (policies.Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return policies.Policy{}, ErrNotFound
	}
	return p, nil
}

func (r *policyRepo) ListAll(ctx context.Context) ([]policies.Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]policies.Policy, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sortPolicies(out)
	return out, nil
}

func (r *policyRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]policies.Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]policies.Policy, 0)
	for _, p := range r.byID {
		if p.OwnerUserID == ownerUserID {
			out = append(out, p)
		}
	}
	sortPolicies(out)
	return out, nil
}

func (r *policyRepo) ListByPet(ctx context.Context, petID string) ([]policies.Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]policies.Policy, 0)
	for _, p := range r.byID {
		if p.PetID == petID {
			out = append(out, p)
		}
	}
	sortPolicies(out)
	return out, nil
}

func sortPolicies(out []policies.Policy) {
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
}
