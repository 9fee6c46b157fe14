package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"profile-auth/internal/domain"
)

// MemoryProfileRepository guarda perfiles en memoria con unicidad por email.
// Pensado para desarrollo local y tests.
type MemoryProfileRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.Profile
	byEmail map[string]string
}

func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{
		byID:    make(map[string]domain.Profile),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryProfileRepository) Create(_ context.Context, profile domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[profile.ID]; ok {
		return ErrConflict
	}
	key := emailKey(profile.Email)
	if _, ok := r.byEmail[key]; ok {
		return ErrConflict
	}
	r.byID[profile.ID] = profile
	r.byEmail[key] = profile.ID
	return nil
}

func (r *MemoryProfileRepository) GetByID(_ context.Context, id string) (domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return domain.Profile{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryProfileRepository) GetByEmail(_ context.Context, email string) (domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return domain.Profile{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryProfileRepository) Update(_ context.Context, id string, changes domain.ProfileUpdate) (domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.byID[id]
	if !ok {
		return domain.Profile{}, ErrNotFound
	}
	updated := changes.Apply(current)
	oldKey := emailKey(current.Email)
	newKey := emailKey(updated.Email)
	if newKey != oldKey {
		if _, taken := r.byEmail[newKey]; taken {
			return domain.Profile{}, ErrConflict
		}
		delete(r.byEmail, oldKey)
		r.byEmail[newKey] = id
	}
	updated.UpdatedAt = time.Now().UTC()
	r.byID[id] = updated
	return updated, nil
}

func (r *MemoryProfileRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byEmail, emailKey(p.Email))
	return nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
