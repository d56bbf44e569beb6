package memory

import (
	"context"
	"sync"
	"time"

	"parking_facility/internal/domain"
	"parking_facility/internal/repository"
)

// UserRepository is a mutex-guarded in-memory store. Accounts here exist to
// guard the API surface, not to survive restarts.
type UserRepository struct {
	mu     sync.RWMutex
	byID   map[int]*domain.User
	byName map[string]int
	nextID int
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:   make(map[int]*domain.User),
		byName: make(map[string]int),
		nextID: 1,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[user.Username]; exists {
		return nil, repository.ErrDuplicateEntry
	}
	now := time.Now().UTC()
	stored := *user
	stored.ID = r.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.nextID++
	r.byID[stored.ID] = &stored
	r.byName[stored.Username] = stored.ID
	out := stored
	return &out, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *r.byID[id]
	return &out, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *user
	return &out, nil
}
