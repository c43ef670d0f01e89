// Package memory provides in-memory implementations of the repository
// interfaces for tests and for running without POSTGRES_DSN. Data is lost when
// the process exits.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/talent-service/internal/domain"
	"github.com/spec-kit/talent-service/internal/repository"
)

// UserStore is an in-memory credential store.
type UserStore struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*domain.User
	byEmail map[string]int64
}

var _ repository.UserRepository = (*UserStore)(nil)

// NewUserStore creates an empty store.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[int64]*domain.User),
		byEmail: make(map[string]int64),
	}
}

func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := s.byEmail[key]; exists {
		return repository.ErrDuplicateEmail
	}

	s.nextID++
	now := time.Now().UTC()
	user.ID = s.nextID
	user.CreatedAt = now
	user.UpdatedAt = now

	s.byID[user.ID] = cloneUser(user)
	s.byEmail[key] = user.ID
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(user), nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	return cloneUser(s.byID[id]), nil
}

func (s *UserStore) UpdateRefreshTokenHash(_ context.Context, id int64, hash *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.RefreshTokenHash = cloneString(hash)
	user.UpdatedAt = time.Now().UTC()
	return nil
}

// SetOrganization assigns a user to an organization. Organization management
// is outside this service; the hook exists for seeding and tests.
func (s *UserStore) SetOrganization(id int64, orgID *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.OrganizationID = cloneInt(orgID)
	return nil
}

// SetRole changes a user's role. Unknown roles are rejected.
func (s *UserStore) SetRole(id int64, role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Role = role
	return nil
}

// CandidateStore is an in-memory tenant-scoped candidate store.
type CandidateStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]domain.Candidate
}

var _ repository.CandidateRepository = (*CandidateStore)(nil)

// NewCandidateStore creates an empty store.
func NewCandidateStore() *CandidateStore {
	return &CandidateStore{byID: make(map[int64]domain.Candidate)}
}

func (s *CandidateStore) Create(_ context.Context, candidate *domain.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := time.Now().UTC()
	candidate.ID = s.nextID
	candidate.CreatedAt = now
	candidate.UpdatedAt = now
	s.byID[candidate.ID] = *candidate
	return nil
}

func (s *CandidateStore) GetByID(_ context.Context, orgID, id int64) (*domain.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidate, ok := s.byID[id]
	if !ok || candidate.OrganizationID != orgID {
		return nil, repository.ErrNotFound
	}
	return &candidate, nil
}

func (s *CandidateStore) List(_ context.Context, orgID int64, limit, offset int) ([]domain.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Candidate
	for _, candidate := range s.byID {
		if candidate.OrganizationID == orgID {
			out = append(out, candidate)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *CandidateStore) Delete(_ context.Context, orgID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate, ok := s.byID[id]
	if !ok || candidate.OrganizationID != orgID {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func cloneUser(u *domain.User) *domain.User {
	cp := *u
	cp.OrganizationID = cloneInt(u.OrganizationID)
	cp.RefreshTokenHash = cloneString(u.RefreshTokenHash)
	return &cp
}

func cloneInt(v *int64) *int64 {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
