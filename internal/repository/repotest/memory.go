// Package repotest provides an in-memory credential store that enforces the
// same uniqueness rules as the PostgreSQL schema.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"auth_service/internal/model"
	"auth_service/internal/repository"
)

// Store implements repository.UserRepository directly; Roles returns the
// role side. The user and admin roles are seeded.
type Store struct {
	mu        sync.Mutex
	users     map[int]*model.User
	userRoles map[int][]string
	roles     map[string]*model.Role
	nextUser  int
	nextRole  int

	// FindByIDCalls counts FindByID lookups
	FindByIDCalls int
}

var (
	_ repository.UserRepository = (*Store)(nil)
	_ repository.RoleRepository = roleView{}
)

func NewStore() *Store {
	s := &Store{
		users:     map[int]*model.User{},
		userRoles: map[int][]string{},
		roles:     map[string]*model.Role{},
		nextUser:  1,
		nextRole:  1,
	}
	for _, name := range []string{model.RoleUser, model.RoleAdmin} {
		s.roles[name] = &model.Role{ID: s.nextRole, Name: name, CreatedAt: time.Now()}
		s.nextRole++
	}
	return s
}

// Roles is the role side of the store
func (s *Store) Roles() repository.RoleRepository { return roleView{s} }

type roleView struct{ s *Store }

func (v roleView) Create(ctx context.Context, role *model.Role) error { return v.s.CreateRole(ctx, role) }
func (v roleView) FindByName(ctx context.Context, name string) (*model.Role, error) {
	return v.s.FindByName(ctx, name)
}

func (s *Store) Create(_ context.Context, user *model.User, roleNames ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email || u.PhoneNumber == user.PhoneNumber {
			return fmt.Errorf("failed to create user: %w", repository.ErrUniqueViolation)
		}
	}

	user.ID = s.nextUser
	user.CreatedAt = time.Now()
	s.nextUser++

	stored := *user
	stored.Roles = nil
	s.users[user.ID] = &stored
	for _, name := range roleNames {
		if _, ok := s.roles[name]; ok {
			s.userRoles[user.ID] = append(s.userRoles[user.ID], name)
		}
	}
	return nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(func(u *model.User) bool { return u.Email == email }), nil
}

func (s *Store) FindByPhone(_ context.Context, phone string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(func(u *model.User) bool { return u.PhoneNumber == phone }), nil
}

func (s *Store) FindByID(_ context.Context, id int) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FindByIDCalls++
	return s.findLocked(func(u *model.User) bool { return u.ID == id }), nil
}

func (s *Store) FindAll(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	users := make([]model.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, *s.withRolesLocked(s.users[id]))
	}
	return users, nil
}

func (s *Store) CreateRole(_ context.Context, role *model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roles[role.Name]; ok {
		return fmt.Errorf("failed to create role: %w", repository.ErrUniqueViolation)
	}
	role.ID = s.nextRole
	role.CreatedAt = time.Now()
	s.nextRole++
	stored := *role
	s.roles[role.Name] = &stored
	return nil
}

func (s *Store) FindByName(_ context.Context, name string) (*model.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[name]
	if !ok {
		return nil, nil
	}
	cp := *role
	return &cp, nil
}

// Delete removes a user, simulating an account removed behind a live token
func (s *Store) Delete(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	delete(s.userRoles, id)
}

func (s *Store) findLocked(match func(*model.User) bool) *model.User {
	for _, u := range s.users {
		if match(u) {
			return s.withRolesLocked(u)
		}
	}
	return nil
}

func (s *Store) withRolesLocked(u *model.User) *model.User {
	cp := *u
	cp.Roles = []model.Role{}
	names := append([]string(nil), s.userRoles[u.ID]...)
	sort.Strings(names)
	for _, name := range names {
		cp.Roles = append(cp.Roles, *s.roles[name])
	}
	return &cp
}
