// Package uowtest provides testify mocks of the repositories and an in-process
// TransactionScope for application service tests.
package uowtest

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/application/uow"
	"github.com/savings/backend/internal/domain/contribution"
	"github.com/savings/backend/internal/domain/goal"
	"github.com/savings/backend/internal/domain/group"
	"github.com/savings/backend/internal/domain/identity"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockGroupRepository is a mock implementation of group.Repository
type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*group.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*group.Group), args.Error(1)
}

func (m *MockGroupRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*group.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*group.Group), args.Error(1)
}

func (m *MockGroupRepository) FindAll(ctx context.Context, filter group.Filter) ([]*group.Group, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*group.Group), args.Get(1).(int64), args.Error(2)
}

func (m *MockGroupRepository) Create(ctx context.Context, g *group.Group) error {
	return m.Called(ctx, g).Error(0)
}

func (m *MockGroupRepository) Save(ctx context.Context, g *group.Group) error {
	return m.Called(ctx, g).Error(0)
}

// MockGoalRepository is a mock implementation of goal.Repository
type MockGoalRepository struct {
	mock.Mock
}

func (m *MockGoalRepository) FindByID(ctx context.Context, id uuid.UUID) (*goal.Goal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*goal.Goal), args.Error(1)
}

func (m *MockGoalRepository) FindAll(ctx context.Context, filter goal.Filter) ([]*goal.Goal, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*goal.Goal), args.Get(1).(int64), args.Error(2)
}

func (m *MockGoalRepository) Create(ctx context.Context, g *goal.Goal) error {
	return m.Called(ctx, g).Error(0)
}

func (m *MockGoalRepository) Save(ctx context.Context, g *goal.Goal) error {
	return m.Called(ctx, g).Error(0)
}

func (m *MockGoalRepository) Overview(ctx context.Context, ownerID uuid.UUID) (goal.Overview, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(goal.Overview), args.Error(1)
}

func (m *MockGoalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockContributionRepository is a mock implementation of contribution.Repository
type MockContributionRepository struct {
	mock.Mock
}

func (m *MockContributionRepository) FindByID(ctx context.Context, id uuid.UUID) (*contribution.Contribution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contribution.Contribution), args.Error(1)
}

func (m *MockContributionRepository) FindByRequestKey(ctx context.Context, userID uuid.UUID, key string) (*contribution.Contribution, error) {
	args := m.Called(ctx, userID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contribution.Contribution), args.Error(1)
}

func (m *MockContributionRepository) FindAll(ctx context.Context, filter contribution.Filter) ([]*contribution.Contribution, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*contribution.Contribution), args.Get(1).(int64), args.Error(2)
}

func (m *MockContributionRepository) Stats(ctx context.Context, userID, groupID *uuid.UUID) (contribution.Stats, error) {
	args := m.Called(ctx, userID, groupID)
	return args.Get(0).(contribution.Stats), args.Error(1)
}

func (m *MockContributionRepository) Create(ctx context.Context, c *contribution.Contribution) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockContributionRepository) Save(ctx context.Context, c *contribution.Contribution) error {
	return m.Called(ctx, c).Error(0)
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByLogin(ctx context.Context, login string) (*identity.User, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) AttachGroup(ctx context.Context, userID, groupID uuid.UUID) error {
	return m.Called(ctx, userID, groupID).Error(0)
}

func (m *MockUserRepository) DetachMember(ctx context.Context, userID, groupID uuid.UUID) error {
	return m.Called(ctx, userID, groupID).Error(0)
}

func (m *MockUserRepository) DetachGroup(ctx context.Context, groupID uuid.UUID) (int64, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).(int64), args.Error(1)
}

// Scope is an in-process TransactionScope over the mocks. Events recorded by a
// failed Execute are discarded, mirroring a rolled-back outbox insert.
type Scope struct {
	Groups        *MockGroupRepository
	Goals         *MockGoalRepository
	Contributions *MockContributionRepository
	Users         *MockUserRepository

	mu        sync.Mutex
	committed []shared.DomainEvent
	pending   []shared.DomainEvent
}

// NewScope creates a Scope with fresh mocks
func NewScope() *Scope {
	return &Scope{
		Groups:        new(MockGroupRepository),
		Goals:         new(MockGoalRepository),
		Contributions: new(MockContributionRepository),
		Users:         new(MockUserRepository),
	}
}

// Execute runs fn and commits its recorded events when fn succeeds
func (s *Scope) Execute(ctx context.Context, fn func(repos uow.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	if err := fn(scopeRepos{s}); err != nil {
		s.pending = nil
		return err
	}
	s.committed = append(s.committed, s.pending...)
	s.pending = nil
	return nil
}

// Events returns the events committed so far
func (s *Scope) Events() []shared.DomainEvent {
	return s.committed
}

// EventTypes returns the types of the committed events, in order
func (s *Scope) EventTypes() []string {
	out := make([]string, 0, len(s.committed))
	for _, e := range s.committed {
		out = append(out, e.EventType())
	}
	return out
}

// AssertExpectations asserts every mock's expectations
func (s *Scope) AssertExpectations(t mock.TestingT) {
	s.Groups.AssertExpectations(t)
	s.Goals.AssertExpectations(t)
	s.Contributions.AssertExpectations(t)
	s.Users.AssertExpectations(t)
}

type scopeRepos struct {
	s *Scope
}

func (r scopeRepos) Groups() group.Repository               { return r.s.Groups }
func (r scopeRepos) Goals() goal.Repository                 { return r.s.Goals }
func (r scopeRepos) Contributions() contribution.Repository { return r.s.Contributions }
func (r scopeRepos) Users() identity.UserRepository         { return r.s.Users }
func (r scopeRepos) Events() shared.EventRecorder           { return r }

func (r scopeRepos) Record(_ context.Context, events ...shared.DomainEvent) error {
	r.s.pending = append(r.s.pending, events...)
	return nil
}

var _ uow.TransactionScope = (*Scope)(nil)
