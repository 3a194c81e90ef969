package persistence

import (
	"context"

	"github.com/savings/backend/internal/application/uow"
	"github.com/savings/backend/internal/domain/contribution"
	"github.com/savings/backend/internal/domain/goal"
	"github.com/savings/backend/internal/domain/group"
	"github.com/savings/backend/internal/domain/identity"
	"github.com/savings/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// EventRecorderFactory binds an event recorder to a transaction
type EventRecorderFactory interface {
	Recorder(tx *gorm.DB) shared.EventRecorder
}

// GormTransactionScope implements uow.TransactionScope using GORM transactions.
// Repositories and the outbox recorder handed to fn share one transaction,
// so aggregate writes and their events commit or roll back together.
type GormTransactionScope struct {
	db     *gorm.DB
	events EventRecorderFactory
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB, events EventRecorderFactory) *GormTransactionScope {
	return &GormTransactionScope{db: db, events: events}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos uow.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, events: s.events})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx     *gorm.DB
	events EventRecorderFactory
}

func (r *gormTransactionalRepositories) Groups() group.Repository {
	return NewGormGroupRepository(r.tx)
}

func (r *gormTransactionalRepositories) Goals() goal.Repository {
	return NewGormGoalRepository(r.tx)
}

func (r *gormTransactionalRepositories) Contributions() contribution.Repository {
	return NewGormContributionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Users() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

// Events returns the outbox recorder scoped to the current transaction.
func (r *gormTransactionalRepositories) Events() shared.EventRecorder {
	return r.events.Recorder(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ uow.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements Repositories
var _ uow.Repositories = (*gormTransactionalRepositories)(nil)
