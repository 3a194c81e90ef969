// Package uow defines the transaction boundary shared by the application services.
package uow

import (
	"context"

	"github.com/savings/backend/internal/domain/contribution"
	"github.com/savings/backend/internal/domain/goal"
	"github.com/savings/backend/internal/domain/group"
	"github.com/savings/backend/internal/domain/identity"
	"github.com/savings/backend/internal/domain/shared"
)

// Repositories provides access to repositories bound to the current transaction
type Repositories interface {
	Groups() group.Repository
	Goals() goal.Repository
	Contributions() contribution.Repository
	Users() identity.UserRepository
	Events() shared.EventRecorder
}

// TransactionScope runs fn within a single database transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// EventSource is an aggregate with pending domain events
type EventSource interface {
	PullDomainEvents() []shared.DomainEvent
}

// RecordEvents moves the pending events of every aggregate into the outbox
func RecordEvents(ctx context.Context, repos Repositories, sources ...EventSource) error {
	var events []shared.DomainEvent
	for _, src := range sources {
		events = append(events, src.PullDomainEvents()...)
	}
	if len(events) == 0 {
		return nil
	}
	return repos.Events().Record(ctx, events...)
}
