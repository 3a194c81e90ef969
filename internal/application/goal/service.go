// Package goal runs the goal use cases. Every write refreshes the goal's
// derived state (progress, completion, overdue, milestones) before saving.
package goal

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/application/uow"
	"github.com/savings/backend/internal/domain/goal"
	"github.com/savings/backend/internal/domain/group"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service handles goal use cases
type Service struct {
	scope  uow.TransactionScope
	goals  goal.Repository
	groups group.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new goal service
func NewService(scope uow.TransactionScope, goals goal.Repository, groups group.Repository, logger *zap.Logger) *Service {
	return &Service{
		scope:  scope,
		goals:  goals,
		groups: groups,
		logger: logger,
		now:    time.Now,
	}
}

// Create creates a goal owned by ownerID. A goal linked to a group requires
// the owner to be an active member of it.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*GoalResponse, error) {
	now := s.now()
	var created *goal.Goal
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if input.GroupID != nil {
			g, err := repos.Groups().FindByID(ctx, *input.GroupID)
			if err != nil {
				return err
			}
			if !g.IsActiveMember(ownerID) {
				return group.ErrNotMember
			}
		}
		gl, err := goal.NewGoal(input.Details, ownerID, input.GroupID, now)
		if err != nil {
			return err
		}
		gl.Refresh(ownerID, now)
		if err := repos.Goals().Create(ctx, gl); err != nil {
			return err
		}
		created = gl
		return uow.RecordEvents(ctx, repos, gl)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("goal created",
		zap.String("goal_id", created.ID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.String("target_amount", created.TargetAmount.String()),
	)
	resp := ToGoalResponse(created, now)
	return &resp, nil
}

// Get returns a goal visible to the viewer
func (s *Service) Get(ctx context.Context, goalID, viewerID uuid.UUID) (*GoalResponse, error) {
	g, err := s.goals.FindByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if err := s.canView(ctx, g, viewerID); err != nil {
		return nil, err
	}
	resp := ToGoalResponse(g, s.now())
	return &resp, nil
}

// Milestones returns the goal's milestones split into achieved and pending
func (s *Service) Milestones(ctx context.Context, goalID, viewerID uuid.UUID) (*MilestonesResponse, error) {
	g, err := s.goals.FindByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if err := s.canView(ctx, g, viewerID); err != nil {
		return nil, err
	}
	return &MilestonesResponse{
		Achieved: toMilestoneResponses(g.AchievedMilestones()),
		Pending:  toMilestoneResponses(g.PendingMilestones()),
	}, nil
}

// ListMine lists the goals owned by the user
func (s *Service) ListMine(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]GoalResponse, int64, error) {
	f := toDomainFilter(filter)
	f.OwnerID = &ownerID
	return s.list(ctx, f)
}

// ListPublic lists public goals
func (s *Service) ListPublic(ctx context.Context, filter ListFilter) ([]GoalResponse, int64, error) {
	f := toDomainFilter(filter)
	f.Public = true
	return s.list(ctx, f)
}

// ListByGroup lists the goals linked to a group for an active member
func (s *Service) ListByGroup(ctx context.Context, groupID, viewerID uuid.UUID, filter ListFilter) ([]GoalResponse, int64, error) {
	g, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, 0, err
	}
	if !g.IsActiveMember(viewerID) {
		return nil, 0, group.ErrNotMember
	}
	f := toDomainFilter(filter)
	f.GroupID = &groupID
	return s.list(ctx, f)
}

func (s *Service) list(ctx context.Context, f goal.Filter) ([]GoalResponse, int64, error) {
	items, total, err := s.goals.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToGoalResponses(items, s.now()), total, nil
}

// Overview summarizes the user's goals
func (s *Service) Overview(ctx context.Context, ownerID uuid.UUID) (*OverviewResponse, error) {
	o, err := s.goals.Overview(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &OverviewResponse{
		TotalGoals:         o.TotalGoals,
		ActiveGoals:        o.ActiveGoals,
		CompletedGoals:     o.CompletedGoals,
		TotalTargetAmount:  o.TotalTargetAmount,
		TotalCurrentAmount: o.TotalCurrentAmount,
		AverageProgress:    o.AverageProgress,
		ByStatus:           o.ByStatus,
		ByType:             o.ByType,
	}, nil
}

// Update edits the goal details. Owner only; completed goals are read-only.
func (s *Service) Update(ctx context.Context, goalID, actorID uuid.UUID, input UpdateInput) (*GoalResponse, error) {
	return s.mutate(ctx, goalID, actorID, "goal updated", func(_ uow.Repositories, g *goal.Goal, now time.Time) error {
		if !g.IsOwner(actorID) {
			return goal.ErrGoalAccessDenied
		}
		return g.UpdateDetails(input.apply(g.Details), now)
	})
}

// Contribute adds amount to the goal. The owner and active members of the
// linked group may contribute.
func (s *Service) Contribute(ctx context.Context, goalID, actorID uuid.UUID, amount decimal.Decimal) (*GoalResponse, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Valid contribution amount is required")
	}
	return s.mutate(ctx, goalID, actorID, "goal contribution added", func(repos uow.Repositories, g *goal.Goal, now time.Time) error {
		if !g.IsOwner(actorID) {
			if g.GroupID == nil {
				return goal.ErrGoalAccessDenied
			}
			grp, err := repos.Groups().FindByID(ctx, *g.GroupID)
			if err != nil {
				return err
			}
			if !grp.IsActiveMember(actorID) {
				return goal.ErrGoalAccessDenied
			}
		}
		_, err := g.AddContribution(amount, actorID, now)
		return err
	})
}

// Pause pauses an active goal. Owner only.
func (s *Service) Pause(ctx context.Context, goalID, actorID uuid.UUID) (*GoalResponse, error) {
	return s.ownerAction(ctx, goalID, actorID, "goal paused", func(g *goal.Goal, _ time.Time) error {
		return g.Pause()
	})
}

// Resume reactivates a paused or overdue goal. Owner only. The resuming write
// settles without the overdue check, so a goal resumed past its target date
// comes back active.
func (s *Service) Resume(ctx context.Context, goalID, actorID uuid.UUID) (*GoalResponse, error) {
	return s.write(ctx, goalID, actorID, "goal resumed", (*goal.Goal).Settle, func(_ uow.Repositories, g *goal.Goal, _ time.Time) error {
		if !g.IsOwner(actorID) {
			return goal.ErrGoalAccessDenied
		}
		return g.Resume()
	})
}

// Complete marks the goal completed. Owner only.
func (s *Service) Complete(ctx context.Context, goalID, actorID uuid.UUID) (*GoalResponse, error) {
	return s.ownerAction(ctx, goalID, actorID, "goal completed", func(g *goal.Goal, now time.Time) error {
		return g.Complete(actorID, now)
	})
}

// AddMilestone appends a milestone. Owner only; a milestone already covered by
// the current amount is achieved immediately.
func (s *Service) AddMilestone(ctx context.Context, goalID, actorID uuid.UUID, name string, target decimal.Decimal, reward string) (*GoalResponse, error) {
	return s.ownerAction(ctx, goalID, actorID, "goal milestone added", func(g *goal.Goal, _ time.Time) error {
		_, err := g.AddMilestone(name, target, reward)
		return err
	})
}

// Delete removes the goal. Owner only.
func (s *Service) Delete(ctx context.Context, goalID, actorID uuid.UUID) error {
	g, err := s.goals.FindByID(ctx, goalID)
	if err != nil {
		return err
	}
	if !g.IsOwner(actorID) {
		return goal.ErrGoalAccessDenied
	}
	if err := s.goals.Delete(ctx, goalID); err != nil {
		return err
	}
	s.logger.Info("goal deleted", zap.String("goal_id", goalID.String()), zap.String("owner_id", actorID.String()))
	return nil
}

func (s *Service) ownerAction(ctx context.Context, goalID, actorID uuid.UUID, action string, fn func(g *goal.Goal, now time.Time) error) (*GoalResponse, error) {
	return s.mutate(ctx, goalID, actorID, action, func(_ uow.Repositories, g *goal.Goal, now time.Time) error {
		if !g.IsOwner(actorID) {
			return goal.ErrGoalAccessDenied
		}
		return fn(g, now)
	})
}

// mutate loads the goal, applies fn, refreshes derived state and saves
func (s *Service) mutate(
	ctx context.Context,
	goalID, actorID uuid.UUID,
	action string,
	fn func(repos uow.Repositories, g *goal.Goal, now time.Time) error,
) (*GoalResponse, error) {
	return s.write(ctx, goalID, actorID, action, (*goal.Goal).Refresh, fn)
}

func (s *Service) write(
	ctx context.Context,
	goalID, actorID uuid.UUID,
	action string,
	refresh func(g *goal.Goal, actorID uuid.UUID, now time.Time),
	fn func(repos uow.Repositories, g *goal.Goal, now time.Time) error,
) (*GoalResponse, error) {
	now := s.now()
	var result *goal.Goal
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		g, err := repos.Goals().FindByID(ctx, goalID)
		if err != nil {
			return err
		}
		if err := fn(repos, g, now); err != nil {
			return err
		}
		refresh(g, actorID, now)
		if err := repos.Goals().Save(ctx, g); err != nil {
			return err
		}
		result = g
		return uow.RecordEvents(ctx, repos, g)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(action,
		zap.String("goal_id", goalID.String()),
		zap.String("actor_id", actorID.String()),
		zap.String("status", string(result.Status)),
		zap.String("progress", result.ProgressPercentage.String()),
	)
	resp := ToGoalResponse(result, now)
	return &resp, nil
}

// canView allows the owner, anyone for public goals, and active members of the linked group
func (s *Service) canView(ctx context.Context, g *goal.Goal, viewerID uuid.UUID) error {
	if g.IsOwner(viewerID) || g.IsPublic {
		return nil
	}
	if g.GroupID != nil {
		grp, err := s.groups.FindByID(ctx, *g.GroupID)
		if err == nil && grp.IsActiveMember(viewerID) {
			return nil
		}
	}
	return goal.ErrGoalAccessDenied
}

func toDomainFilter(filter ListFilter) goal.Filter {
	return goal.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   strings.TrimSpace(filter.Search),
		},
		Status:   filter.Status,
		Priority: filter.Priority,
	}
}
