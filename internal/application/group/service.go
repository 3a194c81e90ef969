// Package group orchestrates membership: creating groups, joining and leaving,
// invitations, promotions and the soft delete.
package group

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/application/uow"
	"github.com/savings/backend/internal/domain/group"
	"github.com/savings/backend/internal/domain/identity"
	"github.com/savings/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service handles group use cases. Mutations run in a unit of work holding
// the group row lock, so capacity and last-admin checks see the committed state.
type Service struct {
	scope  uow.TransactionScope
	groups group.Repository
	users  identity.UserRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new group service
func NewService(scope uow.TransactionScope, groups group.Repository, users identity.UserRepository, logger *zap.Logger) *Service {
	return &Service{
		scope:  scope,
		groups: groups,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// Create creates a group with the founder as its first admin and records the
// group on the founder's profile
func (s *Service) Create(ctx context.Context, founderID uuid.UUID, input CreateInput) (*GroupResponse, error) {
	var created *group.Group
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		g, err := group.NewGroup(input.details(), founderID, s.now())
		if err != nil {
			return err
		}
		if err := repos.Groups().Create(ctx, g); err != nil {
			return err
		}
		if err := repos.Users().AttachGroup(ctx, founderID, g.ID); err != nil {
			return err
		}
		created = g
		return uow.RecordEvents(ctx, repos, g)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("group created",
		zap.String("group_id", created.ID.String()),
		zap.String("founder_id", founderID.String()),
		zap.String("total_goal", created.TotalGoal.String()),
	)
	resp := ToGroupResponse(created, true)
	return &resp, nil
}

// Get returns a group visible to its active members, or to anyone when public.
// Cancelled groups are not found.
func (s *Service) Get(ctx context.Context, groupID, viewerID uuid.UUID) (*GroupResponse, error) {
	g, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g.Status == group.StatusCancelled {
		return nil, group.ErrGroupNotFound
	}
	if !g.IsActiveMember(viewerID) && g.Privacy != group.PrivacyPublic {
		return nil, shared.NewForbiddenError("ACCESS_DENIED", "Access denied")
	}
	resp := ToGroupResponse(g, g.IsAdmin(viewerID))
	return &resp, nil
}

// ListMine lists the groups the user is an active member of
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]GroupResponse, int64, error) {
	f := toDomainFilter(filter)
	f.MemberID = &userID
	items, total, err := s.groups.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToGroupResponses(items), total, nil
}

// Discover lists active public groups
func (s *Service) Discover(ctx context.Context, filter ListFilter) ([]GroupResponse, int64, error) {
	f := toDomainFilter(filter)
	privacy := group.PrivacyPublic
	status := group.StatusActive
	f.Privacy = &privacy
	f.Status = &status
	items, total, err := s.groups.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToGroupResponses(items), total, nil
}

// Join adds the user to an active group. Private groups are joined by invitation only.
func (s *Service) Join(ctx context.Context, groupID, userID uuid.UUID) (*GroupResponse, error) {
	return s.mutate(ctx, groupID, userID, "member joined", func(ctx context.Context, repos uow.Repositories, g *group.Group) error {
		if g.Status != group.StatusActive {
			return group.ErrGroupInactive
		}
		if g.Privacy == group.PrivacyPrivate {
			return group.ErrGroupPrivate
		}
		if _, err := g.AddMember(userID, group.RoleMember, s.now()); err != nil {
			return err
		}
		return repos.Users().AttachGroup(ctx, userID, g.ID)
	})
}

// Leave deactivates the user's membership. The sole admin cannot leave.
func (s *Service) Leave(ctx context.Context, groupID, userID uuid.UUID) (*GroupResponse, error) {
	return s.mutate(ctx, groupID, userID, "member left", func(ctx context.Context, repos uow.Repositories, g *group.Group) error {
		if err := g.RemoveMember(userID, userID); err != nil {
			return err
		}
		return repos.Users().DetachMember(ctx, userID, g.ID)
	})
}

// Invite sends an invitation to email. Admins only.
func (s *Service) Invite(ctx context.Context, groupID, actorID uuid.UUID, email string) (*InvitationResponse, error) {
	if err := identity.ValidateEmail(email); err != nil {
		return nil, err
	}
	var sent group.Invitation
	resp, err := s.mutate(ctx, groupID, actorID, "invitation sent", func(ctx context.Context, repos uow.Repositories, g *group.Group) error {
		if err := g.RequireAdmin(actorID); err != nil {
			return err
		}
		if g.Status == group.StatusCancelled {
			return group.ErrGroupInactive
		}
		members, err := repos.Users().FindByIDs(ctx, g.ActiveMemberIDs())
		if err != nil {
			return err
		}
		emails := make([]string, 0, len(members))
		for _, u := range members {
			emails = append(emails, u.Email)
		}
		inv, err := g.Invite(email, actorID, emails, s.now())
		if err != nil {
			return err
		}
		sent = *inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	inv := InvitationResponse{
		ID:        sent.ID,
		GroupID:   resp.ID,
		GroupName: resp.Name,
		Email:     sent.Email,
		InvitedBy: sent.InvitedBy,
		InvitedAt: sent.InvitedAt,
		ExpiresAt: sent.ExpiresAt,
		Status:    sent.Status,
	}
	return &inv, nil
}

// AcceptInvitation adds the user to the group through an invitation addressed to their email
func (s *Service) AcceptInvitation(ctx context.Context, groupID, invitationID, userID uuid.UUID) (*GroupResponse, error) {
	return s.respond(ctx, groupID, userID, "invitation accepted", func(ctx context.Context, repos uow.Repositories, g *group.Group, user *identity.User) error {
		if err := g.AcceptInvitation(invitationID, userID, user.Email, s.now()); err != nil {
			return err
		}
		return repos.Users().AttachGroup(ctx, userID, g.ID)
	})
}

// DeclineInvitation declines an invitation addressed to the user's email
func (s *Service) DeclineInvitation(ctx context.Context, groupID, invitationID, userID uuid.UUID) (*GroupResponse, error) {
	return s.respond(ctx, groupID, userID, "invitation declined", func(_ context.Context, _ uow.Repositories, g *group.Group, user *identity.User) error {
		return g.DeclineInvitation(invitationID, user.Email, s.now())
	})
}

// respond runs an invitation response. An expired invitation is persisted as
// expired before ErrInvitationExpired is returned.
func (s *Service) respond(
	ctx context.Context,
	groupID, userID uuid.UUID,
	action string,
	fn func(ctx context.Context, repos uow.Repositories, g *group.Group, user *identity.User) error,
) (*GroupResponse, error) {
	var expired bool
	resp, err := s.mutate(ctx, groupID, userID, action, func(ctx context.Context, repos uow.Repositories, g *group.Group) error {
		user, err := repos.Users().FindByID(ctx, userID)
		if err != nil {
			return err
		}
		err = fn(ctx, repos, g, user)
		if errors.Is(err, group.ErrInvitationExpired) {
			expired = true
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, group.ErrInvitationExpired
	}
	return resp, nil
}

// PendingInvitations lists the unexpired pending invitations addressed to the user
func (s *Service) PendingInvitations(ctx context.Context, userID uuid.UUID) ([]InvitationResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	f := group.Filter{Filter: shared.DefaultFilter(), InvitedEmail: user.Email}
	f.PageSize = 100
	groups, _, err := s.groups.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := []InvitationResponse{}
	for _, g := range groups {
		if g.Status == group.StatusCancelled {
			continue
		}
		for _, inv := range g.PendingInvitationsFor(user.Email, now) {
			out = append(out, toInvitationResponse(g, inv))
		}
	}
	return out, nil
}

// Promote makes an active member an admin. Admins only.
func (s *Service) Promote(ctx context.Context, groupID, actorID, userID uuid.UUID) (*GroupResponse, error) {
	return s.mutate(ctx, groupID, actorID, "member promoted", func(_ context.Context, _ uow.Repositories, g *group.Group) error {
		if err := g.RequireAdmin(actorID); err != nil {
			return err
		}
		return g.Promote(userID, actorID)
	})
}

// Update edits the group details. Admins only.
func (s *Service) Update(ctx context.Context, groupID, actorID uuid.UUID, input UpdateInput) (*GroupResponse, error) {
	return s.mutate(ctx, groupID, actorID, "group updated", func(_ context.Context, _ uow.Repositories, g *group.Group) error {
		if err := g.RequireAdmin(actorID); err != nil {
			return err
		}
		return g.UpdateDetails(input.apply(g.Details), actorID, s.now())
	})
}

// Pause stops the group from accepting contributions. Admins only.
func (s *Service) Pause(ctx context.Context, groupID, actorID uuid.UUID) (*GroupResponse, error) {
	return s.mutate(ctx, groupID, actorID, "group paused", func(_ context.Context, _ uow.Repositories, g *group.Group) error {
		if err := g.RequireAdmin(actorID); err != nil {
			return err
		}
		return g.Pause()
	})
}

// Resume reopens a paused group. Admins only.
func (s *Service) Resume(ctx context.Context, groupID, actorID uuid.UUID) (*GroupResponse, error) {
	return s.mutate(ctx, groupID, actorID, "group resumed", func(_ context.Context, _ uow.Repositories, g *group.Group) error {
		if err := g.RequireAdmin(actorID); err != nil {
			return err
		}
		return g.Resume(actorID, s.now())
	})
}

// Delete cancels the group and removes it from every member profile. Admins only.
func (s *Service) Delete(ctx context.Context, groupID, actorID uuid.UUID) error {
	var detached int64
	_, err := s.mutate(ctx, groupID, actorID, "group cancelled", func(ctx context.Context, repos uow.Repositories, g *group.Group) error {
		if err := g.RequireAdmin(actorID); err != nil {
			return err
		}
		if err := g.Cancel(actorID); err != nil {
			return err
		}
		n, err := repos.Users().DetachGroup(ctx, g.ID)
		detached = n
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Debug("group detached from member profiles",
		zap.String("group_id", groupID.String()),
		zap.Int64("profiles", detached),
	)
	return nil
}

// Stats returns the progress read model for an active member
func (s *Service) Stats(ctx context.Context, groupID, viewerID uuid.UUID) (*StatsResponse, error) {
	g, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.IsActiveMember(viewerID) {
		return nil, group.ErrNotMember
	}
	resp := toStatsResponse(g.Stats(s.now()))
	return &resp, nil
}

// mutate loads the group under lock, applies fn, saves the group and records its events
func (s *Service) mutate(
	ctx context.Context,
	groupID, actorID uuid.UUID,
	action string,
	fn func(ctx context.Context, repos uow.Repositories, g *group.Group) error,
) (*GroupResponse, error) {
	var result *group.Group
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		g, err := repos.Groups().FindByIDForUpdate(ctx, groupID)
		if err != nil {
			return err
		}
		if err := fn(ctx, repos, g); err != nil {
			return err
		}
		if err := repos.Groups().Save(ctx, g); err != nil {
			return err
		}
		result = g
		return uow.RecordEvents(ctx, repos, g)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(action,
		zap.String("group_id", groupID.String()),
		zap.String("actor_id", actorID.String()),
		zap.Int("member_count", result.ActiveMemberCount()),
	)
	resp := ToGroupResponse(result, result.IsAdmin(actorID))
	return &resp, nil
}

func toDomainFilter(filter ListFilter) group.Filter {
	return group.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   strings.TrimSpace(filter.Search),
		},
		Status: filter.Status,
	}
}
