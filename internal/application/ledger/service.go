// Package ledger records contributions and propagates confirmed amounts to
// the group, the member record and the contributor's profile.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/application/uow"
	"github.com/savings/backend/internal/domain/contribution"
	"github.com/savings/backend/internal/domain/group"
	"github.com/savings/backend/internal/domain/identity"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/savings/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Metrics receives ledger business metrics
type Metrics interface {
	RecordContribution(ctx context.Context, status string, amount decimal.Decimal)
	RecordReversal(ctx context.Context, reason string, amount decimal.Decimal)
}

type nopMetrics struct{}

func (nopMetrics) RecordContribution(context.Context, string, decimal.Decimal) {}
func (nopMetrics) RecordReversal(context.Context, string, decimal.Decimal)     {}

// Config holds ledger settings
type Config struct {
	// DefaultStatus applies when a request does not ask for a status
	DefaultStatus contribution.Status
	// RequestKeyTTL bounds how long a request key is remembered by the store
	RequestKeyTTL time.Duration
}

// DefaultConfig returns confirmed-by-default with a 24h request key window
func DefaultConfig() Config {
	return Config{
		DefaultStatus: contribution.StatusConfirmed,
		RequestKeyTTL: 24 * time.Hour,
	}
}

// Service is the contribution ledger
type Service struct {
	scope         uow.TransactionScope
	contributions contribution.Repository
	groups        group.Repository
	requests      shared.IdempotencyStore
	metrics       Metrics
	config        Config
	logger        *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithRequestStore deduplicates request keys through store before touching the database
func WithRequestStore(store shared.IdempotencyStore) Option {
	return func(s *Service) {
		s.requests = store
	}
}

// WithMetrics reports ledger activity to m
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewService creates a new ledger service
func NewService(
	scope uow.TransactionScope,
	contributions contribution.Repository,
	groups group.Repository,
	config Config,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	if config.DefaultStatus == "" {
		config.DefaultStatus = contribution.StatusConfirmed
	}
	if config.RequestKeyTTL <= 0 {
		config.RequestKeyTTL = DefaultConfig().RequestKeyTTL
	}
	s := &Service{
		scope:         scope,
		contributions: contributions,
		groups:        groups,
		metrics:       nopMetrics{},
		config:        config,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordContribution records a contribution to a group. Confirmed contributions
// are credited to the group, the member and the contributor in one transaction.
// A request key already used by the same user returns the first contribution.
func (s *Service) RecordContribution(ctx context.Context, input RecordInput) (resp *ContributionResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "record_contribution",
		telemetry.SpanAttrGroupID, input.GroupID,
		telemetry.SpanAttrUserID, input.UserID,
		telemetry.SpanAttrAmount, input.Amount,
	)
	defer func() { telemetry.End(span, err) }()
	return s.record(ctx, input)
}

func (s *Service) record(ctx context.Context, input RecordInput) (*ContributionResponse, error) {
	meta := input.Metadata
	meta.RequestKey = strings.TrimSpace(meta.RequestKey)
	status := input.Status
	if status == "" {
		status = s.config.DefaultStatus
	}
	switch status {
	case contribution.StatusConfirmed:
		meta.Pending = false
	case contribution.StatusPending:
		meta.Pending = true
	default:
		return nil, shared.NewDomainError("INVALID_STATUS", "New contributions are either pending or confirmed")
	}
	if !input.Amount.IsPositive() {
		return nil, contribution.ErrInvalidAmount
	}

	key := ""
	if meta.RequestKey != "" {
		key = requestKey(input.UserID, meta.RequestKey)
		if replay, err := s.claimRequest(ctx, input.UserID, meta.RequestKey, key); replay != nil || err != nil {
			return replay, err
		}
	}

	var recorded *contribution.Contribution
	replayed := false
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if meta.RequestKey != "" {
			existing, err := repos.Contributions().FindByRequestKey(ctx, input.UserID, meta.RequestKey)
			if err == nil {
				recorded, replayed = existing, true
				return nil
			}
			if !errors.Is(err, contribution.ErrContributionNotFound) {
				return err
			}
		}

		g, err := repos.Groups().FindByIDForUpdate(ctx, input.GroupID)
		if err != nil {
			return err
		}
		if err := g.EnsureAcceptsContributions(); err != nil {
			return err
		}
		if !g.IsActiveMember(input.UserID) {
			return group.ErrNotMember
		}
		if err := g.ValidateAmount(input.Amount); err != nil {
			return err
		}
		if meta.Currency == "" {
			meta.Currency = g.Currency
		}

		now := time.Now()
		c, err := contribution.NewContribution(input.UserID, g.ID, input.Amount, meta, now)
		if err != nil {
			return err
		}

		before := g.ProgressPercentage
		var user *identity.User
		if c.Status.IsCounted() {
			if user, err = s.credit(ctx, repos, g, c, now); err != nil {
				return err
			}
		}
		c.RecordProgress(before, g.ProgressPercentage)

		if err := repos.Contributions().Create(ctx, c); err != nil {
			return err
		}
		if err := repos.Groups().Save(ctx, g); err != nil {
			return err
		}
		sources := []uow.EventSource{c, g}
		if user != nil {
			if err := repos.Users().Save(ctx, user); err != nil {
				return err
			}
			sources = append(sources, user)
		}
		recorded = c
		return uow.RecordEvents(ctx, repos, sources...)
	})
	if err != nil {
		if key != "" && s.requests != nil {
			if ferr := s.requests.Forget(ctx, key); ferr != nil {
				s.logger.Warn("failed to release request key", zap.String("key", key), zap.Error(ferr))
			}
		}
		return nil, err
	}
	if replayed {
		resp := ToContributionResponse(recorded)
		return &resp, nil
	}

	s.metrics.RecordContribution(ctx, string(recorded.Status), recorded.Amount)
	s.logger.Info("contribution recorded",
		zap.String("contribution_id", recorded.ID.String()),
		zap.String("group_id", recorded.GroupID.String()),
		zap.String("user_id", recorded.UserID.String()),
		zap.String("amount", recorded.Amount.String()),
		zap.String("status", string(recorded.Status)),
		zap.Int64("points", recorded.PointsEarned),
	)
	resp := ToContributionResponse(recorded)
	return &resp, nil
}

// claimRequest marks key in the request store. A key already marked resolves
// to the stored contribution, or DUPLICATE_REQUEST while the first request is
// still in flight.
func (s *Service) claimRequest(ctx context.Context, userID uuid.UUID, rawKey, key string) (*ContributionResponse, error) {
	if s.requests == nil {
		return nil, nil
	}
	fresh, err := s.requests.MarkProcessed(ctx, key, s.config.RequestKeyTTL)
	if err != nil {
		// the transactional lookup still deduplicates
		s.logger.Warn("request store unavailable", zap.String("key", key), zap.Error(err))
		return nil, nil
	}
	if fresh {
		return nil, nil
	}
	existing, err := s.contributions.FindByRequestKey(ctx, userID, rawKey)
	if errors.Is(err, contribution.ErrContributionNotFound) {
		return nil, contribution.ErrDuplicateRequest
	}
	if err != nil {
		return nil, err
	}
	resp := ToContributionResponse(existing)
	return &resp, nil
}

// credit propagates a confirmed contribution: group balance, member totals,
// auto-completion, then the contributor's totals, experience and streak.
func (s *Service) credit(ctx context.Context, repos uow.Repositories, g *group.Group, c *contribution.Contribution, now time.Time) (*identity.User, error) {
	if err := g.ApplyContribution(c.UserID, c.Amount, now); err != nil {
		return nil, err
	}
	user, err := repos.Users().FindByIDForUpdate(ctx, c.UserID)
	if err != nil {
		return nil, fmt.Errorf("load contributor: %w", err)
	}
	streak := user.CreditContribution(c.ID, c.Amount, c.PointsEarned)
	c.Confirmed(streak)
	return user, nil
}

// Cancel cancels a contribution. A confirmed amount is removed from the group
// and the member record; the contributor's totals, experience and streak are kept.
func (s *Service) Cancel(ctx context.Context, contributionID, actorID uuid.UUID) (*ContributionResponse, error) {
	var result *contribution.Contribution
	var reversed bool
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		c, err := repos.Contributions().FindByID(ctx, contributionID)
		if err != nil {
			return err
		}
		if c.Status == contribution.StatusCancelled {
			return contribution.ErrAlreadyCancelled
		}
		g, err := repos.Groups().FindByIDForUpdate(ctx, c.GroupID)
		if err != nil {
			return err
		}
		if !c.IsContributor(actorID) && !g.IsAdmin(actorID) {
			return contribution.ErrAccessDenied
		}

		if reversed, err = c.Cancel(actorID); err != nil {
			return err
		}
		if reversed {
			g.ReverseContribution(c.UserID, c.Amount, time.Now())
			if err := repos.Groups().Save(ctx, g); err != nil {
				return err
			}
		}
		if err := repos.Contributions().Save(ctx, c); err != nil {
			return err
		}
		result = c
		return uow.RecordEvents(ctx, repos, c, g)
	})
	if err != nil {
		return nil, err
	}

	if reversed {
		s.metrics.RecordReversal(ctx, "cancelled", result.Amount)
	}
	s.logger.Info("contribution cancelled",
		zap.String("contribution_id", result.ID.String()),
		zap.String("actor_id", actorID.String()),
		zap.Bool("reversed", reversed),
	)
	resp := ToContributionResponse(result)
	return &resp, nil
}

// Verify confirms a pending contribution and credits it. Group admins only;
// the group must still be accepting contributions.
func (s *Service) Verify(ctx context.Context, contributionID, verifierID uuid.UUID) (*ContributionResponse, error) {
	var result *contribution.Contribution
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		c, err := repos.Contributions().FindByID(ctx, contributionID)
		if err != nil {
			return err
		}
		g, err := repos.Groups().FindByIDForUpdate(ctx, c.GroupID)
		if err != nil {
			return err
		}
		if err := g.RequireAdmin(verifierID); err != nil {
			return err
		}
		if err := g.EnsureAcceptsContributions(); err != nil {
			return err
		}

		now := time.Now()
		if err := c.Verify(verifierID, now); err != nil {
			return err
		}
		before := g.ProgressPercentage
		user, err := s.credit(ctx, repos, g, c, now)
		if err != nil {
			return err
		}
		c.RecordProgress(before, g.ProgressPercentage)

		if err := repos.Contributions().Save(ctx, c); err != nil {
			return err
		}
		if err := repos.Groups().Save(ctx, g); err != nil {
			return err
		}
		if err := repos.Users().Save(ctx, user); err != nil {
			return err
		}
		result = c
		return uow.RecordEvents(ctx, repos, c, g, user)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordContribution(ctx, string(result.Status), result.Amount)
	s.logger.Info("contribution verified",
		zap.String("contribution_id", result.ID.String()),
		zap.String("verified_by", verifierID.String()),
	)
	resp := ToContributionResponse(result)
	return &resp, nil
}

// Update edits a contribution. Only the contributor may edit; a changed amount
// on a confirmed contribution moves the group and member totals by the delta.
func (s *Service) Update(ctx context.Context, contributionID, actorID uuid.UUID, input UpdateInput) (*ContributionResponse, error) {
	var result *contribution.Contribution
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		c, err := repos.Contributions().FindByID(ctx, contributionID)
		if err != nil {
			return err
		}
		if !c.IsContributor(actorID) {
			return contribution.ErrNotContributor
		}
		if c.Status.IsTerminal() {
			return contribution.ErrClosed
		}

		if input.Description != nil || input.Notes != nil {
			description, notes := c.Description, c.Notes
			if input.Description != nil {
				description = *input.Description
			}
			if input.Notes != nil {
				notes = *input.Notes
			}
			if err := c.UpdateNotes(description, notes); err != nil {
				return err
			}
		}

		var g *group.Group
		if input.Amount != nil && !input.Amount.Equal(c.Amount) {
			if g, err = repos.Groups().FindByIDForUpdate(ctx, c.GroupID); err != nil {
				return err
			}
			if err := g.ValidateAmount(*input.Amount); err != nil {
				return err
			}
			delta, err := c.UpdateAmount(actorID, *input.Amount)
			if err != nil {
				return err
			}
			if !delta.IsZero() {
				g.AdjustContribution(c.UserID, delta, time.Now())
				if err := repos.Groups().Save(ctx, g); err != nil {
					return err
				}
			}
		}

		if err := repos.Contributions().Save(ctx, c); err != nil {
			return err
		}
		result = c
		if g != nil {
			return uow.RecordEvents(ctx, repos, c, g)
		}
		return uow.RecordEvents(ctx, repos, c)
	})
	if err != nil {
		return nil, err
	}

	resp := ToContributionResponse(result)
	return &resp, nil
}

// Refund reverses a confirmed contribution. Group admins only.
func (s *Service) Refund(ctx context.Context, contributionID, actorID uuid.UUID) (*ContributionResponse, error) {
	var result *contribution.Contribution
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		c, err := repos.Contributions().FindByID(ctx, contributionID)
		if err != nil {
			return err
		}
		g, err := repos.Groups().FindByIDForUpdate(ctx, c.GroupID)
		if err != nil {
			return err
		}
		if err := g.RequireAdmin(actorID); err != nil {
			return err
		}
		if err := c.Refund(actorID); err != nil {
			return err
		}
		g.ReverseContribution(c.UserID, c.Amount, time.Now())

		if err := repos.Contributions().Save(ctx, c); err != nil {
			return err
		}
		if err := repos.Groups().Save(ctx, g); err != nil {
			return err
		}
		result = c
		return uow.RecordEvents(ctx, repos, c, g)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordReversal(ctx, "refunded", result.Amount)
	resp := ToContributionResponse(result)
	return &resp, nil
}

// Get returns a contribution visible to the contributor and active group members
func (s *Service) Get(ctx context.Context, contributionID, viewerID uuid.UUID) (*ContributionResponse, error) {
	c, err := s.contributions.FindByID(ctx, contributionID)
	if err != nil {
		return nil, err
	}
	if !c.IsContributor(viewerID) {
		g, err := s.groups.FindByID(ctx, c.GroupID)
		if err != nil {
			return nil, err
		}
		if !g.IsActiveMember(viewerID) {
			return nil, contribution.ErrAccessDenied
		}
	}
	resp := ToContributionResponse(c)
	return &resp, nil
}

// ListByUser lists the viewer's own contributions
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]ContributionResponse, int64, error) {
	f := toDomainFilter(filter)
	f.UserID = &userID
	f.GroupID = filter.GroupID
	items, total, err := s.contributions.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToContributionResponses(items), total, nil
}

// ListByGroup lists a group's contributions for an active member
func (s *Service) ListByGroup(ctx context.Context, groupID, viewerID uuid.UUID, filter ListFilter) ([]ContributionResponse, int64, error) {
	if err := s.requireMember(ctx, groupID, viewerID); err != nil {
		return nil, 0, err
	}
	f := toDomainFilter(filter)
	f.GroupID = &groupID
	items, total, err := s.contributions.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToContributionResponses(items), total, nil
}

// UserStats summarizes the user's confirmed contributions
func (s *Service) UserStats(ctx context.Context, userID uuid.UUID) (*StatsResponse, error) {
	return s.stats(ctx, &userID, nil)
}

// GroupStats summarizes a group's confirmed contributions for an active member
func (s *Service) GroupStats(ctx context.Context, groupID, viewerID uuid.UUID) (*StatsResponse, error) {
	if err := s.requireMember(ctx, groupID, viewerID); err != nil {
		return nil, err
	}
	return s.stats(ctx, nil, &groupID)
}

func (s *Service) stats(ctx context.Context, userID, groupID *uuid.UUID) (*StatsResponse, error) {
	st, err := s.contributions.Stats(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	return &StatsResponse{
		TotalAmount:        st.TotalAmount,
		TotalContributions: st.TotalContributions,
		AverageAmount:      st.AverageAmount,
		MaxAmount:          st.MaxAmount,
		MinAmount:          st.MinAmount,
	}, nil
}

func (s *Service) requireMember(ctx context.Context, groupID, userID uuid.UUID) error {
	g, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	if !g.IsActiveMember(userID) {
		return group.ErrNotMember
	}
	return nil
}

func toDomainFilter(filter ListFilter) contribution.Filter {
	return contribution.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		Status:   filter.Status,
		Type:     filter.Type,
		DateFrom: filter.DateFrom,
		DateTo:   filter.DateTo,
	}
}

func requestKey(userID uuid.UUID, key string) string {
	return "contribution:" + userID.String() + ":" + key
}
