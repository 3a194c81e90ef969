package group

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvitationTTL is how long an invitation stays acceptable
const InvitationTTL = 7 * 24 * time.Hour

// Member is a user's association with a group. Records are never removed;
// leaving flips IsActive so contribution history is retained.
type Member struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Role             Role
	JoinedAt         time.Time
	TotalContributed decimal.Decimal
	LastContribution *time.Time
	IsActive         bool
}

// IsAdmin reports whether the member is an active admin
func (m Member) IsAdmin() bool {
	return m.IsActive && m.Role == RoleAdmin
}

// Invitation is an email invitation to join the group
type Invitation struct {
	ID          uuid.UUID
	Email       string
	InvitedBy   uuid.UUID
	InvitedAt   time.Time
	ExpiresAt   time.Time
	Status      InvitationStatus
	RespondedAt *time.Time
}

// IsExpired reports whether the invitation's expiry has passed
func (i Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// ActiveMemberCount returns the number of active members
func (g *Group) ActiveMemberCount() int {
	n := 0
	for _, m := range g.Members {
		if m.IsActive {
			n++
		}
	}
	return n
}

func (g *Group) activeAdminCount() int {
	n := 0
	for _, m := range g.Members {
		if m.IsAdmin() {
			n++
		}
	}
	return n
}

// memberRecord returns the membership record regardless of activity
func (g *Group) memberRecord(userID uuid.UUID) *Member {
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			return &g.Members[i]
		}
	}
	return nil
}

func (g *Group) activeMember(userID uuid.UUID) *Member {
	if m := g.memberRecord(userID); m != nil && m.IsActive {
		return m
	}
	return nil
}

// Member returns a copy of the user's active membership
func (g *Group) Member(userID uuid.UUID) (Member, bool) {
	if m := g.activeMember(userID); m != nil {
		return *m, true
	}
	return Member{}, false
}

// IsActiveMember reports whether the user is an active member
func (g *Group) IsActiveMember(userID uuid.UUID) bool {
	return g.activeMember(userID) != nil
}

// IsAdmin reports whether the user is an active admin
func (g *Group) IsAdmin(userID uuid.UUID) bool {
	m := g.activeMember(userID)
	return m != nil && m.Role == RoleAdmin
}

// RequireAdmin returns ErrAdminRequired unless the user is an active admin
func (g *Group) RequireAdmin(userID uuid.UUID) error {
	if !g.IsAdmin(userID) {
		return ErrAdminRequired
	}
	return nil
}

// ActiveMemberIDs returns the user IDs of the active members
func (g *Group) ActiveMemberIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(g.Members))
	for _, m := range g.Members {
		if m.IsActive {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}

// AllMemberIDs returns every user that ever held a membership
func (g *Group) AllMemberIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(g.Members))
	for _, m := range g.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// AddMember adds or reactivates a membership.
// Reactivation keeps the historical TotalContributed and resets JoinedAt;
// capacity is checked before either.
func (g *Group) AddMember(userID uuid.UUID, role Role, now time.Time) (*Member, error) {
	if role == "" {
		role = RoleMember
	}
	existing := g.memberRecord(userID)
	if existing != nil && existing.IsActive {
		return nil, ErrAlreadyMember
	}
	if g.ActiveMemberCount() >= g.MaxMembers {
		return nil, ErrGroupFull
	}

	if existing != nil {
		existing.IsActive = true
		existing.JoinedAt = now
		g.Touch()
		g.AddDomainEvent(NewMemberJoinedEvent(g, *existing, true))
		return existing, nil
	}

	g.Members = append(g.Members, Member{
		ID:               uuid.New(),
		UserID:           userID,
		Role:             role,
		JoinedAt:         now,
		TotalContributed: decimal.Zero,
		IsActive:         true,
	})
	m := &g.Members[len(g.Members)-1]
	g.Touch()
	g.AddDomainEvent(NewMemberJoinedEvent(g, *m, false))
	return m, nil
}

// RemoveMember deactivates a membership. The sole active admin cannot be removed.
func (g *Group) RemoveMember(userID uuid.UUID, actorID uuid.UUID) error {
	m := g.activeMember(userID)
	if m == nil {
		return ErrNotMember
	}
	if m.Role == RoleAdmin && g.activeAdminCount() <= 1 {
		return ErrLastAdminRemoval
	}
	m.IsActive = false
	g.Touch()
	g.AddDomainEvent(NewMemberLeftEvent(g, userID, actorID))
	return nil
}

// Promote makes an active member an admin
func (g *Group) Promote(userID uuid.UUID, actorID uuid.UUID) error {
	m := g.activeMember(userID)
	if m == nil {
		return ErrNotMember
	}
	if m.Role == RoleAdmin {
		return ErrAlreadyAdmin
	}
	m.Role = RoleAdmin
	g.Touch()
	g.AddDomainEvent(NewMemberPromotedEvent(g, userID, actorID))
	return nil
}

// Invite appends a pending invitation. activeMemberEmails are the emails of
// the current active members, resolved by the caller. A pending invitation for
// the same email blocks the invite until it expires; an expired one is marked
// expired here.
func (g *Group) Invite(email string, inviterID uuid.UUID, activeMemberEmails []string, now time.Time) (*Invitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for i := range g.Invitations {
		inv := &g.Invitations[i]
		if inv.Email != email || inv.Status != InvitationPending {
			continue
		}
		if !inv.IsExpired(now) {
			return nil, ErrDuplicateInvitation
		}
		inv.Status = InvitationExpired
		g.Touch()
	}
	for _, e := range activeMemberEmails {
		if strings.EqualFold(e, email) {
			return nil, ErrAlreadyMember
		}
	}

	g.Invitations = append(g.Invitations, Invitation{
		ID:        uuid.New(),
		Email:     email,
		InvitedBy: inviterID,
		InvitedAt: now,
		ExpiresAt: now.Add(InvitationTTL),
		Status:    InvitationPending,
	})
	inv := &g.Invitations[len(g.Invitations)-1]
	g.Touch()
	g.AddDomainEvent(NewInvitationSentEvent(g, *inv))
	return inv, nil
}

// checkInvitation runs the acceptance/decline checks in order: exists, email
// matches, pending, not expired. An expired invitation is marked expired.
func (g *Group) checkInvitation(invitationID uuid.UUID, email string, now time.Time) (*Invitation, error) {
	var inv *Invitation
	for i := range g.Invitations {
		if g.Invitations[i].ID == invitationID {
			inv = &g.Invitations[i]
			break
		}
	}
	if inv == nil {
		return nil, ErrInvitationNotFound
	}
	if !strings.EqualFold(inv.Email, strings.TrimSpace(email)) {
		return nil, ErrInvitationEmailMismatch
	}
	if inv.Status != InvitationPending {
		return nil, ErrInvitationNotPending
	}
	if inv.IsExpired(now) {
		inv.Status = InvitationExpired
		g.Touch()
		return nil, ErrInvitationExpired
	}
	return inv, nil
}

// AcceptInvitation validates the invitation and adds the user as a member.
// A cancelled group accepts no one. On ErrInvitationExpired the group has been
// modified and should be saved.
func (g *Group) AcceptInvitation(invitationID, userID uuid.UUID, email string, now time.Time) error {
	if g.Status == StatusCancelled {
		return ErrGroupInactive
	}
	inv, err := g.checkInvitation(invitationID, email, now)
	if err != nil {
		return err
	}
	if _, err := g.AddMember(userID, RoleMember, now); err != nil {
		return err
	}
	inv.Status = InvitationAccepted
	inv.RespondedAt = &now
	return nil
}

// DeclineInvitation validates and declines the invitation
func (g *Group) DeclineInvitation(invitationID uuid.UUID, email string, now time.Time) error {
	inv, err := g.checkInvitation(invitationID, email, now)
	if err != nil {
		return err
	}
	inv.Status = InvitationDeclined
	inv.RespondedAt = &now
	g.Touch()
	return nil
}

// PendingInvitationsFor returns the pending, unexpired invitations for an email
func (g *Group) PendingInvitationsFor(email string, now time.Time) []Invitation {
	var out []Invitation
	for _, inv := range g.Invitations {
		if inv.Status == InvitationPending && !inv.IsExpired(now) && strings.EqualFold(inv.Email, email) {
			out = append(out, inv)
		}
	}
	return out
}
