package group

// Status represents the lifecycle status of a group
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled" // soft-deleted
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// AcceptsContributions returns true if contributions can be recorded in this status
func (s Status) AcceptsContributions() bool {
	return s == StatusActive
}

// Type classifies what the group is
type Type string

const (
	TypeFriends    Type = "friends"
	TypeFamily     Type = "family"
	TypeColleagues Type = "colleagues"
	TypeClassmates Type = "classmates"
	TypeCommunity  Type = "community"
	TypeOther      Type = "other"
)

// IsValid checks if the type is a valid Type
func (t Type) IsValid() bool {
	switch t {
	case TypeFriends, TypeFamily, TypeColleagues, TypeClassmates, TypeCommunity, TypeOther:
		return true
	}
	return false
}

// Privacy controls who can join
type Privacy string

const (
	PrivacyPublic     Privacy = "public"      // anyone can join
	PrivacyPrivate    Privacy = "private"     // no self-service joining
	PrivacyInviteOnly Privacy = "invite-only" // joining by invitation; direct join allowed
)

// IsValid checks if the privacy is a valid Privacy
func (p Privacy) IsValid() bool {
	switch p {
	case PrivacyPublic, PrivacyPrivate, PrivacyInviteOnly:
		return true
	}
	return false
}

// Role is a member's role in the group
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// IsValid checks if the role is a valid Role
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleMember
}

// InvitationStatus is the state of an invitation
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationExpired  InvitationStatus = "expired"
)
