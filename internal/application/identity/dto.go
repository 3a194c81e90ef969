package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/gamification"
	"github.com/savings/backend/internal/domain/identity"
	"github.com/savings/backend/internal/domain/shared/valueobject"
	"github.com/savings/backend/internal/infrastructure/auth"
	"github.com/shopspring/decimal"
)

// RegisterInput is the input for creating an account
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// LoginInput authenticates by username or email
type LoginInput struct {
	Login    string
	Password string
}

// LogoutInput revokes the presented tokens
type LogoutInput struct {
	AccessClaims *auth.Claims
	RefreshToken string // optional
}

// ChangePasswordInput is the input for a password change
type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

// ProfileInput updates the editable profile fields; nil leaves a field unchanged
type ProfileInput struct {
	FirstName *string
	LastName  *string
	Bio       *string
}

// PreferencesInput updates preferences; nil leaves a field unchanged
type PreferencesInput struct {
	Currency           *string
	Theme              *string
	EmailNotifications *bool
	PushNotifications  *bool
	SMSNotifications   *bool
}

func (in PreferencesInput) apply(p identity.Preferences) identity.Preferences {
	if in.Currency != nil {
		p.Currency = valueobject.Currency(*in.Currency)
	}
	if in.Theme != nil {
		p.Theme = identity.Theme(*in.Theme)
	}
	if in.EmailNotifications != nil {
		p.Notifications.Email = *in.EmailNotifications
	}
	if in.PushNotifications != nil {
		p.Notifications.Push = *in.PushNotifications
	}
	if in.SMSNotifications != nil {
		p.Notifications.SMS = *in.SMSNotifications
	}
	return p
}

// AvatarUploadInput requests a presigned avatar upload
type AvatarUploadInput struct {
	ContentType string
	Size        int64
}

// AuthResult is returned by register, login and refresh
type AuthResult struct {
	User   UserResponse    `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// BadgeResponse is an earned badge
type BadgeResponse struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	EarnedAt    time.Time `json:"earned_at"`
}

// PreferencesResponse mirrors identity.Preferences
type PreferencesResponse struct {
	Currency           string `json:"currency"`
	Theme              string `json:"theme"`
	EmailNotifications bool   `json:"email_notifications"`
	PushNotifications  bool   `json:"push_notifications"`
	SMSNotifications   bool   `json:"sms_notifications"`
}

// UserResponse is the owner's view of a user
type UserResponse struct {
	ID            uuid.UUID           `json:"id"`
	Username      string              `json:"username"`
	Email         string              `json:"email"`
	FirstName     string              `json:"first_name"`
	LastName      string              `json:"last_name"`
	FullName      string              `json:"full_name"`
	Avatar        string              `json:"avatar,omitempty"`
	Bio           string              `json:"bio,omitempty"`
	Preferences   PreferencesResponse `json:"preferences"`
	TotalSaved    decimal.Decimal     `json:"total_saved"`
	CurrentStreak int                 `json:"current_streak"`
	LongestStreak int                 `json:"longest_streak"`
	Experience    int64               `json:"experience"`
	Level         int                 `json:"level"`
	Badges        []BadgeResponse     `json:"badges"`
	GroupIDs      []uuid.UUID         `json:"group_ids"`
	IsActive      bool                `json:"is_active"`
	LastLoginAt   *time.Time          `json:"last_login_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ToUserResponse converts a domain User
func ToUserResponse(u *identity.User) UserResponse {
	badges := make([]BadgeResponse, len(u.Badges))
	for i, b := range u.Badges {
		badges[i] = BadgeResponse{Name: b.Name, Description: b.Description, Icon: b.Icon, EarnedAt: b.EarnedAt}
	}
	groupIDs := u.GroupIDs
	if groupIDs == nil {
		groupIDs = []uuid.UUID{}
	}
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Avatar:    u.Avatar,
		Bio:       u.Bio,
		Preferences: PreferencesResponse{
			Currency:           string(u.Preferences.Currency),
			Theme:              string(u.Preferences.Theme),
			EmailNotifications: u.Preferences.Notifications.Email,
			PushNotifications:  u.Preferences.Notifications.Push,
			SMSNotifications:   u.Preferences.Notifications.SMS,
		},
		TotalSaved:    u.TotalSaved,
		CurrentStreak: u.CurrentStreak,
		LongestStreak: u.LongestStreak,
		Experience:    u.Experience,
		Level:         u.Level,
		Badges:        badges,
		GroupIDs:      groupIDs,
		IsActive:      u.IsActive,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// PublicProfileResponse is what other users see
type PublicProfileResponse struct {
	ID        uuid.UUID       `json:"id"`
	Username  string          `json:"username"`
	FullName  string          `json:"full_name"`
	Avatar    string          `json:"avatar,omitempty"`
	Bio       string          `json:"bio,omitempty"`
	Level     int             `json:"level"`
	Badges    []BadgeResponse `json:"badges"`
	CreatedAt time.Time       `json:"created_at"`
}

func toPublicProfile(u *identity.User) PublicProfileResponse {
	full := ToUserResponse(u)
	return PublicProfileResponse{
		ID:        full.ID,
		Username:  full.Username,
		FullName:  full.FullName,
		Avatar:    full.Avatar,
		Bio:       full.Bio,
		Level:     full.Level,
		Badges:    full.Badges,
		CreatedAt: full.CreatedAt,
	}
}

// AchievementResponse is a catalog entry with the user's progress towards it
type AchievementResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Category    string          `json:"category"`
	Requirement decimal.Decimal `json:"requirement"`
	Current     decimal.Decimal `json:"current"`
	Progress    decimal.Decimal `json:"progress"`
	Earned      bool            `json:"earned"`
	EarnedAt    *time.Time      `json:"earned_at,omitempty"`
}

func toAchievementResponses(u *identity.User) []AchievementResponse {
	profile := u.Profile()
	catalog := gamification.Catalog()
	out := make([]AchievementResponse, 0, len(catalog))
	for _, a := range catalog {
		resp := AchievementResponse{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Icon:        a.Icon,
			Category:    a.Category,
			Requirement: a.Requirement,
			Current:     a.Current(profile),
			Progress:    a.Progress(profile),
		}
		for _, b := range u.Badges {
			if b.Name == a.ID {
				earnedAt := b.EarnedAt
				resp.Earned = true
				resp.EarnedAt = &earnedAt
				break
			}
		}
		out = append(out, resp)
	}
	return out
}

// AvatarUploadResponse carries a presigned PUT URL for a new avatar
type AvatarUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AvatarURLResponse carries a presigned GET URL for the current avatar
type AvatarURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
