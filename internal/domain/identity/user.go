package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/gamification"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/savings/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	hasLetter     = regexp.MustCompile(`[a-zA-Z]`)
	hasNumber     = regexp.MustCompile(`[0-9]`)
)

// Theme is the UI theme preference
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

// NotificationPreferences toggles notification channels
type NotificationPreferences struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
	SMS   bool `json:"sms"`
}

// Preferences are user-level settings
type Preferences struct {
	Currency      valueobject.Currency    `json:"currency"`
	Notifications NotificationPreferences `json:"notifications"`
	Theme         Theme                   `json:"theme"`
}

// DefaultPreferences returns the preferences of a newly registered user
func DefaultPreferences() Preferences {
	return Preferences{
		Currency:      valueobject.DefaultCurrency,
		Notifications: NotificationPreferences{Email: true, Push: true},
		Theme:         ThemeAuto,
	}
}

// User is the identity and financial profile of a saver.
// Users are never hard-deleted; Deactivate flips IsActive.
type User struct {
	shared.BaseAggregateRoot
	Username      string
	Email         string
	PasswordHash  string
	FirstName     string
	LastName      string
	Avatar        string // object key in the avatar bucket
	Bio           string
	Preferences   Preferences
	TotalSaved    decimal.Decimal
	CurrentStreak int
	LongestStreak int
	Experience    int64
	Level         int
	Badges        gamification.BadgeSet
	GroupIDs      []uuid.UUID // membership back-references, loaded by the repository
	IsActive      bool
	LastLoginAt   *time.Time
}

// NewUser registers a new user
func NewUser(username, email, password, firstName, lastName string) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := validateName(firstName, "first"); err != nil {
		return nil, err
	}
	if err := validateName(lastName, "last"); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          strings.TrimSpace(username),
		Email:             email,
		PasswordHash:      passwordHash,
		FirstName:         strings.TrimSpace(firstName),
		LastName:          strings.TrimSpace(lastName),
		Preferences:       DefaultPreferences(),
		TotalSaved:        decimal.Zero,
		Level:             1,
		Badges:            gamification.BadgeSet{},
		GroupIDs:          []uuid.UUID{},
		IsActive:          true,
	}

	user.AddDomainEvent(NewUserRegisteredEvent(user))

	return user, nil
}

// Lifecycle implements shared.LifecycleAware
func (u *User) Lifecycle() shared.Lifecycle {
	return shared.LifecycleSoftDelete
}

// FullName returns "first last"
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UpdateProfile changes the editable profile fields
func (u *User) UpdateProfile(firstName, lastName, bio string) error {
	if err := validateName(firstName, "first"); err != nil {
		return err
	}
	if err := validateName(lastName, "last"); err != nil {
		return err
	}
	if len(bio) > 500 {
		return shared.NewDomainError("INVALID_BIO", "Bio cannot exceed 500 characters")
	}

	u.FirstName = strings.TrimSpace(firstName)
	u.LastName = strings.TrimSpace(lastName)
	u.Bio = strings.TrimSpace(bio)
	u.Touch()
	return nil
}

// SetAvatar sets the avatar object key
func (u *User) SetAvatar(key string) error {
	if len(key) > 500 {
		return shared.NewDomainError("INVALID_AVATAR", "Avatar key cannot exceed 500 characters")
	}
	u.Avatar = key
	u.Touch()
	return nil
}

// UpdatePreferences replaces the preferences
func (u *User) UpdatePreferences(p Preferences) error {
	if !p.Currency.IsValid() {
		return shared.NewDomainError("INVALID_CURRENCY", "Unsupported currency")
	}
	switch p.Theme {
	case ThemeLight, ThemeDark, ThemeAuto:
	default:
		return shared.NewDomainError("INVALID_THEME", "Theme must be light, dark or auto")
	}
	u.Preferences = p
	u.Touch()
	return nil
}

// ChangePassword changes the user's password
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = passwordHash
	u.Touch()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// RecordLogin stamps LastLoginAt
func (u *User) RecordLogin(now time.Time) {
	u.LastLoginAt = &now
	u.Touch()
}

// Deactivate soft-deletes the user
func (u *User) Deactivate() error {
	if !u.IsActive {
		return ErrUserInactive
	}
	u.IsActive = false
	u.Touch()
	u.AddDomainEvent(NewUserDeactivatedEvent(u))
	return nil
}

// Streak returns the streak counters
func (u *User) Streak() gamification.Streak {
	return gamification.Streak{Current: u.CurrentStreak, Longest: u.LongestStreak}
}

// Profile returns the state achievements are evaluated against
func (u *User) Profile() gamification.Profile {
	return gamification.Profile{
		TotalSaved:    u.TotalSaved,
		Experience:    u.Experience,
		Level:         u.Level,
		CurrentStreak: u.CurrentStreak,
	}
}

// CreditContribution applies a confirmed contribution: total saved, experience,
// level and streak. It returns the streak count after crediting.
func (u *User) CreditContribution(contributionID uuid.UUID, amount decimal.Decimal, points int64) int {
	u.TotalSaved = u.TotalSaved.Add(amount)
	u.Experience += points

	previousLevel := u.Level
	u.Level = gamification.LevelFor(u.Experience)

	streak := u.Streak().Advance()
	u.CurrentStreak = streak.Current
	u.LongestStreak = streak.Longest
	u.Touch()

	u.AddDomainEvent(NewUserCreditedEvent(u, contributionID, amount, points))
	if u.Level > previousLevel {
		u.AddDomainEvent(NewUserLeveledUpEvent(u, previousLevel))
	}
	return u.CurrentStreak
}

// AwardBadge adds the badge unless already held; it reports whether it was added
func (u *User) AwardBadge(b gamification.Badge) bool {
	badges, added := u.Badges.Award(b)
	if !added {
		return false
	}
	u.Badges = badges
	u.Touch()
	u.AddDomainEvent(NewBadgeAwardedEvent(u, badges[len(badges)-1]))
	return true
}

// HasGroup reports whether the group is in the user's back-references
func (u *User) HasGroup(groupID uuid.UUID) bool {
	for _, id := range u.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}

// AttachGroup adds a group back-reference
func (u *User) AttachGroup(groupID uuid.UUID) {
	if u.HasGroup(groupID) {
		return
	}
	u.GroupIDs = append(u.GroupIDs, groupID)
}

// DetachGroup removes a group back-reference
func (u *User) DetachGroup(groupID uuid.UUID) {
	kept := u.GroupIDs[:0]
	for _, id := range u.GroupIDs {
		if id != groupID {
			kept = append(kept, id)
		}
	}
	u.GroupIDs = kept
}

// Validation functions

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 30 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 30 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers and underscores")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	if !hasLetter.MatchString(password) || !hasNumber.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

// ValidateEmail exposes email validation to other bounded contexts (invitations)
func ValidateEmail(email string) error {
	return validateEmail(strings.ToLower(strings.TrimSpace(email)))
}

func validateName(name, which string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "The "+which+" name cannot be empty")
	}
	if len(name) > 50 {
		return shared.NewDomainError("INVALID_NAME", "The "+which+" name cannot exceed 50 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
