package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/application/uow"
	"github.com/savings/backend/internal/domain/identity"
	"github.com/savings/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AvatarStorage is the object store holding avatar images
type AvatarStorage interface {
	GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	ObjectExists(ctx context.Context, key string) (bool, error)
	DeleteObject(ctx context.Context, key string) error
}

// Avatar errors
var (
	ErrStorageUnavailable    = shared.NewKindError(shared.KindInvalidState, "STORAGE_UNAVAILABLE", "Avatar storage is not configured")
	ErrUnsupportedAvatarType = shared.NewKindError(shared.KindValidation, "UNSUPPORTED_AVATAR_TYPE", "Avatar must be a JPEG, PNG, GIF or WebP image")
	ErrAvatarTooLarge        = shared.NewKindError(shared.KindValidation, "AVATAR_TOO_LARGE", "Avatar exceeds the maximum size")
	ErrAvatarNotUploaded     = shared.NewKindError(shared.KindValidation, "AVATAR_NOT_UPLOADED", "Avatar object has not been uploaded")
	ErrAvatarKeyNotOwned     = shared.NewKindError(shared.KindAuthorizationDenied, "AVATAR_KEY_NOT_OWNED", "Avatar key does not belong to this user")
	ErrNoAvatar              = shared.NewNotFoundError("AVATAR_NOT_FOUND", "User has no avatar")
)

var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ProfileConfig holds avatar limits
type ProfileConfig struct {
	MaxAvatarBytes int64
	PresignExpiry  time.Duration
}

// ProfileService serves the user's own profile, preferences, achievements and avatar
type ProfileService struct {
	scope   uow.TransactionScope
	users   identity.UserRepository
	storage AvatarStorage // nil when storage is disabled
	config  ProfileConfig
	logger  *zap.Logger
}

// NewProfileService creates a new profile service. storage may be nil.
func NewProfileService(
	scope uow.TransactionScope,
	users identity.UserRepository,
	storage AvatarStorage,
	config ProfileConfig,
	logger *zap.Logger,
) *ProfileService {
	if config.MaxAvatarBytes <= 0 {
		config.MaxAvatarBytes = 5 << 20
	}
	if config.PresignExpiry <= 0 {
		config.PresignExpiry = 15 * time.Minute
	}
	return &ProfileService{
		scope:   scope,
		users:   users,
		storage: storage,
		config:  config,
		logger:  logger,
	}
}

// Me returns the caller's full profile
func (s *ProfileService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// PublicProfile returns what other users may see; deactivated users are not found
func (s *ProfileService) PublicProfile(ctx context.Context, userID uuid.UUID) (*PublicProfileResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, identity.ErrUserNotFound
	}
	resp := toPublicProfile(user)
	return &resp, nil
}

// Achievements returns the achievement catalog with the caller's progress
func (s *ProfileService) Achievements(ctx context.Context, userID uuid.UUID) ([]AchievementResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toAchievementResponses(user), nil
}

// UpdateProfile changes names and bio
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*UserResponse, error) {
	return s.mutate(ctx, userID, func(u *identity.User) error {
		first, last, bio := u.FirstName, u.LastName, u.Bio
		if input.FirstName != nil {
			first = *input.FirstName
		}
		if input.LastName != nil {
			last = *input.LastName
		}
		if input.Bio != nil {
			bio = *input.Bio
		}
		return u.UpdateProfile(first, last, bio)
	})
}

// UpdatePreferences merges input into the current preferences
func (s *ProfileService) UpdatePreferences(ctx context.Context, userID uuid.UUID, input PreferencesInput) (*UserResponse, error) {
	return s.mutate(ctx, userID, func(u *identity.User) error {
		return u.UpdatePreferences(input.apply(u.Preferences))
	})
}

// RequestAvatarUpload returns a presigned PUT URL for a new avatar object.
// The avatar only changes once ConfirmAvatar is called with the returned key.
func (s *ProfileService) RequestAvatarUpload(ctx context.Context, userID uuid.UUID, input AvatarUploadInput) (*AvatarUploadResponse, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	ext, ok := avatarExtensions[strings.ToLower(input.ContentType)]
	if !ok {
		return nil, ErrUnsupportedAvatarType
	}
	if input.Size <= 0 || input.Size > s.config.MaxAvatarBytes {
		return nil, ErrAvatarTooLarge
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s%s.%s", avatarPrefix(userID), uuid.New().String(), ext)
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, input.ContentType, s.config.PresignExpiry)
	if err != nil {
		return nil, err
	}
	return &AvatarUploadResponse{UploadURL: url, Key: key, ExpiresAt: expiresAt}, nil
}

// ConfirmAvatar points the profile at an uploaded object and removes the previous one
func (s *ProfileService) ConfirmAvatar(ctx context.Context, userID uuid.UUID, key string) (*UserResponse, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	if !strings.HasPrefix(key, avatarPrefix(userID)) {
		return nil, ErrAvatarKeyNotOwned
	}
	exists, err := s.storage.ObjectExists(ctx, key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrAvatarNotUploaded
	}

	var previous string
	resp, err := s.mutate(ctx, userID, func(u *identity.User) error {
		previous = u.Avatar
		return u.SetAvatar(key)
	})
	if err != nil {
		return nil, err
	}

	if previous != "" && previous != key {
		if err := s.storage.DeleteObject(ctx, previous); err != nil {
			s.logger.Warn("failed to delete previous avatar",
				zap.String("user_id", userID.String()),
				zap.String("key", previous),
				zap.Error(err))
		}
	}
	return resp, nil
}

// AvatarURL returns a presigned GET URL for a user's avatar
func (s *ProfileService) AvatarURL(ctx context.Context, userID uuid.UUID) (*AvatarURLResponse, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Avatar == "" {
		return nil, ErrNoAvatar
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, user.Avatar, s.config.PresignExpiry)
	if err != nil {
		return nil, err
	}
	return &AvatarURLResponse{URL: url, ExpiresAt: expiresAt}, nil
}

func (s *ProfileService) mutate(ctx context.Context, userID uuid.UUID, fn func(u *identity.User) error) (*UserResponse, error) {
	var updated *identity.User
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		user, err := repos.Users().FindByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if !user.IsActive {
			return identity.ErrUserInactive
		}
		if err := fn(user); err != nil {
			return err
		}
		if err := repos.Users().Save(ctx, user); err != nil {
			return err
		}
		updated = user
		return uow.RecordEvents(ctx, repos, user)
	})
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(updated)
	return &resp, nil
}

func avatarPrefix(userID uuid.UUID) string {
	return "avatars/" + userID.String() + "/"
}
