package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/savings/backend/internal/application/uow/uowtest"
	"github.com/savings/backend/internal/domain/gamification"
	"github.com/savings/backend/internal/domain/identity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockAvatarStorage is a mock implementation of AvatarStorage
type MockAvatarStorage struct {
	mock.Mock
}

func (m *MockAvatarStorage) GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockAvatarStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockAvatarStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockAvatarStorage) DeleteObject(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newProfileService(storage AvatarStorage) (*ProfileService, *uowtest.Scope) {
	scope := uowtest.NewScope()
	svc := NewProfileService(scope, scope.Users, storage, ProfileConfig{MaxAvatarBytes: 1 << 20, PresignExpiry: time.Minute}, zap.NewNop())
	return svc, scope
}

func TestProfileService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t)
	svc, scope := newProfileService(nil)
	scope.Users.On("FindByIDForUpdate", ctx, user.ID).Return(user, nil)
	scope.Users.On("Save", ctx, user).Return(nil)

	bio := "Saving for a bike"
	resp, err := svc.UpdateProfile(ctx, user.ID, ProfileInput{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Sam", resp.FirstName)
	assert.Equal(t, bio, resp.Bio)

	long := strings.Repeat("x", 501)
	_, err = svc.UpdateProfile(ctx, user.ID, ProfileInput{Bio: &long})
	assert.Error(t, err)
}

func TestProfileService_UpdatePreferences(t *testing.T) {
	ctx := context.Background()

	t.Run("merges fields", func(t *testing.T) {
		user := newTestUser(t)
		svc, scope := newProfileService(nil)
		scope.Users.On("FindByIDForUpdate", ctx, user.ID).Return(user, nil)
		scope.Users.On("Save", ctx, user).Return(nil)

		theme, off := "dark", false
		resp, err := svc.UpdatePreferences(ctx, user.ID, PreferencesInput{Theme: &theme, EmailNotifications: &off})
		require.NoError(t, err)
		assert.Equal(t, "dark", resp.Preferences.Theme)
		assert.False(t, resp.Preferences.EmailNotifications)
		assert.True(t, resp.Preferences.PushNotifications)
		assert.Equal(t, "USD", resp.Preferences.Currency)
	})

	t.Run("rejects unknown theme", func(t *testing.T) {
		user := newTestUser(t)
		svc, scope := newProfileService(nil)
		scope.Users.On("FindByIDForUpdate", ctx, user.ID).Return(user, nil)

		theme := "neon"
		_, err := svc.UpdatePreferences(ctx, user.ID, PreferencesInput{Theme: &theme})
		require.Error(t, err)
		scope.Users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("deactivated user cannot edit", func(t *testing.T) {
		user := newTestUser(t)
		user.IsActive = false
		svc, scope := newProfileService(nil)
		scope.Users.On("FindByIDForUpdate", ctx, user.ID).Return(user, nil)

		theme := "dark"
		_, err := svc.UpdatePreferences(ctx, user.ID, PreferencesInput{Theme: &theme})
		assert.ErrorIs(t, err, identity.ErrUserInactive)
	})
}

func TestProfileService_Achievements(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t)
	user.TotalSaved = decimal.NewFromInt(500)
	user.CurrentStreak = 7
	user.AwardBadge(gamification.Badge{Name: "first_contribution", EarnedAt: testNow})
	svc, scope := newProfileService(nil)
	scope.Users.On("FindByID", ctx, user.ID).Return(user, nil)

	achievements, err := svc.Achievements(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, achievements, len(gamification.Catalog()))

	byID := map[string]AchievementResponse{}
	for _, a := range achievements {
		byID[a.ID] = a
	}
	assert.True(t, byID["first_contribution"].Earned)
	assert.Equal(t, testNow, *byID["first_contribution"].EarnedAt)
	assert.False(t, byID["streak_7"].Earned, "earned only once the badge is awarded")
	assert.True(t, byID["streak_7"].Progress.Equal(decimal.NewFromInt(100)))
	assert.True(t, byID["total_1000"].Progress.Equal(decimal.NewFromInt(50)))
}

func TestProfileService_PublicProfileHidesDeactivated(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t)
	svc, scope := newProfileService(nil)
	scope.Users.On("FindByID", ctx, user.ID).Return(user, nil)

	resp, err := svc.PublicProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam Saver", resp.FullName)

	user.IsActive = false
	_, err = svc.PublicProfile(ctx, user.ID)
	assert.ErrorIs(t, err, identity.ErrUserNotFound)
}

func TestProfileService_Avatar(t *testing.T) {
	ctx := context.Background()
	expires := testNow.Add(time.Minute)

	t.Run("storage disabled", func(t *testing.T) {
		svc, _ := newProfileService(nil)
		user := newTestUser(t)
		_, err := svc.RequestAvatarUpload(ctx, user.ID, AvatarUploadInput{ContentType: "image/png", Size: 10})
		assert.ErrorIs(t, err, ErrStorageUnavailable)
	})

	t.Run("upload url under the user's prefix", func(t *testing.T) {
		storage := new(MockAvatarStorage)
		svc, scope := newProfileService(storage)
		user := newTestUser(t)
		scope.Users.On("FindByID", ctx, user.ID).Return(user, nil)
		storage.On("GenerateUploadURL", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "avatars/"+user.ID.String()+"/") && strings.HasSuffix(key, ".png")
		}), "image/png", time.Minute).Return("https://bucket/upload", expires, nil)

		resp, err := svc.RequestAvatarUpload(ctx, user.ID, AvatarUploadInput{ContentType: "image/png", Size: 1024})
		require.NoError(t, err)
		assert.Equal(t, "https://bucket/upload", resp.UploadURL)
		assert.Equal(t, expires, resp.ExpiresAt)
		storage.AssertExpectations(t)
	})

	t.Run("rejects type and size", func(t *testing.T) {
		svc, _ := newProfileService(new(MockAvatarStorage))
		user := newTestUser(t)

		_, err := svc.RequestAvatarUpload(ctx, user.ID, AvatarUploadInput{ContentType: "application/pdf", Size: 10})
		assert.ErrorIs(t, err, ErrUnsupportedAvatarType)

		_, err = svc.RequestAvatarUpload(ctx, user.ID, AvatarUploadInput{ContentType: "image/jpeg", Size: 2 << 20})
		assert.ErrorIs(t, err, ErrAvatarTooLarge)
	})

	t.Run("confirm replaces and deletes the previous object", func(t *testing.T) {
		storage := new(MockAvatarStorage)
		svc, scope := newProfileService(storage)
		user := newTestUser(t)
		oldKey := "avatars/" + user.ID.String() + "/old.png"
		newKey := "avatars/" + user.ID.String() + "/new.png"
		user.Avatar = oldKey
		scope.Users.On("FindByIDForUpdate", ctx, user.ID).Return(user, nil)
		scope.Users.On("Save", ctx, user).Return(nil)
		storage.On("ObjectExists", ctx, newKey).Return(true, nil)
		storage.On("DeleteObject", ctx, oldKey).Return(nil)

		resp, err := svc.ConfirmAvatar(ctx, user.ID, newKey)
		require.NoError(t, err)
		assert.Equal(t, newKey, resp.Avatar)
		storage.AssertExpectations(t)
	})

	t.Run("confirm rejects foreign and missing keys", func(t *testing.T) {
		storage := new(MockAvatarStorage)
		svc, _ := newProfileService(storage)
		user := newTestUser(t)

		_, err := svc.ConfirmAvatar(ctx, user.ID, "avatars/someone-else/x.png")
		assert.ErrorIs(t, err, ErrAvatarKeyNotOwned)

		key := "avatars/" + user.ID.String() + "/x.png"
		storage.On("ObjectExists", ctx, key).Return(false, nil)
		_, err = svc.ConfirmAvatar(ctx, user.ID, key)
		assert.ErrorIs(t, err, ErrAvatarNotUploaded)
	})

	t.Run("download url", func(t *testing.T) {
		storage := new(MockAvatarStorage)
		svc, scope := newProfileService(storage)
		user := newTestUser(t)
		scope.Users.On("FindByID", ctx, user.ID).Return(user, nil)

		_, err := svc.AvatarURL(ctx, user.ID)
		assert.ErrorIs(t, err, ErrNoAvatar)

		user.Avatar = "avatars/" + user.ID.String() + "/a.png"
		storage.On("GenerateDownloadURL", ctx, user.Avatar, time.Minute).Return("https://bucket/a.png", expires, nil)
		resp, err := svc.AvatarURL(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://bucket/a.png", resp.URL)
	})
}
