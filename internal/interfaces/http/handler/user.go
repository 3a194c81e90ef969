package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/savings/backend/internal/application/identity"
)

// UserHandler serves profiles, preferences, achievements and avatars
type UserHandler struct {
	BaseHandler
	profileService *identity.ProfileService
}

// NewUserHandler creates a new user handler
func NewUserHandler(profileService *identity.ProfileService) *UserHandler {
	return &UserHandler{profileService: profileService}
}

// Me godoc
// @ID           getUserMe
// @Summary      Get current user
// @Description  The authenticated user's profile, preferences, stats and badges
// @Tags         users
// @Produce      json
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	user, err := h.profileService.Me(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// PublicProfile godoc
// @ID           getUserProfile
// @Summary      Get a user's public profile
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[identity.PublicProfileResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id} [get]
func (h *UserHandler) PublicProfile(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	profile, err := h.profileService.PublicProfile(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// Achievements godoc
// @ID           listUserAchievements
// @Summary      List achievements
// @Description  Every badge with whether the current user has earned it
// @Tags         users
// @Produce      json
// @Success      200 {object} APIResponse[[]identity.AchievementResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/me/achievements [get]
func (h *UserHandler) Achievements(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	achievements, err := h.profileService.Achievements(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, achievements)
}

// UpdateProfile godoc
// @ID           updateUserProfile
// @Summary      Update profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body UpdateProfileRequest true "Profile fields"
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/me [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.profileService.UpdateProfile(c.Request.Context(), userID, identity.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdatePreferences godoc
// @ID           updateUserPreferences
// @Summary      Update preferences
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body UpdatePreferencesRequest true "Preference fields"
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/me/preferences [patch]
func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	var req UpdatePreferencesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.profileService.UpdatePreferences(c.Request.Context(), userID, identity.PreferencesInput{
		Currency:           req.Currency,
		Theme:              req.Theme,
		EmailNotifications: req.EmailNotifications,
		PushNotifications:  req.PushNotifications,
		SMSNotifications:   req.SMSNotifications,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// RequestAvatarUpload godoc
// @ID           requestUserAvatarUpload
// @Summary      Request an avatar upload URL
// @Description  Returns a presigned PUT URL; confirm the upload afterwards
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body AvatarUploadRequest true "Image type and size"
// @Success      200 {object} APIResponse[identity.AvatarUploadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/me/avatar/upload [post]
func (h *UserHandler) RequestAvatarUpload(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	var req AvatarUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	upload, err := h.profileService.RequestAvatarUpload(c.Request.Context(), userID, identity.AvatarUploadInput{
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, upload)
}

// ConfirmAvatar godoc
// @ID           confirmUserAvatar
// @Summary      Confirm an uploaded avatar
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body ConfirmAvatarRequest true "Uploaded object key"
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/me/avatar [put]
func (h *UserHandler) ConfirmAvatar(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	var req ConfirmAvatarRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.profileService.ConfirmAvatar(c.Request.Context(), userID, req.Key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// AvatarURL godoc
// @ID           getUserAvatar
// @Summary      Get a user's avatar URL
// @Description  Returns a short-lived presigned GET URL
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[identity.AvatarURLResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id}/avatar [get]
func (h *UserHandler) AvatarURL(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	url, err := h.profileService.AvatarURL(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, url)
}
