package handler

// =====================
// Auth Request DTOs
// =====================

// RegisterRequest represents the request body for account registration
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=30"`
	Email     string `json:"email" binding:"required,email,max=200"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	FirstName string `json:"first_name" binding:"omitempty,max=50"`
	LastName  string `json:"last_name" binding:"omitempty,max=50"`
}

// LoginRequest authenticates by username or email
type LoginRequest struct {
	Login    string `json:"login" binding:"required,max=200"`
	Password string `json:"password" binding:"required,max=72"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optionally revokes the refresh token alongside the access token
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest represents the request body for password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// DeactivateRequest confirms account deactivation with the current password
type DeactivateRequest struct {
	Password string `json:"password" binding:"required"`
}

// =====================
// Profile Request DTOs
// =====================

// UpdateProfileRequest is a partial profile update
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=50"`
	LastName  *string `json:"last_name" binding:"omitempty,max=50"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
}

// UpdatePreferencesRequest is a partial preferences update
type UpdatePreferencesRequest struct {
	Currency           *string `json:"currency" binding:"omitempty,currency"`
	Theme              *string `json:"theme" binding:"omitempty,oneof=light dark auto"`
	EmailNotifications *bool   `json:"email_notifications"`
	PushNotifications  *bool   `json:"push_notifications"`
	SMSNotifications   *bool   `json:"sms_notifications"`
}

// AvatarUploadRequest asks for a presigned avatar upload URL
type AvatarUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required,gt=0"`
}

// ConfirmAvatarRequest points the profile at an uploaded avatar object
type ConfirmAvatarRequest struct {
	Key string `json:"key" binding:"required,max=500"`
}

// MessageResponse carries a human readable confirmation
type MessageResponse struct {
	Message string `json:"message"`
}
