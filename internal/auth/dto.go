package auth

import (
	"github.com/iodacademy/lendstock-backend/internal/users"
)

// LoginRequest captures the credentials sent to the local login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the token pair and user produced by a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// RefreshRequest rotates an existing session.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse carries the freshly minted token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SyncIdentityRequest carries the provider profile from a third-party sign-in.
type SyncIdentityRequest struct {
	ProviderUID string  `json:"provider_uid" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	DisplayName string  `json:"display_name"`
	PhotoURL    *string `json:"photo_url,omitempty"`
}

// SetPasswordRequest enables local login for an account.
type SetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}
