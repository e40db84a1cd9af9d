package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/iodacademy/lendstock-backend/pkg/db/models"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
)

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	DisplayName string         `json:"display_name"`
	PhotoURL    *string        `json:"photo_url,omitempty"`
	Phone       *string        `json:"phone,omitempty"`
	Role        enums.UserRole `json:"role"`
	ThemePref   string         `json:"theme_pref"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// FromModel converts a persisted user into its transport shape.
func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		Phone:       u.Phone,
		Role:        u.Role,
		ThemePref:   u.ThemePref,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// SyncIdentityInput carries the provider profile from a third-party sign-in.
type SyncIdentityInput struct {
	ProviderUID string
	Email       string
	DisplayName string
	PhotoURL    *string
}

// SyncIdentityResult reports the upserted user and whether the row is new.
type SyncIdentityResult struct {
	User      *models.User
	FirstSeen bool
}

// InviteInput creates a directory entry ahead of the user's first sign-in.
type InviteInput struct {
	Email       string
	DisplayName string
	Role        enums.UserRole
	Phone       *string
	ActorID     uuid.UUID
	ActorRole   enums.UserRole
}

// UpdateProfileInput patches self-service profile fields.
type UpdateProfileInput struct {
	UserID      uuid.UUID
	DisplayName *string
	Phone       *string
	PhotoURL    *string
	ThemePref   *string
}

// ListParams pages through the directory newest first.
type ListParams struct {
	Role   *enums.UserRole
	Search *string
	Limit  int
	Cursor string
}

// ListResult is one directory page plus the next cursor.
type ListResult struct {
	Items  []models.User
	Cursor string
}
