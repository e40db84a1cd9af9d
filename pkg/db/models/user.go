package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/iodacademy/lendstock-backend/pkg/enums"
)

// User represents the canonical identity entity. GoogleUID holds an
// `invite_<uuid>` placeholder until the user signs in for the first time.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GoogleUID    string         `gorm:"column:google_uid;type:text;not null;uniqueIndex"`
	Email        string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	DisplayName  string         `gorm:"column:display_name;type:text;not null"`
	PhotoURL     *string        `gorm:"column:photo_url;type:text"`
	Phone        *string        `gorm:"column:phone;type:text"`
	Role         enums.UserRole `gorm:"column:role;type:user_role;not null;default:'viewer'"`
	ThemePref    string         `gorm:"column:theme_pref;type:text;not null;default:'light'"`
	PasswordHash *string        `gorm:"column:password_hash;type:text"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// HasInvitePlaceholder reports whether the user has never completed a
// provider sign-in.
func (u *User) HasInvitePlaceholder() bool {
	return len(u.GoogleUID) > 7 && u.GoogleUID[:7] == "invite_"
}
