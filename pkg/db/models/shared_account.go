package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SharedAccount stores team credentials for external platforms, visible
// only to the emails listed in AuthorizedEmails.
type SharedAccount struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Platform         string         `gorm:"column:platform;type:text;not null"`
	Username         *string        `gorm:"column:username;type:text"`
	Email            *string        `gorm:"column:email;type:text"`
	Password         string         `gorm:"column:password;type:text;not null"`
	Notes            *string        `gorm:"column:notes;type:text"`
	URL              *string        `gorm:"column:url;type:text"`
	IconURL          *string        `gorm:"column:icon_url;type:text"`
	LoginMethod      string         `gorm:"column:login_method;type:text;not null;default:'password'"`
	AuthorizedEmails pq.StringArray `gorm:"column:authorized_emails;type:text[];not null;default:ARRAY[]::text[]"`
	IsActive         bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
