package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/iodacademy/lendstock-backend/pkg/enums"
)

// Reservation is a scheduling request. It never touches stock.
type Reservation struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID          uuid.UUID               `gorm:"column:item_id;type:uuid;not null;index"`
	UserID          uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	StartDate       time.Time               `gorm:"column:start_date;not null"`
	EndDate         time.Time               `gorm:"column:end_date;not null"`
	Status          enums.ReservationStatus `gorm:"column:status;type:reservation_status;not null;default:'PENDING'"`
	RejectionReason *string                 `gorm:"column:rejection_reason;type:text"`
	Notes           *string                 `gorm:"column:notes;type:text"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
