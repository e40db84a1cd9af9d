package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/iodacademy/lendstock-backend/pkg/enums"
)

// TransactionHistory is the ledger entry for a single stock movement.
// QtyChange is negative for OUT (borrow) rows and positive for IN (return)
// rows. Rows in a terminal status are immutable except for the IsReturned
// flip applied to an original OUT row when its matching IN row is recorded.
type TransactionHistory struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID        uuid.UUID               `gorm:"column:item_id;type:uuid;not null;index"`
	UserID        uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	Type          enums.TransactionType   `gorm:"column:type;type:transaction_type;not null"`
	QtyChange     int                     `gorm:"column:qty_change;not null"`
	Status        enums.TransactionStatus `gorm:"column:status;type:transaction_status;not null;default:'PENDING'"`
	IsReturned    bool                    `gorm:"column:is_returned;not null;default:false"`
	OriginalTrxID *uuid.UUID              `gorm:"column:original_trx_id;type:uuid"`
	Notes         *string                 `gorm:"column:notes;type:text"`
	DecidedBy     *uuid.UUID              `gorm:"column:decided_by;type:uuid"`
	DecidedAt     *time.Time              `gorm:"column:decided_at"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime;index"`
}
