package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/iodacademy/lendstock-backend/pkg/enums"
)

// TransactionRecordedEvent signals a new ledger entry was written.
type TransactionRecordedEvent struct {
	TransactionID uuid.UUID               `json:"transaction_id"`
	ItemID        uuid.UUID               `json:"item_id"`
	UserID        uuid.UUID               `json:"user_id"`
	Type          enums.TransactionType   `json:"type"`
	QtyChange     int                     `json:"qty_change"`
	Status        enums.TransactionStatus `json:"status"`
}

// TransactionDecidedEvent is emitted when a pending transaction is resolved.
type TransactionDecidedEvent struct {
	TransactionID uuid.UUID               `json:"transaction_id"`
	ItemID        uuid.UUID               `json:"item_id"`
	UserID        uuid.UUID               `json:"user_id"`
	Status        enums.TransactionStatus `json:"status"`
	DecidedBy     uuid.UUID               `json:"decided_by"`
	DecidedAt     time.Time               `json:"decided_at"`
}

// StockAdjustedEvent surfaces the committed stock level after a mutation.
type StockAdjustedEvent struct {
	ItemID        uuid.UUID  `json:"item_id"`
	TransactionID *uuid.UUID `json:"transaction_id,omitempty"`
	Delta         int        `json:"delta"`
	NewStockQty   int        `json:"new_stock_qty"`
}

// ItemUpsertedEvent carries the catalog fields after a create or update.
type ItemUpsertedEvent struct {
	ItemID   uuid.UUID `json:"item_id"`
	Name     string    `json:"name"`
	SKU      string    `json:"sku"`
	Category string    `json:"category"`
	StockQty int       `json:"stock_qty"`
}

// ItemDeletedEvent reports a catalog item removal and its purged history.
type ItemDeletedEvent struct {
	ItemID             uuid.UUID `json:"item_id"`
	SKU                string    `json:"sku"`
	RemovedHistoryRows int64     `json:"removed_history_rows"`
}

// ReservationDecidedEvent is emitted when an admin resolves a reservation.
type ReservationDecidedEvent struct {
	ReservationID   uuid.UUID               `json:"reservation_id"`
	ItemID          uuid.UUID               `json:"item_id"`
	UserID          uuid.UUID               `json:"user_id"`
	Status          enums.ReservationStatus `json:"status"`
	RejectionReason *string                 `json:"rejection_reason,omitempty"`
}

// ReservationCreatedEvent signals a new booking request.
type ReservationCreatedEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	ItemID        uuid.UUID `json:"item_id"`
	UserID        uuid.UUID `json:"user_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
}

// UserSyncedEvent reports an identity-sync upsert.
type UserSyncedEvent struct {
	UserID    uuid.UUID      `json:"user_id"`
	Email     string         `json:"email"`
	Role      enums.UserRole `json:"role"`
	FirstSeen bool           `json:"first_seen"`
}

// BorrowOverdueEvent flags a completed borrow past the overdue window.
type BorrowOverdueEvent struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	ItemID        uuid.UUID `json:"item_id"`
	UserID        uuid.UUID `json:"user_id"`
	BorrowedAt    time.Time `json:"borrowed_at"`
	OverdueDays   int       `json:"overdue_days"`
}
