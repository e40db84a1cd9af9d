package transactions

import (
	"time"

	"github.com/google/uuid"

	"github.com/iodacademy/lendstock-backend/pkg/db/models"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
)

// CreateInput captures a borrow (OUT), return (IN), or stock addition request.
// QtyChange is signed: negative for OUT, positive for IN.
type CreateInput struct {
	ItemID        uuid.UUID
	UserID        uuid.UUID
	Type          enums.TransactionType
	QtyChange     int
	Notes         *string
	OriginalTrxID *uuid.UUID
	ActorID       uuid.UUID
	ActorRole     enums.UserRole
}

// SetStatusInput resolves a pending transaction.
type SetStatusInput struct {
	TransactionID uuid.UUID
	Decision      enums.TransactionDecision
	ActorID       uuid.UUID
	ActorRole     enums.UserRole
}

// Result pairs the written ledger entry with the stock level it produced.
// NewStockQty is nil when the transaction did not reach COMPLETED.
type Result struct {
	Transaction *models.TransactionHistory `json:"transaction"`
	NewStockQty *int                       `json:"new_stock_qty,omitempty"`
}

// ListFilters describe the inputs supported by the transaction list.
type ListFilters struct {
	ItemID   *uuid.UUID
	UserID   *uuid.UUID
	Type     *enums.TransactionType
	Status   *enums.TransactionStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// ListParams configures filtering and cursor pagination.
type ListParams struct {
	Filters ListFilters
	Limit   int
	Cursor  string
}

// ListResult wraps returned rows and the cursor for the next page.
type ListResult struct {
	Items  []models.TransactionHistory `json:"items"`
	Cursor string                      `json:"cursor"`
}
