package inventory

import (
	"github.com/google/uuid"

	"github.com/iodacademy/lendstock-backend/pkg/db/models"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
)

// CreateInput describes a new catalog item.
type CreateInput struct {
	Name      string
	SKU       string
	Category  string
	StockQty  int
	Unit      string
	Condition string
	Location  string
	ImageURL  *string
	ActorID   uuid.UUID
	ActorRole enums.UserRole
}

// UpdateInput patches catalog fields. StockQty is absent on purpose: stock
// only moves through the ledger.
type UpdateInput struct {
	ItemID    uuid.UUID
	Name      *string
	Category  *string
	Unit      *string
	Condition *string
	Location  *string
	ImageURL  *string
	ActorID   uuid.UUID
	ActorRole enums.UserRole
}

// AdjustStockInput is a manual correction applied by an admin.
type AdjustStockInput struct {
	ItemID    uuid.UUID
	Delta     int
	ActorID   uuid.UUID
	ActorRole enums.UserRole
}

// DeleteResult reports what the cascading delete removed.
type DeleteResult struct {
	ItemID             uuid.UUID
	RemovedHistoryRows int64
}

// ListFilters narrows the catalog listing.
type ListFilters struct {
	Category      *string
	Search        *string
	LowStockUnder *int
}

// ListParams pages through catalog items newest first.
type ListParams struct {
	Filters ListFilters
	Limit   int
	Cursor  string
}

// ListResult is one catalog page plus the next cursor.
type ListResult struct {
	Items  []models.InventoryItem
	Cursor string
}
