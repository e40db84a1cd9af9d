package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem is the stock row the ledger guards. StockQty is mutated
// exclusively through the ledger's conditional update and can never be
// negative after a committed operation.
type InventoryItem struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string     `gorm:"column:name;type:text;not null"`
	SKU           string     `gorm:"column:sku;type:text;not null;uniqueIndex"`
	Category      string     `gorm:"column:category;type:text;not null"`
	StockQty      int        `gorm:"column:stock_qty;not null;default:0"`
	Unit          string     `gorm:"column:unit;type:text;not null;default:'pcs'"`
	Condition     string     `gorm:"column:condition;type:text;not null;default:'good'"`
	Location      string     `gorm:"column:location;type:text;not null;default:''"`
	ImageURL      *string    `gorm:"column:image_url;type:text"`
	LastUpdatedBy *uuid.UUID `gorm:"column:last_updated_by;type:uuid"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
