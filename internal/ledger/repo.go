package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iodacademy/lendstock-backend/pkg/db/models"
)

// Repository manages persistence for the stock ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// AdjustStock applies delta to the item's stock_qty only when the result
	// stays non-negative. Returns the number of rows updated (0 or 1).
	AdjustStock(ctx context.Context, itemID uuid.UUID, delta int, actorID *uuid.UUID) (int64, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*models.InventoryItem, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) AdjustStock(ctx context.Context, itemID uuid.UUID, delta int, actorID *uuid.UUID) (int64, error) {
	updates := map[string]any{
		"stock_qty": gorm.Expr("stock_qty + ?", delta),
	}
	if actorID != nil {
		updates["last_updated_by"] = *actorID
	}
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND stock_qty + ? >= 0", itemID, delta).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) GetItem(ctx context.Context, itemID uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}
