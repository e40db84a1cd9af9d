package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iodacademy/lendstock-backend/pkg/db/models"
	"github.com/iodacademy/lendstock-backend/pkg/pagination"
)

// Repository exposes persistence helpers for catalog items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.InventoryItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	FindBySKU(ctx context.Context, sku string) (*models.InventoryItem, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteHistories(ctx context.Context, itemID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params listItemsParams) ([]models.InventoryItem, *pagination.Cursor, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listItemsParams struct {
	Filters ListFilters
	Limit   int
	Cursor  *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repositoryImpl) FindBySKU(ctx context.Context, sku string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("sku = ?", sku).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// DeleteHistories removes every transaction row referencing the item and
// reports how many were purged. Runs before the item delete so the self
// referencing history table never dangles.
func (r *repositoryImpl) DeleteHistories(ctx context.Context, itemID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Delete(&models.TransactionHistory{})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.InventoryItem{}).Error
}

func (r *repositoryImpl) List(ctx context.Context, params listItemsParams) ([]models.InventoryItem, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.InventoryItem{})
	if params.Filters.Category != nil {
		query = query.Where("category = ?", *params.Filters.Category)
	}
	if params.Filters.Search != nil && *params.Filters.Search != "" {
		pattern := "%" + *params.Filters.Search + "%"
		query = query.Where("name LIKE ? OR sku LIKE ?", pattern, pattern)
	}
	if params.Filters.LowStockUnder != nil {
		query = query.Where("stock_qty < ?", *params.Filters.LowStockUnder)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.InventoryItem
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}
