package transactions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iodacademy/lendstock-backend/pkg/db/models"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
	"github.com/iodacademy/lendstock-backend/pkg/pagination"
)

// Repository exposes persistence helpers for transaction history rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, trx *models.TransactionHistory) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.TransactionHistory, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TransactionStatus, decidedBy uuid.UUID, decidedAt time.Time) error
	MarkReturned(ctx context.Context, id uuid.UUID) error
	GetItem(ctx context.Context, itemID uuid.UUID) (*models.InventoryItem, error)
	List(ctx context.Context, params listTransactionsParams) ([]models.TransactionHistory, *pagination.Cursor, error)
	ListOverdueBorrows(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]models.TransactionHistory, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a transactions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listTransactionsParams struct {
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

func (r *repositoryImpl) Create(ctx context.Context, trx *models.TransactionHistory) error {
	return r.db.WithContext(ctx).Create(trx).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.TransactionHistory, error) {
	var trx models.TransactionHistory
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&trx).Error; err != nil {
		return nil, err
	}
	return &trx, nil
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TransactionStatus, decidedBy uuid.UUID, decidedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.TransactionHistory{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"decided_by": decidedBy,
			"decided_at": decidedAt,
		}).Error
}

func (r *repositoryImpl) MarkReturned(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.TransactionHistory{}).
		Where("id = ?", id).
		UpdateColumn("is_returned", true).Error
}

func (r *repositoryImpl) GetItem(ctx context.Context, itemID uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repositoryImpl) ListOverdueBorrows(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]models.TransactionHistory, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	var rows []models.TransactionHistory
	err := db.WithContext(ctx).
		Where("type = ? AND status = ? AND is_returned = ? AND created_at < ?",
			enums.TransactionTypeOut, enums.TransactionStatusCompleted, false, cutoff).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listTransactionsParams) ([]models.TransactionHistory, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.TransactionHistory{})
	if params.Filters.ItemID != nil {
		query = query.Where("item_id = ?", *params.Filters.ItemID)
	}
	if params.Filters.UserID != nil {
		query = query.Where("user_id = ?", *params.Filters.UserID)
	}
	if params.Filters.Type != nil {
		query = query.Where("type = ?", *params.Filters.Type)
	}
	if params.Filters.Status != nil {
		query = query.Where("status = ?", *params.Filters.Status)
	}
	if params.Filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *params.Filters.DateFrom)
	}
	if params.Filters.DateTo != nil {
		query = query.Where("created_at <= ?", *params.Filters.DateTo)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.TransactionHistory
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
