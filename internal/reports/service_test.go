package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/iodacademy/lendstock-backend/pkg/db/models"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
)

type stubSettings struct {
	overdueDays int
}

func (s *stubSettings) Get(ctx context.Context) (*models.SystemSetting, error) {
	return &models.SystemSetting{ID: models.SystemSettingID, OverdueDays: s.overdueDays}, nil
}

func setupReportsDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:reports_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	items := `
CREATE TABLE IF NOT EXISTS inventory_items (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  sku TEXT NOT NULL UNIQUE,
  category TEXT NOT NULL DEFAULT '',
  stock_qty INTEGER NOT NULL DEFAULT 0,
  unit TEXT NOT NULL DEFAULT 'pcs',
  condition TEXT NOT NULL DEFAULT 'good',
  location TEXT NOT NULL DEFAULT '',
  image_url TEXT,
  last_updated_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	histories := `
CREATE TABLE IF NOT EXISTS transaction_histories (
  id TEXT PRIMARY KEY,
  item_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  qty_change INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING',
  is_returned INTEGER NOT NULL DEFAULT 0,
  original_trx_id TEXT,
  notes TEXT,
  decided_by TEXT,
  decided_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(items).Error)
	require.NoError(t, db.Exec(histories).Error)
	return db
}

func seedReportItem(t *testing.T, db *gorm.DB, category string, qty int) models.InventoryItem {
	t.Helper()
	item := models.InventoryItem{
		ID:       uuid.New(),
		Name:     "Item " + uuid.NewString()[:6],
		SKU:      "SKU-" + uuid.NewString()[:8],
		Category: category,
		StockQty: qty,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func seedBorrow(t *testing.T, db *gorm.DB, itemID uuid.UUID, qty int, createdAt time.Time, returned bool) models.TransactionHistory {
	t.Helper()
	trx := models.TransactionHistory{
		ID:         uuid.New(),
		ItemID:     itemID,
		UserID:     uuid.New(),
		Type:       enums.TransactionTypeOut,
		QtyChange:  -qty,
		Status:     enums.TransactionStatusCompleted,
		IsReturned: returned,
		CreatedAt:  createdAt,
	}
	require.NoError(t, db.Create(&trx).Error)
	return trx
}

func TestDashboardCountsAndOverdue(t *testing.T) {
	db := setupReportsDB(t)
	svc, err := NewService(db, &stubSettings{overdueDays: 3})
	require.NoError(t, err)
	now := time.Now().UTC()

	lowStock := seedReportItem(t, db, "electronics", 2)
	healthy := seedReportItem(t, db, "tools", 20)

	// Overdue: completed borrow 5 days old, never returned.
	overdue := seedBorrow(t, db, lowStock.ID, 1, now.AddDate(0, 0, -5), false)
	// Not overdue: borrowed yesterday.
	seedBorrow(t, db, healthy.ID, 1, now.AddDate(0, 0, -1), false)
	// Not overdue: old but returned.
	seedBorrow(t, db, healthy.ID, 1, now.AddDate(0, 0, -10), true)

	stats, err := svc.Dashboard(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.TotalItems)
	require.Equal(t, int64(1), stats.LowStockItems)
	require.Equal(t, int64(2), stats.ItemsCurrentlyOut)
	require.Equal(t, int64(1), stats.OverdueCount)
	require.Equal(t, int64(3), stats.TotalTransactions)
	require.Len(t, stats.Activity, 7)

	require.Len(t, stats.TopOverdue, 1)
	require.Equal(t, overdue.ID, stats.TopOverdue[0].TransactionID)
	require.GreaterOrEqual(t, stats.TopOverdue[0].DaysOut, 5)
}

func TestCategoryStats(t *testing.T) {
	db := setupReportsDB(t)
	svc, err := NewService(db, &stubSettings{overdueDays: 3})
	require.NoError(t, err)

	seedReportItem(t, db, "electronics", 5)
	seedReportItem(t, db, "electronics", 5)
	seedReportItem(t, db, "tools", 5)

	stats, err := svc.CategoryStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)
	require.Equal(t, "electronics", stats[0].Category)
	require.Equal(t, int64(2), stats[0].Count)
}

func TestStockTrendBucketsPerDay(t *testing.T) {
	db := setupReportsDB(t)
	svc, err := NewService(db, &stubSettings{overdueDays: 3})
	require.NoError(t, err)
	now := time.Now().UTC()

	item := seedReportItem(t, db, "electronics", 10)
	seedBorrow(t, db, item.ID, 2, now.AddDate(0, 0, -1), false)
	seedBorrow(t, db, item.ID, 3, now.AddDate(0, 0, -1), false)

	// A return on the same day.
	returnTrx := models.TransactionHistory{
		ID:         uuid.New(),
		ItemID:     item.ID,
		UserID:     uuid.New(),
		Type:       enums.TransactionTypeIn,
		QtyChange:  2,
		Status:     enums.TransactionStatusCompleted,
		IsReturned: true,
		CreatedAt:  now.AddDate(0, 0, -1),
	}
	require.NoError(t, db.Create(&returnTrx).Error)

	// Pending rows never count toward the trend.
	pending := models.TransactionHistory{
		ID:        uuid.New(),
		ItemID:    item.ID,
		UserID:    uuid.New(),
		Type:      enums.TransactionTypeOut,
		QtyChange: -4,
		Status:    enums.TransactionStatusPending,
		CreatedAt: now.AddDate(0, 0, -1),
	}
	require.NoError(t, db.Create(&pending).Error)

	points, err := svc.StockTrend(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, points, 7)

	yesterday := now.AddDate(0, 0, -1).Format(time.DateOnly)
	var found *TrendPoint
	for i := range points {
		if points[i].Date == yesterday {
			found = &points[i]
		}
	}
	require.NotNil(t, found)
	require.Equal(t, int64(2), found.QtyIn)
	require.Equal(t, int64(5), found.QtyOut)
	require.Equal(t, int64(-3), found.NetDelta)
}
