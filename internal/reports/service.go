package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iodacademy/lendstock-backend/pkg/db/models"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
	pkgerrors "github.com/iodacademy/lendstock-backend/pkg/errors"
)

// LowStockThreshold is the stock level under which an item counts as low.
const LowStockThreshold = 5

// DashboardStats is the aggregate snapshot shown on the landing page.
type DashboardStats struct {
	TotalItems        int64           `json:"total_items"`
	LowStockItems     int64           `json:"low_stock_items"`
	ItemsCurrentlyOut int64           `json:"items_currently_out"`
	OverdueCount      int64           `json:"overdue_count"`
	BorrowsThisWeek   int64           `json:"borrows_this_week"`
	TotalTransactions int64           `json:"total_transactions"`
	Activity          []ActivityPoint `json:"activity"`
	TopOverdue        []OverdueRow    `json:"top_overdue"`
}

// ActivityPoint is one day of in/out movement.
type ActivityPoint struct {
	Date     string `json:"date"`
	InCount  int64  `json:"in_count"`
	OutCount int64  `json:"out_count"`
}

// OverdueRow describes a completed borrow past the overdue window.
type OverdueRow struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	ItemID        uuid.UUID `json:"item_id"`
	UserID        uuid.UUID `json:"user_id"`
	QtyChange     int       `json:"qty_change"`
	BorrowedAt    time.Time `json:"borrowed_at"`
	DaysOut       int       `json:"days_out"`
}

// CategoryStat counts catalog items per category.
type CategoryStat struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// TrendPoint is one day of completed stock movement.
type TrendPoint struct {
	Date     string `json:"date"`
	QtyIn    int64  `json:"qty_in"`
	QtyOut   int64  `json:"qty_out"`
	NetDelta int64  `json:"net_delta"`
}

type settingsReader interface {
	Get(ctx context.Context) (*models.SystemSetting, error)
}

// Service computes read-only aggregates. Nothing here mutates state.
type Service interface {
	Dashboard(ctx context.Context, now time.Time) (*DashboardStats, error)
	CategoryStats(ctx context.Context) ([]CategoryStat, error)
	StockTrend(ctx context.Context, now time.Time) ([]TrendPoint, error)
	OverdueBorrows(ctx context.Context, now time.Time, overdueDays int) ([]OverdueRow, error)
}

type service struct {
	db       *gorm.DB
	settings settingsReader
}

// NewService builds the reporting service.
func NewService(db *gorm.DB, settings settingsReader) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings service required")
	}
	return &service{db: db, settings: settings}, nil
}

func (s *service) Dashboard(ctx context.Context, now time.Time) (*DashboardStats, error) {
	setting, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.InventoryItem{}).Count(&stats.TotalItems).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count items")
	}
	if err := db.Model(&models.InventoryItem{}).
		Where("stock_qty < ?", LowStockThreshold).
		Count(&stats.LowStockItems).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count low stock")
	}
	if err := db.Model(&models.TransactionHistory{}).
		Where("type = ? AND status = ? AND is_returned = ?",
			enums.TransactionTypeOut, enums.TransactionStatusCompleted, false).
		Count(&stats.ItemsCurrentlyOut).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open borrows")
	}

	weekStart := now.AddDate(0, 0, -7)
	if err := db.Model(&models.TransactionHistory{}).
		Where("type = ? AND created_at >= ?", enums.TransactionTypeOut, weekStart).
		Count(&stats.BorrowsThisWeek).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count weekly borrows")
	}
	if err := db.Model(&models.TransactionHistory{}).Count(&stats.TotalTransactions).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count transactions")
	}

	overdue, err := s.OverdueBorrows(ctx, now, setting.OverdueDays)
	if err != nil {
		return nil, err
	}
	stats.OverdueCount = int64(len(overdue))
	if len(overdue) > 5 {
		overdue = overdue[:5]
	}
	stats.TopOverdue = overdue

	activity, err := s.activitySeries(ctx, now)
	if err != nil {
		return nil, err
	}
	stats.Activity = activity

	return stats, nil
}

// OverdueBorrows lists completed, unreturned borrows created before the
// overdue cutoff, oldest first.
func (s *service) OverdueBorrows(ctx context.Context, now time.Time, overdueDays int) ([]OverdueRow, error) {
	if overdueDays <= 0 {
		overdueDays = 3
	}
	cutoff := now.AddDate(0, 0, -overdueDays)

	var rows []models.TransactionHistory
	if err := s.db.WithContext(ctx).
		Where("type = ? AND status = ? AND is_returned = ? AND created_at < ?",
			enums.TransactionTypeOut, enums.TransactionStatusCompleted, false, cutoff).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list overdue borrows")
	}

	out := make([]OverdueRow, 0, len(rows))
	for _, trx := range rows {
		out = append(out, OverdueRow{
			TransactionID: trx.ID,
			ItemID:        trx.ItemID,
			UserID:        trx.UserID,
			QtyChange:     trx.QtyChange,
			BorrowedAt:    trx.CreatedAt,
			DaysOut:       int(now.Sub(trx.CreatedAt).Hours() / 24),
		})
	}
	return out, nil
}

func (s *service) CategoryStats(ctx context.Context) ([]CategoryStat, error) {
	var stats []CategoryStat
	if err := s.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("count DESC").
		Scan(&stats).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "category stats")
	}
	return stats, nil
}

// StockTrend aggregates completed movement per day over the last 7 days.
func (s *service) StockTrend(ctx context.Context, now time.Time) ([]TrendPoint, error) {
	since := now.AddDate(0, 0, -7)

	var rows []models.TransactionHistory
	if err := s.db.WithContext(ctx).
		Where("status = ? AND created_at >= ?", enums.TransactionStatusCompleted, since).
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load completed transactions")
	}

	byDay := make(map[string]*TrendPoint, 7)
	for _, trx := range rows {
		day := trx.CreatedAt.UTC().Format(time.DateOnly)
		point, ok := byDay[day]
		if !ok {
			point = &TrendPoint{Date: day}
			byDay[day] = point
		}
		if trx.QtyChange >= 0 {
			point.QtyIn += int64(trx.QtyChange)
		} else {
			point.QtyOut += int64(-trx.QtyChange)
		}
		point.NetDelta += int64(trx.QtyChange)
	}

	points := make([]TrendPoint, 0, 7)
	for offset := 6; offset >= 0; offset-- {
		day := now.AddDate(0, 0, -offset).UTC().Format(time.DateOnly)
		if point, ok := byDay[day]; ok {
			points = append(points, *point)
		} else {
			points = append(points, TrendPoint{Date: day})
		}
	}
	return points, nil
}

func (s *service) activitySeries(ctx context.Context, now time.Time) ([]ActivityPoint, error) {
	since := now.AddDate(0, 0, -7)

	var rows []models.TransactionHistory
	if err := s.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent transactions")
	}

	byDay := make(map[string]*ActivityPoint, 7)
	for _, trx := range rows {
		day := trx.CreatedAt.UTC().Format(time.DateOnly)
		point, ok := byDay[day]
		if !ok {
			point = &ActivityPoint{Date: day}
			byDay[day] = point
		}
		if trx.Type == enums.TransactionTypeIn {
			point.InCount++
		} else {
			point.OutCount++
		}
	}

	points := make([]ActivityPoint, 0, 7)
	for offset := 6; offset >= 0; offset-- {
		day := now.AddDate(0, 0, -offset).UTC().Format(time.DateOnly)
		if point, ok := byDay[day]; ok {
			points = append(points, *point)
		} else {
			points = append(points, ActivityPoint{Date: day})
		}
	}
	return points, nil
}
