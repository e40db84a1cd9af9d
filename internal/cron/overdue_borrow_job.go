package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/iodacademy/lendstock-backend/pkg/db/models"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
	"github.com/iodacademy/lendstock-backend/pkg/logger"
	"github.com/iodacademy/lendstock-backend/pkg/outbox"
	"github.com/iodacademy/lendstock-backend/pkg/outbox/payloads"
)

type OverdueBorrowJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository overdueBorrowRepo
	Settings   overdueSettingsReader
	Outbox     overdueEventEmitter
}

type overdueBorrowRepo interface {
	ListOverdueBorrows(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]models.TransactionHistory, error)
}

type overdueSettingsReader interface {
	Get(ctx context.Context) (*models.SystemSetting, error)
}

type overdueEventEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

func NewOverdueBorrowJob(params OverdueBorrowJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("transactions repository required")
	}
	if params.Settings == nil {
		return nil, fmt.Errorf("settings reader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &overdueBorrowJob{
		logg:     params.Logger,
		db:       params.DB,
		repo:     params.Repository,
		settings: params.Settings,
		outbox:   params.Outbox,
		now:      time.Now,
	}, nil
}

type overdueBorrowJob struct {
	logg     *logger.Logger
	db       txRunner
	repo     overdueBorrowRepo
	settings overdueSettingsReader
	outbox   overdueEventEmitter
	now      func() time.Time
}

func (j *overdueBorrowJob) Name() string { return "overdue-borrow-scan" }

// Run flags completed, unreturned borrows older than the configured window.
// Emission is keyed on (event_type, aggregate_id), so a borrow already
// flagged on a previous scan produces no second event.
func (j *overdueBorrowJob) Run(ctx context.Context) error {
	setting, err := j.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("overdue borrow scan: load settings: %w", err)
	}
	overdueDays := setting.OverdueDays
	if overdueDays <= 0 {
		overdueDays = 3
	}
	cutoff := j.now().UTC().Add(-time.Duration(overdueDays) * 24 * time.Hour)

	var flagged int
	err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.ListOverdueBorrows(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		for _, row := range rows {
			event := outbox.DomainEvent{
				EventType:     enums.EventBorrowOverdue,
				AggregateType: enums.AggregateTransaction,
				AggregateID:   row.ID,
				Data: payloads.BorrowOverdueEvent{
					TransactionID: row.ID,
					ItemID:        row.ItemID,
					UserID:        row.UserID,
					BorrowedAt:    row.CreatedAt,
					OverdueDays:   overdueDays,
				},
				Version: 1,
			}
			if err := j.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
				return err
			}
		}
		flagged = len(rows)
		return nil
	})
	if err != nil {
		return fmt.Errorf("overdue borrow scan: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"overdue_days": overdueDays,
		"rows_flagged": flagged,
	})
	j.logg.Info(logCtx, "overdue borrow scan complete")
	return nil
}
