package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iodacademy/lendstock-backend/pkg/db/models"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
	"github.com/iodacademy/lendstock-backend/pkg/logger"
	"github.com/iodacademy/lendstock-backend/pkg/outbox"
	"github.com/iodacademy/lendstock-backend/pkg/outbox/payloads"
)

func TestOverdueBorrowJobEmitsOneEventPerBorrow(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	borrowA := models.TransactionHistory{ID: uuid.New(), ItemID: uuid.New(), UserID: uuid.New(), CreatedAt: now.AddDate(0, 0, -10)}
	borrowB := models.TransactionHistory{ID: uuid.New(), ItemID: uuid.New(), UserID: uuid.New(), CreatedAt: now.AddDate(0, 0, -6)}
	repo := &fakeOverdueRepo{rows: []models.TransactionHistory{borrowA, borrowB}}
	emitter := &fakeOverdueEmitter{}
	job := newOverdueBorrowJob(t, repo, &fakeOverdueSettings{overdueDays: 5}, emitter)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	expectedCutoff := now.UTC().Add(-5 * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, repo.lastCutoff)
	}
	if len(emitter.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(emitter.events))
	}
	first := emitter.events[0]
	if first.EventType != enums.EventBorrowOverdue {
		t.Fatalf("expected borrow_overdue event, got %s", first.EventType)
	}
	if first.AggregateID != borrowA.ID {
		t.Fatalf("expected aggregate %s, got %s", borrowA.ID, first.AggregateID)
	}
	payload, ok := first.Data.(payloads.BorrowOverdueEvent)
	if !ok {
		t.Fatalf("expected BorrowOverdueEvent payload, got %T", first.Data)
	}
	if payload.OverdueDays != 5 {
		t.Fatalf("expected overdue_days 5, got %d", payload.OverdueDays)
	}
	if !payload.BorrowedAt.Equal(borrowA.CreatedAt) {
		t.Fatalf("expected borrowed_at %s, got %s", borrowA.CreatedAt, payload.BorrowedAt)
	}
}

func TestOverdueBorrowJobDefaultsWindowWhenSettingsUnset(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	repo := &fakeOverdueRepo{}
	job := newOverdueBorrowJob(t, repo, &fakeOverdueSettings{overdueDays: 0}, &fakeOverdueEmitter{})
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	expectedCutoff := now.UTC().Add(-3 * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, repo.lastCutoff)
	}
}

func TestOverdueBorrowJobPropagatesErrors(t *testing.T) {
	repo := &fakeOverdueRepo{err: errors.New("boom")}
	job := newOverdueBorrowJob(t, repo, &fakeOverdueSettings{overdueDays: 3}, &fakeOverdueEmitter{})

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestOverdueBorrowJobStopsOnEmitFailure(t *testing.T) {
	repo := &fakeOverdueRepo{rows: []models.TransactionHistory{{ID: uuid.New()}}}
	emitter := &fakeOverdueEmitter{err: errors.New("outbox down")}
	job := newOverdueBorrowJob(t, repo, &fakeOverdueSettings{overdueDays: 3}, emitter)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func newOverdueBorrowJob(t *testing.T, repo *fakeOverdueRepo, settings *fakeOverdueSettings, emitter *fakeOverdueEmitter) *overdueBorrowJob {
	t.Helper()
	jobIface, err := NewOverdueBorrowJob(OverdueBorrowJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         notificationFakeTxRunner{},
		Repository: repo,
		Settings:   settings,
		Outbox:     emitter,
	})
	if err != nil {
		t.Fatalf("NewOverdueBorrowJob: %v", err)
	}
	job, ok := jobIface.(*overdueBorrowJob)
	if !ok {
		t.Fatalf("expected overdueBorrowJob, got %T", jobIface)
	}
	return job
}

type fakeOverdueRepo struct {
	rows       []models.TransactionHistory
	err        error
	lastCutoff time.Time
}

func (f *fakeOverdueRepo) ListOverdueBorrows(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]models.TransactionHistory, error) {
	f.lastCutoff = cutoff
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

type fakeOverdueSettings struct {
	overdueDays int
}

func (f *fakeOverdueSettings) Get(ctx context.Context) (*models.SystemSetting, error) {
	return &models.SystemSetting{ID: models.SystemSettingID, OverdueDays: f.overdueDays}, nil
}

type fakeOverdueEmitter struct {
	events []outbox.DomainEvent
	err    error
}

func (f *fakeOverdueEmitter) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}
