package reservations

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
	pkgerrors "github.com/iodacademy/lendstock-backend/pkg/errors"
	"github.com/iodacademy/lendstock-backend/pkg/outbox"
)

type dbRunner struct {
	db *gorm.DB
}

func (r dbRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type stubPublisher struct {
	events []outbox.DomainEvent
}

func (p *stubPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	p.events = append(p.events, event)
	return nil
}

type resFixture struct {
	db        *gorm.DB
	svc       Service
	publisher *stubPublisher
}

func newResFixture(t *testing.T) *resFixture {
	t.Helper()

	dsn := "file:res_" + uuid.NewString() + "?mode=memory&cache=shared"
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
	reservationsDDL := `
CREATE TABLE IF NOT EXISTS reservations (
  id TEXT PRIMARY KEY,
  item_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  start_date DATETIME NOT NULL,
  end_date DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING',
  rejection_reason TEXT,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(items).Error)
	require.NoError(t, db.Exec(reservationsDDL).Error)

	publisher := &stubPublisher{}
	svc, err := NewService(NewRepository(db), dbRunner{db: db}, publisher)
	require.NoError(t, err)
	return &resFixture{db: db, svc: svc, publisher: publisher}
}

func (f *resFixture) seedItem(t *testing.T) models.InventoryItem {
	t.Helper()
	item := models.InventoryItem{
		ID:       uuid.New(),
		Name:     "Projector",
		SKU:      "PJ-" + uuid.NewString()[:8],
		StockQty: 2,
	}
	require.NoError(t, f.db.Create(&item).Error)
	return item
}

func (f *resFixture) createPending(t *testing.T, item models.InventoryItem) *models.Reservation {
	t.Helper()
	owner := uuid.New()
	start := time.Now().UTC().Add(24 * time.Hour)
	reservation, err := f.svc.Create(context.Background(), CreateInput{
		ItemID:    item.ID,
		UserID:    owner,
		StartDate: start,
		EndDate:   start.Add(48 * time.Hour),
		ActorID:   owner,
		ActorRole: enums.UserRoleStaff,
	})
	require.NoError(t, err)
	return reservation
}

func TestCreateReservationStartsPending(t *testing.T) {
	f := newResFixture(t)
	item := f.seedItem(t)

	reservation := f.createPending(t, item)
	require.Equal(t, enums.ReservationStatusPending, reservation.Status)

	require.Len(t, f.publisher.events, 1)
	require.Equal(t, enums.EventReservationCreated, f.publisher.events[0].EventType)
}

func TestCreateReservationRejectsUnknownItem(t *testing.T) {
	f := newResFixture(t)
	owner := uuid.New()
	start := time.Now().UTC()

	_, err := f.svc.Create(context.Background(), CreateInput{
		ItemID:    uuid.New(),
		UserID:    owner,
		StartDate: start,
		EndDate:   start.Add(time.Hour),
		ActorID:   owner,
		ActorRole: enums.UserRoleStaff,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestCreateReservationRejectsInvertedDates(t *testing.T) {
	f := newResFixture(t)
	item := f.seedItem(t)
	owner := uuid.New()
	start := time.Now().UTC()

	_, err := f.svc.Create(context.Background(), CreateInput{
		ItemID:    item.ID,
		UserID:    owner,
		StartDate: start,
		EndDate:   start.Add(-time.Hour),
		ActorID:   owner,
		ActorRole: enums.UserRoleStaff,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestSetStatusRequiresAdmin(t *testing.T) {
	f := newResFixture(t)
	item := f.seedItem(t)
	reservation := f.createPending(t, item)

	_, err := f.svc.SetStatus(context.Background(), SetStatusInput{
		ReservationID: reservation.ID,
		Status:        enums.ReservationStatusApproved,
		ActorID:       reservation.UserID,
		ActorRole:     enums.UserRoleStaff,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "got %v", err)
}

func TestRejectRequiresReason(t *testing.T) {
	f := newResFixture(t)
	item := f.seedItem(t)
	reservation := f.createPending(t, item)

	_, err := f.svc.SetStatus(context.Background(), SetStatusInput{
		ReservationID: reservation.ID,
		Status:        enums.ReservationStatusRejected,
		ActorID:       uuid.New(),
		ActorRole:     enums.UserRoleAdmin,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	reason := "already promised to another class"
	decided, err := f.svc.SetStatus(context.Background(), SetStatusInput{
		ReservationID:   reservation.ID,
		Status:          enums.ReservationStatusRejected,
		RejectionReason: &reason,
		ActorID:         uuid.New(),
		ActorRole:       enums.UserRoleAdmin,
	})
	require.NoError(t, err)
	require.Equal(t, enums.ReservationStatusRejected, decided.Status)
	require.NotNil(t, decided.RejectionReason)
	require.Equal(t, reason, *decided.RejectionReason)
}

func TestApproveClearsStaleRejectionReason(t *testing.T) {
	f := newResFixture(t)
	item := f.seedItem(t)
	reservation := f.createPending(t, item)

	reason := "stale"
	require.NoError(t, f.db.Model(&models.Reservation{}).
		Where("id = ?", reservation.ID).
		Update("rejection_reason", reason).Error)

	decided, err := f.svc.SetStatus(context.Background(), SetStatusInput{
		ReservationID: reservation.ID,
		Status:        enums.ReservationStatusApproved,
		ActorID:       uuid.New(),
		ActorRole:     enums.UserRoleAdmin,
	})
	require.NoError(t, err)
	require.Equal(t, enums.ReservationStatusApproved, decided.Status)
	require.Nil(t, decided.RejectionReason)
}

func TestReservationStateMachine(t *testing.T) {
	f := newResFixture(t)
	item := f.seedItem(t)
	ctx := context.Background()
	admin := uuid.New()

	reservation := f.createPending(t, item)

	// PENDING -> APPROVED -> COMPLETED.
	_, err := f.svc.SetStatus(ctx, SetStatusInput{
		ReservationID: reservation.ID,
		Status:        enums.ReservationStatusApproved,
		ActorID:       admin,
		ActorRole:     enums.UserRoleAdmin,
	})
	require.NoError(t, err)

	_, err = f.svc.SetStatus(ctx, SetStatusInput{
		ReservationID: reservation.ID,
		Status:        enums.ReservationStatusCompleted,
		ActorID:       admin,
		ActorRole:     enums.UserRoleAdmin,
	})
	require.NoError(t, err)

	// COMPLETED is terminal.
	_, err = f.svc.SetStatus(ctx, SetStatusInput{
		ReservationID: reservation.ID,
		Status:        enums.ReservationStatusCanceled,
		ActorID:       admin,
		ActorRole:     enums.UserRoleAdmin,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	// Repeating the terminal decision is a no-op.
	again, err := f.svc.SetStatus(ctx, SetStatusInput{
		ReservationID: reservation.ID,
		Status:        enums.ReservationStatusCompleted,
		ActorID:       admin,
		ActorRole:     enums.UserRoleAdmin,
	})
	require.NoError(t, err)
	require.Equal(t, enums.ReservationStatusCompleted, again.Status)
}

func TestOwnerCanOnlyDeletePending(t *testing.T) {
	f := newResFixture(t)
	item := f.seedItem(t)
	ctx := context.Background()

	reservation := f.createPending(t, item)
	stranger := uuid.New()

	err := f.svc.Delete(ctx, reservation.ID, stranger, enums.UserRoleStaff)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "got %v", err)

	_, err = f.svc.SetStatus(ctx, SetStatusInput{
		ReservationID: reservation.ID,
		Status:        enums.ReservationStatusApproved,
		ActorID:       uuid.New(),
		ActorRole:     enums.UserRoleAdmin,
	})
	require.NoError(t, err)

	err = f.svc.Delete(ctx, reservation.ID, reservation.UserID, enums.UserRoleStaff)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	// Admins are not bound by the pending rule.
	require.NoError(t, f.svc.Delete(ctx, reservation.ID, uuid.New(), enums.UserRoleAdmin))
}

func TestUpdatePendingReservation(t *testing.T) {
	f := newResFixture(t)
	item := f.seedItem(t)
	reservation := f.createPending(t, item)

	newEnd := reservation.EndDate.Add(24 * time.Hour)
	updated, err := f.svc.Update(context.Background(), UpdateInput{
		ReservationID: reservation.ID,
		EndDate:       &newEnd,
		ActorID:       reservation.UserID,
		ActorRole:     enums.UserRoleStaff,
	})
	require.NoError(t, err)
	require.WithinDuration(t, newEnd, updated.EndDate, time.Second)
}
