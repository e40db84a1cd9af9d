package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/iodacademy/lendstock-backend/internal/ledger"
	"github.com/iodacademy/lendstock-backend/pkg/db/models"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
	pkgerrors "github.com/iodacademy/lendstock-backend/pkg/errors"
	"github.com/iodacademy/lendstock-backend/pkg/outbox"
	"github.com/iodacademy/lendstock-backend/pkg/outbox/payloads"
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

type invFixture struct {
	db        *gorm.DB
	svc       Service
	publisher *stubPublisher
}

func newInvFixture(t *testing.T) *invFixture {
	t.Helper()

	dsn := "file:inv_" + uuid.NewString() + "?mode=memory&cache=shared"
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

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(db), nil)
	require.NoError(t, err)
	publisher := &stubPublisher{}
	svc, err := NewService(NewRepository(db), dbRunner{db: db}, ledgerSvc, publisher)
	require.NoError(t, err)
	return &invFixture{db: db, svc: svc, publisher: publisher}
}

func (f *invFixture) createItem(t *testing.T, sku string, qty int) *models.InventoryItem {
	t.Helper()
	item, err := f.svc.Create(context.Background(), CreateInput{
		Name:      "Oscilloscope",
		SKU:       sku,
		Category:  "electronics",
		StockQty:  qty,
		ActorID:   uuid.New(),
		ActorRole: enums.UserRoleAdmin,
	})
	require.NoError(t, err)
	return item
}

func TestCreateItemAppliesDefaults(t *testing.T) {
	f := newInvFixture(t)

	item := f.createItem(t, "OS-100", 5)
	require.Equal(t, "pcs", item.Unit)
	require.Equal(t, "good", item.Condition)
	require.Equal(t, 5, item.StockQty)

	require.Len(t, f.publisher.events, 1)
	require.Equal(t, enums.EventItemCreated, f.publisher.events[0].EventType)
}

func TestCreateItemRejectsDuplicateSKU(t *testing.T) {
	f := newInvFixture(t)
	f.createItem(t, "OS-100", 5)

	_, err := f.svc.Create(context.Background(), CreateInput{
		Name:      "Another scope",
		SKU:       "OS-100",
		ActorID:   uuid.New(),
		ActorRole: enums.UserRoleAdmin,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestCreateItemRejectsNegativeStock(t *testing.T) {
	f := newInvFixture(t)

	_, err := f.svc.Create(context.Background(), CreateInput{
		Name:      "Scope",
		SKU:       "OS-101",
		StockQty:  -1,
		ActorID:   uuid.New(),
		ActorRole: enums.UserRoleAdmin,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestUpdateItemNeverTouchesStock(t *testing.T) {
	f := newInvFixture(t)
	item := f.createItem(t, "OS-100", 5)

	name := "Oscilloscope Mk II"
	updated, err := f.svc.Update(context.Background(), UpdateInput{
		ItemID:    item.ID,
		Name:      &name,
		ActorID:   uuid.New(),
		ActorRole: enums.UserRoleAdmin,
	})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)
	require.Equal(t, 5, updated.StockQty)
}

func TestAdjustStockIsAdminOnlyAndLedgerGuarded(t *testing.T) {
	f := newInvFixture(t)
	item := f.createItem(t, "OS-100", 5)
	ctx := context.Background()

	_, err := f.svc.AdjustStock(ctx, AdjustStockInput{
		ItemID:    item.ID,
		Delta:     -2,
		ActorID:   uuid.New(),
		ActorRole: enums.UserRoleStaff,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "got %v", err)

	adjusted, err := f.svc.AdjustStock(ctx, AdjustStockInput{
		ItemID:    item.ID,
		Delta:     -2,
		ActorID:   uuid.New(),
		ActorRole: enums.UserRoleAdmin,
	})
	require.NoError(t, err)
	require.Equal(t, 3, adjusted.StockQty)

	_, err = f.svc.AdjustStock(ctx, AdjustStockInput{
		ItemID:    item.ID,
		Delta:     -10,
		ActorID:   uuid.New(),
		ActorRole: enums.UserRoleAdmin,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock), "got %v", err)
}

func TestDeleteItemPurgesHistoryFirst(t *testing.T) {
	f := newInvFixture(t)
	item := f.createItem(t, "OS-100", 5)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		trx := models.TransactionHistory{
			ID:        uuid.New(),
			ItemID:    item.ID,
			UserID:    uuid.New(),
			Type:      enums.TransactionTypeOut,
			QtyChange: -1,
			Status:    enums.TransactionStatusCompleted,
		}
		require.NoError(t, f.db.Create(&trx).Error)
	}

	result, err := f.svc.Delete(ctx, item.ID, uuid.New(), enums.UserRoleAdmin)
	require.NoError(t, err)
	require.Equal(t, int64(3), result.RemovedHistoryRows)

	var itemCount, trxCount int64
	require.NoError(t, f.db.Model(&models.InventoryItem{}).Count(&itemCount).Error)
	require.NoError(t, f.db.Model(&models.TransactionHistory{}).Count(&trxCount).Error)
	require.Zero(t, itemCount)
	require.Zero(t, trxCount)

	last := f.publisher.events[len(f.publisher.events)-1]
	require.Equal(t, enums.EventItemDeleted, last.EventType)
	payload, ok := last.Data.(payloads.ItemDeletedEvent)
	require.True(t, ok)
	require.Equal(t, int64(3), payload.RemovedHistoryRows)
}

func TestDeleteItemRequiresAdmin(t *testing.T) {
	f := newInvFixture(t)
	item := f.createItem(t, "OS-100", 5)

	_, err := f.svc.Delete(context.Background(), item.ID, uuid.New(), enums.UserRoleStaff)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "got %v", err)
}

func TestListFiltersByCategoryAndSearch(t *testing.T) {
	f := newInvFixture(t)
	ctx := context.Background()
	f.createItem(t, "OS-100", 5)

	_, err := f.svc.Create(ctx, CreateInput{
		Name:      "Soldering iron",
		SKU:       "SI-200",
		Category:  "tools",
		StockQty:  8,
		ActorID:   uuid.New(),
		ActorRole: enums.UserRoleAdmin,
	})
	require.NoError(t, err)

	category := "tools"
	result, err := f.svc.List(ctx, ListParams{
		Filters: ListFilters{Category: &category},
		Limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, "Soldering iron", result.Items[0].Name)

	search := "OS-1"
	result, err = f.svc.List(ctx, ListParams{
		Filters: ListFilters{Search: &search},
		Limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, "OS-100", result.Items[0].SKU)
}
