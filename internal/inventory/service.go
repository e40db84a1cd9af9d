package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iodacademy/lendstock-backend/internal/ledger"
	"github.com/iodacademy/lendstock-backend/pkg/db/models"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
	pkgerrors "github.com/iodacademy/lendstock-backend/pkg/errors"
	"github.com/iodacademy/lendstock-backend/pkg/outbox"
	"github.com/iodacademy/lendstock-backend/pkg/outbox/payloads"
	"github.com/iodacademy/lendstock-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service owns the catalog. Stock corrections route through the ledger so
// the non-negative invariant holds for manual edits too.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.InventoryItem, error)
	Update(ctx context.Context, input UpdateInput) (*models.InventoryItem, error)
	AdjustStock(ctx context.Context, input AdjustStockInput) (*models.InventoryItem, error)
	Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorRole enums.UserRole) (*DeleteResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	ledger ledger.Service
	outbox outboxPublisher
}

// NewService builds the catalog service with the required dependencies.
func NewService(repo Repository, tx txRunner, ledgerSvc ledger.Service, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, ledger: ledgerSvc, outbox: publisher}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.InventoryItem, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.SKU = strings.TrimSpace(input.SKU)
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name required")
	}
	if input.SKU == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	if input.StockQty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial stock cannot be negative")
	}

	item := &models.InventoryItem{
		ID:       uuid.New(),
		Name:     input.Name,
		SKU:      input.SKU,
		Category: input.Category,
		StockQty: input.StockQty,
		Location: input.Location,
		ImageURL: input.ImageURL,
	}
	if input.Unit != "" {
		item.Unit = input.Unit
	} else {
		item.Unit = "pcs"
	}
	if input.Condition != "" {
		item.Condition = input.Condition
	} else {
		item.Condition = "good"
	}
	if input.ActorID != uuid.Nil {
		item.LastUpdatedBy = &input.ActorID
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindBySKU(ctx, input.SKU); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "sku already in use")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sku")
		}

		if err := repo.Create(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventItemCreated,
			AggregateType: enums.AggregateInventory,
			AggregateID:   item.ID,
			Version:       1,
			Actor:         buildActor(input.ActorID, input.ActorRole),
			Data:          upsertedPayload(item),
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.InventoryItem, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	var item *models.InventoryItem

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.FindByID(ctx, input.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
		}

		updates := map[string]any{}
		if input.Name != nil {
			current.Name = strings.TrimSpace(*input.Name)
			if current.Name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "item name required")
			}
			updates["name"] = current.Name
		}
		if input.Category != nil {
			current.Category = *input.Category
			updates["category"] = *input.Category
		}
		if input.Unit != nil {
			current.Unit = *input.Unit
			updates["unit"] = *input.Unit
		}
		if input.Condition != nil {
			current.Condition = *input.Condition
			updates["condition"] = *input.Condition
		}
		if input.Location != nil {
			current.Location = *input.Location
			updates["location"] = *input.Location
		}
		if input.ImageURL != nil {
			current.ImageURL = input.ImageURL
			updates["image_url"] = *input.ImageURL
		}
		item = current
		if len(updates) == 0 {
			return nil
		}
		if input.ActorID != uuid.Nil {
			current.LastUpdatedBy = &input.ActorID
			updates["last_updated_by"] = input.ActorID
		}

		if err := repo.Update(ctx, current.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventItemUpdated,
			AggregateType: enums.AggregateInventory,
			AggregateID:   current.ID,
			Version:       1,
			Actor:         buildActor(input.ActorID, input.ActorRole),
			Data:          upsertedPayload(current),
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// AdjustStock applies a manual correction through the ledger, so a negative
// result is rejected the same way a borrow would be.
func (s *service) AdjustStock(ctx context.Context, input AdjustStockInput) (*models.InventoryItem, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.ActorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may correct stock")
	}

	var item *models.InventoryItem

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		adjusted, err := s.ledger.Adjust(ctx, tx, input.ItemID, input.Delta, &input.ActorID)
		if err != nil {
			return err
		}
		item = adjusted

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventStockAdjusted,
			AggregateType: enums.AggregateInventory,
			AggregateID:   adjusted.ID,
			Version:       1,
			Actor:         buildActor(input.ActorID, input.ActorRole),
			Data: payloads.StockAdjustedEvent{
				ItemID:      adjusted.ID,
				Delta:       input.Delta,
				NewStockQty: adjusted.StockQty,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes the item and its full transaction history in one
// transaction. The history purge runs first as an explicit step rather than
// relying on a database cascade, so the count of removed rows can be
// reported.
func (s *service) Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorRole enums.UserRole) (*DeleteResult, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if actorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may delete items")
	}

	result := &DeleteResult{ItemID: id}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
		}

		removed, err := repo.DeleteHistories(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge transaction history")
		}
		result.RemovedHistoryRows = removed

		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventItemDeleted,
			AggregateType: enums.AggregateInventory,
			AggregateID:   id,
			Version:       1,
			Actor:         buildActor(actorID, actorRole),
			Data: payloads.ItemDeletedEvent{
				ItemID:             id,
				SKU:                item.SKU,
				RemovedHistoryRows: removed,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listItemsParams{
		Filters: params.Filters,
		Limit:   params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func upsertedPayload(item *models.InventoryItem) payloads.ItemUpsertedEvent {
	return payloads.ItemUpsertedEvent{
		ItemID:   item.ID,
		Name:     item.Name,
		SKU:      item.SKU,
		Category: item.Category,
		StockQty: item.StockQty,
	}
}

func buildActor(userID uuid.UUID, role enums.UserRole) *outbox.ActorRef {
	if userID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: userID, Role: role.String()}
}
