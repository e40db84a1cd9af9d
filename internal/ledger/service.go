package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iodacademy/lendstock-backend/pkg/db/models"
	pkgerrors "github.com/iodacademy/lendstock-backend/pkg/errors"
	"github.com/iodacademy/lendstock-backend/pkg/metrics"
)

// Service is the sole mutator of InventoryItem.stock_qty.
type Service interface {
	// Adjust atomically applies delta to the item's stock inside the caller's
	// transaction. The check and the write are a single conditional UPDATE, so
	// no interleaving can drive the stock negative. The caller must abort its
	// transaction when an error is returned.
	Adjust(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, delta int, actorID *uuid.UUID) (*models.InventoryItem, error)
}

type service struct {
	repo    Repository
	metrics *metrics.LedgerMetrics
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository, m *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo, metrics: m}, nil
}

func (s *service) Adjust(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, delta int, actorID *uuid.UUID) (*models.InventoryItem, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger adjust requires a transaction")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must be non-zero")
	}

	repo := s.repo.WithTx(tx)
	affected, err := repo.AdjustStock(ctx, itemID, delta, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjusting stock")
	}
	if affected == 0 {
		// Distinguish a missing item from a guard rejection.
		if _, err := repo.GetItem(ctx, itemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading inventory item")
		}
		s.metrics.IncInsufficient()
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "stock cannot go below zero").
			WithDetails(map[string]any{"item_id": itemID, "delta": delta})
	}

	item, err := repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading inventory item")
	}
	s.metrics.IncAdjustment(delta)
	return item, nil
}
