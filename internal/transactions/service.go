package transactions

import (
	"context"
	"errors"
	"fmt"
	"time"

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

// InitialStatusPolicy decides the status a freshly created transaction starts
// in. Swapping the policy changes who needs approval without touching the
// workflow itself.
type InitialStatusPolicy func(role enums.UserRole, trxType enums.TransactionType) enums.TransactionStatus

// DefaultInitialStatus: returns and stock additions complete immediately;
// borrows complete immediately for admins and await approval for everyone else.
func DefaultInitialStatus(role enums.UserRole, trxType enums.TransactionType) enums.TransactionStatus {
	if trxType == enums.TransactionTypeIn {
		return enums.TransactionStatusCompleted
	}
	if role == enums.UserRoleAdmin {
		return enums.TransactionStatusCompleted
	}
	return enums.TransactionStatusPending
}

// Service owns the transaction lifecycle. It is the only caller of the
// ledger's Adjust and performs at most one stock mutation per transaction
// reaching COMPLETED.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*Result, error)
	SetStatus(ctx context.Context, input SetStatusInput) (*Result, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.TransactionHistory, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	ledger ledger.Service
	outbox outboxPublisher
	policy InitialStatusPolicy
}

// NewService builds the transaction workflow with the required dependencies.
func NewService(repo Repository, tx txRunner, ledgerSvc ledger.Service, publisher outboxPublisher, policy InitialStatusPolicy) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transactions repository required")
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
	if policy == nil {
		policy = DefaultInitialStatus
	}
	return &service{
		repo:   repo,
		tx:     tx,
		ledger: ledgerSvc,
		outbox: publisher,
		policy: policy,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Result, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	status := s.policy(input.ActorRole, input.Type)
	result := &Result{}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if input.Type == enums.TransactionTypeIn && input.OriginalTrxID != nil {
			if err := s.linkReturn(ctx, repo, input); err != nil {
				return err
			}
		}

		// Borrows are validated against current stock even when they only
		// reach PENDING, so obviously unfillable requests fail fast.
		if input.Type == enums.TransactionTypeOut && status != enums.TransactionStatusCompleted {
			item, err := repo.GetItem(ctx, input.ItemID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory item")
			}
			if item.StockQty+input.QtyChange < 0 {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, "stock cannot go below zero").
					WithDetails(map[string]any{"item_id": input.ItemID, "qty_change": input.QtyChange})
			}
		}

		trx := &models.TransactionHistory{
			ID:            uuid.New(),
			ItemID:        input.ItemID,
			UserID:        input.UserID,
			Type:          input.Type,
			QtyChange:     input.QtyChange,
			Status:        status,
			IsReturned:    input.Type == enums.TransactionTypeIn,
			OriginalTrxID: input.OriginalTrxID,
			Notes:         input.Notes,
		}
		if status == enums.TransactionStatusCompleted {
			now := time.Now().UTC()
			trx.DecidedBy = &input.ActorID
			trx.DecidedAt = &now
		}
		if err := repo.Create(ctx, trx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transaction")
		}

		if status == enums.TransactionStatusCompleted {
			// The item is stamped with the borrower, not the recording
			// actor, so on-behalf creates attribute the movement correctly.
			item, err := s.ledger.Adjust(ctx, tx, input.ItemID, input.QtyChange, &input.UserID)
			if err != nil {
				return err
			}
			result.NewStockQty = &item.StockQty
		}

		result.Transaction = trx
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransactionCreated,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   trx.ID,
			Version:       1,
			Actor:         buildActor(input.ActorID, input.ActorRole),
			Data: payloads.TransactionRecordedEvent{
				TransactionID: trx.ID,
				ItemID:        trx.ItemID,
				UserID:        trx.UserID,
				Type:          trx.Type,
				QtyChange:     trx.QtyChange,
				Status:        trx.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// linkReturn flips is_returned on the referenced OUT row after checking it is
// actually an open completed borrow.
func (s *service) linkReturn(ctx context.Context, repo Repository, input CreateInput) error {
	original, err := repo.FindByID(ctx, *input.OriginalTrxID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "original transaction not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load original transaction")
	}
	if original.Type != enums.TransactionTypeOut {
		return pkgerrors.New(pkgerrors.CodeValidation, "original transaction is not a borrow")
	}
	if original.Status != enums.TransactionStatusCompleted {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "original borrow is not completed")
	}
	if original.IsReturned {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "original borrow already returned")
	}
	if original.ItemID != input.ItemID {
		return pkgerrors.New(pkgerrors.CodeValidation, "return item does not match original borrow")
	}
	if err := repo.MarkReturned(ctx, original.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark original returned")
	}
	return nil
}

func (s *service) SetStatus(ctx context.Context, input SetStatusInput) (*Result, error) {
	if input.TransactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Decision.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid decision")
	}

	target := input.Decision.Status()
	result := &Result{}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		trx, err := repo.FindByID(ctx, input.TransactionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
		}

		// Terminal states admit no further transitions. Repeating the
		// decision that produced the current state is a no-op.
		if trx.Status == target {
			result.Transaction = trx
			return nil
		}
		if trx.Status != enums.TransactionStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction already decided")
		}

		// Approval only debits stock. Positive deltas are applied when the
		// row is created, never again here, whatever policy held it PENDING.
		if target == enums.TransactionStatusCompleted && trx.QtyChange < 0 {
			item, err := s.ledger.Adjust(ctx, tx, trx.ItemID, trx.QtyChange, &input.ActorID)
			if err != nil {
				return err
			}
			result.NewStockQty = &item.StockQty
		}

		now := time.Now().UTC()
		if err := repo.UpdateStatus(ctx, trx.ID, target, input.ActorID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transaction status")
		}
		trx.Status = target
		trx.DecidedBy = &input.ActorID
		trx.DecidedAt = &now
		result.Transaction = trx

		eventType := enums.EventTransactionCompleted
		if target == enums.TransactionStatusRejected {
			eventType = enums.EventTransactionRejected
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   trx.ID,
			Version:       1,
			Actor:         buildActor(input.ActorID, input.ActorRole),
			Data: payloads.TransactionDecidedEvent{
				TransactionID: trx.ID,
				ItemID:        trx.ItemID,
				UserID:        trx.UserID,
				Status:        target,
				DecidedBy:     input.ActorID,
				DecidedAt:     now,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listTransactionsParams{
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.TransactionHistory, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	trx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return trx, nil
}

func validateCreateInput(input CreateInput) error {
	if input.ItemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type")
	}
	if input.QtyChange == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "qty_change must be non-zero")
	}
	if input.Type == enums.TransactionTypeOut && input.QtyChange > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "OUT transactions must carry a negative qty_change")
	}
	if input.Type == enums.TransactionTypeIn && input.QtyChange < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "IN transactions must carry a positive qty_change")
	}
	if input.OriginalTrxID != nil && input.Type != enums.TransactionTypeIn {
		return pkgerrors.New(pkgerrors.CodeValidation, "only returns may reference an original transaction")
	}
	return nil
}

func buildActor(userID uuid.UUID, role enums.UserRole) *outbox.ActorRef {
	if userID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: userID, Role: role.String()}
}
