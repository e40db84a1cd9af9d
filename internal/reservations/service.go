package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

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

// Service owns the reservation lifecycle. Reservations schedule future
// borrows and never touch stock; the ledger only moves when a transaction
// completes.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Reservation, error)
	Update(ctx context.Context, input UpdateInput) (*models.Reservation, error)
	SetStatus(ctx context.Context, input SetStatusInput) (*models.Reservation, error)
	Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorRole enums.UserRole) error
	Get(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds the reservation service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reservations repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: publisher}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Reservation, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start and end dates required")
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must not precede start date")
	}

	reservation := &models.Reservation{
		ID:        uuid.New(),
		ItemID:    input.ItemID,
		UserID:    input.UserID,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Status:    enums.ReservationStatusPending,
		Notes:     input.Notes,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		exists, err := repo.ItemExists(ctx, input.ItemID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check inventory item")
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}

		if err := repo.Create(ctx, reservation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReservationCreated,
			AggregateType: enums.AggregateReservation,
			AggregateID:   reservation.ID,
			Version:       1,
			Actor:         buildActor(input.ActorID, input.ActorRole),
			Data: payloads.ReservationCreatedEvent{
				ReservationID: reservation.ID,
				ItemID:        reservation.ItemID,
				UserID:        reservation.UserID,
				StartDate:     reservation.StartDate,
				EndDate:       reservation.EndDate,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Reservation, error) {
	if input.ReservationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}

	reservation, err := s.load(ctx, input.ReservationID)
	if err != nil {
		return nil, err
	}
	if reservation.UserID != input.ActorID && input.ActorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner or an admin may edit a reservation")
	}
	if reservation.Status != enums.ReservationStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending reservations can be edited")
	}

	updates := map[string]any{}
	if input.StartDate != nil {
		reservation.StartDate = *input.StartDate
		updates["start_date"] = *input.StartDate
	}
	if input.EndDate != nil {
		reservation.EndDate = *input.EndDate
		updates["end_date"] = *input.EndDate
	}
	if input.Notes != nil {
		reservation.Notes = input.Notes
		updates["notes"] = *input.Notes
	}
	if reservation.EndDate.Before(reservation.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must not precede start date")
	}
	if len(updates) == 0 {
		return reservation, nil
	}

	if err := s.repo.Update(ctx, reservation.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reservation")
	}
	return reservation, nil
}

func (s *service) SetStatus(ctx context.Context, input SetStatusInput) (*models.Reservation, error) {
	if input.ReservationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}
	if input.ActorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may decide reservations")
	}
	if !input.Status.IsValid() || input.Status == enums.ReservationStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid reservation status")
	}
	if input.Status == enums.ReservationStatusRejected &&
		(input.RejectionReason == nil || *input.RejectionReason == "") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection requires a reason")
	}

	var reservation *models.Reservation

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.FindByID(ctx, input.ReservationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
		}

		// Repeating the decision that produced the current state is a no-op.
		if current.Status == input.Status {
			reservation = current
			return nil
		}
		if !canTransition(current.Status, input.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move reservation from %s to %s", current.Status, input.Status))
		}

		updates := map[string]any{"status": input.Status}
		if input.Status == enums.ReservationStatusRejected {
			updates["rejection_reason"] = *input.RejectionReason
			current.RejectionReason = input.RejectionReason
		} else {
			updates["rejection_reason"] = nil
			current.RejectionReason = nil
		}
		if err := repo.Update(ctx, current.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reservation status")
		}
		current.Status = input.Status
		reservation = current

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReservationDecided,
			AggregateType: enums.AggregateReservation,
			AggregateID:   current.ID,
			Version:       1,
			Actor:         buildActor(input.ActorID, input.ActorRole),
			Data: payloads.ReservationDecidedEvent{
				ReservationID:   current.ID,
				ItemID:          current.ItemID,
				UserID:          current.UserID,
				Status:          current.Status,
				RejectionReason: current.RejectionReason,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

// canTransition encodes the reservation state machine. REJECTED and COMPLETED
// are terminal; an approved booking can still complete or be canceled.
func canTransition(from, to enums.ReservationStatus) bool {
	switch from {
	case enums.ReservationStatusPending:
		return to == enums.ReservationStatusApproved ||
			to == enums.ReservationStatusRejected ||
			to == enums.ReservationStatusCanceled
	case enums.ReservationStatusApproved:
		return to == enums.ReservationStatusCompleted ||
			to == enums.ReservationStatusCanceled
	default:
		return false
	}
}

func (s *service) Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorRole enums.UserRole) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}

	reservation, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if actorRole != enums.UserRoleAdmin {
		if reservation.UserID != actorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner or an admin may remove a reservation")
		}
		if reservation.Status != enums.ReservationStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending reservations can be removed by their owner")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete reservation")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}
	return s.load(ctx, id)
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listReservationsParams{
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}
	return reservation, nil
}

func buildActor(userID uuid.UUID, role enums.UserRole) *outbox.ActorRef {
	if userID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: userID, Role: role.String()}
}
