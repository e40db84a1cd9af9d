package reservations

import (
	"time"

	"github.com/google/uuid"

	"github.com/iodacademy/lendstock-backend/pkg/db/models"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
)

// CreateInput carries a new booking request.
type CreateInput struct {
	ItemID    uuid.UUID
	UserID    uuid.UUID
	StartDate time.Time
	EndDate   time.Time
	Notes     *string
	ActorID   uuid.UUID
	ActorRole enums.UserRole
}

// UpdateInput patches the schedulable fields of a pending reservation.
type UpdateInput struct {
	ReservationID uuid.UUID
	StartDate     *time.Time
	EndDate       *time.Time
	Notes         *string
	ActorID       uuid.UUID
	ActorRole     enums.UserRole
}

// SetStatusInput is an admin decision on a reservation.
type SetStatusInput struct {
	ReservationID   uuid.UUID
	Status          enums.ReservationStatus
	RejectionReason *string
	ActorID         uuid.UUID
	ActorRole       enums.UserRole
}

// ListFilters narrows a reservation listing.
type ListFilters struct {
	ItemID *uuid.UUID
	UserID *uuid.UUID
	Status *enums.ReservationStatus
}

// ListParams pages through reservations newest first.
type ListParams struct {
	Filters ListFilters
	Limit   int
	Cursor  string
}

// ListResult is one page of reservations plus the next cursor.
type ListResult struct {
	Items  []models.Reservation
	Cursor string
}
