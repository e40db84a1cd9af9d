package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/iodacademy/lendstock-backend/api/responses"
	"github.com/iodacademy/lendstock-backend/api/validators"
	"github.com/iodacademy/lendstock-backend/internal/reservations"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
	pkgerrors "github.com/iodacademy/lendstock-backend/pkg/errors"
	"github.com/iodacademy/lendstock-backend/pkg/logger"
)

type createReservationBody struct {
	ItemID    string    `json:"item_id" validate:"required,uuid"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	Notes     *string   `json:"notes,omitempty"`
}

type updateReservationBody struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
}

type reservationDecisionBody struct {
	Status          string  `json:"status" validate:"required"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

// CreateReservation books an item for a future window.
func CreateReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations service unavailable"))
			return
		}

		actorID, actorRole, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createReservationBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseIDParam(r, body.ItemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.Create(r.Context(), reservations.CreateInput{
			ItemID:    itemID,
			UserID:    actorID,
			StartDate: body.StartDate,
			EndDate:   body.EndDate,
			Notes:     body.Notes,
			ActorID:   actorID,
			ActorRole: actorRole,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, reservation)
	}
}

// UpdateReservation reschedules a pending reservation.
func UpdateReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations service unavailable"))
			return
		}

		actorID, actorRole, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservationID, err := parseIDParam(r, chi.URLParam(r, "reservationID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateReservationBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.Update(r.Context(), reservations.UpdateInput{
			ReservationID: reservationID,
			StartDate:     body.StartDate,
			EndDate:       body.EndDate,
			Notes:         body.Notes,
			ActorID:       actorID,
			ActorRole:     actorRole,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reservation)
	}
}

// DecideReservation moves a reservation through its state machine.
func DecideReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations service unavailable"))
			return
		}

		actorID, actorRole, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservationID, err := parseIDParam(r, chi.URLParam(r, "reservationID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body reservationDecisionBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseReservationStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		reservation, err := svc.SetStatus(r.Context(), reservations.SetStatusInput{
			ReservationID:   reservationID,
			Status:          status,
			RejectionReason: body.RejectionReason,
			ActorID:         actorID,
			ActorRole:       actorRole,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reservation)
	}
}

// DeleteReservation cancels and removes a reservation.
func DeleteReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations service unavailable"))
			return
		}

		actorID, actorRole, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservationID, err := parseIDParam(r, chi.URLParam(r, "reservationID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), reservationID, actorID, actorRole); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// GetReservation returns one reservation by id.
func GetReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations service unavailable"))
			return
		}

		reservationID, err := parseIDParam(r, chi.URLParam(r, "reservationID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.Get(r.Context(), reservationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reservation)
	}
}

// ListReservations returns a filtered reservation page.
func ListReservations(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations service unavailable"))
			return
		}

		params := reservations.ListParams{}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Limit = limit

		if cursor := strings.TrimSpace(r.URL.Query().Get("cursor")); cursor != "" {
			params.Cursor = cursor
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("item_id")); raw != "" {
			itemID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid item_id"))
				return
			}
			params.Filters.ItemID = &itemID
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("user_id")); raw != "" {
			userID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid user_id"))
				return
			}
			params.Filters.UserID = &userID
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseReservationStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			params.Filters.Status = &status
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
