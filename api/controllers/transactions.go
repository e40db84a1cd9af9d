package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/iodacademy/lendstock-backend/api/responses"
	"github.com/iodacademy/lendstock-backend/api/validators"
	"github.com/iodacademy/lendstock-backend/internal/transactions"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
	pkgerrors "github.com/iodacademy/lendstock-backend/pkg/errors"
	"github.com/iodacademy/lendstock-backend/pkg/logger"
)

type createTransactionBody struct {
	ItemID    string  `json:"item_id" validate:"required,uuid"`
	Type      string  `json:"type" validate:"required,oneof=IN OUT"`
	QtyChange int     `json:"qty_change" validate:"required"`
	Notes     *string `json:"notes,omitempty"`
	// UserID lets an admin record the movement on behalf of the borrower.
	UserID *string `json:"user_id,omitempty" validate:"omitempty,uuid"`
	// OriginalTrxID references the borrow being returned on IN rows.
	OriginalTrxID *string `json:"original_trx_id,omitempty"`
}

type transactionDecisionBody struct {
	Decision string `json:"decision" validate:"required,oneof=APPROVED REJECTED"`
}

// CreateTransaction submits a borrow, return, or stock addition.
func CreateTransaction(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transactions service unavailable"))
			return
		}

		actorID, actorRole, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createTransactionBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseIDParam(r, body.ItemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trxType, err := enums.ParseTransactionType(body.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction type"))
			return
		}

		if body.Notes != nil {
			clean := validators.SanitizeString(*body.Notes, 500)
			body.Notes = &clean
		}

		subjectID := actorID
		if body.UserID != nil {
			subjectID, err = parseIDParam(r, *body.UserID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		input := transactions.CreateInput{
			ItemID:    itemID,
			UserID:    subjectID,
			Type:      trxType,
			QtyChange: body.QtyChange,
			Notes:     body.Notes,
			ActorID:   actorID,
			ActorRole: actorRole,
		}
		if body.OriginalTrxID != nil {
			original, err := parseIDParam(r, *body.OriginalTrxID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.OriginalTrxID = &original
		}

		result, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// DecideTransaction resolves a pending transaction.
func DecideTransaction(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transactions service unavailable"))
			return
		}

		actorID, actorRole, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trxID, err := parseIDParam(r, chi.URLParam(r, "transactionID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body transactionDecisionBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		decision, err := enums.ParseTransactionDecision(body.Decision)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid decision"))
			return
		}

		result, err := svc.SetStatus(r.Context(), transactions.SetStatusInput{
			TransactionID: trxID,
			Decision:      decision,
			ActorID:       actorID,
			ActorRole:     actorRole,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetTransaction returns one transaction by id.
func GetTransaction(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transactions service unavailable"))
			return
		}

		trxID, err := parseIDParam(r, chi.URLParam(r, "transactionID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trx, err := svc.Get(r.Context(), trxID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, trx)
	}
}

// ListTransactions returns a filtered, cursor-paginated history page.
func ListTransactions(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transactions service unavailable"))
			return
		}

		params := transactions.ListParams{}

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

		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			trxType, err := enums.ParseTransactionType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type"))
				return
			}
			params.Filters.Type = &trxType
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseTransactionStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			params.Filters.Status = &status
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("date_from")); raw != "" {
			from, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date_from must be RFC3339"))
				return
			}
			params.Filters.DateFrom = &from
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("date_to")); raw != "" {
			to, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date_to must be RFC3339"))
				return
			}
			params.Filters.DateTo = &to
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
