package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iodacademy/lendstock-backend/api/responses"
	"github.com/iodacademy/lendstock-backend/api/validators"
	"github.com/iodacademy/lendstock-backend/internal/inventory"
	pkgerrors "github.com/iodacademy/lendstock-backend/pkg/errors"
	"github.com/iodacademy/lendstock-backend/pkg/logger"
)

type createItemBody struct {
	Name      string  `json:"name" validate:"required,min=2,max=120"`
	SKU       string  `json:"sku" validate:"required,min=2,max=64"`
	Category  string  `json:"category" validate:"required,min=2,max=64"`
	StockQty  int     `json:"stock_qty" validate:"gte=0"`
	Unit      string  `json:"unit" validate:"max=24"`
	Condition string  `json:"condition" validate:"max=32"`
	Location  string  `json:"location" validate:"max=120"`
	ImageURL  *string `json:"image_url,omitempty" validate:"omitempty,url"`
}

type updateItemBody struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Category  *string `json:"category,omitempty" validate:"omitempty,min=2,max=64"`
	Unit      *string `json:"unit,omitempty" validate:"omitempty,max=24"`
	Condition *string `json:"condition,omitempty" validate:"omitempty,max=32"`
	Location  *string `json:"location,omitempty" validate:"omitempty,max=120"`
	ImageURL  *string `json:"image_url,omitempty" validate:"omitempty,url"`
}

type adjustStockBody struct {
	Delta int `json:"delta" validate:"required"`
}

// CreateItem registers a new catalog item.
func CreateItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		actorID, actorRole, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createItemBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), inventory.CreateInput{
			Name:      validators.SanitizeString(body.Name, 120),
			SKU:       body.SKU,
			Category:  body.Category,
			StockQty:  body.StockQty,
			Unit:      body.Unit,
			Condition: body.Condition,
			Location:  validators.SanitizeString(body.Location, 120),
			ImageURL:  body.ImageURL,
			ActorID:   actorID,
			ActorRole: actorRole,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// UpdateItem patches catalog fields. Stock never moves through this endpoint.
func UpdateItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		actorID, actorRole, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseIDParam(r, chi.URLParam(r, "itemID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateItemBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if body.Name != nil {
			clean := validators.SanitizeString(*body.Name, 120)
			body.Name = &clean
		}
		if body.Location != nil {
			clean := validators.SanitizeString(*body.Location, 120)
			body.Location = &clean
		}

		item, err := svc.Update(r.Context(), inventory.UpdateInput{
			ItemID:    itemID,
			Name:      body.Name,
			Category:  body.Category,
			Unit:      body.Unit,
			Condition: body.Condition,
			Location:  body.Location,
			ImageURL:  body.ImageURL,
			ActorID:   actorID,
			ActorRole: actorRole,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// AdjustItemStock applies a manual admin correction through the ledger.
func AdjustItemStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		actorID, actorRole, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseIDParam(r, chi.URLParam(r, "itemID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body adjustStockBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.AdjustStock(r.Context(), inventory.AdjustStockInput{
			ItemID:    itemID,
			Delta:     body.Delta,
			ActorID:   actorID,
			ActorRole: actorRole,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// DeleteItem removes an item and its full transaction history.
func DeleteItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		actorID, actorRole, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseIDParam(r, chi.URLParam(r, "itemID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Delete(r.Context(), itemID, actorID, actorRole)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"item_id":              result.ItemID,
			"removed_history_rows": result.RemovedHistoryRows,
		})
	}
}

// GetItem returns a single catalog item.
func GetItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		itemID, err := parseIDParam(r, chi.URLParam(r, "itemID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Get(r.Context(), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ListItems returns a filtered catalog page.
func ListItems(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		params := inventory.ListParams{}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Limit = limit

		if cursor := strings.TrimSpace(r.URL.Query().Get("cursor")); cursor != "" {
			params.Cursor = cursor
		}

		if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
			params.Filters.Category = &category
		}

		if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
			params.Filters.Search = &search
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("low_stock_under")); raw != "" {
			threshold, err := validators.ParseQueryInt(r, "low_stock_under", 0, 1, 100000)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			params.Filters.LowStockUnder = &threshold
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
