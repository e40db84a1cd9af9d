package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iodacademy/lendstock-backend/api/middleware"
	"github.com/iodacademy/lendstock-backend/api/responses"
	"github.com/iodacademy/lendstock-backend/api/validators"
	"github.com/iodacademy/lendstock-backend/internal/sharedaccounts"
	pkgerrors "github.com/iodacademy/lendstock-backend/pkg/errors"
	"github.com/iodacademy/lendstock-backend/pkg/logger"
)

type createSharedAccountBody struct {
	Platform         string   `json:"platform" validate:"required,min=2,max=64"`
	Username         *string  `json:"username,omitempty" validate:"omitempty,max=120"`
	Email            *string  `json:"email,omitempty" validate:"omitempty,email"`
	Password         string   `json:"password" validate:"required"`
	Notes            *string  `json:"notes,omitempty"`
	URL              *string  `json:"url,omitempty" validate:"omitempty,url"`
	IconURL          *string  `json:"icon_url,omitempty" validate:"omitempty,url"`
	LoginMethod      string   `json:"login_method" validate:"omitempty,max=32"`
	AuthorizedEmails []string `json:"authorized_emails" validate:"dive,email"`
}

type updateSharedAccountBody struct {
	Platform         *string   `json:"platform,omitempty" validate:"omitempty,min=2,max=64"`
	Username         *string   `json:"username,omitempty" validate:"omitempty,max=120"`
	Email            *string   `json:"email,omitempty" validate:"omitempty,email"`
	Password         *string   `json:"password,omitempty"`
	Notes            *string   `json:"notes,omitempty"`
	URL              *string   `json:"url,omitempty" validate:"omitempty,url"`
	IconURL          *string   `json:"icon_url,omitempty" validate:"omitempty,url"`
	LoginMethod      *string   `json:"login_method,omitempty" validate:"omitempty,max=32"`
	AuthorizedEmails *[]string `json:"authorized_emails,omitempty" validate:"omitempty,dive,email"`
	IsActive         *bool     `json:"is_active,omitempty"`
}

// CreateSharedAccount stores a shared platform credential.
func CreateSharedAccount(svc sharedaccounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shared accounts service unavailable"))
			return
		}

		_, actorRole, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createSharedAccountBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.Create(r.Context(), sharedaccounts.CreateInput{
			Platform:         body.Platform,
			Username:         body.Username,
			Email:            body.Email,
			Password:         body.Password,
			Notes:            body.Notes,
			URL:              body.URL,
			IconURL:          body.IconURL,
			LoginMethod:      body.LoginMethod,
			AuthorizedEmails: body.AuthorizedEmails,
		}, actorRole)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, account)
	}
}

// UpdateSharedAccount patches an existing credential.
func UpdateSharedAccount(svc sharedaccounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shared accounts service unavailable"))
			return
		}

		_, actorRole, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		accountID, err := parseIDParam(r, chi.URLParam(r, "accountID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateSharedAccountBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.Update(r.Context(), sharedaccounts.UpdateInput{
			AccountID:        accountID,
			Platform:         body.Platform,
			Username:         body.Username,
			Email:            body.Email,
			Password:         body.Password,
			Notes:            body.Notes,
			URL:              body.URL,
			IconURL:          body.IconURL,
			LoginMethod:      body.LoginMethod,
			AuthorizedEmails: body.AuthorizedEmails,
			IsActive:         body.IsActive,
		}, actorRole)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, account)
	}
}

// DeleteSharedAccount removes a credential.
func DeleteSharedAccount(svc sharedaccounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shared accounts service unavailable"))
			return
		}

		_, actorRole, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		accountID, err := parseIDParam(r, chi.URLParam(r, "accountID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), accountID, actorRole); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ListSharedAccounts returns accounts visible to the actor. Admins see all
// active accounts; everyone else only the ones listing their email.
func ListSharedAccounts(svc sharedaccounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shared accounts service unavailable"))
			return
		}

		_, actorRole, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		accounts, err := svc.ListVisible(r.Context(), middleware.EmailFromContext(r.Context()), actorRole)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, accounts)
	}
}
