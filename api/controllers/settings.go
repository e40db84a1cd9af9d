package controllers

import (
	"net/http"

	"github.com/iodacademy/lendstock-backend/api/responses"
	"github.com/iodacademy/lendstock-backend/api/validators"
	"github.com/iodacademy/lendstock-backend/internal/settings"
	pkgerrors "github.com/iodacademy/lendstock-backend/pkg/errors"
	"github.com/iodacademy/lendstock-backend/pkg/logger"
)

type updateSettingsBody struct {
	CompanyName     *string `json:"company_name,omitempty" validate:"omitempty,max=120"`
	CompanyWhatsapp *string `json:"company_whatsapp,omitempty" validate:"omitempty,max=24"`
	LoginLogoURL    *string `json:"login_logo_url,omitempty" validate:"omitempty,url"`
	ReportHeader    *string `json:"report_header,omitempty" validate:"omitempty,max=240"`
	OverdueDays     *int    `json:"overdue_days,omitempty" validate:"omitempty,min=1,max=365"`
}

// GetSettings returns the singleton system configuration.
func GetSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		setting, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, setting)
	}
}

// UpdateSettings patches the singleton system configuration.
func UpdateSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		_, actorRole, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateSettingsBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setting, err := svc.Update(r.Context(), settings.UpdateInput{
			CompanyName:     body.CompanyName,
			CompanyWhatsapp: body.CompanyWhatsapp,
			LoginLogoURL:    body.LoginLogoURL,
			ReportHeader:    body.ReportHeader,
			OverdueDays:     body.OverdueDays,
		}, actorRole)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, setting)
	}
}
