package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/iodacademy/lendstock-backend/api/middleware"
	pkgerrors "github.com/iodacademy/lendstock-backend/pkg/errors"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
)

// actorFromRequest pulls the authenticated identity out of the request
// context. Handlers behind the Auth middleware can rely on both values.
func actorFromRequest(r *http.Request) (uuid.UUID, enums.UserRole, error) {
	userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context")
	}
	role := enums.UserRole(middleware.RoleFromContext(r.Context()))
	if !role.IsValid() {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing role context")
	}
	return userID, role, nil
}

func parseIDParam(r *http.Request, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id")
	}
	return id, nil
}
