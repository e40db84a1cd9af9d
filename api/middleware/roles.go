package middleware

import (
	"net/http"

	"github.com/iodacademy/lendstock-backend/api/responses"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
	pkgerrors "github.com/iodacademy/lendstock-backend/pkg/errors"
	"github.com/iodacademy/lendstock-backend/pkg/logger"
)

// RequireRoles rejects requests whose authenticated role is not in the
// allowed set.
func RequireRoles(logg *logger.Logger, allowed ...enums.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowed) == 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "allowed roles missing"))
				return
			}
			role := enums.UserRole(RoleFromContext(r.Context()))
			for _, candidate := range allowed {
				if role == candidate {
					next.ServeHTTP(w, r)
					return
				}
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
		})
	}
}

// RequireAdmin is shorthand for the admin-only surfaces.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return RequireRoles(logg, enums.UserRoleAdmin)
}
