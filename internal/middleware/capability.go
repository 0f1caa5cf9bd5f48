package middleware

import (
	"net/http"
	"time"

	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/common"
	"skywatch/crewdeck/internal/constants"
)

// RequireCapability hides a route from roles that cannot perform action.
// Repositories check again on every write.
func RequireCapability(action auth.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			claims := auth.GetUserClaims(r.Context())
			if claims == nil {
				common.RespondError(w, time.Now(), apperrors.New(constants.ErrCodeUnauthenticated, nil), "")
				return
			}

			if !claims.HasPermission(action) {
				common.RespondError(w, time.Now(), apperrors.PermissionDenied("role %s cannot %s", claims.Role(), action), "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
