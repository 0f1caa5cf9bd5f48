package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/common"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/logging"
	gormModels "skywatch/crewdeck/internal/models/gorm"
)

// ProfileEnsurer creates the profile row on the first request of a new identity
type ProfileEnsurer interface {
	EnsureProfile(ctx context.Context, id, email string) (*gormModels.Profile, error)
}

// AuthMiddleware verifies the bearer token and loads the caller's profile.
// The role on the claims always comes from the profile row, never the token.
func AuthMiddleware(issuer *auth.TokenIssuer, profiles ProfileEnsurer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			raw, ok := bearerToken(r)
			if !ok {
				common.RespondError(w, start, apperrors.New(constants.ErrCodeUnauthenticated, nil), "")
				return
			}

			token, err := issuer.Parse(raw)
			if err != nil {
				logging.Debug("Rejected bearer token", "error", err.Error())
				common.RespondError(w, start, apperrors.Newf(constants.ErrCodeUnauthenticated, "invalid or expired token"), "")
				return
			}

			profile, err := profiles.EnsureProfile(r.Context(), token.Subject, token.Email)
			if err != nil {
				common.RespondError(w, start, err, "")
				return
			}

			claims := &auth.JWTClaims{
				UserUUID:   profile.ID,
				EmailValue: profile.Email,
				RoleValue:  profile.Role,
			}
			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken reads the Authorization header. EventSource cannot set
// headers, so an access_token query value is accepted as well.
func bearerToken(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		return tok, tok != ""
	}
	if tok := r.URL.Query().Get("access_token"); tok != "" {
		return tok, true
	}
	return "", false
}
