package middleware

import (
	"net/http"

	"greencare-be/internal/auth"
	"greencare-be/internal/logger"
	"greencare-be/internal/transport"
	"greencare-be/internal/utils"

	"go.uber.org/zap"
)

type AccessTokenParser interface {
	ParseAccess(raw string) (auth.Identity, error)
}

// Authenticate attaches the caller identity to the request context.
// Requests without a token pass through anonymously; a token that fails
// validation is rejected with 401.
func Authenticate(tokens AccessTokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := auth.ExtractAccessToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := tokens.ParseAccess(raw)
			if err != nil {
				logger.FromCtx(r.Context()).Debug("rejected access token", zap.Error(err))
				transport.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := utils.SetUserContext(r.Context(), id.UserID, id.Email, id.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
