package middleware

import (
	"net/http"
	"strings"

	"github.com/fkhayef/plantswap/internal/api"
	"github.com/fkhayef/plantswap/internal/notification"
)

// Credential copies the marketplace session cookie from the browser
// request into the request context, where the API client picks it up.
// A bearer Authorization header is accepted as well.
func Credential(cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if cookie, err := r.Cookie(cookieName); err == nil {
				token = cookie.Value
			} else if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				// Extract token from "Bearer <token>"
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && parts[0] == "Bearer" {
					token = strings.TrimSpace(parts[1])
				}
			}

			ctx := api.WithCredential(r.Context(), token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCredential rejects requests that carry no session credential
// before anything is sent to the API.
func RequireCredential(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := api.CredentialFrom(r.Context()); !ok {
			notification.Emit(r.Context(), notification.Error(notification.TitleUnauthorized, notification.DescUnauthorized))
			notification.RespondStatus(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "You are not logged in")
			return
		}
		next.ServeHTTP(w, r)
	})
}
