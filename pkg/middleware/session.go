package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/plantswap/internal/api"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// SessionIDKey is the context key for the gateway session id
	SessionIDKey ContextKey = "session_id"
)

// SessionOptions configures the gateway session cookie.
type SessionOptions struct {
	CookieName string
	Secure     bool
	TTL        time.Duration
}

// Session makes sure every request belongs to a gateway session. Browsers
// without a valid session cookie get a new random id.
func Session(opts SessionOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if cookie, err := r.Cookie(opts.CookieName); err == nil {
				if parsed, err := uuid.Parse(cookie.Value); err == nil {
					id = parsed.String()
				}
			}

			if id == "" {
				id = uuid.NewString()
			}

			// Refresh on every request so the cookie tracks idle expiry.
			cookie := &http.Cookie{
				Name:     opts.CookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: http.SameSiteLaxMode,
			}
			if opts.TTL > 0 {
				cookie.MaxAge = int(opts.TTL.Seconds())
			}
			http.SetCookie(w, cookie)

			ctx := context.WithValue(r.Context(), SessionIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionID extracts the gateway session id from the request context
func GetSessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(SessionIDKey).(string)
	return id, ok && id != ""
}

// StateKey identifies session state that belongs to the marketplace
// account currently presented by the browser. It is the session id alone
// for anonymous requests and changes whenever the credential changes.
func StateKey(ctx context.Context) (string, bool) {
	sid, ok := GetSessionID(ctx)
	if !ok {
		return "", false
	}
	token, ok := api.CredentialFrom(ctx)
	if !ok {
		return sid, true
	}
	sum := sha256.Sum256([]byte(token))
	return sid + ":" + hex.EncodeToString(sum[:8]), true
}
