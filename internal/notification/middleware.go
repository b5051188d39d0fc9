package notification

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fkhayef/plantswap/internal/api"
	"github.com/fkhayef/plantswap/internal/session"
	"github.com/fkhayef/plantswap/pkg/response"
)

// Middleware installs a fresh Recorder for every request and, when the
// request belongs to a gateway session, that session's flash queue.
func Middleware(flash *session.Registry[*Queue], sessionID func(context.Context) (string, bool)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithNotifier(r.Context(), NewRecorder())
			if flash != nil && sessionID != nil {
				if id, ok := sessionID(ctx); ok {
					ctx = WithFlash(ctx, flash.Get(id))
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Respond writes data in the standard envelope together with the
// notifications recorded for r.
func Respond(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	resp := response.APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}
	if notes := Collected(r.Context()); len(notes) > 0 {
		resp.Notifications = notes
	}
	response.Write(w, status, resp)
}

// RespondError writes an error envelope for err. Remote failures keep the
// remote status; anything else answers 500 with message.
func RespondError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus()
		code = strings.ToUpper(apiErr.Kind.String())
		if apiErr.Detail != "" {
			message = apiErr.Detail
		}
	}

	RespondStatus(w, r, status, code, message)
}

// RespondStatus writes an error envelope with an explicit status and code.
func RespondStatus(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	resp := response.APIResponse{
		Success: false,
		Error:   &response.APIError{Code: code, Message: message},
	}
	if notes := Collected(r.Context()); len(notes) > 0 {
		resp.Notifications = notes
	}
	response.Write(w, status, resp)
}
