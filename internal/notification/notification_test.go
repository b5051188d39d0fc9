package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/plantswap/internal/api"
	"github.com/fkhayef/plantswap/internal/session"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantTitle string
		wantDesc  string
	}{
		{"unauthorized", api.Unauthorized("Not authenticated"), "Unauthorized", "You need to be logged in to perform this action"},
		{"forbidden", api.Forbidden(""), "Forbidden", "You do not have permission for this action"},
		{"not found", api.NotFound("gone"), "Not Found", "The requested resource was not found"},
		{"conflict", api.Conflict("dup"), "Conflict", "Trade request already exists"},
		{"self trade", api.SelfTrade("teapot"), "Cannot Trade With Yourself", "Cannot trade with yourself"},
		{"other with detail", api.Other(500, "database down", nil), "Fallback", "database down"},
		{"other without detail", api.Other(0, "", errors.New("dial tcp")), "Fallback", "An unexpected error occurred"},
		{"plain error", errors.New("boom"), "Fallback", "An unexpected error occurred"},
		{"wrapped", fmtWrap(api.Conflict("")), "Conflict", "Trade request already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := FromError(tt.err, "Fallback")
			assert.Equal(t, tt.wantTitle, n.Title)
			assert.Equal(t, tt.wantDesc, n.Description)
			assert.Equal(t, StatusError, n.Status)
			assert.Equal(t, DefaultDuration, n.Duration)
			assert.True(t, n.IsClosable)
		})
	}
}

func fmtWrap(err error) error {
	return errors.Join(errors.New("create trade"), err)
}

func TestNotification_MarshalJSON(t *testing.T) {
	n := Error("Passwords do not match", "Please ensure both password fields are identical.").WithDuration(ShortDuration)

	b, err := json.Marshal(n)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "Passwords do not match", got["title"])
	assert.Equal(t, "error", got["status"])
	assert.EqualValues(t, 3000, got["duration"])
	assert.Equal(t, true, got["is_closable"])
}

func TestEmit_WithoutNotifierIsDropped(t *testing.T) {
	assert.NotPanics(t, func() {
		Emit(context.Background(), Success("x", ""))
	})
	assert.Nil(t, Collected(context.Background()))
}

func TestRecorder_CollectsInOrder(t *testing.T) {
	rec := NewRecorder()
	ctx := WithNotifier(context.Background(), rec)

	Emit(ctx, Success("one", ""))
	EmitError(ctx, api.Conflict(""), "ignored")

	got := Collected(ctx)
	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Title)
	assert.Equal(t, "Conflict", got[1].Title)
}

func TestQueue_DrainReadsOnce(t *testing.T) {
	q := NewQueue()
	assert.Equal(t, []Notification{}, q.Drain())

	q.Push(Success("Login successful", ""))
	q.Notify(Success("second", ""))
	assert.Equal(t, 2, q.Len())

	got := q.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "Login successful", got[0].Title)
	assert.Empty(t, q.Drain())
}

func TestFlash_FallsBackToEmit(t *testing.T) {
	rec := NewRecorder()
	ctx := WithNotifier(context.Background(), rec)

	Flash(ctx, Success("now", ""))
	assert.Len(t, rec.Notifications(), 1)

	q := NewQueue()
	Flash(WithFlash(ctx, q), Success("later", ""))
	assert.Len(t, rec.Notifications(), 1)
	assert.Equal(t, 1, q.Len())
}

func sessionFromHeader(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(testSessionKey{}).(string)
	return id, ok
}

type testSessionKey struct{}

func TestMiddlewareAndDrainHandler(t *testing.T) {
	flash := session.NewRegistry(time.Hour, NewQueue)

	mw := Middleware(flash, sessionFromHeader)
	withSession := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), testSessionKey{}, r.Header.Get("X-Session"))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	login := withSession(mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Flash(r.Context(), Success("Login successful", ""))
		Emit(r.Context(), Success("inline", ""))
		Respond(w, r, http.StatusOK, map[string]string{"ok": "yes"})
	})))
	drain := withSession(mw(NewHandler().Routes()))

	// First request queues a flash for session s1 and carries one inline note.
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("X-Session", "s1")
	rec := httptest.NewRecorder()
	login.ServeHTTP(rec, req)

	var body struct {
		Success       bool           `json:"success"`
		Notifications []Notification `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Notifications, 1)
	assert.Equal(t, "inline", body.Notifications[0].Title)

	// Another session sees nothing.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Session", "s2")
	rec = httptest.NewRecorder()
	drain.ServeHTTP(rec, req)
	var drained struct {
		Data []Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &drained))
	assert.Empty(t, drained.Data)

	// The owning session gets it exactly once.
	for i, want := range []int{1, 0} {
		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Session", "s1")
		rec = httptest.NewRecorder()
		drain.ServeHTTP(rec, req)
		drained.Data = nil
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &drained))
		assert.Len(t, drained.Data, want, "drain #%d", i+1)
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"remote conflict", api.Conflict("duplicate"), http.StatusConflict, "CONFLICT", "duplicate"},
		{"self trade", api.SelfTrade(""), http.StatusTeapot, "SELF_TRADE", "fallback"},
		{"transport", api.Other(0, "", errors.New("refused")), http.StatusBadGateway, "OTHER", "fallback"},
		{"local", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR", "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			RespondError(rec, req, tt.err, "fallback")

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body struct {
				Success bool `json:"success"`
				Error   struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantMsg, body.Error.Message)
		})
	}
}
