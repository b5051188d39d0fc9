package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/plantswap/internal/api"
	"github.com/fkhayef/plantswap/internal/notification"
)

func TestSession_IssuesNewID(t *testing.T) {
	var seen string
	h := Session(SessionOptions{CookieName: "sid", TTL: time.Hour})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetSessionID(r.Context())
		require.True(t, ok)
		seen = id
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, seen, cookies[0].Value)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	assert.True(t, cookies[0].HttpOnly)
}

func TestSession_KeepsValidID(t *testing.T) {
	existing := uuid.NewString()
	var seen string
	h := Session(SessionOptions{CookieName: "sid"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetSessionID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: existing})
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, existing, seen)
}

func TestSession_ReplacesForgedID(t *testing.T) {
	var seen string
	h := Session(SessionOptions{CookieName: "sid"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetSessionID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "../../etc"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.NotEqual(t, "../../etc", seen)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
}

func TestCredential(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		header string
		want   string
		wantOK bool
	}{
		{name: "cookie", cookie: "tok", want: "tok", wantOK: true},
		{name: "bearer header", header: "Bearer hdr", want: "hdr", wantOK: true},
		{name: "cookie wins", cookie: "tok", header: "Bearer hdr", want: "tok", wantOK: true},
		{name: "malformed header", header: "Basic abc"},
		{name: "nothing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			var ok bool
			h := Credential("access_token")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, ok = api.CredentialFrom(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequireCredential(t *testing.T) {
	called := false
	h := Credential("access_token")(notification.Middleware(nil, nil)(
		RequireCredential(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)

	var body struct {
		Notifications []notification.Notification `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Notifications, 1)
	assert.Equal(t, notification.TitleUnauthorized, body.Notifications[0].Title)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "tok"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestStateKey(t *testing.T) {
	_, ok := StateKey(context.Background())
	assert.False(t, ok, "no session, no state")

	sid := uuid.NewString()
	ctx := context.WithValue(context.Background(), SessionIDKey, sid)

	anon, ok := StateKey(ctx)
	require.True(t, ok)
	assert.Equal(t, sid, anon)

	alice, ok := StateKey(api.WithCredential(ctx, "alice-token"))
	require.True(t, ok)
	again, _ := StateKey(api.WithCredential(ctx, "alice-token"))
	carol, _ := StateKey(api.WithCredential(ctx, "carol-token"))

	assert.Equal(t, alice, again)
	assert.NotEqual(t, alice, carol, "another account on the same browser gets its own state")
	assert.NotEqual(t, anon, alice)
	assert.NotContains(t, alice, "alice-token")
}
