package plant

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/plantswap/internal/apitest"
	"github.com/fkhayef/plantswap/internal/notification"
	"github.com/fkhayef/plantswap/internal/session"
	"github.com/fkhayef/plantswap/internal/user"
	"github.com/fkhayef/plantswap/pkg/middleware"
)

type envelope struct {
	Success       bool                        `json:"success"`
	Data          json.RawMessage             `json:"data"`
	Notifications []notification.Notification `json:"notifications"`
}

type client struct {
	t      *testing.T
	router http.Handler
	sid    *http.Cookie
	token  *http.Cookie
}

func newClient(t *testing.T, srv *apitest.Server, u *apitest.User) *client {
	t.Helper()
	apiClient := srv.Client()
	repo := NewRepository(apiClient)
	users := user.NewService(user.NewRepository(apiClient))
	h := NewHandler(
		NewService(repo, nil),
		NewDirectoryLoader(repo, users, 2, nil),
		session.NewRegistry(time.Hour, NewCatalog),
	)

	stack := middleware.Session(middleware.SessionOptions{CookieName: "sid"})(
		middleware.Credential("access_token")(
			notification.Middleware(nil, nil)(h.Routes())))

	c := &client{t: t, router: stack}
	if u != nil {
		c.token = &http.Cookie{Name: "access_token", Value: srv.Login(u)}
	}
	return c
}

func (c *client) send(req *http.Request) (int, envelope) {
	c.t.Helper()
	if c.token != nil {
		req.AddCookie(c.token)
	}
	if c.sid != nil {
		req.AddCookie(c.sid)
	}

	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "sid" {
			c.sid = cookie
		}
	}

	var env envelope
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (c *client) get(path string) (int, envelope) {
	return c.send(httptest.NewRequest(http.MethodGet, path, nil))
}

func multipartBody(t *testing.T, fields map[string][]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, values := range fields {
		for _, v := range values {
			require.NoError(t, w.WriteField(name, v))
		}
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestHandler_DirectoryAndCachedSnapshot(t *testing.T) {
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	ada := srv.AddUser("ada@example.com", "Ada", "password123")
	bob := srv.AddUser("bob@example.com", "", "password123")
	srv.AddPlant(ada.ID, "Fern")
	srv.AddPlant(bob.ID, "Cactus")

	c := newClient(t, srv, nil)

	code, env := c.get("/?cached=true")
	require.Equal(t, http.StatusOK, code)
	var cached struct {
		Plants  []DirectoryEntry `json:"plants"`
		Loading bool             `json:"loading"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cached))
	assert.Empty(t, cached.Plants, "nothing loaded yet")
	assert.False(t, cached.Loading)

	code, env = c.get("/")
	require.Equal(t, http.StatusOK, code)
	var dir DirectoryResponse
	require.NoError(t, json.Unmarshal(env.Data, &dir))
	require.Len(t, dir.Plants, 2)
	assert.Equal(t, "Ada", dir.Plants[0].OwnerName)
	assert.Equal(t, "bob@example.com", dir.Plants[1].OwnerName)

	_, env = c.get("/?cached=true")
	require.NoError(t, json.Unmarshal(env.Data, &cached))
	assert.Len(t, cached.Plants, 2)
}

func TestHandler_DirectoryFailure(t *testing.T) {
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	srv.Fail("GET /plants/", http.StatusServiceUnavailable)

	code, env := newClient(t, srv, nil).get("/")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, env.Success)
	require.Len(t, env.Notifications, 1)
	assert.Equal(t, "Could not fetch plants.", env.Notifications[0].Description)
}

func TestHandler_CreateListOwnDelete(t *testing.T) {
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	ada := srv.AddUser("ada@example.com", "Ada", "password123")
	c := newClient(t, srv, ada)

	body, contentType := multipartBody(t, map[string][]string{
		"name": {"  Monstera "},
		"city": {"Lyon"},
		"tags": {"green, big", "indoor"},
	})
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	code, env := c.send(req)
	require.Equal(t, http.StatusCreated, code)

	var created Plant
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Monstera", created.Name)
	assert.Equal(t, []string{"green", "big", "indoor"}, created.Tags)
	require.Len(t, env.Notifications, 1)
	assert.Equal(t, `Plant "Monstera" has been successfully created`, env.Notifications[0].Description)

	code, env = c.get("/own")
	require.Equal(t, http.StatusOK, code)
	var own []Plant
	require.NoError(t, json.Unmarshal(env.Data, &own))
	require.Len(t, own, 1)
	assert.Equal(t, created.ID, own[0].ID)

	code, env = c.send(httptest.NewRequest(http.MethodDelete, "/"+created.ID.String(), nil))
	require.Equal(t, http.StatusOK, code)
	require.Len(t, env.Notifications, 1)
	assert.Equal(t, "Plant deleted", env.Notifications[0].Title)
}

func TestHandler_CreateWithoutNameIsBadRequest(t *testing.T) {
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	ada := srv.AddUser("ada@example.com", "Ada", "password123")

	body, contentType := multipartBody(t, map[string][]string{"name": {" "}})
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	code, env := newClient(t, srv, ada).send(req)

	assert.Equal(t, http.StatusBadRequest, code)
	require.Len(t, env.Notifications, 1)
	assert.Zero(t, srv.Hits("POST /plants/create"))
}

func TestHandler_OwnerRoutesRequireCredential(t *testing.T) {
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	c := newClient(t, srv, nil)

	body, contentType := multipartBody(t, map[string][]string{"name": {"Fern"}})
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	code, env := c.send(req)
	assert.Equal(t, http.StatusUnauthorized, code)
	require.Len(t, env.Notifications, 1)
	assert.Equal(t, notification.TitleUnauthorized, env.Notifications[0].Title)
	assert.Zero(t, srv.Hits("POST /plants/create"))

	code, _ = c.get("/own")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestHandler_InvalidID(t *testing.T) {
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	code, env := newClient(t, srv, nil).get("/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{}, parseTags(nil))
	assert.Equal(t, []string{"a", "b", "c"}, parseTags([]string{"a, b", " ", "c,"}))
}
