package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/plantswap/internal/notification"
	"github.com/fkhayef/plantswap/pkg/middleware"
	"github.com/fkhayef/plantswap/pkg/response"
)

// Forgetter drops state kept for one account, such as a session.Registry.
type Forgetter interface {
	Delete(key string)
}

// Handler handles HTTP requests for session operations
type Handler struct {
	service      *Service
	cookieName   string
	cookieSecure bool
	state        []Forgetter
}

// NewHandler creates a new auth handler. cookieName is the API session
// cookie relayed to the browser. state is cleared for the outgoing
// account whenever the browser logs in or out.
func NewHandler(service *Service, cookieName string, cookieSecure bool, state ...Forgetter) *Handler {
	return &Handler{service: service, cookieName: cookieName, cookieSecure: cookieSecure, state: state}
}

// Routes returns the router for session endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Status)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Post("/register", h.Register)

	return r
}

// Status handles GET /session
// @Summary      Session status
// @Description  Report whether the caller is logged in and who they are
// @Tags         session
// @Produce      json
// @Success      200 {object} response.APIResponse{data=StatusResponse}
// @Router       /session [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	u, ok := h.service.Status(r.Context())
	resp := StatusResponse{LoggedIn: ok}
	if ok {
		resp.User = u.ToResponse()
	}
	response.JSON(w, http.StatusOK, resp)
}

// Login handles POST /session/login
// @Summary      Log in
// @Description  Log in with email and password. Accepts JSON or a form with username and password fields.
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Router       /session/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLogin(r)
	if err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	token, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrMissingCredentials) || errors.Is(err, ErrLoginRejected) {
			notification.RespondStatus(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error())
			return
		}
		notification.RespondError(w, r, err, "Login failed")
		return
	}

	h.forget(r)
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	notification.Respond(w, r, http.StatusOK, map[string]bool{"logged_in": true})
}

// Logout handles POST /session/logout
// @Summary      Log out
// @Tags         session
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /session/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context()); err != nil {
		notification.RespondError(w, r, err, "Logout failed")
		return
	}

	h.forget(r)
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
	})
	notification.Respond(w, r, http.StatusOK, map[string]bool{"logged_in": false})
}

// Register handles POST /session/register
// @Summary      Register
// @Description  Create a marketplace account
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration form"
// @Success      201 {object} response.APIResponse{data=user.UserResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /session/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	u, err := h.service.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrPasswordMismatch) || errors.Is(err, ErrPasswordLength) {
			notification.RespondStatus(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error())
			return
		}
		notification.RespondError(w, r, err, "Registration failed")
		return
	}

	notification.Respond(w, r, http.StatusCreated, u.ToResponse())
}

// forget drops the state of the account the request was made with. The
// flash queue is keyed on the browser session alone and survives.
func (h *Handler) forget(r *http.Request) {
	key, ok := middleware.StateKey(r.Context())
	if !ok {
		return
	}
	for _, s := range h.state {
		s.Delete(key)
	}
}

func decodeLogin(r *http.Request) (*LoginRequest, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return &LoginRequest{
			Email:    r.PostForm.Get("username"),
			Password: r.PostForm.Get("password"),
		}, nil
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}
