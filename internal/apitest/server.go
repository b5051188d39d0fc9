// Package apitest runs an in-memory stand-in for the marketplace API so
// client-side packages can be tested against real HTTP exchanges.
package apitest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fkhayef/plantswap/internal/api"
)

// CookieName is the session cookie the fake issues on login.
const CookieName = "access_token"

type Plant struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	City        string    `json:"city"`
	Tags        []string  `json:"tags"`
	ImageURL    string    `json:"image_url"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	Password    string    `json:"-"`
}

type TradeRequest struct {
	OutgoingPlantID uuid.UUID `json:"outgoing_plant_id"`
	IncomingPlantID uuid.UUID `json:"incoming_plant_id"`
	OutgoingUserID  uuid.UUID `json:"outgoing_user_id"`
	IncomingUserID  uuid.UUID `json:"incoming_user_id"`
	Message         string    `json:"message"`
	Status          int       `json:"status"`
}

type tradeKey struct{ out, in uuid.UUID }

// Server is the fake API. Exported fields may be set before requests are
// made; use the methods once requests are in flight.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	plants   []*Plant
	users    map[uuid.UUID]*User
	trades   []*TradeRequest
	sessions map[string]uuid.UUID
	hits     map[string]int
	fail     map[string]int
	// ImageUploadDisabled makes plant creation with an image answer 500.
	ImageUploadDisabled bool
}

// NewServer starts a fake API. Call Close when done.
func NewServer() *Server {
	s := &Server{
		users:    make(map[uuid.UUID]*User),
		sessions: make(map[string]uuid.UUID),
		hits:     make(map[string]int),
		fail:     make(map[string]int),
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/login/token", s.login)
	r.Post("/logout", s.logout)

	r.Post("/users/signup", s.signup)
	r.Get("/users/me/", s.me)
	r.Get("/users/{id}", s.getUser)

	r.Get("/plants/", s.listPlants)
	r.Get("/plants/own", s.listOwnPlants)
	r.Post("/plants/create", s.createPlant)
	r.Get("/plants/{id}", s.getPlant)
	r.Post("/plants/{id}", s.deletePlant)

	r.Get("/requests/all", s.listTrades("all"))
	r.Get("/requests/incoming", s.listTrades("incoming"))
	r.Get("/requests/outgoing", s.listTrades("outgoing"))
	r.Get("/requests/{out}/{in}", s.getTrade)
	r.Post("/requests/create/{out}/{in}", s.createTrade)
	r.Post("/requests/accept/{out}/{in}", s.setTradeStatus(1))
	r.Post("/requests/reject/{out}/{in}", s.setTradeStatus(2))
	r.Post("/requests/delete/{out}/{in}", s.deleteTrade)

	return r
}

// AddUser registers a user and returns it.
func (s *Server) AddUser(email, fullName, password string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &User{ID: uuid.New(), Email: email, FullName: fullName, IsActive: true, Password: password}
	s.users[u.ID] = u
	return u
}

// AddPlant stores a plant owned by ownerID and returns it.
func (s *Server) AddPlant(ownerID uuid.UUID, name string) *Plant {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &Plant{
		ID:        uuid.New(),
		Name:      name,
		Tags:      []string{},
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	s.plants = append(s.plants, p)
	return p
}

// AddTrade stores a trade request between two existing plants.
func (s *Server) AddTrade(out, in *Plant, status int) *TradeRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr := &TradeRequest{
		OutgoingPlantID: out.ID,
		IncomingPlantID: in.ID,
		OutgoingUserID:  out.OwnerID,
		IncomingUserID:  in.OwnerID,
		Status:          status,
	}
	s.trades = append(s.trades, tr)
	return tr
}

// Login creates a session for u and returns its token.
func (s *Server) Login(u *User) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.sessions[token] = u.ID
	return token
}

// Client returns an API client pointed at the fake.
func (s *Server) Client() *api.Client {
	c, err := api.NewClient(api.Options{BaseURL: s.URL, Timeout: 5 * time.Second})
	if err != nil {
		panic(err)
	}
	return c
}

// As logs u in and returns ctx carrying the new session credential.
func (s *Server) As(ctx context.Context, u *User) context.Context {
	return api.WithCredential(ctx, s.Login(u))
}

// Fail makes every request whose route label matches answer status.
// Labels look like "GET /plants/{id}" or, for one resource,
// "GET /plants/<uuid>".
func (s *Server) Fail(label string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[label] = status
}

// Hits returns how many requests reached the route label.
func (s *Server) Hits(label string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[label]
}

// Trades returns a copy of the stored trade requests.
func (s *Server) Trades() []TradeRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TradeRequest, len(s.trades))
	for i, tr := range s.trades {
		out[i] = *tr
	}
	return out
}

// enter records the hit and reports an injected failure, if any. Both the
// route label and the concrete path label are checked.
func (s *Server) enter(w http.ResponseWriter, label, concrete string) bool {
	s.mu.Lock()
	s.hits[label]++
	if concrete != "" {
		s.hits[concrete]++
	}
	status, ok := s.fail[label]
	if !ok && concrete != "" {
		status, ok = s.fail[concrete]
	}
	s.mu.Unlock()

	if ok {
		writeDetail(w, status, fmt.Sprintf("injected failure for %s", label))
		return true
	}
	return false
}

// currentUser resolves the session cookie; it writes 401 when absent.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (*User, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.sessions[cookie.Value]
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return nil, false
	}
	return s.users[id], true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeList[T any](w http.ResponseWriter, items []T) {
	writeJSON(w, http.StatusOK, map[string]any{"data": items, "count": len(items)})
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid uuid")
		return uuid.Nil, false
	}
	return id, true
}
