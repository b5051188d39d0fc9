package apitest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if s.enter(w, "POST /login/token", "") {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid form")
		return
	}
	email, password := r.PostForm.Get("username"), r.PostForm.Get("password")

	s.mu.Lock()
	var found *User
	for _, u := range s.users {
		if u.Email == email && u.Password == password {
			found = u
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		writeDetail(w, http.StatusBadRequest, "Incorrect email or password")
		return
	}

	token := s.Login(found)
	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: token, HttpOnly: true, MaxAge: 3600, Path: "/"})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful"})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if s.enter(w, "POST /logout", "") {
		return
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		s.mu.Lock()
		delete(s.sessions, cookie.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", MaxAge: -1, Path: "/"})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	if s.enter(w, "POST /users/signup", "") {
		return
	}
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	s.mu.Lock()
	for _, u := range s.users {
		if u.Email == in.Email {
			s.mu.Unlock()
			writeDetail(w, http.StatusBadRequest, "The user with this email already exists in the system.")
			return
		}
	}
	s.mu.Unlock()

	u := s.AddUser(in.Email, in.FullName, in.Password)
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	if s.enter(w, "GET /users/me/", "") {
		return
	}
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	if s.enter(w, "GET /users/{id}", "GET /users/"+chi.URLParam(r, "id")) {
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	u, found := s.users[id]
	s.mu.Unlock()
	if !found {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) listPlants(w http.ResponseWriter, r *http.Request) {
	if s.enter(w, "GET /plants/", "") {
		return
	}
	s.mu.Lock()
	out := make([]Plant, len(s.plants))
	for i, p := range s.plants {
		out[i] = *p
	}
	s.mu.Unlock()
	writeList(w, out)
}

func (s *Server) listOwnPlants(w http.ResponseWriter, r *http.Request) {
	if s.enter(w, "GET /plants/own", "") {
		return
	}
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	out := []Plant{}
	for _, p := range s.plants {
		if p.OwnerID == u.ID {
			out = append(out, *p)
		}
	}
	s.mu.Unlock()
	writeList(w, out)
}

func (s *Server) getPlant(w http.ResponseWriter, r *http.Request) {
	if s.enter(w, "GET /plants/{id}", "GET /plants/"+chi.URLParam(r, "id")) {
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	p, found := s.findPlant(id)
	if !found {
		writeDetail(w, http.StatusNotFound, "No plant with the given id exists.")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createPlant(w http.ResponseWriter, r *http.Request) {
	if s.enter(w, "POST /plants/create", "") {
		return
	}
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid form")
		return
	}
	if _, _, err := r.FormFile("image"); err == nil && s.ImageUploadDisabled {
		writeDetail(w, http.StatusInternalServerError, "Image upload is not configured for the app.")
		return
	}

	tags := []string{}
	for _, t := range r.MultipartForm.Value["tags"] {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	p := s.AddPlant(u.ID, r.FormValue("name"))
	s.mu.Lock()
	p.Description = r.FormValue("description")
	p.City = r.FormValue("city")
	p.Tags = tags
	out := *p
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deletePlant(w http.ResponseWriter, r *http.Request) {
	if s.enter(w, "POST /plants/{id}", "POST /plants/"+chi.URLParam(r, "id")) {
		return
	}
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.plants {
		if p.ID != id {
			continue
		}
		if p.OwnerID != u.ID && !u.IsSuperuser {
			writeDetail(w, http.StatusUnauthorized, "You are not the owner of the plant.")
			return
		}
		s.plants = append(s.plants[:i], s.plants[i+1:]...)
		writeJSON(w, http.StatusOK, p)
		return
	}
	writeDetail(w, http.StatusNotFound, "No plant with the given id exists.")
}

func (s *Server) listTrades(scope string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.enter(w, "GET /requests/"+scope, "") {
			return
		}
		u, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		s.mu.Lock()
		out := []TradeRequest{}
		for _, tr := range s.trades {
			outgoing := tr.OutgoingUserID == u.ID
			incoming := tr.IncomingUserID == u.ID
			if (scope == "all" && (outgoing || incoming)) ||
				(scope == "outgoing" && outgoing) ||
				(scope == "incoming" && incoming) {
				out = append(out, *tr)
			}
		}
		s.mu.Unlock()
		writeList(w, out)
	}
}

func (s *Server) getTrade(w http.ResponseWriter, r *http.Request) {
	if s.enter(w, "GET /requests/{out}/{in}", "") {
		return
	}
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	key, ok := parseKey(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tr := range s.trades {
		if (tradeKey{tr.OutgoingPlantID, tr.IncomingPlantID}) == key &&
			(tr.OutgoingUserID == u.ID || tr.IncomingUserID == u.ID) {
			writeJSON(w, http.StatusOK, tr)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "No trade request with the given plant ids exists.")
}

func (s *Server) createTrade(w http.ResponseWriter, r *http.Request) {
	if s.enter(w, "POST /requests/create/{out}/{in}", "") {
		return
	}
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	key, ok := parseKey(w, r)
	if !ok {
		return
	}

	outgoing, found := s.findPlant(key.out)
	if !found || outgoing.OwnerID != u.ID {
		writeDetail(w, http.StatusUnauthorized,
			"You cannot trade other people's plants (you do not own the plant you want to offer).")
		return
	}
	incoming, found := s.findPlant(key.in)
	if !found {
		writeDetail(w, http.StatusNotFound, "The plant you want does not exist.")
		return
	}
	if incoming.OwnerID == u.ID {
		writeDetail(w, http.StatusTeapot, "You cannot trade with yourself.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tr := range s.trades {
		if (tradeKey{tr.OutgoingPlantID, tr.IncomingPlantID}) == key {
			writeDetail(w, http.StatusConflict, "You already have a trade request for this plant.")
			return
		}
	}
	tr := &TradeRequest{
		OutgoingPlantID: key.out,
		IncomingPlantID: key.in,
		OutgoingUserID:  u.ID,
		IncomingUserID:  incoming.OwnerID,
		Message:         r.URL.Query().Get("message"),
	}
	s.trades = append(s.trades, tr)
	writeJSON(w, http.StatusOK, tr)
}

func (s *Server) setTradeStatus(status int) http.HandlerFunc {
	label := "POST /requests/accept/{out}/{in}"
	if status == 2 {
		label = "POST /requests/reject/{out}/{in}"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if s.enter(w, label, "") {
			return
		}
		u, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		key, ok := parseKey(w, r)
		if !ok {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, tr := range s.trades {
			if (tradeKey{tr.OutgoingPlantID, tr.IncomingPlantID}) != key {
				continue
			}
			if tr.IncomingUserID != u.ID {
				writeDetail(w, http.StatusForbidden, "Only the receiver can answer a trade request.")
				return
			}
			tr.Status = status
			writeJSON(w, http.StatusOK, tr)
			return
		}
		writeDetail(w, http.StatusNotFound, "No trade request with the given plant ids exists.")
	}
}

func (s *Server) deleteTrade(w http.ResponseWriter, r *http.Request) {
	if s.enter(w, "POST /requests/delete/{out}/{in}", "") {
		return
	}
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	key, ok := parseKey(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tr := range s.trades {
		if (tradeKey{tr.OutgoingPlantID, tr.IncomingPlantID}) == key &&
			(tr.OutgoingUserID == u.ID || tr.IncomingUserID == u.ID) {
			s.trades = append(s.trades[:i], s.trades[i+1:]...)
			writeJSON(w, http.StatusOK, tr)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "No trade request with the given plant ids exists.")
}

func (s *Server) findPlant(id uuid.UUID) (Plant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.plants {
		if p.ID == id {
			return *p, true
		}
	}
	return Plant{}, false
}

func parseKey(w http.ResponseWriter, r *http.Request) (tradeKey, bool) {
	out, ok := parseID(w, r, "out")
	if !ok {
		return tradeKey{}, false
	}
	in, ok := parseID(w, r, "in")
	if !ok {
		return tradeKey{}, false
	}
	return tradeKey{out, in}, true
}
