package trade

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/plantswap/internal/notification"
	"github.com/fkhayef/plantswap/internal/session"
	"github.com/fkhayef/plantswap/pkg/middleware"
	"github.com/fkhayef/plantswap/pkg/response"
)

// Handler handles HTTP requests for trade request operations
type Handler struct {
	service    *Service
	aggregator *Aggregator
	boards     *session.Registry[*Board]
}

// NewHandler creates a new trade handler
func NewHandler(service *Service, aggregator *Aggregator, boards *session.Registry[*Board]) *Handler {
	return &Handler{service: service, aggregator: aggregator, boards: boards}
}

// Routes returns the router for trade request endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequireCredential)

	r.Get("/", h.List)
	r.Route("/{outgoing}/{incoming}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/", h.Create)
		r.Delete("/", h.Delete)
		r.Post("/accept", h.Accept)
		r.Post("/decline", h.Decline)
	})

	return r
}

// List handles GET /trades
// @Summary      List trade requests
// @Description  List the caller's trade requests with both plants attached
// @Tags         trades
// @Produce      json
// @Param        scope query string false "all, incoming or outgoing" default(all)
// @Success      200 {object} response.APIResponse{data=[]Enriched}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /trades [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	items, err := h.aggregator.List(r.Context(), scope)
	if err != nil {
		notification.RespondError(w, r, err, "Failed to list trade requests")
		return
	}

	if b := h.board(r); b != nil {
		b.Replace(items)
	}
	notification.Respond(w, r, http.StatusOK, items)
}

// Get handles GET /trades/{outgoing}/{incoming}
// @Summary      Get a trade request
// @Tags         trades
// @Produce      json
// @Param        outgoing path string true "Offered plant ID" format(uuid)
// @Param        incoming path string true "Wanted plant ID" format(uuid)
// @Success      200 {object} response.APIResponse{data=Enriched}
// @Failure      404 {object} response.APIResponse
// @Router       /trades/{outgoing}/{incoming} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	key, ok := parseKey(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Get(r.Context(), key)
	if err != nil {
		notification.RespondError(w, r, err, "Failed to get trade request")
		return
	}

	notification.Respond(w, r, http.StatusOK, Enrich(*rec, nil))
}

// Create handles POST /trades/{outgoing}/{incoming}
// @Summary      Offer a trade
// @Description  Offer the outgoing plant in exchange for the incoming one
// @Tags         trades
// @Accept       json
// @Produce      json
// @Param        outgoing path string true "Offered plant ID" format(uuid)
// @Param        incoming path string true "Wanted plant ID" format(uuid)
// @Param        request body CreateTradeRequest false "Optional message"
// @Success      201 {object} response.APIResponse{data=Enriched}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Failure      418 {object} response.APIResponse
// @Router       /trades/{outgoing}/{incoming} [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	key, ok := parseKey(w, r)
	if !ok {
		return
	}

	var req CreateTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body")
		return
	}

	rec, err := h.service.Create(r.Context(), key, req.Message, nil)
	if err != nil {
		if errors.Is(err, ErrSamePlant) {
			notification.RespondStatus(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error())
			return
		}
		notification.RespondError(w, r, err, "Failed to create trade request")
		return
	}

	notification.Respond(w, r, http.StatusCreated, Enrich(*rec, nil))
}

// Accept handles POST /trades/{outgoing}/{incoming}/accept
// @Summary      Accept a trade request
// @Tags         trades
// @Produce      json
// @Param        outgoing path string true "Offered plant ID" format(uuid)
// @Param        incoming path string true "Wanted plant ID" format(uuid)
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /trades/{outgoing}/{incoming}/accept [post]
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	h.answer(w, r, StatusAccepted, h.service.Accept)
}

// Decline handles POST /trades/{outgoing}/{incoming}/decline
// @Summary      Decline a trade request
// @Tags         trades
// @Produce      json
// @Param        outgoing path string true "Offered plant ID" format(uuid)
// @Param        incoming path string true "Wanted plant ID" format(uuid)
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /trades/{outgoing}/{incoming}/decline [post]
func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	h.answer(w, r, StatusDeclined, h.service.Decline)
}

// Delete handles DELETE /trades/{outgoing}/{incoming}
// @Summary      Delete a trade request
// @Tags         trades
// @Produce      json
// @Param        outgoing path string true "Offered plant ID" format(uuid)
// @Param        incoming path string true "Wanted plant ID" format(uuid)
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /trades/{outgoing}/{incoming} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	key, ok := parseKey(w, r)
	if !ok {
		return
	}

	board := h.board(r)
	err := h.service.Delete(r.Context(), key, func() {
		if board != nil {
			board.Remove(key)
		}
	})
	if err != nil {
		notification.RespondError(w, r, err, "Failed to delete trade request")
		return
	}

	notification.Respond(w, r, http.StatusOK, h.snapshot(board))
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request, to Status, action func(ctx context.Context, key Key, onSuccess func()) error) {
	key, ok := parseKey(w, r)
	if !ok {
		return
	}

	board := h.board(r)
	err := action(r.Context(), key, func() {
		if board == nil {
			return
		}
		// A stale board catches up on the next list.
		if err := board.Transition(key, to); err != nil {
			h.service.logger.Debug("board not updated", "key", key.String(), "error", err)
		}
	})
	if err != nil {
		notification.RespondError(w, r, err, "Failed to answer trade request")
		return
	}

	notification.Respond(w, r, http.StatusOK, h.snapshot(board))
}

func (h *Handler) board(r *http.Request) *Board {
	if h.boards == nil {
		return nil
	}
	key, ok := middleware.StateKey(r.Context())
	if !ok {
		return nil
	}
	return h.boards.Get(key)
}

func (h *Handler) snapshot(b *Board) []Enriched {
	if b == nil {
		return []Enriched{}
	}
	return b.Snapshot()
}

func parseKey(w http.ResponseWriter, r *http.Request) (Key, bool) {
	key, err := ParseKey(chi.URLParam(r, "outgoing"), chi.URLParam(r, "incoming"))
	if err != nil {
		response.BadRequest(w, err.Error())
		return Key{}, false
	}
	return key, true
}
