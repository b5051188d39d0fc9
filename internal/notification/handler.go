package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/plantswap/pkg/response"
)

// Handler handles HTTP requests for notification operations
type Handler struct{}

// NewHandler creates a new notification handler
func NewHandler() *Handler {
	return &Handler{}
}

// Routes returns the router for notification endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Drain)

	return r
}

// Drain handles GET /notifications
// @Summary      Drain pending notifications
// @Description  Return notifications queued for this session by earlier requests and clear them
// @Tags         notifications
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]Notification}
// @Router       /notifications [get]
func (h *Handler) Drain(w http.ResponseWriter, r *http.Request) {
	q, ok := FlashFrom(r.Context())
	if !ok {
		response.JSON(w, http.StatusOK, []Notification{})
		return
	}

	response.JSON(w, http.StatusOK, q.Drain())
}
