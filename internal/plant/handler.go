package plant

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fkhayef/plantswap/internal/notification"
	"github.com/fkhayef/plantswap/internal/session"
	"github.com/fkhayef/plantswap/pkg/middleware"
	"github.com/fkhayef/plantswap/pkg/response"
)

const maxUploadSize = 10 << 20

// Handler handles HTTP requests for plant operations
type Handler struct {
	service   *Service
	directory *DirectoryLoader
	catalogs  *session.Registry[*Catalog]
}

// NewHandler creates a new plant handler
func NewHandler(service *Service, directory *DirectoryLoader, catalogs *session.Registry[*Catalog]) *Handler {
	return &Handler{service: service, directory: directory, catalogs: catalogs}
}

// Routes returns the router for plant endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Directory)
	r.Get("/{id}", h.GetByID)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireCredential)
		r.Post("/", h.Create)
		r.Get("/own", h.ListOwn)
		r.Delete("/{id}", h.Delete)
	})

	return r
}

// DirectoryStateResponse is the last loaded directory with the loader state
type DirectoryStateResponse struct {
	*DirectoryResponse
	Loading bool `json:"loading"`
}

// Directory handles GET /plants
// @Summary      List all plants
// @Description  Load the public plant list with owner names. cached=true returns the last load without fetching.
// @Tags         plants
// @Produce      json
// @Param        cached query bool false "Return the last completed load"
// @Success      200 {object} response.APIResponse{data=DirectoryResponse}
// @Failure      502 {object} response.APIResponse
// @Router       /plants [get]
func (h *Handler) Directory(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("cached") == "true" {
		response.JSON(w, http.StatusOK, DirectoryStateResponse{
			DirectoryResponse: h.directory.Snapshot().ToResponse(),
			Loading:           h.directory.Loading(),
		})
		return
	}

	dir, err := h.directory.Load(r.Context())
	if err != nil {
		notification.RespondError(w, r, err, "Could not fetch plants.")
		return
	}

	notification.Respond(w, r, http.StatusOK, dir.ToResponse())
}

// ListOwn handles GET /plants/own
// @Summary      List own plants
// @Description  List the logged-in user's plants
// @Tags         plants
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]Plant}
// @Failure      401 {object} response.APIResponse
// @Router       /plants/own [get]
func (h *Handler) ListOwn(w http.ResponseWriter, r *http.Request) {
	plants, err := h.service.ListOwn(r.Context(), h.catalog(r))
	if err != nil {
		notification.RespondError(w, r, err, "Failed to list plants")
		return
	}

	notification.Respond(w, r, http.StatusOK, plants)
}

// GetByID handles GET /plants/{id}
// @Summary      Get plant by ID
// @Tags         plants
// @Produce      json
// @Param        id path string true "Plant ID" format(uuid)
// @Success      200 {object} response.APIResponse{data=Plant}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /plants/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid plant ID")
		return
	}

	p, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		notification.RespondError(w, r, err, "Failed to get plant")
		return
	}

	notification.Respond(w, r, http.StatusOK, p)
}

// Create handles POST /plants
// @Summary      Create a plant
// @Description  Create a listing from a multipart form with name, description, city, tags and an optional image
// @Tags         plants
// @Accept       mpfd
// @Produce      json
// @Param        name formData string true "Plant name"
// @Param        description formData string false "Description"
// @Param        city formData string false "City"
// @Param        tags formData []string false "Tags" collectionFormat(multi)
// @Param        image formData file false "Picture"
// @Success      201 {object} response.APIResponse{data=Plant}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /plants [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	req := &CreatePlantRequest{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		City:        r.FormValue("city"),
		Tags:        parseTags(r.MultipartForm.Value["tags"]),
	}

	if file, hdr, err := r.FormFile("image"); err == nil {
		defer file.Close()
		req.Image = &Image{Filename: hdr.Filename, Content: file}
	}

	p, err := h.service.Create(r.Context(), h.catalog(r), req)
	if err != nil {
		if errors.Is(err, ErrNameRequired) || errors.Is(err, ErrInvalidImage) {
			notification.RespondStatus(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error())
			return
		}
		notification.RespondError(w, r, err, "Failed to create plant")
		return
	}

	notification.Respond(w, r, http.StatusCreated, p)
}

// Delete handles DELETE /plants/{id}
// @Summary      Delete a plant
// @Tags         plants
// @Produce      json
// @Param        id path string true "Plant ID" format(uuid)
// @Success      200 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /plants/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid plant ID")
		return
	}

	if err := h.service.Delete(r.Context(), h.catalog(r), id); err != nil {
		notification.RespondError(w, r, err, "Failed to delete plant")
		return
	}

	notification.Respond(w, r, http.StatusOK, map[string]string{"message": "Plant deleted successfully"})
}

func (h *Handler) catalog(r *http.Request) *Catalog {
	if h.catalogs == nil {
		return nil
	}
	key, ok := middleware.StateKey(r.Context())
	if !ok {
		return nil
	}
	return h.catalogs.Get(key)
}

// parseTags accepts repeated fields as well as comma separated values.
func parseTags(values []string) []string {
	tags := []string{}
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}
