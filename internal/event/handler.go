package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/averma/campus-events/internal/account"
	"github.com/averma/campus-events/pkg/middleware"
	"github.com/averma/campus-events/pkg/response"
)

// Handler handles HTTP requests for event registry operations
type Handler struct {
	service *Service
}

// NewHandler creates a new event handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for event endpoints. Listing and detail are
// public; creation and the approval workflow are role-gated.
func (h *Handler) Routes(authn func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/category/{category}", h.ByCategory)
	r.Get("/search/{keyword}", h.Search)
	r.Get("/{id}", h.GetByID)

	r.Group(func(r chi.Router) {
		r.Use(authn)
		r.With(middleware.RequireRole(account.RoleOrganizer, account.RoleAdmin)).Post("/", h.Create)
		r.With(middleware.RequireRole(account.RoleOrganizer, account.RoleAdmin)).Put("/{id}", h.Update)
		r.With(middleware.RequireRole(account.RoleOrganizer, account.RoleAdmin)).Get("/organizer/my-events", h.MyEvents)
		r.With(middleware.RequireRole(account.RoleAdmin)).Get("/admin/all", h.ListAll)
		r.With(middleware.RequireRole(account.RoleAdmin)).Put("/{id}/approve", h.Approve)
		r.With(middleware.RequireRole(account.RoleAdmin)).Put("/{id}/reject", h.Reject)
	})

	return r
}

// List handles GET /events
// @Summary      List events
// @Description  Approved events with optional status and category filters
// @Tags         events
// @Produce      json
// @Param        status query string false "Derived status filter"
// @Param        category query string false "Category filter"
// @Param        page query int false "Page"
// @Param        limit query int false "Page size"
// @Success      200 {object} response.APIResponse{data=[]EventResponse}
// @Router       /events [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	status := r.URL.Query().Get("status")
	category := r.URL.Query().Get("category")

	events, total, err := h.service.ListPublic(r.Context(), status, category, page, limit)
	if err != nil {
		response.InternalError(w, "Failed to list events")
		return
	}

	response.JSONWithMeta(w, http.StatusOK, events, response.NewMeta(page, limit, total))
}

// ByCategory handles GET /events/category/{category}
// @Summary      List events by category
// @Tags         events
// @Produce      json
// @Param        category path string true "Category"
// @Success      200 {object} response.APIResponse{data=[]EventResponse}
// @Router       /events/category/{category} [get]
func (h *Handler) ByCategory(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	category := chi.URLParam(r, "category")

	events, total, err := h.service.ListPublic(r.Context(), "", category, page, limit)
	if err != nil {
		response.InternalError(w, "Failed to list events")
		return
	}

	response.JSONWithMeta(w, http.StatusOK, events, response.NewMeta(page, limit, total))
}

// Search handles GET /events/search/{keyword}
// @Summary      Search events
// @Description  Case-insensitive keyword match over title, description and tags
// @Tags         events
// @Produce      json
// @Param        keyword path string true "Keyword"
// @Success      200 {object} response.APIResponse{data=[]EventResponse}
// @Router       /events/search/{keyword} [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	keyword := chi.URLParam(r, "keyword")

	events, total, err := h.service.Search(r.Context(), keyword, page, limit)
	if err != nil {
		response.InternalError(w, "Failed to search events")
		return
	}

	response.JSONWithMeta(w, http.StatusOK, events, response.NewMeta(page, limit, total))
}

// GetByID handles GET /events/{id}
// @Summary      Get event details
// @Tags         events
// @Produce      json
// @Param        id path string true "Event ID"
// @Success      200 {object} response.APIResponse{data=EventResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	event, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get event")
		return
	}

	response.JSON(w, http.StatusOK, event)
}

// Create handles POST /events
// @Summary      Create an event
// @Description  New events start pending admin approval
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateEventRequest true "Event"
// @Success      201 {object} response.APIResponse{data=EventResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /events [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	event, err := h.service.Create(r.Context(), principal.ID, &req)
	if err != nil {
		response.InternalError(w, "Failed to create event")
		return
	}

	response.JSONWithMessage(w, http.StatusCreated, "Event created and pending approval", event.ToResponse(time.Now().UTC()))
}

// Update handles PUT /events/{id}
// @Summary      Update an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Event ID"
// @Param        request body UpdateEventRequest true "Changes"
// @Success      200 {object} response.APIResponse{data=EventResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	var req UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	event, err := h.service.Update(r.Context(), id, principal.ID, &req)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotOrganizer) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update event")
		return
	}

	response.JSONWithMessage(w, http.StatusOK, "Event updated successfully", event.ToResponse(time.Now().UTC()))
}

// MyEvents handles GET /events/organizer/my-events
// @Summary      List the caller's events
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]EventResponse}
// @Router       /events/organizer/my-events [get]
func (h *Handler) MyEvents(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	events, err := h.service.ByOrganizer(r.Context(), principal.ID)
	if err != nil {
		response.InternalError(w, "Failed to list events")
		return
	}

	response.JSON(w, http.StatusOK, events)
}

// ListAll handles GET /events/admin/all
// @Summary      List every event, any approval state
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]EventResponse}
// @Router       /events/admin/all [get]
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)

	events, total, err := h.service.ListAll(r.Context(), page, limit)
	if err != nil {
		response.InternalError(w, "Failed to list events")
		return
	}

	response.JSONWithMeta(w, http.StatusOK, events, response.NewMeta(page, limit, total))
}

// Approve handles PUT /events/{id}/approve
// @Summary      Approve an event
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Event ID"
// @Success      200 {object} response.APIResponse{data=EventResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id}/approve [put]
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	event, err := h.service.Approve(r.Context(), id, principal.ID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to approve event")
		return
	}

	response.JSONWithMessage(w, http.StatusOK, "Event approved successfully", event.ToResponse(time.Now().UTC()))
}

// Reject handles PUT /events/{id}/reject
// @Summary      Reject an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Event ID"
// @Param        request body RejectEventRequest true "Reason"
// @Success      200 {object} response.APIResponse{data=EventResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id}/reject [put]
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	var req RejectEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	event, err := h.service.Reject(r.Context(), id, principal.ID, req.Reason)
	if err != nil {
		if errors.Is(err, ErrReasonRequired) {
			response.BadRequest(w, err.Error())
			return
		}
		if errors.Is(err, ErrEventNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to reject event")
		return
	}

	response.JSONWithMessage(w, http.StatusOK, "Event rejected successfully", event.ToResponse(time.Now().UTC()))
}

func pagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}
