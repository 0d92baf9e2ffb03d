package admin

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

// Handler handles HTTP requests for the admin surface
type Handler struct {
	service *Service
}

// NewHandler creates a new admin handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for admin endpoints. Every route requires the
// admin role.
func (h *Handler) Routes(authn func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authn)
	r.Use(middleware.RequireRole(account.RoleAdmin))

	r.Get("/stats", h.Stats)
	r.Get("/users", h.ListUsers)
	r.Put("/users/{id}/role", h.UpdateUserRole)
	r.Put("/users/{id}/deactivate", h.DeactivateUser)
	r.Put("/events/{id}/suspend", h.SuspendEvent)
	r.Get("/events/{id}/registrations", h.EventRegistrations)
	r.Post("/announcement", h.Announce)
	r.Get("/reports", h.Reports)
	r.Get("/audit-logs", h.AuditTrail)

	return r
}

// Stats handles GET /admin/stats
// @Summary      Admin dashboard statistics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=StatsResponse}
// @Router       /admin/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to assemble statistics")
		return
	}

	response.JSON(w, http.StatusOK, stats)
}

// ListUsers handles GET /admin/users
// @Summary      List accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        role query string false "Role filter"
// @Param        search query string false "Name, email or roll number search"
// @Param        page query int false "Page"
// @Param        limit query int false "Page size"
// @Success      200 {object} response.APIResponse{data=[]account.AccountResponse}
// @Router       /admin/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	role := r.URL.Query().Get("role")
	search := r.URL.Query().Get("search")

	accounts, total, err := h.service.ListUsers(r.Context(), role, search, page, limit)
	if err != nil {
		response.InternalError(w, "Failed to list users")
		return
	}

	out := make([]*account.AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.ToResponse())
	}
	response.JSONWithMeta(w, http.StatusOK, out, response.NewMeta(page, limit, total))
}

// UpdateUserRole handles PUT /admin/users/{id}/role
// @Summary      Change an account's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Account ID"
// @Param        request body UpdateRoleRequest true "New role"
// @Success      200 {object} response.APIResponse{data=account.AccountResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /admin/users/{id}/role [put]
func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	updated, err := h.service.UpdateUserRole(r.Context(), id, req.Role)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update role")
		return
	}

	response.JSONWithMessage(w, http.StatusOK, "User role updated successfully", updated.ToResponse())
}

// DeactivateUser handles PUT /admin/users/{id}/deactivate
// @Summary      Deactivate an account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Account ID"
// @Success      200 {object} response.APIResponse{data=account.AccountResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /admin/users/{id}/deactivate [put]
func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	updated, err := h.service.DeactivateUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to deactivate user")
		return
	}

	response.JSONWithMessage(w, http.StatusOK, "User deactivated successfully", updated.ToResponse())
}

// SuspendEvent handles PUT /admin/events/{id}/suspend
// @Summary      Suspend an event
// @Description  Cancels the event and notifies every registered student
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Event ID"
// @Param        request body SuspendEventRequest true "Reason"
// @Success      200 {object} response.APIResponse{data=event.EventResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /admin/events/{id}/suspend [put]
func (h *Handler) SuspendEvent(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	var req SuspendEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	suspended, err := h.service.SuspendEvent(r.Context(), id, req.Reason)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to suspend event")
		return
	}

	response.JSONWithMessage(w, http.StatusOK, "Event suspended successfully", suspended.ToResponse(time.Now().UTC()))
}

// EventRegistrations handles GET /admin/events/{id}/registrations
// @Summary      List an event's registrations
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Event ID"
// @Param        status query string false "Registration status filter"
// @Success      200 {object} response.APIResponse{data=[]RegistrantResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /admin/events/{id}/registrations [get]
func (h *Handler) EventRegistrations(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	registrants, err := h.service.EventRegistrations(r.Context(), id, r.URL.Query().Get("status"))
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to list registrations")
		return
	}

	response.JSON(w, http.StatusOK, registrants)
}

// Announce handles POST /admin/announcement
// @Summary      Broadcast an announcement
// @Description  Delivers a notification to every account in the target role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AnnouncementRequest true "Announcement"
// @Success      201 {object} response.APIResponse{data=AnnouncementResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /admin/announcement [post]
func (h *Handler) Announce(w http.ResponseWriter, r *http.Request) {
	var req AnnouncementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.service.Announce(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrNoRecipients) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to send announcement")
		return
	}

	response.JSONWithMessage(w, http.StatusCreated, "Announcement sent successfully", result)
}

// Reports handles GET /admin/reports
// @Summary      Aggregated platform reports
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        months query int false "Trend window in months"
// @Success      200 {object} response.APIResponse{data=ReportsResponse}
// @Router       /admin/reports [get]
func (h *Handler) Reports(w http.ResponseWriter, r *http.Request) {
	months, _ := strconv.Atoi(r.URL.Query().Get("months"))

	reports, err := h.service.Reports(r.Context(), months)
	if err != nil {
		response.InternalError(w, "Failed to assemble reports")
		return
	}

	response.JSON(w, http.StatusOK, reports)
}

// AuditTrail handles GET /admin/audit-logs
// @Summary      Approval decision audit trail
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page"
// @Param        limit query int false "Page size"
// @Success      200 {object} response.APIResponse{data=[]AuditEntry}
// @Router       /admin/audit-logs [get]
func (h *Handler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)

	entries, total, err := h.service.AuditTrail(r.Context(), page, limit)
	if err != nil {
		response.InternalError(w, "Failed to load audit trail")
		return
	}

	response.JSONWithMeta(w, http.StatusOK, entries, response.NewMeta(page, limit, total))
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
