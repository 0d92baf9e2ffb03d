package organizer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/averma/campus-events/internal/account"
	"github.com/averma/campus-events/pkg/middleware"
	"github.com/averma/campus-events/pkg/response"
)

// Handler handles HTTP requests for the organizer surface
type Handler struct {
	service *Service
}

// NewHandler creates a new organizer handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for organizer endpoints. Every route requires the
// organizer or admin role; per-event routes additionally check ownership.
func (h *Handler) Routes(authn func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authn)
	r.Use(middleware.RequireRole(account.RoleOrganizer, account.RoleAdmin))

	r.Get("/stats", h.Stats)
	r.Get("/events/{id}/participants", h.Participants)
	r.Get("/events/{id}/export", h.Export)
	r.Post("/events/{id}/notify", h.Notify)
	r.Put("/events/{id}/status", h.SetStatus)
	r.Put("/events/{id}/close-registration", h.CloseRegistration)
	r.Get("/events/{id}/analytics", h.Analytics)
	r.Delete("/events/{id}", h.Delete)

	return r
}

// Stats handles GET /organizer/stats
// @Summary      Organizer dashboard statistics
// @Tags         organizer
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=StatsResponse}
// @Router       /organizer/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	stats, err := h.service.Stats(r.Context(), principal.ID)
	if err != nil {
		response.InternalError(w, "Failed to assemble statistics")
		return
	}

	response.JSON(w, http.StatusOK, stats)
}

// Participants handles GET /organizer/events/{id}/participants
// @Summary      List an event's participants
// @Tags         organizer
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Event ID"
// @Param        status query string false "Registration status filter"
// @Success      200 {object} response.APIResponse{data=[]ParticipantResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /organizer/events/{id}/participants [get]
func (h *Handler) Participants(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.eventCall(w, r)
	if !ok {
		return
	}

	participants, err := h.service.Participants(r.Context(), id, principal.ID, principal.Role, r.URL.Query().Get("status"))
	if err != nil {
		h.writeError(w, err, "Failed to list participants")
		return
	}

	response.JSON(w, http.StatusOK, participants)
}

// Export handles GET /organizer/events/{id}/export
// @Summary      Export an event's participants as CSV
// @Tags         organizer
// @Produce      text/csv
// @Security     BearerAuth
// @Param        id path string true "Event ID"
// @Success      200 {string} string "CSV file"
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /organizer/events/{id}/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.eventCall(w, r)
	if !ok {
		return
	}

	event, rows, err := h.service.ExportRows(r.Context(), id, principal.ID, principal.Role)
	if err != nil {
		h.writeError(w, err, "Failed to export participants")
		return
	}

	filename := exportFilename(event.Title)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	writer := csv.NewWriter(w)
	_ = writer.WriteAll(rows)
}

func exportFilename(title string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, title)
	if slug == "" {
		slug = "event"
	}
	return slug + "-participants-" + time.Now().UTC().Format("2006-01-02") + ".csv"
}

// Notify handles POST /organizer/events/{id}/notify
// @Summary      Message an event's registered students
// @Tags         organizer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Event ID"
// @Param        request body NotifyRequest true "Message"
// @Success      201 {object} response.APIResponse{data=NotifyResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /organizer/events/{id}/notify [post]
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.eventCall(w, r)
	if !ok {
		return
	}

	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.service.Notify(r.Context(), id, principal.ID, principal.Role, &req)
	if err != nil {
		h.writeError(w, err, "Failed to send notifications")
		return
	}

	response.JSONWithMessage(w, http.StatusCreated, "Notifications sent successfully", result)
}

// SetStatus handles PUT /organizer/events/{id}/status
// @Summary      Cancel an event or lift a cancellation
// @Tags         organizer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Event ID"
// @Param        request body StatusRequest true "Target status"
// @Success      200 {object} response.APIResponse{data=event.EventResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /organizer/events/{id}/status [put]
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.eventCall(w, r)
	if !ok {
		return
	}

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	updated, err := h.service.SetStatus(r.Context(), id, principal.ID, principal.Role, &req)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) || errors.Is(err, ErrReasonRequired) {
			response.BadRequest(w, err.Error())
			return
		}
		h.writeError(w, err, "Failed to update event status")
		return
	}

	response.JSONWithMessage(w, http.StatusOK, "Event status updated successfully", updated.ToResponse(time.Now().UTC()))
}

// CloseRegistration handles PUT /organizer/events/{id}/close-registration
// @Summary      Close registrations for an event
// @Tags         organizer
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Event ID"
// @Success      200 {object} response.APIResponse{data=event.EventResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /organizer/events/{id}/close-registration [put]
func (h *Handler) CloseRegistration(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.eventCall(w, r)
	if !ok {
		return
	}

	updated, err := h.service.CloseRegistration(r.Context(), id, principal.ID, principal.Role)
	if err != nil {
		h.writeError(w, err, "Failed to close registration")
		return
	}

	response.JSONWithMessage(w, http.StatusOK, "Registration closed successfully", updated.ToResponse(time.Now().UTC()))
}

// Analytics handles GET /organizer/events/{id}/analytics
// @Summary      Per-event registration analytics
// @Tags         organizer
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Event ID"
// @Success      200 {object} response.APIResponse{data=AnalyticsResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /organizer/events/{id}/analytics [get]
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.eventCall(w, r)
	if !ok {
		return
	}

	analytics, err := h.service.Analytics(r.Context(), id, principal.ID, principal.Role)
	if err != nil {
		h.writeError(w, err, "Failed to assemble analytics")
		return
	}

	response.JSON(w, http.StatusOK, analytics)
}

// Delete handles DELETE /organizer/events/{id}
// @Summary      Delete an event
// @Description  Approved events with registrations must be cancelled instead
// @Tags         organizer
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Event ID"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /organizer/events/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.eventCall(w, r)
	if !ok {
		return
	}

	err := h.service.Delete(r.Context(), id, principal.ID, principal.Role)
	if err != nil {
		if errors.Is(err, ErrEventHasRegistrations) {
			response.BadRequest(w, err.Error())
			return
		}
		h.writeError(w, err, "Failed to delete event")
		return
	}

	response.JSONWithMessage(w, http.StatusOK, "Event deleted successfully", nil)
}

// eventCall pulls the caller and the event id every per-event route needs
func (h *Handler) eventCall(w http.ResponseWriter, r *http.Request) (*middleware.Principal, primitive.ObjectID, bool) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return nil, primitive.NilObjectID, false
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return nil, primitive.NilObjectID, false
	}
	return principal, id, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrEventNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotOwner):
		response.Forbidden(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}
