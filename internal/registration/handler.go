package registration

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/averma/campus-events/internal/account"
	"github.com/averma/campus-events/pkg/middleware"
	"github.com/averma/campus-events/pkg/response"
)

// Handler handles HTTP requests for ledger operations
type Handler struct {
	service *Service
}

// NewHandler creates a new registration handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for registration endpoints; students only
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequireRole(account.RoleStudent))
	r.Post("/register", h.Register)
	r.Get("/my-registrations", h.MyRegistrations)
	r.Delete("/cancel/{id}", h.Cancel)
	r.Get("/check/{eventId}", h.Check)
	r.Put("/feedback/{id}", h.SubmitFeedback)

	return r
}

// Register handles POST /registrations/register
// @Summary      Register for an event
// @Description  Creates the ledger record and atomically claims a capacity slot
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body RegisterRequest true "Event to register for"
// @Success      201 {object} response.APIResponse{data=RegistrationResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /registrations/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	eventID, err := primitive.ObjectIDFromHex(req.EventID)
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	reg, err := h.service.Register(r.Context(), principal.ID, eventID)
	if err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrAlreadyRegistered):
			response.Conflict(w, err.Error())
		case errors.Is(err, ErrEventFull):
			response.Conflict(w, err.Error())
		case errors.Is(err, ErrRegistrationClosed):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to register for event")
		}
		return
	}

	response.JSONWithMessage(w, http.StatusCreated, "Successfully registered for the event", ToResponse(reg))
}

// MyRegistrations handles GET /registrations/my-registrations
// @Summary      List the caller's registrations
// @Tags         registrations
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page"
// @Param        limit query int false "Page size"
// @Success      200 {object} response.APIResponse{data=[]RegistrationResponse}
// @Router       /registrations/my-registrations [get]
func (h *Handler) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	regs, total, err := h.service.MyRegistrations(r.Context(), principal.ID, page, limit)
	if err != nil {
		response.InternalError(w, "Failed to list registrations")
		return
	}

	response.JSONWithMeta(w, http.StatusOK, regs, response.NewMeta(page, limit, total))
}

// Cancel handles DELETE /registrations/cancel/{id}
// @Summary      Cancel a registration
// @Tags         registrations
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Registration ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /registrations/cancel/{id} [delete]
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid registration ID")
		return
	}

	if err := h.service.Cancel(r.Context(), id, principal.ID); err != nil {
		switch {
		case errors.Is(err, ErrRegistrationNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrNotRegistrationOwner):
			response.Forbidden(w, "Not authorized to cancel this registration")
		case errors.Is(err, ErrRegistrationCancelled):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to cancel registration")
		}
		return
	}

	response.JSONWithMessage(w, http.StatusOK, "Registration cancelled successfully", nil)
}

// Check handles GET /registrations/check/{eventId}
// @Summary      Check registration for an event
// @Tags         registrations
// @Produce      json
// @Security     BearerAuth
// @Param        eventId path string true "Event ID"
// @Success      200 {object} response.APIResponse{data=CheckResponse}
// @Router       /registrations/check/{eventId} [get]
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	eventID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "eventId"))
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	reg, err := h.service.Check(r.Context(), principal.ID, eventID)
	if err != nil {
		response.InternalError(w, "Failed to check registration")
		return
	}

	check := &CheckResponse{IsRegistered: reg != nil}
	if reg != nil {
		check.Registration = ToResponse(reg)
	}
	response.JSON(w, http.StatusOK, check)
}

// SubmitFeedback handles PUT /registrations/feedback/{id}
// @Summary      Submit feedback for a registration
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Registration ID"
// @Param        request body FeedbackRequest true "Feedback"
// @Success      200 {object} response.APIResponse{data=RegistrationResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /registrations/feedback/{id} [put]
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid registration ID")
		return
	}

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	reg, err := h.service.SubmitFeedback(r.Context(), id, principal.ID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrRegistrationNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrNotRegistrationOwner):
			response.Forbidden(w, "Not authorized to submit feedback for this registration")
		default:
			response.InternalError(w, "Failed to submit feedback")
		}
		return
	}

	response.JSONWithMessage(w, http.StatusOK, "Feedback submitted successfully", ToResponse(reg))
}
