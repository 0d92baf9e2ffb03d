package event

import (
	"errors"
	"time"
)

// CreateEventRequest represents the request body for creating an event
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Venue       string    `json:"venue"`
	Capacity    int       `json:"capacity"`
	Image       string    `json:"image,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}

// Validate checks required fields and the closed enums
func (r *CreateEventRequest) Validate() error {
	if r.Title == "" || len(r.Title) > 100 {
		return errors.New("please provide an event title of at most 100 characters")
	}
	if r.Description == "" || len(r.Description) > 2000 {
		return errors.New("please provide a description of at most 2000 characters")
	}
	if !ValidCategory(r.Category) {
		return errors.New("please provide a valid category")
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return errors.New("please provide start and end dates")
	}
	if !r.EndDate.After(r.StartDate) {
		return errors.New("end date must be after start date")
	}
	if r.Venue == "" || len(r.Venue) > 200 {
		return errors.New("please provide a venue of at most 200 characters")
	}
	if r.Capacity < 1 {
		return errors.New("capacity must be at least 1")
	}
	return nil
}

// UpdateEventRequest represents the request body for an organizer event update
type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Category    *string    `json:"category,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Venue       *string    `json:"venue,omitempty"`
	Capacity    *int       `json:"capacity,omitempty"`
	Image       *string    `json:"image,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// Validate checks optional field constraints
func (r *UpdateEventRequest) Validate() error {
	if r.Title != nil && (*r.Title == "" || len(*r.Title) > 100) {
		return errors.New("title must be between 1 and 100 characters")
	}
	if r.Description != nil && (*r.Description == "" || len(*r.Description) > 2000) {
		return errors.New("description must be between 1 and 2000 characters")
	}
	if r.Category != nil && !ValidCategory(*r.Category) {
		return errors.New("please provide a valid category")
	}
	if r.Venue != nil && (*r.Venue == "" || len(*r.Venue) > 200) {
		return errors.New("venue must be between 1 and 200 characters")
	}
	if r.Capacity != nil && *r.Capacity < 1 {
		return errors.New("capacity must be at least 1")
	}
	if r.StartDate != nil && r.EndDate != nil && !r.EndDate.After(*r.StartDate) {
		return errors.New("end date must be after start date")
	}
	return nil
}

// RejectEventRequest carries the mandatory rejection reason
type RejectEventRequest struct {
	Reason string `json:"reason"`
}

// OrganizerSummary is the organizer projection embedded in event responses
type OrganizerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EventResponse represents the response for a single event. Status is the
// derived lifecycle phase at response time.
type EventResponse struct {
	ID                   string            `json:"id"`
	Title                string            `json:"title"`
	Description          string            `json:"description"`
	Category             string            `json:"category"`
	StartDate            time.Time         `json:"start_date"`
	EndDate              time.Time         `json:"end_date"`
	Venue                string            `json:"venue"`
	Capacity             int               `json:"capacity"`
	RegisteredCount      int               `json:"registered_count"`
	Image                string            `json:"image,omitempty"`
	Tags                 []string          `json:"tags,omitempty"`
	Status               string            `json:"status"`
	CancellationReason   string            `json:"cancellation_reason,omitempty"`
	ApprovalStatus       string            `json:"approval_status"`
	RejectionReason      string            `json:"rejection_reason,omitempty"`
	RegistrationDeadline *time.Time        `json:"registration_deadline,omitempty"`
	Organizer            *OrganizerSummary `json:"organizer,omitempty"`
	CreatedAt            string            `json:"created_at"`
}

// ToResponse converts an Event to an EventResponse, deriving status at now
func (e *Event) ToResponse(now time.Time) *EventResponse {
	return &EventResponse{
		ID:                   e.ID.Hex(),
		Title:                e.Title,
		Description:          e.Description,
		Category:             e.Category,
		StartDate:            e.StartDate,
		EndDate:              e.EndDate,
		Venue:                e.Venue,
		Capacity:             e.Capacity,
		RegisteredCount:      e.RegisteredCount,
		Image:                e.Image,
		Tags:                 e.Tags,
		Status:               e.StatusAt(now),
		CancellationReason:   e.CancellationReason,
		ApprovalStatus:       e.ApprovalStatus,
		RejectionReason:      e.RejectionReason,
		RegistrationDeadline: e.RegistrationDeadline,
		CreatedAt:            e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
