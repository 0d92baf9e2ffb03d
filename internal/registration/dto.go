package registration

import (
	"errors"
	"time"
)

// RegisterRequest represents the request body for registering for an event
type RegisterRequest struct {
	EventID string `json:"event_id"`
}

// FeedbackRequest represents the request body for submitting feedback
type FeedbackRequest struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback,omitempty"`
}

// Validate checks the rating range and feedback length
func (r *FeedbackRequest) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}
	if len(r.Feedback) > 1000 {
		return errors.New("feedback cannot exceed 1000 characters")
	}
	return nil
}

// EventSummary is the event projection embedded in registration responses
type EventSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Venue     string    `json:"venue"`
	Status    string    `json:"status"`
}

// RegistrationResponse represents the response for a single registration
type RegistrationResponse struct {
	ID               string        `json:"id"`
	Event            *EventSummary `json:"event,omitempty"`
	Status           string        `json:"status"`
	RegistrationDate time.Time     `json:"registration_date"`
	Participation    Participation `json:"participation"`
}

// CheckResponse reports whether the caller holds a registration for an event
type CheckResponse struct {
	IsRegistered bool                  `json:"is_registered"`
	Registration *RegistrationResponse `json:"registration,omitempty"`
}
