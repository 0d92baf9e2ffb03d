package organizer

import (
	"errors"
	"strings"

	"github.com/averma/campus-events/internal/account"
	"github.com/averma/campus-events/internal/report"
)

// NotifyRequest sends a custom message to an event's registered students
type NotifyRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Validate checks the notify fields
func (r *NotifyRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Message = strings.TrimSpace(r.Message)

	if r.Title == "" {
		return errors.New("title is required")
	}
	if len(r.Title) > 100 {
		return errors.New("title must be at most 100 characters")
	}
	if r.Message == "" {
		return errors.New("message is required")
	}
	if len(r.Message) > 2000 {
		return errors.New("message must be at most 2000 characters")
	}
	return nil
}

// StatusRequest flips an event between cancelled and its derived status
type StatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// NotifyResponse reports the delivered batch
type NotifyResponse struct {
	BatchID    string `json:"batch_id"`
	Recipients int    `json:"recipients"`
}

// StatsResponse is the organizer dashboard payload
type StatsResponse struct {
	TotalEvents        int64               `json:"total_events"`
	ApprovedEvents     int64               `json:"approved_events"`
	PendingEvents      int64               `json:"pending_events"`
	TotalRegistrations int64               `json:"total_registrations"`
	EventsByStatus     []report.GroupCount `json:"events_by_status"`
	RegistrationTrends []report.MonthCount `json:"registration_trends"`
}

// ParticipantResponse is one registered student with their sign-up time
type ParticipantResponse struct {
	Student      *account.AccountResponse `json:"student"`
	RegisteredOn string                   `json:"registered_on"`
	Status       string                   `json:"status"`
	Attended     bool                     `json:"attended"`
}

// AnalyticsResponse is the per-event analytics payload
type AnalyticsResponse struct {
	EventID            string              `json:"event_id"`
	Title              string              `json:"title"`
	Capacity           int                 `json:"capacity"`
	RegisteredCount    int                 `json:"registered_count"`
	OccupancyPercent   float64             `json:"occupancy_percent"`
	ByBranch           []report.GroupCount `json:"by_branch"`
	BySemester         []report.GroupCount `json:"by_semester"`
	DailyRegistrations []report.DayCount   `json:"daily_registrations"`
}
