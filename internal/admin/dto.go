package admin

import (
	"errors"
	"strings"

	"github.com/averma/campus-events/internal/account"
	"github.com/averma/campus-events/internal/event"
	"github.com/averma/campus-events/internal/registration"
	"github.com/averma/campus-events/internal/report"
)

// UpdateRoleRequest changes an account's role
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// Validate checks the role change fields
func (r *UpdateRoleRequest) Validate() error {
	r.Role = strings.TrimSpace(r.Role)
	if !account.ValidRole(r.Role) {
		return errors.New("role must be one of: student, organizer, admin")
	}
	return nil
}

// SuspendEventRequest cancels an event platform-wide
type SuspendEventRequest struct {
	Reason string `json:"reason"`
}

// Validate checks the suspension fields
func (r *SuspendEventRequest) Validate() error {
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return errors.New("suspension reason is required")
	}
	return nil
}

// AnnouncementRequest broadcasts a notification to a role audience
type AnnouncementRequest struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	TargetRole string `json:"target_role"`
}

// Validate checks the announcement fields
func (r *AnnouncementRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Message = strings.TrimSpace(r.Message)
	r.TargetRole = strings.TrimSpace(r.TargetRole)

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
	if r.TargetRole == "" {
		r.TargetRole = "all"
	}
	switch r.TargetRole {
	case "all", account.RoleStudent, account.RoleOrganizer:
		return nil
	default:
		return errors.New("targetRole must be one of: all, student, organizer")
	}
}

// AnnouncementResponse reports the delivered broadcast
type AnnouncementResponse struct {
	BatchID    string `json:"batch_id"`
	Recipients int    `json:"recipients"`
}

// StatsResponse is the admin dashboard payload
type StatsResponse struct {
	Overview           OverviewStats              `json:"overview"`
	UsersByRole        []report.GroupCount        `json:"users_by_role"`
	EventsByCategory   []report.GroupCount        `json:"events_by_category"`
	EventsByStatus     []report.GroupCount        `json:"events_by_status"`
	RegistrationTrends []report.MonthCount        `json:"registration_trends"`
	RecentUsers        []*account.AccountResponse `json:"recent_users"`
	RecentEvents       []*event.EventResponse     `json:"recent_events"`
}

// OverviewStats carries the headline counters. Active means approved and not
// yet over; completed counts ended events whatever their approval state.
type OverviewStats struct {
	TotalUsers         int64 `json:"total_users"`
	TotalEvents        int64 `json:"total_events"`
	ActiveEvents       int64 `json:"active_events"`
	CompletedEvents    int64 `json:"completed_events"`
	PendingApprovals   int64 `json:"pending_approvals"`
	TotalRegistrations int64 `json:"total_registrations"`
}

// ReportsResponse is the full aggregation report payload
type ReportsResponse struct {
	UsersByRole        []report.GroupCount `json:"users_by_role"`
	EventsByCategory   []report.GroupCount `json:"events_by_category"`
	EventsByBranch     []report.GroupCount `json:"events_by_branch"`
	RegistrationTrends []report.MonthCount `json:"registration_trends"`
	TopEvents          []report.TopEvent   `json:"top_events"`
}

// RegistrantResponse is one ledger entry joined with the student profile
type RegistrantResponse struct {
	Registration *registration.RegistrationResponse `json:"registration"`
	Student      *account.AccountResponse           `json:"student"`
}

// AuditEntry is one approval decision in the audit trail
type AuditEntry struct {
	EventID         string `json:"event_id"`
	Title           string `json:"title"`
	Action          string `json:"action"`
	DecidedBy       string `json:"decided_by,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	DecidedAt       string `json:"decided_at,omitempty"`
}
