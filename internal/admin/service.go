package admin

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/averma/campus-events/internal/account"
	"github.com/averma/campus-events/internal/event"
	"github.com/averma/campus-events/internal/notification"
	"github.com/averma/campus-events/internal/registration"
	"github.com/averma/campus-events/internal/report"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrNoRecipients    = errors.New("no recipients for the target role")
)

// Service composes the per-feature stores into the admin surface
type Service struct {
	accounts      *account.Service
	accountRepo   *account.Repository
	events        *event.Repository
	registrations *registration.Repository
	notifications *notification.Service
	reports       *report.Repository
}

// NewService creates a new admin service
func NewService(
	accounts *account.Service,
	accountRepo *account.Repository,
	events *event.Repository,
	registrations *registration.Repository,
	notifications *notification.Service,
	reports *report.Repository,
) *Service {
	return &Service{
		accounts:      accounts,
		accountRepo:   accountRepo,
		events:        events,
		registrations: registrations,
		notifications: notifications,
		reports:       reports,
	}
}

// Stats assembles the admin dashboard
func (s *Service) Stats(ctx context.Context) (*StatsResponse, error) {
	now := time.Now().UTC()

	usersByRole, err := s.reports.UsersByRole(ctx)
	if err != nil {
		return nil, err
	}
	var totalUsers int64
	for _, bucket := range usersByRole {
		totalUsers += bucket.Count
	}

	totalEvents, err := s.events.Count(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	pending, err := s.events.Count(ctx, bson.M{"approval_status": event.ApprovalPending})
	if err != nil {
		return nil, err
	}

	upcoming, _ := event.StatusFilter(event.StatusUpcoming, now)
	ongoing, _ := event.StatusFilter(event.StatusOngoing, now)
	active, err := s.events.Count(ctx, bson.M{
		"approval_status": event.ApprovalApproved,
		"$or":             bson.A{upcoming, ongoing},
	})
	if err != nil {
		return nil, err
	}
	completedFilter, _ := event.StatusFilter(event.StatusCompleted, now)
	completed, err := s.events.Count(ctx, completedFilter)
	if err != nil {
		return nil, err
	}

	totalRegistrations, err := s.registrations.Count(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	eventsByCategory, err := s.reports.EventsByCategory(ctx)
	if err != nil {
		return nil, err
	}
	eventsByStatus, err := s.reports.EventsByStatus(ctx, bson.M{}, now)
	if err != nil {
		return nil, err
	}
	trends, err := s.reports.RegistrationTrends(ctx, nil, 12)
	if err != nil {
		return nil, err
	}

	recentAccounts, err := s.accountRepo.Recent(ctx, 5)
	if err != nil {
		return nil, err
	}
	recentUsers := make([]*account.AccountResponse, 0, len(recentAccounts))
	for _, a := range recentAccounts {
		recentUsers = append(recentUsers, a.ToResponse())
	}

	latest, _, err := s.events.ListNewest(ctx, bson.M{}, 5, 0)
	if err != nil {
		return nil, err
	}
	recentEvents := make([]*event.EventResponse, 0, len(latest))
	for _, e := range latest {
		recentEvents = append(recentEvents, e.ToResponse(now))
	}

	return &StatsResponse{
		Overview: OverviewStats{
			TotalUsers:         totalUsers,
			TotalEvents:        totalEvents,
			ActiveEvents:       active,
			CompletedEvents:    completed,
			PendingApprovals:   pending,
			TotalRegistrations: totalRegistrations,
		},
		UsersByRole:        usersByRole,
		EventsByCategory:   eventsByCategory,
		EventsByStatus:     eventsByStatus,
		RegistrationTrends: trends,
		RecentUsers:        recentUsers,
		RecentEvents:       recentEvents,
	}, nil
}

// ListUsers pages through accounts with optional role and search filters
func (s *Service) ListUsers(ctx context.Context, role, search string, page, perPage int) ([]*account.Account, int64, error) {
	return s.accounts.List(ctx, role, search, page, perPage)
}

// UpdateUserRole changes an account's role
func (s *Service) UpdateUserRole(ctx context.Context, id primitive.ObjectID, role string) (*account.Account, error) {
	updated, err := s.accounts.UpdateRole(ctx, id, role)
	if errors.Is(err, account.ErrAccountNotFound) {
		return nil, ErrAccountNotFound
	}
	return updated, err
}

// DeactivateUser marks an account inactive, which locks it out of every
// authenticated route on its next request
func (s *Service) DeactivateUser(ctx context.Context, id primitive.ObjectID) (*account.Account, error) {
	updated, err := s.accounts.Deactivate(ctx, id)
	if errors.Is(err, account.ErrAccountNotFound) {
		return nil, ErrAccountNotFound
	}
	return updated, err
}

// SuspendEvent cancels an event on behalf of the platform and notifies every
// registered student
func (s *Service) SuspendEvent(ctx context.Context, eventID primitive.ObjectID, reason string) (*event.Event, error) {
	suspended, err := s.events.Cancel(ctx, eventID, reason)
	if err != nil {
		return nil, err
	}
	if suspended == nil {
		return nil, ErrEventNotFound
	}

	studentIDs, err := s.registrations.StudentIDsByEvent(ctx, eventID)
	if err != nil {
		log.Printf("failed to load registrants for suspended event %s: %v", eventID.Hex(), err)
		return suspended, nil
	}
	if len(studentIDs) > 0 {
		_, _, err := s.notifications.FanOut(ctx, studentIDs,
			"Event Suspended",
			"The event \""+suspended.Title+"\" has been suspended: "+reason,
			notification.TypeEventCancelled, &eventID)
		if err != nil {
			log.Printf("failed to notify registrants of suspended event %s: %v", eventID.Hex(), err)
		}
	}
	return suspended, nil
}

// EventRegistrations lists an event's ledger entries joined with each
// student's profile
func (s *Service) EventRegistrations(ctx context.Context, eventID primitive.ObjectID, status string) ([]*RegistrantResponse, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, ErrEventNotFound
	}

	regs, err := s.registrations.ListByEvent(ctx, eventID, status)
	if err != nil {
		return nil, err
	}
	return s.joinStudents(ctx, regs)
}

func (s *Service) joinStudents(ctx context.Context, regs []*registration.Registration) ([]*RegistrantResponse, error) {
	ids := make([]primitive.ObjectID, 0, len(regs))
	seen := make(map[primitive.ObjectID]bool, len(regs))
	for _, reg := range regs {
		if !seen[reg.StudentID] {
			seen[reg.StudentID] = true
			ids = append(ids, reg.StudentID)
		}
	}

	students, err := s.accountRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*account.Account, len(students))
	for _, st := range students {
		byID[st.ID] = st
	}

	out := make([]*RegistrantResponse, 0, len(regs))
	for _, reg := range regs {
		entry := &RegistrantResponse{Registration: registration.ToResponse(reg)}
		if st, ok := byID[reg.StudentID]; ok {
			entry.Student = st.ToResponse()
		}
		out = append(out, entry)
	}
	return out, nil
}

// Announce broadcasts a notification batch to every account in the target
// role, or to students and organizers both when the target is "all"
func (s *Service) Announce(ctx context.Context, req *AnnouncementRequest) (*AnnouncementResponse, error) {
	var roles []string
	if req.TargetRole == "all" {
		roles = []string{account.RoleStudent, account.RoleOrganizer}
	} else {
		roles = []string{req.TargetRole}
	}

	var recipients []primitive.ObjectID
	for _, role := range roles {
		ids, err := s.accountRepo.IDsByRole(ctx, role)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, ids...)
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	count, batchID, err := s.notifications.FanOut(ctx, recipients, req.Title, req.Message, notification.TypeAnnouncement, nil)
	if err != nil {
		return nil, err
	}
	return &AnnouncementResponse{BatchID: batchID, Recipients: count}, nil
}

// Reports assembles the full aggregation report
func (s *Service) Reports(ctx context.Context, months int) (*ReportsResponse, error) {
	if months < 1 || months > 36 {
		months = 12
	}

	usersByRole, err := s.reports.UsersByRole(ctx)
	if err != nil {
		return nil, err
	}
	eventsByCategory, err := s.reports.EventsByCategory(ctx)
	if err != nil {
		return nil, err
	}
	eventsByBranch, err := s.reports.EventsByBranch(ctx)
	if err != nil {
		return nil, err
	}
	trends, err := s.reports.RegistrationTrends(ctx, nil, months)
	if err != nil {
		return nil, err
	}
	topEvents, err := s.reports.TopEvents(ctx, 10)
	if err != nil {
		return nil, err
	}

	return &ReportsResponse{
		UsersByRole:        usersByRole,
		EventsByCategory:   eventsByCategory,
		EventsByBranch:     eventsByBranch,
		RegistrationTrends: trends,
		TopEvents:          topEvents,
	}, nil
}

// AuditTrail pages through recorded approval decisions, newest decision
// first. The trail is derived from the events themselves rather than kept in
// a separate log.
func (s *Service) AuditTrail(ctx context.Context, page, perPage int) ([]*AuditEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	events, total, err := s.events.Decided(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}

	entries := make([]*AuditEntry, 0, len(events))
	for _, e := range events {
		entry := &AuditEntry{
			EventID:         e.ID.Hex(),
			Title:           e.Title,
			Action:          e.ApprovalStatus,
			RejectionReason: e.RejectionReason,
		}
		if e.ApprovedBy != nil {
			entry.DecidedBy = e.ApprovedBy.Hex()
		}
		if e.DecidedAt != nil {
			entry.DecidedAt = e.DecidedAt.Format(time.RFC3339)
		}
		entries = append(entries, entry)
	}
	return entries, total, nil
}
