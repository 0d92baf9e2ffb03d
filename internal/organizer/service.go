// Package organizer provides the organizer dashboard: per-event participants,
// exports, analytics and lifecycle controls over the caller's own events.
package organizer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
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
	ErrEventNotFound         = errors.New("event not found")
	ErrNotOwner              = errors.New("you can only manage your own events")
	ErrInvalidStatus         = errors.New("status must be cancelled or the event's current status")
	ErrReasonRequired        = errors.New("cancellation reason is required")
	ErrEventHasRegistrations = errors.New("approved events with registrations cannot be deleted")
)

// Service composes the per-feature stores into the organizer surface
type Service struct {
	events        *event.Repository
	accounts      *account.Repository
	registrations *registration.Repository
	notifications *notification.Service
	reports       *report.Repository
}

// NewService creates a new organizer service
func NewService(
	events *event.Repository,
	accounts *account.Repository,
	registrations *registration.Repository,
	notifications *notification.Service,
	reports *report.Repository,
) *Service {
	return &Service{
		events:        events,
		accounts:      accounts,
		registrations: registrations,
		notifications: notifications,
		reports:       reports,
	}
}

// owned loads an event and verifies the caller may manage it. Admins may
// manage any event.
func (s *Service) owned(ctx context.Context, eventID, actingID primitive.ObjectID, actingRole string) (*event.Event, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, ErrEventNotFound
	}
	if ev.OrganizerID != actingID && actingRole != account.RoleAdmin {
		return nil, ErrNotOwner
	}
	return ev, nil
}

// Stats assembles the organizer dashboard for the caller's events
func (s *Service) Stats(ctx context.Context, organizerID primitive.ObjectID) (*StatsResponse, error) {
	now := time.Now().UTC()
	mine := bson.M{"organizer_id": organizerID}

	total, err := s.events.Count(ctx, mine)
	if err != nil {
		return nil, err
	}
	approved, err := s.events.Count(ctx, bson.M{"organizer_id": organizerID, "approval_status": event.ApprovalApproved})
	if err != nil {
		return nil, err
	}
	pending, err := s.events.Count(ctx, bson.M{"organizer_id": organizerID, "approval_status": event.ApprovalPending})
	if err != nil {
		return nil, err
	}

	eventIDs, err := s.eventIDs(ctx, organizerID)
	if err != nil {
		return nil, err
	}

	var registrations int64
	var trends []report.MonthCount
	if len(eventIDs) > 0 {
		registrations, err = s.registrations.Count(ctx, bson.M{"event_id": bson.M{"$in": eventIDs}})
		if err != nil {
			return nil, err
		}
		trends, err = s.reports.RegistrationTrends(ctx, eventIDs, 12)
		if err != nil {
			return nil, err
		}
	}

	byStatus, err := s.reports.EventsByStatus(ctx, mine, now)
	if err != nil {
		return nil, err
	}

	return &StatsResponse{
		TotalEvents:        total,
		ApprovedEvents:     approved,
		PendingEvents:      pending,
		TotalRegistrations: registrations,
		EventsByStatus:     byStatus,
		RegistrationTrends: trends,
	}, nil
}

func (s *Service) eventIDs(ctx context.Context, organizerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	events, _, err := s.events.List(ctx, bson.M{"organizer_id": organizerID}, 0, 0)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids, nil
}

// Participants lists an event's ledger entries joined with student profiles
func (s *Service) Participants(ctx context.Context, eventID, actingID primitive.ObjectID, actingRole, status string) ([]*ParticipantResponse, error) {
	if _, err := s.owned(ctx, eventID, actingID, actingRole); err != nil {
		return nil, err
	}

	regs, err := s.registrations.ListByEvent(ctx, eventID, status)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(regs))
	for _, reg := range regs {
		ids = append(ids, reg.StudentID)
	}
	students, err := s.accounts.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*account.Account, len(students))
	for _, st := range students {
		byID[st.ID] = st
	}

	out := make([]*ParticipantResponse, 0, len(regs))
	for _, reg := range regs {
		p := &ParticipantResponse{
			RegisteredOn: reg.RegistrationDate.Format(time.RFC3339),
			Status:       reg.Status,
			Attended:     reg.Participation.Attended,
		}
		if st, ok := byID[reg.StudentID]; ok {
			p.Student = st.ToResponse()
		}
		out = append(out, p)
	}
	return out, nil
}

// ExportRows builds the participant sheet for CSV download, header included
func (s *Service) ExportRows(ctx context.Context, eventID, actingID primitive.ObjectID, actingRole string) (*event.Event, [][]string, error) {
	ev, err := s.owned(ctx, eventID, actingID, actingRole)
	if err != nil {
		return nil, nil, err
	}

	participants, err := s.Participants(ctx, eventID, actingID, actingRole, registration.StatusRegistered)
	if err != nil {
		return nil, nil, err
	}

	rows := make([][]string, 0, len(participants)+1)
	rows = append(rows, []string{"sNo", "name", "rollNumber", "email", "branch", "semester", "phone", "registeredOn"})
	for i, p := range participants {
		name, roll, email, branch, semester, phone := "", "", "", "", "", ""
		if p.Student != nil {
			name = p.Student.Name
			roll = p.Student.RollNumber
			email = p.Student.Email
			branch = p.Student.Branch
			phone = p.Student.Phone
			if p.Student.Semester > 0 {
				semester = fmt.Sprintf("%d", p.Student.Semester)
			}
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1), name, roll, email, branch, semester, phone, p.RegisteredOn,
		})
	}
	return ev, rows, nil
}

// Notify sends a custom message to an event's registered students
func (s *Service) Notify(ctx context.Context, eventID, actingID primitive.ObjectID, actingRole string, req *NotifyRequest) (*NotifyResponse, error) {
	if _, err := s.owned(ctx, eventID, actingID, actingRole); err != nil {
		return nil, err
	}

	studentIDs, err := s.registrations.StudentIDsByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(studentIDs) == 0 {
		return &NotifyResponse{}, nil
	}

	count, batchID, err := s.notifications.FanOut(ctx, studentIDs, req.Title, req.Message, notification.TypeEventUpdate, &eventID)
	if err != nil {
		return nil, err
	}
	return &NotifyResponse{BatchID: batchID, Recipients: count}, nil
}

// SetStatus cancels an event or lifts a cancellation. Lifecycle status is
// derived from the event dates, so the only accepted writes are "cancelled"
// and, for a cancelled event, the status its dates currently derive.
func (s *Service) SetStatus(ctx context.Context, eventID, actingID primitive.ObjectID, actingRole string, req *StatusRequest) (*event.Event, error) {
	ev, err := s.owned(ctx, eventID, actingID, actingRole)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if req.Status == event.StatusCancelled {
		if ev.Cancelled {
			return ev, nil
		}
		if req.Reason == "" {
			return nil, ErrReasonRequired
		}
		cancelled, err := s.events.Cancel(ctx, eventID, req.Reason)
		if err != nil {
			return nil, err
		}
		s.notifyCancellation(ctx, cancelled, req.Reason)
		return cancelled, nil
	}

	if !ev.Cancelled {
		return nil, ErrInvalidStatus
	}
	lifted := *ev
	lifted.Cancelled = false
	if req.Status != lifted.StatusAt(now) {
		return nil, ErrInvalidStatus
	}
	return s.events.Reinstate(ctx, eventID)
}

func (s *Service) notifyCancellation(ctx context.Context, ev *event.Event, reason string) {
	studentIDs, err := s.registrations.StudentIDsByEvent(ctx, ev.ID)
	if err != nil {
		log.Printf("failed to load registrants for cancelled event %s: %v", ev.ID.Hex(), err)
		return
	}
	if len(studentIDs) == 0 {
		return
	}
	_, _, err = s.notifications.FanOut(ctx, studentIDs,
		"Event Cancelled",
		"The event \""+ev.Title+"\" has been cancelled: "+reason,
		notification.TypeEventCancelled, &ev.ID)
	if err != nil {
		log.Printf("failed to notify registrants of cancelled event %s: %v", ev.ID.Hex(), err)
	}
}

// CloseRegistration stops new sign-ups while leaving the event live
func (s *Service) CloseRegistration(ctx context.Context, eventID, actingID primitive.ObjectID, actingRole string) (*event.Event, error) {
	if _, err := s.owned(ctx, eventID, actingID, actingRole); err != nil {
		return nil, err
	}
	return s.events.CloseRegistration(ctx, eventID)
}

// Analytics assembles per-event registration analytics
func (s *Service) Analytics(ctx context.Context, eventID, actingID primitive.ObjectID, actingRole string) (*AnalyticsResponse, error) {
	ev, err := s.owned(ctx, eventID, actingID, actingRole)
	if err != nil {
		return nil, err
	}

	byBranch, err := s.reports.RegistrationsByBranch(ctx, eventID)
	if err != nil {
		return nil, err
	}
	bySemester, err := s.reports.RegistrationsBySemester(ctx, eventID)
	if err != nil {
		return nil, err
	}
	daily, err := s.reports.DailyRegistrations(ctx, eventID)
	if err != nil {
		return nil, err
	}

	occupancy := 0.0
	if ev.Capacity > 0 {
		occupancy = math.Round(float64(ev.RegisteredCount)/float64(ev.Capacity)*10000) / 100
	}

	return &AnalyticsResponse{
		EventID:            ev.ID.Hex(),
		Title:              ev.Title,
		Capacity:           ev.Capacity,
		RegisteredCount:    ev.RegisteredCount,
		OccupancyPercent:   occupancy,
		ByBranch:           byBranch,
		BySemester:         bySemester,
		DailyRegistrations: daily,
	}, nil
}

// Delete removes an event. Approved events that have gathered registrations
// must be cancelled instead so that registered students are notified.
func (s *Service) Delete(ctx context.Context, eventID, actingID primitive.ObjectID, actingRole string) error {
	ev, err := s.owned(ctx, eventID, actingID, actingRole)
	if err != nil {
		return err
	}

	if ev.ApprovalStatus == event.ApprovalApproved {
		count, err := s.registrations.CountByEvent(ctx, eventID, "")
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrEventHasRegistrations
		}
	}
	return s.events.Delete(ctx, eventID)
}
