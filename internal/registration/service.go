package registration

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/averma/campus-events/internal/event"
	"github.com/averma/campus-events/internal/notification"
)

// Common errors
var (
	ErrEventNotFound         = errors.New("event not found")
	ErrAlreadyRegistered     = errors.New("already registered for this event")
	ErrEventFull             = errors.New("event is full, cannot register")
	ErrRegistrationClosed    = errors.New("registrations for this event are closed")
	ErrRegistrationNotFound  = errors.New("registration not found")
	ErrNotRegistrationOwner  = errors.New("not authorized to act on this registration")
	ErrRegistrationCancelled = errors.New("registration is already cancelled")
)

// Service handles ledger business logic. The event repository provides the
// atomic slot reservation the capacity invariant depends on.
type Service struct {
	repo          *Repository
	events        *event.Repository
	notifications *notification.Service
}

// NewService creates a new registration service
func NewService(repo *Repository, events *event.Repository, notifications *notification.Service) *Service {
	return &Service{
		repo:          repo,
		events:        events,
		notifications: notifications,
	}
}

// Register creates (or revives) the ledger record for (student, event) and
// claims a capacity slot. The slot claim is a single conditional document
// update, so two concurrent registrations for the last open slot cannot both
// succeed; on a failed claim the ledger write is compensated.
func (s *Service) Register(ctx context.Context, studentID, eventID primitive.ObjectID) (*Registration, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, ErrEventNotFound
	}

	now := time.Now().UTC()
	if !ev.RegistrationOpenAt(now) {
		return nil, ErrRegistrationClosed
	}

	reg := &Registration{
		StudentID:        studentID,
		EventID:          eventID,
		RegistrationDate: now,
		Status:           StatusRegistered,
	}

	revived := false
	created, err := s.repo.Insert(ctx, reg)
	if err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			return nil, err
		}
		existing, err := s.repo.GetByStudentEvent(ctx, studentID, eventID)
		if err != nil {
			return nil, err
		}
		if existing == nil || existing.Status != StatusCancelled {
			return nil, ErrAlreadyRegistered
		}
		ok, err := s.repo.Revive(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrAlreadyRegistered
		}
		existing.Status = StatusRegistered
		existing.RegistrationDate = now
		created = existing
		revived = true
	}

	claimed, err := s.events.TryReserveSlot(ctx, eventID)
	if err != nil || !claimed {
		s.compensate(ctx, created.ID, revived)
		if err != nil {
			return nil, err
		}
		return nil, ErrEventFull
	}

	if err := s.notifications.NotifyRegistered(ctx, studentID, eventID, ev.Title); err != nil {
		log.Printf("registration notification for event %s: %v", eventID.Hex(), err)
	}
	return created, nil
}

// compensate undoes the ledger write after a failed slot claim
func (s *Service) compensate(ctx context.Context, regID primitive.ObjectID, revived bool) {
	if revived {
		if _, err := s.repo.Cancel(ctx, regID); err != nil {
			log.Printf("compensate registration %s: %v", regID.Hex(), err)
		}
		return
	}
	if err := s.repo.Delete(ctx, regID); err != nil {
		log.Printf("compensate registration %s: %v", regID.Hex(), err)
	}
}

// Cancel flips the caller's registration to cancelled and returns the
// capacity slot. The status guard means a record is decremented exactly once.
func (s *Service) Cancel(ctx context.Context, registrationID, studentID primitive.ObjectID) error {
	reg, err := s.repo.GetByID(ctx, registrationID)
	if err != nil {
		return err
	}
	if reg == nil {
		return ErrRegistrationNotFound
	}
	if reg.StudentID != studentID {
		return ErrNotRegistrationOwner
	}

	flipped, err := s.repo.Cancel(ctx, registrationID)
	if err != nil {
		return err
	}
	if !flipped {
		return ErrRegistrationCancelled
	}

	if err := s.events.ReleaseSlot(ctx, reg.EventID); err != nil {
		return err
	}

	title := ""
	if ev, err := s.events.GetByID(ctx, reg.EventID); err == nil && ev != nil {
		title = ev.Title
	}
	if err := s.notifications.NotifyCancelled(ctx, studentID, reg.EventID, title); err != nil {
		log.Printf("cancellation notification for event %s: %v", reg.EventID.Hex(), err)
	}
	return nil
}

// Check reports whether the student holds a ledger record for the event
func (s *Service) Check(ctx context.Context, studentID, eventID primitive.ObjectID) (*Registration, error) {
	return s.repo.GetByStudentEvent(ctx, studentID, eventID)
}

// SubmitFeedback writes the participation sub-record after an ownership check
func (s *Service) SubmitFeedback(ctx context.Context, registrationID, studentID primitive.ObjectID, req *FeedbackRequest) (*Registration, error) {
	reg, err := s.repo.GetByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrRegistrationNotFound
	}
	if reg.StudentID != studentID {
		return nil, ErrNotRegistrationOwner
	}

	if err := s.repo.SetFeedback(ctx, registrationID, req.Rating, req.Feedback); err != nil {
		return nil, err
	}

	reg.Participation.Rating = req.Rating
	reg.Participation.Feedback = req.Feedback
	reg.Participation.FeedbackGiven = true
	return reg, nil
}

// MyRegistrations lists the student's registrations with event summaries
func (s *Service) MyRegistrations(ctx context.Context, studentID primitive.ObjectID, page, limit int) ([]*RegistrationResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	regs, total, err := s.repo.ListByStudent(ctx, studentID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}

	responses, err := s.attachEvents(ctx, regs)
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// ToResponse converts a single registration without an event summary
func ToResponse(reg *Registration) *RegistrationResponse {
	return &RegistrationResponse{
		ID:               reg.ID.Hex(),
		Status:           reg.Status,
		RegistrationDate: reg.RegistrationDate,
		Participation:    reg.Participation,
	}
}

// attachEvents resolves event summaries for a batch of ledger records
func (s *Service) attachEvents(ctx context.Context, regs []*Registration) ([]*RegistrationResponse, error) {
	now := time.Now().UTC()

	ids := make([]primitive.ObjectID, 0, len(regs))
	seen := make(map[primitive.ObjectID]bool, len(regs))
	for _, reg := range regs {
		if !seen[reg.EventID] {
			seen[reg.EventID] = true
			ids = append(ids, reg.EventID)
		}
	}

	events, err := s.events.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*EventSummary, len(events))
	for _, ev := range events {
		byID[ev.ID] = &EventSummary{
			ID:        ev.ID.Hex(),
			Title:     ev.Title,
			Category:  ev.Category,
			StartDate: ev.StartDate,
			EndDate:   ev.EndDate,
			Venue:     ev.Venue,
			Status:    ev.StatusAt(now),
		}
	}

	responses := make([]*RegistrationResponse, len(regs))
	for i, reg := range regs {
		resp := ToResponse(reg)
		resp.Event = byID[reg.EventID]
		responses[i] = resp
	}
	return responses, nil
}
