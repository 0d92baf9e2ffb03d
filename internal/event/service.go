package event

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/averma/campus-events/internal/account"
	"github.com/averma/campus-events/internal/notification"
)

// Common errors
var (
	ErrEventNotFound  = errors.New("event not found")
	ErrNotOrganizer   = errors.New("not authorized to modify this event")
	ErrReasonRequired = errors.New("rejection reason is required")
)

// Service handles event registry business logic
type Service struct {
	repo          *Repository
	accounts      *account.Repository
	notifications *notification.Service
}

// NewService creates a new event service
func NewService(repo *Repository, accounts *account.Repository, notifications *notification.Service) *Service {
	return &Service{
		repo:          repo,
		accounts:      accounts,
		notifications: notifications,
	}
}

// Create registers a new event owned by the organizer, pending approval
func (s *Service) Create(ctx context.Context, organizerID primitive.ObjectID, req *CreateEventRequest) (*Event, error) {
	return s.repo.Create(ctx, &Event{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		StartDate:   req.StartDate.UTC(),
		EndDate:     req.EndDate.UTC(),
		Venue:       req.Venue,
		Capacity:    req.Capacity,
		Image:       req.Image,
		Tags:        req.Tags,
		OrganizerID: organizerID,
	})
}

// Update modifies an event's mutable fields after an ownership check
func (s *Service) Update(ctx context.Context, id, actingID primitive.ObjectID, req *UpdateEventRequest) (*Event, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrEventNotFound
	}
	if existing.OrganizerID != actingID {
		return nil, ErrNotOrganizer
	}

	updated, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrEventNotFound
	}
	return updated, nil
}

// GetByID retrieves a single event with its organizer summary
func (s *Service) GetByID(ctx context.Context, id primitive.ObjectID) (*EventResponse, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	responses, err := s.attachOrganizers(ctx, []*Event{event})
	if err != nil {
		return nil, err
	}
	return responses[0], nil
}

// ListPublic retrieves approved events with optional derived-status and
// category filters
func (s *Service) ListPublic(ctx context.Context, status, category string, page, limit int) ([]*EventResponse, int64, error) {
	filter := bson.M{"approval_status": ApprovalApproved}
	if category != "" {
		filter["category"] = category
	}
	if status != "" {
		statusFilter, ok := StatusFilter(status, time.Now().UTC())
		if !ok {
			return nil, 0, nil
		}
		for k, v := range statusFilter {
			filter[k] = v
		}
	}
	return s.listResponses(ctx, filter, page, limit)
}

// Search retrieves approved events matching a keyword over title,
// description and tags
func (s *Service) Search(ctx context.Context, keyword string, page, limit int) ([]*EventResponse, int64, error) {
	filter := SearchFilter(keyword)
	filter["approval_status"] = ApprovalApproved
	return s.listResponses(ctx, filter, page, limit)
}

// ByOrganizer retrieves every event owned by an organizer, newest first
func (s *Service) ByOrganizer(ctx context.Context, organizerID primitive.ObjectID) ([]*EventResponse, error) {
	events, _, err := s.repo.ListNewest(ctx, bson.M{"organizer_id": organizerID}, 0, 0)
	if err != nil {
		return nil, err
	}
	return s.attachOrganizers(ctx, events)
}

// ListAll retrieves every event regardless of approval, newest first
func (s *Service) ListAll(ctx context.Context, page, limit int) ([]*EventResponse, int64, error) {
	page, limit = normalizePage(page, limit)
	events, total, err := s.repo.ListNewest(ctx, bson.M{}, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	responses, err := s.attachOrganizers(ctx, events)
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// Approve marks an event approved and notifies its organizer
func (s *Service) Approve(ctx context.Context, id, adminID primitive.ObjectID) (*Event, error) {
	event, err := s.repo.Approve(ctx, id, adminID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	if err := s.notifications.NotifyEventApproved(ctx, event.OrganizerID, event.ID, event.Title); err != nil {
		log.Printf("approve notification for event %s: %v", event.ID.Hex(), err)
	}
	return event, nil
}

// Reject marks an event rejected with its mandatory reason. Rejection emits
// no notification.
func (s *Service) Reject(ctx context.Context, id, adminID primitive.ObjectID, reason string) (*Event, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}

	event, err := s.repo.Reject(ctx, id, adminID, reason)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func (s *Service) listResponses(ctx context.Context, filter bson.M, page, limit int) ([]*EventResponse, int64, error) {
	page, limit = normalizePage(page, limit)
	events, total, err := s.repo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	responses, err := s.attachOrganizers(ctx, events)
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// attachOrganizers converts events to responses with organizer summaries
// resolved in one batched account lookup
func (s *Service) attachOrganizers(ctx context.Context, events []*Event) ([]*EventResponse, error) {
	now := time.Now().UTC()

	ids := make([]primitive.ObjectID, 0, len(events))
	seen := make(map[primitive.ObjectID]bool, len(events))
	for _, e := range events {
		if !seen[e.OrganizerID] {
			seen[e.OrganizerID] = true
			ids = append(ids, e.OrganizerID)
		}
	}

	organizers, err := s.accounts.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*OrganizerSummary, len(organizers))
	for _, o := range organizers {
		byID[o.ID] = &OrganizerSummary{ID: o.ID.Hex(), Name: o.Name, Email: o.Email}
	}

	responses := make([]*EventResponse, len(events))
	for i, e := range events {
		resp := e.ToResponse(now)
		resp.Organizer = byID[e.OrganizerID]
		responses[i] = resp
	}
	return responses, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
