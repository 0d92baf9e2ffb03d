package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Service handles outbox business logic
type Service struct {
	repo *Repository
}

// NewService creates a new notification service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// ListByRecipient retrieves a recipient's notifications plus their unread count
func (s *Service) ListByRecipient(ctx context.Context, recipientID primitive.ObjectID, page, perPage int, unreadOnly bool) ([]*Notification, int64, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	offset := (page - 1) * perPage
	notifications, total, err := s.repo.ListByRecipient(ctx, recipientID, perPage, offset, unreadOnly)
	if err != nil {
		return nil, 0, 0, err
	}

	unread, err := s.repo.UnreadCount(ctx, recipientID)
	if err != nil {
		return nil, 0, 0, err
	}
	return notifications, total, unread, nil
}

// MarkAsRead flips a notification's read flag
func (s *Service) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	matched, err := s.repo.MarkAsRead(ctx, id)
	if err != nil {
		return err
	}
	if !matched {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllAsRead flips all unread notifications for a recipient
func (s *Service) MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) error {
	return s.repo.MarkAllAsRead(ctx, recipientID)
}

// Delete removes a notification after checking recipient ownership
func (s *Service) Delete(ctx context.Context, id, actingID primitive.ObjectID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotificationNotFound
	}
	if n.RecipientID != actingID {
		return ErrNotRecipient
	}
	return s.repo.Delete(ctx, id)
}

// Outbox writers used as side effects of registry and ledger mutations.

// NotifyRegistered confirms a successful event registration
func (s *Service) NotifyRegistered(ctx context.Context, studentID, eventID primitive.ObjectID, eventTitle string) error {
	_, err := s.repo.Create(ctx, &Notification{
		RecipientID: studentID,
		Title:       "Event Registration Confirmed",
		Message:     fmt.Sprintf("You have successfully registered for %s", eventTitle),
		Type:        TypeEventRegistration,
		EventID:     &eventID,
	})
	return err
}

// NotifyCancelled confirms a registration cancellation
func (s *Service) NotifyCancelled(ctx context.Context, studentID, eventID primitive.ObjectID, eventTitle string) error {
	_, err := s.repo.Create(ctx, &Notification{
		RecipientID: studentID,
		Title:       "Registration Cancelled",
		Message:     fmt.Sprintf("Your registration for %s has been cancelled", eventTitle),
		Type:        TypeEventUpdate,
		EventID:     &eventID,
	})
	return err
}

// NotifyEventApproved tells an organizer their event passed review
func (s *Service) NotifyEventApproved(ctx context.Context, organizerID, eventID primitive.ObjectID, eventTitle string) error {
	_, err := s.repo.Create(ctx, &Notification{
		RecipientID: organizerID,
		Title:       "Event Approved",
		Message:     fmt.Sprintf("Your event %q has been approved", eventTitle),
		Type:        TypeEventApproved,
		EventID:     &eventID,
	})
	return err
}

// FanOut sends the same message to every recipient as one batch insert,
// stamped with a shared batch id for traceability.
func (s *Service) FanOut(ctx context.Context, recipientIDs []primitive.ObjectID, title, message, notifType string, eventID *primitive.ObjectID) (int, string, error) {
	batchID := uuid.NewString()

	batch := make([]*Notification, len(recipientIDs))
	for i, recipientID := range recipientIDs {
		batch[i] = &Notification{
			RecipientID: recipientID,
			Title:       title,
			Message:     message,
			Type:        notifType,
			EventID:     eventID,
			BatchID:     batchID,
		}
	}

	count, err := s.repo.CreateBatch(ctx, batch)
	if err != nil {
		return 0, "", err
	}
	return count, batchID, nil
}
