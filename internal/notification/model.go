package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types, a closed enum
const (
	TypeEventRegistration = "event_registration"
	TypeEventUpdate       = "event_update"
	TypeEventReminder     = "event_reminder"
	TypeEventCancelled    = "event_cancelled"
	TypeEventApproved     = "event_approved"
	TypeEventRejected     = "event_rejected"
	TypeFeedbackRequest   = "feedback_request"
	TypeSystemMessage     = "system_message"
	TypeAnnouncement      = "announcement"
)

// Notification is one append-only outbox record. A TTL index on CreatedAt
// expires records 30 days after creation.
type Notification struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RecipientID primitive.ObjectID  `bson:"recipient_id" json:"recipient_id"`
	Title       string              `bson:"title" json:"title"`
	Message     string              `bson:"message" json:"message"`
	Type        string              `bson:"type" json:"type"`
	EventID     *primitive.ObjectID `bson:"event_id,omitempty" json:"event_id,omitempty"`
	BatchID     string              `bson:"batch_id,omitempty" json:"batch_id,omitempty"`
	Read        bool                `bson:"read" json:"read"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
}
