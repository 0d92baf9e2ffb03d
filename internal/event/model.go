package event

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lifecycle status values. Status is never stored: it is derived from the
// event dates and the cancelled flag at read time, so an unrelated field
// update can never silently rewrite it.
const (
	StatusUpcoming  = "upcoming"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Approval workflow states, admin-controlled and independent of lifecycle
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Categories is the closed category enum
var Categories = []string{"Technical", "Cultural", "Sports", "Academic", "Social", "Workshop"}

// Event represents an event in the registry. RegisteredCount is the
// denormalized capacity guard; the registration ledger is the source of
// truth for who is registered.
type Event struct {
	ID                   primitive.ObjectID  `bson:"_id,omitempty"`
	Title                string              `bson:"title"`
	Description          string              `bson:"description"`
	Category             string              `bson:"category"`
	StartDate            time.Time           `bson:"start_date"`
	EndDate              time.Time           `bson:"end_date"`
	Venue                string              `bson:"venue"`
	Capacity             int                 `bson:"capacity"`
	RegisteredCount      int                 `bson:"registered_count"`
	Image                string              `bson:"image,omitempty"`
	OrganizerID          primitive.ObjectID  `bson:"organizer_id"`
	Tags                 []string            `bson:"tags,omitempty"`
	Cancelled            bool                `bson:"cancelled"`
	CancellationReason   string              `bson:"cancellation_reason,omitempty"`
	ApprovalStatus       string              `bson:"approval_status"`
	ApprovedBy           *primitive.ObjectID `bson:"approved_by,omitempty"`
	RejectionReason      string              `bson:"rejection_reason,omitempty"`
	DecidedAt            *time.Time          `bson:"decided_at,omitempty"`
	RegistrationDeadline *time.Time          `bson:"registration_deadline,omitempty"`
	CreatedAt            time.Time           `bson:"created_at"`
	UpdatedAt            time.Time           `bson:"updated_at"`
}

// StatusAt derives the lifecycle status at the given instant
func (e *Event) StatusAt(now time.Time) string {
	if e.Cancelled {
		return StatusCancelled
	}
	switch {
	case e.EndDate.Before(now):
		return StatusCompleted
	case !e.StartDate.After(now):
		return StatusOngoing
	default:
		return StatusUpcoming
	}
}

// RegistrationOpenAt reports whether new registrations are accepted at the
// given instant: the event must be approved, not cancelled, not past its
// close-registration deadline, and not already over.
func (e *Event) RegistrationOpenAt(now time.Time) bool {
	if e.ApprovalStatus != ApprovalApproved || e.Cancelled {
		return false
	}
	if e.RegistrationDeadline != nil && now.After(*e.RegistrationDeadline) {
		return false
	}
	return e.EndDate.After(now)
}

// StatusFilter translates a derived status into the query filter that selects
// exactly the events holding that status at the given instant. The second
// return is false for unknown status values.
func StatusFilter(status string, now time.Time) (bson.M, bool) {
	switch status {
	case StatusCancelled:
		return bson.M{"cancelled": true}, true
	case StatusCompleted:
		return bson.M{"cancelled": false, "end_date": bson.M{"$lt": now}}, true
	case StatusOngoing:
		return bson.M{
			"cancelled":  false,
			"start_date": bson.M{"$lte": now},
			"end_date":   bson.M{"$gte": now},
		}, true
	case StatusUpcoming:
		return bson.M{"cancelled": false, "start_date": bson.M{"$gt": now}}, true
	default:
		return nil, false
	}
}

// ValidCategory reports whether category is in the closed enum
func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
