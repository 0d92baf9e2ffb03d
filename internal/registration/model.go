package registration

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Registration statuses
const (
	StatusRegistered = "registered"
	// StatusAttended is reserved for attendance marking; no operation sets
	// it yet. Attendance is currently tracked on Participation.Attended.
	StatusAttended  = "attended"
	StatusCancelled = "cancelled"
)

// Participation is the embedded per-registration participation sub-record
type Participation struct {
	Attended      bool   `bson:"attended" json:"attended"`
	FeedbackGiven bool   `bson:"feedback_given" json:"feedback_given"`
	Rating        int    `bson:"rating,omitempty" json:"rating,omitempty"`
	Feedback      string `bson:"feedback,omitempty" json:"feedback,omitempty"`
}

// Registration is one ledger record. A unique index on (student_id, event_id)
// guarantees at most one record per pair; cancellation flips status instead
// of deleting, and re-registration revives the cancelled record.
type Registration struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID        primitive.ObjectID `bson:"student_id" json:"student_id"`
	EventID          primitive.ObjectID `bson:"event_id" json:"event_id"`
	RegistrationDate time.Time          `bson:"registration_date" json:"registration_date"`
	Status           string             `bson:"status" json:"status"`
	Participation    Participation      `bson:"participation" json:"participation"`
}
