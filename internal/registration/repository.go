package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/averma/campus-events/internal/database"
)

// Repository handles registration ledger persistence
type Repository struct {
	col *mongo.Collection
}

// NewRepository creates a new registration repository
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{col: db.Collection(database.RegistrationsCollection)}
}

// Insert appends a new ledger record. Duplicate-key errors from the
// (student_id, event_id) unique index pass through for the service to map.
func (r *Repository) Insert(ctx context.Context, reg *Registration) (*Registration, error) {
	res, err := r.col.InsertOne(ctx, reg)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to insert registration: %w", err)
	}
	reg.ID = res.InsertedID.(primitive.ObjectID)
	return reg, nil
}

// GetByID retrieves a registration by its ID
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Registration, error) {
	var reg Registration
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&reg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return &reg, nil
}

// GetByStudentEvent retrieves the single ledger record for a (student, event)
// pair in any status
func (r *Repository) GetByStudentEvent(ctx context.Context, studentID, eventID primitive.ObjectID) (*Registration, error) {
	var reg Registration
	err := r.col.FindOne(ctx, bson.M{"student_id": studentID, "event_id": eventID}).Decode(&reg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return &reg, nil
}

// Revive flips a cancelled record back to registered with a fresh timestamp.
// The status guard in the filter makes concurrent revivals race safely: only
// one caller observes a match.
func (r *Repository) Revive(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusCancelled},
		bson.M{"$set": bson.M{
			"status":            StatusRegistered,
			"registration_date": time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to revive registration: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// Cancel flips a record to cancelled. The guard ensures an already-cancelled
// record is not cancelled twice, so the event count is decremented exactly once.
func (r *Repository) Cancel(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$ne": StatusCancelled}},
		bson.M{"$set": bson.M{"status": StatusCancelled}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to cancel registration: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// Delete removes a ledger record. Used only to compensate a failed slot
// reservation right after an insert.
func (r *Repository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	return nil
}

// SetFeedback records the participation feedback fields once
func (r *Repository) SetFeedback(ctx context.Context, id primitive.ObjectID, rating int, feedback string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"participation.rating":         rating,
			"participation.feedback":       feedback,
			"participation.feedback_given": true,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to set feedback: %w", err)
	}
	return nil
}

// ListByStudent retrieves a student's ledger records, newest first
func (r *Repository) ListByStudent(ctx context.Context, studentID primitive.ObjectID, limit, offset int) ([]*Registration, int64, error) {
	filter := bson.M{"student_id": studentID}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count registrations: %w", err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "registration_date", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer cur.Close(ctx)

	regs, err := decodeAll(ctx, cur)
	if err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

// ListByEvent retrieves an event's ledger records, optionally filtered by
// status, oldest first
func (r *Repository) ListByEvent(ctx context.Context, eventID primitive.ObjectID, status string) ([]*Registration, error) {
	filter := bson.M{"event_id": eventID}
	if status != "" {
		filter["status"] = status
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "registration_date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer cur.Close(ctx)

	return decodeAll(ctx, cur)
}

// CountByEvent counts an event's ledger records, optionally by status
func (r *Repository) CountByEvent(ctx context.Context, eventID primitive.ObjectID, status string) (int64, error) {
	filter := bson.M{"event_id": eventID}
	if status != "" {
		filter["status"] = status
	}
	count, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}

// Count counts ledger records matching the filter
func (r *Repository) Count(ctx context.Context, filter bson.M) (int64, error) {
	count, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}

// StudentIDsByEvent returns the student ids holding a registered-status
// record for the event. Used for fan-out.
func (r *Repository) StudentIDsByEvent(ctx context.Context, eventID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"event_id": eventID, "status": StatusRegistered},
		options.Find().SetProjection(bson.M{"student_id": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list registration student ids: %w", err)
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var doc struct {
			StudentID primitive.ObjectID `bson:"student_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode registration: %w", err)
		}
		ids = append(ids, doc.StudentID)
	}
	return ids, cur.Err()
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]*Registration, error) {
	var regs []*Registration
	for cur.Next(ctx) {
		var reg Registration
		if err := cur.Decode(&reg); err != nil {
			return nil, fmt.Errorf("failed to decode registration: %w", err)
		}
		regs = append(regs, &reg)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate registrations: %w", err)
	}
	return regs, nil
}
