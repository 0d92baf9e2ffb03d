package event

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

// Repository handles event data persistence
type Repository struct {
	col *mongo.Collection
}

// NewRepository creates a new event repository
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{col: db.Collection(database.EventsCollection)}
}

// Create inserts a new event with a pending approval status
func (r *Repository) Create(ctx context.Context, event *Event) (*Event, error) {
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	event.RegisteredCount = 0
	event.ApprovalStatus = ApprovalPending

	res, err := r.col.InsertOne(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	event.ID = res.InsertedID.(primitive.ObjectID)
	return event, nil
}

// GetByID retrieves an event by its ID
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	var event Event
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

// GetByIDs retrieves the events for a set of ids in one query
func (r *Repository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to get events by ids: %w", err)
	}
	defer cur.Close(ctx)

	var events []*Event
	for cur.Next(ctx) {
		var event Event
		if err := cur.Decode(&event); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		events = append(events, &event)
	}
	return events, cur.Err()
}

// Update applies the non-nil mutable fields and returns the updated event
func (r *Repository) Update(ctx context.Context, id primitive.ObjectID, req *UpdateEventRequest) (*Event, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Category != nil {
		set["category"] = *req.Category
	}
	if req.StartDate != nil {
		set["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		set["end_date"] = *req.EndDate
	}
	if req.Venue != nil {
		set["venue"] = *req.Venue
	}
	if req.Capacity != nil {
		set["capacity"] = *req.Capacity
	}
	if req.Image != nil {
		set["image"] = *req.Image
	}
	if req.Tags != nil {
		set["tags"] = req.Tags
	}

	var event Event
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return &event, nil
}

// List retrieves events matching the filter, sorted by start date ascending
func (r *Repository) List(ctx context.Context, filter bson.M, limit, offset int) ([]*Event, int64, error) {
	return r.find(ctx, filter, bson.D{{Key: "start_date", Value: 1}}, limit, offset)
}

// ListNewest retrieves events matching the filter, newest first
func (r *Repository) ListNewest(ctx context.Context, filter bson.M, limit, offset int) ([]*Event, int64, error) {
	return r.find(ctx, filter, bson.D{{Key: "created_at", Value: -1}}, limit, offset)
}

func (r *Repository) find(ctx context.Context, filter bson.M, sort bson.D, limit, offset int) ([]*Event, int64, error) {
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	findOpts := options.Find().SetSort(sort)
	if offset > 0 {
		findOpts.SetSkip(int64(offset))
	}
	if limit > 0 {
		findOpts.SetLimit(int64(limit))
	}

	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer cur.Close(ctx)

	var events []*Event
	for cur.Next(ctx) {
		var event Event
		if err := cur.Decode(&event); err != nil {
			return nil, 0, fmt.Errorf("failed to decode event: %w", err)
		}
		events = append(events, &event)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	return events, total, nil
}

// Decided retrieves events with a recorded approval decision, most recent
// decision first
func (r *Repository) Decided(ctx context.Context, limit, offset int) ([]*Event, int64, error) {
	filter := bson.M{"approval_status": bson.M{"$in": bson.A{ApprovalApproved, ApprovalRejected}}}
	return r.find(ctx, filter, bson.D{{Key: "decided_at", Value: -1}}, limit, offset)
}

// SearchFilter builds the case-insensitive keyword filter over title,
// description and tags
func SearchFilter(keyword string) bson.M {
	pattern := primitive.Regex{Pattern: keyword, Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"title": pattern},
		bson.M{"description": pattern},
		bson.M{"tags": pattern},
	}}
}

// Approve records an approval decision
func (r *Repository) Approve(ctx context.Context, id, adminID primitive.ObjectID) (*Event, error) {
	now := time.Now().UTC()
	var event Event
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"approval_status": ApprovalApproved,
			"approved_by":     adminID,
			"decided_at":      now,
			"updated_at":      now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to approve event: %w", err)
	}
	return &event, nil
}

// Reject records a rejection decision with its mandatory reason
func (r *Repository) Reject(ctx context.Context, id, adminID primitive.ObjectID, reason string) (*Event, error) {
	now := time.Now().UTC()
	var event Event
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"approval_status":  ApprovalRejected,
			"approved_by":      adminID,
			"rejection_reason": reason,
			"decided_at":       now,
			"updated_at":       now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to reject event: %w", err)
	}
	return &event, nil
}

// Cancel raises the cancelled flag with a reason
func (r *Repository) Cancel(ctx context.Context, id primitive.ObjectID, reason string) (*Event, error) {
	var event Event
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"cancelled":           true,
			"cancellation_reason": reason,
			"updated_at":          time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to cancel event: %w", err)
	}
	return &event, nil
}

// Reinstate clears the cancelled flag
func (r *Repository) Reinstate(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	var event Event
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set":   bson.M{"cancelled": false, "updated_at": time.Now().UTC()},
			"$unset": bson.M{"cancellation_reason": ""},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to reinstate event: %w", err)
	}
	return &event, nil
}

// CloseRegistration stamps the registration deadline; the register path
// enforces it from then on
func (r *Repository) CloseRegistration(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	now := time.Now().UTC()
	var event Event
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"registration_deadline": now, "updated_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to close registration: %w", err)
	}
	return &event, nil
}

// Delete removes an event from the registry
func (r *Repository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// Count counts events matching the filter
func (r *Repository) Count(ctx context.Context, filter bson.M) (int64, error) {
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return total, nil
}

// TryReserveSlot atomically claims one capacity slot. The filter and the
// increment are a single document update, so two concurrent registrations
// for the last slot cannot both succeed.
func (r *Repository) TryReserveSlot(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{
			"_id":   id,
			"$expr": bson.M{"$lt": bson.A{"$registered_count", "$capacity"}},
		},
		bson.M{"$inc": bson.M{"registered_count": 1}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to reserve slot: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// ReleaseSlot atomically returns one capacity slot, floored at zero
func (r *Repository) ReleaseSlot(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "registered_count": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"registered_count": -1}},
	)
	if err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	return nil
}
