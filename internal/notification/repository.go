package notification

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

// Repository handles notification data persistence
type Repository struct {
	col *mongo.Collection
}

// NewRepository creates a new notification repository
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{col: db.Collection(database.NotificationsCollection)}
}

// Create appends a single notification to the outbox
func (r *Repository) Create(ctx context.Context, n *Notification) (*Notification, error) {
	n.CreatedAt = time.Now().UTC()
	res, err := r.col.InsertOne(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	n.ID = res.InsertedID.(primitive.ObjectID)
	return n, nil
}

// CreateBatch appends a fan-out as one batch insert. The store's batch
// semantics decide atomicity; the caller treats it as all-or-nothing.
func (r *Repository) CreateBatch(ctx context.Context, batch []*Notification) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, len(batch))
	for i, n := range batch {
		n.CreatedAt = now
		docs[i] = n
	}

	res, err := r.col.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("failed to insert notification batch: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// GetByID retrieves a notification by its ID
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Notification, error) {
	var n Notification
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &n, nil
}

// ListByRecipient retrieves a recipient's notifications, newest first
func (r *Repository) ListByRecipient(ctx context.Context, recipientID primitive.ObjectID, limit, offset int, unreadOnly bool) ([]*Notification, int64, error) {
	filter := bson.M{"recipient_id": recipientID}
	if unreadOnly {
		filter["read"] = false
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer cur.Close(ctx)

	var notifications []*Notification
	for cur.Next(ctx) {
		var n Notification
		if err := cur.Decode(&n); err != nil {
			return nil, 0, fmt.Errorf("failed to decode notification: %w", err)
		}
		notifications = append(notifications, &n)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}

// MarkAsRead flips a notification's read flag. Idempotent.
func (r *Repository) MarkAsRead(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return false, fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return res.MatchedCount == 1, nil
}

// MarkAllAsRead flips every unread notification for a recipient. Idempotent.
func (r *Repository) MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{"recipient_id": recipientID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return nil
}

// Delete removes a notification
func (r *Repository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// UnreadCount counts unread notifications for a recipient
func (r *Repository) UnreadCount(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"recipient_id": recipientID, "read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
