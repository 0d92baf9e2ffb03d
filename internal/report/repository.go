// Package report holds the read-only grouping and summary queries behind the
// admin and organizer dashboards. Nothing here mutates.
package report

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/averma/campus-events/internal/database"
	"github.com/averma/campus-events/internal/event"
)

// GroupCount is one bucket of a grouping query
type GroupCount struct {
	Key   interface{} `bson:"_id" json:"key"`
	Count int64       `bson:"count" json:"count"`
}

// MonthCount is one month bucket of a registration trend
type MonthCount struct {
	Year  int   `bson:"year" json:"year"`
	Month int   `bson:"month" json:"month"`
	Count int64 `bson:"count" json:"count"`
}

// DayCount is one day bucket of a registration trend
type DayCount struct {
	Day   string `bson:"_id" json:"day"`
	Count int64  `bson:"count" json:"count"`
}

// TopEvent is one row of the top-events-by-registrations report
type TopEvent struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Category        string             `bson:"category" json:"category"`
	Capacity        int                `bson:"capacity" json:"capacity"`
	RegisteredCount int                `bson:"registered_count" json:"registered_count"`
}

// Repository runs aggregation pipelines across the stores
type Repository struct {
	db *mongo.Database
}

// NewRepository creates a new report repository
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{db: db}
}

// UsersByRole groups accounts by role
func (r *Repository) UsersByRole(ctx context.Context) ([]GroupCount, error) {
	return r.groupCounts(ctx, database.AccountsCollection, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$role", "count": bson.M{"$sum": 1}}}},
	})
}

// EventsByCategory groups events by category
func (r *Repository) EventsByCategory(ctx context.Context) ([]GroupCount, error) {
	return r.groupCounts(ctx, database.EventsCollection, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
	})
}

// EventsByStatus counts events per derived lifecycle status at now
func (r *Repository) EventsByStatus(ctx context.Context, base bson.M, now time.Time) ([]GroupCount, error) {
	statuses := []string{event.StatusUpcoming, event.StatusOngoing, event.StatusCompleted, event.StatusCancelled}

	counts := make([]GroupCount, 0, len(statuses))
	for _, status := range statuses {
		statusFilter, _ := event.StatusFilter(status, now)
		for k, v := range base {
			statusFilter[k] = v
		}
		count, err := r.db.Collection(database.EventsCollection).CountDocuments(ctx, statusFilter)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s events: %w", status, err)
		}
		counts = append(counts, GroupCount{Key: status, Count: count})
	}
	return counts, nil
}

// EventsByBranch groups events by their organizer's branch
func (r *Repository) EventsByBranch(ctx context.Context) ([]GroupCount, error) {
	return r.groupCounts(ctx, database.EventsCollection, mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         database.AccountsCollection,
			"localField":   "organizer_id",
			"foreignField": "_id",
			"as":           "organizer",
		}}},
		{{Key: "$unwind", Value: "$organizer"}},
		{{Key: "$group", Value: bson.M{"_id": "$organizer.branch", "count": bson.M{"$sum": 1}}}},
	})
}

// RegistrationTrends buckets ledger records by month, newest first. An
// optional event-id set scopes the trend to one organizer's events.
func (r *Repository) RegistrationTrends(ctx context.Context, eventIDs []primitive.ObjectID, months int) ([]MonthCount, error) {
	pipeline := mongo.Pipeline{}
	if eventIDs != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"event_id": bson.M{"$in": eventIDs}}}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$registration_date"},
				"month": bson.M{"$month": "$registration_date"},
			},
			"count": bson.M{"$sum": 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: -1}, {Key: "_id.month", Value: -1}}}},
		bson.D{{Key: "$limit", Value: months}},
		bson.D{{Key: "$project", Value: bson.M{
			"_id":   0,
			"year":  "$_id.year",
			"month": "$_id.month",
			"count": 1,
		}}},
	)

	cur, err := r.db.Collection(database.RegistrationsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate registration trends: %w", err)
	}
	defer cur.Close(ctx)

	var trends []MonthCount
	if err := cur.All(ctx, &trends); err != nil {
		return nil, fmt.Errorf("failed to decode registration trends: %w", err)
	}
	return trends, nil
}

// TopEvents returns the n events with the most registrations
func (r *Repository) TopEvents(ctx context.Context, n int) ([]TopEvent, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "registered_count", Value: -1}}}},
		{{Key: "$limit", Value: n}},
		{{Key: "$project", Value: bson.M{
			"title":            1,
			"category":         1,
			"capacity":         1,
			"registered_count": 1,
		}}},
	}

	cur, err := r.db.Collection(database.EventsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top events: %w", err)
	}
	defer cur.Close(ctx)

	var top []TopEvent
	if err := cur.All(ctx, &top); err != nil {
		return nil, fmt.Errorf("failed to decode top events: %w", err)
	}
	return top, nil
}

// RegistrationsByBranch groups one event's registered students by branch
func (r *Repository) RegistrationsByBranch(ctx context.Context, eventID primitive.ObjectID) ([]GroupCount, error) {
	return r.registrationsByStudentField(ctx, eventID, "branch")
}

// RegistrationsBySemester groups one event's registered students by semester
func (r *Repository) RegistrationsBySemester(ctx context.Context, eventID primitive.ObjectID) ([]GroupCount, error) {
	return r.registrationsByStudentField(ctx, eventID, "semester")
}

func (r *Repository) registrationsByStudentField(ctx context.Context, eventID primitive.ObjectID, field string) ([]GroupCount, error) {
	return r.groupCounts(ctx, database.RegistrationsCollection, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"event_id": eventID, "status": "registered"}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         database.AccountsCollection,
			"localField":   "student_id",
			"foreignField": "_id",
			"as":           "student",
		}}},
		{{Key: "$unwind", Value: "$student"}},
		{{Key: "$group", Value: bson.M{"_id": "$student." + field, "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	})
}

// DailyRegistrations buckets one event's ledger records by day
func (r *Repository) DailyRegistrations(ctx context.Context, eventID primitive.ObjectID) ([]DayCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"event_id": eventID}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$registration_date"},
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cur, err := r.db.Collection(database.RegistrationsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily registrations: %w", err)
	}
	defer cur.Close(ctx)

	var days []DayCount
	if err := cur.All(ctx, &days); err != nil {
		return nil, fmt.Errorf("failed to decode daily registrations: %w", err)
	}
	return days, nil
}

func (r *Repository) groupCounts(ctx context.Context, collection string, pipeline mongo.Pipeline) ([]GroupCount, error) {
	cur, err := r.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var counts []GroupCount
	if err := cur.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode %s aggregation: %w", collection, err)
	}
	return counts, nil
}
