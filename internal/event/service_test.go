package event

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/averma/campus-events/internal/account"
	"github.com/averma/campus-events/internal/database"
	"github.com/averma/campus-events/internal/notification"
)

// Approval workflow tests need a running mongod. They are skipped unless
// CAMPUS_EVENTS_TEST_MONGO_URI is set.
func setupService(t *testing.T) (context.Context, *Service, *mongo.Database) {
	t.Helper()

	uri := os.Getenv("CAMPUS_EVENTS_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("CAMPUS_EVENTS_TEST_MONGO_URI not set")
	}

	ctx := context.Background()

	client, err := database.Open(ctx, uri)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Disconnect(ctx)
	})

	db := client.Database("campus_events_test")
	for _, col := range []string{database.EventsCollection, database.NotificationsCollection} {
		if err := db.Collection(col).Drop(ctx); err != nil {
			t.Fatalf("drop %s: %v", col, err)
		}
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}

	service := NewService(
		NewRepository(db),
		account.NewRepository(db),
		notification.NewService(notification.NewRepository(db)),
	)
	return ctx, service, db
}

func pendingEvent(t *testing.T, ctx context.Context, service *Service) *Event {
	t.Helper()

	now := time.Now().UTC()
	ev, err := service.Create(ctx, primitive.NewObjectID(), &CreateEventRequest{
		Title:       "Inter-college Hackathon",
		Description: "24 hour coding marathon",
		Category:    "Technical",
		StartDate:   now.Add(72 * time.Hour),
		EndDate:     now.Add(96 * time.Hour),
		Venue:       "Main Auditorium",
		Capacity:    100,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return ev
}

func notificationCount(t *testing.T, ctx context.Context, db *mongo.Database) int64 {
	t.Helper()

	count, err := db.Collection(database.NotificationsCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments: %v", err)
	}
	return count
}

func TestRejectPersistsDecisionWithoutNotifying(t *testing.T) {
	ctx, service, db := setupService(t)

	ev := pendingEvent(t, ctx, service)
	adminID := primitive.NewObjectID()

	rejected, err := service.Reject(ctx, ev.ID, adminID, "clashes with exam week")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}

	if rejected.ApprovalStatus != ApprovalRejected {
		t.Errorf("ApprovalStatus = %q, want %q", rejected.ApprovalStatus, ApprovalRejected)
	}
	if rejected.RejectionReason != "clashes with exam week" {
		t.Errorf("RejectionReason = %q, want the given reason", rejected.RejectionReason)
	}
	if rejected.DecidedAt == nil {
		t.Error("DecidedAt not set")
	}
	if rejected.ApprovedBy == nil || *rejected.ApprovedBy != adminID {
		t.Errorf("ApprovedBy = %v, want %s", rejected.ApprovedBy, adminID.Hex())
	}

	if count := notificationCount(t, ctx, db); count != 0 {
		t.Errorf("notifications written on rejection = %d, want 0", count)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	ctx, service, _ := setupService(t)

	ev := pendingEvent(t, ctx, service)

	if _, err := service.Reject(ctx, ev.ID, primitive.NewObjectID(), ""); !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("Reject with empty reason: err = %v, want ErrReasonRequired", err)
	}
}

func TestApproveNotifiesOrganizer(t *testing.T) {
	ctx, service, db := setupService(t)

	ev := pendingEvent(t, ctx, service)

	approved, err := service.Approve(ctx, ev.ID, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.ApprovalStatus != ApprovalApproved {
		t.Errorf("ApprovalStatus = %q, want %q", approved.ApprovalStatus, ApprovalApproved)
	}

	if count := notificationCount(t, ctx, db); count != 1 {
		t.Errorf("notifications written on approval = %d, want 1", count)
	}
}
