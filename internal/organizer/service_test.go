package organizer

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/averma/campus-events/internal/account"
	"github.com/averma/campus-events/internal/database"
	"github.com/averma/campus-events/internal/event"
	"github.com/averma/campus-events/internal/notification"
	"github.com/averma/campus-events/internal/registration"
	"github.com/averma/campus-events/internal/report"
)

// Ownership tests need a running mongod. They are skipped unless
// CAMPUS_EVENTS_TEST_MONGO_URI is set.
func setup(t *testing.T) (context.Context, *Service, *event.Repository) {
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
	collections := []string{
		database.AccountsCollection,
		database.EventsCollection,
		database.RegistrationsCollection,
		database.NotificationsCollection,
	}
	for _, col := range collections {
		if err := db.Collection(col).Drop(ctx); err != nil {
			t.Fatalf("drop %s: %v", col, err)
		}
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}

	eventRepo := event.NewRepository(db)
	service := NewService(
		eventRepo,
		account.NewRepository(db),
		registration.NewRepository(db),
		notification.NewService(notification.NewRepository(db)),
		report.NewRepository(db),
	)
	return ctx, service, eventRepo
}

func ownedEvent(t *testing.T, ctx context.Context, repo *event.Repository, organizerID primitive.ObjectID) *event.Event {
	t.Helper()

	now := time.Now().UTC()
	ev, err := repo.Create(ctx, &event.Event{
		Title:       "Annual Sports Meet",
		Description: "Track and field events",
		Category:    "Sports",
		StartDate:   now.Add(48 * time.Hour),
		EndDate:     now.Add(56 * time.Hour),
		Venue:       "Stadium",
		Capacity:    200,
		OrganizerID: organizerID,
	})
	if err != nil {
		t.Fatalf("Create event: %v", err)
	}
	return ev
}

func TestOwnershipCheck(t *testing.T) {
	ctx, service, eventRepo := setup(t)

	ownerID := primitive.NewObjectID()
	ev := ownedEvent(t, ctx, eventRepo, ownerID)

	t.Run("other organizer rejected", func(t *testing.T) {
		_, err := service.CloseRegistration(ctx, ev.ID, primitive.NewObjectID(), account.RoleOrganizer)
		if !errors.Is(err, ErrNotOwner) {
			t.Fatalf("CloseRegistration by non-owner: err = %v, want ErrNotOwner", err)
		}
	})

	t.Run("owner allowed", func(t *testing.T) {
		if _, err := service.Participants(ctx, ev.ID, ownerID, account.RoleOrganizer, ""); err != nil {
			t.Fatalf("Participants by owner: %v", err)
		}
	})

	t.Run("admin bypasses ownership", func(t *testing.T) {
		if _, err := service.Participants(ctx, ev.ID, primitive.NewObjectID(), account.RoleAdmin, ""); err != nil {
			t.Fatalf("Participants by admin: %v", err)
		}
	})

	t.Run("missing event", func(t *testing.T) {
		_, err := service.Participants(ctx, primitive.NewObjectID(), ownerID, account.RoleOrganizer, "")
		if !errors.Is(err, ErrEventNotFound) {
			t.Fatalf("Participants for missing event: err = %v, want ErrEventNotFound", err)
		}
	})
}
