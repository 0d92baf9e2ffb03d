package admin

import (
	"context"
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

// The dashboard tests need a running mongod. They are skipped unless
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

	accountRepo := account.NewRepository(db)
	accountService := account.NewService(accountRepo, []byte("test-secret"), time.Hour)
	eventRepo := event.NewRepository(db)
	registrationRepo := registration.NewRepository(db)
	notificationService := notification.NewService(notification.NewRepository(db))
	reportRepo := report.NewRepository(db)

	service := NewService(accountService, accountRepo, eventRepo, registrationRepo, notificationService, reportRepo)
	return ctx, service, eventRepo
}

func createEvent(t *testing.T, ctx context.Context, repo *event.Repository, start, end time.Time) *event.Event {
	t.Helper()

	ev, err := repo.Create(ctx, &event.Event{
		Title:       "Robotics Workshop",
		Description: "Hands-on robotics session",
		Category:    "Workshop",
		StartDate:   start,
		EndDate:     end,
		Venue:       "Lab 3",
		Capacity:    30,
		OrganizerID: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create event: %v", err)
	}
	return ev
}

func TestStatsOverviewEventCounters(t *testing.T) {
	ctx, service, eventRepo := setup(t)

	now := time.Now().UTC()
	adminID := primitive.NewObjectID()

	// approved and upcoming: counts as active
	upcoming := createEvent(t, ctx, eventRepo, now.Add(24*time.Hour), now.Add(26*time.Hour))
	if _, err := eventRepo.Approve(ctx, upcoming.ID, adminID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	// approved and already over: counts as completed, not active
	ended := createEvent(t, ctx, eventRepo, now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	if _, err := eventRepo.Approve(ctx, ended.ID, adminID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	// still pending approval: neither active nor completed
	createEvent(t, ctx, eventRepo, now.Add(24*time.Hour), now.Add(26*time.Hour))

	// approved but cancelled: neither active nor completed
	cancelled := createEvent(t, ctx, eventRepo, now.Add(24*time.Hour), now.Add(26*time.Hour))
	if _, err := eventRepo.Approve(ctx, cancelled.ID, adminID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := eventRepo.Cancel(ctx, cancelled.ID, "venue unavailable"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	stats, err := service.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	overview := stats.Overview
	if overview.TotalEvents != 4 {
		t.Errorf("TotalEvents = %d, want 4", overview.TotalEvents)
	}
	if overview.ActiveEvents != 1 {
		t.Errorf("ActiveEvents = %d, want 1", overview.ActiveEvents)
	}
	if overview.CompletedEvents != 1 {
		t.Errorf("CompletedEvents = %d, want 1", overview.CompletedEvents)
	}
	if overview.PendingApprovals != 1 {
		t.Errorf("PendingApprovals = %d, want 1", overview.PendingApprovals)
	}
}
