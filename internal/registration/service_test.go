package registration

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/averma/campus-events/internal/database"
	"github.com/averma/campus-events/internal/event"
	"github.com/averma/campus-events/internal/notification"
)

// The ledger tests need a running mongod. They are skipped unless
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
	for _, col := range []string{database.EventsCollection, database.RegistrationsCollection, database.NotificationsCollection} {
		if err := db.Collection(col).Drop(ctx); err != nil {
			t.Fatalf("drop %s: %v", col, err)
		}
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}

	eventRepo := event.NewRepository(db)
	notificationService := notification.NewService(notification.NewRepository(db))
	service := NewService(NewRepository(db), eventRepo, notificationService)

	return ctx, service, eventRepo
}

func approvedEvent(t *testing.T, ctx context.Context, repo *event.Repository, capacity int) *event.Event {
	t.Helper()

	now := time.Now().UTC()
	ev, err := repo.Create(ctx, &event.Event{
		Title:       "Hackathon",
		Description: "Annual 24-hour hackathon",
		Category:    "Technical",
		StartDate:   now.Add(24 * time.Hour),
		EndDate:     now.Add(48 * time.Hour),
		Venue:       "Main Auditorium",
		Capacity:    capacity,
		OrganizerID: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create event: %v", err)
	}

	approved, err := repo.Approve(ctx, ev.ID, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	return approved
}

func TestConcurrentRegistrationsRespectCapacity(t *testing.T) {
	ctx, service, eventRepo := setup(t)

	const capacity = 5
	const students = 20
	ev := approvedEvent(t, ctx, eventRepo, capacity)

	var wg sync.WaitGroup
	wg.Add(students)

	var successCount, fullCount int64
	for i := 0; i < students; i++ {
		go func() {
			defer wg.Done()
			_, err := service.Register(ctx, primitive.NewObjectID(), ev.ID)
			switch {
			case err == nil:
				atomic.AddInt64(&successCount, 1)
			case errors.Is(err, ErrEventFull):
				atomic.AddInt64(&fullCount, 1)
			default:
				t.Errorf("Register: %v", err)
			}
		}()
	}
	wg.Wait()

	if successCount != capacity {
		t.Errorf("successful registrations = %d, want %d", successCount, capacity)
	}
	if fullCount != students-capacity {
		t.Errorf("capacity rejections = %d, want %d", fullCount, students-capacity)
	}

	after, err := eventRepo.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if after.RegisteredCount != capacity {
		t.Errorf("registered_count = %d, want %d", after.RegisteredCount, capacity)
	}
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	ctx, service, eventRepo := setup(t)

	ev := approvedEvent(t, ctx, eventRepo, 10)
	studentID := primitive.NewObjectID()

	if _, err := service.Register(ctx, studentID, ev.ID); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := service.Register(ctx, studentID, ev.ID); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("second Register error = %v, want ErrAlreadyRegistered", err)
	}

	after, err := eventRepo.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if after.RegisteredCount != 1 {
		t.Errorf("registered_count = %d, want 1", after.RegisteredCount)
	}
}

func TestCancelReturnsSlotAndReregisterRevives(t *testing.T) {
	ctx, service, eventRepo := setup(t)

	ev := approvedEvent(t, ctx, eventRepo, 1)
	studentID := primitive.NewObjectID()

	reg, err := service.Register(ctx, studentID, ev.ID)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// capacity exhausted for anyone else
	if _, err := service.Register(ctx, primitive.NewObjectID(), ev.ID); !errors.Is(err, ErrEventFull) {
		t.Errorf("Register on full event error = %v, want ErrEventFull", err)
	}

	if err := service.Cancel(ctx, reg.ID, studentID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if err := service.Cancel(ctx, reg.ID, studentID); !errors.Is(err, ErrRegistrationCancelled) {
		t.Errorf("second Cancel error = %v, want ErrRegistrationCancelled", err)
	}

	after, err := eventRepo.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if after.RegisteredCount != 0 {
		t.Errorf("registered_count after cancel = %d, want 0", after.RegisteredCount)
	}

	// the unique index keeps one ledger record per (student, event); a
	// re-registration revives it rather than inserting a second one
	revived, err := service.Register(ctx, studentID, ev.ID)
	if err != nil {
		t.Fatalf("re-Register: %v", err)
	}
	if revived.ID != reg.ID {
		t.Errorf("revived a different ledger record: %s != %s", revived.ID.Hex(), reg.ID.Hex())
	}
	if revived.Status != StatusRegistered {
		t.Errorf("status = %q, want %q", revived.Status, StatusRegistered)
	}
}

func TestCancelRequiresOwnership(t *testing.T) {
	ctx, service, eventRepo := setup(t)

	ev := approvedEvent(t, ctx, eventRepo, 10)
	studentID := primitive.NewObjectID()

	reg, err := service.Register(ctx, studentID, ev.ID)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := service.Cancel(ctx, reg.ID, primitive.NewObjectID()); !errors.Is(err, ErrNotRegistrationOwner) {
		t.Errorf("Cancel by stranger error = %v, want ErrNotRegistrationOwner", err)
	}
}

func TestRegisterClosedEvents(t *testing.T) {
	ctx, service, eventRepo := setup(t)

	now := time.Now().UTC()

	// still pending approval
	pending, err := eventRepo.Create(ctx, &event.Event{
		Title:       "Unapproved Meetup",
		Category:    "Social",
		StartDate:   now.Add(24 * time.Hour),
		EndDate:     now.Add(26 * time.Hour),
		Venue:       "Cafeteria",
		Capacity:    50,
		OrganizerID: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := service.Register(ctx, primitive.NewObjectID(), pending.ID); !errors.Is(err, ErrRegistrationClosed) {
		t.Errorf("Register on pending event error = %v, want ErrRegistrationClosed", err)
	}

	// approved but registration window closed by the organizer
	closed := approvedEvent(t, ctx, eventRepo, 50)
	if _, err := eventRepo.CloseRegistration(ctx, closed.ID); err != nil {
		t.Fatalf("CloseRegistration: %v", err)
	}
	if _, err := service.Register(ctx, primitive.NewObjectID(), closed.ID); !errors.Is(err, ErrRegistrationClosed) {
		t.Errorf("Register after close error = %v, want ErrRegistrationClosed", err)
	}

	// missing event
	if _, err := service.Register(ctx, primitive.NewObjectID(), primitive.NewObjectID()); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("Register on missing event error = %v, want ErrEventNotFound", err)
	}
}
