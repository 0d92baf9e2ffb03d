package event

import (
	"testing"
	"time"
)

func sampleEvent(start, end time.Time) *Event {
	return &Event{
		Title:          "Tech Talk",
		Category:       "Technical",
		StartDate:      start,
		EndDate:        end,
		Capacity:       100,
		ApprovalStatus: ApprovalApproved,
	}
}

func TestStatusAt(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		cancelled bool
		want      string
	}{
		{"future event", now.Add(24 * time.Hour), now.Add(26 * time.Hour), false, StatusUpcoming},
		{"running event", now.Add(-1 * time.Hour), now.Add(1 * time.Hour), false, StatusOngoing},
		{"starts exactly now", now, now.Add(2 * time.Hour), false, StatusOngoing},
		{"past event", now.Add(-3 * time.Hour), now.Add(-1 * time.Hour), false, StatusCompleted},
		{"cancelled future event", now.Add(24 * time.Hour), now.Add(26 * time.Hour), true, StatusCancelled},
		{"cancelled past event", now.Add(-3 * time.Hour), now.Add(-1 * time.Hour), true, StatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := sampleEvent(tt.start, tt.end)
			ev.Cancelled = tt.cancelled
			if got := ev.StatusAt(now); got != tt.want {
				t.Errorf("StatusAt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegistrationOpenAt(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	deadline := now.Add(-1 * time.Hour)

	tests := []struct {
		name   string
		mutate func(*Event)
		want   bool
	}{
		{"approved upcoming event", func(e *Event) {}, true},
		{"pending approval", func(e *Event) { e.ApprovalStatus = ApprovalPending }, false},
		{"rejected", func(e *Event) { e.ApprovalStatus = ApprovalRejected }, false},
		{"cancelled", func(e *Event) { e.Cancelled = true }, false},
		{"deadline passed", func(e *Event) { e.RegistrationDeadline = &deadline }, false},
		{"already over", func(e *Event) {
			e.StartDate = now.Add(-3 * time.Hour)
			e.EndDate = now.Add(-1 * time.Hour)
		}, false},
		{"ongoing event still open", func(e *Event) {
			e.StartDate = now.Add(-1 * time.Hour)
			e.EndDate = now.Add(1 * time.Hour)
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := sampleEvent(now.Add(24*time.Hour), now.Add(26*time.Hour))
			tt.mutate(ev)
			if got := ev.RegistrationOpenAt(now); got != tt.want {
				t.Errorf("RegistrationOpenAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusFilter(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	for _, status := range []string{StatusUpcoming, StatusOngoing, StatusCompleted, StatusCancelled} {
		filter, ok := StatusFilter(status, now)
		if !ok {
			t.Errorf("StatusFilter(%q) not ok", status)
			continue
		}
		if filter == nil {
			t.Errorf("StatusFilter(%q) returned nil filter", status)
		}
	}

	if _, ok := StatusFilter("archived", now); ok {
		t.Error("StatusFilter accepted an unknown status")
	}
	if _, ok := StatusFilter("", now); ok {
		t.Error("StatusFilter accepted an empty status")
	}
}

// Filters and StatusAt must agree: an event selected by the filter for a
// status must derive that same status.
func TestStatusFilterMatchesStatusAt(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	events := []*Event{
		sampleEvent(now.Add(24*time.Hour), now.Add(26*time.Hour)),
		sampleEvent(now.Add(-1*time.Hour), now.Add(1*time.Hour)),
		sampleEvent(now.Add(-3*time.Hour), now.Add(-1*time.Hour)),
	}
	cancelled := sampleEvent(now.Add(24*time.Hour), now.Add(26*time.Hour))
	cancelled.Cancelled = true
	events = append(events, cancelled)

	want := []string{StatusUpcoming, StatusOngoing, StatusCompleted, StatusCancelled}
	for i, ev := range events {
		if got := ev.StatusAt(now); got != want[i] {
			t.Errorf("event %d: StatusAt() = %q, want %q", i, got, want[i])
		}
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range Categories {
		if !ValidCategory(c) {
			t.Errorf("ValidCategory(%q) = false", c)
		}
	}
	if ValidCategory("Gaming") {
		t.Error("ValidCategory accepted an unknown category")
	}
	if ValidCategory("technical") {
		t.Error("ValidCategory is case sensitive and must reject lowercase")
	}
}
