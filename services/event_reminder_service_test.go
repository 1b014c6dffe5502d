package services

import (
	"context"
	"testing"
	"time"

	"pairup_server/models"
)

// readyDogWalkingEvent drives the fixture event through voting so it is ready
// with alice and ben joined.
func (h *testHarness) readyDogWalkingEvent(ctx context.Context, t *testing.T) *models.Event {
	t.Helper()
	event := h.singleDogWalkingEvent(ctx)
	venueID := event.VenueOptions[0].VenueID
	for _, user := range []string{"alice", "ben"} {
		if _, _, err := h.participation.JoinEvent(ctx, event.EventID, user); err != nil {
			t.Fatal(err)
		}
		if _, _, err := h.participation.SubmitVote(ctx, event.EventID, user, venueID); err != nil {
			t.Fatal(err)
		}
	}
	return h.mustGetEvent(ctx, event.EventID)
}

func TestSendUpcomingEventReminders(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness()
	event := h.readyDogWalkingEvent(ctx, t)
	if event.Date == nil {
		t.Fatal("fixture event has no date")
	}
	h.notifier.sent = nil

	// put the event start 49h ahead, inside the two hour sweep window
	h.reminders.Now = fixedClock(event.Date.Add(-49 * time.Hour))
	if err := h.reminders.SendUpcomingEventReminders(ctx); err != nil {
		t.Fatal(err)
	}

	if got := h.notifier.sentTo("alice"); got != 1 {
		t.Fatalf("alice got %d reminders, want 1", got)
	}
	if got := h.notifier.sentTo("ben"); got != 1 {
		t.Fatalf("ben got %d reminders, want 1", got)
	}
	// cara and dev never joined
	if got := h.notifier.sentTo("cara") + h.notifier.sentTo("dev"); got != 0 {
		t.Fatalf("pending participants got %d reminders, want 0", got)
	}
	if !h.mustGetEvent(ctx, event.EventID).ReminderSent {
		t.Fatal("reminderSent not recorded")
	}

	// repeat sweep is a no-op
	h.notifier.sent = nil
	if err := h.reminders.SendUpcomingEventReminders(ctx); err != nil {
		t.Fatal(err)
	}
	if len(h.notifier.sent) != 0 {
		t.Fatalf("repeat sweep sent %d reminders, want 0", len(h.notifier.sent))
	}
}

func TestReminderSweepRespectsWindow(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness()
	event := h.readyDogWalkingEvent(ctx, t)
	h.notifier.sent = nil

	// too early: event is still 51h out
	h.reminders.Now = fixedClock(event.Date.Add(-51 * time.Hour))
	if err := h.reminders.SendUpcomingEventReminders(ctx); err != nil {
		t.Fatal(err)
	}
	// too late: window has passed
	h.reminders.Now = fixedClock(event.Date.Add(-47 * time.Hour))
	if err := h.reminders.SendUpcomingEventReminders(ctx); err != nil {
		t.Fatal(err)
	}

	if len(h.notifier.sent) != 0 {
		t.Fatalf("out-of-window sweeps sent %d reminders", len(h.notifier.sent))
	}
	if h.mustGetEvent(ctx, event.EventID).ReminderSent {
		t.Fatal("reminderSent set outside the window")
	}
}

func TestReminderSweepSkipsEventsStillPending(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness()
	event := h.singleDogWalkingEvent(ctx)
	h.notifier.sent = nil

	// nobody voted yet, so the event never left pending_join
	h.reminders.Now = fixedClock(event.Date.Add(-49 * time.Hour))
	if err := h.reminders.SendUpcomingEventReminders(ctx); err != nil {
		t.Fatal(err)
	}
	if len(h.notifier.sent) != 0 {
		t.Fatalf("pending event drew %d reminders", len(h.notifier.sent))
	}
}
