package services

import (
	"context"
	"sync"
	"time"

	"pairup_server/models"
)

// referenceTime anchors every test clock.
var referenceTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// openDay is a fully free day.
func openDay() models.DayAvailability {
	return models.DayAvailability{Morning: true, Afternoon: true, Evening: true, Night: true}
}

func eveningDay() models.DayAvailability {
	return models.DayAvailability{Evening: true, Night: true}
}

func seedUser(store *MemoryStore, userID string, interests []string, availability map[string]models.DayAvailability) {
	store.SeedUserProfile(&models.UserProfile{
		UserID:       userID,
		Interests:    interests,
		Availability: availability,
	})
}

// seedDogWalker seeds a user who maps to dog_walking with two shared evening
// segments.
func seedDogWalker(store *MemoryStore, userID string) {
	seedUser(store, userID, []string{"dogs"}, map[string]models.DayAvailability{
		"2025-03-15": eveningDay(),
	})
}

type recordedNotification struct {
	UserID  string
	Payload models.NotificationPayload
}

// fakeNotifier records notifications for assertions.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []recordedNotification
}

func (f *fakeNotifier) Send(ctx context.Context, userID string, payload models.NotificationPayload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, recordedNotification{UserID: userID, Payload: payload})
}

func (f *fakeNotifier) sentTo(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, rec := range f.sent {
		if rec.UserID == userID {
			n++
		}
	}
	return n
}

// fakeGroupChat records room calls and can be made to fail.
type fakeGroupChat struct {
	calls  int
	roomID string
	fail   bool
}

func (f *fakeGroupChat) CreateOrUpdateEventChatRoom(ctx context.Context, event *models.Event, memberIDs []string, venue *models.VenueOption) (string, error) {
	f.calls++
	if f.fail {
		return "", context.DeadlineExceeded
	}
	if f.roomID == "" {
		f.roomID = "room-" + event.EventID
	}
	return f.roomID, nil
}

// testHarness bundles the full service graph over a memory store.
type testHarness struct {
	store         *MemoryStore
	pairs         *PairMatchService
	orchestrator  *EventOrchestratorService
	participation *EventParticipationService
	reminders     *EventReminderService
	notifier      *fakeNotifier
	chat          *fakeGroupChat
}

func newTestHarness() *testHarness {
	store := NewMemoryStore()
	notifier := &fakeNotifier{}
	chat := &fakeGroupChat{}

	pairs := NewPairMatchService(store)
	pairs.Now = fixedClock(referenceTime)

	orchestrator := NewEventOrchestratorService(store, pairs, &VenueCatalog{}, notifier)
	orchestrator.Now = fixedClock(referenceTime)

	participation := NewEventParticipationService(store, orchestrator, chat, notifier)
	participation.Now = fixedClock(referenceTime)

	reminders := NewEventReminderService(store, notifier)
	reminders.Now = fixedClock(referenceTime)

	return &testHarness{
		store:         store,
		pairs:         pairs,
		orchestrator:  orchestrator,
		participation: participation,
		reminders:     reminders,
		notifier:      notifier,
		chat:          chat,
	}
}

// queueDogWalkingPairs seeds and queues pairs (a1,b1), (a2,b2), ... and
// returns their pair keys in queue order.
func (h *testHarness) queueDogWalkingPairs(ctx context.Context, users [][2]string) []string {
	var keys []string
	for i, pair := range users {
		seedDogWalker(h.store, pair[0])
		seedDogWalker(h.store, pair[1])
		// distinct availabilityComputedAt per pair fixes the queue order
		h.pairs.Now = fixedClock(referenceTime.Add(time.Duration(i) * time.Minute))
		result, err := h.pairs.UpsertPairMatch(ctx, pair[0], pair[1])
		if err != nil {
			panic(err)
		}
		keys = append(keys, result.PairKey)
	}
	h.pairs.Now = fixedClock(referenceTime)
	return keys
}

// singleDogWalkingEvent queues two pairs and drains the queue, returning the
// created event.
func (h *testHarness) singleDogWalkingEvent(ctx context.Context) *models.Event {
	h.queueDogWalkingPairs(ctx, [][2]string{{"alice", "ben"}, {"cara", "dev"}})
	if err := h.orchestrator.ProcessQueueForEventType(ctx, models.EventTypeDogWalking); err != nil {
		panic(err)
	}
	events := h.allEvents()
	if len(events) != 1 {
		panic("expected exactly one event")
	}
	return events[0]
}

func (h *testHarness) allEvents() []*models.Event {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	var events []*models.Event
	for _, event := range h.store.events {
		events = append(events, clone(event))
	}
	return events
}

func (h *testHarness) mustGetEvent(ctx context.Context, eventID string) *models.Event {
	event, err := h.store.GetEvent(ctx, eventID)
	if err != nil {
		panic(err)
	}
	return event
}

func (h *testHarness) mustGetPair(ctx context.Context, pairKey string) *models.PairMatch {
	pair, err := h.store.GetPairMatch(ctx, pairKey)
	if err != nil {
		panic(err)
	}
	return pair
}

func (h *testHarness) mustGetUser(ctx context.Context, userID string) *models.UserProfile {
	profile, err := h.store.GetUserProfile(ctx, userID)
	if err != nil {
		panic(err)
	}
	return profile
}
