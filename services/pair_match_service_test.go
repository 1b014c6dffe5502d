package services

import (
	"context"
	"testing"

	"pairup_server/models"
)

func TestBuildPairKeyStableUnderSwap(t *testing.T) {
	if models.BuildPairKey("zoe", "adam") != models.BuildPairKey("adam", "zoe") {
		t.Fatal("pair key must be stable under user order swap")
	}
	if models.BuildPairKey("adam", "zoe") != "adam#zoe" {
		t.Fatalf("unexpected pair key %s", models.BuildPairKey("adam", "zoe"))
	}
}

func TestUpsertPairMatchDerivation(t *testing.T) {
	openWeekend := map[string]models.DayAvailability{"2025-03-15": eveningDay()}

	tests := []struct {
		name            string
		interestsA      []string
		interestsB      []string
		availabilityA   map[string]models.DayAvailability
		availabilityB   map[string]models.DayAvailability
		wantQueueStatus string
		wantEventType   string
	}{
		{
			name:            "no availability overlap",
			interestsA:      []string{"dogs"},
			interestsB:      []string{"dogs"},
			availabilityA:   map[string]models.DayAvailability{"2025-03-15": {Morning: true, Afternoon: true}},
			availabilityB:   map[string]models.DayAvailability{"2025-03-15": {Evening: true, Night: true}},
			wantQueueStatus: models.QueueStatusAwaitingAvailability,
		},
		{
			name:            "one shared segment is below threshold",
			interestsA:      []string{"dogs"},
			interestsB:      []string{"dogs"},
			availabilityA:   map[string]models.DayAvailability{"2025-03-15": {Evening: true}},
			availabilityB:   openWeekend,
			wantQueueStatus: models.QueueStatusAwaitingAvailability,
		},
		{
			name:            "availability but no shared event type",
			interestsA:      []string{"dogs"},
			interestsB:      []string{"chess"},
			availabilityA:   openWeekend,
			availabilityB:   openWeekend,
			wantQueueStatus: models.QueueStatusAwaitingEventType,
		},
		{
			name:            "both present queues with first shared type",
			interestsA:      []string{"coffee", "dogs"},
			interestsB:      []string{"dogs", "coffee"},
			availabilityA:   openWeekend,
			availabilityB:   openWeekend,
			wantQueueStatus: models.QueueStatusQueued,
			wantEventType:   models.EventTypeCoffee,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			h := newTestHarness()
			seedUser(h.store, "ana", tc.interestsA, tc.availabilityA)
			seedUser(h.store, "bob", tc.interestsB, tc.availabilityB)

			pair, err := h.pairs.UpsertPairMatch(ctx, "ana", "bob")
			if err != nil {
				t.Fatalf("upsert failed: %v", err)
			}
			if pair.QueueStatus != tc.wantQueueStatus {
				t.Fatalf("queueStatus = %s, want %s", pair.QueueStatus, tc.wantQueueStatus)
			}
			if pair.QueueEventType != tc.wantEventType {
				t.Fatalf("queueEventType = %s, want %s", pair.QueueEventType, tc.wantEventType)
			}
			if pair.Status != models.PairStatusActive {
				t.Fatalf("status = %s, want active", pair.Status)
			}
		})
	}
}

func TestUpsertPairMatchIdenticalInputsIdenticalDerivation(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness()
	availability := map[string]models.DayAvailability{"2025-03-15": eveningDay()}
	seedUser(h.store, "p", []string{"dogs"}, availability)
	seedUser(h.store, "q", []string{"dogs"}, availability)
	seedUser(h.store, "r", []string{"dogs"}, availability)
	seedUser(h.store, "s", []string{"dogs"}, availability)

	first, err := h.pairs.UpsertPairMatch(ctx, "p", "q")
	if err != nil {
		t.Fatal(err)
	}
	second, err := h.pairs.UpsertPairMatch(ctx, "r", "s")
	if err != nil {
		t.Fatal(err)
	}
	if first.QueueStatus != second.QueueStatus || first.QueueEventType != second.QueueEventType ||
		first.AvailabilityOverlapCount != second.AvailabilityOverlapCount {
		t.Fatalf("identical inputs diverged: %+v vs %+v", first, second)
	}
}

func TestUpsertPairMatchIdempotentAndPreservesAssignment(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness()
	event := h.singleDogWalkingEvent(ctx)

	pairKey := event.PendingPairMatchIDs[0]
	before := h.mustGetPair(ctx, pairKey)
	if before.QueueStatus != models.QueueStatusInEvent || before.PendingEventID != event.EventID {
		t.Fatalf("fixture pair not in event: %+v", before)
	}

	// another mutual like recomputes derived fields but keeps the assignment
	after, err := h.pairs.UpsertPairMatch(ctx, before.UserIDs[0], before.UserIDs[1])
	if err != nil {
		t.Fatal(err)
	}
	if after.QueueStatus != models.QueueStatusInEvent {
		t.Fatalf("queueStatus = %s, want in_event", after.QueueStatus)
	}
	if after.PendingEventID != event.EventID {
		t.Fatalf("pendingEventId = %s, want %s", after.PendingEventID, event.EventID)
	}
}

func TestQueryQueuedOrdersOldestFirst(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness()
	keys := h.queueDogWalkingPairs(ctx, [][2]string{{"u1", "v1"}, {"u2", "v2"}, {"u3", "v3"}})

	queued, err := h.pairs.QueryQueued(ctx, models.EventTypeDogWalking)
	if err != nil {
		t.Fatal(err)
	}
	if len(queued) != 3 {
		t.Fatalf("expected 3 queued pairs, got %d", len(queued))
	}
	for i, key := range keys {
		if queued[i].PairKey != key {
			t.Fatalf("position %d: got %s, want %s", i, queued[i].PairKey, key)
		}
	}
}

func TestUnmatchRetiresPair(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness()
	seedDogWalker(h.store, "mia")
	seedDogWalker(h.store, "noah")
	if _, err := h.pairs.UpsertPairMatch(ctx, "mia", "noah"); err != nil {
		t.Fatal(err)
	}

	pair, err := h.pairs.Unmatch(ctx, "mia", "noah")
	if err != nil {
		t.Fatal(err)
	}
	if pair.Status != models.PairStatusInactive {
		t.Fatalf("status = %s, want inactive", pair.Status)
	}
	if pair.QueueStatus != models.QueueStatusSidelined {
		t.Fatalf("queueStatus = %s, want sidelined", pair.QueueStatus)
	}

	active, err := h.pairs.QueryForUser(ctx, "mia")
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active pairs, got %d", len(active))
	}
}
