package services

import (
	"reflect"
	"testing"

	"pairup_server/models"
)

func TestMapInterestsToEventTypes(t *testing.T) {
	tests := []struct {
		name      string
		interests []string
		want      []string
	}{
		{
			name:      "maps known labels in order",
			interests: []string{"dogs", "coffee", "hiking"},
			want:      []string{models.EventTypeDogWalking, models.EventTypeCoffee, models.EventTypeHiking},
		},
		{
			name:      "normalizes case and whitespace",
			interests: []string{"  Dogs ", "BOARD GAMES"},
			want:      []string{models.EventTypeDogWalking, models.EventTypeBoardGames},
		},
		{
			name:      "drops unknown labels",
			interests: []string{"astrophotography", "wine"},
			want:      []string{models.EventTypeBar},
		},
		{
			name:      "deduplicates by mapped type",
			interests: []string{"beer", "cocktails", "wine"},
			want:      []string{models.EventTypeBar},
		},
		{
			name:      "empty input",
			interests: nil,
			want:      nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MapInterestsToEventTypes(tc.interests)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSharedEventTypes(t *testing.T) {
	a := []string{"coffee", "dogs", "hiking"}
	b := []string{"hiking", "dogs", "chess"}

	// ordered by the first argument's mapped list
	got := SharedEventTypes(a, b)
	want := []string{models.EventTypeDogWalking, models.EventTypeHiking}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	got = SharedEventTypes(b, a)
	want = []string{models.EventTypeHiking, models.EventTypeDogWalking}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if shared := SharedEventTypes([]string{"coffee"}, []string{"chess"}); shared != nil {
		t.Fatalf("expected no shared types, got %v", shared)
	}
}
