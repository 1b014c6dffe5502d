package services

import (
	"reflect"
	"testing"
	"time"

	"pairup_server/models"
)

func TestComputeAvailabilityOverlapSymmetric(t *testing.T) {
	a := map[string]models.DayAvailability{
		"2025-03-15": {Morning: true, Evening: true},
		"2025-03-16": {Afternoon: true},
	}
	b := map[string]models.DayAvailability{
		"2025-03-15": {Morning: true, Evening: true, Night: true},
		"2025-03-17": {Morning: true},
	}

	overlapAB, totalAB := ComputeAvailabilityOverlap(a, b, referenceTime)
	overlapBA, totalBA := ComputeAvailabilityOverlap(b, a, referenceTime)

	if totalAB != totalBA {
		t.Fatalf("totals differ: %d vs %d", totalAB, totalBA)
	}
	if !reflect.DeepEqual(overlapAB, overlapBA) {
		t.Fatalf("overlaps differ: %+v vs %+v", overlapAB, overlapBA)
	}
	if totalAB != 2 {
		t.Fatalf("expected 2 shared segments, got %d", totalAB)
	}
	if overlapAB[0].Date != "2025-03-15" {
		t.Fatalf("unexpected overlap date %s", overlapAB[0].Date)
	}
	want := []string{models.SegmentMorning, models.SegmentEvening}
	if !reflect.DeepEqual(overlapAB[0].Segments, want) {
		t.Fatalf("unexpected segments %v", overlapAB[0].Segments)
	}
}

func TestComputeAvailabilityOverlapBlockedDay(t *testing.T) {
	a := map[string]models.DayAvailability{
		"2025-03-15": {Morning: true, Afternoon: true, Evening: true, Night: true, Blocked: true},
	}
	b := map[string]models.DayAvailability{
		"2025-03-15": openDay(),
	}

	overlap, total := ComputeAvailabilityOverlap(a, b, referenceTime)
	if total != 0 || len(overlap) != 0 {
		t.Fatalf("blocked day contributed %d segments: %+v", total, overlap)
	}

	// blocked on the other side too
	overlap, total = ComputeAvailabilityOverlap(b, a, referenceTime)
	if total != 0 || len(overlap) != 0 {
		t.Fatalf("blocked day contributed %d segments: %+v", total, overlap)
	}
}

func TestComputeAvailabilityOverlapOrderedByDate(t *testing.T) {
	days := map[string]models.DayAvailability{
		"2025-03-20": {Morning: true},
		"2025-03-12": {Morning: true},
		"2025-03-16": {Morning: true},
	}

	overlap, total := ComputeAvailabilityOverlap(days, days, referenceTime)
	if total != 3 {
		t.Fatalf("expected 3 segments, got %d", total)
	}
	got := []string{overlap[0].Date, overlap[1].Date, overlap[2].Date}
	want := []string{"2025-03-12", "2025-03-16", "2025-03-20"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dates out of order: %v", got)
	}
}

func TestNormalizeAvailability(t *testing.T) {
	now := referenceTime
	tests := []struct {
		name     string
		input    map[string]models.DayAvailability
		wantKeys []string
	}{
		{
			name: "drops past dates",
			input: map[string]models.DayAvailability{
				"2025-03-01": openDay(),
				"2025-03-15": openDay(),
			},
			wantKeys: []string{"2025-03-15"},
		},
		{
			name: "keeps today",
			input: map[string]models.DayAvailability{
				"2025-03-10": openDay(),
			},
			wantKeys: []string{"2025-03-10"},
		},
		{
			name: "canonicalizes loose formats",
			input: map[string]models.DayAvailability{
				"2025/03/15": openDay(),
				"2025-3-9":   openDay(), // past once canonicalized
			},
			wantKeys: []string{"2025-03-15"},
		},
		{
			name: "drops malformed keys",
			input: map[string]models.DayAvailability{
				"not-a-date": openDay(),
				"15-03-2025": openDay(),
			},
			wantKeys: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			normalized := NormalizeAvailability(tc.input, now)
			if len(normalized) != len(tc.wantKeys) {
				t.Fatalf("got %d entries, want %d: %+v", len(normalized), len(tc.wantKeys), normalized)
			}
			for _, key := range tc.wantKeys {
				if _, ok := normalized[key]; !ok {
					t.Fatalf("missing key %s in %+v", key, normalized)
				}
			}
		})
	}
}

func TestComputeAvailabilityOverlapMalformedDegrades(t *testing.T) {
	a := map[string]models.DayAvailability{
		"garbage": openDay(),
	}
	b := map[string]models.DayAvailability{
		"2025-03-15": openDay(),
	}

	overlap, total := ComputeAvailabilityOverlap(a, b, referenceTime)
	if total != 0 || overlap != nil {
		t.Fatalf("malformed data should degrade to no overlap, got %d: %+v", total, overlap)
	}
}

func TestSufficientOverlap(t *testing.T) {
	if SufficientOverlap(1) {
		t.Fatal("1 segment should not be sufficient")
	}
	if !SufficientOverlap(models.MinOverlapSegments) {
		t.Fatal("threshold segments should be sufficient")
	}
}

func TestSuggestedEventDate(t *testing.T) {
	date := suggestedEventDate([]models.OverlapDay{
		{Date: "2025-03-15", Segments: []string{models.SegmentEvening, models.SegmentNight}},
	})
	if date == nil {
		t.Fatal("expected a date")
	}
	want := time.Date(2025, 3, 15, 19, 0, 0, 0, time.UTC)
	if !date.Equal(want) {
		t.Fatalf("got %s, want %s", date, want)
	}

	if suggestedEventDate(nil) != nil {
		t.Fatal("no suggestions should yield no date")
	}
}
