package services

import (
	"sort"
	"time"

	"pairup_server/models"
)

// dateLayouts accepted when canonicalizing availability keys. Anything else
// is treated as malformed and dropped.
var dateLayouts = []string{"2006-01-02", "2006-1-2", "2006/01/02"}

// canonicalDate parses a raw availability key into YYYY-MM-DD form.
func canonicalDate(raw string) (string, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// NormalizeAvailability canonicalizes date keys and drops past dates and
// malformed entries. Missing segment flags are already false by the zero
// value. Never errors: bad data degrades to an empty map.
func NormalizeAvailability(availability map[string]models.DayAvailability, now time.Time) map[string]models.DayAvailability {
	today := now.UTC().Format("2006-01-02")
	normalized := make(map[string]models.DayAvailability, len(availability))
	for raw, day := range availability {
		date, ok := canonicalDate(raw)
		if !ok || date < today {
			continue
		}
		normalized[date] = day
	}
	return normalized
}

// segmentsInCommon returns the segments free on both sides of one day, in the
// fixed morning/afternoon/evening/night order.
func segmentsInCommon(a, b models.DayAvailability) []string {
	var segments []string
	if a.Morning && b.Morning {
		segments = append(segments, models.SegmentMorning)
	}
	if a.Afternoon && b.Afternoon {
		segments = append(segments, models.SegmentAfternoon)
	}
	if a.Evening && b.Evening {
		segments = append(segments, models.SegmentEvening)
	}
	if a.Night && b.Night {
		segments = append(segments, models.SegmentNight)
	}
	return segments
}

// ComputeAvailabilityOverlap returns the shared free segments of two users'
// calendars, ordered by date ascending, plus the total segment count. A day
// blocked on either side contributes nothing. Pure and symmetric in its
// arguments.
func ComputeAvailabilityOverlap(availabilityA, availabilityB map[string]models.DayAvailability, now time.Time) ([]models.OverlapDay, int) {
	a := NormalizeAvailability(availabilityA, now)
	b := NormalizeAvailability(availabilityB, now)

	var overlap []models.OverlapDay
	total := 0
	for date, dayA := range a {
		dayB, ok := b[date]
		if !ok || dayA.Blocked || dayB.Blocked {
			continue
		}
		segments := segmentsInCommon(dayA, dayB)
		if len(segments) == 0 {
			continue
		}
		overlap = append(overlap, models.OverlapDay{Date: date, Segments: segments})
		total += len(segments)
	}
	sort.Slice(overlap, func(i, j int) bool { return overlap[i].Date < overlap[j].Date })
	return overlap, total
}

// SufficientOverlap reports whether a segment count clears the queueing
// threshold.
func SufficientOverlap(totalSegments int) bool {
	return totalSegments >= models.MinOverlapSegments
}
