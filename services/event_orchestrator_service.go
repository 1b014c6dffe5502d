package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"pairup_server/models"

	"github.com/google/uuid"
)

// errStalePairs signals that a creation batch contained pairs that were no
// longer queued when the transaction re-read them.
var errStalePairs = errors.New("batch contained stale pairs")

// EventOrchestratorService drains queued pairs into new events and tops up
// under-filled events when a vacancy opens. Both entry points are idempotent
// and safe to retry.
type EventOrchestratorService struct {
	Store       Store
	PairMatches *PairMatchService
	Venues      *VenueCatalog
	Notifier    Notifier
	Now         func() time.Time
}

func NewEventOrchestratorService(store Store, pairMatches *PairMatchService, venues *VenueCatalog, notifier Notifier) *EventOrchestratorService {
	return &EventOrchestratorService{
		Store:       store,
		PairMatches: pairMatches,
		Venues:      venues,
		Notifier:    notifier,
		Now:         time.Now,
	}
}

// RequiredPairCount returns how many pairs one event of the type needs.
func RequiredPairCount(eventType string) int {
	return models.EventTypeGroupSizes[eventType] / 2
}

// ProcessAllQueues drains every event type's queue in sequence. A failure in
// one type is logged and does not stop the others.
func (s *EventOrchestratorService) ProcessAllQueues(ctx context.Context) error {
	for _, eventType := range models.AllEventTypes {
		if err := s.ProcessQueueForEventType(ctx, eventType); err != nil {
			log.Printf("⚠️ Queue processing failed for %s: %v", eventType, err)
		}
	}
	return nil
}

// ProcessQueueForEventType pulls queued pairs oldest-first and creates one
// event per full batch of required pairs. Leftover pairs stay queued.
func (s *EventOrchestratorService) ProcessQueueForEventType(ctx context.Context, eventType string) error {
	required := RequiredPairCount(eventType)
	if required == 0 {
		return nil
	}

	pairs, err := s.PairMatches.QueryQueued(ctx, eventType)
	if err != nil {
		return fmt.Errorf("failed to pull queue for %s: %w", eventType, err)
	}

	for len(pairs) >= required {
		batch := pairs[:required]
		stale, err := s.createEventFromPairs(ctx, eventType, required, batch)
		if errors.Is(err, errStalePairs) {
			pairs = dropPairs(pairs, stale)
			continue
		}
		if err != nil {
			return err
		}
		pairs = pairs[required:]
	}
	return nil
}

func dropPairs(pairs []models.PairMatch, keys map[string]bool) []models.PairMatch {
	var kept []models.PairMatch
	for _, p := range pairs {
		if !keys[p.PairKey] {
			kept = append(kept, p)
		}
	}
	return kept
}

// createEventFromPairs atomically creates one event from a batch of pairs,
// marks the pairs in_event, and pushes a pending assignment onto every
// affected user. Pairs that left the queue since the pull are reported back
// as stale so the caller can retry without them.
func (s *EventOrchestratorService) createEventFromPairs(ctx context.Context, eventType string, required int, batch []models.PairMatch) (map[string]bool, error) {
	now := s.Now()
	eventID := uuid.NewString()
	stale := map[string]bool{}
	var userIDs []string

	err := s.Store.RunTransaction(ctx, func(tx Txn) error {
		stale = map[string]bool{}
		userIDs = nil
		var chosen []*models.PairMatch
		for _, candidate := range batch {
			pair, err := tx.GetPairMatch(ctx, candidate.PairKey)
			if err != nil {
				stale[candidate.PairKey] = true
				continue
			}
			if pair.QueueStatus != models.QueueStatusQueued || pair.PendingEventID != "" {
				stale[candidate.PairKey] = true
				continue
			}
			chosen = append(chosen, pair)
		}
		if len(chosen) < required {
			return errStalePairs
		}

		event := &models.Event{
			EventID:             eventID,
			EventType:           eventType,
			Status:              models.EventStatusPendingJoin,
			RequiredPairCount:   required,
			ParticipantStatuses: map[string]string{},
			VenueOptions:        s.Venues.OptionsFor(eventType),
			VenueVoteTotals:     map[string]int{},
			SuggestedDates:      mergeSuggestedDates(chosen),
			CreatedAt:           now,
			LastUpdated:         now,
		}
		event.Date = suggestedEventDate(event.SuggestedDates)

		for _, pair := range chosen {
			event.PendingPairMatchIDs = append(event.PendingPairMatchIDs, pair.PairKey)
			for _, userID := range pair.UserIDs {
				event.ParticipantUserIDs = append(event.ParticipantUserIDs, userID)
				event.ParticipantStatuses[userID] = models.ParticipantStatusPendingJoin
				userIDs = append(userIDs, userID)
			}
		}
		tx.PutEvent(event)

		for _, pair := range chosen {
			pair.QueueStatus = models.QueueStatusInEvent
			pair.PendingEventID = eventID
			pair.LastUpdated = now
			tx.PutPairMatch(pair)

			for _, userID := range pair.UserIDs {
				profile, err := tx.GetUserProfile(ctx, userID)
				if err != nil {
					return fmt.Errorf("failed to load profile %s: %w", userID, err)
				}
				profile.PendingEvents = append(profile.PendingEvents, models.PendingEventAssignment{
					EventID:    eventID,
					EventType:  eventType,
					Status:     models.ParticipantStatusPendingJoin,
					AssignedAt: now,
					UpdatedAt:  now,
				})
				tx.PutUserProfile(profile)

				tx.PutEventParticipant(&models.EventParticipant{
					ParticipantID: models.BuildParticipantID(eventID, userID),
					EventID:       eventID,
					UserID:        userID,
					PairKey:       pair.PairKey,
					Status:        models.ParticipantStatusPendingJoin,
					CreatedAt:     now,
					LastUpdated:   now,
				})
			}
		}
		return nil
	})
	if errors.Is(err, errStalePairs) {
		return stale, err
	}
	if err != nil {
		return nil, err
	}

	log.Printf("🎉 Event %s created for %s with %d pairs", eventID, eventType, required)
	s.notifyAssignment(ctx, userIDs, eventID, eventType)
	return nil, nil
}

// mergeSuggestedDates unions the overlap windows of the chosen pairs, capped
// to the soonest dates.
func mergeSuggestedDates(pairs []*models.PairMatch) []models.OverlapDay {
	segmentsByDate := map[string]map[string]bool{}
	for _, pair := range pairs {
		for _, day := range pair.AvailabilityOverlap {
			if segmentsByDate[day.Date] == nil {
				segmentsByDate[day.Date] = map[string]bool{}
			}
			for _, segment := range day.Segments {
				segmentsByDate[day.Date][segment] = true
			}
		}
	}

	var dates []string
	for date := range segmentsByDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	if len(dates) > models.MaxSuggestedDates {
		dates = dates[:models.MaxSuggestedDates]
	}

	ordered := []string{models.SegmentMorning, models.SegmentAfternoon, models.SegmentEvening, models.SegmentNight}
	var merged []models.OverlapDay
	for _, date := range dates {
		var segments []string
		for _, segment := range ordered {
			if segmentsByDate[date][segment] {
				segments = append(segments, segment)
			}
		}
		merged = append(merged, models.OverlapDay{Date: date, Segments: segments})
	}
	return merged
}

// segmentStartHours anchors each day segment to a concrete start hour for the
// event date.
var segmentStartHours = map[string]int{
	models.SegmentMorning:   9,
	models.SegmentAfternoon: 14,
	models.SegmentEvening:   19,
	models.SegmentNight:     21,
}

// suggestedEventDate picks the soonest suggested date and its first shared
// segment as the provisional event time.
func suggestedEventDate(suggested []models.OverlapDay) *time.Time {
	if len(suggested) == 0 || len(suggested[0].Segments) == 0 {
		return nil
	}
	day, err := time.Parse("2006-01-02", suggested[0].Date)
	if err != nil {
		return nil
	}
	date := day.Add(time.Duration(segmentStartHours[suggested[0].Segments[0]]) * time.Hour)
	return &date
}

// FillEventVacancies tops up an under-filled event with queued pairs of the
// same type, one candidate per transaction, oldest-first. A candidate that
// fails its preconditions is skipped.
func (s *EventOrchestratorService) FillEventVacancies(ctx context.Context, eventID string) error {
	event, err := s.Store.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.Status != models.EventStatusPendingJoin && event.Status != models.EventStatusReady {
		return nil
	}
	deficit := event.RequiredPairCount - len(event.PendingPairMatchIDs)
	if deficit <= 0 {
		return nil
	}

	candidates, err := s.PairMatches.QueryQueued(ctx, event.EventType)
	if err != nil {
		return fmt.Errorf("failed to pull queue for backfill: %w", err)
	}

	for _, candidate := range candidates {
		if deficit <= 0 {
			break
		}
		filled, err := s.tryBackfillPair(ctx, eventID, candidate.PairKey)
		if err != nil {
			log.Printf("⚠️ Backfill candidate %s skipped for event %s: %v", candidate.PairKey, eventID, err)
			continue
		}
		if filled {
			deficit--
		}
	}
	return nil
}

// tryBackfillPair attempts to seat one queued pair into the event inside a
// single transaction. Returns false when the event has no remaining vacancy.
func (s *EventOrchestratorService) tryBackfillPair(ctx context.Context, eventID, pairKey string) (bool, error) {
	now := s.Now()
	filled := false
	var userIDs []string
	var eventType string

	err := s.Store.RunTransaction(ctx, func(tx Txn) error {
		filled = false
		userIDs = nil

		event, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if event.Status != models.EventStatusPendingJoin && event.Status != models.EventStatusReady {
			return nil
		}
		if len(event.PendingPairMatchIDs) >= event.RequiredPairCount {
			return nil
		}
		eventType = event.EventType

		pair, err := tx.GetPairMatch(ctx, pairKey)
		if err != nil {
			return err
		}
		if pair.QueueStatus != models.QueueStatusQueued || pair.PendingEventID != "" {
			return fmt.Errorf("pair %s is no longer queued: %w", pairKey, models.ErrInvalidState)
		}

		profiles := make([]*models.UserProfile, 0, 2)
		for _, userID := range pair.UserIDs {
			if event.HasParticipant(userID) {
				return fmt.Errorf("user %s already participates in event %s: %w", userID, eventID, models.ErrInvalidState)
			}
			profile, err := tx.GetUserProfile(ctx, userID)
			if err != nil {
				return err
			}
			if profile.IsBanned(now) {
				return fmt.Errorf("user %s is banned from events: %w", userID, models.ErrForbidden)
			}
			for _, assignment := range profile.PendingEvents {
				if assignment.EventID == eventID {
					continue
				}
				if assignment.EventType != event.EventType {
					continue
				}
				if assignment.Status == models.ParticipantStatusPendingJoin || assignment.Status == models.ParticipantStatusJoined {
					return fmt.Errorf("user %s already tied to a %s event: %w", userID, event.EventType, models.ErrInvalidState)
				}
			}
			profiles = append(profiles, profile)
		}

		event.PendingPairMatchIDs = append(event.PendingPairMatchIDs, pair.PairKey)
		for _, userID := range pair.UserIDs {
			event.ParticipantUserIDs = append(event.ParticipantUserIDs, userID)
			event.ParticipantStatuses[userID] = models.ParticipantStatusPendingJoin
			userIDs = append(userIDs, userID)
		}
		event.LastUpdated = now
		tx.PutEvent(event)

		pair.QueueStatus = models.QueueStatusInEvent
		pair.PendingEventID = eventID
		pair.LastUpdated = now
		tx.PutPairMatch(pair)

		for i, userID := range pair.UserIDs {
			profile := profiles[i]
			// a user who canceled out of this event earlier keeps one
			// assignment per eventId: reset the old entry instead of
			// appending a second one
			if assignment := profile.AssignmentFor(eventID); assignment != nil {
				assignment.Status = models.ParticipantStatusPendingJoin
				assignment.AssignedAt = now
				assignment.UpdatedAt = now
			} else {
				profile.PendingEvents = append(profile.PendingEvents, models.PendingEventAssignment{
					EventID:    eventID,
					EventType:  event.EventType,
					Status:     models.ParticipantStatusPendingJoin,
					AssignedAt: now,
					UpdatedAt:  now,
				})
			}
			tx.PutUserProfile(profile)

			tx.PutEventParticipant(&models.EventParticipant{
				ParticipantID: models.BuildParticipantID(eventID, userID),
				EventID:       eventID,
				UserID:        userID,
				PairKey:       pair.PairKey,
				Status:        models.ParticipantStatusPendingJoin,
				CreatedAt:     now,
				LastUpdated:   now,
			})
		}
		filled = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if filled {
		log.Printf("🎉 Pair %s backfilled into event %s", pairKey, eventID)
		s.notifyAssignment(ctx, userIDs, eventID, eventType)
	}
	return filled, nil
}

func (s *EventOrchestratorService) notifyAssignment(ctx context.Context, userIDs []string, eventID, eventType string) {
	if s.Notifier == nil {
		return
	}
	for _, userID := range userIDs {
		s.Notifier.Send(ctx, userID, models.NotificationPayload{
			Title: "You're in!",
			Body:  fmt.Sprintf("A %s event is forming with your match. Tap to join.", eventType),
			Data:  map[string]string{"eventId": eventID, "eventType": eventType},
		})
	}
}
