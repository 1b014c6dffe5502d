package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"pairup_server/models"
)

// Reminder window: events are reminded once, 48 hours ahead, by a sweep that
// covers a two hour slice so ticks can never skip an event.
const (
	reminderLeadTime    = 48 * time.Hour
	reminderWindowWidth = 2 * time.Hour
)

// EventReminderService fires one reminder per ready event 48h before start.
type EventReminderService struct {
	Store    Store
	Notifier Notifier
	Now      func() time.Time
}

func NewEventReminderService(store Store, notifier Notifier) *EventReminderService {
	return &EventReminderService{Store: store, Notifier: notifier, Now: time.Now}
}

// SendUpcomingEventReminders sweeps ready events with a start inside
// [now+48h, now+50h) and notifies every joined participant. reminderSent is
// set exactly once per event regardless of delivery outcome; a failure on one
// event does not stop the sweep.
func (s *EventReminderService) SendUpcomingEventReminders(ctx context.Context) error {
	now := s.Now()
	from := now.Add(reminderLeadTime)
	to := from.Add(reminderWindowWidth)

	events, err := s.Store.QueryReminderCandidates(ctx, from, to)
	if err != nil {
		return fmt.Errorf("failed to query reminder candidates: %w", err)
	}
	log.Printf("🔍 Reminder sweep found %d events in [%s, %s)", len(events), from.Format(time.RFC3339), to.Format(time.RFC3339))

	for _, event := range events {
		if err := s.remindEvent(ctx, event.EventID); err != nil {
			log.Printf("⚠️ Reminder failed for event %s: %v", event.EventID, err)
		}
	}
	return nil
}

func (s *EventReminderService) remindEvent(ctx context.Context, eventID string) error {
	var recipients []string
	alreadySent := false

	err := s.Store.RunTransaction(ctx, func(tx Txn) error {
		recipients = nil
		alreadySent = false
		event, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if event.ReminderSent {
			alreadySent = true
			return nil
		}
		for _, userID := range event.ParticipantUserIDs {
			if event.ParticipantStatuses[userID] == models.ParticipantStatusJoined {
				recipients = append(recipients, userID)
			}
		}
		event.ReminderSent = true
		event.LastUpdated = s.Now()
		tx.PutEvent(event)
		return nil
	})
	if err != nil {
		return err
	}
	if alreadySent {
		return nil
	}

	if s.Notifier != nil {
		for _, userID := range recipients {
			s.Notifier.Send(ctx, userID, models.NotificationPayload{
				Title: "Your event is coming up",
				Body:  "It starts in about two days. Confirm you're still in!",
				Data:  map[string]string{"eventId": eventID},
			})
		}
	}
	log.Printf("✅ Reminder sent for event %s to %d participants", eventID, len(recipients))
	return nil
}
