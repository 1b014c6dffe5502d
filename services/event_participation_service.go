package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pairup_server/models"
)

// EventParticipationService is the per-event participant state machine driven
// by user actions: join, vote, confirm, cancel. Every mutation runs in one
// atomic transaction; collaborator calls (chat, notifications, backfill)
// happen after commit.
type EventParticipationService struct {
	Store        Store
	Orchestrator *EventOrchestratorService
	GroupChat    GroupChat
	Notifier     Notifier
	Now          func() time.Time
}

func NewEventParticipationService(store Store, orchestrator *EventOrchestratorService, groupChat GroupChat, notifier Notifier) *EventParticipationService {
	return &EventParticipationService{
		Store:        store,
		Orchestrator: orchestrator,
		GroupChat:    groupChat,
		Notifier:     notifier,
		Now:          time.Now,
	}
}

// JoinEvent moves a pending participant to joined. Idempotent on repeat
// join. Banned users are rejected with ErrForbidden.
func (s *EventParticipationService) JoinEvent(ctx context.Context, eventID, userID string) (*models.Event, *models.EventParticipant, error) {
	now := s.Now()
	var event *models.Event
	var participant *models.EventParticipant

	err := s.Store.RunTransaction(ctx, func(tx Txn) error {
		var err error
		event, err = tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		profile, err := tx.GetUserProfile(ctx, userID)
		if err != nil {
			return err
		}
		if profile.IsBanned(now) {
			return fmt.Errorf("user %s is banned until %s: %w", userID, profile.EventBanUntil.Format(time.RFC3339), models.ErrForbidden)
		}
		if !event.HasParticipant(userID) {
			return fmt.Errorf("user %s is not invited to event %s: %w", userID, eventID, models.ErrForbidden)
		}
		if event.Status != models.EventStatusPendingJoin && event.Status != models.EventStatusReady {
			return fmt.Errorf("event %s is %s: %w", eventID, event.Status, models.ErrInvalidState)
		}

		participant, err = tx.GetEventParticipant(ctx, models.BuildParticipantID(eventID, userID))
		if err != nil {
			return err
		}
		switch participant.Status {
		case models.ParticipantStatusJoined, models.ParticipantStatusConfirmed:
			return nil // repeat join is a no-op
		case models.ParticipantStatusPendingJoin:
		default:
			return fmt.Errorf("participant %s is %s: %w", userID, participant.Status, models.ErrInvalidState)
		}

		participant.Status = models.ParticipantStatusJoined
		participant.LastUpdated = now
		tx.PutEventParticipant(participant)

		event.ParticipantStatuses[userID] = models.ParticipantStatusJoined
		event.LastUpdated = now
		tx.PutEvent(event)

		if assignment := profile.AssignmentFor(eventID); assignment != nil {
			assignment.Status = models.ParticipantStatusJoined
			assignment.UpdatedAt = now
		}
		tx.PutUserProfile(profile)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	log.Printf("✅ User %s joined event %s", userID, eventID)
	return event, participant, nil
}

// SubmitVote records a venue vote for a joined participant. Changing a vote
// moves the tally. The first time every currently joined participant has
// voted, the leading venue is finalized irreversibly and, outside the
// transaction, the chat room is created and the event moves to ready.
func (s *EventParticipationService) SubmitVote(ctx context.Context, eventID, userID, venueOptionID string) (*models.Event, *models.EventParticipant, error) {
	now := s.Now()
	var event *models.Event
	var participant *models.EventParticipant
	finalized := false

	err := s.Store.RunTransaction(ctx, func(tx Txn) error {
		finalized = false
		var err error
		event, err = tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if event.Status != models.EventStatusPendingJoin && event.Status != models.EventStatusReady {
			return fmt.Errorf("event %s is %s: %w", eventID, event.Status, models.ErrInvalidState)
		}
		participant, err = tx.GetEventParticipant(ctx, models.BuildParticipantID(eventID, userID))
		if err != nil {
			return err
		}
		if participant.Status != models.ParticipantStatusJoined {
			return fmt.Errorf("participant %s is %s, voting requires joined: %w", userID, participant.Status, models.ErrInvalidState)
		}
		if event.VenueOption(venueOptionID) == nil {
			return fmt.Errorf("venue option %s is not offered by event %s: %w", venueOptionID, eventID, models.ErrInvalidState)
		}

		previous := participant.VoteVenueOptionID
		if previous == venueOptionID {
			return nil // unchanged vote is a no-op
		}
		if event.VenueVoteTotals == nil {
			event.VenueVoteTotals = map[string]int{}
		}
		if previous != "" {
			if event.VenueVoteTotals[previous] > 0 {
				event.VenueVoteTotals[previous]--
			}
		} else {
			event.VotesSubmittedCount++
		}
		event.VenueVoteTotals[venueOptionID]++

		participant.VoteVenueOptionID = venueOptionID
		participant.LastUpdated = now
		tx.PutEventParticipant(participant)

		// Quorum check reads the joined count from the participant map loaded
		// in this same transaction; a racing join serializes via the store.
		joinedCount := event.CountByStatus(models.ParticipantStatusJoined)
		if event.FinalVenueOptionID == "" && joinedCount > 0 && event.VotesSubmittedCount >= joinedCount {
			event.FinalVenueOptionID = s.winningVenue(event)
			finalized = true
		}

		event.LastUpdated = now
		tx.PutEvent(event)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if finalized {
		s.completeFinalization(ctx, event)
		// re-read so callers see the ready status
		if updated, err := s.Store.GetEvent(ctx, eventID); err == nil {
			event = updated
		}
	}
	return event, participant, nil
}

// winningVenue picks the highest tally, breaking ties by venue-option
// insertion order.
func (s *EventParticipationService) winningVenue(event *models.Event) string {
	best := ""
	bestVotes := -1
	for _, option := range event.VenueOptions {
		if votes := event.VenueVoteTotals[option.VenueID]; votes > bestVotes {
			best = option.VenueID
			bestVotes = votes
		}
	}
	return best
}

// completeFinalization runs the post-commit side of venue finalization: chat
// room creation, then the transition to ready. A chat failure leaves the
// event ready without a chatRoomId.
func (s *EventParticipationService) completeFinalization(ctx context.Context, event *models.Event) {
	venue := event.VenueOption(event.FinalVenueOptionID)
	var joined []string
	for _, userID := range event.ParticipantUserIDs {
		if event.ParticipantStatuses[userID] == models.ParticipantStatusJoined {
			joined = append(joined, userID)
		}
	}

	chatRoomID := ""
	if s.GroupChat != nil {
		id, err := s.GroupChat.CreateOrUpdateEventChatRoom(ctx, event, joined, venue)
		if err != nil {
			log.Printf("⚠️ Chat room creation failed for event %s: %v", event.EventID, err)
		} else {
			chatRoomID = id
		}
	}

	err := s.Store.RunTransaction(ctx, func(tx Txn) error {
		current, err := tx.GetEvent(ctx, event.EventID)
		if err != nil {
			return err
		}
		if current.Status == models.EventStatusPendingJoin {
			current.Status = models.EventStatusReady
		}
		if chatRoomID != "" {
			current.ChatRoomID = chatRoomID
		}
		current.LastUpdated = s.Now()
		tx.PutEvent(current)
		return nil
	})
	if err != nil {
		log.Printf("⚠️ Failed to mark event %s ready: %v", event.EventID, err)
		return
	}

	if s.Notifier != nil && venue != nil {
		for _, userID := range joined {
			s.Notifier.Send(ctx, userID, models.NotificationPayload{
				Title: "Venue locked in",
				Body:  fmt.Sprintf("Your group picked %s.", venue.Name),
				Data:  map[string]string{"eventId": event.EventID, "venueId": venue.VenueID},
			})
		}
	}
	log.Printf("🎉 Event %s finalized venue %s", event.EventID, event.FinalVenueOptionID)
}

// RespondToReminder handles a reminder reply: confirm attendance or cancel
// participation.
func (s *EventParticipationService) RespondToReminder(ctx context.Context, eventID, userID, action string) (*models.Event, *models.EventParticipant, error) {
	switch action {
	case "confirm":
		return s.confirmAttendance(ctx, eventID, userID)
	case "cancel":
		event, err := s.CancelParticipation(ctx, eventID, userID)
		return event, nil, err
	default:
		return nil, nil, fmt.Errorf("unknown reminder action '%s': %w", action, models.ErrInvalidState)
	}
}

func (s *EventParticipationService) confirmAttendance(ctx context.Context, eventID, userID string) (*models.Event, *models.EventParticipant, error) {
	now := s.Now()
	var event *models.Event
	var participant *models.EventParticipant

	err := s.Store.RunTransaction(ctx, func(tx Txn) error {
		var err error
		event, err = tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		participant, err = tx.GetEventParticipant(ctx, models.BuildParticipantID(eventID, userID))
		if err != nil {
			return err
		}
		if participant.Status != models.ParticipantStatusJoined && participant.Status != models.ParticipantStatusConfirmed {
			return fmt.Errorf("participant %s is %s, confirming requires joined: %w", userID, participant.Status, models.ErrInvalidState)
		}

		participant.Status = models.ParticipantStatusConfirmed
		participant.LastUpdated = now
		tx.PutEventParticipant(participant)

		event.ParticipantStatuses[userID] = models.ParticipantStatusConfirmed
		if allActiveConfirmed(event) {
			event.Status = models.EventStatusConfirmed
		}
		event.LastUpdated = now
		tx.PutEvent(event)

		profile, err := tx.GetUserProfile(ctx, userID)
		if err != nil {
			return err
		}
		if assignment := profile.AssignmentFor(eventID); assignment != nil {
			assignment.Status = models.ParticipantStatusConfirmed
			assignment.UpdatedAt = now
		}
		tx.PutUserProfile(profile)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	log.Printf("✅ User %s confirmed attendance for event %s", userID, eventID)
	return event, participant, nil
}

// allActiveConfirmed reports whether every non-canceled/removed participant
// has confirmed (or been externally completed).
func allActiveConfirmed(event *models.Event) bool {
	active := event.ActiveParticipantIDs()
	if len(active) == 0 {
		return false
	}
	for _, userID := range active {
		status := event.ParticipantStatuses[userID]
		if status != models.ParticipantStatusConfirmed && status != models.ParticipantStatusCompleted {
			return false
		}
	}
	return true
}

// CancelParticipation cancels a user's participation. The whole pair is
// forfeit: the partner is removed as well, both leave the event, the pair is
// sidelined for requeueing and the freed slots are backfilled. Three
// cancellations ban the user from events for seven days.
func (s *EventParticipationService) CancelParticipation(ctx context.Context, eventID, userID string) (*models.Event, error) {
	now := s.Now()
	var event *models.Event
	var pairKey string
	var partnerID string

	err := s.Store.RunTransaction(ctx, func(tx Txn) error {
		pairKey = ""
		partnerID = ""
		var err error
		event, err = tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		participant, err := tx.GetEventParticipant(ctx, models.BuildParticipantID(eventID, userID))
		if err != nil {
			return err
		}
		switch participant.Status {
		case models.ParticipantStatusCanceled:
			return nil // repeat cancel is a no-op
		case models.ParticipantStatusRemoved, models.ParticipantStatusCompleted:
			return fmt.Errorf("participant %s is %s: %w", userID, participant.Status, models.ErrInvalidState)
		}

		pairKey = participant.PairKey
		if pairKey == "" {
			pairKey, err = s.findPairForUser(ctx, tx, event, userID)
			if err != nil {
				return err
			}
		}
		pair, err := tx.GetPairMatch(ctx, pairKey)
		if err != nil {
			return err
		}
		partnerID = pair.PartnerOf(userID)

		// The canceling user's and the partner's vote contributions both leave
		// the tallies with their seats.
		s.retractVote(event, participant)
		participant.Status = models.ParticipantStatusCanceled
		participant.LastUpdated = now
		tx.PutEventParticipant(participant)

		if partnerID != "" {
			partner, err := tx.GetEventParticipant(ctx, models.BuildParticipantID(eventID, partnerID))
			if err == nil {
				s.retractVote(event, partner)
				if partner.Status != models.ParticipantStatusCanceled && partner.Status != models.ParticipantStatusCompleted {
					partner.Status = models.ParticipantStatusRemoved
				}
				partner.LastUpdated = now
				tx.PutEventParticipant(partner)
			} else if !errors.Is(err, models.ErrNotFound) {
				return err
			}
		}

		removeParticipant(event, userID)
		removeParticipant(event, partnerID)
		event.PendingPairMatchIDs = removeString(event.PendingPairMatchIDs, pairKey)

		switch {
		case len(event.ActiveParticipantIDs()) == 0:
			event.Status = models.EventStatusPendingJoin
		case allActiveConfirmed(event):
			event.Status = models.EventStatusConfirmed
		case event.FinalVenueOptionID != "":
			event.Status = models.EventStatusReady
		}
		event.LastUpdated = now
		tx.PutEvent(event)

		profile, err := tx.GetUserProfile(ctx, userID)
		if err != nil {
			return err
		}
		if assignment := profile.AssignmentFor(eventID); assignment != nil {
			assignment.Status = models.ParticipantStatusCanceled
			assignment.UpdatedAt = now
		}
		profile.EventCancelCount++
		if profile.EventCancelCount >= models.CancelCountBanThreshold {
			banUntil := now.Add(models.EventBanDays * 24 * time.Hour)
			profile.EventBanUntil = &banUntil
			profile.EventCancelCount = 0
			log.Printf("🚫 User %s banned from events until %s", userID, banUntil.Format(time.RFC3339))
		}
		tx.PutUserProfile(profile)

		if partnerID != "" {
			partnerProfile, err := tx.GetUserProfile(ctx, partnerID)
			if err == nil {
				if assignment := partnerProfile.AssignmentFor(eventID); assignment != nil {
					assignment.Status = models.ParticipantStatusRemoved
					assignment.UpdatedAt = now
				}
				tx.PutUserProfile(partnerProfile)
			} else if !errors.Is(err, models.ErrNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if pairKey == "" {
		// repeat cancel, nothing left to do
		return event, nil
	}

	s.releasePair(ctx, pairKey)

	if s.Notifier != nil && partnerID != "" {
		s.Notifier.Send(ctx, partnerID, models.NotificationPayload{
			Title: "Plans changed",
			Body:  "Your event spot was released because your match canceled.",
			Data:  map[string]string{"eventId": eventID},
		})
	}

	if s.Orchestrator != nil {
		if err := s.Orchestrator.FillEventVacancies(ctx, eventID); err != nil {
			log.Printf("⚠️ Backfill after cancellation failed for event %s: %v", eventID, err)
		}
	}

	log.Printf("✅ User %s canceled participation in event %s (pair %s released)", userID, eventID, pairKey)
	return event, nil
}

// findPairForUser locates the pair that seated the user by membership in the
// event's pending pair list.
func (s *EventParticipationService) findPairForUser(ctx context.Context, tx Txn, event *models.Event, userID string) (string, error) {
	for _, key := range event.PendingPairMatchIDs {
		pair, err := tx.GetPairMatch(ctx, key)
		if err != nil {
			continue
		}
		if pair.Contains(userID) {
			return key, nil
		}
	}
	return "", fmt.Errorf("no pair for user %s in event %s: %w", userID, event.EventID, models.ErrNotFound)
}

// retractVote removes a participant's vote contribution from the event
// tallies.
func (s *EventParticipationService) retractVote(event *models.Event, participant *models.EventParticipant) {
	if participant.VoteVenueOptionID == "" {
		return
	}
	if event.VenueVoteTotals[participant.VoteVenueOptionID] > 0 {
		event.VenueVoteTotals[participant.VoteVenueOptionID]--
	}
	if event.VotesSubmittedCount > 0 {
		event.VotesSubmittedCount--
	}
	participant.VoteVenueOptionID = ""
}

// releasePair resets the forfeited pair outside the cancellation transaction
// so it can requeue on the next mutual like.
func (s *EventParticipationService) releasePair(ctx context.Context, pairKey string) {
	err := s.Store.RunTransaction(ctx, func(tx Txn) error {
		pair, err := tx.GetPairMatch(ctx, pairKey)
		if err != nil {
			return err
		}
		pair.QueueStatus = models.QueueStatusSidelined
		pair.Status = models.PairStatusInactive
		pair.PendingEventID = ""
		pair.LastUpdated = s.Now()
		tx.PutPairMatch(pair)
		return nil
	})
	if err != nil {
		log.Printf("⚠️ Failed to release pair %s: %v", pairKey, err)
	}
}

func removeParticipant(event *models.Event, userID string) {
	if userID == "" {
		return
	}
	event.ParticipantUserIDs = removeString(event.ParticipantUserIDs, userID)
	delete(event.ParticipantStatuses, userID)
}

func removeString(items []string, target string) []string {
	var kept []string
	for _, item := range items {
		if item != target {
			kept = append(kept, item)
		}
	}
	return kept
}
