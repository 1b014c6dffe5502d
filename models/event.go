package models

import "time"

// VenueOption is one candidate location offered to participants for a vote.
type VenueOption struct {
	VenueID string `dynamodbav:"venueId" json:"venueId"`
	Name    string `dynamodbav:"name" json:"name"`
	Address string `dynamodbav:"address,omitempty" json:"address,omitempty"`
}

// Event is a candidate or confirmed group gathering assembled from queued
// pair matches.
type Event struct {
	EventID             string            `dynamodbav:"eventId" json:"eventId"`
	EventType           string            `dynamodbav:"eventType" json:"eventType"`
	Status              string            `dynamodbav:"status" json:"status"`
	RequiredPairCount   int               `dynamodbav:"requiredPairCount" json:"requiredPairCount"`
	PendingPairMatchIDs []string          `dynamodbav:"pendingPairMatchIds,omitempty" json:"pendingPairMatchIds,omitempty"`
	ParticipantUserIDs  []string          `dynamodbav:"participantUserIds,omitempty" json:"participantUserIds,omitempty"`
	ParticipantStatuses map[string]string `dynamodbav:"participantStatuses,omitempty" json:"participantStatuses,omitempty"`
	SuggestedDates      []OverlapDay      `dynamodbav:"suggestedDates,omitempty" json:"suggestedDates,omitempty"`
	Date                *time.Time        `dynamodbav:"date,omitempty" json:"date,omitempty"`
	VenueOptions        []VenueOption     `dynamodbav:"venueOptions,omitempty" json:"venueOptions,omitempty"`
	VenueVoteTotals     map[string]int    `dynamodbav:"venueVoteTotals,omitempty" json:"venueVoteTotals,omitempty"`
	VotesSubmittedCount int               `dynamodbav:"votesSubmittedCount" json:"votesSubmittedCount"`
	FinalVenueOptionID  string            `dynamodbav:"finalVenueOptionId,omitempty" json:"finalVenueOptionId,omitempty"`
	ChatRoomID          string            `dynamodbav:"chatRoomId,omitempty" json:"chatRoomId,omitempty"`
	ReminderSent        bool              `dynamodbav:"reminderSent" json:"reminderSent"`
	CreatedAt           time.Time         `dynamodbav:"createdAt" json:"createdAt"`
	LastUpdated         time.Time         `dynamodbav:"lastUpdated" json:"lastUpdated"`
	Version             int64             `dynamodbav:"version" json:"version"`
}

// StatusOf returns the participant status for a user, or "" when the user has
// no entry.
func (e *Event) StatusOf(userID string) string {
	return e.ParticipantStatuses[userID]
}

// HasParticipant reports whether the user id is in participantUserIds.
func (e *Event) HasParticipant(userID string) bool {
	for _, id := range e.ParticipantUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// CountByStatus counts participant entries currently in the given status.
func (e *Event) CountByStatus(status string) int {
	n := 0
	for _, s := range e.ParticipantStatuses {
		if s == status {
			n++
		}
	}
	return n
}

// ActiveParticipantIDs returns participants that have not canceled or been
// removed, in participantUserIds order.
func (e *Event) ActiveParticipantIDs() []string {
	var ids []string
	for _, id := range e.ParticipantUserIDs {
		s := e.ParticipantStatuses[id]
		if s != ParticipantStatusCanceled && s != ParticipantStatusRemoved {
			ids = append(ids, id)
		}
	}
	return ids
}

// VenueOption returns the option with the given id, or nil.
func (e *Event) VenueOption(venueID string) *VenueOption {
	for i := range e.VenueOptions {
		if e.VenueOptions[i].VenueID == venueID {
			return &e.VenueOptions[i]
		}
	}
	return nil
}

// CheckParticipantInvariant verifies that participantUserIds and
// participantStatuses describe the same membership.
func (e *Event) CheckParticipantInvariant() bool {
	if len(e.ParticipantUserIDs) != len(e.ParticipantStatuses) {
		return false
	}
	for _, id := range e.ParticipantUserIDs {
		if _, ok := e.ParticipantStatuses[id]; !ok {
			return false
		}
	}
	return true
}

// EventsTable is the DynamoDB table name for events
const EventsTable = "Events"

// EventStatusDateIndex is the GSI used by the reminder sweep
// (status partition, date sort key).
const EventStatusDateIndex = "status-date-index"
