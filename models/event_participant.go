package models

import "time"

// EventParticipant is the materialized per-(event,user) record, kept
// consistent with the matching entry in Event.participantStatuses.
type EventParticipant struct {
	ParticipantID     string    `dynamodbav:"participantId" json:"participantId"` // "<eventId>_<userId>"
	EventID           string    `dynamodbav:"eventId" json:"eventId"`
	UserID            string    `dynamodbav:"userId" json:"userId"`
	PairKey           string    `dynamodbav:"pairKey,omitempty" json:"pairKey,omitempty"`
	Status            string    `dynamodbav:"status" json:"status"`
	VoteVenueOptionID string    `dynamodbav:"voteVenueOptionId,omitempty" json:"voteVenueOptionId,omitempty"`
	CreatedAt         time.Time `dynamodbav:"createdAt" json:"createdAt"`
	LastUpdated       time.Time `dynamodbav:"lastUpdated" json:"lastUpdated"`
	Version           int64     `dynamodbav:"version" json:"version"`
}

// BuildParticipantID derives the composite key for an event participant.
func BuildParticipantID(eventID, userID string) string {
	return eventID + "_" + userID
}

// EventParticipantsTable is the DynamoDB table name for event participants
const EventParticipantsTable = "EventParticipants"

// ParticipantEventIndex is the GSI for listing participants of one event.
const ParticipantEventIndex = "eventId-index"
