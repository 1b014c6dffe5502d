package models

import (
	"sort"
	"time"
)

// OverlapDay is one calendar day both users share, with the segments free on
// both sides.
type OverlapDay struct {
	Date     string   `dynamodbav:"date" json:"date"` // YYYY-MM-DD
	Segments []string `dynamodbav:"segments" json:"segments"`
}

// PairMatch records two mutually interested users and tracks them through the
// queueing pipeline toward event assignment.
type PairMatch struct {
	PairKey                   string       `dynamodbav:"pairKey" json:"pairKey"` // sorted "<userA>#<userB>"
	UserIDs                   []string     `dynamodbav:"userIds" json:"userIds"` // exactly two, sorted
	UserIDA                   string       `dynamodbav:"userIdA" json:"userIdA"` // first member, per-user GSI key
	UserIDB                   string       `dynamodbav:"userIdB" json:"userIdB"` // second member, per-user GSI key
	Status                    string       `dynamodbav:"status" json:"status"`   // active, inactive
	QueueStatus               string       `dynamodbav:"queueStatus" json:"queueStatus"`
	QueueEventType            string       `dynamodbav:"queueEventType,omitempty" json:"queueEventType,omitempty"`
	SuggestedEventType        string       `dynamodbav:"suggestedEventType,omitempty" json:"suggestedEventType,omitempty"`
	SharedEventTypes          []string     `dynamodbav:"sharedEventTypes,omitempty" json:"sharedEventTypes,omitempty"`
	AvailabilityOverlap       []OverlapDay `dynamodbav:"availabilityOverlap,omitempty" json:"availabilityOverlap,omitempty"`
	AvailabilityOverlapCount  int          `dynamodbav:"availabilityOverlapCount" json:"availabilityOverlapCount"`
	AvailabilityComputedAt    time.Time    `dynamodbav:"availabilityComputedAt" json:"availabilityComputedAt"`
	PendingEventID            string       `dynamodbav:"pendingEventId,omitempty" json:"pendingEventId,omitempty"`
	CreatedAt                 time.Time    `dynamodbav:"createdAt" json:"createdAt"`
	LastUpdated               time.Time    `dynamodbav:"lastUpdated" json:"lastUpdated"`
	Version                   int64        `dynamodbav:"version" json:"version"`
}

// BuildPairKey derives the deterministic key for two user ids. Stable under
// argument order swap.
func BuildPairKey(userA, userB string) string {
	ids := SortedUserIDs(userA, userB)
	return ids[0] + "#" + ids[1]
}

// SortedUserIDs returns the two ids in canonical order.
func SortedUserIDs(userA, userB string) []string {
	ids := []string{userA, userB}
	sort.Strings(ids)
	return ids
}

// Contains reports whether the pair includes the user.
func (p *PairMatch) Contains(userID string) bool {
	for _, id := range p.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// PartnerOf returns the other member of the pair, or "" when the user is not
// part of it.
func (p *PairMatch) PartnerOf(userID string) string {
	if len(p.UserIDs) != 2 || !p.Contains(userID) {
		return ""
	}
	if p.UserIDs[0] == userID {
		return p.UserIDs[1]
	}
	return p.UserIDs[0]
}

// PairMatchesTable is the DynamoDB table name for pair matches
const PairMatchesTable = "PairMatches"

// GSI Index Names
const PairQueueIndex = "queueStatus-queueEventType-index" // GSI for draining queued pairs per event type

// Per-user GSIs for a user's active pairs. A list attribute cannot key a GSI,
// so each member is projected onto its own scalar attribute and index.
const PairUserAIndex = "userIdA-status-index"
const PairUserBIndex = "userIdB-status-index"
