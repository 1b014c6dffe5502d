package models

import "time"

// DayAvailability holds the four free segments of one calendar day. A blocked
// day contributes nothing regardless of the segment flags.
type DayAvailability struct {
	Morning   bool `dynamodbav:"morning" json:"morning"`
	Afternoon bool `dynamodbav:"afternoon" json:"afternoon"`
	Evening   bool `dynamodbav:"evening" json:"evening"`
	Night     bool `dynamodbav:"night" json:"night"`
	Blocked   bool `dynamodbav:"blocked" json:"blocked"`
}

// PendingEventAssignment mirrors a user's status in exactly one event. At most
// one assignment per eventId.
type PendingEventAssignment struct {
	EventID    string    `dynamodbav:"eventId" json:"eventId"`
	EventType  string    `dynamodbav:"eventType" json:"eventType"`
	Status     string    `dynamodbav:"status" json:"status"`
	AssignedAt time.Time `dynamodbav:"assignedAt" json:"assignedAt"`
	UpdatedAt  time.Time `dynamodbav:"updatedAt" json:"updatedAt"`
}

// UserProfile is the account subsystem's record. The event core reads
// interests and availability and mutates only pendingEvents, eventCancelCount
// and eventBanUntil.
type UserProfile struct {
	UserID           string                     `dynamodbav:"userId" json:"userId"`
	FullName         string                     `dynamodbav:"fullName,omitempty" json:"fullName,omitempty"`
	Interests        []string                   `dynamodbav:"interests,omitempty" json:"interests,omitempty"`
	Availability     map[string]DayAvailability `dynamodbav:"availability,omitempty" json:"availability,omitempty"` // keyed by YYYY-MM-DD
	PendingEvents    []PendingEventAssignment   `dynamodbav:"pendingEvents,omitempty" json:"pendingEvents,omitempty"`
	EventCancelCount int                        `dynamodbav:"eventCancelCount" json:"eventCancelCount"`
	EventBanUntil    *time.Time                 `dynamodbav:"eventBanUntil,omitempty" json:"eventBanUntil,omitempty"`
	Version          int64                      `dynamodbav:"version" json:"version"`
}

// IsBanned reports whether the user is blocked from joining events at the
// given instant.
func (u *UserProfile) IsBanned(now time.Time) bool {
	return u.EventBanUntil != nil && u.EventBanUntil.After(now)
}

// AssignmentFor returns the pending assignment for an event, or nil.
func (u *UserProfile) AssignmentFor(eventID string) *PendingEventAssignment {
	for i := range u.PendingEvents {
		if u.PendingEvents[i].EventID == eventID {
			return &u.PendingEvents[i]
		}
	}
	return nil
}

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "UserProfiles"
