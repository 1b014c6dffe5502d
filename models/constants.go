package models

// ✅ Event Types (closed set of activity categories)
const (
	EventTypeCoffee     = "coffee"
	EventTypeBar        = "bar"
	EventTypeDinner     = "dinner"
	EventTypeHiking     = "hiking"
	EventTypeDogWalking = "dog_walking"
	EventTypeBoardGames = "board_games"
)

// AllEventTypes lists every event type in catalogue order.
var AllEventTypes = []string{
	EventTypeCoffee,
	EventTypeBar,
	EventTypeDinner,
	EventTypeHiking,
	EventTypeDogWalking,
	EventTypeBoardGames,
}

// EventTypeGroupSizes maps each event type to its target group size.
// Required pair count per event = group size / 2.
var EventTypeGroupSizes = map[string]int{
	EventTypeCoffee:     4,
	EventTypeBar:        6,
	EventTypeDinner:     4,
	EventTypeHiking:     6,
	EventTypeDogWalking: 4,
	EventTypeBoardGames: 4,
}

// ✅ PairMatch statuses
const (
	PairStatusActive   = "active"
	PairStatusInactive = "inactive"
)

// ✅ PairMatch queue statuses
const (
	QueueStatusAwaitingAvailability = "awaiting_availability"
	QueueStatusAwaitingEventType    = "awaiting_event_type"
	QueueStatusQueued               = "queued"
	QueueStatusInEvent              = "in_event"
	QueueStatusSidelined            = "sidelined"
)

// ✅ Event statuses
const (
	EventStatusPendingJoin = "pending_join"
	EventStatusReady       = "ready"
	EventStatusConfirmed   = "confirmed"
	EventStatusCanceled    = "canceled"
)

// ✅ Participant statuses within an event
const (
	ParticipantStatusPendingJoin = "pending_join"
	ParticipantStatusJoined      = "joined"
	ParticipantStatusConfirmed   = "confirmed"
	ParticipantStatusCanceled    = "canceled"
	ParticipantStatusRemoved     = "removed"
	ParticipantStatusCompleted   = "completed"
)

// ✅ Availability day segments
const (
	SegmentMorning   = "morning"
	SegmentAfternoon = "afternoon"
	SegmentEvening   = "evening"
	SegmentNight     = "night"
)

// Cancellation policy: three cancels trigger a seven day event ban.
const (
	CancelCountBanThreshold = 3
	EventBanDays            = 7
)

// MinOverlapSegments is the minimum shared free segments a pair needs to be
// considered sufficiently available for queueing.
const MinOverlapSegments = 2

// MaxSuggestedDates caps how many overlap dates are copied onto a new event.
const MaxSuggestedDates = 5
