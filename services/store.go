package services

import (
	"context"
	"time"

	"pairup_server/models"
)

// Txn exposes typed reads and buffered writes inside one atomic commit. Reads
// join the transaction's read-set; a record written by someone else between
// read and commit aborts the whole transaction.
//
// Every transaction body must be idempotent: the store retries it on
// conflicting concurrent writes.
type Txn interface {
	GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	PutUserProfile(profile *models.UserProfile)
	GetPairMatch(ctx context.Context, pairKey string) (*models.PairMatch, error)
	PutPairMatch(pair *models.PairMatch)
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	PutEvent(event *models.Event)
	GetEventParticipant(ctx context.Context, participantID string) (*models.EventParticipant, error)
	PutEventParticipant(participant *models.EventParticipant)
}

// Store is the document-store capability the event core runs on. Point
// lookups and queries read committed state; RunTransaction provides the only
// multi-record atomicity mechanism.
type Store interface {
	GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	GetPairMatch(ctx context.Context, pairKey string) (*models.PairMatch, error)
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	GetEventParticipant(ctx context.Context, participantID string) (*models.EventParticipant, error)

	// QueryQueuedPairMatches returns pairs with queueStatus=queued and the
	// given queueEventType that are not yet tied to an event.
	QueryQueuedPairMatches(ctx context.Context, eventType string) ([]models.PairMatch, error)
	// QueryActivePairMatchesForUser returns all active pairs containing the user.
	QueryActivePairMatchesForUser(ctx context.Context, userID string) ([]models.PairMatch, error)
	// QueryReminderCandidates returns ready events with reminderSent=false and
	// a date inside [from, to).
	QueryReminderCandidates(ctx context.Context, from, to time.Time) ([]models.Event, error)
	// QueryEventParticipants returns all participant records of one event.
	QueryEventParticipants(ctx context.Context, eventID string) ([]models.EventParticipant, error)

	// RunTransaction executes fn atomically, retrying it transparently on
	// write conflicts. Returns models.ErrConflict (wrapped) once retries are
	// exhausted.
	RunTransaction(ctx context.Context, fn func(tx Txn) error) error
}
