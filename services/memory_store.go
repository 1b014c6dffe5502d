package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"pairup_server/models"
)

// MemoryStore is an in-process Store used by tests and local development. A
// single mutex serializes transactions, so every transaction body observes
// committed state and commits without conflict.
type MemoryStore struct {
	mu           sync.Mutex
	users        map[string]*models.UserProfile
	pairs        map[string]*models.PairMatch
	events       map[string]*models.Event
	participants map[string]*models.EventParticipant
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        map[string]*models.UserProfile{},
		pairs:        map[string]*models.PairMatch{},
		events:       map[string]*models.Event{},
		participants: map[string]*models.EventParticipant{},
	}
}

// SeedUserProfile inserts or replaces a user profile.
func (s *MemoryStore) SeedUserProfile(profile *models.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[profile.UserID] = clone(profile)
}

// clone deep-copies a record through JSON so callers never share memory with
// committed state.
func clone[T any](in *T) *T {
	data, err := json.Marshal(in)
	if err != nil {
		panic(fmt.Sprintf("memory store clone: %v", err))
	}
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		panic(fmt.Sprintf("memory store clone: %v", err))
	}
	return out
}

func getRecord[T any](records map[string]*T, key, kind string) (*T, error) {
	record, ok := records[key]
	if !ok {
		return nil, fmt.Errorf("%s '%s': %w", kind, key, models.ErrNotFound)
	}
	return clone(record), nil
}

func (s *MemoryStore) GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getRecord(s.users, userID, models.UserProfilesTable)
}

func (s *MemoryStore) GetPairMatch(ctx context.Context, pairKey string) (*models.PairMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getRecord(s.pairs, pairKey, models.PairMatchesTable)
}

func (s *MemoryStore) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getRecord(s.events, eventID, models.EventsTable)
}

func (s *MemoryStore) GetEventParticipant(ctx context.Context, participantID string) (*models.EventParticipant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getRecord(s.participants, participantID, models.EventParticipantsTable)
}

func (s *MemoryStore) QueryQueuedPairMatches(ctx context.Context, eventType string) ([]models.PairMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []models.PairMatch
	for _, pair := range s.pairs {
		if pair.QueueStatus == models.QueueStatusQueued && pair.QueueEventType == eventType && pair.PendingEventID == "" {
			result = append(result, *clone(pair))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PairKey < result[j].PairKey
	})
	return result, nil
}

func (s *MemoryStore) QueryActivePairMatchesForUser(ctx context.Context, userID string) ([]models.PairMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []models.PairMatch
	for _, pair := range s.pairs {
		if pair.Status == models.PairStatusActive && pair.Contains(userID) {
			result = append(result, *clone(pair))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PairKey < result[j].PairKey
	})
	return result, nil
}

func (s *MemoryStore) QueryReminderCandidates(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []models.Event
	for _, event := range s.events {
		if event.Status != models.EventStatusReady || event.ReminderSent || event.Date == nil {
			continue
		}
		if event.Date.Before(from) || !event.Date.Before(to) {
			continue
		}
		result = append(result, *clone(event))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EventID < result[j].EventID
	})
	return result, nil
}

func (s *MemoryStore) QueryEventParticipants(ctx context.Context, eventID string) ([]models.EventParticipant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []models.EventParticipant
	for _, participant := range s.participants {
		if participant.EventID == eventID {
			result = append(result, *clone(participant))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ParticipantID < result[j].ParticipantID
	})
	return result, nil
}

func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(tx Txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &memoryTxn{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type memoryTxn struct {
	store        *MemoryStore
	users        []*models.UserProfile
	pairs        []*models.PairMatch
	events       []*models.Event
	participants []*models.EventParticipant
}

func (t *memoryTxn) commit() {
	for _, u := range t.users {
		t.store.users[u.UserID] = clone(u)
	}
	for _, p := range t.pairs {
		t.store.pairs[p.PairKey] = clone(p)
	}
	for _, e := range t.events {
		t.store.events[e.EventID] = clone(e)
	}
	for _, p := range t.participants {
		t.store.participants[p.ParticipantID] = clone(p)
	}
}

func (t *memoryTxn) GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	return getRecord(t.store.users, userID, models.UserProfilesTable)
}

func (t *memoryTxn) PutUserProfile(profile *models.UserProfile) {
	profile.Version++
	t.users = append(t.users, clone(profile))
}

func (t *memoryTxn) GetPairMatch(ctx context.Context, pairKey string) (*models.PairMatch, error) {
	return getRecord(t.store.pairs, pairKey, models.PairMatchesTable)
}

func (t *memoryTxn) PutPairMatch(pair *models.PairMatch) {
	pair.Version++
	t.pairs = append(t.pairs, clone(pair))
}

func (t *memoryTxn) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	return getRecord(t.store.events, eventID, models.EventsTable)
}

func (t *memoryTxn) PutEvent(event *models.Event) {
	event.Version++
	t.events = append(t.events, clone(event))
}

func (t *memoryTxn) GetEventParticipant(ctx context.Context, participantID string) (*models.EventParticipant, error) {
	return getRecord(t.store.participants, participantID, models.EventParticipantsTable)
}

func (t *memoryTxn) PutEventParticipant(participant *models.EventParticipant) {
	participant.Version++
	t.participants = append(t.participants, clone(participant))
}
