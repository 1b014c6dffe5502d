package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"pairup_server/models"
)

// PairMatchService owns the PairMatch entity: creation and recomputation on
// mutual likes, queue-status derivation, and queue queries.
type PairMatchService struct {
	Store Store
	Now   func() time.Time
}

func NewPairMatchService(store Store) *PairMatchService {
	return &PairMatchService{Store: store, Now: time.Now}
}

// deriveQueueState computes the queue status and event type from the cached
// overlap and shared event types.
func deriveQueueState(overlapCount int, sharedEventTypes []string) (string, string) {
	if !SufficientOverlap(overlapCount) {
		return models.QueueStatusAwaitingAvailability, ""
	}
	if len(sharedEventTypes) == 0 {
		return models.QueueStatusAwaitingEventType, ""
	}
	return models.QueueStatusQueued, sharedEventTypes[0]
}

// UpsertPairMatch creates or recomputes the PairMatch for two mutually
// interested users. Idempotent: derived fields are overwritten on every call,
// but an existing event assignment is preserved.
func (s *PairMatchService) UpsertPairMatch(ctx context.Context, userA, userB string) (*models.PairMatch, error) {
	pairKey := models.BuildPairKey(userA, userB)
	now := s.Now()

	var result *models.PairMatch
	err := s.Store.RunTransaction(ctx, func(tx Txn) error {
		profileA, err := tx.GetUserProfile(ctx, userA)
		if err != nil {
			return fmt.Errorf("failed to load profile for %s: %w", userA, err)
		}
		profileB, err := tx.GetUserProfile(ctx, userB)
		if err != nil {
			return fmt.Errorf("failed to load profile for %s: %w", userB, err)
		}

		pair, err := tx.GetPairMatch(ctx, pairKey)
		if errors.Is(err, models.ErrNotFound) {
			pair = &models.PairMatch{
				PairKey:   pairKey,
				UserIDs:   models.SortedUserIDs(userA, userB),
				CreatedAt: now,
			}
		} else if err != nil {
			return err
		}

		overlap, total := ComputeAvailabilityOverlap(profileA.Availability, profileB.Availability, now)
		shared := SharedEventTypes(profileA.Interests, profileB.Interests)

		pair.UserIDA = pair.UserIDs[0]
		pair.UserIDB = pair.UserIDs[1]
		pair.Status = models.PairStatusActive
		pair.SharedEventTypes = shared
		pair.AvailabilityOverlap = overlap
		pair.AvailabilityOverlapCount = total
		pair.AvailabilityComputedAt = now
		pair.LastUpdated = now

		if pair.PendingEventID != "" {
			// Already assigned: keep the assignment, refresh only the cache.
			pair.QueueStatus = models.QueueStatusInEvent
		} else {
			queueStatus, queueEventType := deriveQueueState(total, shared)
			pair.QueueStatus = queueStatus
			pair.QueueEventType = queueEventType
			pair.SuggestedEventType = queueEventType
		}

		tx.PutPairMatch(pair)
		result = pair
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ PairMatch upserted: %s (queueStatus=%s, overlap=%d)", pairKey, result.QueueStatus, result.AvailabilityOverlapCount)
	return result, nil
}

// RefreshPairMatchesForUser recomputes every active pair containing the user,
// typically after an availability or interest change.
func (s *PairMatchService) RefreshPairMatchesForUser(ctx context.Context, userID string) error {
	pairs, err := s.Store.QueryActivePairMatchesForUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, pair := range pairs {
		if len(pair.UserIDs) != 2 {
			continue
		}
		if _, err := s.UpsertPairMatch(ctx, pair.UserIDs[0], pair.UserIDs[1]); err != nil {
			log.Printf("⚠️ Failed to refresh pair %s: %v", pair.PairKey, err)
		}
	}
	return nil
}

// Unmatch retires the pair to inactive/sidelined. Callers that find the pair
// tied to a pending event cancel that participation first.
func (s *PairMatchService) Unmatch(ctx context.Context, userA, userB string) (*models.PairMatch, error) {
	pairKey := models.BuildPairKey(userA, userB)
	now := s.Now()

	var result *models.PairMatch
	err := s.Store.RunTransaction(ctx, func(tx Txn) error {
		pair, err := tx.GetPairMatch(ctx, pairKey)
		if err != nil {
			return err
		}
		pair.Status = models.PairStatusInactive
		pair.QueueStatus = models.QueueStatusSidelined
		pair.QueueEventType = ""
		pair.LastUpdated = now
		tx.PutPairMatch(pair)
		result = pair
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ PairMatch retired: %s", pairKey)
	return result, nil
}

// QueryQueued returns queued pairs of one event type, oldest availability
// computation first. Ties break on pairKey for determinism.
func (s *PairMatchService) QueryQueued(ctx context.Context, eventType string) ([]models.PairMatch, error) {
	pairs, err := s.Store.QueryQueuedPairMatches(ctx, eventType)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if !pairs[i].AvailabilityComputedAt.Equal(pairs[j].AvailabilityComputedAt) {
			return pairs[i].AvailabilityComputedAt.Before(pairs[j].AvailabilityComputedAt)
		}
		return pairs[i].PairKey < pairs[j].PairKey
	})
	return pairs, nil
}

// QueryForUser returns all active pairs containing the user.
func (s *PairMatchService) QueryForUser(ctx context.Context, userID string) ([]models.PairMatch, error) {
	return s.Store.QueryActivePairMatchesForUser(ctx, userID)
}
