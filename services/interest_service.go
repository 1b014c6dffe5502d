package services

import (
	"strings"

	"pairup_server/models"
)

// interestEventTypes is the fixed dictionary from free-text interest labels to
// event types. Unknown labels map to nothing.
var interestEventTypes = map[string]string{
	"coffee":        models.EventTypeCoffee,
	"cafes":         models.EventTypeCoffee,
	"cafe hopping":  models.EventTypeCoffee,
	"brunch":        models.EventTypeCoffee,
	"beer":          models.EventTypeBar,
	"cocktails":     models.EventTypeBar,
	"wine":          models.EventTypeBar,
	"nightlife":     models.EventTypeBar,
	"food":          models.EventTypeDinner,
	"foodie":        models.EventTypeDinner,
	"cooking":       models.EventTypeDinner,
	"restaurants":   models.EventTypeDinner,
	"hiking":        models.EventTypeHiking,
	"trail running": models.EventTypeHiking,
	"outdoors":      models.EventTypeHiking,
	"camping":       models.EventTypeHiking,
	"dogs":          models.EventTypeDogWalking,
	"dog walking":   models.EventTypeDogWalking,
	"pets":          models.EventTypeDogWalking,
	"board games":   models.EventTypeBoardGames,
	"chess":         models.EventTypeBoardGames,
	"card games":    models.EventTypeBoardGames,
	"puzzles":       models.EventTypeBoardGames,
}

// MapInterestsToEventTypes maps free-text interests to event types, preserving
// the order of the first occurrence and dropping duplicates and unknowns.
func MapInterestsToEventTypes(interests []string) []string {
	var eventTypes []string
	seen := map[string]bool{}
	for _, interest := range interests {
		label := strings.ToLower(strings.TrimSpace(interest))
		eventType, ok := interestEventTypes[label]
		if !ok || seen[eventType] {
			continue
		}
		seen[eventType] = true
		eventTypes = append(eventTypes, eventType)
	}
	return eventTypes
}

// SharedEventTypes intersects both users' mapped event types, ordered by the
// first user's list.
func SharedEventTypes(interestsA, interestsB []string) []string {
	typesA := MapInterestsToEventTypes(interestsA)
	typesB := MapInterestsToEventTypes(interestsB)

	inB := map[string]bool{}
	for _, t := range typesB {
		inB[t] = true
	}

	var shared []string
	for _, t := range typesA {
		if inB[t] {
			shared = append(shared, t)
		}
	}
	return shared
}
